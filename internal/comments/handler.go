package comments

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/workshop-hub/backend/pkg/response"
	"github.com/workshop-hub/backend/pkg/utils"
)

// CommentRequest is the body for creating or updating a session comment.
type CommentRequest struct {
	Comment string `json:"comment"`
}

// Handler serves admin comment endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a comments handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Submit handles POST /comments/sessions/:id.
func (h *Handler) Submit(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "session")
	if !ok {
		return
	}
	var req CommentRequest
	if err := utils.BindJSON(c, &req); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	cm, err := h.svc.Submit(c.Request.Context(), id, req.Comment)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Created(c, gin.H{"message": "Comment created successfully.", "comment": cm})
}

// Update handles PUT /comments/sessions/:id.
func (h *Handler) Update(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "session")
	if !ok {
		return
	}
	var req CommentRequest
	if err := utils.BindJSON(c, &req); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	cm, err := h.svc.Update(c.Request.Context(), id, req.Comment)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, gin.H{"message": "Comment updated successfully.", "comment": cm})
}

// BySession handles GET /comments/sessions/:id.
func (h *Handler) BySession(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "session")
	if !ok {
		return
	}
	list, err := h.svc.BySession(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, list)
}

// ByWorkshop handles GET /comments/workshops/:id.
func (h *Handler) ByWorkshop(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "workshop")
	if !ok {
		return
	}
	list, err := h.svc.ByWorkshop(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, list)
}

// Register mounts the /comments routes on rg.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/sessions/:id", h.Submit)
	rg.PUT("/sessions/:id", h.Update)
	rg.GET("/sessions/:id", h.BySession)
	rg.GET("/workshops/:id", h.ByWorkshop)
}
