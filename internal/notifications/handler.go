package notifications

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/workshop-hub/backend/pkg/response"
	"github.com/workshop-hub/backend/pkg/utils"
)

// Handler serves notification endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a notifications handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Send handles POST /notifications/send.
func (h *Handler) Send(c *gin.Context) {
	var req SendRequest
	if err := utils.BindJSON(c, &req); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	out, err := h.svc.Send(c.Request.Context(), req)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, out)
}

// List handles GET /notifications/participant/:id.
func (h *Handler) List(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "participant")
	if !ok {
		return
	}
	list, err := h.svc.List(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, list)
}

// MarkRead handles POST /notifications/:id/read.
func (h *Handler) MarkRead(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "notification")
	if !ok {
		return
	}
	if err := h.svc.MarkRead(c.Request.Context(), id); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, gin.H{"message": "Notification marked as read."})
}

// Register mounts the notification routes on rg.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/send", h.Send)
	rg.GET("/participant/:id", h.List)
	rg.POST("/:id/read", h.MarkRead)
	rg.PATCH("/:id/read", h.MarkRead)
}
