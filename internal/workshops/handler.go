package workshops

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/workshop-hub/backend/internal/models"
	"github.com/workshop-hub/backend/pkg/response"
	"github.com/workshop-hub/backend/pkg/utils"
)

// Handler serves workshop and session endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a workshops handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// StatusRequest is the body for PATCH /sessions/:id/status.
type StatusRequest struct {
	Status string `json:"status" binding:"required,session_status"`
}

// BatchRequest carries a list of ids.
type BatchRequest struct {
	IDs []int64 `json:"ids"`
}

// ListWorkshops handles GET /workshops.
func (h *Handler) ListWorkshops(c *gin.Context) {
	list, err := h.svc.ListWorkshops(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, list)
}

// CreateWorkshop handles POST /workshops.
func (h *Handler) CreateWorkshop(c *gin.Context) {
	var in WorkshopInput
	if err := utils.BindJSON(c, &in); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	w, err := h.svc.CreateWorkshop(c.Request.Context(), in)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Created(c, w)
}

// GetWorkshop handles GET /workshops/:id.
func (h *Handler) GetWorkshop(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "workshop")
	if !ok {
		return
	}
	d, err := h.svc.WorkshopDetails(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, d)
}

// UpdateWorkshop handles PUT /workshops/:id.
func (h *Handler) UpdateWorkshop(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "workshop")
	if !ok {
		return
	}
	var in WorkshopInput
	if err := utils.BindJSON(c, &in); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	w, err := h.svc.UpdateWorkshop(c.Request.Context(), id, in)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, w)
}

// DeleteWorkshop handles DELETE /workshops/:id.
func (h *Handler) DeleteWorkshop(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "workshop")
	if !ok {
		return
	}
	if err := h.svc.DeleteWorkshop(c.Request.Context(), id); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, gin.H{"message": "Workshop deleted successfully."})
}

// SessionsByWorkshop handles GET /workshops/:id/sessions.
func (h *Handler) SessionsByWorkshop(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "workshop")
	if !ok {
		return
	}
	list, err := h.svc.SessionsByWorkshop(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, list)
}

// ParticipantEmails handles GET /workshops/participants/emails.
func (h *Handler) ParticipantEmails(c *gin.Context) {
	emails, err := h.svc.ParticipantEmails(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, emails)
}

// ListSessions handles GET /sessions.
func (h *Handler) ListSessions(c *gin.Context) {
	list, err := h.svc.ListSessions(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, list)
}

// SessionsByIDs handles POST /sessions/batch.
func (h *Handler) SessionsByIDs(c *gin.Context) {
	var req BatchRequest
	if err := utils.BindJSON(c, &req); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	list, err := h.svc.SessionsByIDs(c.Request.Context(), req.IDs)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, list)
}

// GetSession handles GET /sessions/:id.
func (h *Handler) GetSession(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "session")
	if !ok {
		return
	}
	v, err := h.svc.Session(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, v)
}

// CreateSession handles POST /sessions.
func (h *Handler) CreateSession(c *gin.Context) {
	var in SessionInput
	if err := utils.BindJSON(c, &in); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	v, err := h.svc.CreateSession(c.Request.Context(), in)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Created(c, v)
}

// UpdateSession handles PUT /sessions/:id.
func (h *Handler) UpdateSession(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "session")
	if !ok {
		return
	}
	var in SessionInput
	if err := utils.BindJSON(c, &in); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	v, err := h.svc.UpdateSession(c.Request.Context(), id, in)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, v)
}

// DeleteSession handles DELETE /sessions/:id.
func (h *Handler) DeleteSession(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "session")
	if !ok {
		return
	}
	if err := h.svc.DeleteSession(c.Request.Context(), id); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, gin.H{"message": "Session deleted successfully."})
}

// UpdateStatus handles PATCH /sessions/:id/status.
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "session")
	if !ok {
		return
	}
	var req StatusRequest
	if err := utils.BindJSON(c, &req); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	v, err := h.svc.UpdateStatus(c.Request.Context(), id, models.SessionStatus(req.Status))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, v)
}

// SessionEmails handles GET /sessions/:id/emails.
func (h *Handler) SessionEmails(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "session")
	if !ok {
		return
	}
	emails, err := h.svc.SessionEmails(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, gin.H{"emails": emails})
}

// RegisterWorkshops mounts the /workshops routes on rg.
func (h *Handler) RegisterWorkshops(rg *gin.RouterGroup) {
	rg.GET("", h.ListWorkshops)
	rg.POST("", h.CreateWorkshop)
	rg.GET("/participants/emails", h.ParticipantEmails)
	rg.GET("/:id", h.GetWorkshop)
	rg.PUT("/:id", h.UpdateWorkshop)
	rg.DELETE("/:id", h.DeleteWorkshop)
	rg.GET("/:id/sessions", h.SessionsByWorkshop)
}

// RegisterSessions mounts the /sessions routes on rg.
func (h *Handler) RegisterSessions(rg *gin.RouterGroup) {
	rg.GET("", h.ListSessions)
	rg.POST("", h.CreateSession)
	rg.POST("/batch", h.SessionsByIDs)
	rg.GET("/:id", h.GetSession)
	rg.PUT("/:id", h.UpdateSession)
	rg.DELETE("/:id", h.DeleteSession)
	rg.PATCH("/:id/status", h.UpdateStatus)
	rg.GET("/:id/emails", h.SessionEmails)
}
