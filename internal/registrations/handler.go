package registrations

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/workshop-hub/backend/internal/models"
	"github.com/workshop-hub/backend/pkg/response"
	"github.com/workshop-hub/backend/pkg/utils"
)

// Handler serves registration and attendance endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a registrations handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// PairRequest identifies a participant and a session.
type PairRequest struct {
	ParticipantID int64 `json:"participant_id" binding:"required,gt=0"`
	SessionID     int64 `json:"session_id" binding:"required,gt=0"`
}

// MarkRequest is the body for POST /registrations/attendance/mark.
type MarkRequest struct {
	RegistrationID int64 `json:"registration_id" binding:"required,gt=0"`
}

// QRRequest is the body for POST /registrations/attendance/qr.
type QRRequest struct {
	SessionToken  string `json:"session_token" binding:"required"`
	ParticipantID int64  `json:"participant_id" binding:"required,gt=0"`
}

// NICRequest is the body for POST /registrations/sessions/:token/attendance.
type NICRequest struct {
	NIC string `json:"nic"`
}

// OnBehalfRequest is the body for POST /participants/:id/register-session.
type OnBehalfRequest struct {
	SessionID int64 `json:"session_id" binding:"required,gt=0"`
}

func (h *Handler) attendance(c *gin.Context, res *AttendanceResult, err error) {
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	if res.Status == models.AttendanceNotRegistered {
		response.WithStatus(c, http.StatusForbidden, res)
		return
	}
	response.OK(c, res)
}

// Create handles POST /registrations.
func (h *Handler) Create(c *gin.Context) {
	var req PairRequest
	if err := utils.BindJSON(c, &req); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	reg, err := h.svc.Register(c.Request.Context(), req.ParticipantID, req.SessionID)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Created(c, reg)
}

// RegisterOnBehalf handles POST /participants/:id/register-session.
func (h *Handler) RegisterOnBehalf(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "participant")
	if !ok {
		return
	}
	var req OnBehalfRequest
	if err := utils.BindJSON(c, &req); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	reg, err := h.svc.Register(c.Request.Context(), id, req.SessionID)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Created(c, gin.H{"message": "Successfully registered for the session.", "registration": reg})
}

// Cancel handles POST /registrations/cancel.
func (h *Handler) Cancel(c *gin.Context) {
	var req PairRequest
	if err := utils.BindJSON(c, &req); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	if err := h.svc.Cancel(c.Request.Context(), req.ParticipantID, req.SessionID); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, gin.H{"message": "Registration cancelled successfully."})
}

// MarkByID handles POST /registrations/attendance/mark.
func (h *Handler) MarkByID(c *gin.Context) {
	var req MarkRequest
	if err := utils.BindJSON(c, &req); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	res, err := h.svc.MarkByID(c.Request.Context(), req.RegistrationID)
	h.attendance(c, res, err)
}

// MarkByQR handles POST /registrations/attendance/qr.
func (h *Handler) MarkByQR(c *gin.Context) {
	var req QRRequest
	if err := utils.BindJSON(c, &req); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	res, err := h.svc.MarkByQR(c.Request.Context(), req.SessionToken, req.ParticipantID)
	h.attendance(c, res, err)
}

// MarkByNIC handles POST /registrations/sessions/:token/attendance.
func (h *Handler) MarkByNIC(c *gin.Context) {
	var req NICRequest
	if err := utils.BindJSON(c, &req); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	res, err := h.svc.MarkByNIC(c.Request.Context(), c.Param("token"), req.NIC)
	h.attendance(c, res, err)
}

// RegisteredSessions handles GET /registrations/:id/registered-sessions.
func (h *Handler) RegisteredSessions(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "participant")
	if !ok {
		return
	}
	list, err := h.svc.RegisteredSessions(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, list)
}

// AttendedSessions handles GET /registrations/:id/attended-sessions.
func (h *Handler) AttendedSessions(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "participant")
	if !ok {
		return
	}
	list, err := h.svc.AttendedSessions(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, list)
}

// FeedbackSessions handles GET /registrations/:id/feedback-sessions.
func (h *Handler) FeedbackSessions(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "participant")
	if !ok {
		return
	}
	list, err := h.svc.FeedbackSessions(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, list)
}

// SessionParticipants handles GET /registrations/sessions/:id/participants.
func (h *Handler) SessionParticipants(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "session")
	if !ok {
		return
	}
	counts, err := h.svc.Counts(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, counts)
}

// Register mounts the /registrations routes on rg.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.POST("/cancel", h.Cancel)
	rg.POST("/attendance/mark", h.MarkByID)
	rg.POST("/attendance/qr", h.MarkByQR)
	rg.POST("/sessions/:token/attendance", h.MarkByNIC)
	rg.GET("/sessions/:id/participants", h.SessionParticipants)
	rg.GET("/:id/registered-sessions", h.RegisteredSessions)
	rg.GET("/:id/attended-sessions", h.AttendedSessions)
	rg.GET("/:id/feedback-sessions", h.FeedbackSessions)
}
