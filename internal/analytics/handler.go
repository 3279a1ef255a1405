package analytics

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/workshop-hub/backend/internal/middleware"
	"github.com/workshop-hub/backend/pkg/response"
	"github.com/workshop-hub/backend/pkg/utils"
)

// Handler serves the /analytics routes.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates an analytics handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// reply writes the result of fn or maps its error.
func reply[T any](h *Handler, c *gin.Context, fn func(ctx context.Context) (T, error)) {
	out, err := fn(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, out)
}

// TrainersDashboard handles GET /analytics/dashboard/trainers.
func (h *Handler) TrainersDashboard(c *gin.Context) {
	reply(h, c, h.svc.TrainersDashboard)
}

// TrainerDashboard handles GET /analytics/dashboard/trainers/:id.
func (h *Handler) TrainerDashboard(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "trainer")
	if !ok {
		return
	}
	reply(h, c, func(ctx context.Context) ([]TrainerSessionCard, error) { return h.svc.TrainerDashboard(ctx, id) })
}

// MyDashboard handles GET /analytics/dashboard/trainer/me for a signed-in trainer.
func (h *Handler) MyDashboard(c *gin.Context) {
	id, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	reply(h, c, func(ctx context.Context) ([]TrainerSessionCard, error) { return h.svc.TrainerDashboard(ctx, id) })
}

// AdminCounts handles GET /analytics/dashboard/admin/counts.
func (h *Handler) AdminCounts(c *gin.Context) {
	reply(h, c, h.svc.AdminCounts)
}

// SessionDashboard handles GET /analytics/sessions/:id/dashboard.
func (h *Handler) SessionDashboard(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "session")
	if !ok {
		return
	}
	out, err := h.svc.RefreshSessionStatistics(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, out)
}

// Sessions handles GET /analytics/sessions.
func (h *Handler) Sessions(c *gin.Context) { reply(h, c, h.svc.SessionsStats) }

// SessionList handles GET /analytics/sessions/list.
func (h *Handler) SessionList(c *gin.Context) { reply(h, c, h.svc.SessionList) }

// SessionsOverview handles GET /analytics/sessions-overview.
func (h *Handler) SessionsOverview(c *gin.Context) { reply(h, c, h.svc.SessionsOverview) }

// SessionDetail handles GET /analytics/sessions/:id/detail.
func (h *Handler) SessionDetail(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "session")
	if !ok {
		return
	}
	reply(h, c, func(ctx context.Context) (*SessionDetail, error) { return h.svc.SessionDetail(ctx, id) })
}

// Workshops handles GET /analytics/workshops.
func (h *Handler) Workshops(c *gin.Context) { reply(h, c, h.svc.WorkshopsStats) }

// WorkshopList handles GET /analytics/workshops/list.
func (h *Handler) WorkshopList(c *gin.Context) { reply(h, c, h.svc.WorkshopList) }

// WorkshopsOverview handles GET /analytics/workshops-overview.
func (h *Handler) WorkshopsOverview(c *gin.Context) { reply(h, c, h.svc.WorkshopsOverview) }

// WorkshopDetail handles GET /analytics/workshops/:id/detail.
func (h *Handler) WorkshopDetail(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "workshop")
	if !ok {
		return
	}
	reply(h, c, func(ctx context.Context) (*WorkshopDetail, error) { return h.svc.WorkshopDetail(ctx, id) })
}

// Trainers handles GET /analytics/trainers.
func (h *Handler) Trainers(c *gin.Context) { reply(h, c, h.svc.TrainersStats) }

// TrainerDetail handles GET /analytics/trainers/:id/detail.
func (h *Handler) TrainerDetail(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "trainer")
	if !ok {
		return
	}
	reply(h, c, func(ctx context.Context) (*TrainerDetail, error) { return h.svc.TrainerDetail(ctx, id) })
}

// Participants handles GET /analytics/participants.
func (h *Handler) Participants(c *gin.Context) { reply(h, c, h.svc.ParticipantsStats) }

// ParticipantsOverview handles GET /analytics/participants-overview.
func (h *Handler) ParticipantsOverview(c *gin.Context) {
	f := ParticipantFilters{
		District:        strings.TrimSpace(c.Query("district")),
		Gender:          strings.TrimSpace(c.Query("gender")),
		ParticipantType: strings.TrimSpace(c.Query("participant_type")),
	}
	var err error
	if f.DateFrom, err = utils.QueryDate(c, "date_from"); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	if f.DateTo, err = utils.QueryDate(c, "date_to"); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	if f.WorkshopID, err = utils.QueryID(c, "workshop_id"); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	if f.SessionID, err = utils.QueryID(c, "session_id"); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	reply(h, c, func(ctx context.Context) (*ParticipantsOverview, error) { return h.svc.ParticipantsOverview(ctx, f) })
}

// SessionsReport handles GET /analytics/reports/sessions-overview.
func (h *Handler) SessionsReport(c *gin.Context) {
	period, err := ParsePeriod(strings.ToLower(strings.TrimSpace(c.Query("period"))))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	from, err := utils.QueryDate(c, "date_from")
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	to, err := utils.QueryDate(c, "date_to")
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	reply(h, c, func(ctx context.Context) (*PeriodReport, error) { return h.svc.PeriodReport(ctx, period, from, to) })
}

// FeedbackAnalysis handles GET /feedback/analysis/:session_id.
func (h *Handler) FeedbackAnalysis(c *gin.Context) {
	id, ok := utils.ParamID(c, "session_id", "session")
	if !ok {
		return
	}
	reply(h, c, func(ctx context.Context) (*FeedbackAnalysis, error) { return h.svc.FeedbackAnalysis(ctx, id) })
}

// Register mounts the analytics routes on rg. trainerAuth guards the trainer self-service dashboard.
func (h *Handler) Register(rg *gin.RouterGroup, trainerAuth ...gin.HandlerFunc) {
	rg.GET("/dashboard/trainers", h.TrainersDashboard)
	rg.GET("/dashboard/trainers/:id", h.TrainerDashboard)
	rg.GET("/dashboard/trainer/me", append(trainerAuth, h.MyDashboard)...)
	rg.GET("/dashboard/admin/counts", h.AdminCounts)
	rg.GET("/sessions", h.Sessions)
	rg.GET("/sessions/list", h.SessionList)
	rg.GET("/sessions/:id/detail", h.SessionDetail)
	rg.GET("/sessions/:id/dashboard", h.SessionDashboard)
	rg.GET("/sessions-overview", h.SessionsOverview)
	rg.GET("/workshops", h.Workshops)
	rg.GET("/workshops/list", h.WorkshopList)
	rg.GET("/workshops/:id/detail", h.WorkshopDetail)
	rg.GET("/workshops-overview", h.WorkshopsOverview)
	rg.GET("/trainers", h.Trainers)
	rg.GET("/trainers/:id/detail", h.TrainerDetail)
	rg.GET("/participants", h.Participants)
	rg.GET("/participants-overview", h.ParticipantsOverview)
	rg.GET("/reports/sessions-overview", h.SessionsReport)
}
