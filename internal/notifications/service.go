package notifications

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/workshop-hub/backend/internal/models"
	"github.com/workshop-hub/backend/pkg/apperror"
	"github.com/workshop-hub/backend/pkg/queue"
)

// Store is the persistence the notification service needs.
type Store interface {
	CreateTemplate(ctx context.Context, t *models.NotificationTemplate) error
	CountTargets(ctx context.Context, t models.NotificationTarget) (int, error)
	ListByParticipant(ctx context.Context, participantID int64) ([]models.Notification, error)
	MarkRead(ctx context.Context, id int64) (bool, error)
}

// Enqueuer schedules the fan-out of a template.
type Enqueuer interface {
	EnqueueNotificationFanout(ctx context.Context, payload queue.NotificationFanoutPayload) error
}

// Service creates templates and hands their delivery to the worker.
type Service struct {
	store  Store
	queue  Enqueuer
	logger *zap.Logger
}

// NewService creates a notification service.
func NewService(store Store, q Enqueuer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, queue: q, logger: logger}
}

var knownTypes = map[string]bool{
	models.NotificationGeneral:  true,
	models.NotificationWorkshop: true,
	models.NotificationSession:  true,
	models.NotificationFeedback: true,
	models.NotificationMaterial: true,
}

// publish stores the template and enqueues its fan-out. A failed enqueue is logged only.
func (s *Service) publish(ctx context.Context, t *models.NotificationTemplate, target models.NotificationTarget) error {
	if err := s.store.CreateTemplate(ctx, t); err != nil {
		return apperror.Internal("create notification template", err)
	}
	payload := queue.NotificationFanoutPayload{TemplateID: t.ID, Target: target}
	if err := s.queue.EnqueueNotificationFanout(ctx, payload); err != nil {
		s.logger.Error("enqueue notification fanout failed",
			zap.Error(err),
			zap.Int64("template_id", t.ID),
			zap.String("target", string(target.Kind)),
		)
	}
	return nil
}

// Announce publishes a system notification on behalf of another feature. Failures are logged
// and never surface to the caller's request.
func (s *Service) Announce(ctx context.Context, t models.NotificationTemplate, target models.NotificationTarget) {
	if err := s.publish(ctx, &t, target); err != nil {
		s.logger.Error("announce notification failed", zap.Error(err), zap.String("title", t.Title))
	}
}

// SendRequest is the body of POST /notifications/send.
type SendRequest struct {
	Title            string  `json:"title" binding:"required"`
	Message          string  `json:"message" binding:"required"`
	URL              string  `json:"url"`
	NotificationType string  `json:"notification_type"`
	ToAll            bool    `json:"to_all"`
	SessionID        *int64  `json:"session_id"`
	WorkshopID       *int64  `json:"workshop_id"`
	ParticipantIDs   []int64 `json:"participant_ids"`
	AttendedOnly     bool    `json:"attended_only"`
}

// Target resolves the audience: to_all, then session_id, then workshop_id, then participant_ids.
func (r SendRequest) Target() (models.NotificationTarget, bool) {
	switch {
	case r.ToAll:
		return models.NotificationTarget{Kind: models.TargetAll}, true
	case r.SessionID != nil:
		return models.NotificationTarget{Kind: models.TargetSession, SessionID: r.SessionID, AttendedOnly: r.AttendedOnly}, true
	case r.WorkshopID != nil:
		return models.NotificationTarget{Kind: models.TargetWorkshop, WorkshopID: r.WorkshopID, AttendedOnly: r.AttendedOnly}, true
	case len(r.ParticipantIDs) > 0:
		return models.NotificationTarget{Kind: models.TargetParticipants, ParticipantIDs: r.ParticipantIDs}, true
	}
	return models.NotificationTarget{}, false
}

// SendResult reports how many participants the notification was addressed to.
type SendResult struct {
	Message    string `json:"message"`
	TemplateID int64  `json:"template_id"`
	Recipients int    `json:"recipients"`
}

// Send publishes an admin-authored notification.
func (s *Service) Send(ctx context.Context, req SendRequest) (*SendResult, error) {
	target, ok := req.Target()
	if !ok {
		return nil, apperror.Validation("No target participants specified.")
	}
	kind := strings.TrimSpace(req.NotificationType)
	if kind == "" {
		kind = models.NotificationGeneral
	}
	if !knownTypes[kind] {
		return nil, apperror.Validationf("unknown notification_type %q", kind)
	}
	n, err := s.store.CountTargets(ctx, target)
	if err != nil {
		return nil, apperror.Internal("count notification targets", err)
	}
	t := &models.NotificationTemplate{Title: req.Title, Message: req.Message, URL: req.URL, NotificationType: kind}
	if err := s.publish(ctx, t, target); err != nil {
		return nil, err
	}
	return &SendResult{
		Message:    fmt.Sprintf("Notifications sent to %d participant(s).", n),
		TemplateID: t.ID,
		Recipients: n,
	}, nil
}

// List returns a participant's notifications, newest first.
func (s *Service) List(ctx context.Context, participantID int64) ([]models.Notification, error) {
	list, err := s.store.ListByParticipant(ctx, participantID)
	if err != nil {
		return nil, apperror.Internal("list notifications", err)
	}
	if list == nil {
		list = []models.Notification{}
	}
	return list, nil
}

// MarkRead flags one notification as read.
func (s *Service) MarkRead(ctx context.Context, id int64) error {
	ok, err := s.store.MarkRead(ctx, id)
	if err != nil {
		return apperror.Internal("mark notification read", err)
	}
	if !ok {
		return apperror.NotFound("Notification not found.")
	}
	return nil
}
