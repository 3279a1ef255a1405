// Package comments implements the admin comment kept on each session.
package comments

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/workshop-hub/backend/internal/models"
	"github.com/workshop-hub/backend/pkg/apperror"
)

// Store is the persistence the comments service needs.
type Store interface {
	Create(ctx context.Context, sessionID int64, text string) (*models.AdminComment, error)
	Update(ctx context.Context, sessionID int64, text string) (*models.AdminComment, error)
	BySession(ctx context.Context, sessionID int64) ([]models.AdminComment, error)
	ByWorkshop(ctx context.Context, workshopID int64) ([]WorkshopComment, error)
}

// Sessions looks up sessions.
type Sessions interface {
	GetSession(ctx context.Context, id int64) (*models.Session, error)
}

// SessionComment is a comment as listed for one session.
type SessionComment struct {
	ID        int64     `json:"id"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WorkshopComment is a comment as listed for a workshop.
type WorkshopComment struct {
	ID          int64       `json:"id"`
	SessionID   int64       `json:"session_id"`
	SessionDate models.Date `json:"session_date"`
	Comment     string      `json:"comment"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Service implements admin comments.
type Service struct {
	store    Store
	sessions Sessions
	logger   *zap.Logger
}

// NewService creates a comments service.
func NewService(store Store, sessions Sessions, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, sessions: sessions, logger: logger}
}

func commentText(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", apperror.ValidationFields("Comment is required.", map[string]string{"comment": "field is required"})
	}
	return text, nil
}

// Submit creates the session's comment. A session holds at most one.
func (s *Service) Submit(ctx context.Context, sessionID int64, raw string) (*models.AdminComment, error) {
	text, err := commentText(raw)
	if err != nil {
		return nil, err
	}
	sess, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, apperror.Internal("get session", err)
	}
	if sess == nil {
		return nil, apperror.NotFound("Invalid session ID.")
	}
	c, err := s.store.Create(ctx, sessionID, text)
	if err != nil {
		return nil, apperror.Internal("create comment", err)
	}
	if c == nil {
		return nil, apperror.Conflict("A comment already exists for this session. Use update endpoint instead.")
	}
	s.logger.Info("admin comment created", zap.Int64("session_id", sessionID))
	return c, nil
}

// Update replaces the session's comment text.
func (s *Service) Update(ctx context.Context, sessionID int64, raw string) (*models.AdminComment, error) {
	text, err := commentText(raw)
	if err != nil {
		return nil, err
	}
	c, err := s.store.Update(ctx, sessionID, text)
	if err != nil {
		return nil, apperror.Internal("update comment", err)
	}
	if c == nil {
		return nil, apperror.NotFound("No comment found for this session. Create one first.")
	}
	return c, nil
}

// BySession lists a session's comments.
func (s *Service) BySession(ctx context.Context, sessionID int64) ([]SessionComment, error) {
	list, err := s.store.BySession(ctx, sessionID)
	if err != nil {
		return nil, apperror.Internal("list session comments", err)
	}
	out := make([]SessionComment, 0, len(list))
	for _, c := range list {
		out = append(out, SessionComment{ID: c.ID, Comment: c.Comment, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt})
	}
	return out, nil
}

// ByWorkshop lists the comments across a workshop's sessions.
func (s *Service) ByWorkshop(ctx context.Context, workshopID int64) ([]WorkshopComment, error) {
	list, err := s.store.ByWorkshop(ctx, workshopID)
	if err != nil {
		return nil, apperror.Internal("list workshop comments", err)
	}
	if list == nil {
		list = []WorkshopComment{}
	}
	return list, nil
}
