// Package qa implements live session questions and their realtime broadcast.
package qa

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/workshop-hub/backend/internal/models"
	"github.com/workshop-hub/backend/internal/realtime"
	"github.com/workshop-hub/backend/pkg/apperror"
)

// Store is the persistence the Q&A service needs.
type Store interface {
	List(ctx context.Context, f Filter) ([]models.Question, error)
	Get(ctx context.Context, id int64) (*models.Question, error)
	Create(ctx context.Context, q *models.Question) error
	SetAnswered(ctx context.Context, id int64, answered bool) (bool, error)
	IsRegistered(ctx context.Context, participantID, sessionID int64) (bool, error)
}

// Sessions looks up sessions.
type Sessions interface {
	GetSession(ctx context.Context, id int64) (*models.Session, error)
}

// Participants looks up participants.
type Participants interface {
	GetParticipant(ctx context.Context, id int64) (*models.Participant, error)
}

// Broadcaster pushes events to a session's live subscribers.
type Broadcaster interface {
	Publish(sessionID int64, event string, payload interface{})
}

// Service implements live Q&A.
type Service struct {
	store        Store
	sessions     Sessions
	participants Participants
	live         Broadcaster
	logger       *zap.Logger
}

// NewService creates a Q&A service. live may be nil to skip broadcasting.
func NewService(store Store, sessions Sessions, participants Participants, live Broadcaster, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, sessions: sessions, participants: participants, live: live, logger: logger}
}

func (s *Service) publish(sessionID int64, event string, payload interface{}) {
	if s.live != nil {
		s.live.Publish(sessionID, event, payload)
	}
}

// SubmitInput is the body for POST /questions.
type SubmitInput struct {
	SessionID     int64  `json:"session" binding:"required,gt=0"`
	ParticipantID int64  `json:"participant" binding:"required,gt=0"`
	QuestionText  string `json:"question_text" binding:"required"`
}

// Submit stores a question from a participant registered for the session.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*models.Question, error) {
	text := strings.TrimSpace(in.QuestionText)
	if text == "" {
		return nil, apperror.ValidationFields("invalid request", map[string]string{"question_text": "field is required"})
	}
	p, err := s.participants.GetParticipant(ctx, in.ParticipantID)
	if err != nil {
		return nil, apperror.Internal("get participant", err)
	}
	if p == nil {
		return nil, apperror.NotFound("Participant not found.")
	}
	sess, err := s.sessions.GetSession(ctx, in.SessionID)
	if err != nil {
		return nil, apperror.Internal("get session", err)
	}
	if sess == nil {
		return nil, apperror.NotFound("Session not found.")
	}
	registered, err := s.store.IsRegistered(ctx, p.ID, sess.ID)
	if err != nil {
		return nil, apperror.Internal("check registration", err)
	}
	if !registered {
		return nil, apperror.ValidationFields("Participant is not registered for this session.",
			map[string]string{"participant": "not registered for this session"})
	}

	q := &models.Question{SessionID: sess.ID, ParticipantID: p.ID, ParticipantName: p.Name, QuestionText: text}
	if err := s.store.Create(ctx, q); err != nil {
		return nil, apperror.Internal("create question", err)
	}
	s.logger.Info("question submitted", zap.Int64("question_id", q.ID), zap.Int64("session_id", q.SessionID))
	s.publish(q.SessionID, realtime.EventQuestionSubmitted, q)
	return q, nil
}

func nonNil(list []models.Question) []models.Question {
	if list == nil {
		return []models.Question{}
	}
	return list
}

// BySession lists a session's questions, newest first, optionally by answered state.
func (s *Service) BySession(ctx context.Context, sessionID int64, answered *bool) ([]models.Question, error) {
	list, err := s.store.List(ctx, Filter{SessionID: &sessionID, Answered: answered})
	if err != nil {
		return nil, apperror.Internal("list session questions", err)
	}
	return nonNil(list), nil
}

// ByParticipant lists the questions a participant asked, newest first.
func (s *Service) ByParticipant(ctx context.Context, participantID int64) ([]models.Question, error) {
	list, err := s.store.List(ctx, Filter{ParticipantID: &participantID})
	if err != nil {
		return nil, apperror.Internal("list participant questions", err)
	}
	return nonNil(list), nil
}

// ByTrainer lists questions from the sessions a trainer is assigned to.
func (s *Service) ByTrainer(ctx context.Context, trainerID int64, answered *bool, sessionID *int64) ([]models.Question, error) {
	list, err := s.store.List(ctx, Filter{TrainerID: &trainerID, Answered: answered, SessionID: sessionID})
	if err != nil {
		return nil, apperror.Internal("list trainer questions", err)
	}
	return nonNil(list), nil
}

// AnswerState is the outcome of MarkAnswered.
type AnswerState struct {
	Message    string `json:"message"`
	QuestionID int64  `json:"question_id"`
	IsAnswered bool   `json:"is_answered"`
}

// MarkAnswered sets a question's answered flag. Writing the current value is allowed.
func (s *Service) MarkAnswered(ctx context.Context, id int64, answered bool) (*AnswerState, error) {
	q, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, apperror.Internal("get question", err)
	}
	if q == nil {
		return nil, apperror.NotFound("Question not found.")
	}
	if q.IsAnswered != answered {
		ok, err := s.store.SetAnswered(ctx, id, answered)
		if err != nil {
			return nil, apperror.Internal("set answered", err)
		}
		if !ok {
			return nil, apperror.NotFound("Question not found.")
		}
	}
	state := &AnswerState{Message: "Question status updated", QuestionID: id, IsAnswered: answered}
	s.publish(q.SessionID, realtime.EventQuestionAnswered, map[string]interface{}{
		"id":          id,
		"session":     q.SessionID,
		"is_answered": answered,
	})
	return state, nil
}
