package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/workshop-hub/backend/internal/models"
	"github.com/workshop-hub/backend/pkg/apperror"
)

// Store is the feedback persistence the service needs.
type Store interface {
	CreateQuestion(ctx context.Context, fq *models.FeedbackQuestion) error
	GetQuestion(ctx context.Context, id int64) (*models.FeedbackQuestion, error)
	ListQuestions(ctx context.Context, sessionID int64) ([]models.FeedbackQuestion, error)
	SaveResponse(ctx context.Context, participantID, questionID int64, response string) (*models.FeedbackResponse, bool, error)
	ListResponses(ctx context.Context, sessionID int64) ([]models.FeedbackResponse, error)
}

// Sessions looks up sessions.
type Sessions interface {
	GetSession(ctx context.Context, id int64) (*models.Session, error)
}

// Participants looks up participants.
type Participants interface {
	GetParticipant(ctx context.Context, id int64) (*models.Participant, error)
}

// Announcer publishes system notifications.
type Announcer interface {
	Announce(ctx context.Context, t models.NotificationTemplate, target models.NotificationTarget)
}

// Service implements feedback questions and responses.
type Service struct {
	store        Store
	sessions     Sessions
	participants Participants
	notifier     Announcer
	logger       *zap.Logger
}

// NewService creates a feedback service. notifier may be nil.
func NewService(store Store, sessions Sessions, participants Participants, notifier Announcer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, sessions: sessions, participants: participants, notifier: notifier, logger: logger}
}

// QuestionInput is the body for POST /feedback/questions.
type QuestionInput struct {
	SessionID    int64    `json:"session" binding:"required,gt=0"`
	QuestionText string   `json:"question_text" binding:"required"`
	ResponseType string   `json:"response_type" binding:"required,response_type"`
	Options      []string `json:"options"`
}

// CreateQuestion adds a question to a session and tells its attendees.
func (s *Service) CreateQuestion(ctx context.Context, in QuestionInput) (*models.FeedbackQuestion, error) {
	sess, err := s.sessions.GetSession(ctx, in.SessionID)
	if err != nil {
		return nil, apperror.Internal("get session", err)
	}
	if sess == nil {
		return nil, apperror.NotFound("Session not found.")
	}
	fq := &models.FeedbackQuestion{
		SessionID:    sess.ID,
		QuestionText: strings.TrimSpace(in.QuestionText),
		ResponseType: models.ResponseType(in.ResponseType),
	}
	if fq.QuestionText == "" {
		return nil, apperror.ValidationFields("invalid request", map[string]string{"question_text": "field is required"})
	}
	for _, o := range in.Options {
		if o = strings.TrimSpace(o); o != "" {
			fq.Options = append(fq.Options, o)
		}
	}
	if fq.ResponseType.IsChoice() && len(fq.Options) == 0 {
		return nil, apperror.ValidationFields("Options are required for checkbox and multiple choice questions.",
			map[string]string{"options": "required for " + in.ResponseType})
	}
	if err := s.store.CreateQuestion(ctx, fq); err != nil {
		return nil, apperror.Internal("create feedback question", err)
	}
	if s.notifier != nil {
		sid := sess.ID
		s.notifier.Announce(ctx, models.NotificationTemplate{
			Title:            "New Feedback Question",
			Message:          fmt.Sprintf("New feedback questions have been added for your session '%s'.", sess.Title()),
			URL:              fmt.Sprintf("/sessions/%d/feedback/", sess.ID),
			NotificationType: models.NotificationFeedback,
		}, models.NotificationTarget{Kind: models.TargetSession, SessionID: &sid, AttendedOnly: true})
	}
	return fq, nil
}

// Questions lists a session's questions.
func (s *Service) Questions(ctx context.Context, sessionID int64) ([]models.FeedbackQuestion, error) {
	list, err := s.store.ListQuestions(ctx, sessionID)
	if err != nil {
		return nil, apperror.Internal("list feedback questions", err)
	}
	if list == nil {
		list = []models.FeedbackQuestion{}
	}
	return list, nil
}

// ResponseInput is the body for POST /feedback/responses.
type ResponseInput struct {
	ParticipantID int64           `json:"participant" binding:"required,gt=0"`
	QuestionID    int64           `json:"question" binding:"required,gt=0"`
	Response      json.RawMessage `json:"response"`
}

// SubmitResult reports a stored answer and whether it replaced an earlier one.
type SubmitResult struct {
	*models.FeedbackResponse
	Updated bool `json:"updated"`
}

// Submit validates and stores an answer. Resubmitting the stored answer is a conflict.
func (s *Service) Submit(ctx context.Context, in ResponseInput) (*SubmitResult, error) {
	fq, err := s.store.GetQuestion(ctx, in.QuestionID)
	if err != nil {
		return nil, apperror.Internal("get feedback question", err)
	}
	if fq == nil {
		return nil, apperror.NotFound("Question not found.")
	}
	p, err := s.participants.GetParticipant(ctx, in.ParticipantID)
	if err != nil {
		return nil, apperror.Internal("get participant", err)
	}
	if p == nil {
		return nil, apperror.NotFound("Participant not found.")
	}
	answer, err := NormalizeAnswer(fq.ResponseType, in.Response)
	if err != nil {
		return nil, err
	}
	fr, updated, err := s.store.SaveResponse(ctx, p.ID, fq.ID, answer)
	if err != nil {
		return nil, apperror.Internal("save feedback response", err)
	}
	if fr == nil {
		return nil, apperror.Conflict("You have already submitted this response for this question.")
	}
	s.logger.Debug("feedback saved",
		zap.Int64("participant_id", p.ID),
		zap.Int64("question_id", fq.ID),
		zap.Bool("updated", updated),
	)
	return &SubmitResult{FeedbackResponse: fr, Updated: updated}, nil
}

// Responses lists every answer to a session's questions.
func (s *Service) Responses(ctx context.Context, sessionID int64) ([]models.FeedbackResponse, error) {
	list, err := s.store.ListResponses(ctx, sessionID)
	if err != nil {
		return nil, apperror.Internal("list feedback responses", err)
	}
	if list == nil {
		list = []models.FeedbackResponse{}
	}
	return list, nil
}
