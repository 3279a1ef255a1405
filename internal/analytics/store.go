package analytics

import (
	"context"
	"time"

	"github.com/workshop-hub/backend/internal/models"
)

// RegistrationRow is a registration joined with its participant's contact fields.
type RegistrationRow struct {
	ID               int64
	ParticipantID    int64
	SessionID        int64
	RegisteredOn     time.Time
	Attendance       bool
	ParticipantName  string
	ParticipantEmail string
}

// ResponseRow is a feedback response joined with its question's session and type.
type ResponseRow struct {
	ParticipantID int64
	QuestionID    int64
	SessionID     int64
	ResponseType  models.ResponseType
	Response      string
}

// SessionQuery narrows ListSessions. Zero fields do not filter.
type SessionQuery struct {
	WorkshopID  *int64
	From        *time.Time // on or after this calendar day
	To          *time.Time // on or before this calendar day
	NewestFirst bool
}

// RegistrationQuery narrows ListRegistrations. SessionIDs nil means every session.
type RegistrationQuery struct {
	SessionIDs []int64
	WorkshopID *int64
	From       *time.Time // registered_on >= From
	To         *time.Time // registered_on <= To
}

// ParticipantQuery narrows ListParticipants. Empty strings do not filter.
type ParticipantQuery struct {
	District string
	Gender   string
	TypeName string
}

// AdminCounts are the headline entity counts.
type AdminCounts struct {
	Workshops        int `json:"workshops"`
	Sessions         int `json:"sessions"`
	Participants     int `json:"participants"`
	ParticipantTypes int `json:"participant_types"`
	Trainers         int `json:"trainers"`
}

// Store is the read model the aggregation engine runs on. Single-entity getters
// return nil, nil when the row does not exist.
type Store interface {
	GetSession(ctx context.Context, id int64) (*models.Session, error)
	ListSessions(ctx context.Context, q SessionQuery) ([]models.Session, error)
	EarliestSessionDate(ctx context.Context) (*time.Time, error)
	GetWorkshop(ctx context.Context, id int64) (*models.Workshop, error)
	ListWorkshops(ctx context.Context) ([]models.Workshop, error)
	GetTrainer(ctx context.Context, id int64) (*models.Trainer, error)
	ListTrainers(ctx context.Context) ([]models.Trainer, error)
	// ListTrainerSessions returns trainer id -> assigned sessions in assignment order.
	ListTrainerSessions(ctx context.Context, trainerID *int64) (map[int64][]models.Session, error)
	ListRegistrations(ctx context.Context, q RegistrationQuery) ([]RegistrationRow, error)
	// ListResponses returns responses for questions of sessionIDs; nil means every session.
	ListResponses(ctx context.Context, sessionIDs []int64) ([]ResponseRow, error)
	ListFeedbackQuestions(ctx context.Context, sessionID int64) ([]models.FeedbackQuestion, error)
	ListParticipants(ctx context.Context, q ParticipantQuery) ([]models.Participant, error)
	ListDistrictsAndGenders(ctx context.Context) (districts, genders []string, err error)
	ListParticipantTypeNames(ctx context.Context) ([]string, error)
	CountRegistrationsByParticipant(ctx context.Context, participantIDs []int64) (map[int64]int, error)
	// FeedbackParticipantIDs returns which of participantIDs submitted any feedback.
	FeedbackParticipantIDs(ctx context.Context, participantIDs []int64) ([]int64, error)
	CountEntities(ctx context.Context) (AdminCounts, error)
	GetAdminComment(ctx context.Context, sessionID int64) (*models.AdminComment, error)
	SaveSessionStatistics(ctx context.Context, st *models.SessionStatistics) error
}
