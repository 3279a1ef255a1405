package registrations

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/workshop-hub/backend/internal/models"
	"github.com/workshop-hub/backend/internal/workshops"
	"github.com/workshop-hub/backend/pkg/apperror"
)

// Store is the registration persistence the service needs.
type Store interface {
	Create(ctx context.Context, participantID, sessionID int64) (*models.Registration, error)
	Cancel(ctx context.Context, participantID, sessionID int64) (bool, error)
	MarkAttended(ctx context.Context, participantID, sessionID int64) (models.AttendanceStatus, error)
	MarkAttendedByID(ctx context.Context, registrationID int64) (models.AttendanceStatus, error)
	SessionIDs(ctx context.Context, participantID int64, attendedOnly bool) ([]int64, error)
	ParticipantResponses(ctx context.Context, participantID int64) ([]SessionResponse, error)
	Roster(ctx context.Context, sessionID int64) ([]Registrant, error)
}

// Sessions looks up sessions.
type Sessions interface {
	GetSession(ctx context.Context, id int64) (*models.Session, error)
	GetSessionByToken(ctx context.Context, token uuid.UUID) (*models.Session, error)
	ListSessions(ctx context.Context, f workshops.SessionFilter) ([]models.Session, error)
}

// Viewer renders sessions for the API.
type Viewer interface {
	Views(ctx context.Context, sessions []models.Session, withMaterials bool) ([]workshops.SessionView, error)
}

// Participants looks up participants.
type Participants interface {
	GetParticipant(ctx context.Context, id int64) (*models.Participant, error)
	GetParticipantByNIC(ctx context.Context, nic string) (*models.Participant, error)
}

// SessionResponse is a feedback answer tagged with its session.
type SessionResponse struct {
	SessionID int64
	Response  models.FeedbackResponse
}

// Service implements registration and attendance.
type Service struct {
	store        Store
	sessions     Sessions
	viewer       Viewer
	participants Participants
	logger       *zap.Logger
}

// NewService creates a registrations service.
func NewService(store Store, sessions Sessions, viewer Viewer, participants Participants, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, sessions: sessions, viewer: viewer, participants: participants, logger: logger}
}

// Attendance messages.
const (
	msgAttendanceMarked  = "Attendance marked successfully."
	msgAlreadyMarked     = "Attendance has already been marked for this session."
	msgNotRegistered     = "You are not registered for this session."
	msgInvalidToken      = "Invalid session token."
	msgInvalidRegistrant = "Invalid participant ID."
)

// AttendanceResult is the outcome of a check-in.
type AttendanceResult struct {
	Status  models.AttendanceStatus `json:"status"`
	Message string                  `json:"message"`
}

func resultOf(st models.AttendanceStatus) *AttendanceResult {
	switch st {
	case models.AttendanceSuccess:
		return &AttendanceResult{Status: st, Message: msgAttendanceMarked}
	case models.AttendanceAlreadyMarked:
		return &AttendanceResult{Status: st, Message: msgAlreadyMarked}
	default:
		return &AttendanceResult{Status: models.AttendanceNotRegistered, Message: msgNotRegistered}
	}
}

func (s *Service) participant(ctx context.Context, id int64, notFound string) (*models.Participant, error) {
	p, err := s.participants.GetParticipant(ctx, id)
	if err != nil {
		return nil, apperror.Internal("get participant", err)
	}
	if p == nil {
		return nil, apperror.NotFound(notFound)
	}
	return p, nil
}

func (s *Service) session(ctx context.Context, id int64) (*models.Session, error) {
	sess, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return nil, apperror.Internal("get session", err)
	}
	if sess == nil {
		return nil, apperror.NotFound("Session not found.")
	}
	return sess, nil
}

func (s *Service) sessionByToken(ctx context.Context, token string) (*models.Session, error) {
	tok, err := uuid.Parse(strings.TrimSpace(token))
	if err != nil {
		return nil, apperror.NotFound(msgInvalidToken)
	}
	sess, err := s.sessions.GetSessionByToken(ctx, tok)
	if err != nil {
		return nil, apperror.Internal("get session by token", err)
	}
	if sess == nil {
		return nil, apperror.NotFound(msgInvalidToken)
	}
	return sess, nil
}

// Register seats a participant in a session. A second registration for the same pair is a conflict.
func (s *Service) Register(ctx context.Context, participantID, sessionID int64) (*models.Registration, error) {
	if _, err := s.participant(ctx, participantID, "Participant not found."); err != nil {
		return nil, err
	}
	if _, err := s.session(ctx, sessionID); err != nil {
		return nil, err
	}
	reg, err := s.store.Create(ctx, participantID, sessionID)
	if err != nil {
		return nil, apperror.Internal("create registration", err)
	}
	if reg == nil {
		return nil, apperror.Conflict("Participant is already registered for this session.")
	}
	s.logger.Info("participant registered",
		zap.Int64("participant_id", participantID),
		zap.Int64("session_id", sessionID),
	)
	return reg, nil
}

// Cancel removes a registration.
func (s *Service) Cancel(ctx context.Context, participantID, sessionID int64) error {
	ok, err := s.store.Cancel(ctx, participantID, sessionID)
	if err != nil {
		return apperror.Internal("cancel registration", err)
	}
	if !ok {
		return apperror.NotFound("No registration found for this participant and session.")
	}
	return nil
}

// MarkByID records attendance for a registration id.
func (s *Service) MarkByID(ctx context.Context, registrationID int64) (*AttendanceResult, error) {
	st, err := s.store.MarkAttendedByID(ctx, registrationID)
	if err != nil {
		return nil, apperror.Internal("mark attendance", err)
	}
	if st == models.AttendanceNotRegistered {
		return nil, apperror.NotFound("Invalid registration ID.")
	}
	return resultOf(st), nil
}

// MarkByNIC records attendance for the participant holding nic in the session identified by token.
func (s *Service) MarkByNIC(ctx context.Context, token, nic string) (*AttendanceResult, error) {
	nic = strings.TrimSpace(nic)
	if nic == "" {
		return nil, apperror.ValidationFields("NIC is required.", map[string]string{"nic": "required"})
	}
	sess, err := s.sessionByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	p, err := s.participants.GetParticipantByNIC(ctx, nic)
	if err != nil {
		return nil, apperror.Internal("get participant by nic", err)
	}
	if p == nil {
		return nil, apperror.NotFound("Participant not found.")
	}
	return s.mark(ctx, p.ID, sess.ID)
}

// MarkByQR records attendance from a scanned session token.
func (s *Service) MarkByQR(ctx context.Context, token string, participantID int64) (*AttendanceResult, error) {
	sess, err := s.sessionByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if _, err := s.participant(ctx, participantID, msgInvalidRegistrant); err != nil {
		return nil, err
	}
	return s.mark(ctx, participantID, sess.ID)
}

func (s *Service) mark(ctx context.Context, participantID, sessionID int64) (*AttendanceResult, error) {
	st, err := s.store.MarkAttended(ctx, participantID, sessionID)
	if err != nil {
		return nil, apperror.Internal("mark attendance", err)
	}
	if st == models.AttendanceSuccess {
		s.logger.Info("attendance marked",
			zap.Int64("participant_id", participantID),
			zap.Int64("session_id", sessionID),
		)
	}
	return resultOf(st), nil
}

func (s *Service) participantSessions(ctx context.Context, participantID int64, attendedOnly bool) ([]models.Session, error) {
	ids, err := s.store.SessionIDs(ctx, participantID, attendedOnly)
	if err != nil {
		return nil, apperror.Internal("list registrations", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	sessions, err := s.sessions.ListSessions(ctx, workshops.SessionFilter{IDs: ids})
	if err != nil {
		return nil, apperror.Internal("list sessions", err)
	}
	return sessions, nil
}

// RegisteredSessions returns the sessions a participant registered for.
func (s *Service) RegisteredSessions(ctx context.Context, participantID int64) ([]workshops.SessionView, error) {
	sessions, err := s.participantSessions(ctx, participantID, false)
	if err != nil {
		return nil, err
	}
	return s.viewer.Views(ctx, sessions, false)
}

// AttendedSessions returns the sessions a participant attended, with their materials.
func (s *Service) AttendedSessions(ctx context.Context, participantID int64) ([]workshops.SessionView, error) {
	sessions, err := s.participantSessions(ctx, participantID, true)
	if err != nil {
		return nil, err
	}
	return s.viewer.Views(ctx, sessions, true)
}

// FeedbackSession is a session together with the participant's answers for it.
type FeedbackSession struct {
	workshops.SessionView
	FeedbackResponses []models.FeedbackResponse `json:"feedback_responses"`
}

// FeedbackSessions returns the sessions a participant has answered feedback for.
func (s *Service) FeedbackSessions(ctx context.Context, participantID int64) ([]FeedbackSession, error) {
	responses, err := s.store.ParticipantResponses(ctx, participantID)
	if err != nil {
		return nil, apperror.Internal("list feedback responses", err)
	}
	out := []FeedbackSession{}
	if len(responses) == 0 {
		return out, nil
	}
	bySession := map[int64][]models.FeedbackResponse{}
	var ids []int64
	for _, r := range responses {
		if _, seen := bySession[r.SessionID]; !seen {
			ids = append(ids, r.SessionID)
		}
		bySession[r.SessionID] = append(bySession[r.SessionID], r.Response)
	}
	sessions, err := s.sessions.ListSessions(ctx, workshops.SessionFilter{IDs: ids})
	if err != nil {
		return nil, apperror.Internal("list sessions", err)
	}
	views, err := s.viewer.Views(ctx, sessions, false)
	if err != nil {
		return nil, err
	}
	for _, v := range views {
		out = append(out, FeedbackSession{SessionView: v, FeedbackResponses: bySession[v.ID]})
	}
	return out, nil
}

// SessionCounts summarises who registered for and attended a session.
type SessionCounts struct {
	RegisteredCount        int                        `json:"registered_count"`
	RegisteredParticipants []workshops.ParticipantRef `json:"registered_participants"`
	AttendedCount          int                        `json:"attended_count"`
	AttendedParticipants   []workshops.ParticipantRef `json:"attended_participants"`
}

// Counts returns the registration and attendance roster of a session.
func (s *Service) Counts(ctx context.Context, sessionID int64) (*SessionCounts, error) {
	if _, err := s.session(ctx, sessionID); err != nil {
		return nil, err
	}
	roster, err := s.store.Roster(ctx, sessionID)
	if err != nil {
		return nil, apperror.Internal("session roster", err)
	}
	out := &SessionCounts{
		RegisteredParticipants: []workshops.ParticipantRef{},
		AttendedParticipants:   []workshops.ParticipantRef{},
	}
	for _, r := range roster {
		out.RegisteredParticipants = append(out.RegisteredParticipants, r.Participant)
		if r.Attended {
			out.AttendedParticipants = append(out.AttendedParticipants, r.Participant)
		}
	}
	out.RegisteredCount = len(out.RegisteredParticipants)
	out.AttendedCount = len(out.AttendedParticipants)
	return out, nil
}
