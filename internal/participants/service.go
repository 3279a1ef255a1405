package participants

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/workshop-hub/backend/internal/models"
	"github.com/workshop-hub/backend/internal/workshops"
	"github.com/workshop-hub/backend/pkg/apperror"
	"github.com/workshop-hub/backend/pkg/database"
)

// Store is the persistence the participants service needs.
type Store interface {
	ListParticipants(ctx context.Context) ([]models.Participant, error)
	ListParticipantsByIDs(ctx context.Context, ids []int64) ([]models.Participant, error)
	GetParticipant(ctx context.Context, id int64) (*models.Participant, error)
	GetParticipantByNIC(ctx context.Context, nic string) (*models.Participant, error)
	CreateParticipant(ctx context.Context, p *models.Participant) error
	UpdateParticipant(ctx context.Context, p *models.Participant) (bool, error)
	DeleteParticipant(ctx context.Context, id int64) (bool, error)
	SetPassword(ctx context.Context, id int64, hash string) (bool, error)
	Attendance(ctx context.Context, participantID int64) ([]SessionAttendance, error)
	AnsweredSessionIDs(ctx context.Context, participantID int64) ([]int64, error)

	ListTypes(ctx context.Context) ([]models.ParticipantType, error)
	GetType(ctx context.Context, id int64) (*models.ParticipantType, error)
	CreateType(ctx context.Context, t *models.ParticipantType) error
	UpdateType(ctx context.Context, t *models.ParticipantType) (bool, error)
	DeleteType(ctx context.Context, id int64) (bool, error)
}

// Sessions lists sessions for profile views.
type Sessions interface {
	ListSessions(ctx context.Context, f workshops.SessionFilter) ([]models.Session, error)
}

// TokenIssuer signs login tokens.
type TokenIssuer interface {
	Generate(subjectID int64, email, role string) (string, error)
}

// SessionAttendance is one registration of a participant with its session details.
type SessionAttendance struct {
	SessionID     int64
	WorkshopTitle string
	Date          models.Date
	Time          string
	Location      string
	Attended      bool
}

// Service implements participants, participant types and participant accounts.
type Service struct {
	store    Store
	sessions Sessions
	tokens   TokenIssuer
	loc      *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewService creates a participants service. loc decides when a session is in the past.
func NewService(store Store, sessions Sessions, tokens TokenIssuer, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{store: store, sessions: sessions, tokens: tokens, loc: loc, now: time.Now, logger: logger}
}

// conflict maps unique violations on participant columns to conflicts.
func conflict(op string, err error) error {
	if name, ok := database.UniqueViolation(err); ok {
		switch {
		case strings.Contains(name, "email"):
			return apperror.Conflict("A participant with this email already exists.")
		case strings.Contains(name, "nic"):
			return apperror.Conflict("A participant with this NIC already exists.")
		case strings.Contains(name, "name"):
			return apperror.Conflict("A participant type with this name already exists.")
		}
		return apperror.Conflict("Duplicate value.")
	}
	return apperror.Internal(op, err)
}

// ParticipantInput is the body for registering a participant.
type ParticipantInput struct {
	Name              string         `json:"name" binding:"required"`
	Email             string         `json:"email" binding:"required,email"`
	ContactNumber     string         `json:"contact_number" binding:"required,contact"`
	NIC               string         `json:"nic" binding:"required,nic"`
	District          string         `json:"district" binding:"required"`
	Gender            string         `json:"gender" binding:"required,gender"`
	ParticipantTypeID *int64         `json:"participant_type_id" binding:"required"`
	Properties        map[string]any `json:"properties"`
}

func (in ParticipantInput) participant() *models.Participant {
	props := in.Properties
	if props == nil {
		props = map[string]any{}
	}
	return &models.Participant{
		Name:              strings.TrimSpace(in.Name),
		Email:             strings.TrimSpace(in.Email),
		ContactNumber:     in.ContactNumber,
		NIC:               in.NIC,
		District:          strings.TrimSpace(in.District),
		Gender:            in.Gender,
		ParticipantTypeID: in.ParticipantTypeID,
		Properties:        props,
	}
}

// checkType loads the participant's type and validates its properties against it.
func (s *Service) checkType(ctx context.Context, p *models.Participant) error {
	if p.ParticipantTypeID == nil {
		return nil
	}
	t, err := s.store.GetType(ctx, *p.ParticipantTypeID)
	if err != nil {
		return apperror.Internal("get participant type", err)
	}
	if t == nil {
		return apperror.ValidationFields("invalid request", map[string]string{"participant_type_id": "participant type not found"})
	}
	p.ParticipantType = t.Name
	return CheckProperties(*t, p.Properties)
}

// CheckProperties validates props against the type's schema.
func CheckProperties(t models.ParticipantType, props map[string]any) error {
	missing, mismatched := t.Properties.Check(props)
	if len(missing) > 0 {
		msg := fmt.Sprintf("Missing required fields for %s: %s", t.Name, strings.Join(missing, ", "))
		return apperror.ValidationFields(msg, map[string]string{"properties": msg})
	}
	if len(mismatched) > 0 {
		fields := make(map[string]string, len(mismatched))
		for k, v := range mismatched {
			fields["properties."+k] = v
		}
		return apperror.ValidationFields("invalid properties", fields)
	}
	return nil
}

func nonNilParticipants(list []models.Participant) []models.Participant {
	if list == nil {
		return []models.Participant{}
	}
	return list
}

// List returns every participant.
func (s *Service) List(ctx context.Context) ([]models.Participant, error) {
	list, err := s.store.ListParticipants(ctx)
	if err != nil {
		return nil, apperror.Internal("list participants", err)
	}
	return nonNilParticipants(list), nil
}

// ByIDs returns the participants among ids that exist.
func (s *Service) ByIDs(ctx context.Context, ids []int64) ([]models.Participant, error) {
	if len(ids) == 0 {
		return []models.Participant{}, nil
	}
	list, err := s.store.ListParticipantsByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.Internal("list participants by ids", err)
	}
	return nonNilParticipants(list), nil
}

// Get returns a participant by id.
func (s *Service) Get(ctx context.Context, id int64) (*models.Participant, error) {
	p, err := s.store.GetParticipant(ctx, id)
	if err != nil {
		return nil, apperror.Internal("get participant", err)
	}
	if p == nil {
		return nil, apperror.NotFound("Participant not found.")
	}
	return p, nil
}

// ByNIC returns a participant by national id.
func (s *Service) ByNIC(ctx context.Context, nic string) (*models.Participant, error) {
	p, err := s.store.GetParticipantByNIC(ctx, strings.TrimSpace(nic))
	if err != nil {
		return nil, apperror.Internal("get participant by nic", err)
	}
	if p == nil {
		return nil, apperror.NotFound("Participant not found.")
	}
	return p, nil
}

// Create registers a participant.
func (s *Service) Create(ctx context.Context, in ParticipantInput) (*models.Participant, error) {
	return s.create(ctx, in.participant())
}

func (s *Service) create(ctx context.Context, p *models.Participant) (*models.Participant, error) {
	if err := s.checkType(ctx, p); err != nil {
		return nil, err
	}
	if err := s.store.CreateParticipant(ctx, p); err != nil {
		return nil, conflict("create participant", err)
	}
	s.logger.Info("participant created", zap.Int64("participant_id", p.ID))
	return p, nil
}

// Delete removes a participant.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ok, err := s.store.DeleteParticipant(ctx, id)
	if err != nil {
		return apperror.Internal("delete participant", err)
	}
	if !ok {
		return apperror.NotFound("Participant not found.")
	}
	return nil
}

// SessionEntry is one registered session in a participant's sessions summary.
type SessionEntry struct {
	ID            int64       `json:"id"`
	WorkshopTitle string      `json:"workshop_title"`
	Date          models.Date `json:"date"`
	Time          string      `json:"time"`
	Attended      bool        `json:"attended"`
}

// SessionsInfo summarises a participant's registrations.
type SessionsInfo struct {
	RegisteredCount  int            `json:"registered_count"`
	AttendedCount    int            `json:"attended_count"`
	Sessions         []SessionEntry `json:"sessions"`
	AttendedSessions []SessionEntry `json:"attended_sessions"`
}

// Sessions returns the registered and attended sessions of a participant.
func (s *Service) Sessions(ctx context.Context, participantID int64) (*SessionsInfo, error) {
	rows, err := s.store.Attendance(ctx, participantID)
	if err != nil {
		return nil, apperror.Internal("participant attendance", err)
	}
	out := &SessionsInfo{Sessions: []SessionEntry{}, AttendedSessions: []SessionEntry{}}
	for _, r := range rows {
		e := SessionEntry{ID: r.SessionID, WorkshopTitle: r.WorkshopTitle, Date: r.Date, Time: r.Time, Attended: r.Attended}
		out.Sessions = append(out.Sessions, e)
		if r.Attended {
			out.AttendedSessions = append(out.AttendedSessions, e)
		}
	}
	out.RegisteredCount = len(out.Sessions)
	out.AttendedCount = len(out.AttendedSessions)
	return out, nil
}

// TypeInput is the body for creating or replacing a participant type.
type TypeInput struct {
	Name        string                `json:"name" binding:"required"`
	Description string                `json:"description"`
	Properties  models.PropertySchema `json:"properties"`
}

func (in TypeInput) participantType(id int64) (*models.ParticipantType, error) {
	t := &models.ParticipantType{ID: id, Name: strings.TrimSpace(in.Name), Description: in.Description, Properties: in.Properties}
	if t.Name == "" {
		return nil, apperror.ValidationFields("invalid request", map[string]string{"name": "field is required"})
	}
	if t.Properties == nil {
		t.Properties = models.PropertySchema{}
	}
	return t, nil
}

// Types returns every participant type.
func (s *Service) Types(ctx context.Context) ([]models.ParticipantType, error) {
	list, err := s.store.ListTypes(ctx)
	if err != nil {
		return nil, apperror.Internal("list participant types", err)
	}
	if list == nil {
		list = []models.ParticipantType{}
	}
	return list, nil
}

// CreateType stores a participant type.
func (s *Service) CreateType(ctx context.Context, in TypeInput) (*models.ParticipantType, error) {
	t, err := in.participantType(0)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateType(ctx, t); err != nil {
		return nil, conflict("create participant type", err)
	}
	return t, nil
}

// UpdateType replaces a participant type.
func (s *Service) UpdateType(ctx context.Context, id int64, in TypeInput) (*models.ParticipantType, error) {
	t, err := in.participantType(id)
	if err != nil {
		return nil, err
	}
	ok, err := s.store.UpdateType(ctx, t)
	if err != nil {
		return nil, conflict("update participant type", err)
	}
	if !ok {
		return nil, apperror.NotFound("Participant type not found.")
	}
	return t, nil
}

// DeleteType removes a participant type.
func (s *Service) DeleteType(ctx context.Context, id int64) error {
	ok, err := s.store.DeleteType(ctx, id)
	if err != nil {
		return apperror.Internal("delete participant type", err)
	}
	if !ok {
		return apperror.NotFound("Participant type not found.")
	}
	return nil
}

// RequiredFields is the properties declaration of a participant type.
type RequiredFields struct {
	TypeID         int64                 `json:"type_id"`
	TypeName       string                `json:"type_name"`
	RequiredFields models.PropertySchema `json:"required_fields"`
}

// TypeRequiredFields returns what participants of a type must supply.
func (s *Service) TypeRequiredFields(ctx context.Context, id int64) (*RequiredFields, error) {
	t, err := s.store.GetType(ctx, id)
	if err != nil {
		return nil, apperror.Internal("get participant type", err)
	}
	if t == nil {
		return nil, apperror.NotFound("Participant type not found.")
	}
	return &RequiredFields{TypeID: t.ID, TypeName: t.Name, RequiredFields: t.Properties}, nil
}
