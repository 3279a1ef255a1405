package workshops

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/workshop-hub/backend/internal/models"
	"github.com/workshop-hub/backend/pkg/apperror"
)

// SessionFilter narrows ListSessions. IDs nil means no id filter.
type SessionFilter struct {
	WorkshopID *int64
	IDs        []int64
}

// TrainerRef is the trainer summary embedded in session views.
type TrainerRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ParticipantRef is the participant summary embedded in workshop details.
type ParticipantRef struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	ContactNumber string `json:"contact_number"`
	NIC           string `json:"nic"`
	District      string `json:"district"`
	Gender        string `json:"gender"`
}

// Store is the persistence the workshop service needs.
type Store interface {
	ListWorkshops(ctx context.Context) ([]models.Workshop, error)
	GetWorkshop(ctx context.Context, id int64) (*models.Workshop, error)
	CreateWorkshop(ctx context.Context, w *models.Workshop) error
	UpdateWorkshop(ctx context.Context, w *models.Workshop) (bool, error)
	DeleteWorkshop(ctx context.Context, id int64) (bool, error)
	ListSessions(ctx context.Context, f SessionFilter) ([]models.Session, error)
	GetSession(ctx context.Context, id int64) (*models.Session, error)
	CreateSession(ctx context.Context, s *models.Session) error
	UpdateSession(ctx context.Context, s *models.Session) (bool, error)
	DeleteSession(ctx context.Context, id int64) (bool, error)
	TransitionStatus(ctx context.Context, id int64, to models.SessionStatus, allow func(from models.SessionStatus) error) (*models.Session, error)
	SessionTrainers(ctx context.Context, sessionIDs []int64) (map[int64][]TrainerRef, error)
	SessionMaterials(ctx context.Context, sessionIDs []int64) (map[int64][]models.SessionMaterial, error)
	SessionEmails(ctx context.Context, sessionID int64) ([]string, error)
	ParticipantEmails(ctx context.Context) ([]string, error)
	WorkshopParticipants(ctx context.Context, workshopID int64) ([]ParticipantRef, error)
}

// Announcer publishes system notifications.
type Announcer interface {
	Announce(ctx context.Context, t models.NotificationTemplate, target models.NotificationTarget)
}

// Service implements workshop and session management.
type Service struct {
	store       Store
	notifier    Announcer
	frontendURL string
	logger      *zap.Logger
}

// NewService creates a workshop service. frontendURL prefixes session attendance links.
func NewService(store Store, notifier Announcer, frontendURL string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, notifier: notifier, frontendURL: strings.TrimRight(frontendURL, "/"), logger: logger}
}

func (s *Service) announce(ctx context.Context, t models.NotificationTemplate) {
	if s.notifier == nil {
		return
	}
	s.notifier.Announce(ctx, t, models.NotificationTarget{Kind: models.TargetAll})
}

// AttendanceURL is the participant-facing check-in link of a session.
func (s *Service) AttendanceURL(token uuid.UUID) string {
	return s.frontendURL + "/session/" + token.String() + "/attendance"
}

// WorkshopInput is the body for creating or replacing a workshop.
type WorkshopInput struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

// ListWorkshops returns all workshops.
func (s *Service) ListWorkshops(ctx context.Context) ([]models.Workshop, error) {
	list, err := s.store.ListWorkshops(ctx)
	if err != nil {
		return nil, apperror.Internal("list workshops", err)
	}
	if list == nil {
		list = []models.Workshop{}
	}
	return list, nil
}

// CreateWorkshop stores a workshop and tells every participant about it.
func (s *Service) CreateWorkshop(ctx context.Context, in WorkshopInput) (*models.Workshop, error) {
	w := &models.Workshop{Title: strings.TrimSpace(in.Title), Description: in.Description}
	if w.Title == "" {
		return nil, apperror.ValidationFields("invalid request", map[string]string{"title": "field is required"})
	}
	if err := s.store.CreateWorkshop(ctx, w); err != nil {
		return nil, apperror.Internal("create workshop", err)
	}
	s.announce(ctx, models.NotificationTemplate{
		Title:            "New Workshop Added",
		Message:          fmt.Sprintf("A new workshop '%s' has been added.", w.Title),
		URL:              fmt.Sprintf("/workshops/%d/", w.ID),
		NotificationType: models.NotificationWorkshop,
	})
	return w, nil
}

// UpdateWorkshop replaces a workshop's title and description.
func (s *Service) UpdateWorkshop(ctx context.Context, id int64, in WorkshopInput) (*models.Workshop, error) {
	w := &models.Workshop{ID: id, Title: strings.TrimSpace(in.Title), Description: in.Description}
	if w.Title == "" {
		return nil, apperror.ValidationFields("invalid request", map[string]string{"title": "field is required"})
	}
	ok, err := s.store.UpdateWorkshop(ctx, w)
	if err != nil {
		return nil, apperror.Internal("update workshop", err)
	}
	if !ok {
		return nil, apperror.NotFound("Workshop not found")
	}
	return w, nil
}

// DeleteWorkshop removes a workshop with its sessions.
func (s *Service) DeleteWorkshop(ctx context.Context, id int64) error {
	ok, err := s.store.DeleteWorkshop(ctx, id)
	if err != nil {
		return apperror.Internal("delete workshop", err)
	}
	if !ok {
		return apperror.NotFound("Workshop not found")
	}
	return nil
}

// SessionBrief is a session row inside workshop details.
type SessionBrief struct {
	ID             int64                `json:"id"`
	Date           models.Date          `json:"date"`
	Time           string               `json:"time"`
	Location       string               `json:"location"`
	TargetAudience string               `json:"target_audience"`
	Status         models.SessionStatus `json:"status"`
}

// WorkshopDetails is a workshop with its sessions and registrants.
type WorkshopDetails struct {
	ID           int64            `json:"id"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	Sessions     []SessionBrief   `json:"sessions"`
	Participants []ParticipantRef `json:"participants"`
}

// WorkshopDetails returns a workshop with sessions and one participant entry per registration.
func (s *Service) WorkshopDetails(ctx context.Context, id int64) (*WorkshopDetails, error) {
	w, err := s.store.GetWorkshop(ctx, id)
	if err != nil {
		return nil, apperror.Internal("get workshop", err)
	}
	if w == nil {
		return nil, apperror.NotFound("Workshop not found")
	}
	sessions, err := s.store.ListSessions(ctx, SessionFilter{WorkshopID: &id})
	if err != nil {
		return nil, apperror.Internal("list workshop sessions", err)
	}
	people, err := s.store.WorkshopParticipants(ctx, id)
	if err != nil {
		return nil, apperror.Internal("list workshop participants", err)
	}
	out := &WorkshopDetails{
		ID:           w.ID,
		Title:        w.Title,
		Description:  w.Description,
		Sessions:     make([]SessionBrief, 0, len(sessions)),
		Participants: people,
	}
	if out.Participants == nil {
		out.Participants = []ParticipantRef{}
	}
	for _, sess := range sessions {
		out.Sessions = append(out.Sessions, SessionBrief{
			ID:             sess.ID,
			Date:           sess.Date,
			Time:           sess.Time,
			Location:       sess.Location,
			TargetAudience: sess.TargetAudience,
			Status:         sess.Status,
		})
	}
	return out, nil
}

// SessionView is the full session representation served by the API.
type SessionView struct {
	ID             int64                    `json:"id"`
	Workshop       models.Workshop          `json:"workshop"`
	WorkshopID     int64                    `json:"workshop_id"`
	Date           models.Date              `json:"date"`
	Time           string                   `json:"time"`
	FormattedDate  string                   `json:"formatted_date"`
	FormattedTime  string                   `json:"formatted_time"`
	Status         models.SessionStatus     `json:"status"`
	Location       string                   `json:"location"`
	TargetAudience string                   `json:"target_audience"`
	Trainers       []TrainerRef             `json:"trainers"`
	Token          uuid.UUID                `json:"token"`
	AttendanceURL  string                   `json:"attendance_url"`
	Materials      []models.SessionMaterial `json:"materials,omitempty"`
}

// Views decorates sessions with their workshop, trainers and, optionally, materials.
func (s *Service) Views(ctx context.Context, sessions []models.Session, withMaterials bool) ([]SessionView, error) {
	out := make([]SessionView, 0, len(sessions))
	if len(sessions) == 0 {
		return out, nil
	}
	ids := make([]int64, len(sessions))
	for i, sess := range sessions {
		ids[i] = sess.ID
	}
	workshops, err := s.store.ListWorkshops(ctx)
	if err != nil {
		return nil, apperror.Internal("list workshops", err)
	}
	byID := make(map[int64]models.Workshop, len(workshops))
	for _, w := range workshops {
		byID[w.ID] = w
	}
	trainers, err := s.store.SessionTrainers(ctx, ids)
	if err != nil {
		return nil, apperror.Internal("list session trainers", err)
	}
	var materials map[int64][]models.SessionMaterial
	if withMaterials {
		if materials, err = s.store.SessionMaterials(ctx, ids); err != nil {
			return nil, apperror.Internal("list session materials", err)
		}
	}
	for _, sess := range sessions {
		v := SessionView{
			ID:             sess.ID,
			Workshop:       byID[sess.WorkshopID],
			WorkshopID:     sess.WorkshopID,
			Date:           sess.Date,
			Time:           sess.Time,
			FormattedDate:  sess.FormattedDate(),
			FormattedTime:  sess.FormattedTime(),
			Status:         sess.Status,
			Location:       sess.Location,
			TargetAudience: sess.TargetAudience,
			Trainers:       trainers[sess.ID],
			Token:          sess.Token,
			AttendanceURL:  s.AttendanceURL(sess.Token),
		}
		if v.Trainers == nil {
			v.Trainers = []TrainerRef{}
		}
		if withMaterials {
			v.Materials = materials[sess.ID]
			if v.Materials == nil {
				v.Materials = []models.SessionMaterial{}
			}
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Service) viewsOf(ctx context.Context, f SessionFilter) ([]SessionView, error) {
	if f.IDs != nil && len(f.IDs) == 0 {
		return []SessionView{}, nil
	}
	sessions, err := s.store.ListSessions(ctx, f)
	if err != nil {
		return nil, apperror.Internal("list sessions", err)
	}
	return s.Views(ctx, sessions, true)
}

// ListSessions returns every session.
func (s *Service) ListSessions(ctx context.Context) ([]SessionView, error) {
	return s.viewsOf(ctx, SessionFilter{})
}

// SessionsByWorkshop returns a workshop's sessions. An unknown workshop yields an empty list.
func (s *Service) SessionsByWorkshop(ctx context.Context, workshopID int64) ([]SessionView, error) {
	return s.viewsOf(ctx, SessionFilter{WorkshopID: &workshopID})
}

// SessionsByIDs returns the sessions among ids that exist.
func (s *Service) SessionsByIDs(ctx context.Context, ids []int64) ([]SessionView, error) {
	if ids == nil {
		ids = []int64{}
	}
	return s.viewsOf(ctx, SessionFilter{IDs: ids})
}

func (s *Service) session(ctx context.Context, id int64) (*models.Session, error) {
	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		return nil, apperror.Internal("get session", err)
	}
	if sess == nil {
		return nil, apperror.NotFound("Session not found")
	}
	return sess, nil
}

// Session returns one session view.
func (s *Service) Session(ctx context.Context, id int64) (*SessionView, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.Views(ctx, []models.Session{*sess}, true)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// SessionInput is the body for creating or rescheduling a session.
type SessionInput struct {
	WorkshopID     int64  `json:"workshop_id" binding:"required,gt=0"`
	Date           string `json:"date" binding:"required"`
	Time           string `json:"time" binding:"required"`
	Location       string `json:"location" binding:"required"`
	TargetAudience string `json:"target_audience" binding:"required"`
}

func (s *Service) sessionFrom(ctx context.Context, in SessionInput) (*models.Session, error) {
	fields := map[string]string{}
	date, err := models.ParseDate(in.Date)
	if err != nil {
		fields["date"] = "must be YYYY-MM-DD"
	}
	clock, err := models.ParseClock(in.Time)
	if err != nil {
		fields["time"] = "must be HH:MM or HH:MM:SS"
	}
	if len(fields) > 0 {
		return nil, apperror.ValidationFields("invalid request", fields)
	}
	w, err := s.store.GetWorkshop(ctx, in.WorkshopID)
	if err != nil {
		return nil, apperror.Internal("get workshop", err)
	}
	if w == nil {
		return nil, apperror.ValidationFields("invalid request", map[string]string{"workshop_id": "workshop does not exist"})
	}
	return &models.Session{
		WorkshopID:     w.ID,
		WorkshopTitle:  w.Title,
		Date:           date,
		Time:           clock,
		Location:       strings.TrimSpace(in.Location),
		TargetAudience: strings.TrimSpace(in.TargetAudience),
	}, nil
}

// CreateSession schedules a session with a fresh check-in token and tells every participant.
func (s *Service) CreateSession(ctx context.Context, in SessionInput) (*SessionView, error) {
	sess, err := s.sessionFrom(ctx, in)
	if err != nil {
		return nil, err
	}
	sess.Token = uuid.New()
	sess.Status = models.StatusUpcoming
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, apperror.Internal("create session", err)
	}
	s.announce(ctx, models.NotificationTemplate{
		Title:            "New Session Added",
		Message:          fmt.Sprintf("A new session '%s' has been added.", sess.Title()),
		URL:              fmt.Sprintf("/workshops/sessions/%d/", sess.ID),
		NotificationType: models.NotificationSession,
	})
	return s.Session(ctx, sess.ID)
}

// UpdateSession reschedules a session. Status changes go through UpdateStatus.
func (s *Service) UpdateSession(ctx context.Context, id int64, in SessionInput) (*SessionView, error) {
	sess, err := s.sessionFrom(ctx, in)
	if err != nil {
		return nil, err
	}
	sess.ID = id
	ok, err := s.store.UpdateSession(ctx, sess)
	if err != nil {
		return nil, apperror.Internal("update session", err)
	}
	if !ok {
		return nil, apperror.NotFound("Session not found")
	}
	return s.Session(ctx, id)
}

// DeleteSession removes a session.
func (s *Service) DeleteSession(ctx context.Context, id int64) error {
	ok, err := s.store.DeleteSession(ctx, id)
	if err != nil {
		return apperror.Internal("delete session", err)
	}
	if !ok {
		return apperror.NotFound("Session not found")
	}
	return nil
}

// UpdateStatus moves a session along its lifecycle.
func (s *Service) UpdateStatus(ctx context.Context, id int64, to models.SessionStatus) (*SessionView, error) {
	sess, err := s.store.TransitionStatus(ctx, id, to, func(from models.SessionStatus) error {
		if !CanTransition(from, to) {
			return apperror.Conflict(fmt.Sprintf("Cannot change session status from %s to %s.", from, to))
		}
		return nil
	})
	if err != nil {
		if apperror.KindOf(err) != apperror.KindInternal {
			return nil, err
		}
		return nil, apperror.Internal("update session status", err)
	}
	if sess == nil {
		return nil, apperror.NotFound("Session not found")
	}
	s.logger.Info("session status changed", zap.Int64("session_id", id), zap.String("status", string(sess.Status)))
	return s.Session(ctx, id)
}

// SessionEmails returns the registrant emails of a session.
func (s *Service) SessionEmails(ctx context.Context, id int64) ([]string, error) {
	if _, err := s.session(ctx, id); err != nil {
		return nil, err
	}
	emails, err := s.store.SessionEmails(ctx, id)
	if err != nil {
		return nil, apperror.Internal("list session emails", err)
	}
	return emails, nil
}

// ParticipantEmails returns all participant emails.
func (s *Service) ParticipantEmails(ctx context.Context) ([]string, error) {
	emails, err := s.store.ParticipantEmails(ctx)
	if err != nil {
		return nil, apperror.Internal("list participant emails", err)
	}
	return emails, nil
}
