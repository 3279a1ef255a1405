package participants

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/workshop-hub/backend/internal/auth"
	"github.com/workshop-hub/backend/internal/models"
	"github.com/workshop-hub/backend/internal/workshops"
	"github.com/workshop-hub/backend/pkg/apperror"
	"github.com/workshop-hub/backend/pkg/utils"
	"github.com/workshop-hub/backend/pkg/validator"
)

// SignupInput is a participant registration carrying a password.
type SignupInput struct {
	ParticipantInput
	Password string `json:"password"`
}

// Signup creates a participant who can sign in with NIC and password.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*models.Participant, error) {
	if strings.TrimSpace(in.NIC) == "" || in.Password == "" {
		return nil, apperror.Validation("NIC and password are required.")
	}
	existing, err := s.store.GetParticipantByNIC(ctx, in.NIC)
	if err != nil {
		return nil, apperror.Internal("get participant by nic", err)
	}
	if existing != nil {
		return nil, apperror.Conflict("User with this NIC already exists.")
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, apperror.ValidationFields(err.Error(), map[string]string{"password": err.Error()})
	}
	p := in.participant()
	p.PasswordHash = &hash
	return s.create(ctx, p)
}

// Credentials is a NIC and password pair.
type Credentials struct {
	NIC      string `json:"nic"`
	Password string `json:"password"`
}

// SigninResult is returned on successful sign in.
type SigninResult struct {
	Message       string `json:"message"`
	ParticipantID int64  `json:"participant_id"`
	Token         string `json:"token"`
}

// Signin checks NIC and password and issues a participant token.
func (s *Service) Signin(ctx context.Context, in Credentials) (*SigninResult, error) {
	nic := strings.TrimSpace(in.NIC)
	if nic == "" || in.Password == "" {
		return nil, apperror.Validation("NIC and password are required.")
	}
	p, err := s.store.GetParticipantByNIC(ctx, nic)
	if err != nil {
		return nil, apperror.Internal("get participant by nic", err)
	}
	if p == nil || p.PasswordHash == nil || !utils.CheckPassword(in.Password, *p.PasswordHash) {
		return nil, apperror.Unauthorized("Invalid credentials.")
	}
	token, err := s.tokens.Generate(p.ID, p.Email, auth.RoleParticipant)
	if err != nil {
		return nil, apperror.Internal("generate token", err)
	}
	s.logger.Info("participant signed in", zap.Int64("participant_id", p.ID))
	return &SigninResult{Message: "Sign in successful.", ParticipantID: p.ID, Token: token}, nil
}

// PasswordChange is the body for POST /accounts/change-password.
type PasswordChange struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// ChangePassword replaces a participant's password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, participantID int64, in PasswordChange) error {
	p, err := s.Get(ctx, participantID)
	if err != nil {
		return err
	}
	if p.PasswordHash == nil || !utils.CheckPassword(in.CurrentPassword, *p.PasswordHash) {
		return apperror.Validation("Current password is incorrect.")
	}
	hash, err := utils.HashPassword(in.NewPassword)
	if err != nil {
		return apperror.ValidationFields(err.Error(), map[string]string{"new_password": err.Error()})
	}
	if _, err := s.store.SetPassword(ctx, p.ID, hash); err != nil {
		return apperror.Internal("set password", err)
	}
	return nil
}

// ProfileUpdate is a partial profile edit. Absent fields are kept.
type ProfileUpdate struct {
	Name              *string        `json:"name"`
	Email             *string        `json:"email"`
	ContactNumber     *string        `json:"contact_number"`
	NIC               *string        `json:"nic"`
	District          *string        `json:"district"`
	Gender            *string        `json:"gender"`
	ParticipantTypeID *int64         `json:"participant_type_id"`
	Properties        map[string]any `json:"properties"`
}

func (u ProfileUpdate) apply(p *models.Participant) error {
	fields := map[string]string{}
	if u.Name != nil {
		if p.Name = strings.TrimSpace(*u.Name); p.Name == "" {
			fields["name"] = validator.ErrFieldRequired
		}
	}
	if u.Email != nil {
		if p.Email = strings.TrimSpace(*u.Email); !validator.IsValidEmail(p.Email) {
			fields["email"] = "must be a valid email address"
		}
	}
	if u.ContactNumber != nil {
		if p.ContactNumber = *u.ContactNumber; !validator.IsValidContact(p.ContactNumber) {
			fields["contact_number"] = "must be exactly 10 digits"
		}
	}
	if u.NIC != nil {
		if p.NIC = *u.NIC; !validator.IsValidNIC(p.NIC) {
			fields["nic"] = "must be 9 digits followed by V, or 12 digits"
		}
	}
	if u.District != nil {
		p.District = strings.TrimSpace(*u.District)
	}
	if u.Gender != nil {
		switch p.Gender = *u.Gender; p.Gender {
		case models.GenderMale, models.GenderFemale, models.GenderOther:
		default:
			fields["gender"] = "must be one of Male, Female, Other"
		}
	}
	if u.ParticipantTypeID != nil {
		p.ParticipantTypeID = u.ParticipantTypeID
	}
	if u.Properties != nil {
		p.Properties = u.Properties
	}
	if len(fields) > 0 {
		return apperror.ValidationFields("invalid request", fields)
	}
	return nil
}

// EditProfile applies a partial update to a participant.
func (s *Service) EditProfile(ctx context.Context, id int64, u ProfileUpdate) (*models.Participant, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := u.apply(p); err != nil {
		return nil, err
	}
	if err := s.checkType(ctx, p); err != nil {
		return nil, err
	}
	ok, err := s.store.UpdateParticipant(ctx, p)
	if err != nil {
		return nil, conflict("update participant", err)
	}
	if !ok {
		return nil, apperror.NotFound("Participant not found.")
	}
	return p, nil
}

// ProfileSession is a session entry in a participant profile.
type ProfileSession struct {
	ID       int64       `json:"id"`
	Title    string      `json:"title"`
	Date     models.Date `json:"date"`
	Time     string      `json:"time"`
	Location string      `json:"location"`
}

// Profile is a participant with their sessions split by time and participation.
type Profile struct {
	Participant                  *models.Participant `json:"participant"`
	RegisteredSessions           []ProfileSession    `json:"registered_sessions"`
	UpcomingSessions             []ProfileSession    `json:"upcoming_sessions"`
	RegisteredUpcomingSessions   []ProfileSession    `json:"registered_upcoming_sessions"`
	UnregisteredUpcomingSessions []ProfileSession    `json:"unregistered_upcoming_sessions"`
	PastSessions                 []ProfileSession    `json:"past_sessions"`
	RegisteredPastSessions       []ProfileSession    `json:"registered_past_sessions"`
	AttendedSessions             []ProfileSession    `json:"attended_sessions"`
	FeedbackNeededSessions       []ProfileSession    `json:"feedback_needed_sessions"`
}

func (s *Service) startsAt(sess models.Session) time.Time {
	y, m, d := sess.Date.Date()
	c := sess.Clock()
	return time.Date(y, m, d, c.Hour(), c.Minute(), c.Second(), 0, s.loc)
}

// Profile returns a participant's profile. Feedback is needed for past attended sessions with no answers yet.
func (s *Service) Profile(ctx context.Context, id int64) (*Profile, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	regs, err := s.store.Attendance(ctx, id)
	if err != nil {
		return nil, apperror.Internal("participant attendance", err)
	}
	answered, err := s.store.AnsweredSessionIDs(ctx, id)
	if err != nil {
		return nil, apperror.Internal("answered sessions", err)
	}
	sessions, err := s.sessions.ListSessions(ctx, workshops.SessionFilter{})
	if err != nil {
		return nil, apperror.Internal("list sessions", err)
	}

	attended := make(map[int64]bool, len(regs))
	for _, r := range regs {
		attended[r.SessionID] = r.Attended
	}
	hasAnswers := make(map[int64]bool, len(answered))
	for _, sid := range answered {
		hasAnswers[sid] = true
	}

	out := &Profile{
		Participant:                  p,
		RegisteredSessions:           []ProfileSession{},
		UpcomingSessions:             []ProfileSession{},
		RegisteredUpcomingSessions:   []ProfileSession{},
		UnregisteredUpcomingSessions: []ProfileSession{},
		PastSessions:                 []ProfileSession{},
		RegisteredPastSessions:       []ProfileSession{},
		AttendedSessions:             []ProfileSession{},
		FeedbackNeededSessions:       []ProfileSession{},
	}
	now := s.now().In(s.loc)
	for _, sess := range sessions {
		e := ProfileSession{ID: sess.ID, Title: sess.Title(), Date: sess.Date, Time: sess.Time, Location: sess.Location}
		didAttend, registered := attended[sess.ID]
		if registered {
			out.RegisteredSessions = append(out.RegisteredSessions, e)
		}
		if s.startsAt(sess).After(now) {
			out.UpcomingSessions = append(out.UpcomingSessions, e)
			if registered {
				out.RegisteredUpcomingSessions = append(out.RegisteredUpcomingSessions, e)
			} else {
				out.UnregisteredUpcomingSessions = append(out.UnregisteredUpcomingSessions, e)
			}
			continue
		}
		out.PastSessions = append(out.PastSessions, e)
		if registered {
			out.RegisteredPastSessions = append(out.RegisteredPastSessions, e)
		}
		if didAttend {
			out.AttendedSessions = append(out.AttendedSessions, e)
			if !hasAnswers[sess.ID] {
				out.FeedbackNeededSessions = append(out.FeedbackNeededSessions, e)
			}
		}
	}
	return out, nil
}
