package trainers

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/workshop-hub/backend/internal/auth"
	"github.com/workshop-hub/backend/internal/models"
	"github.com/workshop-hub/backend/internal/workshops"
	"github.com/workshop-hub/backend/pkg/apperror"
	"github.com/workshop-hub/backend/pkg/database"
	"github.com/workshop-hub/backend/pkg/utils"
)

// Store is the persistence the trainers service needs.
type Store interface {
	ListTrainers(ctx context.Context) ([]models.Trainer, error)
	GetTrainer(ctx context.Context, id int64) (*models.Trainer, error)
	CreateTrainer(ctx context.Context, t *models.Trainer) error
	UpdateTrainer(ctx context.Context, t *models.Trainer) (bool, error)
	DeleteTrainer(ctx context.Context, id int64) (bool, error)
	AssignedSessionIDs(ctx context.Context, trainerID int64) ([]int64, error)

	CredentialByTrainer(ctx context.Context, trainerID int64) (*models.TrainerCredential, error)
	CredentialByUsername(ctx context.Context, username string) (*models.TrainerCredential, error)
	CreateCredential(ctx context.Context, c *models.TrainerCredential) error
	UpdateCredential(ctx context.Context, c *models.TrainerCredential) (bool, error)

	Assign(ctx context.Context, sessionID int64, trainerIDs []int64) ([]int64, error)
	Unassign(ctx context.Context, sessionID, trainerID int64) (bool, error)
}

// Sessions reads sessions for trainer details and assignment checks.
type Sessions interface {
	GetSession(ctx context.Context, id int64) (*models.Session, error)
	ListSessions(ctx context.Context, f workshops.SessionFilter) ([]models.Session, error)
}

// TokenIssuer signs login tokens.
type TokenIssuer interface {
	Generate(subjectID int64, email, role string) (string, error)
}

// Service implements trainers, their credentials and session assignments.
type Service struct {
	store    Store
	sessions Sessions
	tokens   TokenIssuer
	logger   *zap.Logger
}

// NewService creates a trainers service.
func NewService(store Store, sessions Sessions, tokens TokenIssuer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, sessions: sessions, tokens: tokens, logger: logger}
}

// TrainerInput is the body for creating or replacing a trainer.
type TrainerInput struct {
	Name          string `json:"name" binding:"required"`
	Designation   string `json:"designation"`
	Email         string `json:"email" binding:"required,email"`
	ContactNumber string `json:"contact_number" binding:"omitempty,contact"`
	Expertise     string `json:"expertise"`
}

func (in TrainerInput) trainer(id int64) *models.Trainer {
	return &models.Trainer{
		ID:            id,
		Name:          strings.TrimSpace(in.Name),
		Designation:   strings.TrimSpace(in.Designation),
		Email:         strings.TrimSpace(in.Email),
		ContactNumber: in.ContactNumber,
		Expertise:     strings.TrimSpace(in.Expertise),
	}
}

// List returns every trainer.
func (s *Service) List(ctx context.Context) ([]models.Trainer, error) {
	list, err := s.store.ListTrainers(ctx)
	if err != nil {
		return nil, apperror.Internal("list trainers", err)
	}
	if list == nil {
		list = []models.Trainer{}
	}
	return list, nil
}

// Get returns a trainer by id.
func (s *Service) Get(ctx context.Context, id int64) (*models.Trainer, error) {
	t, err := s.store.GetTrainer(ctx, id)
	if err != nil {
		return nil, apperror.Internal("get trainer", err)
	}
	if t == nil {
		return nil, apperror.NotFound("Trainer not found.")
	}
	return t, nil
}

// Create stores a trainer.
func (s *Service) Create(ctx context.Context, in TrainerInput) (*models.Trainer, error) {
	t := in.trainer(0)
	if err := s.store.CreateTrainer(ctx, t); err != nil {
		return nil, apperror.Internal("create trainer", err)
	}
	s.logger.Info("trainer created", zap.Int64("trainer_id", t.ID))
	return t, nil
}

// Update replaces a trainer.
func (s *Service) Update(ctx context.Context, id int64, in TrainerInput) (*models.Trainer, error) {
	t := in.trainer(id)
	ok, err := s.store.UpdateTrainer(ctx, t)
	if err != nil {
		return nil, apperror.Internal("update trainer", err)
	}
	if !ok {
		return nil, apperror.NotFound("Trainer not found.")
	}
	return t, nil
}

// Delete removes a trainer.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ok, err := s.store.DeleteTrainer(ctx, id)
	if err != nil {
		return apperror.Internal("delete trainer", err)
	}
	if !ok {
		return apperror.NotFound("Trainer not found.")
	}
	return nil
}

// AssignedSession is one session in a trainer's details.
type AssignedSession struct {
	SessionID     int64       `json:"session_id"`
	SessionTitle  string      `json:"session_title"`
	WorkshopTitle string      `json:"workshop_title"`
	Date          models.Date `json:"date"`
	Time          string      `json:"time"`
	Location      string      `json:"location"`
}

// Details is a trainer with the sessions they are assigned to.
type Details struct {
	TrainerID     int64             `json:"trainer_id"`
	Name          string            `json:"name"`
	Designation   string            `json:"designation"`
	Email         string            `json:"email"`
	ContactNumber string            `json:"contact_number"`
	Expertise     string            `json:"expertise"`
	Sessions      []AssignedSession `json:"sessions"`
}

// Details returns a trainer and their assigned sessions.
func (s *Service) Details(ctx context.Context, id int64) (*Details, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	out := &Details{
		TrainerID:     t.ID,
		Name:          t.Name,
		Designation:   t.Designation,
		Email:         t.Email,
		ContactNumber: t.ContactNumber,
		Expertise:     t.Expertise,
		Sessions:      []AssignedSession{},
	}
	ids, err := s.store.AssignedSessionIDs(ctx, id)
	if err != nil {
		return nil, apperror.Internal("assigned sessions", err)
	}
	if len(ids) == 0 {
		return out, nil
	}
	sessions, err := s.sessions.ListSessions(ctx, workshops.SessionFilter{IDs: ids})
	if err != nil {
		return nil, apperror.Internal("list sessions", err)
	}
	for _, sess := range sessions {
		out.Sessions = append(out.Sessions, AssignedSession{
			SessionID:     sess.ID,
			SessionTitle:  sess.Title(),
			WorkshopTitle: sess.WorkshopTitle,
			Date:          sess.Date,
			Time:          sess.Time,
			Location:      sess.Location,
		})
	}
	return out, nil
}

// CredentialInput is a username and password pair for a trainer.
type CredentialInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func credentialConflict(op string, err error) error {
	if name, ok := database.UniqueViolation(err); ok {
		if strings.Contains(name, "username") {
			return apperror.Conflict("Username already taken.")
		}
		return apperror.Conflict("Credential already exists for this trainer.")
	}
	return apperror.Internal(op, err)
}

func hashPassword(field, plain string) (string, error) {
	hash, err := utils.HashPassword(plain)
	if err != nil {
		return "", apperror.ValidationFields(err.Error(), map[string]string{field: err.Error()})
	}
	return hash, nil
}

// CreateCredential gives a trainer a login. A trainer has at most one.
func (s *Service) CreateCredential(ctx context.Context, trainerID int64, in CredentialInput) (*models.TrainerCredential, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, apperror.Validation("Username and password are required.")
	}
	if _, err := s.Get(ctx, trainerID); err != nil {
		return nil, err
	}
	existing, err := s.store.CredentialByTrainer(ctx, trainerID)
	if err != nil {
		return nil, apperror.Internal("get credential", err)
	}
	if existing != nil {
		return nil, apperror.Conflict("Credential already exists for this trainer.")
	}
	taken, err := s.store.CredentialByUsername(ctx, username)
	if err != nil {
		return nil, apperror.Internal("get credential by username", err)
	}
	if taken != nil {
		return nil, apperror.Conflict("Username already taken.")
	}
	hash, err := hashPassword("password", in.Password)
	if err != nil {
		return nil, err
	}
	c := &models.TrainerCredential{TrainerID: trainerID, Username: username, PasswordHash: hash}
	if err := s.store.CreateCredential(ctx, c); err != nil {
		return nil, credentialConflict("create credential", err)
	}
	s.logger.Info("trainer credential created", zap.Int64("trainer_id", trainerID))
	return c, nil
}

// UpdateCredential changes a trainer's username, password or both. Empty fields are kept.
func (s *Service) UpdateCredential(ctx context.Context, trainerID int64, in CredentialInput) (*models.TrainerCredential, error) {
	c, err := s.store.CredentialByTrainer(ctx, trainerID)
	if err != nil {
		return nil, apperror.Internal("get credential", err)
	}
	if c == nil {
		return nil, apperror.NotFound("Credential not found.")
	}
	if username := strings.TrimSpace(in.Username); username != "" && username != c.Username {
		taken, err := s.store.CredentialByUsername(ctx, username)
		if err != nil {
			return nil, apperror.Internal("get credential by username", err)
		}
		if taken != nil {
			return nil, apperror.Conflict("Username already taken.")
		}
		c.Username = username
	}
	if in.Password != "" {
		if c.PasswordHash, err = hashPassword("password", in.Password); err != nil {
			return nil, err
		}
	}
	ok, err := s.store.UpdateCredential(ctx, c)
	if err != nil {
		return nil, credentialConflict("update credential", err)
	}
	if !ok {
		return nil, apperror.NotFound("Credential not found.")
	}
	return c, nil
}

// LoginResult is returned on successful trainer login.
type LoginResult struct {
	TrainerID int64  `json:"trainer_id"`
	Message   string `json:"message"`
	Token     string `json:"token"`
}

// Login checks a trainer's username and password and issues a trainer token.
func (s *Service) Login(ctx context.Context, in CredentialInput) (*LoginResult, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, apperror.Validation("Username and password are required.")
	}
	c, err := s.store.CredentialByUsername(ctx, username)
	if err != nil {
		return nil, apperror.Internal("get credential by username", err)
	}
	if c == nil || !utils.CheckPassword(in.Password, c.PasswordHash) {
		return nil, apperror.Unauthorized("Invalid username or password.")
	}
	t, err := s.Get(ctx, c.TrainerID)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.Generate(t.ID, t.Email, auth.RoleTrainer)
	if err != nil {
		return nil, apperror.Internal("generate token", err)
	}
	s.logger.Info("trainer logged in", zap.Int64("trainer_id", t.ID))
	return &LoginResult{TrainerID: t.ID, Message: "Login successful.", Token: token}, nil
}

// Assign links trainers to a session and returns the trainers newly assigned.
// Pairs that already exist are skipped.
func (s *Service) Assign(ctx context.Context, sessionID int64, trainerIDs []int64) ([]int64, error) {
	sess, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, apperror.Internal("get session", err)
	}
	if sess == nil {
		return nil, apperror.NotFound("Session not found.")
	}
	for _, id := range trainerIDs {
		if _, err := s.Get(ctx, id); err != nil {
			return nil, err
		}
	}
	created, err := s.store.Assign(ctx, sessionID, trainerIDs)
	if err != nil {
		return nil, apperror.Internal("assign trainers", err)
	}
	if created == nil {
		created = []int64{}
	}
	s.logger.Info("trainers assigned",
		zap.Int64("session_id", sessionID),
		zap.Int64s("trainer_ids", created),
	)
	return created, nil
}

// Unassign removes a trainer from a session.
func (s *Service) Unassign(ctx context.Context, sessionID, trainerID int64) error {
	ok, err := s.store.Unassign(ctx, sessionID, trainerID)
	if err != nil {
		return apperror.Internal("remove trainer", err)
	}
	if !ok {
		return apperror.NotFound("Trainer is not assigned to this session.")
	}
	return nil
}
