package trainers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workshop-hub/backend/internal/auth"
	"github.com/workshop-hub/backend/internal/models"
	"github.com/workshop-hub/backend/internal/workshops"
	"github.com/workshop-hub/backend/pkg/apperror"
	"github.com/workshop-hub/backend/pkg/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := validator.Register(); err != nil {
		panic(err)
	}
}

type pair struct{ trainer, session int64 }

type fakeStore struct {
	trainers    map[int64]*models.Trainer
	credentials []models.TrainerCredential
	assigned    map[pair]bool
	nextID      int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{trainers: map[int64]*models.Trainer{}, assigned: map[pair]bool{}}
}

func (f *fakeStore) ListTrainers(context.Context) ([]models.Trainer, error) {
	var out []models.Trainer
	for id := int64(1); id <= f.nextID; id++ {
		if t, ok := f.trainers[id]; ok {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeStore) GetTrainer(_ context.Context, id int64) (*models.Trainer, error) {
	if t, ok := f.trainers[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) CreateTrainer(_ context.Context, t *models.Trainer) error {
	f.nextID++
	t.ID = f.nextID
	cp := *t
	f.trainers[t.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateTrainer(_ context.Context, t *models.Trainer) (bool, error) {
	if _, ok := f.trainers[t.ID]; !ok {
		return false, nil
	}
	cp := *t
	f.trainers[t.ID] = &cp
	return true, nil
}

func (f *fakeStore) DeleteTrainer(_ context.Context, id int64) (bool, error) {
	if _, ok := f.trainers[id]; !ok {
		return false, nil
	}
	delete(f.trainers, id)
	return true, nil
}

func (f *fakeStore) AssignedSessionIDs(_ context.Context, trainerID int64) ([]int64, error) {
	var ids []int64
	for p := range f.assigned {
		if p.trainer == trainerID {
			ids = append(ids, p.session)
		}
	}
	return ids, nil
}

func (f *fakeStore) credential(match func(models.TrainerCredential) bool) *models.TrainerCredential {
	for _, c := range f.credentials {
		if match(c) {
			cp := c
			return &cp
		}
	}
	return nil
}

func (f *fakeStore) CredentialByTrainer(_ context.Context, id int64) (*models.TrainerCredential, error) {
	return f.credential(func(c models.TrainerCredential) bool { return c.TrainerID == id }), nil
}

func (f *fakeStore) CredentialByUsername(_ context.Context, username string) (*models.TrainerCredential, error) {
	return f.credential(func(c models.TrainerCredential) bool { return c.Username == username }), nil
}

func (f *fakeStore) CreateCredential(_ context.Context, c *models.TrainerCredential) error {
	c.ID = int64(len(f.credentials) + 1)
	f.credentials = append(f.credentials, *c)
	return nil
}

func (f *fakeStore) UpdateCredential(_ context.Context, c *models.TrainerCredential) (bool, error) {
	for i := range f.credentials {
		if f.credentials[i].TrainerID == c.TrainerID {
			f.credentials[i] = *c
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) Assign(_ context.Context, sessionID int64, trainerIDs []int64) ([]int64, error) {
	var created []int64
	for _, id := range trainerIDs {
		p := pair{id, sessionID}
		if f.assigned[p] {
			continue
		}
		f.assigned[p] = true
		created = append(created, id)
	}
	return created, nil
}

func (f *fakeStore) Unassign(_ context.Context, sessionID, trainerID int64) (bool, error) {
	p := pair{trainerID, sessionID}
	if !f.assigned[p] {
		return false, nil
	}
	delete(f.assigned, p)
	return true, nil
}

type fakeSessions struct{ byID map[int64]models.Session }

func (f fakeSessions) GetSession(_ context.Context, id int64) (*models.Session, error) {
	if s, ok := f.byID[id]; ok {
		return &s, nil
	}
	return nil, nil
}

func (f fakeSessions) ListSessions(_ context.Context, filter workshops.SessionFilter) ([]models.Session, error) {
	var out []models.Session
	for _, id := range filter.IDs {
		if s, ok := f.byID[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func setup(t *testing.T) (*Service, *fakeStore, *models.Trainer) {
	t.Helper()
	store := newFakeStore()
	sessions := fakeSessions{byID: map[int64]models.Session{
		7: {ID: 7, WorkshopTitle: "Climate Finance", Date: models.NewDate(time.Date(2025, 5, 6, 0, 0, 0, 0, time.UTC)), Time: "10:00:00", Location: "Colombo"},
	}}
	svc := NewService(store, sessions, auth.NewJWTService("test-secret", 1), nil)
	tr, err := svc.Create(context.Background(), TrainerInput{Name: " Dilani ", Email: "dilani@example.org", ContactNumber: "0711234567"})
	require.NoError(t, err)
	return svc, store, tr
}

func TestTrainerCRUD(t *testing.T) {
	ctx := context.Background()
	svc, _, tr := setup(t)
	assert.Equal(t, "Dilani", tr.Name)

	updated, err := svc.Update(ctx, tr.ID, TrainerInput{Name: "Dilani S", Email: "dilani@example.org", Expertise: "GIS"})
	require.NoError(t, err)
	assert.Equal(t, "GIS", updated.Expertise)

	_, err = svc.Update(ctx, 99, TrainerInput{Name: "x", Email: "x@example.org"})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, tr.ID))
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(svc.Delete(ctx, tr.ID)))
}

func TestCredentialsAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, _, tr := setup(t)
	second, err := svc.Create(ctx, TrainerInput{Name: "Ruwan", Email: "ruwan@example.org"})
	require.NoError(t, err)

	_, err = svc.CreateCredential(ctx, tr.ID, CredentialInput{Username: "dilani"})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	_, err = svc.CreateCredential(ctx, 99, CredentialInput{Username: "ghost", Password: "password1"})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = svc.CreateCredential(ctx, tr.ID, CredentialInput{Username: "dilani", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.CreateCredential(ctx, tr.ID, CredentialInput{Username: "other", Password: "password1"})
	require.Error(t, err)
	assert.Equal(t, "Credential already exists for this trainer.", err.Error())
	_, err = svc.CreateCredential(ctx, second.ID, CredentialInput{Username: "dilani", Password: "password1"})
	require.Error(t, err)
	assert.Equal(t, "Username already taken.", err.Error())

	_, err = svc.Login(ctx, CredentialInput{Username: "dilani", Password: "wrong-pass"})
	assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(err))
	_, err = svc.Login(ctx, CredentialInput{Username: "nobody", Password: "password1"})
	assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(err))

	res, err := svc.Login(ctx, CredentialInput{Username: "dilani", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, tr.ID, res.TrainerID)
	assert.Equal(t, "Login successful.", res.Message)
	claims, err := auth.NewJWTService("test-secret", 1).Validate(res.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleTrainer, claims.Role)

	_, err = svc.UpdateCredential(ctx, second.ID, CredentialInput{Username: "ruwan"})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = svc.UpdateCredential(ctx, tr.ID, CredentialInput{Username: "dilani2", Password: "password2"})
	require.NoError(t, err)
	_, err = svc.Login(ctx, CredentialInput{Username: "dilani2", Password: "password2"})
	assert.NoError(t, err)
}

func TestAssignIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _, tr := setup(t)

	created, err := svc.Assign(ctx, 7, []int64{tr.ID})
	require.NoError(t, err)
	assert.Equal(t, []int64{tr.ID}, created)

	created, err = svc.Assign(ctx, 7, []int64{tr.ID})
	require.NoError(t, err)
	assert.Empty(t, created)
	assert.NotNil(t, created)

	_, err = svc.Assign(ctx, 8, []int64{tr.ID})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	_, err = svc.Assign(ctx, 7, []int64{tr.ID, 42})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	d, err := svc.Details(ctx, tr.ID)
	require.NoError(t, err)
	require.Len(t, d.Sessions, 1)
	assert.Equal(t, "Climate Finance - 2025-05-06", d.Sessions[0].SessionTitle)
	assert.Equal(t, "Colombo", d.Sessions[0].Location)

	require.NoError(t, svc.Unassign(ctx, 7, tr.ID))
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(svc.Unassign(ctx, 7, tr.ID)))
}

func TestHandlerRoutes(t *testing.T) {
	svc, _, tr := setup(t)
	r := gin.New()
	NewHandler(svc, nil).Register(r.Group("/trainers"))

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusBadRequest, do(http.MethodPost, "/trainers", `{"name":"x","email":"not-an-email"}`).Code)
	assert.Equal(t, http.StatusCreated, do(http.MethodPost, "/trainers/1/credential", `{"username":"dilani","password":"password1"}`).Code)
	assert.Equal(t, http.StatusConflict, do(http.MethodPost, "/trainers/1/credential", `{"username":"dilani","password":"password1"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(http.MethodPost, "/trainers/login", `{"username":"dilani"}`).Code)
	assert.Equal(t, http.StatusUnauthorized, do(http.MethodPost, "/trainers/login", `{"username":"dilani","password":"nope-nope"}`).Code)
	assert.Equal(t, http.StatusOK, do(http.MethodPost, "/trainers/login", `{"username":"dilani","password":"password1"}`).Code)

	w := do(http.MethodPost, "/trainers/sessions/assign", `{"session_id":7,"trainer_ids":[1]}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"assigned_trainers":[1]`)
	w = do(http.MethodPost, "/trainers/sessions/assign", `{"session_id":7,"trainer_ids":[1]}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"assigned_trainers":[]`)

	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/trainers/1/details", "").Code)
	assert.Equal(t, http.StatusOK, do(http.MethodDelete, "/trainers/sessions/remove", `{"session_id":7,"trainer_id":1}`).Code)
	assert.Equal(t, http.StatusNotFound, do(http.MethodDelete, "/trainers/sessions/remove", `{"session_id":7,"trainer_id":1}`).Code)
	assert.Equal(t, http.StatusOK, do(http.MethodDelete, "/trainers/1", "").Code)
	assert.Equal(t, int64(1), tr.ID)
}
