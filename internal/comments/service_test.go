package comments

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

	"github.com/workshop-hub/backend/internal/models"
	"github.com/workshop-hub/backend/pkg/apperror"
)

func init() { gin.SetMode(gin.TestMode) }

type fakeStore struct{ bySession map[int64]*models.AdminComment }

func (f *fakeStore) Create(_ context.Context, sid int64, text string) (*models.AdminComment, error) {
	if _, ok := f.bySession[sid]; ok {
		return nil, nil
	}
	now := time.Now()
	c := &models.AdminComment{ID: int64(len(f.bySession) + 1), SessionID: sid, Comment: text, CreatedAt: now, UpdatedAt: now}
	f.bySession[sid] = c
	return c, nil
}

func (f *fakeStore) Update(_ context.Context, sid int64, text string) (*models.AdminComment, error) {
	c, ok := f.bySession[sid]
	if !ok {
		return nil, nil
	}
	c.Comment = text
	c.UpdatedAt = time.Now()
	return c, nil
}

func (f *fakeStore) BySession(_ context.Context, sid int64) ([]models.AdminComment, error) {
	if c, ok := f.bySession[sid]; ok {
		return []models.AdminComment{*c}, nil
	}
	return nil, nil
}

func (f *fakeStore) ByWorkshop(context.Context, int64) ([]WorkshopComment, error) { return nil, nil }

type fakeSessions struct{}

func (fakeSessions) GetSession(_ context.Context, id int64) (*models.Session, error) {
	if id == 404 {
		return nil, nil
	}
	return &models.Session{ID: id}, nil
}

func TestCommentLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&fakeStore{bySession: map[int64]*models.AdminComment{}}, fakeSessions{}, nil)

	_, err := svc.Update(ctx, 1, "later")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	_, err = svc.Submit(ctx, 1, "  ")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	_, err = svc.Submit(ctx, 404, "hi")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	c, err := svc.Submit(ctx, 1, "Well organised")
	require.NoError(t, err)
	assert.Equal(t, "Well organised", c.Comment)
	_, err = svc.Submit(ctx, 1, "again")
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	c, err = svc.Update(ctx, 1, "Well organised, start on time")
	require.NoError(t, err)
	assert.Equal(t, "Well organised, start on time", c.Comment)

	list, err := svc.BySession(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, c.ID, list[0].ID)

	empty, err := svc.BySession(ctx, 2)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	ws, err := svc.ByWorkshop(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, ws)
}

func TestHandlerStatuses(t *testing.T) {
	svc := NewService(&fakeStore{bySession: map[int64]*models.AdminComment{}}, fakeSessions{}, nil)
	r := gin.New()
	NewHandler(svc, nil).Register(r.Group("/comments"))

	do := func(method, path, body string) int {
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusBadRequest, do(http.MethodPost, "/comments/sessions/1", `{}`))
	assert.Equal(t, http.StatusCreated, do(http.MethodPost, "/comments/sessions/1", `{"comment":"ok"}`))
	assert.Equal(t, http.StatusConflict, do(http.MethodPost, "/comments/sessions/1", `{"comment":"ok"}`))
	assert.Equal(t, http.StatusOK, do(http.MethodPut, "/comments/sessions/1", `{"comment":"better"}`))
	assert.Equal(t, http.StatusNotFound, do(http.MethodPut, "/comments/sessions/2", `{"comment":"better"}`))
	assert.Equal(t, http.StatusBadRequest, do(http.MethodGet, "/comments/workshops/abc", ``))
}
