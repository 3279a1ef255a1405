package materials

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workshop-hub/backend/internal/models"
	"github.com/workshop-hub/backend/pkg/apperror"
)

func init() { gin.SetMode(gin.TestMode) }

type fakeStore struct {
	items     []models.SessionMaterial
	createErr error
}

func (f *fakeStore) List(_ context.Context, sid int64) ([]models.SessionMaterial, error) {
	var out []models.SessionMaterial
	for _, m := range f.items {
		if m.SessionID == sid {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) Get(_ context.Context, id int64) (*models.SessionMaterial, error) {
	for _, m := range f.items {
		if m.ID == id {
			cp := m
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) Create(_ context.Context, m *models.SessionMaterial) error {
	if f.createErr != nil {
		return f.createErr
	}
	m.ID = int64(len(f.items) + 1)
	m.UploadedAt = time.Now()
	f.items = append(f.items, *m)
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id int64) (bool, error) {
	for i, m := range f.items {
		if m.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// Trainer 3 teaches session 1.
func (f *fakeStore) IsAssigned(_ context.Context, tid, sid int64) (bool, error) {
	return tid == 3 && sid == 1, nil
}

type fakeSessions struct{}

func (fakeSessions) GetSession(_ context.Context, id int64) (*models.Session, error) {
	if id != 1 {
		return nil, nil
	}
	return &models.Session{ID: 1, WorkshopTitle: "Data Literacy", Date: models.NewDate(time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC))}, nil
}

type fakeObjects struct {
	uploaded map[string][]byte
	deleted  []string
}

func newObjects() *fakeObjects { return &fakeObjects{uploaded: map[string][]byte{}} }

func (f *fakeObjects) UploadMaterial(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.uploaded[key] = b
	return "https://bucket.example/" + key, nil
}

func (f *fakeObjects) PresignDownload(_ context.Context, key string) (string, error) {
	return "https://signed.example/" + key, nil
}

func (f *fakeObjects) DeleteMaterial(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeObjects) MaxUploadBytes() int64 { return 16 }
func (f *fakeObjects) PresignExpire() time.Duration { return 15 * time.Minute }

type announced struct {
	template models.NotificationTemplate
	target   models.NotificationTarget
}

type fakeAnnouncer struct{ calls []announced }

func (f *fakeAnnouncer) Announce(_ context.Context, t models.NotificationTemplate, target models.NotificationTarget) {
	f.calls = append(f.calls, announced{t, target})
}

func int64p(v int64) *int64 { return &v }

func TestUploadLinkRequiresAssignedTrainer(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	notes := &fakeAnnouncer{}
	svc := NewService(store, fakeSessions{}, nil, notes, nil)

	_, err := svc.Upload(ctx, 1, UploadInput{URL: "https://x.example/a.pdf"}, nil)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
	_, err = svc.Upload(ctx, 1, UploadInput{UploadedBy: int64p(4), URL: "https://x.example/a.pdf"}, nil)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
	_, err = svc.Upload(ctx, 2, UploadInput{UploadedBy: int64p(3), URL: "https://x.example/a.pdf"}, nil)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	_, err = svc.Upload(ctx, 1, UploadInput{UploadedBy: int64p(3)}, nil)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	_, err = svc.Upload(ctx, 1, UploadInput{UploadedBy: int64p(3)}, &File{Name: "a.pdf", Body: strings.NewReader("x")})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Empty(t, notes.calls)

	m, err := svc.Upload(ctx, 1, UploadInput{UploadedBy: int64p(3), URL: " https://x.example/a.pdf ", Description: "Slides"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://x.example/a.pdf", m.URL)
	assert.Nil(t, m.S3Key)

	require.Len(t, notes.calls, 1)
	call := notes.calls[0]
	assert.Equal(t, "New Session Material", call.template.Title)
	assert.Equal(t, "New material has been uploaded for your session 'Data Literacy - 2025-03-04'.", call.template.Message)
	assert.Equal(t, "/sessions/1/materials/", call.template.URL)
	assert.Equal(t, models.NotificationMaterial, call.template.NotificationType)
	assert.True(t, call.target.AttendedOnly)

	d, err := svc.DownloadURL(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://x.example/a.pdf", d.URL)
	assert.Zero(t, d.ExpiresIn)
}

func TestUploadFileLifecycle(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	objects := newObjects()
	svc := NewService(store, fakeSessions{}, objects, nil, nil)

	_, err := svc.Upload(ctx, 1, UploadInput{UploadedBy: int64p(3)}, &File{Name: "run.exe", Size: 3, Body: strings.NewReader("abc")})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	_, err = svc.Upload(ctx, 1, UploadInput{UploadedBy: int64p(3)}, &File{Name: "big.pdf", Size: 17, Body: strings.NewReader("x")})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	m, err := svc.Upload(ctx, 1, UploadInput{UploadedBy: int64p(3)}, &File{Name: "Notes.PDF", Size: 5, Body: strings.NewReader("hello")})
	require.NoError(t, err)
	require.NotNil(t, m.S3Key)
	assert.True(t, strings.HasPrefix(*m.S3Key, "materials/1/"))
	assert.True(t, strings.HasSuffix(*m.S3Key, ".pdf"))
	assert.Equal(t, []byte("hello"), objects.uploaded[*m.S3Key])
	assert.Equal(t, "https://bucket.example/"+*m.S3Key, m.URL)

	d, err := svc.DownloadURL(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/"+*m.S3Key, d.URL)
	assert.Equal(t, 900, d.ExpiresIn)

	require.NoError(t, svc.Delete(ctx, m.ID))
	assert.Equal(t, []string{*m.S3Key}, objects.deleted)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(svc.Delete(ctx, m.ID)))
}

func TestUploadRemovesObjectWhenInsertFails(t *testing.T) {
	store := &fakeStore{createErr: errors.New("db down")}
	objects := newObjects()
	svc := NewService(store, fakeSessions{}, objects, nil, nil)

	_, err := svc.Upload(context.Background(), 1, UploadInput{UploadedBy: int64p(3)}, &File{Name: "a.txt", Size: 1, Body: strings.NewReader("a")})
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
	assert.Len(t, objects.deleted, 1)
}

func TestHandlerMultipartAndJSON(t *testing.T) {
	store := &fakeStore{}
	objects := newObjects()
	r := gin.New()
	NewHandler(NewService(store, fakeSessions{}, objects, nil, nil), nil).Register(r.Group("/materials"))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("uploaded_by", "3"))
	require.NoError(t, mw.WriteField("description", "Handout"))
	fw, err := mw.CreateFormFile("file", "handout.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("notes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/materials/sessions/1", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, store.items, 1)
	assert.Equal(t, "Handout", store.items[0].Description)
	assert.NotNil(t, store.items[0].S3Key)

	req = httptest.NewRequest(http.MethodPost, "/materials/sessions/1", strings.NewReader(`{"uploaded_by":9,"url":"https://x.example"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/materials/sessions/1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/materials/1/download-url", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "signed.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/materials/1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
