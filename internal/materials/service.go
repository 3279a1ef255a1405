// Package materials implements session materials, stored as links or as S3 objects.
package materials

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/workshop-hub/backend/internal/models"
	"github.com/workshop-hub/backend/pkg/apperror"
	"github.com/workshop-hub/backend/pkg/storage"
)

// Store is the persistence the materials service needs.
type Store interface {
	List(ctx context.Context, sessionID int64) ([]models.SessionMaterial, error)
	Get(ctx context.Context, id int64) (*models.SessionMaterial, error)
	Create(ctx context.Context, m *models.SessionMaterial) error
	Delete(ctx context.Context, id int64) (bool, error)
	IsAssigned(ctx context.Context, trainerID, sessionID int64) (bool, error)
}

// Sessions looks up sessions.
type Sessions interface {
	GetSession(ctx context.Context, id int64) (*models.Session, error)
}

// ObjectStore keeps uploaded material files. *storage.S3 implements it.
type ObjectStore interface {
	UploadMaterial(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	PresignDownload(ctx context.Context, key string) (string, error)
	DeleteMaterial(ctx context.Context, key string) error
	MaxUploadBytes() int64
	PresignExpire() time.Duration
}

// Announcer publishes system notifications.
type Announcer interface {
	Announce(ctx context.Context, t models.NotificationTemplate, target models.NotificationTarget)
}

// Service implements session materials.
type Service struct {
	store    Store
	sessions Sessions
	objects  ObjectStore
	notifier Announcer
	logger   *zap.Logger
}

// NewService creates a materials service. objects may be nil, in which case only
// link materials are accepted; notifier may be nil.
func NewService(store Store, sessions Sessions, objects ObjectStore, notifier Announcer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, sessions: sessions, objects: objects, notifier: notifier, logger: logger}
}

// UploadInput describes a material. Exactly one of URL or a file is expected.
type UploadInput struct {
	UploadedBy  *int64 `json:"uploaded_by" form:"uploaded_by"`
	URL         string `json:"url" form:"url"`
	Description string `json:"description" form:"description"`
}

// File is an uploaded material file.
type File struct {
	Name string
	Size int64
	Body io.Reader
}

// List returns a session's materials.
func (s *Service) List(ctx context.Context, sessionID int64) ([]models.SessionMaterial, error) {
	list, err := s.store.List(ctx, sessionID)
	if err != nil {
		return nil, apperror.Internal("list materials", err)
	}
	if list == nil {
		list = []models.SessionMaterial{}
	}
	return list, nil
}

func (s *Service) storeFile(ctx context.Context, sessionID int64, f *File) (url, key string, err error) {
	if s.objects == nil {
		return "", "", apperror.Validation("File uploads are not available. Provide a url instead.")
	}
	if !storage.ValidateMaterialFile(f.Name) {
		return "", "", apperror.ValidationFields("invalid file",
			map[string]string{"file": "unsupported file type"})
	}
	if f.Size > s.objects.MaxUploadBytes() {
		return "", "", apperror.ValidationFields("invalid file",
			map[string]string{"file": fmt.Sprintf("file exceeds %d bytes", s.objects.MaxUploadBytes())})
	}
	key = storage.MaterialKey(sessionID, f.Name)
	url, err = s.objects.UploadMaterial(ctx, key, storage.ContentTypeForFilename(f.Name), f.Body, f.Size)
	if err != nil {
		return "", "", apperror.Internal("upload material", err)
	}
	return url, key, nil
}

// Upload adds a material to a session. The uploader must be a trainer assigned to the session.
func (s *Service) Upload(ctx context.Context, sessionID int64, in UploadInput, f *File) (*models.SessionMaterial, error) {
	sess, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, apperror.Internal("get session", err)
	}
	if sess == nil {
		return nil, apperror.NotFound("Session not found.")
	}
	if in.UploadedBy == nil {
		return nil, apperror.Forbidden("Only trainers of this session can upload materials.")
	}
	assigned, err := s.store.IsAssigned(ctx, *in.UploadedBy, sessionID)
	if err != nil {
		return nil, apperror.Internal("check assignment", err)
	}
	if !assigned {
		return nil, apperror.Forbidden("Only trainers of this session can upload materials.")
	}

	m := &models.SessionMaterial{
		SessionID:   sessionID,
		URL:         strings.TrimSpace(in.URL),
		UploadedBy:  in.UploadedBy,
		Description: strings.TrimSpace(in.Description),
	}
	switch {
	case f != nil:
		url, key, err := s.storeFile(ctx, sessionID, f)
		if err != nil {
			return nil, err
		}
		m.URL, m.S3Key = url, &key
	case m.URL == "":
		return nil, apperror.ValidationFields("Provide a url or a file.", map[string]string{"url": "field is required"})
	}

	if err := s.store.Create(ctx, m); err != nil {
		if m.S3Key != nil {
			s.removeObject(ctx, *m.S3Key)
		}
		return nil, apperror.Internal("create material", err)
	}
	s.logger.Info("material uploaded",
		zap.Int64("material_id", m.ID),
		zap.Int64("session_id", sessionID),
		zap.Bool("stored", m.S3Key != nil),
	)
	if s.notifier != nil {
		sid := sess.ID
		s.notifier.Announce(ctx, models.NotificationTemplate{
			Title:            "New Session Material",
			Message:          fmt.Sprintf("New material has been uploaded for your session '%s'.", sess.Title()),
			URL:              fmt.Sprintf("/sessions/%d/materials/", sess.ID),
			NotificationType: models.NotificationMaterial,
		}, models.NotificationTarget{Kind: models.TargetSession, SessionID: &sid, AttendedOnly: true})
	}
	return m, nil
}

func (s *Service) removeObject(ctx context.Context, key string) {
	if s.objects == nil {
		return
	}
	if err := s.objects.DeleteMaterial(ctx, key); err != nil {
		s.logger.Warn("delete material object failed", zap.String("key", key), zap.Error(err))
	}
}

// Delete removes a material and its stored file.
func (s *Service) Delete(ctx context.Context, id int64) error {
	m, err := s.store.Get(ctx, id)
	if err != nil {
		return apperror.Internal("get material", err)
	}
	if m == nil {
		return apperror.NotFound("Material not found.")
	}
	ok, err := s.store.Delete(ctx, id)
	if err != nil {
		return apperror.Internal("delete material", err)
	}
	if !ok {
		return apperror.NotFound("Material not found.")
	}
	if m.S3Key != nil {
		s.removeObject(ctx, *m.S3Key)
	}
	return nil
}

// Download is a URL a material can be fetched from.
type Download struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in,omitempty"`
}

// DownloadURL returns a presigned URL for stored files and the link itself otherwise.
func (s *Service) DownloadURL(ctx context.Context, id int64) (*Download, error) {
	m, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, apperror.Internal("get material", err)
	}
	if m == nil {
		return nil, apperror.NotFound("Material not found.")
	}
	if m.S3Key == nil || s.objects == nil {
		return &Download{URL: m.URL}, nil
	}
	url, err := s.objects.PresignDownload(ctx, *m.S3Key)
	if err != nil {
		return nil, apperror.Internal("presign material", err)
	}
	return &Download{URL: url, ExpiresIn: int(s.objects.PresignExpire().Seconds())}, nil
}
