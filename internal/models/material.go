package models

import "time"

// SessionMaterial is a link or stored file shared with a session.
type SessionMaterial struct {
	ID          int64     `json:"id"`
	SessionID   int64     `json:"session"`
	URL         string    `json:"url"`
	S3Key       *string   `json:"-"`
	UploadedBy  *int64    `json:"uploaded_by"`
	Description string    `json:"description"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
