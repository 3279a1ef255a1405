package models

import "time"

// AdminComment is the single admin note attached to a session.
type AdminComment struct {
	ID        int64     `json:"id"`
	SessionID int64     `json:"session_id"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
