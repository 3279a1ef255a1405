package models

import "time"

// Trainer delivers sessions.
type Trainer struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Designation   string    `json:"designation"`
	Email         string    `json:"email"`
	ContactNumber string    `json:"contact_number"`
	Expertise     string    `json:"expertise"`
	CreatedAt     time.Time `json:"created_at"`
}

// TrainerCredential is a trainer's login. PasswordHash never leaves the server.
type TrainerCredential struct {
	ID           int64     `json:"id"`
	TrainerID    int64     `json:"trainer"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TrainerSession assigns a trainer to a session.
type TrainerSession struct {
	ID        int64 `json:"id"`
	TrainerID int64 `json:"trainer"`
	SessionID int64 `json:"session"`
}
