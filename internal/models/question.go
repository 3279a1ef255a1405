package models

import "time"

// Question is a live Q&A question asked by a registered participant.
type Question struct {
	ID              int64     `json:"id"`
	SessionID       int64     `json:"session"`
	ParticipantID   int64     `json:"participant"`
	ParticipantName string    `json:"participant_name,omitempty"`
	QuestionText    string    `json:"question_text"`
	CreatedAt       time.Time `json:"created_at"`
	IsAnswered      bool      `json:"is_answered"`
}
