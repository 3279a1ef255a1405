package models

import "time"

// Registration is a participant's seat in a session.
type Registration struct {
	ID            int64     `json:"id"`
	ParticipantID int64     `json:"participant"`
	SessionID     int64     `json:"session"`
	RegisteredOn  time.Time `json:"registered_on"`
	Attendance    bool      `json:"attendance"`
}

// AttendanceStatus is the outcome of a check-in attempt.
type AttendanceStatus string

const (
	AttendanceSuccess       AttendanceStatus = "success"
	AttendanceAlreadyMarked AttendanceStatus = "already_marked"
	AttendanceNotRegistered AttendanceStatus = "not_registered"
)
