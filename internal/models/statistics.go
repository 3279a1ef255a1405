package models

import "time"

// SessionStatistics is the cached snapshot behind the session dashboard.
type SessionStatistics struct {
	SessionID              int64     `json:"session_id"`
	RegisteredCount        int       `json:"registered_count"`
	AttendedCount          int       `json:"attended_count"`
	AttendancePercentage   float64   `json:"attendance_percentage"`
	AverageRating          *float64  `json:"average_rating"`
	ImpactSummary          *string   `json:"impact_summary"`
	ImprovementSuggestions []string  `json:"improvement_suggestions"`
	UpdatedAt              time.Time `json:"-"`
}
