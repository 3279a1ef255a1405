package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle label of a session.
type SessionStatus string

const (
	StatusUpcoming  SessionStatus = "Upcoming"
	StatusOngoing   SessionStatus = "Ongoing"
	StatusCompleted SessionStatus = "Completed"
	StatusCancelled SessionStatus = "Cancelled"
	StatusPostponed SessionStatus = "Postponed"
)

// Display layouts for human-facing session dates and times.
const (
	DisplayDateLayout = "Monday, 02 January 2006"
	DisplayTimeLayout = "03:04 PM"
)

// Workshop is a capacity-building program made of sessions.
type Workshop struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Session is one scheduled occurrence of a workshop.
type Session struct {
	ID             int64         `json:"id"`
	WorkshopID     int64         `json:"workshop"`
	WorkshopTitle  string        `json:"workshop_title"`
	Date           Date          `json:"date"`
	Time           string        `json:"time"`
	Location       string        `json:"location"`
	TargetAudience string        `json:"target_audience"`
	Token          uuid.UUID     `json:"token"`
	Status         SessionStatus `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
}

// Title is the display name "{workshop title} - {date}".
func (s Session) Title() string {
	return s.WorkshopTitle + " - " + s.Date.String()
}

// Clock parses the session time of day; zero on malformed values.
func (s Session) Clock() time.Time {
	t, err := time.Parse("15:04:05", s.Time)
	if err != nil {
		return time.Time{}
	}
	return t
}

// FormattedDate renders the date as "Weekday, DD Month YYYY".
func (s Session) FormattedDate() string {
	if s.Date.IsZero() {
		return ""
	}
	return s.Date.Format(DisplayDateLayout)
}

// FormattedTime renders the time of day on a 12-hour clock.
func (s Session) FormattedTime() string {
	if s.Time == "" {
		return ""
	}
	return s.Clock().Format(DisplayTimeLayout)
}
