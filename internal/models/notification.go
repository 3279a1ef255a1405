package models

import "time"

// Notification types used by the system's own events.
const (
	NotificationGeneral  = "general"
	NotificationWorkshop = "workshop"
	NotificationSession  = "session"
	NotificationFeedback = "feedback"
	NotificationMaterial = "material"
)

// NotificationTemplate is the shared content of one notification event.
type NotificationTemplate struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Message          string    `json:"message"`
	URL              string    `json:"url"`
	NotificationType string    `json:"notification_type"`
	CreatedAt        time.Time `json:"created_at"`
}

// Notification is a template delivered to one participant.
type Notification struct {
	ID            int64                `json:"id"`
	ParticipantID int64                `json:"participant"`
	Template      NotificationTemplate `json:"template"`
	IsRead        bool                 `json:"is_read"`
	CreatedAt     time.Time            `json:"created_at"`
}

// TargetKind selects which participants receive a notification.
type TargetKind string

const (
	TargetAll          TargetKind = "all"
	TargetSession      TargetKind = "session"
	TargetWorkshop     TargetKind = "workshop"
	TargetParticipants TargetKind = "participants"
)

// NotificationTarget describes a fan-out audience.
type NotificationTarget struct {
	Kind           TargetKind `json:"kind"`
	SessionID      *int64     `json:"session_id,omitempty"`
	WorkshopID     *int64     `json:"workshop_id,omitempty"`
	ParticipantIDs []int64    `json:"participant_ids,omitempty"`
	AttendedOnly   bool       `json:"attended_only,omitempty"`
}
