package models

import "time"

// Gender values accepted for participants.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

// ParticipantType declares the extra properties its participants must supply.
type ParticipantType struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Properties  PropertySchema `json:"properties"`
}

// Participant attends sessions.
type Participant struct {
	ID                int64          `json:"id"`
	Name              string         `json:"name"`
	Email             string         `json:"email"`
	ContactNumber     string         `json:"contact_number"`
	NIC               string         `json:"nic"`
	District          string         `json:"district"`
	Gender            string         `json:"gender"`
	ParticipantTypeID *int64         `json:"participant_type"`
	ParticipantType   string         `json:"participant_type_name,omitempty"`
	Properties        map[string]any `json:"properties"`
	PasswordHash      *string        `json:"-"`
	CreatedAt         time.Time      `json:"created_at"`
}
