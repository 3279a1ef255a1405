package models

import "time"

// ResponseType is the shape of answer a feedback question expects.
type ResponseType string

const (
	ResponseParagraph      ResponseType = "paragraph"
	ResponseCheckbox       ResponseType = "checkbox"
	ResponseRating         ResponseType = "rating"
	ResponseText           ResponseType = "text"
	ResponseMultipleChoice ResponseType = "multiple_choice"
	ResponseYesNo          ResponseType = "yes_no"
	ResponseScale          ResponseType = "scale"
)

// IsRating reports whether answers of this type count toward rating averages.
func (t ResponseType) IsRating() bool {
	return t == ResponseRating || t == ResponseScale
}

// IsChoice reports whether answers are JSON arrays of options.
func (t ResponseType) IsChoice() bool {
	return t == ResponseCheckbox || t == ResponseMultipleChoice
}

// FeedbackQuestion belongs to a session.
type FeedbackQuestion struct {
	ID           int64        `json:"id"`
	SessionID    int64        `json:"session"`
	QuestionText string       `json:"question_text"`
	ResponseType ResponseType `json:"response_type"`
	Options      []string     `json:"options"`
}

// FeedbackResponse is one participant's answer to one question.
type FeedbackResponse struct {
	ID            int64     `json:"id"`
	ParticipantID int64     `json:"participant"`
	QuestionID    int64     `json:"question"`
	Response      string    `json:"response"`
	SubmittedAt   time.Time `json:"submitted_at"`
}
