package analytics

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/workshop-hub/backend/internal/models"
)

// RatingBreakdown summarises answers to a rating or scale question.
type RatingBreakdown struct {
	Count        int         `json:"count"`
	Average      *float64    `json:"average"`
	Distribution map[int]int `json:"distribution"`
}

// YesNoBreakdown counts answers to a yes/no question.
type YesNoBreakdown struct {
	Yes int `json:"yes"`
	No  int `json:"no"`
}

// TextBreakdown summarises free-text answers.
type TextBreakdown struct {
	Count       int      `json:"count"`
	TopKeywords []string `json:"top_keywords"`
}

// QuestionAnalysis is the breakdown of one feedback question.
type QuestionAnalysis struct {
	QuestionID     int64               `json:"question_id"`
	QuestionText   string              `json:"question_text"`
	ResponseType   models.ResponseType `json:"response_type"`
	AnalysisResult any                 `json:"analysis_result"`
}

// FeedbackAnalysis is the session summary plus a per-question breakdown.
type FeedbackAnalysis struct {
	SessionID            int64              `json:"session_id"`
	Title                string             `json:"title"`
	RegisteredCount      int                `json:"registered_count"`
	AttendedCount        int                `json:"attended_count"`
	AttendancePercentage float64            `json:"attendance_percentage"`
	AverageRating        *float64           `json:"average_rating"`
	TopKeywords          []string           `json:"top_keywords"`
	FeedbackParticipants int                `json:"feedback_participants"`
	Questions            []QuestionAnalysis `json:"questions"`
}

// FeedbackAnalysis analyses every feedback question of a session.
func (s *Service) FeedbackAnalysis(ctx context.Context, sessionID int64) (*FeedbackAnalysis, error) {
	sum, err := s.SessionSummary(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	questions, err := s.store.ListFeedbackQuestions(ctx, sessionID)
	if err != nil {
		return nil, internal("list feedback questions", err)
	}
	byQuestion := make(map[int64][]ResponseRow)
	for _, r := range sum.Responses {
		byQuestion[r.QuestionID] = append(byQuestion[r.QuestionID], r)
	}

	out := &FeedbackAnalysis{
		SessionID:            sum.Session.ID,
		Title:                sum.Session.Title(),
		RegisteredCount:      sum.Registered,
		AttendedCount:        sum.Attended,
		AttendancePercentage: sum.AttendanceRate(),
		AverageRating:        sum.AvgRating(),
		TopKeywords:          sum.Keywords(),
		FeedbackParticipants: sum.FeedbackParticipants,
		Questions:            make([]QuestionAnalysis, 0, len(questions)),
	}
	for _, q := range questions {
		out.Questions = append(out.Questions, QuestionAnalysis{
			QuestionID:     q.ID,
			QuestionText:   q.QuestionText,
			ResponseType:   q.ResponseType,
			AnalysisResult: AnalyzeQuestion(q, byQuestion[q.ID]),
		})
	}
	return out, nil
}

// AnalyzeQuestion summarises rows answering q according to its response type.
func AnalyzeQuestion(q models.FeedbackQuestion, rows []ResponseRow) any {
	switch {
	case q.ResponseType.IsRating():
		ratings := Ratings(rows)
		return RatingBreakdown{Count: len(ratings), Average: Average(ratings), Distribution: RatingDistribution(rows)}
	case q.ResponseType.IsChoice():
		return choiceCounts(q.Options, rows)
	case q.ResponseType == models.ResponseYesNo:
		var b YesNoBreakdown
		for _, r := range rows {
			switch strings.ToLower(strings.TrimSpace(r.Response)) {
			case "yes", "true":
				b.Yes++
			case "no", "false":
				b.No++
			}
		}
		return b
	default:
		var texts []string
		for _, r := range rows {
			if r.Response != "" {
				texts = append(texts, r.Response)
			}
		}
		return TextBreakdown{Count: len(texts), TopKeywords: TopKeywords(texts)}
	}
}

// choiceCounts counts selected options. Declared options always appear, even at zero.
func choiceCounts(options []string, rows []ResponseRow) map[string]int {
	out := make(map[string]int, len(options))
	for _, o := range options {
		out[o] = 0
	}
	for _, r := range rows {
		var picked []any
		if err := json.Unmarshal([]byte(r.Response), &picked); err != nil {
			continue
		}
		for _, p := range picked {
			if s, ok := p.(string); ok {
				out[s]++
			}
		}
	}
	return out
}
