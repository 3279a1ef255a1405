package feedback

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/workshop-hub/backend/internal/models"
	"github.com/workshop-hub/backend/pkg/database"
)

// Repository handles feedback persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a feedback repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const questionSelect = `SELECT id, session_id, question_text, response_type, options FROM feedback_questions`

func scanQuestion(row pgx.Row) (models.FeedbackQuestion, error) {
	var fq models.FeedbackQuestion
	var options []byte
	if err := row.Scan(&fq.ID, &fq.SessionID, &fq.QuestionText, &fq.ResponseType, &options); err != nil {
		return fq, err
	}
	if len(options) > 0 {
		if err := json.Unmarshal(options, &fq.Options); err != nil {
			return fq, fmt.Errorf("question %d options: %w", fq.ID, err)
		}
	}
	return fq, nil
}

// CreateQuestion inserts a question and fills its id.
func (r *Repository) CreateQuestion(ctx context.Context, fq *models.FeedbackQuestion) error {
	var options []byte
	if fq.Options != nil {
		b, err := json.Marshal(fq.Options)
		if err != nil {
			return err
		}
		options = b
	}
	const q = `INSERT INTO feedback_questions (session_id, question_text, response_type, options)
		VALUES ($1, $2, $3, $4) RETURNING id`
	return r.pool.QueryRow(ctx, q, fq.SessionID, fq.QuestionText, fq.ResponseType, options).Scan(&fq.ID)
}

// GetQuestion returns a question by id, or nil if absent.
func (r *Repository) GetQuestion(ctx context.Context, id int64) (*models.FeedbackQuestion, error) {
	fq, err := scanQuestion(r.pool.QueryRow(ctx, questionSelect+` WHERE id = $1`, id))
	if database.NoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &fq, nil
}

// ListQuestions returns a session's questions by id.
func (r *Repository) ListQuestions(ctx context.Context, sessionID int64) ([]models.FeedbackQuestion, error) {
	rows, err := r.pool.Query(ctx, questionSelect+` WHERE session_id = $1 ORDER BY id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.FeedbackQuestion
	for rows.Next() {
		fq, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, fq)
	}
	return list, rows.Err()
}

// SaveResponse stores a participant's answer, replacing a different earlier one.
// It returns nil when the stored answer already equals response.
func (r *Repository) SaveResponse(ctx context.Context, participantID, questionID int64, response string) (*models.FeedbackResponse, bool, error) {
	const q = `INSERT INTO feedback_responses (participant_id, question_id, response) VALUES ($1, $2, $3)
		ON CONFLICT (participant_id, question_id) DO UPDATE
			SET response = EXCLUDED.response, submitted_at = NOW()
			WHERE feedback_responses.response IS DISTINCT FROM EXCLUDED.response
		RETURNING id, participant_id, question_id, response, submitted_at, (xmax = 0)`
	var fr models.FeedbackResponse
	var inserted bool
	err := r.pool.QueryRow(ctx, q, participantID, questionID, response).
		Scan(&fr.ID, &fr.ParticipantID, &fr.QuestionID, &fr.Response, &fr.SubmittedAt, &inserted)
	if database.NoRows(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &fr, !inserted, nil
}

// ListResponses returns every answer to a session's questions.
func (r *Repository) ListResponses(ctx context.Context, sessionID int64) ([]models.FeedbackResponse, error) {
	const q = `SELECT fr.id, fr.participant_id, fr.question_id, fr.response, fr.submitted_at
		FROM feedback_responses fr JOIN feedback_questions fq ON fq.id = fr.question_id
		WHERE fq.session_id = $1 ORDER BY fr.id`
	rows, err := r.pool.Query(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.FeedbackResponse
	for rows.Next() {
		var fr models.FeedbackResponse
		if err := rows.Scan(&fr.ID, &fr.ParticipantID, &fr.QuestionID, &fr.Response, &fr.SubmittedAt); err != nil {
			return nil, err
		}
		list = append(list, fr)
	}
	return list, rows.Err()
}
