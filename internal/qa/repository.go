package qa

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/workshop-hub/backend/internal/models"
	"github.com/workshop-hub/backend/pkg/database"
)

// Repository handles live Q&A question persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a Q&A repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const questionSelect = `SELECT q.id, q.session_id, q.participant_id, p.name, q.question_text, q.created_at, q.is_answered
	FROM questions q JOIN participants p ON p.id = q.participant_id`

func scanQuestion(row pgx.Row) (models.Question, error) {
	var q models.Question
	err := row.Scan(&q.ID, &q.SessionID, &q.ParticipantID, &q.ParticipantName, &q.QuestionText, &q.CreatedAt, &q.IsAnswered)
	return q, err
}

// Filter narrows question lists. Nil fields do not filter.
type Filter struct {
	SessionID     *int64
	ParticipantID *int64
	TrainerID     *int64
	Answered      *bool
}

func (f Filter) where() (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.SessionID != nil {
		add("q.session_id = $%d", *f.SessionID)
	}
	if f.ParticipantID != nil {
		add("q.participant_id = $%d", *f.ParticipantID)
	}
	if f.TrainerID != nil {
		add("q.session_id IN (SELECT session_id FROM trainer_sessions WHERE trainer_id = $%d)", *f.TrainerID)
	}
	if f.Answered != nil {
		add("q.is_answered = $%d", *f.Answered)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns questions matching f, newest first.
func (r *Repository) List(ctx context.Context, f Filter) ([]models.Question, error) {
	where, args := f.where()
	rows, err := r.pool.Query(ctx, questionSelect+where+` ORDER BY q.created_at DESC, q.id DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, q)
	}
	return list, rows.Err()
}

// Get returns a question by id, or nil if absent.
func (r *Repository) Get(ctx context.Context, id int64) (*models.Question, error) {
	q, err := scanQuestion(r.pool.QueryRow(ctx, questionSelect+` WHERE q.id = $1`, id))
	if database.NoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// Create inserts q as unanswered and fills its id and creation time.
func (r *Repository) Create(ctx context.Context, q *models.Question) error {
	const query = `INSERT INTO questions (session_id, participant_id, question_text, is_answered)
		VALUES ($1, $2, $3, FALSE) RETURNING id, created_at`
	q.IsAnswered = false
	return r.pool.QueryRow(ctx, query, q.SessionID, q.ParticipantID, q.QuestionText).Scan(&q.ID, &q.CreatedAt)
}

// SetAnswered writes a question's answered flag.
func (r *Repository) SetAnswered(ctx context.Context, id int64, answered bool) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE questions SET is_answered = $2 WHERE id = $1`, id, answered)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// IsRegistered reports whether the participant holds a registration for the session.
func (r *Repository) IsRegistered(ctx context.Context, participantID, sessionID int64) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM registrations WHERE participant_id = $1 AND session_id = $2)`,
		participantID, sessionID).Scan(&ok)
	return ok, err
}
