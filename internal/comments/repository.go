package comments

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/workshop-hub/backend/internal/models"
	"github.com/workshop-hub/backend/pkg/database"
)

// Repository handles admin comment persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a comments repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create stores the session's comment. It returns nil when the session already has one.
func (r *Repository) Create(ctx context.Context, sessionID int64, text string) (*models.AdminComment, error) {
	const q = `INSERT INTO admin_comments (session_id, comment) VALUES ($1, $2)
		ON CONFLICT (session_id) DO NOTHING
		RETURNING id, session_id, comment, created_at, updated_at`
	var c models.AdminComment
	err := r.pool.QueryRow(ctx, q, sessionID, text).Scan(&c.ID, &c.SessionID, &c.Comment, &c.CreatedAt, &c.UpdatedAt)
	if database.NoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Update replaces the session's comment text. It returns nil when there is no comment.
func (r *Repository) Update(ctx context.Context, sessionID int64, text string) (*models.AdminComment, error) {
	const q = `UPDATE admin_comments SET comment = $2, updated_at = NOW() WHERE session_id = $1
		RETURNING id, session_id, comment, created_at, updated_at`
	var c models.AdminComment
	err := r.pool.QueryRow(ctx, q, sessionID, text).Scan(&c.ID, &c.SessionID, &c.Comment, &c.CreatedAt, &c.UpdatedAt)
	if database.NoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// BySession returns the comments of a session, newest first.
func (r *Repository) BySession(ctx context.Context, sessionID int64) ([]models.AdminComment, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, session_id, comment, created_at, updated_at
		FROM admin_comments WHERE session_id = $1 ORDER BY created_at DESC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.AdminComment
	for rows.Next() {
		var c models.AdminComment
		if err := rows.Scan(&c.ID, &c.SessionID, &c.Comment, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// ByWorkshop returns the comments on every session of a workshop, newest first.
func (r *Repository) ByWorkshop(ctx context.Context, workshopID int64) ([]WorkshopComment, error) {
	const q = `SELECT c.id, c.session_id, s.date, c.comment, c.created_at, c.updated_at
		FROM admin_comments c JOIN sessions s ON s.id = c.session_id
		WHERE s.workshop_id = $1 ORDER BY c.created_at DESC`
	rows, err := r.pool.Query(ctx, q, workshopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []WorkshopComment
	for rows.Next() {
		var c WorkshopComment
		if err := rows.Scan(&c.ID, &c.SessionID, &c.SessionDate.Time, &c.Comment, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}
