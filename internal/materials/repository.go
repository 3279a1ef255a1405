package materials

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/workshop-hub/backend/internal/models"
	"github.com/workshop-hub/backend/pkg/database"
)

// Repository handles session material persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a materials repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const materialSelect = `SELECT id, session_id, url, s3_key, uploaded_by, description, uploaded_at FROM session_materials`

// List returns a session's materials, oldest first.
func (r *Repository) List(ctx context.Context, sessionID int64) ([]models.SessionMaterial, error) {
	rows, err := r.pool.Query(ctx, materialSelect+` WHERE session_id = $1 ORDER BY uploaded_at, id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.SessionMaterial
	for rows.Next() {
		var m models.SessionMaterial
		if err := rows.Scan(&m.ID, &m.SessionID, &m.URL, &m.S3Key, &m.UploadedBy, &m.Description, &m.UploadedAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// Get returns a material by id, or nil if absent.
func (r *Repository) Get(ctx context.Context, id int64) (*models.SessionMaterial, error) {
	var m models.SessionMaterial
	err := r.pool.QueryRow(ctx, materialSelect+` WHERE id = $1`, id).
		Scan(&m.ID, &m.SessionID, &m.URL, &m.S3Key, &m.UploadedBy, &m.Description, &m.UploadedAt)
	if database.NoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts m and fills its id and upload time.
func (r *Repository) Create(ctx context.Context, m *models.SessionMaterial) error {
	const q = `INSERT INTO session_materials (session_id, url, s3_key, uploaded_by, description)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, uploaded_at`
	return r.pool.QueryRow(ctx, q, m.SessionID, m.URL, m.S3Key, m.UploadedBy, m.Description).Scan(&m.ID, &m.UploadedAt)
}

// Delete removes a material row.
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM session_materials WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// IsAssigned reports whether a trainer is assigned to a session.
func (r *Repository) IsAssigned(ctx context.Context, trainerID, sessionID int64) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM trainer_sessions WHERE trainer_id = $1 AND session_id = $2)`,
		trainerID, sessionID).Scan(&ok)
	return ok, err
}
