package trainers

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/workshop-hub/backend/internal/models"
	"github.com/workshop-hub/backend/pkg/database"
)

// Repository handles trainer, credential and assignment persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a trainers repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const trainerSelect = `SELECT id, name, designation, email, contact_number, expertise, created_at FROM trainers`

func scanTrainer(row pgx.Row) (models.Trainer, error) {
	var t models.Trainer
	err := row.Scan(&t.ID, &t.Name, &t.Designation, &t.Email, &t.ContactNumber, &t.Expertise, &t.CreatedAt)
	return t, err
}

// ListTrainers returns every trainer by id.
func (r *Repository) ListTrainers(ctx context.Context) ([]models.Trainer, error) {
	rows, err := r.pool.Query(ctx, trainerSelect+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Trainer
	for rows.Next() {
		t, err := scanTrainer(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// GetTrainer returns a trainer by id, or nil if absent.
func (r *Repository) GetTrainer(ctx context.Context, id int64) (*models.Trainer, error) {
	t, err := scanTrainer(r.pool.QueryRow(ctx, trainerSelect+` WHERE id = $1`, id))
	if database.NoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTrainer inserts t and fills its id and creation time.
func (r *Repository) CreateTrainer(ctx context.Context, t *models.Trainer) error {
	const q = `INSERT INTO trainers (name, designation, email, contact_number, expertise)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, t.Name, t.Designation, t.Email, t.ContactNumber, t.Expertise).Scan(&t.ID, &t.CreatedAt)
}

// UpdateTrainer replaces a trainer's fields.
func (r *Repository) UpdateTrainer(ctx context.Context, t *models.Trainer) (bool, error) {
	const q = `UPDATE trainers SET name = $2, designation = $3, email = $4, contact_number = $5, expertise = $6
		WHERE id = $1 RETURNING created_at`
	err := r.pool.QueryRow(ctx, q, t.ID, t.Name, t.Designation, t.Email, t.ContactNumber, t.Expertise).Scan(&t.CreatedAt)
	if database.NoRows(err) {
		return false, nil
	}
	return err == nil, err
}

// DeleteTrainer removes a trainer with its credential and assignments.
func (r *Repository) DeleteTrainer(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM trainers WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// AssignedSessionIDs returns the sessions a trainer is assigned to.
func (r *Repository) AssignedSessionIDs(ctx context.Context, trainerID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT session_id FROM trainer_sessions WHERE trainer_id = $1 ORDER BY session_id`, trainerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const credentialSelect = `SELECT id, trainer_id, username, password_hash, created_at, updated_at FROM trainer_credentials`

func (r *Repository) getCredential(ctx context.Context, where string, arg any) (*models.TrainerCredential, error) {
	var c models.TrainerCredential
	err := r.pool.QueryRow(ctx, credentialSelect+" WHERE "+where, arg).
		Scan(&c.ID, &c.TrainerID, &c.Username, &c.PasswordHash, &c.CreatedAt, &c.UpdatedAt)
	if database.NoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CredentialByTrainer returns a trainer's credential, or nil if none exists.
func (r *Repository) CredentialByTrainer(ctx context.Context, trainerID int64) (*models.TrainerCredential, error) {
	return r.getCredential(ctx, "trainer_id = $1", trainerID)
}

// CredentialByUsername returns the credential with username, or nil if none exists.
func (r *Repository) CredentialByUsername(ctx context.Context, username string) (*models.TrainerCredential, error) {
	return r.getCredential(ctx, "username = $1", username)
}

// CreateCredential inserts c and fills its id and timestamps.
func (r *Repository) CreateCredential(ctx context.Context, c *models.TrainerCredential) error {
	const q = `INSERT INTO trainer_credentials (trainer_id, username, password_hash) VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, c.TrainerID, c.Username, c.PasswordHash).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// UpdateCredential writes c's username and password hash.
func (r *Repository) UpdateCredential(ctx context.Context, c *models.TrainerCredential) (bool, error) {
	const q = `UPDATE trainer_credentials SET username = $2, password_hash = $3, updated_at = NOW()
		WHERE trainer_id = $1 RETURNING updated_at`
	err := r.pool.QueryRow(ctx, q, c.TrainerID, c.Username, c.PasswordHash).Scan(&c.UpdatedAt)
	if database.NoRows(err) {
		return false, nil
	}
	return err == nil, err
}

// Assign links trainerIDs to a session in one transaction and returns the
// trainers that were not already assigned.
func (r *Repository) Assign(ctx context.Context, sessionID int64, trainerIDs []int64) ([]int64, error) {
	created := []int64{}
	err := database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		const q = `INSERT INTO trainer_sessions (trainer_id, session_id) VALUES ($1, $2)
			ON CONFLICT (trainer_id, session_id) DO NOTHING RETURNING trainer_id`
		for _, tid := range trainerIDs {
			var id int64
			err := tx.QueryRow(ctx, q, tid, sessionID).Scan(&id)
			if database.NoRows(err) {
				continue
			}
			if err != nil {
				return err
			}
			created = append(created, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Unassign removes a trainer from a session.
func (r *Repository) Unassign(ctx context.Context, sessionID, trainerID int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM trainer_sessions WHERE session_id = $1 AND trainer_id = $2`, sessionID, trainerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
