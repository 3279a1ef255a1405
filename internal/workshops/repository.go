package workshops

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/workshop-hub/backend/internal/models"
	"github.com/workshop-hub/backend/pkg/database"
)

// Repository handles workshop and session persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a workshops repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const sessionSelect = `SELECT s.id, s.workshop_id, w.title, s.date, to_char(s.time, 'HH24:MI:SS'),
	s.location, s.target_audience, s.token, s.status, s.created_at
	FROM sessions s JOIN workshops w ON w.id = s.workshop_id`

func scanSession(row pgx.Row) (models.Session, error) {
	var s models.Session
	err := row.Scan(&s.ID, &s.WorkshopID, &s.WorkshopTitle, &s.Date.Time, &s.Time,
		&s.Location, &s.TargetAudience, &s.Token, &s.Status, &s.CreatedAt)
	return s, err
}

func collectSessions(rows pgx.Rows) ([]models.Session, error) {
	defer rows.Close()
	var list []models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// ListWorkshops returns all workshops ordered by id.
func (r *Repository) ListWorkshops(ctx context.Context) ([]models.Workshop, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, title, description, created_at FROM workshops ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Workshop
	for rows.Next() {
		var w models.Workshop
		if err := rows.Scan(&w.ID, &w.Title, &w.Description, &w.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, w)
	}
	return list, rows.Err()
}

// GetWorkshop returns a workshop or nil when absent.
func (r *Repository) GetWorkshop(ctx context.Context, id int64) (*models.Workshop, error) {
	const q = `SELECT id, title, description, created_at FROM workshops WHERE id = $1`
	var w models.Workshop
	err := r.pool.QueryRow(ctx, q, id).Scan(&w.ID, &w.Title, &w.Description, &w.CreatedAt)
	if database.NoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// CreateWorkshop inserts a workshop.
func (r *Repository) CreateWorkshop(ctx context.Context, w *models.Workshop) error {
	const q = `INSERT INTO workshops (title, description) VALUES ($1, $2) RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, w.Title, w.Description).Scan(&w.ID, &w.CreatedAt)
}

// UpdateWorkshop rewrites title and description. Returns false if the workshop does not exist.
func (r *Repository) UpdateWorkshop(ctx context.Context, w *models.Workshop) (bool, error) {
	const q = `UPDATE workshops SET title = $2, description = $3 WHERE id = $1 RETURNING created_at`
	err := r.pool.QueryRow(ctx, q, w.ID, w.Title, w.Description).Scan(&w.CreatedAt)
	if database.NoRows(err) {
		return false, nil
	}
	return err == nil, err
}

// DeleteWorkshop removes a workshop and, by cascade, its sessions.
func (r *Repository) DeleteWorkshop(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM workshops WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListSessions returns sessions matching f ordered by date, time and id.
func (r *Repository) ListSessions(ctx context.Context, f SessionFilter) ([]models.Session, error) {
	q := sessionSelect
	var args []any
	switch {
	case f.WorkshopID != nil:
		q += ` WHERE s.workshop_id = $1`
		args = append(args, *f.WorkshopID)
	case f.IDs != nil:
		q += ` WHERE s.id = ANY($1)`
		args = append(args, f.IDs)
	}
	rows, err := r.pool.Query(ctx, q+` ORDER BY s.date, s.time, s.id`, args...)
	if err != nil {
		return nil, err
	}
	return collectSessions(rows)
}

// GetSession returns a session or nil when absent.
func (r *Repository) GetSession(ctx context.Context, id int64) (*models.Session, error) {
	s, err := scanSession(r.pool.QueryRow(ctx, sessionSelect+` WHERE s.id = $1`, id))
	if database.NoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetSessionByToken resolves a check-in token to its session, or nil.
func (r *Repository) GetSessionByToken(ctx context.Context, token uuid.UUID) (*models.Session, error) {
	s, err := scanSession(r.pool.QueryRow(ctx, sessionSelect+` WHERE s.token = $1`, token))
	if database.NoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSession inserts a session with the token and status already set on s.
func (r *Repository) CreateSession(ctx context.Context, s *models.Session) error {
	const q = `INSERT INTO sessions (workshop_id, date, time, location, target_audience, token, status)
		VALUES ($1, $2, $3::time, $4, $5, $6, $7) RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, s.WorkshopID, s.Date.Time, s.Time, s.Location, s.TargetAudience, s.Token, s.Status).
		Scan(&s.ID, &s.CreatedAt)
}

// UpdateSession rewrites the schedule fields of a session; status and token are untouched.
func (r *Repository) UpdateSession(ctx context.Context, s *models.Session) (bool, error) {
	const q = `UPDATE sessions SET workshop_id = $2, date = $3, time = $4::time, location = $5, target_audience = $6
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, s.ID, s.WorkshopID, s.Date.Time, s.Time, s.Location, s.TargetAudience)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteSession removes a session and its dependent rows.
func (r *Repository) DeleteSession(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

var errSessionMissing = errors.New("session missing")

// TransitionStatus locks the session row, asks allow whether the move from the
// current status is legal, then writes the new status. Returns nil when the session does not exist.
func (r *Repository) TransitionStatus(ctx context.Context, id int64, to models.SessionStatus, allow func(from models.SessionStatus) error) (*models.Session, error) {
	err := database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var from models.SessionStatus
		err := tx.QueryRow(ctx, `SELECT status FROM sessions WHERE id = $1 FOR UPDATE`, id).Scan(&from)
		if database.NoRows(err) {
			return errSessionMissing
		}
		if err != nil {
			return err
		}
		if err := allow(from); err != nil {
			return err
		}
		if from == to {
			return nil
		}
		_, err = tx.Exec(ctx, `UPDATE sessions SET status = $2 WHERE id = $1`, id, to)
		return err
	})
	if errors.Is(err, errSessionMissing) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.GetSession(ctx, id)
}

// SessionTrainers returns the assigned trainers of each session.
func (r *Repository) SessionTrainers(ctx context.Context, sessionIDs []int64) (map[int64][]TrainerRef, error) {
	const q = `SELECT ts.session_id, t.id, t.name FROM trainer_sessions ts
		JOIN trainers t ON t.id = ts.trainer_id
		WHERE ts.session_id = ANY($1) ORDER BY ts.id`
	rows, err := r.pool.Query(ctx, q, sessionIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[int64][]TrainerRef)
	for rows.Next() {
		var sid int64
		var t TrainerRef
		if err := rows.Scan(&sid, &t.ID, &t.Name); err != nil {
			return nil, err
		}
		out[sid] = append(out[sid], t)
	}
	return out, rows.Err()
}

// SessionMaterials returns the materials of each session, oldest first.
func (r *Repository) SessionMaterials(ctx context.Context, sessionIDs []int64) (map[int64][]models.SessionMaterial, error) {
	const q = `SELECT id, session_id, url, s3_key, uploaded_by, description, uploaded_at
		FROM session_materials WHERE session_id = ANY($1) ORDER BY uploaded_at, id`
	rows, err := r.pool.Query(ctx, q, sessionIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[int64][]models.SessionMaterial)
	for rows.Next() {
		var m models.SessionMaterial
		if err := rows.Scan(&m.ID, &m.SessionID, &m.URL, &m.S3Key, &m.UploadedBy, &m.Description, &m.UploadedAt); err != nil {
			return nil, err
		}
		out[m.SessionID] = append(out[m.SessionID], m)
	}
	return out, rows.Err()
}

func (r *Repository) emails(ctx context.Context, q string, args ...any) ([]string, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []string{}
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// SessionEmails returns the emails of a session's registrants in registration order.
func (r *Repository) SessionEmails(ctx context.Context, sessionID int64) ([]string, error) {
	return r.emails(ctx, `SELECT p.email FROM registrations r
		JOIN participants p ON p.id = r.participant_id
		WHERE r.session_id = $1 ORDER BY r.id`, sessionID)
}

// ParticipantEmails returns every distinct participant email.
func (r *Repository) ParticipantEmails(ctx context.Context) ([]string, error) {
	return r.emails(ctx, `SELECT DISTINCT email FROM participants ORDER BY email`)
}

// WorkshopParticipants returns one entry per registration across the workshop's sessions.
func (r *Repository) WorkshopParticipants(ctx context.Context, workshopID int64) ([]ParticipantRef, error) {
	const q = `SELECT p.id, p.name, p.email, p.contact_number, p.nic, p.district, p.gender
		FROM registrations r
		JOIN participants p ON p.id = r.participant_id
		JOIN sessions s ON s.id = r.session_id
		WHERE s.workshop_id = $1 ORDER BY r.id`
	rows, err := r.pool.Query(ctx, q, workshopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []ParticipantRef
	for rows.Next() {
		var p ParticipantRef
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.ContactNumber, &p.NIC, &p.District, &p.Gender); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
