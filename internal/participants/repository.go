package participants

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/workshop-hub/backend/internal/models"
	"github.com/workshop-hub/backend/pkg/database"
)

// Repository handles participant and participant type persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a participants repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const participantSelect = `SELECT p.id, p.name, p.email, p.contact_number, p.nic, p.district, p.gender,
	p.participant_type_id, COALESCE(pt.name, ''), p.properties, p.password_hash, p.created_at
	FROM participants p LEFT JOIN participant_types pt ON pt.id = p.participant_type_id`

func scanParticipant(row pgx.Row) (models.Participant, error) {
	var p models.Participant
	var props []byte
	if err := row.Scan(&p.ID, &p.Name, &p.Email, &p.ContactNumber, &p.NIC, &p.District, &p.Gender,
		&p.ParticipantTypeID, &p.ParticipantType, &props, &p.PasswordHash, &p.CreatedAt); err != nil {
		return p, err
	}
	if len(props) > 0 {
		if err := json.Unmarshal(props, &p.Properties); err != nil {
			return p, fmt.Errorf("participant %d properties: %w", p.ID, err)
		}
	}
	if p.Properties == nil {
		p.Properties = map[string]any{}
	}
	return p, nil
}

func (r *Repository) queryParticipants(ctx context.Context, q string, args ...any) ([]models.Participant, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *Repository) getParticipant(ctx context.Context, where string, arg any) (*models.Participant, error) {
	p, err := scanParticipant(r.pool.QueryRow(ctx, participantSelect+" WHERE "+where, arg))
	if database.NoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListParticipants returns every participant by id.
func (r *Repository) ListParticipants(ctx context.Context) ([]models.Participant, error) {
	return r.queryParticipants(ctx, participantSelect+` ORDER BY p.id`)
}

// ListParticipantsByIDs returns the participants among ids that exist.
func (r *Repository) ListParticipantsByIDs(ctx context.Context, ids []int64) ([]models.Participant, error) {
	return r.queryParticipants(ctx, participantSelect+` WHERE p.id = ANY($1) ORDER BY p.id`, ids)
}

// GetParticipant returns a participant by id, or nil if absent.
func (r *Repository) GetParticipant(ctx context.Context, id int64) (*models.Participant, error) {
	return r.getParticipant(ctx, "p.id = $1", id)
}

// GetParticipantByNIC returns a participant by national id, or nil if absent.
func (r *Repository) GetParticipantByNIC(ctx context.Context, nic string) (*models.Participant, error) {
	return r.getParticipant(ctx, "p.nic = $1", nic)
}

func propertiesJSON(p *models.Participant) ([]byte, error) {
	if p.Properties == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p.Properties)
}

// CreateParticipant inserts p and fills its id and creation time.
func (r *Repository) CreateParticipant(ctx context.Context, p *models.Participant) error {
	props, err := propertiesJSON(p)
	if err != nil {
		return err
	}
	const q = `INSERT INTO participants (name, email, contact_number, nic, district, gender, participant_type_id, properties, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, p.Name, p.Email, p.ContactNumber, p.NIC, p.District, p.Gender,
		p.ParticipantTypeID, props, p.PasswordHash).Scan(&p.ID, &p.CreatedAt)
}

// UpdateParticipant writes p's profile fields. The password is left untouched.
func (r *Repository) UpdateParticipant(ctx context.Context, p *models.Participant) (bool, error) {
	props, err := propertiesJSON(p)
	if err != nil {
		return false, err
	}
	const q = `UPDATE participants SET name = $2, email = $3, contact_number = $4, nic = $5, district = $6,
		gender = $7, participant_type_id = $8, properties = $9 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, p.ID, p.Name, p.Email, p.ContactNumber, p.NIC, p.District, p.Gender,
		p.ParticipantTypeID, props)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteParticipant removes a participant and, by cascade, their registrations and answers.
func (r *Repository) DeleteParticipant(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM participants WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SetPassword replaces a participant's password hash.
func (r *Repository) SetPassword(ctx context.Context, id int64, hash string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE participants SET password_hash = $2 WHERE id = $1`, id, hash)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Attendance returns a participant's registrations with session and workshop details.
func (r *Repository) Attendance(ctx context.Context, participantID int64) ([]SessionAttendance, error) {
	const q = `SELECT s.id, w.title, s.date, to_char(s.time, 'HH24:MI:SS'), s.location, r.attendance
		FROM registrations r
		JOIN sessions s ON s.id = r.session_id
		JOIN workshops w ON w.id = s.workshop_id
		WHERE r.participant_id = $1 ORDER BY s.date, s.time, s.id`
	rows, err := r.pool.Query(ctx, q, participantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []SessionAttendance
	for rows.Next() {
		var sa SessionAttendance
		if err := rows.Scan(&sa.SessionID, &sa.WorkshopTitle, &sa.Date.Time, &sa.Time, &sa.Location, &sa.Attended); err != nil {
			return nil, err
		}
		list = append(list, sa)
	}
	return list, rows.Err()
}

// AnsweredSessionIDs returns the sessions a participant has answered any feedback question for.
func (r *Repository) AnsweredSessionIDs(ctx context.Context, participantID int64) ([]int64, error) {
	const q = `SELECT DISTINCT fq.session_id FROM feedback_responses fr
		JOIN feedback_questions fq ON fq.id = fr.question_id WHERE fr.participant_id = $1`
	rows, err := r.pool.Query(ctx, q, participantID)
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

const typeSelect = `SELECT id, name, description, properties FROM participant_types`

func scanType(row pgx.Row) (models.ParticipantType, error) {
	var t models.ParticipantType
	var props []byte
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &props); err != nil {
		return t, err
	}
	if len(props) > 0 {
		if err := json.Unmarshal(props, &t.Properties); err != nil {
			return t, fmt.Errorf("participant type %d properties: %w", t.ID, err)
		}
	}
	if t.Properties == nil {
		t.Properties = models.PropertySchema{}
	}
	return t, nil
}

// ListTypes returns every participant type by id.
func (r *Repository) ListTypes(ctx context.Context) ([]models.ParticipantType, error) {
	rows, err := r.pool.Query(ctx, typeSelect+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.ParticipantType
	for rows.Next() {
		t, err := scanType(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// GetType returns a participant type by id, or nil if absent.
func (r *Repository) GetType(ctx context.Context, id int64) (*models.ParticipantType, error) {
	t, err := scanType(r.pool.QueryRow(ctx, typeSelect+` WHERE id = $1`, id))
	if database.NoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateType inserts a participant type and fills its id.
func (r *Repository) CreateType(ctx context.Context, t *models.ParticipantType) error {
	props, err := json.Marshal(t.Properties)
	if err != nil {
		return err
	}
	const q = `INSERT INTO participant_types (name, description, properties) VALUES ($1, $2, $3) RETURNING id`
	return r.pool.QueryRow(ctx, q, t.Name, t.Description, props).Scan(&t.ID)
}

// UpdateType replaces a participant type.
func (r *Repository) UpdateType(ctx context.Context, t *models.ParticipantType) (bool, error) {
	props, err := json.Marshal(t.Properties)
	if err != nil {
		return false, err
	}
	tag, err := r.pool.Exec(ctx, `UPDATE participant_types SET name = $2, description = $3, properties = $4 WHERE id = $1`,
		t.ID, t.Name, t.Description, props)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteType removes a participant type. Its participants become unassigned.
func (r *Repository) DeleteType(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM participant_types WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
