package registrations

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/workshop-hub/backend/internal/models"
	"github.com/workshop-hub/backend/internal/workshops"
	"github.com/workshop-hub/backend/pkg/database"
)

// Repository handles registration persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a registrations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const registrationColumns = `id, participant_id, session_id, registered_on, attendance`

// Create inserts a registration for the pair. Returns nil when the pair is already registered.
func (r *Repository) Create(ctx context.Context, participantID, sessionID int64) (*models.Registration, error) {
	const q = `INSERT INTO registrations (participant_id, session_id) VALUES ($1, $2)
		ON CONFLICT (participant_id, session_id) DO NOTHING
		RETURNING ` + registrationColumns
	var reg models.Registration
	err := r.pool.QueryRow(ctx, q, participantID, sessionID).
		Scan(&reg.ID, &reg.ParticipantID, &reg.SessionID, &reg.RegisteredOn, &reg.Attendance)
	if database.NoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// Cancel deletes the registration for the pair. Returns false if none existed.
func (r *Repository) Cancel(ctx context.Context, participantID, sessionID int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM registrations WHERE participant_id = $1 AND session_id = $2`, participantID, sessionID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// attend flips attendance with a conditional update and checks existence when nothing changed.
func (r *Repository) attend(ctx context.Context, where string, args ...any) (models.AttendanceStatus, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `UPDATE registrations SET attendance = TRUE WHERE `+where+` AND attendance = FALSE RETURNING id`, args...).Scan(&id)
	if err == nil {
		return models.AttendanceSuccess, nil
	}
	if !database.NoRows(err) {
		return "", err
	}
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM registrations WHERE `+where+`)`, args...).Scan(&exists); err != nil {
		return "", err
	}
	if exists {
		return models.AttendanceAlreadyMarked, nil
	}
	return models.AttendanceNotRegistered, nil
}

// MarkAttended records attendance for the pair.
func (r *Repository) MarkAttended(ctx context.Context, participantID, sessionID int64) (models.AttendanceStatus, error) {
	return r.attend(ctx, `participant_id = $1 AND session_id = $2`, participantID, sessionID)
}

// MarkAttendedByID records attendance for a registration id.
func (r *Repository) MarkAttendedByID(ctx context.Context, registrationID int64) (models.AttendanceStatus, error) {
	return r.attend(ctx, `id = $1`, registrationID)
}

// SessionIDs returns the sessions a participant registered for, optionally only attended ones.
func (r *Repository) SessionIDs(ctx context.Context, participantID int64, attendedOnly bool) ([]int64, error) {
	q := `SELECT session_id FROM registrations WHERE participant_id = $1`
	if attendedOnly {
		q += ` AND attendance = TRUE`
	}
	rows, err := r.pool.Query(ctx, q+` ORDER BY id`, participantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ParticipantResponses returns a participant's feedback answers with the session each belongs to.
func (r *Repository) ParticipantResponses(ctx context.Context, participantID int64) ([]SessionResponse, error) {
	const q = `SELECT fq.session_id, fr.id, fr.participant_id, fr.question_id, fr.response, fr.submitted_at
		FROM feedback_responses fr JOIN feedback_questions fq ON fq.id = fr.question_id
		WHERE fr.participant_id = $1 ORDER BY fr.id`
	rows, err := r.pool.Query(ctx, q, participantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []SessionResponse
	for rows.Next() {
		var sr SessionResponse
		fr := &sr.Response
		if err := rows.Scan(&sr.SessionID, &fr.ID, &fr.ParticipantID, &fr.QuestionID, &fr.Response, &fr.SubmittedAt); err != nil {
			return nil, err
		}
		list = append(list, sr)
	}
	return list, rows.Err()
}

// Roster returns the registrants of a session with their attendance flag.
func (r *Repository) Roster(ctx context.Context, sessionID int64) ([]Registrant, error) {
	const q = `SELECT p.id, p.name, p.email, p.contact_number, p.nic, p.district, p.gender, r.attendance
		FROM registrations r JOIN participants p ON p.id = r.participant_id
		WHERE r.session_id = $1 ORDER BY r.id`
	rows, err := r.pool.Query(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Registrant
	for rows.Next() {
		var reg Registrant
		p := &reg.Participant
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.ContactNumber, &p.NIC, &p.District, &p.Gender, &reg.Attended); err != nil {
			return nil, err
		}
		list = append(list, reg)
	}
	return list, rows.Err()
}

// Registrant is a session registrant.
type Registrant struct {
	Participant workshops.ParticipantRef
	Attended    bool
}
