package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/workshop-hub/backend/internal/models"
	"github.com/workshop-hub/backend/pkg/database"
)

// Repository is the PostgreSQL read model behind Service.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an analytics repository.
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

// filter accumulates positional WHERE conditions.
type filter struct {
	conds []string
	args  []any
}

func (f *filter) add(cond string, arg any) {
	f.args = append(f.args, arg)
	f.conds = append(f.conds, fmt.Sprintf(cond, len(f.args)))
}

func (f *filter) where() string {
	if len(f.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conds, " AND ")
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

// ListSessions returns sessions ordered by date, time and id (reversed when q.NewestFirst).
func (r *Repository) ListSessions(ctx context.Context, q SessionQuery) ([]models.Session, error) {
	var f filter
	if q.WorkshopID != nil {
		f.add("s.workshop_id = $%d", *q.WorkshopID)
	}
	if q.From != nil {
		f.add("s.date >= $%d::date", q.From.Format(models.DateLayout))
	}
	if q.To != nil {
		f.add("s.date <= $%d::date", q.To.Format(models.DateLayout))
	}
	order := " ORDER BY s.date, s.time, s.id"
	if q.NewestFirst {
		order = " ORDER BY s.date DESC, s.time DESC, s.id DESC"
	}
	rows, err := r.pool.Query(ctx, sessionSelect+f.where()+order, f.args...)
	if err != nil {
		return nil, err
	}
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

// EarliestSessionDate returns the first session date on record, nil when there are none.
func (r *Repository) EarliestSessionDate(ctx context.Context) (*time.Time, error) {
	var t *time.Time
	if err := r.pool.QueryRow(ctx, `SELECT MIN(date) FROM sessions`).Scan(&t); err != nil {
		return nil, err
	}
	return t, nil
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

// ListWorkshops returns workshops by id.
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

const trainerSelect = `SELECT id, name, designation, email, contact_number, expertise, created_at FROM trainers`

func scanTrainer(row pgx.Row) (models.Trainer, error) {
	var t models.Trainer
	err := row.Scan(&t.ID, &t.Name, &t.Designation, &t.Email, &t.ContactNumber, &t.Expertise, &t.CreatedAt)
	return t, err
}

// GetTrainer returns a trainer or nil when absent.
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

// ListTrainers returns trainers by id.
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

// ListTrainerSessions maps trainers to their assigned sessions; trainerID nil covers every trainer.
func (r *Repository) ListTrainerSessions(ctx context.Context, trainerID *int64) (map[int64][]models.Session, error) {
	const q = `SELECT ts.trainer_id, s.id, s.workshop_id, w.title, s.date, to_char(s.time, 'HH24:MI:SS'),
		s.location, s.target_audience, s.token, s.status, s.created_at
		FROM trainer_sessions ts
		JOIN sessions s ON s.id = ts.session_id
		JOIN workshops w ON w.id = s.workshop_id
		WHERE $1::bigint IS NULL OR ts.trainer_id = $1
		ORDER BY ts.id`
	rows, err := r.pool.Query(ctx, q, trainerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]models.Session)
	for rows.Next() {
		var tid int64
		var s models.Session
		if err := rows.Scan(&tid, &s.ID, &s.WorkshopID, &s.WorkshopTitle, &s.Date.Time, &s.Time,
			&s.Location, &s.TargetAudience, &s.Token, &s.Status, &s.CreatedAt); err != nil {
			return nil, err
		}
		out[tid] = append(out[tid], s)
	}
	return out, rows.Err()
}

// ListRegistrations returns registrations with participant contact fields, by registration id.
func (r *Repository) ListRegistrations(ctx context.Context, q RegistrationQuery) ([]RegistrationRow, error) {
	base := `SELECT r.id, r.participant_id, r.session_id, r.registered_on, r.attendance, p.name, p.email
		FROM registrations r
		JOIN participants p ON p.id = r.participant_id
		JOIN sessions s ON s.id = r.session_id`
	var f filter
	if q.SessionIDs != nil {
		f.add("r.session_id = ANY($%d)", q.SessionIDs)
	}
	if q.WorkshopID != nil {
		f.add("s.workshop_id = $%d", *q.WorkshopID)
	}
	if q.From != nil {
		f.add("r.registered_on >= $%d", *q.From)
	}
	if q.To != nil {
		f.add("r.registered_on <= $%d", *q.To)
	}
	rows, err := r.pool.Query(ctx, base+f.where()+" ORDER BY r.id", f.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []RegistrationRow
	for rows.Next() {
		var row RegistrationRow
		if err := rows.Scan(&row.ID, &row.ParticipantID, &row.SessionID, &row.RegisteredOn, &row.Attendance,
			&row.ParticipantName, &row.ParticipantEmail); err != nil {
			return nil, err
		}
		list = append(list, row)
	}
	return list, rows.Err()
}

// ListResponses returns feedback responses joined to their question, by response id.
func (r *Repository) ListResponses(ctx context.Context, sessionIDs []int64) ([]ResponseRow, error) {
	const q = `SELECT fr.participant_id, fr.question_id, fq.session_id, fq.response_type, fr.response
		FROM feedback_responses fr
		JOIN feedback_questions fq ON fq.id = fr.question_id
		WHERE $1::bigint[] IS NULL OR fq.session_id = ANY($1)
		ORDER BY fr.id`
	rows, err := r.pool.Query(ctx, q, sessionIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []ResponseRow
	for rows.Next() {
		var row ResponseRow
		if err := rows.Scan(&row.ParticipantID, &row.QuestionID, &row.SessionID, &row.ResponseType, &row.Response); err != nil {
			return nil, err
		}
		list = append(list, row)
	}
	return list, rows.Err()
}

// ListFeedbackQuestions returns the questions of a session by id.
func (r *Repository) ListFeedbackQuestions(ctx context.Context, sessionID int64) ([]models.FeedbackQuestion, error) {
	const q = `SELECT id, session_id, question_text, response_type, options
		FROM feedback_questions WHERE session_id = $1 ORDER BY id`
	rows, err := r.pool.Query(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.FeedbackQuestion
	for rows.Next() {
		var fq models.FeedbackQuestion
		var options []byte
		if err := rows.Scan(&fq.ID, &fq.SessionID, &fq.QuestionText, &fq.ResponseType, &options); err != nil {
			return nil, err
		}
		if len(options) > 0 {
			if err := json.Unmarshal(options, &fq.Options); err != nil {
				return nil, fmt.Errorf("question %d options: %w", fq.ID, err)
			}
		}
		list = append(list, fq)
	}
	return list, rows.Err()
}

// ListParticipants returns participants with their type name, by id.
func (r *Repository) ListParticipants(ctx context.Context, q ParticipantQuery) ([]models.Participant, error) {
	base := `SELECT p.id, p.name, p.email, p.contact_number, p.nic, p.district, p.gender,
		p.participant_type_id, COALESCE(pt.name, ''), p.properties, p.created_at
		FROM participants p
		LEFT JOIN participant_types pt ON pt.id = p.participant_type_id`
	var f filter
	if q.District != "" {
		f.add("p.district = $%d", q.District)
	}
	if q.Gender != "" {
		f.add("p.gender = $%d", q.Gender)
	}
	if q.TypeName != "" {
		f.add("pt.name = $%d", q.TypeName)
	}
	rows, err := r.pool.Query(ctx, base+f.where()+" ORDER BY p.id", f.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Participant
	for rows.Next() {
		var p models.Participant
		var props []byte
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.ContactNumber, &p.NIC, &p.District, &p.Gender,
			&p.ParticipantTypeID, &p.ParticipantType, &props, &p.CreatedAt); err != nil {
			return nil, err
		}
		if len(props) > 0 {
			if err := json.Unmarshal(props, &p.Properties); err != nil {
				return nil, fmt.Errorf("participant %d properties: %w", p.ID, err)
			}
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// ListDistrictsAndGenders returns the distinct non-empty districts and genders on record.
func (r *Repository) ListDistrictsAndGenders(ctx context.Context) ([]string, []string, error) {
	districts, err := r.listStrings(ctx, `SELECT DISTINCT district FROM participants WHERE district <> '' ORDER BY district`)
	if err != nil {
		return nil, nil, err
	}
	genders, err := r.listStrings(ctx, `SELECT DISTINCT gender FROM participants ORDER BY gender`)
	if err != nil {
		return nil, nil, err
	}
	return districts, genders, nil
}

// ListParticipantTypeNames returns every participant type name.
func (r *Repository) ListParticipantTypeNames(ctx context.Context) ([]string, error) {
	return r.listStrings(ctx, `SELECT name FROM participant_types ORDER BY name`)
}

func (r *Repository) listStrings(ctx context.Context, q string, args ...any) ([]string, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CountRegistrationsByParticipant returns unfiltered registration counts per participant.
func (r *Repository) CountRegistrationsByParticipant(ctx context.Context, participantIDs []int64) (map[int64]int, error) {
	const q = `SELECT participant_id, COUNT(*) FROM registrations
		WHERE participant_id = ANY($1) GROUP BY participant_id`
	out := make(map[int64]int, len(participantIDs))
	if len(participantIDs) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, q, participantIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}

// FeedbackParticipantIDs returns which of participantIDs submitted any feedback response.
func (r *Repository) FeedbackParticipantIDs(ctx context.Context, participantIDs []int64) ([]int64, error) {
	if len(participantIDs) == 0 {
		return nil, nil
	}
	const q = `SELECT DISTINCT participant_id FROM feedback_responses WHERE participant_id = ANY($1)`
	rows, err := r.pool.Query(ctx, q, participantIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// CountEntities returns headline counts in one round trip.
func (r *Repository) CountEntities(ctx context.Context) (AdminCounts, error) {
	const q = `SELECT
		(SELECT COUNT(*) FROM workshops),
		(SELECT COUNT(*) FROM sessions),
		(SELECT COUNT(*) FROM participants),
		(SELECT COUNT(*) FROM participant_types),
		(SELECT COUNT(*) FROM trainers)`
	var c AdminCounts
	err := r.pool.QueryRow(ctx, q).Scan(&c.Workshops, &c.Sessions, &c.Participants, &c.ParticipantTypes, &c.Trainers)
	return c, err
}

// GetAdminComment returns the session's admin comment or nil.
func (r *Repository) GetAdminComment(ctx context.Context, sessionID int64) (*models.AdminComment, error) {
	const q = `SELECT id, session_id, comment, created_at, updated_at FROM admin_comments WHERE session_id = $1`
	var c models.AdminComment
	err := r.pool.QueryRow(ctx, q, sessionID).Scan(&c.ID, &c.SessionID, &c.Comment, &c.CreatedAt, &c.UpdatedAt)
	if database.NoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// SaveSessionStatistics upserts the statistics snapshot of a session.
func (r *Repository) SaveSessionStatistics(ctx context.Context, st *models.SessionStatistics) error {
	suggestions, err := json.Marshal(st.ImprovementSuggestions)
	if err != nil {
		return err
	}
	const q = `INSERT INTO session_statistics
		(session_id, registered_count, attended_count, attendance_percentage, average_rating, impact_summary, improvement_suggestions, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (session_id) DO UPDATE SET
			registered_count = EXCLUDED.registered_count,
			attended_count = EXCLUDED.attended_count,
			attendance_percentage = EXCLUDED.attendance_percentage,
			average_rating = EXCLUDED.average_rating,
			impact_summary = EXCLUDED.impact_summary,
			improvement_suggestions = EXCLUDED.improvement_suggestions,
			updated_at = NOW()
		RETURNING updated_at`
	return r.pool.QueryRow(ctx, q, st.SessionID, st.RegisteredCount, st.AttendedCount, st.AttendancePercentage,
		st.AverageRating, st.ImpactSummary, suggestions).Scan(&st.UpdatedAt)
}
