package notifications

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/workshop-hub/backend/internal/models"
)

// Repository handles notification templates and per-participant rows.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a notifications repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// audience returns a query selecting the participant ids of t. Placeholders start at $first.
func audience(t models.NotificationTarget, first int) (string, []any, error) {
	switch t.Kind {
	case models.TargetAll:
		return `SELECT id FROM participants`, nil, nil
	case models.TargetSession:
		if t.SessionID == nil {
			return "", nil, fmt.Errorf("session target without session id")
		}
		q := fmt.Sprintf(`SELECT participant_id FROM registrations WHERE session_id = $%d`, first)
		if t.AttendedOnly {
			q += ` AND attendance = TRUE`
		}
		return q, []any{*t.SessionID}, nil
	case models.TargetWorkshop:
		if t.WorkshopID == nil {
			return "", nil, fmt.Errorf("workshop target without workshop id")
		}
		q := fmt.Sprintf(`SELECT DISTINCT r.participant_id FROM registrations r
			JOIN sessions s ON s.id = r.session_id WHERE s.workshop_id = $%d`, first)
		if t.AttendedOnly {
			q += ` AND r.attendance = TRUE`
		}
		return q, []any{*t.WorkshopID}, nil
	case models.TargetParticipants:
		return fmt.Sprintf(`SELECT id FROM participants WHERE id = ANY($%d)`, first), []any{t.ParticipantIDs}, nil
	default:
		return "", nil, fmt.Errorf("unknown notification target %q", t.Kind)
	}
}

// CreateTemplate inserts a template and fills its id and created_at.
func (r *Repository) CreateTemplate(ctx context.Context, t *models.NotificationTemplate) error {
	const q = `INSERT INTO notification_templates (title, message, url, notification_type)
		VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, t.Title, t.Message, t.URL, t.NotificationType).Scan(&t.ID, &t.CreatedAt)
}

// CountTargets returns how many participants t currently selects.
func (r *Repository) CountTargets(ctx context.Context, t models.NotificationTarget) (int, error) {
	sub, args, err := audience(t, 1)
	if err != nil {
		return 0, err
	}
	var n int
	err = r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM (`+sub+`) a`, args...).Scan(&n)
	return n, err
}

// FanOut creates one notification per targeted participant in a single statement.
// Rows that already exist are skipped, so replaying a job is harmless.
func (r *Repository) FanOut(ctx context.Context, templateID int64, t models.NotificationTarget) (int64, error) {
	sub, args, err := audience(t, 2)
	if err != nil {
		return 0, err
	}
	q := `INSERT INTO notifications (participant_id, template_id)
		SELECT a.id, $1 FROM (` + sub + `) AS a(id)
		ON CONFLICT (participant_id, template_id) DO NOTHING`
	tag, err := r.pool.Exec(ctx, q, append([]any{templateID}, args...)...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListByParticipant returns a participant's notifications, newest first.
func (r *Repository) ListByParticipant(ctx context.Context, participantID int64) ([]models.Notification, error) {
	const q = `SELECT n.id, n.participant_id, n.is_read, n.created_at,
			t.id, t.title, t.message, t.url, t.notification_type, t.created_at
		FROM notifications n JOIN notification_templates t ON t.id = n.template_id
		WHERE n.participant_id = $1 ORDER BY n.created_at DESC, n.id DESC`
	rows, err := r.pool.Query(ctx, q, participantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Notification
	for rows.Next() {
		var n models.Notification
		t := &n.Template
		if err := rows.Scan(&n.ID, &n.ParticipantID, &n.IsRead, &n.CreatedAt,
			&t.ID, &t.Title, &t.Message, &t.URL, &t.NotificationType, &t.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

// MarkRead flags a notification as read. Returns false if it does not exist.
func (r *Repository) MarkRead(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
