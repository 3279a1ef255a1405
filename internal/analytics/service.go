package analytics

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/workshop-hub/backend/internal/models"
	"github.com/workshop-hub/backend/pkg/apperror"
)

// Service runs aggregation queries against a Store.
type Service struct {
	store  Store
	logger *zap.Logger
	loc    *time.Location
	now    func() time.Time
}

// NewService creates an aggregation service. Period windows are resolved in loc.
func NewService(store Store, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{store: store, logger: logger, loc: loc, now: time.Now}
}

// SessionSummary is the rollup of one session.
type SessionSummary struct {
	Session       models.Session
	Registrations []RegistrationRow
	Responses     []ResponseRow
	Tally
}

// SessionTrend is one session's tally inside a larger rollup.
type SessionTrend struct {
	Session models.Session
	Tally
}

// WorkshopSummary is the rollup of every session of a workshop.
type WorkshopSummary struct {
	Workshop      models.Workshop
	Sessions      []models.Session
	Trend         []SessionTrend
	Registrations []RegistrationRow
	Responses     []ResponseRow
	Tally
}

// TrainerSummary pools every session assigned to a trainer. Tally.Registered
// is the per-session sum, so a participant in two of the trainer's sessions counts twice.
type TrainerSummary struct {
	Trainer  models.Trainer
	Sessions []SessionTrend
	Tally
}

// WorkshopRollup is one row of the workshop list.
type WorkshopRollup struct {
	Workshop     models.Workshop
	SessionCount int
	Tally
}

func internal(op string, err error) error {
	return apperror.Internal(op, err)
}

func sessionIDs(sessions []models.Session) []int64 {
	ids := make([]int64, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
	}
	return ids
}

func groupRegistrations(rows []RegistrationRow) map[int64][]RegistrationRow {
	out := make(map[int64][]RegistrationRow)
	for _, r := range rows {
		out[r.SessionID] = append(out[r.SessionID], r)
	}
	return out
}

func groupResponses(rows []ResponseRow) map[int64][]ResponseRow {
	out := make(map[int64][]ResponseRow)
	for _, r := range rows {
		out[r.SessionID] = append(out[r.SessionID], r)
	}
	return out
}

// loadFor reads registrations and responses of the given sessions. An empty id
// set short-circuits so it never widens to every session.
func (s *Service) loadFor(ctx context.Context, ids []int64) ([]RegistrationRow, []ResponseRow, error) {
	if len(ids) == 0 {
		return nil, nil, nil
	}
	regs, err := s.store.ListRegistrations(ctx, RegistrationQuery{SessionIDs: ids})
	if err != nil {
		return nil, nil, internal("list registrations", err)
	}
	resps, err := s.store.ListResponses(ctx, ids)
	if err != nil {
		return nil, nil, internal("list responses", err)
	}
	return regs, resps, nil
}

// SessionSummary aggregates one session.
func (s *Service) SessionSummary(ctx context.Context, sessionID int64) (*SessionSummary, error) {
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, internal("get session", err)
	}
	if sess == nil {
		return nil, apperror.NotFound("Session not found.")
	}
	regs, resps, err := s.loadFor(ctx, []int64{sessionID})
	if err != nil {
		return nil, err
	}
	return &SessionSummary{
		Session:       *sess,
		Registrations: regs,
		Responses:     resps,
		Tally:         TallyOf(regs, resps),
	}, nil
}

// WorkshopSummary aggregates every session of a workshop, trend ordered by date.
func (s *Service) WorkshopSummary(ctx context.Context, workshopID int64) (*WorkshopSummary, error) {
	w, err := s.store.GetWorkshop(ctx, workshopID)
	if err != nil {
		return nil, internal("get workshop", err)
	}
	if w == nil {
		return nil, apperror.NotFound("Workshop not found.")
	}
	sessions, err := s.store.ListSessions(ctx, SessionQuery{WorkshopID: &workshopID})
	if err != nil {
		return nil, internal("list sessions", err)
	}
	regs, resps, err := s.loadFor(ctx, sessionIDs(sessions))
	if err != nil {
		return nil, err
	}
	regsBy, respsBy := groupRegistrations(regs), groupResponses(resps)
	trend := make([]SessionTrend, 0, len(sessions))
	for _, sess := range sessions {
		trend = append(trend, SessionTrend{Session: sess, Tally: TallyOf(regsBy[sess.ID], respsBy[sess.ID])})
	}
	return &WorkshopSummary{
		Workshop:      *w,
		Sessions:      sessions,
		Trend:         trend,
		Registrations: regs,
		Responses:     resps,
		Tally:         TallyOf(regs, resps),
	}, nil
}

// TrainerSummary aggregates every session assigned to a trainer.
func (s *Service) TrainerSummary(ctx context.Context, trainerID int64) (*TrainerSummary, error) {
	t, err := s.store.GetTrainer(ctx, trainerID)
	if err != nil {
		return nil, internal("get trainer", err)
	}
	if t == nil {
		return nil, apperror.NotFound("Trainer not found")
	}
	assigned, err := s.store.ListTrainerSessions(ctx, &trainerID)
	if err != nil {
		return nil, internal("list trainer sessions", err)
	}
	sessions := assigned[trainerID]
	regs, resps, err := s.loadFor(ctx, sessionIDs(sessions))
	if err != nil {
		return nil, err
	}
	return &TrainerSummary{
		Trainer:  *t,
		Sessions: trends(sessions, groupRegistrations(regs), groupResponses(resps)),
		Tally:    TallyOf(regs, resps),
	}, nil
}

func trends(sessions []models.Session, regsBy map[int64][]RegistrationRow, respsBy map[int64][]ResponseRow) []SessionTrend {
	out := make([]SessionTrend, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, SessionTrend{Session: sess, Tally: TallyOf(regsBy[sess.ID], respsBy[sess.ID])})
	}
	return out
}

// TrainerRollups aggregates every trainer against one shared read of registrations and responses.
func (s *Service) TrainerRollups(ctx context.Context) ([]TrainerSummary, error) {
	trainers, err := s.store.ListTrainers(ctx)
	if err != nil {
		return nil, internal("list trainers", err)
	}
	assigned, err := s.store.ListTrainerSessions(ctx, nil)
	if err != nil {
		return nil, internal("list trainer sessions", err)
	}
	seen := make(map[int64]struct{})
	var ids []int64
	for _, sessions := range assigned {
		for _, sess := range sessions {
			if _, ok := seen[sess.ID]; !ok {
				seen[sess.ID] = struct{}{}
				ids = append(ids, sess.ID)
			}
		}
	}
	regs, resps, err := s.loadFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	regsBy, respsBy := groupRegistrations(regs), groupResponses(resps)

	out := make([]TrainerSummary, 0, len(trainers))
	for _, t := range trainers {
		sessions := assigned[t.ID]
		var tRegs []RegistrationRow
		var tResps []ResponseRow
		for _, sess := range sessions {
			tRegs = append(tRegs, regsBy[sess.ID]...)
			tResps = append(tResps, respsBy[sess.ID]...)
		}
		out = append(out, TrainerSummary{
			Trainer:  t,
			Sessions: trends(sessions, regsBy, respsBy),
			Tally:    TallyOf(tRegs, tResps),
		})
	}
	return out, nil
}

// AllSessions returns every session with its tally and the overall response rows.
func (s *Service) AllSessions(ctx context.Context, newestFirst bool) ([]SessionTrend, []ResponseRow, error) {
	sessions, err := s.store.ListSessions(ctx, SessionQuery{NewestFirst: newestFirst})
	if err != nil {
		return nil, nil, internal("list sessions", err)
	}
	regs, resps, err := s.loadFor(ctx, sessionIDs(sessions))
	if err != nil {
		return nil, nil, err
	}
	return trends(sessions, groupRegistrations(regs), groupResponses(resps)), resps, nil
}

// WorkshopRollups returns every workshop with its session count and tally.
func (s *Service) WorkshopRollups(ctx context.Context) ([]WorkshopRollup, error) {
	workshops, err := s.store.ListWorkshops(ctx)
	if err != nil {
		return nil, internal("list workshops", err)
	}
	sessions, err := s.store.ListSessions(ctx, SessionQuery{})
	if err != nil {
		return nil, internal("list sessions", err)
	}
	regs, resps, err := s.loadFor(ctx, sessionIDs(sessions))
	if err != nil {
		return nil, err
	}
	regsBy, respsBy := groupRegistrations(regs), groupResponses(resps)
	byWorkshop := make(map[int64][]models.Session)
	for _, sess := range sessions {
		byWorkshop[sess.WorkshopID] = append(byWorkshop[sess.WorkshopID], sess)
	}

	out := make([]WorkshopRollup, 0, len(workshops))
	for _, w := range workshops {
		var wRegs []RegistrationRow
		var wResps []ResponseRow
		for _, sess := range byWorkshop[w.ID] {
			wRegs = append(wRegs, regsBy[sess.ID]...)
			wResps = append(wResps, respsBy[sess.ID]...)
		}
		out = append(out, WorkshopRollup{
			Workshop:     w,
			SessionCount: len(byWorkshop[w.ID]),
			Tally:        TallyOf(wRegs, wResps),
		})
	}
	return out, nil
}

// AdminCounts returns headline entity counts.
func (s *Service) AdminCounts(ctx context.Context) (AdminCounts, error) {
	c, err := s.store.CountEntities(ctx)
	if err != nil {
		return AdminCounts{}, internal("count entities", err)
	}
	return c, nil
}

// RegistrationTotals returns the overall registration and attendance counts.
func (s *Service) RegistrationTotals(ctx context.Context) (registered, attended int, err error) {
	regs, err := s.store.ListRegistrations(ctx, RegistrationQuery{})
	if err != nil {
		return 0, 0, internal("list registrations", err)
	}
	t := TallyOf(regs, nil)
	return t.Registered, t.Attended, nil
}

// RefreshSessionStatistics recomputes and stores the statistics snapshot of a session.
func (s *Service) RefreshSessionStatistics(ctx context.Context, sessionID int64) (*models.SessionStatistics, error) {
	sum, err := s.SessionSummary(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	comment, err := s.store.GetAdminComment(ctx, sessionID)
	if err != nil {
		return nil, internal("get admin comment", err)
	}
	st := &models.SessionStatistics{
		SessionID:              sessionID,
		RegisteredCount:        sum.Registered,
		AttendedCount:          sum.Attended,
		AttendancePercentage:   sum.AttendanceRate(),
		AverageRating:          sum.AvgRating(),
		ImprovementSuggestions: Suggestions(sum.Responses),
	}
	if comment != nil && comment.Comment != "" {
		c := comment.Comment
		st.ImpactSummary = &c
	}
	if err := s.store.SaveSessionStatistics(ctx, st); err != nil {
		return nil, internal("save session statistics", err)
	}
	return st, nil
}
