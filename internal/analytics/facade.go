package analytics

import (
	"context"

	"github.com/workshop-hub/backend/internal/models"
)

// SessionsStats backs GET /analytics/sessions.
type SessionsStats struct {
	TotalSessions     int     `json:"total_sessions"`
	AverageAttendance float64 `json:"average_attendance"`
}

// SessionsStats returns the session count and mean attendees per session.
func (s *Service) SessionsStats(ctx context.Context) (*SessionsStats, error) {
	trend, _, err := s.AllSessions(ctx, false)
	if err != nil {
		return nil, err
	}
	attended := 0
	for _, t := range trend {
		attended += t.Attended
	}
	return &SessionsStats{TotalSessions: len(trend), AverageAttendance: Mean(attended, len(trend))}, nil
}

// WorkshopsStats backs GET /analytics/workshops.
type WorkshopsStats struct {
	TotalWorkshops int      `json:"total_workshops"`
	AverageRating  *float64 `json:"average_rating"`
}

// WorkshopsStats returns the workshop count and the pooled rating average.
func (s *Service) WorkshopsStats(ctx context.Context) (*WorkshopsStats, error) {
	workshops, err := s.store.ListWorkshops(ctx)
	if err != nil {
		return nil, internal("list workshops", err)
	}
	resps, err := s.store.ListResponses(ctx, nil)
	if err != nil {
		return nil, internal("list responses", err)
	}
	return &WorkshopsStats{TotalWorkshops: len(workshops), AverageRating: Average(Ratings(resps))}, nil
}

// TrainerRow is one trainer in GET /analytics/trainers.
type TrainerRow struct {
	ID                int64    `json:"id"`
	Name              string   `json:"name"`
	Email             string   `json:"email"`
	SessionCount      int      `json:"session_count"`
	AvgFeedbackRating *float64 `json:"avg_feedback_rating"`
	TotalParticipants int      `json:"total_participants"`
}

// TrainersStats backs GET /analytics/trainers.
type TrainersStats struct {
	TotalTrainers int          `json:"total_trainers"`
	TopTrainer    string       `json:"top_trainer"`
	Trainers      []TrainerRow `json:"trainers"`
}

// NoTopTrainer is reported when no trainer has ratings.
const NoTopTrainer = "N/A"

// TrainersStats lists trainers and names the highest rated; the first wins ties.
func (s *Service) TrainersStats(ctx context.Context) (*TrainersStats, error) {
	rollups, err := s.TrainerRollups(ctx)
	if err != nil {
		return nil, err
	}
	out := &TrainersStats{TotalTrainers: len(rollups), TopTrainer: NoTopTrainer, Trainers: make([]TrainerRow, 0, len(rollups))}
	var top *float64
	for _, t := range rollups {
		avg := t.AvgRating()
		if avg != nil && (top == nil || *avg > *top) {
			top = avg
			out.TopTrainer = t.Trainer.Name
		}
		out.Trainers = append(out.Trainers, TrainerRow{
			ID:                t.Trainer.ID,
			Name:              t.Trainer.Name,
			Email:             t.Trainer.Email,
			SessionCount:      len(t.Sessions),
			AvgFeedbackRating: avg,
			TotalParticipants: t.Registered,
		})
	}
	return out, nil
}

// ParticipantsStats backs GET /analytics/participants.
type ParticipantsStats struct {
	TotalParticipants     int     `json:"total_participants"`
	AverageCompletionRate float64 `json:"average_completion_rate"`
}

// ParticipantsStats returns the participant count and overall attendance rate.
func (s *Service) ParticipantsStats(ctx context.Context) (*ParticipantsStats, error) {
	counts, err := s.AdminCounts(ctx)
	if err != nil {
		return nil, err
	}
	registered, attended, err := s.RegistrationTotals(ctx)
	if err != nil {
		return nil, err
	}
	return &ParticipantsStats{TotalParticipants: counts.Participants, AverageCompletionRate: Rate(attended, registered)}, nil
}

// SessionsOverview backs GET /analytics/sessions-overview.
type SessionsOverview struct {
	TotalSessions           int      `json:"total_sessions"`
	TotalRegistered         int      `json:"total_registered"`
	TotalAttended           int      `json:"total_attended"`
	AverageAttendanceRate   float64  `json:"average_attendance_rate"`
	FeedbackCount           int      `json:"feedback_count"`
	AverageFeedbackRating   *float64 `json:"average_feedback_rating"`
	CommonFeedbackKeywords  []string `json:"common_feedback_keywords"`
	SessionTitles           []string `json:"session_titles"`
	RegistrationsPerSession []int    `json:"registrations_per_session"`
	AttendancePerSession    []int    `json:"attendance_per_session"`
}

// SessionsOverview rolls every session up, with per-session series in date order.
// feedback_count counts distinct participants over every response on record.
func (s *Service) SessionsOverview(ctx context.Context) (*SessionsOverview, error) {
	trend, resps, err := s.AllSessions(ctx, false)
	if err != nil {
		return nil, err
	}
	all, err := s.store.ListResponses(ctx, nil)
	if err != nil {
		return nil, internal("list responses", err)
	}
	out := &SessionsOverview{
		TotalSessions:           len(trend),
		FeedbackCount:           DistinctParticipants(all),
		SessionTitles:           make([]string, 0, len(trend)),
		RegistrationsPerSession: make([]int, 0, len(trend)),
		AttendancePerSession:    make([]int, 0, len(trend)),
	}
	var texts []string
	for _, t := range trend {
		texts = append(texts, t.Texts...)
		out.TotalRegistered += t.Registered
		out.TotalAttended += t.Attended
		out.SessionTitles = append(out.SessionTitles, t.Session.Title())
		out.RegistrationsPerSession = append(out.RegistrationsPerSession, t.Registered)
		out.AttendancePerSession = append(out.AttendancePerSession, t.Attended)
	}
	pooled := TallyOf(nil, resps)
	out.AverageAttendanceRate = Rate(out.TotalAttended, out.TotalRegistered)
	out.AverageFeedbackRating = pooled.AvgRating()
	// Keyword ties break by first appearance in session order.
	out.CommonFeedbackKeywords = TopKeywords(texts)
	return out, nil
}

// SessionRow is one row of GET /analytics/sessions/list.
type SessionRow struct {
	ID                int64       `json:"id"`
	Title             string      `json:"title"`
	Location          string      `json:"location"`
	Workshop          string      `json:"workshop"`
	Date              models.Date `json:"date"`
	Time              string      `json:"time"`
	RegisteredCount   int         `json:"registered_count"`
	AttendedCount     int         `json:"attended_count"`
	AvgFeedbackRating *float64    `json:"avg_feedback_rating"`
}

// SessionList returns every session, newest first, with its own rating average.
func (s *Service) SessionList(ctx context.Context) ([]SessionRow, error) {
	trend, _, err := s.AllSessions(ctx, true)
	if err != nil {
		return nil, err
	}
	out := make([]SessionRow, 0, len(trend))
	for _, t := range trend {
		out = append(out, SessionRow{
			ID:                t.Session.ID,
			Title:             t.Session.Title(),
			Location:          t.Session.Location,
			Workshop:          t.Session.WorkshopTitle,
			Date:              t.Session.Date,
			Time:              t.Session.Time,
			RegisteredCount:   t.Registered,
			AttendedCount:     t.Attended,
			AvgFeedbackRating: t.AvgRating(),
		})
	}
	return out, nil
}

// RosterEntry is one registered participant in a detail view.
type RosterEntry struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Attended *bool  `json:"attended,omitempty"`
}

// SessionDetail backs GET /analytics/sessions/:id/detail.
type SessionDetail struct {
	SessionID                  int64         `json:"session_id"`
	Title                      string        `json:"title"`
	Workshop                   string        `json:"workshop"`
	Date                       models.Date   `json:"date"`
	Time                       string        `json:"time"`
	Location                   string        `json:"location"`
	RegisteredCount            int           `json:"registered_count"`
	AttendedCount              int           `json:"attended_count"`
	Participants               []RosterEntry `json:"participants"`
	FeedbackRatingDistribution map[int]int   `json:"feedback_rating_distribution"`
	FeedbackSuggestions        []string      `json:"feedback_suggestions"`
	TopKeywords                []string      `json:"top_keywords"`
	FeedbackParticipants       int           `json:"feedback_participants"`
}

// SessionDetail returns one session with its roster and feedback breakdown.
func (s *Service) SessionDetail(ctx context.Context, sessionID int64) (*SessionDetail, error) {
	sum, err := s.SessionSummary(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	roster := make([]RosterEntry, 0, len(sum.Registrations))
	for _, r := range sum.Registrations {
		attended := r.Attendance
		roster = append(roster, RosterEntry{Name: r.ParticipantName, Email: r.ParticipantEmail, Attended: &attended})
	}
	return &SessionDetail{
		SessionID:                  sum.Session.ID,
		Title:                      sum.Session.Title(),
		Workshop:                   sum.Session.WorkshopTitle,
		Date:                       sum.Session.Date,
		Time:                       sum.Session.Time,
		Location:                   sum.Session.Location,
		RegisteredCount:            sum.Registered,
		AttendedCount:              sum.Attended,
		Participants:               roster,
		FeedbackRatingDistribution: RatingDistribution(sum.Responses),
		FeedbackSuggestions:        Suggestions(sum.Responses),
		TopKeywords:                sum.Keywords(),
		FeedbackParticipants:       sum.FeedbackParticipants,
	}, nil
}

// WorkshopsOverview backs GET /analytics/workshops-overview.
type WorkshopsOverview struct {
	TotalWorkshops           int      `json:"total_workshops"`
	TotalSessions            int      `json:"total_sessions"`
	TotalRegistered          int      `json:"total_registered"`
	TotalAttended            int      `json:"total_attended"`
	AverageAttendanceRate    float64  `json:"average_attendance_rate"`
	AverageFeedbackRating    *float64 `json:"average_feedback_rating"`
	WorkshopTitles           []string `json:"workshop_titles"`
	RegistrationsPerWorkshop []int    `json:"registrations_per_workshop"`
	AttendancePerWorkshop    []int    `json:"attendance_per_workshop"`
	FeedbackParticipants     int      `json:"feedback_participants"`
}

// WorkshopsOverview rolls every workshop up with per-workshop series.
func (s *Service) WorkshopsOverview(ctx context.Context) (*WorkshopsOverview, error) {
	rollups, err := s.WorkshopRollups(ctx)
	if err != nil {
		return nil, err
	}
	out := &WorkshopsOverview{
		TotalWorkshops:           len(rollups),
		WorkshopTitles:           make([]string, 0, len(rollups)),
		RegistrationsPerWorkshop: make([]int, 0, len(rollups)),
		AttendancePerWorkshop:    make([]int, 0, len(rollups)),
	}
	resps, err := s.store.ListResponses(ctx, nil)
	if err != nil {
		return nil, internal("list responses", err)
	}
	var ratings []float64
	for _, w := range rollups {
		out.TotalSessions += w.SessionCount
		out.TotalRegistered += w.Registered
		out.TotalAttended += w.Attended
		out.WorkshopTitles = append(out.WorkshopTitles, w.Workshop.Title)
		out.RegistrationsPerWorkshop = append(out.RegistrationsPerWorkshop, w.Registered)
		out.AttendancePerWorkshop = append(out.AttendancePerWorkshop, w.Attended)
		ratings = append(ratings, w.Ratings...)
	}
	out.AverageAttendanceRate = Rate(out.TotalAttended, out.TotalRegistered)
	out.AverageFeedbackRating = Average(ratings)
	out.FeedbackParticipants = DistinctParticipants(resps)
	return out, nil
}

// WorkshopRow is one row of GET /analytics/workshops/list.
type WorkshopRow struct {
	ID                int64    `json:"id"`
	Title             string   `json:"title"`
	TotalSessions     int      `json:"total_sessions"`
	TotalRegistered   int      `json:"total_registered"`
	TotalAttended     int      `json:"total_attended"`
	AvgFeedbackRating *float64 `json:"avg_feedback_rating"`
}

// WorkshopList returns every workshop with its totals.
func (s *Service) WorkshopList(ctx context.Context) ([]WorkshopRow, error) {
	rollups, err := s.WorkshopRollups(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]WorkshopRow, 0, len(rollups))
	for _, w := range rollups {
		out = append(out, WorkshopRow{
			ID:                w.Workshop.ID,
			Title:             w.Workshop.Title,
			TotalSessions:     w.SessionCount,
			TotalRegistered:   w.Registered,
			TotalAttended:     w.Attended,
			AvgFeedbackRating: w.AvgRating(),
		})
	}
	return out, nil
}

// TrendPoint is one session in a workshop trend.
type TrendPoint struct {
	SessionID  int64       `json:"session_id"`
	Title      string      `json:"title"`
	Date       models.Date `json:"date"`
	Time       string      `json:"time"`
	Registered int         `json:"registered"`
	Attended   int         `json:"attended"`
	AvgRating  *float64    `json:"avg_rating"`
}

// WorkshopDetail backs GET /analytics/workshops/:id/detail.
type WorkshopDetail struct {
	WorkshopID           int64         `json:"workshop_id"`
	Title                string        `json:"title"`
	Description          string        `json:"description"`
	TotalSessions        int           `json:"total_sessions"`
	TotalRegistered      int           `json:"total_registered"`
	TotalAttended        int           `json:"total_attended"`
	AvgFeedbackRating    *float64      `json:"avg_feedback_rating"`
	FeedbackSuggestions  []string      `json:"feedback_suggestions"`
	TopKeywords          []string      `json:"top_keywords"`
	Trend                []TrendPoint  `json:"trend"`
	SessionTitles        []string      `json:"session_titles"`
	SessionDates         []models.Date `json:"session_dates"`
	FeedbackParticipants int           `json:"feedback_participants"`
	Participants         []RosterEntry `json:"participants"`
}

// WorkshopDetail returns one workshop with its session trend and registration roster.
func (s *Service) WorkshopDetail(ctx context.Context, workshopID int64) (*WorkshopDetail, error) {
	sum, err := s.WorkshopSummary(ctx, workshopID)
	if err != nil {
		return nil, err
	}
	out := &WorkshopDetail{
		WorkshopID:           sum.Workshop.ID,
		Title:                sum.Workshop.Title,
		Description:          sum.Workshop.Description,
		TotalSessions:        len(sum.Sessions),
		TotalRegistered:      sum.Registered,
		TotalAttended:        sum.Attended,
		AvgFeedbackRating:    sum.AvgRating(),
		FeedbackSuggestions:  Suggestions(sum.Responses),
		TopKeywords:          sum.Keywords(),
		Trend:                make([]TrendPoint, 0, len(sum.Trend)),
		SessionTitles:        make([]string, 0, len(sum.Trend)),
		SessionDates:         make([]models.Date, 0, len(sum.Trend)),
		FeedbackParticipants: sum.FeedbackParticipants,
		Participants:         make([]RosterEntry, 0, len(sum.Registrations)),
	}
	for _, t := range sum.Trend {
		out.Trend = append(out.Trend, TrendPoint{
			SessionID:  t.Session.ID,
			Title:      t.Session.Title(),
			Date:       t.Session.Date,
			Time:       t.Session.Time,
			Registered: t.Registered,
			Attended:   t.Attended,
			AvgRating:  t.AvgRating(),
		})
		out.SessionTitles = append(out.SessionTitles, t.Session.Title())
		out.SessionDates = append(out.SessionDates, t.Session.Date)
	}
	for _, r := range sum.Registrations {
		out.Participants = append(out.Participants, RosterEntry{Name: r.ParticipantName, Email: r.ParticipantEmail})
	}
	return out, nil
}

// RatingTrendPoint is one session in a trainer's rating trend.
type RatingTrendPoint struct {
	SessionTitle string      `json:"session_title"`
	Date         models.Date `json:"date"`
	Time         string      `json:"time"`
	AvgRating    *float64    `json:"avg_rating"`
}

// TrainerDetail backs GET /analytics/trainers/:id/detail.
type TrainerDetail struct {
	ID                int64              `json:"id"`
	Name              string             `json:"name"`
	Email             string             `json:"email"`
	SessionCount      int                `json:"session_count"`
	TotalParticipants int                `json:"total_participants"`
	AvgFeedbackRating *float64           `json:"avg_feedback_rating"`
	RatingsTrend      []RatingTrendPoint `json:"ratings_trend"`
	FeedbackThemes    []string           `json:"feedback_themes"`
}

// TrainerDetail returns one trainer's pooled rating, rating trend and feedback themes.
func (s *Service) TrainerDetail(ctx context.Context, trainerID int64) (*TrainerDetail, error) {
	sum, err := s.TrainerSummary(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	out := &TrainerDetail{
		ID:                sum.Trainer.ID,
		Name:              sum.Trainer.Name,
		Email:             sum.Trainer.Email,
		SessionCount:      len(sum.Sessions),
		TotalParticipants: sum.Registered,
		AvgFeedbackRating: sum.AvgRating(),
		RatingsTrend:      make([]RatingTrendPoint, 0, len(sum.Sessions)),
		FeedbackThemes:    sum.Keywords(),
	}
	for _, t := range sum.Sessions {
		out.RatingsTrend = append(out.RatingsTrend, RatingTrendPoint{
			SessionTitle: t.Session.Title(),
			Date:         t.Session.Date,
			Time:         t.Session.Time,
			AvgRating:    t.AvgRating(),
		})
	}
	return out, nil
}

// TrainerSessionCard is one session on a trainer's dashboard.
type TrainerSessionCard struct {
	SessionID         int64       `json:"session_id"`
	SessionTitle      string      `json:"session_title"`
	Date              models.Date `json:"date"`
	Time              string      `json:"time"`
	WorkshopTitle     string      `json:"workshop_title"`
	Location          string      `json:"location"`
	TotalParticipants int         `json:"total_participants"`
	AttendanceCount   int         `json:"attendance_count"`
	AverageRating     *float64    `json:"average_rating"`
	FormattedDate     string      `json:"formatted_date"`
	FormattedTime     string      `json:"formatted_time"`
}

// TrainerDashboard returns one card per session assigned to the trainer.
func (s *Service) TrainerDashboard(ctx context.Context, trainerID int64) ([]TrainerSessionCard, error) {
	sum, err := s.TrainerSummary(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	out := make([]TrainerSessionCard, 0, len(sum.Sessions))
	for _, t := range sum.Sessions {
		out = append(out, TrainerSessionCard{
			SessionID:         t.Session.ID,
			SessionTitle:      t.Session.Title(),
			Date:              t.Session.Date,
			Time:              t.Session.Time,
			WorkshopTitle:     t.Session.WorkshopTitle,
			Location:          t.Session.Location,
			TotalParticipants: t.Registered,
			AttendanceCount:   t.Attended,
			AverageRating:     t.AvgRating(),
			FormattedDate:     t.Session.FormattedDate(),
			FormattedTime:     t.Session.FormattedTime(),
		})
	}
	return out, nil
}

// TrainerCard is one trainer on the admin trainers dashboard.
type TrainerCard struct {
	TrainerID     int64  `json:"trainer_id"`
	TrainerName   string `json:"trainer_name"`
	Designation   string `json:"designation"`
	Email         string `json:"email"`
	ContactNumber string `json:"contact_number"`
	Expertise     string `json:"expertise"`
	SessionCount  int    `json:"session_count"`
}

// TrainersDashboard lists every trainer with their assignment count.
func (s *Service) TrainersDashboard(ctx context.Context) ([]TrainerCard, error) {
	trainers, err := s.store.ListTrainers(ctx)
	if err != nil {
		return nil, internal("list trainers", err)
	}
	assigned, err := s.store.ListTrainerSessions(ctx, nil)
	if err != nil {
		return nil, internal("list trainer sessions", err)
	}
	out := make([]TrainerCard, 0, len(trainers))
	for _, t := range trainers {
		out = append(out, TrainerCard{
			TrainerID:     t.ID,
			TrainerName:   t.Name,
			Designation:   t.Designation,
			Email:         t.Email,
			ContactNumber: t.ContactNumber,
			Expertise:     t.Expertise,
			SessionCount:  len(assigned[t.ID]),
		})
	}
	return out, nil
}
