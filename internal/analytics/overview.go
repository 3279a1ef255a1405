package analytics

import (
	"context"
	"time"

	"github.com/workshop-hub/backend/internal/models"
)

// UnassignedType labels participants without a participant type in distributions.
const UnassignedType = "Unassigned"

// ParticipantFilters narrows the participants overview. Participant fields filter
// the cohort; date, workshop and session filters act on registrations.
type ParticipantFilters struct {
	District        string
	Gender          string
	ParticipantType string
	DateFrom        *time.Time
	DateTo          *time.Time
	WorkshopID      *int64
	SessionID       *int64
}

// RankedParticipant is one row of the attendance ranking.
type RankedParticipant struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	AttendedSessions   int    `json:"attended_sessions"`
	RegisteredSessions int    `json:"registered_sessions"`
}

// AvailableFilters lists the unfiltered filter universes.
type AvailableFilters struct {
	Districts        []string `json:"districts"`
	Genders          []string `json:"genders"`
	ParticipantTypes []string `json:"participant_types"`
}

// ParticipantsOverview is the cohort report.
type ParticipantsOverview struct {
	TotalParticipants    int                 `json:"total_participants"`
	DistrictHistogram    map[string]int      `json:"district_histogram"`
	GenderDistribution   map[string]int      `json:"gender_distribution"`
	TypeDistribution     map[string]int      `json:"type_distribution"`
	AttendancePercentage float64             `json:"attendance_percentage"`
	FeedbackResponseRate float64             `json:"feedback_response_rate"`
	TopParticipants      []RankedParticipant `json:"top_10_participants"`
	AvailableFilters     AvailableFilters    `json:"available_filters"`
}

// ParticipantsOverview computes distributions, rates and the attendance ranking for a filtered cohort.
func (s *Service) ParticipantsOverview(ctx context.Context, f ParticipantFilters) (*ParticipantsOverview, error) {
	participants, err := s.store.ListParticipants(ctx, ParticipantQuery{
		District: f.District,
		Gender:   f.Gender,
		TypeName: f.ParticipantType,
	})
	if err != nil {
		return nil, internal("list participants", err)
	}

	out := &ParticipantsOverview{
		TotalParticipants: len(participants),
		TopParticipants:   []RankedParticipant{},
	}
	district, gender, ptype := NewCounter[string](), NewCounter[string](), NewCounter[string]()
	byID := make(map[int64]models.Participant, len(participants))
	for _, p := range participants {
		byID[p.ID] = p
		district.Add(p.District)
		gender.Add(p.Gender)
		if p.ParticipantType == "" {
			ptype.Add(UnassignedType)
		} else {
			ptype.Add(p.ParticipantType)
		}
	}
	out.DistrictHistogram = district.Map()
	out.GenderDistribution = gender.Map()
	out.TypeDistribution = ptype.Map()

	if len(participants) > 0 {
		if err := s.fillAttendance(ctx, f, byID, out); err != nil {
			return nil, err
		}
	}

	districts, genders, err := s.store.ListDistrictsAndGenders(ctx)
	if err != nil {
		return nil, internal("list participant filters", err)
	}
	types, err := s.store.ListParticipantTypeNames(ctx)
	if err != nil {
		return nil, internal("list participant types", err)
	}
	out.AvailableFilters = AvailableFilters{
		Districts:        nonNil(districts),
		Genders:          nonNil(genders),
		ParticipantTypes: nonNil(types),
	}
	return out, nil
}

func (s *Service) fillAttendance(ctx context.Context, f ParticipantFilters, cohort map[int64]models.Participant, out *ParticipantsOverview) error {
	q := RegistrationQuery{WorkshopID: f.WorkshopID}
	if f.SessionID != nil {
		q.SessionIDs = []int64{*f.SessionID}
	}
	// Query dates are calendar days in the configured location.
	if f.DateFrom != nil {
		start := startOfDay(inLocation(*f.DateFrom, s.loc))
		q.From = &start
	}
	if f.DateTo != nil {
		end := endOfDay(inLocation(*f.DateTo, s.loc))
		q.To = &end
	}
	regs, err := s.store.ListRegistrations(ctx, q)
	if err != nil {
		return internal("list registrations", err)
	}

	registered := 0
	attended := NewCounter[int64]()
	for _, r := range regs {
		if _, ok := cohort[r.ParticipantID]; !ok {
			continue
		}
		registered++
		if r.Attendance {
			attended.Add(r.ParticipantID)
		}
	}
	attendedTotal := 0
	for _, e := range attended.MostCommon(0) {
		attendedTotal += e.Count
	}
	out.AttendancePercentage = Rate(attendedTotal, registered)

	if attended.Len() == 0 {
		return nil
	}
	attendees := make([]int64, 0, attended.Len())
	for _, e := range attended.MostCommon(0) {
		attendees = append(attendees, e.Key)
	}
	withFeedback, err := s.store.FeedbackParticipantIDs(ctx, attendees)
	if err != nil {
		return internal("feedback participants", err)
	}
	out.FeedbackResponseRate = Rate(len(withFeedback), len(attendees))

	top := attended.MostCommon(TopParticipantsLimit)
	topIDs := make([]int64, len(top))
	for i, e := range top {
		topIDs[i] = e.Key
	}
	regCounts, err := s.store.CountRegistrationsByParticipant(ctx, topIDs)
	if err != nil {
		return internal("count registrations", err)
	}
	for _, e := range top {
		p := cohort[e.Key]
		out.TopParticipants = append(out.TopParticipants, RankedParticipant{
			ID:                 p.ID,
			Name:               p.Name,
			Email:              p.Email,
			AttendedSessions:   e.Count,
			RegisteredSessions: regCounts[p.ID],
		})
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// DayBreakdown is one calendar day of a period report.
type DayBreakdown struct {
	Sessions   int `json:"sessions"`
	Registered int `json:"registered"`
	Attended   int `json:"attended"`
	Feedback   int `json:"feedback"`
}

// Funnel is the registered -> attended -> feedback progression.
type Funnel struct {
	Registered        int `json:"registered"`
	Attended          int `json:"attended"`
	FeedbackSubmitted int `json:"feedback_submitted"`
}

// PeriodReport summarises sessions held inside a window.
type PeriodReport struct {
	Period                   Period                  `json:"period"`
	DateFrom                 time.Time               `json:"date_from"`
	DateTo                   time.Time               `json:"date_to"`
	TotalSessions            int                     `json:"total_sessions"`
	SessionIDs               []int64                 `json:"session_ids"`
	TotalRegistered          int                     `json:"total_registered"`
	TotalAttended            int                     `json:"total_attended"`
	FeedbackCount            int                     `json:"feedback_count"`
	AverageFeedbackRating    *float64                `json:"average_feedback_rating"`
	Funnel                   Funnel                  `json:"funnel"`
	DailyBreakdown           map[string]DayBreakdown `json:"daily_breakdown"`
	RegisteredParticipantIDs []int64                 `json:"registered_participant_ids"`
	AttendedParticipantIDs   []int64                 `json:"attended_participant_ids"`
	FeedbackParticipantIDs   []int64                 `json:"feedback_participant_ids"`
}

// PeriodReport resolves period to a window and aggregates the sessions dated inside it.
// from and to only apply to the custom period.
func (s *Service) PeriodReport(ctx context.Context, period Period, from, to *time.Time) (*PeriodReport, error) {
	now := s.now().In(s.loc)
	var earliest *time.Time
	if period == PeriodCustom && from == nil {
		e, err := s.store.EarliestSessionDate(ctx)
		if err != nil {
			return nil, internal("earliest session date", err)
		}
		earliest = e
	}
	w, err := ResolveWindow(period, now, from, to, earliest)
	if err != nil {
		return nil, err
	}

	first, last := w.FirstDay(), w.LastDay()
	sessions, err := s.store.ListSessions(ctx, SessionQuery{From: &first, To: &last})
	if err != nil {
		return nil, internal("list sessions", err)
	}
	ids := sessionIDs(sessions)
	regs, resps, err := s.loadFor(ctx, ids)
	if err != nil {
		return nil, err
	}

	t := TallyOf(regs, resps)
	rep := &PeriodReport{
		Period:                   period,
		DateFrom:                 w.Start,
		DateTo:                   w.End,
		TotalSessions:            len(sessions),
		SessionIDs:               ids,
		TotalRegistered:          t.Registered,
		TotalAttended:            t.Attended,
		FeedbackCount:            t.FeedbackParticipants,
		AverageFeedbackRating:    t.AvgRating(),
		DailyBreakdown:           make(map[string]DayBreakdown),
		RegisteredParticipantIDs: []int64{},
		AttendedParticipantIDs:   []int64{},
		FeedbackParticipantIDs:   []int64{},
	}
	rep.Funnel = Funnel{Registered: t.Registered, Attended: t.Attended, FeedbackSubmitted: t.FeedbackParticipants}

	registered, attended, feedback := NewCounter[int64](), NewCounter[int64](), NewCounter[int64]()
	for _, r := range regs {
		registered.Add(r.ParticipantID)
		if r.Attendance {
			attended.Add(r.ParticipantID)
		}
	}
	for _, r := range resps {
		feedback.Add(r.ParticipantID)
	}
	rep.RegisteredParticipantIDs = keys(registered)
	rep.AttendedParticipantIDs = keys(attended)
	rep.FeedbackParticipantIDs = keys(feedback)

	regsBy, respsBy := groupRegistrations(regs), groupResponses(resps)
	for _, sess := range sessions {
		day := sess.Date.String()
		st := TallyOf(regsBy[sess.ID], respsBy[sess.ID])
		d := rep.DailyBreakdown[day]
		d.Sessions++
		d.Registered += st.Registered
		d.Attended += st.Attended
		d.Feedback += st.FeedbackParticipants
		rep.DailyBreakdown[day] = d
	}
	return rep, nil
}

func keys(c *Counter[int64]) []int64 {
	out := make([]int64, 0, c.Len())
	out = append(out, c.order...)
	return out
}
