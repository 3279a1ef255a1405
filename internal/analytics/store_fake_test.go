package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/workshop-hub/backend/internal/models"
)

type assignment struct {
	trainerID int64
	sessionID int64
}

// fakeStore is an in-memory Store for service tests.
type fakeStore struct {
	workshops   []models.Workshop
	sessions    []models.Session
	trainers    []models.Trainer
	assignments []assignment
	types       []models.ParticipantType
	people      []models.Participant
	regs        []RegistrationRow
	questions   []models.FeedbackQuestion
	responses   []models.FeedbackResponse
	comments    map[int64]models.AdminComment
	saved       []models.SessionStatistics
}

func newFakeStore() *fakeStore {
	return &fakeStore{comments: make(map[int64]models.AdminComment)}
}

func (f *fakeStore) addWorkshop(id int64, title string) {
	f.workshops = append(f.workshops, models.Workshop{ID: id, Title: title})
}

func (f *fakeStore) addSession(id, workshopID int64, date, clock string) {
	title := ""
	for _, w := range f.workshops {
		if w.ID == workshopID {
			title = w.Title
		}
	}
	d, err := models.ParseDate(date)
	if err != nil {
		panic(err)
	}
	f.sessions = append(f.sessions, models.Session{ID: id, WorkshopID: workshopID, WorkshopTitle: title, Date: d, Time: clock, Location: "Colombo"})
}

func (f *fakeStore) addParticipant(id int64, name, district, gender string, typeID *int64) {
	p := models.Participant{ID: id, Name: name, Email: name + "@example.org", District: district, Gender: gender, ParticipantTypeID: typeID}
	if typeID != nil {
		for _, t := range f.types {
			if t.ID == *typeID {
				p.ParticipantType = t.Name
			}
		}
	}
	f.people = append(f.people, p)
}

func (f *fakeStore) register(participantID, sessionID int64, attended bool, on time.Time) {
	name, email := "", ""
	for _, p := range f.people {
		if p.ID == participantID {
			name, email = p.Name, p.Email
		}
	}
	f.regs = append(f.regs, RegistrationRow{
		ID:               int64(len(f.regs) + 1),
		ParticipantID:    participantID,
		SessionID:        sessionID,
		RegisteredOn:     on,
		Attendance:       attended,
		ParticipantName:  name,
		ParticipantEmail: email,
	})
}

func (f *fakeStore) addQuestion(id, sessionID int64, rt models.ResponseType, options ...string) {
	f.questions = append(f.questions, models.FeedbackQuestion{ID: id, SessionID: sessionID, QuestionText: "Q" + string(rt), ResponseType: rt, Options: options})
}

func (f *fakeStore) answer(participantID, questionID int64, response string) {
	f.responses = append(f.responses, models.FeedbackResponse{ID: int64(len(f.responses) + 1), ParticipantID: participantID, QuestionID: questionID, Response: response})
}

func (f *fakeStore) GetSession(_ context.Context, id int64) (*models.Session, error) {
	for _, s := range f.sessions {
		if s.ID == id {
			s := s
			return &s, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListSessions(_ context.Context, q SessionQuery) ([]models.Session, error) {
	var out []models.Session
	for _, s := range f.sessions {
		if q.WorkshopID != nil && s.WorkshopID != *q.WorkshopID {
			continue
		}
		if q.From != nil && s.Date.String() < q.From.Format(models.DateLayout) {
			continue
		}
		if q.To != nil && s.Date.String() > q.To.Format(models.DateLayout) {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if q.NewestFirst {
			a, b = b, a
		}
		if a.Date.String() != b.Date.String() {
			return a.Date.String() < b.Date.String()
		}
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (f *fakeStore) EarliestSessionDate(context.Context) (*time.Time, error) {
	var earliest *time.Time
	for _, s := range f.sessions {
		t := s.Date.Time
		if earliest == nil || t.Before(*earliest) {
			earliest = &t
		}
	}
	return earliest, nil
}

func (f *fakeStore) GetWorkshop(_ context.Context, id int64) (*models.Workshop, error) {
	for _, w := range f.workshops {
		if w.ID == id {
			w := w
			return &w, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListWorkshops(context.Context) ([]models.Workshop, error) {
	return f.workshops, nil
}

func (f *fakeStore) GetTrainer(_ context.Context, id int64) (*models.Trainer, error) {
	for _, t := range f.trainers {
		if t.ID == id {
			t := t
			return &t, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListTrainers(context.Context) ([]models.Trainer, error) {
	return f.trainers, nil
}

func (f *fakeStore) ListTrainerSessions(ctx context.Context, trainerID *int64) (map[int64][]models.Session, error) {
	out := make(map[int64][]models.Session)
	for _, a := range f.assignments {
		if trainerID != nil && a.trainerID != *trainerID {
			continue
		}
		s, _ := f.GetSession(ctx, a.sessionID)
		out[a.trainerID] = append(out[a.trainerID], *s)
	}
	return out, nil
}

func (f *fakeStore) ListRegistrations(_ context.Context, q RegistrationQuery) ([]RegistrationRow, error) {
	var ids map[int64]bool
	if q.SessionIDs != nil {
		ids = make(map[int64]bool)
		for _, id := range q.SessionIDs {
			ids[id] = true
		}
	}
	var out []RegistrationRow
	for _, r := range f.regs {
		if ids != nil && !ids[r.SessionID] {
			continue
		}
		if q.WorkshopID != nil {
			s, _ := f.GetSession(context.Background(), r.SessionID)
			if s.WorkshopID != *q.WorkshopID {
				continue
			}
		}
		if q.From != nil && r.RegisteredOn.Before(*q.From) {
			continue
		}
		if q.To != nil && r.RegisteredOn.After(*q.To) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeStore) question(id int64) models.FeedbackQuestion {
	for _, q := range f.questions {
		if q.ID == id {
			return q
		}
	}
	return models.FeedbackQuestion{}
}

func (f *fakeStore) ListResponses(_ context.Context, sessionIDs []int64) ([]ResponseRow, error) {
	var ids map[int64]bool
	if sessionIDs != nil {
		ids = make(map[int64]bool)
		for _, id := range sessionIDs {
			ids[id] = true
		}
	}
	var out []ResponseRow
	for _, r := range f.responses {
		q := f.question(r.QuestionID)
		if ids != nil && !ids[q.SessionID] {
			continue
		}
		out = append(out, ResponseRow{ParticipantID: r.ParticipantID, QuestionID: q.ID, SessionID: q.SessionID, ResponseType: q.ResponseType, Response: r.Response})
	}
	return out, nil
}

func (f *fakeStore) ListFeedbackQuestions(_ context.Context, sessionID int64) ([]models.FeedbackQuestion, error) {
	var out []models.FeedbackQuestion
	for _, q := range f.questions {
		if q.SessionID == sessionID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeStore) ListParticipants(_ context.Context, q ParticipantQuery) ([]models.Participant, error) {
	var out []models.Participant
	for _, p := range f.people {
		if q.District != "" && p.District != q.District {
			continue
		}
		if q.Gender != "" && p.Gender != q.Gender {
			continue
		}
		if q.TypeName != "" && p.ParticipantType != q.TypeName {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeStore) ListDistrictsAndGenders(context.Context) ([]string, []string, error) {
	ds, gs := NewCounter[string](), NewCounter[string]()
	for _, p := range f.people {
		ds.Add(p.District)
		gs.Add(p.Gender)
	}
	return ds.order, gs.order, nil
}

func (f *fakeStore) ListParticipantTypeNames(context.Context) ([]string, error) {
	var out []string
	for _, t := range f.types {
		out = append(out, t.Name)
	}
	return out, nil
}

func (f *fakeStore) CountRegistrationsByParticipant(_ context.Context, ids []int64) (map[int64]int, error) {
	want := make(map[int64]bool)
	for _, id := range ids {
		want[id] = true
	}
	out := make(map[int64]int)
	for _, r := range f.regs {
		if want[r.ParticipantID] {
			out[r.ParticipantID]++
		}
	}
	return out, nil
}

func (f *fakeStore) FeedbackParticipantIDs(_ context.Context, ids []int64) ([]int64, error) {
	want := make(map[int64]bool)
	for _, id := range ids {
		want[id] = true
	}
	seen := NewCounter[int64]()
	for _, r := range f.responses {
		if want[r.ParticipantID] {
			seen.Add(r.ParticipantID)
		}
	}
	return seen.order, nil
}

func (f *fakeStore) CountEntities(context.Context) (AdminCounts, error) {
	return AdminCounts{
		Workshops:        len(f.workshops),
		Sessions:         len(f.sessions),
		Participants:     len(f.people),
		ParticipantTypes: len(f.types),
		Trainers:         len(f.trainers),
	}, nil
}

func (f *fakeStore) GetAdminComment(_ context.Context, sessionID int64) (*models.AdminComment, error) {
	c, ok := f.comments[sessionID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (f *fakeStore) SaveSessionStatistics(_ context.Context, st *models.SessionStatistics) error {
	f.saved = append(f.saved, *st)
	return nil
}
