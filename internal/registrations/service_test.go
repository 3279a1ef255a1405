package registrations

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workshop-hub/backend/internal/models"
	"github.com/workshop-hub/backend/internal/workshops"
	"github.com/workshop-hub/backend/pkg/apperror"
	"github.com/workshop-hub/backend/pkg/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := validator.Register(); err != nil {
		panic(err)
	}
}

type fakeStore struct {
	regs      []models.Registration
	responses []SessionResponse
}

func (f *fakeStore) find(pid, sid int64) int {
	for i, r := range f.regs {
		if r.ParticipantID == pid && r.SessionID == sid {
			return i
		}
	}
	return -1
}

func (f *fakeStore) Create(_ context.Context, pid, sid int64) (*models.Registration, error) {
	if f.find(pid, sid) >= 0 {
		return nil, nil
	}
	r := models.Registration{ID: int64(len(f.regs) + 100), ParticipantID: pid, SessionID: sid}
	f.regs = append(f.regs, r)
	return &r, nil
}

func (f *fakeStore) Cancel(_ context.Context, pid, sid int64) (bool, error) {
	i := f.find(pid, sid)
	if i < 0 {
		return false, nil
	}
	f.regs = append(f.regs[:i], f.regs[i+1:]...)
	return true, nil
}

func (f *fakeStore) markAt(i int) models.AttendanceStatus {
	if i < 0 {
		return models.AttendanceNotRegistered
	}
	if f.regs[i].Attendance {
		return models.AttendanceAlreadyMarked
	}
	f.regs[i].Attendance = true
	return models.AttendanceSuccess
}

func (f *fakeStore) MarkAttended(_ context.Context, pid, sid int64) (models.AttendanceStatus, error) {
	return f.markAt(f.find(pid, sid)), nil
}

func (f *fakeStore) MarkAttendedByID(_ context.Context, id int64) (models.AttendanceStatus, error) {
	for i, r := range f.regs {
		if r.ID == id {
			return f.markAt(i), nil
		}
	}
	return models.AttendanceNotRegistered, nil
}

func (f *fakeStore) SessionIDs(_ context.Context, pid int64, attendedOnly bool) ([]int64, error) {
	ids := []int64{}
	for _, r := range f.regs {
		if r.ParticipantID == pid && (!attendedOnly || r.Attendance) {
			ids = append(ids, r.SessionID)
		}
	}
	return ids, nil
}

func (f *fakeStore) ParticipantResponses(_ context.Context, pid int64) ([]SessionResponse, error) {
	var out []SessionResponse
	for _, r := range f.responses {
		if r.Response.ParticipantID == pid {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) Roster(_ context.Context, sid int64) ([]Registrant, error) {
	var out []Registrant
	for _, r := range f.regs {
		if r.SessionID == sid {
			out = append(out, Registrant{Participant: workshops.ParticipantRef{ID: r.ParticipantID}, Attended: r.Attendance})
		}
	}
	return out, nil
}

type fakeSessions struct{ sessions []models.Session }

func (f *fakeSessions) GetSession(_ context.Context, id int64) (*models.Session, error) {
	for i := range f.sessions {
		if f.sessions[i].ID == id {
			s := f.sessions[i]
			return &s, nil
		}
	}
	return nil, nil
}

func (f *fakeSessions) GetSessionByToken(_ context.Context, tok uuid.UUID) (*models.Session, error) {
	for i := range f.sessions {
		if f.sessions[i].Token == tok {
			s := f.sessions[i]
			return &s, nil
		}
	}
	return nil, nil
}

func (f *fakeSessions) ListSessions(_ context.Context, flt workshops.SessionFilter) ([]models.Session, error) {
	want := map[int64]bool{}
	for _, id := range flt.IDs {
		want[id] = true
	}
	var out []models.Session
	for _, s := range f.sessions {
		if want[s.ID] {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeViewer struct{ withMaterials []bool }

func (f *fakeViewer) Views(_ context.Context, sessions []models.Session, withMaterials bool) ([]workshops.SessionView, error) {
	f.withMaterials = append(f.withMaterials, withMaterials)
	out := []workshops.SessionView{}
	for _, s := range sessions {
		out = append(out, workshops.SessionView{ID: s.ID, WorkshopID: s.WorkshopID, Token: s.Token})
	}
	return out, nil
}

type fakeParticipants struct{ list []models.Participant }

func (f *fakeParticipants) GetParticipant(_ context.Context, id int64) (*models.Participant, error) {
	for i := range f.list {
		if f.list[i].ID == id {
			p := f.list[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (f *fakeParticipants) GetParticipantByNIC(_ context.Context, nic string) (*models.Participant, error) {
	for i := range f.list {
		if f.list[i].NIC == nic {
			p := f.list[i]
			return &p, nil
		}
	}
	return nil, nil
}

var token = uuid.MustParse("4b0c8a5e-9d3f-4e43-9b61-2f7d4c1a0e11")

type fixture struct {
	store  *fakeStore
	viewer *fakeViewer
	svc    *Service
}

func newFixture() *fixture {
	store := &fakeStore{}
	sessions := &fakeSessions{sessions: []models.Session{
		{ID: 1, WorkshopID: 1, Token: token},
		{ID: 2, WorkshopID: 1, Token: uuid.New()},
	}}
	viewer := &fakeViewer{}
	participants := &fakeParticipants{list: []models.Participant{
		{ID: 10, Name: "Nimal", NIC: "199012345678"},
		{ID: 11, Name: "Kumari", NIC: "912345678V"},
	}}
	return &fixture{store: store, viewer: viewer, svc: NewService(store, sessions, viewer, participants, nil)}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	reg, err := f.svc.Register(ctx, 10, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10), reg.ParticipantID)
	assert.False(t, reg.Attendance)

	_, err = f.svc.Register(ctx, 10, 1)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	assert.Len(t, f.store.regs, 1)

	_, err = f.svc.Register(ctx, 99, 1)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	_, err = f.svc.Register(ctx, 10, 99)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestCancelThenRegisterAgain(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.svc.Register(ctx, 10, 1)
	require.NoError(t, err)
	require.NoError(t, f.svc.Cancel(ctx, 10, 1))

	err = f.svc.Cancel(ctx, 10, 1)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = f.svc.Register(ctx, 10, 1)
	assert.NoError(t, err)
}

func TestMarkAttendanceVariants(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	reg, err := f.svc.Register(ctx, 10, 1)
	require.NoError(t, err)

	res, err := f.svc.MarkByID(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceSuccess, res.Status)

	res, err = f.svc.MarkByQR(ctx, token.String(), 10)
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceAlreadyMarked, res.Status)

	res, err = f.svc.MarkByNIC(ctx, token.String(), "912345678V")
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceNotRegistered, res.Status)
	assert.Len(t, f.store.regs, 1)

	_, err = f.svc.MarkByID(ctx, 999)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	_, err = f.svc.MarkByQR(ctx, "not-a-token", 10)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	_, err = f.svc.MarkByQR(ctx, uuid.NewString(), 10)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	_, err = f.svc.MarkByQR(ctx, token.String(), 99)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	_, err = f.svc.MarkByNIC(ctx, token.String(), " ")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	_, err = f.svc.MarkByNIC(ctx, token.String(), "000000000V")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestParticipantSessionLists(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	_, _ = f.svc.Register(ctx, 10, 1)
	_, _ = f.svc.Register(ctx, 10, 2)
	_, _ = f.svc.MarkByQR(ctx, token.String(), 10)
	f.store.responses = []SessionResponse{
		{SessionID: 1, Response: models.FeedbackResponse{ID: 1, ParticipantID: 10, QuestionID: 5, Response: "4"}},
		{SessionID: 1, Response: models.FeedbackResponse{ID: 2, ParticipantID: 10, QuestionID: 6, Response: "Yes"}},
	}

	registered, err := f.svc.RegisteredSessions(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, registered, 2)

	attended, err := f.svc.AttendedSessions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, attended, 1)
	assert.Equal(t, int64(1), attended[0].ID)
	assert.Equal(t, []bool{false, true}, f.viewer.withMaterials)

	fb, err := f.svc.FeedbackSessions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, fb, 1)
	assert.Len(t, fb[0].FeedbackResponses, 2)

	none, err := f.svc.RegisteredSessions(ctx, 11)
	require.NoError(t, err)
	assert.Empty(t, none)
	fbNone, err := f.svc.FeedbackSessions(ctx, 11)
	require.NoError(t, err)
	assert.NotNil(t, fbNone)
}

func TestCounts(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	_, _ = f.svc.Register(ctx, 10, 1)
	_, _ = f.svc.Register(ctx, 11, 1)
	_, _ = f.svc.MarkByNIC(ctx, token.String(), "912345678V")

	c, err := f.svc.Counts(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, c.RegisteredCount)
	assert.Equal(t, 1, c.AttendedCount)
	assert.Equal(t, int64(11), c.AttendedParticipants[0].ID)

	empty, err := f.svc.Counts(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.RegisteredCount)
	assert.NotNil(t, empty.AttendedParticipants)

	_, err = f.svc.Counts(ctx, 99)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func post(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandlerAttendanceStatusCodes(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc, nil)
	r := gin.New()
	h.Register(r.Group("/registrations"))
	r.POST("/participants/:id/register-session", h.RegisterOnBehalf)

	w := post(r, "/participants/10/register-session", gin.H{"session_id": 1})
	assert.Equal(t, http.StatusCreated, w.Code)
	w = post(r, "/registrations", gin.H{"participant_id": 10, "session_id": 1})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = post(r, "/registrations/attendance/qr", gin.H{"session_token": token.String(), "participant_id": 10})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Attendance marked successfully.")

	w = post(r, "/registrations/attendance/qr", gin.H{"session_token": token.String(), "participant_id": 10})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "already_marked")

	w = post(r, "/registrations/sessions/"+token.String()+"/attendance", gin.H{"nic": "912345678V"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "You are not registered for this session.")

	w = post(r, "/registrations/attendance/mark", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(r, "/registrations/cancel", gin.H{"participant_id": 10, "session_id": 2})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
