package feedback

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workshop-hub/backend/internal/models"
	"github.com/workshop-hub/backend/pkg/apperror"
	"github.com/workshop-hub/backend/pkg/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := validator.Register(); err != nil {
		panic(err)
	}
}

func TestNormalizeAnswer(t *testing.T) {
	tests := []struct {
		name string
		rt   models.ResponseType
		raw  string
		want string
		ok   bool
	}{
		{"text string", models.ResponseText, `"great session"`, "great session", true},
		{"paragraph number", models.ResponseParagraph, `42`, "", false},
		{"rating number", models.ResponseRating, `4`, "4", true},
		{"scale numeric string", models.ResponseScale, `" 3.5 "`, "3.5", true},
		{"rating word", models.ResponseRating, `"good"`, "", false},
		{"checkbox array", models.ResponseCheckbox, `["a", "b"]`, `["a","b"]`, true},
		{"choice array in string", models.ResponseMultipleChoice, `"[\"x\"]"`, `["x"]`, true},
		{"checkbox object", models.ResponseCheckbox, `{"a":1}`, "", false},
		{"yes_no token", models.ResponseYesNo, `"Yes"`, "Yes", true},
		{"yes_no bool", models.ResponseYesNo, `false`, "false", true},
		{"yes_no upper", models.ResponseYesNo, `"YES"`, "", false},
		{"missing", models.ResponseText, ``, "", false},
		{"null", models.ResponseRating, `null`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeAnswer(tt.rt, json.RawMessage(tt.raw))
			if !tt.ok {
				assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type fakeStore struct {
	questions []models.FeedbackQuestion
	responses []models.FeedbackResponse
}

func (f *fakeStore) CreateQuestion(_ context.Context, fq *models.FeedbackQuestion) error {
	fq.ID = int64(len(f.questions) + 1)
	f.questions = append(f.questions, *fq)
	return nil
}

func (f *fakeStore) GetQuestion(_ context.Context, id int64) (*models.FeedbackQuestion, error) {
	for i := range f.questions {
		if f.questions[i].ID == id {
			q := f.questions[i]
			return &q, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListQuestions(_ context.Context, sid int64) ([]models.FeedbackQuestion, error) {
	var out []models.FeedbackQuestion
	for _, q := range f.questions {
		if q.SessionID == sid {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeStore) SaveResponse(_ context.Context, pid, qid int64, resp string) (*models.FeedbackResponse, bool, error) {
	for i := range f.responses {
		r := &f.responses[i]
		if r.ParticipantID == pid && r.QuestionID == qid {
			if r.Response == resp {
				return nil, false, nil
			}
			r.Response = resp
			out := *r
			return &out, true, nil
		}
	}
	r := models.FeedbackResponse{ID: int64(len(f.responses) + 1), ParticipantID: pid, QuestionID: qid, Response: resp}
	f.responses = append(f.responses, r)
	return &r, false, nil
}

func (f *fakeStore) ListResponses(context.Context, int64) ([]models.FeedbackResponse, error) {
	return f.responses, nil
}

type fakeSessions struct{}

func (fakeSessions) GetSession(_ context.Context, id int64) (*models.Session, error) {
	if id != 1 {
		return nil, nil
	}
	return &models.Session{ID: 1, WorkshopTitle: "Data Literacy", Date: models.NewDate(time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC))}, nil
}

type fakeParticipants struct{}

func (fakeParticipants) GetParticipant(_ context.Context, id int64) (*models.Participant, error) {
	if id != 7 {
		return nil, nil
	}
	return &models.Participant{ID: 7}, nil
}

type announced struct {
	tmpl   models.NotificationTemplate
	target models.NotificationTarget
}

type fakeAnnouncer struct{ calls []announced }

func (f *fakeAnnouncer) Announce(_ context.Context, t models.NotificationTemplate, target models.NotificationTarget) {
	f.calls = append(f.calls, announced{t, target})
}

func newService() (*Service, *fakeStore, *fakeAnnouncer) {
	store := &fakeStore{}
	ann := &fakeAnnouncer{}
	return NewService(store, fakeSessions{}, fakeParticipants{}, ann, nil), store, ann
}

func TestCreateQuestionNotifiesAttendees(t *testing.T) {
	svc, _, ann := newService()
	fq, err := svc.CreateQuestion(context.Background(), QuestionInput{SessionID: 1, QuestionText: "Rate it", ResponseType: "rating"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), fq.ID)

	require.Len(t, ann.calls, 1)
	call := ann.calls[0]
	assert.Equal(t, "New Feedback Question", call.tmpl.Title)
	assert.Equal(t, "New feedback questions have been added for your session 'Data Literacy - 2025-03-04'.", call.tmpl.Message)
	assert.Equal(t, "/sessions/1/feedback/", call.tmpl.URL)
	assert.Equal(t, models.TargetSession, call.target.Kind)
	assert.True(t, call.target.AttendedOnly)
}

func TestCreateQuestionValidation(t *testing.T) {
	svc, _, ann := newService()
	_, err := svc.CreateQuestion(context.Background(), QuestionInput{SessionID: 9, QuestionText: "x", ResponseType: "text"})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = svc.CreateQuestion(context.Background(), QuestionInput{SessionID: 1, QuestionText: "Pick", ResponseType: "checkbox", Options: []string{" "}})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Empty(t, ann.calls)
}

func TestSubmitUpsert(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService()
	_, err := svc.CreateQuestion(ctx, QuestionInput{SessionID: 1, QuestionText: "Rate it", ResponseType: "scale"})
	require.NoError(t, err)

	res, err := svc.Submit(ctx, ResponseInput{ParticipantID: 7, QuestionID: 1, Response: json.RawMessage(`4`)})
	require.NoError(t, err)
	assert.False(t, res.Updated)

	_, err = svc.Submit(ctx, ResponseInput{ParticipantID: 7, QuestionID: 1, Response: json.RawMessage(`"4"`)})
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	res, err = svc.Submit(ctx, ResponseInput{ParticipantID: 7, QuestionID: 1, Response: json.RawMessage(`5`)})
	require.NoError(t, err)
	assert.True(t, res.Updated)
	assert.Len(t, store.responses, 1)
	assert.Equal(t, "5", store.responses[0].Response)

	_, err = svc.Submit(ctx, ResponseInput{ParticipantID: 8, QuestionID: 1, Response: json.RawMessage(`5`)})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	_, err = svc.Submit(ctx, ResponseInput{ParticipantID: 7, QuestionID: 2, Response: json.RawMessage(`5`)})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	_, err = svc.Submit(ctx, ResponseInput{ParticipantID: 7, QuestionID: 1, Response: json.RawMessage(`"five"`)})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestHandlerSubmitStatus(t *testing.T) {
	svc, _, _ := newService()
	r := gin.New()
	NewHandler(svc, nil).Register(r.Group("/feedback"))

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := do(http.MethodPost, "/feedback/questions", `{"session":1,"question_text":"Useful?","response_type":"yes_no"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(http.MethodPost, "/feedback/questions", `{"session":1,"question_text":"Useful?","response_type":"essay"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(http.MethodPost, "/feedback/responses", `{"participant":7,"question":1,"response":true}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	w = do(http.MethodPost, "/feedback/responses", `{"participant":7,"question":1,"response":"no"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"updated":true`)
	w = do(http.MethodPost, "/feedback/responses", `{"participant":7,"question":1,"response":"no"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(http.MethodGet, "/feedback/questions/1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Useful?")
}
