package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workshop-hub/backend/internal/models"
	"github.com/workshop-hub/backend/pkg/queue"
)

type fakeFanOut struct {
	calls []int64
	err   error
}

func (f *fakeFanOut) FanOut(_ context.Context, templateID int64, _ models.NotificationTarget) (int64, error) {
	f.calls = append(f.calls, templateID)
	return 3, f.err
}

type fakeQueue struct {
	jobs    []*queue.Job
	retried []*queue.Job
	cancel  context.CancelFunc
}

func (q *fakeQueue) Dequeue(context.Context, ...string) (*queue.Job, string, error) {
	if len(q.jobs) == 0 {
		q.cancel()
		return nil, "", nil
	}
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	return job, queue.QueueNotifications, nil
}

func (q *fakeQueue) Retry(_ context.Context, _ string, job *queue.Job) error {
	q.retried = append(q.retried, job)
	return nil
}

func fanoutJob(t *testing.T, templateID int64) *queue.Job {
	t.Helper()
	raw, err := json.Marshal(queue.NotificationFanoutPayload{TemplateID: templateID, Target: models.NotificationTarget{Kind: models.TargetAll}})
	require.NoError(t, err)
	return &queue.Job{ID: "job", Type: queue.JobTypeNotificationFanout, Payload: raw}
}

func TestProcess(t *testing.T) {
	store := &fakeFanOut{}
	p := NewNotificationProcessor(store, nil, nil)

	require.NoError(t, p.Process(context.Background(), fanoutJob(t, 9)))
	assert.Equal(t, []int64{9}, store.calls)

	assert.Error(t, p.Process(context.Background(), &queue.Job{Type: "recording_upload"}))
	assert.Error(t, p.Process(context.Background(), &queue.Job{Type: queue.JobTypeNotificationFanout, Payload: []byte("{")}))
	assert.Error(t, p.Process(context.Background(), fanoutJob(t, 0)))
}

func TestRunRetriesFailedJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := &fakeFanOut{err: errors.New("db down")}
	q := &fakeQueue{jobs: []*queue.Job{fanoutJob(t, 1)}, cancel: cancel}
	p := NewNotificationProcessor(store, q, nil)
	p.backoff = 0

	p.Run(ctx)
	require.Len(t, q.retried, 1)
	assert.Equal(t, []int64{1}, store.calls)
}
