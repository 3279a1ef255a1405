package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workshop-hub/backend/internal/models"
)

type fakeList struct {
	lists map[string][]string
}

func newFakeList() *fakeList { return &fakeList{lists: map[string][]string{}} }

func (f *fakeList) RPush(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	for _, v := range values {
		switch b := v.(type) {
		case []byte:
			f.lists[key] = append(f.lists[key], string(b))
		case string:
			f.lists[key] = append(f.lists[key], b)
		}
	}
	return redis.NewIntResult(int64(len(f.lists[key])), nil)
}

func (f *fakeList) BLPop(_ context.Context, _ time.Duration, keys ...string) *redis.StringSliceCmd {
	for _, k := range keys {
		if l := f.lists[k]; len(l) > 0 {
			f.lists[k] = l[1:]
			return redis.NewStringSliceResult([]string{k, l[0]}, nil)
		}
	}
	return redis.NewStringSliceResult(nil, redis.Nil)
}

func TestEnqueueDequeueFanout(t *testing.T) {
	ctx := context.Background()
	fl := newFakeList()
	q := NewQueue(fl, nil)

	sessionID := int64(7)
	require.NoError(t, q.EnqueueNotificationFanout(ctx, NotificationFanoutPayload{
		TemplateID: 42,
		Target:     models.NotificationTarget{Kind: models.TargetSession, SessionID: &sessionID, AttendedOnly: true},
	}))
	require.Len(t, fl.lists[QueueNotifications], 1)

	job, key, err := q.Dequeue(ctx)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, QueueNotifications, key)
	assert.Equal(t, JobTypeNotificationFanout, job.Type)
	assert.NotEmpty(t, job.ID)

	var p NotificationFanoutPayload
	require.NoError(t, json.Unmarshal(job.Payload, &p))
	assert.Equal(t, int64(42), p.TemplateID)
	assert.Equal(t, models.TargetSession, p.Target.Kind)
	assert.True(t, p.Target.AttendedOnly)
}

func TestDequeueEmptyReturnsNil(t *testing.T) {
	q := NewQueue(newFakeList(), nil)
	job, _, err := q.Dequeue(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, job)
}

func TestDequeueSkipsGarbage(t *testing.T) {
	fl := newFakeList()
	fl.lists[QueueNotifications] = []string{"{not json"}
	job, _, err := NewQueue(fl, nil).Dequeue(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, job)
}

func TestRetryMovesToDLQAfterMaxRetries(t *testing.T) {
	ctx := context.Background()
	fl := newFakeList()
	q := NewQueue(fl, nil)
	job := &Job{ID: "j1", Type: JobTypeNotificationFanout}

	for i := 1; i < MaxRetries; i++ {
		require.NoError(t, q.Retry(ctx, QueueNotifications, job))
		assert.Equal(t, i, job.Attempt)
	}
	assert.Len(t, fl.lists[QueueNotifications], MaxRetries-1)
	assert.Empty(t, fl.lists[QueueDLQ])

	require.NoError(t, q.Retry(ctx, QueueNotifications, job))
	assert.Len(t, fl.lists[QueueDLQ], 1)
}

func TestEnqueueUnknownType(t *testing.T) {
	_, err := NewQueue(newFakeList(), nil).Enqueue(context.Background(), JobType("nope"), struct{}{})
	assert.Error(t, err)
}
