package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/workshop-hub/backend/internal/models"
	"github.com/workshop-hub/backend/pkg/queue"
)

// FanOuter expands a template into per-participant notifications.
type FanOuter interface {
	FanOut(ctx context.Context, templateID int64, target models.NotificationTarget) (int64, error)
}

// JobQueue is the queue surface the worker consumes.
type JobQueue interface {
	Dequeue(ctx context.Context, keys ...string) (*queue.Job, string, error)
	Retry(ctx context.Context, key string, job *queue.Job) error
}

// NotificationProcessor processes notification fan-out jobs.
type NotificationProcessor struct {
	store   FanOuter
	queue   JobQueue
	logger  *zap.Logger
	backoff time.Duration
}

// NewNotificationProcessor creates a notification fan-out processor.
func NewNotificationProcessor(store FanOuter, q JobQueue, logger *zap.Logger) *NotificationProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationProcessor{store: store, queue: q, logger: logger, backoff: queue.RetryBackoff}
}

// Process executes one fan-out job.
func (p *NotificationProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeNotificationFanout {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.NotificationFanoutPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if payload.TemplateID <= 0 {
		return fmt.Errorf("fanout job without template id")
	}

	n, err := p.store.FanOut(ctx, payload.TemplateID, payload.Target)
	if err != nil {
		return fmt.Errorf("fan out template %d: %w", payload.TemplateID, err)
	}
	p.logger.Info("notifications delivered",
		zap.String("job_id", job.ID),
		zap.Int64("template_id", payload.TemplateID),
		zap.String("target", string(payload.Target.Kind)),
		zap.Int64("created", n),
	)
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *NotificationProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("notification worker stopping")
			return
		default:
		}

		job, key, err := p.queue.Dequeue(ctx, queue.QueueNotifications)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))
			if reErr := p.queue.Retry(ctx, key, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			p.sleep(ctx)
		}
	}
}

func (p *NotificationProcessor) sleep(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
