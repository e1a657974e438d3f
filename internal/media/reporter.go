package media

import (
	"context"
	"fmt"
	"time"

	"ravebox/discover/internal/domain/task"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// TaskQueue is the part of the task queue a reporter needs
type TaskQueue interface {
	AddTask(ctx context.Context, task task.Task) (string, error)
}

// QueueReporter queues failures for the indexer workers to record
type QueueReporter struct {
	queue TaskQueue
	now   func() time.Time
}

func NewQueueReporter(queue TaskQueue) *QueueReporter {
	return &QueueReporter{queue: queue, now: time.Now}
}

func (r *QueueReporter) Report(ctx context.Context, event Event, cause error) error {
	failure := &task.MediaFailureTask{
		ID:       uuid.NewString(),
		Bucket:   event.SrcBucket,
		Key:      event.SrcVideo,
		Error:    cause.Error(),
		FailedAt: r.now().UTC(),
	}

	id, err := r.queue.AddTask(ctx, failure)
	if err != nil {
		return fmt.Errorf("failed to queue media failure: %w", err)
	}

	log.Debugf("Queued media failure %s as message %s", failure.ID, id)
	return nil
}

// LogReporter only logs; used when no queue is configured
type LogReporter struct{}

func (LogReporter) Report(_ context.Context, event Event, cause error) error {
	log.WithFields(log.Fields{
		"bucket": event.SrcBucket,
		"key":    event.SrcVideo,
	}).Warnf("⚠️ Unreported media failure: %v", cause)
	return nil
}
