package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// TaskTypeApprovalReview is the asynq task type for human-review items.
const TaskTypeApprovalReview = "approval:review"

// AsynqApprovalQueue routes review items onto the task queue consumed by
// the approval workers.
type AsynqApprovalQueue struct {
	client *asynq.Client
}

// NewAsynqApprovalQueue wraps an existing asynq client.
func NewAsynqApprovalQueue(client *asynq.Client) *AsynqApprovalQueue {
	return &AsynqApprovalQueue{client: client}
}

// Push implements ApprovalQueue.Push. Priority 1 lands on the critical
// queue, 2 on default, everything else on low.
func (q *AsynqApprovalQueue) Push(ctx context.Context, item *ApprovalItem) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal approval item: %w", err)
	}

	opts := []asynq.Option{
		asynq.MaxRetry(3),
		asynq.Timeout(10 * time.Minute),
	}
	switch item.Priority {
	case 1:
		opts = append(opts, asynq.Queue("critical"))
	case 2:
		opts = append(opts, asynq.Queue("default"))
	default:
		opts = append(opts, asynq.Queue("low"))
	}

	task := asynq.NewTask(TaskTypeApprovalReview, payload, opts...)
	if _, err := q.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue approval item: %w", err)
	}
	return nil
}
