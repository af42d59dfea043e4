package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/maheshrc27/astraboltz/internal/models"
)

// Enqueuer is the part of *asynq.Client used here.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

func EnqueuePost(ctx context.Context, client Enqueuer, payload SchedulePostPayload, delay time.Duration) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeSchedulePost, taskPayload)

	_, err = client.EnqueueContext(ctx, task, asynq.ProcessIn(delay), asynq.TaskID(payload.PostID))
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	slog.Info("task scheduled", "post_id", payload.PostID, "delay", delay)
	return nil
}

// Dispatcher hands a freshly created post to the delayed-task queue.
type Dispatcher interface {
	Dispatch(ctx context.Context, post *models.Post) error
}

type asynqDispatcher struct {
	client Enqueuer
	clock  func() time.Time
}

func NewDispatcher(client Enqueuer, clock func() time.Time) Dispatcher {
	if clock == nil {
		clock = time.Now
	}
	return &asynqDispatcher{client: client, clock: clock}
}

func (d *asynqDispatcher) Dispatch(ctx context.Context, post *models.Post) error {
	delay := post.ScheduledAt.Sub(d.clock())
	if delay < 0 {
		delay = 0
	}
	return EnqueuePost(ctx, d.client, SchedulePostPayload{PostID: post.ID}, delay)
}
