package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/maheshrc27/astraboltz/pkg/apperrors"
)

func (j *Queue) HandleSchedulePostTask(ctx context.Context, task *asynq.Task) error {
	var payload SchedulePostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode %s payload: %v: %w", TaskTypeSchedulePost, err, asynq.SkipRetry)
	}

	return j.PublishPost(ctx, payload.PostID)
}

// PublishPost resolves a single post if it is due. Posts removed since the
// task was queued, or already resolved by the simulator, are left alone.
func (j *Queue) PublishPost(ctx context.Context, postID string) error {
	changed, err := j.pr.Resolve(ctx, postID, j.clock(), j.outcome)
	if apperrors.IsNotFound(err) {
		slog.Info("post no longer exists, dropping task", "post_id", postID)
		return nil
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	if changed {
		post, _ := j.pr.GetByID(ctx, postID)
		if post != nil {
			slog.Info("post resolved by queue", "post_id", postID, "status", post.Status)
		}
		j.m.RecordPostsResolved(ctx, "queue", 1)
	}
	return nil
}
