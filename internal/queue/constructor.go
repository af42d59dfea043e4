package queue

import (
	"time"

	"github.com/maheshrc27/astraboltz/internal/metrics"
	"github.com/maheshrc27/astraboltz/internal/repository"
)

type Queue struct {
	pr      repository.PostRepository
	outcome repository.OutcomeFunc
	clock   func() time.Time
	m       *metrics.Metrics
}

func NewQueue(
	pr repository.PostRepository,
	outcome repository.OutcomeFunc,
	clock func() time.Time,
	m *metrics.Metrics) *Queue {
	if clock == nil {
		clock = time.Now
	}
	return &Queue{
		pr:      pr,
		outcome: outcome,
		clock:   clock,
		m:       m,
	}
}

const TaskTypeSchedulePost = "schedule:post"

type SchedulePostPayload struct {
	PostID string `json:"post_id"`
}
