package job

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/maheshrc27/astraboltz/internal/metrics"
	"github.com/maheshrc27/astraboltz/internal/models"
	"github.com/maheshrc27/astraboltz/internal/repository"
	"github.com/robfig/cron"
)

// RandomOutcome publishes with probability successRate and fails otherwise,
// drawing independently for every post.
func RandomOutcome(successRate float64, rng *rand.Rand) repository.OutcomeFunc {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	var mu sync.Mutex
	return func(models.Post) models.PostStatus {
		mu.Lock()
		roll := rng.Float64()
		mu.Unlock()
		if roll < successRate {
			return models.PostStatusPublished
		}
		return models.PostStatusFailed
	}
}

// Observer is told how many posts changed status during a tick.
type Observer func(changed int)

type LifecycleSimulator struct {
	pr       repository.PostRepository
	outcome  repository.OutcomeFunc
	clock    func() time.Time
	interval time.Duration
	m        *metrics.Metrics

	mu        sync.Mutex
	cron      *cron.Cron
	stop      chan struct{}
	observers []Observer
}

func NewLifecycleSimulator(
	pr repository.PostRepository,
	outcome repository.OutcomeFunc,
	clock func() time.Time,
	interval time.Duration,
	m *metrics.Metrics) *LifecycleSimulator {
	if clock == nil {
		clock = time.Now
	}
	return &LifecycleSimulator{
		pr:       pr,
		outcome:  outcome,
		clock:    clock,
		interval: interval,
		m:        m,
	}
}

func (s *LifecycleSimulator) OnChange(fn Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Tick resolves every post that is due at a single captured instant.
func (s *LifecycleSimulator) Tick() int {
	ctx := context.Background()
	now := s.clock()

	changed := s.pr.ApplyTransitions(ctx, now, s.outcome)
	if changed == 0 {
		return 0
	}

	slog.Info("posts resolved", "count", changed, "at", now)
	s.m.RecordPostsResolved(ctx, "simulator", changed)

	s.mu.Lock()
	observers := append([]Observer(nil), s.observers...)
	s.mu.Unlock()
	for _, fn := range observers {
		fn(changed)
	}
	return changed
}

// Start schedules Tick every interval until Stop is called or ctx is done.
// Starting a running simulator is a no-op.
func (s *LifecycleSimulator) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return nil
	}

	c := cron.New()
	if err := c.AddFunc(fmt.Sprintf("@every %s", s.interval), func() { s.Tick() }); err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("schedule lifecycle simulator: %w", err)
	}
	c.Start()

	stop := make(chan struct{})
	s.cron = c
	s.stop = stop

	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-stop:
		}
	}()

	slog.Info("lifecycle simulator started", "interval", s.interval)
	return nil
}

// Stop is safe to call more than once.
func (s *LifecycleSimulator) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return
	}
	s.cron.Stop()
	close(s.stop)
	s.cron = nil
	s.stop = nil
	slog.Info("lifecycle simulator stopped")
}

func (s *LifecycleSimulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cron != nil
}
