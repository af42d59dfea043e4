package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/maheshrc27/astraboltz/internal/models"
	"github.com/maheshrc27/astraboltz/pkg/apperrors"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// OutcomeFunc decides the terminal status of a post that has become due.
type OutcomeFunc func(post models.Post) models.PostStatus

type PostRepository interface {
	Create(ctx context.Context, draft *models.PostDraft) (*models.Post, error)
	GetByID(ctx context.Context, id string) (*models.Post, bool)
	List(ctx context.Context) []models.Post
	Delete(ctx context.Context, id string) error
	ApplyTransitions(ctx context.Context, now time.Time, outcome OutcomeFunc) int
	Resolve(ctx context.Context, id string, now time.Time, outcome OutcomeFunc) (bool, error)
}

type postRepository struct {
	mu    sync.Mutex
	posts []*models.Post // latest ScheduledAt first
	clock func() time.Time
}

var postSeq atomic.Uint64

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("platform", func(fl validator.FieldLevel) bool {
		return models.Platform(fl.Field().String()).IsValid()
	})
	return v
}

func NewPostRepository(clock func() time.Time) PostRepository {
	if clock == nil {
		clock = time.Now
	}
	return &postRepository{clock: clock}
}

func (r *postRepository) Create(ctx context.Context, draft *models.PostDraft) (*models.Post, error) {
	if err := validateDraft(draft); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	now := r.clock()
	id, err := newPostID(now)
	if err != nil {
		return nil, fmt.Errorf("generate post id: %w", err)
	}

	post := &models.Post{
		ID:          id,
		MediaFiles:  append([]models.MediaFile(nil), draft.MediaFiles...),
		Caption:     draft.Caption,
		Platforms:   dedupePlatforms(draft.Platforms),
		ScheduledAt: draft.ScheduledAt,
		Status:      models.PostStatusScheduled,
		Niche:       strings.TrimSpace(draft.Niche),
		CreatedAt:   now,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// first index whose post is not scheduled later than the new one
	i := sort.Search(len(r.posts), func(i int) bool {
		return !r.posts[i].ScheduledAt.After(post.ScheduledAt)
	})
	r.posts = slices.Insert(r.posts, i, post)

	out := post.Clone()
	return &out, nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.posts {
		if p.ID == id {
			out := p.Clone()
			return &out, true
		}
	}
	return nil, false
}

func (r *postRepository) List(ctx context.Context) []models.Post {
	r.mu.Lock()
	defer r.mu.Unlock()

	posts := make([]models.Post, 0, len(r.posts))
	for _, p := range r.posts {
		posts = append(posts, p.Clone())
	}
	return posts
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.posts = slices.DeleteFunc(r.posts, func(p *models.Post) bool {
		return p.ID == id
	})
	return nil
}

func (r *postRepository) ApplyTransitions(ctx context.Context, now time.Time, outcome OutcomeFunc) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed := 0
	for _, p := range r.posts {
		if resolve(p, now, outcome) {
			changed++
		}
	}
	return changed
}

func (r *postRepository) Resolve(ctx context.Context, id string, now time.Time, outcome OutcomeFunc) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.posts {
		if p.ID == id {
			return resolve(p, now, outcome), nil
		}
	}
	return false, apperrors.NotFound("post doesn't exist")
}

func resolve(p *models.Post, now time.Time, outcome OutcomeFunc) bool {
	if !p.IsDue(now) {
		return false
	}
	status := outcome(p.Clone())
	if !status.IsTerminal() {
		slog.Warn("outcome resolver returned a non-terminal status", "post_id", p.ID, "status", status)
		return false
	}
	resolvedAt := now
	p.Status = status
	p.ResolvedAt = &resolvedAt
	return true
}

func validateDraft(draft *models.PostDraft) error {
	if draft == nil {
		return apperrors.Validation("post draft is empty")
	}

	err := validate.Struct(draft)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.Validation(err.Error())
	}

	switch field := verrs[0].StructField(); {
	case field == "MediaFiles" || strings.HasPrefix(field, "MediaFiles["):
		return apperrors.Validation("Please upload at least one media file.")
	case field == "Platforms":
		return apperrors.Validation("Please select at least one platform.")
	case strings.HasPrefix(field, "Platforms["):
		return apperrors.Validation(fmt.Sprintf("Unsupported platform %q.", verrs[0].Value()))
	case field == "ScheduledAt":
		return apperrors.Validation("Please set a schedule time.")
	default:
		return apperrors.Validation(verrs[0].Error())
	}
}

func dedupePlatforms(platforms []models.Platform) []models.Platform {
	seen := make(map[models.Platform]struct{}, len(platforms))
	out := make([]models.Platform, 0, len(platforms))
	for _, p := range platforms {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// newPostID combines wall-clock millis with a process-wide sequence so ids
// created in the same millisecond still differ, plus a random suffix.
func newPostID(now time.Time) (string, error) {
	suffix, err := gonanoid.New(8)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d-%d-%s", now.UnixMilli(), postSeq.Add(1), suffix), nil
}
