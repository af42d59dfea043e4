package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"strings"
	"time"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"github.com/maheshrc27/astraboltz/internal/metrics"
	"github.com/maheshrc27/astraboltz/internal/models"
	"github.com/maheshrc27/astraboltz/internal/repository"
	"github.com/maheshrc27/astraboltz/internal/transfer"
	"github.com/maheshrc27/astraboltz/pkg/apperrors"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// FormTimeLayout is what a datetime-local input submits.
const FormTimeLayout = "2006-01-02T15:04"

var allowedMediaTypes = map[string]struct{}{
	"jpg": {}, "png": {}, "gif": {}, "webp": {}, "mp4": {}, "mov": {},
}

type PostService interface {
	CreatePost(ctx context.Context, pc *transfer.PostCreation, files []*multipart.FileHeader) (*models.Post, error)
	List(ctx context.Context) []models.Post
	ListView(ctx context.Context) transfer.ListView
	PostInfo(ctx context.Context, postID string) (*models.Post, error)
	Remove(ctx context.Context, postID string) error
}

type postService struct {
	pr      repository.PostRepository
	media   MediaStore
	clock   func() time.Time
	loc     *time.Location
	minLead time.Duration
	m       *metrics.Metrics
}

func NewPostService(
	pr repository.PostRepository,
	media MediaStore,
	clock func() time.Time,
	loc *time.Location,
	minLead time.Duration,
	m *metrics.Metrics) PostService {
	if clock == nil {
		clock = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &postService{
		pr:      pr,
		media:   media,
		clock:   clock,
		loc:     loc,
		minLead: minLead,
		m:       m,
	}
}

func (s *postService) CreatePost(ctx context.Context, pc *transfer.PostCreation, files []*multipart.FileHeader) (*models.Post, error) {
	if pc == nil {
		err := apperrors.Validation("post creation data is empty")
		slog.Info(err.Error())
		return nil, err
	}

	if len(files) == 0 {
		err := apperrors.Validation("Please upload at least one media file.")
		slog.Info(err.Error())
		return nil, err
	}

	platforms, err := parsePlatforms(pc.Platforms)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	scheduledAt, err := s.parseScheduledTime(pc.ScheduledTime)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	mediaFiles, err := s.processFiles(ctx, files)
	if err != nil {
		return nil, err
	}

	post, err := s.pr.Create(ctx, &models.PostDraft{
		MediaFiles:  mediaFiles,
		Caption:     pc.Caption,
		Platforms:   platforms,
		ScheduledAt: scheduledAt,
		Niche:       pc.Niche,
	})
	if err != nil {
		s.discardMedia(ctx, mediaFiles)
		return nil, err
	}

	s.m.RecordPostCreated(ctx, len(post.Platforms))
	slog.Info("post scheduled", "post_id", post.ID, "scheduled_at", post.ScheduledAt, "platforms", len(post.Platforms))

	return post, nil
}

func parsePlatforms(raw string) ([]models.Platform, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, apperrors.Validation("Please select at least one platform.")
	}

	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, apperrors.Validation("Invalid platforms format.")
	}
	if len(names) == 0 {
		return nil, apperrors.Validation("Please select at least one platform.")
	}

	platforms := make([]models.Platform, 0, len(names))
	for _, name := range names {
		p, ok := models.ParsePlatform(name)
		if !ok {
			return nil, apperrors.Validation(fmt.Sprintf("Unsupported platform %q.", name))
		}
		platforms = append(platforms, p)
	}
	return platforms, nil
}

func (s *postService) parseScheduledTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, apperrors.Validation("Please set a schedule time.")
	}

	now := s.clock()
	earliest := now.Add(s.minLead)

	scheduledAt, err := time.ParseInLocation(FormTimeLayout, raw, s.loc)
	if err == nil {
		// form input carries whole minutes only
		earliest = now.In(s.loc).Truncate(time.Minute).Add(s.minLead)
	} else {
		scheduledAt, err = time.Parse(time.RFC3339, raw)
	}
	if err != nil {
		return time.Time{}, apperrors.Validation("Invalid schedule time format.")
	}

	if !scheduledAt.After(now) || scheduledAt.Before(earliest) {
		return time.Time{}, apperrors.Validation("Schedule time must be in the future.")
	}
	return scheduledAt, nil
}

func (s *postService) processFiles(ctx context.Context, files []*multipart.FileHeader) ([]models.MediaFile, error) {
	mediaFiles := make([]models.MediaFile, 0, len(files))

	for _, file := range files {
		fileBytes, err := readFile(file)
		if err != nil {
			s.discardMedia(ctx, mediaFiles)
			return nil, err
		}

		kind, err := filetype.Match(fileBytes)
		if err != nil || kind == types.Unknown {
			s.discardMedia(ctx, mediaFiles)
			return nil, apperrors.Validation(fmt.Sprintf("Unsupported file type for %s.", file.Filename))
		}
		if _, ok := allowedMediaTypes[kind.Extension]; !ok {
			s.discardMedia(ctx, mediaFiles)
			return nil, apperrors.Validation(fmt.Sprintf("File type %s is not allowed.", kind.Extension))
		}

		mediaType := models.MediaTypeImage
		if filetype.IsVideo(fileBytes) {
			mediaType = models.MediaTypeVideo
		}

		id, err := gonanoid.New()
		if err != nil {
			s.discardMedia(ctx, mediaFiles)
			return nil, fmt.Errorf("generate media id: %w", err)
		}

		previewURL, err := s.media.Save(ctx, id, fileBytes, kind.MIME.Value)
		if err != nil {
			s.discardMedia(ctx, mediaFiles)
			return nil, apperrors.ExternalService("Unable to store media file.", err)
		}

		mediaFiles = append(mediaFiles, models.MediaFile{
			ID:         id,
			FileName:   file.Filename,
			MimeType:   kind.MIME.Value,
			Type:       mediaType,
			Size:       int64(len(fileBytes)),
			PreviewURL: previewURL,
		})
	}

	return mediaFiles, nil
}

func readFile(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("error reading file content: %w", err)
	}
	return data, nil
}

func (s *postService) discardMedia(ctx context.Context, files []models.MediaFile) {
	for _, f := range files {
		if err := s.media.Remove(ctx, f.ID); err != nil {
			slog.Warn("failed to remove media", "media_id", f.ID, "error", err)
		}
	}
}

func (s *postService) List(ctx context.Context) []models.Post {
	return s.pr.List(ctx)
}

func (s *postService) ListView(ctx context.Context) transfer.ListView {
	posts := s.pr.List(ctx)
	return transfer.ListView{Posts: posts, Empty: len(posts) == 0}
}

func (s *postService) PostInfo(ctx context.Context, postID string) (*models.Post, error) {
	if postID == "" {
		err := apperrors.Validation("post id is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	post, ok := s.pr.GetByID(ctx, postID)
	if !ok {
		err := apperrors.NotFound("Post doesn't exist")
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

func (s *postService) Remove(ctx context.Context, postID string) error {
	if postID == "" {
		err := apperrors.Validation("post id is not valid")
		slog.Info(err.Error())
		return err
	}

	post, ok := s.pr.GetByID(ctx, postID)
	if !ok {
		return nil
	}

	if err := s.pr.Delete(ctx, postID); err != nil {
		return apperrors.Persistence("Error removing post", err)
	}
	s.discardMedia(ctx, post.MediaFiles)
	return nil
}
