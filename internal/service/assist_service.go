package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/h2non/filetype"
	"github.com/maheshrc27/astraboltz/internal/metrics"
	"github.com/maheshrc27/astraboltz/pkg/apperrors"
	"google.golang.org/genai"
)

const (
	captionFailedMsg = "Failed to generate caption. Please try again."
	nichesFailedMsg  = "Failed to suggest niches. Please try again."

	nichePrompt = "Analyze current social media trends and suggest 5 popular and engaging content niches. " +
		"Examples could be 'Vintage Tech', 'Sustainable Fashion', 'AI Art', etc. " +
		"Return the result as a JSON object with a single key 'niches' which is an array of strings."
)

var ErrAssistUnconfigured = errors.New("generative assist is not configured")

type CaptionFormat string

const (
	CaptionFormatAny   CaptionFormat = ""
	CaptionFormatPhoto CaptionFormat = "Photo"
	CaptionFormatReel  CaptionFormat = "Reel"
)

func ParseCaptionFormat(s string) (CaptionFormat, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return CaptionFormatAny, true
	case "photo":
		return CaptionFormatPhoto, true
	case "reel":
		return CaptionFormatReel, true
	}
	return "", false
}

func captionPrompt(format CaptionFormat) string {
	if format == CaptionFormatAny {
		return "Generate a catchy and engaging social media caption for this image. Include 3-5 relevant hashtags."
	}
	return fmt.Sprintf("Based on this image, which is best suited as a social media %s, generate an engaging caption. "+
		"The caption should be descriptive, evoke emotion, and end with 3-5 relevant hashtags.", format)
}

func nicheSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"niches": {
				Type:        genai.TypeArray,
				Description: "An array of 5 suggested content niches.",
				Items: &genai.Schema{
					Type:        genai.TypeString,
					Description: "A suggested niche.",
				},
			},
		},
		Required: []string{"niches"},
	}
}

type ImageInput struct {
	Data     []byte
	MimeType string
}

// ContentGenerator is the generative model behind the assist endpoints.
type ContentGenerator interface {
	GenerateText(ctx context.Context, prompt string, image *ImageInput) (string, error)
	GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error)
}

type AssistService interface {
	GenerateCaption(ctx context.Context, image []byte, format CaptionFormat) (string, error)
	SuggestNiches(ctx context.Context) ([]string, error)
}

type assistService struct {
	gen ContentGenerator
	m   *metrics.Metrics
}

// NewAssistService accepts a nil generator; every call then fails with an
// ExternalService error.
func NewAssistService(gen ContentGenerator, m *metrics.Metrics) AssistService {
	return &assistService{gen: gen, m: m}
}

func (s *assistService) GenerateCaption(ctx context.Context, image []byte, format CaptionFormat) (caption string, err error) {
	if len(image) == 0 || !filetype.IsImage(image) {
		err := apperrors.Validation("Please upload an image to generate a caption.")
		slog.Info(err.Error())
		return "", err
	}

	defer func() { s.m.RecordAssist(ctx, "caption", err) }()

	if s.gen == nil {
		return "", apperrors.ExternalService(captionFailedMsg, ErrAssistUnconfigured)
	}

	kind, _ := filetype.Match(image)
	text, err := s.gen.GenerateText(ctx, captionPrompt(format), &ImageInput{Data: image, MimeType: kind.MIME.Value})
	if err != nil {
		slog.Error("caption generation failed", "error", err)
		return "", apperrors.ExternalService(captionFailedMsg, err)
	}

	caption = strings.TrimSpace(text)
	if caption == "" {
		return "", apperrors.ExternalService(captionFailedMsg, errors.New("empty response from model"))
	}
	return caption, nil
}

func (s *assistService) SuggestNiches(ctx context.Context) (niches []string, err error) {
	defer func() { s.m.RecordAssist(ctx, "niches", err) }()

	if s.gen == nil {
		return nil, apperrors.ExternalService(nichesFailedMsg, ErrAssistUnconfigured)
	}

	text, err := s.gen.GenerateJSON(ctx, nichePrompt, nicheSchema())
	if err != nil {
		slog.Error("niche suggestion failed", "error", err)
		return nil, apperrors.ExternalService(nichesFailedMsg, err)
	}

	niches, err = parseNiches(text)
	if err != nil {
		slog.Error("invalid niche response", "error", err)
		return nil, apperrors.ExternalService(nichesFailedMsg, err)
	}
	return niches, nil
}

func parseNiches(text string) ([]string, error) {
	var result struct {
		Niches *[]string `json:"niches"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &result); err != nil {
		return nil, fmt.Errorf("decode niches: %w", err)
	}
	if result.Niches == nil {
		return nil, errors.New("invalid response format from API")
	}
	return *result.Niches, nil
}
