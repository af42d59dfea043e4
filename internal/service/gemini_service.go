package service

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"
)

type geminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (ContentGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &geminiGenerator{client: client, model: model}, nil
}

func (g *geminiGenerator) GenerateText(ctx context.Context, prompt string, image *ImageInput) (string, error) {
	parts := make([]*genai.Part, 0, 2)
	if image != nil {
		parts = append(parts, genai.NewPartFromBytes(image.Data, image.MimeType))
	}
	parts = append(parts, genai.NewPartFromText(prompt))

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (g *geminiGenerator) GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
