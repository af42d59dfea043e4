package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/maheshrc27/astraboltz/internal/models"
	"github.com/maheshrc27/astraboltz/internal/repository"
	"github.com/maheshrc27/astraboltz/pkg/apperrors"
)

type ApiKeyService interface {
	// Load never fails. A missing or unreadable slot yields an empty map.
	Load(ctx context.Context) models.ApiKeys
	Save(ctx context.Context, keys models.ApiKeys) error
}

type apiKeyService struct {
	k repository.ApiKeyRepository
}

func NewApiKeyService(k repository.ApiKeyRepository) ApiKeyService {
	return &apiKeyService{k: k}
}

func (s *apiKeyService) Load(ctx context.Context) models.ApiKeys {
	keys, err := s.k.Get(ctx)
	if errors.Is(err, repository.ErrSlotEmpty) {
		return models.ApiKeys{}
	}
	if err != nil {
		slog.Warn("credential slot unreadable, starting with no keys", "error", err)
		return models.ApiKeys{}
	}
	return keys
}

func (s *apiKeyService) Save(ctx context.Context, keys models.ApiKeys) error {
	if err := s.k.Put(ctx, keys); err != nil {
		slog.Info(err.Error())
		return apperrors.Persistence("Unable to save API keys", err)
	}
	return nil
}
