package service

import (
	"context"
	"errors"
	"testing"

	"github.com/maheshrc27/astraboltz/internal/models"
	"github.com/maheshrc27/astraboltz/internal/repository"
	"github.com/maheshrc27/astraboltz/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenSlot struct {
	readErr  error
	writeErr error
	data     []byte
}

func (s *brokenSlot) Read(ctx context.Context) ([]byte, error) {
	return s.data, s.readErr
}

func (s *brokenSlot) Write(ctx context.Context, data []byte) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.data = data
	return nil
}

func TestApiKeyServiceLoadEmptySlot(t *testing.T) {
	svc := NewApiKeyService(repository.NewApiKeyRepository(repository.NewFileSlot(t.TempDir(), "keys"), ""))
	keys := svc.Load(context.Background())
	assert.NotNil(t, keys)
	assert.Empty(t, keys)
}

func TestApiKeyServiceLoadUnreadableSlot(t *testing.T) {
	slot := &brokenSlot{readErr: errors.New("permission denied")}
	svc := NewApiKeyService(repository.NewApiKeyRepository(slot, ""))
	assert.Empty(t, svc.Load(context.Background()))

	slot = &brokenSlot{data: []byte("garbage")}
	svc = NewApiKeyService(repository.NewApiKeyRepository(slot, ""))
	assert.Empty(t, svc.Load(context.Background()))
}

func TestApiKeyServiceSaveThenLoad(t *testing.T) {
	ctx := context.Background()
	svc := NewApiKeyService(repository.NewApiKeyRepository(repository.NewFileSlot(t.TempDir(), "keys"), "s3cret"))

	require.NoError(t, svc.Save(ctx, models.ApiKeys{models.PlatformFacebook: "fb"}))
	assert.Equal(t, models.ApiKeys{models.PlatformFacebook: "fb"}, svc.Load(ctx))
}

func TestApiKeyServiceSaveFailureIsPersistenceError(t *testing.T) {
	slot := &brokenSlot{writeErr: errors.New("disk full")}
	svc := NewApiKeyService(repository.NewApiKeyRepository(slot, ""))

	err := svc.Save(context.Background(), models.ApiKeys{models.PlatformFacebook: "fb"})
	require.Error(t, err)
	assert.True(t, apperrors.IsPersistence(err))
}
