package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/maheshrc27/astraboltz/internal/models"
	"github.com/maheshrc27/astraboltz/pkg/utils"
	"github.com/redis/go-redis/v9"
)

// ErrSlotEmpty is returned by a CredentialSlot that has never been written.
var ErrSlotEmpty = errors.New("credential slot is empty")

// CredentialSlot is a single named blob that is always read and written whole.
type CredentialSlot interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}

type fileSlot struct {
	path string
}

func NewFileSlot(dir, name string) CredentialSlot {
	return &fileSlot{path: filepath.Join(dir, name+".json")}
}

func (s *fileSlot) Read(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return data, nil
}

func (s *fileSlot) Write(ctx context.Context, data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		slog.Info(err.Error())
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		slog.Info(err.Error())
		return err
	}
	if err := tmp.Close(); err != nil {
		slog.Info(err.Error())
		return err
	}

	// rename keeps readers from ever seeing a half-written slot
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

type redisSlot struct {
	rdb redis.Cmdable
	key string
}

func NewRedisSlot(rdb redis.Cmdable, name string) CredentialSlot {
	return &redisSlot{rdb: rdb, key: "slot:" + name}
}

func (s *redisSlot) Read(ctx context.Context) ([]byte, error) {
	data, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return data, nil
}

func (s *redisSlot) Write(ctx context.Context, data []byte) error {
	if err := s.rdb.Set(ctx, s.key, data, 0).Err(); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

type ApiKeyRepository interface {
	Get(ctx context.Context) (models.ApiKeys, error)
	Put(ctx context.Context, keys models.ApiKeys) error
}

const sealLabel = "api-keys"

type apiKeyRepository struct {
	slot    CredentialSlot
	sealer  *utils.Sealer
	sealErr error
}

// NewApiKeyRepository stores keys as JSON in slot. With a non-empty secret the
// JSON is sealed with AES-GCM before it is written.
func NewApiKeyRepository(slot CredentialSlot, secret string) ApiKeyRepository {
	r := &apiKeyRepository{slot: slot}
	if secret != "" {
		r.sealer, r.sealErr = utils.NewSealer(secret, sealLabel)
	}
	return r
}

func (r *apiKeyRepository) Get(ctx context.Context) (models.ApiKeys, error) {
	if r.sealErr != nil {
		return nil, r.sealErr
	}

	data, err := r.slot.Read(ctx)
	if err != nil {
		return nil, err
	}

	if r.sealer != nil {
		data, err = r.sealer.Open(string(data))
		if err != nil {
			return nil, fmt.Errorf("decrypt credential slot: %w", err)
		}
	}

	raw := map[string]string{}
	if err := json.Unmarshal(data, &raw); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("decode credential slot: %w", err)
	}

	keys := make(models.ApiKeys, len(raw))
	for name, secret := range raw {
		p, ok := models.ParsePlatform(name)
		if !ok {
			continue
		}
		keys[p] = secret
	}
	return keys.Clean(), nil
}

func (r *apiKeyRepository) Put(ctx context.Context, keys models.ApiKeys) error {
	if r.sealErr != nil {
		return r.sealErr
	}

	data, err := json.Marshal(keys.Clean())
	if err != nil {
		return fmt.Errorf("encode credential slot: %w", err)
	}

	if r.sealer != nil {
		sealed, err := r.sealer.Seal(data)
		if err != nil {
			return fmt.Errorf("encrypt credential slot: %w", err)
		}
		data = []byte(sealed)
	}

	return r.slot.Write(ctx, data)
}
