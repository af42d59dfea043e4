package service

import (
	"context"
	"sync"
)

// MediaStore keeps uploaded media and hands back the URL a client can preview it at.
type MediaStore interface {
	Save(ctx context.Context, id string, data []byte, mimeType string) (string, error)
	Remove(ctx context.Context, id string) error
	// Open returns bytes the API serves itself; stores with public URLs return false.
	Open(ctx context.Context, id string) ([]byte, string, bool)
}

type storedMedia struct {
	data     []byte
	mimeType string
}

type memoryMediaStore struct {
	mu    sync.RWMutex
	items map[string]storedMedia
}

func NewMemoryMediaStore() MediaStore {
	return &memoryMediaStore{items: make(map[string]storedMedia)}
}

func (s *memoryMediaStore) Save(ctx context.Context, id string, data []byte, mimeType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] = storedMedia{data: data, mimeType: mimeType}
	return "/media/" + id, nil
}

func (s *memoryMediaStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

func (s *memoryMediaStore) Open(ctx context.Context, id string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.items[id]
	if !ok {
		return nil, "", false
	}
	return m.data, m.mimeType, true
}
