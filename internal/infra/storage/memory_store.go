package storage

import (
	"context"
	"sync"

	store "cart/internal/storage"
)

// メモリ上のStore。デフォルトのドライバ兼テスト用。
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
	hub  *hub
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: map[string][]byte{},
		hub:  newHub(),
	}
}

func (s *MemoryStore) Load(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, ok := s.data[key]
	if !ok {
		return nil, store.ErrNotFound
	}

	out := make([]byte, len(payload))
	copy(out, payload)
	return out, nil
}

func (s *MemoryStore) Save(ctx context.Context, key string, payload []byte, writer string) error {
	cp := make([]byte, len(payload))
	copy(cp, payload)

	s.mu.Lock()
	s.data[key] = cp
	s.mu.Unlock()

	s.hub.broadcast(key, writer)
	return nil
}

func (s *MemoryStore) Subscribe(key string, owner string) (<-chan store.Event, func()) {
	return s.hub.subscribe(key, owner)
}
