package store

import (
	"context"
	"sync"
)

// コンパイル時にインターフェース実装を検証する。
var _ Store = (*MemoryStore)(nil)

// MemoryStore はプロセス内メモリに値を保持するStore実装。
// テストや --ephemeral 実行で使用する。
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore は空のMemoryStoreを生成する。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return clone(v), true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = clone(value)
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}

func (s *MemoryStore) SeedIfEmpty(_ context.Context, defaults map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[KeyAuthToken]; ok {
		return nil
	}
	for k, v := range defaults {
		if _, ok := s.data[k]; ok {
			continue
		}
		s.data[k] = clone(v)
	}
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
