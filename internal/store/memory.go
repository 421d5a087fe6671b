package store

import (
	"context"
	"sync"

	"github.com/anupamy140/final-ecommerce/internal/domain/model"
)

// MemoryStore はテストと使い捨てセッション用のインメモリ実装。
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

func (s *MemoryStore) Credential(_ context.Context, keys Keys) (model.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return model.Credential{
		AccessToken:  s.values[keys.AccessToken],
		RefreshToken: s.values[keys.RefreshToken],
		Identity:     s.values[keys.Identity],
	}, nil
}

func (s *MemoryStore) SetCredential(_ context.Context, keys Keys, cred model.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[keys.AccessToken] = cred.AccessToken
	s.values[keys.RefreshToken] = cred.RefreshToken
	s.values[keys.Identity] = cred.Identity
	return nil
}

func (s *MemoryStore) ClearCredential(_ context.Context, keys Keys) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, keys.AccessToken)
	delete(s.values, keys.RefreshToken)
	delete(s.values, keys.Identity)
	return nil
}

func (s *MemoryStore) Value(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key], nil
}

func (s *MemoryStore) SetValue(_ context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) DeleteValue(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
