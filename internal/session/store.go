package session

import (
	"context"
	"errors"
	"sync"
)

// Keys under which the session is persisted
const (
	AccessTokenKey  = "jwt_access_token"
	RefreshTokenKey = "jwt_refresh_token"
)

// ErrNotFound is returned by a SecureStore when a key holds no value
var ErrNotFound = errors.New("secure store: key not found")

// SecureStore is the persistent key-value store holding the session.
// Delete of a missing key is not an error.
type SecureStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// MemoryStore is a process-local SecureStore
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get implements SecureStore
func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set implements SecureStore
func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Delete implements SecureStore
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
