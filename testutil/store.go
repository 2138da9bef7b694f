package testutil

import (
	"context"
	"strings"
	"sync"
	"time"
)

// FakeStore is an in-memory Store implementation with injectable
// failures. The zero value is connected and empty; set the Err fields
// to script specific failure modes.
type FakeStore struct {
	mu   sync.Mutex
	data map[string][]byte

	// Disconnected makes Connect report false.
	Disconnected bool

	GetErr    error
	SetErr    error
	DeleteErr error
	ScanErr   error
	InfoErr   error
}

// NewFakeStore creates an empty connected FakeStore.
func NewFakeStore() *FakeStore {
	return &FakeStore{data: make(map[string][]byte)}
}

func (s *FakeStore) Connect(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.Disconnected
}

func (s *FakeStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	v, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *FakeStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SetErr != nil {
		return s.SetErr
	}
	if s.data == nil {
		s.data = make(map[string][]byte)
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	s.data[key] = stored
	return nil
}

func (s *FakeStore) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

// ScanKeys matches the glob the way the cache uses it: a leading and
// trailing "*" around a literal infix, or a bare "prefix*".
func (s *FakeStore) ScanKeys(ctx context.Context, match string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ScanErr != nil {
		return nil, s.ScanErr
	}
	var keys []string
	for k := range s.data {
		if globMatch(match, k) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (s *FakeStore) Info(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.InfoErr != nil {
		return nil, s.InfoErr
	}
	return map[string]string{"fake": "true"}, nil
}

func (s *FakeStore) Close() error { return nil }

// Len reports the number of stored keys.
func (s *FakeStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// Put seeds a raw value, bypassing error injection.
func (s *FakeStore) Put(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		s.data = make(map[string][]byte)
	}
	s.data[key] = value
}

// globMatch supports the "*"-separated literal segments the cache
// builds its invalidation patterns from.
func globMatch(pattern, s string) bool {
	parts := strings.Split(pattern, "*")
	if !strings.HasPrefix(s, parts[0]) {
		return false
	}
	s = s[len(parts[0]):]
	for i := 1; i < len(parts)-1; i++ {
		idx := strings.Index(s, parts[i])
		if idx < 0 {
			return false
		}
		s = s[idx+len(parts[i]):]
	}
	return strings.HasSuffix(s, parts[len(parts)-1])
}
