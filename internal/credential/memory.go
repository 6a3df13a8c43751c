package credential

import (
	"context"
	"sync"

	"golang.org/x/oauth2"
)

type memoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryStore() Store {
	return &memoryStore{values: make(map[string]string)}
}

func (s *memoryStore) Load(ctx context.Context) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	access, refresh := s.values[KeyAccess], s.values[KeyRefresh]
	if !complete(access, refresh) {
		return nil, ErrNotFound
	}
	return NewToken(access, refresh), nil
}

func (s *memoryStore) Save(ctx context.Context, token *oauth2.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[KeyAccess] = token.AccessToken
	s.values[KeyRefresh] = token.RefreshToken
	return nil
}

func (s *memoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, KeyAccess)
	delete(s.values, KeyRefresh)
	return nil
}
