package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/devquery-api/internal/domain"
)

// UserStore is a map-backed user store for tests and local runs. It
// mirrors the dynamo repo's visibility rule: disabled users read as
// not found.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewUserStore(users ...domain.User) *UserStore {
	s := &UserStore{users: make(map[string]domain.User, len(users))}
	for _, u := range users {
		s.users[u.UserID] = u
	}
	return s
}

func (s *UserStore) Put(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.UserID] = *u
	return nil
}

func (s *UserStore) Get(_ context.Context, userID string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok || u.Enable == 0 {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	out := u
	return &out, nil
}

func (s *UserStore) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username && u.Enable == 1 {
			out := u
			return &out, nil
		}
	}
	return nil, fmt.Errorf("username %s: %w", username, domain.ErrNotFound)
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email && u.Enable == 1 {
			out := u
			return &out, nil
		}
	}
	return nil, fmt.Errorf("email %s: %w", email, domain.ErrNotFound)
}

func (s *UserStore) SoftDelete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	u.Enable = 0
	s.users[userID] = u
	return nil
}
