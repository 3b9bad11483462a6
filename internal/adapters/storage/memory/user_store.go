package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/taborra-agent/internal/domain"
)

type UserStore struct {
	mu      sync.RWMutex
	byPhone map[string]*domain.User
}

func NewUserStore() *UserStore {
	return &UserStore{
		byPhone: make(map[string]*domain.User),
	}
}

func (s *UserStore) RegisterUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byPhone[user.Phone]; exists {
		return fmt.Errorf("user %s already registered", user.Phone)
	}
	if user.ID == "" {
		user.ID = domain.UserID(uuid.NewString())
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.AccessLevel == 0 {
		user.AccessLevel = domain.LevelGeneral
	}

	u := *user
	s.byPhone[user.Phone] = &u
	return nil
}

func (s *UserStore) GetUserByPhone(_ context.Context, phone string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byPhone[phone]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (s *UserStore) UpdateAccessLevel(_ context.Context, phone string, level domain.AccessLevel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byPhone[phone]
	if !ok {
		return domain.ErrNotFound
	}
	u.AccessLevel = level
	return nil
}
