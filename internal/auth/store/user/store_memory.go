package user

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"romportal/internal/auth/models"
	"romportal/pkg/platform/sentinel"
)

// InMemoryUserStore keeps admins in maps keyed by id and normalized email.
type InMemoryUserStore struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]*models.AdminUser
	byEmail map[string]uuid.UUID
}

func New() *InMemoryUserStore {
	return &InMemoryUserStore{
		users:   make(map[uuid.UUID]*models.AdminUser),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (s *InMemoryUserStore) Save(_ context.Context, user *models.AdminUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := models.NormalizeEmail(user.Email)
	if owner, ok := s.byEmail[email]; ok && owner != user.ID {
		return fmt.Errorf("admin email %s: %w", email, sentinel.ErrAlreadyUsed)
	}
	if prev, ok := s.users[user.ID]; ok {
		delete(s.byEmail, models.NormalizeEmail(prev.Email))
	}
	cp := *user
	s.users[user.ID] = &cp
	s.byEmail[email] = user.ID
	return nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, id uuid.UUID) (*models.AdminUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.users[id]; ok {
		cp := *user
		return &cp, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryUserStore) FindByEmail(_ context.Context, email string) (*models.AdminUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[models.NormalizeEmail(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.users[id]
	return &cp, nil
}

func (s *InMemoryUserStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}
