// memory - хранилище пользователей в памяти процесса. Используется в окружении
// local без db_url и в HTTP-тестах. Данные теряются при остановке.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/pribylovaa/authgate/internal/models"
	"github.com/pribylovaa/authgate/internal/storage"
)

type Storage struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*models.User
	byEmail map[string]uuid.UUID
}

func New() *Storage {
	return &Storage{
		byID:    make(map[uuid.UUID]*models.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

// SaveUser сохраняет копию пользователя; email и id уникальны.
func (s *Storage) SaveUser(ctx context.Context, user *models.User) (*models.User, error) {
	const op = "storage.memory.SaveUser"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[user.Email]; ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
	}
	if _, ok := s.byID[user.ID]; ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
	}

	cp := *user
	s.byID[cp.ID] = &cp
	s.byEmail[cp.Email] = cp.ID

	out := cp
	return &out, nil
}

func (s *Storage) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.memory.UserByEmail"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	out := *s.byID[id]
	return &out, nil
}

func (s *Storage) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "storage.memory.UserByID"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	out := *u
	return &out, nil
}

func (s *Storage) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Storage) Close() {}

var _ storage.Storage = (*Storage)(nil)
