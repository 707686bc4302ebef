package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/pribylovaa/authgate/internal/models"
)

var (
	// ErrNotFound - запись не найдена.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists - нарушение уникальности (email или id).
	ErrAlreadyExists = errors.New("already exists")
)

//go:generate mockgen -destination=mocks/mock_storage.go -package=mocks github.com/pribylovaa/authgate/internal/storage Storage

// UserStorage выполняет операции над пользователями.
type UserStorage interface {
	// SaveUser создаёт пользователя и возвращает сохранённую запись.
	SaveUser(ctx context.Context, user *models.User) (*models.User, error)
	// UserByEmail находит пользователя по email (email уже нормализован).
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	// UserByID находит пользователя по ID.
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Storage задаёт контракт хранилища пользователей.
type Storage interface {
	UserStorage
	// Ping проверяет доступность хранилища (readiness).
	Ping(ctx context.Context) error
	Close()
}
