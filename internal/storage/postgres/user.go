package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pribylovaa/authgate/internal/models"
	"github.com/pribylovaa/authgate/internal/storage"
)

const userColumns = `id, email, name, password_hash, created_at, updated_at`

// SaveUser создаёт пользователя и возвращает запись в том виде, в каком её сохранила БД.
func (s *Storage) SaveUser(ctx context.Context, user *models.User) (*models.User, error) {
	const op = "storage.postgres.SaveUser"

	query := `
		INSERT INTO users(id, email, name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns

	saved, err := scanUser(s.db.QueryRow(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return saved, nil
}

// UserByEmail находит пользователя по email (сравнение регистронезависимое, CITEXT).
func (s *Storage) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.postgres.UserByEmail"

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(s.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// UserByID находит пользователя по ID.
func (s *Storage) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "storage.postgres.UserByID"

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &user, nil
}
