package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"

	"github.com/pribylovaa/authgate/internal/storage"
)

// pool - подмножество *pgxpool.Pool, которым пользуется хранилище.
// Реализуется также pgxmock.PgxPoolIface.
type pool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

type Storage struct {
	db pool
}

// Options - параметры подключения.
type Options struct {
	MaxConns int32
	// ConnectAttempts - число попыток первичного подключения (минимум 1).
	ConnectAttempts uint64
	// ConnectBackoff - начальная пауза между попытками (растёт экспоненциально).
	ConnectBackoff time.Duration
}

// New создаёт пул подключений к PostgreSQL. Первичное подключение повторяется
// с экспоненциальной паузой: БД в контейнере может подняться позже сервиса.
func New(ctx context.Context, dbURL string, opts Options) (*Storage, error) {
	const op = "storage.postgres.New"

	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}

	attempts := opts.ConnectAttempts
	if attempts == 0 {
		attempts = 1
	}
	backoff := opts.ConnectBackoff
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}

	var db *pgxpool.Pool
	b := retry.WithMaxRetries(attempts-1, retry.NewExponential(backoff))
	err = retry.Do(ctx, b, func(ctx context.Context) error {
		p, err := pgxpool.NewWithConfig(ctx, config)
		if err != nil {
			return retry.RetryableError(err)
		}

		if err := p.Ping(ctx); err != nil {
			p.Close()
			slog.Warn("postgres_ping_failed", slog.String("op", op), slog.String("err", err.Error()))
			return retry.RetryableError(err)
		}

		db = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func newWithPool(p pool) *Storage { return &Storage{db: p} }

// Ping проверяет доступность БД.
func (s *Storage) Ping(ctx context.Context) error {
	const op = "storage.postgres.Ping"

	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Close закрывает пул соединений.
func (s *Storage) Close() {
	s.db.Close()
}

// Проверка на соответствие интерфейсу Storage.
var _ storage.Storage = (*Storage)(nil)
