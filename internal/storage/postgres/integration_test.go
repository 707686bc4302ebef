package postgres

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pribylovaa/authgate/internal/models"
	"github.com/pribylovaa/authgate/internal/storage"
)

// Интеграционные тесты на реальном PostgreSQL (testcontainers-go).
// Запуск:
//   GO_TEST_INTEGRATION=1 go test ./internal/storage/postgres -v -count=1

func startPostgres(t *testing.T) *Storage {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_USER": "user", "POSTGRES_PASSWORD": "pass", "POSTGRES_DB": "db"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	dsn := fmt.Sprintf("postgres://user:pass@%s:%s/db?sslmode=disable", host, port.Port())

	st, err := New(ctx, dsn, Options{MaxConns: 4, ConnectAttempts: 10, ConnectBackoff: 250 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(st.Close)

	require.NoError(t, Migrate(dsn))
	// Повторное применение - no-op.
	require.NoError(t, Migrate(dsn))

	return st
}

func TestIntegration_SaveUser_And_Lookup(t *testing.T) {
	st := startPostgres(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	u := &models.User{
		ID:           uuid.New(),
		Email:        "User@Example.Com",
		Name:         "Alice",
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	saved, err := st.SaveUser(ctx, u)
	require.NoError(t, err)
	require.Equal(t, u.ID, saved.ID)
	require.True(t, saved.CreatedAt.Equal(now))

	byEmail, err := st.UserByEmail(ctx, strings.ToLower(u.Email))
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)

	byID, err := st.UserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "Alice", byID.Name)

	require.NoError(t, st.Ping(ctx))
}

func TestIntegration_SaveUser_DuplicateEmail(t *testing.T) {
	st := startPostgres(t)
	ctx := context.Background()

	now := time.Now().UTC()
	first := &models.User{ID: uuid.New(), Email: "dup@example.com", Name: "A", PasswordHash: "h", CreatedAt: now, UpdatedAt: now}
	_, err := st.SaveUser(ctx, first)
	require.NoError(t, err)

	second := *first
	second.ID = uuid.New()
	second.Email = "DUP@example.com"
	_, err = st.SaveUser(ctx, &second)
	require.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func TestIntegration_NotFound(t *testing.T) {
	st := startPostgres(t)
	ctx := context.Background()

	_, err := st.UserByEmail(ctx, "missing@example.com")
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = st.UserByID(ctx, uuid.New())
	require.ErrorIs(t, err, storage.ErrNotFound)
}
