package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/authgate/internal/models"
	"github.com/pribylovaa/authgate/internal/storage"
)

// Unit-тесты SQL-слоя на pgxmock: проверяют запросы, аргументы и маппинг
// ошибок драйвера в storage.ErrNotFound / storage.ErrAlreadyExists.

var columns = []string{"id", "email", "name", "password_hash", "created_at", "updated_at"}

func newMock(t *testing.T) (pgxmock.PgxPoolIface, *Storage) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock, newWithPool(mock)
}

func testUser() *models.User {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return &models.User{
		ID:           uuid.New(),
		Email:        "alice@example.com",
		Name:         "Alice",
		PasswordHash: "$2a$10$hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func userRow(u *models.User) *pgxmock.Rows {
	return pgxmock.NewRows(columns).
		AddRow(u.ID, u.Email, u.Name, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
}

func TestSaveUser(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		setup   func(mock pgxmock.PgxPoolIface, u *models.User)
		wantErr error
	}{
		{
			name: "ok",
			setup: func(mock pgxmock.PgxPoolIface, u *models.User) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs(u.ID, u.Email, u.Name, u.PasswordHash, u.CreatedAt, u.UpdatedAt).
					WillReturnRows(userRow(u))
			},
		},
		{
			name: "unique_violation",
			setup: func(mock pgxmock.PgxPoolIface, u *models.User) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs(u.ID, u.Email, u.Name, u.PasswordHash, u.CreatedAt, u.UpdatedAt).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})
			},
			wantErr: storage.ErrAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mock, st := newMock(t)
			u := testUser()
			tt.setup(mock, u)

			got, err := st.SaveUser(context.Background(), u)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, got)
				return
			}
			require.NoError(t, err)
			require.Equal(t, u, got)
		})
	}
}

func TestSaveUser_DriverError_IsWrapped(t *testing.T) {
	t.Parallel()

	mock, st := newMock(t)
	u := testUser()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(u.ID, u.Email, u.Name, u.PasswordHash, u.CreatedAt, u.UpdatedAt).
		WillReturnError(errors.New("connection reset"))

	_, err := st.SaveUser(context.Background(), u)
	require.Error(t, err)
	require.NotErrorIs(t, err, storage.ErrAlreadyExists)
	require.Contains(t, err.Error(), "storage.postgres.SaveUser")
}

func TestUserByEmail(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		mock, st := newMock(t)
		u := testUser()
		mock.ExpectQuery(`SELECT (.+) FROM users WHERE email = \$1`).
			WithArgs(u.Email).
			WillReturnRows(userRow(u))

		got, err := st.UserByEmail(context.Background(), u.Email)
		require.NoError(t, err)
		require.Equal(t, u, got)
	})

	t.Run("not_found", func(t *testing.T) {
		t.Parallel()

		mock, st := newMock(t)
		mock.ExpectQuery(`SELECT (.+) FROM users WHERE email = \$1`).
			WithArgs("nobody@example.com").
			WillReturnError(pgx.ErrNoRows)

		_, err := st.UserByEmail(context.Background(), "nobody@example.com")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestUserByID(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		mock, st := newMock(t)
		u := testUser()
		mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
			WithArgs(u.ID).
			WillReturnRows(userRow(u))

		got, err := st.UserByID(context.Background(), u.ID)
		require.NoError(t, err)
		require.Equal(t, u, got)
	})

	t.Run("not_found", func(t *testing.T) {
		t.Parallel()

		mock, st := newMock(t)
		id := uuid.New()
		mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
			WithArgs(id).
			WillReturnError(pgx.ErrNoRows)

		_, err := st.UserByID(context.Background(), id)
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("driver_error", func(t *testing.T) {
		t.Parallel()

		mock, st := newMock(t)
		id := uuid.New()
		mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
			WithArgs(id).
			WillReturnError(errors.New("timeout"))

		_, err := st.UserByID(context.Background(), id)
		require.Error(t, err)
		require.NotErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestPing(t *testing.T) {
	t.Parallel()

	mock, st := newMock(t)
	mock.ExpectPing()
	mock.ExpectPing().WillReturnError(errors.New("down"))

	require.NoError(t, st.Ping(context.Background()))
	require.ErrorContains(t, st.Ping(context.Background()), "down")
}

func TestNew_InvalidURL_FailsWithoutRetry(t *testing.T) {
	t.Parallel()

	start := time.Now()
	_, err := New(context.Background(), "://not a url", Options{ConnectAttempts: 5, ConnectBackoff: time.Second})
	require.Error(t, err)
	require.Less(t, time.Since(start), time.Second)
}

func TestNew_Unreachable_RetriesWithBackoff(t *testing.T) {
	t.Parallel()

	// 3 попытки: паузы 20ms и 40ms между ними.
	start := time.Now()
	_, err := New(context.Background(), "postgres://u:p@127.0.0.1:1/db?sslmode=disable",
		Options{ConnectAttempts: 3, ConnectBackoff: 20 * time.Millisecond})
	require.ErrorContains(t, err, "storage.postgres.New")
	require.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}

func TestNew_Unreachable_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := New(ctx, "postgres://u:p@127.0.0.1:1/db?sslmode=disable",
		Options{ConnectAttempts: 10, ConnectBackoff: time.Second})
	require.Error(t, err)
	require.Less(t, time.Since(start), time.Second)
}

func TestMigrateURL(t *testing.T) {
	t.Parallel()

	require.Equal(t, "pgx5://u:p@h:5432/db", migrateURL("postgres://u:p@h:5432/db"))
	require.Equal(t, "pgx5://u:p@h/db", migrateURL("postgresql://u:p@h/db"))
	require.Equal(t, "pgx5://h/db", migrateURL("pgx5://h/db"))
}

func TestMigrationsEmbedded(t *testing.T) {
	t.Parallel()

	up, err := migrationsFS.ReadFile("migrations/1_init_users.up.sql")
	require.NoError(t, err)
	require.Contains(t, string(up), "CREATE TABLE IF NOT EXISTS users")

	_, err = migrationsFS.ReadFile("migrations/1_init_users.down.sql")
	require.NoError(t, err)
}
