package main

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/authgate/internal/config"
	"github.com/pribylovaa/authgate/internal/storage/memory"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpenStorage_EmptyURL_UsesMemory(t *testing.T) {
	t.Parallel()

	st, err := openStorage(context.Background(), &config.Config{}, discardLogger())
	require.NoError(t, err)
	require.IsType(t, &memory.Storage{}, st)
}

func TestOpenStorage_UnreachableDB_RetriesBeforeMigrations(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{DB: config.DBConfig{
		DatabaseURL:     "postgres://u:p@127.0.0.1:1/db?sslmode=disable",
		ConnectAttempts: 3,
		ConnectBackoff:  20 * time.Millisecond,
	}}

	start := time.Now()
	st, err := openStorage(context.Background(), cfg, discardLogger())
	require.Nil(t, st)
	require.ErrorContains(t, err, "storage.postgres.New")
	require.NotContains(t, err.Error(), "storage.postgres.Migrate")
	require.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}
