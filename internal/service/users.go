package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	apierrors "github.com/pribylovaa/authgate/internal/errors"
	"github.com/pribylovaa/authgate/internal/models"
	"github.com/pribylovaa/authgate/internal/pkg/log"
	"github.com/pribylovaa/authgate/internal/storage"
)

// Profile возвращает публичный профиль пользователя. Сначала смотрит в кэш
// (если он есть); ошибки кэша не фатальны и лишь логируются.
func (s *Service) Profile(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "service.users.Profile"

	lg := log.From(ctx)

	if s.pcache != nil {
		u, ok, err := s.pcache.Get(ctx, id)
		switch {
		case err != nil:
			lg.Warn("profile_cache_get_failed", slog.String("op", op), slog.String("err", err.Error()))
		case ok:
			pub := u.Public()
			return &pub, nil
		}
	}

	user, err := s.storage.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("profile_user_missing", slog.String("user_id", id.String()))
			return nil, fmt.Errorf("%s: %w", op, apierrors.NotFound(msgUserNotFound))
		}

		lg.Error("profile_lookup_failed", slog.String("op", op), slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, apierrors.Database(err))
	}

	pub := user.Public()

	if s.pcache != nil {
		if err := s.pcache.Set(ctx, &pub); err != nil {
			lg.Warn("profile_cache_set_failed", slog.String("op", op), slog.String("err", err.Error()))
		}
	}

	return &pub, nil
}

// Ready проверяет доступность хранилища.
func (s *Service) Ready(ctx context.Context) error {
	const op = "service.users.Ready"

	if err := s.storage.Ping(ctx); err != nil {
		log.From(ctx).Error("storage_ping_failed", slog.String("op", op), slog.String("err", err.Error()))
		return fmt.Errorf("%s: %w", op, apierrors.Database(err))
	}

	return nil
}
