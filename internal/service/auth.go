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
	"github.com/pribylovaa/authgate/internal/pkg/redact"
	"github.com/pribylovaa/authgate/internal/storage"
)

// Register регистрирует нового пользователя и сразу выпускает для него токен.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResult, error) {
	const op = "service.auth.Register"

	lg := log.From(ctx)

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, apierrors.Validation(err.Error()))
	}

	_, err := s.storage.UserByEmail(ctx, req.Email)
	if err == nil {
		lg.Info("register_email_taken", slog.String("email", redact.Email(req.Email)))
		return nil, fmt.Errorf("%s: %w", op, apierrors.BadRequest(msgUserExists))
	}
	if !errors.Is(err, storage.ErrNotFound) {
		lg.Error("register_lookup_failed", slog.String("op", op), slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, apierrors.Database(err))
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		lg.Error("password_hash_failed", slog.String("op", op), slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, asInternal(err, "failed to hash password"))
	}

	now := s.now().UTC()
	saved, err := s.storage.SaveUser(ctx, &models.User{
		ID:           uuid.New(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: digest,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// Гонка двух регистраций одного email: проигравший получает тот же ответ.
		if errors.Is(err, storage.ErrAlreadyExists) {
			lg.Info("register_email_taken", slog.String("email", redact.Email(req.Email)))
			return nil, fmt.Errorf("%s: %w", op, apierrors.BadRequest(msgUserExists))
		}

		lg.Error("register_save_failed", slog.String("op", op), slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, apierrors.Database(err))
	}

	res, err := s.issue(ctx, saved)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("user_registered", slog.String("user_id", saved.ID.String()))
	return res, nil
}

// Login выполняет вход по email и паролю.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResult, error) {
	const op = "service.auth.Login"

	lg := log.From(ctx)

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, apierrors.Validation(err.Error()))
	}

	user, err := s.storage.UserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Сравниваем с фиктивным хэшем, чтобы время ответа не выдавало наличие аккаунта.
			if d := s.dummyDigest(); d != "" {
				_, _ = s.hasher.Verify(req.Password, d)
			}
			lg.Warn("login_failed",
				slog.String("reason", "user_not_found"),
				slog.String("email", redact.Email(req.Email)),
			)
			return nil, fmt.Errorf("%s: %w", op, apierrors.Unauthorized(msgInvalidCredentials))
		}

		lg.Error("login_lookup_failed", slog.String("op", op), slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, apierrors.Database(err))
	}

	ok, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		lg.Error("password_verify_failed",
			slog.String("op", op),
			slog.String("user_id", user.ID.String()),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, asInternal(err, "failed to verify password"))
	}
	if !ok {
		lg.Warn("login_failed",
			slog.String("reason", "password_mismatch"),
			slog.String("email", redact.Email(req.Email)),
			slog.String("user_id", user.ID.String()),
		)
		return nil, fmt.Errorf("%s: %w", op, apierrors.Unauthorized(msgInvalidCredentials))
	}

	res, err := s.issue(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("user_logged_in", slog.String("user_id", user.ID.String()))
	return res, nil
}

func (s *Service) issue(ctx context.Context, user *models.User) (*models.AuthResult, error) {
	tok, claims, err := s.issuer.Issue(user.ID.String())
	if err != nil {
		log.From(ctx).Error("token_issue_failed",
			slog.String("user_id", user.ID.String()),
			slog.String("err", err.Error()),
		)
		return nil, asInternal(err, "failed to issue token")
	}

	return &models.AuthResult{
		Token:     tok,
		ExpiresAt: claims.ExpiresAt,
		User:      user.Public(),
	}, nil
}

// asInternal оставляет *errors.Error как есть, всё остальное приводит к KindInternal.
func asInternal(err error, msg string) error {
	var appErr *apierrors.Error
	if errors.As(err, &appErr) {
		return err
	}

	return apierrors.Internal(msg, err)
}
