// auth извлекает аутентифицированную личность из заголовка Authorization.
//
// Extract - чистая функция без I/O и изменяемого состояния: безопасна для
// одновременного вызова из любого числа запросов. Исходы проверяются по порядку:
//  1. заголовка нет или он не вида "Bearer <token>" - Unauthorized;
//  2. токен не прошёл проверку подписи/срока - Unauthorized (причина не раскрывается);
//  3. subject не является корректным идентификатором - Unauthorized("invalid identity in token");
//
// иначе возвращается models.Identity.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	apierrors "github.com/pribylovaa/authgate/internal/errors"
	"github.com/pribylovaa/authgate/internal/models"
	"github.com/pribylovaa/authgate/internal/token"
)

const bearerScheme = "bearer"

var (
	ErrMissingHeader  = errors.New("authorization header missing")
	ErrInvalidScheme  = errors.New("authorization scheme invalid")
	ErrInvalidSubject = errors.New("token subject is not a valid identity")
)

// Verifier проверяет токен и возвращает его утверждения.
// Реализуется *token.Codec.
type Verifier interface {
	Verify(raw string) (models.Claims, error)
}

// Extract разбирает значение заголовка Authorization и проверяет токен.
// Все ошибки - *errors.Error с KindUnauthorized.
func Extract(header string, v Verifier) (models.Identity, error) {
	const op = "auth.Extract"

	if strings.TrimSpace(header) == "" {
		return models.Identity{}, apierrors.Unauthorized("missing authorization header").
			Wrap(fmt.Errorf("%s: %w", op, ErrMissingHeader))
	}

	raw, ok := bearerToken(header)
	if !ok {
		return models.Identity{}, apierrors.Unauthorized("invalid authorization header").
			Wrap(fmt.Errorf("%s: %w", op, ErrInvalidScheme))
	}

	claims, err := v.Verify(raw)
	if err != nil {
		if apierrors.KindOf(err) == apierrors.KindUnauthorized {
			return models.Identity{}, err
		}
		// Верификатор обязан отказывать только как Unauthorized; иное приводим.
		return models.Identity{}, apierrors.Unauthorized("invalid token").
			Wrap(fmt.Errorf("%s: %w", op, err))
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil || uid == uuid.Nil {
		return models.Identity{}, apierrors.Unauthorized("invalid identity in token").
			Wrap(fmt.Errorf("%s: %w", op, ErrInvalidSubject))
	}

	return models.Identity{UserID: uid}, nil
}

// bearerToken возвращает токен из "Bearer <token>". Схема сравнивается
// без учёта регистра, токен должен быть непустым и без пробелов.
func bearerToken(header string) (string, bool) {
	scheme, rest, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}

	raw := strings.TrimSpace(rest)
	if raw == "" || strings.ContainsAny(raw, " \t") {
		return "", false
	}

	return raw, true
}

// Причины отказа для логов и метрик. Наружу не отдаются.
const (
	ReasonHeaderMissing  = "header_missing"
	ReasonSchemeInvalid  = "scheme_invalid"
	ReasonTokenMalformed = "token_malformed"
	ReasonTokenSignature = "token_signature"
	ReasonTokenExpired   = "token_expired"
	ReasonTokenClaims    = "token_claims"
	ReasonSubjectInvalid = "subject_invalid"
	ReasonUnknown        = "unknown"
)

// Reason классифицирует ошибку Extract во внутреннюю причину отказа.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrMissingHeader):
		return ReasonHeaderMissing
	case errors.Is(err, ErrInvalidScheme):
		return ReasonSchemeInvalid
	case errors.Is(err, token.ErrMalformed):
		return ReasonTokenMalformed
	case errors.Is(err, token.ErrSignature):
		return ReasonTokenSignature
	case errors.Is(err, token.ErrExpired):
		return ReasonTokenExpired
	case errors.Is(err, token.ErrClaims):
		return ReasonTokenClaims
	case errors.Is(err, ErrInvalidSubject):
		return ReasonSubjectInvalid
	default:
		return ReasonUnknown
	}
}

type ctxKey struct{}

// WithIdentity кладёт личность в контекст.
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFrom достаёт личность, положенную RequireAuth.
func IdentityFrom(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(models.Identity)
	return id, ok
}
