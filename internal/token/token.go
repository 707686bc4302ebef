// token выпускает и проверяет подписанные bearer-токены (JWT, HS256).
//
// Токен несёт ровно три утверждения: sub, iat и exp. Токен действителен,
// пока текущее время строго меньше exp; допуска на рассинхронизацию часов нет.
// Наружу все отказы проверки выглядят одинаково (Unauthorized "invalid token"),
// а конкретная причина доступна через errors.Is для логов и метрик.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apierrors "github.com/pribylovaa/authgate/internal/errors"
	"github.com/pribylovaa/authgate/internal/models"
)

// Причины отказа проверки. Только для внутреннего использования.
var (
	ErrMalformed = errors.New("token malformed")
	ErrSignature = errors.New("token signature invalid")
	ErrExpired   = errors.New("token expired")
	ErrClaims    = errors.New("token claims invalid")
)

var (
	ErrEmptySecret = errors.New("empty token secret")
	ErrInvalidTTL  = errors.New("token lifetime must be positive")
)

// Сообщение отказа одно на все причины.
const invalidTokenMsg = "invalid token"

// Codec подписывает и проверяет токены общим симметричным секретом.
// После создания не изменяется и безопасен для конкурентного использования.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option настраивает Codec.
type Option func(*Codec)

// WithClock подменяет источник текущего времени (для тестов).
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// New создаёт Codec. Секрет копируется.
func New(secret []byte, ttl time.Duration, opts ...Option) (*Codec, error) {
	const op = "token.New"

	if len(secret) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptySecret)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidTTL)
	}

	c := &Codec{
		secret: append([]byte(nil), secret...),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// TTL возвращает время жизни выпускаемых токенов.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Issue выпускает токен для subject: iat = now, exp = now + ttl.
// Время усекается до секунд, так как в токене оно хранится в секундах.
func (c *Codec) Issue(subject string) (string, models.Claims, error) {
	const op = "token.Issue"

	if subject == "" {
		return "", models.Claims{}, apierrors.Internal("failed to issue token",
			fmt.Errorf("%s: empty subject", op))
	}

	now := c.now().UTC().Truncate(time.Second)
	claims := models.Claims{
		Subject:   subject,
		IssuedAt:  now,
		ExpiresAt: now.Add(c.ttl),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   claims.Subject,
		IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
		ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
	})

	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", models.Claims{}, apierrors.Internal("failed to issue token",
			fmt.Errorf("%s: %w", op, err))
	}

	return signed, claims, nil
}

// Verify проверяет подпись, алгоритм и срок действия и возвращает утверждения.
// Любой отказ - *errors.Error с KindUnauthorized; причина (ErrMalformed,
// ErrSignature, ErrExpired, ErrClaims) доступна через errors.Is.
func (c *Codec) Verify(raw string) (models.Claims, error) {
	const op = "token.Verify"

	var rc jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &rc,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return models.Claims{}, unauthorized(op, classify(err), err)
	}

	if rc.Subject == "" || rc.IssuedAt == nil || rc.ExpiresAt == nil ||
		!rc.ExpiresAt.After(rc.IssuedAt.Time) {
		return models.Claims{}, unauthorized(op, ErrClaims, nil)
	}

	return models.Claims{
		Subject:   rc.Subject,
		IssuedAt:  rc.IssuedAt.UTC(),
		ExpiresAt: rc.ExpiresAt.UTC(),
	}, nil
}

// classify сводит ошибки jwt к четырём внутренним причинам.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	default:
		return ErrClaims
	}
}

func unauthorized(op string, reason, cause error) *apierrors.Error {
	if cause == nil {
		return apierrors.Unauthorized(invalidTokenMsg).Wrap(fmt.Errorf("%s: %w", op, reason))
	}

	return apierrors.Unauthorized(invalidTokenMsg).Wrap(fmt.Errorf("%s: %w: %w", op, reason, cause))
}
