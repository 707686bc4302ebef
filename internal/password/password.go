// password реализует одностороннее хэширование паролей (bcrypt) и их проверку.
//
// Каждый вызов Hash генерирует свежую соль, поэтому два хэша одного и того же
// пароля различаются, а Verify при этом остаётся корректным. Сравнение
// выполняется bcrypt в постоянном времени.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	apierrors "github.com/pribylovaa/authgate/internal/errors"
)

// ErrInvalidCost - стоимость bcrypt вне допустимого диапазона.
var ErrInvalidCost = errors.New("bcrypt cost out of range")

// Hasher хэширует и проверяет пароли. Не имеет изменяемого состояния
// и безопасен для конкурентного использования.
type Hasher struct {
	cost int
}

// New создаёт Hasher с заданной стоимостью bcrypt.
func New(cost int) (*Hasher, error) {
	const op = "password.New"

	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%s: %w: %d", op, ErrInvalidCost, cost)
	}

	return &Hasher{cost: cost}, nil
}

// Hash возвращает bcrypt-хэш секрета. Ошибка возможна только при сбое
// криптопримитива или слишком длинном входе (>72 байт) и возвращается как KindInternal.
func (h *Hasher) Hash(secret string) (string, error) {
	const op = "password.Hash"

	digest, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", apierrors.Internal("failed to hash password", fmt.Errorf("%s: %w", op, err))
	}

	return string(digest), nil
}

// Verify сообщает, соответствует ли секрет хэшу.
// Несовпадение - это (false, nil); структурно битый хэш - KindInternal.
func (h *Hasher) Verify(secret, digest string) (bool, error) {
	const op = "password.Verify"

	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, apierrors.Internal("failed to verify password", fmt.Errorf("%s: %w", op, err))
	}
}

// Cost возвращает стоимость, с которой был создан Hasher.
func (h *Hasher) Cost() int { return h.cost }
