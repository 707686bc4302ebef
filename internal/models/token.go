package models

import (
	"time"

	"github.com/google/uuid"
)

// Claims - утверждения подписанного токена. Живут только внутри токена
// и восстанавливаются при проверке; на сервере не хранятся.
// Инвариант: ExpiresAt > IssuedAt.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Identity - аутентифицированный пользователь текущего запроса.
type Identity struct {
	UserID uuid.UUID
}

// AuthResult - результат успешной регистрации или входа.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      User
}
