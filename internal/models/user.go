package models

import (
	"time"

	"github.com/google/uuid"
)

// User - учётная запись пользователя в хранилище.
// PasswordHash никогда не покидает сервис: в REST-ответы попадает только UserResponse.
type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Public возвращает копию пользователя без хэша пароля.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}
