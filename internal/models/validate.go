package models

import (
	"errors"
	"net/mail"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

const (
	maxEmailLen = 254
	// bcrypt учитывает только первые 72 байта пароля, более длинные отвергаем явно.
	maxPasswordBytes = 72
	minPasswordRunes = 8
	maxNameRunes     = 100
)

var errInvalidEmail = errors.New("must be a valid email address")

// Normalize приводит e-mail к каноничному виду и обрезает пробелы в имени.
func (r *RegisterRequest) Normalize() {
	r.Email = NormalizeEmail(r.Email)
	r.Name = strings.TrimSpace(r.Name)
}

// Validate проверяет структуру запроса регистрации.
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, maxEmailLen), validation.By(emailAddress)),
		validation.Field(&r.Password,
			validation.Required,
			validation.RuneLength(minPasswordRunes, maxPasswordBytes),
			validation.Length(0, maxPasswordBytes),
		),
		validation.Field(&r.Name, validation.Required, validation.RuneLength(1, maxNameRunes)),
	)
}

func (r *LoginRequest) Normalize() {
	r.Email = NormalizeEmail(r.Email)
}

// Validate проверяет структуру запроса входа. Длину пароля не проверяем:
// неверный пароль любой длины должен приводить к одной и той же ошибке.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, maxEmailLen), validation.By(emailAddress)),
		validation.Field(&r.Password, validation.Required),
	)
}

// NormalizeEmail обрезает пробелы и приводит адрес к нижнему регистру.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// emailAddress принимает только "голый" адрес без display name ("Bob <b@x.io>" - нет).
func emailAddress(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || !strings.Contains(s[strings.LastIndexByte(s, '@')+1:], ".") {
		return errInvalidEmail
	}

	return nil
}
