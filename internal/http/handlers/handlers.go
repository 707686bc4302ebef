package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/pribylovaa/authgate/internal/models"
)

// maxBodyBytes - предел размера JSON-тела запроса.
const maxBodyBytes = 1 << 20

var errTrailingData = errors.New("unexpected data after JSON body")

// Service - бизнес-операции, которые вызывают хендлеры (*service.Service).
type Service interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResult, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResult, error)
	Profile(ctx context.Context, id uuid.UUID) (*models.User, error)
	Ready(ctx context.Context) error
}

// Handlers агрегирует зависимости REST-хендлеров.
type Handlers struct {
	svc     Service
	version string
}

func New(svc Service, version string) *Handlers {
	return &Handlers{svc: svc, version: version}
}

// decodeStrict - строгий JSON-декодер: запрещаем неизвестные поля,
// лишние данные после объекта и тела больше maxBodyBytes.
func decodeStrict(w http.ResponseWriter, r *http.Request, value any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(value); err != nil {
		return err
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errTrailingData
	}

	return nil
}
