package cache

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/authgate/internal/models"
)

func encodeProfile(u *models.User) map[string]string {
	return map[string]string{
		"email":   u.Email,
		"name":    u.Name,
		"created": strconv.FormatInt(u.CreatedAt.UnixNano(), 10),
		"updated": strconv.FormatInt(u.UpdatedAt.UnixNano(), 10),
	}
}

func decodeProfile(id uuid.UUID, m map[string]string) (*models.User, error) {
	email, ok := m["email"]
	if !ok || email == "" {
		return nil, fmt.Errorf("%w: email", errCorrupted)
	}

	created, err := strconv.ParseInt(m["created"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: created: %w", errCorrupted, err)
	}

	updated, err := strconv.ParseInt(m["updated"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: updated: %w", errCorrupted, err)
	}

	return &models.User{
		ID:        id,
		Email:     email,
		Name:      m["name"],
		CreatedAt: time.Unix(0, created).UTC(),
		UpdatedAt: time.Unix(0, updated).UTC(),
	}, nil
}
