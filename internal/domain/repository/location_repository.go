package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/petmeet-backend/internal/domain/entity"
)

type LocationRepository interface {
	Create(ctx context.Context, location *entity.Location) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Location, error)
	// FindByExternalPlaceID возвращает nil, nil если места нет.
	FindByExternalPlaceID(ctx context.Context, externalPlaceID string) (*entity.Location, error)
	FindRecentByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.Location, error)
}
