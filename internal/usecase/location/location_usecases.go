package location

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/petmeet-backend/internal/clock"
	"github.com/ignatzorin/petmeet-backend/internal/domain/entity"
	"github.com/ignatzorin/petmeet-backend/internal/domain/repository"
	"github.com/ignatzorin/petmeet-backend/internal/logger"
	"github.com/ignatzorin/petmeet-backend/internal/pkg/apperror"
)

const (
	DefaultRecentLimit = 10
	MaxRecentLimit     = 50
)

type CreateLocationInput struct {
	Name            string
	Address         string
	Latitude        float64
	Longitude       float64
	City            string
	District        string
	IsPetFriendly   bool
	PlaceType       string
	ExternalPlaceID string
	CreatedBy       *uuid.UUID
}

type CreateLocationResult struct {
	Location *entity.Location
	// Created=false, если место с таким external_place_id уже было.
	Created bool
}

type CreateLocationUseCase struct {
	locationRepo repository.LocationRepository
	clock        clock.Clock
}

func NewCreateLocationUseCase(locationRepo repository.LocationRepository, clk clock.Clock) *CreateLocationUseCase {
	return &CreateLocationUseCase{locationRepo: locationRepo, clock: clk}
}

func (uc *CreateLocationUseCase) Execute(ctx context.Context, input CreateLocationInput) (*CreateLocationResult, error) {
	loc, err := entity.NewLocation(entity.NewLocationParams{
		Name:            input.Name,
		Address:         input.Address,
		Latitude:        input.Latitude,
		Longitude:       input.Longitude,
		City:            input.City,
		District:        input.District,
		IsPetFriendly:   input.IsPetFriendly,
		PlaceType:       input.PlaceType,
		ExternalPlaceID: input.ExternalPlaceID,
		CreatedBy:       input.CreatedBy,
	}, uc.clock.Now())
	if err != nil {
		return nil, err
	}

	if loc.ExternalPlaceID != nil {
		existing, err := uc.locationRepo.FindByExternalPlaceID(ctx, *loc.ExternalPlaceID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return &CreateLocationResult{Location: existing}, nil
		}
	}

	if err := uc.locationRepo.Create(ctx, loc); err != nil {
		// Параллельный запрос успел создать то же место.
		if apperror.IsConflict(err) && loc.ExternalPlaceID != nil {
			existing, findErr := uc.locationRepo.FindByExternalPlaceID(ctx, *loc.ExternalPlaceID)
			if findErr == nil && existing != nil {
				return &CreateLocationResult{Location: existing}, nil
			}
		}
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"location_id": loc.ID,
		"name":        loc.Name,
	}).Info("Создано место встречи")

	return &CreateLocationResult{Location: loc, Created: true}, nil
}

type GetLocationUseCase struct {
	locationRepo repository.LocationRepository
}

func NewGetLocationUseCase(locationRepo repository.LocationRepository) *GetLocationUseCase {
	return &GetLocationUseCase{locationRepo: locationRepo}
}

func (uc *GetLocationUseCase) Execute(ctx context.Context, locationID uuid.UUID) (*entity.Location, error) {
	return uc.locationRepo.FindByID(ctx, locationID)
}

type GetRecentLocationsUseCase struct {
	locationRepo repository.LocationRepository
}

func NewGetRecentLocationsUseCase(locationRepo repository.LocationRepository) *GetRecentLocationsUseCase {
	return &GetRecentLocationsUseCase{locationRepo: locationRepo}
}

// Execute возвращает места из встреч пользователя, самые свежие первыми.
func (uc *GetRecentLocationsUseCase) Execute(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.Location, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}
	return uc.locationRepo.FindRecentByUserID(ctx, userID, limit)
}
