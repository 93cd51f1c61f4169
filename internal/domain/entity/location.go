package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/petmeet-backend/internal/geo"
	"github.com/ignatzorin/petmeet-backend/internal/pkg/apperror"
)

// Location - место встречи. После создания не меняется.
type Location struct {
	ID              uuid.UUID
	Name            string
	Address         string
	Latitude        float64
	Longitude       float64
	City            string
	District        string
	IsPetFriendly   bool
	PlaceType       string
	ExternalPlaceID *string
	CreatedBy       *uuid.UUID
	CreatedAt       time.Time
}

type NewLocationParams struct {
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

func NewLocation(p NewLocationParams, now time.Time) (*Location, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "название места обязательно")
	}
	point := geo.Point{Latitude: p.Latitude, Longitude: p.Longitude}
	if !point.Valid() {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректные координаты места")
	}

	loc := &Location{
		ID:            uuid.New(),
		Name:          name,
		Address:       strings.TrimSpace(p.Address),
		Latitude:      p.Latitude,
		Longitude:     p.Longitude,
		City:          strings.TrimSpace(p.City),
		District:      strings.TrimSpace(p.District),
		IsPetFriendly: p.IsPetFriendly,
		PlaceType:     strings.TrimSpace(p.PlaceType),
		CreatedBy:     p.CreatedBy,
		CreatedAt:     now,
	}
	if ext := strings.TrimSpace(p.ExternalPlaceID); ext != "" {
		loc.ExternalPlaceID = &ext
	}
	return loc, nil
}

func (l *Location) Point() geo.Point {
	return geo.Point{Latitude: l.Latitude, Longitude: l.Longitude}
}
