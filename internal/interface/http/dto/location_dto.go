package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/petmeet-backend/internal/domain/entity"
	"github.com/ignatzorin/petmeet-backend/internal/usecase/location"
)

type LocationRequest struct {
	Name            string   `json:"name" binding:"required"`
	Address         string   `json:"address"`
	Latitude        *float64 `json:"latitude" binding:"required"`
	Longitude       *float64 `json:"longitude" binding:"required"`
	City            string   `json:"city"`
	District        string   `json:"district"`
	IsPetFriendly   bool     `json:"is_pet_friendly"`
	PlaceType       string   `json:"place_type"`
	ExternalPlaceID string   `json:"external_place_id"`
}

func (r *LocationRequest) ToInput() *location.CreateLocationInput {
	return &location.CreateLocationInput{
		Name:            r.Name,
		Address:         r.Address,
		Latitude:        *r.Latitude,
		Longitude:       *r.Longitude,
		City:            r.City,
		District:        r.District,
		IsPetFriendly:   r.IsPetFriendly,
		PlaceType:       r.PlaceType,
		ExternalPlaceID: r.ExternalPlaceID,
	}
}

type LocationResponse struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Address         string     `json:"address"`
	Latitude        float64    `json:"latitude"`
	Longitude       float64    `json:"longitude"`
	City            string     `json:"city"`
	District        string     `json:"district"`
	IsPetFriendly   bool       `json:"is_pet_friendly"`
	PlaceType       string     `json:"place_type"`
	ExternalPlaceID *string    `json:"external_place_id"`
	CreatedBy       *uuid.UUID `json:"created_by"`
	CreatedAt       time.Time  `json:"created_at"`
}

type CreateLocationResponse struct {
	Location LocationResponse `json:"location"`
	Created  bool             `json:"created"`
}

func ToLocationResponse(l *entity.Location) *LocationResponse {
	if l == nil {
		return nil
	}
	return &LocationResponse{
		ID:              l.ID,
		Name:            l.Name,
		Address:         l.Address,
		Latitude:        l.Latitude,
		Longitude:       l.Longitude,
		City:            l.City,
		District:        l.District,
		IsPetFriendly:   l.IsPetFriendly,
		PlaceType:       l.PlaceType,
		ExternalPlaceID: l.ExternalPlaceID,
		CreatedBy:       l.CreatedBy,
		CreatedAt:       l.CreatedAt,
	}
}

func ToLocationResponses(locations []*entity.Location) []*LocationResponse {
	responses := make([]*LocationResponse, 0, len(locations))
	for _, l := range locations {
		responses = append(responses, ToLocationResponse(l))
	}
	return responses
}
