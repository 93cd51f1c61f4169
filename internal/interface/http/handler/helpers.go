package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/petmeet-backend/internal/domain/valueobject"
	"github.com/ignatzorin/petmeet-backend/internal/http/middleware"
	"github.com/ignatzorin/petmeet-backend/internal/interface/http/dto"
	"github.com/ignatzorin/petmeet-backend/internal/validation"
)

func getUserID(c *gin.Context) (uuid.UUID, error) {
	userIDValue, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return uuid.Nil, errors.New("user_id не найден в контексте")
	}

	userID, ok := userIDValue.(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.New("некорректный формат user_id")
	}

	return userID, nil
}

func parseIntQuery(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// parseStatuses разбирает ?status=pending,confirmed. Пустой параметр - все статусы.
func parseStatuses(c *gin.Context) ([]valueobject.AppointmentStatus, error) {
	raw := strings.TrimSpace(c.Query("status"))
	if raw == "" {
		return nil, nil
	}

	var statuses []valueobject.AppointmentStatus
	for _, part := range strings.Split(raw, ",") {
		status, err := valueobject.NewAppointmentStatus(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func parseUUIDQuery(c *gin.Context, key string) (uuid.UUID, error) {
	return uuid.Parse(c.Query(key))
}

func validateLocationRequest(req *dto.LocationRequest) error {
	if req == nil {
		return nil
	}
	if err := validation.ValidateLocationName(req.Name); err != nil {
		return err
	}
	return validation.ValidateLocationDetails(req.Address, req.City, req.District, req.PlaceType, req.ExternalPlaceID)
}
