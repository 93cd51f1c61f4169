package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/petmeet-backend/internal/domain/repository"
	"github.com/ignatzorin/petmeet-backend/internal/domain/valueobject"
)

const ConflictWindow = 2 * time.Hour

// ConflictChecker подсказывает, что у пользователя уже есть встреча рядом по времени.
// Результат только информационный и переходы не блокирует.
type ConflictChecker struct {
	appointments repository.AppointmentRepository
}

func NewConflictChecker(appointments repository.AppointmentRepository) *ConflictChecker {
	return &ConflictChecker{appointments: appointments}
}

func (c *ConflictChecker) HasConflict(ctx context.Context, userID uuid.UUID, at time.Time, excludeID *uuid.UUID) (bool, error) {
	nearby, err := c.appointments.FindByUserInRange(ctx, userID, at.Add(-ConflictWindow), at.Add(ConflictWindow), valueobject.LiveAppointmentStatuses)
	if err != nil {
		return false, err
	}
	for _, a := range nearby {
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		diff := a.AppointmentAt.Sub(at)
		if diff < 0 {
			diff = -diff
		}
		if diff < ConflictWindow {
			return true, nil
		}
	}
	return false, nil
}
