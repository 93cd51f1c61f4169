package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/petmeet-backend/internal/domain/entity"
	"github.com/ignatzorin/petmeet-backend/internal/domain/valueobject"
)

// DueCursor - позиция в выборке FindDue: следующая страница начинается строго после (At, ID).
type DueCursor struct {
	At time.Time
	ID uuid.UUID
}

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *entity.Appointment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error)
	FindByMatchID(ctx context.Context, matchID uuid.UUID) ([]*entity.Appointment, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, statuses []valueobject.AppointmentStatus) ([]*entity.Appointment, error)
	ExistsForMatch(ctx context.Context, matchID uuid.UUID, statuses []valueobject.AppointmentStatus) (bool, error)
	FindByUserInRange(ctx context.Context, userID uuid.UUID, from, to time.Time, statuses []valueobject.AppointmentStatus) ([]*entity.Appointment, error)

	// FindDue возвращает не больше limit встреч в статусе status, назначенных не позже before,
	// в порядке (appointment_at, id). after == nil - с начала.
	FindDue(ctx context.Context, status valueobject.AppointmentStatus, before time.Time, after *DueCursor, limit int) ([]*entity.Appointment, error)

	// UpdateLocked загружает встречу под блокировкой записи, применяет fn и сохраняет результат.
	// Если fn вернула ошибку, изменения не сохраняются.
	UpdateLocked(ctx context.Context, id uuid.UUID, fn func(*entity.Appointment) error) (*entity.Appointment, error)
}
