package appointment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/petmeet-backend/internal/clock"
	"github.com/ignatzorin/petmeet-backend/internal/domain/entity"
	"github.com/ignatzorin/petmeet-backend/internal/domain/repository"
	"github.com/ignatzorin/petmeet-backend/internal/domain/valueobject"
	"github.com/ignatzorin/petmeet-backend/internal/geo"
	"github.com/ignatzorin/petmeet-backend/internal/logger"
)

type CancelInput struct {
	AppointmentID uuid.UUID
	ActorID       uuid.UUID
	Reason        string
}

type CancelAppointmentUseCase struct {
	appointmentRepo repository.AppointmentRepository
	notifier        repository.Notifier
	clock           clock.Clock
}

func NewCancelAppointmentUseCase(appointmentRepo repository.AppointmentRepository, notifier repository.Notifier, clk clock.Clock) *CancelAppointmentUseCase {
	return &CancelAppointmentUseCase{
		appointmentRepo: appointmentRepo,
		notifier:        notifier,
		clock:           clk,
	}
}

func (uc *CancelAppointmentUseCase) Execute(ctx context.Context, input CancelInput) (*CancelResult, error) {
	now := uc.clock.Now()
	var late bool
	updated, err := uc.appointmentRepo.UpdateLocked(ctx, input.AppointmentID, func(a *entity.Appointment) error {
		var err error
		late, err = a.Cancel(input.ActorID, input.Reason, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"appointment_id": updated.ID,
		"user_id":        input.ActorID,
		"late":           late,
	}).Info("Встреча отменена")

	message := fmt.Sprintf("Встреча %s отменена.", formatWhen(updated))
	if reason := *updated.CancelReason; reason != "" {
		message += " Причина: " + reason
	}
	notifyAsync(ctx, uc.notifier, updated.OtherParty(input.ActorID), valueobject.NotificationAppointmentCancelled,
		"Встреча отменена", message,
	)

	return &CancelResult{Appointment: updated, LateCancellation: late}, nil
}

type CheckInInput struct {
	AppointmentID uuid.UUID
	ActorID       uuid.UUID
	Latitude      float64
	Longitude     float64
}

type CheckInUseCase struct {
	appointmentRepo repository.AppointmentRepository
	locationRepo    repository.LocationRepository
	notifier        repository.Notifier
	clock           clock.Clock
}

func NewCheckInUseCase(
	appointmentRepo repository.AppointmentRepository,
	locationRepo repository.LocationRepository,
	notifier repository.Notifier,
	clk clock.Clock,
) *CheckInUseCase {
	return &CheckInUseCase{
		appointmentRepo: appointmentRepo,
		locationRepo:    locationRepo,
		notifier:        notifier,
		clock:           clk,
	}
}

func (uc *CheckInUseCase) Execute(ctx context.Context, input CheckInInput) (*CheckInResult, error) {
	now := uc.clock.Now()
	point := geo.Point{Latitude: input.Latitude, Longitude: input.Longitude}

	var (
		distance *float64
		started  bool
	)
	updated, err := uc.appointmentRepo.UpdateLocked(ctx, input.AppointmentID, func(a *entity.Appointment) error {
		var loc *entity.Location
		if a.LocationID != nil {
			found, err := uc.locationRepo.FindByID(ctx, *a.LocationID)
			if err != nil {
				return err
			}
			loc = found
		}

		wasConfirmed := a.Status == valueobject.AppointmentStatusConfirmed
		d, err := a.CheckIn(input.ActorID, point, loc, now)
		if err != nil {
			return err
		}
		distance = d
		started = wasConfirmed && a.Status == valueobject.AppointmentStatusOnGoing
		return nil
	})
	if err != nil {
		return nil, err
	}

	fields := logrus.Fields{
		"appointment_id": updated.ID,
		"user_id":        input.ActorID,
		"status":         updated.Status,
	}
	if distance != nil {
		fields["distance_m"] = *distance
	}
	logger.Log.WithFields(fields).Info("Отметка о прибытии")

	if started {
		for _, userID := range []uuid.UUID{updated.InviterUserID, updated.InviteeUserID} {
			notifyAsync(ctx, uc.notifier, userID, valueobject.NotificationAppointmentStarted,
				"Встреча началась", "Вы оба на месте. Хорошей прогулки!",
			)
		}
	} else {
		notifyAsync(ctx, uc.notifier, updated.OtherParty(input.ActorID), valueobject.NotificationAppointmentCheckIn,
			"Собеседник на месте", describeCheckIn(updated),
		)
	}

	return &CheckInResult{
		Appointment:    updated,
		DistanceMeters: distance,
		BothCheckedIn:  updated.BothCheckedIn(),
	}, nil
}

type CompleteInput struct {
	AppointmentID uuid.UUID
	ActorID       uuid.UUID
}

type CompleteAppointmentUseCase struct {
	appointmentRepo repository.AppointmentRepository
	notifier        repository.Notifier
	clock           clock.Clock
}

func NewCompleteAppointmentUseCase(appointmentRepo repository.AppointmentRepository, notifier repository.Notifier, clk clock.Clock) *CompleteAppointmentUseCase {
	return &CompleteAppointmentUseCase{
		appointmentRepo: appointmentRepo,
		notifier:        notifier,
		clock:           clk,
	}
}

func (uc *CompleteAppointmentUseCase) Execute(ctx context.Context, input CompleteInput) (*CompleteResult, error) {
	now := uc.clock.Now()
	updated, err := uc.appointmentRepo.UpdateLocked(ctx, input.AppointmentID, func(a *entity.Appointment) error {
		return a.Complete(input.ActorID, now)
	})
	if err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"appointment_id": updated.ID,
		"user_id":        input.ActorID,
	}).Info("Встреча завершена")

	notifyAsync(ctx, uc.notifier, updated.OtherParty(input.ActorID), valueobject.NotificationAppointmentCompleted,
		"Встреча завершена", "Спасибо за встречу! Расскажите, как всё прошло.",
	)

	return &CompleteResult{Appointment: updated}, nil
}
