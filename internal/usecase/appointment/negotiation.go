package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/petmeet-backend/internal/clock"
	"github.com/ignatzorin/petmeet-backend/internal/domain/entity"
	"github.com/ignatzorin/petmeet-backend/internal/domain/repository"
	"github.com/ignatzorin/petmeet-backend/internal/domain/valueobject"
	"github.com/ignatzorin/petmeet-backend/internal/logger"
	"github.com/ignatzorin/petmeet-backend/internal/pkg/apperror"
	"github.com/ignatzorin/petmeet-backend/internal/usecase/location"
)

type RespondInput struct {
	AppointmentID uuid.UUID
	ActorID       uuid.UUID
	Accept        bool
	DeclineReason string
}

type RespondAppointmentUseCase struct {
	appointmentRepo repository.AppointmentRepository
	notifier        repository.Notifier
	clock           clock.Clock
}

func NewRespondAppointmentUseCase(appointmentRepo repository.AppointmentRepository, notifier repository.Notifier, clk clock.Clock) *RespondAppointmentUseCase {
	return &RespondAppointmentUseCase{
		appointmentRepo: appointmentRepo,
		notifier:        notifier,
		clock:           clk,
	}
}

func (uc *RespondAppointmentUseCase) Execute(ctx context.Context, input RespondInput) (*RespondResult, error) {
	now := uc.clock.Now()
	updated, err := uc.appointmentRepo.UpdateLocked(ctx, input.AppointmentID, func(a *entity.Appointment) error {
		if input.Accept {
			return a.Accept(input.ActorID, now)
		}
		return a.Decline(input.ActorID, input.DeclineReason, now)
	})
	if err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"appointment_id": updated.ID,
		"user_id":        input.ActorID,
		"status":         updated.Status,
	}).Info("Ответ на приглашение")

	other := updated.OtherParty(input.ActorID)
	if input.Accept {
		notifyAsync(ctx, uc.notifier, other, valueobject.NotificationAppointmentConfirmed,
			"Встреча подтверждена",
			fmt.Sprintf("Встреча %s подтверждена. Не забудьте отметиться на месте.", formatWhen(updated)),
		)
	} else {
		notifyAsync(ctx, uc.notifier, other, valueobject.NotificationAppointmentDeclined,
			"Приглашение отклонено",
			fmt.Sprintf("Встреча %s отклонена. Причина: %s", formatWhen(updated), *updated.CancelReason),
		)
	}

	return &RespondResult{Appointment: updated, Accepted: input.Accept}, nil
}

type CounterOfferInput struct {
	AppointmentID    uuid.UUID
	ActorID          uuid.UUID
	NewAppointmentAt *time.Time
	Location         *LocationChoice
}

type CounterOfferUseCase struct {
	appointmentRepo repository.AppointmentRepository
	locations       locationResolver
	notifier        repository.Notifier
	clock           clock.Clock
}

func NewCounterOfferUseCase(
	appointmentRepo repository.AppointmentRepository,
	locationRepo repository.LocationRepository,
	createLocation *location.CreateLocationUseCase,
	notifier repository.Notifier,
	clk clock.Clock,
) *CounterOfferUseCase {
	return &CounterOfferUseCase{
		appointmentRepo: appointmentRepo,
		locations:       locationResolver{locations: locationRepo, creator: createLocation},
		notifier:        notifier,
		clock:           clk,
	}
}

func (uc *CounterOfferUseCase) Execute(ctx context.Context, input CounterOfferInput) (*CounterOfferResult, error) {
	if input.NewAppointmentAt == nil && (input.Location == nil || (input.Location.ID == nil && input.Location.New == nil)) {
		return nil, apperror.New(apperror.ErrCodeValidation, "укажите новое время или место")
	}

	// Место создаётся только после предварительной проверки. Под блокировкой проверки повторяются.
	now := uc.clock.Now()
	current, err := uc.appointmentRepo.FindByID(ctx, input.AppointmentID)
	if err != nil {
		return nil, err
	}
	if err := current.CheckCounterOffer(input.ActorID, input.NewAppointmentAt, now); err != nil {
		return nil, err
	}

	loc, _, err := uc.locations.resolve(ctx, input.Location, input.ActorID)
	if err != nil {
		return nil, err
	}
	var newLocationID *uuid.UUID
	if loc != nil {
		newLocationID = &loc.ID
	}

	updated, err := uc.appointmentRepo.UpdateLocked(ctx, input.AppointmentID, func(a *entity.Appointment) error {
		return a.CounterOffer(input.ActorID, input.NewAppointmentAt, newLocationID, now)
	})
	if err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"appointment_id":      updated.ID,
		"user_id":             input.ActorID,
		"counter_offer_count": updated.CounterOfferCount,
	}).Info("Встречное предложение")

	message := fmt.Sprintf("Предложено новое время встречи: %s.", formatWhen(updated))
	if loc != nil {
		message = fmt.Sprintf("Предложена встреча %s, место: %s.", formatWhen(updated), loc.Name)
	}
	notifyAsync(ctx, uc.notifier, *updated.CurrentDecisionUserID, valueobject.NotificationAppointmentCounterOffer,
		"Встречное предложение", message,
	)

	return &CounterOfferResult{
		Appointment:            updated,
		Location:               loc,
		RemainingCounterOffers: entity.MaxCounterOffers - updated.CounterOfferCount,
	}, nil
}
