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

type CreateAppointmentInput struct {
	MatchID       uuid.UUID
	ActorID       uuid.UUID
	InviterPetID  uuid.UUID
	InviteePetID  uuid.UUID
	AppointmentAt time.Time
	Location      *LocationChoice
}

type CreateAppointmentUseCase struct {
	appointmentRepo repository.AppointmentRepository
	pets            repository.PetProfileReader
	gate            *EligibilityGate
	locations       locationResolver
	notifier        repository.Notifier
	clock           clock.Clock
}

func NewCreateAppointmentUseCase(
	appointmentRepo repository.AppointmentRepository,
	pets repository.PetProfileReader,
	gate *EligibilityGate,
	locationRepo repository.LocationRepository,
	createLocation *location.CreateLocationUseCase,
	notifier repository.Notifier,
	clk clock.Clock,
) *CreateAppointmentUseCase {
	return &CreateAppointmentUseCase{
		appointmentRepo: appointmentRepo,
		pets:            pets,
		gate:            gate,
		locations:       locationResolver{locations: locationRepo, creator: createLocation},
		notifier:        notifier,
		clock:           clk,
	}
}

func (uc *CreateAppointmentUseCase) Execute(ctx context.Context, input CreateAppointmentInput) (*CreateAppointmentResult, error) {
	pet, err := uc.pets.FindByID(ctx, input.InviterPetID)
	if err != nil {
		return nil, err
	}
	if pet.OwnerID != input.ActorID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "приглашать можно только от имени своего питомца")
	}

	eligibility, err := uc.gate.ValidatePreConditions(ctx, input.MatchID, input.InviterPetID, input.InviteePetID)
	if err != nil {
		return nil, err
	}
	if !eligibility.OK {
		return nil, eligibility.asError()
	}

	now := uc.clock.Now()
	// Проверяем время до создания места, чтобы не плодить места для отклонённых запросов.
	if err := entity.ValidateAdvanceNotice(input.AppointmentAt, now); err != nil {
		return nil, err
	}

	loc, locationCreated, err := uc.locations.resolve(ctx, input.Location, input.ActorID)
	if err != nil {
		return nil, err
	}

	params := entity.NewAppointmentParams{
		MatchID:       input.MatchID,
		InviterUserID: eligibility.InviterUserID,
		InviterPetID:  input.InviterPetID,
		InviteeUserID: eligibility.InviteeUserID,
		InviteePetID:  input.InviteePetID,
		AppointmentAt: input.AppointmentAt,
	}
	if loc != nil {
		params.LocationID = &loc.ID
	}

	appointment, err := entity.NewAppointment(params, now)
	if err != nil {
		return nil, err
	}

	if err := uc.appointmentRepo.Create(ctx, appointment); err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"appointment_id": appointment.ID,
		"match_id":       appointment.MatchID,
		"inviter_id":     appointment.InviterUserID,
		"invitee_id":     appointment.InviteeUserID,
	}).Info("Создано приглашение на встречу")

	notifyAsync(ctx, uc.notifier, appointment.InviteeUserID, valueobject.NotificationAppointmentInvitation,
		"Новое приглашение на встречу",
		fmt.Sprintf("Вас приглашают на встречу питомцев %s. Примите, отклоните или предложите другое время.", formatWhen(appointment)),
	)

	return &CreateAppointmentResult{
		Appointment:     appointment,
		Location:        loc,
		LocationCreated: locationCreated,
	}, nil
}
