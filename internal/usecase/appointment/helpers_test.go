package appointment_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/petmeet-backend/internal/clock"
	"github.com/ignatzorin/petmeet-backend/internal/domain/entity"
	"github.com/ignatzorin/petmeet-backend/internal/domain/valueobject"
	"github.com/ignatzorin/petmeet-backend/internal/infrastructure/memory"
	"github.com/ignatzorin/petmeet-backend/internal/logger"
	"github.com/ignatzorin/petmeet-backend/internal/usecase/appointment"
	"github.com/ignatzorin/petmeet-backend/internal/usecase/location"
)

var baseNow = time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)

// Координаты возле Taipei 101.
const (
	parkLat = 25.0330
	parkLng = 121.5654
)

type fixture struct {
	t            *testing.T
	ctx          context.Context
	clock        *clock.Manual
	appointments *memory.AppointmentStore
	locations    *memory.LocationStore
	matches      *memory.MatchStore
	messages     *memory.MessageCounts
	pets         *memory.PetStore
	notifier     *memory.Notifier

	match      *entity.Match
	inviterID  uuid.UUID
	inviteeID  uuid.UUID
	inviterPet *entity.PetProfile
	inviteePet *entity.PetProfile
	park       *entity.Location

	gate     *appointment.EligibilityGate
	checker  *appointment.ConflictChecker
	create   *appointment.CreateAppointmentUseCase
	respond  *appointment.RespondAppointmentUseCase
	counter  *appointment.CounterOfferUseCase
	cancel   *appointment.CancelAppointmentUseCase
	checkIn  *appointment.CheckInUseCase
	complete *appointment.CompleteAppointmentUseCase
	get      *appointment.GetAppointmentUseCase
	byMatch  *appointment.ListMatchAppointmentsUseCase
	mine     *appointment.ListMyAppointmentsUseCase
	eligible *appointment.CheckEligibilityUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger.Discard()

	f := &fixture{
		t:            t,
		ctx:          context.Background(),
		clock:        clock.NewManual(baseNow),
		appointments: memory.NewAppointmentStore(),
		matches:      memory.NewMatchStore(),
		messages:     memory.NewMessageCounts(),
		pets:         memory.NewPetStore(),
		notifier:     memory.NewNotifier(),
		inviterID:    uuid.New(),
		inviteeID:    uuid.New(),
	}
	f.locations = memory.NewLocationStore(f.appointments)

	f.inviterPet = &entity.PetProfile{ID: uuid.New(), OwnerID: f.inviterID, Name: "Mochi", Species: "dog", PhotoCount: 2}
	f.inviteePet = &entity.PetProfile{ID: uuid.New(), OwnerID: f.inviteeID, Name: "Tofu", Breed: "shiba", PhotoCount: 1}
	f.pets.Put(f.inviterPet)
	f.pets.Put(f.inviteePet)

	f.match = &entity.Match{
		ID:      uuid.New(),
		UserAID: f.inviterID,
		UserBID: f.inviteeID,
		PetAID:  f.inviterPet.ID,
		PetBID:  f.inviteePet.ID,
		Status:  valueobject.MatchStatusAccepted,
	}
	f.matches.Put(f.match)
	f.messages.Set(f.match.ID, f.inviterID, 5)
	f.messages.Set(f.match.ID, f.inviteeID, 5)

	createLocation := location.NewCreateLocationUseCase(f.locations, f.clock)
	park, err := createLocation.Execute(f.ctx, location.CreateLocationInput{
		Name:            "Xinyi Dog Park",
		Latitude:        parkLat,
		Longitude:       parkLng,
		IsPetFriendly:   true,
		PlaceType:       "park",
		ExternalPlaceID: "gp-xinyi-park",
	})
	require.NoError(t, err)
	f.park = park.Location

	f.gate = appointment.NewEligibilityGate(f.matches, f.messages, f.pets, f.appointments)
	f.checker = appointment.NewConflictChecker(f.appointments)
	f.create = appointment.NewCreateAppointmentUseCase(f.appointments, f.pets, f.gate, f.locations, createLocation, f.notifier, f.clock)
	f.respond = appointment.NewRespondAppointmentUseCase(f.appointments, f.notifier, f.clock)
	f.counter = appointment.NewCounterOfferUseCase(f.appointments, f.locations, createLocation, f.notifier, f.clock)
	f.cancel = appointment.NewCancelAppointmentUseCase(f.appointments, f.notifier, f.clock)
	f.checkIn = appointment.NewCheckInUseCase(f.appointments, f.locations, f.notifier, f.clock)
	f.complete = appointment.NewCompleteAppointmentUseCase(f.appointments, f.notifier, f.clock)
	f.get = appointment.NewGetAppointmentUseCase(f.appointments, f.locations, f.checker)
	f.byMatch = appointment.NewListMatchAppointmentsUseCase(f.appointments, f.matches, f.locations, f.checker)
	f.mine = appointment.NewListMyAppointmentsUseCase(f.appointments, f.locations, f.checker)
	f.eligible = appointment.NewCheckEligibilityUseCase(f.matches, f.gate)
	return f
}

func (f *fixture) createInput(at time.Time) appointment.CreateAppointmentInput {
	return appointment.CreateAppointmentInput{
		MatchID:       f.match.ID,
		ActorID:       f.inviterID,
		InviterPetID:  f.inviterPet.ID,
		InviteePetID:  f.inviteePet.ID,
		AppointmentAt: at,
		Location:      &appointment.LocationChoice{ID: &f.park.ID},
	}
}

// createPending создаёт приглашение в парк через 3 часа.
func (f *fixture) createPending() *entity.Appointment {
	f.t.Helper()
	result, err := f.create.Execute(f.ctx, f.createInput(baseNow.Add(3*time.Hour)))
	require.NoError(f.t, err)
	return result.Appointment
}

func (f *fixture) createConfirmed() *entity.Appointment {
	f.t.Helper()
	a := f.createPending()
	result, err := f.respond.Execute(f.ctx, appointment.RespondInput{AppointmentID: a.ID, ActorID: f.inviteeID, Accept: true})
	require.NoError(f.t, err)
	return result.Appointment
}

// putAppointment кладёт встречу напрямую в хранилище, минуя проверки.
func (f *fixture) putAppointment(userID uuid.UUID, at time.Time, status valueobject.AppointmentStatus) *entity.Appointment {
	a := &entity.Appointment{
		ID:            uuid.New(),
		MatchID:       uuid.New(),
		InviterUserID: userID,
		InviterPetID:  uuid.New(),
		InviteeUserID: uuid.New(),
		InviteePetID:  uuid.New(),
		AppointmentAt: at,
		Status:        status,
		CreatedAt:     baseNow,
		UpdatedAt:     baseNow,
	}
	if status == valueobject.AppointmentStatusPending {
		decision := a.InviteeUserID
		a.CurrentDecisionUserID = &decision
	}
	f.appointments.Put(a)
	return a
}

func (f *fixture) stored(id uuid.UUID) *entity.Appointment {
	f.t.Helper()
	a, err := f.appointments.FindByID(f.ctx, id)
	require.NoError(f.t, err)
	return a
}

func (f *fixture) assertNotified(userID uuid.UUID, nt valueobject.NotificationType) {
	f.t.Helper()
	assert.Eventually(f.t, func() bool {
		return len(f.notifier.SentTo(userID, string(nt))) > 0
	}, time.Second, 5*time.Millisecond, "ожидалось уведомление %s", nt)
}
