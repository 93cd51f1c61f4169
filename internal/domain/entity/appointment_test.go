package entity_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/petmeet-backend/internal/domain/entity"
	"github.com/ignatzorin/petmeet-backend/internal/domain/valueobject"
	"github.com/ignatzorin/petmeet-backend/internal/geo"
	"github.com/ignatzorin/petmeet-backend/internal/pkg/apperror"
)

var baseNow = time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)

func newPending(t *testing.T) *entity.Appointment {
	t.Helper()
	a, err := entity.NewAppointment(entity.NewAppointmentParams{
		MatchID:       uuid.New(),
		InviterUserID: uuid.New(),
		InviterPetID:  uuid.New(),
		InviteeUserID: uuid.New(),
		InviteePetID:  uuid.New(),
		AppointmentAt: baseNow.Add(3 * time.Hour),
	}, baseNow)
	require.NoError(t, err)
	return a
}

func newConfirmed(t *testing.T) *entity.Appointment {
	t.Helper()
	a := newPending(t)
	require.NoError(t, a.Accept(a.InviteeUserID, baseNow))
	return a
}

func TestNewAppointment_Defaults(t *testing.T) {
	a := newPending(t)

	assert.Equal(t, valueobject.AppointmentStatusPending, a.Status)
	require.NotNil(t, a.CurrentDecisionUserID)
	assert.Equal(t, a.InviteeUserID, *a.CurrentDecisionUserID)
	assert.Equal(t, 0, a.CounterOfferCount)
}

func TestNewAppointment_SamePet(t *testing.T) {
	petID := uuid.New()
	_, err := entity.NewAppointment(entity.NewAppointmentParams{
		InviterUserID: uuid.New(),
		InviterPetID:  petID,
		InviteeUserID: uuid.New(),
		InviteePetID:  petID,
		AppointmentAt: baseNow.Add(3 * time.Hour),
	}, baseNow)
	assert.True(t, apperror.IsValidation(err))
}

func TestNewAppointment_AdvanceNotice(t *testing.T) {
	params := entity.NewAppointmentParams{
		InviterUserID: uuid.New(),
		InviterPetID:  uuid.New(),
		InviteeUserID: uuid.New(),
		InviteePetID:  uuid.New(),
	}

	params.AppointmentAt = baseNow.Add(2*time.Hour - time.Second)
	_, err := entity.NewAppointment(params, baseNow)
	assert.True(t, apperror.IsValidation(err))

	params.AppointmentAt = baseNow.Add(2 * time.Hour)
	_, err = entity.NewAppointment(params, baseNow)
	assert.NoError(t, err)
}

func TestAppointment_Accept(t *testing.T) {
	a := newPending(t)

	err := a.Accept(a.InviterUserID, baseNow)
	assert.True(t, apperror.IsForbidden(err), "инициатор не держит право решения")

	err = a.Accept(uuid.New(), baseNow)
	assert.True(t, apperror.IsForbidden(err))

	require.NoError(t, a.Accept(a.InviteeUserID, baseNow))
	assert.Equal(t, valueobject.AppointmentStatusConfirmed, a.Status)
	assert.Nil(t, a.CurrentDecisionUserID)

	err = a.Accept(a.InviteeUserID, baseNow)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestAppointment_DeclineRequiresReason(t *testing.T) {
	a := newPending(t)

	err := a.Decline(a.InviteeUserID, "   ", baseNow)
	assert.True(t, apperror.IsValidation(err))
	assert.Equal(t, valueobject.AppointmentStatusPending, a.Status)

	require.NoError(t, a.Decline(a.InviteeUserID, "собака заболела", baseNow))
	assert.Equal(t, valueobject.AppointmentStatusRejected, a.Status)
	require.NotNil(t, a.CancelledBy)
	assert.Equal(t, a.InviteeUserID, *a.CancelledBy)
	assert.Equal(t, "собака заболела", *a.CancelReason)
}

func TestAppointment_CounterOffer_FlipsDecision(t *testing.T) {
	a := newPending(t)
	newAt := baseNow.Add(5 * time.Hour)

	require.NoError(t, a.CounterOffer(a.InviteeUserID, &newAt, nil, baseNow))
	assert.Equal(t, 1, a.CounterOfferCount)
	assert.Equal(t, a.InviterUserID, *a.CurrentDecisionUserID)
	assert.True(t, newAt.Equal(a.AppointmentAt))

	locationID := uuid.New()
	require.NoError(t, a.CounterOffer(a.InviterUserID, nil, &locationID, baseNow))
	assert.Equal(t, 2, a.CounterOfferCount)
	assert.Equal(t, a.InviteeUserID, *a.CurrentDecisionUserID, "смена только места тоже передаёт ход")
	assert.Equal(t, locationID, *a.LocationID)
}

func TestAppointment_CounterOffer_NoChange(t *testing.T) {
	a := newPending(t)
	same := a.AppointmentAt

	err := a.CounterOffer(a.InviteeUserID, &same, nil, baseNow)
	assert.True(t, apperror.IsValidation(err))

	err = a.CounterOffer(a.InviteeUserID, nil, nil, baseNow)
	assert.True(t, apperror.IsValidation(err))
	assert.Equal(t, 0, a.CounterOfferCount)
}

func TestAppointment_CounterOffer_TooSoon(t *testing.T) {
	a := newPending(t)
	tooSoon := baseNow.Add(90 * time.Minute)

	err := a.CounterOffer(a.InviteeUserID, &tooSoon, nil, baseNow)
	assert.True(t, apperror.IsValidation(err))
	assert.Equal(t, a.InviteeUserID, *a.CurrentDecisionUserID)
}

func TestAppointment_CounterOffer_Limit(t *testing.T) {
	a := newPending(t)

	for i := 0; i < entity.MaxCounterOffers; i++ {
		at := baseNow.Add(time.Duration(4+i) * time.Hour)
		require.NoError(t, a.CounterOffer(*a.CurrentDecisionUserID, &at, nil, baseNow))
	}
	assert.Equal(t, 3, a.CounterOfferCount)

	at := baseNow.Add(10 * time.Hour)
	err := a.CounterOffer(*a.CurrentDecisionUserID, &at, nil, baseNow)
	assert.True(t, apperror.IsInvalidState(err))
	assert.Equal(t, 3, a.CounterOfferCount)
	assert.True(t, a.IsParticipant(*a.CurrentDecisionUserID))
}

func TestAppointment_CounterOffer_AfterConfirm(t *testing.T) {
	a := newConfirmed(t)
	at := baseNow.Add(6 * time.Hour)

	err := a.CounterOffer(a.InviteeUserID, &at, nil, baseNow)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestAppointment_CheckCounterOffer(t *testing.T) {
	a := newPending(t)
	tooSoon := baseNow.Add(90 * time.Minute)
	later := baseNow.Add(6 * time.Hour)

	assert.NoError(t, a.CheckCounterOffer(a.InviteeUserID, nil, baseNow))
	assert.NoError(t, a.CheckCounterOffer(a.InviteeUserID, &later, baseNow))
	assert.True(t, apperror.IsValidation(a.CheckCounterOffer(a.InviteeUserID, &tooSoon, baseNow)))
	assert.True(t, apperror.IsForbidden(a.CheckCounterOffer(a.InviterUserID, &later, baseNow)))

	// Проверка ничего не меняет.
	assert.Equal(t, 0, a.CounterOfferCount)
	assert.Equal(t, a.InviteeUserID, *a.CurrentDecisionUserID)

	a.CounterOfferCount = entity.MaxCounterOffers
	assert.True(t, apperror.IsInvalidState(a.CheckCounterOffer(a.InviteeUserID, nil, baseNow)))
}

func TestAppointment_Cancel(t *testing.T) {
	a := newConfirmed(t)

	late, err := a.Cancel(a.InviterUserID, "передумали", baseNow)
	require.NoError(t, err)
	assert.False(t, late)
	assert.Equal(t, valueobject.AppointmentStatusCancelled, a.Status)
	assert.Equal(t, "передумали", *a.CancelReason)

	_, err = a.Cancel(a.InviterUserID, "ещё раз", baseNow)
	assert.True(t, apperror.IsInvalidState(err), "повторная отмена не должна быть тихим no-op")
}

func TestAppointment_Cancel_Late(t *testing.T) {
	a := newConfirmed(t)
	now := a.AppointmentAt.Add(-2 * time.Hour)

	late, err := a.Cancel(a.InviteeUserID, "пробки", now)
	require.NoError(t, err)
	assert.True(t, late)
	assert.Equal(t, entity.LateCancellationMarker+" пробки", *a.CancelReason)
}

func TestAppointment_Cancel_NotParticipant(t *testing.T) {
	a := newPending(t)
	_, err := a.Cancel(uuid.New(), "", baseNow)
	assert.True(t, apperror.IsForbidden(err))
}

func TestAppointment_Cancel_OnGoingRejected(t *testing.T) {
	a := newConfirmed(t)
	now := a.AppointmentAt
	_, err := a.CheckIn(a.InviterUserID, geo.Point{}, nil, now)
	require.NoError(t, err)
	_, err = a.CheckIn(a.InviteeUserID, geo.Point{}, nil, now)
	require.NoError(t, err)
	require.Equal(t, valueobject.AppointmentStatusOnGoing, a.Status)

	_, err = a.Cancel(a.InviterUserID, "", now)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestAppointment_CheckIn_Window(t *testing.T) {
	a := newConfirmed(t)
	opens, closes := a.CheckInWindow()

	_, err := a.CheckIn(a.InviterUserID, geo.Point{}, nil, opens.Add(-time.Second))
	assert.True(t, apperror.IsInvalidState(err))

	_, err = a.CheckIn(a.InviterUserID, geo.Point{}, nil, closes.Add(time.Second))
	assert.True(t, apperror.IsInvalidState(err))

	_, err = a.CheckIn(a.InviterUserID, geo.Point{}, nil, opens)
	assert.NoError(t, err)
}

func TestAppointment_CheckIn_Distance(t *testing.T) {
	a := newConfirmed(t)
	loc := &entity.Location{ID: uuid.New(), Latitude: 25.0, Longitude: 121.0}
	now := a.AppointmentAt

	dist, err := a.CheckIn(a.InviterUserID, geo.Point{Latitude: 25.0010, Longitude: 121.0}, loc, now)
	assert.True(t, apperror.IsValidation(err))
	require.NotNil(t, dist)
	assert.Greater(t, *dist, entity.CheckInRadiusMeters)
	assert.False(t, a.InviterCheckedIn)

	dist, err = a.CheckIn(a.InviterUserID, geo.Point{Latitude: 25.0005, Longitude: 121.0}, loc, now)
	require.NoError(t, err)
	assert.Less(t, *dist, entity.CheckInRadiusMeters)
	assert.True(t, a.InviterCheckedIn)
	assert.Equal(t, valueobject.AppointmentStatusConfirmed, a.Status, "одна отметка не меняет статус")
}

func TestAppointment_CheckIn_NoLocationSkipsDistance(t *testing.T) {
	a := newConfirmed(t)

	dist, err := a.CheckIn(a.InviteeUserID, geo.Point{Latitude: -33.86, Longitude: 151.2}, nil, a.AppointmentAt)
	require.NoError(t, err)
	assert.Nil(t, dist)
}

func TestAppointment_CheckIn_BothMovesToOnGoing(t *testing.T) {
	a := newConfirmed(t)
	now := a.AppointmentAt.Add(-10 * time.Minute)

	_, err := a.CheckIn(a.InviterUserID, geo.Point{}, nil, now)
	require.NoError(t, err)
	_, err = a.CheckIn(a.InviterUserID, geo.Point{}, nil, now)
	assert.True(t, apperror.IsInvalidState(err), "повторная отметка")

	_, err = a.CheckIn(a.InviteeUserID, geo.Point{}, nil, now)
	require.NoError(t, err)
	assert.Equal(t, valueobject.AppointmentStatusOnGoing, a.Status)
	assert.True(t, a.BothCheckedIn())
	require.NotNil(t, a.InviteeCheckedInAt)
	assert.True(t, now.Equal(*a.InviteeCheckedInAt))
}

func TestAppointment_CheckIn_Pending(t *testing.T) {
	a := newPending(t)
	_, err := a.CheckIn(a.InviterUserID, geo.Point{}, nil, a.AppointmentAt)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestAppointment_Complete(t *testing.T) {
	a := newConfirmed(t)
	checkInAt := a.AppointmentAt.Add(-5 * time.Minute)
	_, err := a.CheckIn(a.InviterUserID, geo.Point{}, nil, checkInAt)
	require.NoError(t, err)
	_, err = a.CheckIn(a.InviteeUserID, geo.Point{}, nil, checkInAt)
	require.NoError(t, err)

	err = a.Complete(a.InviterUserID, checkInAt)
	assert.True(t, apperror.IsInvalidState(err), "до начала встречи")

	require.NoError(t, a.Complete(a.InviteeUserID, a.AppointmentAt.Add(time.Hour)))
	assert.Equal(t, valueobject.AppointmentStatusCompleted, a.Status)
}

func TestAppointment_Complete_FromConfirmed(t *testing.T) {
	a := newConfirmed(t)
	err := a.Complete(a.InviterUserID, a.AppointmentAt.Add(time.Hour))
	assert.True(t, apperror.IsInvalidState(err))
}

func TestAppointment_SweeperTransitions(t *testing.T) {
	pending := newPending(t)
	assert.Error(t, pending.Expire(pending.AppointmentAt.Add(-time.Minute)))
	require.NoError(t, pending.Expire(pending.AppointmentAt))
	assert.Equal(t, valueobject.AppointmentStatusExpired, pending.Status)
	assert.Nil(t, pending.CurrentDecisionUserID)
	assert.Error(t, pending.Expire(pending.AppointmentAt.Add(time.Hour)), "повторный прогон ничего не меняет")

	confirmed := newConfirmed(t)
	assert.Error(t, confirmed.MarkNoShow(confirmed.AppointmentAt.Add(89*time.Minute)))
	require.NoError(t, confirmed.MarkNoShow(confirmed.AppointmentAt.Add(90*time.Minute)))
	assert.Equal(t, valueobject.AppointmentStatusNoShow, confirmed.Status)

	onGoing := newConfirmed(t)
	_, _ = onGoing.CheckIn(onGoing.InviterUserID, geo.Point{}, nil, onGoing.AppointmentAt)
	_, _ = onGoing.CheckIn(onGoing.InviteeUserID, geo.Point{}, nil, onGoing.AppointmentAt)
	require.NoError(t, onGoing.AutoComplete(onGoing.AppointmentAt.Add(2*time.Hour)))
	assert.Equal(t, valueobject.AppointmentStatusCompleted, onGoing.Status)
}
