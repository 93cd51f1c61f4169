package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppointmentStatus_Transitions(t *testing.T) {
	allowed := map[AppointmentStatus][]AppointmentStatus{
		AppointmentStatusPending:   {AppointmentStatusConfirmed, AppointmentStatusRejected, AppointmentStatusCancelled, AppointmentStatusExpired},
		AppointmentStatusConfirmed: {AppointmentStatusOnGoing, AppointmentStatusCancelled, AppointmentStatusNoShow},
		AppointmentStatusOnGoing:   {AppointmentStatusCompleted, AppointmentStatusNoShow},
	}

	all := []AppointmentStatus{
		AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusOnGoing,
		AppointmentStatusRejected, AppointmentStatusCancelled, AppointmentStatusExpired,
		AppointmentStatusNoShow, AppointmentStatusCompleted,
	}

	for _, from := range all {
		for _, to := range all {
			expected := false
			for _, s := range allowed[from] {
				if s == to {
					expected = true
				}
			}
			assert.Equal(t, expected, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestAppointmentStatus_NoDirectJumps(t *testing.T) {
	assert.False(t, AppointmentStatusPending.CanTransitionTo(AppointmentStatusCompleted))
	assert.False(t, AppointmentStatusPending.CanTransitionTo(AppointmentStatusOnGoing))
	assert.False(t, AppointmentStatusConfirmed.CanTransitionTo(AppointmentStatusCompleted))
	assert.False(t, AppointmentStatusOnGoing.CanTransitionTo(AppointmentStatusCancelled))
}

func TestAppointmentStatus_IsTerminal(t *testing.T) {
	for _, s := range []AppointmentStatus{AppointmentStatusRejected, AppointmentStatusCancelled, AppointmentStatusExpired, AppointmentStatusNoShow, AppointmentStatusCompleted} {
		assert.True(t, s.IsTerminal(), s)
	}
	for _, s := range []AppointmentStatus{AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusOnGoing} {
		assert.False(t, s.IsTerminal(), s)
	}
	assert.False(t, AppointmentStatus("unknown").IsTerminal())
}

func TestNewAppointmentStatus(t *testing.T) {
	s, err := NewAppointmentStatus("on_going")
	assert.NoError(t, err)
	assert.Equal(t, AppointmentStatusOnGoing, s)

	_, err = NewAppointmentStatus("ongoing")
	assert.Error(t, err)
}
