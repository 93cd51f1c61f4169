package appointment_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/petmeet-backend/internal/domain/valueobject"
	"github.com/ignatzorin/petmeet-backend/internal/pkg/apperror"
	"github.com/ignatzorin/petmeet-backend/internal/usecase/appointment"
)

func TestEligibilityGate_Passes(t *testing.T) {
	f := newFixture(t)

	result, err := f.gate.ValidatePreConditions(f.ctx, f.match.ID, f.inviterPet.ID, f.inviteePet.ID)
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Empty(t, result.Reason)
	assert.Equal(t, f.inviterID, result.InviterUserID)
	assert.Equal(t, f.inviteeID, result.InviteeUserID)
}

func TestEligibilityGate_ResolvesRolesFromInviterPet(t *testing.T) {
	f := newFixture(t)

	result, err := f.gate.ValidatePreConditions(f.ctx, f.match.ID, f.inviteePet.ID, f.inviterPet.ID)
	require.NoError(t, err)
	require.True(t, result.OK)
	assert.Equal(t, f.inviteeID, result.InviterUserID)
	assert.Equal(t, f.inviterID, result.InviteeUserID)
}

func TestEligibilityGate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(f *fixture) (matchID, inviterPet, inviteePet uuid.UUID)
		code    appointment.EligibilityCode
	}{
		{
			name: "same pet",
			prepare: func(f *fixture) (uuid.UUID, uuid.UUID, uuid.UUID) {
				return f.match.ID, f.inviterPet.ID, f.inviterPet.ID
			},
			code: appointment.EligibilitySamePet,
		},
		{
			name: "unknown match",
			prepare: func(f *fixture) (uuid.UUID, uuid.UUID, uuid.UUID) {
				return uuid.New(), f.inviterPet.ID, f.inviteePet.ID
			},
			code: appointment.EligibilityMatchNotFound,
		},
		{
			name: "match not accepted",
			prepare: func(f *fixture) (uuid.UUID, uuid.UUID, uuid.UUID) {
				m := *f.match
				m.Status = valueobject.MatchStatusPending
				f.matches.Put(&m)
				return f.match.ID, f.inviterPet.ID, f.inviteePet.ID
			},
			code: appointment.EligibilityMatchNotAccepted,
		},
		{
			name: "pet from another match",
			prepare: func(f *fixture) (uuid.UUID, uuid.UUID, uuid.UUID) {
				return f.match.ID, f.inviterPet.ID, uuid.New()
			},
			code: appointment.EligibilityPetNotInMatch,
		},
		{
			name: "pending appointment exists",
			prepare: func(f *fixture) (uuid.UUID, uuid.UUID, uuid.UUID) {
				f.createPending()
				return f.match.ID, f.inviterPet.ID, f.inviteePet.ID
			},
			code: appointment.EligibilityActiveAppointment,
		},
		{
			name: "confirmed appointment exists",
			prepare: func(f *fixture) (uuid.UUID, uuid.UUID, uuid.UUID) {
				f.createConfirmed()
				return f.match.ID, f.inviterPet.ID, f.inviteePet.ID
			},
			code: appointment.EligibilityActiveAppointment,
		},
		{
			name: "one participant below per-person minimum",
			prepare: func(f *fixture) (uuid.UUID, uuid.UUID, uuid.UUID) {
				f.messages.Set(f.match.ID, f.inviterID, 2)
				f.messages.Set(f.match.ID, f.inviteeID, 20)
				return f.match.ID, f.inviterPet.ID, f.inviteePet.ID
			},
			code: appointment.EligibilityNotEnoughMessages,
		},
		{
			name: "total below minimum",
			prepare: func(f *fixture) (uuid.UUID, uuid.UUID, uuid.UUID) {
				f.messages.Set(f.match.ID, f.inviterID, 4)
				f.messages.Set(f.match.ID, f.inviteeID, 5)
				return f.match.ID, f.inviterPet.ID, f.inviteePet.ID
			},
			code: appointment.EligibilityNotEnoughMessages,
		},
		{
			name: "pet without photo",
			prepare: func(f *fixture) (uuid.UUID, uuid.UUID, uuid.UUID) {
				p := *f.inviteePet
				p.PhotoCount = 0
				f.pets.Put(&p)
				return f.match.ID, f.inviterPet.ID, f.inviteePet.ID
			},
			code: appointment.EligibilityIncompleteProfile,
		},
		{
			name: "pet without species and breed",
			prepare: func(f *fixture) (uuid.UUID, uuid.UUID, uuid.UUID) {
				p := *f.inviterPet
				p.Species, p.Breed = "", ""
				f.pets.Put(&p)
				return f.match.ID, f.inviterPet.ID, f.inviteePet.ID
			},
			code: appointment.EligibilityIncompleteProfile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			matchID, inviterPet, inviteePet := tt.prepare(f)

			result, err := f.gate.ValidatePreConditions(f.ctx, matchID, inviterPet, inviteePet)
			require.NoError(t, err)
			assert.False(t, result.OK)
			assert.Equal(t, tt.code, result.Code)
			assert.NotEmpty(t, result.Reason)
		})
	}
}

func TestEligibilityGate_MessageThresholdBoundary(t *testing.T) {
	f := newFixture(t)
	f.messages.Set(f.match.ID, f.inviterID, 3)
	f.messages.Set(f.match.ID, f.inviteeID, 7)

	result, err := f.gate.ValidatePreConditions(f.ctx, f.match.ID, f.inviterPet.ID, f.inviteePet.ID)
	require.NoError(t, err)
	assert.True(t, result.OK)
}

func TestEligibilityGate_ShortCircuitsOnFirstFailure(t *testing.T) {
	f := newFixture(t)
	m := *f.match
	m.Status = valueobject.MatchStatusRejected
	f.matches.Put(&m)
	f.messages.Set(f.match.ID, f.inviterID, 0)

	result, err := f.gate.ValidatePreConditions(f.ctx, f.match.ID, f.inviterPet.ID, f.inviteePet.ID)
	require.NoError(t, err)
	assert.Equal(t, appointment.EligibilityMatchNotAccepted, result.Code)
}

func TestEligibilityGate_TerminalAppointmentsDoNotBlock(t *testing.T) {
	f := newFixture(t)
	a := f.createPending()
	_, err := f.cancel.Execute(f.ctx, appointment.CancelInput{AppointmentID: a.ID, ActorID: f.inviterID, Reason: "передумали"})
	require.NoError(t, err)

	result, err := f.gate.ValidatePreConditions(f.ctx, f.match.ID, f.inviterPet.ID, f.inviteePet.ID)
	require.NoError(t, err)
	assert.True(t, result.OK)
}

func TestCheckEligibility_RequiresMatchParticipant(t *testing.T) {
	f := newFixture(t)

	_, err := f.eligible.Execute(f.ctx, appointment.CheckEligibilityInput{
		MatchID:      f.match.ID,
		ActorID:      uuid.New(),
		InviterPetID: f.inviterPet.ID,
		InviteePetID: f.inviteePet.ID,
	})
	assert.True(t, apperror.IsForbidden(err))

	result, err := f.eligible.Execute(f.ctx, appointment.CheckEligibilityInput{
		MatchID:      f.match.ID,
		ActorID:      f.inviteeID,
		InviterPetID: f.inviterPet.ID,
		InviteePetID: f.inviteePet.ID,
	})
	require.NoError(t, err)
	assert.True(t, result.OK)
}

func TestEligibilityGate_DoesNotMutate(t *testing.T) {
	f := newFixture(t)
	f.putAppointment(f.inviterID, baseNow.Add(5*time.Hour), valueobject.AppointmentStatusPending)
	before := f.appointments.All()

	_, err := f.gate.ValidatePreConditions(f.ctx, f.match.ID, f.inviterPet.ID, f.inviteePet.ID)
	require.NoError(t, err)
	assert.Equal(t, before, f.appointments.All())
}
