package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/petmeet-backend/internal/domain/valueobject"
	"github.com/ignatzorin/petmeet-backend/internal/geo"
	"github.com/ignatzorin/petmeet-backend/internal/pkg/apperror"
)

const (
	MinAdvanceNotice       = 2 * time.Hour
	MaxCounterOffers       = 3
	CheckInOpensBefore     = 30 * time.Minute
	CheckInClosesAfter     = 90 * time.Minute
	CheckInRadiusMeters    = 100.0
	NoShowGrace            = 90 * time.Minute
	LateCancellationMarker = "[late cancellation]"
)

type Appointment struct {
	ID                    uuid.UUID
	MatchID               uuid.UUID
	InviterUserID         uuid.UUID
	InviterPetID          uuid.UUID
	InviteeUserID         uuid.UUID
	InviteePetID          uuid.UUID
	AppointmentAt         time.Time
	LocationID            *uuid.UUID
	Status                valueobject.AppointmentStatus
	CurrentDecisionUserID *uuid.UUID
	CounterOfferCount     int
	InviterCheckedIn      bool
	InviterCheckedInAt    *time.Time
	InviteeCheckedIn      bool
	InviteeCheckedInAt    *time.Time
	CancelledBy           *uuid.UUID
	CancelReason          *string
	Version               int
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

type NewAppointmentParams struct {
	MatchID       uuid.UUID
	InviterUserID uuid.UUID
	InviterPetID  uuid.UUID
	InviteeUserID uuid.UUID
	InviteePetID  uuid.UUID
	AppointmentAt time.Time
	LocationID    *uuid.UUID
}

func NewAppointment(p NewAppointmentParams, now time.Time) (*Appointment, error) {
	if p.InviterPetID == p.InviteePetID {
		return nil, apperror.New(apperror.ErrCodeValidation, "нельзя назначить встречу питомцу с самим собой")
	}
	if p.InviterUserID == p.InviteeUserID {
		return nil, apperror.New(apperror.ErrCodeValidation, "участники встречи должны быть разными пользователями")
	}
	if err := ValidateAdvanceNotice(p.AppointmentAt, now); err != nil {
		return nil, err
	}

	invitee := p.InviteeUserID
	return &Appointment{
		ID:                    uuid.New(),
		MatchID:               p.MatchID,
		InviterUserID:         p.InviterUserID,
		InviterPetID:          p.InviterPetID,
		InviteeUserID:         p.InviteeUserID,
		InviteePetID:          p.InviteePetID,
		AppointmentAt:         p.AppointmentAt,
		LocationID:            p.LocationID,
		Status:                valueobject.AppointmentStatusPending,
		CurrentDecisionUserID: &invitee,
		CreatedAt:             now,
		UpdatedAt:             now,
	}, nil
}

// ValidateAdvanceNotice требует, чтобы встреча была не раньше чем через MinAdvanceNotice.
func ValidateAdvanceNotice(at, now time.Time) error {
	if at.Before(now.Add(MinAdvanceNotice)) {
		return apperror.New(apperror.ErrCodeValidation, "встречу можно назначить не раньше чем за 2 часа")
	}
	return nil
}

func (a *Appointment) IsParticipant(userID uuid.UUID) bool {
	return a.InviterUserID == userID || a.InviteeUserID == userID
}

// OtherParty возвращает второго участника. Вызывать только для участника.
func (a *Appointment) OtherParty(userID uuid.UUID) uuid.UUID {
	if a.InviterUserID == userID {
		return a.InviteeUserID
	}
	return a.InviterUserID
}

func (a *Appointment) HoldsDecision(userID uuid.UUID) bool {
	return a.CurrentDecisionUserID != nil && *a.CurrentDecisionUserID == userID
}

func (a *Appointment) IsPending() bool {
	return a.Status == valueobject.AppointmentStatusPending
}

func (a *Appointment) BothCheckedIn() bool {
	return a.InviterCheckedIn && a.InviteeCheckedIn
}

func (a *Appointment) Accept(userID uuid.UUID, now time.Time) error {
	if err := a.CheckDecisionHolder(userID); err != nil {
		return err
	}
	if err := a.transition(valueobject.AppointmentStatusConfirmed, now); err != nil {
		return err
	}
	a.CurrentDecisionUserID = nil
	return nil
}

func (a *Appointment) Decline(userID uuid.UUID, reason string, now time.Time) error {
	if err := a.CheckDecisionHolder(userID); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return apperror.New(apperror.ErrCodeValidation, "укажите причину отказа")
	}
	if err := a.transition(valueobject.AppointmentStatusRejected, now); err != nil {
		return err
	}
	a.CurrentDecisionUserID = nil
	a.CancelledBy = &userID
	a.CancelReason = &reason
	return nil
}

// CheckCounterOffer проверяет право решения, лимит предложений и новое время.
// Место здесь не учитывается.
func (a *Appointment) CheckCounterOffer(userID uuid.UUID, newAt *time.Time, now time.Time) error {
	if err := a.CheckDecisionHolder(userID); err != nil {
		return err
	}
	if a.CounterOfferCount >= MaxCounterOffers {
		return apperror.New(apperror.ErrCodeInvalidState, "исчерпан лимит встречных предложений")
	}
	if newAt != nil && !newAt.Equal(a.AppointmentAt) {
		return ValidateAdvanceNotice(*newAt, now)
	}
	return nil
}

// CounterOffer меняет время и/или место и передаёт право решения другому участнику.
func (a *Appointment) CounterOffer(userID uuid.UUID, newAt *time.Time, newLocationID *uuid.UUID, now time.Time) error {
	if err := a.CheckCounterOffer(userID, newAt, now); err != nil {
		return err
	}

	timeChanged := newAt != nil && !newAt.Equal(a.AppointmentAt)
	locationChanged := newLocationID != nil && (a.LocationID == nil || *a.LocationID != *newLocationID)
	if !timeChanged && !locationChanged {
		return apperror.New(apperror.ErrCodeValidation, "встречное предложение должно менять время или место")
	}

	if timeChanged {
		a.AppointmentAt = *newAt
	}
	if locationChanged {
		id := *newLocationID
		a.LocationID = &id
	}

	next := a.OtherParty(userID)
	a.CurrentDecisionUserID = &next
	a.CounterOfferCount++
	a.UpdatedAt = now
	return nil
}

// Cancel отменяет встречу. Возвращает true, если отмена поздняя (меньше чем за 2 часа).
func (a *Appointment) Cancel(userID uuid.UUID, reason string, now time.Time) (bool, error) {
	if !a.IsParticipant(userID) {
		return false, apperror.ErrNotParticipant
	}
	if err := a.transition(valueobject.AppointmentStatusCancelled, now); err != nil {
		return false, err
	}

	reason = strings.TrimSpace(reason)
	late := !a.AppointmentAt.After(now.Add(MinAdvanceNotice))
	if late {
		reason = strings.TrimSpace(LateCancellationMarker + " " + reason)
	}

	a.CurrentDecisionUserID = nil
	a.CancelledBy = &userID
	a.CancelReason = &reason
	return late, nil
}

// CheckInWindow возвращает интервал, в котором разрешена отметка о прибытии.
func (a *Appointment) CheckInWindow() (time.Time, time.Time) {
	return a.AppointmentAt.Add(-CheckInOpensBefore), a.AppointmentAt.Add(CheckInClosesAfter)
}

// CheckIn отмечает прибытие участника. Если к встрече привязано место, проверяется
// расстояние до него. Возвращает расстояние в метрах, если оно вычислялось.
func (a *Appointment) CheckIn(userID uuid.UUID, at geo.Point, location *Location, now time.Time) (*float64, error) {
	if !a.IsParticipant(userID) {
		return nil, apperror.ErrNotParticipant
	}
	if a.Status != valueobject.AppointmentStatusConfirmed && a.Status != valueobject.AppointmentStatusOnGoing {
		return nil, apperror.Newf(apperror.ErrCodeInvalidState, "отметка невозможна в статусе %s", a.Status)
	}

	opens, closes := a.CheckInWindow()
	if now.Before(opens) || now.After(closes) {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "отметка доступна за 30 минут до встречи и в течение 90 минут после начала")
	}

	if (userID == a.InviterUserID && a.InviterCheckedIn) || (userID == a.InviteeUserID && a.InviteeCheckedIn) {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "вы уже отметились на этой встрече")
	}

	if !at.Valid() {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректные координаты")
	}

	var distance *float64
	if location != nil {
		d := geo.Distance(at, location.Point())
		distance = &d
		if d > CheckInRadiusMeters {
			return distance, apperror.Newf(apperror.ErrCodeValidation, "вы находитесь слишком далеко от места встречи (%.0f м)", d)
		}
	}

	checkedAt := now
	if userID == a.InviterUserID {
		a.InviterCheckedIn = true
		a.InviterCheckedInAt = &checkedAt
	} else {
		a.InviteeCheckedIn = true
		a.InviteeCheckedInAt = &checkedAt
	}
	a.UpdatedAt = now

	if a.BothCheckedIn() && a.Status == valueobject.AppointmentStatusConfirmed {
		if err := a.transition(valueobject.AppointmentStatusOnGoing, now); err != nil {
			return distance, err
		}
	}
	return distance, nil
}

func (a *Appointment) Complete(userID uuid.UUID, now time.Time) error {
	if !a.IsParticipant(userID) {
		return apperror.ErrNotParticipant
	}
	if a.Status != valueobject.AppointmentStatusOnGoing {
		return apperror.Newf(apperror.ErrCodeInvalidState, "завершить можно только идущую встречу, текущий статус %s", a.Status)
	}
	if now.Before(a.AppointmentAt) {
		return apperror.New(apperror.ErrCodeInvalidState, "встреча ещё не началась")
	}
	return a.transition(valueobject.AppointmentStatusCompleted, now)
}

// Expire вызывается свипером для неподтверждённой встречи, время которой наступило.
func (a *Appointment) Expire(now time.Time) error {
	if a.Status != valueobject.AppointmentStatusPending || a.AppointmentAt.After(now) {
		return apperror.New(apperror.ErrCodeInvalidState, "встреча не подлежит истечению")
	}
	if err := a.transition(valueobject.AppointmentStatusExpired, now); err != nil {
		return err
	}
	a.CurrentDecisionUserID = nil
	return nil
}

// MarkNoShow вызывается свипером, если подтверждённая встреча прошла без отметок.
func (a *Appointment) MarkNoShow(now time.Time) error {
	if a.Status != valueobject.AppointmentStatusConfirmed || a.AppointmentAt.After(now.Add(-NoShowGrace)) {
		return apperror.New(apperror.ErrCodeInvalidState, "встреча не подлежит отметке о неявке")
	}
	return a.transition(valueobject.AppointmentStatusNoShow, now)
}

// AutoComplete вызывается свипером для идущей встречи, которую участники не завершили сами.
func (a *Appointment) AutoComplete(now time.Time) error {
	if a.Status != valueobject.AppointmentStatusOnGoing || a.AppointmentAt.After(now.Add(-NoShowGrace)) {
		return apperror.New(apperror.ErrCodeInvalidState, "встреча не подлежит автозавершению")
	}
	return a.transition(valueobject.AppointmentStatusCompleted, now)
}

// CheckDecisionHolder: участник, статус pending, право решения у него.
func (a *Appointment) CheckDecisionHolder(userID uuid.UUID) error {
	if !a.IsParticipant(userID) {
		return apperror.ErrNotParticipant
	}
	if !a.IsPending() {
		return apperror.Newf(apperror.ErrCodeInvalidState, "встреча уже не ожидает решения, текущий статус %s", a.Status)
	}
	if !a.HoldsDecision(userID) {
		return apperror.ErrNotDecisionHolder
	}
	return nil
}

func (a *Appointment) transition(to valueobject.AppointmentStatus, now time.Time) error {
	if !a.Status.CanTransitionTo(to) {
		return apperror.Newf(apperror.ErrCodeInvalidState, "невозможно перевести встречу из статуса %s в %s", a.Status, to)
	}
	a.Status = to
	a.UpdatedAt = now
	return nil
}
