package valueobject

import "github.com/ignatzorin/petmeet-backend/internal/pkg/apperror"

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusOnGoing   AppointmentStatus = "on_going"
	AppointmentStatusRejected  AppointmentStatus = "rejected"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusExpired   AppointmentStatus = "expired"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusPending:   {AppointmentStatusConfirmed, AppointmentStatusRejected, AppointmentStatusCancelled, AppointmentStatusExpired},
	AppointmentStatusConfirmed: {AppointmentStatusOnGoing, AppointmentStatusCancelled, AppointmentStatusNoShow},
	AppointmentStatusOnGoing:   {AppointmentStatusCompleted, AppointmentStatusNoShow},
	AppointmentStatusRejected:  {},
	AppointmentStatusCancelled: {},
	AppointmentStatusExpired:   {},
	AppointmentStatusNoShow:    {},
	AppointmentStatusCompleted: {},
}

// ActiveAppointmentStatuses - статусы, которые блокируют создание новой встречи по тому же мэтчу.
var ActiveAppointmentStatuses = []AppointmentStatus{AppointmentStatusPending, AppointmentStatusConfirmed}

// LiveAppointmentStatuses - статусы, участвующие в проверке пересечений по времени.
var LiveAppointmentStatuses = []AppointmentStatus{AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusOnGoing}

func (s AppointmentStatus) IsValid() bool {
	_, ok := appointmentTransitions[s]
	return ok
}

func (s AppointmentStatus) IsTerminal() bool {
	allowed, ok := appointmentTransitions[s]
	return ok && len(allowed) == 0
}

func (s AppointmentStatus) CanTransitionTo(newStatus AppointmentStatus) bool {
	allowed, ok := appointmentTransitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == newStatus {
			return true
		}
	}
	return false
}

func NewAppointmentStatus(status string) (AppointmentStatus, error) {
	s := AppointmentStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус встречи")
	}
	return s, nil
}

type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusAccepted  MatchStatus = "accepted"
	MatchStatusRejected  MatchStatus = "rejected"
	MatchStatusUnmatched MatchStatus = "unmatched"
)

func (s MatchStatus) IsValid() bool {
	switch s {
	case MatchStatusPending, MatchStatusAccepted, MatchStatusRejected, MatchStatusUnmatched:
		return true
	}
	return false
}

func NewMatchStatus(status string) (MatchStatus, error) {
	s := MatchStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус мэтча")
	}
	return s, nil
}
