package appointment

import "github.com/ignatzorin/petmeet-backend/internal/domain/entity"

// Результаты операций. Каждый несёт только поля, относящиеся к своему действию.

type CreateAppointmentResult struct {
	Appointment     *entity.Appointment
	Location        *entity.Location
	LocationCreated bool
}

type RespondResult struct {
	Appointment *entity.Appointment
	Accepted    bool
}

type CounterOfferResult struct {
	Appointment            *entity.Appointment
	Location               *entity.Location
	RemainingCounterOffers int
}

type CancelResult struct {
	Appointment      *entity.Appointment
	LateCancellation bool
}

type CheckInResult struct {
	Appointment *entity.Appointment

	// DistanceMeters пустой, если к встрече не привязано место.
	DistanceMeters *float64
	BothCheckedIn  bool
}

type CompleteResult struct {
	Appointment *entity.Appointment
}

// AppointmentView - встреча для просмотра участником.
type AppointmentView struct {
	Appointment *entity.Appointment
	Location    *entity.Location

	// HasConflict выставляется только для ожидающей встречи, решение по которой за зрителем.
	HasConflict bool
}
