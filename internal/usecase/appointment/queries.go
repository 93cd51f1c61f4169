package appointment

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/petmeet-backend/internal/domain/entity"
	"github.com/ignatzorin/petmeet-backend/internal/domain/repository"
	"github.com/ignatzorin/petmeet-backend/internal/domain/valueobject"
	"github.com/ignatzorin/petmeet-backend/internal/pkg/apperror"
)

type viewBuilder struct {
	locations repository.LocationRepository
	checker   *ConflictChecker
}

func (b viewBuilder) build(ctx context.Context, a *entity.Appointment, viewerID uuid.UUID, cache map[uuid.UUID]*entity.Location) (*AppointmentView, error) {
	view := &AppointmentView{Appointment: a}

	if a.LocationID != nil {
		loc, ok := cache[*a.LocationID]
		if !ok {
			found, err := b.locations.FindByID(ctx, *a.LocationID)
			if err != nil && !apperror.IsNotFound(err) {
				return nil, err
			}
			loc = found
			cache[*a.LocationID] = loc
		}
		view.Location = loc
	}

	if a.IsPending() && a.HoldsDecision(viewerID) {
		conflict, err := b.checker.HasConflict(ctx, viewerID, a.AppointmentAt, &a.ID)
		if err != nil {
			return nil, err
		}
		view.HasConflict = conflict
	}
	return view, nil
}

func (b viewBuilder) buildAll(ctx context.Context, list []*entity.Appointment, viewerID uuid.UUID) ([]*AppointmentView, error) {
	cache := make(map[uuid.UUID]*entity.Location)
	views := make([]*AppointmentView, 0, len(list))
	for _, a := range list {
		if !a.IsParticipant(viewerID) {
			continue
		}
		view, err := b.build(ctx, a, viewerID, cache)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

type GetAppointmentUseCase struct {
	appointmentRepo repository.AppointmentRepository
	views           viewBuilder
}

func NewGetAppointmentUseCase(appointmentRepo repository.AppointmentRepository, locationRepo repository.LocationRepository, checker *ConflictChecker) *GetAppointmentUseCase {
	return &GetAppointmentUseCase{
		appointmentRepo: appointmentRepo,
		views:           viewBuilder{locations: locationRepo, checker: checker},
	}
}

func (uc *GetAppointmentUseCase) Execute(ctx context.Context, appointmentID, viewerID uuid.UUID) (*AppointmentView, error) {
	a, err := uc.appointmentRepo.FindByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !a.IsParticipant(viewerID) {
		return nil, apperror.ErrNotParticipant
	}
	return uc.views.build(ctx, a, viewerID, make(map[uuid.UUID]*entity.Location))
}

type ListMatchAppointmentsUseCase struct {
	appointmentRepo repository.AppointmentRepository
	matches         repository.MatchReader
	views           viewBuilder
}

func NewListMatchAppointmentsUseCase(
	appointmentRepo repository.AppointmentRepository,
	matches repository.MatchReader,
	locationRepo repository.LocationRepository,
	checker *ConflictChecker,
) *ListMatchAppointmentsUseCase {
	return &ListMatchAppointmentsUseCase{
		appointmentRepo: appointmentRepo,
		matches:         matches,
		views:           viewBuilder{locations: locationRepo, checker: checker},
	}
}

func (uc *ListMatchAppointmentsUseCase) Execute(ctx context.Context, matchID, viewerID uuid.UUID) ([]*AppointmentView, error) {
	if err := ensureMatchParticipant(ctx, uc.matches, matchID, viewerID); err != nil {
		return nil, err
	}
	list, err := uc.appointmentRepo.FindByMatchID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return uc.views.buildAll(ctx, list, viewerID)
}

type ListMyAppointmentsUseCase struct {
	appointmentRepo repository.AppointmentRepository
	views           viewBuilder
}

func NewListMyAppointmentsUseCase(appointmentRepo repository.AppointmentRepository, locationRepo repository.LocationRepository, checker *ConflictChecker) *ListMyAppointmentsUseCase {
	return &ListMyAppointmentsUseCase{
		appointmentRepo: appointmentRepo,
		views:           viewBuilder{locations: locationRepo, checker: checker},
	}
}

// Execute без статусов возвращает все встречи пользователя.
func (uc *ListMyAppointmentsUseCase) Execute(ctx context.Context, viewerID uuid.UUID, statuses []valueobject.AppointmentStatus) ([]*AppointmentView, error) {
	list, err := uc.appointmentRepo.FindByUserID(ctx, viewerID, statuses)
	if err != nil {
		return nil, err
	}
	return uc.views.buildAll(ctx, list, viewerID)
}
