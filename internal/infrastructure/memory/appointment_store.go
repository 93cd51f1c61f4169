// Package memory содержит потокобезопасные in-memory реализации репозиториев.
// Используется в тестах use-case слоя, свипера и HTTP хэндлеров.
package memory

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/petmeet-backend/internal/domain/entity"
	"github.com/ignatzorin/petmeet-backend/internal/domain/repository"
	"github.com/ignatzorin/petmeet-backend/internal/domain/valueobject"
	"github.com/ignatzorin/petmeet-backend/internal/pkg/apperror"
)

type AppointmentStore struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]*entity.Appointment

	// FailUpdate, если задан, возвращается из UpdateLocked для указанных встреч.
	FailUpdate map[uuid.UUID]error
}

func NewAppointmentStore() *AppointmentStore {
	return &AppointmentStore{
		appointments: make(map[uuid.UUID]*entity.Appointment),
		FailUpdate:   make(map[uuid.UUID]error),
	}
}

func (s *AppointmentStore) Create(ctx context.Context, a *entity.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appointments[a.ID] = cloneAppointment(a)
	return nil
}

// Put кладёт встречу как есть, для подготовки данных в тестах.
func (s *AppointmentStore) Put(a *entity.Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appointments[a.ID] = cloneAppointment(a)
}

func (s *AppointmentStore) FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok {
		return nil, apperror.ErrAppointmentNotFound
	}
	return cloneAppointment(a), nil
}

func (s *AppointmentStore) FindByMatchID(ctx context.Context, matchID uuid.UUID) ([]*entity.Appointment, error) {
	return s.filter(func(a *entity.Appointment) bool { return a.MatchID == matchID }, byCreatedDesc), nil
}

func (s *AppointmentStore) FindByUserID(ctx context.Context, userID uuid.UUID, statuses []valueobject.AppointmentStatus) ([]*entity.Appointment, error) {
	return s.filter(func(a *entity.Appointment) bool {
		return a.IsParticipant(userID) && statusIn(a.Status, statuses)
	}, byAppointmentAtDesc), nil
}

func (s *AppointmentStore) ExistsForMatch(ctx context.Context, matchID uuid.UUID, statuses []valueobject.AppointmentStatus) (bool, error) {
	found := s.filter(func(a *entity.Appointment) bool {
		return a.MatchID == matchID && statusIn(a.Status, statuses)
	}, nil)
	return len(found) > 0, nil
}

func (s *AppointmentStore) FindByUserInRange(ctx context.Context, userID uuid.UUID, from, to time.Time, statuses []valueobject.AppointmentStatus) ([]*entity.Appointment, error) {
	return s.filter(func(a *entity.Appointment) bool {
		return a.IsParticipant(userID) && statusIn(a.Status, statuses) &&
			!a.AppointmentAt.Before(from) && !a.AppointmentAt.After(to)
	}, byAppointmentAtAsc), nil
}

func (s *AppointmentStore) FindDue(ctx context.Context, status valueobject.AppointmentStatus, before time.Time, after *repository.DueCursor, limit int) ([]*entity.Appointment, error) {
	found := s.filter(func(a *entity.Appointment) bool {
		return a.Status == status && !a.AppointmentAt.After(before) && (after == nil || dueAfter(a, after))
	}, byDueOrder)
	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}
	return found, nil
}

func (s *AppointmentStore) UpdateLocked(ctx context.Context, id uuid.UUID, fn func(*entity.Appointment) error) (*entity.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.FailUpdate[id]; err != nil {
		return nil, err
	}

	current, ok := s.appointments[id]
	if !ok {
		return nil, apperror.ErrAppointmentNotFound
	}

	working := cloneAppointment(current)
	if err := fn(working); err != nil {
		return nil, err
	}
	working.Version++
	s.appointments[id] = working
	return cloneAppointment(working), nil
}

// All возвращает копии всех встреч.
func (s *AppointmentStore) All() []*entity.Appointment {
	return s.filter(func(*entity.Appointment) bool { return true }, byCreatedDesc)
}

func (s *AppointmentStore) filter(keep func(*entity.Appointment) bool, less func(a, b *entity.Appointment) bool) []*entity.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*entity.Appointment
	for _, a := range s.appointments {
		if keep(a) {
			result = append(result, cloneAppointment(a))
		}
	}
	if less != nil {
		sort.SliceStable(result, func(i, j int) bool { return less(result[i], result[j]) })
	}
	return result
}

func byCreatedDesc(a, b *entity.Appointment) bool {
	return a.CreatedAt.After(b.CreatedAt)
}

func byAppointmentAtDesc(a, b *entity.Appointment) bool {
	return a.AppointmentAt.After(b.AppointmentAt)
}

func byAppointmentAtAsc(a, b *entity.Appointment) bool {
	return a.AppointmentAt.Before(b.AppointmentAt)
}

// byDueOrder совпадает с ORDER BY appointment_at, id в Postgres: uuid сравнивается побайтно.
func byDueOrder(a, b *entity.Appointment) bool {
	if !a.AppointmentAt.Equal(b.AppointmentAt) {
		return a.AppointmentAt.Before(b.AppointmentAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

func dueAfter(a *entity.Appointment, cursor *repository.DueCursor) bool {
	if !a.AppointmentAt.Equal(cursor.At) {
		return a.AppointmentAt.After(cursor.At)
	}
	return bytes.Compare(a.ID[:], cursor.ID[:]) > 0
}

func statusIn(status valueobject.AppointmentStatus, statuses []valueobject.AppointmentStatus) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func cloneAppointment(a *entity.Appointment) *entity.Appointment {
	c := *a
	c.LocationID = cloneUUID(a.LocationID)
	c.CurrentDecisionUserID = cloneUUID(a.CurrentDecisionUserID)
	c.CancelledBy = cloneUUID(a.CancelledBy)
	c.InviterCheckedInAt = cloneTime(a.InviterCheckedInAt)
	c.InviteeCheckedInAt = cloneTime(a.InviteeCheckedInAt)
	if a.CancelReason != nil {
		reason := *a.CancelReason
		c.CancelReason = &reason
	}
	return &c
}

func cloneUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
