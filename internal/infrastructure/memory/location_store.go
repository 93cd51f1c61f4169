package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/petmeet-backend/internal/domain/entity"
	"github.com/ignatzorin/petmeet-backend/internal/pkg/apperror"
)

type LocationStore struct {
	mu           sync.Mutex
	locations    map[uuid.UUID]*entity.Location
	appointments *AppointmentStore
}

// NewLocationStore принимает хранилище встреч, чтобы отвечать на FindRecentByUserID.
func NewLocationStore(appointments *AppointmentStore) *LocationStore {
	return &LocationStore{
		locations:    make(map[uuid.UUID]*entity.Location),
		appointments: appointments,
	}
}

func (s *LocationStore) Create(ctx context.Context, l *entity.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l.ExternalPlaceID != nil {
		for _, existing := range s.locations {
			if existing.ExternalPlaceID != nil && *existing.ExternalPlaceID == *l.ExternalPlaceID {
				return apperror.New(apperror.ErrCodeConflict, "место с таким external_place_id уже существует")
			}
		}
	}
	c := *l
	s.locations[l.ID] = &c
	return nil
}

func (s *LocationStore) FindByID(ctx context.Context, id uuid.UUID) (*entity.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locations[id]
	if !ok {
		return nil, apperror.ErrLocationNotFound
	}
	c := *l
	return &c, nil
}

func (s *LocationStore) FindByExternalPlaceID(ctx context.Context, externalPlaceID string) (*entity.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.locations {
		if l.ExternalPlaceID != nil && *l.ExternalPlaceID == externalPlaceID {
			c := *l
			return &c, nil
		}
	}
	return nil, nil
}

func (s *LocationStore) FindRecentByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.Location, error) {
	lastUsed := make(map[uuid.UUID]time.Time)
	for _, a := range s.appointments.All() {
		if a.LocationID == nil || !a.IsParticipant(userID) {
			continue
		}
		if at, ok := lastUsed[*a.LocationID]; !ok || a.AppointmentAt.After(at) {
			lastUsed[*a.LocationID] = a.AppointmentAt
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*entity.Location
	for id := range lastUsed {
		if l, ok := s.locations[id]; ok {
			c := *l
			result = append(result, &c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return lastUsed[result[i].ID].After(lastUsed[result[j].ID])
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Count возвращает количество сохранённых мест.
func (s *LocationStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locations)
}
