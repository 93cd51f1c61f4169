package location_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/petmeet-backend/internal/clock"
	"github.com/ignatzorin/petmeet-backend/internal/domain/entity"
	"github.com/ignatzorin/petmeet-backend/internal/domain/valueobject"
	"github.com/ignatzorin/petmeet-backend/internal/infrastructure/memory"
	"github.com/ignatzorin/petmeet-backend/internal/pkg/apperror"
	"github.com/ignatzorin/petmeet-backend/internal/usecase/location"
)

var now = time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)

func validInput() location.CreateLocationInput {
	return location.CreateLocationInput{
		Name:            "Daan Forest Park",
		Address:         "No. 1, Section 2, Xinsheng S Rd",
		Latitude:        25.0300,
		Longitude:       121.5355,
		City:            "Taipei",
		District:        "Da'an",
		IsPetFriendly:   true,
		PlaceType:       "park",
		ExternalPlaceID: "gp-daan-1",
	}
}

func TestCreateLocation_CreatesNew(t *testing.T) {
	store := memory.NewLocationStore(memory.NewAppointmentStore())
	uc := location.NewCreateLocationUseCase(store, clock.NewManual(now))

	result, err := uc.Execute(context.Background(), validInput())
	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.Equal(t, "Daan Forest Park", result.Location.Name)
	require.NotNil(t, result.Location.ExternalPlaceID)
	assert.Equal(t, "gp-daan-1", *result.Location.ExternalPlaceID)
	assert.Equal(t, 1, store.Count())
}

func TestCreateLocation_ReturnsExistingByExternalPlaceID(t *testing.T) {
	store := memory.NewLocationStore(memory.NewAppointmentStore())
	uc := location.NewCreateLocationUseCase(store, clock.NewManual(now))

	first, err := uc.Execute(context.Background(), validInput())
	require.NoError(t, err)

	input := validInput()
	input.Name = "Другое название"
	second, err := uc.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.False(t, second.Created)
	assert.Equal(t, first.Location.ID, second.Location.ID)
	assert.Equal(t, "Daan Forest Park", second.Location.Name)
	assert.Equal(t, 1, store.Count())
}

func TestCreateLocation_WithoutExternalIDAlwaysCreates(t *testing.T) {
	store := memory.NewLocationStore(memory.NewAppointmentStore())
	uc := location.NewCreateLocationUseCase(store, clock.NewManual(now))

	input := validInput()
	input.ExternalPlaceID = "  "
	_, err := uc.Execute(context.Background(), input)
	require.NoError(t, err)
	_, err = uc.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, 2, store.Count())
}

func TestCreateLocation_RejectsInvalidCoordinates(t *testing.T) {
	store := memory.NewLocationStore(memory.NewAppointmentStore())
	uc := location.NewCreateLocationUseCase(store, clock.NewManual(now))

	for _, tc := range []struct {
		name     string
		lat, lng float64
	}{
		{"latitude too high", 90.5, 121},
		{"latitude too low", -91, 121},
		{"longitude too high", 25, 180.1},
		{"longitude too low", 25, -181},
	} {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			input.Latitude, input.Longitude = tc.lat, tc.lng
			_, err := uc.Execute(context.Background(), input)
			assert.True(t, apperror.IsValidation(err))
		})
	}
	assert.Equal(t, 0, store.Count())
}

type mockLocationRepository struct {
	mock.Mock
}

func (m *mockLocationRepository) Create(ctx context.Context, l *entity.Location) error {
	return m.Called(ctx, l).Error(0)
}

func (m *mockLocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Location, error) {
	args := m.Called(ctx, id)
	loc, _ := args.Get(0).(*entity.Location)
	return loc, args.Error(1)
}

func (m *mockLocationRepository) FindByExternalPlaceID(ctx context.Context, externalPlaceID string) (*entity.Location, error) {
	args := m.Called(ctx, externalPlaceID)
	loc, _ := args.Get(0).(*entity.Location)
	return loc, args.Error(1)
}

func (m *mockLocationRepository) FindRecentByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.Location, error) {
	args := m.Called(ctx, userID, limit)
	locs, _ := args.Get(0).([]*entity.Location)
	return locs, args.Error(1)
}

func TestCreateLocation_ConcurrentInsertResolvesToExisting(t *testing.T) {
	repo := new(mockLocationRepository)
	uc := location.NewCreateLocationUseCase(repo, clock.NewManual(now))

	ext := "gp-daan-1"
	winner := &entity.Location{ID: uuid.New(), Name: "Daan Forest Park", ExternalPlaceID: &ext}

	repo.On("FindByExternalPlaceID", mock.Anything, ext).Return(nil, nil).Once()
	repo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Location")).
		Return(apperror.New(apperror.ErrCodeConflict, "duplicate")).Once()
	repo.On("FindByExternalPlaceID", mock.Anything, ext).Return(winner, nil).Once()

	result, err := uc.Execute(context.Background(), validInput())
	require.NoError(t, err)
	assert.False(t, result.Created)
	assert.Equal(t, winner.ID, result.Location.ID)
	repo.AssertExpectations(t)
}

func TestGetLocation_NotFound(t *testing.T) {
	uc := location.NewGetLocationUseCase(memory.NewLocationStore(memory.NewAppointmentStore()))

	_, err := uc.Execute(context.Background(), uuid.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestGetRecentLocations_ClampsLimit(t *testing.T) {
	repo := new(mockLocationRepository)
	uc := location.NewGetRecentLocationsUseCase(repo)
	userID := uuid.New()

	repo.On("FindRecentByUserID", mock.Anything, userID, location.DefaultRecentLimit).Return([]*entity.Location{}, nil).Once()
	repo.On("FindRecentByUserID", mock.Anything, userID, location.MaxRecentLimit).Return([]*entity.Location{}, nil).Once()

	_, err := uc.Execute(context.Background(), userID, 0)
	require.NoError(t, err)
	_, err = uc.Execute(context.Background(), userID, 500)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestGetRecentLocations_MostRecentFirstAndDistinct(t *testing.T) {
	appointments := memory.NewAppointmentStore()
	store := memory.NewLocationStore(appointments)
	createUC := location.NewCreateLocationUseCase(store, clock.NewManual(now))
	uc := location.NewGetRecentLocationsUseCase(store)

	park, err := createUC.Execute(context.Background(), validInput())
	require.NoError(t, err)
	cafeInput := validInput()
	cafeInput.Name = "Dog Cafe"
	cafeInput.ExternalPlaceID = "gp-cafe"
	cafe, err := createUC.Execute(context.Background(), cafeInput)
	require.NoError(t, err)

	userID := uuid.New()
	put := func(locID uuid.UUID, at time.Time) {
		id := locID
		appointments.Put(&entity.Appointment{
			ID:            uuid.New(),
			MatchID:       uuid.New(),
			InviterUserID: userID,
			InviteeUserID: uuid.New(),
			AppointmentAt: at,
			LocationID:    &id,
			Status:        valueobject.AppointmentStatusCompleted,
			CreatedAt:     now,
		})
	}
	put(park.Location.ID, now.Add(-72*time.Hour))
	put(cafe.Location.ID, now.Add(-48*time.Hour))
	put(park.Location.ID, now.Add(-24*time.Hour))

	locs, err := uc.Execute(context.Background(), userID, 10)
	require.NoError(t, err)
	require.Len(t, locs, 2)
	assert.Equal(t, park.Location.ID, locs[0].ID)
	assert.Equal(t, cafe.Location.ID, locs[1].ID)

	others, err := uc.Execute(context.Background(), uuid.New(), 10)
	require.NoError(t, err)
	assert.Empty(t, others)
}
