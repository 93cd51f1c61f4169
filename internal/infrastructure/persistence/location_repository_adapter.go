package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/petmeet-backend/internal/domain/entity"
	"github.com/ignatzorin/petmeet-backend/internal/pkg/apperror"
	"github.com/ignatzorin/petmeet-backend/internal/repository/common"
)

const locationColumns = `
	id, name, address, latitude, longitude, city, district,
	is_pet_friendly, place_type, external_place_id, created_by, created_at
`

type LocationRepositoryAdapter struct {
	db *sqlx.DB
}

func NewLocationRepositoryAdapter(db *sqlx.DB) *LocationRepositoryAdapter {
	return &LocationRepositoryAdapter{db: db}
}

// Create возвращает CONFLICT, если место с таким external_place_id уже сохранено.
func (r *LocationRepositoryAdapter) Create(ctx context.Context, l *entity.Location) error {
	query := `
		INSERT INTO locations (` + locationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		l.ID, l.Name, l.Address, l.Latitude, l.Longitude, l.City, l.District,
		l.IsPetFriendly, l.PlaceType, toNullString(l.ExternalPlaceID), toNullUUID(l.CreatedBy), l.CreatedAt,
	)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return apperror.Wrap(err, apperror.ErrCodeConflict, "место с таким идентификатором уже существует")
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить место")
	}
	return nil
}

func (r *LocationRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Location, error) {
	var row locationRow
	query := `SELECT ` + locationColumns + ` FROM locations WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrLocationNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить место")
	}
	return row.toEntity(), nil
}

func (r *LocationRepositoryAdapter) FindByExternalPlaceID(ctx context.Context, externalPlaceID string) (*entity.Location, error) {
	var row locationRow
	query := `SELECT ` + locationColumns + ` FROM locations WHERE external_place_id = $1`
	if err := r.db.GetContext(ctx, &row, query, externalPlaceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить место")
	}
	return row.toEntity(), nil
}

// FindRecentByUserID - места из встреч пользователя, свежие первыми, без повторов.
func (r *LocationRepositoryAdapter) FindRecentByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.Location, error) {
	var rows []locationRow
	query := `
		SELECT l.id, l.name, l.address, l.latitude, l.longitude, l.city, l.district,
		l.is_pet_friendly, l.place_type, l.external_place_id, l.created_by, l.created_at
		FROM locations l
		JOIN (
			SELECT location_id, MAX(appointment_at) AS last_at
			FROM appointments
			WHERE location_id IS NOT NULL AND (inviter_user_id = $1 OR invitee_user_id = $1)
			GROUP BY location_id
		) recent ON recent.location_id = l.id
		ORDER BY recent.last_at DESC
		LIMIT $2
	`
	if err := r.db.SelectContext(ctx, &rows, query, userID, limit); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить недавние места")
	}

	result := make([]*entity.Location, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

type locationRow struct {
	ID              uuid.UUID      `db:"id"`
	Name            string         `db:"name"`
	Address         string         `db:"address"`
	Latitude        float64        `db:"latitude"`
	Longitude       float64        `db:"longitude"`
	City            string         `db:"city"`
	District        string         `db:"district"`
	IsPetFriendly   bool           `db:"is_pet_friendly"`
	PlaceType       string         `db:"place_type"`
	ExternalPlaceID sql.NullString `db:"external_place_id"`
	CreatedBy       uuid.NullUUID  `db:"created_by"`
	CreatedAt       time.Time      `db:"created_at"`
}

func (r *locationRow) toEntity() *entity.Location {
	return &entity.Location{
		ID:              r.ID,
		Name:            r.Name,
		Address:         r.Address,
		Latitude:        r.Latitude,
		Longitude:       r.Longitude,
		City:            r.City,
		District:        r.District,
		IsPetFriendly:   r.IsPetFriendly,
		PlaceType:       r.PlaceType,
		ExternalPlaceID: fromNullString(r.ExternalPlaceID),
		CreatedBy:       fromNullUUID(r.CreatedBy),
		CreatedAt:       r.CreatedAt,
	}
}
