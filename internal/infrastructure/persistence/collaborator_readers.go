package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/petmeet-backend/internal/domain/entity"
	"github.com/ignatzorin/petmeet-backend/internal/domain/valueobject"
	"github.com/ignatzorin/petmeet-backend/internal/pkg/apperror"
)

// Таблицы matches, messages и pets ведут соседние сервисы, здесь только чтение.

type MatchReaderAdapter struct {
	db *sqlx.DB
}

func NewMatchReaderAdapter(db *sqlx.DB) *MatchReaderAdapter {
	return &MatchReaderAdapter{db: db}
}

func (r *MatchReaderAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Match, error) {
	var row struct {
		ID      uuid.UUID `db:"id"`
		UserAID uuid.UUID `db:"user_a_id"`
		UserBID uuid.UUID `db:"user_b_id"`
		PetAID  uuid.UUID `db:"pet_a_id"`
		PetBID  uuid.UUID `db:"pet_b_id"`
		Status  string    `db:"status"`
	}
	query := `SELECT id, user_a_id, user_b_id, pet_a_id, pet_b_id, status FROM matches WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrMatchNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить мэтч")
	}
	return &entity.Match{
		ID:      row.ID,
		UserAID: row.UserAID,
		UserBID: row.UserBID,
		PetAID:  row.PetAID,
		PetBID:  row.PetBID,
		Status:  valueobject.MatchStatus(row.Status),
	}, nil
}

type MessageCounterAdapter struct {
	db *sqlx.DB
}

func NewMessageCounterAdapter(db *sqlx.DB) *MessageCounterAdapter {
	return &MessageCounterAdapter{db: db}
}

func (r *MessageCounterAdapter) CountByMatch(ctx context.Context, matchID uuid.UUID) (map[uuid.UUID]int, error) {
	var rows []struct {
		SenderID uuid.UUID `db:"sender_id"`
		Count    int       `db:"count"`
	}
	query := `SELECT sender_id, COUNT(*) AS count FROM messages WHERE match_id = $1 GROUP BY sender_id`
	if err := r.db.SelectContext(ctx, &rows, query, matchID); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать сообщения")
	}

	counts := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		counts[row.SenderID] = row.Count
	}
	return counts, nil
}

type PetProfileReaderAdapter struct {
	db *sqlx.DB
}

func NewPetProfileReaderAdapter(db *sqlx.DB) *PetProfileReaderAdapter {
	return &PetProfileReaderAdapter{db: db}
}

func (r *PetProfileReaderAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.PetProfile, error) {
	var row struct {
		ID         uuid.UUID `db:"id"`
		OwnerID    uuid.UUID `db:"owner_id"`
		Name       string    `db:"name"`
		Species    string    `db:"species"`
		Breed      string    `db:"breed"`
		PhotoCount int       `db:"photo_count"`
	}
	query := `
		SELECT p.id, p.owner_id, COALESCE(p.name, '') AS name, COALESCE(p.species, '') AS species,
		COALESCE(p.breed, '') AS breed,
		(SELECT COUNT(*) FROM pet_photos ph WHERE ph.pet_id = p.id) AS photo_count
		FROM pets p WHERE p.id = $1
	`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrPetNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить анкету питомца")
	}
	return &entity.PetProfile{
		ID:         row.ID,
		OwnerID:    row.OwnerID,
		Name:       row.Name,
		Species:    row.Species,
		Breed:      row.Breed,
		PhotoCount: row.PhotoCount,
	}, nil
}
