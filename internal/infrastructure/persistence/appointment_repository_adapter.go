package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/petmeet-backend/internal/domain/entity"
	"github.com/ignatzorin/petmeet-backend/internal/domain/repository"
	"github.com/ignatzorin/petmeet-backend/internal/domain/valueobject"
	"github.com/ignatzorin/petmeet-backend/internal/pkg/apperror"
	"github.com/ignatzorin/petmeet-backend/internal/repository/common"
)

const appointmentColumns = `
	id, match_id, inviter_user_id, inviter_pet_id, invitee_user_id, invitee_pet_id,
	appointment_at, location_id, status, current_decision_user_id, counter_offer_count,
	inviter_checked_in, inviter_checked_in_at, invitee_checked_in, invitee_checked_in_at,
	cancelled_by, cancel_reason, version, created_at, updated_at
`

type AppointmentRepositoryAdapter struct {
	db *sqlx.DB
}

func NewAppointmentRepositoryAdapter(db *sqlx.DB) *AppointmentRepositoryAdapter {
	return &AppointmentRepositoryAdapter{db: db}
}

func (r *AppointmentRepositoryAdapter) Create(ctx context.Context, a *entity.Appointment) error {
	query := `
		INSERT INTO appointments (` + appointmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`
	row := toAppointmentRow(a)
	_, err := r.db.ExecContext(ctx, query,
		row.ID, row.MatchID, row.InviterUserID, row.InviterPetID, row.InviteeUserID, row.InviteePetID,
		row.AppointmentAt, row.LocationID, row.Status, row.CurrentDecisionUserID, row.CounterOfferCount,
		row.InviterCheckedIn, row.InviterCheckedInAt, row.InviteeCheckedIn, row.InviteeCheckedInAt,
		row.CancelledBy, row.CancelReason, row.Version, row.CreatedAt, row.UpdatedAt,
	)
	if err != nil {
		// uq_appointments_active_match: параллельный запрос успел создать встречу по мэтчу.
		if common.IsUniqueViolation(err) {
			return apperror.Wrap(err, apperror.ErrCodeInvalidState, "по этому мэтчу уже есть активная встреча")
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать встречу")
	}
	return nil
}

func (r *AppointmentRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	var row appointmentRow
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrAppointmentNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить встречу")
	}
	return row.toEntity(), nil
}

func (r *AppointmentRepositoryAdapter) FindByMatchID(ctx context.Context, matchID uuid.UUID) ([]*entity.Appointment, error) {
	var rows []appointmentRow
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE match_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &rows, query, matchID); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить встречи мэтча")
	}
	return toAppointmentEntities(rows), nil
}

func (r *AppointmentRepositoryAdapter) FindByUserID(ctx context.Context, userID uuid.UUID, statuses []valueobject.AppointmentStatus) ([]*entity.Appointment, error) {
	var rows []appointmentRow
	query := `
		SELECT ` + appointmentColumns + ` FROM appointments
		WHERE (inviter_user_id = $1 OR invitee_user_id = $1)
		AND (cardinality($2::text[]) = 0 OR status = ANY($2))
		ORDER BY appointment_at DESC
	`
	if err := r.db.SelectContext(ctx, &rows, query, userID, common.StatusArgs(statuses)); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить встречи пользователя")
	}
	return toAppointmentEntities(rows), nil
}

func (r *AppointmentRepositoryAdapter) ExistsForMatch(ctx context.Context, matchID uuid.UUID, statuses []valueobject.AppointmentStatus) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM appointments WHERE match_id = $1 AND status = ANY($2))`
	if err := r.db.GetContext(ctx, &exists, query, matchID, common.StatusArgs(statuses)); err != nil {
		return false, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить встречи мэтча")
	}
	return exists, nil
}

func (r *AppointmentRepositoryAdapter) FindByUserInRange(ctx context.Context, userID uuid.UUID, from, to time.Time, statuses []valueobject.AppointmentStatus) ([]*entity.Appointment, error) {
	var rows []appointmentRow
	query := `
		SELECT ` + appointmentColumns + ` FROM appointments
		WHERE (inviter_user_id = $1 OR invitee_user_id = $1)
		AND appointment_at BETWEEN $2 AND $3
		AND status = ANY($4)
		ORDER BY appointment_at ASC
	`
	if err := r.db.SelectContext(ctx, &rows, query, userID, from, to, common.StatusArgs(statuses)); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить встречи за период")
	}
	return toAppointmentEntities(rows), nil
}

func (r *AppointmentRepositoryAdapter) FindDue(ctx context.Context, status valueobject.AppointmentStatus, before time.Time, after *repository.DueCursor, limit int) ([]*entity.Appointment, error) {
	var (
		afterAt *time.Time
		afterID *uuid.UUID
	)
	if after != nil {
		afterAt, afterID = &after.At, &after.ID
	}

	var rows []appointmentRow
	query := `
		SELECT ` + appointmentColumns + ` FROM appointments
		WHERE status = $1 AND appointment_at <= $2
		AND ($3::timestamptz IS NULL OR (appointment_at, id) > ($3::timestamptz, $4::uuid))
		ORDER BY appointment_at ASC, id ASC
		LIMIT $5
	`
	if err := r.db.SelectContext(ctx, &rows, query, string(status), before, toNullTime(afterAt), toNullUUID(afterID), limit); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить просроченные встречи")
	}
	return toAppointmentEntities(rows), nil
}

// UpdateLocked держит строку под FOR UPDATE, пока fn меняет встречу, и увеличивает version.
func (r *AppointmentRepositoryAdapter) UpdateLocked(ctx context.Context, id uuid.UUID, fn func(*entity.Appointment) error) (*entity.Appointment, error) {
	var updated *entity.Appointment
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var row appointmentRow
		query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1 FOR UPDATE`
		if err := tx.GetContext(ctx, &row, query, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperror.ErrAppointmentNotFound
			}
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось заблокировать встречу")
		}

		a := row.toEntity()
		if err := fn(a); err != nil {
			return err
		}
		a.Version = row.Version + 1

		next := toAppointmentRow(a)
		update := `
			UPDATE appointments SET appointment_at = $2, location_id = $3, status = $4,
			current_decision_user_id = $5, counter_offer_count = $6,
			inviter_checked_in = $7, inviter_checked_in_at = $8,
			invitee_checked_in = $9, invitee_checked_in_at = $10,
			cancelled_by = $11, cancel_reason = $12, version = $13, updated_at = $14
			WHERE id = $1
		`
		if _, err := tx.ExecContext(ctx, update,
			next.ID, next.AppointmentAt, next.LocationID, next.Status,
			next.CurrentDecisionUserID, next.CounterOfferCount,
			next.InviterCheckedIn, next.InviterCheckedInAt,
			next.InviteeCheckedIn, next.InviteeCheckedInAt,
			next.CancelledBy, next.CancelReason, next.Version, next.UpdatedAt,
		); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить встречу")
		}

		updated = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

type appointmentRow struct {
	ID                    uuid.UUID      `db:"id"`
	MatchID               uuid.UUID      `db:"match_id"`
	InviterUserID         uuid.UUID      `db:"inviter_user_id"`
	InviterPetID          uuid.UUID      `db:"inviter_pet_id"`
	InviteeUserID         uuid.UUID      `db:"invitee_user_id"`
	InviteePetID          uuid.UUID      `db:"invitee_pet_id"`
	AppointmentAt         time.Time      `db:"appointment_at"`
	LocationID            uuid.NullUUID  `db:"location_id"`
	Status                string         `db:"status"`
	CurrentDecisionUserID uuid.NullUUID  `db:"current_decision_user_id"`
	CounterOfferCount     int            `db:"counter_offer_count"`
	InviterCheckedIn      bool           `db:"inviter_checked_in"`
	InviterCheckedInAt    sql.NullTime   `db:"inviter_checked_in_at"`
	InviteeCheckedIn      bool           `db:"invitee_checked_in"`
	InviteeCheckedInAt    sql.NullTime   `db:"invitee_checked_in_at"`
	CancelledBy           uuid.NullUUID  `db:"cancelled_by"`
	CancelReason          sql.NullString `db:"cancel_reason"`
	Version               int            `db:"version"`
	CreatedAt             time.Time      `db:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at"`
}

func (r *appointmentRow) toEntity() *entity.Appointment {
	return &entity.Appointment{
		ID:                    r.ID,
		MatchID:               r.MatchID,
		InviterUserID:         r.InviterUserID,
		InviterPetID:          r.InviterPetID,
		InviteeUserID:         r.InviteeUserID,
		InviteePetID:          r.InviteePetID,
		AppointmentAt:         r.AppointmentAt,
		LocationID:            fromNullUUID(r.LocationID),
		Status:                valueobject.AppointmentStatus(r.Status),
		CurrentDecisionUserID: fromNullUUID(r.CurrentDecisionUserID),
		CounterOfferCount:     r.CounterOfferCount,
		InviterCheckedIn:      r.InviterCheckedIn,
		InviterCheckedInAt:    fromNullTime(r.InviterCheckedInAt),
		InviteeCheckedIn:      r.InviteeCheckedIn,
		InviteeCheckedInAt:    fromNullTime(r.InviteeCheckedInAt),
		CancelledBy:           fromNullUUID(r.CancelledBy),
		CancelReason:          fromNullString(r.CancelReason),
		Version:               r.Version,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
	}
}

func toAppointmentRow(a *entity.Appointment) appointmentRow {
	return appointmentRow{
		ID:                    a.ID,
		MatchID:               a.MatchID,
		InviterUserID:         a.InviterUserID,
		InviterPetID:          a.InviterPetID,
		InviteeUserID:         a.InviteeUserID,
		InviteePetID:          a.InviteePetID,
		AppointmentAt:         a.AppointmentAt,
		LocationID:            toNullUUID(a.LocationID),
		Status:                string(a.Status),
		CurrentDecisionUserID: toNullUUID(a.CurrentDecisionUserID),
		CounterOfferCount:     a.CounterOfferCount,
		InviterCheckedIn:      a.InviterCheckedIn,
		InviterCheckedInAt:    toNullTime(a.InviterCheckedInAt),
		InviteeCheckedIn:      a.InviteeCheckedIn,
		InviteeCheckedInAt:    toNullTime(a.InviteeCheckedInAt),
		CancelledBy:           toNullUUID(a.CancelledBy),
		CancelReason:          toNullString(a.CancelReason),
		Version:               a.Version,
		CreatedAt:             a.CreatedAt,
		UpdatedAt:             a.UpdatedAt,
	}
}

func toAppointmentEntities(rows []appointmentRow) []*entity.Appointment {
	result := make([]*entity.Appointment, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result
}
