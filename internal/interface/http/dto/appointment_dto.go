package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/petmeet-backend/internal/clock"
	"github.com/ignatzorin/petmeet-backend/internal/domain/entity"
	"github.com/ignatzorin/petmeet-backend/internal/usecase/appointment"
)

type CreateAppointmentRequest struct {
	InviterPetID  uuid.UUID        `json:"inviter_pet_id" binding:"required"`
	InviteePetID  uuid.UUID        `json:"invitee_pet_id" binding:"required"`
	AppointmentAt string           `json:"appointment_at" binding:"required"`
	LocationID    *uuid.UUID       `json:"location_id"`
	Location      *LocationRequest `json:"location"`
}

type RespondRequest struct {
	Accept        *bool  `json:"accept" binding:"required"`
	DeclineReason string `json:"decline_reason"`
}

type CounterOfferRequest struct {
	AppointmentAt *string          `json:"appointment_at"`
	LocationID    *uuid.UUID       `json:"location_id"`
	Location      *LocationRequest `json:"location"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

type CheckInRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

// ParseAppointmentAt: время без смещения считается локальным временем приложения.
func ParseAppointmentAt(value string, loc *time.Location) (time.Time, error) {
	return clock.ParseLocal(value, loc)
}

// ToLocationChoice возвращает nil, если место не указано.
func ToLocationChoice(id *uuid.UUID, req *LocationRequest) *appointment.LocationChoice {
	if id == nil && req == nil {
		return nil
	}
	choice := &appointment.LocationChoice{ID: id}
	if req != nil {
		choice.New = req.ToInput()
	}
	return choice
}

type AppointmentResponse struct {
	ID                    uuid.UUID         `json:"id"`
	MatchID               uuid.UUID         `json:"match_id"`
	InviterUserID         uuid.UUID         `json:"inviter_user_id"`
	InviterPetID          uuid.UUID         `json:"inviter_pet_id"`
	InviteeUserID         uuid.UUID         `json:"invitee_user_id"`
	InviteePetID          uuid.UUID         `json:"invitee_pet_id"`
	AppointmentAt         time.Time         `json:"appointment_at"`
	LocationID            *uuid.UUID        `json:"location_id"`
	Location              *LocationResponse `json:"location,omitempty"`
	Status                string            `json:"status"`
	CurrentDecisionUserID *uuid.UUID        `json:"current_decision_user_id"`
	CounterOfferCount     int               `json:"counter_offer_count"`
	InviterCheckedIn      bool              `json:"inviter_checked_in"`
	InviterCheckedInAt    *time.Time        `json:"inviter_checked_in_at"`
	InviteeCheckedIn      bool              `json:"invitee_checked_in"`
	InviteeCheckedInAt    *time.Time        `json:"invitee_checked_in_at"`
	CancelledBy           *uuid.UUID        `json:"cancelled_by"`
	CancelReason          *string           `json:"cancel_reason"`
	HasConflict           *bool             `json:"has_conflict,omitempty"`
	CreatedAt             time.Time         `json:"created_at"`
	UpdatedAt             time.Time         `json:"updated_at"`
}

// ToAppointmentResponse переводит время встречи в часовой пояс приложения.
func ToAppointmentResponse(a *entity.Appointment, loc *time.Location) *AppointmentResponse {
	return &AppointmentResponse{
		ID:                    a.ID,
		MatchID:               a.MatchID,
		InviterUserID:         a.InviterUserID,
		InviterPetID:          a.InviterPetID,
		InviteeUserID:         a.InviteeUserID,
		InviteePetID:          a.InviteePetID,
		AppointmentAt:         a.AppointmentAt.In(loc),
		LocationID:            a.LocationID,
		Status:                string(a.Status),
		CurrentDecisionUserID: a.CurrentDecisionUserID,
		CounterOfferCount:     a.CounterOfferCount,
		InviterCheckedIn:      a.InviterCheckedIn,
		InviterCheckedInAt:    a.InviterCheckedInAt,
		InviteeCheckedIn:      a.InviteeCheckedIn,
		InviteeCheckedInAt:    a.InviteeCheckedInAt,
		CancelledBy:           a.CancelledBy,
		CancelReason:          a.CancelReason,
		CreatedAt:             a.CreatedAt,
		UpdatedAt:             a.UpdatedAt,
	}
}

func ToAppointmentView(v *appointment.AppointmentView, loc *time.Location) *AppointmentResponse {
	resp := ToAppointmentResponse(v.Appointment, loc)
	resp.Location = ToLocationResponse(v.Location)
	hasConflict := v.HasConflict
	resp.HasConflict = &hasConflict
	return resp
}

func ToAppointmentViews(views []*appointment.AppointmentView, loc *time.Location) []*AppointmentResponse {
	responses := make([]*AppointmentResponse, 0, len(views))
	for _, v := range views {
		responses = append(responses, ToAppointmentView(v, loc))
	}
	return responses
}

type EligibilityResponse struct {
	Eligible bool   `json:"eligible"`
	Code     string `json:"code,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

func ToEligibilityResponse(r *appointment.EligibilityResult) EligibilityResponse {
	return EligibilityResponse{Eligible: r.OK, Code: string(r.Code), Reason: r.Reason}
}

type CreateAppointmentResponse struct {
	Appointment     *AppointmentResponse `json:"appointment"`
	LocationCreated bool                 `json:"location_created"`
}

type RespondResponse struct {
	Appointment *AppointmentResponse `json:"appointment"`
	Accepted    bool                 `json:"accepted"`
}

type CounterOfferResponse struct {
	Appointment            *AppointmentResponse `json:"appointment"`
	RemainingCounterOffers int                  `json:"remaining_counter_offers"`
}

type CancelResponse struct {
	Appointment      *AppointmentResponse `json:"appointment"`
	LateCancellation bool                 `json:"late_cancellation"`
}

type CheckInResponse struct {
	Appointment    *AppointmentResponse `json:"appointment"`
	DistanceMeters *float64             `json:"distance_meters"`
	BothCheckedIn  bool                 `json:"both_checked_in"`
}
