package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/petmeet-backend/internal/interface/http/dto"
	"github.com/ignatzorin/petmeet-backend/internal/interface/http/response"
	"github.com/ignatzorin/petmeet-backend/internal/usecase/appointment"
	"github.com/ignatzorin/petmeet-backend/internal/validation"
)

// AppointmentUseCases собирает зависимости хэндлера в одну структуру.
type AppointmentUseCases struct {
	CheckEligibility *appointment.CheckEligibilityUseCase
	Create           *appointment.CreateAppointmentUseCase
	Respond          *appointment.RespondAppointmentUseCase
	CounterOffer     *appointment.CounterOfferUseCase
	Cancel           *appointment.CancelAppointmentUseCase
	CheckIn          *appointment.CheckInUseCase
	Complete         *appointment.CompleteAppointmentUseCase
	Get              *appointment.GetAppointmentUseCase
	ListByMatch      *appointment.ListMatchAppointmentsUseCase
	ListMine         *appointment.ListMyAppointmentsUseCase
}

type AppointmentHandler struct {
	uc  AppointmentUseCases
	loc *time.Location
}

// NewAppointmentHandler: loc - часовой пояс для разбора и вывода времени встречи.
func NewAppointmentHandler(uc AppointmentUseCases, loc *time.Location) *AppointmentHandler {
	return &AppointmentHandler{uc: uc, loc: loc}
}

func (h *AppointmentHandler) CheckEligibility(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "некорректный ID мэтча")
		return
	}
	inviterPetID, err := parseUUIDQuery(c, "inviter_pet_id")
	if err != nil {
		response.BadRequest(c, "некорректный inviter_pet_id")
		return
	}
	inviteePetID, err := parseUUIDQuery(c, "invitee_pet_id")
	if err != nil {
		response.BadRequest(c, "некорректный invitee_pet_id")
		return
	}

	result, err := h.uc.CheckEligibility.Execute(c.Request.Context(), appointment.CheckEligibilityInput{
		MatchID:      matchID,
		ActorID:      userID,
		InviterPetID: inviterPetID,
		InviteePetID: inviteePetID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToEligibilityResponse(result))
}

func (h *AppointmentHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "некорректный ID мэтча")
		return
	}

	var req dto.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}
	if err := validateLocationRequest(req.Location); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	at, err := dto.ParseAppointmentAt(req.AppointmentAt, h.loc)
	if err != nil {
		response.BadRequest(c, "некорректный формат времени встречи")
		return
	}

	result, err := h.uc.Create.Execute(c.Request.Context(), appointment.CreateAppointmentInput{
		MatchID:       matchID,
		ActorID:       userID,
		InviterPetID:  req.InviterPetID,
		InviteePetID:  req.InviteePetID,
		AppointmentAt: at,
		Location:      dto.ToLocationChoice(req.LocationID, req.Location),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.ToAppointmentResponse(result.Appointment, h.loc)
	resp.Location = dto.ToLocationResponse(result.Location)
	response.Created(c, dto.CreateAppointmentResponse{
		Appointment:     resp,
		LocationCreated: result.LocationCreated,
	})
}

func (h *AppointmentHandler) ListByMatch(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "некорректный ID мэтча")
		return
	}

	views, err := h.uc.ListByMatch.Execute(c.Request.Context(), matchID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToAppointmentViews(views, h.loc))
}

func (h *AppointmentHandler) ListMine(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	statuses, err := parseStatuses(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	views, err := h.uc.ListMine.Execute(c.Request.Context(), userID, statuses)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToAppointmentViews(views, h.loc))
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "некорректный ID встречи")
		return
	}

	view, err := h.uc.Get.Execute(c.Request.Context(), appointmentID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToAppointmentView(view, h.loc))
}

func (h *AppointmentHandler) Respond(c *gin.Context) {
	userID, appointmentID, ok := h.actorAndAppointment(c)
	if !ok {
		return
	}

	var req dto.RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}
	if err := validation.ValidateReason(req.DeclineReason); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.uc.Respond.Execute(c.Request.Context(), appointment.RespondInput{
		AppointmentID: appointmentID,
		ActorID:       userID,
		Accept:        *req.Accept,
		DeclineReason: req.DeclineReason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.RespondResponse{
		Appointment: dto.ToAppointmentResponse(result.Appointment, h.loc),
		Accepted:    result.Accepted,
	})
}

func (h *AppointmentHandler) CounterOffer(c *gin.Context) {
	userID, appointmentID, ok := h.actorAndAppointment(c)
	if !ok {
		return
	}

	var req dto.CounterOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}
	if err := validateLocationRequest(req.Location); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var newAt *time.Time
	if req.AppointmentAt != nil {
		at, err := dto.ParseAppointmentAt(*req.AppointmentAt, h.loc)
		if err != nil {
			response.BadRequest(c, "некорректный формат времени встречи")
			return
		}
		newAt = &at
	}

	result, err := h.uc.CounterOffer.Execute(c.Request.Context(), appointment.CounterOfferInput{
		AppointmentID:    appointmentID,
		ActorID:          userID,
		NewAppointmentAt: newAt,
		Location:         dto.ToLocationChoice(req.LocationID, req.Location),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.ToAppointmentResponse(result.Appointment, h.loc)
	resp.Location = dto.ToLocationResponse(result.Location)
	response.Success(c, dto.CounterOfferResponse{
		Appointment:            resp,
		RemainingCounterOffers: result.RemainingCounterOffers,
	})
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	userID, appointmentID, ok := h.actorAndAppointment(c)
	if !ok {
		return
	}

	// Тело необязательно: причина отмены может отсутствовать.
	var req dto.CancelRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "некорректные данные запроса")
			return
		}
	}
	if err := validation.ValidateReason(req.Reason); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.uc.Cancel.Execute(c.Request.Context(), appointment.CancelInput{
		AppointmentID: appointmentID,
		ActorID:       userID,
		Reason:        req.Reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.CancelResponse{
		Appointment:      dto.ToAppointmentResponse(result.Appointment, h.loc),
		LateCancellation: result.LateCancellation,
	})
}

func (h *AppointmentHandler) CheckIn(c *gin.Context) {
	userID, appointmentID, ok := h.actorAndAppointment(c)
	if !ok {
		return
	}

	var req dto.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "нужны координаты latitude и longitude")
		return
	}

	result, err := h.uc.CheckIn.Execute(c.Request.Context(), appointment.CheckInInput{
		AppointmentID: appointmentID,
		ActorID:       userID,
		Latitude:      *req.Latitude,
		Longitude:     *req.Longitude,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.CheckInResponse{
		Appointment:    dto.ToAppointmentResponse(result.Appointment, h.loc),
		DistanceMeters: result.DistanceMeters,
		BothCheckedIn:  result.BothCheckedIn,
	})
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	userID, appointmentID, ok := h.actorAndAppointment(c)
	if !ok {
		return
	}

	result, err := h.uc.Complete.Execute(c.Request.Context(), appointment.CompleteInput{
		AppointmentID: appointmentID,
		ActorID:       userID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToAppointmentResponse(result.Appointment, h.loc))
}

func (h *AppointmentHandler) actorAndAppointment(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return uuid.Nil, uuid.Nil, false
	}

	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "некорректный ID встречи")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, appointmentID, true
}
