package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/petmeet-backend/internal/interface/http/dto"
	"github.com/ignatzorin/petmeet-backend/internal/interface/http/response"
	"github.com/ignatzorin/petmeet-backend/internal/usecase/location"
)

type LocationHandler struct {
	createUC *location.CreateLocationUseCase
	getUC    *location.GetLocationUseCase
	recentUC *location.GetRecentLocationsUseCase
}

func NewLocationHandler(
	createUC *location.CreateLocationUseCase,
	getUC *location.GetLocationUseCase,
	recentUC *location.GetRecentLocationsUseCase,
) *LocationHandler {
	return &LocationHandler{createUC: createUC, getUC: getUC, recentUC: recentUC}
}

// Create отвечает 201 для нового места и 200, если место с тем же external_place_id уже было.
func (h *LocationHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	var req dto.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные места")
		return
	}
	if err := validateLocationRequest(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	input := req.ToInput()
	input.CreatedBy = &userID
	result, err := h.createUC.Execute(c.Request.Context(), *input)
	if err != nil {
		response.Error(c, err)
		return
	}

	body := dto.CreateLocationResponse{
		Location: *dto.ToLocationResponse(result.Location),
		Created:  result.Created,
	}
	if result.Created {
		response.Created(c, body)
		return
	}
	c.JSON(http.StatusOK, response.Response{Success: true, Data: body})
}

func (h *LocationHandler) Get(c *gin.Context) {
	locationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "некорректный ID места")
		return
	}

	loc, err := h.getUC.Execute(c.Request.Context(), locationID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToLocationResponse(loc))
}

func (h *LocationHandler) Recent(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	limit := parseIntQuery(c, "limit", location.DefaultRecentLimit)
	locations, err := h.recentUC.Execute(c.Request.Context(), userID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToLocationResponses(locations))
}
