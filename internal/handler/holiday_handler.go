package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/contact-log-api/internal/dto"
	"github.com/noah-isme/contact-log-api/internal/models"
	appErrors "github.com/noah-isme/contact-log-api/pkg/errors"
	"github.com/noah-isme/contact-log-api/pkg/response"
)

type holidayService interface {
	List(ctx context.Context, filter dto.HolidayFilter) ([]models.Holiday, error)
	Create(ctx context.Context, req dto.CreateHolidayRequest, actor *models.JWTClaims) (*models.Holiday, error)
	Delete(ctx context.Context, id string, actor *models.JWTClaims) error
}

// HolidayHandler manages the school holiday calendar.
type HolidayHandler struct {
	service holidayService
}

// NewHolidayHandler constructs the handler.
func NewHolidayHandler(service holidayService) *HolidayHandler {
	return &HolidayHandler{service: service}
}

// List godoc
// @Summary List holidays
// @Tags Holidays
// @Produce json
// @Security BearerAuth
// @Param year query int false "Calendar year, defaults to the current year"
// @Success 200 {object} response.Envelope
// @Router /admin/holidays [get]
func (h *HolidayHandler) List(c *gin.Context) {
	var filter dto.HolidayFilter
	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year must be a number"))
			return
		}
		filter.Year = year
	}
	holidays, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	if holidays == nil {
		holidays = []models.Holiday{}
	}
	response.OK(c, holidays)
}

// Create godoc
// @Summary Register a holiday
// @Tags Holidays
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateHolidayRequest true "Holiday"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/holidays [post]
func (h *HolidayHandler) Create(c *gin.Context) {
	var req dto.CreateHolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid holiday payload"))
		return
	}
	holiday, err := h.service.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, holiday)
}

// Delete godoc
// @Summary Remove a holiday
// @Tags Holidays
// @Security BearerAuth
// @Param id path string true "Holiday ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /admin/holidays/{id} [delete]
func (h *HolidayHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
