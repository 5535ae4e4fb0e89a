package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/hospital-ops-api/internal/dto"
	"github.com/noah-isme/hospital-ops-api/internal/models"
	"github.com/noah-isme/hospital-ops-api/internal/service"
	appErrors "github.com/noah-isme/hospital-ops-api/pkg/errors"
	"github.com/noah-isme/hospital-ops-api/pkg/response"
)

type scheduleProvider interface {
	Window(ctx context.Context, doctorID string) ([]models.ScheduleDay, error)
	Day(doctorID, date string) models.ScheduleDay
	Replace(ctx context.Context, req dto.SaveScheduleRequest) (models.ScheduleDay, error)
}

// ScheduleHandler exposes the rolling window and direct replace-for-date
// submissions.
type ScheduleHandler struct {
	service  scheduleProvider
	catalog  *service.CatalogService
	validate *validator.Validate
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(svc *service.ScheduleService, catalog *service.CatalogService) *ScheduleHandler {
	return &ScheduleHandler{service: svc, catalog: catalog, validate: validator.New()}
}

// Window godoc
// @Summary Get the doctor's rolling schedule window
// @Description Returns every date of the forward window; dates without slots appear as empty unavailable days. Times are 24-hour HH:MM:SS strings.
// @Tags Schedule
// @Produce json
// @Param id path string true "Doctor ID"
// @Success 200 {object} response.Envelope
// @Router /doctors/{id}/schedule [get]
func (h *ScheduleHandler) Window(c *gin.Context) {
	days, err := h.service.Window(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	catalog := h.catalog.Catalog(c.Request.Context())
	out := make([]dto.ScheduleDayDTO, 0, len(days))
	for _, day := range days {
		out = append(out, dto.DayToDTO(day, catalog))
	}
	response.JSON(c, http.StatusOK, out, nil)
}

// Day godoc
// @Summary Get one schedule day
// @Tags Schedule
// @Produce json
// @Param id path string true "Doctor ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /doctors/{id}/schedule/{date} [get]
func (h *ScheduleHandler) Day(c *gin.Context) {
	day := h.service.Day(c.Param("id"), c.Param("date"))
	response.JSON(c, http.StatusOK, dto.DayToDTO(day, h.catalog.Catalog(c.Request.Context())), nil)
}

// Replace godoc
// @Summary Replace one day's slot set
// @Description Full-day submission: events present become the day's slots, persisted slots absent from the list are deleted. The day is validated as a whole before anything is written.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param id path string true "Doctor ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param payload body dto.SaveScheduleRequest true "Replace payload"
// @Success 200 {object} response.Envelope
// @Router /doctors/{id}/schedule/{date} [put]
func (h *ScheduleHandler) Replace(c *gin.Context) {
	var req dto.SaveScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid replace payload"))
		return
	}
	req.DoctorID = c.Param("id")
	req.Date = c.Param("date")
	for i := range req.Events {
		req.Events[i].Date = req.Date
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid replace payload"))
		return
	}

	day, err := h.service.Replace(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.DayToDTO(day, h.catalog.Catalog(c.Request.Context())), nil)
}
