package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hospital-ops-api/internal/models"
	"github.com/noah-isme/hospital-ops-api/internal/service"
	"github.com/noah-isme/hospital-ops-api/pkg/response"
)

type doctorDirectory interface {
	List(ctx context.Context, filter models.DoctorFilter) ([]models.Doctor, models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Doctor, error)
	Select(ctx context.Context, doctorID, previousDoctorID string) (*service.SelectResult, error)
	Deactivate(doctorID string)
}

// DoctorHandler exposes the doctor directory and doctor-switch endpoints.
type DoctorHandler struct {
	service doctorDirectory
}

// NewDoctorHandler constructs the handler.
func NewDoctorHandler(svc *service.DoctorService) *DoctorHandler {
	return &DoctorHandler{service: svc}
}

// List godoc
// @Summary List doctors
// @Tags Doctors
// @Produce json
// @Param specialty query string false "Filter by specialty"
// @Param active query bool false "Filter by active flag"
// @Param search query string false "Name search"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /doctors [get]
func (h *DoctorHandler) List(c *gin.Context) {
	filter := models.DoctorFilter{
		Specialty: c.Query("specialty"),
		Search:    c.Query("search"),
	}
	if raw := c.Query("active"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			filter.Active = &active
		}
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	doctors, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doctors, &pagination)
}

// Get godoc
// @Summary Get one doctor
// @Tags Doctors
// @Produce json
// @Param id path string true "Doctor ID"
// @Success 200 {object} response.Envelope
// @Router /doctors/{id} [get]
func (h *DoctorHandler) Get(c *gin.Context) {
	doctor, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doctor, nil)
}

// Select godoc
// @Summary Activate a doctor's calendar
// @Description Fetches the doctor's rolling window. When previousDoctorId is supplied, the response lists that doctor's unsaved edit sessions so the client can warn before discarding them.
// @Tags Doctors
// @Produce json
// @Param id path string true "Doctor ID"
// @Param previousDoctorId query string false "Previously active doctor"
// @Success 200 {object} response.Envelope
// @Router /doctors/{id}/select [post]
func (h *DoctorHandler) Select(c *gin.Context) {
	result, err := h.service.Select(c.Request.Context(), c.Param("id"), c.Query("previousDoctorId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Deactivate godoc
// @Summary Drop a doctor's cached calendar and open sessions
// @Tags Doctors
// @Param id path string true "Doctor ID"
// @Success 204
// @Router /doctors/{id}/calendar [delete]
func (h *DoctorHandler) Deactivate(c *gin.Context) {
	h.service.Deactivate(c.Param("id"))
	response.NoContent(c)
}
