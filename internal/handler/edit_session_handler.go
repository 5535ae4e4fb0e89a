package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hospital-ops-api/internal/dto"
	"github.com/noah-isme/hospital-ops-api/internal/models"
	"github.com/noah-isme/hospital-ops-api/internal/service"
	appErrors "github.com/noah-isme/hospital-ops-api/pkg/errors"
	"github.com/noah-isme/hospital-ops-api/pkg/response"
)

type editSessionController interface {
	OpenDay(ctx context.Context, doctorID, date string) (*service.SessionView, error)
	AddSlot(ctx context.Context, doctorID, date string) (*service.SessionView, error)
	UpdateField(ctx context.Context, doctorID, date, slotID, field, value string) (*service.SessionView, error)
	RemoveSlot(ctx context.Context, doctorID, date, slotID string) (*service.SessionView, error)
	Save(ctx context.Context, doctorID, date string) (models.ScheduleDay, error)
	Cancel(ctx context.Context, doctorID, date string) (*service.SessionView, error)
	Close(doctorID, date string)
	Sessions(doctorID string) []models.EditSessionInfo
}

type updateFieldRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

type sessionViewResponse struct {
	Info  models.EditSessionInfo `json:"info"`
	Slots []dto.ScheduleSlotDTO  `json:"slots"`
}

// EditSessionHandler exposes the per-date edit lifecycle.
type EditSessionHandler struct {
	service editSessionController
	catalog *service.CatalogService
}

// NewEditSessionHandler constructs the handler.
func NewEditSessionHandler(svc *service.EditSessionService, catalog *service.CatalogService) *EditSessionHandler {
	return &EditSessionHandler{service: svc, catalog: catalog}
}

func (h *EditSessionHandler) viewResponse(c *gin.Context, view *service.SessionView) sessionViewResponse {
	catalog := h.catalog.Catalog(c.Request.Context())
	out := sessionViewResponse{Info: view.Info, Slots: make([]dto.ScheduleSlotDTO, 0, len(view.Slots))}
	for _, slot := range view.Slots {
		out.Slots = append(out.Slots, dto.SlotToDTO(slot, catalog))
	}
	return out
}

// Open godoc
// @Summary Open the edit session for a doctor-date
// @Description Snapshots the stored day and seeds the edit buffer. Re-opening an existing session keeps its drafts. Dates outside the edit horizon are rejected.
// @Tags EditSession
// @Produce json
// @Param id path string true "Doctor ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /doctors/{id}/schedule/{date}/session [post]
func (h *EditSessionHandler) Open(c *gin.Context) {
	view, err := h.service.OpenDay(c.Request.Context(), c.Param("id"), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.viewResponse(c, view), nil)
}

// AddSlot godoc
// @Summary Append a draft slot to the open session
// @Tags EditSession
// @Produce json
// @Param id path string true "Doctor ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 201 {object} response.Envelope
// @Router /doctors/{id}/schedule/{date}/session/slots [post]
func (h *EditSessionHandler) AddSlot(c *gin.Context) {
	view, err := h.service.AddSlot(c.Request.Context(), c.Param("id"), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, h.viewResponse(c, view))
}

// UpdateField godoc
// @Summary Apply one field change to a draft slot
// @Description Validated immediately; a rejected change is rolled back and returns the structured reason.
// @Tags EditSession
// @Accept json
// @Produce json
// @Param id path string true "Doctor ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param slotId path string true "Slot ID (backend or local)"
// @Param payload body updateFieldRequest true "Field change"
// @Success 200 {object} response.Envelope
// @Router /doctors/{id}/schedule/{date}/session/slots/{slotId} [patch]
func (h *EditSessionHandler) UpdateField(c *gin.Context) {
	var req updateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid field change payload"))
		return
	}
	view, err := h.service.UpdateField(c.Request.Context(), c.Param("id"), c.Param("date"), c.Param("slotId"), req.Field, req.Value)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.viewResponse(c, view), nil)
}

// RemoveSlot godoc
// @Summary Remove a draft slot
// @Description A persisted slot is tombstoned so the save emits an explicit delete; a never-saved draft simply disappears.
// @Tags EditSession
// @Produce json
// @Param id path string true "Doctor ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param slotId path string true "Slot ID (backend or local)"
// @Success 200 {object} response.Envelope
// @Router /doctors/{id}/schedule/{date}/session/slots/{slotId} [delete]
func (h *EditSessionHandler) RemoveSlot(c *gin.Context) {
	view, err := h.service.RemoveSlot(c.Request.Context(), c.Param("id"), c.Param("date"), c.Param("slotId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.viewResponse(c, view), nil)
}

// Save godoc
// @Summary Validate and persist the open session
// @Description Submits one replace-for-date batch. On failure the buffer is kept and the session enters SAVE_FAILED for retry.
// @Tags EditSession
// @Produce json
// @Param id path string true "Doctor ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /doctors/{id}/schedule/{date}/session/save [post]
func (h *EditSessionHandler) Save(c *gin.Context) {
	day, err := h.service.Save(c.Request.Context(), c.Param("id"), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.DayToDTO(day, h.catalog.Catalog(c.Request.Context())), nil)
}

// Cancel godoc
// @Summary Discard the buffer and restore the opening snapshot
// @Tags EditSession
// @Produce json
// @Param id path string true "Doctor ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /doctors/{id}/schedule/{date}/session/cancel [post]
func (h *EditSessionHandler) Cancel(c *gin.Context) {
	view, err := h.service.Cancel(c.Request.Context(), c.Param("id"), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.viewResponse(c, view), nil)
}

// Close godoc
// @Summary Drop the session, discarding unsaved drafts
// @Tags EditSession
// @Param id path string true "Doctor ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 204
// @Router /doctors/{id}/schedule/{date}/session [delete]
func (h *EditSessionHandler) Close(c *gin.Context) {
	h.service.Close(c.Param("id"), c.Param("date"))
	response.NoContent(c)
}

// Sessions godoc
// @Summary List open edit sessions for a doctor
// @Tags EditSession
// @Produce json
// @Param id path string true "Doctor ID"
// @Success 200 {object} response.Envelope
// @Router /doctors/{id}/sessions [get]
func (h *EditSessionHandler) Sessions(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Sessions(c.Param("id")), nil)
}
