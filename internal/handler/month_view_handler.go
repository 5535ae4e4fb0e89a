package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hospital-ops-api/internal/dto"
	"github.com/noah-isme/hospital-ops-api/internal/service"
	appErrors "github.com/noah-isme/hospital-ops-api/pkg/errors"
	"github.com/noah-isme/hospital-ops-api/pkg/response"
)

type monthViewBuilder interface {
	Build(ctx context.Context, doctorID string, year, month int) (*dto.MonthView, error)
}

// MonthViewHandler serves the month grid projection.
type MonthViewHandler struct {
	service monthViewBuilder
}

// NewMonthViewHandler constructs the handler.
func NewMonthViewHandler(svc *service.MonthViewService) *MonthViewHandler {
	return &MonthViewHandler{service: svc}
}

// Get godoc
// @Summary Get the month grid for a doctor
// @Description Full Monday-started weeks including adjacent-month days. Cells carry a per-day slot summary, overflow count and the edit-horizon flag. Open drafts overlay the stored data.
// @Tags MonthView
// @Produce json
// @Param id path string true "Doctor ID"
// @Param year query int false "Year (defaults to current)"
// @Param month query int false "Month 1-12 (defaults to current)"
// @Success 200 {object} response.Envelope
// @Router /doctors/{id}/month-view [get]
func (h *MonthViewHandler) Get(c *gin.Context) {
	now := time.Now()
	year, err := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid year"))
		return
	}
	month, err := strconv.Atoi(c.DefaultQuery("month", strconv.Itoa(int(now.Month()))))
	if err != nil || month < 1 || month > 12 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid month"))
		return
	}

	view, err := h.service.Build(c.Request.Context(), c.Param("id"), year, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}
