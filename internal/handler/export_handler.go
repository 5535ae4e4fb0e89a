package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hospital-ops-api/internal/service"
	"github.com/noah-isme/hospital-ops-api/pkg/response"
)

type scheduleExporter interface {
	ExportRange(ctx context.Context, doctorID, from, to string, format service.ExportFormat) (*service.ExportResult, error)
	ExportDay(ctx context.Context, doctorID, date string, format service.ExportFormat) (*service.ExportResult, error)
}

// ExportHandler streams rendered schedule reports.
type ExportHandler struct {
	service scheduleExporter
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Range godoc
// @Summary Export a doctor's saved schedule
// @Description Renders [from, to] inclusive. Passing date instead of from/to exports that single day.
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Doctor ID"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Param date query string false "Single date (YYYY-MM-DD)"
// @Param format query string false "csv or pdf (default csv)"
// @Success 200
// @Router /doctors/{id}/exports [get]
func (h *ExportHandler) Range(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", string(service.FormatCSV)))

	var result *service.ExportResult
	var err error
	if date := c.Query("date"); date != "" {
		result, err = h.service.ExportDay(c.Request.Context(), c.Param("id"), date, format)
	} else {
		result, err = h.service.ExportRange(c.Request.Context(), c.Param("id"), c.Query("from"), c.Query("to"), format)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+result.Filename)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
