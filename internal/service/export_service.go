package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/hospital-ops-api/internal/models"
	appErrors "github.com/noah-isme/hospital-ops-api/pkg/errors"
	"github.com/noah-isme/hospital-ops-api/pkg/export"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFormat selects the rendered output.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// ExportResult carries rendered bytes with their transport metadata.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders a doctor's saved schedule as downloadable CSV or PDF
// tables. Only server-confirmed days are exported; open drafts never leak
// into a report.
type ExportService struct {
	store   *ScheduleStore
	catalog *CatalogService
	csv     csvRenderer
	pdf     pdfRenderer
	logger  *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(store *ScheduleStore, catalog *CatalogService, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{store: store, catalog: catalog, logger: logger, csv: csv, pdf: pdf}
}

var exportHeaders = []string{"Date", "Weekday", "Start", "End", "Title", "Shift", "Type", "Capacity", "Notes"}

// ExportRange renders every day in [from, to] inclusive.
func (s *ExportService) ExportRange(ctx context.Context, doctorID, from, to string, format ExportFormat) (*ExportResult, error) {
	start, err := time.Parse(dateLayout, from)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid from date %q", from))
	}
	end, err := time.Parse(dateLayout, to)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid to date %q", to))
	}
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to date precedes from date")
	}

	catalog := s.catalog.Catalog(ctx)
	dataset := export.Dataset{Headers: exportHeaders}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		day := s.store.Day(doctorID, d.Format(dateLayout))
		for _, slot := range day.Slots {
			dataset.Rows = append(dataset.Rows, exportRow(day, slot, catalog))
		}
	}

	name := fmt.Sprintf("schedule_%s_%s_%s", doctorID, from, to)
	return s.render(dataset, name, format)
}

// ExportDay renders a single date.
func (s *ExportService) ExportDay(ctx context.Context, doctorID, date string, format ExportFormat) (*ExportResult, error) {
	return s.ExportRange(ctx, doctorID, date, date, format)
}

func (s *ExportService) render(dataset export.Dataset, name string, format ExportFormat) (*ExportResult, error) {
	switch format {
	case FormatCSV:
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportResult{Filename: name + ".csv", ContentType: "text/csv", Data: data}, nil
	case FormatPDF:
		title := strings.ReplaceAll(name, "_", " ")
		data, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportResult{Filename: name + ".pdf", ContentType: "application/pdf", Data: data}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func exportRow(day models.ScheduleDay, slot models.Slot, catalog *models.Catalog) map[string]string {
	display := ResolveDisplay(slot, catalog)
	return map[string]string{
		"Date":     day.Date,
		"Weekday":  day.Weekday,
		"Start":    display.StartTime,
		"End":      display.EndTime,
		"Title":    slot.Title,
		"Shift":    display.ShiftName,
		"Type":     display.TypeName,
		"Capacity": fmt.Sprintf("%d", slot.MaxAppointments),
		"Notes":    slot.Notes,
	}
}
