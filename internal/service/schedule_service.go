package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/hospital-ops-api/internal/dto"
	"github.com/noah-isme/hospital-ops-api/internal/models"
	appErrors "github.com/noah-isme/hospital-ops-api/pkg/errors"
	"github.com/noah-isme/hospital-ops-api/pkg/timeconv"
)

// ScheduleService serves the rolling window and applies direct replace-for-
// date submissions that bypass the interactive edit session, e.g. batch
// imports. Submissions pass the same day validation a session save does.
type ScheduleService struct {
	store    *ScheduleStore
	saver    scheduleSaver
	catalog  *CatalogService
	cache    *CacheService
	metrics  *MetricsService
	sessions *EditSessionService
	logger   *zap.Logger
}

// NewScheduleService constructs the service.
func NewScheduleService(store *ScheduleStore, saver scheduleSaver, catalog *CatalogService, cache *CacheService, metrics *MetricsService, sessions *EditSessionService, logger *zap.Logger) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		store:    store,
		saver:    saver,
		catalog:  catalog,
		cache:    cache,
		metrics:  metrics,
		sessions: sessions,
		logger:   logger,
	}
}

// Window fetches and returns the doctor's full rolling window.
func (s *ScheduleService) Window(ctx context.Context, doctorID string) ([]models.ScheduleDay, error) {
	return s.store.Fetch(ctx, doctorID)
}

// Day returns the stored day for a doctor-date.
func (s *ScheduleService) Day(doctorID, date string) models.ScheduleDay {
	return s.store.Day(doctorID, date)
}

// Replace applies a full-day submission: the request's events become the
// day's slot set, and persisted slots absent from the request are deleted.
// The whole day is validated before anything is written.
func (s *ScheduleService) Replace(ctx context.Context, req dto.SaveScheduleRequest) (models.ScheduleDay, error) {
	if err := s.sessions.CanEdit(req.Date); err != nil {
		return models.ScheduleDay{}, err
	}

	slots := make([]models.Slot, 0, len(req.Events))
	for i, event := range req.Events {
		slot, err := s.eventToSlot(req.DoctorID, req.Date, event)
		if err != nil {
			return models.ScheduleDay{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("event %d: %v", i, err))
		}
		slots = append(slots, slot)
	}

	bounds := func(shiftID string) *models.ShiftBounds {
		return s.catalog.ShiftBounds(ctx, shiftID)
	}
	if verr := ValidateDay(slots, bounds); verr != nil {
		s.metrics.RecordValidationFailure(string(verr.Reason))
		s.metrics.RecordSave("rejected")
		base := appErrors.ErrValidation
		if verr.Reason == models.ReasonOverlap {
			base = appErrors.ErrConflict
		}
		return models.ScheduleDay{}, appErrors.Wrap(verr, base.Code, base.Status, verr.Message)
	}

	batch := s.diffAgainstStored(req.DoctorID, req.Date, slots)
	if err := s.saver.ReplaceForDate(ctx, batch); err != nil {
		s.metrics.RecordSave("failed")
		return models.ScheduleDay{}, appErrors.Wrap(err, appErrors.ErrSaveFailed.Code, appErrors.ErrSaveFailed.Status, appErrors.ErrSaveFailed.Message)
	}
	s.metrics.RecordSave("success")

	_ = s.cache.Invalidate(ctx, monthViewCachePattern(req.DoctorID))
	if _, err := s.store.Fetch(ctx, req.DoctorID); err != nil {
		s.logger.Warn("post-save refetch failed", zap.String("doctor_id", req.DoctorID), zap.Error(err))
	}
	return s.store.Day(req.DoctorID, req.Date), nil
}

// diffAgainstStored splits the intended slot set into inserts, updates and
// explicit deletes relative to the stored day.
func (s *ScheduleService) diffAgainstStored(doctorID, date string, slots []models.Slot) models.SaveBatch {
	batch := models.SaveBatch{DoctorID: doctorID, Date: date}
	stored := s.store.Day(doctorID, date)

	kept := make(map[string]bool, len(slots))
	for _, slot := range slots {
		if slot.ID != "" {
			kept[slot.ID] = true
			batch.Updates = append(batch.Updates, slot)
		} else {
			batch.Inserts = append(batch.Inserts, slot)
		}
	}
	for _, slot := range stored.Slots {
		if !kept[slot.ID] {
			batch.Deletes = append(batch.Deletes, slot.ID)
		}
	}
	return batch
}

func (s *ScheduleService) eventToSlot(doctorID, date string, event dto.SaveEventDTO) (models.Slot, error) {
	start, ok := timeconv.WireToMinutes(event.StartTime)
	if !ok {
		return models.Slot{}, fmt.Errorf("unparseable start_time %q", event.StartTime)
	}
	end, ok := timeconv.WireToMinutes(event.EndTime)
	if !ok {
		return models.Slot{}, fmt.Errorf("unparseable end_time %q", event.EndTime)
	}
	maxAppts := event.MaxAppointments
	if maxAppts <= 0 {
		maxAppts = 1
	}
	return models.Slot{
		ID:              event.ID,
		DoctorID:        doctorID,
		Date:            date,
		Title:           event.Title,
		ShiftTemplateID: event.ShiftRef,
		EventTypeID:     event.EventTypeRef,
		Start:           start,
		End:             end,
		MaxAppointments: maxAppts,
		Notes:           event.Notes,
		Origin:          models.SlotOriginLocal,
	}, nil
}
