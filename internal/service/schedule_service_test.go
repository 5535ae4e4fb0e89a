package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hospital-ops-api/internal/dto"
	"github.com/noah-isme/hospital-ops-api/internal/models"
	appErrors "github.com/noah-isme/hospital-ops-api/pkg/errors"
)

func newScheduleHarness(t *testing.T) (*ScheduleService, *sessionHarness) {
	t.Helper()
	h := newSessionHarness(t)
	catalog := NewCatalogService(catalogRepoStub{catalog: &models.Catalog{
		Shifts: []models.ShiftTemplate{
			{ID: "morning", Name: "Morning", Start: minutesAt(8, 0), End: minutesAt(12, 0)},
		},
	}}, NewCacheService(nil, nil, 0, nil), 0, nil)
	svc := NewScheduleService(h.store, h.saver, catalog, NewCacheService(nil, nil, 0, nil), nil, h.svc, nil)
	return svc, h
}

func TestScheduleReplaceDiffsAgainstStoredDay(t *testing.T) {
	svc, h := newScheduleHarness(t)

	day, err := svc.Replace(context.Background(), dto.SaveScheduleRequest{
		DoctorID: "doc-1",
		Date:     "2026-03-03",
		Events: []dto.SaveEventDTO{
			{ID: "42", Date: "2026-03-03", Title: "Renamed", StartTime: "09:00:00", EndTime: "10:00:00"},
			{Date: "2026-03-03", Title: "Walk-in hour", StartTime: "10:00:00", EndTime: "11:00:00"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-03", day.Date)

	batch := h.saver.batch
	require.Len(t, batch.Updates, 1)
	assert.Equal(t, "42", batch.Updates[0].ID)
	assert.Equal(t, "Renamed", batch.Updates[0].Title)
	require.Len(t, batch.Inserts, 1)
	assert.Equal(t, minutesAt(10, 0), batch.Inserts[0].Start)
	assert.Empty(t, batch.Deletes)
}

func TestScheduleReplaceDeletesOmittedSlots(t *testing.T) {
	svc, h := newScheduleHarness(t)

	_, err := svc.Replace(context.Background(), dto.SaveScheduleRequest{
		DoctorID: "doc-1",
		Date:     "2026-03-03",
		Events:   nil,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"42"}, h.saver.batch.Deletes)
}

func TestScheduleReplaceRejectsOverlap(t *testing.T) {
	svc, h := newScheduleHarness(t)

	_, err := svc.Replace(context.Background(), dto.SaveScheduleRequest{
		DoctorID: "doc-1",
		Date:     "2026-03-03",
		Events: []dto.SaveEventDTO{
			{Date: "2026-03-03", StartTime: "09:00:00", EndTime: "10:00:00"},
			{Date: "2026-03-03", StartTime: "09:30:00", EndTime: "10:30:00"},
		},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Zero(t, h.saver.calls)
}

func TestScheduleReplaceRejectsBadTimes(t *testing.T) {
	svc, h := newScheduleHarness(t)

	_, err := svc.Replace(context.Background(), dto.SaveScheduleRequest{
		DoctorID: "doc-1",
		Date:     "2026-03-03",
		Events: []dto.SaveEventDTO{
			{Date: "2026-03-03", StartTime: "nine sharp", EndTime: "10:00:00"},
		},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Zero(t, h.saver.calls)
}

func TestScheduleReplaceHonorsEditHorizon(t *testing.T) {
	svc, _ := newScheduleHarness(t)

	_, err := svc.Replace(context.Background(), dto.SaveScheduleRequest{
		DoctorID: "doc-1",
		Date:     "2026-03-20",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrEditWindowClosed.Code, appErrors.FromError(err).Code)
}

func TestScheduleReplaceEnforcesShiftBounds(t *testing.T) {
	svc, h := newScheduleHarness(t)

	_, err := svc.Replace(context.Background(), dto.SaveScheduleRequest{
		DoctorID: "doc-1",
		Date:     "2026-03-03",
		Events: []dto.SaveEventDTO{
			{Date: "2026-03-03", ShiftRef: "morning", StartTime: "11:00:00", EndTime: "13:00:00"},
		},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Zero(t, h.saver.calls)
}
