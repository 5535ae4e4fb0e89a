package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hospital-ops-api/internal/models"
)

type scheduleFetcherStub struct {
	days  []models.ScheduleDay
	err   error
	from  string
	to    string
	calls int
}

func (s *scheduleFetcherStub) FetchWindow(ctx context.Context, doctorID, from, to string) ([]models.ScheduleDay, error) {
	s.calls++
	s.from = from
	s.to = to
	return s.days, s.err
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)
}

func newTestStore(fetcher *scheduleFetcherStub, windowDays int) *ScheduleStore {
	store := NewScheduleStore(fetcher, windowDays, nil)
	store.now = fixedNow
	return store
}

func TestStoreFetchFillsWindowWithEmptyDays(t *testing.T) {
	fetcher := &scheduleFetcherStub{days: []models.ScheduleDay{
		{Date: "2026-03-03", Weekday: "Tuesday", IsAvailable: true, Slots: []models.Slot{
			{ID: "42", Start: minutesAt(9, 0), End: minutesAt(10, 0)},
		}},
	}}
	store := newTestStore(fetcher, 7)

	window, err := store.Fetch(context.Background(), "doc-1")
	require.NoError(t, err)
	require.Len(t, window, 7)
	assert.Equal(t, "2026-03-02", fetcher.from)
	assert.Equal(t, "2026-03-08", fetcher.to)

	assert.Equal(t, "2026-03-02", window[0].Date)
	assert.False(t, window[0].IsAvailable)
	assert.Empty(t, window[0].Slots)

	assert.Equal(t, "2026-03-03", window[1].Date)
	assert.True(t, window[1].IsAvailable)
	require.Len(t, window[1].Slots, 1)
}

func TestStoreFetchReplacesWholesale(t *testing.T) {
	fetcher := &scheduleFetcherStub{days: []models.ScheduleDay{
		{Date: "2026-03-03", IsAvailable: true, Slots: []models.Slot{{ID: "old", Start: 540, End: 600}}},
	}}
	store := newTestStore(fetcher, 7)
	_, err := store.Fetch(context.Background(), "doc-1")
	require.NoError(t, err)

	fetcher.days = []models.ScheduleDay{
		{Date: "2026-03-04", IsAvailable: true, Slots: []models.Slot{{ID: "new", Start: 540, End: 600}}},
	}
	_, err = store.Fetch(context.Background(), "doc-1")
	require.NoError(t, err)

	// The previous fetch's day is gone, not patched.
	assert.Empty(t, store.Day("doc-1", "2026-03-03").Slots)
	require.Len(t, store.Day("doc-1", "2026-03-04").Slots, 1)
	assert.Equal(t, "new", store.Day("doc-1", "2026-03-04").Slots[0].ID)
}

func TestStoreDayDefaultsToEmptyUnavailable(t *testing.T) {
	store := newTestStore(&scheduleFetcherStub{}, 7)
	day := store.Day("doc-unknown", "2026-03-06")
	assert.Equal(t, "2026-03-06", day.Date)
	assert.Equal(t, "Friday", day.Weekday)
	assert.False(t, day.IsAvailable)
	assert.Empty(t, day.Slots)
}

func TestStoreMergeDraftReplacesServerSlot(t *testing.T) {
	fetcher := &scheduleFetcherStub{days: []models.ScheduleDay{
		{Date: "2026-03-03", IsAvailable: true, Slots: []models.Slot{
			{ID: "42", Title: "Server copy", Start: minutesAt(9, 0), End: minutesAt(10, 0)},
			{ID: "43", Title: "Untouched", Start: minutesAt(11, 0), End: minutesAt(12, 0)},
		}},
	}}
	store := newTestStore(fetcher, 7)
	_, err := store.Fetch(context.Background(), "doc-1")
	require.NoError(t, err)

	drafts := []models.DraftSlot{
		{LocalID: "local-1", BackendID: "42", Slot: models.Slot{
			ID: "42", Title: "Edited copy", Start: minutesAt(9, 30), End: minutesAt(10, 30), Origin: models.SlotOriginLocal,
		}},
	}

	merged := store.MergeWithLocal("doc-1", "2026-03-03", drafts)
	require.Len(t, merged, 2)
	// Backend id 42 appears exactly once and carries the draft's values.
	assert.Equal(t, "Edited copy", merged[0].Title)
	assert.Equal(t, minutesAt(9, 30), merged[0].Start)
	assert.Equal(t, "Untouched", merged[1].Title)
}

func TestStoreMergeAppendsNewAndHidesRemoved(t *testing.T) {
	fetcher := &scheduleFetcherStub{days: []models.ScheduleDay{
		{Date: "2026-03-03", IsAvailable: true, Slots: []models.Slot{
			{ID: "42", Start: minutesAt(9, 0), End: minutesAt(10, 0)},
			{ID: "43", Start: minutesAt(11, 0), End: minutesAt(12, 0)},
		}},
	}}
	store := newTestStore(fetcher, 7)
	_, err := store.Fetch(context.Background(), "doc-1")
	require.NoError(t, err)

	drafts := []models.DraftSlot{
		{LocalID: "local-new", Slot: models.Slot{ID: "local-new", Start: minutesAt(8, 0), End: minutesAt(9, 0)}},
		{LocalID: "local-del", BackendID: "43", Removed: true, Slot: models.Slot{ID: "43"}},
	}

	merged := store.MergeWithLocal("doc-1", "2026-03-03", drafts)
	require.Len(t, merged, 2)
	// Sorted by start minute; the removed backend slot is absent.
	assert.Equal(t, "local-new", merged[0].ID)
	assert.Equal(t, "42", merged[1].ID)
}

func TestStoreDiscard(t *testing.T) {
	fetcher := &scheduleFetcherStub{days: []models.ScheduleDay{
		{Date: "2026-03-03", IsAvailable: true, Slots: []models.Slot{{ID: "42", Start: 540, End: 600}}},
	}}
	store := newTestStore(fetcher, 7)
	_, err := store.Fetch(context.Background(), "doc-1")
	require.NoError(t, err)

	store.Discard("doc-1")
	assert.Empty(t, store.Day("doc-1", "2026-03-03").Slots)
}
