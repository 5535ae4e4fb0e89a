package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/hospital-ops-api/internal/models"
	appErrors "github.com/noah-isme/hospital-ops-api/pkg/errors"
)

type scheduleFetcher interface {
	FetchWindow(ctx context.Context, doctorID, from, to string) ([]models.ScheduleDay, error)
}

const dateLayout = "2006-01-02"

// ScheduleStore holds the server-confirmed calendar for each doctor over a
// fixed forward rolling window. Every fetch replaces the doctor's window
// wholesale; days and slots from a previous fetch are never patched in place.
type ScheduleStore struct {
	repo       scheduleFetcher
	windowDays int
	logger     *zap.Logger
	now        func() time.Time

	mu   sync.RWMutex
	days map[string]map[string]models.ScheduleDay
}

// NewScheduleStore constructs the store.
func NewScheduleStore(repo scheduleFetcher, windowDays int, logger *zap.Logger) *ScheduleStore {
	if windowDays <= 0 {
		windowDays = 90
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleStore{
		repo:       repo,
		windowDays: windowDays,
		logger:     logger,
		now:        time.Now,
		days:       make(map[string]map[string]models.ScheduleDay),
	}
}

// Fetch loads the doctor's rolling window from the repository and replaces
// any previously held days for that doctor. The returned slice covers every
// date of the window; dates without server data appear as empty unavailable
// days.
func (s *ScheduleStore) Fetch(ctx context.Context, doctorID string) ([]models.ScheduleDay, error) {
	start := s.today()
	from := start.Format(dateLayout)
	to := start.AddDate(0, 0, s.windowDays-1).Format(dateLayout)

	fetched, err := s.repo.FetchWindow(ctx, doctorID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch schedule window")
	}

	byDate := make(map[string]models.ScheduleDay, s.windowDays)
	for _, day := range fetched {
		byDate[day.Date] = day
	}

	window := make([]models.ScheduleDay, 0, s.windowDays)
	for i := 0; i < s.windowDays; i++ {
		date := start.AddDate(0, 0, i).Format(dateLayout)
		day, ok := byDate[date]
		if !ok {
			day = emptyDay(date)
			byDate[date] = day
		}
		window = append(window, day)
	}

	s.mu.Lock()
	s.days[doctorID] = byDate
	s.mu.Unlock()

	return window, nil
}

// Day returns the stored day for a doctor-date, defaulting to an empty
// unavailable day when absent.
func (s *ScheduleStore) Day(doctorID, date string) models.ScheduleDay {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if byDate, ok := s.days[doctorID]; ok {
		if day, ok := byDate[date]; ok {
			return day
		}
	}
	return emptyDay(date)
}

// MergeWithLocal overlays local drafts onto the stored day as a keyed map:
// a draft carrying a backend id replaces the matching server slot, so each id
// appears exactly once; drafts without a backend id are appended as new
// entries; removed drafts are excluded and also shadow their server copy.
// The merged result is ordered by start minute.
func (s *ScheduleStore) MergeWithLocal(doctorID, date string, drafts []models.DraftSlot) []models.Slot {
	day := s.Day(doctorID, date)

	overlay := make(map[string]models.DraftSlot, len(drafts))
	for _, draft := range drafts {
		if draft.BackendID != "" {
			overlay[draft.BackendID] = draft
		}
	}

	merged := make([]models.Slot, 0, len(day.Slots)+len(drafts))
	for _, slot := range day.Slots {
		if draft, ok := overlay[slot.ID]; ok {
			if !draft.Removed {
				merged = append(merged, draft.Slot)
			}
			continue
		}
		merged = append(merged, slot)
	}
	for _, draft := range drafts {
		if draft.Removed || draft.BackendID != "" {
			continue
		}
		merged = append(merged, draft.Slot)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Start < merged[j].Start
	})
	return merged
}

// Discard drops a doctor's window, e.g. when the active doctor changes.
func (s *ScheduleStore) Discard(doctorID string) {
	s.mu.Lock()
	delete(s.days, doctorID)
	s.mu.Unlock()
}

func (s *ScheduleStore) today() time.Time {
	t := s.now()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func emptyDay(date string) models.ScheduleDay {
	weekday := ""
	if t, err := time.Parse(dateLayout, date); err == nil {
		weekday = t.Weekday().String()
	}
	return models.ScheduleDay{Date: date, Weekday: weekday, IsAvailable: false, Slots: nil}
}
