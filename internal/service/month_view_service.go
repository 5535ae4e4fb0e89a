package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/hospital-ops-api/internal/dto"
	"github.com/noah-isme/hospital-ops-api/internal/models"
)

// MonthViewService projects a doctor's stored days, overlaid with any open
// drafts, into a display-ready month grid. It is strictly read-only: nothing
// here mutates the store or an edit session.
type MonthViewService struct {
	store    *ScheduleStore
	sessions *EditSessionService
	catalog  *CatalogService
	cache    *CacheService
	logger   *zap.Logger

	summarySlots int
	cacheTTL     time.Duration
}

// NewMonthViewService constructs the projection service.
func NewMonthViewService(store *ScheduleStore, sessions *EditSessionService, catalog *CatalogService, cache *CacheService, summarySlots int, cacheTTL time.Duration, logger *zap.Logger) *MonthViewService {
	if summarySlots <= 0 {
		summarySlots = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MonthViewService{
		store:        store,
		sessions:     sessions,
		catalog:      catalog,
		cache:        cache,
		logger:       logger,
		summarySlots: summarySlots,
		cacheTTL:     cacheTTL,
	}
}

// Build renders the month grid for a doctor. The grid always spans full
// Monday-started weeks, so it includes the trailing and leading days of the
// adjacent months. Each cell shows the first few slots of its day plus an
// overflow count; its editable flag applies the same horizon policy the edit
// controller enforces.
//
// The rendered grid is cached per doctor-month, but only while the doctor has
// no open edit session: draft overlays are never served stale.
func (s *MonthViewService) Build(ctx context.Context, doctorID string, year, month int) (*dto.MonthView, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("month out of range: %d", month)
	}

	cacheable := len(s.sessions.Sessions(doctorID)) == 0
	key := monthViewCacheKey(doctorID, year, month)
	if cacheable {
		var cached dto.MonthView
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return &cached, nil
		}
	}

	catalog := s.catalog.Catalog(ctx)

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	gridStart := first.AddDate(0, 0, -mondayOffset(first.Weekday()))
	last := first.AddDate(0, 1, -1)
	gridEnd := last.AddDate(0, 0, 6-mondayOffset(last.Weekday()))

	view := &dto.MonthView{DoctorID: doctorID, Year: year, Month: month}
	var week []dto.MonthCell
	for d := gridStart; !d.After(gridEnd); d = d.AddDate(0, 0, 1) {
		week = append(week, s.buildCell(d, doctorID, int(d.Month()) == month, catalog))
		if len(week) == 7 {
			view.Weeks = append(view.Weeks, week)
			week = nil
		}
	}

	if cacheable {
		_ = s.cache.Set(ctx, key, view, s.cacheTTL)
	}
	return view, nil
}

func (s *MonthViewService) buildCell(d time.Time, doctorID string, inMonth bool, catalog *models.Catalog) dto.MonthCell {
	date := d.Format(dateLayout)
	day := s.store.Day(doctorID, date)
	slots := day.Slots
	if drafts := s.sessions.DraftsFor(doctorID, date); drafts != nil {
		slots = s.store.MergeWithLocal(doctorID, date, drafts)
	}

	cell := dto.MonthCell{
		Date:        date,
		Weekday:     d.Weekday().String(),
		InMonth:     inMonth,
		IsAvailable: day.IsAvailable || len(slots) > 0,
		Editable:    s.sessions.CanEdit(date) == nil,
	}
	for i, slot := range slots {
		if i == s.summarySlots {
			cell.Overflow = len(slots) - s.summarySlots
			break
		}
		cell.Slots = append(cell.Slots, ResolveDisplay(slot, catalog))
	}
	return cell
}

// mondayOffset maps a weekday to its zero-based position in a Monday-started
// week.
func mondayOffset(w time.Weekday) int {
	return (int(w) + 6) % 7
}

func monthViewCacheKey(doctorID string, year, month int) string {
	return fmt.Sprintf("monthview:%s:%04d-%02d", doctorID, year, month)
}
