package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/hospital-ops-api/internal/models"
	appErrors "github.com/noah-isme/hospital-ops-api/pkg/errors"
	"github.com/noah-isme/hospital-ops-api/pkg/timeconv"
)

type scheduleSaver interface {
	ReplaceForDate(ctx context.Context, batch models.SaveBatch) error
}

type sessionKey struct {
	doctorID string
	date     string
}

// editSession is the per-date working set. Its mutex is held for the whole of
// a save, so an OpenDay on the same doctor-date cannot observe pre-save state
// while the submission is still in flight.
type editSession struct {
	mu       sync.Mutex
	doctorID string
	date     string
	state    models.SessionState
	snapshot []models.Slot
	drafts   map[string]*models.DraftSlot
	order    []string
	dirty    bool
	closed   bool
}

// EditSessionService drives the per-date edit lifecycle:
// Idle → DayOpen → Editing ⇄ Validating → Saving → cleared | SaveFailed.
//
// Sessions are keyed by (doctor, date); edits on different dates never
// interfere. All mutations pass through the slot validator before they are
// retained, so the buffer never holds an invalid intermediate state.
type EditSessionService struct {
	store   *ScheduleStore
	saver   scheduleSaver
	catalog *CatalogService
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger

	horizonDays     int
	defaultMaxAppts int
	now             func() time.Time

	mu       sync.Mutex
	sessions map[sessionKey]*editSession
}

// SessionView is the controller's answer to reads: the session summary plus
// the merged, ordered draft slots.
type SessionView struct {
	Info  models.EditSessionInfo `json:"info"`
	Slots []models.Slot          `json:"slots"`
}

// NewEditSessionService constructs the controller.
func NewEditSessionService(store *ScheduleStore, saver scheduleSaver, catalog *CatalogService, cache *CacheService, metrics *MetricsService, horizonDays, defaultMaxAppts int, logger *zap.Logger) *EditSessionService {
	if defaultMaxAppts <= 0 {
		defaultMaxAppts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EditSessionService{
		store:           store,
		saver:           saver,
		catalog:         catalog,
		cache:           cache,
		metrics:         metrics,
		logger:          logger,
		horizonDays:     horizonDays,
		defaultMaxAppts: defaultMaxAppts,
		now:             time.Now,
		sessions:        make(map[sessionKey]*editSession),
	}
}

// CanEdit is the named edit-horizon policy: a day is editable only when it
// lies between today and today+horizon. The controller evaluates it at
// OpenDay and again at Save; it is not a UI concern.
func (s *EditSessionService) CanEdit(date string) error {
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid date %q", date))
	}
	t := s.now()
	today := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	diff := int(day.Sub(today).Hours() / 24)
	if diff < 0 {
		return appErrors.Clone(appErrors.ErrEditWindowClosed, "past dates cannot be edited")
	}
	if s.horizonDays > 0 && diff > s.horizonDays {
		return appErrors.Clone(appErrors.ErrEditWindowClosed,
			fmt.Sprintf("date is more than %d days ahead", s.horizonDays))
	}
	return nil
}

// OpenDay opens (or re-enters) the edit session for a doctor-date. A fresh
// session snapshots the stored day and seeds the buffer from it; an existing
// session keeps its drafts and only refreshes the merged view. The call
// blocks while a save for the same doctor-date is still resolving.
func (s *EditSessionService) OpenDay(ctx context.Context, doctorID, date string) (*SessionView, error) {
	if err := s.CanEdit(date); err != nil {
		return nil, err
	}

	for {
		sess := s.obtain(doctorID, date)
		sess.mu.Lock()
		if sess.closed {
			sess.mu.Unlock()
			continue
		}
		if len(sess.drafts) == 0 && !sess.dirty {
			s.seedLocked(sess)
			sess.state = models.SessionDayOpen
		}
		view := s.viewLocked(sess)
		sess.mu.Unlock()
		return view, nil
	}
}

// AddSlot appends a draft with a fresh local id, no backend id, a default
// unconstrained window and the configured default appointment capacity.
func (s *EditSessionService) AddSlot(ctx context.Context, doctorID, date string) (*SessionView, error) {
	sess, err := s.open(doctorID, date)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	localID := uuid.NewString()
	start, end := s.defaultWindowLocked(sess)
	draft := &models.DraftSlot{
		LocalID: localID,
		Slot: models.Slot{
			ID:              localID,
			DoctorID:        doctorID,
			Date:            date,
			Start:           start,
			End:             end,
			MaxAppointments: s.defaultMaxAppts,
			Origin:          models.SlotOriginLocal,
		},
	}
	sess.drafts[localID] = draft
	sess.order = append(sess.order, localID)
	sess.dirty = true
	sess.state = models.SessionEditing
	return s.viewLocked(sess), nil
}

// UpdateField applies one field change to a draft. Changes touching the time
// window or shift reference are validated against every other draft in the
// buffer before they are kept; a rejected change is rolled back in place and
// its structured reason returned. The buffer never retains invalid state.
func (s *EditSessionService) UpdateField(ctx context.Context, doctorID, date, slotID, field, value string) (*SessionView, error) {
	sess, err := s.open(doctorID, date)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	draft := s.findLocked(sess, slotID)
	if draft == nil || draft.Removed {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no draft slot %s", slotID))
	}

	candidate := draft.Slot
	revalidate := false
	switch field {
	case "title":
		candidate.Title = value
	case "notes":
		candidate.Notes = value
	case "start_time":
		minutes, ok := timeconv.WireToMinutes(value)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unparseable time %q", value))
		}
		candidate.Start = minutes
		revalidate = true
	case "end_time":
		minutes, ok := timeconv.WireToMinutes(value)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unparseable time %q", value))
		}
		candidate.End = minutes
		revalidate = true
	case "shift_template_id":
		candidate.ShiftTemplateID = value
		revalidate = true
	case "event_type_id":
		candidate.EventTypeID = value
	case "max_appointments":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid max_appointments %q", value))
		}
		candidate.MaxAppointments = n
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown field %q", field))
	}

	if revalidate {
		siblings := s.activeSlotsLocked(sess, draft.LocalID)
		bounds := s.catalog.ShiftBounds(ctx, candidate.ShiftTemplateID)
		if verr := ValidateSlot(candidate, siblings, bounds); verr != nil {
			s.metrics.RecordValidationFailure(string(verr.Reason))
			return nil, s.wrapValidation(verr)
		}
	}

	candidate.Origin = models.SlotOriginLocal
	draft.Slot = candidate
	sess.dirty = true
	sess.state = models.SessionEditing
	return s.viewLocked(sess), nil
}

// RemoveSlot deletes a draft. A backend-sourced draft is tombstoned so the
// save batch carries an explicit delete; omitting it would let the server
// copy resurrect on refetch. A never-saved draft simply vanishes.
func (s *EditSessionService) RemoveSlot(ctx context.Context, doctorID, date, slotID string) (*SessionView, error) {
	sess, err := s.open(doctorID, date)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	draft := s.findLocked(sess, slotID)
	if draft == nil || draft.Removed {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no draft slot %s", slotID))
	}

	if draft.BackendID != "" {
		draft.Removed = true
	} else {
		delete(sess.drafts, draft.LocalID)
		for i, id := range sess.order {
			if id == draft.LocalID {
				sess.order = append(sess.order[:i], sess.order[i+1:]...)
				break
			}
		}
	}
	sess.dirty = true
	sess.state = models.SessionEditing
	return s.viewLocked(sess), nil
}

// Save validates the whole buffer, then submits one replace-for-date batch.
// Validation or submission failure leaves the buffer untouched; unsaved work
// is never lost. On success the buffer is cleared and the store refetched, so
// the next read observes the server truth.
func (s *EditSessionService) Save(ctx context.Context, doctorID, date string) (models.ScheduleDay, error) {
	sess, err := s.open(doctorID, date)
	if err != nil {
		return models.ScheduleDay{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := s.CanEdit(date); err != nil {
		return models.ScheduleDay{}, err
	}

	sess.state = models.SessionSaving

	active := s.activeSlotsLocked(sess, "")
	bounds := func(shiftID string) *models.ShiftBounds {
		return s.catalog.ShiftBounds(ctx, shiftID)
	}
	if verr := ValidateDay(active, bounds); verr != nil {
		sess.state = models.SessionEditing
		s.metrics.RecordValidationFailure(string(verr.Reason))
		s.metrics.RecordSave("rejected")
		return models.ScheduleDay{}, s.wrapValidation(verr)
	}

	batch := s.batchLocked(sess)
	if err := s.saver.ReplaceForDate(ctx, batch); err != nil {
		sess.state = models.SessionSaveFailed
		s.metrics.RecordSave("failed")
		s.logger.Error("replace-for-date failed",
			zap.String("doctor_id", doctorID), zap.String("date", date), zap.Error(err))
		return models.ScheduleDay{}, appErrors.Wrap(err, appErrors.ErrSaveFailed.Code, appErrors.ErrSaveFailed.Status, appErrors.ErrSaveFailed.Message)
	}

	sess.closed = true
	s.mu.Lock()
	delete(s.sessions, sessionKey{doctorID: doctorID, date: date})
	openCount := len(s.sessions)
	s.mu.Unlock()
	s.metrics.RecordSave("success")
	s.metrics.SetOpenSessions(openCount)

	_ = s.cache.Invalidate(ctx, monthViewCachePattern(doctorID))

	if _, err := s.store.Fetch(ctx, doctorID); err != nil {
		// The save is durable; a refetch failure only delays the refresh.
		s.logger.Warn("post-save refetch failed", zap.String("doctor_id", doctorID), zap.Error(err))
	}
	return s.store.Day(doctorID, date), nil
}

// Cancel discards the buffer and restores the DayOpen snapshot unchanged.
func (s *EditSessionService) Cancel(ctx context.Context, doctorID, date string) (*SessionView, error) {
	sess, err := s.open(doctorID, date)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	s.seedLocked(sess)
	sess.dirty = false
	sess.state = models.SessionDayOpen
	return s.viewLocked(sess), nil
}

// Close drops the session entirely, e.g. when the active doctor changes.
// Unsaved drafts are discarded without persisting.
func (s *EditSessionService) Close(doctorID, date string) {
	key := sessionKey{doctorID: doctorID, date: date}
	s.mu.Lock()
	delete(s.sessions, key)
	s.metrics.SetOpenSessions(len(s.sessions))
	s.mu.Unlock()
}

// Sessions lists the open sessions for a doctor so callers can warn before a
// doctor switch discards unsaved work.
func (s *EditSessionService) Sessions(doctorID string) []models.EditSessionInfo {
	s.mu.Lock()
	open := make([]*editSession, 0, len(s.sessions))
	for key, sess := range s.sessions {
		if key.doctorID == doctorID {
			open = append(open, sess)
		}
	}
	s.mu.Unlock()

	infos := make([]models.EditSessionInfo, 0, len(open))
	for _, sess := range open {
		sess.mu.Lock()
		infos = append(infos, s.infoLocked(sess))
		sess.mu.Unlock()
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Date < infos[j].Date })
	return infos
}

// DraftsFor returns a copy of the open drafts for a doctor-date, or nil when
// no session is open. The month view projection merges these read-only.
func (s *EditSessionService) DraftsFor(doctorID, date string) []models.DraftSlot {
	s.mu.Lock()
	sess, ok := s.sessions[sessionKey{doctorID: doctorID, date: date}]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	drafts := make([]models.DraftSlot, 0, len(sess.order))
	for _, id := range sess.order {
		if draft, ok := sess.drafts[id]; ok {
			drafts = append(drafts, *draft)
		}
	}
	return drafts
}

func (s *EditSessionService) obtain(doctorID, date string) *editSession {
	key := sessionKey{doctorID: doctorID, date: date}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[key]
	if !ok {
		sess = &editSession{
			doctorID: doctorID,
			date:     date,
			state:    models.SessionIdle,
			drafts:   make(map[string]*models.DraftSlot),
		}
		s.sessions[key] = sess
		s.metrics.SetOpenSessions(len(s.sessions))
	}
	return sess
}

// open returns the existing session or fails: mutations require a prior
// OpenDay so the buffer is always snapshot-seeded.
func (s *EditSessionService) open(doctorID, date string) (*editSession, error) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionKey{doctorID: doctorID, date: date}]
	s.mu.Unlock()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNoOpenSession, fmt.Sprintf("open day %s first", date))
	}
	return sess, nil
}

// seedLocked (re)initialises the buffer from the stored day. Server slots
// become backend-tracked drafts; the snapshot is retained for cancel/diff.
func (s *EditSessionService) seedLocked(sess *editSession) {
	day := s.store.Day(sess.doctorID, sess.date)
	sess.snapshot = append([]models.Slot(nil), day.Slots...)
	sess.drafts = make(map[string]*models.DraftSlot, len(day.Slots))
	sess.order = sess.order[:0]
	for _, slot := range day.Slots {
		localID := uuid.NewString()
		sess.drafts[localID] = &models.DraftSlot{
			LocalID:   localID,
			BackendID: slot.ID,
			Slot:      slot,
		}
		sess.order = append(sess.order, localID)
	}
}

func (s *EditSessionService) findLocked(sess *editSession, slotID string) *models.DraftSlot {
	if draft, ok := sess.drafts[slotID]; ok {
		return draft
	}
	for _, draft := range sess.drafts {
		if draft.Slot.ID == slotID || draft.BackendID == slotID {
			return draft
		}
	}
	return nil
}

// activeSlotsLocked returns the non-removed draft slots, excluding one local
// id when revalidating a single candidate.
func (s *EditSessionService) activeSlotsLocked(sess *editSession, excludeLocalID string) []models.Slot {
	slots := make([]models.Slot, 0, len(sess.order))
	for _, id := range sess.order {
		draft, ok := sess.drafts[id]
		if !ok || draft.Removed || draft.LocalID == excludeLocalID {
			continue
		}
		slots = append(slots, draft.Slot)
	}
	return slots
}

// defaultWindowLocked picks the first free hour from 08:00 so a fresh draft
// starts valid against its siblings whenever the day has room.
func (s *EditSessionService) defaultWindowLocked(sess *editSession) (int, int) {
	const hour = 60
	start := 8 * hour
	taken := s.activeSlotsLocked(sess, "")
	for start+hour <= timeconv.MinutesPerDay {
		candidate := models.Slot{Start: start, End: start + hour}
		clear := true
		for _, slot := range taken {
			if candidate.Overlaps(slot) {
				clear = false
				start = slot.End
				break
			}
		}
		if clear {
			return start, start + hour
		}
	}
	return 8 * hour, 9 * hour
}

func (s *EditSessionService) batchLocked(sess *editSession) models.SaveBatch {
	batch := models.SaveBatch{DoctorID: sess.doctorID, Date: sess.date}
	for _, id := range sess.order {
		draft, ok := sess.drafts[id]
		if !ok {
			continue
		}
		switch {
		case draft.Removed && draft.BackendID != "":
			batch.Deletes = append(batch.Deletes, draft.BackendID)
		case draft.Removed:
			// Never persisted; nothing to tell the server.
		case draft.BackendID != "":
			slot := draft.Slot
			slot.ID = draft.BackendID
			batch.Updates = append(batch.Updates, slot)
		default:
			batch.Inserts = append(batch.Inserts, draft.Slot)
		}
	}
	return batch
}

func (s *EditSessionService) infoLocked(sess *editSession) models.EditSessionInfo {
	count := 0
	for _, draft := range sess.drafts {
		if !draft.Removed {
			count++
		}
	}
	return models.EditSessionInfo{
		DoctorID:   sess.doctorID,
		Date:       sess.date,
		State:      sess.state,
		Dirty:      sess.dirty,
		DraftCount: count,
	}
}

func (s *EditSessionService) viewLocked(sess *editSession) *SessionView {
	slots := s.activeSlotsLocked(sess, "")
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Start < slots[j].Start })
	return &SessionView{Info: s.infoLocked(sess), Slots: slots}
}

func (s *EditSessionService) wrapValidation(verr *models.SlotValidationError) error {
	base := appErrors.ErrValidation
	if verr.Reason == models.ReasonOverlap {
		base = appErrors.ErrConflict
	}
	return appErrors.Wrap(verr, base.Code, base.Status, verr.Message)
}

func monthViewCachePattern(doctorID string) string {
	return "monthview:" + doctorID + ":*"
}
