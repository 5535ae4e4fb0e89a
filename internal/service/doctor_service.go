package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/hospital-ops-api/internal/models"
	appErrors "github.com/noah-isme/hospital-ops-api/pkg/errors"
)

type doctorRepository interface {
	List(ctx context.Context, filter models.DoctorFilter) ([]models.Doctor, int, error)
	FindByID(ctx context.Context, id string) (*models.Doctor, error)
}

// DoctorService reads the doctor directory and coordinates the calendar side
// of a doctor switch.
type DoctorService struct {
	repo     doctorRepository
	store    *ScheduleStore
	sessions *EditSessionService
	logger   *zap.Logger
}

// SelectResult reports the outcome of activating a doctor: the freshly
// fetched window plus any unsaved sessions still open for the previously
// active doctor, so callers can warn before that work is discarded.
type SelectResult struct {
	Doctor        models.Doctor            `json:"doctor"`
	Window        []models.ScheduleDay     `json:"window"`
	UnsavedBefore []models.EditSessionInfo `json:"unsaved_before,omitempty"`
}

// NewDoctorService constructs the service.
func NewDoctorService(repo doctorRepository, store *ScheduleStore, sessions *EditSessionService, logger *zap.Logger) *DoctorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DoctorService{repo: repo, store: store, sessions: sessions, logger: logger}
}

// List returns doctors matching the filter with pagination metadata.
func (s *DoctorService) List(ctx context.Context, filter models.DoctorFilter) ([]models.Doctor, models.Pagination, error) {
	doctors, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list doctors")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return doctors, models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one doctor or a not-found error.
func (s *DoctorService) Get(ctx context.Context, id string) (*models.Doctor, error) {
	doctor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("doctor %s not found", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load doctor")
	}
	return doctor, nil
}

// Select activates a doctor: it verifies the doctor exists, fetches their
// rolling window into the store, and reports any unsaved sessions still open
// for the previously active doctor. Those sessions are not discarded here;
// callers decide whether to close them after warning the user.
func (s *DoctorService) Select(ctx context.Context, doctorID, previousDoctorID string) (*SelectResult, error) {
	doctor, err := s.Get(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	window, err := s.store.Fetch(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	result := &SelectResult{Doctor: *doctor, Window: window}
	if previousDoctorID != "" && previousDoctorID != doctorID {
		result.UnsavedBefore = s.sessions.Sessions(previousDoctorID)
	}
	return result, nil
}

// Deactivate drops a doctor's cached window and closes their open sessions,
// discarding unsaved drafts.
func (s *DoctorService) Deactivate(doctorID string) {
	for _, info := range s.sessions.Sessions(doctorID) {
		s.sessions.Close(doctorID, info.Date)
	}
	s.store.Discard(doctorID)
	s.logger.Info("doctor deactivated", zap.String("doctor_id", doctorID))
}
