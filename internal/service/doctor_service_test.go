package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hospital-ops-api/internal/models"
	appErrors "github.com/noah-isme/hospital-ops-api/pkg/errors"
)

type doctorRepoStub struct {
	doctors []models.Doctor
	total   int
	err     error
}

func (s doctorRepoStub) List(ctx context.Context, filter models.DoctorFilter) ([]models.Doctor, int, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	return s.doctors, s.total, nil
}

func (s doctorRepoStub) FindByID(ctx context.Context, id string) (*models.Doctor, error) {
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.doctors {
		if s.doctors[i].ID == id {
			return &s.doctors[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func TestDoctorServiceListPagination(t *testing.T) {
	repo := doctorRepoStub{
		doctors: []models.Doctor{{ID: "doc-1", Name: "Dr. Ayu"}},
		total:   41,
	}
	svc := NewDoctorService(repo, nil, nil, nil)

	doctors, pagination, err := svc.List(context.Background(), models.DoctorFilter{Page: 0, PageSize: 0})
	require.NoError(t, err)
	require.Len(t, doctors, 1)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 41, pagination.TotalCount)
}

func TestDoctorServiceGetNotFound(t *testing.T) {
	svc := NewDoctorService(doctorRepoStub{}, nil, nil, nil)

	_, err := svc.Get(context.Background(), "doc-missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDoctorServiceSelectFetchesWindow(t *testing.T) {
	h := newSessionHarness(t)
	repo := doctorRepoStub{doctors: []models.Doctor{
		{ID: "doc-1", Name: "Dr. Ayu"},
		{ID: "doc-2", Name: "Dr. Budi"},
	}}
	svc := NewDoctorService(repo, h.store, h.svc, nil)

	// Leave unsaved work open for doc-1, then switch to doc-2.
	ctx := context.Background()
	_, err := h.svc.OpenDay(ctx, "doc-1", "2026-03-03")
	require.NoError(t, err)
	_, err = h.svc.UpdateField(ctx, "doc-1", "2026-03-03", "42", "title", "Unsaved")
	require.NoError(t, err)

	result, err := svc.Select(ctx, "doc-2", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-2", result.Doctor.ID)
	assert.Len(t, result.Window, 14)
	require.Len(t, result.UnsavedBefore, 1)
	assert.Equal(t, "2026-03-03", result.UnsavedBefore[0].Date)
	assert.True(t, result.UnsavedBefore[0].Dirty)
}

func TestDoctorServiceDeactivateDiscardsWork(t *testing.T) {
	h := newSessionHarness(t)
	repo := doctorRepoStub{doctors: []models.Doctor{{ID: "doc-1", Name: "Dr. Ayu"}}}
	svc := NewDoctorService(repo, h.store, h.svc, nil)

	ctx := context.Background()
	_, err := h.svc.OpenDay(ctx, "doc-1", "2026-03-03")
	require.NoError(t, err)
	_, err = h.svc.AddSlot(ctx, "doc-1", "2026-03-03")
	require.NoError(t, err)

	svc.Deactivate("doc-1")
	assert.Empty(t, h.svc.Sessions("doc-1"))
	assert.Empty(t, h.store.Day("doc-1", "2026-03-03").Slots)
	assert.Zero(t, h.saver.calls)
}
