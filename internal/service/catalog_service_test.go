package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hospital-ops-api/internal/models"
)

func TestCatalogServiceLoadsOnce(t *testing.T) {
	repo := &countingCatalogRepo{catalog: &models.Catalog{
		Shifts: []models.ShiftTemplate{{ID: "morning", Name: "Morning", Start: 480, End: 720}},
	}}
	svc := NewCatalogService(repo, NewCacheService(nil, nil, 0, nil), 0, nil)

	ctx := context.Background()
	first := svc.Catalog(ctx)
	second := svc.Catalog(ctx)
	assert.Same(t, first, second)
	assert.Equal(t, 1, repo.calls)
}

func TestCatalogServiceDegradesOnFailure(t *testing.T) {
	repo := &countingCatalogRepo{err: errors.New("catalog backend down")}
	svc := NewCatalogService(repo, NewCacheService(nil, nil, 0, nil), 0, nil)

	ctx := context.Background()
	catalog := svc.Catalog(ctx)
	require.NotNil(t, catalog)
	assert.Empty(t, catalog.Shifts)

	// Unconstrained, not blocked: every shift resolves to nil bounds.
	assert.Nil(t, svc.ShiftBounds(ctx, "morning"))

	// The failure is latched for the session; no retry storm.
	svc.Catalog(ctx)
	assert.Equal(t, 1, repo.calls)
}

func TestCatalogServiceRefresh(t *testing.T) {
	repo := &countingCatalogRepo{catalog: &models.Catalog{}}
	svc := NewCatalogService(repo, NewCacheService(nil, nil, 0, nil), 0, nil)

	ctx := context.Background()
	svc.Catalog(ctx)
	svc.Refresh(ctx)
	svc.Catalog(ctx)
	assert.Equal(t, 2, repo.calls)
}

type countingCatalogRepo struct {
	catalog *models.Catalog
	err     error
	calls   int
}

func (r *countingCatalogRepo) Load(ctx context.Context) (*models.Catalog, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.catalog, nil
}
