package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/hospital-ops-api/internal/models"
)

type catalogRepository interface {
	Load(ctx context.Context) (*models.Catalog, error)
}

// CatalogService loads shift template and event type reference data once per
// session and treats it as immutable afterwards.
//
// Failure policy is availability over strictness: when the load fails the
// engine proceeds with empty catalogs and unconstrained validation rather
// than blocking the calendar.
type CatalogService struct {
	repo   catalogRepository
	cache  *CacheService
	ttl    time.Duration
	logger *zap.Logger

	mu      sync.RWMutex
	catalog *models.Catalog
}

const catalogCacheKey = "catalog:v1"

// NewCatalogService constructs the service.
func NewCatalogService(repo catalogRepository, cache *CacheService, ttl time.Duration, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// Load fetches the catalogs, preferring the cache. It never returns an error:
// a failed load degrades to an empty catalog and is logged.
func (s *CatalogService) Load(ctx context.Context) *models.Catalog {
	s.mu.RLock()
	if s.catalog != nil {
		defer s.mu.RUnlock()
		return s.catalog
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.catalog != nil {
		return s.catalog
	}

	var cached models.Catalog
	if hit, _ := s.cache.Get(ctx, catalogCacheKey, &cached); hit {
		s.catalog = &cached
		return s.catalog
	}

	catalog, err := s.repo.Load(ctx)
	if err != nil {
		s.logger.Warn("catalog load failed, proceeding unconstrained", zap.Error(err))
		s.catalog = &models.Catalog{}
		return s.catalog
	}

	_ = s.cache.Set(ctx, catalogCacheKey, catalog, s.ttl)
	s.catalog = catalog
	return s.catalog
}

// Catalog returns the session snapshot, loading it on first use.
func (s *CatalogService) Catalog(ctx context.Context) *models.Catalog {
	return s.Load(ctx)
}

// ShiftBounds returns the bounds for a shift id; nil means unconstrained.
func (s *CatalogService) ShiftBounds(ctx context.Context, shiftID string) *models.ShiftBounds {
	return s.Load(ctx).ShiftBounds(shiftID)
}

// Refresh drops the in-memory snapshot so the next Load hits the repository.
// Reference data is immutable within a session; this exists for operational
// cache-busting only.
func (s *CatalogService) Refresh(ctx context.Context) {
	s.mu.Lock()
	s.catalog = nil
	s.mu.Unlock()
	_ = s.cache.Invalidate(ctx, catalogCacheKey)
}
