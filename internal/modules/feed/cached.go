package feed

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opencircle/opencircle-backend/internal/data/graph"
	"github.com/opencircle/opencircle-backend/internal/repos"
	"github.com/opencircle/opencircle-backend/internal/types"
)

// cachedConnectionGraph read-through caches accepted connections with the
// connections TTL. Blocks and counts stay uncached; they are cheap and
// safety-relevant.
type cachedConnectionGraph struct {
	inner graph.ConnectionGraph
	cache *CacheManager
}

func newCachedConnectionGraph(inner graph.ConnectionGraph, cache *CacheManager) graph.ConnectionGraph {
	if inner == nil || cache == nil {
		return inner
	}
	return &cachedConnectionGraph{inner: inner, cache: cache}
}

func (g *cachedConnectionGraph) AcceptedConnections(ctx context.Context, userID uuid.UUID) ([]*types.Connection, error) {
	return g.cache.Connections(ctx, userID, func(ctx context.Context) ([]*types.Connection, error) {
		return g.inner.AcceptedConnections(ctx, userID)
	})
}

func (g *cachedConnectionGraph) BlockedCreators(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	return g.inner.BlockedCreators(ctx, userID)
}

func (g *cachedConnectionGraph) ConnectionCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return g.inner.ConnectionCount(ctx, userID)
}

// cachedTrendingRepo read-through caches the per-window top snapshot.
type cachedTrendingRepo struct {
	inner repos.TrendingMetricRepo
	cache *CacheManager
}

func newCachedTrendingRepo(inner repos.TrendingMetricRepo, cache *CacheManager) repos.TrendingMetricRepo {
	if inner == nil || cache == nil {
		return inner
	}
	return &cachedTrendingRepo{inner: inner, cache: cache}
}

func (r *cachedTrendingRepo) TopForWindow(ctx context.Context, tx *gorm.DB, window string, limit int) ([]*types.TrendingMetric, error) {
	metrics, err := r.cache.TrendingTop(ctx, window, func(ctx context.Context) ([]*types.TrendingMetric, error) {
		// Cache the full snapshot; slice to the specific limit below.
		return r.inner.TopForWindow(ctx, tx, window, trendingSnapshotSize)
	})
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(metrics) > limit {
		metrics = metrics[:limit]
	}
	return metrics, nil
}

func (r *cachedTrendingRepo) GetByContentIDs(ctx context.Context, tx *gorm.DB, window string, contentIDs []uuid.UUID) ([]*types.TrendingMetric, error) {
	return r.inner.GetByContentIDs(ctx, tx, window, contentIDs)
}

// trendingSnapshotSize bounds the cached snapshot; callers slice smaller
// limits out of it.
const trendingSnapshotSize = 200
