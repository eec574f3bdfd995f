package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"

	rediscl "github.com/opencircle/opencircle-backend/internal/clients/redis"
	"github.com/opencircle/opencircle-backend/internal/pkg/logger"
	"github.com/opencircle/opencircle-backend/internal/types"
)

// CacheTTLs sets the lifetime per cache kind.
type CacheTTLs struct {
	Feed        time.Duration
	Trending    time.Duration
	Connections time.Duration
	Engagement  time.Duration
}

func DefaultCacheTTLs() CacheTTLs {
	return CacheTTLs{
		Feed:        1800 * time.Second,
		Trending:    300 * time.Second,
		Connections: 3600 * time.Second,
		Engagement:  600 * time.Second,
	}
}

// CacheManager is the read-through cache around the pipeline and its
// upstream queries. Every method fails open: a broken cache degrades to
// direct computation, never to a request failure. No per-key lock guards a
// miss; concurrent cold requests recompute the same value, which is wasteful
// but harmless since the pipeline is deterministic for identical inputs.
type CacheManager struct {
	log   *logger.Logger
	store rediscl.CacheStore
	ttls  CacheTTLs
}

func NewCacheManager(store rediscl.CacheStore, ttls CacheTTLs, baseLog *logger.Logger) *CacheManager {
	zero := CacheTTLs{}
	if ttls == zero {
		ttls = DefaultCacheTTLs()
	}
	return &CacheManager{
		log:   baseLog.With("component", "CacheManager"),
		store: store,
		ttls:  ttls,
	}
}

// CompositionHash fingerprints the ratios so a composition change naturally
// misses the old pages.
func CompositionHash(c *types.FeedComposition) string {
	h := fnv.New64a()
	for _, b := range types.AllBuckets {
		fmt.Fprintf(h, "%s=%.4f;", b, c.Ratio(b))
	}
	fmt.Fprintf(h, "exp=%s", c.ExperimentGroup)
	return fmt.Sprintf("%016x", h.Sum64())
}

func FeedPageKey(userID uuid.UUID, compositionHash, cursor string) string {
	if cursor == "" {
		cursor = "first"
	}
	return fmt.Sprintf("feed:page:%s:%s:%s", userID, compositionHash, cursor)
}

func connectionsKey(userID uuid.UUID) string {
	return fmt.Sprintf("feed:conn:%s", userID)
}

func trendingKey(window string) string {
	return fmt.Sprintf("feed:trending:%s", window)
}

func creatorScoreKey(creatorID uuid.UUID) string {
	return fmt.Sprintf("feed:score:creator:%s", creatorID)
}

// FeedPage returns a cached page, or nil on miss or cache failure.
func (cm *CacheManager) FeedPage(ctx context.Context, key string) *types.FeedPage {
	if cm == nil || cm.store == nil {
		return nil
	}
	raw, ok, err := cm.store.Get(ctx, key)
	if err != nil {
		cm.log.Warn("feed page cache read failed, computing directly", "error", err, "key", key)
		return nil
	}
	if !ok {
		return nil
	}
	var page types.FeedPage
	if err := json.Unmarshal([]byte(raw), &page); err != nil {
		cm.log.Warn("feed page cache entry corrupt, dropping", "error", err, "key", key)
		_ = cm.store.Delete(ctx, key)
		return nil
	}
	return &page
}

// StoreFeedPage writes a computed page; failures are logged and swallowed.
func (cm *CacheManager) StoreFeedPage(ctx context.Context, key string, page *types.FeedPage) {
	if cm == nil || cm.store == nil || page == nil {
		return
	}
	raw, err := json.Marshal(page)
	if err != nil {
		cm.log.Warn("feed page marshal failed", "error", err, "key", key)
		return
	}
	if err := cm.store.Set(ctx, key, string(raw), cm.ttls.Feed); err != nil {
		cm.log.Warn("feed page cache write failed", "error", err, "key", key)
	}
}

// Connections read-through caches a user's accepted connections.
func (cm *CacheManager) Connections(ctx context.Context, userID uuid.UUID, load func(context.Context) ([]*types.Connection, error)) ([]*types.Connection, error) {
	if cm == nil || cm.store == nil {
		return load(ctx)
	}
	key := connectionsKey(userID)
	raw, ok, err := cm.store.Get(ctx, key)
	if err == nil && ok {
		var conns []*types.Connection
		if err := json.Unmarshal([]byte(raw), &conns); err == nil {
			return conns, nil
		}
		_ = cm.store.Delete(ctx, key)
	}
	conns, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if encoded, err := json.Marshal(conns); err == nil {
		if err := cm.store.Set(ctx, key, string(encoded), cm.ttls.Connections); err != nil {
			cm.log.Warn("connections cache write failed", "error", err, "user_id", userID)
		}
	}
	return conns, nil
}

// TrendingTop read-through caches the ranked trending snapshot per window.
func (cm *CacheManager) TrendingTop(ctx context.Context, window string, load func(context.Context) ([]*types.TrendingMetric, error)) ([]*types.TrendingMetric, error) {
	if cm == nil || cm.store == nil {
		return load(ctx)
	}
	key := trendingKey(window)
	raw, ok, err := cm.store.Get(ctx, key)
	if err == nil && ok {
		var metrics []*types.TrendingMetric
		if err := json.Unmarshal([]byte(raw), &metrics); err == nil {
			return metrics, nil
		}
		_ = cm.store.Delete(ctx, key)
	}
	metrics, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if encoded, err := json.Marshal(metrics); err == nil {
		if err := cm.store.Set(ctx, key, string(encoded), cm.ttls.Trending); err != nil {
			cm.log.Warn("trending cache write failed", "error", err, "window", window)
		}
	}
	return metrics, nil
}

// CreatorStats multi-gets per-creator metric entries, loading and caching
// the misses with the engagement TTL.
func (cm *CacheManager) CreatorStats(ctx context.Context, creatorIDs []uuid.UUID, load func(context.Context, []uuid.UUID) ([]*types.CreatorMetric, error)) (map[uuid.UUID]*types.CreatorMetric, error) {
	out := make(map[uuid.UUID]*types.CreatorMetric, len(creatorIDs))
	if len(creatorIDs) == 0 {
		return out, nil
	}
	if cm == nil || cm.store == nil {
		metrics, err := load(ctx, creatorIDs)
		if err != nil {
			return nil, err
		}
		for _, m := range metrics {
			out[m.CreatorID] = m
		}
		return out, nil
	}

	keys := make([]string, 0, len(creatorIDs))
	for _, id := range creatorIDs {
		keys = append(keys, creatorScoreKey(id))
	}
	cached, err := cm.store.MGet(ctx, keys)
	if err != nil {
		cm.log.Warn("creator stats cache read failed, loading directly", "error", err)
		cached = map[string]string{}
	}

	missing := make([]uuid.UUID, 0, len(creatorIDs))
	for i, id := range creatorIDs {
		raw, ok := cached[keys[i]]
		if !ok {
			missing = append(missing, id)
			continue
		}
		var m types.CreatorMetric
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			missing = append(missing, id)
			continue
		}
		out[id] = &m
	}

	if len(missing) > 0 {
		loaded, err := load(ctx, missing)
		if err != nil {
			return nil, err
		}
		toCache := make(map[string]string, len(loaded))
		for _, m := range loaded {
			out[m.CreatorID] = m
			if encoded, err := json.Marshal(m); err == nil {
				toCache[creatorScoreKey(m.CreatorID)] = string(encoded)
			}
		}
		if err := cm.store.MSet(ctx, toCache, cm.ttls.Engagement); err != nil {
			cm.log.Warn("creator stats cache write failed", "error", err)
		}
	}
	return out, nil
}

// InvalidateUserFeed clears every cached page and the connection snapshot
// for one user.
func (cm *CacheManager) InvalidateUserFeed(ctx context.Context, userID uuid.UUID) {
	if cm == nil || cm.store == nil {
		return
	}
	if err := cm.store.DeleteByPattern(ctx, fmt.Sprintf("feed:page:%s:*", userID)); err != nil {
		cm.log.Warn("feed page invalidation failed", "error", err, "user_id", userID)
	}
	if err := cm.store.Delete(ctx, connectionsKey(userID)); err != nil {
		cm.log.Warn("connection cache invalidation failed", "error", err, "user_id", userID)
	}
}

// HandleEvent maps a collaborator mutation to cache deletions. Unknown
// events are ignored.
func (cm *CacheManager) HandleEvent(ctx context.Context, ev types.DomainEvent) {
	if cm == nil || cm.store == nil {
		return
	}
	switch ev.Name {
	case types.EventProfileUpdated, types.EventPreferencesChanged,
		types.EventInterestChanged, types.EventCommunityMembership:
		if ev.UserID != uuid.Nil {
			if err := cm.store.DeleteByPattern(ctx, fmt.Sprintf("feed:page:%s:*", ev.UserID)); err != nil {
				cm.log.Warn("event invalidation failed", "error", err, "event", ev.Name)
			}
		}

	case types.EventConnectionChanged:
		cm.InvalidateUserFeed(ctx, ev.UserID)

	case types.EventCreatorMetricUpdate:
		// Coarse on purpose: a creator metric touches every item they made.
		if err := cm.store.DeleteByPattern(ctx, "feed:score:*"); err != nil {
			cm.log.Warn("creator metric invalidation failed", "error", err)
		}

	case types.EventContentUpdated:
		if ev.CreatorID != uuid.Nil {
			if err := cm.store.Delete(ctx, creatorScoreKey(ev.CreatorID)); err != nil {
				cm.log.Warn("content invalidation failed", "error", err)
			}
		}
		if err := cm.store.DeleteByPattern(ctx, "feed:trending:*"); err != nil {
			cm.log.Warn("trending invalidation failed", "error", err)
		}

	case types.EventEngagementRecorded:
		if ev.CreatorID != uuid.Nil {
			if err := cm.store.Delete(ctx, creatorScoreKey(ev.CreatorID)); err != nil {
				cm.log.Warn("engagement invalidation failed", "error", err)
			}
		}

	default:
		cm.log.Debug("ignoring unknown event", "event", ev.Name)
	}
}
