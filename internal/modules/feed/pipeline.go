package feed

import (
	"context"
	"encoding/binary"
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/google/uuid"

	rediscl "github.com/opencircle/opencircle-backend/internal/clients/redis"
	"github.com/opencircle/opencircle-backend/internal/data/graph"
	"github.com/opencircle/opencircle-backend/internal/modules/feed/scoring"
	"github.com/opencircle/opencircle-backend/internal/pkg/logger"
	"github.com/opencircle/opencircle-backend/internal/repos"
	"github.com/opencircle/opencircle-backend/internal/types"
)

// PipelineConfig carries the tunables of one composed pipeline.
type PipelineConfig struct {
	Window           string
	ConnectedRatio   float64
	CreatorCap       int
	SessionLimit     int
	ExplorationRatio float64
	BucketTimeout    time.Duration
}

// Pipeline runs the full composition flow: resolve ratios, retrieve and
// score candidates, enforce quotas and diversity, inject exploration, and
// fall back when under-filled. One call per page request; deterministic for
// identical inputs within the same hour bucket.
type Pipeline struct {
	log *logger.Logger

	resolver    *CompositionResolver
	retriever   *Retriever
	composer    *Composer
	exploration *ExplorationInjector
	filter      *HistoryFilter
	fallback    *FallbackSelector
	cache       *CacheManager

	engines map[types.Bucket]scoring.Engine

	history   rediscl.HistoryStore
	graph     graph.ConnectionGraph
	profiles  repos.UserProfileRepo
	creators  repos.CreatorMetricRepo
	interests repos.InterestRepo
}

// NewPipeline wires the pipeline. The connection graph is wrapped with the
// cache manager's read-through before retrieval sees it.
func NewPipeline(
	cfg PipelineConfig,
	compositions repos.FeedCompositionRepo,
	content repos.ContentRepo,
	trending repos.TrendingMetricRepo,
	interests repos.InterestRepo,
	profiles repos.UserProfileRepo,
	creators repos.CreatorMetricRepo,
	connectionGraph graph.ConnectionGraph,
	cache *CacheManager,
	history rediscl.HistoryStore,
	baseLog *logger.Logger,
) *Pipeline {
	log := baseLog.With("component", "FeedPipeline")

	cachedGraph := newCachedConnectionGraph(connectionGraph, cache)
	cachedTrending := newCachedTrendingRepo(trending, cache)

	engines := map[types.Bucket]scoring.Engine{
		types.BucketPersonal:  scoring.NewPersonalEngine(baseLog),
		types.BucketInterest:  scoring.NewInterestEngine(baseLog),
		types.BucketTrending:  scoring.NewTrendingEngine(baseLog),
		types.BucketDiscovery: scoring.NewDiscoveryEngine(baseLog),
		// Community posts rank by interest affinity, marketplace items by
		// their engagement trajectory.
		types.BucketCommunity: scoring.NewInterestEngine(baseLog),
		types.BucketProduct:   scoring.NewTrendingEngine(baseLog),
	}

	return &Pipeline{
		log:       log,
		resolver:  NewCompositionResolver(compositions, baseLog),
		retriever: NewRetriever(content, cachedTrending, interests, cachedGraph, cfg.Window, cfg.BucketTimeout, baseLog),
		composer: NewComposer(ComposerConfig{
			ConnectedRatio: cfg.ConnectedRatio,
			CreatorCap:     cfg.CreatorCap,
			SessionLimit:   cfg.SessionLimit,
		}, baseLog),
		exploration: NewExplorationInjector(cachedTrending, content, cfg.Window, cfg.ExplorationRatio, baseLog),
		filter:      NewHistoryFilter(baseLog),
		fallback:    NewFallbackSelector(content, cachedTrending, interests, cfg.Window, baseLog),
		cache:       cache,
		engines:     engines,
		history:     history,
		graph:       cachedGraph,
		profiles:    profiles,
		creators:    creators,
		interests:   interests,
	}
}

// Page is the cache-wrapped entry point: it resolves the composition,
// consults the page cache and only computes on a miss. Cache failures fall
// open to direct computation.
func (p *Pipeline) Page(ctx context.Context, userID uuid.UUID, first int, after string) *types.FeedPage {
	cursor := DecodeCursor(after)
	composition := p.resolver.Resolve(ctx, userID)

	key := FeedPageKey(userID, CompositionHash(composition), after)
	if cached := p.cache.FeedPage(ctx, key); cached != nil {
		cached.CacheStatus = types.CacheHit
		return cached
	}

	page := p.Generate(ctx, userID, first, cursor, composition)
	p.cache.StoreFeedPage(ctx, key, page)
	return page
}

// Generate computes one feed page. It never returns an error for content
// shortfalls; an empty page only happens when even the emergency fallback
// finds nothing.
func (p *Pipeline) Generate(ctx context.Context, userID uuid.UUID, first int, cursor Cursor, composition *types.FeedComposition) *types.FeedPage {
	now := time.Now().UTC()

	profile := p.loadProfile(ctx, userID)
	if composition == nil {
		composition = p.resolver.Resolve(ctx, userID)
	}
	targets := BucketTargets(composition, first)

	set := p.retriever.Retrieve(ctx, userID, targets)
	p.applyCursor(set, cursor)

	sets := p.loadHistorySets(ctx, userID, set.Blocked)
	sessionCounts := p.loadSessionCounts(ctx, userID)

	scored := p.scoreAll(ctx, userID, profile, set, now)
	filtered, loose := p.filter.Filter(scored, sets, first)
	if loose {
		p.log.Debug("history filter relaxed to loose mode", "user_id", userID)
	}

	selected := p.composer.Compose(filtered, first, sessionCounts)
	selected = p.exploration.Inject(ctx, selected, first, sets)

	if len(selected) < first {
		class := p.classify(ctx, userID, profile, set)
		exclude := make(map[uuid.UUID]struct{}, len(selected))
		for _, c := range selected {
			exclude[c.Item.ID] = struct{}{}
		}
		filled := p.fallback.Fill(ctx, userID, class, first-len(selected), exclude, sets)
		selected = append(selected, filled...)
	}

	selected = dedupeByID(selected)
	if len(selected) > first {
		selected = selected[:first]
	}

	items := make([]types.FeedItem, 0, len(selected))
	for _, c := range selected {
		items = append(items, feedItem(c))
	}

	page := &types.FeedPage{
		Items:       items,
		GeneratedAt: now,
		CacheStatus: types.CacheFresh,
	}
	if len(items) > 0 {
		last := items[len(items)-1]
		page.NextCursor = EncodeCursor(last.PublishedAt, last.ID)
	}
	return page
}

func (p *Pipeline) loadProfile(ctx context.Context, userID uuid.UUID) *types.UserProfile {
	if p.profiles == nil {
		return types.DefaultUserProfile(userID)
	}
	profile, err := p.profiles.GetByUserID(ctx, nil, userID)
	if err != nil {
		p.log.Warn("profile load failed, using default", "error", err, "user_id", userID)
		return types.DefaultUserProfile(userID)
	}
	if profile == nil {
		return types.DefaultUserProfile(userID)
	}
	return profile
}

func (p *Pipeline) applyCursor(set *CandidateSet, cursor Cursor) {
	if cursor.IsZero() {
		return
	}
	for bucket, candidates := range set.ByBucket {
		kept := candidates[:0]
		for _, c := range candidates {
			if cursor.Excludes(c.Item.PublishedAt, c.Item.ID) {
				continue
			}
			kept = append(kept, c)
		}
		set.ByBucket[bucket] = kept
	}
}

func (p *Pipeline) loadHistorySets(ctx context.Context, userID uuid.UUID, blocked map[uuid.UUID]struct{}) HistorySets {
	sets := HistorySets{
		Viewed:  map[uuid.UUID]struct{}{},
		Hidden:  map[uuid.UUID]struct{}{},
		Muted:   map[uuid.UUID]struct{}{},
		Blocked: blocked,
	}
	if p.history == nil {
		return sets
	}
	if viewed, err := p.history.ViewedToday(ctx, userID); err == nil {
		sets.Viewed = viewed
	} else {
		p.log.Warn("viewed set load failed, skipping filter", "error", err, "user_id", userID)
	}
	if hidden, err := p.history.HiddenToday(ctx, userID); err == nil {
		sets.Hidden = hidden
	} else {
		p.log.Warn("hidden set load failed, skipping filter", "error", err, "user_id", userID)
	}
	if muted, err := p.history.MutedCreators(ctx, userID); err == nil {
		sets.Muted = muted
	} else {
		p.log.Warn("muted set load failed, skipping filter", "error", err, "user_id", userID)
	}
	return sets
}

func (p *Pipeline) loadSessionCounts(ctx context.Context, userID uuid.UUID) map[uuid.UUID]int64 {
	if p.history == nil {
		return map[uuid.UUID]int64{}
	}
	counts, err := p.history.SessionCounts(ctx, userID)
	if err != nil {
		p.log.Warn("session count load failed, ignoring limit", "error", err, "user_id", userID)
		return map[uuid.UUID]int64{}
	}
	return counts
}

func (p *Pipeline) scoreAll(ctx context.Context, userID uuid.UUID, profile *types.UserProfile, set *CandidateSet, now time.Time) []*Candidate {
	creatorIDs := make([]uuid.UUID, 0)
	seenCreators := map[uuid.UUID]struct{}{}
	total := 0
	for _, candidates := range set.ByBucket {
		total += len(candidates)
		for _, c := range candidates {
			if _, ok := seenCreators[c.Item.CreatorID]; !ok {
				seenCreators[c.Item.CreatorID] = struct{}{}
				creatorIDs = append(creatorIDs, c.Item.CreatorID)
			}
		}
	}

	stats := map[uuid.UUID]*types.CreatorMetric{}
	if p.creators != nil {
		loaded, err := p.cache.CreatorStats(ctx, creatorIDs, func(ctx context.Context, ids []uuid.UUID) ([]*types.CreatorMetric, error) {
			return p.creators.GetByCreatorIDs(ctx, nil, ids)
		})
		if err != nil {
			p.log.Warn("creator stats load failed, scoring without", "error", err, "user_id", userID)
		} else {
			stats = loaded
		}
	}

	sc := &scoring.Context{
		Profile:      profile,
		Interests:    set.Interests,
		Connections:  set.Connections,
		CreatorStats: stats,
		Trending:     set.Trending,
		Now:          now,
		Rand:         seededRand(userID, now),
	}

	out := make([]*Candidate, 0, total)
	for bucket, candidates := range set.ByBucket {
		engine := p.engines[bucket]
		for _, c := range candidates {
			if engine == nil {
				continue
			}
			score, err := engine.Score(c.Item, sc)
			if err != nil {
				// Per-item containment: a scoring failure costs that item
				// its rank, nothing else.
				p.log.Warn("scoring failed for item, using zero",
					"error", err, "bucket", bucket, "content_id", c.Item.ID)
				score = 0
			}
			c.Score = score
			c.Breakdown = types.ScoreBreakdown{Bucket: bucket, Score: score}
			out = append(out, c)
		}
	}
	return out
}

func (p *Pipeline) classify(ctx context.Context, userID uuid.UUID, profile *types.UserProfile, set *CandidateSet) UserClass {
	connectionCount := int64(len(set.Connections))
	if p.graph != nil && connectionCount == 0 {
		if ct, err := p.graph.ConnectionCount(ctx, userID); err == nil {
			connectionCount = ct
		}
	}
	interestCount := int64(len(set.Interests))
	if p.interests != nil && interestCount == 0 {
		if ct, err := p.interests.CountByUserID(ctx, nil, userID); err == nil {
			interestCount = ct
		}
	}
	return ClassifyUser(profile, connectionCount, interestCount)
}

// seededRand derives a deterministic generator from (user, hour bucket) so
// discovery jitter and fallback cycling are reproducible within an hour.
func seededRand(userID uuid.UUID, now time.Time) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write(userID[:])
	var hour [8]byte
	binary.BigEndian.PutUint64(hour[:], uint64(now.Unix()/3600))
	_, _ = h.Write(hour[:])
	return rand.New(rand.NewSource(int64(h.Sum64())))
}
