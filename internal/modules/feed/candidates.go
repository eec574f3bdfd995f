package feed

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/opencircle/opencircle-backend/internal/data/graph"
	"github.com/opencircle/opencircle-backend/internal/pkg/logger"
	"github.com/opencircle/opencircle-backend/internal/repos"
	"github.com/opencircle/opencircle-backend/internal/types"
)

const (
	// overfetchFactor bounds each bucket query at target*overfetchFactor so
	// filtering and quotas still leave enough to fill the page.
	overfetchFactor = 3
	// minInterestStrength gates which interests drive candidate retrieval.
	minInterestStrength = 0.3
	// discoveryMinQuality gates the discovery pool.
	discoveryMinQuality = 0.7
)

// CandidateSet is everything retrieval hands to scoring: raw candidates per
// bucket plus the shared context data fetched along the way.
type CandidateSet struct {
	ByBucket    map[types.Bucket][]*Candidate
	Connections map[uuid.UUID]*types.Connection
	Interests   []*types.Interest
	Trending    map[uuid.UUID]*types.TrendingMetric
	Blocked     map[uuid.UUID]struct{}
}

// Retriever issues one bounded query per bucket against the content, graph
// and trending collaborators. A failing bucket degrades to empty; retrieval
// as a whole never fails.
type Retriever struct {
	log       *logger.Logger
	content   repos.ContentRepo
	trending  repos.TrendingMetricRepo
	interests repos.InterestRepo
	graph     graph.ConnectionGraph

	window        string
	bucketTimeout time.Duration
}

func NewRetriever(
	content repos.ContentRepo,
	trending repos.TrendingMetricRepo,
	interests repos.InterestRepo,
	connectionGraph graph.ConnectionGraph,
	window string,
	bucketTimeout time.Duration,
	baseLog *logger.Logger,
) *Retriever {
	if window == "" {
		window = "24h"
	}
	if bucketTimeout <= 0 {
		bucketTimeout = 2 * time.Second
	}
	return &Retriever{
		log:           baseLog.With("component", "Retriever"),
		content:       content,
		trending:      trending,
		interests:     interests,
		graph:         connectionGraph,
		window:        window,
		bucketTimeout: bucketTimeout,
	}
}

// Retrieve fans out the six bucket queries. Buckets with a zero target are
// skipped entirely.
func (r *Retriever) Retrieve(ctx context.Context, userID uuid.UUID, targets map[types.Bucket]int) *CandidateSet {
	set := &CandidateSet{
		ByBucket:    make(map[types.Bucket][]*Candidate, len(types.AllBuckets)),
		Connections: map[uuid.UUID]*types.Connection{},
		Trending:    map[uuid.UUID]*types.TrendingMetric{},
		Blocked:     map[uuid.UUID]struct{}{},
	}

	// Graph and interest context load first; several buckets depend on them.
	if r.graph != nil {
		conns, err := r.graph.AcceptedConnections(ctx, userID)
		if err != nil {
			r.log.Warn("connection load failed, continuing without", "error", err, "user_id", userID)
		}
		for _, c := range conns {
			if c != nil {
				set.Connections[c.ToUserID] = c
			}
		}
		blocked, err := r.graph.BlockedCreators(ctx, userID)
		if err != nil {
			r.log.Warn("blocked creator load failed, continuing without", "error", err, "user_id", userID)
		} else {
			set.Blocked = blocked
		}
	}
	if r.interests != nil {
		ints, err := r.interests.GetByUserID(ctx, nil, userID, minInterestStrength)
		if err != nil {
			r.log.Warn("interest load failed, continuing without", "error", err, "user_id", userID)
		} else {
			set.Interests = ints
		}
	}

	results := make([][]*Candidate, len(types.AllBuckets))
	trendingMetrics := make([]*types.TrendingMetric, 0)

	g, gctx := errgroup.WithContext(ctx)
	for i, bucket := range types.AllBuckets {
		target := targets[bucket]
		if target <= 0 {
			continue
		}
		i, bucket := i, bucket
		limit := target * overfetchFactor
		g.Go(func() error {
			bctx, cancel := context.WithTimeout(gctx, r.bucketTimeout)
			defer cancel()

			items, metrics, err := r.fetchBucket(bctx, bucket, userID, set, limit)
			if err != nil {
				// A bucket failure (including timeout) is contained here.
				r.log.Warn("bucket retrieval failed, treating as empty",
					"bucket", bucket, "error", err, "user_id", userID)
				return nil
			}
			candidates := make([]*Candidate, 0, len(items))
			for _, item := range items {
				if item == nil || item.CreatorID == userID {
					continue
				}
				_, connected := set.Connections[item.CreatorID]
				candidates = append(candidates, &Candidate{
					Item:      item,
					Bucket:    bucket,
					Connected: connected,
				})
			}
			results[i] = candidates
			if bucket == types.BucketTrending {
				trendingMetrics = metrics
			}
			return nil
		})
	}
	_ = g.Wait()

	for i, bucket := range types.AllBuckets {
		if len(results[i]) > 0 {
			set.ByBucket[bucket] = results[i]
		}
	}
	for _, m := range trendingMetrics {
		if m != nil {
			set.Trending[m.ContentID] = m
		}
	}
	return set
}

func (r *Retriever) fetchBucket(ctx context.Context, bucket types.Bucket, userID uuid.UUID, set *CandidateSet, limit int) ([]*types.ContentItem, []*types.TrendingMetric, error) {
	switch bucket {
	case types.BucketPersonal:
		creators := make([]uuid.UUID, 0, len(set.Connections))
		for id := range set.Connections {
			creators = append(creators, id)
		}
		items, err := r.content.GetByCreators(ctx, nil, creators, limit)
		return items, nil, err

	case types.BucketInterest:
		names := make([]string, 0, len(set.Interests))
		for _, interest := range set.Interests {
			if interest.Source == types.InterestExplicit || interest.Source == types.InterestInferred {
				names = append(names, interest.Name)
			}
		}
		items, err := r.content.GetByTagOverlap(ctx, nil, names, limit)
		return items, nil, err

	case types.BucketTrending:
		metrics, err := r.trending.TopForWindow(ctx, nil, r.window, limit)
		if err != nil {
			return nil, nil, err
		}
		ids := make([]uuid.UUID, 0, len(metrics))
		for _, m := range metrics {
			ids = append(ids, m.ContentID)
		}
		items, err := r.content.GetByIDs(ctx, nil, ids)
		return items, metrics, err

	case types.BucketDiscovery:
		exclude := make([]uuid.UUID, 0, len(set.Connections)+1)
		exclude = append(exclude, userID)
		for id := range set.Connections {
			exclude = append(exclude, id)
		}
		items, err := r.content.GetHighQuality(ctx, nil, discoveryMinQuality, exclude, limit)
		return items, nil, err

	case types.BucketCommunity:
		items, err := r.content.GetByKind(ctx, nil, types.ContentCommunity, limit)
		return items, nil, err

	case types.BucketProduct:
		items, err := r.content.GetByKind(ctx, nil, types.ContentProduct, limit)
		return items, nil, err

	default:
		return nil, nil, nil
	}
}
