package feed

import (
	"sort"

	"github.com/google/uuid"

	"github.com/opencircle/opencircle-backend/internal/types"
)

// Candidate is one scored item flowing through the pipeline.
type Candidate struct {
	Item      *types.ContentItem
	Bucket    types.Bucket
	Connected bool
	Score     float64
	Breakdown types.ScoreBreakdown
}

// sortCandidates orders by score descending, ties broken by recency then id
// so the order is total and stable across runs.
func sortCandidates(candidates []*Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.Item.PublishedAt.Equal(b.Item.PublishedAt) {
			return a.Item.PublishedAt.After(b.Item.PublishedAt)
		}
		return a.Item.ID.String() < b.Item.ID.String()
	})
}

// dedupeByID keeps the first candidate per content id, preserving order.
func dedupeByID(candidates []*Candidate) []*Candidate {
	seen := make(map[uuid.UUID]struct{}, len(candidates))
	out := make([]*Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c == nil || c.Item == nil {
			continue
		}
		if _, ok := seen[c.Item.ID]; ok {
			continue
		}
		seen[c.Item.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}

// feedItem converts a candidate to its response form.
func feedItem(c *Candidate) types.FeedItem {
	return types.FeedItem{
		ID:        c.Item.ID,
		Kind:      c.Item.Kind,
		CreatorID: c.Item.CreatorID,
		Title:     c.Item.Title,
		Score:     c.Score,
		Reason:    reasonFor(c),
		Engagement: types.EngagementCounts{
			Likes:    c.Item.LikeCount,
			Comments: c.Item.CommentCount,
			Shares:   c.Item.ShareCount,
		},
		Breakdown:   c.Breakdown,
		PublishedAt: c.Item.PublishedAt,
	}
}

func reasonFor(c *Candidate) string {
	if c.Breakdown.Fallback != "" {
		return "suggested"
	}
	if c.Breakdown.Exploration {
		return "trending_now"
	}
	switch c.Bucket {
	case types.BucketPersonal:
		return "from_your_circles"
	case types.BucketInterest:
		return "matches_your_interests"
	case types.BucketTrending:
		return "trending_now"
	case types.BucketDiscovery:
		return "discover_something_new"
	case types.BucketCommunity:
		return "from_your_communities"
	case types.BucketProduct:
		return "marketplace_pick"
	default:
		return "suggested"
	}
}
