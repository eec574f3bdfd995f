package types

import (
	"time"

	"github.com/google/uuid"
)

// CacheStatus reports whether a feed page was computed for this request or
// served from cache.
type CacheStatus string

const (
	CacheFresh CacheStatus = "fresh"
	CacheHit   CacheStatus = "hit"
)

// EngagementCounts is the public engagement summary attached to a feed item.
type EngagementCounts struct {
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
	Shares   int64 `json:"shares"`
}

// ScoreBreakdown exposes which bucket an item came from and the raw score
// it carried, for client-side debugging and experimentation.
type ScoreBreakdown struct {
	Bucket      Bucket  `json:"bucket"`
	Score       float64 `json:"score"`
	Exploration bool    `json:"exploration,omitempty"`
	Fallback    string  `json:"fallback,omitempty"`
}

// FeedItem is a single ranked entry of a composed feed page.
type FeedItem struct {
	ID          uuid.UUID        `json:"id"`
	Kind        ContentKind      `json:"type"`
	CreatorID   uuid.UUID        `json:"creator_id"`
	Title       string           `json:"title,omitempty"`
	Score       float64          `json:"score"`
	Reason      string           `json:"reason"`
	Engagement  EngagementCounts `json:"engagement"`
	Breakdown   ScoreBreakdown   `json:"breakdown"`
	PublishedAt time.Time        `json:"published_at"`
}

// FeedPage is the produced feed response.
type FeedPage struct {
	Items       []FeedItem  `json:"items"`
	GeneratedAt time.Time   `json:"generated_at"`
	CacheStatus CacheStatus `json:"cache_status"`
	NextCursor  string      `json:"next_cursor,omitempty"`
}
