package scoring

import (
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/opencircle/opencircle-backend/internal/types"
)

const (
	// decayHalfLifeHours is the shared exponential half-life applied once an
	// item is older than an engine's freshness threshold.
	decayHalfLifeHours = 168.0

	personalDecayThresholdHours = 48.0
	interestDecayThresholdHours = 168.0
	trendingDecayThresholdHours = 12.0
)

// Context carries the per-request inputs every engine scores against. It is
// assembled once per pipeline run and shared read-only across engines.
type Context struct {
	Profile      *types.UserProfile
	Interests    []*types.Interest
	Connections  map[uuid.UUID]*types.Connection
	CreatorStats map[uuid.UUID]*types.CreatorMetric
	Trending     map[uuid.UUID]*types.TrendingMetric
	Now          time.Time
	Rand         *rand.Rand
}

// Engine scores one item into [0,100]. Implementations must be monotonic in
// their stated factors and side-effect free apart from Context.Rand.
type Engine interface {
	Name() string
	Score(item *types.ContentItem, sc *Context) (float64, error)
}

// clampScore bounds a combined score to [0,100].
func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// decayFactor returns 1.0 while the item is within thresholdHours of Now,
// then halves every decayHalfLifeHours past the threshold.
func decayFactor(publishedAt, now time.Time, thresholdHours float64) float64 {
	if publishedAt.IsZero() || !publishedAt.Before(now) {
		return 1.0
	}
	ageHours := now.Sub(publishedAt).Hours()
	if ageHours <= thresholdHours {
		return 1.0
	}
	return math.Pow(0.5, (ageHours-thresholdHours)/decayHalfLifeHours)
}
