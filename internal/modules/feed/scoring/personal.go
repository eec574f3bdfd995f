package scoring

import (
	"fmt"

	"github.com/opencircle/opencircle-backend/internal/pkg/logger"
	"github.com/opencircle/opencircle-backend/internal/types"
)

// personalEngine scores posts from accepted connections. Circle closeness
// dominates; creator reputation and item engagement refine within a circle.
type personalEngine struct {
	log *logger.Logger
}

func NewPersonalEngine(baseLog *logger.Logger) Engine {
	return &personalEngine{log: baseLog.With("engine", "personal")}
}

func (e *personalEngine) Name() string {
	return string(types.BucketPersonal)
}

func (e *personalEngine) Score(item *types.ContentItem, sc *Context) (float64, error) {
	if item == nil || sc == nil {
		return 0, fmt.Errorf("personal engine: nil input")
	}

	score := 0.0

	conn := sc.Connections[item.CreatorID]
	if conn != nil {
		score += conn.Weight() * 30

		// Interaction volume saturates at 50 interactions.
		interaction := float64(conn.InteractionCount) / 50.0
		if interaction > 1 {
			interaction = 1
		}
		score += interaction * 20

		if conn.Mutual {
			score += 10
		}
	}

	if stats := sc.CreatorStats[item.CreatorID]; stats != nil {
		score += stats.Reputation * 0.2
		score += stats.QualityScore * 10
	}

	score += item.EngagementScore * 0.1
	score *= decayFactor(item.PublishedAt, sc.Now, personalDecayThresholdHours)

	return clampScore(score), nil
}
