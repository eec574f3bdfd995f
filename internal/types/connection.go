package types

import (
	"time"

	"github.com/google/uuid"
)

// CircleType is the qualitative closeness bucket of an accepted connection.
type CircleType string

const (
	CircleInner    CircleType = "inner"
	CircleOuter    CircleType = "outer"
	CircleUniverse CircleType = "universe"
)

// CircleWeight maps a circle to its fixed scoring weight. Unknown circles
// weigh the same as universe.
func CircleWeight(circle CircleType) float64 {
	switch circle {
	case CircleInner:
		return 1.0
	case CircleOuter:
		return 0.7
	case CircleUniverse:
		return 0.4
	default:
		return 0.4
	}
}

// Connection is a read-only view of an accepted edge in the social graph.
// The graph store owns these; the feed core never writes them.
type Connection struct {
	FromUserID       uuid.UUID  `json:"from_user_id"`
	ToUserID         uuid.UUID  `json:"to_user_id"`
	Circle           CircleType `json:"circle"`
	InteractionCount int64      `json:"interaction_count"`
	Mutual           bool       `json:"mutual"`
	LastInteraction  time.Time  `json:"last_interaction"`
}

// Weight is the circle weight of this connection.
func (c Connection) Weight() float64 {
	return CircleWeight(c.Circle)
}
