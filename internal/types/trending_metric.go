package types

import (
	"time"

	"github.com/google/uuid"
)

// TrendingMetric is a time-windowed virality record computed by the external
// analytics aggregation pipeline. Consumed read-only.
type TrendingMetric struct {
	ID               uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ContentKind      ContentKind `gorm:"not null;uniqueIndex:idx_trending_key;column:content_kind" json:"content_kind"`
	ContentID        uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_trending_key;column:content_id" json:"content_id"`
	Window           string      `gorm:"not null;uniqueIndex:idx_trending_key;column:window" json:"window"`
	TrendingScore    float64     `gorm:"column:trending_score;default:0" json:"trending_score"`
	VelocityScore    float64     `gorm:"column:velocity_score;default:0" json:"velocity_score"`
	ViralCoefficient float64     `gorm:"column:viral_coefficient;default:0" json:"viral_coefficient"`
	EngagementRate   float64     `gorm:"column:engagement_rate;default:0" json:"engagement_rate"`
	UniqueUsers      int64       `gorm:"column:unique_users;default:0" json:"unique_users"`
	EngagementCount  int64       `gorm:"column:engagement_count;default:0" json:"engagement_count"`
	ExpiresAt        time.Time   `gorm:"index;column:expires_at" json:"expires_at"`
	CreatedAt        time.Time   `gorm:"not null;default:now()" json:"created_at"`
}

func (TrendingMetric) TableName() string {
	return "trending_metric"
}

// DiversityRatio is unique engaging users over total engagements, 0 when
// no engagement data exists.
func (m *TrendingMetric) DiversityRatio() float64 {
	if m.EngagementCount <= 0 {
		return 0
	}
	return float64(m.UniqueUsers) / float64(m.EngagementCount)
}
