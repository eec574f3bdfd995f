package types

import (
	"time"

	"github.com/google/uuid"
)

// CreatorMetric is an externally maintained reputation record, consumed only
// as scoring input.
type CreatorMetric struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CreatorID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;column:creator_id" json:"creator_id"`
	Reputation     float64   `gorm:"column:reputation;default:0" json:"reputation"`
	QualityScore   float64   `gorm:"column:quality_score;default:0" json:"quality_score"`
	EngagementRate float64   `gorm:"column:engagement_rate;default:0" json:"engagement_rate"`
	FollowerCount  int64     `gorm:"column:follower_count;default:0" json:"follower_count"`
	UpdatedAt      time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (CreatorMetric) TableName() string {
	return "creator_metric"
}
