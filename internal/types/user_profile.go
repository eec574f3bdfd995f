package types

import (
	"time"

	"github.com/google/uuid"
)

type UserProfile struct {
	ID              uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;column:user_id" json:"user_id"`
	FeedEnabled     bool      `gorm:"not null;default:true;column:feed_enabled" json:"feed_enabled"`
	Language        string    `gorm:"column:language;default:'en'" json:"language"`
	PrivacyLevel    string    `gorm:"column:privacy_level;default:'standard'" json:"privacy_level"`
	EngagementScore float64   `gorm:"column:engagement_score;default:0" json:"engagement_score"`
	// Scoring preference multipliers, 1.0 means neutral.
	TrendingBoost   float64   `gorm:"column:trending_boost;default:1.0" json:"trending_boost"`
	DiscoveryBoost  float64   `gorm:"column:discovery_boost;default:1.0" json:"discovery_boost"`
	InteractionsAll int64     `gorm:"column:interactions_all;default:0" json:"interactions_all"`
	CreatedAt       time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (UserProfile) TableName() string {
	return "user_profile"
}

// DefaultUserProfile is used when a user has no stored profile yet; profiles
// are created lazily on first feed access by the excluded user collaborator.
func DefaultUserProfile(userID uuid.UUID) *UserProfile {
	now := time.Now().UTC()
	return &UserProfile{
		UserID:         userID,
		FeedEnabled:    true,
		Language:       "en",
		PrivacyLevel:   "standard",
		TrendingBoost:  1.0,
		DiscoveryBoost: 1.0,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
