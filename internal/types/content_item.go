package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContentKind discriminates the record kinds the feed can surface.
type ContentKind string

const (
	ContentPost      ContentKind = "post"
	ContentCommunity ContentKind = "community"
	ContentProduct   ContentKind = "product"
)

// ContentRef is a tagged reference to a content record of any kind.
type ContentRef struct {
	Kind ContentKind `json:"kind"`
	ID   uuid.UUID   `json:"id"`
}

// ContentItem is the uniform read-side view of posts, community posts and
// marketplace items. The content collaborator owns the rows; the feed core
// only reads them. Engagement, quality and trending scores are maintained
// externally by the analytics aggregation pipeline.
type ContentItem struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Kind            ContentKind    `gorm:"not null;index;column:kind" json:"kind"`
	CreatorID       uuid.UUID      `gorm:"type:uuid;index;not null;column:creator_id" json:"creator_id"`
	Title           string         `gorm:"column:title" json:"title"`
	Description     string         `gorm:"column:description" json:"description"`
	Tags            TagList        `gorm:"type:text;column:tags" json:"tags"`
	Categories      TagList        `gorm:"type:text;column:categories" json:"categories"`
	Visibility      string         `gorm:"not null;default:'public';column:visibility" json:"visibility"`
	QualityScore    float64        `gorm:"column:quality_score;default:0" json:"quality_score"`
	EngagementScore float64        `gorm:"column:engagement_score;default:0" json:"engagement_score"`
	TrendingScore   float64        `gorm:"column:trending_score;default:0" json:"trending_score"`
	LikeCount       int64          `gorm:"column:like_count;default:0" json:"like_count"`
	CommentCount    int64          `gorm:"column:comment_count;default:0" json:"comment_count"`
	ShareCount      int64          `gorm:"column:share_count;default:0" json:"share_count"`
	RecentEngageCt  int64          `gorm:"column:recent_engage_ct;default:0" json:"recent_engage_ct"`
	PublishedAt     time.Time      `gorm:"index;not null;column:published_at" json:"published_at"`
	CreatedAt       time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ContentItem) TableName() string {
	return "content_item"
}

// Ref returns the tagged reference for this item.
func (ci *ContentItem) Ref() ContentRef {
	return ContentRef{Kind: ci.Kind, ID: ci.ID}
}
