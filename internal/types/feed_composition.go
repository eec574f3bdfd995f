package types

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	ocerrors "github.com/opencircle/opencircle-backend/internal/pkg/errors"
)

// Bucket names the six content sources a feed is composed from.
type Bucket string

const (
	BucketPersonal  Bucket = "personal"
	BucketInterest  Bucket = "interest"
	BucketTrending  Bucket = "trending"
	BucketDiscovery Bucket = "discovery"
	BucketCommunity Bucket = "community"
	BucketProduct   Bucket = "product"
)

// AllBuckets lists buckets in their canonical order. Remainder slots from
// target rounding go to the largest ratio, ties resolved by this order.
var AllBuckets = []Bucket{
	BucketPersonal,
	BucketInterest,
	BucketTrending,
	BucketDiscovery,
	BucketCommunity,
	BucketProduct,
}

// compositionTolerance bounds how far Σratios may drift from 1.0.
const compositionTolerance = 0.01

type FeedComposition struct {
	ID              uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;column:user_id" json:"user_id"`
	PersonalRatio   float64   `gorm:"not null;column:personal_ratio" json:"personal_ratio"`
	InterestRatio   float64   `gorm:"not null;column:interest_ratio" json:"interest_ratio"`
	TrendingRatio   float64   `gorm:"not null;column:trending_ratio" json:"trending_ratio"`
	DiscoveryRatio  float64   `gorm:"not null;column:discovery_ratio" json:"discovery_ratio"`
	CommunityRatio  float64   `gorm:"not null;column:community_ratio" json:"community_ratio"`
	ProductRatio    float64   `gorm:"not null;column:product_ratio" json:"product_ratio"`
	ExperimentGroup string    `gorm:"column:experiment_group" json:"experiment_group"`
	CreatedAt       time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (FeedComposition) TableName() string {
	return "feed_composition"
}

// DefaultComposition is the system fallback when a user has no valid
// composition of their own.
func DefaultComposition() *FeedComposition {
	return &FeedComposition{
		PersonalRatio:  0.40,
		InterestRatio:  0.25,
		TrendingRatio:  0.15,
		DiscoveryRatio: 0.10,
		CommunityRatio: 0.05,
		ProductRatio:   0.05,
	}
}

// Ratio returns the ratio assigned to a bucket.
func (fc *FeedComposition) Ratio(b Bucket) float64 {
	switch b {
	case BucketPersonal:
		return fc.PersonalRatio
	case BucketInterest:
		return fc.InterestRatio
	case BucketTrending:
		return fc.TrendingRatio
	case BucketDiscovery:
		return fc.DiscoveryRatio
	case BucketCommunity:
		return fc.CommunityRatio
	case BucketProduct:
		return fc.ProductRatio
	default:
		return 0
	}
}

// Sum adds the six bucket ratios.
func (fc *FeedComposition) Sum() float64 {
	total := 0.0
	for _, b := range AllBuckets {
		total += fc.Ratio(b)
	}
	return total
}

// Validate rejects compositions whose ratios do not sum to 1.0 within
// tolerance, or contain negative ratios.
func (fc *FeedComposition) Validate() error {
	for _, b := range AllBuckets {
		if fc.Ratio(b) < 0 {
			return fmt.Errorf("%w: bucket %s ratio %.3f is negative", ocerrors.ErrCompositionInvalid, b, fc.Ratio(b))
		}
	}
	sum := fc.Sum()
	if math.Abs(sum-1.0) > compositionTolerance {
		return fmt.Errorf("%w: ratios sum to %.3f", ocerrors.ErrCompositionInvalid, sum)
	}
	return nil
}
