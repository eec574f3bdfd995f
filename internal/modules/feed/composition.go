package feed

import (
	"context"

	"github.com/google/uuid"

	"github.com/opencircle/opencircle-backend/internal/pkg/logger"
	"github.com/opencircle/opencircle-backend/internal/repos"
	"github.com/opencircle/opencircle-backend/internal/types"
)

// CompositionResolver loads a user's bucket ratios, tolerating bad or
// missing data by falling back to the system default. Writes are validated
// at the repo layer; reads never fail the pipeline.
type CompositionResolver struct {
	log          *logger.Logger
	compositions repos.FeedCompositionRepo
}

func NewCompositionResolver(compositions repos.FeedCompositionRepo, baseLog *logger.Logger) *CompositionResolver {
	return &CompositionResolver{
		log:          baseLog.With("component", "CompositionResolver"),
		compositions: compositions,
	}
}

func (r *CompositionResolver) Resolve(ctx context.Context, userID uuid.UUID) *types.FeedComposition {
	if r.compositions == nil {
		return types.DefaultComposition()
	}
	stored, err := r.compositions.GetByUserID(ctx, nil, userID)
	if err != nil {
		r.log.Warn("composition load failed, using default", "error", err, "user_id", userID)
		return types.DefaultComposition()
	}
	if stored == nil {
		return types.DefaultComposition()
	}
	if err := stored.Validate(); err != nil {
		r.log.Warn("stored composition invalid, using default", "error", err, "user_id", userID)
		return types.DefaultComposition()
	}
	return stored
}

// BucketTargets splits the requested page size across buckets by ratio.
// Each bucket gets the floor of its share; leftover slots go to the bucket
// with the largest ratio, canonical bucket order breaking ties.
func BucketTargets(composition *types.FeedComposition, first int) map[types.Bucket]int {
	targets := make(map[types.Bucket]int, len(types.AllBuckets))
	if first <= 0 || composition == nil {
		for _, b := range types.AllBuckets {
			targets[b] = 0
		}
		return targets
	}

	assigned := 0
	largest := types.AllBuckets[0]
	for _, b := range types.AllBuckets {
		n := int(float64(first) * composition.Ratio(b))
		targets[b] = n
		assigned += n
		if composition.Ratio(b) > composition.Ratio(largest) {
			largest = b
		}
	}
	if remainder := first - assigned; remainder > 0 {
		targets[largest] += remainder
	}
	return targets
}
