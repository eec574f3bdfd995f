package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrCompositionInvalid means a feed composition's ratios do not sum to 1.0.
	// Rejected on write; reads fall back to the last valid or default composition.
	ErrCompositionInvalid = errors.New("feed composition invalid")
	// ErrBucketRetrieval marks a failure scoped to a single candidate bucket.
	// The pipeline treats the bucket as empty and continues.
	ErrBucketRetrieval = errors.New("bucket retrieval failed")
	// ErrScoring marks a failure scoped to a single item; the item scores 0.
	ErrScoring = errors.New("scoring failed")
	// ErrCacheUnavailable means the cache store could not be reached; callers
	// fall open to direct computation and never surface this.
	ErrCacheUnavailable = errors.New("cache unavailable")
	// ErrPipelineExhausted means the primary pipeline produced fewer items
	// than requested; the fallback selector takes over.
	ErrPipelineExhausted = errors.New("pipeline exhausted")
)
