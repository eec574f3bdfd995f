package scoring

import (
	"fmt"
	"strings"

	"github.com/opencircle/opencircle-backend/internal/pkg/logger"
	"github.com/opencircle/opencircle-backend/internal/types"
)

const (
	explicitTagPoints = 40.0
	inferredTagPoints = 20.0
	categoryPoints    = 15.0
)

// interestEngine scores content against the user's explicit and inferred
// interests. Tag matches count full value, title/description substring
// matches count half.
type interestEngine struct {
	log *logger.Logger
}

func NewInterestEngine(baseLog *logger.Logger) Engine {
	return &interestEngine{log: baseLog.With("engine", "interest")}
}

func (e *interestEngine) Name() string {
	return string(types.BucketInterest)
}

func (e *interestEngine) Score(item *types.ContentItem, sc *Context) (float64, error) {
	if item == nil || sc == nil {
		return 0, fmt.Errorf("interest engine: nil input")
	}

	score := 0.0
	title := strings.ToLower(item.Title)
	description := strings.ToLower(item.Description)

	for _, interest := range sc.Interests {
		if interest == nil || interest.Name == "" {
			continue
		}
		points := explicitTagPoints
		if interest.Source == types.InterestInferred {
			points = inferredTagPoints * interest.Strength
		}

		name := strings.ToLower(interest.Name)
		switch {
		case item.Tags.Contains(name):
			score += points
		case strings.Contains(title, name) || strings.Contains(description, name):
			score += points / 2
		}

		if interest.Category != "" && item.Categories.Contains(interest.Category) {
			score += categoryPoints
		}
	}

	score += item.QualityScore * 10
	score *= decayFactor(item.PublishedAt, sc.Now, interestDecayThresholdHours)

	return clampScore(score), nil
}
