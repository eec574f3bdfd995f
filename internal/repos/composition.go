package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/opencircle/opencircle-backend/internal/pkg/logger"
	"github.com/opencircle/opencircle-backend/internal/types"
)

type FeedCompositionRepo interface {
	// GetByUserID returns nil without error when the user has no stored
	// composition; callers fall back to the system default.
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.FeedComposition, error)
	// Upsert validates and writes a composition; invalid ratios are rejected
	// with ErrCompositionInvalid and nothing is written.
	Upsert(ctx context.Context, tx *gorm.DB, composition *types.FeedComposition) (*types.FeedComposition, error)
}

type feedCompositionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFeedCompositionRepo(db *gorm.DB, baseLog *logger.Logger) FeedCompositionRepo {
	repoLog := baseLog.With("repo", "FeedCompositionRepo")
	return &feedCompositionRepo{db: db, log: repoLog}
}

func (fr *feedCompositionRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return fr.db
}

func (fr *feedCompositionRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.FeedComposition, error) {
	var result types.FeedComposition
	err := fr.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (fr *feedCompositionRepo) Upsert(ctx context.Context, tx *gorm.DB, composition *types.FeedComposition) (*types.FeedComposition, error) {
	if composition == nil {
		return nil, errors.New("composition required")
	}
	if err := composition.Validate(); err != nil {
		return nil, err
	}
	if err := fr.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"personal_ratio", "interest_ratio", "trending_ratio",
				"discovery_ratio", "community_ratio", "product_ratio",
				"experiment_group", "updated_at",
			}),
		}).
		Create(composition).Error; err != nil {
		return nil, err
	}
	return composition, nil
}
