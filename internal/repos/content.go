package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opencircle/opencircle-backend/internal/pkg/logger"
	"github.com/opencircle/opencircle-backend/internal/types"
)

type ContentRepo interface {
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.ContentItem, error)
	GetByCreators(ctx context.Context, tx *gorm.DB, creatorIDs []uuid.UUID, limit int) ([]*types.ContentItem, error)
	GetByTagOverlap(ctx context.Context, tx *gorm.DB, tags []string, limit int) ([]*types.ContentItem, error)
	GetHighQuality(ctx context.Context, tx *gorm.DB, minQuality float64, excludeCreators []uuid.UUID, limit int) ([]*types.ContentItem, error)
	GetByKind(ctx context.Context, tx *gorm.DB, kind types.ContentKind, limit int) ([]*types.ContentItem, error)
	GetRecentTop(ctx context.Context, tx *gorm.DB, since time.Time, limit int) ([]*types.ContentItem, error)
	GetPopular(ctx context.Context, tx *gorm.DB, limit int) ([]*types.ContentItem, error)
}

type contentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentRepo(db *gorm.DB, baseLog *logger.Logger) ContentRepo {
	repoLog := baseLog.With("repo", "ContentRepo")
	return &contentRepo{db: db, log: repoLog}
}

func (cr *contentRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return cr.db
}

func (cr *contentRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.ContentItem, error) {
	var results []*types.ContentItem
	if len(ids) == 0 {
		return results, nil
	}
	if err := cr.conn(tx).WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *contentRepo) GetByCreators(ctx context.Context, tx *gorm.DB, creatorIDs []uuid.UUID, limit int) ([]*types.ContentItem, error) {
	var results []*types.ContentItem
	if len(creatorIDs) == 0 {
		return results, nil
	}
	if err := cr.conn(tx).WithContext(ctx).
		Where("creator_id IN ?", creatorIDs).
		Where("visibility = ?", "public").
		Order("published_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *contentRepo) GetByTagOverlap(ctx context.Context, tx *gorm.DB, tags []string, limit int) ([]*types.ContentItem, error) {
	var results []*types.ContentItem
	if len(tags) == 0 {
		return results, nil
	}

	q := cr.conn(tx).WithContext(ctx).
		Where("visibility = ?", "public")

	// Tags are stored as comma-separated text; match each name against the
	// padded list so "art" does not match "cartoons".
	cond := cr.db.Session(&gorm.Session{NewDB: true})
	matcher := cond.Where("(',' || tags || ',') LIKE ?", "%,"+tags[0]+",%")
	for _, tag := range tags[1:] {
		matcher = matcher.Or("(',' || tags || ',') LIKE ?", "%,"+tag+",%")
	}
	q = q.Where(matcher)

	if err := q.
		Order("published_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *contentRepo) GetHighQuality(ctx context.Context, tx *gorm.DB, minQuality float64, excludeCreators []uuid.UUID, limit int) ([]*types.ContentItem, error) {
	var results []*types.ContentItem
	q := cr.conn(tx).WithContext(ctx).
		Where("visibility = ?", "public").
		Where("quality_score >= ?", minQuality)
	if len(excludeCreators) > 0 {
		q = q.Where("creator_id NOT IN ?", excludeCreators)
	}
	if err := q.
		Order("published_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *contentRepo) GetByKind(ctx context.Context, tx *gorm.DB, kind types.ContentKind, limit int) ([]*types.ContentItem, error) {
	var results []*types.ContentItem
	if err := cr.conn(tx).WithContext(ctx).
		Where("kind = ?", kind).
		Where("visibility = ?", "public").
		Order("engagement_score DESC, published_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *contentRepo) GetRecentTop(ctx context.Context, tx *gorm.DB, since time.Time, limit int) ([]*types.ContentItem, error) {
	var results []*types.ContentItem
	if err := cr.conn(tx).WithContext(ctx).
		Where("visibility = ?", "public").
		Where("published_at >= ?", since).
		Order("published_at DESC, engagement_score DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *contentRepo) GetPopular(ctx context.Context, tx *gorm.DB, limit int) ([]*types.ContentItem, error) {
	var results []*types.ContentItem
	if err := cr.conn(tx).WithContext(ctx).
		Where("visibility = ?", "public").
		Order("engagement_score DESC, trending_score DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
