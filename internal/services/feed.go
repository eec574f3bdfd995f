package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	rediscl "github.com/opencircle/opencircle-backend/internal/clients/redis"
	"github.com/opencircle/opencircle-backend/internal/modules/feed"
	ocerrors "github.com/opencircle/opencircle-backend/internal/pkg/errors"
	"github.com/opencircle/opencircle-backend/internal/pkg/logger"
	"github.com/opencircle/opencircle-backend/internal/repos"
	"github.com/opencircle/opencircle-backend/internal/types"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type FeedService interface {
	// GetFeed returns one composed page and records delivery history for
	// the served items.
	GetFeed(ctx context.Context, userID uuid.UUID, first int, after string) (*types.FeedPage, error)

	MarkSeen(ctx context.Context, userID uuid.UUID, contentIDs []uuid.UUID) error
	HideContent(ctx context.Context, userID, contentID uuid.UUID) error
	MuteCreator(ctx context.Context, userID, creatorID uuid.UUID) error

	GetComposition(ctx context.Context, userID uuid.UUID) (*types.FeedComposition, error)
	UpdateComposition(ctx context.Context, composition *types.FeedComposition) (*types.FeedComposition, error)
}

type feedService struct {
	log      *logger.Logger
	pipeline *feed.Pipeline
	history  rediscl.HistoryStore
	bus      rediscl.EventBus
	compRepo repos.FeedCompositionRepo
}

func NewFeedService(pipeline *feed.Pipeline, history rediscl.HistoryStore, bus rediscl.EventBus, compRepo repos.FeedCompositionRepo, baseLog *logger.Logger) FeedService {
	return &feedService{
		log:      baseLog.With("service", "FeedService"),
		pipeline: pipeline,
		history:  history,
		bus:      bus,
		compRepo: compRepo,
	}
}

func (s *feedService) GetFeed(ctx context.Context, userID uuid.UUID, first int, after string) (*types.FeedPage, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing user id", ocerrors.ErrInvalidArgument)
	}
	if first <= 0 {
		first = defaultPageSize
	}
	if first > maxPageSize {
		first = maxPageSize
	}

	page := s.pipeline.Page(ctx, userID, first, after)
	s.recordDelivery(ctx, userID, page)
	return page, nil
}

// recordDelivery marks served items as viewed and bumps today's per-creator
// session counts, so repeat requests filter and cap correctly. History is
// best-effort: a Redis outage degrades dedup, not delivery.
func (s *feedService) recordDelivery(ctx context.Context, userID uuid.UUID, page *types.FeedPage) {
	if s.history == nil || page == nil || len(page.Items) == 0 {
		return
	}
	contentIDs := make([]uuid.UUID, 0, len(page.Items))
	creatorIDs := make([]uuid.UUID, 0, len(page.Items))
	for _, it := range page.Items {
		contentIDs = append(contentIDs, it.ID)
		creatorIDs = append(creatorIDs, it.CreatorID)
	}
	if err := s.history.MarkViewed(ctx, userID, contentIDs...); err != nil {
		s.log.Warn("failed to record viewed items", "user_id", userID, "error", err)
	}
	if err := s.history.IncrSessionCounts(ctx, userID, creatorIDs); err != nil {
		s.log.Warn("failed to bump session counts", "user_id", userID, "error", err)
	}
	if err := s.history.MarkActive(ctx, userID); err != nil {
		s.log.Warn("failed to mark user active", "user_id", userID, "error", err)
	}
}

func (s *feedService) MarkSeen(ctx context.Context, userID uuid.UUID, contentIDs []uuid.UUID) error {
	if userID == uuid.Nil || len(contentIDs) == 0 {
		return fmt.Errorf("%w: user id and content ids required", ocerrors.ErrInvalidArgument)
	}
	return s.history.MarkViewed(ctx, userID, contentIDs...)
}

func (s *feedService) HideContent(ctx context.Context, userID, contentID uuid.UUID) error {
	if userID == uuid.Nil || contentID == uuid.Nil {
		return fmt.Errorf("%w: user id and content id required", ocerrors.ErrInvalidArgument)
	}
	return s.history.MarkHidden(ctx, userID, contentID)
}

func (s *feedService) MuteCreator(ctx context.Context, userID, creatorID uuid.UUID) error {
	if userID == uuid.Nil || creatorID == uuid.Nil {
		return fmt.Errorf("%w: user id and creator id required", ocerrors.ErrInvalidArgument)
	}
	return s.history.MuteCreator(ctx, userID, creatorID)
}

func (s *feedService) GetComposition(ctx context.Context, userID uuid.UUID) (*types.FeedComposition, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing user id", ocerrors.ErrInvalidArgument)
	}
	comp, err := s.compRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load feed composition: %w", err)
	}
	if comp == nil {
		def := types.DefaultComposition()
		def.UserID = userID
		return def, nil
	}
	return comp, nil
}

func (s *feedService) UpdateComposition(ctx context.Context, composition *types.FeedComposition) (*types.FeedComposition, error) {
	if composition == nil || composition.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: composition with user id required", ocerrors.ErrInvalidArgument)
	}
	saved, err := s.compRepo.Upsert(ctx, nil, composition)
	if err != nil {
		return nil, err
	}
	if s.bus != nil {
		ev := types.DomainEvent{Name: types.EventPreferencesChanged, UserID: saved.UserID}
		if err := s.bus.Publish(ctx, ev); err != nil {
			s.log.Warn("failed to publish preferences event", "user_id", saved.UserID, "error", err)
		}
	}
	return saved, nil
}
