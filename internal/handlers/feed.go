package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	rediscl "github.com/opencircle/opencircle-backend/internal/clients/redis"
	"github.com/opencircle/opencircle-backend/internal/http/response"
	ocerrors "github.com/opencircle/opencircle-backend/internal/pkg/errors"
	"github.com/opencircle/opencircle-backend/internal/services"
	"github.com/opencircle/opencircle-backend/internal/types"
)

// userIDHeader carries the authenticated user identity, set by the gateway
// in front of this service.
const userIDHeader = "X-User-ID"

type FeedHandler struct {
	feedService services.FeedService
	bus         rediscl.EventBus
}

func NewFeedHandler(feedService services.FeedService, bus rediscl.EventBus) *FeedHandler {
	return &FeedHandler{feedService: feedService, bus: bus}
}

func userIDFrom(c *gin.Context) (uuid.UUID, error) {
	raw := c.GetHeader(userIDHeader)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%w: missing %s header", ocerrors.ErrInvalidArgument, userIDHeader)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed %s header", ocerrors.ErrInvalidArgument, userIDHeader)
	}
	return id, nil
}

func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ocerrors.ErrInvalidArgument), errors.Is(err, ocerrors.ErrCompositionInvalid):
		response.RespondError(c, http.StatusBadRequest, "invalid_argument", err)
	case errors.Is(err, ocerrors.ErrNotFound):
		response.RespondError(c, http.StatusNotFound, "not_found", err)
	default:
		response.RespondError(c, http.StatusInternalServerError, "internal", err)
	}
}

// GetFeed serves GET /api/feed?first=&after=.
func (fh *FeedHandler) GetFeed(c *gin.Context) {
	userID, err := userIDFrom(c)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	first := 0
	if raw := c.Query("first"); raw != "" {
		if n, convErr := strconv.Atoi(raw); convErr == nil {
			first = n
		}
	}
	page, err := fh.feedService.GetFeed(c.Request.Context(), userID, first, c.Query("after"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, page)
}

type markSeenRequest struct {
	ContentIDs []uuid.UUID `json:"content_ids" binding:"required"`
}

func (fh *FeedHandler) MarkSeen(c *gin.Context) {
	userID, err := userIDFrom(c)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	var req markSeenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := fh.feedService.MarkSeen(c.Request.Context(), userID, req.ContentIDs); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"marked": len(req.ContentIDs)})
}

type hideRequest struct {
	ContentID uuid.UUID `json:"content_id" binding:"required"`
}

func (fh *FeedHandler) HideContent(c *gin.Context) {
	userID, err := userIDFrom(c)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	var req hideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := fh.feedService.HideContent(c.Request.Context(), userID, req.ContentID); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"hidden": req.ContentID})
}

type muteRequest struct {
	CreatorID uuid.UUID `json:"creator_id" binding:"required"`
}

func (fh *FeedHandler) MuteCreator(c *gin.Context) {
	userID, err := userIDFrom(c)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	var req muteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := fh.feedService.MuteCreator(c.Request.Context(), userID, req.CreatorID); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"muted": req.CreatorID})
}

func (fh *FeedHandler) GetComposition(c *gin.Context) {
	userID, err := userIDFrom(c)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	comp, err := fh.feedService.GetComposition(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, comp)
}

type compositionRequest struct {
	PersonalRatio   float64 `json:"personal_ratio"`
	InterestRatio   float64 `json:"interest_ratio"`
	TrendingRatio   float64 `json:"trending_ratio"`
	DiscoveryRatio  float64 `json:"discovery_ratio"`
	CommunityRatio  float64 `json:"community_ratio"`
	ProductRatio    float64 `json:"product_ratio"`
	ExperimentGroup string  `json:"experiment_group"`
}

func (fh *FeedHandler) UpdateComposition(c *gin.Context) {
	userID, err := userIDFrom(c)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	var req compositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	comp := &types.FeedComposition{
		UserID:          userID,
		PersonalRatio:   req.PersonalRatio,
		InterestRatio:   req.InterestRatio,
		TrendingRatio:   req.TrendingRatio,
		DiscoveryRatio:  req.DiscoveryRatio,
		CommunityRatio:  req.CommunityRatio,
		ProductRatio:    req.ProductRatio,
		ExperimentGroup: req.ExperimentGroup,
	}
	saved, err := fh.feedService.UpdateComposition(c.Request.Context(), comp)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, saved)
}

// PublishEvent serves POST /api/feed/invalidate. Collaborating services call
// it when they mutate data the feed caches depend on; the event fans out
// through Redis so every replica invalidates.
func (fh *FeedHandler) PublishEvent(c *gin.Context) {
	var ev types.DomainEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if ev.Name == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_body",
			fmt.Errorf("%w: event name required", ocerrors.ErrInvalidArgument))
		return
	}
	if err := fh.bus.Publish(c.Request.Context(), ev); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"published": ev.Name})
}
