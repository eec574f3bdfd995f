package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/opencircle/opencircle-backend/internal/pkg/logger"
)

const (
	viewedTTL  = 24 * time.Hour
	hiddenTTL  = 24 * time.Hour
	mutedTTL   = 30 * 24 * time.Hour
	sessionTTL = 24 * time.Hour
)

// HistoryStore tracks per-user daily view/hide sets, muted creators and
// per-creator session counts. Counters are approximate under concurrent
// requests for the same user; that is accepted.
type HistoryStore interface {
	MarkViewed(ctx context.Context, userID uuid.UUID, contentIDs ...uuid.UUID) error
	MarkHidden(ctx context.Context, userID, contentID uuid.UUID) error
	MuteCreator(ctx context.Context, userID, creatorID uuid.UUID) error
	ViewedToday(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]struct{}, error)
	HiddenToday(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]struct{}, error)
	MutedCreators(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]struct{}, error)
	SessionCounts(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]int64, error)
	IncrSessionCounts(ctx context.Context, userID uuid.UUID, creatorIDs []uuid.UUID) error
	MarkActive(ctx context.Context, userID uuid.UUID) error
	ActiveToday(ctx context.Context, limit int64) ([]uuid.UUID, error)
}

type historyStore struct {
	log *logger.Logger
	rdb *goredis.Client
	// now is swappable so day-bucket boundaries can be pinned in tests.
	now func() time.Time
}

func NewHistoryStore(rdb *goredis.Client, baseLog *logger.Logger) HistoryStore {
	return &historyStore{
		log: baseLog.With("client", "RedisHistory"),
		rdb: rdb,
		now: time.Now,
	}
}

func (h *historyStore) day() string {
	return h.now().UTC().Format("2006-01-02")
}

func (h *historyStore) viewedKey(userID uuid.UUID) string {
	return fmt.Sprintf("feed:viewed:%s:%s", userID, h.day())
}

func (h *historyStore) hiddenKey(userID uuid.UUID) string {
	return fmt.Sprintf("feed:hidden:%s:%s", userID, h.day())
}

func (h *historyStore) mutedKey(userID uuid.UUID) string {
	return fmt.Sprintf("feed:muted:%s", userID)
}

func (h *historyStore) sessionKey(userID uuid.UUID) string {
	return fmt.Sprintf("feed:sessionct:%s:%s", userID, h.day())
}

func (h *historyStore) MarkViewed(ctx context.Context, userID uuid.UUID, contentIDs ...uuid.UUID) error {
	if h == nil || h.rdb == nil {
		return fmt.Errorf("history store not initialized")
	}
	if len(contentIDs) == 0 {
		return nil
	}
	members := make([]interface{}, 0, len(contentIDs))
	for _, id := range contentIDs {
		members = append(members, id.String())
	}
	key := h.viewedKey(userID)
	pipe := h.rdb.Pipeline()
	pipe.SAdd(ctx, key, members...)
	pipe.Expire(ctx, key, viewedTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (h *historyStore) MarkHidden(ctx context.Context, userID, contentID uuid.UUID) error {
	if h == nil || h.rdb == nil {
		return fmt.Errorf("history store not initialized")
	}
	key := h.hiddenKey(userID)
	pipe := h.rdb.Pipeline()
	pipe.SAdd(ctx, key, contentID.String())
	pipe.Expire(ctx, key, hiddenTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (h *historyStore) MuteCreator(ctx context.Context, userID, creatorID uuid.UUID) error {
	if h == nil || h.rdb == nil {
		return fmt.Errorf("history store not initialized")
	}
	key := h.mutedKey(userID)
	pipe := h.rdb.Pipeline()
	pipe.SAdd(ctx, key, creatorID.String())
	pipe.Expire(ctx, key, mutedTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (h *historyStore) ViewedToday(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	return h.idSet(ctx, h.viewedKey(userID))
}

func (h *historyStore) HiddenToday(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	return h.idSet(ctx, h.hiddenKey(userID))
}

func (h *historyStore) MutedCreators(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	return h.idSet(ctx, h.mutedKey(userID))
}

func (h *historyStore) idSet(ctx context.Context, key string) (map[uuid.UUID]struct{}, error) {
	out := map[uuid.UUID]struct{}{}
	if h == nil || h.rdb == nil {
		return out, fmt.Errorf("history store not initialized")
	}
	members, err := h.rdb.SMembers(ctx, key).Result()
	if err != nil {
		return out, err
	}
	for _, m := range members {
		if id, err := uuid.Parse(m); err == nil {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

func (h *historyStore) SessionCounts(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]int64, error) {
	out := map[uuid.UUID]int64{}
	if h == nil || h.rdb == nil {
		return out, fmt.Errorf("history store not initialized")
	}
	raw, err := h.rdb.HGetAll(ctx, h.sessionKey(userID)).Result()
	if err != nil {
		return out, err
	}
	for field, val := range raw {
		id, err := uuid.Parse(field)
		if err != nil {
			continue
		}
		var ct int64
		_, _ = fmt.Sscanf(val, "%d", &ct)
		out[id] = ct
	}
	return out, nil
}

func (h *historyStore) activeKey() string {
	return fmt.Sprintf("feed:active:%s", h.day())
}

func (h *historyStore) MarkActive(ctx context.Context, userID uuid.UUID) error {
	if h == nil || h.rdb == nil {
		return fmt.Errorf("history store not initialized")
	}
	key := h.activeKey()
	pipe := h.rdb.Pipeline()
	pipe.SAdd(ctx, key, userID.String())
	pipe.Expire(ctx, key, sessionTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (h *historyStore) ActiveToday(ctx context.Context, limit int64) ([]uuid.UUID, error) {
	if h == nil || h.rdb == nil {
		return nil, fmt.Errorf("history store not initialized")
	}
	members, err := h.rdb.SRandMemberN(ctx, h.activeKey(), limit).Result()
	if err != nil {
		return nil, err
	}
	out := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		if id, err := uuid.Parse(m); err == nil {
			out = append(out, id)
		}
	}
	return out, nil
}

func (h *historyStore) IncrSessionCounts(ctx context.Context, userID uuid.UUID, creatorIDs []uuid.UUID) error {
	if h == nil || h.rdb == nil {
		return fmt.Errorf("history store not initialized")
	}
	if len(creatorIDs) == 0 {
		return nil
	}
	key := h.sessionKey(userID)
	pipe := h.rdb.Pipeline()
	for _, id := range creatorIDs {
		pipe.HIncrBy(ctx, key, id.String(), 1)
	}
	pipe.Expire(ctx, key, sessionTTL)
	_, err := pipe.Exec(ctx)
	return err
}
