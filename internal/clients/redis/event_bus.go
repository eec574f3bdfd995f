package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/opencircle/opencircle-backend/internal/pkg/logger"
	"github.com/opencircle/opencircle-backend/internal/types"
)

// EventBus carries domain mutation events from the content/graph
// collaborators to the feed cache manager.
type EventBus interface {
	Publish(ctx context.Context, ev types.DomainEvent) error
	StartForwarder(ctx context.Context, onEvent func(ev types.DomainEvent)) error
}

type eventBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewEventBus(rdb *goredis.Client, baseLog *logger.Logger) EventBus {
	ch := strings.TrimSpace(os.Getenv("REDIS_EVENT_CHANNEL"))
	if ch == "" {
		ch = "feed-events"
	}
	return &eventBus{
		log:     baseLog.With("client", "RedisEventBus"),
		rdb:     rdb,
		channel: ch,
	}
}

func (b *eventBus) Publish(ctx context.Context, ev types.DomainEvent) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("event bus not initialized")
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *eventBus) StartForwarder(ctx context.Context, onEvent func(ev types.DomainEvent)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("event bus not initialized")
	}
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)

	// ensures subscription actually started
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				var ev types.DomainEvent
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					b.log.Warn("bad event payload", "error", err)
					continue
				}
				onEvent(ev)
			}
		}
	}()

	return nil
}
