package graph

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/opencircle/opencircle-backend/internal/pkg/logger"
	"github.com/opencircle/opencircle-backend/internal/platform/neo4jdb"
	"github.com/opencircle/opencircle-backend/internal/types"
)

// ConnectionGraph is the narrow surface the feed core needs from the social
// graph store. The underlying store stays swappable behind it.
type ConnectionGraph interface {
	AcceptedConnections(ctx context.Context, userID uuid.UUID) ([]*types.Connection, error)
	BlockedCreators(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]struct{}, error)
	ConnectionCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type neo4jConnectionGraph struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

func NewNeo4jConnectionGraph(client *neo4jdb.Client, baseLog *logger.Logger) ConnectionGraph {
	return &neo4jConnectionGraph{
		client: client,
		log:    baseLog.With("graph", "ConnectionGraph"),
	}
}

func (g *neo4jConnectionGraph) session(ctx context.Context) neo4j.SessionWithContext {
	return g.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: g.client.Database,
	})
}

func (g *neo4jConnectionGraph) AcceptedConnections(ctx context.Context, userID uuid.UUID) ([]*types.Connection, error) {
	if g.client == nil || g.client.Driver == nil {
		return nil, nil
	}
	if userID == uuid.Nil {
		return nil, nil
	}

	session := g.session(ctx)
	defer session.Close(ctx)

	rows, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (u:User {id: $user_id})-[c:CONNECTED {status: 'accepted'}]->(other:User)
OPTIONAL MATCH (other)-[back:CONNECTED {status: 'accepted'}]->(u)
RETURN other.id AS to_id,
       c.circle AS circle,
       coalesce(c.interaction_count, 0) AS interaction_count,
       c.last_interaction AS last_interaction,
       back IS NOT NULL AS mutual
`, map[string]any{"user_id": userID.String()})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, err
	}

	records, _ := rows.([]*neo4j.Record)
	conns := make([]*types.Connection, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		rawID, _ := rec.Get("to_id")
		toID, err := uuid.Parse(asString(rawID))
		if err != nil {
			continue
		}
		circle, _ := rec.Get("circle")
		count, _ := rec.Get("interaction_count")
		mutual, _ := rec.Get("mutual")
		lastRaw, _ := rec.Get("last_interaction")

		conn := &types.Connection{
			FromUserID:       userID,
			ToUserID:         toID,
			Circle:           types.CircleType(asString(circle)),
			InteractionCount: asInt64(count),
			Mutual:           asBool(mutual),
		}
		if ts := asString(lastRaw); ts != "" {
			if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
				conn.LastInteraction = parsed
			}
		}
		conns = append(conns, conn)
	}
	return conns, nil
}

func (g *neo4jConnectionGraph) BlockedCreators(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	blocked := map[uuid.UUID]struct{}{}
	if g.client == nil || g.client.Driver == nil {
		return blocked, nil
	}
	if userID == uuid.Nil {
		return blocked, nil
	}

	session := g.session(ctx)
	defer session.Close(ctx)

	rows, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (u:User {id: $user_id})-[:BLOCKS]->(other:User)
RETURN other.id AS blocked_id
`, map[string]any{"user_id": userID.String()})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, err
	}

	records, _ := rows.([]*neo4j.Record)
	for _, rec := range records {
		if rec == nil {
			continue
		}
		raw, _ := rec.Get("blocked_id")
		if id, err := uuid.Parse(asString(raw)); err == nil {
			blocked[id] = struct{}{}
		}
	}
	return blocked, nil
}

func (g *neo4jConnectionGraph) ConnectionCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	if g.client == nil || g.client.Driver == nil {
		return 0, nil
	}
	if userID == uuid.Nil {
		return 0, nil
	}

	session := g.session(ctx)
	defer session.Close(ctx)

	count, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (u:User {id: $user_id})-[c:CONNECTED {status: 'accepted'}]->(:User)
RETURN count(c) AS ct
`, map[string]any{"user_id": userID.String()})
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		ct, _ := rec.Get("ct")
		return ct, nil
	})
	if err != nil {
		return 0, err
	}
	return asInt64(count), nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}
