package app

import (
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	rediscl "github.com/opencircle/opencircle-backend/internal/clients/redis"
	"github.com/opencircle/opencircle-backend/internal/data/graph"
	"github.com/opencircle/opencircle-backend/internal/pkg/logger"
	"github.com/opencircle/opencircle-backend/internal/platform/neo4jdb"
)

type Clients struct {
	Redis   *goredis.Client
	Cache   rediscl.CacheStore
	History rediscl.HistoryStore
	Bus     rediscl.EventBus
	Neo4j   *neo4jdb.Client
	Graph   graph.ConnectionGraph
}

func wireClients(log *logger.Logger) (Clients, error) {
	rdb, err := rediscl.NewClientFromEnv(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}

	// Absent Neo4j is tolerated: the graph layer answers empty and the
	// composer leans on the other buckets.
	n4j, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		log.Warn("neo4j init failed, connection buckets will be empty", "error", err)
		n4j = nil
	}

	return Clients{
		Redis:   rdb,
		Cache:   rediscl.NewCacheStore(rdb, log),
		History: rediscl.NewHistoryStore(rdb, log),
		Bus:     rediscl.NewEventBus(rdb, log),
		Neo4j:   n4j,
		Graph:   graph.NewNeo4jConnectionGraph(n4j, log),
	}, nil
}
