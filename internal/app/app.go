package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/opencircle/opencircle-backend/internal/db"
	"github.com/opencircle/opencircle-backend/internal/observability"
	"github.com/opencircle/opencircle-backend/internal/pkg/logger"
	"github.com/opencircle/opencircle-backend/internal/types"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Clients  Clients
	Repos    Repos
	Services Services
	Handlers Handlers

	cancel       context.CancelFunc
	otelShutdown func(context.Context) error
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "opencircle",
		Environment: os.Getenv("APP_ENV"),
		Version:     os.Getenv("APP_VERSION"),
	})

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	clientset, err := wireClients(log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(cfg, log, reposet, clientset)
	handlerset := wireHandlers(serviceset, clientset)
	router := wireRouter(cfg, handlerset)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Clients:      clientset,
		Repos:        reposet,
		Services:     serviceset,
		Handlers:     handlerset,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches the background pieces: the invalidation forwarder and the
// cache warmer. Safe to call once; Close stops both.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Clients.Bus != nil && a.Services.CacheManager != nil {
		if err := a.Clients.Bus.StartForwarder(ctx, func(ev types.DomainEvent) {
			a.Services.CacheManager.HandleEvent(ctx, ev)
		}); err != nil {
			a.Log.Warn("event forwarder failed to start, cache invalidation degraded", "error", err)
		}
	}

	if a.Services.Warmer != nil {
		a.Services.Warmer.Start(ctx)
	}
}

func (a *App) Run(addr string) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Router.Run(addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.otelShutdown != nil {
		_ = a.otelShutdown(context.Background())
	}
	if a.Clients.Neo4j != nil {
		a.Clients.Neo4j.Close(context.Background())
	}
	if a.Clients.Redis != nil {
		_ = a.Clients.Redis.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
