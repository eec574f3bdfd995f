package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/opencircle/opencircle-backend/internal/handlers"
)

type RouterConfig struct {
	AllowOrigins []string
	FeedHandler  *handlers.FeedHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(otelgin.Middleware("opencircle"))

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", "X-User-ID"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.GET("/feed", cfg.FeedHandler.GetFeed)
		api.POST("/feed/seen", cfg.FeedHandler.MarkSeen)
		api.POST("/feed/hide", cfg.FeedHandler.HideContent)
		api.POST("/feed/mute", cfg.FeedHandler.MuteCreator)
		api.GET("/feed/composition", cfg.FeedHandler.GetComposition)
		api.PUT("/feed/composition", cfg.FeedHandler.UpdateComposition)
		api.POST("/feed/invalidate", cfg.FeedHandler.PublishEvent)
	}

	return router
}
