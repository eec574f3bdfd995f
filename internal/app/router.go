package app

import (
	"github.com/gin-gonic/gin"

	"github.com/opencircle/opencircle-backend/internal/server"
)

func wireRouter(cfg Config, handlerset Handlers) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AllowOrigins: cfg.AllowOrigins,
		FeedHandler:  handlerset.Feed,
	})
}
