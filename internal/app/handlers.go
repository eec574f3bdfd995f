package app

import (
	"github.com/opencircle/opencircle-backend/internal/handlers"
)

type Handlers struct {
	Feed *handlers.FeedHandler
}

func wireHandlers(serviceset Services, clients Clients) Handlers {
	return Handlers{
		Feed: handlers.NewFeedHandler(serviceset.Feed, clients.Bus),
	}
}
