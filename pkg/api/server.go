package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/travigo/departures-rss/pkg/api/routes"
)

func NewApp(stopName string, builder routes.FeedBuilder) *fiber.App {
	webApp := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	webApp.Use(NewLogger())

	routes.IndexRouter(webApp, stopName)
	routes.FeedRouter(webApp, builder)

	return webApp
}

func SetupServer(listen string, stopName string, builder routes.FeedBuilder) error {
	return NewApp(stopName, builder).Listen(listen)
}
