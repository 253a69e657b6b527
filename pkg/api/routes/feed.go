package routes

import (
	"context"
	"fmt"
	"html"

	"github.com/gofiber/fiber/v2"
)

const rssContentType = "application/rss+xml; charset=utf-8"

const indexPage = "<h1>RSS-Feed %s</h1><p><a href='/feed.rss'>Zum RSS-Feed</a></p>"

type FeedBuilder interface {
	Build(ctx context.Context) string
}

func IndexRouter(router fiber.Router, stopName string) {
	router.Get("/", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString(fmt.Sprintf(indexPage, html.EscapeString(stopName)))
	})
}

func FeedRouter(router fiber.Router, builder FeedBuilder) {
	handler := func(c *fiber.Ctx) error {
		feed := builder.Build(c.UserContext())

		c.Set(fiber.HeaderContentType, rssContentType)
		return c.SendString(feed)
	}

	router.Get("/feed", handler)
	router.Get("/feed.rss", handler)
}
