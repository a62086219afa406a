package handlers

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"qabot/internal/chat"
)

// Answerer produces a reply for a raw user message.
type Answerer interface {
	Answer(ctx context.Context, raw string) chat.Reply
}

// formField returns a posted form value and whether it was present at all,
// for both url-encoded and multipart bodies.
func formField(c fiber.Ctx, key string) (string, bool) {
	if args := c.Request().PostArgs(); args.Has(key) {
		return string(args.Peek(key)), true
	}
	if form, err := c.MultipartForm(); err == nil && form != nil {
		if v, ok := form.Value[key]; ok && len(v) > 0 {
			return v[0], true
		}
	}
	return "", false
}

func jsonError(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "error",
		"error":  message,
	})
}
