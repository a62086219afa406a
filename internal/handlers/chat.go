package handlers

import (
	"github.com/gofiber/fiber/v3"

	"qabot/internal/config"
	"qabot/internal/models"
	"qabot/internal/validation"
)

// ChatHandler serves the form-based ask endpoint.
type ChatHandler struct {
	bot Answerer
	cfg *config.Config
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(bot Answerer, cfg *config.Config) *ChatHandler {
	return &ChatHandler{bot: bot, cfg: cfg}
}

// Ask answers the messageText form field.
// Responds with {"status":"OK","answer":...}; the answer is the fallback
// text when no stored question matches.
func (h *ChatHandler) Ask(c fiber.Ctx) error {
	raw, ok := formField(c, "messageText")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "messageText is required")
	}

	message := validation.SanitizeMessage(raw)
	if valid, msg := validation.ValidateMessage(message, h.cfg.MaxMessageLength); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	reply := h.bot.Answer(c.Context(), message)
	return c.JSON(models.AskResponse{
		Status: "OK",
		Answer: reply.Text,
	})
}
