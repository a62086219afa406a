package api

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"qabot/internal/chat"
	"qabot/internal/config"
	"qabot/internal/models"
	"qabot/internal/validation"
)

// Answerer produces a reply for a raw user message.
type Answerer interface {
	Answer(ctx context.Context, raw string) chat.Reply
}

// AnswerHandler handles the JSON answer API.
type AnswerHandler struct {
	bot Answerer
	cfg *config.Config
}

// NewAnswerHandler creates a new API answer handler.
func NewAnswerHandler(bot Answerer, cfg *config.Config) *AnswerHandler {
	return &AnswerHandler{bot: bot, cfg: cfg}
}

// Answer handles POST /api/answer.
func (h *AnswerHandler) Answer(c fiber.Ctx) error {
	var req models.AnswerRequest
	if err := c.Bind().JSON(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Message == nil {
		return jsonError(c, fiber.StatusBadRequest, "message is required")
	}

	message := validation.SanitizeMessage(*req.Message)
	if valid, msg := validation.ValidateMessage(message, h.cfg.MaxMessageLength); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	reply := h.bot.Answer(c.Context(), message)
	return jsonSuccess(c, models.AnswerResponse{
		Answer:    reply.Text,
		Outcome:   reply.Outcome,
		Corrected: reply.Corrected,
		Matched:   reply.Question,
		Score:     reply.Score,
	})
}
