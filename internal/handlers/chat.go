package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/narendra-simha-pampati/InstaChatProject/internal/stream"
)

// ChatHandler mints provider tokens for the frontend chat client.
type ChatHandler struct {
	chat stream.Provider
}

func NewChatHandler(chat stream.Provider) *ChatHandler {
	return &ChatHandler{chat: chat}
}

func (h *ChatHandler) Token(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	token, err := h.chat.CreateToken(p.UserID.Hex())
	if err != nil {
		return jsonError(c, fiber.StatusServiceUnavailable, "chat provider is not configured")
	}
	return jsonSuccess(c, fiber.StatusOK, fiber.Map{"success": true, "token": token})
}
