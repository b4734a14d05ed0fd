package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/guardline/report-service/internal/api/dto"
	"github.com/guardline/report-service/internal/chat"
	apperrors "github.com/guardline/report-service/pkg/util"
)

// ChatHandler fronts the chat turn orchestrator.
type ChatHandler struct {
	orchestrator *chat.Orchestrator
}

// NewChatHandler constructs handler.
func NewChatHandler(orchestrator *chat.Orchestrator) *ChatHandler {
	return &ChatHandler{orchestrator: orchestrator}
}

// SendMessage POST /api/chat.
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.orchestrator.Send(c.Context(), req.SessionID, req.Message)
	if err != nil {
		// Upstream failures still carry the recorded fallback turn so
		// clients can show the banner and render the fallback reply.
		if result != nil {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{
				"message":    domainErr.Message,
				"session_id": result.SessionID,
				"reply":      result.Reply.Text,
			})
		}
		return err
	}
	return c.JSON(dto.ChatResponse{
		SessionID:  result.SessionID,
		Reply:      result.Reply.Text,
		Suspicious: result.Reply.Suspicious,
	})
}

// GetHistory GET /api/chat/:session_id.
func (h *ChatHandler) GetHistory(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")
	turns, err := h.orchestrator.History(c.Context(), sessionID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"session_id": sessionID,
		"turns":      turns,
	})
}
