package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/capstone-recommender/backend/internal/agent"
	"github.com/capstone-recommender/backend/internal/chatstore/sqlite"
	"github.com/capstone-recommender/backend/pkg/logger"
	"github.com/capstone-recommender/backend/pkg/textutil"
)

const queryPreviewChars = 512

type ChatHandler struct {
	agent *agent.Agent
	store *sqlite.Client
}

func NewChatHandler(a *agent.Agent, store *sqlite.Client) *ChatHandler {
	return &ChatHandler{agent: a, store: store}
}

// HandleChat runs one conversational turn. A missing chat_id starts a new
// chat whose title is derived from the first query.
func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	var req struct {
		Query  string `json:"query"`
		ChatID string `json:"chat_id"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("failed to parse chat request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "query is required",
		})
	}

	chatID := req.ChatID
	if chatID == "" {
		chatID = uuid.NewString()
		// Metadata is best-effort; the turn itself owns the turn log.
		if err := h.store.CreateChat(c.Context(), chatID,
			textutil.ChatTitle(req.Query),
			textutil.TruncateChars(req.Query, queryPreviewChars),
		); err != nil {
			logger.Warn("failed to create chat metadata", zap.Error(err))
		}
	}

	result, err := h.agent.HandleTurn(c.Context(), req.Query, chatID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"chat_id":        result.ChatID,
		"answer":         result.Answer,
		"evidence_count": result.EvidenceCount,
		"degraded":       result.Degraded,
		"latency_ms":     result.LatencyMS,
	})
}

func (h *ChatHandler) ListChats(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)

	chats, err := h.store.ListChats(c.Context(), limit)
	if err != nil {
		logger.Error("failed to list chats", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list chats",
		})
	}

	out := make([]fiber.Map, 0, len(chats))
	for _, chat := range chats {
		out = append(out, fiber.Map{
			"id":            chat.ID,
			"title":         chat.Title,
			"query_preview": chat.QueryPreview,
			"message_count": chat.MessageCount,
			"created_at":    chat.CreatedAt.Unix(),
			"last_updated":  chat.LastUpdated.Unix(),
		})
	}

	return c.JSON(fiber.Map{"chats": out})
}

// GetMessages returns a chat's turns oldest-first.
func (h *ChatHandler) GetMessages(c *fiber.Ctx) error {
	chatID := c.Params("id")
	if chatID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "chat id is required",
		})
	}
	limit := c.QueryInt("limit", 100)

	turns, err := h.store.Recent(c.Context(), chatID, limit)
	if err != nil {
		logger.Error("failed to read chat history", zap.String("chat_id", chatID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read chat history",
		})
	}

	messages := make([]fiber.Map, 0, len(turns))
	for _, turn := range turns {
		messages = append(messages, fiber.Map{
			"role":      turn.Role,
			"content":   turn.Content,
			"timestamp": turn.Timestamp.UnixNano(),
		})
	}

	return c.JSON(fiber.Map{
		"chat_id":  chatID,
		"messages": messages,
	})
}
