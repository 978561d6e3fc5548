package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/capstone-recommender/backend/internal/agent"
	"github.com/capstone-recommender/backend/pkg/logger"
)

// WebSocketHandler drives an interactive chat session. The turn itself is
// not streamed by the generator, so the answer is chunked word-by-word for
// the client once it is complete.
type WebSocketHandler struct {
	agent *agent.Agent
}

func NewWebSocketHandler(a *agent.Agent) *WebSocketHandler {
	return &WebSocketHandler{agent: a}
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("websocket connection established")

	defer func() {
		c.Close()
		logger.Info("websocket connection closed")
	}()

	for {
		var msg struct {
			Type    string `json:"type"`
			Content string `json:"content"`
			ChatID  string `json:"chat_id"`
		}

		if err := c.ReadJSON(&msg); err != nil {
			logger.Debug("websocket read ended", zap.Error(err))
			break
		}

		if msg.Type != "query" {
			continue
		}

		if err := h.streamTurn(c, msg.Content, msg.ChatID); err != nil {
			logger.Error("failed to stream turn", zap.Error(err))
			h.sendError(c, "Failed to process query")
		}
	}
}

func (h *WebSocketHandler) streamTurn(c *websocket.Conn, query, chatID string) error {
	h.send(c, "status", "Thinking...")

	result, err := h.agent.HandleTurn(context.Background(), query, chatID)
	if err != nil {
		h.sendError(c, err.Error())
		return nil
	}

	words := strings.Fields(result.Answer)
	for i, word := range words {
		chunk := word
		if i < len(words)-1 {
			chunk += " "
		}
		if err := h.send(c, "chunk", chunk); err != nil {
			return err
		}
	}

	return c.WriteJSON(map[string]interface{}{
		"type":           "complete",
		"chat_id":        result.ChatID,
		"evidence_count": result.EvidenceCount,
		"degraded":       result.Degraded,
		"latency_ms":     result.LatencyMS,
	})
}

func (h *WebSocketHandler) send(c *websocket.Conn, msgType, content string) error {
	return c.WriteJSON(map[string]interface{}{
		"type":    msgType,
		"content": content,
	})
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	c.WriteJSON(map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	})
}
