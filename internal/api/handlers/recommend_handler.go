package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/capstone-recommender/backend/internal/agent"
	"github.com/capstone-recommender/backend/internal/chatstore/sqlite"
	"github.com/capstone-recommender/backend/internal/domain"
	"github.com/capstone-recommender/backend/pkg/logger"
	"github.com/capstone-recommender/backend/pkg/textutil"
)

type RecommendHandler struct {
	agent *agent.Agent
	store *sqlite.Client
}

func NewRecommendHandler(a *agent.Agent, store *sqlite.Client) *RecommendHandler {
	return &RecommendHandler{agent: a, store: store}
}

// HandleRecommendation runs one structured recommendation turn.
func (h *RecommendHandler) HandleRecommendation(c *fiber.Ctx) error {
	var req struct {
		Interests    string `json:"interests"`
		SkillLevel   string `json:"skill_level"`
		Technologies string `json:"technologies"`
		Duration     string `json:"duration"`
		ChatID       string `json:"chat_id"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("failed to parse recommendation request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Interests == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "interests is required",
		})
	}

	chatID := req.ChatID
	if chatID == "" {
		chatID = uuid.NewString()
		if err := h.store.CreateChat(c.Context(), chatID,
			textutil.ChatTitle(req.Interests),
			textutil.TruncateChars(req.Interests, queryPreviewChars),
		); err != nil {
			logger.Warn("failed to create chat metadata", zap.Error(err))
		}
	}

	result, err := h.agent.HandleRecommendation(c.Context(), domain.RecommendationRequest{
		Interests:    req.Interests,
		SkillLevel:   domain.SkillLevel(req.SkillLevel),
		Technologies: req.Technologies,
		Duration:     req.Duration,
	}, chatID)
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
