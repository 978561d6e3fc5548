package validation

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var scriptPattern = regexp.MustCompile(`(?i)(<script|<iframe|javascript:|onerror=|onload=|onclick=)`)

type Config struct {
	MaxQueryLength int
	Logger         *zap.Logger
}

// Middleware rejects malformed chat and recommendation payloads before they
// reach the turn pipeline.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxQueryLength == 0 {
		cfg.MaxQueryLength = 5000
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost {
			return c.Next()
		}

		path := c.Path()

		if strings.HasSuffix(path, "/chats") {
			var req map[string]interface{}
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid JSON format",
				})
			}
			if msg := checkTextField(req, "query", cfg, c); msg != "" {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
			}
		}

		if strings.HasSuffix(path, "/recommendations") {
			var req map[string]interface{}
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid JSON format",
				})
			}
			if msg := checkTextField(req, "interests", cfg, c); msg != "" {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
			}
		}

		return c.Next()
	}
}

func checkTextField(req map[string]interface{}, field string, cfg Config, c *fiber.Ctx) string {
	value, ok := req[field].(string)
	if !ok || strings.TrimSpace(value) == "" {
		return field + " is required and must be a string"
	}
	if len(value) > cfg.MaxQueryLength {
		return field + " exceeds maximum length"
	}
	if scriptPattern.MatchString(value) {
		cfg.Logger.Warn("rejected suspicious input",
			zap.String("ip", c.IP()),
			zap.String("field", field),
		)
		return "Invalid " + field + " content"
	}
	return ""
}
