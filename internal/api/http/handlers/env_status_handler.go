package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/changuis/linear-ticket-to-csv/internal/api/dto"
	"github.com/changuis/linear-ticket-to-csv/internal/config"
)

// EnvStatusHandler reports whether default credentials were configured, so
// the client can decide which key fields to require from the user.
type EnvStatusHandler struct {
	hasOpenAI bool
	hasLinear bool
}

// NewEnvStatusHandler snapshots credential presence at startup.
func NewEnvStatusHandler(linearCfg config.LinearConfig, openAICfg config.OpenAIConfig) *EnvStatusHandler {
	return &EnvStatusHandler{
		hasOpenAI: openAICfg.APIKey != "",
		hasLinear: linearCfg.APIKey != "",
	}
}

// Status GET /api/env-status.
func (h *EnvStatusHandler) Status(c *fiber.Ctx) error {
	return c.JSON(dto.EnvStatusResponse{HasOpenAI: h.hasOpenAI, HasLinear: h.hasLinear})
}
