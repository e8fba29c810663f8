package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/changuis/linear-ticket-to-csv/internal/api/dto"
	"github.com/changuis/linear-ticket-to-csv/internal/config"
	"github.com/changuis/linear-ticket-to-csv/internal/domain"
	"github.com/changuis/linear-ticket-to-csv/internal/service"
	apperrors "github.com/changuis/linear-ticket-to-csv/pkg/util/errorutil"
)

// TestCaseGenerator is the pipeline entry point the handler drives.
type TestCaseGenerator interface {
	Generate(ctx context.Context, input service.GenerationInput) (*service.CSVResult, error)
}

// GenerateHandler validates generation requests, resolves credentials and
// maps pipeline outcomes onto the response envelope.
type GenerateHandler struct {
	service      TestCaseGenerator
	defaultModel string
	openAIKey    string
	linearKey    string
}

// NewGenerateHandler constructs the handler with environment defaults.
func NewGenerateHandler(generator TestCaseGenerator, linearCfg config.LinearConfig, openAICfg config.OpenAIConfig) *GenerateHandler {
	return &GenerateHandler{
		service:      generator,
		defaultModel: openAICfg.DefaultModel,
		openAIKey:    openAICfg.APIKey,
		linearKey:    linearCfg.APIKey,
	}
}

// Generate POST /api/generate-test-cases.
func (h *GenerateHandler) Generate(c *fiber.Ctx) error {
	var req dto.GenerateTestCasesRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid JSON payload.")
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = h.defaultModel
	}
	openAIKey := firstNonEmpty(req.OpenAIAPIKey, h.openAIKey)
	linearKey := firstNonEmpty(req.LinearAPIKey, h.linearKey)

	// issueIds wins over issueId when both are present.
	rawInputs := []string(req.IssueIDs)
	if rawInputs == nil {
		rawInputs = []string{req.IssueID}
	}
	issueIDs := domain.ParseIdentifiers(rawInputs)

	if openAIKey == "" {
		return apperrors.NewValidationError("OPENAI_API_KEY is required (env or request payload).")
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		if len(issueIDs) == 0 {
			return apperrors.NewValidationError("issueId(s) or description is required.")
		}
		if linearKey == "" {
			return apperrors.NewValidationError("LINEAR_API_KEY is required to fetch from Linear.")
		}
	}

	cases := 0
	if req.Cases > 0 {
		cases = req.Cases
	}

	result, err := h.service.Generate(c.UserContext(), service.GenerationInput{
		IssueIDs:     issueIDs,
		Description:  description,
		Model:        model,
		Cases:        cases,
		LinearAPIKey: linearKey,
		OpenAIAPIKey: openAIKey,
	})
	if err != nil {
		return err
	}

	return c.JSON(dto.GenerateTestCasesResponse{Header: result.Header, CSV: result.CSV})
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
