package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/changuis/linear-ticket-to-csv/internal/openai"
	apperrors "github.com/changuis/linear-ticket-to-csv/pkg/util/errorutil"
)

// descriptionSeparator joins multiple resolved ticket texts.
const descriptionSeparator = "\n\n---\n\n"

// TicketResolver resolves one canonical identifier to ticket text.
type TicketResolver interface {
	Resolve(ctx context.Context, identifier, apiKey string) (string, error)
}

// CompletionClient produces raw model text for a prompt.
type CompletionClient interface {
	Complete(ctx context.Context, apiKey, model, prompt string) (string, error)
}

// GenerationInput is the validated request handed to the pipeline. The
// handler has already resolved credentials (request value over environment
// value) and canonicalized IssueIDs.
type GenerationInput struct {
	IssueIDs     []string
	Description  string
	Model        string
	Cases        int
	LinearAPIKey string
	OpenAIAPIKey string
}

// CSVResult is the generation outcome: the fixed header plus normalized rows.
type CSVResult struct {
	Header string
	CSV    string
}

// LookupFailure records one identifier that could not be resolved.
type LookupFailure struct {
	Identifier string
	Message    string
}

// GenerationService drives resolution, prompting, completion and output
// normalization. Stateless; safe for concurrent use.
type GenerationService struct {
	resolver      TicketResolver
	completions   CompletionClient
	logger        *zap.Logger
	maxConcurrent int
}

// GenerationDependencies bundles collaborators for the service.
type GenerationDependencies struct {
	Resolver      TicketResolver
	Completions   CompletionClient
	Logger        *zap.Logger
	MaxConcurrent int
}

// NewGenerationService constructs the service.
func NewGenerationService(deps GenerationDependencies) *GenerationService {
	maxConcurrent := deps.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &GenerationService{
		resolver:      deps.Resolver,
		completions:   deps.Completions,
		logger:        deps.Logger,
		maxConcurrent: maxConcurrent,
	}
}

// Generate runs the full pipeline once. A typed description skips ticket
// resolution entirely. Lookup failures are strict all-or-nothing: one failed
// identifier invalidates the batch even when others resolved.
func (s *GenerationService) Generate(ctx context.Context, input GenerationInput) (*CSVResult, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		combined, err := s.resolveAll(ctx, input.IssueIDs, input.LinearAPIKey)
		if err != nil {
			return nil, err
		}
		description = combined
	}

	prompt := BuildPrompt(description, input.Cases, input.IssueIDs)

	raw, err := s.completions.Complete(ctx, input.OpenAIAPIKey, input.Model, prompt)
	if err != nil {
		if errors.Is(err, openai.ErrNoContent) {
			return nil, apperrors.NewNoContentError()
		}
		return nil, apperrors.NewGenerationError(fmt.Sprintf("Failed to generate test cases: %v", err), err)
	}

	return &CSVResult{
		Header: CSVHeader,
		CSV:    NormalizeModelOutput(raw),
	}, nil
}

// resolveAll fans lookups out with bounded concurrency, keeping both texts
// and failures in input order for stable joining and reporting.
func (s *GenerationService) resolveAll(ctx context.Context, issueIDs []string, apiKey string) (string, error) {
	texts := make([]string, len(issueIDs))
	resolved := make([]bool, len(issueIDs))
	failureMessages := make([]string, len(issueIDs))

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)
	for i, issueID := range issueIDs {
		i, issueID := i, issueID
		g.Go(func() error {
			text, err := s.resolver.Resolve(groupCtx, issueID, apiKey)
			if err != nil {
				failureMessages[i] = err.Error()
				return nil
			}
			texts[i] = text
			resolved[i] = true
			return nil
		})
	}
	_ = g.Wait()

	var successes []string
	var failures []LookupFailure
	for i, issueID := range issueIDs {
		if resolved[i] {
			successes = append(successes, texts[i])
			continue
		}
		failures = append(failures, LookupFailure{Identifier: issueID, Message: failureMessages[i]})
	}

	if len(successes) == 0 {
		detail := "Unknown error."
		if len(failures) > 0 {
			detail = failures[0].Message
		}
		return "", apperrors.NewLookupError(fmt.Sprintf("Failed to fetch Linear description: %s", detail))
	}

	if len(failures) > 0 {
		failedIDs := make([]string, len(failures))
		for i, failure := range failures {
			failedIDs[i] = failure.Identifier
		}
		s.logger.Warn("discarding partial resolution",
			zap.Strings("failed", failedIDs),
			zap.Int("resolved", len(successes)),
		)
		return "", apperrors.NewLookupError(fmt.Sprintf(
			"Failed to fetch Linear description for: %s. %s",
			strings.Join(failedIDs, ", "), failures[0].Message,
		))
	}

	return strings.Join(successes, descriptionSeparator), nil
}
