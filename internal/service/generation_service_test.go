package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/changuis/linear-ticket-to-csv/internal/openai"
	apperrors "github.com/changuis/linear-ticket-to-csv/pkg/util/errorutil"
)

type fakeResolver struct {
	mu    sync.Mutex
	texts map[string]string
	errs  map[string]error
	calls []string
}

func (f *fakeResolver) Resolve(_ context.Context, identifier, _ string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, identifier)
	f.mu.Unlock()
	if err, ok := f.errs[identifier]; ok {
		return "", err
	}
	return f.texts[identifier], nil
}

type fakeCompletions struct {
	gotModel  string
	gotPrompt string
	reply     string
	err       error
}

func (f *fakeCompletions) Complete(_ context.Context, _, model, prompt string) (string, error) {
	f.gotModel = model
	f.gotPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newService(resolver TicketResolver, completions CompletionClient) *GenerationService {
	return NewGenerationService(GenerationDependencies{
		Resolver:      resolver,
		Completions:   completions,
		Logger:        zap.NewNop(),
		MaxConcurrent: 4,
	})
}

func TestGenerateSingleTicketNoSeparator(t *testing.T) {
	resolver := &fakeResolver{texts: map[string]string{"ENG-1": "ENG-1 Login\n\nSteps"}}
	completions := &fakeCompletions{reply: "row1"}
	svc := newService(resolver, completions)

	result, err := svc.Generate(context.Background(), GenerationInput{
		IssueIDs:     []string{"ENG-1"},
		Model:        "gpt-4o-mini",
		LinearAPIKey: "lk",
		OpenAIAPIKey: "ok",
	})
	require.NoError(t, err)
	assert.Equal(t, CSVHeader, result.Header)
	assert.Equal(t, "row1", result.CSV)
	assert.NotContains(t, completions.gotPrompt, "---")
	assert.Contains(t, completions.gotPrompt, "ENG-1 Login\n\nSteps")
}

func TestGenerateMultipleTicketsJoinedInOrder(t *testing.T) {
	resolver := &fakeResolver{texts: map[string]string{
		"ENG-1": "first",
		"OPS-2": "second",
		"QA-3":  "third",
	}}
	completions := &fakeCompletions{reply: "row1"}
	svc := newService(resolver, completions)

	_, err := svc.Generate(context.Background(), GenerationInput{
		IssueIDs:     []string{"ENG-1", "OPS-2", "QA-3"},
		Model:        "gpt-4o-mini",
		LinearAPIKey: "lk",
		OpenAIAPIKey: "ok",
	})
	require.NoError(t, err)
	assert.Contains(t, completions.gotPrompt, "first\n\n---\n\nsecond\n\n---\n\nthird")
}

func TestGenerateAllLookupsFailed(t *testing.T) {
	resolver := &fakeResolver{errs: map[string]error{
		"ENG-1": errors.New("Issue not found."),
		"ENG-2": errors.New("Issue not found."),
	}}
	svc := newService(resolver, &fakeCompletions{})

	_, err := svc.Generate(context.Background(), GenerationInput{
		IssueIDs:     []string{"ENG-1", "ENG-2"},
		Model:        "gpt-4o-mini",
		LinearAPIKey: "lk",
		OpenAIAPIKey: "ok",
	})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, 400, domainErr.HTTPStatus)
	assert.Equal(t, "Failed to fetch Linear description: Issue not found.", domainErr.Message)
}

func TestGeneratePartialFailureIsStrict(t *testing.T) {
	resolver := &fakeResolver{
		texts: map[string]string{"ENG-1": "resolved"},
		errs: map[string]error{
			"ENG-2": errors.New("Issue not found."),
			"ENG-3": errors.New("Issue not found."),
		},
	}
	completions := &fakeCompletions{reply: "row1"}
	svc := newService(resolver, completions)

	_, err := svc.Generate(context.Background(), GenerationInput{
		IssueIDs:     []string{"ENG-1", "ENG-2", "ENG-3"},
		Model:        "gpt-4o-mini",
		LinearAPIKey: "lk",
		OpenAIAPIKey: "ok",
	})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, 400, domainErr.HTTPStatus)
	assert.Equal(t, "Failed to fetch Linear description for: ENG-2, ENG-3. Issue not found.", domainErr.Message)
	assert.Empty(t, completions.gotPrompt, "no completion on partial failure")
}

func TestGenerateTypedDescriptionSkipsResolution(t *testing.T) {
	resolver := &fakeResolver{}
	completions := &fakeCompletions{reply: "row1"}
	svc := newService(resolver, completions)

	result, err := svc.Generate(context.Background(), GenerationInput{
		Description:  "typed description",
		Model:        "gpt-4o-mini",
		OpenAIAPIKey: "ok",
	})
	require.NoError(t, err)
	assert.Equal(t, "row1", result.CSV)
	assert.Empty(t, resolver.calls)
	assert.Contains(t, completions.gotPrompt, "typed description")
}

func TestGenerateNoContentMapsTo500(t *testing.T) {
	svc := newService(&fakeResolver{}, &fakeCompletions{err: openai.ErrNoContent})

	_, err := svc.Generate(context.Background(), GenerationInput{
		Description:  "desc",
		Model:        "gpt-4o-mini",
		OpenAIAPIKey: "ok",
	})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, 500, domainErr.HTTPStatus)
	assert.Equal(t, "No content returned from model.", domainErr.Message)
}

func TestGenerateCompletionFailureWrapsMessage(t *testing.T) {
	svc := newService(&fakeResolver{}, &fakeCompletions{err: errors.New("completion request failed with status 429")})

	_, err := svc.Generate(context.Background(), GenerationInput{
		Description:  "desc",
		Model:        "gpt-4o-mini",
		OpenAIAPIKey: "ok",
	})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, 500, domainErr.HTTPStatus)
	assert.Equal(t, "Failed to generate test cases: completion request failed with status 429", domainErr.Message)
}

func TestGenerateNormalizesModelOutput(t *testing.T) {
	completions := &fakeCompletions{reply: "```\n" + CSVHeader + "\nrow1\nrow2\n```"}
	svc := newService(&fakeResolver{}, completions)

	result, err := svc.Generate(context.Background(), GenerationInput{
		Description:  "desc",
		Model:        "gpt-4o-mini",
		OpenAIAPIKey: "ok",
	})
	require.NoError(t, err)
	assert.Equal(t, "row1\nrow2", result.CSV)
}

func TestGenerateTicketHintPresentEvenWithTypedDescription(t *testing.T) {
	completions := &fakeCompletions{reply: "row1"}
	svc := newService(&fakeResolver{}, completions)

	_, err := svc.Generate(context.Background(), GenerationInput{
		IssueIDs:     []string{"ENG-1", "ENG-2"},
		Description:  "typed",
		Model:        "gpt-4o-mini",
		OpenAIAPIKey: "ok",
	})
	require.NoError(t, err)
	assert.Contains(t, completions.gotPrompt, "Descriptions are combined from 2 Linear tickets: ENG-1, ENG-2.")
}
