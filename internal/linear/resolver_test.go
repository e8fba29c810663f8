package linear

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/changuis/linear-ticket-to-csv/internal/domain"
)

type fakeIssueClient struct {
	issueByID         func(issueID string) (*domain.ResolvedTicket, error)
	teamIDByKey       func(teamKey string) (string, error)
	issueByTeamNumber func(teamID string, number int) (*domain.ResolvedTicket, error)

	teamLookups int
}

func (f *fakeIssueClient) IssueByID(_ context.Context, issueID, _ string) (*domain.ResolvedTicket, error) {
	return f.issueByID(issueID)
}

func (f *fakeIssueClient) TeamIDByKey(_ context.Context, teamKey, _ string) (string, error) {
	f.teamLookups++
	return f.teamIDByKey(teamKey)
}

func (f *fakeIssueClient) IssueByTeamNumber(_ context.Context, teamID string, number int, _ string) (*domain.ResolvedTicket, error) {
	return f.issueByTeamNumber(teamID, number)
}

func TestResolveDirectIDStage(t *testing.T) {
	client := &fakeIssueClient{
		issueByID: func(issueID string) (*domain.ResolvedTicket, error) {
			return &domain.ResolvedTicket{Identifier: "ENG-1", Title: "Login", Description: "Steps"}, nil
		},
	}
	resolver := NewResolver(client, zap.NewNop())

	text, err := resolver.Resolve(context.Background(), "ENG-1", "key")
	require.NoError(t, err)
	assert.Equal(t, "ENG-1 Login\n\nSteps", text)
	assert.Zero(t, client.teamLookups, "second stage must not run after a hit")
}

func TestResolveFallsBackToTeamNumber(t *testing.T) {
	client := &fakeIssueClient{
		issueByID: func(string) (*domain.ResolvedTicket, error) {
			return nil, errors.New("Linear request failed with status 400")
		},
		teamIDByKey: func(teamKey string) (string, error) {
			require.Equal(t, "ENG", teamKey)
			return "team-1", nil
		},
		issueByTeamNumber: func(teamID string, number int) (*domain.ResolvedTicket, error) {
			require.Equal(t, "team-1", teamID)
			require.Equal(t, 123, number)
			return &domain.ResolvedTicket{Identifier: "ENG-123", Title: "Payments"}, nil
		},
	}
	resolver := NewResolver(client, zap.NewNop())

	text, err := resolver.Resolve(context.Background(), "eng-123", "key")
	require.NoError(t, err)
	assert.Equal(t, "ENG-123 Payments", text)
}

func TestResolveSkipsTeamStageForOpaqueIDs(t *testing.T) {
	client := &fakeIssueClient{
		issueByID: func(string) (*domain.ResolvedTicket, error) { return nil, nil },
	}
	resolver := NewResolver(client, zap.NewNop())

	_, err := resolver.Resolve(context.Background(), "9cbd2b1a-8b52-4c8e-b437-6a2f4d0c9f11", "key")
	require.Error(t, err)
	assert.Equal(t, NotFoundMessage, err.Error())
	assert.Zero(t, client.teamLookups)
}

func TestResolveNotFoundAfterBothStages(t *testing.T) {
	client := &fakeIssueClient{
		issueByID:   func(string) (*domain.ResolvedTicket, error) { return nil, nil },
		teamIDByKey: func(string) (string, error) { return "", nil },
	}
	resolver := NewResolver(client, zap.NewNop())

	_, err := resolver.Resolve(context.Background(), "ENG-404", "key")
	require.Error(t, err)
	assert.Equal(t, NotFoundMessage, err.Error())
}

func TestResolveTransportErrorsCollapseToNotFound(t *testing.T) {
	client := &fakeIssueClient{
		issueByID: func(string) (*domain.ResolvedTicket, error) {
			return nil, errors.New("Linear request failed with status 500")
		},
		teamIDByKey: func(string) (string, error) {
			return "", errors.New("Linear team lookup failed with status 500")
		},
	}
	resolver := NewResolver(client, zap.NewNop())

	_, err := resolver.Resolve(context.Background(), "ENG-1", "key")
	require.Error(t, err)
	assert.Equal(t, NotFoundMessage, err.Error())
}

func TestResolveEmptyTicketStillCountsAsFound(t *testing.T) {
	client := &fakeIssueClient{
		issueByID: func(string) (*domain.ResolvedTicket, error) {
			return &domain.ResolvedTicket{}, nil
		},
	}
	resolver := NewResolver(client, zap.NewNop())

	text, err := resolver.Resolve(context.Background(), "uuid", "key")
	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestResolveLowercaseTeamStageQueriesUppercaseKey(t *testing.T) {
	// Normalization is the caller's job, but SplitIdentifier uppercases the
	// team key regardless so the second stage matches case-insensitively.
	client := &fakeIssueClient{
		issueByID: func(string) (*domain.ResolvedTicket, error) { return nil, nil },
		teamIDByKey: func(teamKey string) (string, error) {
			assert.Equal(t, "OPS", teamKey)
			return "", nil
		},
	}
	resolver := NewResolver(client, zap.NewNop())

	_, err := resolver.Resolve(context.Background(), "ops-9", "key")
	require.Error(t, err)
	require.Equal(t, 1, client.teamLookups)
}
