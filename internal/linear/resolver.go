package linear

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/changuis/linear-ticket-to-csv/internal/domain"
)

// NotFoundMessage is the stable user-facing phrase for an identifier that
// resolves to nothing after every lookup stage. The presentation layer
// special-cases it, so the wording must not drift.
const NotFoundMessage = "Issue not found. Check the identifier (e.g., ENG-123) or the issue ID from the URL."

// IssueClient is the slice of the Linear client the resolver needs.
type IssueClient interface {
	IssueByID(ctx context.Context, issueID, apiKey string) (*domain.ResolvedTicket, error)
	TeamIDByKey(ctx context.Context, teamKey, apiKey string) (string, error)
	IssueByTeamNumber(ctx context.Context, teamID string, number int, apiKey string) (*domain.ResolvedTicket, error)
}

// lookupStage attempts one resolution strategy. A nil ticket with nil error
// means the stage does not apply or found nothing; an error fails the stage.
type lookupStage func(ctx context.Context, identifier, apiKey string) (*domain.ResolvedTicket, error)

// Resolver turns one canonical identifier into ticket text via an ordered
// chain of lookup strategies: direct ID first, then team key + number.
type Resolver struct {
	stages []lookupStage
	logger *zap.Logger
}

// NewResolver constructs a resolver over the given client.
func NewResolver(client IssueClient, logger *zap.Logger) *Resolver {
	r := &Resolver{logger: logger}
	r.stages = []lookupStage{
		func(ctx context.Context, identifier, apiKey string) (*domain.ResolvedTicket, error) {
			return client.IssueByID(ctx, identifier, apiKey)
		},
		func(ctx context.Context, identifier, apiKey string) (*domain.ResolvedTicket, error) {
			teamKey, number, ok := domain.SplitIdentifier(identifier)
			if !ok {
				return nil, nil
			}
			teamID, err := client.TeamIDByKey(ctx, teamKey, apiKey)
			if err != nil {
				return nil, err
			}
			if teamID == "" {
				return nil, nil
			}
			return client.IssueByTeamNumber(ctx, teamID, number, apiKey)
		},
	}
	return r
}

// Resolve returns the ticket's combined heading+description text. A found
// ticket with no text at all still resolves to the empty string. Stage
// errors are swallowed into fallthrough; only exhausting every stage is an
// error, carrying NotFoundMessage.
func (r *Resolver) Resolve(ctx context.Context, identifier, apiKey string) (string, error) {
	for i, stage := range r.stages {
		ticket, err := stage(ctx, identifier, apiKey)
		if err != nil {
			r.logger.Debug("lookup stage failed",
				zap.String("identifier", identifier),
				zap.Int("stage", i),
				zap.Error(err),
			)
			continue
		}
		if ticket != nil {
			return ticket.Text(), nil
		}
	}
	return "", errors.New(NotFoundMessage)
}
