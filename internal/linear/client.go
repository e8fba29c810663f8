package linear

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/changuis/linear-ticket-to-csv/internal/domain"
)

// DefaultEndpoint is the public Linear GraphQL API.
const DefaultEndpoint = "https://api.linear.app/graphql"

// maxErrorBody caps remote error payloads quoted in user-facing messages.
const maxErrorBody = 200

const issueByIDQuery = `
query IssueById($id: String!) {
  issue(id: $id) {
    identifier
    title
    description
  }
}`

const teamByKeyQuery = `
query TeamByKey($teamKey: String!) {
  teams(filter: { key: { eq: $teamKey } }, first: 1) {
    nodes {
      id
    }
  }
}`

const issueByNumberQuery = `
query IssueByNumber($teamId: String!, $number: Int!) {
  issues(
    filter: { number: { eq: $number }, team: { id: { eq: $teamId } } }
    first: 1
  ) {
    nodes {
      identifier
      title
      description
    }
  }
}`

// Client is a thin GraphQL client for the Linear API. The bearer credential
// is supplied per call, never stored, so one client serves all requests.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient constructs a client against the given endpoint.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint: endpoint,
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

type issueNode struct {
	Identifier  string `json:"identifier"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (n *issueNode) ticket() *domain.ResolvedTicket {
	if n == nil {
		return nil
	}
	return &domain.ResolvedTicket{
		Identifier:  n.Identifier,
		Title:       n.Title,
		Description: n.Description,
	}
}

// IssueByID fetches an issue treating the identifier as an opaque ID (UUID).
// A nil ticket with nil error means the service knows no such issue.
func (c *Client) IssueByID(ctx context.Context, issueID, apiKey string) (*domain.ResolvedTicket, error) {
	var data struct {
		Issue *issueNode `json:"issue"`
	}
	err := c.query(ctx, apiKey, "Linear request", issueByIDQuery, map[string]any{"id": issueID}, &data)
	if err != nil {
		return nil, err
	}
	return data.Issue.ticket(), nil
}

// TeamIDByKey resolves a team's internal ID by its key, matched exactly by
// the service. Returns "" when no team carries that key.
func (c *Client) TeamIDByKey(ctx context.Context, teamKey, apiKey string) (string, error) {
	var data struct {
		Teams struct {
			Nodes []struct {
				ID string `json:"id"`
			} `json:"nodes"`
		} `json:"teams"`
	}
	err := c.query(ctx, apiKey, "Linear team lookup", teamByKeyQuery, map[string]any{"teamKey": teamKey}, &data)
	if err != nil {
		return "", err
	}
	if len(data.Teams.Nodes) == 0 {
		return "", nil
	}
	return data.Teams.Nodes[0].ID, nil
}

// IssueByTeamNumber fetches the single issue with the given number under a
// team ID. A nil ticket with nil error means no match.
func (c *Client) IssueByTeamNumber(ctx context.Context, teamID string, number int, apiKey string) (*domain.ResolvedTicket, error) {
	var data struct {
		Issues struct {
			Nodes []issueNode `json:"nodes"`
		} `json:"issues"`
	}
	err := c.query(ctx, apiKey, "Linear issue lookup", issueByNumberQuery, map[string]any{"teamId": teamID, "number": number}, &data)
	if err != nil {
		return nil, err
	}
	if len(data.Issues.Nodes) == 0 {
		return nil, nil
	}
	return data.Issues.Nodes[0].ticket(), nil
}

func (c *Client) query(ctx context.Context, apiKey, op, query string, variables map[string]any, out any) error {
	payload, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	// Linear expects the raw key, not a Bearer scheme.
	req.Header.Set("Authorization", apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s failed with status %d%s", op, resp.StatusCode, detailSuffix(body))
	}

	var envelope struct {
		Data   json.RawMessage   `json:"data"`
		Errors []json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		raw, _ := json.Marshal(envelope.Errors)
		return fmt.Errorf("%s returned errors: %s", op, truncate(string(raw), maxErrorBody))
	}
	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}

func detailSuffix(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	return ": " + truncate(string(body), maxErrorBody)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
