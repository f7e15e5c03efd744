// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package github reads and updates issues through the GitHub GraphQL API.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/shurcooL/githubv4"

	"github.com/pdiddy/issues-ltt/internal/httputil"
	"github.com/pdiddy/issues-ltt/pkg/types"
)

// DefaultEndpoint is the public GitHub GraphQL endpoint.
const DefaultEndpoint = "https://api.github.com/graphql"

var (
	// ErrIssueNotFound is returned when the requested issue does not exist.
	ErrIssueNotFound = errors.New("issue not found")

	// ErrRepositoryNotFound is returned when owner/repo does not exist or
	// the token cannot see it.
	ErrRepositoryNotFound = errors.New("repository not found")

	// ErrAggregateNotFound is returned when no open issue carries the
	// aggregate label.
	ErrAggregateNotFound = errors.New("aggregate issue not found: create it first and add the label")
)

// APIError reports a non-200 response or a GraphQL errors payload.
type APIError struct {
	StatusCode int
	Messages   []string
}

func (e *APIError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("GitHub API returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("GitHub API returned HTTP %d: %s", e.StatusCode, strings.Join(e.Messages, "; "))
}

// Client is a GitHub GraphQL client for the three operations a sync needs.
type Client struct {
	gql *githubv4.Client
	cfg types.GitHubConfig
}

// NewClient returns a client that sends requests through httpClient. The
// token, user agent and 429 retries are applied by a wrapping transport.
func NewClient(httpClient *http.Client, cfg types.GitHubConfig) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	base := httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	wrapped := &http.Client{
		Timeout: httpClient.Timeout,
		Transport: &transport{
			base:       base,
			token:      cfg.Token,
			userAgent:  cfg.UserAgent,
			maxRetries: cfg.MaxRetries,
		},
	}
	return &Client{gql: githubv4.NewEnterpriseClient(cfg.Endpoint, wrapped), cfg: cfg}
}

type issueNode struct {
	ID         string `graphql:"id"`
	DatabaseID int64  `graphql:"databaseId"`
	Number     int    `graphql:"number"`
	Title      string `graphql:"title"`
	State      string `graphql:"state"`
	Author     struct {
		Login string `graphql:"login"`
	} `graphql:"author"`
	Body string `graphql:"body"`
}

func (n issueNode) toIssue() types.Issue {
	return types.Issue{
		ID:         n.ID,
		DatabaseID: n.DatabaseID,
		Number:     n.Number,
		Title:      n.Title,
		State:      types.IssueState(n.State),
		Author:     n.Author.Login,
		Body:       n.Body,
	}
}

// FetchIssue returns issue number of owner/repo.
func (c *Client) FetchIssue(ctx context.Context, owner, repo string, number int) (types.Issue, error) {
	var q struct {
		Repository struct {
			Issue issueNode `graphql:"issue(number: $number)"`
		} `graphql:"repository(owner: $owner, name: $repo)"`
	}
	vars := map[string]any{
		"owner":  githubv4.String(owner),
		"repo":   githubv4.String(repo),
		"number": githubv4.Int(number),
	}
	if err := c.gql.Query(ctx, &q, vars); err != nil {
		switch {
		case notFound(err, "Repository"):
			return types.Issue{}, fmt.Errorf("fetching issue #%d: %s/%s: %w", number, owner, repo, ErrRepositoryNotFound)
		case notFound(err, "Issue"):
			return types.Issue{}, fmt.Errorf("fetching issue #%d: %w", number, ErrIssueNotFound)
		}
		return types.Issue{}, fmt.Errorf("fetching issue #%d: %w", number, apiError(err))
	}
	if q.Repository.Issue.ID == "" {
		return types.Issue{}, fmt.Errorf("fetching issue #%d: %w", number, ErrIssueNotFound)
	}
	return q.Repository.Issue.toIssue(), nil
}

// FetchAggregateIssue returns the first open issue of owner/repo carrying
// label.
func (c *Client) FetchAggregateIssue(ctx context.Context, owner, repo, label string) (types.Issue, error) {
	var q struct {
		Repository struct {
			Issues struct {
				Nodes []issueNode `graphql:"nodes"`
			} `graphql:"issues(first: 1, filterBy: {labels: [$label], states: OPEN})"`
		} `graphql:"repository(owner: $owner, name: $repo)"`
	}
	vars := map[string]any{
		"owner": githubv4.String(owner),
		"repo":  githubv4.String(repo),
		"label": githubv4.String(label),
	}
	if err := c.gql.Query(ctx, &q, vars); err != nil {
		if notFound(err, "Repository") {
			return types.Issue{}, fmt.Errorf("fetching aggregate issue: %s/%s: %w", owner, repo, ErrRepositoryNotFound)
		}
		return types.Issue{}, fmt.Errorf("fetching aggregate issue: %w", apiError(err))
	}
	if len(q.Repository.Issues.Nodes) == 0 {
		return types.Issue{}, fmt.Errorf("label %q: %w", label, ErrAggregateNotFound)
	}
	return q.Repository.Issues.Nodes[0].toIssue(), nil
}

// UpdateIssueBody replaces the body of the issue with GraphQL node id.
func (c *Client) UpdateIssueBody(ctx context.Context, id, body string) error {
	var m struct {
		UpdateIssue struct {
			ClientMutationID string `graphql:"clientMutationId"`
		} `graphql:"updateIssue(input: $input)"`
	}
	input := githubv4.UpdateIssueInput{
		ID:   githubv4.ID(id),
		Body: githubv4.NewString(githubv4.String(body)),
	}
	if err := c.gql.Mutate(ctx, &m, input, nil); err != nil {
		if notFound(err, "") {
			return fmt.Errorf("updating issue %s: %w", id, ErrIssueNotFound)
		}
		return fmt.Errorf("updating issue %s: %w", id, apiError(err))
	}
	return nil
}

// notFound reports whether err is GitHub's "Could not resolve to a(n)
// <kind>" GraphQL error. An empty kind matches any node type.
func notFound(err error, kind string) bool {
	var apiErr *APIError
	var urlErr *url.Error
	if errors.As(err, &apiErr) || errors.As(err, &urlErr) {
		return false
	}
	msg := err.Error()
	if !strings.HasPrefix(msg, "Could not resolve to ") {
		return false
	}
	return kind == "" || strings.Contains(msg, " "+kind+" ")
}

// apiError returns transport errors unchanged and wraps a GraphQL errors
// payload, which arrives with HTTP 200, as an *APIError.
func apiError(err error) error {
	var apiErr *APIError
	var urlErr *url.Error
	if errors.As(err, &apiErr) || errors.As(err, &urlErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &APIError{StatusCode: http.StatusOK, Messages: []string{err.Error()}}
}

// transport authenticates requests, retries HTTP 429, and turns any other
// non-200 response into an *APIError before githubv4 sees it.
type transport struct {
	base       http.RoundTripper
	token      string
	userAgent  string
	maxRetries int
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	resp, err := httputil.DoWithRetry(req.Context(), &http.Client{Transport: t.base}, req, t.maxRetries)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusOK {
		return resp, nil
	}
	defer resp.Body.Close()

	apiErr := &APIError{StatusCode: resp.StatusCode}
	body, _ := io.ReadAll(resp.Body)
	var payload struct {
		Message string `json:"message"`
		Errors  []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if payload.Message != "" {
			apiErr.Messages = append(apiErr.Messages, payload.Message)
		}
		for _, e := range payload.Errors {
			apiErr.Messages = append(apiErr.Messages, e.Message)
		}
	}
	return nil, apiErr
}
