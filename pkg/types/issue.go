// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// IssueState mirrors the GitHub issue state enum.
type IssueState string

const (
	IssueOpen   IssueState = "OPEN"
	IssueClosed IssueState = "CLOSED"
)

// Issue holds the fields of a GitHub issue that the synchronizer reads and
// writes. The same record describes both source issues and the aggregate
// tracking issue.
type Issue struct {
	// ID is the GraphQL node ID used by mutations.
	ID string `json:"id" yaml:"id"`

	// DatabaseID is the REST identifier.
	DatabaseID int64 `json:"database_id" yaml:"database_id"`

	// Number is the repository-scoped issue number (the "#12" in headings).
	Number int `json:"number" yaml:"number"`

	Title string     `json:"title" yaml:"title"`
	State IssueState `json:"state" yaml:"state"`

	// Author is the login of the issue author.
	Author string `json:"author,omitempty" yaml:"author,omitempty"`

	// Body is the raw markdown body.
	Body string `json:"body" yaml:"body"`
}
