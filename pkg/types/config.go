// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "issues-ltt/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// GitHubConfig holds settings for the GitHub GraphQL client.
type GitHubConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Endpoint is the GraphQL endpoint (default https://api.github.com/graphql).
	Endpoint string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`

	// Token is a personal access token or the workflow GITHUB_TOKEN.
	Token string `json:"-" yaml:"-" mapstructure:"token"`

	// MaxRetries is the number of retries on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// SyncConfig identifies the source issue and the aggregate issue for one run.
type SyncConfig struct {
	Owner string `json:"owner" yaml:"owner" mapstructure:"owner"`
	Repo  string `json:"repo" yaml:"repo" mapstructure:"repo"`

	// IssueNumber is the source issue whose action items are synced.
	IssueNumber int `json:"issue_number" yaml:"issue_number" mapstructure:"issue_number"`

	// AggregateLabel selects the aggregate issue: the first open issue
	// carrying this label (default "gh-issues-ltt").
	AggregateLabel string `json:"aggregate_label" yaml:"aggregate_label" mapstructure:"aggregate_label"`

	// HeadingPattern is the regular expression that identifies the action
	// items heading in the source issue (default "(?i)action items").
	HeadingPattern string `json:"heading_pattern" yaml:"heading_pattern" mapstructure:"heading_pattern"`

	// DryRun computes the new aggregate body without persisting it.
	DryRun bool `json:"dry_run" yaml:"dry_run" mapstructure:"dry_run"`
}

// HistoryConfig holds settings for the local run history.
type HistoryConfig struct {
	// Dir contains history.db and export.yaml. Empty disables history.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`
}

// Config groups all settings read from the config file.
type Config struct {
	GitHub  GitHubConfig  `json:"github" yaml:"github" mapstructure:"github"`
	Sync    SyncConfig    `json:"sync" yaml:"sync" mapstructure:"sync"`
	History HistoryConfig `json:"history" yaml:"history" mapstructure:"history"`
	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
}

// LogConfig selects the log level and an optional log file.
type LogConfig struct {
	Level string `json:"level" yaml:"level" mapstructure:"level"`
	File  string `json:"file" yaml:"file" mapstructure:"file"`
}
