// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// SyncRun records one completed synchronization.
type SyncRun struct {
	ID int64 `json:"id" yaml:"id"`

	// RanAt is when the run finished.
	RanAt time.Time `json:"ran_at" yaml:"ran_at"`

	Owner string `json:"owner" yaml:"owner"`
	Repo  string `json:"repo" yaml:"repo"`

	SourceNumber    int    `json:"source_number" yaml:"source_number"`
	SourceTitle     string `json:"source_title" yaml:"source_title"`
	AggregateNumber int    `json:"aggregate_number" yaml:"aggregate_number"`

	// Outcome is "unchanged", "updated", or "appended".
	Outcome string `json:"outcome" yaml:"outcome"`

	ExtractionDate string `json:"extraction_date" yaml:"extraction_date"`

	// Items holds the raw text of the synced action items.
	Items []string `json:"items" yaml:"items"`

	// DryRun is set when the new body was computed but not persisted.
	DryRun bool `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
}
