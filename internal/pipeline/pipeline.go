// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one synchronization: fetch the source issue and the
// aggregate issue, extract the action items, merge them into the aggregate
// body, and persist the result when it changed.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/issues-ltt/internal/actionitems"
	"github.com/pdiddy/issues-ltt/internal/aggregate"
	"github.com/pdiddy/issues-ltt/internal/markdown"
	"github.com/pdiddy/issues-ltt/pkg/types"
)

// DefaultAggregateLabel marks the aggregate tracking issue.
const DefaultAggregateLabel = "gh-issues-ltt"

// IssueService fetches and updates issues. *github.Client implements it.
type IssueService interface {
	FetchIssue(ctx context.Context, owner, repo string, number int) (types.Issue, error)
	FetchAggregateIssue(ctx context.Context, owner, repo, label string) (types.Issue, error)
	UpdateIssueBody(ctx context.Context, id, body string) error
}

// Recorder stores completed runs. *history.Store implements it.
type Recorder interface {
	Record(ctx context.Context, run types.SyncRun) (int64, error)
}

// Syncer wires the collaborators of a run.
type Syncer struct {
	Issues    IssueService
	Lexer     markdown.Lexer
	Extractor *actionitems.Extractor

	// Recorder is optional. Recording failures are logged, not returned.
	Recorder Recorder

	Log zerolog.Logger
}

// Report describes a finished run.
type Report struct {
	Outcome aggregate.Outcome
	Source  types.Issue

	// Aggregate carries the new body when the outcome is not unchanged.
	Aggregate types.Issue
	Items     *types.ActionItemSet

	// Persisted is false for unchanged outcomes and dry runs.
	Persisted bool
}

// Validate checks that cfg names a source issue and fills in defaults.
func Validate(cfg *types.SyncConfig) error {
	if cfg.Owner == "" {
		return fmt.Errorf("owner is required")
	}
	if cfg.Repo == "" {
		return fmt.Errorf("repo is required")
	}
	if cfg.IssueNumber <= 0 {
		return fmt.Errorf("issue number must be positive, got %d", cfg.IssueNumber)
	}
	if cfg.AggregateLabel == "" {
		cfg.AggregateLabel = DefaultAggregateLabel
	}
	return nil
}

// Run synchronizes the action items of cfg.IssueNumber into the aggregate
// issue. The two fetches run concurrently; the merge starts only after
// both succeed. An unchanged outcome issues no update.
func (s *Syncer) Run(ctx context.Context, cfg types.SyncConfig) (Report, error) {
	if err := Validate(&cfg); err != nil {
		return Report{}, err
	}
	log := s.Log.With().
		Str("owner", cfg.Owner).
		Str("repo", cfg.Repo).
		Int("issue", cfg.IssueNumber).
		Logger()
	ctx = log.WithContext(ctx)

	log.Info().Msg("syncing action items")

	var source, agg types.Issue
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Debug().Msg("fetching issue")
		var err error
		source, err = s.Issues.FetchIssue(gctx, cfg.Owner, cfg.Repo, cfg.IssueNumber)
		return err
	})
	g.Go(func() error {
		log.Debug().Str("label", cfg.AggregateLabel).Msg("fetching aggregate issue")
		var err error
		agg, err = s.Issues.FetchAggregateIssue(gctx, cfg.Owner, cfg.Repo, cfg.AggregateLabel)
		return err
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	log.Debug().Msg("extracting action items")
	set, err := s.Extractor.Extract(s.Lexer.Tokenize([]byte(source.Body)), source)
	if err != nil {
		return Report{}, err
	}

	log.Debug().Int("aggregate", agg.Number).Msg("looking for changes")
	res, err := aggregate.Sync(set, s.Lexer.Tokenize([]byte(agg.Body)), agg.Body)
	if err != nil {
		return Report{}, fmt.Errorf("syncing issue #%d into aggregate #%d: %w", source.Number, agg.Number, err)
	}

	report := Report{Outcome: res.Outcome, Source: source, Aggregate: agg, Items: set}
	report.Aggregate.Body = res.Body

	switch {
	case !res.Changed():
		log.Info().Str("outcome", string(res.Outcome)).Msg("aggregate already up to date")
	case cfg.DryRun:
		log.Info().Str("outcome", string(res.Outcome)).Msg("dry run, aggregate not updated")
	default:
		if err := s.Issues.UpdateIssueBody(ctx, agg.ID, res.Body); err != nil {
			return Report{}, err
		}
		report.Persisted = true
		log.Info().Str("outcome", string(res.Outcome)).Int("aggregate", agg.Number).Msg("aggregate updated")
	}

	s.record(ctx, cfg, report)
	return report, nil
}

// ExtractIssue fetches one issue and returns its action items. A nil set
// means the issue has no action items heading.
func (s *Syncer) ExtractIssue(ctx context.Context, owner, repo string, number int) (types.Issue, *types.ActionItemSet, error) {
	ctx = s.Log.WithContext(ctx)
	issue, err := s.Issues.FetchIssue(ctx, owner, repo, number)
	if err != nil {
		return types.Issue{}, nil, err
	}
	set, err := s.Extractor.Extract(s.Lexer.Tokenize([]byte(issue.Body)), issue)
	if err != nil {
		return issue, nil, err
	}
	return issue, set, nil
}

func (s *Syncer) record(ctx context.Context, cfg types.SyncConfig, r Report) {
	if s.Recorder == nil {
		return
	}
	run := types.SyncRun{
		RanAt:           time.Now(),
		Owner:           cfg.Owner,
		Repo:            cfg.Repo,
		SourceNumber:    r.Source.Number,
		SourceTitle:     r.Source.Title,
		AggregateNumber: r.Aggregate.Number,
		Outcome:         string(r.Outcome),
		ExtractionDate:  r.Items.ExtractionDate,
		Items:           r.Items.Raws(),
		DryRun:          cfg.DryRun && r.Outcome != aggregate.OutcomeUnchanged,
	}
	if _, err := s.Recorder.Record(ctx, run); err != nil {
		s.Log.Warn().Err(err).Msg("could not record run history")
	}
}
