// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/issues-ltt/internal/actionitems"
	"github.com/pdiddy/issues-ltt/internal/aggregate"
	"github.com/pdiddy/issues-ltt/internal/github"
	"github.com/pdiddy/issues-ltt/internal/markdown"
	"github.com/pdiddy/issues-ltt/pkg/types"
)

// fakeIssues serves issues from memory and records updates.
type fakeIssues struct {
	mu        sync.Mutex
	issues    map[int]types.Issue
	aggregate *types.Issue
	updates   []string
	updateErr error
}

func (f *fakeIssues) FetchIssue(_ context.Context, _, _ string, number int) (types.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	issue, ok := f.issues[number]
	if !ok {
		return types.Issue{}, github.ErrIssueNotFound
	}
	return issue, nil
}

func (f *fakeIssues) FetchAggregateIssue(_ context.Context, _, _, _ string) (types.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.aggregate == nil {
		return types.Issue{}, github.ErrAggregateNotFound
	}
	return *f.aggregate, nil
}

func (f *fakeIssues) UpdateIssueBody(_ context.Context, id string, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, body)
	f.aggregate.Body = body
	return nil
}

type fakeRecorder struct {
	runs []types.SyncRun
	err  error
}

func (r *fakeRecorder) Record(_ context.Context, run types.SyncRun) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.runs = append(r.runs, run)
	return int64(len(r.runs)), nil
}

var clock = time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC)

func newSyncer(t *testing.T, issues *fakeIssues, rec Recorder) *Syncer {
	t.Helper()
	ext, err := actionitems.NewExtractor("")
	require.NoError(t, err)
	ext.Now = func() time.Time { return clock }
	return &Syncer{
		Issues:    issues,
		Lexer:     markdown.NewGoldmarkLexer(),
		Extractor: ext,
		Recorder:  rec,
		Log:       zerolog.Nop(),
	}
}

func cfgFor(number int) types.SyncConfig {
	return types.SyncConfig{Owner: "acme", Repo: "widgets", IssueNumber: number}
}

func newFake() *fakeIssues {
	return &fakeIssues{
		issues: map[int]types.Issue{
			12: {ID: "I_12", Number: 12, Title: "Retro", Body: "Notes\n\n## Action Items\n- [ ] a\n- [ ] b\n"},
			13: {ID: "I_13", Number: 13, Title: "No items", Body: "Nothing to do.\n"},
		},
		aggregate: &types.Issue{ID: "I_agg", Number: 1, Title: "Tracker", Body: "# Tracker\n"},
	}
}

func TestRun_AppendsThenUnchanged(t *testing.T) {
	issues := newFake()
	rec := &fakeRecorder{}
	s := newSyncer(t, issues, rec)

	report, err := s.Run(context.Background(), cfgFor(12))
	require.NoError(t, err)
	assert.Equal(t, aggregate.OutcomeAppended, report.Outcome)
	assert.True(t, report.Persisted)
	require.Len(t, issues.updates, 1)
	assert.Equal(t, "# Tracker\n\n\n#### Retro - #12 - 2024-02-01 09:30:00\n- [ ] a\n- [ ] b\n", issues.updates[0])

	// Same extraction date: nothing to persist.
	report, err = s.Run(context.Background(), cfgFor(12))
	require.NoError(t, err)
	assert.Equal(t, aggregate.OutcomeUnchanged, report.Outcome)
	assert.False(t, report.Persisted)
	assert.Len(t, issues.updates, 1)

	require.Len(t, rec.runs, 2)
	assert.Equal(t, "appended", rec.runs[0].Outcome)
	assert.Equal(t, "unchanged", rec.runs[1].Outcome)
	assert.Equal(t, []string{"- [ ] a", "- [ ] b"}, rec.runs[0].Items)
	assert.Equal(t, 1, rec.runs[0].AggregateNumber)
}

func TestRun_UpdatesExistingSection(t *testing.T) {
	issues := newFake()
	issues.aggregate.Body = "# Tracker\n\n#### Retro - #12 - 2024-01-01 00:00:00\n- old\n\n#### Other - #123 - 2024-01-01 00:00:00\n- keep\n"
	s := newSyncer(t, issues, nil)

	report, err := s.Run(context.Background(), cfgFor(12))
	require.NoError(t, err)
	assert.Equal(t, aggregate.OutcomeUpdated, report.Outcome)
	require.Len(t, issues.updates, 1)
	assert.Equal(t,
		"# Tracker\n\n#### Retro - #12 - 2024-02-01 09:30:00\n- [ ] a\n- [ ] b\n\n#### Other - #123 - 2024-01-01 00:00:00\n- keep\n",
		issues.updates[0])
}

func TestRun_NoActionItems(t *testing.T) {
	issues := newFake()
	s := newSyncer(t, issues, nil)

	_, err := s.Run(context.Background(), cfgFor(13))
	assert.True(t, errors.Is(err, aggregate.ErrNoActionItems), "got %v", err)
	assert.Empty(t, issues.updates)
	assert.Equal(t, "# Tracker\n", issues.aggregate.Body)
}

func TestRun_AggregateMissing(t *testing.T) {
	issues := newFake()
	issues.aggregate = nil
	s := newSyncer(t, issues, nil)

	_, err := s.Run(context.Background(), cfgFor(12))
	assert.True(t, errors.Is(err, github.ErrAggregateNotFound), "got %v", err)
}

func TestRun_SourceMissing(t *testing.T) {
	s := newSyncer(t, newFake(), nil)
	_, err := s.Run(context.Background(), cfgFor(99))
	assert.True(t, errors.Is(err, github.ErrIssueNotFound), "got %v", err)
}

func TestRun_StructuralError(t *testing.T) {
	issues := newFake()
	issues.issues[12] = types.Issue{Number: 12, Title: "Broken", Body: "## Action Items\n\nTBD\n"}
	s := newSyncer(t, issues, nil)

	_, err := s.Run(context.Background(), cfgFor(12))
	assert.True(t, errors.Is(err, markdown.ErrStructure), "got %v", err)
	assert.Empty(t, issues.updates)
}

func TestRun_DryRun(t *testing.T) {
	issues := newFake()
	rec := &fakeRecorder{}
	s := newSyncer(t, issues, rec)

	cfg := cfgFor(12)
	cfg.DryRun = true
	report, err := s.Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, aggregate.OutcomeAppended, report.Outcome)
	assert.False(t, report.Persisted)
	assert.Empty(t, issues.updates)
	assert.True(t, strings.HasSuffix(report.Aggregate.Body, "- [ ] b\n"))
	require.Len(t, rec.runs, 1)
	assert.True(t, rec.runs[0].DryRun)
}

func TestRun_UpdateFailure(t *testing.T) {
	issues := newFake()
	issues.updateErr = &github.APIError{StatusCode: 502}
	rec := &fakeRecorder{}
	s := newSyncer(t, issues, rec)

	_, err := s.Run(context.Background(), cfgFor(12))
	var apiErr *github.APIError
	assert.True(t, errors.As(err, &apiErr))
	assert.Empty(t, rec.runs)
}

func TestRun_RecorderFailureIsNotFatal(t *testing.T) {
	s := newSyncer(t, newFake(), &fakeRecorder{err: errors.New("disk full")})
	_, err := s.Run(context.Background(), cfgFor(12))
	assert.NoError(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     types.SyncConfig
		wantErr bool
	}{
		{"valid", types.SyncConfig{Owner: "a", Repo: "b", IssueNumber: 1}, false},
		{"missing owner", types.SyncConfig{Repo: "b", IssueNumber: 1}, true},
		{"missing repo", types.SyncConfig{Owner: "a", IssueNumber: 1}, true},
		{"zero issue", types.SyncConfig{Owner: "a", Repo: "b"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			err := Validate(&cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, DefaultAggregateLabel, cfg.AggregateLabel)
		})
	}
}

func TestExtractIssue(t *testing.T) {
	s := newSyncer(t, newFake(), nil)

	issue, set, err := s.ExtractIssue(context.Background(), "acme", "widgets", 12)
	require.NoError(t, err)
	assert.Equal(t, "Retro", issue.Title)
	require.NotNil(t, set)
	assert.Equal(t, "2024-02-01 09:30:00", set.ExtractionDate)
	assert.Equal(t, []string{"- [ ] a", "- [ ] b"}, set.Raws())

	_, set, err = s.ExtractIssue(context.Background(), "acme", "widgets", 13)
	require.NoError(t, err)
	assert.Nil(t, set)
}
