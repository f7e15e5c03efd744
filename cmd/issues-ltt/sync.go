// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/issues-ltt/internal/actionitems"
	"github.com/pdiddy/issues-ltt/internal/github"
	"github.com/pdiddy/issues-ltt/internal/history"
	"github.com/pdiddy/issues-ltt/internal/markdown"
	"github.com/pdiddy/issues-ltt/internal/pipeline"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Copy an issue's action items into the aggregate issue",
	Long: `Sync fetches the source issue and the aggregate issue, extracts the list
that follows the action items heading, and writes it into the section of the
aggregate issue keyed by the source issue number. A missing section is
appended. A section whose date already matches is left alone.

Use --dry-run to print the new aggregate body without updating it.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().String("label", "", "label of the aggregate issue (default \"gh-issues-ltt\")")
	syncCmd.Flags().Bool("dry-run", false, "print the new aggregate body instead of updating the issue")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg := appConfig.Sync
	if label, _ := cmd.Flags().GetString("label"); label != "" {
		cfg.AggregateLabel = label
	}
	if dry, _ := cmd.Flags().GetBool("dry-run"); dry {
		cfg.DryRun = true
	}
	if err := pipeline.Validate(&cfg); err != nil {
		return err
	}

	syncer, cleanup, err := newSyncer(true)
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := syncer.Run(context.Background(), cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "issue #%d (%s): %s aggregate #%d\n",
		report.Source.Number, report.Source.Title, report.Outcome, report.Aggregate.Number)
	if cfg.DryRun && report.Aggregate.Body != "" {
		fmt.Fprintln(os.Stdout, report.Aggregate.Body)
	}
	return writeActionOutput("outcome", string(report.Outcome))
}

// newSyncer builds a Syncer from the resolved configuration. With
// withHistory set, runs are recorded when the history store opens.
func newSyncer(withHistory bool) (*pipeline.Syncer, func(), error) {
	ext, err := actionitems.NewExtractor(appConfig.Sync.HeadingPattern)
	if err != nil {
		return nil, nil, err
	}

	httpClient := &http.Client{Timeout: appConfig.GitHub.Timeout}
	syncer := &pipeline.Syncer{
		Issues:    github.NewClient(httpClient, appConfig.GitHub),
		Lexer:     markdown.NewGoldmarkLexer(),
		Extractor: ext,
		Log:       logger,
	}

	cleanup := func() {}
	if withHistory && appConfig.History.Dir != "" {
		store, err := history.Open(appConfig.History)
		if err != nil {
			logger.Warn().Err(err).Msg("run history disabled")
		} else {
			syncer.Recorder = store
			cleanup = func() { store.Close() }
		}
	}
	return syncer, cleanup, nil
}

// writeActionOutput appends key=value to the GitHub Actions step output
// file when running inside a workflow.
func writeActionOutput(key, value string) error {
	path := os.Getenv("GITHUB_OUTPUT")
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening GITHUB_OUTPUT: %w", err)
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "%s=%s\n", key, value)
	return err
}
