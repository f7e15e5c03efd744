// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/issues-ltt/internal/github"
	"github.com/pdiddy/issues-ltt/internal/pipeline"
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Print the details of an issue as JSON",
	Long: `Issue fetches the issue named by --owner, --repo, and --issue and prints
its details, body included, as JSON. With --aggregate it prints the aggregate
issue selected by the label instead.`,
	RunE: runIssue,
}

func init() {
	issueCmd.Flags().Bool("aggregate", false, "print the aggregate issue")
	issueCmd.Flags().String("label", "", "label of the aggregate issue (default \"gh-issues-ltt\")")
	rootCmd.AddCommand(issueCmd)
}

func runIssue(cmd *cobra.Command, args []string) error {
	cfg := appConfig.Sync
	if label, _ := cmd.Flags().GetString("label"); label != "" {
		cfg.AggregateLabel = label
	}
	if cfg.Owner == "" || cfg.Repo == "" {
		return fmt.Errorf("--owner and --repo are required")
	}

	client := github.NewClient(&http.Client{Timeout: appConfig.GitHub.Timeout}, appConfig.GitHub)
	ctx := logger.WithContext(context.Background())

	aggregate, _ := cmd.Flags().GetBool("aggregate")
	var err error
	var out any
	if aggregate {
		label := cfg.AggregateLabel
		if label == "" {
			label = pipeline.DefaultAggregateLabel
		}
		out, err = client.FetchAggregateIssue(ctx, cfg.Owner, cfg.Repo, label)
	} else {
		if cfg.IssueNumber <= 0 {
			return fmt.Errorf("--issue is required")
		}
		out, err = client.FetchIssue(ctx, cfg.Owner, cfg.Repo, cfg.IssueNumber)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
