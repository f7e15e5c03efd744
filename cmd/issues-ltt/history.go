// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/issues-ltt/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded sync runs",
	Long: `History lists the runs recorded in the local history database, newest
first. Filter by --repo, --source, or --outcome. Use --export to write the
selected runs to export.yaml next to the database.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("source", 0, "filter by source issue number")
	historyCmd.Flags().String("outcome", "", "filter by outcome (unchanged, updated, appended)")
	historyCmd.Flags().Int("max-results", 20, "maximum number of runs")
	historyCmd.Flags().Bool("json", false, "output as JSON")
	historyCmd.Flags().Bool("export", false, "write the selected runs to export.yaml")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if appConfig.History.Dir == "" {
		return fmt.Errorf("history is disabled: set --history-dir")
	}
	store, err := history.Open(appConfig.History)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := history.QueryOptions{
		Owner: appConfig.Sync.Owner,
		Repo:  appConfig.Sync.Repo,
	}
	opts.SourceNumber, _ = cmd.Flags().GetInt("source")
	opts.Outcome, _ = cmd.Flags().GetString("outcome")
	opts.MaxResults, _ = cmd.Flags().GetInt("max-results")

	ctx := context.Background()
	if export, _ := cmd.Flags().GetBool("export"); export {
		path, err := store.ExportYAML(ctx, opts)
		if err != nil {
			return err
		}
		fmt.Printf("Exported to %s\n", path)
		return nil
	}

	runs, err := store.List(ctx, opts)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-5s  %-19s  %-20s  %-7s  %-9s  %-5s  %s\n",
		"ID", "Ran at", "Repository", "Source", "Outcome", "Items", "Extracted")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 95))
	for _, r := range runs {
		outcome := r.Outcome
		if r.DryRun {
			outcome += "*"
		}
		fmt.Fprintf(os.Stdout, "%-5d  %-19s  %-20s  #%-6d  %-9s  %-5d  %s\n",
			r.ID, r.RanAt.Local().Format("2006-01-02 15:04:05"), r.Owner+"/"+r.Repo,
			r.SourceNumber, outcome, len(r.Items), r.ExtractionDate)
	}
	return nil
}
