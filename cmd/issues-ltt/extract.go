// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/issues-ltt/internal/actionitems"
	"github.com/pdiddy/issues-ltt/internal/markdown"
	"github.com/pdiddy/issues-ltt/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Print the action items of an issue or a local markdown file",
	Long: `Extract finds the action items heading and prints the list that follows
it. By default the source issue is fetched from GitHub. Use --file to read a
local markdown file instead; no network access is needed.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("file", "", "read markdown from this file instead of fetching the issue")
	extractCmd.Flags().Bool("json", false, "output as JSON")
	extractCmd.Flags().Bool("yaml", false, "output as YAML")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")

	var set *types.ActionItemSet
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading %s: %w", file, err)
		}
		ext, err := actionitems.NewExtractor(appConfig.Sync.HeadingPattern)
		if err != nil {
			return err
		}
		source := types.Issue{Title: strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))}
		set, err = ext.Extract(markdown.NewGoldmarkLexer().Tokenize(data), source)
		if err != nil {
			return err
		}
	} else {
		cfg := appConfig.Sync
		if cfg.Owner == "" || cfg.Repo == "" || cfg.IssueNumber <= 0 {
			return fmt.Errorf("--owner, --repo, and --issue are required without --file")
		}
		syncer, cleanup, err := newSyncer(false)
		if err != nil {
			return err
		}
		defer cleanup()

		_, set, err = syncer.ExtractIssue(context.Background(), cfg.Owner, cfg.Repo, cfg.IssueNumber)
		if err != nil {
			return err
		}
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	yamlOutput, _ := cmd.Flags().GetBool("yaml")
	switch {
	case jsonOutput:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(set)
	case yamlOutput:
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(set); err != nil {
			return err
		}
		return enc.Close()
	}

	if set == nil {
		fmt.Println("No action items found.")
		return nil
	}
	fmt.Printf("%d action item(s), extracted %s\n", len(set.Items), set.ExtractionDate)
	for _, raw := range set.Raws() {
		fmt.Println(raw)
	}
	return nil
}
