// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the issues-ltt CLI, which copies the
// "Action Items" list of an issue into a per-issue section of an aggregate
// tracking issue.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/issues-ltt/internal/actionitems"
	"github.com/pdiddy/issues-ltt/internal/github"
	"github.com/pdiddy/issues-ltt/internal/logging"
	"github.com/pdiddy/issues-ltt/internal/pipeline"
	"github.com/pdiddy/issues-ltt/internal/secrets"
	"github.com/pdiddy/issues-ltt/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "issues-ltt/0.1"
	defaultHistory   = ".issues-ltt"
)

var (
	// appConfig is resolved from flags, environment, and config file before
	// any subcommand runs.
	appConfig types.Config

	logger    = zerolog.Nop()
	logCloser = func() {}
)

// rootCmd is the base command for the issues-ltt CLI.
var rootCmd = &cobra.Command{
	Use:   "issues-ltt",
	Short: "Sync issue action items into an aggregate tracking issue",
	Long: `issues-ltt collects the "Action Items" list of a GitHub issue and keeps a
copy of it in a section of an aggregate tracking issue: the first open issue
carrying the aggregate label. Each source issue owns one section, keyed by
its number. Re-running against an unchanged issue is a no-op.

The CLI also runs as a GitHub Actions step: inputs are read from the
INPUT_* environment variables and the token from GITHUB_TOKEN.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logCloser()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./issues-ltt.yaml or ~/.config/issues-ltt/config.yaml)")
	pf.String("owner", "", "repository owner")
	pf.String("repo", "", "repository name")
	pf.Int("issue", 0, "source issue number")
	pf.String("token", "", "personal access token or GITHUB_TOKEN")
	pf.String("heading-pattern", actionitems.DefaultHeadingPattern, "regular expression matching the action items heading")
	pf.String("log-level", "info", "log level (debug, info, warn, error, disabled)")
	pf.String("log-file", "", "append JSON logs to this file instead of stderr")
	pf.String("history-dir", defaultHistory, "directory for the run history database (empty disables history)")

	bindFlag("sync.owner", "owner")
	bindFlag("sync.repo", "repo")
	bindFlag("sync.issue_number", "issue")
	bindFlag("github.token", "token")
	bindFlag("sync.heading_pattern", "heading-pattern")
	bindFlag("log.level", "log-level")
	bindFlag("log.file", "log-file")
	bindFlag("history.dir", "history-dir")
}

func bindFlag(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("issues-ltt")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "issues-ltt"))
		}
	}

	viper.SetEnvPrefix("ISSUES_LTT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// GitHub Actions inputs and the workflow token.
	_ = viper.BindEnv("sync.owner", "ISSUES_LTT_SYNC_OWNER", "INPUT_OWNER")
	_ = viper.BindEnv("sync.repo", "ISSUES_LTT_SYNC_REPO", "INPUT_REPO")
	_ = viper.BindEnv("sync.issue_number", "ISSUES_LTT_SYNC_ISSUE_NUMBER", "INPUT_ISSUENUMBER", "INPUT_ISSUE-NUMBER")
	_ = viper.BindEnv("sync.aggregate_label", "ISSUES_LTT_SYNC_AGGREGATE_LABEL", "INPUT_AGGREGATEISSUELABEL")
	_ = viper.BindEnv("github.token", "ISSUES_LTT_GITHUB_TOKEN", "GITHUB_TOKEN", "INPUT_TOKEN")

	viper.SetDefault("github.endpoint", github.DefaultEndpoint)
	viper.SetDefault("github.timeout", defaultTimeout)
	viper.SetDefault("github.user_agent", defaultUserAgent)
	viper.SetDefault("github.max_retries", 5)
	viper.SetDefault("sync.aggregate_label", pipeline.DefaultAggregateLabel)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setup resolves the configuration, builds the logger, and falls back to
// the .secrets/ directory for the GitHub token.
func setup(cmd *cobra.Command, args []string) error {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("reading configuration: %w", err)
	}

	l, closer, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	logger, logCloser = l, closer

	s, err := secrets.Load(".secrets/", logger)
	if err != nil {
		return err
	}
	if len(s) > 0 {
		logger.Debug().Strs("keys", s.Keys()).Msg("loaded secrets")
	}
	if cfg.GitHub.Token == "" {
		cfg.GitHub.Token = s.Get(secrets.GitHubToken)
	}

	appConfig = cfg
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
