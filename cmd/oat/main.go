// Package main provides the oat CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/oat-cli/oat/internal/config"
	"github.com/oat-cli/oat/internal/openalex"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// verbose lowers the log level to debug
var verbose bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		// This ensures Cobra errors (like missing required flags) are visible
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "oat",
	Short: "OpenAlex tool for exporting scholarly works",
	Long: `oat queries the OpenAlex scholarly catalog and exports works as
LLM-ready JSON documents.

Core features:
  - Work search by free text, author names, author IDs, or ORCIDs
  - Abstract reconstruction from inverted indexes
  - Faculty roster ingestion (CSV compensation reports, YAML, name lists)
  - Best-effort expansion of abbreviated names via web search
  - Institution affiliation allow-lists for scoping author searches

All commands output JSON by default for downstream ingestion.
Use --human for readable output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Load .env if present (for OPENALEX_EMAIL and TAVILY_API_KEY)
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log progress detail to stderr")
	rootCmd.Version = Version
}

// newLogger builds the stderr console logger shared by all commands.
// Warnings (retries, degraded name lookups) always show; --verbose adds
// per-page and per-batch progress.
func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(out).With().Timestamp().Logger().Level(level)
}

// commandContext returns a context cancelled on SIGINT/SIGTERM so an abort
// during a retry sleep unwinds promptly instead of finishing the wait.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// mustLoadConfig loads the user configuration, exits on error. A missing
// file is not an error; a corrupt one is.
func mustLoadConfig() config.Config {
	cfg, err := config.Load(config.Path())
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// newSearchClient builds the OpenAlex client for a command invocation.
// Contact email precedence: --mailto flag, then config, then the
// OPENALEX_EMAIL environment default inside NewClient.
func newSearchClient(cfg config.Config, mailto string, log zerolog.Logger) *openalex.Client {
	opts := []openalex.ClientOption{openalex.WithLogger(log)}
	switch {
	case mailto != "":
		opts = append(opts, openalex.WithEmail(mailto))
	case cfg.Email != "":
		opts = append(opts, openalex.WithEmail(cfg.Email))
	}
	return openalex.NewClient(opts...)
}

// tavilyKey returns the Tavily API key, config first then environment.
func tavilyKey(cfg config.Config) string {
	if cfg.TavilyAPIKey != "" {
		return cfg.TavilyAPIKey
	}
	return os.Getenv("TAVILY_API_KEY")
}
