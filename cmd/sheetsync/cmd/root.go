// Package cmd implements the sheetsync command tree.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dotshop/sheetsync/internal/config"
	"github.com/dotshop/sheetsync/pkg/logging"
)

var (
	configFile string
	verbose    bool
	quiet      bool

	cfg *config.Config

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sheetsync",
	Short: "Sync scraped products to Google Sheets",
	Long: `Sheetsync reconciles batches of scraped product records against a
Google Sheets product catalog.

Each run fetches the current sheet contents, matches incoming products by
their platform and product ID, appends the new ones, rewrites the changed
ones, and leaves everything else alone. Rows that exist in the sheet but
not in the batch are never deleted.`,
	PersistentPreRunE: setupCommand,
}

// Execute runs the root command with signal-aware cancellation.
func Execute(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date
	rootCmd.Version = version

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.sheetsync.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors")

	rootCmd.PersistentFlags().String("spreadsheet-id", "", "target spreadsheet ID")
	rootCmd.PersistentFlags().String("sheet", "", "sheet (tab) name")
	rootCmd.PersistentFlags().String("credentials", "", "service account credentials file")

	for flag, key := range map[string]string{
		"config":         "config",
		"verbose":        "verbose",
		"quiet":          "quiet",
		"spreadsheet-id": "spreadsheet_id",
		"sheet":          "sheet_name",
		"credentials":    "credentials_file",
	} {
		if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(fmt.Sprintf("Failed to bind %s flag: %v", flag, err))
		}
	}
}

// setupCommand loads configuration and configures logging before any
// command runs.
func setupCommand(_ *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.LoadConfig()
	if err != nil {
		return err
	}

	switch {
	case verbose:
		logging.SetLevel("debug")
	case quiet:
		logging.SetLevel("warn")
	default:
		logging.SetLevel(cfg.LogLevel)
	}

	if verbose && cfg.ConfigFile != "" {
		fmt.Fprintln(os.Stderr, "Using config file:", cfg.ConfigFile)
	}
	return nil
}
