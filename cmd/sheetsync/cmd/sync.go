package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/dotshop/sheetsync"
	"github.com/dotshop/sheetsync/internal/ratelimit"
	"github.com/dotshop/sheetsync/internal/sheets"
	"github.com/dotshop/sheetsync/pkg/constants"
	"github.com/dotshop/sheetsync/pkg/errors"
	"github.com/dotshop/sheetsync/pkg/logging"
	"github.com/dotshop/sheetsync/pkg/record"
	"github.com/dotshop/sheetsync/pkg/sync"
	"github.com/dotshop/sheetsync/pkg/tables"
)

var (
	syncInput         string
	syncMode          string
	syncDryRun        bool
	syncMappingFile   string
	syncEnsureHeaders bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile a product batch against the sheet",
	Long: `Sync reads a JSON file of scraped products and reconciles it against
the configured sheet.

The input is either a flat JSON array of product objects, or an object
keyed by platform name with an array of products per platform. Each
product needs at least a platform and a product_id; records missing
either are skipped and reported.`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().StringVarP(&syncInput, "input", "i", "", "products JSON file (required)")
	syncCmd.Flags().StringVarP(&syncMode, "mode", "m", "", "sync mode: update, append, or replace")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "compute the plan without writing")
	syncCmd.Flags().StringVar(&syncMappingFile, "mapping", "", "YAML field mapping file")
	syncCmd.Flags().BoolVar(&syncEnsureHeaders, "ensure-headers", false, "write and format the header row first")

	_ = syncCmd.MarkFlagRequired("input")
}

func runSync(cobraCmd *cobra.Command, _ []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	modeStr := syncMode
	if modeStr == "" {
		modeStr = cfg.Mode
	}
	mode, err := sync.ParseMode(modeStr)
	if err != nil {
		return err
	}

	raws, err := loadProducts(syncInput)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cobraCmd.Context(), constants.SyncTimeout)
	defer cancel()

	client, err := sheets.New(ctx, cfg.CredentialsFile)
	if err != nil {
		return err
	}
	ref := tables.Ref{SpreadsheetID: cfg.SpreadsheetID, Sheet: cfg.SheetName}

	if syncEnsureHeaders {
		if err := client.EnsureHeaders(ctx, ref); err != nil {
			return err
		}
	}

	syncer, err := newSyncer(client, ref)
	if err != nil {
		return err
	}

	logging.Info().
		Int("products", len(raws)).
		Str("mode", mode.String()).
		Bool("dry_run", syncDryRun).
		Msg("Starting sync")

	report, err := syncer.Sync(ctx, raws,
		sync.WithMode(mode),
		sync.WithDryRun(syncDryRun),
	)
	if err != nil {
		return err
	}

	fmt.Println(report.Summary())
	for _, f := range report.Failures {
		fmt.Fprintf(os.Stderr, "failed: %s: %v\n", f.Key, f.Err)
	}
	if report.HasFailures() {
		return errors.New("sync finished with failures")
	}
	return nil
}

// newSyncer builds the Syncer from the loaded configuration.
func newSyncer(client tables.Client, ref tables.Ref) (*sheetsync.Syncer, error) {
	opts := []sheetsync.Option{
		sheetsync.WithSyncOptions(
			sync.WithMaxRetries(cfg.MaxRetries),
			sync.WithBackoff(cfg.RetryBackoff, constants.MaxRetryBackoff),
			sync.WithBatchRows(cfg.BatchRows),
			sync.WithWorkers(cfg.Workers),
			sync.WithCallTimeout(cfg.CallTimeout),
			sync.WithLimiter(ratelimit.New(cfg.RateLimit, time.Minute)),
		),
	}

	mappingFile := syncMappingFile
	if mappingFile == "" {
		mappingFile = cfg.MappingFile
	}
	if mappingFile != "" {
		mapping, err := record.LoadMapping(mappingFile, record.DefaultSchema())
		if err != nil {
			return nil, err
		}
		opts = append(opts, sheetsync.WithMapping(mapping))
	}

	return sheetsync.New(client, ref, opts...)
}

// loadProducts reads a products JSON file. Both shapes the scrapers emit are
// accepted: a flat array, or an object of per-platform arrays.
func loadProducts(path string) ([]record.Raw, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read products", path, err)
	}

	var flat []map[string]any
	if err := json.Unmarshal(data, &flat); err == nil {
		return rawsFromList(flat), nil
	}

	var byPlatform map[string][]map[string]any
	if err := json.Unmarshal(data, &byPlatform); err != nil {
		return nil, errors.WrapParse("json", path, err)
	}

	platforms := make([]string, 0, len(byPlatform))
	for platform := range byPlatform {
		platforms = append(platforms, platform)
	}
	sort.Strings(platforms)

	var raws []record.Raw
	for _, platform := range platforms {
		for _, p := range byPlatform[platform] {
			raw := record.RawFromAny(p)
			if raw["platform"] == "" {
				raw["platform"] = platform
			}
			raws = append(raws, raw)
		}
	}
	return raws, nil
}

func rawsFromList(products []map[string]any) []record.Raw {
	raws := make([]record.Raw, len(products))
	for i, p := range products {
		raws[i] = record.RawFromAny(p)
	}
	return raws
}
