// Package cli implements the clipvault command line interface.
//
// Commands drive the store façade through package-level service
// variables. The production stack is opened lazily once flags are
// parsed; tests inject mocks through the Set functions instead.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clipvault/internal/adapters/driven/clipboard"
	"github.com/custodia-labs/clipvault/internal/adapters/driven/config/file"
	"github.com/custodia-labs/clipvault/internal/adapters/driven/index/bleve"
	"github.com/custodia-labs/clipvault/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/clipvault/internal/core/ports/driving"
	"github.com/custodia-labs/clipvault/internal/core/services"
	"github.com/custodia-labs/clipvault/internal/logger"
)

// version is reported by the version command, stamped at build time.
var version = "dev"

// Services driven by the commands. Wired by initServices after flag
// parsing, or injected with the Set functions.
var (
	storeService driving.StoreService
	watchService driving.WatchService
	appConfig    *file.Config

	// ownedStore is set when initServices opened the stack itself and
	// closeServices must release it after the command finishes.
	ownedStore driving.StoreService
)

// autoOpen lets Execute wire the production stack lazily once flags
// are parsed. Tests drive rootCmd directly with injected services and
// never trigger it.
var autoOpen bool

var (
	flagVerbose bool
	flagConfig  string
	flagDataDir string
)

var rootCmd = &cobra.Command{
	Use:   "clipvault",
	Short: "Searchable clipboard history",
	Long: `Clipvault keeps a searchable history of everything you copy.

Captured entries are classified (text, links, colors, images, files),
stored in a local SQLite database and indexed for trigram search with
typo tolerance. Nothing leaves your machine.`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  initServices,
	PersistentPostRunE: closeServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "print pipeline decisions to stderr")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config directory (default ~/.clipvault)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "where store and index live (default ~/.clipvault)")
}

// Execute runs the CLI until the command finishes or ctx is cancelled.
func Execute(ctx context.Context) error {
	autoOpen = true
	return rootCmd.ExecuteContext(ctx)
}

// SetVersion overrides the reported version, normally via ldflags.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetStoreService injects the store façade, bypassing initServices.
func SetStoreService(s driving.StoreService) {
	storeService = s
}

// SetWatchService injects the clipboard watcher.
func SetWatchService(w driving.WatchService) {
	watchService = w
}

// SetConfig injects a loaded configuration.
func SetConfig(c *file.Config) {
	appConfig = c
}

// initServices opens the store, index and clipboard stack unless a
// service was already injected. Commands that never touch the store
// skip the open entirely.
func initServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(flagVerbose)

	if !autoOpen || storeService != nil {
		return nil
	}
	switch cmd.Name() {
	case "version", "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return nil
	}

	cfg, err := file.Load(flagConfig)
	if err != nil {
		return err
	}
	dataDir := flagDataDir
	if dataDir == "" {
		dataDir = cfg.DataDir
	}
	tuning := cfg.Search.Tuning()

	items, err := sqlite.NewItemStore(dataDir)
	if err != nil {
		return fmt.Errorf("opening item store: %w", err)
	}
	index, err := bleve.NewTrigramIndex(dataDir, tuning)
	if err != nil {
		_ = items.Close()
		return fmt.Errorf("opening trigram index: %w", err)
	}

	clip := clipboard.NewSystem()
	svc := services.NewStoreService(items, index, clip, tuning)

	// The index is derived state; reconcile it with the store before
	// the first query.
	if n, err := svc.EnsureIndex(cmd.Context()); err != nil {
		logger.Warn("index reconciliation failed: %v", err)
	} else if n > 0 {
		logger.Info("index rebuilt with %d documents", n)
	}

	storeService = svc
	watchService = services.NewWatchService(svc, clip, cfg.Watch.Interval())
	appConfig = cfg
	ownedStore = svc
	return nil
}

// closeServices releases whatever initServices opened.
func closeServices(*cobra.Command, []string) error {
	if ownedStore == nil {
		return nil
	}
	err := ownedStore.Close()
	ownedStore = nil
	storeService = nil
	watchService = nil
	return err
}
