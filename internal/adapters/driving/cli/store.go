package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/clipvault/internal/core/domain"
)

var (
	statsJSON   bool
	pruneTarget string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store and index statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Shrink the store by deleting the oldest entries",
	Long: `Deletes the oldest entries until the store fits comfortably under
the target size. The target comes from --target, or from prune.target_mb
in the config file. Pruned entries are removed from the index as well.`,
	Args: cobra.NoArgs,
	RunE: runPrune,
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the search index from the store",
	Long: `Drops the trigram index and re-indexes every stored entry. The index
is derived state, so this is always safe; it is also done automatically
when the index is missing or out of step with the store.`,
	Args: cobra.NoArgs,
	RunE: runRebuild,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output statistics as JSON")
	pruneCmd.Flags().StringVar(&pruneTarget, "target", "", "target store size, e.g. 500MB")

	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(rebuildCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if storeService == nil {
		return errors.New("store service not configured")
	}

	stats, err := storeService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read statistics: %w", err)
	}

	if statsJSON {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal statistics: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Items:   %d\n", stats.Items)
	for _, k := range domain.AllContentKinds() {
		if n := stats.ByKind[k]; n > 0 {
			cmd.Printf("  %-8s %d\n", k.String()+":", n)
		}
	}
	cmd.Printf("Store:   %s\n", humanize.Bytes(uint64(stats.StoreBytes)))
	cmd.Printf("Index:   %d documents, %s\n", stats.IndexedDocuments, humanize.Bytes(uint64(stats.IndexBytes)))
	if !stats.Oldest.IsZero() {
		cmd.Printf("Oldest:  %s\n", humanize.Time(stats.Oldest))
	}
	return nil
}

func runPrune(cmd *cobra.Command, _ []string) error {
	if storeService == nil {
		return errors.New("store service not configured")
	}

	var target int64
	if pruneTarget != "" {
		bytes, err := humanize.ParseBytes(pruneTarget)
		if err != nil {
			return fmt.Errorf("invalid prune target %q: %w", pruneTarget, err)
		}
		target = int64(bytes)
	} else if appConfig != nil {
		target = appConfig.Prune.TargetBytes()
	}
	if target <= 0 {
		return errors.New("no prune target: pass --target or set prune.target_mb in the config")
	}

	n, err := storeService.Prune(cmd.Context(), target)
	if err != nil {
		return fmt.Errorf("failed to prune store: %w", err)
	}
	if n == 0 {
		cmd.Println("Store already below target; nothing pruned.")
		return nil
	}

	if stats, err := storeService.Stats(cmd.Context()); err == nil {
		cmd.Printf("Pruned %d entries; store is now %s.\n", n, humanize.Bytes(uint64(stats.StoreBytes)))
	} else {
		cmd.Printf("Pruned %d entries.\n", n)
	}
	return nil
}

func runRebuild(cmd *cobra.Command, _ []string) error {
	if storeService == nil {
		return errors.New("store service not configured")
	}

	n, err := storeService.RebuildIndex(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to rebuild index: %w", err)
	}
	cmd.Printf("Index rebuilt with %d documents.\n", n)
	return nil
}
