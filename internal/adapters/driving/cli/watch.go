package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/clipvault/internal/adapters/driven/clipboard"
	"github.com/custodia-labs/clipvault/internal/core/domain"
	"github.com/custodia-labs/clipvault/internal/core/ports/driving"
	"github.com/custodia-labs/clipvault/internal/core/services"
	"github.com/custodia-labs/clipvault/internal/logger"
)

var (
	watchInterval time.Duration
	watchInbox    string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the clipboard and capture everything copied",
	Long: `Polls the system clipboard and saves every new entry until
interrupted. Duplicate content refreshes the existing entry instead of
creating a new one, and capture bursts are rate limited.

With --inbox (or watch.inbox_dir in the config), files dropped into
that directory are captured as file entries too.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "clipboard poll interval (0 = config or 500ms)")
	watchCmd.Flags().StringVar(&watchInbox, "inbox", "", "directory to watch for dropped files")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if storeService == nil {
		return errors.New("store service not configured")
	}

	watcher := watchService
	if watcher == nil || watchInterval > 0 {
		watcher = services.NewWatchService(storeService, clipboard.NewSystem(), watchInterval)
	}

	inbox := watchInbox
	if inbox == "" && appConfig != nil {
		inbox = appConfig.Watch.InboxDir
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error { return watcher.Run(ctx) })
	if inbox != "" {
		g.Go(func() error { return watchInboxDir(ctx, cmd, inbox) })
		cmd.Printf("Watching the clipboard and %s. Press Ctrl-C to stop.\n", inbox)
	} else {
		cmd.Println("Watching the clipboard. Press Ctrl-C to stop.")
	}
	return g.Wait()
}

// watchInboxDir captures files dropped into dir until ctx is
// cancelled. Each new file becomes a single-file entry; dotfiles and
// subdirectories are ignored.
func watchInboxDir(ctx context.Context, cmd *cobra.Command, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating inbox directory: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating inbox watcher: %w", err)
	}
	defer fsw.Close() //nolint:errcheck
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watching inbox %s: %w", dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) {
				continue
			}
			ingestInboxFile(ctx, cmd, ev.Name)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("inbox watcher error: %v", err)
		}
	}
}

// ingestInboxFile saves one dropped file. Failures only warn; a bad
// drop must not stop the watch loop.
func ingestInboxFile(ctx context.Context, cmd *cobra.Command, path string) {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	att, err := fileAttachment(path, true)
	if err != nil {
		logger.Warn("reading inbox file %s: %v", path, err)
		return
	}
	id, err := storeService.SaveFiles(ctx, driving.SaveFilesRequest{
		Files: []domain.FileAttachment{att},
	})
	if err != nil {
		logger.Warn("saving inbox file %s: %v", path, err)
		return
	}
	if id == 0 {
		logger.Debug("inbox file %s already in history", path)
		return
	}
	cmd.Printf("Captured %s as item %d.\n", filepath.Base(path), id)
}
