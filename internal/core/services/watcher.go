package services

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/clipvault/internal/core/ports/driven"
	"github.com/custodia-labs/clipvault/internal/core/ports/driving"
	"github.com/custodia-labs/clipvault/internal/logger"
)

// Ensure WatchService implements the interface.
var _ driving.WatchService = (*WatchService)(nil)

// watchPollInterval is how often the clipboard is sampled.
const watchPollInterval = 500 * time.Millisecond

// WatchService polls the clipboard and stores each new capture
// through the orchestrator.
type WatchService struct {
	store    driving.StoreService
	clip     driven.Clipboard
	limiter  *rate.Limiter
	interval time.Duration
}

// NewWatchService creates a watcher sampling every interval, or the
// default when interval is zero. The limiter caps save bursts when an
// application rewrites the clipboard in a tight loop.
func NewWatchService(store driving.StoreService, clip driven.Clipboard, interval time.Duration) *WatchService {
	if interval <= 0 {
		interval = watchPollInterval
	}
	return &WatchService{
		store:    store,
		clip:     clip,
		limiter:  rate.NewLimiter(rate.Every(time.Second), 5),
		interval: interval,
	}
}

// Run polls until ctx is cancelled. Returns nil on cancellation.
func (w *WatchService) Run(ctx context.Context) error {
	logger.Info("watching clipboard every %s", w.interval)

	// Seed with the current clipboard so only new captures are saved.
	last := ""
	if text, err := w.clip.ReadText(); err == nil {
		last = text
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		text, err := w.clip.ReadText()
		if err != nil {
			logger.Warn("clipboard read failed: %v", err)
			continue
		}
		if text == "" || text == last {
			continue
		}
		last = text

		if !w.limiter.Allow() {
			logger.Debug("capture rate limited, sampling skipped")
			continue
		}

		id, err := w.store.SaveText(ctx, text, "", "")
		if err != nil {
			logger.Warn("saving capture failed: %v", err)
			continue
		}
		if id == 0 {
			logger.Debug("duplicate capture, existing item refreshed")
		} else {
			logger.Info("captured item %d", id)
		}
	}
}
