package file

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/clipvault/internal/core/domain"
)

// Config is the on-disk configuration. Every field is optional; the
// zero value of a knob means its built-in default. Search tunables
// map onto domain.Tuning so the orchestrator never sees this type.
type Config struct {
	// DataDir overrides where the store and index live.
	// Empty means ~/.clipvault/data.
	DataDir string `toml:"data_dir,omitempty"`

	Watch  WatchConfig  `toml:"watch,omitempty"`
	Prune  PruneConfig  `toml:"prune,omitempty"`
	Search SearchConfig `toml:"search,omitempty"`

	path string
}

// WatchConfig configures the clipboard watcher.
type WatchConfig struct {
	// PollIntervalMS is the clipboard sampling period in milliseconds.
	PollIntervalMS int `toml:"poll_interval_ms,omitempty"`

	// InboxDir, when set, is watched for dropped files; each new file
	// is ingested as a file item.
	InboxDir string `toml:"inbox_dir,omitempty"`
}

// Interval returns the poll interval, zero when unset so the watcher
// applies its own default.
func (w WatchConfig) Interval() time.Duration {
	if w.PollIntervalMS <= 0 {
		return 0
	}
	return time.Duration(w.PollIntervalMS) * time.Millisecond
}

// PruneConfig configures history pruning.
type PruneConfig struct {
	// TargetMB is the store size ceiling enforced by the prune
	// command when no explicit size is given.
	TargetMB int64 `toml:"target_mb,omitempty"`
}

// TargetBytes returns the prune target in bytes, zero when unset.
func (p PruneConfig) TargetBytes() int64 {
	return p.TargetMB << 20
}

// SearchConfig overrides individual search tunables. Unset knobs keep
// their defaults.
type SearchConfig struct {
	RecallLimit          int     `toml:"recall_limit,omitempty"`
	MaxResults           int     `toml:"max_results,omitempty"`
	ShortQueryScanLimit  int     `toml:"short_query_scan_limit,omitempty"`
	RecencyBoostMax      float64 `toml:"recency_boost_max,omitempty"`
	RecencyHalfLifeHours int     `toml:"recency_half_life_hours,omitempty"`
	PrefixBoost          float64 `toml:"prefix_boost,omitempty"`
	TrailingSpaceBoost   float64 `toml:"trailing_space_boost,omitempty"`
	DensityThreshold     float64 `toml:"density_threshold,omitempty"`
	SnippetBudget        int     `toml:"snippet_budget,omitempty"`
	ScoringWorkers       int     `toml:"scoring_workers,omitempty"`
}

// Tuning maps the section onto domain tuning, filling unset knobs
// from the defaults.
func (c SearchConfig) Tuning() domain.Tuning {
	return domain.Tuning{
		RecallLimit:         c.RecallLimit,
		MaxResults:          c.MaxResults,
		ShortQueryScanLimit: c.ShortQueryScanLimit,
		RecencyBoostMax:     c.RecencyBoostMax,
		RecencyHalfLife:     time.Duration(c.RecencyHalfLifeHours) * time.Hour,
		PrefixBoost:         c.PrefixBoost,
		TrailingSpaceBoost:  c.TrailingSpaceBoost,
		DensityThreshold:    c.DensityThreshold,
		SnippetBudget:       c.SnippetBudget,
		ScoringWorkers:      c.ScoringWorkers,
	}.WithDefaults()
}

// Load reads configDir/config.toml. A missing file is not an error;
// it yields the all-defaults configuration. An empty configDir means
// ~/.clipvault.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		configDir = filepath.Join(home, ".clipvault")
	}

	cfg := &Config{path: filepath.Join(configDir, "config.toml")}

	data, err := os.ReadFile(cfg.path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration with restricted permissions.
func (c *Config) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Path returns the configuration file path.
func (c *Config) Path() string {
	return c.path
}
