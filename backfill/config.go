// Package backfill drives batch enrichment runs over the local venue set:
// one scraping session per record, strictly sequential, rate-limited with
// jitter, with per-record failure isolation and aggregate counts.
package backfill

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Mode selects the candidate record set for a run.
type Mode int

const (
	// ModeIncremental processes only records missing the target data.
	ModeIncremental Mode = iota
	// ModeForceAll re-processes every eligible record, overwriting.
	ModeForceAll
)

func (m Mode) String() string {
	if m == ModeForceAll {
		return "force-all"
	}
	return "incremental"
}

// Config configures a backfill run. The YAML file carries the durable
// settings; Mode and DryRun come from flags.
type Config struct {
	// DBPath is the venue database. Required (setup error when missing).
	DBPath string `yaml:"db_path"`

	// BrowserRemoteURL attaches to a running Chrome instead of launching.
	BrowserRemoteURL string `yaml:"browser_remote_url"`

	// NavTimeout bounds page navigation per record. Default: 30s.
	NavTimeout time.Duration `yaml:"nav_timeout"`

	// SettleDelay is the fixed wait after load before reading intercepted
	// traffic. Default: 3s.
	SettleDelay time.Duration `yaml:"settle_delay"`

	// DelayMin/DelayMax bound the randomized inter-record sleep. Jitter is
	// required, not optional: a fixed cadence is what rate limiters key on.
	// Defaults: 2s / 4s.
	DelayMin time.Duration `yaml:"delay_min"`
	DelayMax time.Duration `yaml:"delay_max"`

	// UserAgent for direct API calls. Default: the client's.
	UserAgent string `yaml:"user_agent"`

	// Mode and DryRun are per-invocation, never read from YAML.
	Mode   Mode `yaml:"-"`
	DryRun bool `yaml:"-"`
}

func (c *Config) defaults() {
	if c.NavTimeout <= 0 {
		c.NavTimeout = 30 * time.Second
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = 3 * time.Second
	}
	if c.DelayMin <= 0 {
		c.DelayMin = 2 * time.Second
	}
	if c.DelayMax <= c.DelayMin {
		c.DelayMax = c.DelayMin + 2*time.Second
	}
}

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("backfill: read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("backfill: parse config: %w", err)
	}
	return &cfg, nil
}
