// Package config loads lemure's YAML configuration from <data_dir>/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abelbrown/lemure/internal/autostep"
)

// Environment overrides.
const (
	EnvBackend = "LEMURE_BACKEND"
	EnvDataDir = "LEMURE_DATA_DIR"
)

// Config is the persistent application configuration
type Config struct {
	BackendURL     string        `yaml:"backend_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	Step     StepConfig     `yaml:"step"`
	Debounce DebounceConfig `yaml:"debounce"`

	RangeStatsRPS      float64 `yaml:"range_stats_rps"`
	RecentLimit        int     `yaml:"recent_limit"`
	DefaultRefrigerant string  `yaml:"default_refrigerant"`
	WatchFolder        bool    `yaml:"watch_folder"`
	OutputDir          string  `yaml:"output_dir,omitempty"`
	ShowLegend         bool    `yaml:"show_legend"`

	// DataDir is where logs, the event log, the database and this file
	// live. Not stored in the file itself.
	DataDir string `yaml:"-"`
}

// StepConfig holds the initial auto-step settings.
type StepConfig struct {
	Auto   bool `yaml:"auto"`
	Target int  `yaml:"target"`
	Manual int  `yaml:"manual"`
}

// Settings converts to the autostep form.
func (s StepConfig) Settings() autostep.Settings {
	return autostep.Settings{Enabled: s.Auto, Target: s.Target, Manual: s.Manual}.Sanitize()
}

// DebounceConfig holds the coalescing delays of the UI.
type DebounceConfig struct {
	Redraw     time.Duration `yaml:"redraw"`
	OrderSave  time.Duration `yaml:"order_save"`
	LastState  time.Duration `yaml:"last_state"`
	RangeStats time.Duration `yaml:"range_stats"`
	Filter     time.Duration `yaml:"filter"`
	Watch      time.Duration `yaml:"watch"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		BackendURL:     "http://127.0.0.1:8787",
		RequestTimeout: 2 * time.Minute,
		Step:           StepConfig{Auto: true, Target: autostep.DefaultTarget, Manual: 1},
		Debounce: DebounceConfig{
			Redraw:     150 * time.Millisecond,
			OrderSave:  350 * time.Millisecond,
			LastState:  600 * time.Millisecond,
			RangeStats: 250 * time.Millisecond,
			Filter:     150 * time.Millisecond,
			Watch:      500 * time.Millisecond,
		},
		RangeStatsRPS:      4,
		RecentLimit:        10,
		DefaultRefrigerant: "R290",
		WatchFolder:        true,
		ShowLegend:         true,
	}
}

// DefaultDataDir is ~/.lemure unless LEMURE_DATA_DIR is set.
func DefaultDataDir() string {
	if d := os.Getenv(EnvDataDir); d != "" {
		return d
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lemure"
	}
	return filepath.Join(home, ".lemure")
}

// Path returns the config file inside dataDir.
func Path(dataDir string) string {
	return filepath.Join(dataDir, "config.yaml")
}

// DBPath is the SQLite database inside the data dir.
func (c *Config) DBPath() string { return filepath.Join(c.DataDir, "lemure.db") }

// EventLogPath is the JSONL event log inside the data dir.
func (c *Config) EventLogPath() string { return filepath.Join(c.DataDir, "lemure.events.jsonl") }

// Load reads dataDir/config.yaml, or returns defaults when it does not
// exist. An empty dataDir means DefaultDataDir. Environment overrides are
// applied last.
func Load(dataDir string) (*Config, error) {
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path(dataDir))
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", Path(dataDir), err)
		}
	}

	cfg.DataDir = dataDir
	cfg.applyEnv()
	cfg.normalize()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if u := os.Getenv(EnvBackend); u != "" {
		c.BackendURL = u
	}
}

// normalize replaces out-of-range values with defaults.
func (c *Config) normalize() {
	def := DefaultConfig()
	c.BackendURL = strings.TrimRight(strings.TrimSpace(c.BackendURL), "/")
	if c.BackendURL == "" {
		c.BackendURL = def.BackendURL
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = def.RequestTimeout
	}
	st := c.Step.Settings()
	c.Step = StepConfig{Auto: c.Step.Auto, Target: st.Target, Manual: st.Manual}

	fix := func(d *time.Duration, v time.Duration) {
		if *d <= 0 {
			*d = v
		}
	}
	fix(&c.Debounce.Redraw, def.Debounce.Redraw)
	fix(&c.Debounce.OrderSave, def.Debounce.OrderSave)
	fix(&c.Debounce.LastState, def.Debounce.LastState)
	fix(&c.Debounce.RangeStats, def.Debounce.RangeStats)
	fix(&c.Debounce.Filter, def.Debounce.Filter)
	fix(&c.Debounce.Watch, def.Debounce.Watch)

	if c.RangeStatsRPS <= 0 {
		c.RangeStatsRPS = def.RangeStatsRPS
	}
	if c.RecentLimit <= 0 {
		c.RecentLimit = def.RecentLimit
	}
	if c.DefaultRefrigerant == "" {
		c.DefaultRefrigerant = def.DefaultRefrigerant
	}
}

// Save writes config to dataDir/config.yaml.
func (c *Config) Save() error {
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir()
	}
	path := Path(c.DataDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}
