package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/abelbrown/lemure/internal/backend"
	"github.com/abelbrown/lemure/internal/config"
)

// loadConfig reads the config file and applies the command-line overrides.
func loadConfig(gf globalFlags) (*config.Config, error) {
	dir := gf.dataDir
	if dir == "" {
		dir = config.DefaultDataDir()
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	if gf.backend != "" {
		cfg.BackendURL = gf.backend
	}
	return cfg, nil
}

func newClient(cfg *config.Config) *backend.Client {
	return backend.New(cfg.BackendURL, backend.Options{
		Timeout:       cfg.RequestTimeout,
		RangeStatsRPS: cfg.RangeStatsRPS,
	})
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// truncate shortens a string to max runes, appending "..." if truncated.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
