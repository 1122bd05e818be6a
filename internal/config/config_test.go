package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	t.Setenv(EnvBackend, "")
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BackendURL != "http://127.0.0.1:8787" || cfg.Step.Target != 5000 || !cfg.Step.Auto {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Debounce.Redraw != 150*time.Millisecond || cfg.Debounce.LastState != 600*time.Millisecond {
		t.Errorf("debounce = %+v", cfg.Debounce)
	}
	if cfg.DataDir != dir || cfg.DBPath() != filepath.Join(dir, "lemure.db") {
		t.Errorf("paths: %s %s", cfg.DataDir, cfg.DBPath())
	}
}

func TestLoadYAML(t *testing.T) {
	t.Setenv(EnvBackend, "")
	dir := t.TempDir()
	yml := `
backend_url: http://lab-pc:9000/
step:
  auto: false
  target: 0
  manual: 3
debounce:
  redraw: 80ms
recent_limit: 5
default_refrigerant: R600a
`
	if err := os.WriteFile(Path(dir), []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BackendURL != "http://lab-pc:9000" {
		t.Errorf("backend = %q", cfg.BackendURL)
	}
	if cfg.Step.Auto || cfg.Step.Manual != 3 || cfg.Step.Target != 5000 {
		t.Errorf("step = %+v", cfg.Step)
	}
	if cfg.Debounce.Redraw != 80*time.Millisecond || cfg.Debounce.Filter != 150*time.Millisecond {
		t.Errorf("debounce = %+v", cfg.Debounce)
	}
	if cfg.RecentLimit != 5 || cfg.DefaultRefrigerant != "R600a" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadBadYAML(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(Path(dir), []byte("step: [unclosed"), 0o600)
	if _, err := Load(dir); err == nil {
		t.Error("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvDataDir, dir)
	t.Setenv(EnvBackend, "http://other:1")
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DataDir != dir || cfg.BackendURL != "http://other:1" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv(EnvBackend, "")
	dir := filepath.Join(t.TempDir(), "data")
	cfg := DefaultConfig()
	cfg.DataDir = dir
	cfg.OutputDir = "/tmp/exports"
	cfg.Debounce.Watch = time.Second
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	info, err := os.Stat(Path(dir))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v", info.Mode().Perm())
	}
	data, _ := os.ReadFile(Path(dir))
	if strings.Contains(string(data), "data_dir") || strings.Contains(string(data), "DataDir") {
		t.Error("data dir must not be written")
	}

	got, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got.OutputDir != "/tmp/exports" || got.Debounce.Watch != time.Second {
		t.Errorf("round trip = %+v", got)
	}
}

func TestStepSettings(t *testing.T) {
	s := StepConfig{Auto: true, Target: -1, Manual: 0}.Settings()
	if s.Target != 5000 || s.Manual != 1 || !s.Enabled {
		t.Errorf("Settings = %+v", s)
	}
}
