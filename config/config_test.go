package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoadFromFile(t *testing.T) {
	p := writeConfig(t, `
server:
  port: 8088
input:
  encoding: GBK
evaluator:
  block_size: 20
  log_gaps: false
montecarlo:
  include_paths: true
backtest:
  start: "2016-01-04"
`)
	cfg, err := LoadFromFile(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 8088 || cfg.Encoding != "gbk" || cfg.BlockSize != 20 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.SearchDays != 31 {
		t.Fatalf("search days default lost: %d", cfg.SearchDays)
	}
	if cfg.LogGaps || !cfg.IncludePaths {
		t.Fatalf("flags: log_gaps=%v include_paths=%v", cfg.LogGaps, cfg.IncludePaths)
	}
	if cfg.BacktestStart != "2016-01-04" || cfg.BacktestEnd != "" {
		t.Fatalf("backtest range: %q %q", cfg.BacktestStart, cfg.BacktestEnd)
	}
}

func TestGetConfigEnvOverrides(t *testing.T) {
	p := writeConfig(t, "server:\n  port: 8088\n")
	t.Setenv("SNOWBALL_PORT", "9000")
	t.Setenv("SNOWBALL_ENCODING", "gb18030")

	cfg := GetConfig(p)
	if cfg.Port != 9000 {
		t.Fatalf("port=%d, want 9000", cfg.Port)
	}
	if cfg.Encoding != "gb18030" {
		t.Fatalf("encoding=%s", cfg.Encoding)
	}
}

func TestGetConfigIgnoresBadPort(t *testing.T) {
	t.Setenv("SNOWBALL_PORT", "abc")
	cfg := GetConfig("")
	if cfg.Port != DefaultConfig.Port {
		t.Fatalf("port=%d, want default", cfg.Port)
	}
	if !cfg.LogGaps {
		t.Fatalf("log gaps should default to true")
	}
}

func TestGetConfigMissingFileFallsBack(t *testing.T) {
	t.Setenv("SNOWBALL_PORT", "")
	cfg := GetConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if cfg.Port != DefaultConfig.Port {
		t.Fatalf("port=%d", cfg.Port)
	}
}
