package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testYAML = `
environment: test
server:
  port: 9090
  read_timeout: 5s
  write_timeout: 5s
  shutdown_timeout: 5s
price_feed:
  websocket_url: wss://stream.binance.com:9443
  symbols: ["BTCUSDT"]
  reconnect_delay: 1s
  ping_interval: 10s
trading:
  commission_rate: 0.001
  min_trade_amount: 10
  cycle_interval: 30s
analyzers:
  - source: TECHNICAL
    url: http://localhost:8001/analyze
    timeout: 2s
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, testYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Trading.CycleInterval != 30*time.Second {
		t.Fatalf("expected 30s cycle interval, got %v", cfg.Trading.CycleInterval)
	}
	if len(cfg.Analyzers) != 1 || cfg.Analyzers[0].Source != "TECHNICAL" {
		t.Fatalf("unexpected analyzers: %+v", cfg.Analyzers)
	}
}

func TestLoadRejectsMissingSymbols(t *testing.T) {
	bad := `
environment: test
price_feed:
  websocket_url: wss://stream.binance.com:9443
`
	if _, err := Load(writeConfig(t, bad)); err == nil {
		t.Fatalf("expected validation error for empty symbols")
	}
}

func TestLoadRejectsBadCommission(t *testing.T) {
	bad := `
environment: test
price_feed:
  symbols: ["BTCUSDT"]
trading:
  commission_rate: 1.5
`
	if _, err := Load(writeConfig(t, bad)); err == nil {
		t.Fatalf("expected validation error for commission rate")
	}
}

func TestLoadWithEnvOverridesSymbols(t *testing.T) {
	t.Setenv("SYMBOLS", "SOLUSDT,ETHUSDT")
	cfg, err := LoadWithEnv(writeConfig(t, testYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.PriceFeed.Symbols) != 2 || cfg.PriceFeed.Symbols[0] != "SOLUSDT" {
		t.Fatalf("expected env override, got %v", cfg.PriceFeed.Symbols)
	}
}
