package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
environment: test
server:
  port: 9090
sources:
  yahoo_base_url: https://query1.finance.yahoo.com
  fred_base_url: https://fred.stlouisfed.org
  fx_pair: KRW=X
  fx_fallback: 1350.0
portfolio:
  total_assets: 30000000
  vaa:
    attack: [IVV, VEA, VWO, BND]
    defense: [USIG, VGIT, VGSH]
  laa:
    fixed: [VTV, VGIT, IAUM]
    defensive: VGSH
    growth: QQQM
    reference: IVV
    ma_window: 200
  dm:
    domestic: IVV
    international: VEA
    cash: SGOV
    fallback: BND
    lookback: 251
  drawdown:
    reference: IVV
    thresholds: [-15, -20]
    conversions: [20, 40]
history:
  csv_path: data/rebalance_log.csv
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "KRW=X", cfg.Sources.FXPair)
	assert.EqualValues(t, 30_000_000, cfg.Portfolio.TotalAssets)
	assert.Equal(t, []string{"IVV", "VEA", "VWO", "BND"}, cfg.Portfolio.VAA.Attack)
}

func TestValidateRequiredFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing environment", func(c *Config) { c.Environment = "" }},
		{"zero total assets", func(c *Config) { c.Portfolio.TotalAssets = 0 }},
		{"empty attack set", func(c *Config) { c.Portfolio.VAA.Attack = nil }},
		{"misaligned drawdown tables", func(c *Config) { c.Portfolio.Drawdown.Conversions = []int{20} }},
		{"missing csv path", func(c *Config) { c.History.CSVPath = "" }},
		{"kafka without brokers", func(c *Config) {
			c.History.Kafka.Enabled = true
			c.History.Kafka.Brokers = nil
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, minimalYAML))
			require.NoError(t, err)
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7001")
	t.Setenv("TOTAL_ASSETS", "50000000")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := LoadWithEnv(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, 7001, cfg.Server.Port)
	assert.EqualValues(t, 50_000_000, cfg.Portfolio.TotalAssets)
	assert.True(t, cfg.History.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.History.Kafka.Brokers)
}
