// Package config loads and validates the scanner's YAML configuration object.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/premovescan/premovescan/internal/errs"
)

// ExchangeConfig is one entry of the `exchanges` list.
type ExchangeConfig struct {
	Name      string `yaml:"name"`
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	Enabled   bool   `yaml:"enabled"`
}

// ScanConfig holds scan-cadence and concurrency knobs.
type ScanConfig struct {
	CadenceSeconds   int `yaml:"cadence_seconds"`
	Concurrency      int `yaml:"concurrency"`
	PerSymbolTimeoutS int `yaml:"per_symbol_timeout_s"`
}

// AlertsConfig holds alert routing knobs.
type AlertsConfig struct {
	MinClassification string   `yaml:"min_classification"`
	Sinks             []string `yaml:"sinks"`
}

// RiskConfig holds position sizing and trade-monitor knobs.
type RiskConfig struct {
	AccountUSD    float64 `yaml:"account_usd"`
	RiskPct       float64 `yaml:"risk_pct"`
	MaxOpenTrades int     `yaml:"max_open_trades"`
}

// StoreConfig holds persistence knobs.
type StoreConfig struct {
	Path           string `yaml:"path"`
	RetentionDays  int    `yaml:"retention_days"`
}

// RedisConfig holds the optional dedup-cache endpoint; an empty Addr means
// the trade monitor falls back to an in-memory dedup cache.
type RedisConfig struct {
	Addr string `yaml:"addr"`
	DB   int    `yaml:"db"`
}

// OpsConfig holds the optional ops HTTP surface (/healthz, /stats); an
// empty Addr disables the listener.
type OpsConfig struct {
	Addr string `yaml:"addr"`
}

// ThresholdsConfig holds the classification cutoffs parsed from the
// `thresholds` block. The values are not applied: the scorer classifies with
// its built-in cutoffs (78/62/48/33) whatever these fields hold, and bonus
// activation thresholds have no config fields.
type ThresholdsConfig struct {
	Critical   float64 `yaml:"critical"`
	HighAlert  float64 `yaml:"high_alert"`
	Watchlist  float64 `yaml:"watchlist"`
	Monitor    float64 `yaml:"monitor"`
}

// Config is the full recognized configuration object.
type Config struct {
	Exchanges  []ExchangeConfig  `yaml:"exchanges"`
	Scan       ScanConfig        `yaml:"scan"`
	Alerts     AlertsConfig      `yaml:"alerts"`
	Risk       RiskConfig        `yaml:"risk"`
	Store      StoreConfig       `yaml:"store"`
	Thresholds ThresholdsConfig  `yaml:"thresholds"`
	Redis      RedisConfig       `yaml:"redis"`
	Ops        OpsConfig         `yaml:"ops"`
	LogLevel   string            `yaml:"log_level"`
}

// Default returns a config with spec-documented defaults applied.
func Default() Config {
	return Config{
		Scan: ScanConfig{
			CadenceSeconds:    900,
			Concurrency:       6,
			PerSymbolTimeoutS: 30,
		},
		Alerts: AlertsConfig{
			MinClassification: "WATCHLIST",
			Sinks:             []string{"console"},
		},
		Risk: RiskConfig{
			RiskPct:       0.02,
			MaxOpenTrades: 3,
		},
		Store: StoreConfig{
			Path:          "premovescan.db",
			RetentionDays: 90,
		},
		Ops:      OpsConfig{Addr: ":8090"},
		LogLevel: "info",
	}
}

// Load reads and validates a YAML config file, applying defaults for unset fields.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errs.Wrap(errs.Config, "", "read config file", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errs.Wrap(errs.Config, "", "parse config file", err)
	}
	applyDefaults(&cfg)
	if err := validate(cfg); err != nil {
		return cfg, errs.Wrap(errs.Config, "", "validate config", err)
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Scan.CadenceSeconds == 0 {
		cfg.Scan.CadenceSeconds = def.Scan.CadenceSeconds
	}
	if cfg.Scan.Concurrency == 0 {
		cfg.Scan.Concurrency = def.Scan.Concurrency
	}
	if cfg.Scan.PerSymbolTimeoutS == 0 {
		cfg.Scan.PerSymbolTimeoutS = def.Scan.PerSymbolTimeoutS
	}
	if cfg.Alerts.MinClassification == "" {
		cfg.Alerts.MinClassification = def.Alerts.MinClassification
	}
	if len(cfg.Alerts.Sinks) == 0 {
		cfg.Alerts.Sinks = def.Alerts.Sinks
	}
	if cfg.Risk.RiskPct == 0 {
		cfg.Risk.RiskPct = def.Risk.RiskPct
	}
	if cfg.Risk.MaxOpenTrades == 0 {
		cfg.Risk.MaxOpenTrades = def.Risk.MaxOpenTrades
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = def.Store.Path
	}
	if cfg.Store.RetentionDays == 0 {
		cfg.Store.RetentionDays = def.Store.RetentionDays
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
}

func validate(cfg Config) error {
	if cfg.Scan.CadenceSeconds <= 0 {
		return fmt.Errorf("scan.cadence_seconds must be positive")
	}
	if cfg.Scan.Concurrency <= 0 {
		return fmt.Errorf("scan.concurrency must be positive")
	}
	if cfg.Risk.RiskPct <= 0 || cfg.Risk.RiskPct >= 1 {
		return fmt.Errorf("risk.risk_pct must be in (0,1)")
	}
	for _, ex := range cfg.Exchanges {
		if ex.Enabled && ex.Name == "" {
			return fmt.Errorf("exchange entry missing name")
		}
	}
	return nil
}
