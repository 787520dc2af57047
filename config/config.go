package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/tradeplan/funded"
	"github.com/rustyeddy/tradeplan/risk"
	"github.com/rustyeddy/tradeplan/trade"
)

// Config is the trader's settings file.
type Config struct {
	Account AccountConfig `json:"account" yaml:"account"`
	Trade   TradeConfig   `json:"trade" yaml:"trade"`
	Rules   RulesConfig   `json:"rules" yaml:"rules"`
	Goals   funded.Goals  `json:"goals" yaml:"goals"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Log     LogConfig     `json:"log" yaml:"log"`
}

// AccountConfig is the funded account as the firm hands it over.
type AccountConfig struct {
	Currency    string  `json:"currency" yaml:"currency"`
	Balance     float64 `json:"balance" yaml:"balance"`           // starting balance
	RiskPercent float64 `json:"risk_percent" yaml:"risk_percent"` // risked per trade, percent
}

// TradeConfig holds planning defaults.
type TradeConfig struct {
	Symbol              string  `json:"symbol,omitempty" yaml:"symbol,omitempty"`
	TrailingStopPercent float64 `json:"trailing_stop_percent" yaml:"trailing_stop_percent"`
}

// RulesConfig are the firm's limits. Zero disables a limit.
type RulesConfig struct {
	MaxRiskPercent   float64 `json:"max_risk_percent" yaml:"max_risk_percent"`
	DailyGoal        float64 `json:"daily_goal" yaml:"daily_goal"`
	MaxDailyLoss     float64 `json:"max_daily_loss" yaml:"max_daily_loss"`
	MaxTotalDrawdown float64 `json:"max_total_drawdown" yaml:"max_total_drawdown"`
	ProfitTarget     float64 `json:"profit_target" yaml:"profit_target"`
	TradesPerDay     int     `json:"trades_per_day" yaml:"trades_per_day"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "sqlite", "csv" or "postgres"
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DSN        string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
}

// LogConfig controls the CLI logger. An empty File logs to stderr only.
type LogConfig struct {
	Level      string `json:"level" yaml:"level"`
	File       string `json:"file,omitempty" yaml:"file,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty" yaml:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty" yaml:"max_backups,omitempty"`
	MaxAgeDays int    `json:"max_age_days,omitempty" yaml:"max_age_days,omitempty"`
}

// LoadFromFile loads configuration from a file (JSON or YAML based on extension)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if c.Account.Balance <= 0 {
		return fmt.Errorf("account.balance must be positive")
	}
	if c.Account.RiskPercent < 0.1 || c.Account.RiskPercent > risk.MaxRiskPercent {
		return fmt.Errorf("account.risk_percent must be between 0.1 and %v", risk.MaxRiskPercent)
	}
	if c.Rules.MaxRiskPercent < 0 || c.Rules.MaxRiskPercent > risk.MaxRiskPercent {
		return fmt.Errorf("rules.max_risk_percent must be between 0 and %v", risk.MaxRiskPercent)
	}
	if c.Rules.MaxRiskPercent > 0 && c.Account.RiskPercent > c.Rules.MaxRiskPercent {
		return fmt.Errorf("account.risk_percent exceeds rules.max_risk_percent")
	}
	if c.Rules.DailyGoal < 0 || c.Rules.MaxDailyLoss < 0 || c.Rules.MaxTotalDrawdown < 0 ||
		c.Rules.ProfitTarget < 0 || c.Rules.TradesPerDay < 0 {
		return fmt.Errorf("rules must not be negative")
	}
	if c.Trade.TrailingStopPercent <= 0 || c.Trade.TrailingStopPercent >= 100 {
		return fmt.Errorf("trade.trailing_stop_percent must be between 0 and 100")
	}
	if c.Goals.Daily < 0 || c.Goals.Weekly < 0 || c.Goals.Monthly < 0 || c.Goals.Total < 0 {
		return fmt.Errorf("goals must not be negative")
	}

	switch c.Journal.Type {
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
		}
	case "postgres":
		if c.Journal.DSN == "" {
			return fmt.Errorf("journal dsn required for postgres type")
		}
	default:
		return fmt.Errorf("journal.type must be 'sqlite', 'csv' or 'postgres'")
	}

	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// Policy converts the account and rules sections to a risk.Policy.
func (c *Config) Policy() risk.Policy {
	return risk.Policy{
		AccountBaseCurrency: c.Account.Currency,
		AccountStartBalance: c.Account.Balance,
		MaxRiskPct:          c.Rules.MaxRiskPercent,
		DailyGoal:           c.Rules.DailyGoal,
		MaxDailyLoss:        c.Rules.MaxDailyLoss,
		MaxTotalDrawdown:    c.Rules.MaxTotalDrawdown,
		ProfitTarget:        c.Rules.ProfitTarget,
		TradesPerDay:        c.Rules.TradesPerDay,
	}
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	p := risk.DefaultPolicy()
	return &Config{
		Account: AccountConfig{
			Currency:    p.AccountBaseCurrency,
			Balance:     p.AccountStartBalance,
			RiskPercent: 0.5,
		},
		Trade: TradeConfig{
			TrailingStopPercent: trade.DefaultTrailingStopPercent,
		},
		Rules: RulesConfig{
			MaxRiskPercent:   p.MaxRiskPct,
			DailyGoal:        p.DailyGoal,
			MaxDailyLoss:     p.MaxDailyLoss,
			MaxTotalDrawdown: p.MaxTotalDrawdown,
			ProfitTarget:     p.ProfitTarget,
			TradesPerDay:     p.TradesPerDay,
		},
		Goals: funded.DefaultGoals(),
		Journal: JournalConfig{
			Type:       "sqlite",
			DBPath:     "./tradeplan.db",
			TradesFile: "./trades.csv",
			EquityFile: "./equity.csv",
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}
