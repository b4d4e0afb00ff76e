package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rustyeddy/smatrader/broker"
	"github.com/rustyeddy/smatrader/market"
	"github.com/rustyeddy/smatrader/position"
	"github.com/rustyeddy/smatrader/report"
	"github.com/rustyeddy/smatrader/strategies"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv.
const (
	EnvProfile      = "SMABOT_PROFILE"
	EnvSMTPPassword = "SMTP_PASSWORD"
	EnvWebhookURL   = "WEBHOOK_URL"
)

// Config is the complete bot configuration.
type Config struct {
	Profile  string         `json:"profile" yaml:"profile"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Account  AccountConfig  `json:"account" yaml:"account"`
	Report   ReportConfig   `json:"report" yaml:"report"`
	Notify   NotifyConfig   `json:"notify" yaml:"notify"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Log      LogConfig      `json:"log" yaml:"log"`
}

// StrategyConfig selects the strategy, its pair and the position rules.
type StrategyConfig struct {
	Name               string          `json:"name" yaml:"name"`
	Pair               string          `json:"pair" yaml:"pair"`
	Indicator          string          `json:"indicator" yaml:"indicator"`
	BarCount           int             `json:"bar_count" yaml:"bar_count"`
	Amount             decimal.Decimal `json:"amount" yaml:"amount"`
	StopGainPercentage float64         `json:"stop_gain_percentage" yaml:"stop_gain_percentage"`
	StopLossPercentage float64         `json:"stop_loss_percentage" yaml:"stop_loss_percentage"`
	SignalExit         bool            `json:"signal_exit" yaml:"signal_exit"`
}

// AccountConfig seeds the paper account.
type AccountConfig struct {
	Balances map[string]decimal.Decimal `json:"balances" yaml:"balances"`
	FeeRate  decimal.Decimal            `json:"fee_rate" yaml:"fee_rate"`
	Async    bool                       `json:"async" yaml:"async"`
}

// ReportConfig schedules the daily report.
type ReportConfig struct {
	Cron     string `json:"cron" yaml:"cron"`
	Timezone string `json:"timezone" yaml:"timezone"`
}

type NotifyConfig struct {
	Mail      MailConfig      `json:"mail" yaml:"mail"`
	Webhook   WebhookConfig   `json:"webhook" yaml:"webhook"`
	Websocket WebsocketConfig `json:"websocket" yaml:"websocket"`
	Throttle  ThrottleConfig  `json:"throttle" yaml:"throttle"`
	// QueueSize bounds the reports waiting for delivery; 0 means the default.
	QueueSize int `json:"queue_size,omitempty" yaml:"queue_size,omitempty"`
}

type MailConfig struct {
	Enabled  bool     `json:"enabled" yaml:"enabled"`
	Host     string   `json:"host" yaml:"host"`
	Port     int      `json:"port" yaml:"port"`
	Username string   `json:"username" yaml:"username"`
	Password string   `json:"-" yaml:"-"` // SMTP_PASSWORD
	From     string   `json:"from" yaml:"from"`
	To       []string `json:"to" yaml:"to"`
}

type WebhookConfig struct {
	URL string `json:"url,omitempty" yaml:"url,omitempty"` // or WEBHOOK_URL
}

type WebsocketConfig struct {
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"` // e.g. ":8089"; empty disables
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

type ThrottleConfig struct {
	Interval string `json:"interval,omitempty" yaml:"interval,omitempty"` // e.g. "2s"
	Burst    int    `json:"burst,omitempty" yaml:"burst,omitempty"`
}

// JournalConfig contains journaling parameters.
type JournalConfig struct {
	Type   string `json:"type" yaml:"type"` // "", "csv" or "sqlite"
	File   string `json:"file,omitempty" yaml:"file,omitempty"`
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // "json" or "console"
}

// LoadEnv loads .env style files into the environment. Missing files are
// ignored and variables already set win.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load env %s: %w", f, err)
		}
	}
	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file, fills the
// defaults, applies the environment and validates the result.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = &Config{}
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	cfg.fillDefaults()
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (YAML for .yaml/.yml, JSON otherwise).
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

// ApplyEnv overrides the profile and secrets from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvProfile); v != "" {
		c.Profile = v
	}
	if v := os.Getenv(EnvSMTPPassword); v != "" {
		c.Notify.Mail.Password = v
	}
	if v := os.Getenv(EnvWebhookURL); v != "" {
		c.Notify.Webhook.URL = v
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Strategy.Pair == "" {
		return fmt.Errorf("strategy.pair is required")
	}
	if _, err := market.ParsePair(c.Strategy.Pair); err != nil {
		return fmt.Errorf("strategy.pair: %w", err)
	}
	if c.Strategy.BarCount <= 0 {
		return fmt.Errorf("strategy.bar_count must be positive")
	}
	if !c.Strategy.Amount.IsPositive() {
		return fmt.Errorf("strategy.amount must be positive")
	}
	if c.Strategy.StopGainPercentage < 0 || c.Strategy.StopLossPercentage < 0 {
		return fmt.Errorf("strategy stop percentages must not be negative")
	}
	if c.Strategy.StopLossPercentage > 100 {
		return fmt.Errorf("strategy.stop_loss_percentage must not exceed 100")
	}
	switch strings.ToLower(c.Strategy.Indicator) {
	case "", "sma", "ema":
	default:
		return fmt.Errorf("strategy.indicator must be 'sma' or 'ema'")
	}
	for cur, v := range c.Account.Balances {
		if v.IsNegative() {
			return fmt.Errorf("account.balances.%s must not be negative", cur)
		}
	}
	if c.Account.FeeRate.IsNegative() || c.Account.FeeRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("account.fee_rate must be in [0, 1)")
	}
	if _, err := c.Schedule(); err != nil {
		return err
	}
	if _, err := c.ThrottleInterval(); err != nil {
		return err
	}
	if c.Notify.Mail.Enabled && c.Notify.Mail.Host == "" {
		return fmt.Errorf("notify.mail.host required when mail is enabled")
	}
	switch c.Journal.Type {
	case "":
	case "csv":
		if c.Journal.File == "" {
			return fmt.Errorf("journal file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'csv' or 'sqlite'")
	}
	switch c.Log.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("log.format must be 'json' or 'console'")
	}
	return nil
}

// Default returns the configuration of the shipped SMA bot.
func Default() *Config {
	c := &Config{}
	c.fillDefaults()
	c.Account.Balances = map[string]decimal.Decimal{
		"USDT": decimal.NewFromInt(1000),
	}
	c.Journal = JournalConfig{Type: "csv", File: "./positions.csv"}
	return c
}

func (c *Config) fillDefaults() {
	if c.Profile == "" {
		c.Profile = "default"
	}
	s := &c.Strategy
	if s.Name == "" {
		s.Name = strategies.DefaultName
	}
	if s.Pair == "" {
		s.Pair = "BTC/USDT"
	}
	if s.BarCount == 0 {
		s.BarCount = strategies.DefaultBarCount
	}
	if s.Amount.IsZero() {
		s.Amount = decimal.RequireFromString("0.001")
	}
	if s.StopGainPercentage == 0 && s.StopLossPercentage == 0 {
		s.StopGainPercentage = 4
		s.StopLossPercentage = 15
	}
	if c.Report.Cron == "" {
		c.Report.Cron = report.DefaultCron
	}
	if c.Report.Timezone == "" {
		c.Report.Timezone = report.DefaultTimezone
	}
	if c.Notify.Websocket.Addr != "" && c.Notify.Websocket.Path == "" {
		c.Notify.Websocket.Path = "/ws"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// Pair returns the parsed strategy pair.
func (c *Config) Pair() market.CurrencyPair {
	p, _ := market.ParsePair(c.Strategy.Pair)
	return p
}

func (c *Config) Rules() position.Rules {
	return position.Rules{
		StopGainPercentage: c.Strategy.StopGainPercentage,
		StopLossPercentage: c.Strategy.StopLossPercentage,
	}
}

// StrategyConfig returns what strategies.ByName needs.
func (c *Config) StrategyConfig() strategies.Config {
	return strategies.Config{
		Name:       c.Strategy.Name,
		Pair:       c.Pair(),
		Indicator:  strings.ToLower(c.Strategy.Indicator),
		BarCount:   c.Strategy.BarCount,
		SignalExit: c.Strategy.SignalExit,
	}
}

// Balances returns the initial paper balances keyed by upper-case currency.
func (c *Config) Balances() broker.Balances {
	out := make(broker.Balances, len(c.Account.Balances))
	for cur, v := range c.Account.Balances {
		out[market.Currency(strings.ToUpper(cur))] = v
	}
	return out
}

func (c *Config) Schedule() (report.Schedule, error) {
	return report.ParseSchedule(c.Report.Cron, c.Report.Timezone)
}

func (c *Config) ThrottleInterval() (time.Duration, error) {
	if c.Notify.Throttle.Interval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Notify.Throttle.Interval)
	if err != nil {
		return 0, fmt.Errorf("notify.throttle.interval: %w", err)
	}
	return d, nil
}

// Test reports whether reports must not leave the process.
func (c *Config) Test() bool {
	return strings.EqualFold(c.Profile, "test")
}
