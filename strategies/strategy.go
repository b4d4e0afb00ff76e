// Package strategies holds the trading strategies and the registry used to
// build one from configuration.
package strategies

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rustyeddy/smatrader/market"
	"github.com/rustyeddy/smatrader/signal"
)

// Actions is what a strategy may do when it sees a signal. The controller
// implements it on top of the position manager.
type Actions interface {
	// HasOpen reports whether the strategy's pair has an OPENING or OPENED
	// position.
	HasOpen() bool

	// EnterLong opens a long position at the bar close.
	EnterLong(ctx context.Context, b market.Bar) error

	// ExitLong closes every OPENED position of the pair.
	ExitLong(ctx context.Context, b market.Bar, reason string) error
}

// Strategy is fed one closed bar at a time.
type Strategy interface {
	Name() string

	// RequestedPair is the only pair the strategy trades.
	RequestedPair() market.CurrencyPair

	// MaximumBarCount is how many bars the strategy keeps.
	MaximumBarCount() int

	// OnBar consumes the bar and returns the crossing signal it produced.
	OnBar(b market.Bar) signal.Signal

	// ShouldEnter runs on EnterLong.
	ShouldEnter(ctx context.Context, a Actions, b market.Bar) error

	// ShouldExit runs on ExitLong.
	ShouldExit(ctx context.Context, a Actions, b market.Bar) error
}

const (
	DefaultBarCount = 24
	DefaultName     = "sma-cross"
)

// Config selects and parameterises a strategy.
type Config struct {
	Name       string              `json:"name" yaml:"name"`
	Pair       market.CurrencyPair `json:"-" yaml:"-"`
	Indicator  string              `json:"indicator" yaml:"indicator"`
	BarCount   int                 `json:"bar_count" yaml:"bar_count"`
	SignalExit bool                `json:"signal_exit" yaml:"signal_exit"`
}

// Factory builds a strategy from its configuration.
type Factory func(cfg Config) (Strategy, error)

var registry = make(map[string]Factory)

// Register makes a factory available to ByName. Names are case-insensitive.
func Register(name string, f Factory) {
	registry[strings.ToLower(name)] = f
}

// Names lists the registered strategy names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ByName builds the strategy named by cfg.Name ("" means sma-cross).
func ByName(cfg Config) (Strategy, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Name))
	if name == "" {
		name = DefaultName
	}
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (supported: %s)", cfg.Name, strings.Join(Names(), ", "))
	}
	if cfg.Pair.IsZero() {
		return nil, fmt.Errorf("strategy %s: no pair configured", name)
	}
	if cfg.BarCount == 0 {
		cfg.BarCount = DefaultBarCount
	}
	return f(cfg)
}

func init() {
	Register("sma-cross", func(cfg Config) (Strategy, error) {
		if cfg.Indicator == "" {
			cfg.Indicator = "sma"
		}
		return newFromConfig(cfg)
	})
	Register("ema-cross", func(cfg Config) (Strategy, error) {
		cfg.Indicator = "ema"
		return newFromConfig(cfg)
	})
	Register("noop", func(cfg Config) (Strategy, error) {
		return NewNoop(cfg.Pair, cfg.BarCount), nil
	})
}

func newFromConfig(cfg Config) (Strategy, error) {
	s, err := NewMACross(cfg.Indicator, cfg.Pair, cfg.BarCount)
	if err != nil {
		return nil, err
	}
	if cfg.SignalExit {
		s.WithSignalExit()
	}
	return s, nil
}
