package strategies

import (
	"context"
	"fmt"

	"github.com/rustyeddy/smatrader/indicators"
	"github.com/rustyeddy/smatrader/market"
	"github.com/rustyeddy/smatrader/position"
	"github.com/rustyeddy/smatrader/signal"
)

// SMACross goes long when the close crosses above a moving average of the
// last BarCount closes. Exits are left to the stop-gain and stop-loss rules
// unless WithSignalExit is set.
type SMACross struct {
	pair market.CurrencyPair

	bars *market.BarSeries
	ma   indicators.ValueIndicator
	eval *signal.Evaluator

	signalExit bool
}

// NewSMACross uses a simple moving average.
func NewSMACross(pair market.CurrencyPair, barCount int) *SMACross {
	s, _ := NewMACross("sma", pair, barCount)
	return s
}

// NewMACross uses the moving average kind ("sma" or "ema").
func NewMACross(kind string, pair market.CurrencyPair, barCount int) (*SMACross, error) {
	if barCount <= 0 {
		return nil, fmt.Errorf("ma-cross: bar count must be positive, got %d", barCount)
	}
	ma, err := indicators.New(kind, barCount)
	if err != nil {
		return nil, fmt.Errorf("ma-cross: %w", err)
	}
	return &SMACross{
		pair: pair,
		bars: market.NewBarSeries(barCount),
		ma:   ma,
		eval: signal.NewEvaluator(),
	}, nil
}

// WithSignalExit makes ExitLong signals close the open position.
func (s *SMACross) WithSignalExit() *SMACross {
	s.signalExit = true
	return s
}

func (s *SMACross) Name() string {
	return "cross(" + s.ma.Name() + ")"
}

func (s *SMACross) RequestedPair() market.CurrencyPair { return s.pair }
func (s *SMACross) MaximumBarCount() int               { return s.bars.Capacity() }

// Indicator returns the current average and whether it is ready.
func (s *SMACross) Indicator() (float64, bool) {
	return s.ma.Value(), s.ma.Ready()
}

func (s *SMACross) Relation() signal.Relation { return s.eval.Relation() }

func (s *SMACross) Series() *market.BarSeries { return s.bars }

func (s *SMACross) OnBar(b market.Bar) signal.Signal {
	// Duplicates and out-of-order bars never reach the indicator.
	if !s.bars.Append(b) {
		return signal.Hold
	}
	v, ok := s.ma.Update(b)
	return s.eval.Next(b.Time, b.Close, v, ok)
}

func (s *SMACross) ShouldEnter(ctx context.Context, a Actions, b market.Bar) error {
	if a.HasOpen() {
		return nil
	}
	return a.EnterLong(ctx, b)
}

func (s *SMACross) ShouldExit(ctx context.Context, a Actions, b market.Bar) error {
	if !s.signalExit {
		return nil
	}
	return a.ExitLong(ctx, b, position.ReasonSignal)
}
