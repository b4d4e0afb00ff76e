package strategies

import (
	"context"

	"github.com/rustyeddy/smatrader/market"
	"github.com/rustyeddy/smatrader/signal"
)

// Noop never trades. It is useful to run the reporting side on its own.
type Noop struct {
	pair     market.CurrencyPair
	barCount int
}

func NewNoop(pair market.CurrencyPair, barCount int) Noop {
	return Noop{pair: pair, barCount: barCount}
}

func (Noop) Name() string                         { return "noop" }
func (n Noop) RequestedPair() market.CurrencyPair { return n.pair }
func (n Noop) MaximumBarCount() int               { return n.barCount }
func (Noop) OnBar(market.Bar) signal.Signal       { return signal.Hold }

func (Noop) ShouldEnter(context.Context, Actions, market.Bar) error { return nil }
func (Noop) ShouldExit(context.Context, Actions, market.Bar) error  { return nil }
