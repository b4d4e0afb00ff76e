// Package gains accumulates realized gains and fees per quote currency from
// closed positions.
package gains

import (
	"sync"

	"github.com/rustyeddy/smatrader/market"
	"github.com/rustyeddy/smatrader/position"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var hundred = decimal.NewFromInt(100)

// Gain is the accumulated result for one currency.
type Gain struct {
	Currency market.Currency

	// Percentage is the weighted figure: total amount over total entry
	// value, so every contributing position counts, not only the latest.
	Percentage decimal.Decimal
	Amount     decimal.Decimal
	Fees       decimal.Decimal

	EntryValue decimal.Decimal
	Positions  int
}

// Aggregator merges closed positions into per-currency gains, once per
// position id. Snapshot may be called from any goroutine.
type Aggregator struct {
	mu    sync.RWMutex
	order []market.Currency
	gains map[market.Currency]*Gain
	seen  map[int64]struct{}
	log   *zap.Logger
}

func NewAggregator(log *zap.Logger) *Aggregator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Aggregator{
		gains: make(map[market.Currency]*Gain),
		seen:  make(map[int64]struct{}),
		log:   log,
	}
}

// OnPositionClosed applies p's realized gain. It reports false when p is not
// CLOSED or was already applied.
func (a *Aggregator) OnPositionClosed(p position.Position) bool {
	g, ok := p.RealizedGain()
	if !ok {
		return false
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, dup := a.seen[p.ID]; dup {
		a.log.Warn("position already accounted", zap.Int64("position", p.ID))
		return false
	}
	a.seen[p.ID] = struct{}{}

	acc, ok := a.gains[g.Currency]
	if !ok {
		acc = &Gain{Currency: g.Currency}
		a.gains[g.Currency] = acc
		a.order = append(a.order, g.Currency)
	}
	acc.Amount = acc.Amount.Add(g.Amount)
	acc.Fees = acc.Fees.Add(g.Fees)
	acc.EntryValue = acc.EntryValue.Add(g.EntryValue)
	acc.Positions++
	if acc.EntryValue.IsPositive() {
		acc.Percentage = acc.Amount.Div(acc.EntryValue).Mul(hundred).Round(2)
	}

	a.log.Debug("gain applied",
		zap.Int64("position", p.ID),
		zap.Stringer("currency", g.Currency),
		zap.Stringer("amount", g.Amount),
		zap.Stringer("percentage", acc.Percentage))
	return true
}

// OnPositionStatusChanged lets the aggregator listen to a position.Manager.
func (a *Aggregator) OnPositionStatusChanged(c position.StatusChange) {
	if c.To == position.Closed {
		a.OnPositionClosed(c.Position)
	}
}

// Snapshot returns a consistent copy of every gain, in the order the
// currencies were first seen.
func (a *Aggregator) Snapshot() []Gain {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]Gain, 0, len(a.order))
	for _, c := range a.order {
		out = append(out, *a.gains[c])
	}
	return out
}

// Get returns the gain for one currency.
func (a *Aggregator) Get(c market.Currency) (Gain, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	g, ok := a.gains[c]
	if !ok {
		return Gain{}, false
	}
	return *g, true
}
