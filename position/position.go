// Package position owns long positions for a strategy: their lifecycle
// (OPENING -> OPENED -> CLOSING -> CLOSED), the stop-gain / stop-loss rules
// evaluated on every price, and the realized gain once a position is closed.
package position

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/smatrader/market"
	"github.com/shopspring/decimal"
)

type Status int

const (
	// New is the zero status, only seen as the From side of the creation event.
	New Status = iota
	Opening
	Opened
	Closing
	Closed
)

func (s Status) String() string {
	switch s {
	case Opening:
		return "OPENING"
	case Opened:
		return "OPENED"
	case Closing:
		return "CLOSING"
	case Closed:
		return "CLOSED"
	default:
		return "NEW"
	}
}

// Active reports whether the status blocks a new entry on the same pair.
func (s Status) Active() bool {
	return s == Opening || s == Opened
}

var hundred = decimal.NewFromInt(100)

// Rules are risk thresholds in percent of the entry price. Zero disables a rule.
type Rules struct {
	StopGainPercentage float64 `json:"stop_gain_percentage" yaml:"stop_gain_percentage"`
	StopLossPercentage float64 `json:"stop_loss_percentage" yaml:"stop_loss_percentage"`
}

func (r Rules) String() string {
	var parts []string
	if r.StopGainPercentage > 0 {
		parts = append(parts, fmt.Sprintf("%s %% gain", trimFloat(r.StopGainPercentage)))
	}
	if r.StopLossPercentage > 0 {
		parts = append(parts, fmt.Sprintf("%s %% loss", trimFloat(r.StopLossPercentage)))
	}
	if len(parts) == 0 {
		return "no rules"
	}
	return "rules: " + strings.Join(parts, " / ")
}

// trigger returns the close reason when pct crosses a threshold.
func (r Rules) trigger(pct decimal.Decimal) string {
	if r.StopGainPercentage > 0 && pct.GreaterThanOrEqual(decimal.NewFromFloat(r.StopGainPercentage)) {
		return ReasonStopGain
	}
	if r.StopLossPercentage > 0 && pct.LessThanOrEqual(decimal.NewFromFloat(-r.StopLossPercentage)) {
		return ReasonStopLoss
	}
	return ""
}

const (
	ReasonStopGain = "StopGain"
	ReasonStopLoss = "StopLoss"
	ReasonSignal   = "Signal"
)

// Position is a long position. Values handed out by the Manager are copies.
type Position struct {
	ID     int64
	Pair   market.CurrencyPair
	Amount decimal.Decimal // base currency
	Status Status
	Rules  Rules

	OpenOrderID  string
	CloseOrderID string

	// RequestedPrice is the price seen when the entry was decided.
	RequestedPrice decimal.Decimal
	EntryPrice     decimal.Decimal
	ExitPrice      decimal.Decimal
	LastPrice      decimal.Decimal
	OpenFee        decimal.Decimal
	CloseFee       decimal.Decimal

	CreatedAt   time.Time
	OpenedAt    time.Time
	ClosedAt    time.Time
	CloseReason string
}

// entry is the fill price, or the requested price before the fill arrived.
func (p Position) entry() decimal.Decimal {
	if p.EntryPrice.IsPositive() {
		return p.EntryPrice
	}
	return p.RequestedPrice
}

// GainPercentage returns (price - entry) / entry * 100.
func (p Position) GainPercentage(price decimal.Decimal) decimal.Decimal {
	entry := p.entry()
	if !entry.IsPositive() {
		return decimal.Zero
	}
	return price.Sub(entry).Div(entry).Mul(hundred)
}

// Fees is the total fee paid so far, in quote currency.
func (p Position) Fees() decimal.Decimal {
	return p.OpenFee.Add(p.CloseFee)
}

// Gain is the realized result of a closed position, in its quote currency.
type Gain struct {
	Currency   market.Currency
	Percentage decimal.Decimal
	Amount     decimal.Decimal
	Fees       decimal.Decimal
	EntryValue decimal.Decimal
}

// RealizedGain is only defined once the position is CLOSED.
func (p Position) RealizedGain() (Gain, bool) {
	if p.Status != Closed {
		return Gain{}, false
	}
	entry := p.entry()
	return Gain{
		Currency:   p.Pair.Quote,
		Percentage: p.GainPercentage(p.ExitPrice),
		Amount:     p.Amount.Mul(p.ExitPrice.Sub(entry)),
		Fees:       p.Fees(),
		EntryValue: p.Amount.Mul(entry),
	}, true
}

// Description is the one-line summary used in reports.
func (p Position) Description() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Long position n°%d of %s %s (%s) - %s",
		p.ID, p.Amount.String(), p.Pair, p.Rules, statusTitle(p.Status))

	switch p.Status {
	case Opened:
		if p.LastPrice.IsPositive() {
			fmt.Fprintf(&b, " - Last gain calculated %s %%", p.GainPercentage(p.LastPrice).StringFixedBank(2))
		}
	case Closed:
		if g, ok := p.RealizedGain(); ok {
			fmt.Fprintf(&b, " - Gain %s %% (%s)", g.Percentage.StringFixedBank(2), p.CloseReason)
		}
	}
	return b.String()
}

func statusTitle(s Status) string {
	str := strings.ToLower(s.String())
	return strings.ToUpper(str[:1]) + str[1:]
}

func trimFloat(f float64) string {
	return decimal.NewFromFloat(f).String()
}
