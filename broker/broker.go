// Package broker defines the boundary with the external trading service:
// order submission, execution confirmations and account balances.
package broker

import (
	"context"
	"errors"
	"time"

	"github.com/rustyeddy/smatrader/market"
	"github.com/shopspring/decimal"
)

// ErrInsufficientFunds is returned, wrapped, when an account cannot cover an
// order. Executors and the position manager share it.
var ErrInsufficientFunds = errors.New("insufficient funds")

type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Order asks the trading service to buy (open a long) or sell (close it).
type Order struct {
	ClientID   string
	PositionID int64
	Pair       market.CurrencyPair
	Side       Side
	Amount     decimal.Decimal // base currency
	Time       time.Time
}

// Fill is what the trading service reports back once an order executed.
type Fill struct {
	Price decimal.Decimal
	Fee   decimal.Decimal // quote currency
	Time  time.Time
}

// Executor submits orders. Submission never blocks on execution: the result
// arrives later through a Confirmer.
type Executor interface {
	SubmitOrder(ctx context.Context, o Order) error
}

// Confirmer receives execution confirmations.
type Confirmer interface {
	OnExecutionConfirmed(positionID int64, f Fill) error
}

// Balances maps a currency to its available amount.
type Balances map[market.Currency]decimal.Decimal

// Get returns the available amount, zero when the currency is unknown.
func (b Balances) Get(c market.Currency) decimal.Decimal {
	if v, ok := b[c]; ok {
		return v
	}
	return decimal.Zero
}

// AccountSource returns the current account snapshot.
type AccountSource interface {
	Balances(ctx context.Context) (Balances, error)
}
