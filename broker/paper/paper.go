// Package paper is an in-memory trading service. It fills every order at the
// latest known close and moves the account balances accordingly.
package paper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rustyeddy/smatrader/broker"
	"github.com/rustyeddy/smatrader/market"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrNoPrice             = errors.New("no price for pair")
	ErrInsufficientBalance = fmt.Errorf("insufficient balance: %w", broker.ErrInsufficientFunds)
)

// Execution is a filled order.
type Execution struct {
	Order broker.Order
	Fill  broker.Fill
}

type quote struct {
	price decimal.Decimal
	time  time.Time
}

type Broker struct {
	mu         sync.Mutex
	balances   broker.Balances
	prices     map[market.CurrencyPair]quote
	executions []Execution
	confirmer  broker.Confirmer

	feeRate decimal.Decimal
	async   bool
	wg      sync.WaitGroup
	log     *zap.Logger
}

type Option func(*Broker)

// WithFeeRate charges rate * traded value on every fill, in quote currency.
func WithFeeRate(rate decimal.Decimal) Option {
	return func(b *Broker) { b.feeRate = rate }
}

// WithAsync confirms executions from a goroutine instead of from SubmitOrder.
func WithAsync() Option {
	return func(b *Broker) { b.async = true }
}

func WithLogger(l *zap.Logger) Option {
	return func(b *Broker) {
		if l != nil {
			b.log = l
		}
	}
}

func New(initial broker.Balances, opts ...Option) *Broker {
	b := &Broker{
		balances: make(broker.Balances, len(initial)),
		prices:   make(map[market.CurrencyPair]quote),
		log:      zap.NewNop(),
	}
	for c, v := range initial {
		b.balances[c] = v
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// SetConfirmer sets who is told about executions, normally a position.Manager.
func (b *Broker) SetConfirmer(c broker.Confirmer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmer = c
}

// UpdatePrice records the latest close of pair.
func (b *Broker) UpdatePrice(pair market.CurrencyPair, price decimal.Decimal, at time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.prices[pair] = quote{price: price, time: at}
}

// OnBar records the bar close as the latest price of pair.
func (b *Broker) OnBar(pair market.CurrencyPair, bar market.Bar) {
	b.UpdatePrice(pair, decimal.NewFromFloat(bar.Close), bar.Time)
}

func (b *Broker) Balances(ctx context.Context) (broker.Balances, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(broker.Balances, len(b.balances))
	for c, v := range b.balances {
		out[c] = v
	}
	return out, nil
}

func (b *Broker) SubmitOrder(ctx context.Context, o broker.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !o.Amount.IsPositive() {
		return fmt.Errorf("order %s: amount must be positive", o.ClientID)
	}

	b.mu.Lock()
	q, ok := b.prices[o.Pair]
	if !ok {
		b.mu.Unlock()
		return fmt.Errorf("order %s: %s: %w", o.ClientID, o.Pair, ErrNoPrice)
	}

	value := o.Amount.Mul(q.price)
	fee := value.Mul(b.feeRate)
	base, quoteBal := b.balances.Get(o.Pair.Base), b.balances.Get(o.Pair.Quote)

	switch o.Side {
	case broker.Buy:
		cost := value.Add(fee)
		if quoteBal.LessThan(cost) {
			b.mu.Unlock()
			return fmt.Errorf("order %s: need %s %s, have %s: %w", o.ClientID, cost, o.Pair.Quote, quoteBal, ErrInsufficientBalance)
		}
		b.balances[o.Pair.Quote] = quoteBal.Sub(cost)
		b.balances[o.Pair.Base] = base.Add(o.Amount)
	case broker.Sell:
		if base.LessThan(o.Amount) {
			b.mu.Unlock()
			return fmt.Errorf("order %s: need %s %s, have %s: %w", o.ClientID, o.Amount, o.Pair.Base, base, ErrInsufficientBalance)
		}
		b.balances[o.Pair.Base] = base.Sub(o.Amount)
		b.balances[o.Pair.Quote] = quoteBal.Add(value.Sub(fee))
	default:
		b.mu.Unlock()
		return fmt.Errorf("order %s: unknown side %q", o.ClientID, o.Side)
	}

	at := q.time
	if at.IsZero() {
		at = time.Now()
	}
	fill := broker.Fill{Price: q.price, Fee: fee, Time: at}
	b.executions = append(b.executions, Execution{Order: o, Fill: fill})
	confirmer := b.confirmer
	b.mu.Unlock()

	b.log.Info("order filled",
		zap.String("order", o.ClientID),
		zap.Int64("position", o.PositionID),
		zap.String("side", string(o.Side)),
		zap.Stringer("amount", o.Amount),
		zap.Stringer("price", fill.Price),
		zap.Stringer("fee", fill.Fee))

	if confirmer == nil {
		return nil
	}
	if b.async {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			b.confirm(confirmer, o.PositionID, fill)
		}()
		return nil
	}
	b.confirm(confirmer, o.PositionID, fill)
	return nil
}

// Wait blocks until every asynchronous confirmation has been delivered.
func (b *Broker) Wait() {
	b.wg.Wait()
}

// Executions returns a copy of every fill so far.
func (b *Broker) Executions() []Execution {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Execution, len(b.executions))
	copy(out, b.executions)
	return out
}

func (b *Broker) confirm(c broker.Confirmer, positionID int64, f broker.Fill) {
	if err := c.OnExecutionConfirmed(positionID, f); err != nil {
		b.log.Warn("execution confirmation rejected", zap.Int64("position", positionID), zap.Error(err))
	}
}
