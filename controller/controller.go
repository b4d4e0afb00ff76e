// Package controller runs a strategy against the position manager: it feeds
// bars, applies the risk rules, opens positions on entry signals and sends
// the reports.
package controller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rustyeddy/smatrader/broker"
	"github.com/rustyeddy/smatrader/gains"
	"github.com/rustyeddy/smatrader/market"
	"github.com/rustyeddy/smatrader/notify"
	"github.com/rustyeddy/smatrader/position"
	"github.com/rustyeddy/smatrader/report"
	"github.com/rustyeddy/smatrader/signal"
	"github.com/rustyeddy/smatrader/strategies"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PriceSink is told about every bar before the strategy sees it, so a paper
// broker can fill at the bar close.
type PriceSink interface {
	OnBar(pair market.CurrencyPair, b market.Bar)
}

type Options struct {
	// Amount is the base currency amount of every position.
	Amount decimal.Decimal
	Rules  position.Rules

	Prices PriceSink
	Logger *zap.Logger
}

type Controller struct {
	strategy strategies.Strategy
	manager  *position.Manager
	gains    *gains.Aggregator
	accounts broker.AccountSource
	reporter notify.Sender

	opts Options
	log  *zap.Logger

	// bars are processed one at a time
	mu sync.Mutex
	// time of the last accepted bar
	last time.Time
}

// New wires a controller. The aggregator and the controller itself are
// registered as listeners on manager, in that order, so a CLOSED report
// already includes the position's gain.
func New(s strategies.Strategy, m *position.Manager, g *gains.Aggregator, accounts broker.AccountSource, reporter notify.Sender, opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if reporter == nil {
		reporter = notify.Log{L: opts.Logger}
	}
	c := &Controller{
		strategy: s,
		manager:  m,
		gains:    g,
		accounts: accounts,
		reporter: reporter,
		opts:     opts,
		log:      opts.Logger.With(zap.String("strategy", s.Name()), zap.Stringer("pair", s.RequestedPair())),
	}
	m.AddListener(g)
	m.AddListener(c)
	return c
}

// OnBar processes one closed bar. Decision errors are logged and never stop
// the next bar. Bars without a time, and bars not strictly newer than the
// last accepted one, are dropped before they reach prices, risk rules or the
// strategy.
func (c *Controller) OnBar(ctx context.Context, b market.Bar) signal.Signal {
	c.mu.Lock()
	defer c.mu.Unlock()

	if b.Time.IsZero() {
		c.log.Error("bar dropped, no time", zap.Float64("close", b.Close))
		return signal.Hold
	}
	if !c.last.IsZero() && !b.Time.After(c.last) {
		c.log.Debug("bar dropped, not newer than last",
			zap.Time("bar", b.Time),
			zap.Time("last", c.last))
		return signal.Hold
	}
	c.last = b.Time

	pair := c.strategy.RequestedPair()
	if c.opts.Prices != nil {
		c.opts.Prices.OnBar(pair, b)
	}

	sig := c.strategy.OnBar(b)

	price := decimal.NewFromFloat(b.Close)
	closing, err := c.manager.CheckRiskForPair(ctx, pair, price, b.Time)
	if err != nil {
		c.log.Error("risk check failed", zap.Time("bar", b.Time), zap.Error(err))
	}
	for _, id := range closing {
		c.log.Info("risk rule triggered", zap.Int64("position", id), zap.Float64("close", b.Close))
	}

	switch sig {
	case signal.EnterLong:
		c.log.Info("entry signal", zap.Time("bar", b.Time), zap.Float64("close", b.Close))
		c.classify("enter", c.strategy.ShouldEnter(ctx, c, b))
	case signal.ExitLong:
		c.log.Info("exit signal", zap.Time("bar", b.Time), zap.Float64("close", b.Close))
		c.classify("exit", c.strategy.ShouldExit(ctx, c, b))
	}
	return sig
}

func (c *Controller) classify(action string, err error) {
	switch {
	case err == nil:
	case errors.Is(err, position.ErrInsufficientFunds):
		c.log.Info(action+" skipped, not enough funds", zap.Error(err))
	case errors.Is(err, position.ErrDuplicatePosition):
		c.log.Warn(action+" skipped, position already active", zap.Error(err))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.log.Debug(action+" cancelled", zap.Error(err))
	default:
		c.log.Error(action+" failed", zap.Error(err))
	}
}

// HasOpen reports whether the strategy's pair has an active position.
func (c *Controller) HasOpen() bool {
	return c.manager.HasActive(c.strategy.RequestedPair())
}

// EnterLong opens a position of the configured amount at the bar close.
func (c *Controller) EnterLong(ctx context.Context, b market.Bar) error {
	_, err := c.manager.Open(ctx, position.OpenRequest{
		Pair:   c.strategy.RequestedPair(),
		Amount: c.opts.Amount,
		Rules:  c.opts.Rules,
		Price:  decimal.NewFromFloat(b.Close),
		Time:   b.Time,
	})
	return err
}

// ExitLong closes every OPENED position of the pair.
func (c *Controller) ExitLong(ctx context.Context, b market.Bar, reason string) error {
	pair := c.strategy.RequestedPair()
	var errs []error
	for _, p := range c.manager.WithStatus(position.Opened) {
		if p.Pair != pair {
			continue
		}
		if _, err := c.manager.Close(ctx, p.ID, reason, b.Time); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OnPositionStatusChanged sends a report when a position becomes OPENED or
// CLOSED.
func (c *Controller) OnPositionStatusChanged(ch position.StatusChange) {
	if ch.To != position.Opened && ch.To != position.Closed {
		return
	}
	c.SendReport(context.Background(), report.StatusSubject(ch.Position))
}

// RunDailyReport sends the daily report. The scheduler calls it.
func (c *Controller) RunDailyReport(ctx context.Context) {
	c.SendReport(ctx, report.DailySubject)
}

// Report renders the current report body.
func (c *Controller) Report() string {
	return report.Body(c.gains.Snapshot(), c.manager.Positions())
}

// SendReport sends subject with the current report body. Failures are
// logged and not retried.
func (c *Controller) SendReport(ctx context.Context, subject string) {
	msg := notify.Message{Subject: subject, Body: c.Report()}
	if err := c.reporter.Send(ctx, msg); err != nil {
		c.log.Error("report not sent", zap.String("subject", subject), zap.Error(err))
		return
	}
	c.log.Debug("report sent", zap.String("subject", subject))
}

// Balances returns the current account snapshot.
func (c *Controller) Balances(ctx context.Context) (broker.Balances, error) {
	if c.accounts == nil {
		return broker.Balances{}, nil
	}
	return c.accounts.Balances(ctx)
}
