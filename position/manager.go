package position

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rustyeddy/smatrader/broker"
	"github.com/rustyeddy/smatrader/id"
	"github.com/rustyeddy/smatrader/market"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StatusChange is published after every transition. Position is a copy taken
// right after the transition.
type StatusChange struct {
	Position Position
	From     Status
	To       Status
}

// Listener is notified of status changes. Listeners are called after the
// manager lock is released, in registration order, on the goroutine that
// caused the transition.
type Listener interface {
	OnPositionStatusChanged(StatusChange)
}

// ListenerFunc adapts a function to a Listener.
type ListenerFunc func(StatusChange)

func (f ListenerFunc) OnPositionStatusChanged(c StatusChange) { f(c) }

// OpenRequest describes a new long position.
type OpenRequest struct {
	Pair   market.CurrencyPair
	Amount decimal.Decimal // base currency
	Rules  Rules
	Price  decimal.Decimal // price used to check funds
	Time   time.Time
}

// Manager owns all positions of a strategy.
//
// Transitions are compare-and-set on the status under m.mu, so a risk-driven
// and a signal-driven close racing for the same position resolve to exactly
// one CLOSING transition. Order submission and listener callbacks happen
// outside the lock; an Executor may confirm synchronously from SubmitOrder.
type Manager struct {
	mu        sync.RWMutex
	positions map[int64]*Position
	nextID    int64
	listeners []Listener

	exec     broker.Executor
	accounts broker.AccountSource
	log      *zap.Logger
}

type Option func(*Manager)

func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

func NewManager(exec broker.Executor, accounts broker.AccountSource, opts ...Option) *Manager {
	m := &Manager{
		positions: make(map[int64]*Position),
		exec:      exec,
		accounts:  accounts,
		log:       zap.NewNop(),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// AddListener registers l for every later status change.
func (m *Manager) AddListener(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// CanOpen checks the account snapshot: the quote balance must cover
// amount * price.
func (m *Manager) CanOpen(ctx context.Context, pair market.CurrencyPair, amount, price decimal.Decimal) error {
	if m.accounts == nil {
		return fmt.Errorf("no account source: %w", ErrInsufficientFunds)
	}
	bal, err := m.accounts.Balances(ctx)
	if err != nil {
		return fmt.Errorf("read balances: %w", err)
	}
	cost := amount.Mul(price)
	if avail := bal.Get(pair.Quote); avail.LessThan(cost) {
		return fmt.Errorf("need %s %s, have %s: %w", cost, pair.Quote, avail, ErrInsufficientFunds)
	}
	return nil
}

// Open creates a position in OPENING and asks the executor to buy.
func (m *Manager) Open(ctx context.Context, req OpenRequest) (int64, error) {
	if !req.Amount.IsPositive() {
		return 0, fmt.Errorf("open %s: amount must be positive, got %s", req.Pair, req.Amount)
	}
	if !req.Price.IsPositive() {
		return 0, fmt.Errorf("open %s: price must be positive, got %s", req.Pair, req.Price)
	}
	if m.HasActive(req.Pair) {
		return 0, fmt.Errorf("open %s: %w", req.Pair, ErrDuplicatePosition)
	}
	if err := m.CanOpen(ctx, req.Pair, req.Amount, req.Price); err != nil {
		return 0, fmt.Errorf("open %s: %w", req.Pair, err)
	}

	m.mu.Lock()
	// Re-check under the lock; the balance check above ran without it.
	for _, p := range m.positions {
		if p.Pair == req.Pair && p.Status.Active() {
			m.mu.Unlock()
			return 0, fmt.Errorf("open %s: position %d is %s: %w", req.Pair, p.ID, p.Status, ErrDuplicatePosition)
		}
	}
	m.nextID++
	p := &Position{
		ID:             m.nextID,
		Pair:           req.Pair,
		Amount:         req.Amount,
		Status:         Opening,
		Rules:          req.Rules,
		OpenOrderID:    id.At(orderTime(req.Time)),
		RequestedPrice: req.Price,
		LastPrice:      req.Price,
		CreatedAt:      req.Time,
	}
	m.positions[p.ID] = p
	snap := *p
	m.mu.Unlock()

	m.log.Info("position opening",
		zap.Int64("position", snap.ID),
		zap.Stringer("pair", snap.Pair),
		zap.Stringer("amount", snap.Amount),
		zap.Stringer("price", snap.RequestedPrice))
	m.publish(StatusChange{Position: snap, From: New, To: Opening})

	if m.exec == nil {
		return snap.ID, nil
	}
	err := m.exec.SubmitOrder(ctx, broker.Order{
		ClientID:   snap.OpenOrderID,
		PositionID: snap.ID,
		Pair:       snap.Pair,
		Side:       broker.Buy,
		Amount:     snap.Amount,
		Time:       req.Time,
	})
	if err != nil {
		// Nothing reached the market; forget the position so the pair is free again.
		m.mu.Lock()
		if cur, ok := m.positions[snap.ID]; ok && cur.Status == Opening {
			delete(m.positions, snap.ID)
		}
		m.mu.Unlock()
		return 0, fmt.Errorf("submit open order for position %d: %w", snap.ID, err)
	}
	return snap.ID, nil
}

// OnExecutionConfirmed moves OPENING to OPENED or CLOSING to CLOSED.
func (m *Manager) OnExecutionConfirmed(positionID int64, f broker.Fill) error {
	m.mu.Lock()
	p, ok := m.positions[positionID]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("confirm position %d: %w", positionID, ErrUnknownPosition)
	}

	from := p.Status
	switch from {
	case Opening:
		p.Status = Opened
		if f.Price.IsPositive() {
			p.EntryPrice = f.Price
		} else {
			p.EntryPrice = p.RequestedPrice
		}
		p.OpenFee = f.Fee
		p.OpenedAt = f.Time
	case Closing:
		p.Status = Closed
		if f.Price.IsPositive() {
			p.ExitPrice = f.Price
		} else {
			p.ExitPrice = p.LastPrice
		}
		p.CloseFee = f.Fee
		p.ClosedAt = f.Time
	default:
		m.mu.Unlock()
		return fmt.Errorf("confirm position %d: status is %s: %w", positionID, from, ErrInvalidTransition)
	}
	snap := *p
	m.mu.Unlock()

	m.log.Info("position confirmed",
		zap.Int64("position", snap.ID),
		zap.Stringer("status", snap.Status),
		zap.Stringer("price", f.Price),
		zap.Stringer("fee", f.Fee))
	m.publish(StatusChange{Position: snap, From: from, To: snap.Status})
	return nil
}

// CheckRisk records price as the last price of the position and closes it
// when a stop-gain or stop-loss rule fires. It reports whether this call
// started the close. Positions not OPENED are left alone.
func (m *Manager) CheckRisk(ctx context.Context, positionID int64, price decimal.Decimal, at time.Time) (bool, error) {
	m.mu.Lock()
	p, ok := m.positions[positionID]
	if !ok {
		m.mu.Unlock()
		return false, fmt.Errorf("check risk of position %d: %w", positionID, ErrUnknownPosition)
	}
	if p.Status != Opened {
		m.mu.Unlock()
		return false, nil
	}
	p.LastPrice = price

	reason := p.Rules.trigger(p.GainPercentage(price))
	if reason == "" {
		m.mu.Unlock()
		return false, nil
	}
	snap := m.beginCloseLocked(p, reason, at)
	m.mu.Unlock()

	return true, m.afterClose(ctx, snap, at)
}

// CheckRiskForPair runs CheckRisk for every OPENED position of pair and
// returns the ids it started closing.
func (m *Manager) CheckRiskForPair(ctx context.Context, pair market.CurrencyPair, price decimal.Decimal, at time.Time) ([]int64, error) {
	var ids []int64
	for _, p := range m.Positions() {
		if p.Pair == pair && p.Status == Opened {
			ids = append(ids, p.ID)
		}
	}

	var closed []int64
	var errs []error
	for _, pid := range ids {
		started, err := m.CheckRisk(ctx, pid, price, at)
		if err != nil {
			errs = append(errs, err)
		}
		if started {
			closed = append(closed, pid)
		}
	}
	return closed, errors.Join(errs...)
}

// Close starts a signal-driven close. It shares the guarded OPENED -> CLOSING
// transition with CheckRisk, so whichever runs first wins and the other is a
// no-op. It reports whether this call started the close.
func (m *Manager) Close(ctx context.Context, positionID int64, reason string, at time.Time) (bool, error) {
	if reason == "" {
		reason = ReasonSignal
	}

	m.mu.Lock()
	p, ok := m.positions[positionID]
	if !ok {
		m.mu.Unlock()
		return false, fmt.Errorf("close position %d: %w", positionID, ErrUnknownPosition)
	}
	if p.Status != Opened {
		m.mu.Unlock()
		return false, nil
	}
	snap := m.beginCloseLocked(p, reason, at)
	m.mu.Unlock()

	return true, m.afterClose(ctx, snap, at)
}

func (m *Manager) beginCloseLocked(p *Position, reason string, at time.Time) Position {
	p.Status = Closing
	p.CloseReason = reason
	p.CloseOrderID = id.At(orderTime(at))
	return *p
}

func (m *Manager) afterClose(ctx context.Context, snap Position, at time.Time) error {
	m.log.Info("position closing",
		zap.Int64("position", snap.ID),
		zap.String("reason", snap.CloseReason),
		zap.Stringer("price", snap.LastPrice))
	m.publish(StatusChange{Position: snap, From: Opened, To: Closing})

	if m.exec == nil {
		return nil
	}
	err := m.exec.SubmitOrder(ctx, broker.Order{
		ClientID:   snap.CloseOrderID,
		PositionID: snap.ID,
		Pair:       snap.Pair,
		Side:       broker.Sell,
		Amount:     snap.Amount,
		Time:       at,
	})
	if err != nil {
		// The position stays CLOSING; statuses never go backwards.
		return fmt.Errorf("submit close order for position %d: %w", snap.ID, err)
	}
	return nil
}

// Get returns a copy of the position.
func (m *Manager) Get(positionID int64) (Position, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.positions[positionID]
	if !ok {
		return Position{}, false
	}
	return *p, true
}

// Positions returns a point-in-time copy of every position, ordered by id.
func (m *Manager) Positions() []Position {
	m.mu.RLock()
	out := make([]Position, 0, len(m.positions))
	for _, p := range m.positions {
		out = append(out, *p)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// WithStatus returns the positions currently in status s, ordered by id.
func (m *Manager) WithStatus(s Status) []Position {
	var out []Position
	for _, p := range m.Positions() {
		if p.Status == s {
			out = append(out, p)
		}
	}
	return out
}

// HasActive reports whether pair has an OPENING or OPENED position.
func (m *Manager) HasActive(pair market.CurrencyPair) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.positions {
		if p.Pair == pair && p.Status.Active() {
			return true
		}
	}
	return false
}

func (m *Manager) publish(c StatusChange) {
	m.mu.RLock()
	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.RUnlock()

	for _, l := range listeners {
		l.OnPositionStatusChanged(c)
	}
}

func orderTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
