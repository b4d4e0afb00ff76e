package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// DefaultQueueSize is the number of reports an Async sender holds before it
// starts dropping.
const DefaultQueueSize = 32

var (
	ErrQueueFull = errors.New("report queue full")
	ErrClosed    = errors.New("report queue closed")
)

// Async hands messages to one worker goroutine through a bounded queue.
// Send never waits on next: a message that does not fit is dropped and
// reported as ErrQueueFull. Delivery failures are logged by the worker.
type Async struct {
	next  Sender
	queue chan Message
	log   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewAsync starts the worker. Close must be called to stop it.
func NewAsync(next Sender, size int, log *zap.Logger) *Async {
	if size < 1 {
		size = DefaultQueueSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	a := &Async{
		next:   next,
		queue:  make(chan Message, size),
		log:    log,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go a.work()
	return a
}

func (a *Async) work() {
	defer close(a.done)
	for m := range a.queue {
		if err := a.next.Send(a.ctx, m); err != nil {
			a.log.Error("report not delivered", zap.String("subject", m.Subject), zap.Error(err))
			continue
		}
		a.log.Debug("report delivered", zap.String("subject", m.Subject))
	}
}

// Send queues m and returns at once.
func (a *Async) Send(_ context.Context, m Message) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return fmt.Errorf("%q: %w", m.Subject, ErrClosed)
	}
	select {
	case a.queue <- m:
		return nil
	default:
		a.log.Warn("report dropped, queue full", zap.String("subject", m.Subject), zap.Int("size", cap(a.queue)))
		return fmt.Errorf("%q: %w", m.Subject, ErrQueueFull)
	}
}

// Pending returns the number of queued messages.
func (a *Async) Pending() int {
	return len(a.queue)
}

// Close stops accepting messages and waits for the queue to drain. When ctx
// ends first, the message in flight is cancelled and ctx's error returned.
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		a.cancel()
		return nil
	case <-ctx.Done():
		a.cancel()
		return ctx.Err()
	}
}
