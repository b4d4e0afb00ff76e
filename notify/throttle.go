package notify

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Throttled bounds how often next is called. Send waits for a token, so a
// burst of status reports is spread out rather than dropped.
type Throttled struct {
	next    Sender
	limiter *rate.Limiter
}

// NewThrottled allows burst messages at once and one every interval after.
func NewThrottled(next Sender, interval time.Duration, burst int) *Throttled {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Throttled{next: next, limiter: rate.NewLimiter(limit, burst)}
}

func (t *Throttled) Send(ctx context.Context, m Message) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("throttle %q: %w", m.Subject, err)
	}
	return t.next.Send(ctx, m)
}
