// Package indicators provides streaming technical indicators fed one bar at a time.
package indicators

import "github.com/rustyeddy/smatrader/market"

// Indicator computes a single streaming value from bars.
// It is deterministic and safe to use in live and replayed feeds.
type Indicator interface {
	// Name returns a stable identifier like "SMA(24)" or "EMA(20)".
	Name() string

	// Warmup returns how many updates are needed before Ready() can be true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next *closed* bar and returns the new value.
	// ok is false until the warmup is complete.
	Update(b market.Bar) (value float64, ok bool)

	// Ready reports whether Value() is meaningful (warmup completed).
	Ready() bool
}

type ValueF64 interface {
	// Value returns the current indicator value. If !Ready(), it returns 0;
	// callers should always check Ready().
	Value() float64
}

// ValueIndicator is what strategies compare prices against.
type ValueIndicator interface {
	Indicator
	ValueF64
}
