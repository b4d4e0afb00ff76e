package indicators

import (
	"fmt"

	"github.com/rustyeddy/smatrader/market"
)

// SimpleMA is a streaming Simple Moving Average over the last period closes.
// Updates are O(1): the window is a ring buffer and the sum is maintained
// by adding the new close and subtracting the evicted one.
type SimpleMA struct {
	period int
	closes []float64
	next   int
	count  int
	sum    float64
}

// NewMA creates a new Simple Moving Average indicator with the given period
func NewMA(period int) *SimpleMA {
	if period <= 0 {
		period = 1
	}
	return &SimpleMA{
		period: period,
		closes: make([]float64, period),
	}
}

func (m *SimpleMA) Name() string {
	return fmt.Sprintf("SMA(%d)", m.period)
}

func (m *SimpleMA) Warmup() int {
	return m.period
}

func (m *SimpleMA) Reset() {
	for i := range m.closes {
		m.closes[i] = 0
	}
	m.next = 0
	m.count = 0
	m.sum = 0
}

func (m *SimpleMA) Update(b market.Bar) (float64, bool) {
	if m.count == m.period {
		m.sum -= m.closes[m.next]
	} else {
		m.count++
	}
	m.closes[m.next] = b.Close
	m.sum += b.Close
	m.next = (m.next + 1) % m.period

	if !m.Ready() {
		return 0, false
	}
	return m.Value(), true
}

func (m *SimpleMA) Ready() bool {
	return m.count >= m.period
}

func (m *SimpleMA) Value() float64 {
	if !m.Ready() {
		return 0
	}
	return m.sum / float64(m.period)
}

// ExponentialMA is a streaming Exponential Moving Average indicator
type ExponentialMA struct {
	period     int
	multiplier float64
	ema        float64
	count      int
	warmupSum  float64
}

// NewEMA creates a new Exponential Moving Average indicator with the given period
func NewEMA(period int) *ExponentialMA {
	if period <= 0 {
		period = 1
	}
	return &ExponentialMA{
		period:     period,
		multiplier: 2.0 / float64(period+1),
	}
}

func (e *ExponentialMA) Name() string {
	return fmt.Sprintf("EMA(%d)", e.period)
}

func (e *ExponentialMA) Warmup() int {
	return e.period
}

func (e *ExponentialMA) Reset() {
	e.ema = 0
	e.count = 0
	e.warmupSum = 0
}

func (e *ExponentialMA) Update(b market.Bar) (float64, bool) {
	if e.count < e.period {
		// Seed with the SMA of the first period closes.
		e.warmupSum += b.Close
		e.count++
		if e.count == e.period {
			e.ema = e.warmupSum / float64(e.period)
		}
	} else {
		e.ema = (b.Close-e.ema)*e.multiplier + e.ema
	}

	if !e.Ready() {
		return 0, false
	}
	return e.ema, true
}

func (e *ExponentialMA) Ready() bool {
	return e.count >= e.period
}

func (e *ExponentialMA) Value() float64 {
	if !e.Ready() {
		return 0
	}
	return e.ema
}

// New returns the indicator registered under kind ("sma" or "ema").
func New(kind string, period int) (ValueIndicator, error) {
	switch kind {
	case "", "sma":
		return NewMA(period), nil
	case "ema":
		return NewEMA(period), nil
	default:
		return nil, fmt.Errorf("unknown indicator %q (supported: sma, ema)", kind)
	}
}
