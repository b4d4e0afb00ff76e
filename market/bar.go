package market

import "time"

// Bar is one OHLCV sample for a fixed interval. Bars are values and are never
// modified once appended to a series.
type Bar struct {
	// Time orders bars and must be set; a zero time only sorts before
	// every other bar.
	Time time.Time

	Open  float64
	High  float64
	Low   float64
	Close float64

	Volume float64
}

// BarSeries keeps the last Capacity bars in arrival order. The oldest bar is
// evicted once the capacity is exceeded.
type BarSeries struct {
	bars  []Bar
	start int
	count int
	last  time.Time
}

func NewBarSeries(capacity int) *BarSeries {
	if capacity <= 0 {
		capacity = 1
	}
	return &BarSeries{bars: make([]Bar, capacity)}
}

// Append adds b to the series. It returns false and leaves the series
// untouched when b is not strictly newer than the last appended bar, which
// is how duplicate and out-of-order deliveries are dropped.
func (s *BarSeries) Append(b Bar) bool {
	if s.count > 0 && !b.Time.After(s.last) {
		return false
	}

	capacity := len(s.bars)
	if s.count < capacity {
		s.bars[(s.start+s.count)%capacity] = b
		s.count++
	} else {
		s.bars[s.start] = b
		s.start = (s.start + 1) % capacity
	}
	s.last = b.Time
	return true
}

func (s *BarSeries) Len() int      { return s.count }
func (s *BarSeries) Capacity() int { return len(s.bars) }
func (s *BarSeries) Full() bool    { return s.count == len(s.bars) }

// At returns the i-th bar, 0 being the oldest kept bar.
func (s *BarSeries) At(i int) (Bar, bool) {
	if i < 0 || i >= s.count {
		return Bar{}, false
	}
	return s.bars[(s.start+i)%len(s.bars)], true
}

// Last returns the most recent bar.
func (s *BarSeries) Last() (Bar, bool) {
	return s.At(s.count - 1)
}

// Bars returns a copy of the kept bars, oldest first.
func (s *BarSeries) Bars() []Bar {
	out := make([]Bar, 0, s.count)
	for i := 0; i < s.count; i++ {
		b, _ := s.At(i)
		out = append(out, b)
	}
	return out
}
