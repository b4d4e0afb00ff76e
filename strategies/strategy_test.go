package strategies

import (
	"context"
	"testing"
	"time"

	"github.com/rustyeddy/smatrader/market"
	"github.com/rustyeddy/smatrader/position"
	"github.com/rustyeddy/smatrader/signal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var btcUSDT = market.NewPair(market.BTC, market.USDT)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func bar(i int, close float64) market.Bar {
	return market.Bar{Time: t0.Add(time.Duration(i) * time.Hour), Open: close, High: close, Low: close, Close: close}
}

type fakeActions struct {
	open    bool
	entered []market.Bar
	exited  []string
}

func (f *fakeActions) HasOpen() bool { return f.open }

func (f *fakeActions) EnterLong(_ context.Context, b market.Bar) error {
	f.entered = append(f.entered, b)
	f.open = true
	return nil
}

func (f *fakeActions) ExitLong(_ context.Context, _ market.Bar, reason string) error {
	f.exited = append(f.exited, reason)
	f.open = false
	return nil
}

func TestByName(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantName string
		wantErr  bool
	}{
		{"default", Config{Pair: btcUSDT}, "cross(SMA(24))", false},
		{"sma", Config{Name: "SMA-Cross", Pair: btcUSDT, BarCount: 10}, "cross(SMA(10))", false},
		{"ema", Config{Name: "ema-cross", Pair: btcUSDT, BarCount: 20}, "cross(EMA(20))", false},
		{"sma with ema indicator", Config{Name: "sma-cross", Pair: btcUSDT, Indicator: "ema"}, "cross(EMA(24))", false},
		{"noop", Config{Name: "noop", Pair: btcUSDT}, "noop", false},
		{"unknown", Config{Name: "rsi", Pair: btcUSDT}, "", true},
		{"no pair", Config{Name: "sma-cross"}, "", true},
		{"bad indicator", Config{Pair: btcUSDT, Indicator: "wma"}, "", true},
		{"negative bars", Config{Pair: btcUSDT, BarCount: -1}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ByName(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, s.Name())
			assert.Equal(t, btcUSDT, s.RequestedPair())
		})
	}
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"ema-cross", "noop", "sma-cross"}, Names())
}

func TestSMACrossWarmup(t *testing.T) {
	s := NewSMACross(btcUSDT, 24)
	assert.Equal(t, 24, s.MaximumBarCount())

	for i := 0; i < 23; i++ {
		assert.Equal(t, signal.Hold, s.OnBar(bar(i, float64(100+i))))
		_, ready := s.Indicator()
		assert.False(t, ready)
	}

	// 24th bar: average of 100..123 is 111.5, close 123 is above.
	assert.Equal(t, signal.EnterLong, s.OnBar(bar(23, 123)))
	v, ready := s.Indicator()
	assert.True(t, ready)
	assert.InDelta(t, 111.5, v, 1e-9)
}

func TestSMACrossIncreasingBarsEnterOnce(t *testing.T) {
	s := NewSMACross(btcUSDT, 24)
	var enters int
	for i := 0; i < 25; i++ {
		if s.OnBar(bar(i, float64(100+i))) == signal.EnterLong {
			enters++
		}
	}
	assert.Equal(t, 1, enters)
	assert.Equal(t, signal.Above, s.Relation())
}

func TestSMACrossDuplicateBar(t *testing.T) {
	s := NewSMACross(btcUSDT, 3)
	s.OnBar(bar(0, 10))
	s.OnBar(bar(1, 10))
	s.OnBar(bar(2, 10))

	up := bar(3, 20)
	assert.Equal(t, signal.EnterLong, s.OnBar(up))
	assert.Equal(t, signal.Hold, s.OnBar(up))
	assert.Equal(t, signal.Hold, s.OnBar(bar(1, 50)))
	assert.Equal(t, 3, s.Series().Len())
}

func TestSMACrossExitSignal(t *testing.T) {
	s := NewSMACross(btcUSDT, 2)
	s.OnBar(bar(0, 10))
	assert.Equal(t, signal.EnterLong, s.OnBar(bar(1, 12)))
	assert.Equal(t, signal.ExitLong, s.OnBar(bar(2, 8)))
	assert.Equal(t, signal.EnterLong, s.OnBar(bar(3, 20)))
}

func TestSMACrossHooks(t *testing.T) {
	ctx := context.Background()
	a := &fakeActions{}
	s := NewSMACross(btcUSDT, 24)

	require.NoError(t, s.ShouldEnter(ctx, a, bar(0, 1)))
	require.NoError(t, s.ShouldEnter(ctx, a, bar(1, 1)))
	assert.Len(t, a.entered, 1, "second enter skipped while a position is open")

	require.NoError(t, s.ShouldExit(ctx, a, bar(2, 1)))
	assert.Empty(t, a.exited, "exit is a no-op by default")

	s.WithSignalExit()
	require.NoError(t, s.ShouldExit(ctx, a, bar(3, 1)))
	assert.Equal(t, []string{position.ReasonSignal}, a.exited)
}

func TestNoop(t *testing.T) {
	n := NewNoop(btcUSDT, 24)
	a := &fakeActions{}
	assert.Equal(t, signal.Hold, n.OnBar(bar(0, 1)))
	assert.NoError(t, n.ShouldEnter(context.Background(), a, bar(0, 1)))
	assert.NoError(t, n.ShouldExit(context.Background(), a, bar(0, 1)))
	assert.Empty(t, a.entered)
	assert.Equal(t, 24, n.MaximumBarCount())
}
