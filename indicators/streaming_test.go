package indicators

import (
	"testing"
	"time"

	"github.com/rustyeddy/smatrader/market"
	"github.com/stretchr/testify/assert"
)

func TestSimpleMAStreaming(t *testing.T) {
	bars := createTestBars()

	t.Run("basic functionality", func(t *testing.T) {
		ma := NewMA(3)
		assert.Equal(t, "SMA(3)", ma.Name())
		assert.Equal(t, 3, ma.Warmup())
		assert.False(t, ma.Ready())
		assert.Equal(t, 0.0, ma.Value())

		_, ok := ma.Update(bars[0])
		assert.False(t, ok)
		_, ok = ma.Update(bars[1])
		assert.False(t, ok)

		v, ok := ma.Update(bars[2])
		assert.True(t, ok)
		assert.InDelta(t, (102.0+105.0+106.0)/3.0, v, 0.001)

		// Fourth bar evicts the first.
		v, ok = ma.Update(bars[3])
		assert.True(t, ok)
		assert.InDelta(t, (105.0+106.0+108.0)/3.0, v, 0.001)
		assert.InDelta(t, v, ma.Value(), 1e-12)
	})

	t.Run("reset functionality", func(t *testing.T) {
		ma := NewMA(2)
		ma.Update(bars[0])
		ma.Update(bars[1])
		assert.True(t, ma.Ready())

		ma.Reset()
		assert.False(t, ma.Ready())
		assert.Equal(t, 0.0, ma.Value())

		_, ok := ma.Update(bars[2])
		assert.False(t, ok)
	})

	t.Run("matches batch calculation", func(t *testing.T) {
		ma := NewMA(4)
		for i, b := range bars {
			v, ok := ma.Update(b)
			if i+1 < 4 {
				assert.False(t, ok)
				continue
			}
			want, err := batchMA(bars[:i+1], 4)
			assert.NoError(t, err)
			assert.InDelta(t, want, v, 1e-9)
		}
	})
}

func TestSimpleMA24Window(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ma := NewMA(24)

	var all []market.Bar
	for i := 0; i < 60; i++ {
		b := market.Bar{Time: base.Add(time.Duration(i) * time.Hour), Close: 1000 + float64(i*i%37)}
		all = append(all, b)

		v, ok := ma.Update(b)
		if len(all) < 24 {
			assert.False(t, ok, "bar %d", i)
			continue
		}
		assert.True(t, ok, "bar %d", i)

		sum := 0.0
		for _, x := range all[len(all)-24:] {
			sum += x.Close
		}
		assert.InDelta(t, sum/24, v, 1e-9, "bar %d", i)
	}
}

func TestExponentialMAStreaming(t *testing.T) {
	bars := createTestBars()

	ema := NewEMA(5)
	assert.Equal(t, "EMA(5)", ema.Name())
	assert.Equal(t, 5, ema.Warmup())

	for i, b := range bars {
		v, ok := ema.Update(b)
		if i < 4 {
			assert.False(t, ok)
			assert.Equal(t, 0.0, ema.Value())
			continue
		}
		want, err := batchEMA(bars[:i+1], 5)
		assert.NoError(t, err)
		assert.InDelta(t, want, v, 1e-9)
	}

	ema.Reset()
	assert.False(t, ema.Ready())
}
