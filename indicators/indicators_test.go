package indicators

import (
	"testing"
	"time"

	"github.com/rustyeddy/smatrader/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestBars() []market.Bar {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	closes := []float64{102, 105, 106, 108, 110, 111, 113, 114, 116, 118}
	bars := make([]market.Bar, len(closes))
	for i, c := range closes {
		bars[i] = market.Bar{Time: base.Add(time.Duration(i) * time.Hour), Close: c}
	}
	return bars
}

func TestBatchMAReference(t *testing.T) {
	ma, err := batchMA(createTestBars(), 5)
	require.NoError(t, err)
	// Last 5 closes: 111,113,114,116,118 => 572/5 = 114.4
	assert.InDelta(t, 114.4, ma, 0.001)

	_, err = batchMA(createTestBars()[:3], 5)
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	ind, err := New("sma", 24)
	require.NoError(t, err)
	assert.Equal(t, "SMA(24)", ind.Name())

	ind, err = New("ema", 12)
	require.NoError(t, err)
	assert.Equal(t, "EMA(12)", ind.Name())

	_, err = New("rsi", 14)
	assert.Error(t, err)
}
