package journal

import (
	"testing"
	"time"

	"github.com/rustyeddy/smatrader/market"
	"github.com/rustyeddy/smatrader/position"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func closedPosition() position.Position {
	return position.Position{
		ID:           1,
		Pair:         market.NewPair(market.BTC, market.USDT),
		Amount:       dec("0.5"),
		Status:       position.Closed,
		EntryPrice:   dec("100"),
		ExitPrice:    dec("104.5"),
		OpenFee:      dec("0.05"),
		CloseFee:     dec("0.05"),
		OpenedAt:     time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC),
		ClosedAt:     time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
		CloseReason:  position.ReasonStopGain,
		OpenOrderID:  "01HOPEN",
		CloseOrderID: "01HCLOSE",
	}
}

func TestFromPosition(t *testing.T) {
	rec, ok := FromPosition(closedPosition())
	require.True(t, ok)
	assert.Equal(t, int64(1), rec.PositionID)
	assert.Equal(t, "BTC/USDT", rec.Pair)
	assert.Equal(t, "2.25", rec.Gain.String())
	assert.Equal(t, "4.5", rec.GainPercentage.String())
	assert.Equal(t, "0.1", rec.Fees.String())
	assert.Equal(t, "StopGain", rec.Reason)

	p := closedPosition()
	p.Status = position.Opened
	_, ok = FromPosition(p)
	assert.False(t, ok)
}

type memJournal struct {
	recs []PositionRecord
}

func (m *memJournal) RecordPosition(r PositionRecord) error {
	m.recs = append(m.recs, r)
	return nil
}

func (m *memJournal) Close() error { return nil }

func TestRecorderOnlyRecordsClosed(t *testing.T) {
	mem := &memJournal{}
	r := Recorder{J: mem}

	p := closedPosition()
	r.OnPositionStatusChanged(position.StatusChange{Position: p, From: position.Opened, To: position.Closing})
	assert.Empty(t, mem.recs)

	r.OnPositionStatusChanged(position.StatusChange{Position: p, From: position.Closing, To: position.Closed})
	require.Len(t, mem.recs, 1)
	assert.Equal(t, int64(1), mem.recs[0].PositionID)
}

func TestDayRange(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	start, end := DayRange(time.Date(2024, 1, 2, 23, 30, 0, 0, time.UTC), paris)
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, paris), start)
	assert.Equal(t, time.Date(2024, 1, 4, 0, 0, 0, 0, paris), end)

	start, _ = DayRange(time.Date(2024, 1, 2, 23, 30, 0, 0, time.UTC), nil)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), start)
}
