// Package journal keeps a permanent record of closed positions.
package journal

import (
	"time"

	"github.com/rustyeddy/smatrader/position"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PositionRecord is one closed position. Money is in the quote currency.
type PositionRecord struct {
	PositionID     int64
	Pair           string
	Amount         decimal.Decimal
	EntryPrice     decimal.Decimal
	ExitPrice      decimal.Decimal
	Gain           decimal.Decimal
	GainPercentage decimal.Decimal
	Fees           decimal.Decimal
	OpenTime       time.Time
	CloseTime      time.Time
	Reason         string
	OpenOrderID    string
	CloseOrderID   string
}

// FromPosition builds the record of a CLOSED position.
func FromPosition(p position.Position) (PositionRecord, bool) {
	g, ok := p.RealizedGain()
	if !ok {
		return PositionRecord{}, false
	}
	return PositionRecord{
		PositionID:     p.ID,
		Pair:           p.Pair.String(),
		Amount:         p.Amount,
		EntryPrice:     p.EntryPrice,
		ExitPrice:      p.ExitPrice,
		Gain:           g.Amount,
		GainPercentage: g.Percentage.Round(2),
		Fees:           g.Fees,
		OpenTime:       p.OpenedAt.UTC(),
		CloseTime:      p.ClosedAt.UTC(),
		Reason:         p.CloseReason,
		OpenOrderID:    p.OpenOrderID,
		CloseOrderID:   p.CloseOrderID,
	}, true
}

type Journal interface {
	RecordPosition(PositionRecord) error
	Close() error
}

// Recorder writes every position that reaches CLOSED to a Journal. It is a
// position.Listener.
type Recorder struct {
	J   Journal
	Log *zap.Logger
}

func (r Recorder) OnPositionStatusChanged(c position.StatusChange) {
	if c.To != position.Closed {
		return
	}
	rec, ok := FromPosition(c.Position)
	if !ok {
		return
	}
	if err := r.J.RecordPosition(rec); err != nil && r.Log != nil {
		r.Log.Error("journal write failed", zap.Int64("position", rec.PositionID), zap.Error(err))
	}
}
