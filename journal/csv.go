package journal

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

var csvHeader = []string{
	"position_id", "pair", "amount", "entry_price", "exit_price",
	"gain", "gain_percentage", "fees", "open_time", "close_time",
	"reason", "open_order_id", "close_order_id",
}

type CSV struct {
	mu sync.Mutex
	w  *csv.Writer
	f  *os.File
}

// NewCSV creates (or truncates) path and writes the header row.
func NewCSV(path string) (*CSV, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create journal %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return nil, err
	}

	return &CSV{w: w, f: f}, nil
}

func (j *CSV) RecordPosition(r PositionRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	err := j.w.Write([]string{
		strconv.FormatInt(r.PositionID, 10),
		r.Pair,
		r.Amount.String(),
		r.EntryPrice.String(),
		r.ExitPrice.String(),
		r.Gain.String(),
		r.GainPercentage.String(),
		r.Fees.String(),
		r.OpenTime.UTC().Format(time.RFC3339),
		r.CloseTime.UTC().Format(time.RFC3339),
		r.Reason,
		r.OpenOrderID,
		r.CloseOrderID,
	})
	if err != nil {
		return err
	}
	j.w.Flush()
	return j.w.Error()
}

func (j *CSV) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.w.Flush()
	if err := j.w.Error(); err != nil {
		j.f.Close()
		return err
	}
	return j.f.Close()
}
