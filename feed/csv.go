// Package feed reads bars from external sources.
package feed

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/smatrader/market"
)

// Feed yields bars in order. ok is false once the feed is exhausted.
type Feed interface {
	Next() (b market.Bar, ok bool, err error)
}

// CSVBars reads bar rows:
//
//	time,open,high,low,close[,volume]
//
// where time is RFC3339, RFC3339Nano or unix seconds. A header row
// ("time,...") is allowed and empty or short rows are skipped. Bars outside
// [from, to) are dropped when the bounds are set.
type CSVBars struct {
	c    io.Closer
	r    *csv.Reader
	from time.Time
	to   time.Time

	sawFirst bool
	line     int
}

func NewCSVBars(r io.Reader, from, to time.Time) *CSVBars {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.Comment = '#'
	return &CSVBars{r: cr, from: from, to: to}
}

func OpenCSVBars(path string, from, to time.Time) (*CSVBars, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bars %s: %w", path, err)
	}
	b := NewCSVBars(f, from, to)
	b.c = f
	return b, nil
}

func (f *CSVBars) Close() error {
	if f.c != nil {
		return f.c.Close()
	}
	return nil
}

func (f *CSVBars) Next() (market.Bar, bool, error) {
	for {
		row, err := f.r.Read()
		if err == io.EOF {
			return market.Bar{}, false, nil
		}
		if err != nil {
			return market.Bar{}, false, err
		}
		f.line++
		if len(row) == 0 {
			continue
		}

		if !f.sawFirst {
			f.sawFirst = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "time") {
				continue
			}
		}

		b, ok, err := parseBarRow(row)
		if err != nil {
			return market.Bar{}, false, fmt.Errorf("bars row %d: %w", f.line, err)
		}
		if !ok {
			continue
		}
		if !inRange(b.Time, f.from, f.to) {
			continue
		}
		return b, true, nil
	}
}

// Each calls fn for every bar until the feed ends, fn fails or ctx is done.
func Each(ctx context.Context, f Feed, fn func(market.Bar) error) (int, error) {
	n := 0
	for {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		b, ok, err := f.Next()
		if err != nil {
			return n, err
		}
		if !ok {
			return n, nil
		}
		if err := fn(b); err != nil {
			return n, err
		}
		n++
	}
}

func parseBarRow(row []string) (market.Bar, bool, error) {
	if len(row) < 5 {
		return market.Bar{}, false, nil
	}

	ts := strings.TrimSpace(row[0])
	if ts == "" {
		return market.Bar{}, false, nil
	}
	t, err := parseTime(ts)
	if err != nil {
		return market.Bar{}, false, err
	}

	var v [5]float64
	names := [5]string{"open", "high", "low", "close", "volume"}
	for i := 0; i < 5; i++ {
		if i+1 >= len(row) {
			break
		}
		s := strings.TrimSpace(row[i+1])
		if s == "" && i == 4 {
			break
		}
		v[i], err = strconv.ParseFloat(s, 64)
		if err != nil {
			return market.Bar{}, false, fmt.Errorf("bad %s %q: %w", names[i], row[i+1], err)
		}
	}

	return market.Bar{Time: t, Open: v[0], High: v[1], Low: v[2], Close: v[3], Volume: v[4]}, true, nil
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(sec, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("bad time %q", s)
}

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}
