package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type scanner interface {
	Scan(dest ...any) error
}

func scanPosition(s scanner) (PositionRecord, error) {
	var rec PositionRecord
	err := s.Scan(
		&rec.PositionID,
		&rec.Pair,
		&rec.Amount,
		&rec.EntryPrice,
		&rec.ExitPrice,
		&rec.Gain,
		&rec.GainPercentage,
		&rec.Fees,
		&rec.OpenTime,
		&rec.CloseTime,
		&rec.Reason,
		&rec.OpenOrderID,
		&rec.CloseOrderID,
	)
	return rec, err
}

// GetPosition returns a single position record by id.
func (j *SQLite) GetPosition(positionID int64) (PositionRecord, error) {
	row := j.db.QueryRow(`SELECT `+positionColumns+` FROM positions WHERE position_id = ?`, positionID)
	rec, err := scanPosition(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PositionRecord{}, fmt.Errorf("position %d not found", positionID)
		}
		return PositionRecord{}, err
	}
	return rec, nil
}

// ListClosedBetween returns positions whose close_time is within [start, end).
func (j *SQLite) ListClosedBetween(start, end time.Time) ([]PositionRecord, error) {
	rows, err := j.db.Query(`
		SELECT `+positionColumns+`
		FROM positions
		WHERE close_time >= ? AND close_time < ?
		ORDER BY close_time ASC, position_id ASC`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PositionRecord
	for rows.Next() {
		rec, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// DayRange returns [midnight, next midnight) of day in loc.
func DayRange(day time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	d := day.In(loc)
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}
