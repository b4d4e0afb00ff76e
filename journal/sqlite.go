package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// RecordPosition stores r, replacing an earlier record of the same position.
func (j *SQLite) RecordPosition(r PositionRecord) error {
	_, err := j.db.Exec(`
		INSERT OR REPLACE INTO positions (`+positionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.PositionID, r.Pair, r.Amount, r.EntryPrice, r.ExitPrice,
		r.Gain, r.GainPercentage, r.Fees,
		r.OpenTime.UTC(), r.CloseTime.UTC(), r.Reason, r.OpenOrderID, r.CloseOrderID,
	)
	if err != nil {
		return fmt.Errorf("record position %d: %w", r.PositionID, err)
	}
	return nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
