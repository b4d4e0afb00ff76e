package journal

const Schema = `
CREATE TABLE IF NOT EXISTS positions (
	position_id INTEGER PRIMARY KEY,
	pair TEXT NOT NULL,
	amount TEXT NOT NULL,
	entry_price TEXT NOT NULL,
	exit_price TEXT NOT NULL,
	gain TEXT NOT NULL,
	gain_percentage TEXT NOT NULL,
	fees TEXT NOT NULL,
	open_time DATETIME NOT NULL,
	close_time DATETIME NOT NULL,
	reason TEXT NOT NULL,
	open_order_id TEXT NOT NULL,
	close_order_id TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_positions_close_time ON positions(close_time);
`

const positionColumns = `position_id, pair, amount, entry_price, exit_price, gain, gain_percentage, fees,
	open_time, close_time, reason, open_order_id, close_order_id`
