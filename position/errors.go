package position

import (
	"errors"

	"github.com/rustyeddy/smatrader/broker"
)

var (
	// ErrInsufficientFunds: the quote balance cannot cover amount at price.
	// Expected and non-fatal; the entry is re-evaluated on the next bar.
	ErrInsufficientFunds = broker.ErrInsufficientFunds

	// ErrDuplicatePosition: an OPENING or OPENED position already exists for the pair.
	ErrDuplicatePosition = errors.New("duplicate position")

	ErrUnknownPosition   = errors.New("unknown position")
	ErrInvalidTransition = errors.New("invalid status transition")
)
