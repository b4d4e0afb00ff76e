// Package signal turns a close price and an indicator value into crossing
// signals. A signal fires only on the bar where the price/indicator relation
// flips, never on every bar the relation holds.
package signal

import "time"

type Signal int

const (
	Hold Signal = iota
	EnterLong
	ExitLong
)

func (s Signal) String() string {
	switch s {
	case EnterLong:
		return "ENTER_LONG"
	case ExitLong:
		return "EXIT_LONG"
	default:
		return "HOLD"
	}
}

// Relation is where the close sits relative to the indicator.
type Relation int

const (
	Undefined Relation = iota
	Below
	Equal
	Above
)

func (r Relation) String() string {
	switch r {
	case Below:
		return "BELOW"
	case Equal:
		return "EQUAL"
	case Above:
		return "ABOVE"
	default:
		return "UNDEFINED"
	}
}

// Compare returns the relation of price to indicator.
func Compare(price, indicator float64) Relation {
	switch {
	case price > indicator:
		return Above
	case price < indicator:
		return Below
	default:
		return Equal
	}
}

// Evaluate is the pure crossing rule.
//   - EnterLong: prev is not Above and the close is now above the indicator
//   - ExitLong:  prev is Above and the close is now below the indicator
//
// An Equal reading keeps the previous directional relation, so touching the
// indicator and bouncing back does not count as a crossing.
func Evaluate(price, indicator float64, prev Relation) (Signal, Relation) {
	now := Compare(price, indicator)
	switch {
	case now == Above && prev != Above:
		return EnterLong, Above
	case now == Below && prev == Above:
		return ExitLong, Below
	case now == Equal && prev != Undefined:
		return Hold, prev
	default:
		return Hold, now
	}
}

// Evaluator tracks the relation between calls. It ignores bars that are not
// strictly newer than the last evaluated one, so a re-delivered bar can never
// produce a second signal.
//
// Evaluator is not safe for concurrent use; bars are evaluated in sequence.
type Evaluator struct {
	relation Relation
	last     time.Time
	seen     bool
}

func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Next evaluates one bar. ready is false while the indicator is warming up,
// in which case Hold is returned and the relation stays Undefined.
func (e *Evaluator) Next(at time.Time, price, indicator float64, ready bool) Signal {
	if e.seen && !at.After(e.last) {
		return Hold
	}
	e.seen = true
	e.last = at

	if !ready {
		return Hold
	}

	sig, rel := Evaluate(price, indicator, e.relation)
	e.relation = rel
	return sig
}

func (e *Evaluator) Relation() Relation { return e.relation }

func (e *Evaluator) Reset() {
	*e = Evaluator{}
}
