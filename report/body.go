// Package report renders the bot's report body and drives the daily report
// schedule.
package report

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/smatrader/gains"
	"github.com/rustyeddy/smatrader/position"
	"github.com/shopspring/decimal"
)

const (
	DailySubject = "Your daily report"

	headerGains  = "Global gains:"
	headerOpened = "Opened positions:"
	headerClosed = "Closed positions:"
)

// StatusSubject is the subject of the report sent on a position status change.
func StatusSubject(p position.Position) string {
	return fmt.Sprintf("Position %d is now %s", p.ID, strings.ToLower(p.Status.String()))
}

// Body renders gains, then OPENED positions, then CLOSED positions. Sections
// are separated by a blank line. Amounts use two decimals, half-even.
//
//	Global gains:
//	USDT : 4.5 % / 4.50 USDT / 0.10 USDT
//
//	Opened positions:
//	...
//
//	Closed positions:
//	...
func Body(gs []gains.Gain, positions []position.Position) string {
	var b strings.Builder

	b.WriteString(headerGains)
	b.WriteString("\n")
	for _, g := range gs {
		b.WriteString(GainLine(g))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(headerOpened)
	b.WriteString("\n")
	for _, p := range positions {
		if p.Status == position.Opened {
			b.WriteString(p.Description())
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	b.WriteString(headerClosed)
	b.WriteString("\n")
	for _, p := range positions {
		if p.Status == position.Closed {
			b.WriteString(p.Description())
			b.WriteString("\n")
		}
	}

	return b.String()
}

// GainLine renders one currency of the global gains section.
func GainLine(g gains.Gain) string {
	return fmt.Sprintf("%s : %s %% / %s / %s",
		g.Currency,
		g.Percentage.Round(2).String(),
		money(g.Amount, string(g.Currency)),
		money(g.Fees, string(g.Currency)))
}

func money(v decimal.Decimal, currency string) string {
	return v.StringFixedBank(2) + " " + currency
}
