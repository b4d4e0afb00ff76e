package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatPositionOrg renders a position record as an Org-mode entry.
func FormatPositionOrg(r PositionRecord) string {
	open := r.OpenTime.UTC().Format(time.RFC3339)
	close := r.CloseTime.UTC().Format(time.RFC3339)

	var b strings.Builder
	fmt.Fprintf(&b, "** Position %d: %s (%s)\n", r.PositionID, r.Pair, r.Reason)
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":POSITION_ID: %d\n", r.PositionID)
	fmt.Fprintf(&b, ":PAIR: %s\n", r.Pair)
	fmt.Fprintf(&b, ":AMOUNT: %s\n", r.Amount)
	fmt.Fprintf(&b, ":ENTRY_PRICE: %s\n", r.EntryPrice)
	fmt.Fprintf(&b, ":EXIT_PRICE: %s\n", r.ExitPrice)
	fmt.Fprintf(&b, ":OPEN_TIME: %s\n", open)
	fmt.Fprintf(&b, ":CLOSE_TIME: %s\n", close)
	fmt.Fprintf(&b, ":GAIN: %s\n", r.Gain.StringFixedBank(2))
	fmt.Fprintf(&b, ":GAIN_PCT: %s\n", r.GainPercentage.StringFixedBank(2))
	fmt.Fprintf(&b, ":FEES: %s\n", r.Fees.StringFixedBank(2))
	fmt.Fprintf(&b, ":REASON: %s\n", r.Reason)
	fmt.Fprintf(&b, ":OPEN_ORDER: %s\n", r.OpenOrderID)
	fmt.Fprintf(&b, ":CLOSE_ORDER: %s\n", r.CloseOrderID)
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("*** Review\n- \n")

	return b.String()
}

// FormatPositionsOrg renders multiple records separated by blank lines.
func FormatPositionsOrg(rs []PositionRecord) string {
	var b strings.Builder
	for i, r := range rs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatPositionOrg(r))
	}
	return b.String()
}
