package journal

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPositionOrg(t *testing.T) {
	t.Parallel()

	r := record(5, time.Date(2024, 3, 15, 14, 20, 30, 0, time.UTC))
	out := FormatPositionOrg(r)

	assert.True(t, strings.HasPrefix(out, "** Position 5: BTC/USDT (StopGain)\n:PROPERTIES:\n"))
	assert.Contains(t, out, ":POSITION_ID: 5\n")
	assert.Contains(t, out, ":ENTRY_PRICE: 100\n")
	assert.Contains(t, out, ":EXIT_PRICE: 104.5\n")
	assert.Contains(t, out, ":OPEN_TIME: 2024-03-15T13:20:30Z\n")
	assert.Contains(t, out, ":CLOSE_TIME: 2024-03-15T14:20:30Z\n")
	assert.Contains(t, out, ":GAIN: 0.00\n")
	assert.Contains(t, out, ":GAIN_PCT: 4.50\n")
	assert.Contains(t, out, ":END:\n")
	assert.Contains(t, out, "*** Review")
}

func TestFormatPositionsOrg(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", FormatPositionsOrg(nil))

	closeT := time.Date(2024, 3, 15, 14, 20, 30, 0, time.UTC)
	out := FormatPositionsOrg([]PositionRecord{record(1, closeT), record(2, closeT)})
	assert.Equal(t, 2, strings.Count(out, ":PROPERTIES:"))
	assert.Contains(t, out, "- \n\n\n** Position 2")
}

func TestRunSummaryOrg(t *testing.T) {
	t.Parallel()

	s := &RunSummary{
		RunID:    "01HRUN",
		Created:  time.Date(2024, 1, 5, 7, 0, 0, 0, time.UTC),
		Strategy: "cross(SMA(24))",
		Pair:     "BTC/USDT",
		Rules:    "rules: 4 % gain / 15 % loss",
		Start:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC),
		Bars:     72,
		Gains:    []string{"USDT : 4.5 % / 0.00 USDT / 0.00 USDT"},
		Balances: []string{"USDT 1000.00"},
	}
	closeT := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	loss := record(2, closeT)
	loss.Gain = dec("-1")
	s.Tally([]PositionRecord{record(1, closeT), loss})

	out, err := s.Org()
	require.NoError(t, err)
	assert.Contains(t, out, "* RUN: cross(SMA(24)) BTC/USDT\n")
	assert.Contains(t, out, ":RUN_ID:      01HRUN\n")
	assert.Contains(t, out, ":DATASET:     (dataset?)\n")
	assert.Contains(t, out, ":POSITIONS:   2\n")
	assert.Contains(t, out, ":WINS:        1\n")
	assert.Contains(t, out, ":LOSSES:      1\n")
	assert.Contains(t, out, ":CREATED:     [2024-01-05 Fri 07:00]\n")
	assert.Contains(t, out, "** Global gains\n- USDT : 4.5 % / 0.00 USDT / 0.00 USDT\n")
	assert.NotContains(t, out, "Observations")

	path := t.TempDir() + "/run.org"
	require.NoError(t, s.WriteOrg(path))
}
