package position

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRulesString(t *testing.T) {
	assert.Equal(t, "rules: 4 % gain / 15 % loss", Rules{StopGainPercentage: 4, StopLossPercentage: 15}.String())
	assert.Equal(t, "rules: 2.5 % gain", Rules{StopGainPercentage: 2.5}.String())
	assert.Equal(t, "rules: 10 % loss", Rules{StopLossPercentage: 10}.String())
	assert.Equal(t, "no rules", Rules{}.String())
}

func TestRulesTrigger(t *testing.T) {
	r := Rules{StopGainPercentage: 4, StopLossPercentage: 15}
	assert.Equal(t, ReasonStopGain, r.trigger(dec("4")))
	assert.Equal(t, "", r.trigger(dec("3.999")))
	assert.Equal(t, ReasonStopLoss, r.trigger(dec("-15")))
	assert.Equal(t, "", r.trigger(dec("-14.999")))
	assert.Equal(t, "", Rules{}.trigger(dec("1000")))
}

func TestRealizedGain(t *testing.T) {
	p := Position{
		ID:         3,
		Pair:       btcUSDT,
		Amount:     dec("0.5"),
		Status:     Opened,
		EntryPrice: dec("100"),
		OpenFee:    dec("0.05"),
	}
	_, ok := p.RealizedGain()
	assert.False(t, ok)

	p.Status = Closed
	p.ExitPrice = dec("104.5")
	p.CloseFee = dec("0.07")

	g, ok := p.RealizedGain()
	require.True(t, ok)
	assert.Equal(t, btcUSDT.Quote, g.Currency)
	assert.Equal(t, "4.5", g.Percentage.String())
	assert.Equal(t, "2.25", g.Amount.String())
	assert.Equal(t, "0.12", g.Fees.String())
	assert.Equal(t, "50", g.EntryValue.String())
}

func TestGainPercentageFallsBackToRequestedPrice(t *testing.T) {
	p := Position{RequestedPrice: dec("200")}
	assert.Equal(t, "5", p.GainPercentage(dec("210")).String())

	assert.True(t, Position{}.GainPercentage(dec("10")).IsZero())
}

func TestDescription(t *testing.T) {
	p := Position{
		ID:     1,
		Pair:   btcUSDT,
		Amount: dec("0.001"),
		Status: Opened,
		Rules:  Rules{StopGainPercentage: 4, StopLossPercentage: 15},

		EntryPrice: dec("100"),
		LastPrice:  dec("101.234"),
	}
	assert.Equal(t,
		"Long position n°1 of 0.001 BTC/USDT (rules: 4 % gain / 15 % loss) - Opened - Last gain calculated 1.23 %",
		p.Description())

	p.Status = Closed
	p.ExitPrice = dec("104.5")
	p.CloseReason = ReasonStopGain
	assert.Equal(t,
		"Long position n°1 of 0.001 BTC/USDT (rules: 4 % gain / 15 % loss) - Closed - Gain 4.50 % (StopGain)",
		p.Description())

	p.Status = Opening
	assert.Equal(t,
		"Long position n°1 of 0.001 BTC/USDT (rules: 4 % gain / 15 % loss) - Opening",
		p.Description())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "NEW", New.String())
	assert.Equal(t, "OPENING", Opening.String())
	assert.Equal(t, "OPENED", Opened.String())
	assert.Equal(t, "CLOSING", Closing.String())
	assert.Equal(t, "CLOSED", Closed.String())
	assert.True(t, Opening.Active())
	assert.True(t, Opened.Active())
	assert.False(t, Closing.Active())
}
