package market

import (
	"fmt"
	"strings"
)

// Currency is an upper-case currency code such as "BTC" or "USDT".
type Currency string

const (
	BTC  Currency = "BTC"
	ETH  Currency = "ETH"
	USDT Currency = "USDT"
	USD  Currency = "USD"
	EUR  Currency = "EUR"
)

func (c Currency) String() string { return string(c) }

// CurrencyPair is the instrument a strategy trades: Base is bought with Quote.
type CurrencyPair struct {
	Base  Currency
	Quote Currency
}

func NewPair(base, quote Currency) CurrencyPair {
	return CurrencyPair{
		Base:  Currency(strings.ToUpper(string(base))),
		Quote: Currency(strings.ToUpper(string(quote))),
	}
}

// ParsePair accepts "BTC/USDT", "BTC-USDT" or "BTC_USDT".
func ParsePair(s string) (CurrencyPair, error) {
	s = strings.TrimSpace(s)
	for _, sep := range []string{"/", "-", "_"} {
		parts := strings.Split(s, sep)
		if len(parts) != 2 {
			continue
		}
		base, quote := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if base == "" || quote == "" {
			break
		}
		return NewPair(Currency(base), Currency(quote)), nil
	}
	return CurrencyPair{}, fmt.Errorf("invalid currency pair %q", s)
}

func (p CurrencyPair) String() string {
	return string(p.Base) + "/" + string(p.Quote)
}

func (p CurrencyPair) IsZero() bool {
	return p.Base == "" && p.Quote == ""
}
