package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateTable is an immutable snapshot of exchange rates against one base currency.
// Each rate is the amount of that currency per 1 unit of base.
type RateTable struct {
	base      CurrencyCode
	rates     map[CurrencyCode]decimal.Decimal
	updatedAt time.Time
}

// NewRateTable copies the given rates, dropping every non-positive entry.
// A zero or missing rate disables conversion for that currency.
func NewRateTable(base CurrencyCode, rates map[CurrencyCode]decimal.Decimal, updatedAt time.Time) *RateTable {
	copied := make(map[CurrencyCode]decimal.Decimal, len(rates))
	for code, rate := range rates {
		if rate.GreaterThan(decimal.Zero) {
			copied[code] = rate
		}
	}

	return &RateTable{
		base:      base,
		rates:     copied,
		updatedAt: updatedAt,
	}
}

// Base returns the market code the rates are expressed against
func (t *RateTable) Base() CurrencyCode {
	return t.base
}

// UpdatedAt returns when the rates were last refreshed at the source
func (t *RateTable) UpdatedAt() time.Time {
	return t.updatedAt
}

// Len returns the number of priced currencies, excluding the implicit base
func (t *RateTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rates)
}

// IsEmpty reports whether the table carries no rates at all
func (t *RateTable) IsEmpty() bool {
	return t.Len() == 0
}

// IsStale reports whether the table is older than maxAge at now.
// A table without a timestamp is always stale.
func (t *RateTable) IsStale(now time.Time, maxAge time.Duration) bool {
	if t == nil || t.updatedAt.IsZero() {
		return true
	}
	return now.Sub(t.updatedAt) >= maxAge
}

// Rates returns a copy of the rate entries
func (t *RateTable) Rates() map[CurrencyCode]decimal.Decimal {
	out := make(map[CurrencyCode]decimal.Decimal, t.Len())
	if t == nil {
		return out
	}
	for code, rate := range t.rates {
		out[code] = rate
	}
	return out
}

// RateOf returns the rate for a market code. The base is always 1.
func (t *RateTable) RateOf(market CurrencyCode) (decimal.Decimal, bool) {
	if t == nil {
		return decimal.Zero, false
	}
	if market == t.base {
		return decimal.NewFromInt(1), true
	}
	rate, ok := t.rates[market]
	if !ok || !rate.GreaterThan(decimal.Zero) {
		return decimal.Zero, false
	}
	return rate, true
}

// CrossRate returns how many units of toWallet one unit of fromWallet buys.
// It returns false when either side is unknown or unpriced; it never fails.
func (t *RateTable) CrossRate(mapping *CurrencyMapping, fromWallet, toWallet CurrencyCode) (decimal.Decimal, bool) {
	if mapping == nil {
		return decimal.Zero, false
	}
	fromMarket, err := mapping.ToMarketCode(fromWallet)
	if err != nil {
		return decimal.Zero, false
	}
	toMarket, err := mapping.ToMarketCode(toWallet)
	if err != nil {
		return decimal.Zero, false
	}

	if fromMarket == toMarket {
		return decimal.NewFromInt(1), true
	}

	fromRate, ok := t.RateOf(fromMarket)
	if !ok {
		return decimal.Zero, false
	}
	toRate, ok := t.RateOf(toMarket)
	if !ok {
		return decimal.Zero, false
	}

	return toRate.Div(fromRate), true
}
