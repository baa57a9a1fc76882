package domain

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ErrNegativeAmount is returned when a balance snapshot carries a negative amount
var ErrNegativeAmount = errors.New("balance amount cannot be negative")

// BalanceSnapshot maps wallet currency codes to non-negative amounts.
// A snapshot is never mutated; a fresh fetch replaces it wholesale.
type BalanceSnapshot struct {
	amounts map[CurrencyCode]decimal.Decimal
}

// NewBalanceSnapshot copies the given balances and rejects negative amounts
func NewBalanceSnapshot(balances map[CurrencyCode]decimal.Decimal) (BalanceSnapshot, error) {
	amounts := make(map[CurrencyCode]decimal.Decimal, len(balances))
	for code, amount := range balances {
		if amount.IsNegative() {
			return BalanceSnapshot{}, errors.Wrapf(ErrNegativeAmount, "%s balance %s", code, amount.String())
		}
		amounts[code] = amount
	}
	return BalanceSnapshot{amounts: amounts}, nil
}

// MustBalanceSnapshot is NewBalanceSnapshot for literals known to be valid
func MustBalanceSnapshot(balances map[CurrencyCode]decimal.Decimal) BalanceSnapshot {
	snapshot, err := NewBalanceSnapshot(balances)
	if err != nil {
		panic(err)
	}
	return snapshot
}

// Get returns the balance for a currency, zero when absent
func (b BalanceSnapshot) Get(code CurrencyCode) decimal.Decimal {
	if amount, ok := b.amounts[code]; ok {
		return amount
	}
	return decimal.Zero
}

// Len returns the number of currencies in the snapshot
func (b BalanceSnapshot) Len() int {
	return len(b.amounts)
}

// Currencies returns the held currency codes in ascending order
func (b BalanceSnapshot) Currencies() []CurrencyCode {
	codes := make([]CurrencyCode, 0, len(b.amounts))
	for code := range b.amounts {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		return codes[i] < codes[j]
	})
	return codes
}

// Amounts returns a copy of the balances
func (b BalanceSnapshot) Amounts() map[CurrencyCode]decimal.Decimal {
	out := make(map[CurrencyCode]decimal.Decimal, len(b.amounts))
	for code, amount := range b.amounts {
		out[code] = amount
	}
	return out
}
