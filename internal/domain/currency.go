package domain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownCurrency is returned when a wallet code is outside the configured currency set
var ErrUnknownCurrency = errors.New("unknown currency")

// CurrencyCode is a short identifier for either a wallet currency (cNGN, USDx)
// or the market currency used as a key into the rate table (NGN, USD)
type CurrencyCode string

// String implements fmt.Stringer
func (c CurrencyCode) String() string {
	return string(c)
}

// CurrencyMapping maps every wallet code to exactly one market code.
// The peg wallet code maps to the base market code and is always worth 1 base unit.
// A CurrencyMapping is read-only after construction.
type CurrencyMapping struct {
	base     CurrencyCode
	peg      CurrencyCode
	toMarket map[CurrencyCode]CurrencyCode
}

// NewCurrencyMapping validates and copies the wallet→market table
func NewCurrencyMapping(base, peg CurrencyCode, walletToMarket map[CurrencyCode]CurrencyCode) (*CurrencyMapping, error) {
	if base == "" {
		return nil, errors.New("base currency cannot be empty")
	}
	if len(walletToMarket) == 0 {
		return nil, errors.New("currency mapping cannot be empty")
	}

	toMarket := make(map[CurrencyCode]CurrencyCode, len(walletToMarket))
	for wallet, market := range walletToMarket {
		if strings.TrimSpace(wallet.String()) == "" || strings.TrimSpace(market.String()) == "" {
			return nil, errors.New("currency mapping entries cannot be empty")
		}
		toMarket[wallet] = market
	}

	market, ok := toMarket[peg]
	if !ok {
		return nil, fmt.Errorf("peg currency %s is not in the currency mapping", peg)
	}
	if market != base {
		return nil, fmt.Errorf("peg currency %s must map to base %s, got %s", peg, base, market)
	}

	return &CurrencyMapping{
		base:     base,
		peg:      peg,
		toMarket: toMarket,
	}, nil
}

// Base returns the market code every rate is expressed against
func (m *CurrencyMapping) Base() CurrencyCode {
	return m.base
}

// Peg returns the wallet code pinned to the base currency
func (m *CurrencyMapping) Peg() CurrencyCode {
	return m.peg
}

// ToMarketCode maps a wallet code to its market code
func (m *CurrencyMapping) ToMarketCode(wallet CurrencyCode) (CurrencyCode, error) {
	market, ok := m.toMarket[wallet]
	if !ok {
		return "", errors.Wrapf(ErrUnknownCurrency, "wallet currency %q", wallet)
	}
	return market, nil
}

// WalletCodes returns the configured wallet codes in ascending order
func (m *CurrencyMapping) WalletCodes() []CurrencyCode {
	codes := make([]CurrencyCode, 0, len(m.toMarket))
	for wallet := range m.toMarket {
		codes = append(codes, wallet)
	}
	sort.Slice(codes, func(i, j int) bool {
		return codes[i] < codes[j]
	})
	return codes
}
