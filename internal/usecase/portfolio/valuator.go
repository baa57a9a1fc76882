package portfolio

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/simaogato/walletfx-backend/internal/domain"
)

// Valuation is one currency's contribution to the portfolio total
type Valuation struct {
	Currency  domain.CurrencyCode
	Amount    decimal.Decimal
	BaseValue decimal.Decimal
	Priced    bool // false when the currency had no usable rate and contributed 0
}

// Valuator aggregates balances into a value in the rate table's base currency.
// Pure and synchronous: staleness of the table is the caller's concern.
type Valuator struct {
	Mapping *domain.CurrencyMapping
	Logger  *zap.Logger
}

// NewValuator creates a new Valuator instance
func NewValuator(mapping *domain.CurrencyMapping, logger *zap.Logger) *Valuator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Valuator{
		Mapping: mapping,
		Logger:  logger,
	}
}

// TotalValue sums every balance converted to base
// Logic:
//   - market code equals base: value = amount
//   - rate present and > 0: value = amount / rate (rates are units per 1 base)
//   - otherwise the currency is excluded (contributes 0)
func (v *Valuator) TotalValue(balances domain.BalanceSnapshot, table *domain.RateTable) decimal.Decimal {
	total := decimal.Zero
	for _, valuation := range v.Breakdown(balances, table) {
		total = total.Add(valuation.BaseValue)
	}
	return total
}

// Breakdown returns the per-currency base values in currency code order
func (v *Valuator) Breakdown(balances domain.BalanceSnapshot, table *domain.RateTable) []Valuation {
	base := v.Mapping.Base()
	if table != nil {
		base = table.Base()
	}

	valuations := make([]Valuation, 0, balances.Len())
	for _, code := range balances.Currencies() {
		amount := balances.Get(code)
		valuation := Valuation{
			Currency:  code,
			Amount:    amount,
			BaseValue: decimal.Zero,
		}

		market, err := v.Mapping.ToMarketCode(code)
		if err != nil {
			v.Logger.Warn("excluding unmapped currency from valuation", zap.Stringer("currency", code))
			valuations = append(valuations, valuation)
			continue
		}

		if market == base {
			valuation.BaseValue = amount
			valuation.Priced = true
		} else if rate, ok := table.RateOf(market); ok {
			valuation.BaseValue = amount.Div(rate)
			valuation.Priced = true
		}

		valuations = append(valuations, valuation)
	}

	return valuations
}
