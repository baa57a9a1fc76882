package allocator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/simaogato/walletfx-backend/internal/domain"
)

// CalculateSlices turns a balance snapshot into pie slices
// Logic:
//  1. Discard currencies with amount <= 0
//  2. Total of zero: return an empty slice (callers render an empty state)
//  3. Sort by amount descending, ties broken by currency code ascending
//  4. Share = amount / total; angles accumulate share × 360 from origin 0
//
// Safety: the last slice always ends at exactly 360 so no gap or overlap is left at the seam
func CalculateSlices(balances domain.BalanceSnapshot) []domain.AllocationSlice {
	type entry struct {
		code   domain.CurrencyCode
		amount decimal.Decimal
	}

	entries := make([]entry, 0, balances.Len())
	total := decimal.Zero
	for _, code := range balances.Currencies() {
		amount := balances.Get(code)
		if amount.LessThanOrEqual(decimal.Zero) {
			continue
		}
		entries = append(entries, entry{code: code, amount: amount})
		total = total.Add(amount)
	}

	if total.IsZero() {
		return []domain.AllocationSlice{}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if cmp := entries[i].amount.Cmp(entries[j].amount); cmp != 0 {
			return cmp > 0
		}
		return entries[i].code < entries[j].code
	})

	slices := make([]domain.AllocationSlice, 0, len(entries))
	cumulative := 0.0
	for _, e := range entries {
		share := e.amount.Div(total).InexactFloat64()
		start := cumulative * domain.FullCircle
		cumulative += share

		slices = append(slices, domain.AllocationSlice{
			Currency:   e.code,
			Amount:     e.amount,
			Share:      share,
			StartAngle: start,
			EndAngle:   cumulative * domain.FullCircle,
		})
	}

	slices[len(slices)-1].EndAngle = domain.FullCircle

	return slices
}
