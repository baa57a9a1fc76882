package allocator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/walletfx-backend/internal/domain"
)

func snapshot(amounts map[domain.CurrencyCode]string) domain.BalanceSnapshot {
	converted := make(map[domain.CurrencyCode]decimal.Decimal, len(amounts))
	for code, amount := range amounts {
		converted[code] = decimal.RequireFromString(amount)
	}
	return domain.MustBalanceSnapshot(converted)
}

func TestCalculateSlices_EmptyStates(t *testing.T) {
	tests := []struct {
		name     string
		balances domain.BalanceSnapshot
	}{
		{name: "No balances", balances: snapshot(nil)},
		{name: "All zero", balances: snapshot(map[domain.CurrencyCode]string{"A": "0", "B": "0"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slices := CalculateSlices(tt.balances)
			assert.NotNil(t, slices)
			assert.Empty(t, slices)
		})
	}
}

func TestCalculateSlices_ThirtySeventy(t *testing.T) {
	slices := CalculateSlices(snapshot(map[domain.CurrencyCode]string{"A": "30", "B": "70"}))

	require.Len(t, slices, 2)

	// Largest first
	assert.Equal(t, domain.CurrencyCode("B"), slices[0].Currency)
	assert.InDelta(t, 0.7, slices[0].Share, 1e-12)
	assert.Equal(t, 0.0, slices[0].StartAngle)
	assert.InDelta(t, 252.0, slices[0].EndAngle, 1e-9)

	assert.Equal(t, domain.CurrencyCode("A"), slices[1].Currency)
	assert.InDelta(t, 0.3, slices[1].Share, 1e-12)
	assert.Equal(t, slices[0].EndAngle, slices[1].StartAngle)
	assert.Equal(t, 360.0, slices[1].EndAngle)

	assert.InDelta(t, 1.0, slices[0].Share+slices[1].Share, 1e-12)
}

func TestCalculateSlices_TiesBrokenByCode(t *testing.T) {
	slices := CalculateSlices(snapshot(map[domain.CurrencyCode]string{
		"cXAF": "10",
		"EURx": "10",
		"cNGN": "10",
		"USDx": "40",
	}))

	require.Len(t, slices, 4)
	got := []domain.CurrencyCode{slices[0].Currency, slices[1].Currency, slices[2].Currency, slices[3].Currency}
	assert.Equal(t, []domain.CurrencyCode{"USDx", "EURx", "cNGN", "cXAF"}, got)
}

func TestCalculateSlices_ClampsFinalAngle(t *testing.T) {
	// Thirds do not sum to exactly 1 in floating point
	slices := CalculateSlices(snapshot(map[domain.CurrencyCode]string{"A": "1", "B": "1", "C": "1"}))

	require.Len(t, slices, 3)
	assert.Equal(t, 360.0, slices[2].EndAngle)

	totalShare := 0.0
	for i, slice := range slices {
		totalShare += slice.Share
		assert.Greater(t, slice.EndAngle, slice.StartAngle, "angles must increase monotonically")
		if i > 0 {
			assert.Equal(t, slices[i-1].EndAngle, slice.StartAngle, "slices must be contiguous")
		}
	}
	assert.InDelta(t, 1.0, totalShare, 1e-9)
}

func TestCalculateSlices_SkipsZeroBalances(t *testing.T) {
	slices := CalculateSlices(snapshot(map[domain.CurrencyCode]string{"cNGN": "0", "USDx": "12.5"}))

	require.Len(t, slices, 1)
	assert.Equal(t, domain.CurrencyCode("USDx"), slices[0].Currency)
	assert.Equal(t, 1.0, slices[0].Share)
	assert.Equal(t, 0.0, slices[0].StartAngle)
	assert.Equal(t, 360.0, slices[0].EndAngle)
	assert.True(t, slices[0].Amount.Equal(decimal.RequireFromString("12.5")))
}

func TestCalculateSlices_Deterministic(t *testing.T) {
	balances := snapshot(map[domain.CurrencyCode]string{"a": "5", "b": "5", "c": "7", "d": "0.5"})

	first := CalculateSlices(balances)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, CalculateSlices(balances))
	}
}
