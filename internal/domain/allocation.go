package domain

import "github.com/shopspring/decimal"

// FullCircle is the end angle of the last allocation slice, in degrees
const FullCircle = 360.0

// AllocationSlice is one currency's proportional angular segment.
// Derived from a balance snapshot, never persisted.
type AllocationSlice struct {
	Currency   CurrencyCode
	Amount     decimal.Decimal
	Share      float64 // 0..1
	StartAngle float64 // degrees from the origin
	EndAngle   float64
}

// Sweep returns the angular width of the slice
func (s AllocationSlice) Sweep() float64 {
	return s.EndAngle - s.StartAngle
}
