package domain

import "github.com/shopspring/decimal"

// QuoteSource tells where a quote came from
type QuoteSource string

const (
	// QuoteSourceIdentity is a same-currency or non-positive amount short-circuit
	QuoteSourceIdentity QuoteSource = "IDENTITY"
	// QuoteSourceRemote is a live quote returned verbatim by the remote quoter
	QuoteSourceRemote QuoteSource = "REMOTE"
	// QuoteSourceFallback is computed locally from the latest rate table
	QuoteSourceFallback QuoteSource = "FALLBACK"
	// QuoteSourceUnavailable is the {0, 0} sentinel: do not trust the value
	QuoteSourceUnavailable QuoteSource = "UNAVAILABLE"
)

// Quote is a point-in-time conversion outcome
type Quote struct {
	Result decimal.Decimal
	Rate   decimal.Decimal
	Source QuoteSource
}

// RemoteQuote is what the remote quoter returns for market codes
type RemoteQuote struct {
	Result decimal.Decimal
	Rate   decimal.Decimal
}

// IdentityQuote returns {amount, 1}
func IdentityQuote(amount decimal.Decimal) Quote {
	return Quote{
		Result: amount,
		Rate:   decimal.NewFromInt(1),
		Source: QuoteSourceIdentity,
	}
}

// UnavailableQuote returns the conversion-unavailable sentinel
func UnavailableQuote() Quote {
	return Quote{
		Result: decimal.Zero,
		Rate:   decimal.Zero,
		Source: QuoteSourceUnavailable,
	}
}

// IsAvailable reports whether the quote can be shown as a real conversion
func (q Quote) IsAvailable() bool {
	return q.Source != QuoteSourceUnavailable && !q.Rate.IsZero()
}
