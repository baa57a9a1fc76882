package transfer

import (
	"github.com/shopspring/decimal"

	"github.com/simaogato/walletfx-backend/internal/domain"
)

// Validate checks a proposed transfer against the current balances.
// Returns nil when the request may proceed, otherwise a *domain.RejectionError.
// Rules, first failing rule wins:
//  1. Amount must be > 0
//  2. ToCurrency, when present, must differ from FromCurrency
//  3. Debiting operations may not exceed the FromCurrency balance (absent = 0)
//  4. Sends need a non-empty trimmed recipient
//
// Rate availability is never checked here; it only affects previews.
func Validate(req domain.TransferRequest, balances domain.BalanceSnapshot) error {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return &domain.RejectionError{Reason: domain.RejectionInvalidAmount}
	}

	if req.ToCurrency != nil && *req.ToCurrency == req.FromCurrency {
		return &domain.RejectionError{Reason: domain.RejectionSameCurrencyConversion}
	}

	if req.Debits() {
		available := balances.Get(req.FromCurrency)
		if req.Amount.GreaterThan(available) {
			return &domain.RejectionError{
				Reason:    domain.RejectionInsufficientBalance,
				Currency:  req.FromCurrency,
				Available: available,
			}
		}
	}

	if req.RequiresRecipient() && req.TrimmedRecipient() == "" {
		return &domain.RejectionError{Reason: domain.RejectionInvalidRecipient}
	}

	return nil
}
