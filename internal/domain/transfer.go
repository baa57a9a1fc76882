package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TransferKind represents the operation a transfer request belongs to
type TransferKind string

const (
	TransferKindDeposit TransferKind = "DEPOSIT"
	TransferKindSwap    TransferKind = "SWAP"
	TransferKindSend    TransferKind = "SEND"
)

// TransferRequest is a proposed swap, send or deposit.
// ToCurrency is nil for same-currency operations.
type TransferRequest struct {
	Kind         TransferKind
	FromCurrency CurrencyCode
	ToCurrency   *CurrencyCode
	Amount       decimal.Decimal
	Recipient    string
}

// Debits reports whether the operation spends the sender's balance.
// Only deposits credit the wallet without spending from it.
func (r TransferRequest) Debits() bool {
	return r.Kind != TransferKindDeposit
}

// RequiresRecipient reports whether a recipient address is mandatory
func (r TransferRequest) RequiresRecipient() bool {
	return r.Kind == TransferKindSend
}

// TrimmedRecipient returns the recipient without surrounding whitespace
func (r TransferRequest) TrimmedRecipient() string {
	return strings.TrimSpace(r.Recipient)
}

// RejectionReason tags why a transfer request was refused
type RejectionReason string

const (
	RejectionInvalidAmount          RejectionReason = "INVALID_AMOUNT"
	RejectionSameCurrencyConversion RejectionReason = "SAME_CURRENCY_CONVERSION"
	RejectionInsufficientBalance    RejectionReason = "INSUFFICIENT_BALANCE"
	RejectionInvalidRecipient       RejectionReason = "INVALID_RECIPIENT"
)

// RejectionError is a recoverable user-input validation failure.
// Available is only meaningful for RejectionInsufficientBalance.
type RejectionError struct {
	Reason    RejectionReason
	Currency  CurrencyCode
	Available decimal.Decimal
}

func (e *RejectionError) Error() string {
	switch e.Reason {
	case RejectionInvalidAmount:
		return "invalid amount: must be greater than 0"
	case RejectionSameCurrencyConversion:
		return "invalid conversion: cannot convert to the same currency"
	case RejectionInsufficientBalance:
		return fmt.Sprintf("insufficient %s balance: available %s", e.Currency, e.Available.StringFixed(2))
	case RejectionInvalidRecipient:
		return "invalid recipient: wallet address is required"
	default:
		return "transfer rejected: " + string(e.Reason)
	}
}

// Is lets errors.Is match rejections by reason
func (e *RejectionError) Is(target error) bool {
	t, ok := target.(*RejectionError)
	if !ok {
		return false
	}
	return t.Reason == e.Reason
}
