package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceSource defines the interface for reading a wallet's balances
type BalanceSource interface {
	// FetchBalances returns the current balance snapshot of a wallet
	// Returns ErrWalletNotFound if the wallet does not exist
	FetchBalances(ctx context.Context, walletID uuid.UUID) (BalanceSnapshot, error)
}

// RateSource defines the interface for fetching fresh exchange rates
type RateSource interface {
	// FetchRates returns every known rate against the given base market code
	FetchRates(ctx context.Context, base CurrencyCode) (*RateTable, error)
}

// RemoteQuoter defines the interface for a live conversion quote
type RemoteQuoter interface {
	// Convert quotes amount between two market codes
	// May fail or be slow; callers decide the fallback policy
	Convert(ctx context.Context, fromMarket, toMarket CurrencyCode, amount decimal.Decimal) (RemoteQuote, error)
}

// TransferSubmitter defines the interface for executing an accepted transfer
type TransferSubmitter interface {
	// SubmitTransfer is only called after the request passed validation
	SubmitTransfer(ctx context.Context, walletID uuid.UUID, req TransferRequest) error
}

// RateSnapshotRepository defines the interface for rate table persistence operations
type RateSnapshotRepository interface {
	// Save stores a rate table as the newest snapshot for its base
	Save(ctx context.Context, table *RateTable) error

	// GetLatest retrieves the most recent snapshot for a base
	// Returns ErrRatesNotFound if none was ever stored
	GetLatest(ctx context.Context, base CurrencyCode) (*RateTable, error)
}
