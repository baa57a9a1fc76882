package domain

import "github.com/pkg/errors"

var (
	// ErrWalletNotFound is returned when the wallet does not exist
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrRatesNotFound is returned when no rate snapshot exists for a base
	ErrRatesNotFound = errors.New("rates not found")

	// ErrSubmitterNotConfigured is returned when transfers cannot be forwarded anywhere
	ErrSubmitterNotConfigured = errors.New("transfer submission is not configured")
)
