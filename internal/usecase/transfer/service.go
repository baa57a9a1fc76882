package transfer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/simaogato/walletfx-backend/internal/domain"
	"github.com/simaogato/walletfx-backend/internal/metrics"
)

// TransferService gates transfers behind validation
type TransferService struct {
	Balances  domain.BalanceSource
	Submitter domain.TransferSubmitter
	Logger    *zap.Logger
	Metrics   *metrics.FXMetrics
}

// NewTransferService creates a new TransferService instance
func NewTransferService(
	balances domain.BalanceSource,
	submitter domain.TransferSubmitter,
	logger *zap.Logger,
	m *metrics.FXMetrics,
) *TransferService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransferService{
		Balances:  balances,
		Submitter: submitter,
		Logger:    logger,
		Metrics:   m,
	}
}

// Check validates a request against the wallet's current balances
func (s *TransferService) Check(ctx context.Context, walletID uuid.UUID, req domain.TransferRequest) error {
	balances, err := s.Balances.FetchBalances(ctx, walletID)
	if err != nil {
		return fmt.Errorf("failed to fetch balances: %w", err)
	}

	if err := Validate(req, balances); err != nil {
		var rejection *domain.RejectionError
		if errors.As(err, &rejection) {
			s.Metrics.TransferRejected(rejection.Reason)
		}
		return err
	}
	return nil
}

// Submit validates the request and hands it to the submitter only when it passed.
// The recipient is forwarded trimmed.
func (s *TransferService) Submit(ctx context.Context, walletID uuid.UUID, req domain.TransferRequest) error {
	if err := s.Check(ctx, walletID, req); err != nil {
		return err
	}

	if s.Submitter == nil {
		return domain.ErrSubmitterNotConfigured
	}

	req.Recipient = req.TrimmedRecipient()
	if err := s.Submitter.SubmitTransfer(ctx, walletID, req); err != nil {
		return fmt.Errorf("failed to submit transfer: %w", err)
	}

	s.Logger.Info("transfer submitted",
		zap.String("wallet_id", walletID.String()),
		zap.String("kind", string(req.Kind)),
		zap.Stringer("from_currency", req.FromCurrency),
		zap.String("amount", req.Amount.String()),
	)
	return nil
}
