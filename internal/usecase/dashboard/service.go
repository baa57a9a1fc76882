package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/simaogato/walletfx-backend/internal/domain"
	"github.com/simaogato/walletfx-backend/internal/usecase/allocator"
	"github.com/simaogato/walletfx-backend/internal/usecase/portfolio"
)

// RateReader is the part of the rate service the dashboard needs
type RateReader interface {
	Get(ctx context.Context) (*domain.RateTable, error)
	Current() *domain.RateTable
}

// DashboardResult is the wallet overview shown on the home screen
type DashboardResult struct {
	Base           domain.CurrencyCode
	Total          decimal.Decimal
	Breakdown      []portfolio.Valuation
	Slices         []domain.AllocationSlice
	RatesUpdatedAt time.Time
	RatesStale     bool
	RatesAvailable bool
}

// DashboardService handles dashboard-related operations
type DashboardService struct {
	Balances domain.BalanceSource
	Rates    RateReader
	Valuator *portfolio.Valuator
	MaxAge   time.Duration
	Logger   *zap.Logger

	now func() time.Time
}

// NewDashboardService creates a new DashboardService instance
func NewDashboardService(
	balances domain.BalanceSource,
	rates RateReader,
	valuator *portfolio.Valuator,
	maxAge time.Duration,
	logger *zap.Logger,
) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		Balances: balances,
		Rates:    rates,
		Valuator: valuator,
		MaxAge:   maxAge,
		Logger:   logger,
		now:      time.Now,
	}
}

// GetDashboard builds the overview for one wallet
// Logic:
//   - Balances: fetched once; a failure fails the whole call
//   - Rates: fresh table from the rate service; on error the last known table is used
//   - Total: sum of balances converted to base (unpriced currencies contribute 0)
//   - Slices: allocation by raw amounts, independent of rates
func (s *DashboardService) GetDashboard(ctx context.Context, walletID uuid.UUID) (*DashboardResult, error) {
	balances, err := s.Balances.FetchBalances(ctx, walletID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch balances: %w", err)
	}

	table, err := s.Rates.Get(ctx)
	if err != nil {
		s.Logger.Warn("rates unavailable, using last known table", zap.Error(err))
		table = s.Rates.Current()
	}

	breakdown := s.Valuator.Breakdown(balances, table)
	total := decimal.Zero
	for _, valuation := range breakdown {
		total = total.Add(valuation.BaseValue)
	}

	result := &DashboardResult{
		Base:      s.Valuator.Mapping.Base(),
		Total:     total,
		Breakdown: breakdown,
		Slices:    allocator.CalculateSlices(balances),
	}
	if table != nil {
		result.Base = table.Base()
		result.RatesUpdatedAt = table.UpdatedAt()
		result.RatesAvailable = !table.IsEmpty()
	}
	result.RatesStale = s.MaxAge > 0 && table.IsStale(s.now(), s.MaxAge)

	return result, nil
}
