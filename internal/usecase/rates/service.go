package rates

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/simaogato/walletfx-backend/internal/domain"
	"github.com/simaogato/walletfx-backend/internal/metrics"
)

// DefaultMaxAge is how long a fetched rate table is served before refetching
const DefaultMaxAge = 24 * time.Hour

// ErrEmptyRates is returned when the source answered with no rates at all
var ErrEmptyRates = errors.New("rate source returned empty results")

// RateService keeps the latest rate table for one base currency.
// The table is swapped atomically; readers always see a whole snapshot.
type RateService struct {
	Source   domain.RateSource
	Store    domain.RateSnapshotRepository
	Base     domain.CurrencyCode
	MaxAge   time.Duration
	Fallback *domain.RateTable
	Logger   *zap.Logger
	Metrics  *metrics.FXMetrics

	current atomic.Pointer[domain.RateTable]
	now     func() time.Time
}

// NewRateService creates a new RateService instance
// store and fallback may be nil
func NewRateService(
	source domain.RateSource,
	store domain.RateSnapshotRepository,
	base domain.CurrencyCode,
	maxAge time.Duration,
	fallback *domain.RateTable,
	logger *zap.Logger,
	m *metrics.FXMetrics,
) *RateService {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateService{
		Source:   source,
		Store:    store,
		Base:     base,
		MaxAge:   maxAge,
		Fallback: fallback,
		Logger:   logger,
		Metrics:  m,
		now:      time.Now,
	}
}

// Current returns the table in use without any I/O.
// Before the first successful load it returns the fallback table, or an empty one.
func (s *RateService) Current() *domain.RateTable {
	if table := s.current.Load(); table != nil {
		return table
	}
	if s.Fallback != nil {
		return s.Fallback
	}
	return domain.NewRateTable(s.Base, nil, time.Time{})
}

// Get returns a fresh table, refreshing from the source when the cached one expired
// Logic:
//  1. Cached table younger than MaxAge: return it
//  2. Refresh from the source
//  3. On refresh failure serve, in order: the stale cached table, the latest stored
//     snapshot, the configured fallback table
//  4. Nothing available: return the refresh error
func (s *RateService) Get(ctx context.Context) (*domain.RateTable, error) {
	cached := s.current.Load()
	if cached != nil && !cached.IsStale(s.now(), s.MaxAge) {
		return cached, nil
	}

	table, err := s.Refresh(ctx)
	if err == nil {
		return table, nil
	}

	if cached != nil && !cached.IsEmpty() {
		s.Logger.Warn("serving stale rates", zap.Time("updated_at", cached.UpdatedAt()), zap.Error(err))
		return cached, nil
	}

	if stored, loadErr := s.Load(ctx); loadErr == nil {
		s.Logger.Warn("serving stored rates", zap.Time("updated_at", stored.UpdatedAt()), zap.Error(err))
		return stored, nil
	}

	if s.Fallback != nil && !s.Fallback.IsEmpty() {
		s.Logger.Warn("serving fallback rates", zap.Error(err))
		return s.Fallback, nil
	}

	return nil, err
}

// Refresh forces a fetch from the source and replaces the current table.
// A failed save to the store is logged, not returned.
func (s *RateService) Refresh(ctx context.Context) (*domain.RateTable, error) {
	table, err := s.fetch(ctx)
	s.Metrics.RateRefreshed(err)
	if err != nil {
		return nil, err
	}

	s.swap(table)

	if s.Store != nil {
		if err := s.Store.Save(ctx, table); err != nil {
			s.Logger.Error("failed to store rate snapshot", zap.Error(err))
		}
	}

	s.Logger.Info("rates refreshed",
		zap.Stringer("base", table.Base()),
		zap.Int("currencies", table.Len()),
	)
	return table, nil
}

// Load warms the service from the latest stored snapshot
func (s *RateService) Load(ctx context.Context) (*domain.RateTable, error) {
	if s.Store == nil {
		return nil, domain.ErrRatesNotFound
	}

	table, err := s.Store.GetLatest(ctx, s.Base)
	if err != nil {
		return nil, err
	}
	if table.IsEmpty() {
		return nil, domain.ErrRatesNotFound
	}

	s.swap(table)
	return table, nil
}

// Run refreshes the table every interval until ctx is done
func (s *RateService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Refresh(ctx); err != nil {
				s.Logger.Warn("scheduled rate refresh failed", zap.Error(err))
			}
			s.Metrics.RateTableAge(s.now().Sub(s.Current().UpdatedAt()))
		}
	}
}

func (s *RateService) fetch(ctx context.Context) (*domain.RateTable, error) {
	if s.Source == nil {
		return nil, errors.New("rate source is not configured")
	}

	table, err := s.Source.FetchRates(ctx, s.Base)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch %s rates", s.Base)
	}
	if table == nil || table.IsEmpty() {
		return nil, ErrEmptyRates
	}
	if table.Base() != s.Base {
		return nil, errors.Errorf("rate source answered base %s, want %s", table.Base(), s.Base)
	}
	return table, nil
}

func (s *RateService) swap(table *domain.RateTable) {
	s.current.Store(table)
	s.Metrics.RateTableAge(s.now().Sub(table.UpdatedAt()))
}
