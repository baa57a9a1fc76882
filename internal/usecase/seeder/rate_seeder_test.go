package seeder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/walletfx-backend/internal/domain"
)

// MockRateSnapshotRepository is a mock implementation of RateSnapshotRepository for testing
type MockRateSnapshotRepository struct {
	mock.Mock
}

func (m *MockRateSnapshotRepository) Save(ctx context.Context, table *domain.RateTable) error {
	args := m.Called(ctx, table)
	return args.Error(0)
}

func (m *MockRateSnapshotRepository) GetLatest(ctx context.Context, base domain.CurrencyCode) (*domain.RateTable, error) {
	args := m.Called(ctx, base)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateTable), args.Error(1)
}

func fallbackTable() *domain.RateTable {
	return domain.NewRateTable("USD", map[domain.CurrencyCode]decimal.Decimal{
		"NGN": decimal.NewFromInt(1550),
		"XAF": decimal.NewFromInt(606),
	}, time.Time{})
}

func TestRateSeeder_SeedsWhenMissing(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRateSnapshotRepository)
	fallback := fallbackTable()

	repo.On("GetLatest", ctx, domain.CurrencyCode("USD")).Return(nil, domain.ErrRatesNotFound)
	repo.On("Save", ctx, fallback).Return(nil).Once()

	seeded, err := NewRateSeeder(repo, fallback).Seed(ctx)

	require.NoError(t, err)
	assert.True(t, seeded)
	repo.AssertExpectations(t)
}

func TestRateSeeder_LeavesExistingSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRateSnapshotRepository)

	repo.On("GetLatest", ctx, domain.CurrencyCode("USD")).Return(fallbackTable(), nil)

	seeded, err := NewRateSeeder(repo, fallbackTable()).Seed(ctx)

	require.NoError(t, err)
	assert.False(t, seeded)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRateSeeder_PropagatesStoreErrors(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRateSnapshotRepository)

	repo.On("GetLatest", ctx, domain.CurrencyCode("USD")).Return(nil, errors.New("connection reset"))

	seeded, err := NewRateSeeder(repo, fallbackTable()).Seed(ctx)

	assert.False(t, seeded)
	assert.EqualError(t, err, "connection reset")
}

func TestRateSeeder_NothingToSeed(t *testing.T) {
	repo := new(MockRateSnapshotRepository)

	seeded, err := NewRateSeeder(repo, nil).Seed(context.Background())

	require.NoError(t, err)
	assert.False(t, seeded)
	repo.AssertNotCalled(t, "GetLatest", mock.Anything, mock.Anything)
}
