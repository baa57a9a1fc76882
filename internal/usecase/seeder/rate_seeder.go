package seeder

import (
	"context"
	"errors"

	"github.com/simaogato/walletfx-backend/internal/domain"
)

// RateSeeder handles seeding of the fallback rate table
type RateSeeder struct {
	repo     domain.RateSnapshotRepository
	fallback *domain.RateTable
}

// NewRateSeeder creates a new RateSeeder instance
func NewRateSeeder(repo domain.RateSnapshotRepository, fallback *domain.RateTable) *RateSeeder {
	return &RateSeeder{
		repo:     repo,
		fallback: fallback,
	}
}

// Seed ensures a rate snapshot exists for the fallback table's base
// If none exists, it stores the fallback table; an existing snapshot is left untouched
// Returns true when the fallback table was written
func (s *RateSeeder) Seed(ctx context.Context) (bool, error) {
	if s.fallback == nil || s.fallback.IsEmpty() {
		return false, nil
	}

	_, err := s.repo.GetLatest(ctx, s.fallback.Base())
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrRatesNotFound) {
		return false, err
	}

	if err := s.repo.Save(ctx, s.fallback); err != nil {
		return false, err
	}
	return true, nil
}
