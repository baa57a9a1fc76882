package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/simaogato/walletfx-backend/internal/adapter/ratecodec"
	"github.com/simaogato/walletfx-backend/internal/domain"
)

// rateSnapshotRepository implements domain.RateSnapshotRepository
type rateSnapshotRepository struct {
	db *DB
}

// NewRateSnapshotRepository creates a new rate snapshot repository
func NewRateSnapshotRepository(db *DB) domain.RateSnapshotRepository {
	return &rateSnapshotRepository{db: db}
}

// Save appends a snapshot; history is kept, GetLatest reads the newest one
func (r *rateSnapshotRepository) Save(ctx context.Context, table *domain.RateTable) error {
	rates, err := ratecodec.RatesJSON(table)
	if err != nil {
		return err
	}

	// A table without a timestamp, such as the seeded fallback, stays stale once reloaded
	updatedAt := sql.NullTime{Time: table.UpdatedAt().UTC(), Valid: !table.UpdatedAt().IsZero()}

	query := `
		INSERT INTO rate_snapshots (id, base, rates, updated_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err = r.db.ExecContext(ctx, query,
		ulid.Make().String(),
		table.Base().String(),
		rates,
		updatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert rate snapshot: %w", err)
	}

	return nil
}

// GetLatest retrieves the most recently stored snapshot for a base currency
func (r *rateSnapshotRepository) GetLatest(ctx context.Context, base domain.CurrencyCode) (*domain.RateTable, error) {
	query := `
		SELECT rates, updated_at
		FROM rate_snapshots
		WHERE base = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	var ratesJSON []byte
	var updatedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, base.String()).Scan(&ratesJSON, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no rate snapshot for base %s: %w", base, domain.ErrRatesNotFound)
		}
		return nil, fmt.Errorf("failed to get latest rate snapshot: %w", err)
	}

	rates, err := ratecodec.ParseRates(ratesJSON)
	if err != nil {
		return nil, err
	}

	if !updatedAt.Valid {
		return domain.NewRateTable(base, rates, time.Time{}), nil
	}
	return domain.NewRateTable(base, rates, updatedAt.Time), nil
}
