package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/walletfx-backend/internal/domain"
)

// walletBalanceRepository implements domain.BalanceSource
type walletBalanceRepository struct {
	db *DB
}

// NewWalletBalanceRepository creates a new wallet balance repository
func NewWalletBalanceRepository(db *DB) domain.BalanceSource {
	return &walletBalanceRepository{db: db}
}

// FetchBalances reads every currency balance of a wallet into one snapshot
// A wallet without balance rows yields an empty snapshot; an unknown wallet is ErrWalletNotFound
func (r *walletBalanceRepository) FetchBalances(ctx context.Context, walletID uuid.UUID) (domain.BalanceSnapshot, error) {
	query := `
		SELECT b.currency, b.amount
		FROM wallets w
		LEFT JOIN wallet_balances b ON b.wallet_id = w.id
		WHERE w.id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, walletID)
	if err != nil {
		return domain.BalanceSnapshot{}, fmt.Errorf("failed to query wallet balances: %w", err)
	}
	defer rows.Close()

	found := false
	amounts := make(map[domain.CurrencyCode]decimal.Decimal)
	for rows.Next() {
		found = true

		var currency, amountStr sql.NullString
		if err := rows.Scan(&currency, &amountStr); err != nil {
			return domain.BalanceSnapshot{}, fmt.Errorf("failed to scan wallet balance: %w", err)
		}
		if !currency.Valid {
			continue
		}

		// Parse amount (NUMERIC)
		amount, err := decimal.NewFromString(amountStr.String)
		if err != nil {
			return domain.BalanceSnapshot{}, fmt.Errorf("failed to parse %s amount: %w", currency.String, err)
		}
		amounts[domain.CurrencyCode(currency.String)] = amount
	}

	if err := rows.Err(); err != nil {
		return domain.BalanceSnapshot{}, fmt.Errorf("error iterating wallet balances: %w", err)
	}
	if !found {
		return domain.BalanceSnapshot{}, fmt.Errorf("wallet %s: %w", walletID, domain.ErrWalletNotFound)
	}

	return domain.NewBalanceSnapshot(amounts)
}
