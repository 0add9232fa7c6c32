package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/udhaar-app/udhaar/internal/models"
	"github.com/udhaar-app/udhaar/internal/storage"
)

// GetCurrency retrieves a currency by its code.
func (s *SQLiteStore) GetCurrency(ctx context.Context, id string) (*models.Currency, error) {
	currency := &models.Currency{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, display_name, symbol, rate, decimals FROM currency WHERE id = ?",
		id,
	).Scan(&currency.ID, &currency.DisplayName, &currency.Symbol, &currency.Rate, &currency.Decimals)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("currency %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get currency: %w", err)
	}
	return currency, nil
}

// UpsertCurrency inserts or replaces a currency. The periodic rate refresh
// job writes every known currency through this.
func (s *SQLiteStore) UpsertCurrency(ctx context.Context, currency *models.Currency) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO currency (id, display_name, symbol, rate, decimals)
		 VALUES (?, ?, ?, ?, ?)`,
		currency.ID, currency.DisplayName, currency.Symbol, currency.Rate, currency.Decimals,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert currency: %w", err)
	}
	return nil
}

// ListCurrencies returns all known currencies.
func (s *SQLiteStore) ListCurrencies(ctx context.Context) ([]*models.Currency, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, display_name, symbol, rate, decimals FROM currency ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	defer rows.Close()

	var currencies []*models.Currency
	for rows.Next() {
		c := &models.Currency{}
		if err := rows.Scan(&c.ID, &c.DisplayName, &c.Symbol, &c.Rate, &c.Decimals); err != nil {
			return nil, fmt.Errorf("failed to scan currency: %w", err)
		}
		currencies = append(currencies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate currencies: %w", err)
	}
	return currencies, nil
}
