// Package ratecodec is the storage encoding of rate tables shared by the postgres and redis stores.
package ratecodec

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/simaogato/walletfx-backend/internal/domain"
)

// Document is the JSON form of a rate table; rates are encoded as strings to keep precision
type Document struct {
	Base      string                     `json:"base"`
	Rates     map[string]decimal.Decimal `json:"rates"`
	UpdatedAt time.Time                  `json:"updated_at"`
}

// RatesJSON encodes only the rate entries of a table
func RatesJSON(table *domain.RateTable) ([]byte, error) {
	data, err := json.Marshal(stringKeys(table))
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode rates")
	}
	return data, nil
}

// ParseRates decodes rate entries written by RatesJSON
func ParseRates(data []byte) (map[domain.CurrencyCode]decimal.Decimal, error) {
	var raw map[string]decimal.Decimal
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "failed to decode rates")
	}
	rates := make(map[domain.CurrencyCode]decimal.Decimal, len(raw))
	for code, rate := range raw {
		rates[domain.CurrencyCode(code)] = rate
	}
	return rates, nil
}

// Marshal encodes a whole table
func Marshal(table *domain.RateTable) ([]byte, error) {
	if table == nil {
		return nil, errors.New("cannot encode a nil rate table")
	}
	data, err := json.Marshal(Document{
		Base:      table.Base().String(),
		Rates:     stringKeys(table),
		UpdatedAt: table.UpdatedAt().UTC(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode rate table")
	}
	return data, nil
}

// Unmarshal decodes a table written by Marshal
func Unmarshal(data []byte) (*domain.RateTable, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode rate table")
	}
	if doc.Base == "" {
		return nil, errors.New("rate table document has no base")
	}
	rates := make(map[domain.CurrencyCode]decimal.Decimal, len(doc.Rates))
	for code, rate := range doc.Rates {
		rates[domain.CurrencyCode(code)] = rate
	}
	return domain.NewRateTable(domain.CurrencyCode(doc.Base), rates, doc.UpdatedAt), nil
}

func stringKeys(table *domain.RateTable) map[string]decimal.Decimal {
	rates := make(map[string]decimal.Decimal, table.Len())
	for code, rate := range table.Rates() {
		rates[code.String()] = rate
	}
	return rates
}
