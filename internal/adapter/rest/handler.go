package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/simaogato/walletfx-backend/internal/domain"
)

type handler struct {
	deps Deps
}

type ratesResponse struct {
	Base      string                     `json:"base_currency"`
	Rates     map[string]decimal.Decimal `json:"rates"`
	UpdatedAt *time.Time                 `json:"last_updated,omitempty"`
}

type convertRequest struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

type quoteResponse struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
	Result decimal.Decimal `json:"result"`
	Rate   decimal.Decimal `json:"rate"`
	Source string          `json:"source"`
}

// GET /api/fx-rates
func (h *handler) getRates(w http.ResponseWriter, r *http.Request) {
	table, err := h.deps.Rates.Get(r.Context())
	if err != nil {
		h.deps.Logger.Warn("failed to serve rates", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "exchange rates are unavailable")
		return
	}

	writeJSON(w, http.StatusOK, newRatesResponse(table))
}

// GET /api/fx-rates/{currency}
// Only the tracked base currency has a table
func (h *handler) getRatesForBase(w http.ResponseWriter, r *http.Request) {
	requested := strings.TrimSpace(chi.URLParam(r, "currency"))

	table, err := h.deps.Rates.Get(r.Context())
	if err != nil {
		h.deps.Logger.Warn("failed to serve rates", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "exchange rates are unavailable")
		return
	}
	if !strings.EqualFold(requested, table.Base().String()) {
		writeError(w, http.StatusNotFound, "rates for "+requested+" are not tracked")
		return
	}

	writeJSON(w, http.StatusOK, newRatesResponse(table))
}

// POST /api/fx-rates/refresh
func (h *handler) refreshRates(w http.ResponseWriter, r *http.Request) {
	table, err := h.deps.Rates.Refresh(r.Context())
	if err != nil {
		h.deps.Logger.Warn("manual rate refresh failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "failed to refresh rates")
		return
	}

	writeJSON(w, http.StatusOK, newRatesResponse(table))
}

func newRatesResponse(table *domain.RateTable) ratesResponse {
	resp := ratesResponse{
		Base:  table.Base().String(),
		Rates: make(map[string]decimal.Decimal, table.Len()),
	}
	for code, rate := range table.Rates() {
		resp.Rates[code.String()] = rate
	}
	if updated := table.UpdatedAt(); !updated.IsZero() {
		resp.UpdatedAt = &updated
	}
	return resp
}

// POST /api/fx-rates/convert
func (h *handler) convert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.From == "" || req.To == "" {
		writeError(w, http.StatusBadRequest, "from and to currencies are required")
		return
	}

	quote, err := h.deps.Converter.Convert(r.Context(), domain.CurrencyCode(req.From), domain.CurrencyCode(req.To), req.Amount)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownCurrency) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to convert")
		return
	}

	writeJSON(w, http.StatusOK, newQuoteResponse(req.From, req.To, req.Amount, quote))
}

func newQuoteResponse(from, to string, amount decimal.Decimal, quote domain.Quote) quoteResponse {
	return quoteResponse{
		From:   from,
		To:     to,
		Amount: amount,
		Result: quote.Result,
		Rate:   quote.Rate,
		Source: string(quote.Source),
	}
}
