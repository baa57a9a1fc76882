package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/walletfx-backend/internal/domain"
)

const testToken = "test-token"

// fakeConverter records every conversion it is asked for
type fakeConverter struct {
	mu    sync.Mutex
	calls []decimal.Decimal
	err   error
}

func (f *fakeConverter) Convert(ctx context.Context, from, to domain.CurrencyCode, amount decimal.Decimal) (domain.Quote, error) {
	f.mu.Lock()
	f.calls = append(f.calls, amount)
	f.mu.Unlock()
	if f.err != nil {
		return domain.Quote{}, f.err
	}
	return domain.Quote{Result: amount.Mul(decimal.NewFromInt(2)), Rate: decimal.NewFromInt(2), Source: domain.QuoteSourceRemote}, nil
}

func (f *fakeConverter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type stubRates struct {
	table      *domain.RateTable
	err        error
	refreshed  *domain.RateTable
	refreshErr error
}

func (s stubRates) Get(ctx context.Context) (*domain.RateTable, error) {
	return s.table, s.err
}

func (s stubRates) Refresh(ctx context.Context) (*domain.RateTable, error) {
	return s.refreshed, s.refreshErr
}

func newTestRouter(converter *fakeConverter, rates RateReader) http.Handler {
	return NewRouter(Deps{
		Converter:   converter,
		Rates:       rates,
		Gatherer:    prometheus.NewRegistry(),
		APIToken:    testToken,
		QuietWindow: 20 * time.Millisecond,
	})
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRouter_HealthAndMetricsArePublic(t *testing.T) {
	router := newTestRouter(&fakeConverter{}, stubRates{})

	for _, path := range []string{"/healthz", "/metrics"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRouter_RequiresToken(t *testing.T) {
	router := newTestRouter(&fakeConverter{}, stubRates{})

	tests := []struct {
		name    string
		header  string
		query   string
		code    int
		message string
	}{
		{name: "Missing", code: http.StatusUnauthorized, message: "missing authorization header"},
		{name: "Wrong", header: "Bearer nope", code: http.StatusUnauthorized, message: "invalid token"},
		{name: "Header", header: "Bearer " + testToken, code: http.StatusOK},
		{name: "Query parameter", query: "?token=" + testToken, code: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/fx-rates/"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.code, rec.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, decodeResponse(t, rec)["message"])
			}
		})
	}
}

func TestRouter_GetRates(t *testing.T) {
	updated := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	router := newTestRouter(&fakeConverter{}, stubRates{table: domain.NewRateTable("USD", map[domain.CurrencyCode]decimal.Decimal{
		"NGN": decimal.NewFromInt(1550),
	}, updated)})

	req := httptest.NewRequest(http.MethodGet, "/api/fx-rates/", nil)
	req.Header.Set("Authorization", testToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeResponse(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "USD", data["base_currency"])
	assert.Equal(t, map[string]interface{}{"NGN": "1550"}, data["rates"])
	assert.Equal(t, "2026-03-01T10:00:00Z", data["last_updated"])
}

func TestRouter_GetRatesUnavailable(t *testing.T) {
	router := newTestRouter(&fakeConverter{}, stubRates{err: domain.ErrRatesNotFound})

	req := httptest.NewRequest(http.MethodGet, "/api/fx-rates/", nil)
	req.Header.Set("Authorization", testToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_GetRatesForBase(t *testing.T) {
	router := newTestRouter(&fakeConverter{}, stubRates{table: domain.NewRateTable("USD", map[domain.CurrencyCode]decimal.Decimal{
		"NGN": decimal.NewFromInt(1550),
	}, time.Time{})})

	tests := []struct {
		name string
		path string
		code int
	}{
		{name: "Tracked base", path: "/api/fx-rates/USD", code: http.StatusOK},
		{name: "Base is case insensitive", path: "/api/fx-rates/usd", code: http.StatusOK},
		{name: "Other base", path: "/api/fx-rates/EUR", code: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set("Authorization", testToken)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, tt.code, rec.Code)
			if tt.code == http.StatusOK {
				data := decodeResponse(t, rec)["data"].(map[string]interface{})
				assert.Equal(t, "USD", data["base_currency"])
				assert.NotContains(t, data, "last_updated")
			}
		})
	}
}

func TestRouter_RefreshRates(t *testing.T) {
	refreshed := domain.NewRateTable("USD", map[domain.CurrencyCode]decimal.Decimal{
		"NGN": decimal.NewFromInt(1600),
	}, time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))

	tests := []struct {
		name  string
		rates stubRates
		code  int
	}{
		{name: "Refreshed", rates: stubRates{refreshed: refreshed}, code: http.StatusOK},
		{name: "Source down", rates: stubRates{refreshErr: errors.New("fastforex unreachable")}, code: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&fakeConverter{}, tt.rates)

			req := httptest.NewRequest(http.MethodPost, "/api/fx-rates/refresh", nil)
			req.Header.Set("Authorization", testToken)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, tt.code, rec.Code)
			if tt.code == http.StatusOK {
				data := decodeResponse(t, rec)["data"].(map[string]interface{})
				assert.Equal(t, map[string]interface{}{"NGN": "1600"}, data["rates"])
				assert.Equal(t, "2026-03-02T08:00:00Z", data["last_updated"])
			}
		})
	}
}

func TestRouter_Convert(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		converterErr error
		code         int
	}{
		{name: "Valid", body: `{"from":"cNGN","to":"USDx","amount":"1550"}`, code: http.StatusOK},
		{name: "Numeric amount", body: `{"from":"cNGN","to":"USDx","amount":12.5}`, code: http.StatusOK},
		{name: "Malformed body", body: `{"from":`, code: http.StatusBadRequest},
		{name: "Missing currency", body: `{"from":"cNGN","amount":"1"}`, code: http.StatusBadRequest},
		{name: "Unknown currency", body: `{"from":"XYZ","to":"USDx","amount":"1"}`, converterErr: domain.ErrUnknownCurrency, code: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&fakeConverter{err: tt.converterErr}, stubRates{})
			req := httptest.NewRequest(http.MethodPost, "/api/fx-rates/convert", strings.NewReader(tt.body))
			req.Header.Set("Authorization", testToken)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestRouter_ConvertResponse(t *testing.T) {
	router := newTestRouter(&fakeConverter{}, stubRates{})
	req := httptest.NewRequest(http.MethodPost, "/api/fx-rates/convert", strings.NewReader(`{"from":"cNGN","to":"USDx","amount":"10"}`))
	req.Header.Set("Authorization", testToken)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeResponse(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "20", data["result"])
	assert.Equal(t, "REMOTE", data["source"])
}

func TestStreamQuotes_DeliversOnlyLatestInput(t *testing.T) {
	converter := &fakeConverter{}
	server := httptest.NewServer(newTestRouter(converter, stubRates{}))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/quotes?token=" + testToken
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, conn.WriteJSON(map[string]string{"from": "cNGN", "to": "USDx", "amount": "10"}))
	require.NoError(t, conn.WriteJSON(map[string]string{"from": "cNGN", "to": "USDx", "amount": "20"}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg map[string]interface{}
	require.NoError(t, conn.ReadJSON(&msg))

	assert.Equal(t, "20", msg["amount"])
	assert.Equal(t, "40", msg["result"])
	assert.Equal(t, 1, converter.callCount())
}

func TestStreamQuotes_RejectsMalformedFrames(t *testing.T) {
	server := httptest.NewServer(newTestRouter(&fakeConverter{}, stubRates{}))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/quotes?token=" + testToken
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg map[string]interface{}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "invalid request body", msg["error"])
}
