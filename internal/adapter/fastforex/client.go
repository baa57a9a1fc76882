package fastforex

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/simaogato/walletfx-backend/internal/domain"
)

const (
	DefaultBaseURL = "https://api.fastforex.io"
	defaultTimeout = 15 * time.Second

	// updatedLayout is the format of the "updated" field, always UTC
	updatedLayout = "2006-01-02 15:04:05"

	// maxResponseBytes bounds a single API response; a full fetch-all is a few KB
	maxResponseBytes = 1 << 20
)

// ErrEmptyResults is returned when FastForex answers 200 without any rates
var ErrEmptyResults = errors.New("fastforex returned empty results")

// Client talks to the FastForex REST API.
// It serves both as the rate table source and as the remote quoter.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	now        func() time.Time
}

type fetchAllResponse struct {
	Base    string                     `json:"base"`
	Results map[string]decimal.Decimal `json:"results"`
	Updated string                     `json:"updated"`
	MS      int                        `json:"ms"`
}

type convertResponse struct {
	Base   string                     `json:"base"`
	Amount decimal.Decimal            `json:"amount"`
	Result map[string]decimal.Decimal `json:"result"`
	MS     int                        `json:"ms"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewClient creates a FastForex client; an empty baseURL uses the public API
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		now: time.Now,
	}
}

// FetchRates loads every rate quoted against base (GET /fetch-all)
func (c *Client) FetchRates(ctx context.Context, base domain.CurrencyCode) (*domain.RateTable, error) {
	query := url.Values{}
	query.Set("from", base.String())

	var resp fetchAllResponse
	if err := c.get(ctx, "/fetch-all", query, &resp); err != nil {
		return nil, errors.Wrapf(err, "failed to fetch %s rates", base)
	}
	if len(resp.Results) == 0 {
		return nil, ErrEmptyResults
	}

	rates := make(map[domain.CurrencyCode]decimal.Decimal, len(resp.Results))
	for code, rate := range resp.Results {
		rates[domain.CurrencyCode(code)] = rate
	}

	tableBase := base
	if resp.Base != "" {
		tableBase = domain.CurrencyCode(resp.Base)
	}

	return domain.NewRateTable(tableBase, rates, c.updatedAt(resp.Updated)), nil
}

// Convert quotes amount of from in to (GET /convert)
func (c *Client) Convert(ctx context.Context, from, to domain.CurrencyCode, amount decimal.Decimal) (domain.RemoteQuote, error) {
	query := url.Values{}
	query.Set("from", from.String())
	query.Set("to", to.String())
	query.Set("amount", amount.String())

	var resp convertResponse
	if err := c.get(ctx, "/convert", query, &resp); err != nil {
		return domain.RemoteQuote{}, errors.Wrapf(err, "failed to convert %s to %s", from, to)
	}

	result, ok := resp.Result[to.String()]
	if !ok {
		return domain.RemoteQuote{}, errors.Errorf("fastforex convert response has no %s result", to)
	}
	rate, ok := resp.Result["rate"]
	if !ok {
		return domain.RemoteQuote{}, errors.New("fastforex convert response has no rate")
	}

	return domain.RemoteQuote{Result: result, Rate: rate}, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	query.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// the url carries the api key
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return errors.Wrap(urlErr.Err, "fastforex request failed")
		}
		return errors.Wrap(err, "fastforex request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return errors.Wrap(err, "failed to read response body")
	}
	if len(body) > maxResponseBytes {
		return errors.Errorf("fastforex response exceeds %d bytes", maxResponseBytes)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return errors.Errorf("fastforex returned status %d: %s", resp.StatusCode, apiErr.Error)
		}
		return errors.Errorf("fastforex returned status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "failed to decode response")
	}
	return nil
}

// updatedAt parses the API timestamp, falling back to the fetch time
func (c *Client) updatedAt(raw string) time.Time {
	if raw != "" {
		if t, err := time.ParseInLocation(updatedLayout, raw, time.UTC); err == nil {
			return t
		}
	}
	return c.now().UTC()
}
