package conversion

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/simaogato/walletfx-backend/internal/domain"
	"github.com/simaogato/walletfx-backend/internal/metrics"
)

const defaultQuoteTimeout = 10 * time.Second

var errMalformedQuote = errors.New("malformed remote quote")

// RateProvider hands out the latest rate table snapshot.
// Current never returns nil.
type RateProvider interface {
	Current() *domain.RateTable
}

// ConversionService converts amounts between wallet currencies.
// It prefers a live remote quote and falls back to local cross rates.
type ConversionService struct {
	Quoter       domain.RemoteQuoter
	Rates        RateProvider
	Mapping      *domain.CurrencyMapping
	QuoteTimeout time.Duration
	Logger       *zap.Logger
	Metrics      *metrics.FXMetrics
}

// NewConversionService creates a new ConversionService instance
func NewConversionService(
	quoter domain.RemoteQuoter,
	rates RateProvider,
	mapping *domain.CurrencyMapping,
	quoteTimeout time.Duration,
	logger *zap.Logger,
	m *metrics.FXMetrics,
) *ConversionService {
	if quoteTimeout <= 0 {
		quoteTimeout = defaultQuoteTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConversionService{
		Quoter:       quoter,
		Rates:        rates,
		Mapping:      mapping,
		QuoteTimeout: quoteTimeout,
		Logger:       logger,
		Metrics:      m,
	}
}

// Convert returns the converted amount and effective rate
// Logic:
//  1. amount <= 0 or identical currencies: {amount, 1} without any remote call
//  2. Remote quote on market codes, returned verbatim on success
//  3. On remote failure: amount * crossRate from the latest rate table,
//     or the {0, 0} unavailable sentinel when no cross rate exists
//
// The only error returned is ErrUnknownCurrency; remote failures never surface.
func (s *ConversionService) Convert(ctx context.Context, from, to domain.CurrencyCode, amount decimal.Decimal) (domain.Quote, error) {
	if amount.LessThanOrEqual(decimal.Zero) || from == to {
		s.Metrics.QuoteServed(domain.QuoteSourceIdentity)
		return domain.IdentityQuote(amount), nil
	}

	fromMarket, err := s.Mapping.ToMarketCode(from)
	if err != nil {
		return domain.Quote{}, err
	}
	toMarket, err := s.Mapping.ToMarketCode(to)
	if err != nil {
		return domain.Quote{}, err
	}

	remote, err := s.remoteQuote(ctx, fromMarket, toMarket, amount)
	if err == nil {
		s.Metrics.QuoteServed(domain.QuoteSourceRemote)
		return domain.Quote{
			Result: remote.Result,
			Rate:   remote.Rate,
			Source: domain.QuoteSourceRemote,
		}, nil
	}

	s.Metrics.RemoteQuoteFailed()
	fields := []zap.Field{
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.String("amount", amount.String()),
		zap.Error(err),
	}
	if ctx.Err() != nil {
		// Caller gave up (superseded input); nothing worth a warning
		s.Logger.Debug("remote quote abandoned", fields...)
	} else {
		s.Logger.Warn("remote quote failed, using local rates", fields...)
	}

	quote := s.fallback(from, to, amount)
	s.Metrics.QuoteServed(quote.Source)
	return quote, nil
}

func (s *ConversionService) remoteQuote(ctx context.Context, from, to domain.CurrencyCode, amount decimal.Decimal) (domain.RemoteQuote, error) {
	if s.Quoter == nil {
		return domain.RemoteQuote{}, errors.New("remote quoter is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, s.QuoteTimeout)
	defer cancel()

	quote, err := s.Quoter.Convert(ctx, from, to, amount)
	if err != nil {
		return domain.RemoteQuote{}, err
	}
	if quote.Result.IsNegative() || !quote.Rate.GreaterThan(decimal.Zero) {
		return domain.RemoteQuote{}, errors.Wrapf(errMalformedQuote, "result=%s rate=%s", quote.Result, quote.Rate)
	}
	return quote, nil
}

func (s *ConversionService) fallback(from, to domain.CurrencyCode, amount decimal.Decimal) domain.Quote {
	rate, ok := s.currentTable().CrossRate(s.Mapping, from, to)
	if !ok {
		return domain.UnavailableQuote()
	}
	return domain.Quote{
		Result: amount.Mul(rate),
		Rate:   rate,
		Source: domain.QuoteSourceFallback,
	}
}

func (s *ConversionService) currentTable() *domain.RateTable {
	if s.Rates == nil {
		return nil
	}
	return s.Rates.Current()
}
