package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/simaogato/walletfx-backend/internal/domain"
)

// FXMetrics holds the counters exported by the valuation engine.
// A nil *FXMetrics is valid and records nothing.
type FXMetrics struct {
	QuotesTotal             *prometheus.CounterVec
	RemoteQuoteErrorsTotal  prometheus.Counter
	TransferRejectionsTotal *prometheus.CounterVec
	RateRefreshTotal        *prometheus.CounterVec
	RateTableAgeSeconds     prometheus.Gauge
}

// NewFXMetrics registers the metrics on reg
func NewFXMetrics(reg prometheus.Registerer) *FXMetrics {
	factory := promauto.With(reg)

	return &FXMetrics{
		QuotesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletfx_quotes_total",
				Help: "Conversion quotes served, by source",
			},
			[]string{"source"},
		),
		RemoteQuoteErrorsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "walletfx_remote_quote_errors_total",
				Help: "Remote quote calls that failed and fell back to local rates",
			},
		),
		TransferRejectionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletfx_transfer_rejections_total",
				Help: "Transfer requests rejected by validation, by reason",
			},
			[]string{"reason"},
		),
		RateRefreshTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletfx_rate_refresh_total",
				Help: "Rate table refresh attempts, by result",
			},
			[]string{"result"},
		),
		RateTableAgeSeconds: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "walletfx_rate_table_age_seconds",
				Help: "Age of the rate table currently in use",
			},
		),
	}
}

func (m *FXMetrics) QuoteServed(source domain.QuoteSource) {
	if m == nil {
		return
	}
	m.QuotesTotal.WithLabelValues(string(source)).Inc()
}

func (m *FXMetrics) RemoteQuoteFailed() {
	if m == nil {
		return
	}
	m.RemoteQuoteErrorsTotal.Inc()
}

func (m *FXMetrics) TransferRejected(reason domain.RejectionReason) {
	if m == nil {
		return
	}
	m.TransferRejectionsTotal.WithLabelValues(string(reason)).Inc()
}

func (m *FXMetrics) RateRefreshed(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.RateRefreshTotal.WithLabelValues(result).Inc()
}

func (m *FXMetrics) RateTableAge(age time.Duration) {
	if m == nil {
		return
	}
	m.RateTableAgeSeconds.Set(age.Seconds())
}
