package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/simaogato/walletfx-backend/internal/domain"
)

func TestFXMetrics_Record(t *testing.T) {
	m := NewFXMetrics(prometheus.NewRegistry())

	m.QuoteServed(domain.QuoteSourceFallback)
	m.QuoteServed(domain.QuoteSourceFallback)
	m.RemoteQuoteFailed()
	m.TransferRejected(domain.RejectionInsufficientBalance)
	m.RateRefreshed(nil)
	m.RateRefreshed(errors.New("boom"))
	m.RateTableAge(90 * time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.QuotesTotal.WithLabelValues("FALLBACK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RemoteQuoteErrorsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TransferRejectionsTotal.WithLabelValues("INSUFFICIENT_BALANCE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateRefreshTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateRefreshTotal.WithLabelValues("error")))
	assert.Equal(t, 90.0, testutil.ToFloat64(m.RateTableAgeSeconds))
}

func TestFXMetrics_NilIsNoop(t *testing.T) {
	var m *FXMetrics

	assert.NotPanics(t, func() {
		m.QuoteServed(domain.QuoteSourceRemote)
		m.RemoteQuoteFailed()
		m.TransferRejected(domain.RejectionInvalidAmount)
		m.RateRefreshed(nil)
		m.RateTableAge(time.Second)
	})
}
