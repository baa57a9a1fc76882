package conversion

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/simaogato/walletfx-backend/internal/domain"
)

// DefaultQuietWindow is how long input must stay unchanged before a quote is requested
const DefaultQuietWindow = 300 * time.Millisecond

// ErrDebouncerClosed is returned by Request after Close
var ErrDebouncerClosed = errors.New("quote debouncer is closed")

// Converter is the conversion operation the debouncer sits in front of
type Converter interface {
	Convert(ctx context.Context, from, to domain.CurrencyCode, amount decimal.Decimal) (domain.Quote, error)
}

// DebouncedQuote is a delivered result together with the input it answers
type DebouncedQuote struct {
	Seq    uint64
	From   domain.CurrencyCode
	To     domain.CurrencyCode
	Amount decimal.Decimal
	Quote  domain.Quote
	Err    error
}

// DebouncerOption configures a QuoteDebouncer
type DebouncerOption func(*QuoteDebouncer)

// WithQuietWindow overrides the quiet window
func WithQuietWindow(d time.Duration) DebouncerOption {
	return func(q *QuoteDebouncer) {
		if d > 0 {
			q.window = d
		}
	}
}

// QuoteDebouncer coalesces rapid requests into one conversion per quiet window.
// Every Request takes the next sequence number; a result is delivered only if its
// sequence number is still the latest issued one (last request wins).
// At most one conversion is in flight: a newer request cancels the older call.
type QuoteDebouncer struct {
	converter Converter
	deliver   func(DebouncedQuote)
	window    time.Duration

	mu       sync.Mutex
	seq      uint64
	timer    *time.Timer
	inflight context.CancelFunc
	closed   bool

	// serializes deliveries in finalization order
	deliverMu sync.Mutex
}

// NewQuoteDebouncer creates a debouncer that hands results to deliver
func NewQuoteDebouncer(converter Converter, deliver func(DebouncedQuote), opts ...DebouncerOption) *QuoteDebouncer {
	d := &QuoteDebouncer{
		converter: converter,
		deliver:   deliver,
		window:    DefaultQuietWindow,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Request schedules a conversion for the given input, superseding any earlier one
func (d *QuoteDebouncer) Request(from, to domain.CurrencyCode, amount decimal.Decimal) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDebouncerClosed
	}

	d.seq++
	seq := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}
	d.cancelInflightLocked()

	d.timer = time.AfterFunc(d.window, func() {
		d.fire(seq, from, to, amount)
	})
	return nil
}

// Close cancels the pending timer and any in-flight conversion.
// No result is delivered once Close has returned, except one already being handed over.
func (d *QuoteDebouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.closed = true
	d.seq++

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.cancelInflightLocked()
}

// Pending reports whether a request is waiting for its quiet window or its result
func (d *QuoteDebouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.closed && (d.timer != nil || d.inflight != nil)
}

func (d *QuoteDebouncer) fire(seq uint64, from, to domain.CurrencyCode, amount decimal.Decimal) {
	d.mu.Lock()
	if d.closed || seq != d.seq {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.cancelInflightLocked()
	ctx, cancel := context.WithCancel(context.Background())
	d.inflight = cancel
	d.mu.Unlock()

	quote, err := d.converter.Convert(ctx, from, to, amount)

	d.deliverMu.Lock()
	defer d.deliverMu.Unlock()

	d.mu.Lock()
	current := !d.closed && seq == d.seq
	if current {
		d.inflight = nil
	}
	d.mu.Unlock()
	cancel()

	if !current {
		return
	}

	d.deliver(DebouncedQuote{
		Seq:    seq,
		From:   from,
		To:     to,
		Amount: amount,
		Quote:  quote,
		Err:    err,
	})
}

func (d *QuoteDebouncer) cancelInflightLocked() {
	if d.inflight != nil {
		d.inflight()
		d.inflight = nil
	}
}
