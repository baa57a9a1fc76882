package rest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/simaogato/walletfx-backend/internal/domain"
)

// Converter quotes a conversion between two wallet currencies
type Converter interface {
	Convert(ctx context.Context, from, to domain.CurrencyCode, amount decimal.Decimal) (domain.Quote, error)
}

// RateReader serves and refreshes the rate table
type RateReader interface {
	Get(ctx context.Context) (*domain.RateTable, error)
	Refresh(ctx context.Context) (*domain.RateTable, error)
}

// Deps are the services the HTTP surface exposes
type Deps struct {
	Converter   Converter
	Rates       RateReader
	Gatherer    prometheus.Gatherer
	APIToken    string
	QuietWindow time.Duration
	Logger      *zap.Logger
}

// NewRouter builds the ops and browser-facing HTTP routes
func NewRouter(deps Deps) chi.Router {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false, // must be false when using "*"
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"state": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))

	h := &handler{deps: deps}
	r.Group(func(r chi.Router) {
		r.Use(requireToken(deps.APIToken))

		r.Route("/api/fx-rates", func(r chi.Router) {
			r.Get("/", h.getRates)
			r.Get("/{currency}", h.getRatesForBase)
			r.Post("/convert", h.convert)
			r.Post("/refresh", h.refreshRates)
		})
		r.Get("/ws/quotes", h.streamQuotes)
	})

	return r
}

// requireToken accepts the token from the Authorization header or, for browsers
// opening a websocket, from the token query parameter
func requireToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if provided == "" {
				provided = r.URL.Query().Get("token")
			}
			if provided == "" {
				writeError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}
			if provided != token {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
