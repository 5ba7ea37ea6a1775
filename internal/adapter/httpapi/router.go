// Package httpapi serves the read-only JSON endpoints of the price feed.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/simaogato/goldfolio-backend/internal/domain"
	"github.com/simaogato/goldfolio-backend/internal/usecase/portfolio"
)

// PriceProvider returns the current snapshot or the freshest one available.
type PriceProvider interface {
	CurrentPrices(ctx context.Context) (*domain.PriceSnapshot, portfolio.PriceStatus, error)
}

// Handler holds the dependencies of the HTTP endpoints.
type Handler struct {
	Prices PriceProvider
	Logger *zap.Logger
}

// NewRouter builds the chi router exposing GET /api/prices and GET /healthz.
func NewRouter(prices PriceProvider, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{Prices: prices, Logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/prices", h.GetPrices)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		sendJSONError(w, "not found", http.StatusNotFound)
	})
	return r
}

// Health reports that the process is serving.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetPrices returns {"gram-altin", "22-ayar-bilezik", "gumus", "updateDate"}.
// Prices are JSON numbers or null; updateDate is the quote time in UTC.
func (h *Handler) GetPrices(w http.ResponseWriter, r *http.Request) {
	snap, status, err := h.Prices.CurrentPrices(r.Context())
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, domain.ErrUpstreamFetch) || errors.Is(err, domain.ErrParse) {
			code = http.StatusBadGateway
		}
		h.Logger.Error("price request failed", zap.Error(err))
		sendJSONError(w, "Failed to fetch prices", code)
		return
	}

	body := make(map[string]interface{}, len(domain.PriceKeys)+2)
	for _, key := range domain.PriceKeys {
		body[string(key)] = jsonNumber(snap.PriceFor(key))
	}
	body["updateDate"] = snap.ObservedAt.UTC().Format(time.RFC3339)
	body["priceStatus"] = string(status)

	sendJSON(w, http.StatusOK, body)
}

// jsonNumber keeps the exact decimal digits on the wire.
func jsonNumber(price decimal.NullDecimal) interface{} {
	if !price.Valid {
		return nil
	}
	return json.Number(price.Decimal.String())
}

func sendJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func sendJSONError(w http.ResponseWriter, message string, status int) {
	sendJSON(w, status, map[string]string{"error": message})
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("http request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
