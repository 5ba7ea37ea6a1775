package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/goldfolio-backend/internal/domain"
	"github.com/simaogato/goldfolio-backend/internal/usecase/portfolio"
)

type stubPrices struct {
	snap   *domain.PriceSnapshot
	status portfolio.PriceStatus
	err    error
}

func (s stubPrices) CurrentPrices(context.Context) (*domain.PriceSnapshot, portfolio.PriceStatus, error) {
	return s.snap, s.status, s.err
}

func TestGetPrices(t *testing.T) {
	snap := domain.NewPriceSnapshot(time.Date(2025, 3, 4, 14, 5, 0, 0, time.UTC))
	snap.Prices[domain.AssetTypeGramGold] = decimal.NewNullDecimal(decimal.RequireFromString("2266.62"))
	snap.Prices[domain.AssetTypeBracelet22k] = decimal.NewNullDecimal(decimal.RequireFromString("2071.15"))

	router := NewRouter(stubPrices{snap: snap, status: portfolio.PriceStatusLive}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/prices", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2266.62, body["gram-altin"])
	assert.Equal(t, 2071.15, body["22-ayar-bilezik"])
	assert.Contains(t, body, "gumus")
	assert.Nil(t, body["gumus"])
	assert.Equal(t, "2025-03-04T14:05:00Z", body["updateDate"])
	assert.Equal(t, "live", body["priceStatus"])

	// Digits are written as-is, not through a float
	assert.True(t, strings.Contains(rec.Body.String(), `"gram-altin":2266.62`))
}

func TestGetPrices_PartialSnapshot(t *testing.T) {
	snap := domain.NewPriceSnapshot(time.Date(2025, 3, 4, 15, 30, 0, 0, time.UTC))
	snap.Partial = true
	snap.Prices[domain.AssetTypeGramGold] = decimal.NewNullDecimal(decimal.RequireFromString("2266.62"))

	router := NewRouter(stubPrices{snap: snap, status: portfolio.PriceStatusPartial}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/prices", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2266.62, body["gram-altin"])
	assert.Nil(t, body["gumus"])
	assert.Equal(t, "partial", body["priceStatus"])
}

func TestGetPrices_UpstreamDown(t *testing.T) {
	router := NewRouter(stubPrices{
		status: portfolio.PriceStatusUnavailable,
		err:    fmt.Errorf("%w: status 503", domain.ErrUpstreamFetch),
	}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/prices", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch prices"}`, rec.Body.String())
}

func TestGetPrices_InternalError(t *testing.T) {
	router := NewRouter(stubPrices{err: fmt.Errorf("boom")}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/prices", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealthAndNotFound(t *testing.T) {
	router := NewRouter(stubPrices{}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/lots", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/prices", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
