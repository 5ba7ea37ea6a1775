package main

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/simaogato/goldfolio-backend/internal/domain"
	"github.com/simaogato/goldfolio-backend/internal/usecase/portfolio"
	"github.com/simaogato/goldfolio-backend/internal/usecase/valuation"
)

func TestFormatMoney(t *testing.T) {
	assert.Contains(t, formatMoney(decimal.RequireFromString("2266.62")), "2.266,62")
	assert.Contains(t, formatMoney(decimal.RequireFromString("0.005")), "0,01")
	assert.Contains(t, formatMoney(decimal.RequireFromString("-3000")), "3.000,00")
}

func TestFormatMoney_TurkishSeparators(t *testing.T) {
	assert.Equal(t, "₺2.266,62", formatMoney(decimal.RequireFromString("2266.62")))
	assert.Equal(t, "₺1.234.567,89", formatMoney(decimal.RequireFromString("1234567.89")))
	assert.Equal(t, "-₺3.000,00", formatMoney(decimal.RequireFromString("-3000")))
	assert.Equal(t, "₺0,01", formatMoney(decimal.RequireFromString("0.005")))
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "n/a", formatPrice(decimal.NullDecimal{}))
	assert.Equal(t, "10.500 g", formatGrams(decimal.RequireFromString("10.5")))
	assert.Equal(t, "10.00%", formatPercent(decimal.NewFromInt(10)))
	assert.Equal(t, "Gümüş", assetLabel(domain.AssetTypeSilver))
	assert.Equal(t, "platinum", assetLabel(domain.AssetType("platinum")))
}

func TestPrintSnapshot(t *testing.T) {
	snap := domain.NewPriceSnapshot(time.Date(2025, 3, 4, 14, 5, 0, 0, time.UTC))
	snap.Prices[domain.AssetTypeGramGold] = decimal.NewNullDecimal(decimal.RequireFromString("2266.62"))

	var out bytes.Buffer
	printSnapshot(&out, snap)

	assert.Contains(t, out.String(), "Gram Altın (24k)")
	assert.Contains(t, out.String(), "2.266,62")
	assert.Contains(t, out.String(), "n/a")
	assert.Contains(t, out.String(), "2025-03-04 17:05")
}

func TestPrintOverview(t *testing.T) {
	lot := &domain.Lot{
		ID:            uuid.New(),
		AssetType:     domain.AssetTypeGramGold,
		Amount:        decimal.NewFromInt(10),
		PurchasePrice: decimal.NewFromInt(2000),
		PurchaseDate:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Status:        domain.LotStatusActive,
	}
	snap := domain.NewPriceSnapshot(time.Date(2025, 3, 4, 14, 5, 0, 0, time.UTC))
	snap.Prices[domain.AssetTypeGramGold] = decimal.NewNullDecimal(decimal.NewFromInt(2200))

	var out bytes.Buffer
	printOverview(&out, &portfolio.Overview{
		Metrics:     valuation.Valuate([]*domain.Lot{lot}, snap),
		Snapshot:    snap,
		PriceStatus: portfolio.PriceStatusLive,
	}, false)

	assert.Contains(t, out.String(), "22.000,00")
	assert.Contains(t, out.String(), "10.00%")
	assert.NotContains(t, out.String(), "warning")
}

func TestPrintOverview_StalePrices(t *testing.T) {
	var out bytes.Buffer
	printOverview(&out, &portfolio.Overview{
		Metrics:     valuation.Valuate(nil, nil),
		PriceStatus: portfolio.PriceStatusUnavailable,
		PriceError:  fmt.Errorf("%w: status 503", domain.ErrUpstreamFetch),
	}, true)

	assert.Contains(t, out.String(), "warning: prices unavailable")
}
