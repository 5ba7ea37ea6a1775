package valuation

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/goldfolio-backend/internal/domain"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func lot(assetType domain.AssetType, amount, price string) *domain.Lot {
	return &domain.Lot{
		ID:            uuid.New(),
		AssetType:     assetType,
		Amount:        d(amount),
		PurchasePrice: d(price),
		PurchaseDate:  time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Status:        domain.LotStatusActive,
	}
}

func soldLot(assetType domain.AssetType, amount, price, sellingPrice string) *domain.Lot {
	l := lot(assetType, amount, price)
	sp := d(sellingPrice)
	sd := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.Status = domain.LotStatusSold
	l.SellingPrice = &sp
	l.SellingDate = &sd
	return l
}

func snapshot(prices map[domain.AssetType]string) *domain.PriceSnapshot {
	s := domain.NewPriceSnapshot(time.Date(2025, 3, 4, 14, 5, 0, 0, time.UTC))
	for k, v := range prices {
		s.Prices[k] = decimal.NewNullDecimal(d(v))
	}
	return s
}

func TestValuate_SingleLotProfit(t *testing.T) {
	m := Valuate(
		[]*domain.Lot{lot(domain.AssetTypeGramGold, "10", "2000")},
		snapshot(map[domain.AssetType]string{domain.AssetTypeGramGold: "2200"}),
	)

	require.Len(t, m.Active, 1)
	v := m.Active[0]
	assert.True(t, v.Priced)
	assert.True(t, v.Cost.Equal(d("20000")))
	assert.True(t, v.CurrentValue.Equal(d("22000")))
	assert.True(t, v.Profit.Equal(d("2000")))
	assert.True(t, v.ProfitPercent.Equal(d("10")), "got %s", v.ProfitPercent)

	assert.True(t, m.TotalProfit.Equal(d("2000")))
	assert.True(t, m.TotalProfitPercent.Equal(d("10")))
	assert.Equal(t, 0, m.Unpriced)
	assert.True(t, m.ObservedAt.Equal(time.Date(2025, 3, 4, 14, 5, 0, 0, time.UTC)))
}

func TestValuate_PhysicalGoldUsesGramGoldPrice(t *testing.T) {
	m := Valuate(
		[]*domain.Lot{lot(domain.AssetTypePhysicalGold, "5", "2100")},
		snapshot(map[domain.AssetType]string{domain.AssetTypeGramGold: "2266.62"}),
	)

	require.Len(t, m.Active, 1)
	assert.True(t, m.Active[0].Priced)
	assert.True(t, m.Active[0].CurrentValue.Equal(d("11333.1")))
	assert.True(t, m.Quantities[domain.AssetTypePhysicalGold].Equal(d("5")))
	assert.True(t, m.Quantities[domain.AssetTypeGramGold].IsZero())
}

func TestValuate_Aggregates(t *testing.T) {
	lots := []*domain.Lot{
		lot(domain.AssetTypeGramGold, "10", "2000"),
		lot(domain.AssetTypeGramGold, "2.5", "2400"),
		lot(domain.AssetTypeBracelet22k, "20", "1900"),
		lot(domain.AssetTypeSilver, "100", "30"),
		soldLot(domain.AssetTypeGramGold, "4", "2000", "2500"),
		soldLot(domain.AssetTypeSilver, "50", "32", "30"),
	}
	prices := snapshot(map[domain.AssetType]string{
		domain.AssetTypeGramGold:    "2200",
		domain.AssetTypeBracelet22k: "2000",
		domain.AssetTypeSilver:      "28",
	})

	m := Valuate(lots, prices)

	assert.Len(t, m.Active, 4)
	assert.Len(t, m.Sold, 2)

	// cost: 20000 + 6000 + 38000 + 3000
	assert.True(t, m.TotalCost.Equal(d("67000")))
	// value: 22000 + 5500 + 40000 + 2800
	assert.True(t, m.TotalCurrentValue.Equal(d("70300")))
	assert.True(t, m.TotalProfit.Equal(d("3300")))

	assert.True(t, m.Quantities[domain.AssetTypeGramGold].Equal(d("12.5")))
	assert.True(t, m.Quantities[domain.AssetTypeBracelet22k].Equal(d("20")))
	assert.True(t, m.Quantities[domain.AssetTypeSilver].Equal(d("100")))
	assert.True(t, m.Quantities[domain.AssetTypePhysicalGold].IsZero())

	// realized: (4×2500 − 4×2000) + (50×30 − 50×32) = 2000 − 100
	assert.True(t, m.RealizedProfit.Equal(d("1900")))
	assert.True(t, m.Sold[0].SaleValue.Equal(d("10000")))

	require.Len(t, m.Allocation, 3)
	assert.Equal(t, domain.AssetTypeGramGold, m.Allocation[0].AssetType)
	assert.True(t, m.Allocation[0].Value.Equal(d("27500")))
	assert.Equal(t, domain.AssetTypeBracelet22k, m.Allocation[1].AssetType)
	assert.Equal(t, domain.AssetTypeSilver, m.Allocation[2].AssetType)
}

func TestValuate_SoldLotsDoNotAffectHoldings(t *testing.T) {
	m := Valuate(
		[]*domain.Lot{soldLot(domain.AssetTypeGramGold, "4", "2000", "2500")},
		snapshot(map[domain.AssetType]string{domain.AssetTypeGramGold: "2200"}),
	)

	assert.Empty(t, m.Active)
	assert.True(t, m.TotalCost.IsZero())
	assert.True(t, m.TotalProfitPercent.IsZero())
	assert.True(t, m.Quantities[domain.AssetTypeGramGold].IsZero())
	assert.Empty(t, m.Allocation)
	assert.True(t, m.RealizedProfit.Equal(d("2000")))
}

func TestValuate_MissingPriceDoesNotPanic(t *testing.T) {
	lots := []*domain.Lot{
		lot(domain.AssetTypeGramGold, "10", "2000"),
		lot(domain.AssetTypeSilver, "100", "30"),
	}
	prices := snapshot(map[domain.AssetType]string{domain.AssetTypeGramGold: "2200"})

	var m Metrics
	assert.NotPanics(t, func() { m = Valuate(lots, prices) })

	assert.Equal(t, 1, m.Unpriced)
	silver := m.Active[1]
	assert.False(t, silver.Priced)
	assert.False(t, silver.CurrentPrice.Valid)
	assert.True(t, silver.CurrentValue.IsZero())
	assert.True(t, silver.Profit.Equal(d("-3000")))

	// Unpriced silver carries no allocation
	require.Len(t, m.Allocation, 1)
	assert.Equal(t, domain.AssetTypeGramGold, m.Allocation[0].AssetType)
}

func TestValuate_NilSnapshot(t *testing.T) {
	lots := []*domain.Lot{lot(domain.AssetTypeGramGold, "10", "2000"), nil}

	m := Valuate(lots, nil)

	assert.Equal(t, 1, m.Unpriced)
	assert.True(t, m.TotalCurrentValue.IsZero())
	assert.True(t, m.ObservedAt.IsZero())
}

func TestValuate_ZeroCostGuard(t *testing.T) {
	// Legacy rows can have a zero purchase price; percent must not divide by zero
	free := lot(domain.AssetTypeSilver, "1", "0")
	m := Valuate([]*domain.Lot{free}, snapshot(map[domain.AssetType]string{domain.AssetTypeSilver: "30"}))

	assert.True(t, m.Active[0].ProfitPercent.IsZero())
	assert.True(t, m.TotalProfitPercent.IsZero())
	assert.True(t, m.Active[0].Profit.Equal(d("30")))
}

func TestValuate_Empty(t *testing.T) {
	m := Valuate(nil, nil)

	assert.NotNil(t, m.Active)
	assert.NotNil(t, m.Sold)
	assert.Len(t, m.Quantities, len(domain.AssetTypes))
	assert.True(t, m.TotalProfit.IsZero())
}
