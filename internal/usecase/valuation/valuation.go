// Package valuation combines lots with a price snapshot into portfolio metrics.
// It performs no I/O.
package valuation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/simaogato/goldfolio-backend/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// ActiveLotValuation is an active lot valued against the current price.
type ActiveLotValuation struct {
	Lot *domain.Lot

	// CurrentPrice is invalid when the snapshot had no price for the lot.
	// Priced is false in that case and the lot is valued at zero.
	CurrentPrice  decimal.NullDecimal
	Priced        bool
	Cost          decimal.Decimal
	CurrentValue  decimal.Decimal
	Profit        decimal.Decimal
	ProfitPercent decimal.Decimal
}

// SoldLotValuation is a sold lot with its realized result.
type SoldLotValuation struct {
	Lot            *domain.Lot
	Cost           decimal.Decimal
	SaleValue      decimal.Decimal
	RealizedProfit decimal.Decimal
}

// AllocationSlice is one asset type's share of the current portfolio value.
type AllocationSlice struct {
	AssetType domain.AssetType
	Value     decimal.Decimal
}

// Metrics is the full valuation of a set of lots.
type Metrics struct {
	Active []ActiveLotValuation
	Sold   []SoldLotValuation

	TotalCost          decimal.Decimal
	TotalCurrentValue  decimal.Decimal
	TotalProfit        decimal.Decimal
	TotalProfitPercent decimal.Decimal
	RealizedProfit     decimal.Decimal

	// Quantities holds the grams held per asset type, every type present.
	Quantities map[domain.AssetType]decimal.Decimal

	// Allocation lists current value per asset type in display order,
	// keeping only positive values.
	Allocation []AllocationSlice

	Unpriced   int
	ObservedAt time.Time
}

// Valuate values lots against snapshot. A nil snapshot leaves every active lot unpriced.
func Valuate(lots []*domain.Lot, snapshot *domain.PriceSnapshot) Metrics {
	m := Metrics{
		Active:             make([]ActiveLotValuation, 0),
		Sold:               make([]SoldLotValuation, 0),
		TotalCost:          decimal.Zero,
		TotalCurrentValue:  decimal.Zero,
		TotalProfit:        decimal.Zero,
		TotalProfitPercent: decimal.Zero,
		RealizedProfit:     decimal.Zero,
		Quantities:         make(map[domain.AssetType]decimal.Decimal, len(domain.AssetTypes)),
		Allocation:         make([]AllocationSlice, 0, len(domain.AssetTypes)),
	}
	if snapshot != nil {
		m.ObservedAt = snapshot.ObservedAt
	}

	valueByType := make(map[domain.AssetType]decimal.Decimal, len(domain.AssetTypes))
	for _, t := range domain.AssetTypes {
		m.Quantities[t] = decimal.Zero
		valueByType[t] = decimal.Zero
	}

	for _, lot := range lots {
		if lot == nil {
			continue
		}

		switch lot.Status {
		case domain.LotStatusActive:
			v := valuateActive(lot, snapshot.PriceFor(lot.AssetType))
			if !v.Priced {
				m.Unpriced++
			}
			m.Active = append(m.Active, v)
			m.TotalCost = m.TotalCost.Add(v.Cost)
			m.TotalCurrentValue = m.TotalCurrentValue.Add(v.CurrentValue)
			m.Quantities[lot.AssetType] = m.Quantities[lot.AssetType].Add(lot.Amount)
			valueByType[lot.AssetType] = valueByType[lot.AssetType].Add(v.CurrentValue)

		case domain.LotStatusSold:
			v := valuateSold(lot)
			m.Sold = append(m.Sold, v)
			m.RealizedProfit = m.RealizedProfit.Add(v.RealizedProfit)
		}
	}

	m.TotalProfit = m.TotalCurrentValue.Sub(m.TotalCost)
	m.TotalProfitPercent = percentOf(m.TotalProfit, m.TotalCost)

	for _, t := range domain.AssetTypes {
		if v := valueByType[t]; v.IsPositive() {
			m.Allocation = append(m.Allocation, AllocationSlice{AssetType: t, Value: v})
		}
	}

	return m
}

func valuateActive(lot *domain.Lot, price decimal.NullDecimal) ActiveLotValuation {
	// Missing prices count as zero
	unit := decimal.Zero
	if price.Valid {
		unit = price.Decimal
	}

	cost := lot.Cost()
	value := lot.Amount.Mul(unit)
	profit := value.Sub(cost)

	return ActiveLotValuation{
		Lot:           lot,
		CurrentPrice:  price,
		Priced:        price.Valid,
		Cost:          cost,
		CurrentValue:  value,
		Profit:        profit,
		ProfitPercent: percentOf(profit, cost),
	}
}

func valuateSold(lot *domain.Lot) SoldLotValuation {
	cost := lot.Cost()
	saleValue := decimal.Zero
	if lot.SellingPrice != nil {
		saleValue = lot.Amount.Mul(*lot.SellingPrice)
	}

	return SoldLotValuation{
		Lot:            lot,
		Cost:           cost,
		SaleValue:      saleValue,
		RealizedProfit: saleValue.Sub(cost),
	}
}

// percentOf returns part/whole×100, or zero when whole is not positive.
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}
