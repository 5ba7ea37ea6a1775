package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SellEpsilon is the absolute tolerance, in grams, below which a sell amount
// is considered equal to the held amount. It assumes gram-level precision and
// must be revisited if lots are ever tracked in a different unit.
var SellEpsilon = decimal.New(1, -3)

// SaleKind distinguishes a full liquidation from a lot split.
type SaleKind string

const (
	SaleKindFull    SaleKind = "full"
	SaleKindPartial SaleKind = "partial"
)

// SalePlan is the in-memory result of selling from a lot: the post-sale state
// of the original row plus, for a partial sale, the new sold row.
// The record store commits a plan as a single unit or not at all.
type SalePlan struct {
	Kind SaleKind

	// ExpectedAmount is the amount the original row held when the plan was
	// computed. The store refuses to apply the plan if it has changed since.
	ExpectedAmount decimal.Decimal

	Original *Lot
	Sold     *Lot // nil for a full sale
}

// PlanSale computes the effect of selling sellAmount grams from lot.
//
// A sell amount within SellEpsilon of the held amount, on either side, is a
// full sale: the lot flips to sold and keeps its original terms. Anything
// larger is rejected. Anything smaller splits the lot into a reduced active
// row and a new sold row carrying the original purchase terms.
func PlanSale(lot *Lot, sellAmount, sellingPrice decimal.Decimal, sellingDate time.Time) (*SalePlan, error) {
	if lot == nil {
		return nil, fmt.Errorf("%w: lot", ErrNotFound)
	}
	if !lot.IsActive() {
		return nil, fmt.Errorf("%w: lot %s is already sold", ErrValidation, lot.ID)
	}
	if !sellAmount.IsPositive() {
		return nil, fmt.Errorf("%w: sell amount must be positive", ErrValidation)
	}
	if exceedsPlaces(sellAmount, AmountPlaces) {
		return nil, fmt.Errorf("%w: sell amount allows at most %d decimal places", ErrValidation, AmountPlaces)
	}
	if !sellingPrice.IsPositive() {
		return nil, fmt.Errorf("%w: selling price must be positive", ErrValidation)
	}
	if exceedsPlaces(sellingPrice, PricePlaces) {
		return nil, fmt.Errorf("%w: selling price allows at most %d decimal places", ErrValidation, PricePlaces)
	}
	if sellingDate.IsZero() {
		return nil, fmt.Errorf("%w: selling date is required", ErrValidation)
	}

	current := lot.Amount
	diff := current.Sub(sellAmount)
	price := sellingPrice
	date := sellingDate.UTC()

	if diff.Abs().LessThan(SellEpsilon) {
		original := lot.Clone()
		original.Status = LotStatusSold
		original.SellingPrice = &price
		original.SellingDate = &date

		return &SalePlan{
			Kind:           SaleKindFull,
			ExpectedAmount: current,
			Original:       original,
		}, nil
	}

	if diff.IsNegative() {
		return nil, fmt.Errorf("%w: cannot sell %s g, only %s g held", ErrValidation, sellAmount, current)
	}

	original := lot.Clone()
	original.Amount = diff

	sold := &Lot{
		AssetType:     lot.AssetType,
		Amount:        sellAmount,
		PurchasePrice: lot.PurchasePrice,
		PurchaseDate:  lot.PurchaseDate,
		Status:        LotStatusSold,
		SellingPrice:  &price,
		SellingDate:   &date,
	}

	return &SalePlan{
		Kind:           SaleKindPartial,
		ExpectedAmount: current,
		Original:       original,
		Sold:           sold,
	}, nil
}
