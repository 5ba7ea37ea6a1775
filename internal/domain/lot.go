package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AssetType identifies the kind of metal held in a lot.
// The string values double as the price keys published by the market source.
type AssetType string

const (
	AssetTypeGramGold     AssetType = "gram-altin"
	AssetTypeBracelet22k  AssetType = "22-ayar-bilezik"
	AssetTypeSilver       AssetType = "gumus"
	AssetTypePhysicalGold AssetType = "fiziksel-altin"
)

// AssetTypes lists every supported asset type in display order.
var AssetTypes = []AssetType{
	AssetTypeGramGold,
	AssetTypeBracelet22k,
	AssetTypeSilver,
	AssetTypePhysicalGold,
}

// Valid reports whether t is a known asset type.
func (t AssetType) Valid() bool {
	switch t {
	case AssetTypeGramGold, AssetTypeBracelet22k, AssetTypeSilver, AssetTypePhysicalGold:
		return true
	}
	return false
}

// PriceKey returns the snapshot key used to price this asset type.
// Physical gold is valued at the gram gold rate.
func (t AssetType) PriceKey() AssetType {
	if t == AssetTypePhysicalGold {
		return AssetTypeGramGold
	}
	return t
}

// ParseAssetType converts a raw string into an AssetType
func ParseAssetType(s string) (AssetType, error) {
	t := AssetType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown asset type %q", ErrValidation, s)
	}
	return t, nil
}

// LotStatus represents the lifecycle state of a lot
type LotStatus string

const (
	LotStatusActive LotStatus = "active"
	LotStatusSold   LotStatus = "sold"
)

// Places the record store keeps for amounts and unit prices. Values with more
// places are rejected rather than rounded on write.
const (
	AmountPlaces = 6
	PricePlaces  = 4
)

// exceedsPlaces reports whether d carries non-zero digits beyond places.
func exceedsPlaces(d decimal.Decimal, places int32) bool {
	return !d.Equal(d.Truncate(places))
}

// Lot is a discrete quantity of one asset type acquired at one price and date.
// SellingPrice and SellingDate are set if and only if Status is LotStatusSold.
type Lot struct {
	ID            uuid.UUID
	AssetType     AssetType
	Amount        decimal.Decimal // grams, always positive
	PurchasePrice decimal.Decimal // unit price at acquisition
	PurchaseDate  time.Time
	Status        LotStatus
	SellingPrice  *decimal.Decimal
	SellingDate   *time.Time
}

// IsActive reports whether the lot is still held.
func (l *Lot) IsActive() bool { return l.Status == LotStatusActive }

// Cost returns amount × purchase price.
func (l *Lot) Cost() decimal.Decimal {
	return l.Amount.Mul(l.PurchasePrice)
}

// Validate ensures the lot adheres to domain rules
func (l *Lot) Validate() error {
	if !l.AssetType.Valid() {
		return fmt.Errorf("%w: unknown asset type %q", ErrValidation, l.AssetType)
	}
	if !l.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if !l.PurchasePrice.IsPositive() {
		return fmt.Errorf("%w: purchase price must be positive", ErrValidation)
	}
	if exceedsPlaces(l.Amount, AmountPlaces) {
		return fmt.Errorf("%w: amount allows at most %d decimal places", ErrValidation, AmountPlaces)
	}
	if exceedsPlaces(l.PurchasePrice, PricePlaces) {
		return fmt.Errorf("%w: purchase price allows at most %d decimal places", ErrValidation, PricePlaces)
	}
	if l.PurchaseDate.IsZero() {
		return fmt.Errorf("%w: purchase date is required", ErrValidation)
	}

	switch l.Status {
	case LotStatusActive:
		if l.SellingPrice != nil || l.SellingDate != nil {
			return fmt.Errorf("%w: active lot cannot carry selling terms", ErrValidation)
		}
	case LotStatusSold:
		if l.SellingPrice == nil || l.SellingDate == nil {
			return fmt.Errorf("%w: sold lot must carry selling price and date", ErrValidation)
		}
		if exceedsPlaces(*l.SellingPrice, PricePlaces) {
			return fmt.Errorf("%w: selling price allows at most %d decimal places", ErrValidation, PricePlaces)
		}
	default:
		return fmt.Errorf("%w: unknown lot status %q", ErrValidation, l.Status)
	}

	return nil
}

// Clone returns a deep copy of the lot.
func (l *Lot) Clone() *Lot {
	c := *l
	if l.SellingPrice != nil {
		p := *l.SellingPrice
		c.SellingPrice = &p
	}
	if l.SellingDate != nil {
		d := *l.SellingDate
		c.SellingDate = &d
	}
	return &c
}

// NewLot builds a new active lot. The ID is left for the record store to assign.
func NewLot(assetType AssetType, amount, purchasePrice decimal.Decimal, purchaseDate time.Time) (*Lot, error) {
	lot := &Lot{
		AssetType:     assetType,
		Amount:        amount,
		PurchasePrice: purchasePrice,
		PurchaseDate:  purchaseDate.UTC(),
		Status:        LotStatusActive,
	}
	if err := lot.Validate(); err != nil {
		return nil, err
	}
	return lot, nil
}

// LotFilter narrows a lot listing. A nil Status returns every lot.
type LotFilter struct {
	Status *LotStatus
}

// ActiveLots is the filter for lots that are still held.
func ActiveLots() LotFilter {
	s := LotStatusActive
	return LotFilter{Status: &s}
}

// AllLots is the filter for every lot regardless of status.
func AllLots() LotFilter {
	return LotFilter{}
}
