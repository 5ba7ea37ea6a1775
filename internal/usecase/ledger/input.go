package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/goldfolio-backend/internal/domain"
)

// dateLayouts are tried in order when parsing user-supplied dates.
var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// ParseBuyInput builds a BuyInput from raw form values.
func ParseBuyInput(assetType, amount, purchasePrice, purchaseDate string) (BuyInput, error) {
	at, err := domain.ParseAssetType(strings.TrimSpace(assetType))
	if err != nil {
		return BuyInput{}, err
	}
	amt, err := parseDecimal("amount", amount)
	if err != nil {
		return BuyInput{}, err
	}
	price, err := parseDecimal("purchase_price", purchasePrice)
	if err != nil {
		return BuyInput{}, err
	}
	date, err := ParseDate(purchaseDate)
	if err != nil {
		return BuyInput{}, err
	}

	return BuyInput{AssetType: at, Amount: amt, PurchasePrice: price, PurchaseDate: date}, nil
}

// ParseSellInput builds a SellInput from raw form values.
func ParseSellInput(lotID, amount, sellingPrice, sellingDate string) (SellInput, error) {
	id, err := uuid.Parse(strings.TrimSpace(lotID))
	if err != nil {
		return SellInput{}, fmt.Errorf("%w: invalid lot_id format: %v", domain.ErrValidation, err)
	}
	amt, err := parseDecimal("amount", amount)
	if err != nil {
		return SellInput{}, err
	}
	price, err := parseDecimal("selling_price", sellingPrice)
	if err != nil {
		return SellInput{}, err
	}
	date, err := ParseDate(sellingDate)
	if err != nil {
		return SellInput{}, err
	}

	return SellInput{LotID: id, Amount: amt, SellingPrice: price, SellingDate: date}, nil
}

// ParseDate parses an RFC 3339 timestamp or a bare YYYY-MM-DD date (UTC midnight).
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: date is required", domain.ErrValidation)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid date %q", domain.ErrValidation, s)
}

func parseDecimal(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid %s format: %q", domain.ErrValidation, field, s)
	}
	return d, nil
}
