package main

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/simaogato/goldfolio-backend/internal/domain"
)

const baseCurrency = "TRY"

// go-money ships TRY with English separators; quotes are read and shown in
// the Turkish convention.
func init() {
	money.AddCurrency(baseCurrency, "\u20ba", "$1", ",", ".", 2)
}

// formatMoney renders an amount in the base currency, e.g. "₺2.266,62".
func formatMoney(amount decimal.Decimal) string {
	cur := money.GetCurrency(baseCurrency)
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, baseCurrency).Display()
}

func formatPrice(price decimal.NullDecimal) string {
	if !price.Valid {
		return "n/a"
	}
	return formatMoney(price.Decimal)
}

func formatGrams(amount decimal.Decimal) string {
	return amount.StringFixed(3) + " g"
}

func formatPercent(p decimal.Decimal) string {
	return p.StringFixed(2) + "%"
}

var assetLabels = map[domain.AssetType]string{
	domain.AssetTypeGramGold:     "Gram Altın (24k)",
	domain.AssetTypeBracelet22k:  "Bilezik (22k)",
	domain.AssetTypeSilver:       "Gümüş",
	domain.AssetTypePhysicalGold: "Fiziksel Altın",
}

func assetLabel(t domain.AssetType) string {
	if label, ok := assetLabels[t]; ok {
		return label
	}
	return string(t)
}
