package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PriceKeys are the asset keys a price snapshot carries.
// Physical gold has no key of its own; see AssetType.PriceKey.
var PriceKeys = []AssetType{
	AssetTypeGramGold,
	AssetTypeBracelet22k,
	AssetTypeSilver,
}

// PriceSnapshot is a normalized, timestamped set of per-gram prices.
// A price that could not be read is an invalid NullDecimal.
type PriceSnapshot struct {
	Prices     map[AssetType]decimal.NullDecimal
	ObservedAt time.Time // as reported by the source, not the fetch time

	FetchedAt     time.Time
	LayoutVersion string

	// Partial is set when the page did not match the layout. Only prices at
	// indices the page still reached were read, and ObservedAt is FetchedAt.
	Partial bool
}

// NewPriceSnapshot returns a snapshot with every known key present and unpriced.
func NewPriceSnapshot(observedAt time.Time) *PriceSnapshot {
	prices := make(map[AssetType]decimal.NullDecimal, len(PriceKeys))
	for _, k := range PriceKeys {
		prices[k] = decimal.NullDecimal{}
	}
	return &PriceSnapshot{Prices: prices, ObservedAt: observedAt}
}

// PriceFor returns the unit price used to value assetType, resolving aliases.
// A nil snapshot prices nothing.
func (s *PriceSnapshot) PriceFor(assetType AssetType) decimal.NullDecimal {
	if s == nil || s.Prices == nil {
		return decimal.NullDecimal{}
	}
	return s.Prices[assetType.PriceKey()]
}

// PriceSource produces price snapshots.
type PriceSource interface {
	// FetchSnapshot returns the current snapshot, possibly from a short-lived cache.
	// With ErrParse it may also return a partial snapshot holding whatever
	// could still be read.
	FetchSnapshot(ctx context.Context) (*PriceSnapshot, error)

	// LastGood returns the most recent successfully fetched snapshot, or nil.
	LastGood() *PriceSnapshot
}
