package bigpara

import (
	"fmt"
	"time"

	"github.com/simaogato/goldfolio-backend/internal/domain"
)

// Field names a value read from the market page.
type Field string

const (
	FieldGramGoldPrice Field = "gram_gold_price"
	FieldGramGoldTime  Field = "gram_gold_time"
	FieldBraceletPrice Field = "bracelet_22k_price"
	FieldSilverPrice   Field = "silver_price"
)

// Layout maps fields to positions in the page's ordered list of data
// fragments. The page offers no stable identifiers, so when the upstream
// markup changes a new Layout version is added here and nothing else moves.
type Layout struct {
	Version string

	// FragmentClass is the class of the <li> elements holding data values.
	FragmentClass string

	// MinFragments is the fewest fragments a page must contain before any
	// index in Fields is trusted.
	MinFragments int

	// Fields holds zero-based fragment indices in document order.
	Fields map[Field]int
}

// LayoutV1 matches the gold page as published since the first release.
var LayoutV1 = Layout{
	Version:       "altin-v1",
	FragmentClass: "cell009",
	MinFragments:  93,
	Fields: map[Field]int{
		FieldGramGoldPrice: 4,
		FieldGramGoldTime:  7,
		FieldBraceletPrice: 8,
		FieldSilverPrice:   92,
	},
}

// priceFields binds snapshot keys to the fields carrying their prices.
var priceFields = map[domain.AssetType]Field{
	domain.AssetTypeGramGold:    FieldGramGoldPrice,
	domain.AssetTypeBracelet22k: FieldBraceletPrice,
	domain.AssetTypeSilver:      FieldSilverPrice,
}

// Validate checks that every index the layout needs lies below MinFragments.
func (l Layout) Validate() error {
	if l.FragmentClass == "" {
		return fmt.Errorf("layout %s: fragment class is required", l.Version)
	}
	for _, f := range append(fieldsOf(priceFields), FieldGramGoldTime) {
		idx, ok := l.Fields[f]
		if !ok {
			return fmt.Errorf("layout %s: no index for field %s", l.Version, f)
		}
		if idx < 0 || idx >= l.MinFragments {
			return fmt.Errorf("layout %s: index %d for field %s outside the trusted range [0,%d)", l.Version, idx, f, l.MinFragments)
		}
	}
	return nil
}

// Snapshot maps extracted fragments to a price snapshot.
// Unreadable prices become null; an unreadable time falls back to fetchedAt.
//
// With fewer than MinFragments fragments the page no longer matches the
// layout. The result is then a partial snapshot returned together with
// ErrParse: prices whose index the page still reaches are read, the rest are
// null, and the quote time is not trusted.
func (l Layout) Snapshot(fragments []string, fetchedAt time.Time) (*domain.PriceSnapshot, error) {
	partial := len(fragments) < l.MinFragments

	observedAt := fetchedAt.UTC()
	if !partial {
		observedAt, _ = ParseObservedAt(l.fragment(fragments, FieldGramGoldTime), fetchedAt)
	}

	snap := domain.NewPriceSnapshot(observedAt)
	snap.FetchedAt = fetchedAt.UTC()
	snap.LayoutVersion = l.Version
	snap.Partial = partial

	for key, field := range priceFields {
		snap.Prices[key] = ParseLocaleDecimal(l.fragment(fragments, field))
	}

	if partial {
		return snap, fmt.Errorf("%w: layout %s expects at least %d fragments, page has %d",
			domain.ErrParse, l.Version, l.MinFragments, len(fragments))
	}
	return snap, nil
}

func (l Layout) fragment(fragments []string, f Field) string {
	idx, ok := l.Fields[f]
	if !ok || idx < 0 || idx >= len(fragments) {
		return ""
	}
	return fragments[idx]
}

func fieldsOf(m map[domain.AssetType]Field) []Field {
	out := make([]Field, 0, len(m))
	for _, f := range m {
		out = append(out, f)
	}
	return out
}
