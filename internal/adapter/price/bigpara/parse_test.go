package bigpara

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/goldfolio-backend/internal/domain"
)

func TestParseLocaleDecimal(t *testing.T) {
	tests := []struct {
		input string
		want  string // empty means null
	}{
		{input: "2.266,62", want: "2266.62"},
		{input: "2266,62", want: "2266.62"},
		{input: "1.234.567,8", want: "1234567.8"},
		{input: " 38,415 ", want: "38.415"},
		{input: " 2.266,62 ", want: "2266.62"},
		{input: "42", want: "42"},
		{input: "-1,5", want: "-1.5"},
		{input: "", want: ""},
		{input: "   ", want: ""},
		{input: "abc", want: ""},
		{input: "2.266,62 TL", want: ""},
		{input: "1,2,3", want: ""},
		{input: ",", want: ""},
		{input: "12,", want: ""},
		{input: "1-2", want: ""},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.input), func(t *testing.T) {
			var got decimal.NullDecimal
			assert.NotPanics(t, func() { got = ParseLocaleDecimal(tt.input) })

			if tt.want == "" {
				assert.False(t, got.Valid)
				return
			}
			require.True(t, got.Valid)
			assert.True(t, got.Decimal.Equal(decimal.RequireFromString(tt.want)), "got %s", got.Decimal)
		})
	}
}

func TestParseObservedAt(t *testing.T) {
	now := time.Date(2025, 3, 4, 15, 30, 0, 0, time.UTC) // 18:30 in the source zone

	got, ok := ParseObservedAt("17:05", now)
	require.True(t, ok)
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, 14, got.Hour())
	assert.Equal(t, 5, got.Minute())
	assert.Equal(t, 4, got.Day())

	got, ok = ParseObservedAt("9:07", now)
	require.True(t, ok)
	assert.Equal(t, 6, got.Hour())
	assert.Equal(t, 7, got.Minute())
}

func TestParseObservedAt_IgnoresCallerZone(t *testing.T) {
	// The same instant expressed in a far-away zone must give the same result
	now := time.Date(2025, 3, 4, 15, 30, 0, 0, time.UTC)
	tokyo := time.FixedZone("JST", 9*3600)

	a, _ := ParseObservedAt("17:05", now)
	b, _ := ParseObservedAt("17:05", now.In(tokyo))
	assert.True(t, a.Equal(b))
}

func TestParseObservedAt_UsesSourceCalendarDay(t *testing.T) {
	// 22:30 UTC on the 4th is already 01:30 on the 5th in the source zone
	now := time.Date(2025, 3, 4, 22, 30, 0, 0, time.UTC)

	got, ok := ParseObservedAt("01:10", now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 3, 4, 22, 10, 0, 0, time.UTC), got)

	// A late quote from the previous source day is not placed in the future
	got, ok = ParseObservedAt("23:58", now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 3, 4, 20, 58, 0, 0, time.UTC), got)
	assert.False(t, got.After(now))
}

func TestParseObservedAt_Fallback(t *testing.T) {
	now := time.Date(2025, 3, 4, 15, 30, 0, 0, time.FixedZone("X", -5*3600))

	for _, in := range []string{"", "17", "17:5", "24:00", "12:60", "ab:cd", "17:05:00", "-1:30"} {
		t.Run(fmt.Sprintf("%q", in), func(t *testing.T) {
			got, ok := ParseObservedAt(in, now)
			assert.False(t, ok)
			assert.True(t, got.Equal(now))
		})
	}
}

func TestExtractFragments(t *testing.T) {
	body := `<html><body>
		<ul>
			<li class="cell009">first</li>
			<li class="cell010">ignored</li>
			<li class="cell009 up"> <span>2.266</span>,62 </li>
			<li>no class</li>
		</ul>
		<div class="cell009">not a list item</div>
		<ul><li class="cell009"></li><li class="cell009">17:05</li></ul>
	</body></html>`

	fragments, err := ExtractFragments([]byte(body), "cell009")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "2.266,62", "", "17:05"}, fragments)
}

func TestExtractFragments_Empty(t *testing.T) {
	fragments, err := ExtractFragments(nil, "cell009")
	require.NoError(t, err)
	assert.Empty(t, fragments)
}

// page renders n cell009 fragments; values overrides the text at given indices.
func page(n int, values map[int]string) string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html><html><head><title>Altın</title></head><body><ul>")
	for i := 0; i < n; i++ {
		v, ok := values[i]
		if !ok {
			v = fmt.Sprintf("x%d", i)
		}
		fmt.Fprintf(&sb, `<li class="cell009">%s</li>`, v)
	}
	sb.WriteString("</ul></body></html>")
	return sb.String()
}

func TestLayoutV1_Snapshot(t *testing.T) {
	require.NoError(t, LayoutV1.Validate())

	body := page(100, map[int]string{
		4:  "2.266,62",
		7:  "17:05",
		8:  "2.071,15",
		92: "26,48",
	})
	fragments, err := ExtractFragments([]byte(body), LayoutV1.FragmentClass)
	require.NoError(t, err)

	fetchedAt := time.Date(2025, 3, 4, 15, 30, 0, 0, time.UTC)
	snap, err := LayoutV1.Snapshot(fragments, fetchedAt)
	require.NoError(t, err)

	assert.True(t, snap.Prices[domain.AssetTypeGramGold].Decimal.Equal(decimal.RequireFromString("2266.62")))
	assert.True(t, snap.Prices[domain.AssetTypeBracelet22k].Decimal.Equal(decimal.RequireFromString("2071.15")))
	assert.True(t, snap.Prices[domain.AssetTypeSilver].Decimal.Equal(decimal.RequireFromString("26.48")))
	assert.Equal(t, time.Date(2025, 3, 4, 14, 5, 0, 0, time.UTC), snap.ObservedAt)
	assert.Equal(t, fetchedAt, snap.FetchedAt)
	assert.Equal(t, LayoutV1.Version, snap.LayoutVersion)
}

func TestLayoutV1_PartialData(t *testing.T) {
	body := page(93, map[int]string{
		4:  "",
		7:  "n/a",
		8:  "2.071,15",
		92: "--",
	})
	fragments, err := ExtractFragments([]byte(body), LayoutV1.FragmentClass)
	require.NoError(t, err)

	fetchedAt := time.Date(2025, 3, 4, 15, 30, 0, 0, time.UTC)
	snap, err := LayoutV1.Snapshot(fragments, fetchedAt)
	require.NoError(t, err)

	assert.False(t, snap.Prices[domain.AssetTypeGramGold].Valid)
	assert.True(t, snap.Prices[domain.AssetTypeBracelet22k].Valid)
	assert.False(t, snap.Prices[domain.AssetTypeSilver].Valid)
	assert.Equal(t, fetchedAt, snap.ObservedAt)
}

func TestLayout_TooFewFragments(t *testing.T) {
	fetchedAt := time.Date(2025, 3, 4, 15, 30, 0, 0, time.UTC)

	t.Run("Prices still in reach are kept", func(t *testing.T) {
		body := page(92, map[int]string{4: "2.266,62", 7: "17:05", 8: "2.071,15"})
		fragments, err := ExtractFragments([]byte(body), LayoutV1.FragmentClass)
		require.NoError(t, err)

		snap, err := LayoutV1.Snapshot(fragments, fetchedAt)
		assert.ErrorIs(t, err, domain.ErrParse)
		require.NotNil(t, snap)

		assert.True(t, snap.Partial)
		assert.Equal(t, fetchedAt, snap.ObservedAt)
		assert.Equal(t, "2266.62", snap.Prices[domain.AssetTypeGramGold].Decimal.String())
		assert.Equal(t, "2071.15", snap.Prices[domain.AssetTypeBracelet22k].Decimal.String())
		assert.False(t, snap.Prices[domain.AssetTypeSilver].Valid)
	})

	t.Run("Nothing in reach", func(t *testing.T) {
		fragments, err := ExtractFragments([]byte(page(3, nil)), LayoutV1.FragmentClass)
		require.NoError(t, err)

		snap, err := LayoutV1.Snapshot(fragments, fetchedAt)
		assert.ErrorIs(t, err, domain.ErrParse)
		require.NotNil(t, snap)
		for _, key := range domain.PriceKeys {
			assert.False(t, snap.Prices[key].Valid, key)
		}
	})
}

func TestLayout_Validate(t *testing.T) {
	bad := Layout{
		Version:       "broken",
		FragmentClass: "cell009",
		MinFragments:  10,
		Fields: map[Field]int{
			FieldGramGoldPrice: 4,
			FieldGramGoldTime:  7,
			FieldBraceletPrice: 8,
			FieldSilverPrice:   92,
		},
	}
	assert.Error(t, bad.Validate())

	missing := Layout{Version: "missing", FragmentClass: "cell009", MinFragments: 10, Fields: map[Field]int{}}
	assert.Error(t, missing.Validate())
}
