package bigpara

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/simaogato/goldfolio-backend/internal/domain"
)

// SourceZone is the fixed offset the market page reports its times in.
var SourceZone = time.FixedZone("UTC+03", 3*60*60)

// futureTolerance absorbs clock skew before a reconstructed time is
// considered to belong to the previous day.
const futureTolerance = 5 * time.Minute

// ParseLocaleDecimal parses a number written with '.' as the thousands
// separator and ',' as the decimal separator, e.g. "2.266,62" → 2266.62.
// Empty or malformed input yields an invalid NullDecimal.
func ParseLocaleDecimal(s string) decimal.NullDecimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}
	}

	s = strings.ReplaceAll(s, ".", "")
	if strings.Count(s, ",") > 1 {
		return decimal.NullDecimal{}
	}
	s = strings.Replace(s, ",", ".", 1)

	for i, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.':
		case r == '-' && i == 0:
		default:
			return decimal.NullDecimal{}
		}
	}
	if s == "." || s == "-" || strings.HasSuffix(s, ".") || strings.HasPrefix(s, ".") {
		return decimal.NullDecimal{}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// ParseObservedAt turns a bare "HH:mm" reported in SourceZone into an instant
// on the current SourceZone calendar day. If s is not a valid time of day, now
// is returned with ok=false.
//
// The page never states a date, so a quote published shortly before midnight
// in SourceZone and read after it would otherwise land almost a day in the
// future. A reconstructed time more than futureTolerance ahead of now is
// therefore moved back to the previous SourceZone day.
func ParseObservedAt(s string, now time.Time) (t time.Time, ok bool) {
	hh, mm, ok := parseClock(s)
	if !ok {
		return now.UTC(), false
	}

	local := now.In(SourceZone)
	t = time.Date(local.Year(), local.Month(), local.Day(), hh, mm, 0, 0, SourceZone)
	if t.After(now.Add(futureTolerance)) {
		t = t.AddDate(0, 0, -1)
	}
	return t.UTC(), true
}

func parseClock(s string) (hh, mm int, ok bool) {
	h, m, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found || len(h) == 0 || len(h) > 2 || len(m) != 2 {
		return 0, 0, false
	}

	hh, err := strconv.Atoi(h)
	if err != nil || hh < 0 || hh > 23 {
		return 0, 0, false
	}
	mm, err = strconv.Atoi(m)
	if err != nil || mm < 0 || mm > 59 {
		return 0, 0, false
	}
	return hh, mm, true
}

// ExtractFragments returns the trimmed text of every <li> carrying class,
// in document order.
func ExtractFragments(body []byte, class string) ([]string, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrParse, err)
	}

	fragments := make([]string, 0, 128)
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Li && hasClass(n, class) {
			fragments = append(fragments, strings.TrimSpace(textContent(n)))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return fragments, nil
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Namespace != "" || a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
