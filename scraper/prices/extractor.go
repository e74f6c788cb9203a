// Package prices turns rendered page content into plausible tour prices.
package prices

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"tour-monitor/config"
	"tour-monitor/utils"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Bounds is the inclusive plausible price range.
type Bounds struct {
	Min int
	Max int
}

func (b Bounds) Contains(v int) bool {
	return v >= b.Min && v <= b.Max
}

// Extractor finds candidate prices in page HTML or text.
type Extractor struct {
	bounds  Bounds
	markers []string
	pattern *regexp.Regexp
	log     *zap.Logger
}

// priceSpace is horizontal whitespace allowed inside a price, NBSP and narrow NBSP included.
const priceSpace = `[ \t\x{00A0}\x{2009}\x{202F}]`

// bareNumber matches marker text that is one digit run and nothing else, e.g. "48 500".
var bareNumber = regexp.MustCompile(`^\d(?:(?:\d|` + priceSpace + `)*\d)?$`)

// New builds an extractor from the price configuration.
func New(cfg config.PriceConfig, log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{
		bounds:  Bounds{Min: cfg.Min, Max: cfg.Max},
		markers: cfg.MarkerSelectors,
		pattern: pricePattern(cfg.CurrencyMarkers),
		log:     log.Named("extractor"),
	}
}

// pricePattern matches a digit run, possibly split by horizontal whitespace (incl. NBSP and
// narrow NBSP), followed by one of the currency markers. Line breaks never join two numbers.
func pricePattern(currency []string) *regexp.Regexp {
	quoted := make([]string, 0, len(currency))
	for _, c := range currency {
		quoted = append(quoted, regexp.QuoteMeta(c))
	}
	return regexp.MustCompile(`(\d(?:(?:\d|` + priceSpace + `)*\d)?)` + priceSpace + `*(?:` + strings.Join(quoted, "|") + `)`)
}

// Bounds returns the plausible range used by the post-filter.
func (e *Extractor) Bounds() Bounds { return e.bounds }

// Markers returns the CSS selectors of confirmed price elements.
func (e *Extractor) Markers() []string { return e.markers }

// Structured reads the text of every element matching a marker selector. An element counts
// when its text holds a currency-marked price or is a bare number; anything else (e.g.
// "7 ночей 48 500") is ignored rather than merged into one figure.
func (e *Extractor) Structured(html string) ([]int, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var found []int
	for _, sel := range e.markers {
		doc.Find(sel).Each(func(_ int, el *goquery.Selection) {
			text := strings.TrimSpace(el.Text())
			if m := e.pattern.FindStringSubmatch(text); m != nil {
				text = m[1]
			} else if !bareNumber.MatchString(text) {
				return
			}
			if v, ok := utils.ParsePrice(text); ok {
				found = append(found, v)
			}
		})
	}
	return e.filter(found), nil
}

// Unstructured scans content for "<digits><currency>" runs.
func (e *Extractor) Unstructured(content string) []int {
	var found []int
	for _, m := range e.pattern.FindAllStringSubmatch(content, -1) {
		if v, ok := utils.ParsePrice(m[1]); ok {
			found = append(found, v)
		}
	}
	return e.filter(found)
}

// Extract tries structured extraction over html, then unstructured over text, then over
// html. The first non-empty candidate set wins. The result is sorted and de-duplicated.
func (e *Extractor) Extract(html, text string) []int {
	if html != "" {
		got, err := e.Structured(html)
		if err != nil {
			e.log.Debug("structured extraction failed", zap.Error(err))
		}
		if len(got) > 0 {
			e.log.Debug("prices from markers", zap.Int("count", len(got)))
			return got
		}
	}
	if got := e.Unstructured(text); len(got) > 0 {
		e.log.Debug("prices from page text", zap.Int("count", len(got)))
		return got
	}
	got := e.Unstructured(html)
	if len(got) > 0 {
		e.log.Debug("prices from page html", zap.Int("count", len(got)))
	}
	return got
}

// filter drops values outside the plausible range, then sorts and de-duplicates.
func (e *Extractor) filter(values []int) []int {
	out := make([]int, 0, len(values))
	for _, v := range values {
		if e.bounds.Contains(v) {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Min returns the lowest candidate. ok is false for an empty set.
func Min(candidates []int) (int, bool) {
	if len(candidates) == 0 {
		return 0, false
	}
	return slices.Min(candidates), true
}
