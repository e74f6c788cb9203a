package prices

import (
	"testing"
	"tour-monitor/config"
	"tour-monitor/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExtractor() *Extractor {
	return New(config.Default().Prices, nil)
}

func TestUnstructured(t *testing.T) {
	e := newExtractor()

	tests := []struct {
		name    string
		content string
		want    []int
	}{
		{"plain", "от 45 000 ₽ за двоих", []int{45000}},
		{"nbsp", "45\u00a0000\u00a0₽", []int{45000}},
		{"narrow nbsp", "61\u202f000\u2009₽", []int{61000}},
		{"rub marker", "Итого 52 000 руб.", []int{52000}},
		{"no separator", "48500₽", []int{48500}},
		{"sorted unique", "61 000 ₽, 48 500 ₽, 52 000 ₽, 48 500 ₽", []int{48500, 52000, 61000}},
		{"line break does not join", "12\n45 000 ₽", []int{45000}},
		{"below min", "500 ₽", []int{}},
		{"above max", "2 000 000 ₽", []int{}},
		{"no currency", "+7 (495) 123 45 67", []int{}},
		{"empty", "", []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Unstructured(tt.content))
		})
	}
}

func TestBoundsAreInclusive(t *testing.T) {
	e := newExtractor()
	b := e.Bounds()

	for _, v := range []int{b.Min - 1, b.Min, 55555, b.Max, b.Max + 1} {
		got := e.Unstructured("цена " + utils.FormatPrice(v) + " ₽")
		if b.Contains(v) {
			assert.Equal(t, []int{v}, got, v)
		} else {
			assert.Empty(t, got, v)
		}
	}
}

func TestStructured(t *testing.T) {
	e := newExtractor()
	html := `<html><body>
		<div class="calendar_grid">
			<span class="day_price price_green">52 000 ₽</span>
			<span class="day_price price_green">48&nbsp;500&nbsp;₽</span>
			<span class="day_price">61 000 ₽</span>
		</div>
		<div class="banner">Скидка 30 000 ₽</div>
		<span class="price_green">нет мест</span>
	</body></html>`

	got, err := e.Structured(html)
	require.NoError(t, err)
	// The banner is outside every marker selector; the calendar cell is picked by the second.
	assert.Equal(t, []int{48500, 52000, 61000}, got)
}

func TestStructuredMarkerText(t *testing.T) {
	e := newExtractor()

	tests := []struct {
		name string
		html string
		want []int
	}{
		{"bare number", `<span class="price_green">48 500</span>`, []int{48500}},
		{"words and digits", `<span class="price_green">7 ночей 48 500</span>`, []int{}},
		{"words with currency", `<span class="price_green">7 ночей 48 500 ₽</span>`, []int{48500}},
		{"two numbers", `<span class="price_green">48 500 / 52 000</span>`, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Structured(tt.html)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractFallbackOrder(t *testing.T) {
	e := newExtractor()

	t.Run("markers win over text", func(t *testing.T) {
		html := `<span class="price_green">48 500 ₽</span>`
		assert.Equal(t, []int{48500}, e.Extract(html, "реклама 20 000 ₽"))
	})
	t.Run("text when no markers", func(t *testing.T) {
		html := `<div>loading</div>`
		assert.Equal(t, []int{30000}, e.Extract(html, "туры от 30 000 ₽"))
	})
	t.Run("html last", func(t *testing.T) {
		html := `<div data-x="1">от 33 000 руб</div>`
		assert.Equal(t, []int{33000}, e.Extract(html, ""))
	})
	t.Run("nothing", func(t *testing.T) {
		assert.Empty(t, e.Extract(`<div>Туров не найдено</div>`, "Туров не найдено"))
	})
}

func TestMin(t *testing.T) {
	v, ok := Min([]int{52000, 61000, 48500})
	assert.True(t, ok)
	assert.Equal(t, 48500, v)

	_, ok = Min(nil)
	assert.False(t, ok)
}
