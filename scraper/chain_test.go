package scraper_test

import (
	"context"
	"errors"
	"testing"
	"tour-monitor/scraper"
	"tour-monitor/scraper/scrapertest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strategy(name string, err error, order *[]string) scraper.Strategy {
	return scraper.Strategy{
		Name: name,
		Run: func(context.Context, scraper.Session) error {
			*order = append(*order, name)
			return err
		},
	}
}

func TestChainStopsAtFirstSuccess(t *testing.T) {
	var order []string
	c := scraper.NewChain("calendar",
		strategy("primary", errors.New("missing"), &order),
		strategy("secondary", nil, &order),
		strategy("positional", nil, &order),
	)

	used, err := c.Run(context.Background(), scrapertest.New())
	require.NoError(t, err)
	assert.Equal(t, "secondary", used)
	assert.Equal(t, []string{"primary", "secondary"}, order)
	assert.Equal(t, []string{"primary", "secondary", "positional"}, c.Names())
}

func TestChainExhausted(t *testing.T) {
	var order []string
	first := errors.New("first failed")
	second := errors.New("second failed")
	c := scraper.NewChain("destination-input",
		strategy("a", first, &order),
		strategy("b", second, &order),
	)

	used, err := c.Run(context.Background(), scrapertest.New())
	require.Error(t, err)
	assert.Empty(t, used)
	assert.ErrorIs(t, err, scraper.ErrChainExhausted)
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
	assert.Contains(t, err.Error(), "destination-input [a, b]")
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestChainStopsOnDoneContext(t *testing.T) {
	var order []string
	ctx, cancel := context.WithCancel(context.Background())
	c := scraper.NewChain("suggestion",
		scraper.Strategy{Name: "cancel", Run: func(context.Context, scraper.Session) error {
			order = append(order, "cancel")
			cancel()
			return errors.New("gone")
		}},
		strategy("never", nil, &order),
	)

	_, err := c.Run(ctx, scrapertest.New())
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, scraper.ErrChainExhausted)
	assert.Equal(t, []string{"cancel"}, order)
}

func TestEmptyChain(t *testing.T) {
	_, err := scraper.NewChain("noop").Run(context.Background(), scrapertest.New())
	assert.ErrorIs(t, err, scraper.ErrChainExhausted)
}
