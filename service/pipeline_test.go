package service

import (
	"context"
	"testing"
	"time"
	"tour-monitor/config"
	"tour-monitor/internal/domain"
	"tour-monitor/models"
	"tour-monitor/scraper/prices"
	"tour-monitor/scraper/scrapertest"
	"tour-monitor/scraper/tours"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPipelineOnFakePage runs the real driver and extractor against a fake page.
func TestPipelineOnFakePage(t *testing.T) {
	cfg := config.Default()
	cfg.Timing.PageLoadWait = 0
	cfg.Timing.TypeDelay = 0
	cfg.Timing.PollInterval = time.Millisecond

	page := scrapertest.New()
	page.Add(`input[placeholder*="Куда"]`, &scrapertest.Element{Reveals: []string{`[role="listbox"] [role="option"]`}})
	page.Add(`[role="listbox"] [role="option"]`, &scrapertest.Element{Hidden: true})
	page.Add(`[data-testid="departure-city"]`, &scrapertest.Element{Text: "Москва"})
	page.Add(`[data-testid="calendar-toggle"]`, &scrapertest.Element{})
	page.Add(`[class*="price_green"]`, &scrapertest.Element{})
	page.HTML = `<div class="calendar">
		<span class="price_green">52 000 ₽</span>
		<span class="price_green">61 000 ₽</span>
		<span class="price_green">48 500 ₽</span>
	</div>`

	probe := tours.NewPriceScraper(page, tours.NewDriver(cfg, nil), prices.New(cfg.Prices, nil), cfg.Timing, nil)
	store := domain.NewMemoryRepository()
	n := &recordingNotifier{}
	svc := newService(probe, store, n, notifyConfig())

	sum := svc.Run(context.Background(), []models.Route{mowTurkey})
	assert.Equal(t, Summary{Routes: 1, Found: 1, Notified: 1}, sum)

	hist := store.History(mowTurkey)
	require.Len(t, hist, 1)
	assert.Equal(t, 48500, hist[0].Price)
	require.Len(t, n.sent, 1)
	assert.Contains(t, n.sent[0].text, "💰 Цена: 48 500 руб.")
}
