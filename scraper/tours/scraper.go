package tours

import (
	"context"
	"errors"
	"fmt"
	"tour-monitor/config"
	"tour-monitor/models"
	"tour-monitor/scraper"
	"tour-monitor/scraper/prices"
	"tour-monitor/utils"

	"go.uber.org/zap"
)

// PriceScraper probes one route at a time on a shared session.
type PriceScraper struct {
	session   scraper.Session
	driver    *Driver
	extractor *prices.Extractor
	timing    config.TimingConfig
	markers   []scraper.Locator
	log       *zap.Logger
}

func NewPriceScraper(s scraper.Session, d *Driver, e *prices.Extractor, timing config.TimingConfig, log *zap.Logger) *PriceScraper {
	if log == nil {
		log = zap.NewNop()
	}
	markers := make([]scraper.Locator, 0, len(e.Markers()))
	for _, sel := range e.Markers() {
		markers = append(markers, scraper.CSS(sel))
	}
	return &PriceScraper{
		session:   s,
		driver:    d,
		extractor: e,
		timing:    timing,
		markers:   markers,
		log:       log.Named("probe"),
	}
}

// Probe drives the page for route and extracts its minimum price.
func (p *PriceScraper) Probe(ctx context.Context, route models.Route) models.Outcome {
	log := p.log.With(utils.RouteFields(route.Origin, route.Destination, route.Nights)...)

	if p.timing.RouteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timing.RouteTimeout)
		defer cancel()
	}

	if err := p.driver.LocateAndSet(ctx, p.session, route); err != nil {
		return models.Failed(err)
	}

	// Prices render asynchronously; the extractor only runs once a marker shows up or the
	// wait runs out.
	if len(p.markers) > 0 {
		if _, err := scraper.WaitFor(ctx, p.session, p.timing.PriceWaitTimeout, p.timing.PollInterval, p.markers...); err != nil {
			if ctx.Err() != nil {
				return models.Failed(fmt.Errorf("wait for prices: %w", ctx.Err()))
			}
			log.Info("no price marker rendered, scanning page anyway", zap.Error(err))
		}
	}

	html, herr := p.session.ReadHTML(ctx)
	text, terr := p.session.ReadText(ctx)
	if herr != nil && terr != nil {
		return models.Failed(fmt.Errorf("read page: %w", errors.Join(herr, terr)))
	}

	candidates := p.extractor.Extract(html, text)
	price, ok := prices.Min(candidates)
	if !ok {
		log.Info("no prices on page")
		return models.NoPrice()
	}
	log.Info("price found", zap.Int("price", price), zap.Ints("candidates", candidates))
	return models.Found(price)
}
