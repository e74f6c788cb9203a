package service

import (
	"context"
	"iter"
	"time"
	"tour-monitor/config"
	"tour-monitor/internal/domain"
	"tour-monitor/models"
	"tour-monitor/utils"

	"go.uber.org/zap"
)

// BuildRoutes returns origins × destinations × durations in configuration order. Without
// durations every route has Nights == 0.
func BuildRoutes(search config.SearchConfig) []models.Route {
	durations := search.Durations
	if len(durations) == 0 {
		durations = []int{0}
	}
	routes := make([]models.Route, 0, len(search.Origins)*len(search.Destinations)*len(durations))
	for _, origin := range search.Origins {
		for _, dest := range search.Destinations {
			for _, nights := range durations {
				routes = append(routes, models.Route{
					Origin:      origin.Name,
					Destination: dest.Name,
					Nights:      nights,
				})
			}
		}
	}
	return routes
}

// Iterator feeds routes through a Prober one at a time, pausing between routes.
type Iterator struct {
	prober domain.Prober
	delay  time.Duration
	sleep  func(context.Context, time.Duration) error
	log    *zap.Logger
}

func NewIterator(p domain.Prober, delay time.Duration, log *zap.Logger) *Iterator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Iterator{
		prober: p,
		delay:  delay,
		sleep:  utils.Sleep,
		log:    log.Named("iterator"),
	}
}

// Run lazily probes routes in order. The pause between two routes is applied whatever the
// previous outcome; failed routes are not retried. A canceled context ends the sequence
// before the next route starts.
func (it *Iterator) Run(ctx context.Context, routes []models.Route) iter.Seq2[models.Route, models.Outcome] {
	return func(yield func(models.Route, models.Outcome) bool) {
		for i, route := range routes {
			if i > 0 {
				if err := it.sleep(ctx, it.delay); err != nil {
					it.log.Info("run interrupted", zap.Int("remaining", len(routes)-i), zap.Error(err))
					return
				}
			}
			if ctx.Err() != nil {
				return
			}

			it.log.Info("probing route",
				append(utils.RouteFields(route.Origin, route.Destination, route.Nights),
					zap.Int("n", i+1), zap.Int("of", len(routes)))...)

			start := time.Now()
			outcome := it.prober.Probe(ctx, route)
			outcome.Took = time.Since(start)
			if outcome.Kind == models.InteractionFailed {
				it.log.Warn("route failed",
					append(utils.RouteFields(route.Origin, route.Destination, route.Nights), zap.Error(outcome.Err))...)
			}
			if !yield(route, outcome) {
				return
			}
		}
	}
}
