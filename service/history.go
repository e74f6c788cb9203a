package service

import (
	"context"
	"time"
	"tour-monitor/config"
	"tour-monitor/internal/domain"
	"tour-monitor/models"
	"tour-monitor/utils"

	"go.uber.org/zap"
)

// Evaluator compares a found price with the route's history and records it.
type Evaluator struct {
	store domain.HistoryStore
	runID string
	now   func() time.Time
	log   *zap.Logger
}

func NewEvaluator(store domain.HistoryStore, runID string, log *zap.Logger) *Evaluator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Evaluator{
		store: store,
		runID: runID,
		now:   time.Now,
		log:   log.Named("history"),
	}
}

// Evaluate decides how price relates to the latest stored price of the exact route, then
// inserts the observation whatever the decision. Store failures never surface: a failed
// lookup counts as FirstSeen, a failed insert is only logged.
func (e *Evaluator) Evaluate(ctx context.Context, route models.Route, price int) models.Decision {
	log := e.log.With(utils.RouteFields(route.Origin, route.Destination, route.Nights)...)

	previous, ok, err := e.store.Latest(ctx, route)
	if err != nil {
		log.Warn("history lookup failed, treating as first sighting", zap.Error(err))
		ok = false
	}
	decision := models.Decide(price, previous, ok)

	obs := models.PriceObservation{
		Route:      route,
		Price:      price,
		ObservedAt: e.now(),
		RunID:      e.runID,
	}
	if err := e.store.Insert(ctx, obs); err != nil {
		log.Warn("history insert failed, observation dropped", zap.Int("price", price), zap.Error(err))
	}

	log.Debug("price evaluated",
		zap.Int("price", price),
		zap.Stringer("decision", decision.Kind),
		zap.Int("previous", decision.Previous),
	)
	return decision
}

// ShouldNotify applies the notification policy to a decision. Unchanged prices are never
// reported; increases only under NotifyChanges.
func ShouldNotify(policy config.NotifyPolicy, d models.Decision) bool {
	switch d.Kind {
	case models.FirstSeen:
		return true
	case models.Dropped:
		return policy == config.NotifyDrops || policy == config.NotifyChanges
	case models.Risen:
		return policy == config.NotifyChanges
	default:
		return false
	}
}
