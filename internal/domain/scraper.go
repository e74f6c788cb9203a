package domain

import (
	"context"
	"tour-monitor/models"
)

// Prober runs the full interaction and extraction sequence for one route.
type Prober interface {
	Probe(ctx context.Context, route models.Route) models.Outcome
}
