package domain

import (
	"context"
	"slices"
	"sync"
	"tour-monitor/models"
)

// MemoryRepository keeps history for the lifetime of the process only.
type MemoryRepository struct {
	mu      sync.Mutex
	history map[models.Route][]models.PriceObservation
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{history: map[models.Route][]models.PriceObservation{}}
}

func (r *MemoryRepository) Latest(_ context.Context, route models.Route) (int, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	obs := r.history[route]
	if len(obs) == 0 {
		return 0, false, nil
	}
	return obs[len(obs)-1].Price, true, nil
}

func (r *MemoryRepository) Insert(_ context.Context, obs models.PriceObservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.history[obs.Route] = append(r.history[obs.Route], obs)
	return nil
}

// History returns a copy of all observations for route, oldest first.
func (r *MemoryRepository) History(route models.Route) []models.PriceObservation {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.history[route])
}
