package models

import (
	"fmt"
	"time"
)

// Route identifies one price query. Nights == 0 means no duration was requested;
// it is still part of the identity.
type Route struct {
	Origin      string
	Destination string
	Nights      int
}

// Key renders the route as origin|destination|nights.
func (r Route) Key() string {
	return fmt.Sprintf("%s|%s|%d", r.Origin, r.Destination, r.Nights)
}

func (r Route) String() string {
	if r.Nights > 0 {
		return fmt.Sprintf("%s -> %s (%d nights)", r.Origin, r.Destination, r.Nights)
	}
	return fmt.Sprintf("%s -> %s", r.Origin, r.Destination)
}

// PriceObservation is one successful extraction. Never mutated once created.
type PriceObservation struct {
	Route      Route
	Price      int
	ObservedAt time.Time
	RunID      string
}
