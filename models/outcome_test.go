package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name     string
		price    int
		previous int
		has      bool
		want     Decision
	}{
		{"no history", 48500, 0, false, Decision{Kind: FirstSeen}},
		{"no history ignores price", 1, 999999, false, Decision{Kind: FirstSeen}},
		{"lower", 45000, 48500, true, Decision{Kind: Dropped, Previous: 48500, Delta: 3500}},
		{"equal", 45000, 45000, true, Decision{Kind: Unchanged, Previous: 45000}},
		{"higher", 50000, 45000, true, Decision{Kind: Risen, Previous: 45000, Delta: 5000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.price, tt.previous, tt.has))
		})
	}
}

func TestRouteIdentity(t *testing.T) {
	a := Route{Origin: "Москва", Destination: "Турция"}
	b := Route{Origin: "Москва", Destination: "Турция"}
	c := Route{Origin: "Москва", Destination: "Турция", Nights: 7}

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, "Москва|Турция|0", a.Key())
	assert.Equal(t, "Москва|Турция|7", c.Key())
	assert.Equal(t, "Москва -> Турция (7 nights)", c.String())
}

func TestKindStrings(t *testing.T) {
	assert.Equal(t, "price_found", PriceFound.String())
	assert.Equal(t, "interaction_failed", InteractionFailed.String())
	assert.Equal(t, "dropped", Dropped.String())
	assert.Equal(t, "decision(42)", DecisionKind(42).String())
}
