package models

import (
	"fmt"
	"time"
)

type OutcomeKind int

const (
	PriceFound OutcomeKind = iota
	NoPriceFound
	InteractionFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case PriceFound:
		return "price_found"
	case NoPriceFound:
		return "no_price_found"
	case InteractionFailed:
		return "interaction_failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is the terminal result of probing a single route.
type Outcome struct {
	Kind  OutcomeKind
	Price int
	Err   error
	// Time spent probing, pacing excluded. Set by the iterator.
	Took time.Duration
}

func Found(price int) Outcome {
	return Outcome{Kind: PriceFound, Price: price}
}

func NoPrice() Outcome {
	return Outcome{Kind: NoPriceFound}
}

func Failed(err error) Outcome {
	return Outcome{Kind: InteractionFailed, Err: err}
}

type DecisionKind int

const (
	FirstSeen DecisionKind = iota
	Dropped
	Unchanged
	Risen
)

func (k DecisionKind) String() string {
	switch k {
	case FirstSeen:
		return "first_seen"
	case Dropped:
		return "dropped"
	case Unchanged:
		return "unchanged"
	case Risen:
		return "risen"
	default:
		return fmt.Sprintf("decision(%d)", int(k))
	}
}

// Decision compares a new price to the most recent one stored for the same route.
// Delta is always non-negative: prev-price for Dropped, price-prev for Risen.
type Decision struct {
	Kind     DecisionKind
	Previous int
	Delta    int
}

// Decide compares price against the previous observation, if any.
func Decide(price, previous int, hasPrevious bool) Decision {
	switch {
	case !hasPrevious:
		return Decision{Kind: FirstSeen}
	case price < previous:
		return Decision{Kind: Dropped, Previous: previous, Delta: previous - price}
	case price > previous:
		return Decision{Kind: Risen, Previous: previous, Delta: price - previous}
	default:
		return Decision{Kind: Unchanged, Previous: previous}
	}
}
