package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrChainExhausted means every strategy of a chain failed.
var ErrChainExhausted = errors.New("all strategies failed")

// Strategy is one way of achieving a UI step.
type Strategy struct {
	Name string
	Run  func(ctx context.Context, s Session) error
}

// Chain is an ordered list of strategies for the same logical step, most reliable first.
type Chain struct {
	Step       string
	Strategies []Strategy
}

// NewChain builds a chain for step.
func NewChain(step string, strategies ...Strategy) Chain {
	return Chain{Step: step, Strategies: strategies}
}

// Names lists the strategies in the order they are tried.
func (c Chain) Names() []string {
	names := make([]string, len(c.Strategies))
	for i, st := range c.Strategies {
		names[i] = st.Name
	}
	return names
}

// Run tries each strategy in order and returns the name of the first that succeeds.
// When all fail the returned error wraps ErrChainExhausted and every strategy error.
// A done context stops the chain early.
func (c Chain) Run(ctx context.Context, s Session) (string, error) {
	errs := make([]string, 0, len(c.Strategies))
	joined := make([]error, 0, len(c.Strategies)+1)
	joined = append(joined, ErrChainExhausted)

	for _, st := range c.Strategies {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("%s: %w", c.Step, err)
		}
		err := st.Run(ctx, s)
		if err == nil {
			return st.Name, nil
		}
		errs = append(errs, st.Name)
		joined = append(joined, fmt.Errorf("%s: %w", st.Name, err))
	}
	return "", fmt.Errorf("%s [%s]: %w", c.Step, strings.Join(errs, ", "), errors.Join(joined...))
}
