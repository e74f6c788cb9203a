package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrWaitTimeout means a polled condition did not hold within its timeout.
var ErrWaitTimeout = errors.New("wait timed out")

const defaultPollInterval = 250 * time.Millisecond

// Condition reports whether the awaited state holds. A non-nil error aborts the wait.
type Condition func(ctx context.Context) (bool, error)

// Poll evaluates cond every interval until it holds, it fails, or timeout elapses.
// The condition is always evaluated at least once. On timeout the error wraps
// ErrWaitTimeout; a canceled parent context is returned as is.
func Poll(ctx context.Context, timeout, interval time.Duration, cond Condition) error {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	deadline := time.Now().Add(timeout)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		ok, err := cond(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if !time.Now().Before(deadline) {
			return fmt.Errorf("%w after %s", ErrWaitTimeout, timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// WaitFor polls s until any of locs matches and returns the element found.
func WaitFor(ctx context.Context, s Session, timeout, interval time.Duration, locs ...Locator) (*Element, error) {
	var found *Element
	err := Poll(ctx, timeout, interval, func(ctx context.Context) (bool, error) {
		el, err := FindAny(ctx, s, locs)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return false, nil
			}
			return false, err
		}
		found = el
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}
