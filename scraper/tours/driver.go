// Package tours drives the tour search page of the target site and reads its price calendar.
package tours

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"tour-monitor/config"
	"tour-monitor/models"
	"tour-monitor/scraper"
	"tour-monitor/utils"

	"go.uber.org/zap"
)

// ErrDestinationNotSet aborts a route: no price can exist without a destination.
var ErrDestinationNotSet = errors.New("destination not set")

// Driver brings the search page into a state where the prices of a route are rendered.
// Every step is an ordered fallback chain; see the *Chain methods.
type Driver struct {
	search    config.SearchConfig
	timing    config.TimingConfig
	selectors config.SelectorConfig
	log       *zap.Logger

	destinationInputs []scraper.Locator
	suggestions       []scraper.Locator
	originDisplays    []scraper.Locator
	originInputs      []scraper.Locator
}

func NewDriver(cfg *config.Config, log *zap.Logger) *Driver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Driver{
		search:            cfg.Search,
		timing:            cfg.Timing,
		selectors:         cfg.Selectors,
		log:               log.Named("driver"),
		destinationInputs: scraper.ParseLocators(cfg.Selectors.DestinationInput),
		suggestions:       scraper.ParseLocators(cfg.Selectors.Suggestion),
		originDisplays:    scraper.ParseLocators(cfg.Selectors.OriginDisplay),
		originInputs:      scraper.ParseLocators(cfg.Selectors.OriginInput),
	}
}

// EntryURL is where a route's interaction starts. The destination slug selects the search
// path when a template is configured; the duration travels as a nights query parameter.
func (d *Driver) EntryURL(route models.Route) string {
	u, err := url.Parse(d.search.BaseURL)
	if err != nil {
		return d.search.BaseURL
	}
	if slug := d.search.Slug(route.Destination); slug != "" && d.search.SearchPathTemplate != "" {
		u = u.JoinPath(fmt.Sprintf(d.search.SearchPathTemplate, slug))
	}
	if route.Nights > 0 {
		q := u.Query()
		q.Set("nights", strconv.Itoa(route.Nights))
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// LocateAndSet runs the interaction sequence for route. A nil error means the page is
// ready for price extraction. Only navigation and destination failures are returned;
// origin and calendar failures are logged and the sequence carries on.
func (d *Driver) LocateAndSet(ctx context.Context, s scraper.Session, route models.Route) error {
	log := d.log.With(utils.RouteFields(route.Origin, route.Destination, route.Nights)...)

	entry := d.EntryURL(route)
	if err := s.Navigate(ctx, entry); err != nil {
		return err
	}
	if err := utils.Sleep(ctx, d.timing.PageLoadWait); err != nil {
		return err
	}
	// Drop any focus or open popup left from the previous route.
	if err := s.ClickAt(ctx, d.selectors.NeutralClickX, d.selectors.NeutralClickY); err != nil {
		log.Debug("neutral click failed", zap.Error(err))
	}

	input, err := d.setDestination(ctx, s, route.Destination)
	if err != nil {
		return err
	}
	log.Debug("destination set")

	if err := d.setOrigin(ctx, s, route.Origin); err != nil {
		log.Warn("origin not set, continuing with page default", zap.Error(err))
	}

	if used, err := d.CalendarChain(input).Run(ctx, s); err != nil {
		log.Warn("calendar not confirmed open, waiting for prices anyway", zap.Error(err))
	} else {
		log.Debug("calendar opened", zap.String("strategy", used))
	}
	return nil
}

func (d *Driver) setDestination(ctx context.Context, s scraper.Session, destination string) (*scraper.Element, error) {
	var input *scraper.Element
	if _, err := d.LocateChain("destination-input", d.destinationInputs, &input).Run(ctx, s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDestinationNotSet, err)
	}
	if err := d.fill(ctx, s, input, destination); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDestinationNotSet, err)
	}
	if _, err := d.SuggestionChain().Run(ctx, s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDestinationNotSet, err)
	}
	return input, nil
}

// setOrigin only touches the page when the displayed departure city differs from origin.
func (d *Driver) setOrigin(ctx context.Context, s scraper.Session, origin string) error {
	if origin == "" {
		return nil
	}
	if display, err := scraper.FindAny(ctx, s, d.originDisplays); err == nil {
		current, err := s.ElementText(ctx, display)
		if err == nil && containsFold(current, origin) {
			d.log.Debug("origin already selected", zap.String("origin", origin))
			return nil
		}
		if err := clickOrForce(ctx, s, display); err != nil {
			d.log.Debug("origin control click failed", zap.Error(err))
		}
	}

	var input *scraper.Element
	if _, err := d.LocateChain("origin-input", d.originInputs, &input).Run(ctx, s); err != nil {
		return err
	}
	if err := d.fill(ctx, s, input, origin); err != nil {
		return err
	}
	_, err := d.SuggestionChain().Run(ctx, s)
	return err
}

func (d *Driver) fill(ctx context.Context, s scraper.Session, input *scraper.Element, text string) error {
	if err := clickOrForce(ctx, s, input); err != nil {
		return fmt.Errorf("focus input: %w", err)
	}
	if err := s.Clear(ctx, input); err != nil {
		return fmt.Errorf("clear input: %w", err)
	}
	if err := s.TypeText(ctx, input, text, d.timing.TypeDelay); err != nil {
		return fmt.Errorf("type %q: %w", text, err)
	}
	return nil
}

// LocateChain waits for each locator in turn and stores the first element found in out.
func (d *Driver) LocateChain(step string, locs []scraper.Locator, out **scraper.Element) scraper.Chain {
	strategies := make([]scraper.Strategy, 0, len(locs))
	for _, loc := range locs {
		strategies = append(strategies, scraper.Strategy{
			Name: loc.String(),
			Run: func(ctx context.Context, s scraper.Session) error {
				el, err := scraper.WaitFor(ctx, s, d.timing.StepTimeout, d.timing.PollInterval, loc)
				if err != nil {
					return err
				}
				*out = el
				return nil
			},
		})
	}
	return scraper.NewChain(step, strategies...)
}

// SuggestionChain picks the first suggestion after typing: click it once the list renders,
// else confirm with Enter.
func (d *Driver) SuggestionChain() scraper.Chain {
	return scraper.NewChain("suggestion",
		scraper.Strategy{
			Name: "click-first-suggestion",
			Run: func(ctx context.Context, s scraper.Session) error {
				if len(d.suggestions) == 0 {
					return scraper.ErrNotFound
				}
				el, err := scraper.WaitFor(ctx, s, d.timing.SuggestTimeout, d.timing.PollInterval, d.suggestions...)
				if err != nil {
					return err
				}
				return clickOrForce(ctx, s, el)
			},
		},
		scraper.Strategy{
			Name: "press-enter",
			Run: func(ctx context.Context, s scraper.Session) error {
				return s.PressEnter(ctx)
			},
		},
	)
}

// CalendarChain opens the price calendar: primary selector, secondary selector, then a
// click at a fixed offset right of anchor (the destination input). The last strategy is a
// guess about layout; the page offers nothing better to rely on.
func (d *Driver) CalendarChain(anchor *scraper.Element) scraper.Chain {
	var strategies []scraper.Strategy
	for _, sel := range []string{d.selectors.CalendarPrimary, d.selectors.CalendarSecondary} {
		if sel == "" {
			continue
		}
		loc := scraper.ParseLocator(sel)
		strategies = append(strategies, scraper.Strategy{
			Name: "selector:" + loc.String(),
			Run: func(ctx context.Context, s scraper.Session) error {
				el, err := s.Find(ctx, loc)
				if err != nil {
					return err
				}
				return clickOrForce(ctx, s, el)
			},
		})
	}
	strategies = append(strategies, scraper.Strategy{
		Name: "beside-destination",
		Run: func(ctx context.Context, s scraper.Session) error {
			if anchor == nil {
				return errors.New("no destination input to anchor on")
			}
			box, err := s.BoundingBox(ctx, anchor)
			if err != nil {
				return err
			}
			x, y := BesideBox(box, d.selectors.CalendarOffsetX)
			return s.ClickAt(ctx, x, y)
		},
	})
	return scraper.NewChain("calendar", strategies...)
}

// BesideBox returns the point offset pixels right of box, vertically centered.
func BesideBox(box scraper.Box, offset float64) (float64, float64) {
	return box.X + box.Width + offset, box.Y + box.Height/2
}

func clickOrForce(ctx context.Context, s scraper.Session, el *scraper.Element) error {
	err := s.Click(ctx, el, false)
	if err == nil {
		return nil
	}
	if ferr := s.Click(ctx, el, true); ferr != nil {
		return errors.Join(err, ferr)
	}
	return nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
