// Package scrapertest provides an in-memory scraper.Session for driving UI logic in tests.
package scrapertest

import (
	"context"
	"fmt"
	"time"
	"tour-monitor/scraper"
)

// Element is a node of the fake page.
type Element struct {
	Text string
	Box  scraper.Box
	// Hidden elements are not found until revealed by an interaction.
	Hidden bool
	// Keys of elements revealed when this element is typed into or clicked.
	Reveals []string
	// Error returned by Click when not forced.
	ClickErr error
}

// Session is a fake page keyed by locator string (as printed by scraper.Locator.String).
type Session struct {
	Elements    map[string]*Element
	HTML        string
	Text        string
	NavigateErr error
	EnterErr    error
	ReadErr     error

	// Calls records every interaction in order, e.g. "navigate https://x", "click #a",
	// "type #a Турция", "clear #a", "click-at 10,20", "enter".
	Calls []string

	ids  map[string]int64
	keys map[int64]string
}

// New returns an empty fake page.
func New() *Session {
	return &Session{
		Elements: map[string]*Element{},
		ids:      map[string]int64{},
		keys:     map[int64]string{},
	}
}

// Add puts an element on the page under key and returns it for further setup.
func (s *Session) Add(key string, el *Element) *Element {
	s.Elements[key] = el
	return el
}

func (s *Session) record(format string, args ...any) {
	s.Calls = append(s.Calls, fmt.Sprintf(format, args...))
}

func (s *Session) reveal(el *Element) {
	for _, k := range el.Reveals {
		if r, ok := s.Elements[k]; ok {
			r.Hidden = false
		}
	}
}

func (s *Session) lookup(el *scraper.Element) (*Element, error) {
	key, ok := s.keys[el.ID]
	if !ok {
		return nil, fmt.Errorf("unknown element %d", el.ID)
	}
	return s.Elements[key], nil
}

func (s *Session) Navigate(_ context.Context, url string) error {
	s.record("navigate %s", url)
	return s.NavigateErr
}

func (s *Session) Find(ctx context.Context, loc scraper.Locator) (*scraper.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := loc.String()
	el, ok := s.Elements[key]
	if !ok || el.Hidden {
		return nil, scraper.ErrNotFound
	}
	id, ok := s.ids[key]
	if !ok {
		id = int64(len(s.ids) + 1)
		s.ids[key] = id
		s.keys[id] = key
	}
	return scraper.NewElement(loc, id, el), nil
}

func (s *Session) Clear(_ context.Context, el *scraper.Element) error {
	s.record("clear %s", el.Locator)
	return nil
}

func (s *Session) TypeText(_ context.Context, el *scraper.Element, text string, _ time.Duration) error {
	s.record("type %s %s", el.Locator, text)
	fe, err := s.lookup(el)
	if err != nil {
		return err
	}
	s.reveal(fe)
	return nil
}

func (s *Session) Click(_ context.Context, el *scraper.Element, force bool) error {
	fe, err := s.lookup(el)
	if err != nil {
		return err
	}
	if force {
		s.record("force-click %s", el.Locator)
	} else {
		s.record("click %s", el.Locator)
		if fe.ClickErr != nil {
			return fe.ClickErr
		}
	}
	s.reveal(fe)
	return nil
}

func (s *Session) ClickAt(_ context.Context, x, y float64) error {
	s.record("click-at %g,%g", x, y)
	return nil
}

func (s *Session) PressEnter(context.Context) error {
	s.record("enter")
	return s.EnterErr
}

func (s *Session) BoundingBox(_ context.Context, el *scraper.Element) (scraper.Box, error) {
	fe, err := s.lookup(el)
	if err != nil {
		return scraper.Box{}, err
	}
	return fe.Box, nil
}

func (s *Session) ElementText(_ context.Context, el *scraper.Element) (string, error) {
	fe, err := s.lookup(el)
	if err != nil {
		return "", err
	}
	return fe.Text, nil
}

func (s *Session) ReadText(context.Context) (string, error) {
	return s.Text, s.ReadErr
}

func (s *Session) ReadHTML(context.Context) (string, error) {
	return s.HTML, s.ReadErr
}

var _ scraper.Session = (*Session)(nil)
