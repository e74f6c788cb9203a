package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound means no element matched a locator at the time of the lookup.
	ErrNotFound = errors.New("element not found")
	// ErrLaunch means the browser could not be started; nothing can run without it.
	ErrLaunch = errors.New("browser launch failed")
)

type LocatorKind int

const (
	ByCSS LocatorKind = iota
	ByText
	ByXPath
)

// Locator describes how to find an element. Nothing about the target page is assumed stable,
// so callers usually hold several locators per element and try them in order.
type Locator struct {
	Kind  LocatorKind
	Value string
}

func CSS(sel string) Locator   { return Locator{Kind: ByCSS, Value: sel} }
func Text(text string) Locator { return Locator{Kind: ByText, Value: text} }
func XPath(x string) Locator   { return Locator{Kind: ByXPath, Value: x} }

// ParseLocator turns a configured selector into a Locator. "text=..." matches element
// text, "xpath=..." is a raw XPath expression, anything else is CSS.
func ParseLocator(s string) Locator {
	switch {
	case strings.HasPrefix(s, "text="):
		return Text(strings.TrimPrefix(s, "text="))
	case strings.HasPrefix(s, "xpath="):
		return XPath(strings.TrimPrefix(s, "xpath="))
	default:
		return CSS(s)
	}
}

// ParseLocators applies ParseLocator to every entry.
func ParseLocators(ss []string) []Locator {
	out := make([]Locator, 0, len(ss))
	for _, s := range ss {
		out = append(out, ParseLocator(s))
	}
	return out
}

func (l Locator) String() string {
	switch l.Kind {
	case ByText:
		return "text=" + l.Value
	case ByXPath:
		return "xpath=" + l.Value
	default:
		return l.Value
	}
}

// Element is a handle to a node found by a Session. It is only valid for the session
// and page that produced it.
type Element struct {
	Locator Locator
	ID      int64
	ref     any
}

// NewElement builds a handle; ref is implementation specific.
func NewElement(loc Locator, id int64, ref any) *Element {
	return &Element{Locator: loc, ID: id, ref: ref}
}

// Ref returns the implementation specific node reference.
func (e *Element) Ref() any { return e.ref }

// Box is an element's bounding box in CSS pixels.
type Box struct {
	X, Y, Width, Height float64
}

// Session is the rendering collaborator. One Session drives one stateful page; it is not
// safe for concurrent use.
type Session interface {
	Navigate(ctx context.Context, url string) error
	// Find returns the first element matching loc right now, or ErrNotFound.
	Find(ctx context.Context, loc Locator) (*Element, error)
	Clear(ctx context.Context, el *Element) error
	TypeText(ctx context.Context, el *Element, text string, delay time.Duration) error
	// Click clicks el. force dispatches a raw mouse event at the element's center, skipping
	// visibility checks.
	Click(ctx context.Context, el *Element, force bool) error
	ClickAt(ctx context.Context, x, y float64) error
	PressEnter(ctx context.Context) error
	BoundingBox(ctx context.Context, el *Element) (Box, error)
	ElementText(ctx context.Context, el *Element) (string, error)
	ReadText(ctx context.Context) (string, error)
	ReadHTML(ctx context.Context) (string, error)
}

// FindAny returns the first element matched by any of locs, trying them in order.
func FindAny(ctx context.Context, s Session, locs []Locator) (*Element, error) {
	var errs []error
	for _, loc := range locs {
		el, err := s.Find(ctx, loc)
		if err == nil {
			return el, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", loc, err))
	}
	if len(errs) == 0 {
		return nil, ErrNotFound
	}
	return nil, errors.Join(errs...)
}
