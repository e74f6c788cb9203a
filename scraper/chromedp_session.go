package scraper

import (
	"context"
	"fmt"
	"math"
	"time"
	"tour-monitor/utils"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

const navigateTimeout = 45 * time.Second

// ChromedpSession implements Session on a single chromedp tab.
type ChromedpSession struct {
	tab         context.Context
	stepTimeout time.Duration
}

// NewChromedpSession wraps a tab context created with chromedp.NewContext.
func NewChromedpSession(tab context.Context, stepTimeout time.Duration) *ChromedpSession {
	if stepTimeout <= 0 {
		stepTimeout = 5 * time.Second
	}
	return &ChromedpSession{tab: tab, stepTimeout: stepTimeout}
}

// run executes actions on the tab, bounded by timeout and by the caller's context.
// Canceling the derived context only aborts these actions, never the tab itself.
func (s *ChromedpSession) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.tab, timeout)
	defer cancel()
	if dl, ok := ctx.Deadline(); ok {
		var dlCancel context.CancelFunc
		runCtx, dlCancel = context.WithDeadline(runCtx, dl)
		defer dlCancel()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (s *ChromedpSession) Navigate(ctx context.Context, url string) error {
	if err := s.run(ctx, navigateTimeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func query(loc Locator) (string, chromedp.QueryOption) {
	switch loc.Kind {
	case ByText:
		return textXPath(loc.Value), chromedp.BySearch
	case ByXPath:
		return loc.Value, chromedp.BySearch
	default:
		return loc.Value, chromedp.ByQueryAll
	}
}

// Find does not wait: AtLeast(0) lets the query return immediately with whatever matches.
func (s *ChromedpSession) Find(ctx context.Context, loc Locator) (*Element, error) {
	var nodes []*cdp.Node
	sel, by := query(loc)
	if err := s.run(ctx, s.stepTimeout, chromedp.Nodes(sel, &nodes, by, chromedp.AtLeast(0))); err != nil {
		return nil, fmt.Errorf("find %s: %w", loc, err)
	}
	if len(nodes) == 0 {
		return nil, ErrNotFound
	}
	n := nodes[0]
	return NewElement(loc, int64(n.NodeID), n), nil
}

func nodeIDs(el *Element) []cdp.NodeID {
	return []cdp.NodeID{cdp.NodeID(el.ID)}
}

func node(el *Element) (*cdp.Node, error) {
	n, ok := el.Ref().(*cdp.Node)
	if !ok || n == nil {
		return nil, fmt.Errorf("element %s has no chromedp node", el.Locator)
	}
	return n, nil
}

func (s *ChromedpSession) Clear(ctx context.Context, el *Element) error {
	n, err := node(el)
	if err != nil {
		return err
	}
	return s.run(ctx, s.stepTimeout, callOnNode(n.NodeID, clearInputJS))
}

// callOnNode runs function with the node bound to `this`.
func callOnNode(id cdp.NodeID, function string) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(id).Do(ctx)
		if err != nil {
			return fmt.Errorf("resolve node %d: %w", id, err)
		}
		err = chromedp.CallFunctionOn(function, nil,
			func(p *runtime.CallFunctionOnParams) *runtime.CallFunctionOnParams {
				return p.WithObjectID(obj.ObjectID)
			},
		).Do(ctx)
		// Fails once the page navigated away; nothing to release then.
		_ = runtime.ReleaseObject(obj.ObjectID).Do(ctx)
		return err
	}
}

func (s *ChromedpSession) TypeText(ctx context.Context, el *Element, text string, delay time.Duration) error {
	if err := s.run(ctx, s.stepTimeout, chromedp.Focus(nodeIDs(el), chromedp.ByNodeID)); err != nil {
		return fmt.Errorf("focus %s: %w", el.Locator, err)
	}
	for _, r := range text {
		if err := s.run(ctx, s.stepTimeout, chromedp.KeyEvent(string(r))); err != nil {
			return fmt.Errorf("type into %s: %w", el.Locator, err)
		}
		if err := utils.Sleep(ctx, delay); err != nil {
			return err
		}
	}
	return nil
}

func (s *ChromedpSession) Click(ctx context.Context, el *Element, force bool) error {
	if force {
		n, err := node(el)
		if err != nil {
			return err
		}
		return s.run(ctx, s.stepTimeout, chromedp.MouseClickNode(n))
	}
	return s.run(ctx, s.stepTimeout, chromedp.Click(nodeIDs(el), chromedp.ByNodeID))
}

func (s *ChromedpSession) ClickAt(ctx context.Context, x, y float64) error {
	return s.run(ctx, s.stepTimeout, chromedp.MouseClickXY(x, y))
}

func (s *ChromedpSession) PressEnter(ctx context.Context) error {
	return s.run(ctx, s.stepTimeout, chromedp.KeyEvent(kb.Enter))
}

func (s *ChromedpSession) BoundingBox(ctx context.Context, el *Element) (Box, error) {
	var model *dom.BoxModel
	if err := s.run(ctx, s.stepTimeout, chromedp.Dimensions(nodeIDs(el), &model, chromedp.ByNodeID)); err != nil {
		return Box{}, fmt.Errorf("box of %s: %w", el.Locator, err)
	}
	if model == nil || len(model.Border) < 8 {
		return Box{}, fmt.Errorf("box of %s: empty box model", el.Locator)
	}
	return quadBox(model.Border), nil
}

// quadBox converts a dom.Quad (four x,y corner pairs) into an axis-aligned box.
func quadBox(q dom.Quad) Box {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := 0; i+1 < len(q); i += 2 {
		minX = math.Min(minX, q[i])
		maxX = math.Max(maxX, q[i])
		minY = math.Min(minY, q[i+1])
		maxY = math.Max(maxY, q[i+1])
	}
	return Box{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

func (s *ChromedpSession) ElementText(ctx context.Context, el *Element) (string, error) {
	var text string
	if err := s.run(ctx, s.stepTimeout, chromedp.Text(nodeIDs(el), &text, chromedp.ByNodeID)); err != nil {
		return "", fmt.Errorf("text of %s: %w", el.Locator, err)
	}
	return text, nil
}

func (s *ChromedpSession) ReadText(ctx context.Context) (string, error) {
	var text string
	if err := s.run(ctx, s.stepTimeout, chromedp.Evaluate(bodyTextJS, &text)); err != nil {
		return "", fmt.Errorf("read page text: %w", err)
	}
	return text, nil
}

func (s *ChromedpSession) ReadHTML(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, s.stepTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("read page html: %w", err)
	}
	return html, nil
}

var _ Session = (*ChromedpSession)(nil)
