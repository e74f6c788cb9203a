package scraper

import (
	"context"
	"fmt"
	"math/rand"
	"tour-monitor/config"

	"github.com/chromedp/chromedp"
)

// NewAllocator creates a Chrome process from the given browser config.
// All tabs (contexts) must be created from the returned context.
func NewAllocator(parent context.Context, cfg *config.BrowserConfig, userAgent string) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", cfg.DisableGPU),
		chromedp.Flag("no-sandbox", cfg.NoSandbox),
		chromedp.Flag("disable-setuid-sandbox", cfg.NoSandbox),
		chromedp.Flag("disable-dev-shm-usage", cfg.DisableShm),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight),
		chromedp.UserAgent(userAgent),
	)
	return chromedp.NewExecAllocator(parent, opts...)
}

// NewTab opens a new browser tab from the allocator context.
func NewTab(allocCtx context.Context, logf func(string, ...any)) (context.Context, context.CancelFunc) {
	if logf == nil {
		return chromedp.NewContext(allocCtx)
	}
	return chromedp.NewContext(allocCtx, chromedp.WithLogf(logf))
}

// PickUserAgent returns a random agent from the pool when stealth asks for it,
// otherwise the configured one.
func PickUserAgent(cfg *config.Config) string {
	pool := config.DefaultUserAgents()
	if !cfg.Stealth.RandomUserAgentEnabled || len(pool) == 0 {
		return cfg.Browser.UserAgent
	}
	return pool[rand.Intn(len(pool))]
}

// Launch starts Chrome and returns a session bound to a single tab. The returned cancel
// releases the tab and the browser process. Errors wrap ErrLaunch.
func Launch(parent context.Context, cfg *config.Config, logf func(string, ...any)) (*ChromedpSession, context.CancelFunc, error) {
	allocCtx, allocCancel := NewAllocator(parent, &cfg.Browser, PickUserAgent(cfg))
	tabCtx, tabCancel := NewTab(allocCtx, logf)

	cancel := func() {
		tabCancel()
		allocCancel()
	}

	// An empty Run starts the browser.
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, nil, fmt.Errorf("%w: %v", ErrLaunch, err)
	}

	return NewChromedpSession(tabCtx, cfg.Timing.StepTimeout), cancel, nil
}
