package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// BrowserConfig controls headless Chrome flags.
type BrowserConfig struct {
	Headless     bool
	DisableGPU   bool
	NoSandbox    bool
	DisableShm   bool
	UserAgent    string
	WindowWidth  int
	WindowHeight int
}

// TimingConfig controls every wait and pause of a run.
type TimingConfig struct {
	// Fixed pause between two consecutive routes, applied success or failure
	RouteDelay time.Duration
	// How long the suggestion list may take to render after typing
	SuggestTimeout time.Duration
	// How long to wait for the first price element after opening the calendar
	PriceWaitTimeout time.Duration
	// Upper bound for a single UI action (find, click, type)
	StepTimeout time.Duration
	// Delay between keystrokes when typing into inputs
	TypeDelay time.Duration
	// Interval between checks of a polled condition
	PollInterval time.Duration
	// Settle time after navigation before the first interaction
	PageLoadWait time.Duration
	// Hard limit for one route's whole interaction sequence
	RouteTimeout time.Duration
}

// City is a departure city. Code is informational (IATA), Name is what the site displays.
type City struct {
	Code string
	Name string
}

// Destination is a country or resort name, optionally with a URL-safe slug.
type Destination struct {
	Name string
	Slug string
}

// SearchConfig is the route space of a run.
type SearchConfig struct {
	BaseURL string
	// Optional path template; %s receives the destination slug
	SearchPathTemplate string
	Origins            []City
	Destinations       []Destination
	// Empty means routes carry no duration
	Durations []int
}

// Slug returns the configured slug for destination name, or "".
func (s SearchConfig) Slug(destination string) string {
	for _, d := range s.Destinations {
		if d.Name == destination {
			return d.Slug
		}
	}
	return ""
}

// PriceConfig bounds what counts as a plausible tour price.
type PriceConfig struct {
	Min int
	Max int
	// Currency markers that must follow a digit run in unstructured text
	CurrencyMarkers []string
	// CSS selectors of elements that hold confirmed prices
	MarkerSelectors []string
}

// SelectorConfig lists the selector guesses for every UI step, most reliable first.
// An entry prefixed with "text=" is matched against element text instead of CSS.
type SelectorConfig struct {
	DestinationInput  []string
	Suggestion        []string
	OriginDisplay     []string
	OriginInput       []string
	CalendarPrimary   string
	CalendarSecondary string
	// Horizontal distance from the right edge of the destination input to click
	// when no calendar selector matches
	CalendarOffsetX float64
	NeutralClickX   float64
	NeutralClickY   float64
}

type NotifyPolicy string

const (
	// NotifyDrops reports first sightings and price drops
	NotifyDrops NotifyPolicy = "drops"
	// NotifyChanges also reports price increases
	NotifyChanges NotifyPolicy = "changes"
	// NotifyFirst only reports routes seen for the first time
	NotifyFirst NotifyPolicy = "first"
)

// NotifyConfig controls the messaging channel.
type NotifyConfig struct {
	BotToken  string
	ChannelID string
	APIURL    string
	Policy    NotifyPolicy
	// Minimum spacing between two messages
	Interval time.Duration
	// Append the search URL to the message
	IncludeLink bool
	Timeout     time.Duration
}

// StorageConfig selects the history store: postgres if a DSN is set, else CSV if a path is set,
// else in-memory.
type StorageConfig struct {
	PostgresDSN string
	CSVPath     string
}

// StealthConfig controls anti-detection behavior.
type StealthConfig struct {
	// Pick the user agent from DefaultUserAgents at launch
	RandomUserAgentEnabled bool
}

// Config is the root configuration. It is built once at start and never mutated.
type Config struct {
	Browser   BrowserConfig
	Timing    TimingConfig
	Search    SearchConfig
	Prices    PriceConfig
	Selectors SelectorConfig
	Notify    NotifyConfig
	Storage   StorageConfig
	Stealth   StealthConfig
	// Optional path of a Prometheus textfile written at the end of a run
	MetricsTextfile string
	LogLevel        string
	// Development console logging
	DevLogging bool
}

// Default returns a conservative production-ready configuration.
func Default() *Config {
	return &Config{
		Browser: BrowserConfig{
			Headless:     true,
			DisableGPU:   true,
			NoSandbox:    true,
			DisableShm:   true,
			UserAgent:    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			WindowWidth:  1440,
			WindowHeight: 900,
		},
		Timing: TimingConfig{
			RouteDelay:       3 * time.Second,
			SuggestTimeout:   4 * time.Second,
			PriceWaitTimeout: 20 * time.Second,
			StepTimeout:      5 * time.Second,
			TypeDelay:        80 * time.Millisecond,
			PollInterval:     250 * time.Millisecond,
			PageLoadWait:     3 * time.Second,
			RouteTimeout:     90 * time.Second,
		},
		Search: SearchConfig{
			BaseURL: "https://volago.ru/",
			Origins: []City{
				{Code: "MOW", Name: "Москва"},
				{Code: "LED", Name: "Санкт-Петербург"},
				{Code: "SVX", Name: "Екатеринбург"},
				{Code: "KZN", Name: "Казань"},
				{Code: "OVB", Name: "Новосибирск"},
				{Code: "AER", Name: "Сочи"},
				{Code: "UFA", Name: "Уфа"},
				{Code: "KUF", Name: "Самара"},
			},
			Destinations: []Destination{
				{Name: "Турция", Slug: "turkey"},
				{Name: "Египет", Slug: "egypt"},
				{Name: "ОАЭ", Slug: "uae"},
				{Name: "Таиланд", Slug: "thailand"},
				{Name: "Шри-Ланка", Slug: "sri-lanka"},
				{Name: "Россия", Slug: "russia"},
				{Name: "Абхазия", Slug: "abkhazia"},
				{Name: "Куба", Slug: "cuba"},
				{Name: "Мальдивы", Slug: "maldives"},
			},
		},
		Prices: PriceConfig{
			Min:             10000,
			Max:             1000000,
			CurrencyMarkers: []string{"₽", "руб"},
			MarkerSelectors: []string{
				`[class*="price_green"]`,
				`[class*="calendar"] [class*="price"]`,
			},
		},
		Selectors: SelectorConfig{
			DestinationInput: []string{
				`input[placeholder*="Куда"]`,
				`input[placeholder*="Страна"]`,
				`input[placeholder*="курорт"]`,
			},
			Suggestion: []string{
				`[role="listbox"] [role="option"]`,
				`ul[class*="suggest"] li`,
				`[class*="Suggest"] [class*="item"]`,
			},
			OriginDisplay: []string{
				`[data-testid="departure-city"]`,
				`[class*="departure"] button`,
				`text=Из `,
			},
			OriginInput: []string{
				`input[placeholder*="Откуда"]`,
				`input[placeholder*="Город вылета"]`,
			},
			CalendarPrimary:   `[data-testid="calendar-toggle"]`,
			CalendarSecondary: `button[class*="calendar"]`,
			CalendarOffsetX:   40,
			NeutralClickX:     5,
			NeutralClickY:     5,
		},
		Notify: NotifyConfig{
			APIURL:   "https://api.telegram.org",
			Policy:   NotifyDrops,
			Interval: 2 * time.Second,
			Timeout:  10 * time.Second,
		},
		Stealth: StealthConfig{
			RandomUserAgentEnabled: true,
		},
		LogLevel: "info",
	}
}

// Dev returns a faster config suited for local development: visible browser, short pauses,
// console logs.
func Dev() *Config {
	cfg := Default()
	cfg.Browser.Headless = false
	cfg.Timing.RouteDelay = 1 * time.Second
	cfg.Timing.PageLoadWait = 2 * time.Second
	cfg.Timing.PriceWaitTimeout = 10 * time.Second
	cfg.Stealth.RandomUserAgentEnabled = false
	cfg.LogLevel = "debug"
	cfg.DevLogging = true
	return cfg
}

// Validate reports configuration that would make a run meaningless.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Search.Origins) == 0 {
		errs = append(errs, errors.New("no origin cities configured"))
	}
	if len(c.Search.Destinations) == 0 {
		errs = append(errs, errors.New("no destinations configured"))
	}
	if c.Search.BaseURL == "" {
		errs = append(errs, errors.New("base url is empty"))
	} else if u, err := url.Parse(c.Search.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("base url: %w", err))
	} else if u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("base url %q is not absolute", c.Search.BaseURL))
	}
	if tpl := c.Search.SearchPathTemplate; tpl != "" && (strings.Count(tpl, "%") != 1 || !strings.Contains(tpl, "%s")) {
		errs = append(errs, fmt.Errorf("search path template %q must hold exactly one %%s", tpl))
	}
	if c.Prices.Min <= 0 {
		errs = append(errs, fmt.Errorf("price min must be positive, got %d", c.Prices.Min))
	}
	if c.Prices.Max < c.Prices.Min {
		errs = append(errs, fmt.Errorf("price max %d is below min %d", c.Prices.Max, c.Prices.Min))
	}
	if len(c.Prices.CurrencyMarkers) == 0 {
		errs = append(errs, errors.New("no currency markers configured"))
	}
	for _, n := range c.Search.Durations {
		if n <= 0 {
			errs = append(errs, fmt.Errorf("duration must be positive, got %d", n))
		}
	}
	switch c.Notify.Policy {
	case NotifyDrops, NotifyChanges, NotifyFirst:
	default:
		errs = append(errs, fmt.Errorf("unknown notify policy %q", c.Notify.Policy))
	}
	if c.Notify.BotToken != "" && c.Notify.ChannelID == "" {
		errs = append(errs, errors.New("telegram bot token set without channel id"))
	}
	return errors.Join(errs...)
}

// DefaultUserAgents returns a pool of realistic desktop browser user agents.
func DefaultUserAgents() []string {
	return []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
	}
}
