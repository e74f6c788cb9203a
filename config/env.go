package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// env mirrors the overridable settings. Zero values mean "not set"; booleans are strings so that
// an explicit "false" can be told apart from absence.
type env struct {
	AppEnv string `env:"APP_ENV"`

	BaseURL            string `env:"BASE_URL"`
	SearchPathTemplate string `env:"SEARCH_PATH_TEMPLATE"`
	Origins            string `env:"ORIGINS"`
	Destinations       string `env:"DESTINATIONS"`
	Durations          []int  `env:"DURATIONS"`

	PriceMin        int    `env:"PRICE_MIN"`
	PriceMax        int    `env:"PRICE_MAX"`
	CurrencyMarkers string `env:"CURRENCY_MARKERS"`
	PriceMarkers    string `env:"PRICE_MARKER_SELECTORS"`

	RouteDelay       time.Duration `env:"ROUTE_DELAY"`
	SuggestTimeout   time.Duration `env:"SUGGEST_TIMEOUT"`
	PriceWaitTimeout time.Duration `env:"PRICE_WAIT_TIMEOUT"`
	StepTimeout      time.Duration `env:"STEP_TIMEOUT"`
	TypeDelay        time.Duration `env:"TYPE_DELAY"`
	RouteTimeout     time.Duration `env:"ROUTE_TIMEOUT"`

	Headless        string `env:"HEADLESS"`
	UserAgent       string `env:"USER_AGENT"`
	RandomUserAgent string `env:"RANDOM_USER_AGENT"`

	BotToken       string        `env:"TELEGRAM_BOT_TOKEN"`
	ChannelID      string        `env:"TELEGRAM_CHANNEL_ID"`
	TelegramAPI    string        `env:"TELEGRAM_API_URL"`
	NotifyPolicy   string        `env:"NOTIFY_POLICY"`
	NotifyInterval time.Duration `env:"NOTIFY_INTERVAL"`
	NotifyLinks    string        `env:"NOTIFY_INCLUDE_LINK"`

	PostgresDSN string `env:"PG_DSN"`
	HistoryCSV  string `env:"HISTORY_CSV"`

	MetricsTextfile string `env:"METRICS_TEXTFILE"`
	LogLevel        string `env:"LOG_LEVEL"`
}

// Load reads an optional .env file, then applies environment overrides on top of Default
// (or Dev when APP_ENV=dev) and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() (*Config, error) {
	var e env
	if err := envdecode.Decode(&e); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	cfg := Default()
	if strings.EqualFold(e.AppEnv, "dev") {
		cfg = Dev()
	}
	if err := e.apply(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (e env) apply(cfg *Config) error {
	setString(&cfg.Search.BaseURL, e.BaseURL)
	setString(&cfg.Search.SearchPathTemplate, e.SearchPathTemplate)
	if e.Origins != "" {
		cfg.Search.Origins = ParseCities(e.Origins)
	}
	if e.Destinations != "" {
		cfg.Search.Destinations = ParseDestinations(e.Destinations)
	}
	if len(e.Durations) > 0 {
		cfg.Search.Durations = e.Durations
	}

	setInt(&cfg.Prices.Min, e.PriceMin)
	setInt(&cfg.Prices.Max, e.PriceMax)
	if e.CurrencyMarkers != "" {
		cfg.Prices.CurrencyMarkers = splitList(e.CurrencyMarkers)
	}
	if e.PriceMarkers != "" {
		cfg.Prices.MarkerSelectors = splitList(e.PriceMarkers)
	}

	setDuration(&cfg.Timing.RouteDelay, e.RouteDelay)
	setDuration(&cfg.Timing.SuggestTimeout, e.SuggestTimeout)
	setDuration(&cfg.Timing.PriceWaitTimeout, e.PriceWaitTimeout)
	setDuration(&cfg.Timing.StepTimeout, e.StepTimeout)
	setDuration(&cfg.Timing.TypeDelay, e.TypeDelay)
	setDuration(&cfg.Timing.RouteTimeout, e.RouteTimeout)

	if err := setBool(&cfg.Browser.Headless, "HEADLESS", e.Headless); err != nil {
		return err
	}
	setString(&cfg.Browser.UserAgent, e.UserAgent)
	if err := setBool(&cfg.Stealth.RandomUserAgentEnabled, "RANDOM_USER_AGENT", e.RandomUserAgent); err != nil {
		return err
	}

	setString(&cfg.Notify.BotToken, e.BotToken)
	setString(&cfg.Notify.ChannelID, e.ChannelID)
	setString(&cfg.Notify.APIURL, e.TelegramAPI)
	if e.NotifyPolicy != "" {
		cfg.Notify.Policy = NotifyPolicy(strings.ToLower(e.NotifyPolicy))
	}
	setDuration(&cfg.Notify.Interval, e.NotifyInterval)
	if err := setBool(&cfg.Notify.IncludeLink, "NOTIFY_INCLUDE_LINK", e.NotifyLinks); err != nil {
		return err
	}

	setString(&cfg.Storage.PostgresDSN, e.PostgresDSN)
	setString(&cfg.Storage.CSVPath, e.HistoryCSV)
	setString(&cfg.MetricsTextfile, e.MetricsTextfile)
	setString(&cfg.LogLevel, e.LogLevel)
	return nil
}

// ParseCities parses "MOW=Москва;LED=Санкт-Петербург" or plain "Москва;Казань".
func ParseCities(s string) []City {
	var out []City
	for _, item := range splitList(s) {
		code, name, ok := strings.Cut(item, "=")
		if !ok {
			out = append(out, City{Name: item})
			continue
		}
		out = append(out, City{Code: strings.TrimSpace(code), Name: strings.TrimSpace(name)})
	}
	return out
}

// ParseDestinations parses "Турция=turkey;Египет=egypt" or plain "Турция;Египет".
func ParseDestinations(s string) []Destination {
	var out []Destination
	for _, item := range splitList(s) {
		name, slug, _ := strings.Cut(item, "=")
		out = append(out, Destination{Name: strings.TrimSpace(name), Slug: strings.TrimSpace(slug)})
	}
	return out
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}

func setBool(dst *bool, name, v string) error {
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = b
	return nil
}
