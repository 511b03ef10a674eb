package types

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp/kb"
)

var (
	// ErrBrowserLaunch is returned when the browser process cannot be started
	ErrBrowserLaunch = errors.New("browser launch failed")
	// ErrNavigation is returned when the product page cannot be opened
	ErrNavigation = errors.New("navigation failed")
	// ErrPriceNotFound is returned when no price could be read from the page
	ErrPriceNotFound = errors.New("price not found")
	// ErrElementNotFound is returned by Page lookups that match nothing
	ErrElementNotFound = errors.New("element not found")
	// ErrInvalidURL is returned for input that is not an absolute http(s) URL
	ErrInvalidURL = errors.New("invalid product URL")
)

// Characteristic is a single name/value pair from the characteristics block
type Characteristic struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ProductRecord represents everything extracted from a product page
type ProductRecord struct {
	URL             string           `json:"url"`
	Name            string           `json:"name,omitempty"`
	Description     string           `json:"description,omitempty"`
	DescriptionText string           `json:"descriptionText,omitempty"`
	Price           string           `json:"price,omitempty"`
	PriceCurrency   string           `json:"priceCurrency,omitempty"`
	PriceText       string           `json:"priceText,omitempty"`
	Characteristics []Characteristic `json:"characteristics"`
	ImageURLs       []string         `json:"imageUrls"`
}

// StructuredData holds the fields read from the embedded JSON-LD product block
type StructuredData struct {
	Name          string
	Description   string
	Price         string
	PriceCurrency string
}

// Jitter is a uniform random duration range used for human-like pacing
type Jitter struct {
	Min time.Duration
	Max time.Duration
}

// Decode parses "4s-6s" or a single duration such as "500ms".
// It lets envconfig read jitter ranges from the environment.
func (j *Jitter) Decode(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	parts := strings.SplitN(value, "-", 2)
	min, err := time.ParseDuration(strings.TrimSpace(parts[0]))
	if err != nil {
		return fmt.Errorf("invalid jitter %q: %w", value, err)
	}
	max := min
	if len(parts) == 2 {
		max, err = time.ParseDuration(strings.TrimSpace(parts[1]))
		if err != nil {
			return fmt.Errorf("invalid jitter %q: %w", value, err)
		}
	}
	if max < min {
		return fmt.Errorf("invalid jitter %q: max is below min", value)
	}

	j.Min, j.Max = min, max
	return nil
}

// Selectors holds the site-specific CSS selectors and marker strings.
// They follow the target site's markup and need adjusting when it changes.
type Selectors struct {
	StructuredData    string `envconfig:"STRUCTURED_DATA"`
	Price             string `envconfig:"PRICE"`
	Characteristics   string `envconfig:"CHARACTERISTICS"`
	CompareMarker     string `envconfig:"COMPARE_MARKER"`
	Description       string `envconfig:"DESCRIPTION"`
	DescriptionImages string `envconfig:"DESCRIPTION_IMAGES"`
	Variant           string `envconfig:"VARIANT"`
	MainImage         string `envconfig:"MAIN_IMAGE"`
	MainImageElement  string `envconfig:"MAIN_IMAGE_ELEMENT"`
}

// Config holds the configuration for the extractor
type Config struct {
	// Timeout bounds a whole extraction run
	Timeout               time.Duration `envconfig:"TIMEOUT"`
	MaxConcurrentSessions int           `envconfig:"MAX_CONCURRENT_SESSIONS"`
	UseHeadlessBrowser    bool          `envconfig:"HEADLESS"`
	UserAgent             string        `envconfig:"USER_AGENT"`

	// Navigator spoofing
	Languages    []string `envconfig:"LANGUAGES"`
	Vendor       string   `envconfig:"VENDOR"`
	Platform     string   `envconfig:"PLATFORM"`
	WindowWidth  int      `envconfig:"WINDOW_WIDTH"`
	WindowHeight int      `envconfig:"WINDOW_HEIGHT"`

	// Page choreography
	SettleDelay     Jitter        `envconfig:"SETTLE_DELAY"`
	DismissKey      string        `envconfig:"DISMISS_KEY"`
	DismissDelay    Jitter        `envconfig:"DISMISS_DELAY"`
	ScrollStep      int           `envconfig:"SCROLL_STEP"`
	ScrollStepDelay Jitter        `envconfig:"SCROLL_STEP_DELAY"`
	PostScrollDelay Jitter        `envconfig:"POST_SCROLL_DELAY"`
	ReadyTimeout    time.Duration `envconfig:"READY_TIMEOUT"`

	// Extraction
	PriceTimeout time.Duration `envconfig:"PRICE_TIMEOUT"`
	RequirePrice bool          `envconfig:"REQUIRE_PRICE"`
	HoverDelay   Jitter        `envconfig:"HOVER_DELAY"`
	RenderDelay  Jitter        `envconfig:"RENDER_DELAY"`
	ImageTimeout time.Duration `envconfig:"IMAGE_TIMEOUT"`

	// DebugDumpPath receives the rendered page when no gallery variants are found.
	// Empty disables the dump.
	DebugDumpPath string `envconfig:"DEBUG_DUMP_PATH"`

	Selectors Selectors `envconfig:"SELECTOR"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Timeout:               5 * time.Minute,
		MaxConcurrentSessions: 2,
		UseHeadlessBrowser:    true,
		UserAgent:             "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/142.0.0.0 Safari/537.36",

		Languages:    []string{"ru-RU", "ru"},
		Vendor:       "Google Inc.",
		Platform:     "MacIntel",
		WindowWidth:  1200,
		WindowHeight: 700,

		SettleDelay:     Jitter{Min: 4 * time.Second, Max: 6 * time.Second},
		DismissKey:      kb.Escape,
		DismissDelay:    Jitter{Min: 500 * time.Millisecond, Max: time.Second},
		ScrollStep:      500,
		ScrollStepDelay: Jitter{Min: 100 * time.Millisecond, Max: 300 * time.Millisecond},
		PostScrollDelay: Jitter{Min: 800 * time.Millisecond, Max: 1500 * time.Millisecond},
		ReadyTimeout:    30 * time.Second,

		PriceTimeout: 30 * time.Second,
		RequirePrice: true,
		HoverDelay:   Jitter{Min: 300 * time.Millisecond, Max: 700 * time.Millisecond},
		RenderDelay:  Jitter{Min: 800 * time.Millisecond, Max: 1500 * time.Millisecond},
		ImageTimeout: 10 * time.Second,

		Selectors: Selectors{
			StructuredData:    `script[type="application/ld+json"]`,
			Price:             "span.tsHeadline600Large",
			Characteristics:   "#section-characteristics",
			CompareMarker:     "Добавить к сравнению",
			Description:       "#section-description",
			DescriptionImages: "#section-description img",
			Variant:           "div.pdp_x6",
			MainImage:         "div.pdp_v3.pdp_v4",
			MainImageElement:  "div.pdp_v3.pdp_v4 img",
		},
	}
}

// Page is the browser capability the extraction pipeline runs against.
// Implementations operate on a single loaded tab; calls are sequential.
type Page interface {
	Navigate(ctx context.Context, url string) error
	PressKey(ctx context.Context, key string) error
	ScrollHeight(ctx context.Context) (int, error)
	ScrollTo(ctx context.Context, y int) error

	// WaitFor blocks until selector matches an element or timeout expires
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error

	// Count returns the number of elements matching selector without waiting
	Count(ctx context.Context, selector string) (int, error)

	// Text returns the rendered text of the first match
	Text(ctx context.Context, selector string) (string, error)

	// Attribute returns attr of the first match
	Attribute(ctx context.Context, selector, attr string) (string, error)

	// Attributes returns the non-empty attr values of all matches in document order
	Attributes(ctx context.Context, selector, attr string) ([]string, error)

	// MoveTo moves the pointer onto the index-th match
	MoveTo(ctx context.Context, selector string, index int) error

	// Click clicks the index-th match
	Click(ctx context.Context, selector string, index int) error

	// HTML returns the current rendered document markup
	HTML(ctx context.Context) (string, error)
}

// Session is a browser instance owned by a single extraction run
type Session interface {
	Page() Page
	Close()
}

// Logger defines the logging interface
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}
