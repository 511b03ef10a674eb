// Package pagetest provides a scripted in-memory types.Page for exercising
// the extraction pipeline without a browser.
package pagetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ozon-extractor/internal/types"
)

// Variant is one gallery swatch; clicking it shows Image as the main image
type Variant struct {
	Image string
	Fail  bool // MoveTo fails for this variant
}

// Page is a fake types.Page driven by selector tables
type Page struct {
	Selectors types.Selectors

	NavigateErr error
	KeyErr      error
	HTMLErr     error
	Height      int

	// Texts maps a selector to its rendered text; listed selectors also satisfy WaitFor
	Texts map[string]string
	// Attrs maps a selector to the attribute values of its matches
	Attrs    map[string][]string
	Variants []Variant
	Markup   string

	mu      sync.Mutex
	calls   []string
	current string
}

// New creates an empty page using the given selectors
func New(selectors types.Selectors) *Page {
	return &Page{
		Selectors: selectors,
		Texts:     make(map[string]string),
		Attrs:     make(map[string][]string),
	}
}

// Calls returns the recorded interaction log
func (p *Page) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func (p *Page) record(format string, args ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, fmt.Sprintf(format, args...))
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	p.record("navigate %s", url)
	return p.NavigateErr
}

func (p *Page) PressKey(ctx context.Context, key string) error {
	p.record("key %q", key)
	return p.KeyErr
}

func (p *Page) ScrollHeight(ctx context.Context) (int, error) {
	return p.Height, nil
}

func (p *Page) ScrollTo(ctx context.Context, y int) error {
	p.record("scroll %d", y)
	return nil
}

func (p *Page) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	p.record("wait %s", selector)
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.present(selector) {
		return nil
	}
	return fmt.Errorf("failed to wait for element %s: %w", selector, context.DeadlineExceeded)
}

func (p *Page) present(selector string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if selector == p.Selectors.MainImage {
		return p.current != ""
	}
	if _, ok := p.Texts[selector]; ok {
		return true
	}
	return len(p.Attrs[selector]) > 0
}

func (p *Page) Count(ctx context.Context, selector string) (int, error) {
	if selector == p.Selectors.Variant {
		return len(p.Variants), nil
	}
	return len(p.Attrs[selector]), nil
}

func (p *Page) Text(ctx context.Context, selector string) (string, error) {
	text, ok := p.Texts[selector]
	if !ok {
		return "", fmt.Errorf("%w: %s", types.ErrElementNotFound, selector)
	}
	return text, nil
}

func (p *Page) Attribute(ctx context.Context, selector, attr string) (string, error) {
	if selector == p.Selectors.MainImageElement && attr == "src" {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.current == "" {
			return "", fmt.Errorf("%w: %s", types.ErrElementNotFound, selector)
		}
		return p.current, nil
	}

	values := p.Attrs[selector]
	if len(values) == 0 {
		return "", fmt.Errorf("%w: %s", types.ErrElementNotFound, selector)
	}
	return values[0], nil
}

func (p *Page) Attributes(ctx context.Context, selector, attr string) ([]string, error) {
	return append([]string{}, p.Attrs[selector]...), nil
}

func (p *Page) variant(selector string, index int) (Variant, error) {
	if selector != p.Selectors.Variant || index < 0 || index >= len(p.Variants) {
		return Variant{}, fmt.Errorf("%w: %s[%d]", types.ErrElementNotFound, selector, index)
	}
	return p.Variants[index], nil
}

func (p *Page) MoveTo(ctx context.Context, selector string, index int) error {
	p.record("move %d", index)
	v, err := p.variant(selector, index)
	if err != nil {
		return err
	}
	if v.Fail {
		return errors.New("element is not interactable")
	}
	return nil
}

func (p *Page) Click(ctx context.Context, selector string, index int) error {
	p.record("click %d", index)
	v, err := p.variant(selector, index)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.current = v.Image
	p.mu.Unlock()
	return nil
}

func (p *Page) HTML(ctx context.Context) (string, error) {
	p.record("html")
	if p.HTMLErr != nil {
		return "", p.HTMLErr
	}
	return p.Markup, nil
}

// Session wraps a Page and records whether it was closed
type Session struct {
	P      *Page
	mu     sync.Mutex
	closed int
}

func (s *Session) Page() types.Page {
	return s.P
}

func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
}

// Closed reports how many times Close was called
func (s *Session) Closed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
