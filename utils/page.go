package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"ozon-extractor/internal/types"
)

// ChromePage implements types.Page on top of a chromedp tab
type ChromePage struct {
	ctx context.Context
}

// NewChromePage wraps a chromedp tab context
func NewChromePage(tabCtx context.Context) *ChromePage {
	return &ChromePage{ctx: tabCtx}
}

// run executes actions on the tab, bounded by both the caller's ctx and an optional timeout.
// Cancelling the derived context stops the actions without closing the tab.
func (p *ChromePage) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(p.ctx)
	defer cancel()
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(runCtx, timeout)
		defer cancel()
	}

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (p *ChromePage) Navigate(ctx context.Context, url string) error {
	if err := p.run(ctx, 0, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

func (p *ChromePage) PressKey(ctx context.Context, key string) error {
	return p.run(ctx, 0, chromedp.KeyEvent(key))
}

func (p *ChromePage) ScrollHeight(ctx context.Context) (int, error) {
	var height int
	if err := p.run(ctx, 0, chromedp.Evaluate(`document.body.scrollHeight`, &height)); err != nil {
		return 0, fmt.Errorf("failed to read scroll height: %w", err)
	}
	return height, nil
}

func (p *ChromePage) ScrollTo(ctx context.Context, y int) error {
	return p.run(ctx, 0, chromedp.Evaluate(fmt.Sprintf(`window.scrollTo(0, %d);`, y), nil))
}

func (p *ChromePage) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if err := p.run(ctx, timeout, chromedp.WaitReady(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("failed to wait for element %s: %w", selector, err)
	}
	return nil
}

// nodes returns all matches immediately; an empty result is not an error
func (p *ChromePage) nodes(ctx context.Context, selector string) ([]*cdp.Node, error) {
	var nodes []*cdp.Node
	if err := p.run(ctx, 0, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", selector, err)
	}
	return nodes, nil
}

func (p *ChromePage) nth(ctx context.Context, selector string, index int) (*cdp.Node, error) {
	nodes, err := p.nodes(ctx, selector)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(nodes) {
		return nil, fmt.Errorf("%w: %s[%d] (%d matches)", types.ErrElementNotFound, selector, index, len(nodes))
	}
	return nodes[index], nil
}

func (p *ChromePage) Count(ctx context.Context, selector string) (int, error) {
	nodes, err := p.nodes(ctx, selector)
	if err != nil {
		return 0, err
	}
	return len(nodes), nil
}

func (p *ChromePage) Text(ctx context.Context, selector string) (string, error) {
	node, err := p.nth(ctx, selector, 0)
	if err != nil {
		return "", err
	}

	var text string
	if err := p.run(ctx, 0, chromedp.Text([]cdp.NodeID{node.NodeID}, &text, chromedp.ByNodeID)); err != nil {
		return "", fmt.Errorf("failed to get element text for %s: %w", selector, err)
	}
	return text, nil
}

// attributeScript reads a property first so URLs come back resolved, like a browser would report them
const attributeScript = `(() => {
	const read = (el, name) => {
		const prop = el[name];
		if (typeof prop === 'string' && prop !== '') return prop;
		return el.getAttribute(name) || '';
	};
	return Array.from(document.querySelectorAll(%s)).map(el => read(el, %s));
})()`

// attributeQuery builds the attribute script with selector and attr as JS string literals
func attributeQuery(selector, attr string) string {
	sel, _ := json.Marshal(selector)
	name, _ := json.Marshal(attr)
	return fmt.Sprintf(attributeScript, sel, name)
}

func (p *ChromePage) attributes(ctx context.Context, selector, attr string) ([]string, error) {
	var values []string
	script := attributeQuery(selector, attr)
	if err := p.run(ctx, 0, chromedp.Evaluate(script, &values)); err != nil {
		return nil, fmt.Errorf("failed to get attribute %s for %s: %w", attr, selector, err)
	}
	return values, nil
}

func (p *ChromePage) Attribute(ctx context.Context, selector, attr string) (string, error) {
	values, err := p.attributes(ctx, selector, attr)
	if err != nil {
		return "", err
	}
	if len(values) == 0 {
		return "", fmt.Errorf("%w: %s", types.ErrElementNotFound, selector)
	}
	return values[0], nil
}

func (p *ChromePage) Attributes(ctx context.Context, selector, attr string) ([]string, error) {
	values, err := p.attributes(ctx, selector, attr)
	if err != nil {
		return nil, err
	}

	result := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			result = append(result, v)
		}
	}
	return result, nil
}

func (p *ChromePage) MoveTo(ctx context.Context, selector string, index int) error {
	node, err := p.nth(ctx, selector, index)
	if err != nil {
		return err
	}

	return p.run(ctx, 0, chromedp.ActionFunc(func(ctx context.Context) error {
		if err := dom.ScrollIntoViewIfNeeded().WithNodeID(node.NodeID).Do(ctx); err != nil {
			return fmt.Errorf("failed to scroll %s[%d] into view: %w", selector, index, err)
		}
		quads, err := dom.GetContentQuads().WithNodeID(node.NodeID).Do(ctx)
		if err != nil {
			return fmt.Errorf("failed to locate %s[%d]: %w", selector, index, err)
		}
		if len(quads) == 0 {
			return fmt.Errorf("%s[%d] is not rendered", selector, index)
		}
		x, y := quadCenter(quads[0])
		return input.DispatchMouseEvent(input.MouseMoved, x, y).Do(ctx)
	}))
}

func (p *ChromePage) Click(ctx context.Context, selector string, index int) error {
	node, err := p.nth(ctx, selector, index)
	if err != nil {
		return err
	}
	if err := p.run(ctx, 0, chromedp.MouseClickNode(node)); err != nil {
		return fmt.Errorf("failed to click %s[%d]: %w", selector, index, err)
	}
	return nil
}

func (p *ChromePage) HTML(ctx context.Context) (string, error) {
	var html string
	if err := p.run(ctx, 0, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to get page content: %w", err)
	}
	return html, nil
}

func quadCenter(q dom.Quad) (float64, float64) {
	var x, y float64
	points := len(q) / 2
	if points == 0 {
		return 0, 0
	}
	for i := 0; i < points; i++ {
		x += q[i*2]
		y += q[i*2+1]
	}
	return x / float64(points), y / float64(points)
}
