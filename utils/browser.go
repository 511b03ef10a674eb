package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/go-rod/stealth"
	"ozon-extractor/internal/types"
)

// BrowserClient launches hardened browser sessions, one per extraction run
type BrowserClient struct {
	config *types.Config
	logger types.Logger
}

// NewBrowserClient creates a new browser client
func NewBrowserClient(config *types.Config, logger types.Logger) *BrowserClient {
	return &BrowserClient{
		config: config,
		logger: logger,
	}
}

// browserSession owns the allocator and tab contexts of one browser process
type browserSession struct {
	page      *ChromePage
	tabCtx    context.Context
	cancelTab context.CancelFunc
	cancelAll context.CancelFunc
	logger    types.Logger
	once      sync.Once
}

// Acquire starts a new browser with anti-detection settings applied.
// The caller must Close the returned session on every path.
func (b *BrowserClient) Acquire(ctx context.Context, showWindow bool) (types.Session, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, b.allocatorOptions(showWindow)...)

	// Route chromedp's own chatter to debug output, it is noisy on newer Chrome builds
	tabCtx, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(b.logger.Debugf),
		chromedp.WithErrorf(b.logger.Debugf),
	)

	// The first Run starts the browser process
	if err := chromedp.Run(tabCtx, b.hardeningActions(showWindow)...); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("%w: %v", types.ErrBrowserLaunch, err)
	}

	b.logger.Debugf("Browser session started (headless: %v)", !showWindow)

	return &browserSession{
		page:      NewChromePage(tabCtx),
		tabCtx:    tabCtx,
		cancelTab: cancelTab,
		cancelAll: cancelAlloc,
		logger:    b.logger,
	}, nil
}

func (b *BrowserClient) allocatorOptions(showWindow bool) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("headless", !showWindow),
	)

	if !showWindow {
		opts = append(opts, chromedp.WindowSize(b.config.WindowWidth, b.config.WindowHeight))
	}
	if b.config.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(b.config.UserAgent))
	}
	if len(b.config.Languages) > 0 {
		opts = append(opts, chromedp.Flag("lang", b.config.Languages[0]))
	}

	return opts
}

func (b *BrowserClient) hardeningActions(showWindow bool) []chromedp.Action {
	actions := []chromedp.Action{
		emulation.SetAutomationOverride(false),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(stealth.JS).Do(ctx)
			return err
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			script := navigatorScript(b.config.Languages, b.config.Vendor, b.config.Platform)
			_, err := page.AddScriptToEvaluateOnNewDocument(script).Do(ctx)
			return err
		}),
	}

	if b.config.UserAgent != "" {
		override := emulation.SetUserAgentOverride(b.config.UserAgent)
		if len(b.config.Languages) > 0 {
			override = override.WithAcceptLanguage(strings.Join(b.config.Languages, ","))
		}
		if b.config.Platform != "" {
			override = override.WithPlatform(b.config.Platform)
		}
		actions = append(actions, override)
	}

	if !showWindow {
		actions = append(actions, emulation.SetDeviceMetricsOverride(
			int64(b.config.WindowWidth),
			int64(b.config.WindowHeight),
			1.0,
			false,
		))
	}

	return actions
}

// navigatorScript pins navigator.languages, vendor and platform on every new document
func navigatorScript(languages []string, vendor, platform string) string {
	if len(languages) == 0 {
		languages = []string{"en-US", "en"}
	}
	langs, _ := json.Marshal(languages)
	first, _ := json.Marshal(languages[0])
	vendorJSON, _ := json.Marshal(vendor)
	platformJSON, _ := json.Marshal(platform)

	return fmt.Sprintf(`(() => {
	const pin = (name, value) => Object.defineProperty(Navigator.prototype, name, { get: () => value, configurable: true });
	pin('languages', Object.freeze(%s));
	pin('language', %s);
	pin('vendor', %s);
	pin('platform', %s);
})();`, langs, first, vendorJSON, platformJSON)
}

func (s *browserSession) Page() types.Page {
	return s.page
}

// Close shuts the browser down. It is safe to call more than once.
func (s *browserSession) Close() {
	s.once.Do(func() {
		if err := chromedp.Cancel(s.tabCtx); err != nil {
			s.logger.Debugf("Browser close: %v", err)
		}
		s.cancelTab()
		s.cancelAll()
		s.logger.Debug("Browser session closed")
	})
}
