package adapters

import (
	"context"
	"fmt"
	"os"
	"strings"

	"ozon-extractor/internal/types"
	"ozon-extractor/utils"

	"github.com/PuerkitoBio/goquery"
)

// BaseAdapter provides common functionality for site adapters:
// configuration, logging, humanized pacing and HTML helpers.
type BaseAdapter struct {
	config *types.Config // Timeouts, jitter ranges and selectors
	logger types.Logger  // Diagnostics, never written to stdout
	pacer  *utils.Pacer  // Randomized sleeps between page interactions
}

// NewBaseAdapter creates a new base adapter with a time-seeded pacer
func NewBaseAdapter(config *types.Config, logger types.Logger) *BaseAdapter {
	return &BaseAdapter{
		config: config,
		logger: logger,
		pacer:  utils.NewPacer(),
	}
}

// Pause sleeps for a random duration within j.
// Pacing is best-effort: only context cancellation is reported.
func (b *BaseAdapter) Pause(ctx context.Context, j types.Jitter) error {
	return b.pacer.Pause(ctx, j)
}

// ParseHTML parses HTML content into a goquery document
func (b *BaseAdapter) ParseHTML(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// RemoveDuplicateURLs removes duplicate and empty URLs, keeping the first occurrence of each
func (b *BaseAdapter) RemoveDuplicateURLs(urls []string) []string {
	seen := make(map[string]bool)
	uniqueURLs := make([]string, 0, len(urls))

	for _, url := range urls {
		if url == "" || seen[url] {
			continue
		}
		seen[url] = true
		uniqueURLs = append(uniqueURLs, url)
	}

	return uniqueURLs
}

// DumpHTML writes the rendered page to the configured debug path, if any
func (b *BaseAdapter) DumpHTML(ctx context.Context, page types.Page) {
	if b.config.DebugDumpPath == "" {
		return
	}

	html, err := page.HTML(ctx)
	if err != nil {
		b.logger.Warnf("Could not capture page for debugging: %v", err)
		return
	}

	if err := writeToFile(b.config.DebugDumpPath, []byte(html)); err != nil {
		b.logger.Warnf("Could not write debug page: %v", err)
		return
	}
	b.logger.Infof("Rendered page saved to %s for inspection", b.config.DebugDumpPath)
}

// Config returns the config field of the BaseAdapter
func (b *BaseAdapter) Config() *types.Config {
	return b.config
}

// writeToFile writes data to a file
func writeToFile(filename string, data []byte) error {
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}
