package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"time"

	"ozon-extractor/adapters"
	"ozon-extractor/internal/types"
	"ozon-extractor/utils"
)

// sessionProvider launches one browser session per extraction run
type sessionProvider interface {
	Acquire(ctx context.Context, showWindow bool) (types.Session, error)
}

// OzonExtractor runs the full pipeline for a single product URL
type OzonExtractor struct {
	adapter *adapters.OzonAdapter
	browser sessionProvider
	logger  types.Logger
}

// NewOzonExtractor creates a new Ozon extractor
func NewOzonExtractor(config *types.Config, logger types.Logger) *OzonExtractor {
	return &OzonExtractor{
		adapter: adapters.NewOzonAdapter(config, logger),
		browser: utils.NewBrowserClient(config, logger),
		logger:  logger,
	}
}

// Extract opens productURL in a fresh browser session and returns the product record.
// The session is closed before Extract returns, whatever the outcome.
func (e *OzonExtractor) Extract(ctx context.Context, productURL string) (*types.ProductRecord, error) {
	if err := validateURL(productURL); err != nil {
		return nil, err
	}

	config := e.adapter.Config()
	if config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}

	startTime := time.Now()
	session, err := e.browser.Acquire(ctx, !config.UseHeadlessBrowser)
	if err != nil {
		return nil, err
	}
	defer func() {
		session.Close()
		e.logger.Debug("Scraping finished.")
	}()

	page := session.Page()
	if err := e.adapter.LoadPage(ctx, page, productURL); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", productURL, err)
	}

	record, err := e.adapter.ExtractProductData(ctx, page, productURL)
	if err != nil {
		return nil, fmt.Errorf("failed to extract product data: %w", err)
	}

	e.logger.Infof("Extraction completed in %v: %d characteristics, %d images",
		time.Since(startTime), len(record.Characteristics), len(record.ImageURLs))
	return record, nil
}

// ExtractToJSON extracts productURL and saves the record to a JSON file
func (e *OzonExtractor) ExtractToJSON(ctx context.Context, productURL, filename string) error {
	record, err := e.Extract(ctx, productURL)
	if err != nil {
		return err
	}

	jsonData, err := MarshalRecord(record)
	if err != nil {
		return err
	}

	if err := writeToFile(filename, jsonData); err != nil {
		return fmt.Errorf("failed to write record to file: %w", err)
	}

	e.logger.Infof("Results saved to %s", filename)
	return nil
}

// MarshalRecord renders the record as indented JSON. URLs and non-ASCII text are
// written as-is rather than escaped.
func MarshalRecord(record *types.ProductRecord) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(record); err != nil {
		return nil, fmt.Errorf("failed to marshal record to JSON: %w", err)
	}
	return buf.Bytes(), nil
}

func validateURL(productURL string) error {
	parsed, err := url.Parse(productURL)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidURL, err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("%w: %q is not an absolute http(s) URL", types.ErrInvalidURL, productURL)
	}
	return nil
}

// writeToFile writes data to a file
func writeToFile(filename string, data []byte) error {
	return os.WriteFile(filename, data, 0644)
}
