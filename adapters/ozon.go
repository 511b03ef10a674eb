package adapters

import (
	"context"
	"fmt"
	"strings"

	"ozon-extractor/internal/types"
)

// OzonAdapter handles page loading and extraction for ozon.ru product pages
type OzonAdapter struct {
	*BaseAdapter
}

// NewOzonAdapter creates a new Ozon adapter
func NewOzonAdapter(config *types.Config, logger types.Logger) *OzonAdapter {
	return &OzonAdapter{
		BaseAdapter: NewBaseAdapter(config, logger),
	}
}

// GetStoreName returns the store name
func (o *OzonAdapter) GetStoreName() string {
	return "ozon.ru"
}

// LoadPage opens url and walks the page like a visitor would: wait, dismiss
// overlays, scroll to the bottom, then wait for the characteristics block.
// Only navigation failure and cancellation are errors; a missing
// characteristics block is logged and left to the extractors.
func (o *OzonAdapter) LoadPage(ctx context.Context, page types.Page, url string) error {
	o.logger.Infof("Scraping page: %s", url)

	if err := page.Navigate(ctx, url); err != nil {
		return fmt.Errorf("%w: %v", types.ErrNavigation, err)
	}

	o.logger.Debug("Page loaded. Waiting...")
	if err := o.Pause(ctx, o.config.SettleDelay); err != nil {
		return err
	}

	o.logger.Debug("Attempting to dismiss overlays...")
	if err := page.PressKey(ctx, o.config.DismissKey); err != nil {
		o.logger.Warnf("Could not send dismiss key: %v", err)
	}
	if err := o.Pause(ctx, o.config.DismissDelay); err != nil {
		return err
	}

	o.logger.Debug("Scrolling page to load all elements...")
	if err := o.scrollToBottom(ctx, page); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		o.logger.Warnf("Scrolling stopped early: %v", err)
	}
	if err := o.Pause(ctx, o.config.PostScrollDelay); err != nil {
		return err
	}

	if err := page.WaitFor(ctx, o.config.Selectors.Characteristics, o.config.ReadyTimeout); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		o.logger.Warnf("Characteristics section did not appear within %v: %v", o.config.ReadyTimeout, err)
	}

	return nil
}

// scrollToBottom scrolls in fixed steps with short pauses, or jumps straight
// to the bottom when ScrollStep is zero
func (o *OzonAdapter) scrollToBottom(ctx context.Context, page types.Page) error {
	height, err := page.ScrollHeight(ctx)
	if err != nil {
		return err
	}

	step := o.config.ScrollStep
	if step > 0 {
		for y := 0; y < height; y += step {
			if err := page.ScrollTo(ctx, y); err != nil {
				return err
			}
			if err := o.Pause(ctx, o.config.ScrollStepDelay); err != nil {
				return err
			}
		}
	}

	return page.ScrollTo(ctx, height)
}

// ExtractProductData reads every field from an already loaded page and merges them.
// It fails only when no price can be found at all and RequirePrice is set.
func (o *OzonAdapter) ExtractProductData(ctx context.Context, page types.Page, url string) (*types.ProductRecord, error) {
	o.logger.Debug("Scraping data...")

	priceText, priceErr := o.extractPriceText(ctx, page)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	structured := o.extractStructured(ctx, page)

	if priceText == "" && structured.Price == "" {
		if o.config.RequirePrice {
			return nil, fmt.Errorf("%w: %v", types.ErrPriceNotFound, priceErr)
		}
		o.logger.Warnf("No price found on page: %v", priceErr)
	} else if priceErr != nil {
		o.logger.Warnf("Price element not found, using structured data price: %v", priceErr)
	}

	descriptionText := o.ExtractDescriptionText(ctx, page)
	characteristics := o.ExtractCharacteristics(ctx, page)
	imageURLs := o.ExtractImages(ctx, page)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	return MergeRecord(url, structured, priceText, descriptionText, characteristics, imageURLs), nil
}

// ExtractDescriptionText reads the rendered description section.
// Many listings have no description, so its absence is not worth a warning.
func (o *OzonAdapter) ExtractDescriptionText(ctx context.Context, page types.Page) string {
	text, err := page.Text(ctx, o.config.Selectors.Description)
	if err != nil {
		o.logger.Debugf("No rendered description: %v", err)
		return ""
	}
	return NormalizeDescription(text)
}

func (o *OzonAdapter) extractPriceText(ctx context.Context, page types.Page) (string, error) {
	selector := o.config.Selectors.Price
	if err := page.WaitFor(ctx, selector, o.config.PriceTimeout); err != nil {
		return "", err
	}

	text, err := page.Text(ctx, selector)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// extractStructured snapshots the rendered markup and reads its JSON-LD block
func (o *OzonAdapter) extractStructured(ctx context.Context, page types.Page) types.StructuredData {
	html, err := page.HTML(ctx)
	if err != nil {
		o.logger.Warnf("Could not read page markup: %v", err)
		return types.StructuredData{}
	}

	doc, err := o.ParseHTML(html)
	if err != nil {
		o.logger.Warnf("Could not parse page markup: %v", err)
		return types.StructuredData{}
	}

	return o.ExtractStructuredData(doc)
}

// ExtractCharacteristics parses the rendered characteristics block; a missing block yields none
func (o *OzonAdapter) ExtractCharacteristics(ctx context.Context, page types.Page) []types.Characteristic {
	text, err := page.Text(ctx, o.config.Selectors.Characteristics)
	if err != nil {
		o.logger.Warnf("Could not read characteristics: %v", err)
		return []types.Characteristic{}
	}

	characteristics := ParseCharacteristics(text, o.config.Selectors.CompareMarker, o.logger)
	o.logger.Debugf("Parsed %d characteristics", len(characteristics))
	return characteristics
}

// ExtractImages clicks through every gallery variant, reading the main image
// after each click, then appends the description images. Variants are
// handled strictly in order because each click changes the displayed image.
func (o *OzonAdapter) ExtractImages(ctx context.Context, page types.Page) []string {
	selectors := o.config.Selectors
	var imageURLs []string

	count, err := page.Count(ctx, selectors.Variant)
	if err != nil {
		o.logger.Warnf("Could not list product variants: %v", err)
		count = 0
	}

	if count == 0 {
		o.logger.Warn("No product variants found, the gallery may not have rendered")
		o.DumpHTML(ctx, page)
	} else {
		o.logger.Infof("Found %d product variants. Scraping gallery images...", count)
	}

	for i := 0; i < count; i++ {
		if ctx.Err() != nil {
			break
		}

		src, err := o.readVariantImage(ctx, page, i)
		if err != nil {
			o.logger.Warnf("Error processing gallery variant %d: %v", i+1, err)
			continue
		}
		if src != "" {
			imageURLs = append(imageURLs, src)
		}
	}

	descriptionImages, err := page.Attributes(ctx, selectors.DescriptionImages, "src")
	if err != nil {
		o.logger.Warnf("Could not read description images: %v", err)
	} else if len(descriptionImages) > 0 {
		o.logger.Debugf("Found %d images in description", len(descriptionImages))
		imageURLs = append(imageURLs, descriptionImages...)
	}

	return o.RemoveDuplicateURLs(imageURLs)
}

func (o *OzonAdapter) readVariantImage(ctx context.Context, page types.Page, index int) (string, error) {
	selectors := o.config.Selectors

	if err := page.MoveTo(ctx, selectors.Variant, index); err != nil {
		return "", err
	}
	if err := o.Pause(ctx, o.config.HoverDelay); err != nil {
		return "", err
	}
	if err := page.Click(ctx, selectors.Variant, index); err != nil {
		return "", err
	}
	if err := o.Pause(ctx, o.config.RenderDelay); err != nil {
		return "", err
	}

	if err := page.WaitFor(ctx, selectors.MainImage, o.config.ImageTimeout); err != nil {
		return "", err
	}
	return page.Attribute(ctx, selectors.MainImageElement, "src")
}
