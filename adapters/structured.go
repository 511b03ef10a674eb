package adapters

import (
	"encoding/json"
	"strconv"
	"strings"

	"ozon-extractor/internal/types"

	"github.com/PuerkitoBio/goquery"
)

// ExtractStructuredData reads name, description and the first offer's price
// from the page's JSON-LD Product block. A page without one yields empty fields.
func (b *BaseAdapter) ExtractStructuredData(doc *goquery.Document) types.StructuredData {
	var data types.StructuredData

	product := b.findProduct(doc)
	if product == nil {
		b.logger.Warn("No structured product data found on page")
		return data
	}

	data.Name = scalarString(product["name"])
	data.Description = NormalizeDescription(scalarString(product["description"]))

	if offer := firstOffer(product["offers"]); offer != nil {
		data.Price = scalarString(offer["price"])
		data.PriceCurrency = scalarString(offer["priceCurrency"])
	} else {
		b.logger.Debug("Structured data has no usable offers")
	}

	b.logger.Debugf("Structured data: name=%q price=%q %s", data.Name, data.Price, data.PriceCurrency)
	return data
}

// findProduct returns the first Product node across all structured data blocks
func (b *BaseAdapter) findProduct(doc *goquery.Document) map[string]interface{} {
	var product map[string]interface{}

	doc.Find(b.config.Selectors.StructuredData).EachWithBreak(func(i int, s *goquery.Selection) bool {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return true
		}

		// UseNumber keeps numeric prices exactly as written
		decoder := json.NewDecoder(strings.NewReader(raw))
		decoder.UseNumber()

		var block interface{}
		if err := decoder.Decode(&block); err != nil {
			b.logger.Warnf("Skipping malformed structured data block %d: %v", i, err)
			return true
		}

		product = findProductNode(block)
		return product == nil
	})

	return product
}

// findProductNode walks objects, arrays and @graph containers
func findProductNode(node interface{}) map[string]interface{} {
	switch v := node.(type) {
	case []interface{}:
		for _, item := range v {
			if product := findProductNode(item); product != nil {
				return product
			}
		}
	case map[string]interface{}:
		if isProductType(v["@type"]) {
			return v
		}
		if graph, ok := v["@graph"]; ok {
			return findProductNode(graph)
		}
	}
	return nil
}

func isProductType(t interface{}) bool {
	switch v := t.(type) {
	case string:
		return strings.EqualFold(v, "Product") || strings.HasSuffix(v, "/Product")
	case []interface{}:
		for _, item := range v {
			if isProductType(item) {
				return true
			}
		}
	}
	return false
}

// firstOffer accepts a single offer object or a list of them; only the first is used
func firstOffer(offers interface{}) map[string]interface{} {
	switch v := offers.(type) {
	case []interface{}:
		if len(v) == 0 {
			return nil
		}
		offer, _ := v[0].(map[string]interface{})
		return offer
	case map[string]interface{}:
		return v
	}
	return nil
}

func scalarString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

// NormalizeDescription flattens blank-line paragraph breaks: every "\n\n" becomes a single space
func NormalizeDescription(description string) string {
	description = strings.ReplaceAll(description, "\r\n", "\n")
	description = strings.ReplaceAll(description, "\n\n", " ")
	return strings.TrimSpace(description)
}
