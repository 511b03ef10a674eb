package adapters

import "ozon-extractor/internal/types"

// MergeRecord assembles the extractor outputs into one record.
// Every field comes from exactly one source; sequences are never nil.
func MergeRecord(url string, structured types.StructuredData, priceText, descriptionText string, characteristics []types.Characteristic, imageURLs []string) *types.ProductRecord {
	if characteristics == nil {
		characteristics = []types.Characteristic{}
	}
	if imageURLs == nil {
		imageURLs = []string{}
	}

	return &types.ProductRecord{
		URL:             url,
		Name:            structured.Name,
		Description:     structured.Description,
		Price:           structured.Price,
		PriceCurrency:   structured.PriceCurrency,
		PriceText:       priceText,
		DescriptionText: descriptionText,
		Characteristics: characteristics,
		ImageURLs:       imageURLs,
	}
}
