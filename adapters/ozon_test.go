package adapters

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"ozon-extractor/internal/pagetest"
	"ozon-extractor/internal/types"
)

const productMarkup = `<html><head>
<script type="application/ld+json">{"@type":"Product","name":"Кружка","description":"Керамика\n\nОбъём 300 мл","offers":[{"price":"100","priceCurrency":"RUB"},{"price":"200","priceCurrency":"RUB"}]}</script>
</head><body></body></html>`

func TestOzonAdapter_GetStoreName(t *testing.T) {
	adapter, _ := newTestAdapter(t)

	assert.Equal(t, "ozon.ru", adapter.GetStoreName())
}

func TestLoadPage_Choreography(t *testing.T) {
	adapter, hook := newTestAdapter(t)
	selectors := adapter.Config().Selectors
	page := newTestPage(adapter.Config())
	page.Height = 1200
	page.Texts[selectors.Characteristics] = "Характеристики"

	err := adapter.LoadPage(context.Background(), page, "https://www.ozon.ru/product/1/")

	require.NoError(t, err)
	assert.Equal(t, []string{
		"navigate https://www.ozon.ru/product/1/",
		`key "\x1b"`,
		"scroll 0",
		"scroll 500",
		"scroll 1000",
		"scroll 1200",
		"wait " + selectors.Characteristics,
	}, page.Calls())
	assert.Empty(t, warnings(hook))
}

func TestLoadPage_SingleJumpScroll(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	adapter.Config().ScrollStep = 0
	page := newTestPage(adapter.Config())
	page.Height = 3000

	require.NoError(t, adapter.LoadPage(context.Background(), page, "https://www.ozon.ru/product/1/"))

	assert.Contains(t, page.Calls(), "scroll 3000")
	assert.NotContains(t, page.Calls(), "scroll 0")
}

func TestLoadPage_NavigationFailure(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	page := newTestPage(adapter.Config())
	page.NavigateErr = errors.New("net::ERR_NAME_NOT_RESOLVED")

	err := adapter.LoadPage(context.Background(), page, "https://www.ozon.ru/product/1/")

	assert.ErrorIs(t, err, types.ErrNavigation)
	assert.Equal(t, []string{"navigate https://www.ozon.ru/product/1/"}, page.Calls())
}

func TestLoadPage_MissingCharacteristicsIsNotFatal(t *testing.T) {
	adapter, hook := newTestAdapter(t)
	page := newTestPage(adapter.Config())
	page.KeyErr = errors.New("no focus")

	err := adapter.LoadPage(context.Background(), page, "https://www.ozon.ru/product/1/")

	assert.NoError(t, err)
	assert.Len(t, warnings(hook), 2)
}

func TestLoadPage_Cancelled(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	page := newTestPage(adapter.Config())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := adapter.LoadPage(ctx, page, "https://www.ozon.ru/product/1/")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractImages_GalleryThenDescriptionDeduplicated(t *testing.T) {
	adapter, hook := newTestAdapter(t)
	selectors := adapter.Config().Selectors
	page := newTestPage(adapter.Config())
	page.Variants = []pagetest.Variant{
		{Image: "https://cdn/a.jpg"},
		{Image: "https://cdn/b.jpg", Fail: true},
		{Image: "https://cdn/a.jpg"},
		{Image: "https://cdn/c.jpg"},
	}
	page.Attrs[selectors.DescriptionImages] = []string{"https://cdn/c.jpg", "https://cdn/d.jpg"}

	images := adapter.ExtractImages(context.Background(), page)

	assert.Equal(t, []string{"https://cdn/a.jpg", "https://cdn/c.jpg", "https://cdn/d.jpg"}, images)
	assert.Len(t, warnings(hook), 1)
}

func TestExtractImages_VariantsAreHoveredThenClickedInOrder(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	selectors := adapter.Config().Selectors
	page := newTestPage(adapter.Config())
	page.Variants = []pagetest.Variant{{Image: "https://cdn/a.jpg"}, {Image: "https://cdn/b.jpg"}}

	adapter.ExtractImages(context.Background(), page)

	assert.Equal(t, []string{
		"move 0", "click 0", "wait " + selectors.MainImage,
		"move 1", "click 1", "wait " + selectors.MainImage,
	}, page.Calls())
}

func TestExtractImages_NoVariantsDumpsPage(t *testing.T) {
	adapter, hook := newTestAdapter(t)
	config := adapter.Config()
	config.DebugDumpPath = filepath.Join(t.TempDir(), "debug.html")
	page := newTestPage(config)
	page.Markup = "<html>captcha</html>"

	images := adapter.ExtractImages(context.Background(), page)

	assert.NotNil(t, images)
	assert.Empty(t, images)
	assert.NotEmpty(t, warnings(hook))

	dumped, err := os.ReadFile(config.DebugDumpPath)
	require.NoError(t, err)
	assert.Equal(t, "<html>captcha</html>", string(dumped))
}

func TestExtractImages_DescriptionOnly(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	selectors := adapter.Config().Selectors
	page := newTestPage(adapter.Config())
	page.Attrs[selectors.DescriptionImages] = []string{"https://cdn/d.jpg", "https://cdn/d.jpg"}

	images := adapter.ExtractImages(context.Background(), page)

	assert.Equal(t, []string{"https://cdn/d.jpg"}, images)
}

func TestExtractCharacteristics_MissingSection(t *testing.T) {
	adapter, hook := newTestAdapter(t)
	page := newTestPage(adapter.Config())

	result := adapter.ExtractCharacteristics(context.Background(), page)

	assert.NotNil(t, result)
	assert.Empty(t, result)
	assert.Len(t, warnings(hook), 1)
}

func TestExtractProductData_FullPage(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	selectors := adapter.Config().Selectors
	page := newTestPage(adapter.Config())
	page.Markup = productMarkup
	page.Texts[selectors.Price] = " 100 ₽ "
	page.Texts[selectors.Characteristics] = "Характеристики\nДобавить к сравнению\nЦвет\nБелый\nОбъём\n300 мл"
	page.Variants = []pagetest.Variant{{Image: "https://cdn/1.jpg"}, {Image: "https://cdn/2.jpg"}}
	page.Attrs[selectors.DescriptionImages] = []string{"https://cdn/2.jpg", "https://cdn/3.jpg"}

	record, err := adapter.ExtractProductData(context.Background(), page, "https://www.ozon.ru/product/1/")

	require.NoError(t, err)
	assert.Equal(t, &types.ProductRecord{
		URL:           "https://www.ozon.ru/product/1/",
		Name:          "Кружка",
		Description:   "Керамика Объём 300 мл",
		Price:         "100",
		PriceCurrency: "RUB",
		PriceText:     "100 ₽",
		Characteristics: []types.Characteristic{
			{Name: "Цвет", Value: "Белый"},
			{Name: "Объём", Value: "300 мл"},
		},
		ImageURLs: []string{"https://cdn/1.jpg", "https://cdn/2.jpg", "https://cdn/3.jpg"},
	}, record)
}

func TestExtractProductData_NoPriceAnywhereFails(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	page := newTestPage(adapter.Config())
	page.Markup = "<html><body></body></html>"

	record, err := adapter.ExtractProductData(context.Background(), page, "https://www.ozon.ru/product/1/")

	assert.Nil(t, record)
	assert.ErrorIs(t, err, types.ErrPriceNotFound)
}

func TestExtractProductData_NoPriceAllowedWhenNotRequired(t *testing.T) {
	adapter, hook := newTestAdapter(t)
	adapter.Config().RequirePrice = false
	page := newTestPage(adapter.Config())
	page.Markup = "<html><body></body></html>"

	record, err := adapter.ExtractProductData(context.Background(), page, "https://www.ozon.ru/product/1/")

	require.NoError(t, err)
	assert.Empty(t, record.Price)
	assert.Equal(t, []string{}, record.ImageURLs)
	assert.NotEmpty(t, warnings(hook))
}

func TestExtractProductData_StructuredPriceCoversMissingElement(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	page := newTestPage(adapter.Config())
	page.Markup = productMarkup

	record, err := adapter.ExtractProductData(context.Background(), page, "https://www.ozon.ru/product/1/")

	require.NoError(t, err)
	assert.Equal(t, "100", record.Price)
	assert.Empty(t, record.PriceText)
}

func TestExtractProductData_NoStructuredBlock(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	selectors := adapter.Config().Selectors
	page := newTestPage(adapter.Config())
	page.Markup = "<html><body></body></html>"
	page.Texts[selectors.Price] = "999 ₽"

	record, err := adapter.ExtractProductData(context.Background(), page, "https://www.ozon.ru/product/1/")

	require.NoError(t, err)
	assert.Empty(t, record.Name)
	assert.Empty(t, record.Description)
	assert.Empty(t, record.Price)
	assert.Empty(t, record.PriceCurrency)
	assert.Equal(t, "999 ₽", record.PriceText)
}

func TestExtractProductData_RenderedDescriptionWithoutStructuredData(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	selectors := adapter.Config().Selectors
	page := newTestPage(adapter.Config())
	page.Markup = "<html><body></body></html>"
	page.Texts[selectors.Price] = "999 ₽"
	page.Texts[selectors.Description] = "Rendered description\n\nsecond para\n"

	record, err := adapter.ExtractProductData(context.Background(), page, "https://www.ozon.ru/product/1/")

	require.NoError(t, err)
	assert.Empty(t, record.Description)
	assert.Equal(t, "Rendered description second para", record.DescriptionText)
}

func TestExtractProductData_RenderedDescriptionKeptBesideStructured(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	selectors := adapter.Config().Selectors
	page := newTestPage(adapter.Config())
	page.Markup = productMarkup
	page.Texts[selectors.Description] = "Описание\n\nна странице"

	record, err := adapter.ExtractProductData(context.Background(), page, "https://www.ozon.ru/product/1/")

	require.NoError(t, err)
	assert.Equal(t, "Керамика Объём 300 мл", record.Description)
	assert.Equal(t, "Описание на странице", record.DescriptionText)
}

func TestExtractDescriptionText_MissingSection(t *testing.T) {
	adapter, hook := newTestAdapter(t)
	page := newTestPage(adapter.Config())

	text := adapter.ExtractDescriptionText(context.Background(), page)

	assert.Empty(t, text)
	assert.Empty(t, warnings(hook))
}
