package pipeline

import (
	"context"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menuforge/extractor-core/internal/config"
	"github.com/menuforge/extractor-core/internal/observability"
	"github.com/menuforge/extractor-core/internal/ocrtext"
	"github.com/menuforge/extractor-core/internal/rasterize"
	"github.com/menuforge/extractor-core/pkg/menu"
)

// fakeEngine returns a fixed token table regardless of rotation/PSM, so
// every probe and fusion pass in the test agrees and rotation 0 wins on
// the tie-break rule.
type fakeEngine struct {
	table ocrtext.TokenTable
}

func (f fakeEngine) Recognize(ctx context.Context, img image.Image, psm int) (ocrtext.TokenTable, error) {
	return f.table, nil
}

func (f fakeEngine) EffectiveConfig() string { return "fake --psm" }

type fakeRasteriser struct {
	pages []rasterize.Page
}

func (f fakeRasteriser) Rasterize(ctx context.Context, path string) ([]rasterize.Page, error) {
	return f.pages, nil
}

func pizzaMenuTable() ocrtext.TokenTable {
	// One heading line, then "Margherita Pizza 12.99" as three words at
	// y=40, then "Pepperoni Pizza 13.99" at y=70 -- three lines, 10px
	// apart, which block grouping joins into a single block.
	return ocrtext.TokenTable{
		Text:   []string{"PIZZA", "Margherita", "Pizza", "12.99", "Pepperoni", "Pizza", "13.99"},
		Conf:   []float64{92, 90, 90, 88, 90, 90, 88},
		Left:   []int{10, 10, 110, 210, 10, 110, 210},
		Top:    []int{10, 40, 40, 40, 70, 70, 70},
		Width:  []int{60, 90, 50, 50, 90, 50, 50},
		Height: []int{20, 20, 20, 20, 20, 20, 20},
	}
}

func newTestPipeline() *Pipeline {
	engine := fakeEngine{table: pizzaMenuTable()}
	raster := fakeRasteriser{pages: []rasterize.Page{
		{PageNumber: 0, Image: image.NewGray(image.Rect(0, 0, 400, 200))},
	}}
	return New(config.DefaultConfig(), observability.Nop(), engine, raster)
}

func TestRunProducesSectionsAndItems(t *testing.T) {
	p := newTestPipeline()
	payload, err := p.Run(context.Background(), "job-1", "menu.pdf")
	require.NoError(t, err)
	require.NotEmpty(t, payload.Sections)

	var allItems []menu.StructuredItem
	for _, s := range payload.Sections {
		allItems = append(allItems, s.Items...)
	}
	require.NotEmpty(t, allItems)

	// Item positions must be unique and increasing in document order.
	for i := 1; i < len(allItems); i++ {
		assert.Less(t, allItems[i-1].ItemPosition, allItems[i].ItemPosition)
	}
}

func TestRunReturnsInputErrorOnZeroPages(t *testing.T) {
	engine := fakeEngine{table: pizzaMenuTable()}
	raster := fakeRasteriser{pages: nil}
	p := New(config.DefaultConfig(), observability.Nop(), engine, raster)

	_, err := p.Run(context.Background(), "job-2", "empty.pdf")
	require.Error(t, err)
}

func TestSlugifyNormalizesHeading(t *testing.T) {
	assert.Equal(t, "specialty-pizzas", slugify("Specialty Pizzas!"))
	assert.Equal(t, "section", slugify("***"))
}

func TestClassifyBlockRoleDetectsHeadingAndPrice(t *testing.T) {
	heading := &menu.TextBlock{MergedText: "PIZZA"}
	assert.Equal(t, menu.RoleHeading, classifyBlockRole(heading, ""))

	price := &menu.TextBlock{MergedText: "$12.99"}
	assert.Equal(t, menu.RolePrice, classifyBlockRole(price, ""))

	desc := &menu.TextBlock{MergedText: "topped with fresh mozzarella and basil"}
	assert.Equal(t, menu.RoleDescription, classifyBlockRole(desc, ""))
}

func TestRebuildMultilineTextGluesHyphenBreaks(t *testing.T) {
	got := rebuildMultilineText([]string{"- CHICK-", "EN parm"})
	assert.Equal(t, "CHICKEN parm", got)
}
