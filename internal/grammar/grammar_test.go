package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menuforge/extractor-core/pkg/menu"
)

func TestParseLineDimensionFastPath(t *testing.T) {
	item := ParseLine(`17x26"`)
	assert.Equal(t, menu.LineInfoLine, item.LineType)
}

func TestParseLineKnownHeading(t *testing.T) {
	item := ParseLine("APPETIZERS")
	assert.Equal(t, menu.LineHeading, item.LineType)
}

func TestParseLinePriceOnly(t *testing.T) {
	item := ParseLine("..... $12.99")
	require.Equal(t, menu.LinePriceOnly, item.LineType)
	require.Len(t, item.PriceMentions, 1)
	assert.InDelta(t, 12.99, item.PriceMentions[0].Amount, 0.001)
}

func TestParseLineSizeHeader(t *testing.T) {
	item := ParseLine(`10" Mini  12" Sml  16" Lrg`)
	assert.Equal(t, menu.LineSizeHeader, item.LineType)
}

func TestParseLineMenuItemWithDashDescription(t *testing.T) {
	item := ParseLine("Meat Lovers - pepperoni, sausage, bacon $14.99")
	assert.Equal(t, "Meat Lovers", item.ItemName)
	assert.Contains(t, item.Description, "pepperoni")
	require.Len(t, item.PriceMentions, 1)
	require.NotNil(t, item.Components)
	assert.Contains(t, item.Components.Toppings, "pepperoni")
}

func TestParseLineCapsNameRescue(t *testing.T) {
	item := ParseLine("MEAT LOVERS Pepperoni, Sausage, Bacon $14.99")
	assert.Equal(t, "MEAT LOVERS", item.ItemName)
	assert.Contains(t, item.Description, "Pepperoni")
}

func TestParseLineOCRTypoNormalization(t *testing.T) {
	item := ParseLine("88Q Chicken Pizza $13.99")
	assert.Contains(t, item.ItemName, "BBQ")
}

func TestParseLineWSlashComboModifier(t *testing.T) {
	item := ParseLine("Burger W/ Fries $9.99")
	assert.Contains(t, item.ItemName+item.Description, "with Fries")
}

func TestClassifyLinesReclassifiesUnknownHeadingRun(t *testing.T) {
	lines := []string{
		"MELTS",
		"TUNA MELT",
		"TURKEY MELT",
		"HAM MELT",
		"SALADS",
	}
	items := ClassifyLines(lines)
	// "MELTS" is not in the curated heading vocabulary, so it joins the
	// run of unknown all-caps headings that "SALADS" ends; the three melt
	// names checked here are rescued to menu_item.
	assert.Equal(t, menu.LineMenuItem, items[1].LineType)
	assert.Equal(t, menu.LineMenuItem, items[2].LineType)
	assert.Equal(t, menu.LineMenuItem, items[3].LineType)
}

func TestStripOCRGarbleRemovesDotLeaderNoise(t *testing.T) {
	cleaned := stripOCRGarble("Margherita ssssvvssseecsscssssssssescstvsesneneeosees $12.99")
	assert.Contains(t, cleaned, "Margherita")
	assert.Contains(t, cleaned, "$12.99")
	assert.NotContains(t, cleaned, "ssssvvssseecsscssssssssescstvsesneneeosees")
}

func TestExtractSizeMentionsFindsWordsAndNumeric(t *testing.T) {
	mentions := extractSizeMentions(`Small 10" pizza`)
	assert.Contains(t, mentions, "Small")
}
