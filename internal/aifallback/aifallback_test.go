package aifallback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menuforge/extractor-core/pkg/menu"
)

func TestParseTextClassifiesHeadingAndItems(t *testing.T) {
	text := "PIZZA\nMargherita - mozzarella, basil $12.99\nPepperoni $13.99\n"
	blocks := ParseText(text, Config{CategoryFallbackLabel: "Uncategorized"})

	require.Len(t, blocks, 3)
	assert.True(t, blocks[0].IsHeading)
	assert.Equal(t, menu.LineMenuItem, blocks[1].Grammar.LineType)
	require.Len(t, blocks[1].Variants, 1)
	assert.Equal(t, 1299, blocks[1].Variants[0].PriceCents)
}

func TestParseTextAppliesSizeGridToFollowingItems(t *testing.T) {
	text := "PIZZA\nSmall Medium Large\nCheese Pizza 8.99 11.99 14.99\n"
	blocks := ParseText(text, Config{})

	require.Len(t, blocks, 3)
	item := blocks[2]
	require.Len(t, item.Variants, 3)
	assert.Equal(t, 899, item.Variants[0].PriceCents)
	assert.Equal(t, 1499, item.Variants[2].PriceCents)
}

func TestParseTextAssignsCategoriesToItems(t *testing.T) {
	text := "Margherita Pizza $12.99\n"
	blocks := ParseText(text, Config{})
	require.Len(t, blocks, 1)
	assert.NotEmpty(t, blocks[0].Category)
}
