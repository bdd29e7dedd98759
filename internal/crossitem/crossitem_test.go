package crossitem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menuforge/extractor-core/internal/category"
	"github.com/menuforge/extractor-core/pkg/menu"
)

func cents(v int) *int { return &v }

func itemBlock(name string, priceCents int, cat string) *menu.TextBlock {
	return &menu.TextBlock{
		Grammar:  &menu.ParsedMenuItem{ItemName: name},
		Category: cat,
		PriceCandidates: []menu.PriceCandidate{
			{PriceCents: cents(priceCents)},
		},
	}
}

func TestRatioMatchesIdenticalStrings(t *testing.T) {
	assert.Equal(t, 1.0, ratio("pepperoni pizza", "pepperoni pizza"))
}

func TestRatioDetectsCloseMatch(t *testing.T) {
	r := ratio("pepperoni pizza", "peperoni pizza")
	assert.GreaterOrEqual(t, r, 0.9)
}

func TestNormalizeNameStripsLeadingPhraseAndPunctuation(t *testing.T) {
	assert.Equal(t, "garden salad", normalizeName("Our Garden Salad."))
}

func TestCheckDuplicateNamesFlagsExactCollisionDifferentPrice(t *testing.T) {
	blocks := []*menu.TextBlock{
		itemBlock("Garden Salad", 599, category.Salads),
		itemBlock("Garden Salad", 699, category.Salads),
	}
	checkDuplicateNames(blocks)

	require.Len(t, blocks[0].PriceFlags, 1)
	assert.Equal(t, menu.ReasonCrossItemDuplicateName, blocks[0].PriceFlags[0].Reason)
	assert.Equal(t, menu.SeverityWarn, blocks[0].PriceFlags[0].Severity)
}

func TestCheckDuplicateNamesFlagsExactCollisionSamePriceAsInfo(t *testing.T) {
	blocks := []*menu.TextBlock{
		itemBlock("Garden Salad", 599, category.Salads),
		itemBlock("Garden Salad", 599, category.Salads),
	}
	checkDuplicateNames(blocks)

	require.Len(t, blocks[0].PriceFlags, 1)
	assert.Equal(t, menu.ReasonCrossItemExactDuplicate, blocks[0].PriceFlags[0].Reason)
	assert.Equal(t, menu.SeverityInfo, blocks[0].PriceFlags[0].Severity)
}

func TestCheckDuplicateNamesIgnoresDissimilarNames(t *testing.T) {
	blocks := []*menu.TextBlock{
		itemBlock("Garden Salad", 599, category.Salads),
		itemBlock("Buffalo Wings", 899, category.Wings),
	}
	checkDuplicateNames(blocks)
	assert.Empty(t, blocks[0].PriceFlags)
	assert.Empty(t, blocks[1].PriceFlags)
}

func TestCheckCategoryPriceOutliersFlagsFarItem(t *testing.T) {
	blocks := []*menu.TextBlock{
		itemBlock("A", 899, category.Pizza),
		itemBlock("B", 949, category.Pizza),
		itemBlock("C", 925, category.Pizza),
		itemBlock("D", 9900, category.Pizza),
	}
	checkCategoryPriceOutliers(blocks)
	assert.Empty(t, blocks[0].PriceFlags)
	require.Len(t, blocks[3].PriceFlags, 1)
	assert.Equal(t, menu.ReasonCrossItemCategoryPriceOutlier, blocks[3].PriceFlags[0].Reason)
}

func TestCheckCategoryIsolationFlagsLoneCategory(t *testing.T) {
	blocks := []*menu.TextBlock{
		itemBlock("A", 899, category.Pizza),
		itemBlock("B", 949, category.Pizza),
		itemBlock("C", 599, category.Salads),
		itemBlock("D", 899, category.Pizza),
		itemBlock("E", 949, category.Pizza),
	}
	checkCategoryIsolation(blocks)
	require.Len(t, blocks[2].PriceFlags, 1)
	assert.Equal(t, menu.ReasonCrossItemCategoryIsolated, blocks[2].PriceFlags[0].Reason)
	assert.Empty(t, blocks[0].PriceFlags)
}

func TestCheckVariantCountConsistencyFlagsLowOutlier(t *testing.T) {
	mk := func(n int) *menu.TextBlock {
		b := itemBlock("item", 899, category.Pizza)
		for i := 0; i < n; i++ {
			b.Variants = append(b.Variants, menu.OCRVariant{Label: "size", PriceCents: 899 + i*100})
		}
		return b
	}
	blocks := []*menu.TextBlock{mk(4), mk(4), mk(4), mk(2)}
	checkVariantCountConsistency(blocks)
	assert.Empty(t, blocks[0].PriceFlags)
	require.Len(t, blocks[3].PriceFlags, 1)
	assert.Equal(t, menu.ReasonCrossItemVariantCountOutlier, blocks[3].PriceFlags[0].Reason)
}
