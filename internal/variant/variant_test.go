package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menuforge/extractor-core/pkg/menu"
)

func TestParseSizeGridExtractsOrderedColumns(t *testing.T) {
	grid := ParseSizeGrid(`Small Medium Large`, 0)
	require.Len(t, grid.Columns, 3)
	assert.Equal(t, "Small", grid.Columns[0].RawLabel)
	assert.Equal(t, "Medium", grid.Columns[1].RawLabel)
	assert.Equal(t, "Large", grid.Columns[2].RawLabel)
}

func TestMapGridToVariantsOneToOne(t *testing.T) {
	grid := ParseSizeGrid(`Small Medium Large`, 0)
	prices := []menu.PriceMention{{Amount: 8.99}, {Amount: 11.99}, {Amount: 14.99}}

	variants, ok := MapGridToVariants(grid, prices)
	require.True(t, ok)
	require.Len(t, variants, 3)
	for _, v := range variants {
		assert.InDelta(t, 0.85, v.Confidence, 0.0001)
	}
	assert.Equal(t, 899, variants[0].PriceCents)
	assert.Equal(t, 1499, variants[2].PriceCents)
}

func TestMapGridToVariantsRightAlignsWhenFewerPricesThanColumns(t *testing.T) {
	grid := ParseSizeGrid(`Small Medium Large X-Large`, 0)
	prices := []menu.PriceMention{{Amount: 11.99}, {Amount: 14.99}}

	variants, ok := MapGridToVariants(grid, prices)
	require.True(t, ok)
	require.Len(t, variants, 2)
	assert.Equal(t, "Large", variants[0].Label)
	assert.Equal(t, "X-Large", variants[1].Label)
	for _, v := range variants {
		assert.InDelta(t, 0.75, v.Confidence, 0.0001)
	}
}

func TestMapGridToVariantsDoesNotApplyWhenMorePricesThanColumns(t *testing.T) {
	grid := ParseSizeGrid(`Small Large`, 0)
	prices := []menu.PriceMention{{Amount: 8.99}, {Amount: 11.99}, {Amount: 14.99}}

	_, ok := MapGridToVariants(grid, prices)
	assert.False(t, ok)
}

func TestEnrichVariantClassifiesSize(t *testing.T) {
	v := menu.OCRVariant{Label: `14"`}
	EnrichVariant(&v)
	assert.Equal(t, menu.KindSize, v.Kind)
	assert.NotEmpty(t, v.NormalizedSize)
}

func TestEnrichVariantClassifiesComboFromWSlashPrefix(t *testing.T) {
	v := menu.OCRVariant{Label: "w/ Fries"}
	EnrichVariant(&v)
	assert.Equal(t, menu.KindCombo, v.Kind)
	assert.Contains(t, v.GroupKey, "combo:")
}

func TestValidatePriceOrderingFlagsInversion(t *testing.T) {
	block := &menu.TextBlock{
		Variants: []menu.OCRVariant{
			{Label: "Small", PriceCents: 1099, Kind: menu.KindSize, NormalizedSize: "S"},
			{Label: "Large", PriceCents: 899, Kind: menu.KindSize, NormalizedSize: "L"},
		},
	}
	ValidatePriceOrdering(block)

	require.Len(t, block.PriceFlags, 1)
	assert.Equal(t, menu.ReasonVariantPriceInversion, block.PriceFlags[0].Reason)
	assert.Equal(t, menu.SeverityWarn, block.PriceFlags[0].Severity)
}

func TestValidatePriceOrderingAllowsMonotonicSequence(t *testing.T) {
	block := &menu.TextBlock{
		Variants: []menu.OCRVariant{
			{Label: "Small", PriceCents: 899, Kind: menu.KindSize, NormalizedSize: "small"},
			{Label: "Large", PriceCents: 1199, Kind: menu.KindSize, NormalizedSize: "large"},
		},
	}
	ValidatePriceOrdering(block)
	assert.Empty(t, block.PriceFlags)
}

func TestCheckConsistencyFlagsDuplicateGroupKeyAndZeroPrice(t *testing.T) {
	block := &menu.TextBlock{
		Variants: []menu.OCRVariant{
			{Label: "Small", PriceCents: 899, Kind: menu.KindSize, NormalizedSize: "small", GroupKey: "size:small"},
			{Label: "Small", PriceCents: 0, Kind: menu.KindSize, NormalizedSize: "small", GroupKey: "size:small"},
		},
	}
	CheckConsistency(block)

	var reasons []menu.Reason
	for _, f := range block.PriceFlags {
		reasons = append(reasons, f.Reason)
	}
	assert.Contains(t, reasons, menu.ReasonDuplicateGroupKey)
	assert.Contains(t, reasons, menu.ReasonZeroPriceVariant)
}

func TestClassifyPriceRoleDetectsSideHint(t *testing.T) {
	block := &menu.TextBlock{MergedText: "Add Extra Cheese $1.50"}
	ClassifyPriceRole(block)
	assert.Equal(t, menu.PriceRoleSide, block.PriceRole)
	require.Len(t, block.PriceFlags, 1)
	assert.Equal(t, menu.ReasonSidePriceCandidate, block.PriceFlags[0].Reason)
}

func TestClassifyPriceRoleDetectsCouponHint(t *testing.T) {
	block := &menu.TextBlock{MergedText: "Family Special: 2 Large Pizzas for $19.99"}
	ClassifyPriceRole(block)
	assert.Equal(t, menu.PriceRoleCoupon, block.PriceRole)
}

func TestClassifyPriceRoleDefaultsToPrimary(t *testing.T) {
	block := &menu.TextBlock{MergedText: "Margherita Pizza"}
	ClassifyPriceRole(block)
	assert.Equal(t, menu.PriceRolePrimary, block.PriceRole)
	assert.Empty(t, block.PriceFlags)
}

func TestSuggestDecimalCorrectionAcceptsCloserCandidate(t *testing.T) {
	// 109900 cents ($1099) next to a $10.99 median is a 100x typo.
	corrected, divisor, ok := SuggestDecimalCorrection(109900, 1099)
	require.True(t, ok)
	assert.Equal(t, 100, divisor)
	assert.Equal(t, 1099, corrected)
}

func TestSuggestDecimalCorrectionRejectsWhenNotCloserEnough(t *testing.T) {
	_, _, ok := SuggestDecimalCorrection(1150, 1099)
	assert.False(t, ok)
}

func TestCheckAndFixPriceAppliesAutoFix(t *testing.T) {
	block := &menu.TextBlock{}
	CheckAndFixPrice(block, 109900, 1099, 100)

	require.Len(t, block.PriceFlags, 1)
	assert.Equal(t, menu.ReasonDecimalShiftCorrected, block.PriceFlags[0].Reason)
	assert.Equal(t, menu.SeverityAutoFix, block.PriceFlags[0].Severity)
	require.NotNil(t, block.CorrectedPriceCents)
	assert.Equal(t, 1099, *block.CorrectedPriceCents)
}

func TestCheckAndFixPriceFallsBackToOutlierFlagWhenUncorrectable(t *testing.T) {
	block := &menu.TextBlock{}
	// 9999999 has no divisor candidate landing near the median.
	CheckAndFixPrice(block, 9999999, 1099, 100)

	require.Len(t, block.PriceFlags, 1)
	assert.Equal(t, menu.ReasonPriceOutlier, block.PriceFlags[0].Reason)
	assert.Equal(t, menu.SeverityWarn, block.PriceFlags[0].Severity)
}

func TestScoreBaseConfidenceAppliesKindBaseAndBonuses(t *testing.T) {
	v := menu.OCRVariant{Label: `12"`, Kind: menu.KindSize}
	ScoreBaseConfidence(&v, ScoringContext{FromSizeGrid: true, GrammarConfident: true})
	assert.InDelta(t, 1.0, v.Confidence, 0.0001)
	assert.Equal(t, 0.90, v.ConfidenceDetails["kind_base"])
}

func TestBackwardTokenWalkSkipsConnectors(t *testing.T) {
	tokens := []string{"Buffalo", "Wings", "w/", "Ranch", "8.99"}
	label := BackwardTokenWalk(tokens, 4)
	assert.Equal(t, "Ranch", label)
}
