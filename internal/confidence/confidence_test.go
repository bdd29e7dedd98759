package confidence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menuforge/extractor-core/internal/category"
	"github.com/menuforge/extractor-core/pkg/menu"
)

func TestScoreCleanItemIsHighConfidence(t *testing.T) {
	price := 1299
	b := &menu.TextBlock{
		Grammar:            &menu.ParsedMenuItem{ItemName: "Margherita Pizza", LineType: menu.LineMenuItem},
		Category:           category.Pizza,
		CategoryConfidence: 85,
		PriceCandidates:    []menu.PriceCandidate{{PriceCents: &price}},
	}
	score := Score(b)
	assert.GreaterOrEqual(t, score, 60)
	assert.LessOrEqual(t, score, 100)
}

func TestScorePenalizesActivePriceFlags(t *testing.T) {
	price := 1299
	clean := &menu.TextBlock{
		Grammar:            &menu.ParsedMenuItem{ItemName: "Margherita Pizza", LineType: menu.LineMenuItem},
		Category:           category.Pizza,
		CategoryConfidence: 85,
		PriceCandidates:    []menu.PriceCandidate{{PriceCents: &price}},
	}
	flagged := &menu.TextBlock{
		Grammar:            &menu.ParsedMenuItem{ItemName: "Margherita Pizza", LineType: menu.LineMenuItem},
		Category:           category.Pizza,
		CategoryConfidence: 85,
		PriceCandidates:    []menu.PriceCandidate{{PriceCents: &price}},
		PriceFlags: []menu.PriceFlag{
			{Severity: menu.SeverityWarn, Reason: menu.ReasonPriceOutlier},
		},
	}

	cleanScore := Score(clean)
	flaggedScore := Score(flagged)
	assert.Less(t, flaggedScore, cleanScore)
}

func TestScoreHandlesMissingPriceAndNoVariants(t *testing.T) {
	b := &menu.TextBlock{
		Grammar:            &menu.ParsedMenuItem{ItemName: "Mystery Item", LineType: menu.LineDescriptionOnly},
		Category:           "",
		CategoryConfidence: 0,
	}
	score := Score(b)
	require.GreaterOrEqual(t, score, 0)
	assert.Less(t, score, 60)
}

func TestScoreFactorsInVariantConfidence(t *testing.T) {
	price := 1299
	withVariants := &menu.TextBlock{
		Grammar:            &menu.ParsedMenuItem{ItemName: "Margherita Pizza", LineType: menu.LineMenuItem},
		Category:           category.Pizza,
		CategoryConfidence: 85,
		PriceCandidates:    []menu.PriceCandidate{{PriceCents: &price}},
		Variants: []menu.OCRVariant{
			{Label: "Small", PriceCents: 899, Confidence: 0.90},
			{Label: "Large", PriceCents: 1299, Confidence: 0.90},
		},
	}
	score := Score(withVariants)
	assert.GreaterOrEqual(t, score, 67)
	require.NotNil(t, withVariants.SemanticConfidenceDetails["variant_score"])
}
