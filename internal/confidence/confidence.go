// Package confidence aggregates an enriched text block's per-field
// signals into a single 0-100 semantic confidence score: a weighted blend
// of name clarity, category confidence, mean variant confidence, and
// price sanity, minus a penalty for every active price flag scaled by its
// severity.
package confidence

import (
	"strings"

	"github.com/menuforge/extractor-core/internal/category"
	"github.com/menuforge/extractor-core/pkg/menu"
)

// lineTypeClarity assigns a base clarity score per grammar line type: a
// clean menu_item line is the clearest signal a block really is an item;
// price_only and unknown lines carry almost no name signal.
var lineTypeClarity = map[menu.LineType]float64{
	menu.LineMenuItem:        1.0,
	menu.LineToppingList:     0.6,
	menu.LineInfoLine:        0.5,
	menu.LineModifierLine:    0.5,
	menu.LineDescriptionOnly: 0.55,
	menu.LineMultiColumn:     0.45,
	menu.LineSizeHeader:      0.4,
	menu.LineHeading:         0.35,
	menu.LinePriceOnly:       0.2,
	menu.LineUnknown:         0.25,
}

// severityPenalty is subtracted (in 0-100 points) per active price flag.
var severityPenalty = map[menu.Severity]float64{
	menu.SeverityInfo:    2,
	menu.SeverityAutoFix: 4,
	menu.SeverityWarn:    6,
}

const (
	weightName     = 0.30
	weightCategory = 0.25
	weightVariant  = 0.20
	weightPrice    = 0.25
)

// Score computes and stores the block's semantic confidence (0-100) and
// an audit trail of every component that fed into it.
func Score(b *menu.TextBlock) int {
	nameClarity := nameClarityScore(b)
	categoryScore := float64(b.CategoryConfidence) / 100.0
	variantScore, hasVariants := variantConfidenceScore(b)
	priceScore := priceSanityScore(b)

	details := map[string]any{
		"name_clarity":     nameClarity,
		"category_score":   categoryScore,
		"price_sanity":     priceScore,
		"has_variants":     hasVariants,
	}
	if hasVariants {
		details["variant_score"] = variantScore
	}

	var blend float64
	if hasVariants {
		blend = weightName*nameClarity + weightCategory*categoryScore + weightVariant*variantScore + weightPrice*priceScore
	} else {
		// Redistribute the variant weight proportionally across the
		// remaining three terms when the item has no variants to score.
		remaining := weightName + weightCategory + weightPrice
		blend = (weightName/remaining)*nameClarity +
			(weightCategory/remaining)*categoryScore +
			(weightPrice/remaining)*priceScore
	}

	score := blend * 100.0

	var penalties []map[string]any
	for _, flag := range b.PriceFlags {
		p := severityPenalty[flag.Severity]
		score -= p
		penalties = append(penalties, map[string]any{
			"reason":   string(flag.Reason),
			"severity": string(flag.Severity),
			"penalty":  p,
		})
	}
	details["flag_penalties"] = penalties
	details["pre_penalty_score"] = blend * 100.0

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	b.SemanticConfidence = int(score + 0.5)
	b.SemanticConfidenceDetails = details
	return b.SemanticConfidence
}

func nameClarityScore(b *menu.TextBlock) float64 {
	lineType := menu.LineUnknown
	name := ""
	if b.Grammar != nil {
		lineType = b.Grammar.LineType
		name = b.Grammar.ItemName
	}
	base, ok := lineTypeClarity[lineType]
	if !ok {
		base = 0.25
	}

	wordCount := len(strings.Fields(name))
	lengthFactor := float64(wordCount) / 3.0
	if lengthFactor > 1.0 {
		lengthFactor = 1.0
	}

	return 0.6*base + 0.4*lengthFactor
}

func variantConfidenceScore(b *menu.TextBlock) (float64, bool) {
	if len(b.Variants) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range b.Variants {
		sum += v.Confidence
	}
	return sum / float64(len(b.Variants)), true
}

func priceSanityScore(b *menu.TextBlock) float64 {
	price := b.PrimaryPriceCents()
	if price == nil || *price <= 0 {
		return 0
	}
	if b.Category == "" {
		return 0.5 // no category to judge band-centeredness against; neutral score
	}
	return category.BandCenteredness(*price, b.Category)
}
