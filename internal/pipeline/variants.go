package pipeline

import (
	"strings"

	"github.com/menuforge/extractor-core/internal/variant"
	"github.com/menuforge/extractor-core/pkg/menu"
)

// annotatePrices copies each block's grammar price mentions into
// PriceCandidates (dollars -> integer cents), the shared representation
// internal/variant and internal/category operate on.
func annotatePrices(blocks []*menu.TextBlock) {
	for _, b := range blocks {
		if b.Grammar == nil {
			continue
		}
		for _, pm := range b.Grammar.PriceMentions {
			cents := dollarsToCents(pm.Amount)
			b.PriceCandidates = append(b.PriceCandidates, menu.PriceCandidate{
				Text:       pm.Text,
				Confidence: b.Grammar.Confidence,
				PriceCents: &cents,
			})
		}
	}
}

// applyVariantEngine walks the document's surviving blocks in order,
// tracking the active size-grid context: a size_header block replaces it
// and any heading-role block clears it, canonical section name or not (the
// text-only path in internal/aifallback clears it on grammar heading
// lines instead). It then runs the price-validation,
// consistency, and price-role passes per block.
func applyVariantEngine(blocks []*menu.TextBlock) {
	grid := menu.SizeGridContext{}
	hasGrid := false

	for i, b := range blocks {
		if b.Grammar == nil {
			continue
		}
		switch {
		case b.IsHeading:
			grid = menu.SizeGridContext{}
			hasGrid = false
			continue
		case b.Grammar.LineType == menu.LineSizeHeader:
			grid = variant.ParseSizeGrid(b.MergedText, i)
			hasGrid = len(grid.Columns) > 0
			continue
		}
		assignBlockVariants(b, grid, hasGrid)
	}

	for _, b := range blocks {
		variant.ValidatePriceOrdering(b)
		variant.CheckConsistency(b)
		variant.ClassifyPriceRole(b)
	}
}

func assignBlockVariants(b *menu.TextBlock, grid menu.SizeGridContext, hasGrid bool) {
	p := b.Grammar
	if p.LineType != menu.LineMenuItem || len(p.PriceMentions) == 0 {
		return
	}

	if hasGrid {
		if variants, ok := variant.MapGridToVariants(grid, p.PriceMentions); ok {
			for i := range variants {
				variant.ScoreBaseConfidence(&variants[i], variant.ScoringContext{FromSizeGrid: true})
			}
			b.Variants = variants
			return
		}
	}

	if len(p.PriceMentions) == 1 {
		label := ""
		if len(p.SizeMentions) > 0 {
			label = p.SizeMentions[0]
		}
		v := menu.OCRVariant{Label: label, PriceCents: dollarsToCents(p.PriceMentions[0].Amount)}
		variant.EnrichVariant(&v)
		variant.ScoreBaseConfidence(&v, variant.ScoringContext{GrammarConfident: p.Confidence >= 0.7})
		b.Variants = []menu.OCRVariant{v}
		return
	}

	tokens := strings.Fields(b.MergedText)
	priceIdx := findPriceTokenIndex(tokens)
	variants := make([]menu.OCRVariant, 0, len(p.PriceMentions))
	for _, pm := range p.PriceMentions {
		label := variant.BackwardTokenWalk(tokens, priceIdx)
		v := menu.OCRVariant{Label: label, PriceCents: dollarsToCents(pm.Amount)}
		variant.EnrichVariant(&v)
		variant.ScoreBaseConfidence(&v, variant.ScoringContext{GrammarAmbiguous: true})
		variants = append(variants, v)
	}
	b.Variants = variants
}

func dollarsToCents(amount float64) int {
	return int(amount*100 + 0.5)
}

func findPriceTokenIndex(tokens []string) int {
	for i := len(tokens) - 1; i >= 0; i-- {
		if strings.ContainsAny(tokens[i], "0123456789") {
			return i
		}
	}
	return len(tokens)
}
