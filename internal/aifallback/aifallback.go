// Package aifallback implements the secondary, text-only extraction path:
// given already-OCR'd raw text with no geometry, it runs the same grammar
// classification, category inference, variant
// enrichment, and cross-item checks as the layout-aware path, skipping
// only the rasterisation / orientation / column / fusion / layout
// stages that require page geometry.
package aifallback

import (
	"strings"

	"github.com/menuforge/extractor-core/internal/category"
	"github.com/menuforge/extractor-core/internal/confidence"
	"github.com/menuforge/extractor-core/internal/crossitem"
	"github.com/menuforge/extractor-core/internal/grammar"
	"github.com/menuforge/extractor-core/internal/variant"
	"github.com/menuforge/extractor-core/pkg/menu"
)

// Config mirrors config.CategoryConfig's fallback label so this package
// doesn't need to import internal/config directly.
type Config struct {
	CategoryFallbackLabel string
}

// ParseText runs the text-only extraction path over a raw OCR'd document
// and returns one enriched TextBlock per input line, whatever its
// classified line type (heading lines included, to preserve section
// context for callers building a StructuredMenuPayload from this path).
func ParseText(text string, cfg Config) []*menu.TextBlock {
	lines := splitLines(text)
	parsed := grammar.ClassifyLines(lines)

	blocks := make([]*menu.TextBlock, len(parsed))
	for i := range parsed {
		p := parsed[i]
		blocks[i] = &menu.TextBlock{
			ID:         i,
			MergedText: lines[i],
			Grammar:    &p,
			IsHeading:  p.LineType == menu.LineHeading,
		}
	}

	activeGrid := menu.SizeGridContext{}
	hasGrid := false

	for i, b := range blocks {
		p := b.Grammar
		if p.LineType == menu.LineHeading {
			activeGrid = menu.SizeGridContext{}
			hasGrid = false
			continue
		}
		if p.LineType == menu.LineSizeHeader {
			activeGrid = variant.ParseSizeGrid(lines[i], i)
			hasGrid = len(activeGrid.Columns) > 0
			continue
		}
		// Every other block type, including the item lines the grid
		// feeds, leaves an active grid running. Any heading line clears
		// it above; headings are not checked against the canonical
		// section vocabulary here (variant.GridStillActive is not used).
		assignVariants(b, p, lines[i], activeGrid, hasGrid)
	}

	assignCategories(blocks, cfg)

	for _, b := range blocks {
		variant.ValidatePriceOrdering(b)
		variant.CheckConsistency(b)
		variant.ClassifyPriceRole(b)
	}

	crossitem.Check(blocks)

	for _, b := range blocks {
		confidence.Score(b)
	}

	return blocks
}

func assignVariants(b *menu.TextBlock, p *menu.ParsedMenuItem, line string, grid menu.SizeGridContext, hasGrid bool) {
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
		v := menu.OCRVariant{
			Label:      label,
			PriceCents: dollarsToCents(p.PriceMentions[0].Amount),
		}
		variant.EnrichVariant(&v)
		variant.ScoreBaseConfidence(&v, variant.ScoringContext{GrammarConfident: p.Confidence >= 0.7})
		b.Variants = []menu.OCRVariant{v}
		return
	}

	tokens := strings.Fields(line)
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

func assignCategories(blocks []*menu.TextBlock, cfg Config) {
	var recentCats []string
	for _, b := range blocks {
		p := b.Grammar
		if p.LineType == menu.LineHeading {
			continue
		}
		if p.LineType != menu.LineMenuItem {
			continue
		}

		price := 0
		if pp := b.PrimaryPriceCents(); pp != nil {
			price = *pp
		}

		window := recentCats
		if len(window) > 4 {
			window = window[len(window)-4:]
		}
		guess := category.Infer(p.ItemName, p.Description, price, window)
		if guess.Category == category.FallbackCat && cfg.CategoryFallbackLabel != "" {
			guess.Category = cfg.CategoryFallbackLabel
		}
		b.Category = guess.Category
		b.CategoryConfidence = guess.Confidence
		b.RuleTrace = []string{guess.Reason}

		recentCats = append(recentCats, guess.Category)
	}
}

func splitLines(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}
