package pipeline

import (
	"github.com/menuforge/extractor-core/internal/category"
	"github.com/menuforge/extractor-core/pkg/menu"
)

// assignCategories infers a category for every non-heading, non-noise
// block using a sliding window of the last few assigned categories as
// neighbour context, overriding the package's bare fallback label with
// the caller's configured one when set.
func assignCategories(blocks []*menu.TextBlock, fallbackLabel string) {
	var recentCats []string
	for _, b := range blocks {
		if b.IsHeading || b.Role == menu.RoleNoise || b.Grammar == nil {
			continue
		}

		name := b.Grammar.ItemName
		if name == "" {
			name = b.MergedText
		}

		price := 0
		if pp := b.PrimaryPriceCents(); pp != nil {
			price = *pp
		}

		window := recentCats
		if len(window) > 4 {
			window = window[len(window)-4:]
		}
		guess := category.Infer(name, b.Grammar.Description, price, window)
		if guess.Category == category.FallbackCat && fallbackLabel != "" {
			guess.Category = fallbackLabel
		}
		b.Category = guess.Category
		b.CategoryConfidence = guess.Confidence
		b.RuleTrace = []string{guess.Reason}

		recentCats = append(recentCats, guess.Category)
	}
}
