package pipeline

import (
	"github.com/menuforge/extractor-core/internal/grammar"
	"github.com/menuforge/extractor-core/pkg/menu"
)

// enrichGrammar runs the contextual grammar classifier over every
// surviving block's merged text, in document order, so the multi-column
// / heading-rescue passes see the real page sequence.
func enrichGrammar(blocks []*menu.TextBlock) {
	lines := make([]string, len(blocks))
	for i, b := range blocks {
		lines[i] = b.MergedText
	}
	parsed := grammar.ClassifyLines(lines)
	for i, b := range blocks {
		p := parsed[i]
		b.Grammar = &p
	}
}
