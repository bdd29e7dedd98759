package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menuforge/extractor-core/pkg/menu"
)

func word(text string, x, y, w, h int, conf float64) menu.Word {
	return menu.Word{Text: text, Conf: conf, BBox: menu.BBox{X: x, Y: y, W: w, H: h}}
}

func TestLinesFromWordsGroupsSameRow(t *testing.T) {
	s := NewSegmenter(DefaultConfig())
	words := []menu.Word{
		word("Margherita", 0, 100, 200, 30, 90),
		word("Pizza", 210, 102, 100, 28, 90),
		word("$12.99", 0, 140, 100, 30, 90),
	}
	lines := s.linesFromWords(words)
	require.Len(t, lines, 2)
	assert.Equal(t, "Margherita Pizza", lines[0].Text)
	assert.Equal(t, "$12.99", lines[1].Text)
}

func TestBlocksFromLinesSplitsOnLargeGap(t *testing.T) {
	s := NewSegmenter(DefaultConfig())
	lines := []menu.Line{
		{Text: "Pizzas", BBox: menu.BBox{X: 0, Y: 0, W: 200, H: 30}},
		{Text: "Margherita $12.99", BBox: menu.BBox{X: 0, Y: 40, W: 300, H: 30}},
		// Salads sits to the right of the line above it, so the
		// horizontal-overlap rescue does not bridge the large gap.
		{Text: "Salads", BBox: menu.BBox{X: 400, Y: 400, W: 200, H: 30}},
	}
	blocks := s.blocksFromLines(1, 0, lines)
	require.Len(t, blocks, 2)
	assert.Equal(t, 2, len(blocks[0].Lines))
	assert.Equal(t, 1, len(blocks[1].Lines))
}

func TestMergeTwoColumnRowsMergesNearestPriceOnlyBlock(t *testing.T) {
	s := NewSegmenter(DefaultConfig())
	textBlock := &menu.TextBlock{
		ID: 0, Page: 1, Column: 0,
		BBox:  menu.BBox{X: 0, Y: 100, W: 300, H: 30},
		Lines: []menu.Line{{Text: "Margherita Pizza", BBox: menu.BBox{X: 0, Y: 100, W: 300, H: 30}}},
	}
	priceBlock := &menu.TextBlock{
		ID: 1, Page: 1, Column: 1,
		BBox:  menu.BBox{X: 380, Y: 102, W: 60, H: 28},
		Lines: []menu.Line{{Text: "$12.99", BBox: menu.BBox{X: 380, Y: 102, W: 60, H: 28}}},
	}
	merged := s.mergeTwoColumnRows([]*menu.TextBlock{textBlock, priceBlock})
	require.Len(t, merged, 1)
	assert.Contains(t, merged[0].MergedText, "$12.99")
	assert.Contains(t, merged[0].MergedText, "Margherita Pizza")
}

func TestMergeTwoColumnRowsLeavesFarBlocksAlone(t *testing.T) {
	s := NewSegmenter(DefaultConfig())
	textBlock := &menu.TextBlock{
		ID: 0, Page: 1,
		BBox:  menu.BBox{X: 0, Y: 100, W: 300, H: 30},
		Lines: []menu.Line{{Text: "Margherita Pizza", BBox: menu.BBox{X: 0, Y: 100, W: 300, H: 30}}},
	}
	priceBlock := &menu.TextBlock{
		ID: 1, Page: 1,
		BBox:  menu.BBox{X: 380, Y: 900, W: 60, H: 28},
		Lines: []menu.Line{{Text: "$12.99", BBox: menu.BBox{X: 380, Y: 900, W: 60, H: 28}}},
	}
	merged := s.mergeTwoColumnRows([]*menu.TextBlock{textBlock, priceBlock})
	assert.Len(t, merged, 2)
}
