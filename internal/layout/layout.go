// Package layout segments a fused word list into lines and geometric text
// blocks: words group into lines by vertical proximity, lines group into
// blocks by vertical gap and horizontal overlap, and
// same-row price-only blocks are merged back into their nearest text
// block to undo incidental two-column layout splits.
package layout

import (
	"regexp"
	"sort"
	"strings"

	"github.com/menuforge/extractor-core/pkg/menu"
)

// priceOnlyRe matches a line that is nothing but a price (and optional
// leading dots/dashes from a dot-leader), used only to detect candidate
// blocks for the two-column row merge below. internal/grammar applies the
// authoritative, richer price-only classification later in the pipeline.
var priceOnlyRe = regexp.MustCompile(`^[\s.\-]*\$?\d{1,3}(?:\.\d{2})?[\s.\-]*$`)

func isPriceOnlyText(text string) bool {
	return priceOnlyRe.MatchString(strings.TrimSpace(text))
}

// Config controls the thresholds used at each segmentation step. Mirrors
// internal/config.LayoutConfig.
type Config struct {
	LineSpanHeightMult      float64
	LineHeightRatioMax      float64
	LineMinWidthPx          int
	LineWidthWordMult       float64
	LineGapMinPx            int
	LineGapWordMult         float64
	BlockGapLineHeightMult  float64
	BlockHorizOverlapMin    float64
	TwoColMergeVerticalMult float64
	TwoColMergeMinPx        int
	TwoColMergeMaxPx        int
	TwoColMergeWidthFrac    float64
}

// DefaultConfig mirrors internal/config.DefaultConfig's layout defaults.
func DefaultConfig() Config {
	return Config{
		LineSpanHeightMult:      1.8,
		LineHeightRatioMax:      2.0,
		LineMinWidthPx:          800,
		LineWidthWordMult:       20,
		LineGapMinPx:            40,
		LineGapWordMult:         3,
		BlockGapLineHeightMult:  1.25,
		BlockHorizOverlapMin:    0.25,
		TwoColMergeVerticalMult: 1.2,
		TwoColMergeMinPx:        60,
		TwoColMergeMaxPx:        150,
		TwoColMergeWidthFrac:    0.08,
	}
}

// Segmenter turns words into TextBlocks.
type Segmenter struct {
	config Config
}

// NewSegmenter builds a Segmenter with the given thresholds.
func NewSegmenter(config Config) *Segmenter {
	return &Segmenter{config: config}
}

// Segment runs the full words -> lines -> blocks -> two-column-merge
// pipeline for a single page/column's word list and returns the resulting
// blocks in top-to-bottom reading order.
func (s *Segmenter) Segment(page, column int, words []menu.Word) []*menu.TextBlock {
	lines := s.linesFromWords(words)
	blocks := s.blocksFromLines(page, column, lines)
	return s.mergeTwoColumnRows(blocks)
}

// linesFromWords groups words into Lines. A word joins the first row whose
// vertical span, widened to take in the word, stays within
// LineSpanHeightMult times the median word height, provided the word's
// height is within LineHeightRatioMax of that median in either direction.
// No horizontal width or word-gap cap is applied, so words far apart on the
// same row share a line. Lines that isDegenerateLine rejects (no words, or
// too narrow for their word count) are dropped.
func (s *Segmenter) linesFromWords(words []menu.Word) []menu.Line {
	if len(words) == 0 {
		return nil
	}

	sorted := append([]menu.Word(nil), words...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].BBox.Y != sorted[j].BBox.Y {
			return sorted[i].BBox.Y < sorted[j].BBox.Y
		}
		return sorted[i].BBox.X < sorted[j].BBox.X
	})

	medianHeight := medianWordHeight(sorted)
	vTolerance := medianHeight * s.config.LineSpanHeightMult

	var rows [][]menu.Word
	for _, w := range sorted {
		placed := false
		for i := range rows {
			top, bottom := w.BBox.Y, w.BBox.Y+w.BBox.H
			for _, rw := range rows[i] {
				if rw.BBox.Y < top {
					top = rw.BBox.Y
				}
				if e := rw.BBox.Y + rw.BBox.H; e > bottom {
					bottom = e
				}
			}
			if float64(bottom-top) <= vTolerance {
				heightRatio := float64(w.BBox.H) / maxF(1, medianHeight)
				if heightRatio <= s.config.LineHeightRatioMax && 1/heightRatio <= s.config.LineHeightRatioMax {
					rows[i] = append(rows[i], w)
					placed = true
					break
				}
			}
		}
		if !placed {
			rows = append(rows, []menu.Word{w})
		}
	}

	lines := make([]menu.Line, 0, len(rows))
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].BBox.X < row[j].BBox.X })
		line := buildLine(row)
		if s.isDegenerateLine(line) {
			continue
		}
		lines = append(lines, line)
	}

	sort.SliceStable(lines, func(i, j int) bool { return lines[i].BBox.Y < lines[j].BBox.Y })
	return lines
}

func (s *Segmenter) isDegenerateLine(line menu.Line) bool {
	if len(line.Words) == 0 {
		return true
	}
	if line.BBox.W >= s.config.LineMinWidthPx {
		return false
	}
	minWidthForWordCount := float64(len(line.Words)) * s.config.LineWidthWordMult
	return float64(line.BBox.W) < minWidthForWordCount && line.BBox.W < s.config.LineGapMinPx
}

// blocksFromLines groups consecutive lines into blocks using a
// gap-threshold (scaled by median line height) plus a horizontal-overlap
// rescue: a large vertical gap is tolerated if the lines still overlap
// horizontally enough to plausibly be the same paragraph.
func (s *Segmenter) blocksFromLines(page, column int, lines []menu.Line) []*menu.TextBlock {
	if len(lines) == 0 {
		return nil
	}

	medianHeight := medianLineHeight(lines)
	gapThreshold := medianHeight * s.config.BlockGapLineHeightMult

	var blocks []*menu.TextBlock
	var current []menu.Line

	flush := func() {
		if len(current) == 0 {
			return
		}
		blocks = append(blocks, buildBlock(page, column, len(blocks), current))
		current = nil
	}

	for _, line := range lines {
		if len(current) == 0 {
			current = append(current, line)
			continue
		}
		prev := current[len(current)-1]
		gap := float64(line.BBox.Y - (prev.BBox.Y + prev.BBox.H))
		overlap := prev.BBox.HorizontalOverlapRatio(line.BBox)

		if gap <= gapThreshold || overlap >= s.config.BlockHorizOverlapMin {
			current = append(current, line)
		} else {
			flush()
			current = append(current, line)
		}
	}
	flush()

	return blocks
}

// mergeTwoColumnRows finds price-only blocks that sit on the same row as
// a text block in a different (typically adjacent) column, and merges
// each into its nearest qualifying left-hand text block, undoing an
// incidental column split across a single logical menu row. The horizontal
// gap must lie between TwoColMergeMinPx and TwoColMergeMaxPx; the bounds
// are fixed pixel values and do not scale with page width
// (TwoColMergeWidthFrac is not read here).
func (s *Segmenter) mergeTwoColumnRows(blocks []*menu.TextBlock) []*menu.TextBlock {
	if len(blocks) < 2 {
		return blocks
	}

	merged := make(map[int]bool)
	for i, candidate := range blocks {
		if merged[i] || !looksPriceOnly(candidate) {
			continue
		}
		best := -1
		bestDist := -1
		for j, target := range blocks {
			if i == j || merged[j] || looksPriceOnly(target) {
				continue
			}
			if target.BBox.X+target.BBox.W > candidate.BBox.X {
				continue // must be to the left
			}
			vGapOK := verticalRowAligned(target.BBox, candidate.BBox, s.config.TwoColMergeVerticalMult)
			gap := candidate.BBox.X - (target.BBox.X + target.BBox.W)
			if !vGapOK || gap < s.config.TwoColMergeMinPx || gap > s.config.TwoColMergeMaxPx {
				continue
			}
			if best == -1 || gap < bestDist {
				best = j
				bestDist = gap
			}
		}
		if best != -1 {
			blocks[best].Lines = append(blocks[best].Lines, candidate.Lines...)
			blocks[best].BBox = blocks[best].BBox.Union(candidate.BBox)
			blocks[best].MergedText = joinLines(blocks[best].Lines)
			merged[i] = true
		}
	}

	out := make([]*menu.TextBlock, 0, len(blocks))
	for i, b := range blocks {
		if !merged[i] {
			out = append(out, b)
		}
	}
	return out
}

func looksPriceOnly(b *menu.TextBlock) bool {
	if len(b.Lines) != 1 {
		return false
	}
	return isPriceOnlyText(b.Lines[0].Text)
}

func verticalRowAligned(a, b menu.BBox, mult float64) bool {
	aCenter := float64(a.Y) + float64(a.H)/2
	bCenter := float64(b.Y) + float64(b.H)/2
	tolerance := float64(maxInt(a.H, b.H)) * mult
	return absF(aCenter-bCenter) <= tolerance
}

func buildLine(words []menu.Word) menu.Line {
	var box menu.BBox
	var sb []byte
	for i, w := range words {
		box = box.Union(w.BBox)
		if i > 0 {
			sb = append(sb, ' ')
		}
		sb = append(sb, w.Text...)
	}
	return menu.Line{Text: string(sb), BBox: box, Words: words}
}

func buildBlock(page, column, id int, lines []menu.Line) *menu.TextBlock {
	var box menu.BBox
	for _, l := range lines {
		box = box.Union(l.BBox)
	}
	b := &menu.TextBlock{
		ID:     id,
		Page:   page,
		Column: column,
		BBox:   box,
		Lines:  lines,
	}
	b.MergedText = joinLines(lines)
	return b
}

func joinLines(lines []menu.Line) string {
	var sb []byte
	for i, l := range lines {
		if i > 0 {
			sb = append(sb, '\n')
		}
		sb = append(sb, l.Text...)
	}
	return string(sb)
}

func medianWordHeight(words []menu.Word) float64 {
	heights := make([]int, len(words))
	for i, w := range words {
		heights[i] = w.BBox.H
	}
	return float64(medianInt(heights))
}

func medianLineHeight(lines []menu.Line) float64 {
	heights := make([]int, len(lines))
	for i, l := range lines {
		heights[i] = l.BBox.H
	}
	return float64(medianInt(heights))
}

func rowVerticalCenter(row []menu.Word) float64 {
	if len(row) == 0 {
		return 0
	}
	sum := 0.0
	for _, w := range row {
		sum += float64(w.BBox.Y) + float64(w.BBox.H)/2
	}
	return sum / float64(len(row))
}

func medianInt(vals []int) int {
	if len(vals) == 0 {
		return 0
	}
	sorted := append([]int(nil), vals...)
	sort.Ints(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
