// Package columns splits a page image into left-to-right reading-order
// column strips before OCR. Menus laid out in two or three
// print columns OCR far more reliably column-by-column than as a single
// wide pass, because Tesseract's line-ordering heuristics assume a single
// reading column.
package columns

import (
	"image"
)

// Gutter bounds: the adaptive gutter width is clamped to
// [MinGutterWidth, MaxGutterWidth] and otherwise set to a fraction of page
// width.
const (
	MinGutterWidth  = 12
	MaxGutterWidth  = 64
	GutterWidthFrac = 0.0075
)

// Column is one vertical strip of a page, in left-to-right reading order.
type Column struct {
	Index  int
	Image  image.Image
	Offset image.Point // top-left of this strip in the original page frame
}

// GutterWidth computes the adaptive whitespace-gutter width for a page of
// the given pixel width.
func GutterWidth(pageWidth int) int {
	w := int(float64(pageWidth) * GutterWidthFrac)
	if w < MinGutterWidth {
		return MinGutterWidth
	}
	if w > MaxGutterWidth {
		return MaxGutterWidth
	}
	return w
}

// Splitter detects whitespace gutters and splits a page into column
// strips.
type Splitter struct {
	// MinColumnWidthFrac is the minimum width (as a fraction of page
	// width) a candidate column must have to be treated as real rather
	// than a sliver artifact of a noisy gutter scan.
	MinColumnWidthFrac float64
}

// NewSplitter builds a Splitter with spec-default thresholds.
func NewSplitter() *Splitter {
	return &Splitter{MinColumnWidthFrac: 0.15}
}

// Split detects vertical whitespace gutters in img's column-density
// profile and returns one Column per detected reading strip, in
// left-to-right order. If no gutter qualifies, it returns a single column
// spanning the whole page.
func (s *Splitter) Split(img image.Image) []Column {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 {
		return []Column{{Index: 0, Image: img, Offset: b.Min}}
	}

	profile := columnInkDensity(img)
	gutter := GutterWidth(width)
	boundaries := findGutterBoundaries(profile, gutter, int(float64(width)*s.MinColumnWidthFrac))

	if len(boundaries) == 0 {
		return []Column{{Index: 0, Image: img, Offset: b.Min}}
	}

	cols := make([]Column, 0, len(boundaries)+1)
	prev := 0
	idx := 0
	for _, cut := range boundaries {
		cols = append(cols, cropColumn(img, prev, cut, idx))
		prev = cut
		idx++
	}
	cols = append(cols, cropColumn(img, prev, width, idx))
	return cols
}

// columnInkDensity returns, for each pixel column, the count of non-white
// (ink) pixels. Used to find whitespace gutters between print columns.
func columnInkDensity(img image.Image) []int {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	density := make([]int, width)
	for x := 0; x < width; x++ {
		count := 0
		for y := 0; y < height; y++ {
			if isInk(img.At(b.Min.X+x, b.Min.Y+y)) {
				count++
			}
		}
		density[x] = count
	}
	return density
}

func isInk(c interface{ RGBA() (r, g, b, a uint32) }) bool {
	r, g, bl, _ := c.RGBA()
	// RGBA() returns 16-bit-scaled channels; treat anything reasonably
	// dark as ink.
	lum := (299*int(r>>8) + 587*int(g>>8) + 114*int(bl>>8)) / 1000
	return lum < 200
}

// findGutterBoundaries scans the ink-density profile for runs of
// near-zero density at least gutterWidth wide, and returns the x
// coordinate at the midpoint of each run that leaves at least minColWidth
// pixels of content on either side.
func findGutterBoundaries(density []int, gutterWidth, minColWidth int) []int {
	width := len(density)
	var boundaries []int
	runStart := -1

	for x := 0; x <= width; x++ {
		blank := x < width && density[x] == 0
		if blank {
			if runStart == -1 {
				runStart = x
			}
			continue
		}
		if runStart != -1 {
			runLen := x - runStart
			if runLen >= gutterWidth {
				mid := runStart + runLen/2
				if mid >= minColWidth && width-mid >= minColWidth {
					boundaries = append(boundaries, mid)
				}
			}
			runStart = -1
		}
	}
	return boundaries
}

func cropColumn(img image.Image, x0, x1, index int) Column {
	b := img.Bounds()
	rect := image.Rect(b.Min.X+x0, b.Min.Y, b.Min.X+x1, b.Max.Y)
	sub, ok := img.(interface {
		SubImage(r image.Rectangle) image.Image
	})
	if ok {
		return Column{Index: index, Image: sub.SubImage(rect), Offset: image.Pt(x0, 0)}
	}
	dst := image.NewRGBA(image.Rect(0, 0, x1-x0, b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := x0; x < x1; x++ {
			dst.Set(x-x0, y, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return Column{Index: index, Image: dst, Offset: image.Pt(x0, 0)}
}
