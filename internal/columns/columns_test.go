package columns

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGutterWidthClamps(t *testing.T) {
	assert.Equal(t, MinGutterWidth, GutterWidth(100))
	assert.Equal(t, MaxGutterWidth, GutterWidth(100000))
	assert.Equal(t, 15, GutterWidth(2000))
}

func TestFindGutterBoundariesNoGutter(t *testing.T) {
	density := make([]int, 500)
	for i := range density {
		density[i] = 10
	}
	boundaries := findGutterBoundaries(density, 40, 50)
	assert.Empty(t, boundaries)
}

func TestFindGutterBoundariesDetectsCenterGap(t *testing.T) {
	density := make([]int, 500)
	for i := range density {
		density[i] = 10
	}
	for i := 230; i < 270; i++ {
		density[i] = 0
	}
	boundaries := findGutterBoundaries(density, 30, 50)
	assert.Len(t, boundaries, 1)
	assert.InDelta(t, 250, boundaries[0], 5)
}

func TestSplitBlankImageReturnsSingleColumn(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 400, 200))
	for y := 0; y < 200; y++ {
		for x := 0; x < 400; x++ {
			img.Set(x, y, color.White)
		}
	}
	s := NewSplitter()
	cols := s.Split(img)
	assert.Len(t, cols, 1)
	assert.Equal(t, 0, cols[0].Index)
}

func TestSplitTwoColumnPage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 600, 300))
	for y := 0; y < 300; y++ {
		for x := 0; x < 600; x++ {
			img.Set(x, y, color.White)
		}
	}
	// Ink on left and right thirds, blank gutter in the middle.
	for y := 0; y < 300; y++ {
		for x := 0; x < 200; x++ {
			img.Set(x, y, color.Black)
		}
		for x := 400; x < 600; x++ {
			img.Set(x, y, color.Black)
		}
	}
	s := NewSplitter()
	cols := s.Split(img)
	assert.Len(t, cols, 2)
}
