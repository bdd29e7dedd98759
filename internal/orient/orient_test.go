package orient

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestUnrotateRoundTripsRotate90 hand-traces rotate90's forward mapping
// (dst.Set(h-1-y, x, src(x,y))) and checks Unrotate inverts it: a box
// drawn on the rotated candidate should land back on the same pixels the
// box covered in the original image.
func TestUnrotateRoundTripsRotate90(t *testing.T) {
	src := image.Rect(0, 0, 4, 2) // w=4, h=2
	w, h := src.Dx(), src.Dy()
	candidate := Rotate(&stubImage{bounds: src}, Rotation90)
	cb := candidate.Bounds()
	assert.Equal(t, h, cb.Dx())
	assert.Equal(t, w, cb.Dy())

	// Source pixel (x=1,y=1) maps forward to dst (h-1-y, x) = (0, 1).
	srcPoint := image.Rect(1, 1, 2, 2)
	dstPoint := image.Rect(0, 1, 1, 2)

	got := Unrotate(dstPoint, Rotation90, cb.Dx(), cb.Dy())
	assert.Equal(t, srcPoint, got)
}

func TestUnrotateRoundTripsRotate270(t *testing.T) {
	src := image.Rect(0, 0, 4, 2) // w=4, h=2
	w, h := src.Dx(), src.Dy()
	candidate := Rotate(&stubImage{bounds: src}, Rotation270)
	cb := candidate.Bounds()
	assert.Equal(t, h, cb.Dx())
	assert.Equal(t, w, cb.Dy())

	// rotate270: dst.Set(y, w-1-x, src(x,y)). Source pixel (x=1,y=1) maps
	// forward to dst (y, w-1-x) = (1, 2).
	srcPoint := image.Rect(1, 1, 2, 2)
	dstPoint := image.Rect(1, 2, 2, 3)

	got := Unrotate(dstPoint, Rotation270, cb.Dx(), cb.Dy())
	assert.Equal(t, srcPoint, got)
}

func TestUnrotateIdentityOnRotation0(t *testing.T) {
	b := image.Rect(5, 5, 20, 20)
	assert.Equal(t, b, Unrotate(b, Rotation0, 100, 100))
}

// stubImage is a minimal image.Image with no real pixel data, just bounds,
// enough to drive rotate90/rotate180/rotate270's geometry.
type stubImage struct {
	bounds image.Rectangle
}

func (s *stubImage) ColorModel() color.Model { return color.GrayModel }
func (s *stubImage) Bounds() image.Rectangle { return s.bounds }
func (s *stubImage) At(x, y int) color.Color { return color.Gray{Y: 0} }
