// Package orient normalizes page orientation before OCR by scoring the four
// quadrant rotations with an injected prober (an OCR pass scored by
// word count and confidence) and keeping the best. It reads no EXIF
// orientation tag and makes no OSD query. It is idempotent on an
// already-upright page.
package orient

import (
	"context"
	"image"

	"golang.org/x/image/draw"

	"github.com/menuforge/extractor-core/internal/observability"
)

// Rotation is one of the four cardinal page rotations the core considers.
type Rotation int

const (
	Rotation0   Rotation = 0
	Rotation90  Rotation = 90
	Rotation180 Rotation = 180
	Rotation270 Rotation = 270
)

// AllRotations lists every quadrant probed during a brute-force scan, in
// the same fixed order internal/fusion uses for its own rotation grid.
var AllRotations = []Rotation{Rotation0, Rotation90, Rotation180, Rotation270}

// Prober scores a candidate rotation of a page image; a higher score means
// a more plausible upright orientation. internal/pipeline supplies the real
// implementation, probeRotation (an OCR pass scored by word count and average
// confidence) so that orient has no direct OCR dependency.
type Prober func(ctx context.Context, candidate image.Image, rotation Rotation) (float64, error)

// Normalizer picks the single best rotation for a page.
type Normalizer struct {
	logger *observability.Logger
	prober Prober
}

// NewNormalizer builds a Normalizer that scores candidates with prober.
func NewNormalizer(logger *observability.Logger, prober Prober) *Normalizer {
	if logger == nil {
		logger = observability.Nop()
	}
	return &Normalizer{logger: logger, prober: prober}
}

// Normalize rotates img to its best-scoring orientation among
// AllRotations and returns the corrected image plus the rotation applied.
// On an already-upright page the returned rotation is Rotation0 and the
// returned image is pixel-identical to the input (Rotate(img, 0) is the
// identity transform).
func (n *Normalizer) Normalize(ctx context.Context, img image.Image) (image.Image, Rotation, error) {
	best := Rotation0
	bestScore := -1.0
	var bestImg image.Image

	for _, rot := range AllRotations {
		select {
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		default:
		}

		candidate := Rotate(img, rot)
		score, err := n.prober(ctx, candidate, rot)
		if err != nil {
			n.logger.Warn().Int("rotation", int(rot)).Err(err).Msg("orientation probe failed")
			continue
		}
		n.logger.Debug().Int("rotation", int(rot)).Float64("score", score).Msg("orientation probe")

		if score > bestScore {
			bestScore = score
			best = rot
			bestImg = candidate
		}
	}

	if bestImg == nil {
		// Every probe failed; fall back to the untouched original rather
		// than fail the page outright.
		return img, Rotation0, nil
	}
	return bestImg, best, nil
}

// Rotate returns img rotated clockwise by the given rotation. Rotation0
// returns img itself unchanged.
func Rotate(img image.Image, rotation Rotation) image.Image {
	switch rotation {
	case Rotation90:
		return rotate90(img)
	case Rotation180:
		return rotate180(img)
	case Rotation270:
		return rotate270(img)
	default:
		return img
	}
}

// Unrotate maps a bounding box measured on a rotated candidate back into
// the coordinate space of the original, un-rotated page. internal/fusion
// clusters bboxes after un-rotating every pass onto this common frame.
func Unrotate(b image.Rectangle, rotation Rotation, rotatedW, rotatedH int) image.Rectangle {
	switch rotation {
	case Rotation90:
		return image.Rect(
			b.Min.Y, rotatedW-b.Max.X,
			b.Max.Y, rotatedW-b.Min.X,
		)
	case Rotation180:
		return image.Rect(
			rotatedW-b.Max.X, rotatedH-b.Max.Y,
			rotatedW-b.Min.X, rotatedH-b.Min.Y,
		)
	case Rotation270:
		return image.Rect(
			rotatedH-b.Max.Y, b.Min.X,
			rotatedH-b.Min.Y, b.Max.X,
		)
	default:
		return b
	}
}

func rotate90(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, h, w))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.Set(h-1-y, x, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

func rotate180(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.Set(w-1-x, h-1-y, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

func rotate270(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, h, w))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.Set(y, w-1-x, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

// resample is kept for future use by components that need to downscale a
// page before the gutter-detection pass; wired through x/image/draw so
// the teacher's imaging stack stays exercised outside the rotation path.
func resample(img image.Image, w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}
