package ocrtext

import (
	"context"
	"fmt"
	"image"

	"github.com/menuforge/extractor-core/pkg/menu"
)

// Recognizer wraps an Engine and applies the cleaning/confidence/garbage
// pipeline required of every OCR invocation, returning the menu.Word
// slice that internal/fusion and internal/layout consume.
type Recognizer struct {
	Engine    Engine
	ConfFloor float64
}

// NewRecognizer builds a Recognizer with the given confidence floor. A
// floor of 0 falls back to ConfFloor.
func NewRecognizer(engine Engine, confFloor float64) *Recognizer {
	if confFloor <= 0 {
		confFloor = ConfFloor
	}
	return &Recognizer{Engine: engine, ConfFloor: confFloor}
}

// Recognize runs the engine at the given PSM and returns cleaned,
// confidence-floored, garbage-filtered words in the image's own pixel
// coordinate space.
func (r *Recognizer) Recognize(ctx context.Context, img image.Image, psm int) ([]menu.Word, error) {
	table, err := r.Engine.Recognize(ctx, img, psm)
	if err != nil {
		return nil, fmt.Errorf("ocr recognize psm=%d: %w", psm, err)
	}
	return r.wordsFromTable(table), nil
}

func (r *Recognizer) wordsFromTable(table TokenTable) []menu.Word {
	words := make([]menu.Word, 0, len(table.Text))
	for i := range table.Text {
		if table.Conf[i] < r.ConfFloor {
			continue
		}
		cleaned := CleanToken(table.Text[i])
		if cleaned == "" || IsGarbageToken(cleaned) {
			continue
		}
		words = append(words, menu.Word{
			Text: cleaned,
			Conf: table.Conf[i],
			BBox: menu.BBox{
				X: table.Left[i],
				Y: table.Top[i],
				W: table.Width[i],
				H: table.Height[i],
			},
		})
	}
	return words
}
