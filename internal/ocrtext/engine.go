// Package ocrtext is the OCR primitive: it invokes an external OCR
// engine, then applies confidence floors, token cleaning, and garbage
// filtering before anything downstream ever sees a Word.
package ocrtext

import (
	"context"
	"image"
)

// TokenTable is the raw shape returned by an OCREngine.recognize call:
// parallel arrays, one entry per detected token.
type TokenTable struct {
	Text   []string
	Conf   []float64
	Left   []int
	Top    []int
	Width  []int
	Height []int
}

// Engine is the external OCR collaborator. The core treats it as a black
// box beyond the PSM argument.
type Engine interface {
	Recognize(ctx context.Context, img image.Image, psm int) (TokenTable, error)
	// EffectiveConfig returns the engine's resolved configuration string,
	// logged for debug output.
	EffectiveConfig() string
}
