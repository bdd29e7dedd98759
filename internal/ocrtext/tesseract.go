package ocrtext

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine is the concrete Engine backed by the Tesseract OCR
// engine via gosseract. One TesseractEngine is safe to reuse across calls
// but not safe for concurrent use: callers running the (rotation x PSM)
// grid concurrently should use NewTesseractEngine per goroutine, or pool
// them.
type TesseractEngine struct {
	client    *gosseract.Client
	languages []string
}

// NewTesseractEngine creates a new Tesseract-backed OCR engine.
func NewTesseractEngine(languages []string) *TesseractEngine {
	client := gosseract.NewClient()
	if len(languages) > 0 {
		_ = client.SetLanguage(languages...)
	}
	return &TesseractEngine{client: client, languages: languages}
}

// Recognize runs Tesseract at the given page-segmentation mode over img
// and returns the raw per-word token table in img's own pixel coordinates.
func (e *TesseractEngine) Recognize(ctx context.Context, img image.Image, psm int) (TokenTable, error) {
	select {
	case <-ctx.Done():
		return TokenTable{}, ctx.Err()
	default:
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return TokenTable{}, fmt.Errorf("encode image for ocr: %w", err)
	}

	if err := e.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return TokenTable{}, fmt.Errorf("set ocr image: %w", err)
	}
	if err := e.client.SetPageSegMode(gosseract.PageSegMode(psm)); err != nil {
		return TokenTable{}, fmt.Errorf("set ocr psm %d: %w", psm, err)
	}

	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return TokenTable{}, fmt.Errorf("ocr recognize: %w", err)
	}

	table := TokenTable{
		Text:   make([]string, 0, len(boxes)),
		Conf:   make([]float64, 0, len(boxes)),
		Left:   make([]int, 0, len(boxes)),
		Top:    make([]int, 0, len(boxes)),
		Width:  make([]int, 0, len(boxes)),
		Height: make([]int, 0, len(boxes)),
	}
	for _, b := range boxes {
		table.Text = append(table.Text, b.Word)
		table.Conf = append(table.Conf, b.Confidence)
		table.Left = append(table.Left, b.Box.Min.X)
		table.Top = append(table.Top, b.Box.Min.Y)
		table.Width = append(table.Width, b.Box.Dx())
		table.Height = append(table.Height, b.Box.Dy())
	}
	return table, nil
}

// EffectiveConfig returns a human-readable summary of the engine's
// resolved configuration, for debug logging.
func (e *TesseractEngine) EffectiveConfig() string {
	return fmt.Sprintf("tesseract langs=%v", e.languages)
}

// Close releases the underlying Tesseract client.
func (e *TesseractEngine) Close() error {
	return e.client.Close()
}
