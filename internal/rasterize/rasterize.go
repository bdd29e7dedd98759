// Package rasterize turns a source document (PDF or raster image) into the
// per-page image.Image values the rest of the pipeline operates on.
// Grounded on the teacher's libs/pdf-extractor/internal/pdf/converter.go,
// adapted to hand back in-memory images instead of temp JPG files since
// the OCR primitive (internal/ocrtext) consumes image.Image directly.
package rasterize

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/menuforge/extractor-core/internal/menuerr"
)

// Page is one rasterized document page.
type Page struct {
	PageNumber int
	Image      image.Image
}

// Rasteriser turns a source document into a per-page image sequence.
type Rasteriser interface {
	Rasterize(ctx context.Context, path string) ([]Page, error)
}

// DefaultDPI is the rendering resolution used for PDF pages; higher than
// screen DPI because downstream OCR benefits from sharper text edges.
const DefaultDPI = 300.0

// FitzRasteriser rasterizes PDFs via go-fitz (MuPDF bindings) and loads
// plain raster images (PNG/JPEG) directly via the standard library.
type FitzRasteriser struct {
	DPI float64
}

// NewFitzRasteriser creates a rasteriser using the given DPI, defaulting
// to DefaultDPI when dpi <= 0.
func NewFitzRasteriser(dpi float64) *FitzRasteriser {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &FitzRasteriser{DPI: dpi}
}

// Rasterize converts path into one image.Image per page. PDFs are
// rendered through go-fitz; single raster images are decoded as a
// one-page document.
func (r *FitzRasteriser) Rasterize(ctx context.Context, path string) ([]Page, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".pdf" {
		return r.rasterizeImageFile(path)
	}
	return r.rasterizePDF(ctx, path)
}

func (r *FitzRasteriser) rasterizePDF(ctx context.Context, path string) ([]Page, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, menuerr.Input(fmt.Sprintf("open pdf %s", path), err)
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	if pageCount == 0 {
		return nil, menuerr.Input(fmt.Sprintf("pdf %s has no pages", path), nil)
	}

	pages := make([]Page, 0, pageCount)
	for i := 0; i < pageCount; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		img, err := doc.ImageDPI(i, r.DPI)
		if err != nil {
			return nil, menuerr.Stage(fmt.Sprintf("render pdf page %d", i+1), err)
		}
		pages = append(pages, Page{PageNumber: i + 1, Image: img})
	}
	return pages, nil
}

func (r *FitzRasteriser) rasterizeImageFile(path string) ([]Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, menuerr.Input(fmt.Sprintf("open image %s", path), err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, menuerr.Input(fmt.Sprintf("decode image %s", path), err)
	}
	return []Page{{PageNumber: 1, Image: img}}, nil
}
