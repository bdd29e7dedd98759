// Package pipeline wires every extraction stage into a stateless
// document-level orchestrator: rasterize each page, normalize
// orientation, split into reading columns, fuse a
// multi-pass OCR grid per column, segment words into text blocks, run the
// menu grammar, classify block role and collapse noise, reconstruct
// multi-line descriptions, annotate prices, infer categories, run the
// variant engine, check cross-item consistency, score semantic confidence,
// and finally assemble the structured payload.
package pipeline

import (
	"context"
	"image"

	"github.com/menuforge/extractor-core/internal/columns"
	"github.com/menuforge/extractor-core/internal/config"
	"github.com/menuforge/extractor-core/internal/confidence"
	"github.com/menuforge/extractor-core/internal/crossitem"
	"github.com/menuforge/extractor-core/internal/fusion"
	"github.com/menuforge/extractor-core/internal/layout"
	"github.com/menuforge/extractor-core/internal/menuerr"
	"github.com/menuforge/extractor-core/internal/observability"
	"github.com/menuforge/extractor-core/internal/ocrtext"
	"github.com/menuforge/extractor-core/internal/orient"
	"github.com/menuforge/extractor-core/internal/rasterize"
	"github.com/menuforge/extractor-core/pkg/menu"
)

// Pipeline is the stateless per-document orchestrator. It holds no
// mutable state of its own beyond its wired collaborators; every Run
// call is independent.
type Pipeline struct {
	rasteriser rasterize.Rasteriser
	recognizer *ocrtext.Recognizer
	orienter   *orient.Normalizer
	splitter   *columns.Splitter
	fuser      *fusion.Fuser
	segmenter  *layout.Segmenter
	cfg        *config.Config
	logger     *observability.Logger
}

// New builds a Pipeline from a resolved configuration, an OCR engine
// collaborator, and a rasteriser. logger may be nil (defaults to a
// no-op logger).
func New(cfg *config.Config, logger *observability.Logger, engine ocrtext.Engine, rasteriser rasterize.Rasteriser) *Pipeline {
	if logger == nil {
		logger = observability.Nop()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	recognizer := ocrtext.NewRecognizer(engine, cfg.OCR.ConfFloor)

	fuserCfg := fusion.Config{
		Rotations:           cfg.OCR.Rotations,
		PSMModes:            cfg.OCR.PSMModes,
		ClusterIoUMin:       cfg.Fusion.ClusterIoUMin,
		ClusterOverlapMin:   cfg.Fusion.ClusterOverlapMin,
		SinglePassConfFloor: cfg.Fusion.SinglePassConfFloor,
		OutlierUsableRatio:  cfg.Fusion.OutlierUsableRatio,
		RotationTieEpsilon:  cfg.Fusion.RotationTieEpsilon,
	}
	fuser := fusion.NewFuser(recognizer, fuserCfg, logger)

	layoutCfg := layout.Config{
		LineSpanHeightMult:      cfg.Layout.LineSpanHeightMult,
		LineHeightRatioMax:      cfg.Layout.LineHeightRatioMax,
		LineMinWidthPx:          cfg.Layout.LineMinWidthPx,
		LineWidthWordMult:       cfg.Layout.LineWidthWordMult,
		LineGapMinPx:            cfg.Layout.LineGapMinPx,
		LineGapWordMult:         cfg.Layout.LineGapWordMult,
		BlockGapLineHeightMult:  cfg.Layout.BlockGapLineHeightMult,
		BlockHorizOverlapMin:    cfg.Layout.BlockHorizOverlapMin,
		TwoColMergeVerticalMult: cfg.Layout.TwoColMergeVerticalMult,
		TwoColMergeMinPx:        cfg.Layout.TwoColMergeMinPx,
		TwoColMergeMaxPx:        cfg.Layout.TwoColMergeMaxPx,
		TwoColMergeWidthFrac:    cfg.Layout.TwoColMergeWidthFrac,
	}

	p := &Pipeline{
		rasteriser: rasteriser,
		recognizer: recognizer,
		splitter:   columns.NewSplitter(),
		fuser:      fuser,
		segmenter:  layout.NewSegmenter(layoutCfg),
		cfg:        cfg,
		logger:     logger,
	}
	p.orienter = orient.NewNormalizer(logger, p.probeRotation)
	return p
}

// probeRotation satisfies orient.Prober: it scores a candidate rotation
// by a single OCR pass's token count weighted by average confidence. This
// is simpler than internal/fusion's per-rotation score, which adds a
// text-length coherence term, takes the square root of the token count,
// and applies a cross-rotation outlier penalty.
func (p *Pipeline) probeRotation(ctx context.Context, candidate image.Image, rotation orient.Rotation) (float64, error) {
	words, err := p.recognizer.Recognize(ctx, candidate, 6)
	if err != nil {
		return 0, err
	}
	if len(words) == 0 {
		return 0, nil
	}
	sum := 0.0
	for _, w := range words {
		sum += w.Conf
	}
	avg := sum / float64(len(words))
	return avg * float64(len(words)), nil
}

// Run extracts path (a PDF or raster image) into a structured menu
// payload. Page failures degrade to a stage-kind log warning and are
// skipped; an unreadable document or a zero-page document is an input
// error that aborts the whole run.
func (p *Pipeline) Run(ctx context.Context, jobID, path string) (menu.StructuredMenuPayload, error) {
	log := p.logger.WithJob(jobID)

	pages, err := p.rasteriser.Rasterize(ctx, path)
	if err != nil {
		return menu.StructuredMenuPayload{}, menuerr.Input("rasterize document", err)
	}
	if len(pages) == 0 {
		return menu.StructuredMenuPayload{}, menuerr.Input("document has no pages", nil)
	}

	var allBlocks []*menu.TextBlock
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return menu.StructuredMenuPayload{}, err
		}

		pageLog := log.WithPage(page.PageNumber)
		blocks, err := p.processPage(ctx, pageLog, page)
		if err != nil {
			pageLog.Warn().Str("stage", "page").Err(err).Msg("page degraded, skipping")
			continue
		}
		allBlocks = append(allBlocks, blocks...)
	}

	payload := assemblePayload(allBlocks, jobID)
	return payload, nil
}

// processPage runs the full per-page stage sequence and returns the
// page's enriched, ordered text blocks.
func (p *Pipeline) processPage(ctx context.Context, pageLog *observability.Logger, page rasterize.Page) ([]*menu.TextBlock, error) {
	img, rotation, err := p.orienter.Normalize(ctx, page.Image)
	if err != nil {
		pageLog.Warn().Str("stage", "orient").Err(err).Msg("orientation probe failed, using page as-is")
		img = page.Image
	} else {
		pageLog.Debug().Str("stage", "orient").Int("rotation", int(rotation)).Msg("page normalized")
	}

	cols := p.splitter.Split(img)
	if len(cols) == 0 {
		return nil, menuerr.Stage("column split produced no columns", nil)
	}

	var pageBlocks []*menu.TextBlock
	for _, col := range cols {
		result, err := p.fuser.Fuse(ctx, col.Image)
		if err != nil {
			pageLog.Warn().Str("stage", "fusion").Int("column", col.Index).Err(err).Msg("column fuse failed, skipping column")
			continue
		}
		words := offsetWords(result.Words, col.Offset)
		blocks := p.segmenter.Segment(page.PageNumber, col.Index, words)
		pageBlocks = append(pageBlocks, blocks...)
	}
	if len(pageBlocks) == 0 {
		return nil, menuerr.Stage("layout produced no blocks", nil)
	}

	enrichGrammar(pageBlocks)
	pageBlocks = classifyAndCollapse(pageBlocks)
	reconstructDescriptions(pageBlocks)
	annotatePrices(pageBlocks)
	assignCategories(pageBlocks, p.cfg.Category.FallbackLabel)
	applyVariantEngine(pageBlocks)
	crossitem.Check(pageBlocks)
	for _, b := range pageBlocks {
		confidence.Score(b)
	}

	pageLog.Debug().Int("blocks", len(pageBlocks)).Msg("page processed")
	return pageBlocks, nil
}

// offsetWords translates fused words from a column image's own
// coordinate space back into the original page frame.
func offsetWords(words []menu.Word, offset image.Point) []menu.Word {
	out := make([]menu.Word, len(words))
	for i, w := range words {
		w.BBox.X += offset.X
		w.BBox.Y += offset.Y
		out[i] = w
	}
	return out
}
