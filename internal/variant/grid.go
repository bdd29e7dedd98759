package variant

import (
	"regexp"
	"strings"

	"github.com/menuforge/extractor-core/pkg/menu"
)

// gridColumnRe greedily coalesces a size-grid header token: "10"Mini" and
// "12" Sml" are each a single column.
var gridColumnRe = regexp.MustCompile(`(?i)(\d{1,2}\s*["\x{201d}°]\s*\w*|\b(?:mini|small|sml|sm|medium|med|large|lrg|lg|family|party|personal|regular|deluxe|x-large|xlarge|xl|xxl|half|whole|slice|single|double|triple)\b)`)

// ParseSizeGrid extracts the ordered column labels from a size_header
// block's text and builds a SizeGridContext.
func ParseSizeGrid(text string, sourceLineIndex int) menu.SizeGridContext {
	matches := gridColumnRe.FindAllString(text, -1)
	cols := make([]menu.SizeGridColumn, 0, len(matches))
	for i, m := range matches {
		raw := strings.TrimSpace(m)
		cols = append(cols, menu.SizeGridColumn{
			RawLabel:   raw,
			Normalized: normalizeGridLabel(raw),
			Position:   i,
		})
	}
	return menu.SizeGridContext{Columns: cols, SourceLineIndex: sourceLineIndex}
}

func normalizeGridLabel(raw string) string {
	if s := sizeFromLabel(raw); s != "" {
		return s
	}
	return raw
}

// GridStillActive reports whether an active grid survives a block of the
// given line type. It applies to a run of subsequent item blocks until one
// of three things happens: a new size_header replaces it (handled by the
// caller re-parsing), a canonical section heading appears, or the page
// ends. Every other block type, including the item blocks the grid is
// feeding and the non-expiring transit types (info_line, topping_list,
// description_only, price_only), leaves it active.
func GridStillActive(lineType menu.LineType, isCanonicalHeading bool) bool {
	if lineType == menu.LineHeading && isCanonicalHeading {
		return false
	}
	return true
}

// MapGridToVariants implements the grid-to-variant mapping rules: 1:1 when
// counts match, right-align when the item has fewer prices than the grid,
// and "grid does not apply" when the item has more prices than the grid
// (the caller should fall back to BackwardTokenWalk in that case).
func MapGridToVariants(grid menu.SizeGridContext, prices []menu.PriceMention) ([]menu.OCRVariant, bool) {
	n := len(grid.Columns)
	m := len(prices)

	if n == 0 || m == 0 {
		return nil, false
	}

	if m == n {
		return buildVariants(grid.Columns, prices, 0.85), true
	}
	if m < n {
		return buildVariants(grid.Columns[n-m:], prices, 0.75), true
	}
	return nil, false
}

func buildVariants(cols []menu.SizeGridColumn, prices []menu.PriceMention, confidence float64) []menu.OCRVariant {
	out := make([]menu.OCRVariant, len(prices))
	for i, p := range prices {
		label := cols[i].RawLabel
		v := menu.OCRVariant{
			Label:      label,
			PriceCents: int(p.Amount*100 + 0.5),
			Confidence: confidence,
		}
		EnrichVariant(&v)
		if v.NormalizedSize == "" && cols[i].Normalized != "" {
			v.NormalizedSize = cols[i].Normalized
			v.Kind = menu.KindSize
			v.GroupKey = "size:" + strings.ToLower(cols[i].Normalized)
		}
		out[i] = v
	}
	return out
}
