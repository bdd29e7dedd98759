// Package variant implements the size/flavor/style variant engine:
// size-grid mapping, backward-token-walk fallback, variant enrichment,
// monotonic price validation, consistency checks, and per-variant
// confidence scoring.
//
// Grounded on original_source/storage/variant_engine.py (enrichment) and
// original_source/storage/price_integrity.py (role classification and
// decimal-shift correction).
package variant

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/menuforge/extractor-core/internal/sizevocab"
	"github.com/menuforge/extractor-core/pkg/menu"
)

var styleTokens = map[string]bool{
	"bone-in": true, "bone in": true, "boneless": true,
	"thin": true, "thin crust": true, "thick": true, "deep dish": true, "stuffed crust": true,
	"white": true, "red": true, "red sauce": true, "alfredo": true, "pesto": true,
}

var flavorTokens = map[string]bool{
	"hot": true, "mild": true, "medium": true, "honey": true, "bbq": true, "barbecue": true, "honey bbq": true,
	"garlic": true, "parm": true, "parmesan": true, "garlic parm": true, "teriyaki": true,
	"buffalo": true, "spicy": true, "sweet": true, "sour": true, "honey mustard": true,
	"lemon": true, "pepper": true, "lemon pepper": true,
}

var connectorWords = map[string]bool{
	"and": true, "or": true, "&": true, "+": true, "w/": true, "with": true, "for": true,
}

var comboWSlashRe = regexp.MustCompile(`(?i)^w/\s*(.+)$`)

// EnrichVariant classifies a variant's kind, normalized_size, and group_key
// from its label alone (original_source's _enrich_variant, generalized to
// the sizevocab track/ordinal system).
func EnrichVariant(v *menu.OCRVariant) {
	label := strings.TrimSpace(v.Label)
	if label == "" {
		v.Kind = menu.KindOther
		return
	}

	if m := comboWSlashRe.FindStringSubmatch(label); m != nil {
		v.Kind = menu.KindCombo
		v.KindHint = "combo"
		v.GroupKey = "combo:" + strings.ToLower(strings.TrimSpace(m[1]))
		return
	}

	if normalized := sizeFromLabel(label); normalized != "" {
		v.Kind = menu.KindSize
		v.NormalizedSize = normalized
		v.GroupKey = "size:" + strings.ToLower(normalized)
		return
	}

	low := strings.ToLower(label)
	for token := range styleTokens {
		if strings.Contains(low, token) {
			v.Kind = menu.KindStyle
			v.GroupKey = "style:" + low
			return
		}
	}
	for token := range flavorTokens {
		if strings.Contains(low, token) {
			v.Kind = menu.KindFlavor
			v.GroupKey = "flavor:" + low
			return
		}
	}

	v.Kind = menu.KindOther
}

// sizeFromLabel tries numeric inch/piece patterns, then known size words,
// returning the canonical normalized size string or "" if none matched.
func sizeFromLabel(label string) string {
	low := strings.ToLower(label)

	if m := sizevocab.NumericSizeRe.FindString(low); m != "" {
		return sizevocab.NormalizeSizeToken(m)
	}

	for _, word := range sizevocab.FindSizeWords(low) {
		return sizevocab.NormalizeSizeToken(word)
	}
	return ""
}

// BackwardTokenWalk builds a variant label from the (at most two) tokens
// immediately before a price position, dropping known connectors among
// them.
// w/<FOOD> and WI<FOOD> OCR fusions are handled upstream by
// internal/grammar's W/ normalisation, so by the time a label reaches here
// "with food" has already become the connector-skipped phrase.
func BackwardTokenWalk(tokens []string, priceIdx int) string {
	var picked []string
	for i := priceIdx - 1; i >= 0 && i >= priceIdx-2; i-- {
		tok := strings.TrimSpace(tokens[i])
		low := strings.ToLower(tok)
		if tok == "" {
			continue
		}
		if connectorWords[low] {
			continue
		}
		picked = append([]string{tok}, picked...)
	}
	return strings.Join(picked, " ")
}

// TrackAndOrdinal resolves the (track, ordinal) pair for an enriched
// variant's normalized size, if it has one.
func TrackAndOrdinal(v menu.OCRVariant) (menu.Track, int, bool) {
	if v.Kind != menu.KindSize || v.NormalizedSize == "" {
		return "", 0, false
	}
	return sizevocab.TrackAndOrdinal(v.NormalizedSize)
}

func groupKeyForPrint(v menu.OCRVariant) string {
	return fmt.Sprintf("%s(%s)", v.GroupKey, v.Label)
}
