package variant

import "github.com/menuforge/extractor-core/pkg/menu"

// kindBaseConfidence are the starting per-kind confidences before any
// context adjustment or price-flag penalty is applied.
var kindBaseConfidence = map[menu.VariantKind]float64{
	menu.KindSize:   0.90,
	menu.KindCombo:  0.85,
	menu.KindFlavor: 0.80,
	menu.KindStyle:  0.80,
	menu.KindOther:  0.60,
}

const emptyKindBaseConfidence = 0.50

// ScoringContext carries the per-block signal that nudges a variant's base
// confidence before price-flag penalties are applied.
type ScoringContext struct {
	// FromSizeGrid is true when the variant came from a fully 1:1 or
	// right-aligned size-grid mapping rather than a backward token walk.
	FromSizeGrid bool
	// GrammarConfident is true when the owning block's grammar
	// classification itself carried high confidence (>= 0.7).
	GrammarConfident bool
	// GrammarAmbiguous is true when the line type was a low-signal
	// fallback (e.g. description_only rescued into a variant guess).
	GrammarAmbiguous bool
}

// ScoreBaseConfidence assigns v.Confidence from its kind, then applies
// grammar-context and grid-origin adjustments. It records every component
// in v.ConfidenceDetails for audit. Price-flag
// penalties (variant_price_inversion, duplicate_group_key, etc.) are
// applied afterwards by ValidatePriceOrdering / CheckConsistency via
// penalize, which subtract directly from whatever ScoreBaseConfidence set.
func ScoreBaseConfidence(v *menu.OCRVariant, ctx ScoringContext) {
	base := emptyKindBaseConfidence
	if v.Label != "" {
		if b, ok := kindBaseConfidence[v.Kind]; ok {
			base = b
		}
	}

	adjustment := 0.0
	details := map[string]any{"kind_base": base}

	if ctx.GrammarConfident {
		adjustment += 0.05
		details["grammar_confident_bonus"] = 0.05
	}
	if ctx.GrammarAmbiguous {
		adjustment -= 0.10
		details["grammar_ambiguous_penalty"] = -0.10
	}
	if ctx.FromSizeGrid {
		adjustment += 0.05
		details["grid_origin_bonus"] = 0.05
	}

	confidence := base + adjustment
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	details["adjustment_total"] = adjustment
	details["base_plus_adjustment"] = confidence
	v.Confidence = confidence
	v.ConfidenceDetails = details
}

// ApplyFlagPenalty records a penalty against a variant's existing
// ConfidenceDetails audit trail, in addition to mutating Confidence via
// penalize. Kept separate from penalize so callers outside this package
// (the cross-item pass) can record audit detail without re-deriving the
// penalty amounts defined in this file.
func ApplyFlagPenalty(v *menu.OCRVariant, reason menu.Reason, amount float64) {
	penalize(v, amount)
	if v.ConfidenceDetails == nil {
		v.ConfidenceDetails = make(map[string]any)
	}
	penalties, _ := v.ConfidenceDetails["penalties"].([]map[string]any)
	penalties = append(penalties, map[string]any{"reason": string(reason), "amount": -amount})
	v.ConfidenceDetails["penalties"] = penalties
	v.ConfidenceDetails["confidence_after_penalties"] = v.Confidence
}
