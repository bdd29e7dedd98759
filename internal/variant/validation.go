package variant

import (
	"sort"
	"strings"

	"github.com/menuforge/extractor-core/pkg/menu"
)

// ValidatePriceOrdering checks, within each size track present in
// variants, that every strictly-ordinal pair (a, b) with a.ordinal <
// b.ordinal satisfies a.price_cents <= b.price_cents. Violations produce
// a single variant_price_inversion flag per track listing the ordered
// inversions and the actual price sequence.
func ValidatePriceOrdering(block *menu.TextBlock) {
	byTrack := make(map[menu.Track][]trackedVariant)
	for i, v := range block.Variants {
		track, ordinal, ok := TrackAndOrdinal(v)
		if !ok {
			continue
		}
		byTrack[track] = append(byTrack[track], trackedVariant{index: i, ordinal: ordinal, variant: v})
	}

	for track, tracked := range byTrack {
		sort.Slice(tracked, func(i, j int) bool { return tracked[i].ordinal < tracked[j].ordinal })

		var inversions []map[string]any
		sequence := make([]int, len(tracked))
		for i, tv := range tracked {
			sequence[i] = tv.variant.PriceCents
		}

		for i := 0; i < len(tracked); i++ {
			for j := i + 1; j < len(tracked); j++ {
				a, b := tracked[i], tracked[j]
				if a.ordinal < b.ordinal && a.variant.PriceCents > b.variant.PriceCents {
					inversions = append(inversions, map[string]any{
						"lower_label":  a.variant.Label,
						"lower_cents":  a.variant.PriceCents,
						"higher_label": b.variant.Label,
						"higher_cents": b.variant.PriceCents,
					})
				}
			}
		}

		if len(inversions) > 0 {
			block.AddPriceFlag(menu.SeverityWarn, menu.ReasonVariantPriceInversion, map[string]any{
				"track":      string(track),
				"inversions": inversions,
				"sequence":   sequence,
			})
			for _, tv := range tracked {
				idx := tv.index
				ApplyFlagPenalty(&block.Variants[idx], menu.ReasonVariantPriceInversion, 0.15)
			}
		}
	}
}

type trackedVariant struct {
	index   int
	ordinal int
	variant menu.OCRVariant
}

// PriceRole classification (original_source/storage/price_integrity.py
// _is_side_price_item / _is_coupon_or_deal_item), lightly adapted: it
// operates on a block's merged text instead of a dict item.
var sideHints = []string{
	"add ", "extra ", "side of", "side:", "topping", "toppings",
	"each topping", "per topping", "extra cheese", "add cheese",
	"add bacon", "add pepperoni", "extra sauce", "cup of sauce",
	"ranch", "blue cheese", "bleu cheese", "dressing", "jalapeños",
	"peppers", "mushrooms", "onions", "olive", "olives",
	"garlic knots", "breadsticks", "fries", "chips",
}

var couponHints = []string{
	"coupon", "special", "specials", "deal", "family deal", "family special",
	"combo", "combos", "meal deal", "value meal",
	"2 for", "two for", "3 for", "three for",
	"buy 1", "buy one", "get 1", "get one", "bogo",
	"any 2", "any two", "pick any", "choose any",
	"only", "for only", "just",
}

var sideCategories = map[string]bool{"toppings": true, "extras": true, "sides": true, "dressings": true}

// ClassifyPriceRole assigns PriceRolePrimary/Side/Coupon to a block based
// on its text and category, and flags side/coupon roles.
func ClassifyPriceRole(block *menu.TextBlock) {
	text := strings.ToLower(strings.TrimSpace(block.MergedText))
	role := menu.PriceRolePrimary

	switch {
	case isCouponOrDeal(text):
		role = menu.PriceRoleCoupon
	case isSidePrice(text, strings.ToLower(block.Category)):
		role = menu.PriceRoleSide
	}
	block.PriceRole = role

	switch role {
	case menu.PriceRoleSide:
		block.AddPriceFlag(menu.SeverityInfo, menu.ReasonSidePriceCandidate, map[string]any{
			"hint": "Likely add-on / extra / topping line",
		})
	case menu.PriceRoleCoupon:
		block.AddPriceFlag(menu.SeverityInfo, menu.ReasonCouponOrDealLine, map[string]any{
			"hint": "Likely coupon / combo / deal line; do not treat as base item price",
		})
	}
}

func isSidePrice(text, category string) bool {
	if text == "" {
		return false
	}
	if len(text) <= 64 {
		for _, hint := range sideHints {
			if strings.Contains(text, hint) {
				return true
			}
		}
	}
	return sideCategories[category]
}

func isCouponOrDeal(text string) bool {
	if text == "" {
		return false
	}
	for _, hint := range couponHints {
		if strings.Contains(text, hint) {
			return true
		}
	}
	if len(text) > 80 && (strings.Contains(text, " and ") || strings.Contains(text, " + ")) {
		return true
	}
	return false
}

// candidateDivisors for decimal-shift correction.
var candidateDivisors = []int{10, 100, 1000}

// SuggestDecimalCorrection attempts to fix an outlier price by dividing
// by 10/100/1000, accepting the candidate only if it lands within
// [$0.25, $500] and the original price is at least 5x further from the
// group median than the corrected candidate. Grounded on
// original_source/storage/price_integrity.py's _suggest_decimal_correction.
func SuggestDecimalCorrection(priceCents, medianCents int) (correctedCents int, divisor int, ok bool) {
	if medianCents <= 0 {
		return 0, 0, false
	}

	bestRatio := -1.0
	bestCandidate := 0
	bestDivisor := 0

	for _, d := range candidateDivisors {
		if priceCents%d != 0 {
			continue
		}
		cand := priceCents / d
		if cand <= 25 || cand >= 50000 {
			continue
		}
		ratio := absF(float64(cand-medianCents)) / float64(medianCents)
		if bestRatio < 0 || ratio < bestRatio {
			bestRatio = ratio
			bestCandidate = cand
			bestDivisor = d
		}
	}

	if bestCandidate == 0 {
		return 0, 0, false
	}

	originalRatio := absF(float64(priceCents-medianCents)) / float64(medianCents)
	if originalRatio <= 5*bestRatio {
		return 0, 0, false
	}
	return bestCandidate, bestDivisor, true
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// CheckAndFixPrice flags a primary-role block's price as an outlier if it
// deviates more than 4 effective-IQRs from the group median, attempting a
// decimal-shift auto-fix first.
func CheckAndFixPrice(block *menu.TextBlock, priceCents, medianCents, iqrCents int) {
	if priceCents <= 0 {
		return
	}
	if iqrCents < 1 {
		iqrCents = 1
	}
	deviation := absF(float64(priceCents - medianCents))
	zIQR := deviation / float64(iqrCents)
	if zIQR <= 4 {
		return
	}

	if corrected, divisor, ok := SuggestDecimalCorrection(priceCents, medianCents); ok {
		c := corrected
		block.CorrectedPriceCents = &c
		block.AddPriceFlag(menu.SeverityAutoFix, menu.ReasonDecimalShiftCorrected, map[string]any{
			"original_cents":           priceCents,
			"corrected_cents":          corrected,
			"median_cents":             medianCents,
			"divisor":                  divisor,
			"original_ratio_to_median": absF(float64(priceCents-medianCents)) / float64(medianCents),
		})
		return
	}

	block.AddPriceFlag(menu.SeverityWarn, menu.ReasonPriceOutlier, map[string]any{
		"observed_cents":  priceCents,
		"median_cents":    medianCents,
		"deviation_iqr":   zIQR,
	})
}

func penalize(v *menu.OCRVariant, amount float64) {
	v.Confidence -= amount
	if v.Confidence < 0 {
		v.Confidence = 0
	}
	if v.Confidence > 1 {
		v.Confidence = 1
	}
}
