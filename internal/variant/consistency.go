package variant

import (
	"github.com/menuforge/extractor-core/internal/sizevocab"
	"github.com/menuforge/extractor-core/pkg/menu"
)

// CheckConsistency runs the remaining variant-level consistency checks:
// duplicate group keys, zero-price variants, mixed-kind surprises, and
// missing intermediate sizes within a linear size chain.
func CheckConsistency(block *menu.TextBlock) {
	if len(block.Variants) == 0 {
		return
	}

	checkDuplicateGroupKeys(block)
	checkZeroPrices(block)
	checkMixedKinds(block)
	checkSizeGaps(block)
}

func checkDuplicateGroupKeys(block *menu.TextBlock) {
	seen := make(map[string]int)
	var dupes []string
	for _, v := range block.Variants {
		if v.GroupKey == "" {
			continue
		}
		seen[v.GroupKey]++
		if seen[v.GroupKey] == 2 {
			dupes = append(dupes, v.GroupKey)
		}
	}
	if len(dupes) == 0 {
		return
	}
	block.AddPriceFlag(menu.SeverityWarn, menu.ReasonDuplicateGroupKey, map[string]any{
		"group_keys": dupes,
	})
	for i := range block.Variants {
		if seen[block.Variants[i].GroupKey] > 1 {
			ApplyFlagPenalty(&block.Variants[i], menu.ReasonDuplicateGroupKey, 0.10)
		}
	}
}

func checkZeroPrices(block *menu.TextBlock) {
	var labels []string
	for i, v := range block.Variants {
		if v.PriceCents <= 0 {
			labels = append(labels, v.Label)
			ApplyFlagPenalty(&block.Variants[i], menu.ReasonZeroPriceVariant, 0.20)
		}
	}
	if len(labels) == 0 {
		return
	}
	block.AddPriceFlag(menu.SeverityWarn, menu.ReasonZeroPriceVariant, map[string]any{
		"labels": labels,
	})
}

func checkMixedKinds(block *menu.TextBlock) {
	kinds := make(map[menu.VariantKind]bool)
	for _, v := range block.Variants {
		kinds[v.Kind] = true
	}
	if len(kinds) <= 1 {
		return
	}
	// A size variant mixed with a non-size, non-other kind on the same
	// item is surprising: sizes and flavors/styles are normally mutually
	// exclusive variant dimensions within one grid.
	hasSize := kinds[menu.KindSize]
	hasFlavorOrStyle := kinds[menu.KindFlavor] || kinds[menu.KindStyle]
	if !(hasSize && hasFlavorOrStyle) {
		return
	}
	var list []string
	for k := range kinds {
		list = append(list, string(k))
	}
	block.AddPriceFlag(menu.SeverityInfo, menu.ReasonMixedKindVariants, map[string]any{
		"kinds": list,
	})
	for i := range block.Variants {
		ApplyFlagPenalty(&block.Variants[i], menu.ReasonMixedKindVariants, 0.05)
	}
}

func checkSizeGaps(block *menu.TextBlock) {
	byTrack := make(map[menu.Track][]string)
	for _, v := range block.Variants {
		track, _, ok := TrackAndOrdinal(v)
		if !ok {
			continue
		}
		byTrack[track] = append(byTrack[track], v.NormalizedSize)
	}

	for track, present := range byTrack {
		gaps := sizevocab.LinearGapsInChain(track, present)
		if len(gaps) == 0 {
			continue
		}
		block.AddPriceFlag(menu.SeverityInfo, menu.ReasonSizeGap, map[string]any{
			"track":          string(track),
			"missing_sizes":  gaps,
			"present_sizes":  present,
		})
		for i := range block.Variants {
			if t, _, ok := TrackAndOrdinal(block.Variants[i]); ok && t == track {
				ApplyFlagPenalty(&block.Variants[i], menu.ReasonSizeGap, 0.05)
			}
		}
	}
}
