package crossitem

import (
	"regexp"
	"sort"
	"strings"

	"github.com/menuforge/extractor-core/internal/category"
	"github.com/menuforge/extractor-core/internal/variant"
	"github.com/menuforge/extractor-core/pkg/menu"
)

const (
	fuzzyRatioMin  = 0.82
	fuzzyMinLength = 4
)

var leadingPhraseRe = regexp.MustCompile(`^(our |the |homemade |fresh |classic )`)
var trailingPunctRe = regexp.MustCompile(`[.,;:!?\-\s]+$`)
var priceStripRe = regexp.MustCompile(`\$?\d+\.\d{2}`)
var ws = regexp.MustCompile(`\s+`)

// Check runs the full cross-item consistency pass over the enriched text
// blocks for one page or document, annotating each block's PriceFlags in
// place. blocks must already carry grammar, category, and variant
// enrichment.
func Check(blocks []*menu.TextBlock) {
	checkDuplicateNames(blocks)
	checkCategoryPriceOutliers(blocks)
	checkCategoryIsolation(blocks)
	checkCategorySuggestion(blocks)
	checkCrossCategoryCoherence(blocks)
	checkVariantCountConsistency(blocks)
	checkVariantLabelConsistency(blocks)
	checkPriceStepConsistency(blocks)
}

// comparableName extracts the name to use for duplicate detection:
// grammar's parsed name first, then the block's merged text with any
// price stripped out.
func comparableName(b *menu.TextBlock) string {
	if b.Grammar != nil && strings.TrimSpace(b.Grammar.ItemName) != "" {
		return b.Grammar.ItemName
	}
	return strings.TrimSpace(priceStripRe.ReplaceAllString(b.MergedText, ""))
}

func normalizeName(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = leadingPhraseRe.ReplaceAllString(s, "")
	s = ws.ReplaceAllString(s, " ")
	s = trailingPunctRe.ReplaceAllString(s, "")
	return s
}

func checkDuplicateNames(blocks []*menu.TextBlock) {
	type named struct {
		idx  int
		name string
	}
	var names []named
	for i, b := range blocks {
		n := normalizeName(comparableName(b))
		if n == "" {
			continue
		}
		names = append(names, named{idx: i, name: n})
	}

	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			a, b := names[i], names[j]
			exact := a.name == b.name
			var fuzzy bool
			if !exact && len(a.name) >= fuzzyMinLength && len(b.name) >= fuzzyMinLength {
				fuzzy = ratio(a.name, b.name) >= fuzzyRatioMin
			}
			if !exact && !fuzzy {
				continue
			}

			priceA := blocks[a.idx].PrimaryPriceCents()
			priceB := blocks[b.idx].PrimaryPriceCents()
			pricesMatch := priceA != nil && priceB != nil && *priceA == *priceB

			var reason menu.Reason
			switch {
			case exact && pricesMatch:
				reason = menu.ReasonCrossItemExactDuplicate
			case exact && !pricesMatch:
				reason = menu.ReasonCrossItemDuplicateName
			case !exact && pricesMatch:
				reason = menu.ReasonCrossItemFuzzyExactDuplicate
			default:
				reason = menu.ReasonCrossItemFuzzyDuplicate
			}
			severity := menu.SeverityWarn
			if pricesMatch {
				severity = menu.SeverityInfo
			}

			details := map[string]any{
				"other_index": b.idx,
				"other_name":  b.name,
			}
			blocks[a.idx].AddPriceFlag(severity, reason, details)
			blocks[b.idx].AddPriceFlag(severity, reason, map[string]any{
				"other_index": a.idx,
				"other_name":  a.name,
			})
		}
	}
}

func groupByCategory(blocks []*menu.TextBlock) map[string][]int {
	groups := make(map[string][]int)
	for i, b := range blocks {
		if b.Category == "" {
			continue
		}
		groups[b.Category] = append(groups[b.Category], i)
	}
	return groups
}

func primaryPricedIndices(blocks []*menu.TextBlock, indices []int) ([]int, []int) {
	var idxs, prices []int
	for _, i := range indices {
		if blocks[i].PriceRole != "" && blocks[i].PriceRole != menu.PriceRolePrimary {
			continue
		}
		p := blocks[i].PrimaryPriceCents()
		if p == nil || *p <= 0 {
			continue
		}
		idxs = append(idxs, i)
		prices = append(prices, *p)
	}
	return idxs, prices
}

func checkCategoryPriceOutliers(blocks []*menu.TextBlock) {
	for _, indices := range groupByCategory(blocks) {
		idxs, prices := primaryPricedIndices(blocks, indices)
		if len(prices) < 3 {
			continue
		}
		m := median(prices)
		eff := effectiveMAD(prices)
		if eff <= 0 {
			continue
		}
		for k, idx := range idxs {
			dev := absF(float64(prices[k]) - m)
			if dev <= 3*eff {
				continue
			}
			direction := "above"
			if float64(prices[k]) < m {
				direction = "below"
			}
			blocks[idx].AddPriceFlag(menu.SeverityWarn, menu.ReasonCrossItemCategoryPriceOutlier, map[string]any{
				"median_cents":    m,
				"effective_mad":   eff,
				"observed_cents":  prices[k],
				"direction":       direction,
			})
		}
	}
}

func checkCategoryIsolation(blocks []*menu.TextBlock) {
	for i, b := range blocks {
		if b.Category == "" {
			continue
		}
		lo, hi := windowBounds(i, len(blocks), 2)
		var neighborCats []string
		for j := lo; j <= hi; j++ {
			if j == i || blocks[j].Category == "" {
				continue
			}
			neighborCats = append(neighborCats, blocks[j].Category)
		}
		if len(neighborCats) < 2 {
			continue
		}
		isolated := true
		for _, c := range neighborCats {
			if c == b.Category {
				isolated = false
				break
			}
		}
		if !isolated {
			continue
		}
		blocks[i].AddPriceFlag(menu.SeverityInfo, menu.ReasonCrossItemCategoryIsolated, map[string]any{
			"category":           b.Category,
			"neighbor_categories": neighborCats,
		})
	}
}

func windowBounds(i, n, radius int) (int, int) {
	lo := i - radius
	if lo < 0 {
		lo = 0
	}
	hi := i + radius
	if hi >= n {
		hi = n - 1
	}
	return lo, hi
}

func checkCategorySuggestion(blocks []*menu.TextBlock) {
	for i, b := range blocks {
		if b.Category == "" {
			continue
		}
		lo, hi := windowBounds(i, len(blocks), 3)
		counts := make(map[string]int)
		total := 0
		for j := lo; j <= hi; j++ {
			if j == i || blocks[j].Category == "" {
				continue
			}
			counts[blocks[j].Category]++
			total++
		}
		if total < 3 {
			continue
		}

		dominant, dominantCount := "", 0
		for cat, c := range counts {
			if c > dominantCount {
				dominant, dominantCount = cat, c
			}
		}
		if dominant == "" || dominant == b.Category {
			continue
		}
		agreement := float64(dominantCount) / float64(total)
		if agreement < 0.60 {
			continue
		}

		name := comparableName(blocks[i])
		if category.KeywordHits(name, b.Category) >= 2 {
			continue
		}

		keywordDelta := 0.05 * float64(category.KeywordHits(name, dominant)-category.KeywordHits(name, b.Category))

		priceBandDelta := 0.0
		if p := blocks[i].PrimaryPriceCents(); p != nil {
			if band, ok := category.PriceBandOf(dominant); ok && *p >= band.Min && *p <= band.Max {
				priceBandDelta += 0.10
			}
			if band, ok := category.PriceBandOf(b.Category); ok && (*p < band.Min || *p > band.Max) {
				priceBandDelta += 0.10
			}
		}

		confidenceDelta := (100 - float64(b.CategoryConfidence)) / 100.0 * 0.10

		confidence := 0.40*agreement + keywordDelta + priceBandDelta + confidenceDelta
		if confidence < 0.30 {
			continue
		}

		blocks[i].AddPriceFlag(menu.SeverityInfo, menu.ReasonCrossItemCategorySuggestion, map[string]any{
			"current_category":    b.Category,
			"suggested_category":  dominant,
			"neighbor_agreement":  agreement,
			"confidence":           confidence,
		})
	}
}

// coherenceRules is the closed (cheap, expensive) category-pair list. A
// rule is active when the expensive category's median price is at least
// 1.3 times the cheap category's; cheap items priced above the expensive
// median and expensive items priced below the cheap median are flagged.
var coherenceRules = [][2]string{
	{category.Beverages, category.Pizza},
	{category.Beverages, category.Burgers},
	{category.Beverages, category.Subs},
	{category.Beverages, category.Pasta},
	{category.Beverages, category.Wings},
	{category.Beverages, category.Calzones},
	{category.Sides, category.Pizza},
	{category.Sides, category.Burgers},
	{category.Sides, category.Pasta},
	{category.Sides, category.Calzones},
	{category.Desserts, category.Pasta},
	{category.Desserts, category.Burgers},
}

func checkCrossCategoryCoherence(blocks []*menu.TextBlock) {
	groups := groupByCategory(blocks)

	type flagCandidate struct {
		idx   int
		gap   float64
		other string
	}
	above := make(map[int]flagCandidate)
	below := make(map[int]flagCandidate)

	for _, rule := range coherenceRules {
		cheapCat, expCat := rule[0], rule[1]
		cheapIdxs, cheapPrices := primaryPricedIndices(blocks, groups[cheapCat])
		expIdxs, expPrices := primaryPricedIndices(blocks, groups[expCat])
		if len(cheapPrices) < 2 || len(expPrices) < 2 {
			continue
		}
		cheapMedian := median(cheapPrices)
		expMedian := median(expPrices)
		if expMedian < 1.3*cheapMedian {
			continue
		}

		for k, idx := range cheapIdxs {
			if float64(cheapPrices[k]) <= expMedian {
				continue
			}
			gap := float64(cheapPrices[k]) - expMedian
			if existing, ok := above[idx]; !ok || gap > existing.gap {
				above[idx] = flagCandidate{idx: idx, gap: gap, other: expCat}
			}
		}
		for k, idx := range expIdxs {
			if float64(expPrices[k]) >= cheapMedian {
				continue
			}
			gap := cheapMedian - float64(expPrices[k])
			if existing, ok := below[idx]; !ok || gap > existing.gap {
				below[idx] = flagCandidate{idx: idx, gap: gap, other: cheapCat}
			}
		}
	}

	for idx, c := range above {
		blocks[idx].AddPriceFlag(menu.SeverityWarn, menu.ReasonCrossCategoryPriceAbove, map[string]any{
			"compared_category": c.other,
			"gap_cents":          c.gap,
		})
	}
	for idx, c := range below {
		blocks[idx].AddPriceFlag(menu.SeverityWarn, menu.ReasonCrossCategoryPriceBelow, map[string]any{
			"compared_category": c.other,
			"gap_cents":          c.gap,
		})
	}
}

func checkVariantCountConsistency(blocks []*menu.TextBlock) {
	for _, indices := range groupByCategory(blocks) {
		var withVariants []int
		var counts []int
		for _, i := range indices {
			n := len(blocks[i].Variants)
			if n >= 2 {
				withVariants = append(withVariants, i)
				counts = append(counts, n)
			}
		}
		if len(withVariants) < 3 {
			continue
		}
		modeCount, _ := mode(counts)
		threshold := modeCount - 2
		for k, idx := range withVariants {
			if counts[k] <= threshold {
				blocks[idx].AddPriceFlag(menu.SeverityInfo, menu.ReasonCrossItemVariantCountOutlier, map[string]any{
					"variant_count": counts[k],
					"mode_count":    modeCount,
				})
			}
		}
	}
}

func labelSet(b *menu.TextBlock) map[string]bool {
	set := make(map[string]bool)
	for _, v := range b.Variants {
		if v.Kind == menu.KindSize && v.NormalizedSize != "" {
			set[v.NormalizedSize] = true
		}
	}
	return set
}

func isSubsetOrSuperset(a, b map[string]bool) bool {
	return isSubset(a, b) || isSubset(b, a)
}

func isSubset(a, b map[string]bool) bool {
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

func setKey(s map[string]bool) string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}

func checkVariantLabelConsistency(blocks []*menu.TextBlock) {
	for _, indices := range groupByCategory(blocks) {
		var withSizes []int
		var sets []map[string]bool
		for _, i := range indices {
			s := labelSet(blocks[i])
			if len(s) >= 2 {
				withSizes = append(withSizes, i)
				sets = append(sets, s)
			}
		}
		if len(withSizes) < 3 {
			continue
		}

		freq := make(map[string]int)
		repr := make(map[string]map[string]bool)
		for _, s := range sets {
			k := setKey(s)
			freq[k]++
			repr[k] = s
		}
		dominantKey, dominantCount := "", 0
		for k, c := range freq {
			if c > dominantCount {
				dominantKey, dominantCount = k, c
			}
		}
		if dominantKey == "" || float64(dominantCount)/float64(len(sets)) < 0.60 {
			continue
		}
		dominant := repr[dominantKey]

		for k, idx := range withSizes {
			if isSubsetOrSuperset(sets[k], dominant) {
				continue
			}
			blocks[idx].AddPriceFlag(menu.SeverityInfo, menu.ReasonCrossItemVariantLabelMismatch, map[string]any{
				"labels":          setKey(sets[k]),
				"dominant_labels": dominantKey,
			})
		}
	}
}

func itemAvgPositiveStep(b *menu.TextBlock) (float64, bool) {
	byTrack := make(map[menu.Track][]menu.OCRVariant)
	for _, v := range b.Variants {
		track, _, ok := variant.TrackAndOrdinal(v)
		if !ok {
			continue
		}
		byTrack[track] = append(byTrack[track], v)
	}

	var steps []float64
	for _, vs := range byTrack {
		sort.Slice(vs, func(i, j int) bool {
			_, oi, _ := variant.TrackAndOrdinal(vs[i])
			_, oj, _ := variant.TrackAndOrdinal(vs[j])
			return oi < oj
		})
		for i := 1; i < len(vs); i++ {
			step := float64(vs[i].PriceCents - vs[i-1].PriceCents)
			if step > 0 {
				steps = append(steps, step)
			}
		}
	}
	if len(steps) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, s := range steps {
		sum += s
	}
	return sum / float64(len(steps)), true
}

func checkPriceStepConsistency(blocks []*menu.TextBlock) {
	for _, indices := range groupByCategory(blocks) {
		var withSteps []int
		var avgs []float64
		for _, i := range indices {
			avg, ok := itemAvgPositiveStep(blocks[i])
			if ok {
				withSteps = append(withSteps, i)
				avgs = append(avgs, avg)
			}
		}
		if len(avgs) < 3 {
			continue
		}
		m := medianFloat(avgs)
		eff := effectiveMADFloat(avgs, 0.15)
		if eff <= 0 {
			continue
		}
		for k, idx := range withSteps {
			if absF(avgs[k]-m) <= 3*eff {
				continue
			}
			blocks[idx].AddPriceFlag(menu.SeverityInfo, menu.ReasonCrossItemPriceStepOutlier, map[string]any{
				"avg_step_cents":    avgs[k],
				"median_step_cents": m,
			})
		}
	}
}
