package grammar

import (
	"regexp"
	"strings"

	"github.com/menuforge/extractor-core/pkg/menu"
)

var columnGapRe = regexp.MustCompile(`\s{5,}`)

// ClassifyLines runs ParseLine over every line, then applies a contextual
// multi-pass: multi-column detection, heading-in-item-context
// reclassification, and unknown-heading-run rescue.
func ClassifyLines(lines []string) []menu.ParsedMenuItem {
	items := make([]menu.ParsedMenuItem, len(lines))
	for i, l := range lines {
		items[i] = ParseLine(l)
	}

	detectColumnMerges(items, lines)
	reclassifyHeadingsNearItems(items)
	reclassifyUnknownHeadingRuns(items)

	return items
}

// detectColumnMerges flags lines whose gaps of >= 5 spaces plausibly
// separate independent reading columns (pass 0).
func detectColumnMerges(items []menu.ParsedMenuItem, lines []string) {
	for i, line := range lines {
		segments := columnGapRe.Split(line, -1)
		if len(segments) < 2 {
			continue
		}
		var qualifying []string
		for _, seg := range segments {
			seg = strings.TrimSpace(seg)
			if seg == "" {
				continue
			}
			alphaCount := 0
			for _, r := range seg {
				if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
					alphaCount++
				}
			}
			if alphaCount >= 2 || priceRe.MatchString(seg) {
				qualifying = append(qualifying, seg)
			}
		}
		if len(qualifying) >= 2 {
			items[i].LineType = menu.LineMultiColumn
			items[i].ColumnSegments = qualifying
		}
	}
}

// reclassifyHeadingsNearItems reclassifies a non-canonical heading to
// menu_item when its nearest non-empty neighbour is description_only or
// price_only, or it's sandwiched between two items (pass 1).
func reclassifyHeadingsNearItems(items []menu.ParsedMenuItem) {
	for i := range items {
		if items[i].LineType != menu.LineHeading {
			continue
		}
		if isCanonicalHeading(items[i].ItemName) {
			continue
		}

		prev := nearestNonEmpty(items, i, -1)
		next := nearestNonEmpty(items, i, 1)

		prevIsItemish := prev != nil && (prev.LineType == menu.LineDescriptionOnly || prev.LineType == menu.LinePriceOnly || prev.LineType == menu.LineMenuItem)
		nextIsItemish := next != nil && (next.LineType == menu.LineDescriptionOnly || next.LineType == menu.LinePriceOnly || next.LineType == menu.LineMenuItem)

		if prevIsItemish && nextIsItemish {
			items[i].LineType = menu.LineMenuItem
		} else if (prev != nil && (prev.LineType == menu.LineDescriptionOnly || prev.LineType == menu.LinePriceOnly)) ||
			(next != nil && (next.LineType == menu.LineDescriptionOnly || next.LineType == menu.LinePriceOnly)) {
			items[i].LineType = menu.LineMenuItem
		}
	}
}

// reclassifyUnknownHeadingRuns reclassifies runs of >= 2 consecutive
// unknown headings (broken by blanks or canonical headings) to menu_item.
// Rescues melt lists, appetizer lists, and similar runs that look like
// headings in isolation but are really items.
func reclassifyUnknownHeadingRuns(items []menu.ParsedMenuItem) {
	i := 0
	for i < len(items) {
		if items[i].LineType != menu.LineHeading || isCanonicalHeading(items[i].ItemName) {
			i++
			continue
		}
		j := i
		for j < len(items) && items[j].LineType == menu.LineHeading && !isCanonicalHeading(items[j].ItemName) {
			j++
		}
		runLen := j - i
		if runLen >= 2 {
			for k := i; k < j; k++ {
				items[k].LineType = menu.LineMenuItem
			}
		}
		i = j + 1
	}
}

func isCanonicalHeading(name string) bool {
	low := strings.ToLower(strings.TrimSpace(name))
	lowClean := strings.TrimRight(low, "_!.")
	return knownSectionHeadings[low] || knownSectionHeadings[lowClean]
}

func nearestNonEmpty(items []menu.ParsedMenuItem, idx, dir int) *menu.ParsedMenuItem {
	for i := idx + dir; i >= 0 && i < len(items); i += dir {
		if items[i].LineType != menu.LineUnknown {
			return &items[i]
		}
	}
	return nil
}
