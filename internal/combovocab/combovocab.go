// Package combovocab is the side-food lexicon used to detect combo
// modifiers: "w/FRIES" style upgrades that add a side item to a base
// price. Grounded on original_source/storage/parsers/combo_vocab.py.
package combovocab

import (
	"regexp"
	"sort"
	"strings"
)

// ComboFoods is the closed set of recognized combo side-item names.
var ComboFoods = map[string]bool{
	"fries": true, "frie": true, "french fries": true, "curly fries": true,
	"waffle fries": true, "sweet potato fries": true, "steak fries": true,
	"seasoned fries": true, "onion rings": true, "onion ring": true,
	"tater tots": true, "tots": true, "fried pickles": true, "fried mushrooms": true,
	"chips": true, "chip": true, "potato chips": true,
	"coleslaw": true, "cole slaw": true, "slaw": true,
	"side salad": true, "garden salad": true, "caesar salad": true,
	"house salad": true, "salad": true,
	"vegetables": true, "veggies": true, "mixed vegetables": true,
	"rice": true, "fried rice": true, "white rice": true, "brown rice": true,
	"mashed potatoes": true, "mashed potato": true, "baked potato": true,
	"potato salad": true, "mac and cheese": true, "macaroni and cheese": true,
	"cheese": true, "extra cheese": true,
	"drink": true, "soda": true, "beverage": true, "fountain drink": true,
	"soup": true, "side soup": true, "cup of soup": true,
	"garlic bread": true, "breadsticks": true, "bread": true,
}

var comboPatternRe = buildComboPattern()

func buildComboPattern() *regexp.Regexp {
	foods := make([]string, 0, len(ComboFoods))
	for f := range ComboFoods {
		foods = append(foods, f)
	}
	sort.Slice(foods, func(i, j int) bool { return len(foods[i]) > len(foods[j]) })
	escaped := make([]string, len(foods))
	for i, f := range foods {
		escaped[i] = regexp.QuoteMeta(f)
	}
	return regexp.MustCompile(`(?i)\b(?:w/|with)\s+(` + strings.Join(escaped, "|") + `)\b`)
}

// IsComboFood reports whether token matches a known combo food item.
func IsComboFood(token string) bool {
	return ComboFoods[strings.ToLower(strings.TrimSpace(token))]
}

// ExtractComboHints returns combo food names found after "w/" or "with" in
// text, in order of appearance, lowercased.
func ExtractComboHints(text string) []string {
	matches := comboPatternRe.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.ToLower(strings.TrimSpace(m[1])))
	}
	return out
}
