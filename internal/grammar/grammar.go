// Package grammar implements the menu-domain line grammar: a fixed
// pipeline of early-returning classification steps that turns one
// merged-text line into a ParsedMenuItem, plus a contextual multi-pass
// that reclassifies lines using their neighbours.
//
// Grounded on original_source/storage/parsers/menu_grammar.py.
package grammar

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/menuforge/extractor-core/internal/combovocab"
	"github.com/menuforge/extractor-core/internal/sizevocab"
	"github.com/menuforge/extractor-core/pkg/menu"
)

var priceRe = regexp.MustCompile(`\$?\d{1,3}[.,]\d{1,2}`)
var priceOnlyRe = regexp.MustCompile(`^[\s.\-–—»·,;:$]*\$?\s*(\d{1,3}[.,]\d{2})\s*$`)
var dimensionLineRe = regexp.MustCompile(`(?i)^\d{1,3}\s*x\s*\d{1,3}\s*["°\x{201d}]?\s*$`)
var dotRunRe = regexp.MustCompile(`\.{2,}`)
var garbleSpanRe = regexp.MustCompile(`[a-zA-Z]{5,}`)
var tripleRepeatRe = regexp.MustCompile(`(?i)(.)\1{2,}`)

var garbleChars = map[rune]bool{'s': true, 'e': true, 'c': true, 'r': true, 'n': true, 'o': true, 't': true, 'v': true, 'w': true}

var toppingListRe = regexp.MustCompile(`(?i)^\s*(?:MEAT|VEGGIE|VEGETABLE|PIZZA|CALZONE)\s+TOPPINGS?\s*:`)
var infoLineRe = regexp.MustCompile(`(?i)^\s*(?:Choice of\b|All\s+(?:\w+\s+){1,4}(?:come|stuffed|served|include)\b|Served with\b|Add\s+\$|Add\s+\w+\s+\$|\w+\s+toppings?\s+same\b)`)
var flavorListRe = regexp.MustCompile(`^[A-Z][A-Z,;\s&]+$`)
var optionLineRe = regexp.MustCompile(`(?i)^\s*\w+(?:\s+\w+)?\s+or\s+\w+(?:\s+\w+)?\s*$`)

var sizeHeaderTokenRe = regexp.MustCompile(`(?i)\d{1,2}\s*["\x{201d}°]\s*\w*|\b(?:mini|small|sml|sm|medium|med|large|lrg|lg|family|party|personal|regular|deluxe)\b|\b\d+\s*(?:slices?|pieces?|pcs?|cuts?)\b`)

var separatorRe = regexp.MustCompile(`\s+[-–—]\s+|\s*:\s+|\s*[•·]\s*`)

var modifierRe = regexp.MustCompile(`(?i)\b(extra|add|no|without|hold the|sub|substitute|make it|gluten[- ]?free|vegetarian|vegan)\b\s+([\w\s]{2,30}?)(?:,|\band\b|\bor\b|$)`)
var modifierFlagRe = regexp.MustCompile(`(?i)\b(gluten[- ]?free|vegetarian|vegan|dairy[- ]?free|keto|spicy|mild|hot)\b`)

var descSplitRe = regexp.MustCompile(`(?i),\s*|\s+&\s+|\s+and\s+|;\s*|\s+or\s+|\s+w/\s*`)
var wPrefixRe = regexp.MustCompile(`(?i)^(?:w/\s*|with\s+)`)

func containsSubstr(haystack, needle string) bool { return strings.Contains(haystack, needle) }

// ParseLine runs the single-line classification pipeline against one
// merged-text line.
func ParseLine(raw string) menu.ParsedMenuItem {
	text := normalizeOCRTypos(raw)
	text = stripOCRGarble(text)

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return menu.ParsedMenuItem{LineType: menu.LineUnknown}
	}

	if dimensionLineRe.MatchString(trimmed) {
		return menu.ParsedMenuItem{LineType: menu.LineInfoLine, Description: trimmed, Confidence: 0.6}
	}

	text = stripShortNoise(text)
	trimmed = strings.TrimSpace(text)
	if trimmed == "" {
		return menu.ParsedMenuItem{LineType: menu.LineUnknown}
	}

	if isTopping, subtype := isToppingOrInfoLine(trimmed); isTopping {
		lt := menu.LineInfoLine
		if subtype == "topping_list" {
			lt = menu.LineToppingList
		}
		return menu.ParsedMenuItem{LineType: lt, Description: trimmed, Confidence: 0.65}
	}

	if isHeading(trimmed) {
		return menu.ParsedMenuItem{LineType: menu.LineHeading, ItemName: trimmed, Confidence: 0.7}
	}

	if isSizeHeader(trimmed) {
		return menu.ParsedMenuItem{LineType: menu.LineSizeHeader, Description: trimmed, Confidence: 0.75}
	}

	if m := priceOnlyRe.FindStringSubmatch(trimmed); m != nil {
		return menu.ParsedMenuItem{
			LineType:      menu.LinePriceOnly,
			PriceMentions: []menu.PriceMention{{Text: m[1], Amount: parsePrice(m[1])}},
			Confidence:    0.8,
		}
	}

	working, prices := extractPrices(trimmed)
	sizeMentions := extractSizeMentions(trimmed)
	modifiers := extractModifiers(working)

	item := menu.ParsedMenuItem{
		PriceMentions: prices,
		SizeMentions:  sizeMentions,
		Modifiers:     modifiers,
	}

	if name, desc, ok := splitOnSeparator(working); ok {
		item.ItemName = name
		item.Description = desc
	} else if name, desc, ok := splitCapsNameFromDesc(working); ok {
		item.ItemName = name
		item.Description = desc
	} else if looksDescriptionOnly(working) {
		item.LineType = menu.LineDescriptionOnly
		item.Description = working
		item.Confidence = scoreConfidence(item)
		item.Components = extractComponents(item.Description, item.ItemName)
		return item
	} else {
		item.ItemName = working
	}

	if item.Description != "" {
		item.Components = extractComponents(item.Description, item.ItemName)
	}

	if item.LineType == "" {
		switch {
		case item.ItemName != "" && len(prices) > 0:
			item.LineType = menu.LineMenuItem
		case item.ItemName != "" && item.Description != "":
			item.LineType = menu.LineMenuItem
		case item.ItemName != "" && len(modifiers) > 0:
			item.LineType = menu.LineModifierLine
		default:
			item.LineType = menu.LineUnknown
		}
	}

	item.Confidence = scoreConfidence(item)
	return item
}

func parsePrice(s string) float64 {
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.TrimPrefix(s, "$")
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

// normalizeOCRTypos applies the shared OCR typo map plus the grammar-specific
// W/, Wi -> with normalisation.
func normalizeOCRTypos(text string) string {
	replacer := strings.NewReplacer(
		"88Q", "BBQ", "88q", "BBQ", "8BQ", "BBQ", "880", "BBQ", "B8Q", "BBQ",
		"Basi!", "Basil", "basi!", "basil",
		"piZzA", "PIZZA",
	)
	text = replacer.Replace(text)
	text = regexp.MustCompile(`^\[a?\d*\]?\s*`).ReplaceAllString(text, "")
	text = regexp.MustCompile(`\bWI/`).ReplaceAllString(text, "W/")
	text = regexp.MustCompile(`\bW/\s*`).ReplaceAllString(text, "with ")
	text = regexp.MustCompile(`\bWi\s+([BCDFGHJKLMNPQRSTVWXYZbcdfghjklmnpqrstvwxyz])`).ReplaceAllString(text, "with $1")
	return text
}

// stripOCRGarble removes dot-leader garble runs.
func stripOCRGarble(text string) string {
	cleaned := dotRunRe.ReplaceAllString(text, " ")

	var sb strings.Builder
	last := 0
	for _, loc := range garbleSpanRe.FindAllStringIndex(cleaned, -1) {
		span := cleaned[loc[0]:loc[1]]
		if isGarbleRun(span) {
			sb.WriteString(cleaned[last:loc[0]])
			sb.WriteString(" ")
			last = loc[1]
		}
	}
	sb.WriteString(cleaned[last:])
	return collapseWhitespace(sb.String())
}

func isGarbleRun(span string) bool {
	var alpha []rune
	for _, r := range span {
		if unicode.IsLetter(r) {
			alpha = append(alpha, r)
		}
	}
	if len(alpha) < 5 {
		return false
	}
	hasTriple := tripleRepeatRe.MatchString(span)

	garbleCount := 0
	uniq := map[rune]bool{}
	for _, r := range alpha {
		low := unicode.ToLower(r)
		if garbleChars[low] {
			garbleCount++
		}
		uniq[low] = true
	}
	garbleRatio := float64(garbleCount) / float64(len(alpha))
	uniqueRatio := float64(len(uniq)) / float64(len(alpha))
	isLongRun := len(span) >= 12

	signals := 0
	if hasTriple {
		signals++
	}
	if garbleRatio >= 0.55 {
		signals++
	}
	if uniqueRatio <= 0.45 {
		signals++
	}
	if isLongRun {
		signals++
	}
	return signals >= 2
}

var keepShort = map[string]bool{
	"&": true, "w/": true, "or": true, "of": true, "on": true, "in": true,
	"to": true, "a": true, "no": true, "pc": true,
	"-": true, "–": true, "—": true, "•": true, "·": true,
}

// stripShortNoise removes isolated short noise fragments and high-garble
// mid-length tokens.
func stripShortNoise(text string) string {
	tokens := strings.Fields(text)
	var kept []string
	for _, tok := range tokens {
		stripped := strings.Trim(tok, ".,;:!?)")
		low := strings.ToLower(stripped)

		if priceRe.MatchString(stripped) || strings.HasPrefix(tok, "$") {
			kept = append(kept, tok)
			continue
		}

		var alpha []rune
		for _, r := range tok {
			if unicode.IsLetter(r) {
				alpha = append(alpha, r)
			}
		}

		if len(stripped) < 4 {
			if keepShort[low] {
				kept = append(kept, tok)
				continue
			}
			digitsOnly := strippedIsDigits(stripped)
			if digitsOnly && stripped != "00" && stripped != "000" {
				kept = append(kept, tok)
				continue
			}
			if len(alpha) == 0 {
				continue
			}
			if len(alpha) <= 1 && len(stripped) <= 2 {
				continue
			}
			if len(alpha) == len([]rune(stripped)) && isSingleRuneRepeat(alpha) {
				continue
			}
			kept = append(kept, tok)
			continue
		}

		if len(stripped) >= 4 && len(stripped) <= 11 {
			if len(alpha) > 0 && float64(len(alpha)) < float64(len(stripped))*0.4 {
				continue
			}
			if len(alpha) >= 3 {
				garbleCount := 0
				uniq := map[rune]bool{}
				for _, r := range alpha {
					low := unicode.ToLower(r)
					if garbleChars[low] {
						garbleCount++
					}
					uniq[low] = true
				}
				garbleRatio := float64(garbleCount) / float64(len(alpha))
				uniqueRatio := float64(len(uniq)) / float64(len(alpha))
				if garbleRatio >= 0.85 && uniqueRatio < 0.65 {
					continue
				}
			}
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

func strippedIsDigits(s string) bool {
	s = strings.Trim(s, ".,")
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func isSingleRuneRepeat(rs []rune) bool {
	if len(rs) == 0 {
		return false
	}
	low := unicode.ToLower(rs[0])
	for _, r := range rs[1:] {
		if unicode.ToLower(r) != low {
			return false
		}
	}
	return true
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// isHeading detects section headings.
func isHeading(text string) bool {
	words := strings.Fields(text)
	if len(words) == 0 || len(words) > 5 {
		return false
	}
	if priceRe.MatchString(text) {
		return false
	}

	var alpha []rune
	for _, r := range text {
		if unicode.IsLetter(r) {
			alpha = append(alpha, r)
		}
	}
	if len(alpha) > 0 && len(words) <= 4 && allUpper(alpha) {
		return true
	}

	low := strings.ToLower(strings.TrimSpace(text))
	lowClean := strings.TrimRight(low, "_!.")
	return knownSectionHeadings[low] || knownSectionHeadings[lowClean]
}

func allUpper(rs []rune) bool {
	for _, r := range rs {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// isSizeHeader detects a size-grid header line.
func isSizeHeader(text string) bool {
	matches := sizeHeaderTokenRe.FindAllString(text, -1)
	if len(matches) < 2 {
		return false
	}
	if priceRe.MatchString(text) {
		return false
	}
	if len(strings.Fields(text)) > 12 {
		return false
	}
	return true
}

// isToppingOrInfoLine covers the fast-path detectors in step 5.
func isToppingOrInfoLine(text string) (bool, string) {
	if toppingListRe.MatchString(text) {
		return true, "topping_list"
	}
	if infoLineRe.MatchString(text) {
		return true, "info_line"
	}
	low := strings.ToLower(text)
	words := strings.Fields(text)
	if strings.Contains(low, "toppings") && len(words) <= 8 && !priceRe.MatchString(text) {
		return true, "topping_list"
	}
	if len(words) >= 3 && flavorListRe.MatchString(text) && strings.Count(text, ",") >= 2 && !priceRe.MatchString(text) {
		return true, "info_line"
	}
	if optionLineRe.MatchString(text) && len(words) <= 5 && !priceRe.MatchString(text) {
		return true, "info_line"
	}
	if regexp.MustCompile(`(?i)^\d{1,3}\s*x\s*\d{1,3}\s*["°\x{201d}]?\s*$`).MatchString(text) {
		return true, "info_line"
	}
	return false, ""
}

// extractPrices finds every price mention (step 9). When more than one
// price is present, all are stripped from the working text; otherwise
// only the trailing price is stripped.
func extractPrices(text string) (string, []menu.PriceMention) {
	locs := priceRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return text, nil
	}

	mentions := make([]menu.PriceMention, len(locs))
	for i, loc := range locs {
		raw := text[loc[0]:loc[1]]
		mentions[i] = menu.PriceMention{Text: raw, Amount: parsePrice(raw)}
	}

	if len(locs) > 1 {
		var sb strings.Builder
		last := 0
		for _, loc := range locs {
			sb.WriteString(text[last:loc[0]])
			last = loc[1]
		}
		sb.WriteString(text[last:])
		return collapseWhitespace(sb.String()), mentions
	}

	loc := locs[0]
	trailing := strings.TrimSpace(text[loc[1]:]) == ""
	if trailing {
		return strings.TrimSpace(text[:loc[0]]), mentions
	}
	return collapseWhitespace(text[:loc[0]] + " " + text[loc[1]:]), mentions
}

// extractSizeMentions finds size vocabulary words and numeric size
// patterns (step 10).
func extractSizeMentions(text string) []string {
	out := sizevocab.FindSizeWords(text)
	out = append(out, sizevocab.FindNumericSizes(text)...)
	return out
}

// extractModifiers finds modifier phrases and standalone flags (step 11).
func extractModifiers(text string) []string {
	seen := map[string]bool{}
	var out []string

	for _, m := range modifierRe.FindAllStringSubmatch(text, -1) {
		phrase := strings.TrimSpace(m[0])
		if phrase != "" && !seen[strings.ToLower(phrase)] {
			seen[strings.ToLower(phrase)] = true
			out = append(out, phrase)
		}
	}
	for _, m := range modifierFlagRe.FindAllString(text, -1) {
		low := strings.ToLower(m)
		if !seen[low] {
			seen[low] = true
			out = append(out, m)
		}
	}
	return out
}

// splitOnSeparator splits name/description at a dash, colon or bullet
// (step 12).
func splitOnSeparator(text string) (string, string, bool) {
	loc := separatorRe.FindStringIndex(text)
	if loc == nil {
		return "", "", false
	}
	name := strings.TrimSpace(text[:loc[0]])
	desc := strings.TrimSpace(text[loc[1]:])
	if name == "" || desc == "" {
		return "", "", false
	}
	return name, desc, true
}

// splitCapsNameFromDesc implements the ALL-CAPS + mixed-case rescue
// (step 13).
func splitCapsNameFromDesc(text string) (string, string, bool) {
	words := strings.Fields(text)
	if len(words) < 2 {
		return "", "", false
	}

	capsEnd := 0
	for i, w := range words {
		clean := alphaOnly(w)
		if clean == "" {
			if capsEnd > 0 {
				capsEnd = i + 1
			}
			continue
		}
		if allUpperStr(clean) && len([]rune(clean)) >= 2 {
			capsEnd = i + 1
		} else {
			break
		}
	}

	if capsEnd < 1 || capsEnd >= len(words) {
		return "", "", false
	}

	name := strings.Join(words[:capsEnd], " ")
	desc := strings.Join(words[capsEnd:], " ")

	descAlpha := 0
	for _, r := range desc {
		if unicode.IsLetter(r) {
			descAlpha++
		}
	}
	if descAlpha < 3 {
		return "", "", false
	}

	if capsEnd == 1 {
		firstAlpha := rune(0)
		for _, r := range desc {
			if unicode.IsLetter(r) {
				firstAlpha = r
				break
			}
		}
		prefix := desc
		if len(prefix) > 40 {
			prefix = prefix[:40]
		}
		hasEarlyComma := strings.Contains(prefix, ",")
		if unicode.IsUpper(firstAlpha) && !hasEarlyComma {
			return "", "", false
		}
	}

	return name, desc, true
}

func alphaOnly(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func allUpperStr(s string) bool {
	for _, r := range s {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// looksDescriptionOnly implements step 14: lowercase-start lines with
// commas/"and", or short ingredient lists.
func looksDescriptionOnly(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	firstAlpha := rune(0)
	for _, r := range trimmed {
		if unicode.IsLetter(r) {
			firstAlpha = r
			break
		}
	}
	startsLower := firstAlpha != 0 && unicode.IsLower(firstAlpha)
	hasCommaOrAnd := strings.Contains(trimmed, ",") || regexp.MustCompile(`(?i)\band\b`).MatchString(trimmed)
	if startsLower && hasCommaOrAnd {
		return true
	}
	return strings.Contains(trimmed, ",") && hasTwoOrMoreToppingHits(strings.ToLower(trimmed))
}

// extractComponents tokenises a description and classifies each token into
// toppings/sauces/preparation/flavor_options (step 15).
func extractComponents(description, itemName string) *menu.ItemComponents {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil
	}

	tokens := tokenizeDescription(description)
	if len(tokens) == 0 {
		return nil
	}

	comps := &menu.ItemComponents{}
	allFlavor := true
	for _, tok := range tokens {
		low := strings.ToLower(strings.TrimSpace(tok))
		if low == "" {
			continue
		}
		switch {
		case sauceTokens[low]:
			comps.Sauces = append(comps.Sauces, tok)
			allFlavor = false
		case preparationTokens[low]:
			comps.Preparation = append(comps.Preparation, tok)
			allFlavor = false
		case flavorTokens[low]:
			comps.FlavorOptions = append(comps.FlavorOptions, tok)
		case commonToppings[low] || combovocab.IsComboFood(low):
			comps.Toppings = append(comps.Toppings, tok)
			allFlavor = false
		default:
			comps.Toppings = append(comps.Toppings, tok)
			allFlavor = false
		}
	}

	if allFlavor && len(comps.FlavorOptions) > 0 {
		comps.Toppings = nil
		comps.Sauces = nil
		comps.Preparation = nil
	}

	if len(comps.Toppings) == 0 && len(comps.Sauces) == 0 && len(comps.Preparation) == 0 && len(comps.FlavorOptions) == 0 {
		return nil
	}
	return comps
}

func tokenizeDescription(description string) []string {
	parts := descSplitRe.Split(description, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = wPrefixRe.ReplaceAllString(p, "")
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// scoreConfidence blends structural signals, capped at 0.95.
func scoreConfidence(item menu.ParsedMenuItem) float64 {
	score := 0.3
	if item.ItemName != "" {
		score += 0.2
	}
	if len(item.PriceMentions) > 0 {
		score += 0.2
	}
	if item.Description != "" {
		score += 0.15
	}
	if len(item.SizeMentions) > 0 {
		score += 0.1
	}
	if len(item.PriceMentions) > 1 {
		score += 0.05
	}
	if score > 0.95 {
		score = 0.95
	}
	return score
}
