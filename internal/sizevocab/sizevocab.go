// Package sizevocab is the single source of truth for size/portion word
// detection and normalization, shared by internal/grammar (parsing) and
// internal/variant (enrichment, price-ordering validation).
//
// Grounded on original_source/storage/parsers/size_vocab.py and
// original_source/storage/variant_engine.py, generalized to ordered tracks
// so cross-track comparisons never collide.
package sizevocab

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/menuforge/extractor-core/pkg/menu"
)

// entry is one canonical size with its track and within-track ordinal.
type entry struct {
	normalized string
	track      menu.Track
	ordinal    int
}

// wordMap maps a lowercase raw token to its canonical display label.
var wordMap = map[string]string{
	"xs": "XS", "x-small": "XS", "extra small": "XS",
	"mini": "Mini",
	"small": "S", "sm": "S", "sml": "S",
	"personal": "Personal", "individual": "Personal",
	"regular": "Regular",
	"medium": "M", "med": "M", "md": "M",
	"large": "L", "lg": "L", "lrg": "L",
	"deluxe": "Deluxe",
	"x-large": "XL", "xlarge": "XL", "xl": "XL", "extra large": "XL",
	"xxl": "XXL",
	"half": "Half", "whole": "Whole", "slice": "Slice",
	"family": "Family", "family size": "Family",
	"party": "Party", "party size": "Party",
	"single": "Single", "double": "Double", "triple": "Triple",
}

// wordTrackOrdinals defines the ordered "word" track chain:
// XS < Mini < S < Personal < Regular < M < L < Deluxe < XL < XXL.
var wordTrackOrdinals = []string{
	"XS", "Mini", "S", "Personal", "Regular", "M", "L", "Deluxe", "XL", "XXL",
}

// portionTrackOrdinals defines the ordered "portion" chain: Slice < Half <
// Whole < Family < Party.
var portionTrackOrdinals = []string{
	"Slice", "Half", "Whole", "Family", "Party",
}

// multiplicityTrackOrdinals: Single < Double < Triple.
var multiplicityTrackOrdinals = []string{
	"Single", "Double", "Triple",
}

// canonical is the fully-built lookup table: normalized label -> entry.
var canonical map[string]entry

// Base offsets so inch/piece numeric tracks never collide with each other
// or with word/portion/multiplicity ordinals (which are small ints).
const (
	inchBaseOffset  = 1000
	pieceBaseOffset = 2000
)

func init() {
	canonical = make(map[string]entry, len(wordTrackOrdinals)+len(portionTrackOrdinals)+len(multiplicityTrackOrdinals))
	for i, label := range wordTrackOrdinals {
		canonical[label] = entry{normalized: label, track: menu.TrackWord, ordinal: i}
	}
	for i, label := range portionTrackOrdinals {
		canonical[label] = entry{normalized: label, track: menu.TrackPortion, ordinal: i}
	}
	for i, label := range multiplicityTrackOrdinals {
		canonical[label] = entry{normalized: label, track: menu.TrackMultiplicity, ordinal: i}
	}
}

// SizeWords is the flat set of all recognized raw size words, for building
// alternation regexes.
var SizeWords = func() []string {
	out := make([]string, 0, len(wordMap))
	for k := range wordMap {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out
}()

var sizeWordRe = regexp.MustCompile(`(?i)\b(` + strings.Join(escapeAll(SizeWords), "|") + `)\b`)

// NumericSizeRe matches inch/piece numeric size tokens: 10", 14 inch,
// 16in, 6pc, 12 pieces.
var NumericSizeRe = regexp.MustCompile(`(?i)\b(\d{1,2})\s*(?:["\x{201d}\x{00b0}]|in(?:ch(?:es)?)?|pc|pcs|piece|pieces|ct)\b`)

var inchMatchRe = regexp.MustCompile(`(?i)(\d{1,2})\s*(?:["\x{201d}\x{00b0}]|in(?:ch(?:es)?)?\b)`)
var pieceMatchRe = regexp.MustCompile(`(?i)(\d{1,2})\s*(?:pc|pcs|piece|pieces|ct)`)

func escapeAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = regexp.QuoteMeta(s)
	}
	return out
}

// NormalizeSizeToken normalizes a raw size token to its canonical display
// label. Idempotent: NormalizeSizeToken(NormalizeSizeToken(x)) ==
// NormalizeSizeToken(x) for all inputs.
func NormalizeSizeToken(raw string) string {
	trimmed := strings.TrimSpace(raw)
	low := strings.ToLower(trimmed)

	if canon, ok := wordMap[low]; ok {
		return canon
	}
	// Already-canonical labels (e.g. re-normalizing "S") pass the map
	// lookup above when lower-cased only if the map key matches; handle
	// the idempotence case where input is already canonical output.
	if _, ok := canonical[trimmed]; ok {
		return trimmed
	}

	if m := inchMatchRe.FindStringSubmatch(trimmed); m != nil {
		return m[1] + `"`
	}
	if m := pieceMatchRe.FindStringSubmatch(trimmed); m != nil {
		return m[1] + "pc"
	}
	return trimmed
}

// TrackOf returns the track and ordinal for a normalized size label. ok is
// false if the label is not part of any known track (e.g. it is an
// inch/piece numeric label, whose track/ordinal come from TrackForNumeric).
func TrackOf(normalized string) (menu.Track, int, bool) {
	e, ok := canonical[normalized]
	if !ok {
		return "", 0, false
	}
	return e.track, e.ordinal, true
}

// TrackForNumeric parses a normalized numeric size label (`10"` or `6pc`)
// into its track and ordinal. The ordinal is the numeric value offset so
// the inch and piece tracks never collide with each other or with the
// word/portion/multiplicity ordinals.
func TrackForNumeric(normalized string) (menu.Track, int, bool) {
	if strings.HasSuffix(normalized, `"`) {
		numStr := strings.TrimSuffix(normalized, `"`)
		if n, err := strconv.Atoi(numStr); err == nil {
			return menu.TrackInch, inchBaseOffset + n, true
		}
	}
	if strings.HasSuffix(normalized, "pc") {
		numStr := strings.TrimSuffix(normalized, "pc")
		if n, err := strconv.Atoi(numStr); err == nil {
			return menu.TrackPiece, pieceBaseOffset + n, true
		}
	}
	return "", 0, false
}

// TrackAndOrdinal resolves the track/ordinal for any normalized size
// label, word or numeric.
func TrackAndOrdinal(normalized string) (menu.Track, int, bool) {
	if t, o, ok := TrackOf(normalized); ok {
		return t, o, true
	}
	return TrackForNumeric(normalized)
}

// FindSizeWords returns every recognized size word found in text, in
// order of appearance.
func FindSizeWords(text string) []string {
	matches := sizeWordRe.FindAllString(text, -1)
	out := make([]string, len(matches))
	copy(out, matches)
	return out
}

// FindNumericSizes returns every recognized numeric size token
// (normalized) found in text, in order of appearance.
func FindNumericSizes(text string) []string {
	matches := NumericSizeRe.FindAllString(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, NormalizeSizeToken(m))
	}
	return out
}

// IsSizeWord reports whether low (already lowercased, trimmed) is a known
// size word.
func IsSizeWord(low string) bool {
	_, ok := wordMap[low]
	return ok
}

// LinearGapsInChain reports missing intermediate sizes in a linear size
// chain given the set of normalized sizes present. Used by
// internal/variant's consistency checks.
func LinearGapsInChain(track menu.Track, present []string) []string {
	var chain []string
	switch track {
	case menu.TrackWord:
		chain = wordTrackOrdinals
	case menu.TrackPortion:
		chain = portionTrackOrdinals
	case menu.TrackMultiplicity:
		chain = multiplicityTrackOrdinals
	default:
		return nil
	}

	presentSet := make(map[string]bool, len(present))
	for _, p := range present {
		presentSet[p] = true
	}

	// Find first and last present index in the chain.
	first, last := -1, -1
	for i, label := range chain {
		if presentSet[label] {
			if first == -1 {
				first = i
			}
			last = i
		}
	}
	if first == -1 || first == last {
		return nil
	}

	var gaps []string
	for i := first + 1; i < last; i++ {
		if !presentSet[chain[i]] {
			gaps = append(gaps, chain[i])
		}
	}
	return gaps
}

// String is a debug helper.
func (e entry) String() string {
	return fmt.Sprintf("%s(track=%s,ord=%d)", e.normalized, e.track, e.ordinal)
}
