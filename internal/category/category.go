// Package category infers a menu item's category from its name,
// description, price, and neighbouring items' categories.
// Grounded on original_source/storage/category_infer.py.
package category

import (
	"regexp"
	"strings"
)

// Closed category set.
const (
	Pizza       = "Pizza"
	Calzones    = "Calzones / Stromboli"
	Subs        = "Subs / Sandwiches"
	Burgers     = "Burgers"
	Wings       = "Wings"
	Salads      = "Salads"
	Pasta       = "Pasta"
	Sides       = "Sides / Appetizers"
	Desserts    = "Desserts"
	Beverages   = "Beverages"
	FallbackCat = "Uncategorized"
)

// Categories lists the closed inference set in a stable order.
var Categories = []string{Pizza, Calzones, Subs, Burgers, Wings, Salads, Pasta, Sides, Desserts, Beverages}

var keywords = map[string][]string{
	Pizza:     {"pizza", "pie", "sicilian", "neapolitan", "margherita", "slice", "toppings", "pizzeria"},
	Calzones:  {"calzone", "stromboli", "roll", "stuffed", "folded"},
	Subs:      {"sub", "hoagie", "grinder", "sandwich", "wrap", "panini", "gyro"},
	Burgers:   {"burger", "cheeseburger", "patty", "bacon burger"},
	Wings:     {"wing", "wings", "buffalo", "boneless", "drumette"},
	Salads:    {"salad", "garden", "caesar", "chef salad", "antipasto"},
	Pasta:     {"pasta", "spaghetti", "ziti", "penne", "lasagna", "ravioli", "alfredo", "carbonara", "bolognese"},
	Sides:     {"fries", "fry", "onion rings", "mozzarella stick", "stick", "appetizer", "app", "garlic bread", "breadstick", "bread stick", "jalapeno popper", "cheese stick"},
	Desserts:  {"dessert", "brownie", "cookie", "cheesecake", "tiramisu", "cannoli", "ice cream", "lava cake", "cinnamon"},
	Beverages: {"soda", "pop", "drink", "beverage", "juice", "tea", "coffee", "coke", "pepsi", "sprite", "mountain dew", "root beer", "bottle", "can", "2 liter", "2-liter", "liter"},
}

// PriceBand is a [min, max] cents range.
type PriceBand struct{ Min, Max int }

var priceBands = map[string]PriceBand{
	Pizza:     {799, 3999},
	Calzones:  {899, 2499},
	Subs:      {699, 1999},
	Burgers:   {699, 1999},
	Wings:     {699, 2499},
	Salads:    {499, 1599},
	Pasta:     {899, 2499},
	Sides:     {299, 1499},
	Desserts:  {299, 1499},
	Beverages: {99, 799},
}

// PriceBandOf returns the expected price band for a category, if known.
func PriceBandOf(cat string) (PriceBand, bool) {
	b, ok := priceBands[cat]
	return b, ok
}

// KeywordHits exposes the name/description keyword-hit count used
// internally by Infer, for internal/crossitem's category-suggestion
// keyword guard and delta term.
func KeywordHits(text, cat string) int {
	return keywordScore(norm(text), cat)
}

// BandCenteredness returns how centred priceCents is within cat's price
// band, in [0, 1]; 1.0 at the midpoint, 0 at or beyond the edges. Returns
// 0 if the category or price is unknown. Used by internal/confidence's
// price-sanity term.
func BandCenteredness(priceCents int, cat string) float64 {
	band, ok := priceBands[cat]
	if !ok || priceCents <= 0 {
		return 0
	}
	mid := float64(band.Min+band.Max) / 2.0
	halfWidth := float64(band.Max-band.Min) / 2.0
	if halfWidth <= 0 {
		return 0
	}
	dist := absF(float64(priceCents) - mid)
	centeredness := 1.0 - dist/halfWidth
	if centeredness < 0 {
		return 0
	}
	if centeredness > 1 {
		return 1
	}
	return centeredness
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

var whitespaceRe = regexp.MustCompile(`\s+`)

func norm(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	return whitespaceRe.ReplaceAllString(text, " ")
}

func keywordScore(text, cat string) int {
	if text == "" {
		return 0
	}
	score := 0
	for _, kw := range keywords[cat] {
		if strings.Contains(text, kw) {
			score++
		}
	}
	return score
}

func priceBandScore(priceCents int, cat string) int {
	if priceCents <= 0 {
		return 0
	}
	band, ok := priceBands[cat]
	if !ok {
		return 0
	}
	if priceCents >= band.Min && priceCents <= band.Max {
		return 2
	}
	if priceCents < band.Min/2 || priceCents > band.Max*2 {
		return -1
	}
	return 0
}

func neighborScore(cat string, neighbors []string) int {
	if len(neighbors) == 0 {
		return 0
	}
	same, total := 0, 0
	for _, n := range neighbors {
		if n == "" {
			continue
		}
		total++
		if n == cat {
			same++
		}
	}
	if total == 0 {
		return 0
	}
	if same >= 2 {
		return 2
	}
	if same == 0 && total >= 2 {
		return -1
	}
	return 0
}

// Guess is the result of a single category inference call.
type Guess struct {
	Category   string
	Confidence int
	Reason     string
}

// Infer scores every category in the closed set against name, description,
// price, and neighbour categories, and returns the best-scoring guess.
// When no category scores above zero, or no keyword matches at all and the
// price is 1-799 cents, it returns a fallback instead: Beverages at 35 for
// such a cheap price, else FallbackCat at 15.
func Infer(name, description string, priceCents int, neighbors []string) Guess {
	nameNorm := norm(name)
	descNorm := norm(description)

	if nameNorm == "" && descNorm == "" && priceCents <= 0 {
		return Guess{Category: FallbackCat, Confidence: 5, Reason: "no name/description/price; using fallback"}
	}

	bestCat := ""
	bestScore := -999
	textScore := 0

	for _, cat := range Categories {
		kw := keywordScore(nameNorm, cat)*4 + keywordScore(descNorm, cat)*2
		textScore += kw
		score := kw + priceBandScore(priceCents, cat)
		score += neighborScore(cat, neighbors)
		if score > bestScore {
			bestScore = score
			bestCat = cat
		}
	}

	cheap := priceCents > 0 && priceCents <= 799
	if bestScore <= 0 || (textScore == 0 && cheap) {
		if cheap {
			return Guess{Category: Beverages, Confidence: 35, Reason: "weak text match but price looks like a drink"}
		}
		return Guess{Category: FallbackCat, Confidence: 15, Reason: "no strong keyword or price signal; using fallback"}
	}

	confidence := 40 + minInt(int(float64(bestScore)*6.0), 55)

	var reasonBits []string
	if nameNorm != "" {
		reasonBits = append(reasonBits, "matched name keywords")
	}
	if descNorm != "" {
		reasonBits = append(reasonBits, "matched description keywords")
	}
	if priceCents > 0 {
		reasonBits = append(reasonBits, "price fell in expected band")
	}
	if len(neighbors) > 0 {
		reasonBits = append(reasonBits, "neighbors support this category")
	}
	reason := strings.Join(reasonBits, ", ")
	if reason == "" {
		reason = "heuristic match"
	}

	return Guess{Category: bestCat, Confidence: confidence, Reason: reason}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
