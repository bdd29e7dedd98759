package pipeline

import (
	"regexp"
	"strings"

	"github.com/menuforge/extractor-core/pkg/menu"
)

// metaHints flags storefront-fluff lines (hours, address, phone) so they
// collapse to RoleMeta instead of polluting the item sequence.
var metaHints = []string{
	"phone", "tel", "fax", "address", "street", "st.", "ave", "avenue",
	"hours", "open", "monday", "tuesday", "wednesday", "thursday",
	"friday", "saturday", "sunday", "visa", "mastercard", "credit card",
	"delivery fee", "www.", ".com", "follow us",
}

var headingHintRe = regexp.MustCompile(`^[A-Z0-9 &'/._-]{2,48}$`)

func garbageRatio(b *menu.TextBlock) float64 {
	if len(b.Lines) == 0 {
		if strings.TrimSpace(b.MergedText) == "" {
			return 1.0
		}
		return 0.0
	}
	total, garbage := 0, 0
	for _, ln := range b.Lines {
		t := strings.TrimSpace(ln.Text)
		if t == "" {
			continue
		}
		total++
		if isGarbleRunLine(t) {
			garbage++
		}
	}
	if total == 0 {
		return 0.0
	}
	return float64(garbage) / float64(total)
}

// isGarbleRunLine is a coarse per-line garbage test distinct from
// grammar's token-level garble check: a line is garbage when it has
// almost no alphanumeric content at all.
func isGarbleRunLine(line string) bool {
	alnum := 0
	for _, r := range line {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			alnum++
		}
	}
	return float64(alnum)/float64(len([]rune(line))) < 0.3
}

func isPriceyText(text string) bool {
	digits := 0
	for _, r := range text {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits > 0 && strings.ContainsAny(text, "$.")
}

// classifyBlockRole assigns a Role to a text block using text-shape
// signals, with an optional one-step neighbour nudge.
func classifyBlockRole(b *menu.TextBlock, prevRole menu.Role) menu.Role {
	text := strings.TrimSpace(b.MergedText)
	if text == "" {
		return menu.RoleNoise
	}

	lower := strings.ToLower(text)
	digits, letters := 0, 0
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			letters++
		}
	}
	pricey := isPriceyText(text)
	ratio := garbageRatio(b)

	if ratio >= 0.85 && !pricey {
		return menu.RoleNoise
	}

	for _, h := range metaHints {
		if strings.Contains(lower, h) {
			return menu.RoleMeta
		}
	}

	if pricey && letters <= 5 {
		return menu.RolePrice
	}

	lineCount := len(b.Lines)
	if lineCount == 0 {
		lineCount = strings.Count(text, "\n") + 1
	}
	if lineCount <= 3 && len(text) <= 48 {
		if headingHintRe.MatchString(text) {
			return menu.RoleHeading
		}
		if letters > 0 {
			uppers := 0
			for _, r := range text {
				if r >= 'A' && r <= 'Z' {
					uppers++
				}
			}
			if float64(uppers)/float64(letters) >= 0.65 {
				return menu.RoleHeading
			}
		}
	}

	tokens := strings.Fields(strings.ReplaceAll(text, "\n", " "))
	tokenCount := len(tokens)
	if tokenCount >= 5 && digits <= 3 && letters > 0 {
		lowers := 0
		for _, r := range text {
			if r >= 'a' && r <= 'z' {
				lowers++
			}
		}
		if float64(lowers)/float64(letters) >= 0.4 && !pricey {
			return menu.RoleDescription
		}
	}

	if tokenCount <= 11 && digits <= 4 {
		return menu.RoleItemName
	}

	if prevRole == menu.RoleHeading && tokenCount <= 14 {
		return menu.RoleItemName
	}

	return menu.RoleItem
}

// classifyAndCollapse assigns Role/IsHeading/IsNoise to every block in
// document order, using the immediately preceding block's role as
// context, then drops blocks classified as noise.
func classifyAndCollapse(blocks []*menu.TextBlock) []*menu.TextBlock {
	if len(blocks) == 0 {
		return blocks
	}

	roles := make([]menu.Role, len(blocks))
	for i, b := range blocks {
		roles[i] = classifyBlockRole(b, "")
	}

	kept := make([]*menu.TextBlock, 0, len(blocks))
	for i, b := range blocks {
		var prev menu.Role
		if i > 0 {
			prev = roles[i-1]
		}
		role := classifyBlockRole(b, prev)
		roles[i] = role

		b.Role = role
		b.IsHeading = role == menu.RoleHeading
		b.IsNoise = role == menu.RoleNoise

		if b.IsNoise {
			continue
		}
		kept = append(kept, b)
	}
	return kept
}
