package pipeline

import (
	"regexp"
	"strings"

	"github.com/menuforge/extractor-core/pkg/menu"
)

var bulletLeaderRe = regexp.MustCompile(`^[\x{2022}\x{2023}\x{25e6}\x{2043}*\-]+[\s\x{00a0}]*`)
var numLeaderRe = regexp.MustCompile(`^\d+\s*[.)]\s*`)
var extraSpaceRe = regexp.MustCompile(`\s{2,}`)

// rebuildMultilineText strips bullet/numeric leaders from each of a
// block's raw lines and rejoins them into one smoothed string, gluing
// hyphen-broken words without an inserted space.
func rebuildMultilineText(lines []string) string {
	cleaned := make([]string, 0, len(lines))
	for _, raw := range lines {
		ln := strings.TrimSpace(raw)
		if ln == "" {
			continue
		}
		ln = bulletLeaderRe.ReplaceAllString(ln, "")
		ln = numLeaderRe.ReplaceAllString(ln, "")
		ln = strings.TrimSpace(ln)
		if ln != "" {
			cleaned = append(cleaned, ln)
		}
	}
	if len(cleaned) == 0 {
		return ""
	}

	text := cleaned[0]
	for _, ln := range cleaned[1:] {
		if strings.HasSuffix(text, "-") {
			text = text[:len(text)-1] + strings.TrimLeft(ln, " ")
		} else {
			text = text + " " + ln
		}
	}
	return strings.TrimSpace(extraSpaceRe.ReplaceAllString(text, " "))
}

// reconstructDescriptions normalizes merged_text for every non-price,
// non-noise block in place, undoing bullet leaders and hard line wraps. It
// runs after the grammar stage, so the grammar parse already stored on each
// block was made from the text before this smoothing.
func reconstructDescriptions(blocks []*menu.TextBlock) {
	for _, b := range blocks {
		if b.Role == menu.RolePrice || b.IsNoise {
			continue
		}
		rawLines := make([]string, len(b.Lines))
		for i, ln := range b.Lines {
			rawLines[i] = ln.Text
		}
		if len(rawLines) == 0 {
			continue
		}
		b.MergedText = rebuildMultilineText(rawLines)
	}
}
