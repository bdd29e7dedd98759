package pipeline

import (
	"strings"

	"github.com/menuforge/extractor-core/pkg/menu"
)

// slugify mirrors the teacher's org-name slugifier, adapted for section
// headings: lowercase, non [a-z0-9] runs collapse to a single dash,
// leading/trailing dashes trimmed.
func slugify(name string) string {
	s := strings.ToLower(name)
	s = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, s)
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	s = strings.Trim(s, "-")
	if s == "" {
		s = "section"
	}
	return s
}

// assemblePayload groups the document's enriched, ordered blocks into
// sections formed from consecutive headings: each heading starts a new
// section, every other surviving block becomes a
// StructuredItem under the current section, and item_position is a
// single counter running across the whole document so callers can
// recover document order regardless of section/page boundaries.
func assemblePayload(blocks []*menu.TextBlock, jobID string) menu.StructuredMenuPayload {
	var sections []menu.Section
	current := menu.Section{Path: []string{"Menu"}, Slug: "menu", Position: 0}
	haveCurrent := false
	itemPosition := 0

	flush := func() {
		if haveCurrent && len(current.Items) > 0 {
			sections = append(sections, current)
		}
	}

	for _, b := range blocks {
		if b.IsHeading {
			flush()
			name := headingName(b)
			current = menu.Section{
				Path:     []string{name},
				Slug:     slugify(name),
				Position: len(sections),
			}
			haveCurrent = true
			continue
		}
		if b.Role == menu.RoleNoise || b.Role == menu.RoleMeta || b.Role == menu.RolePrice {
			continue
		}
		if !haveCurrent {
			haveCurrent = true
		}

		item := structuredItemFromBlock(b, current, itemPosition)
		current.Items = append(current.Items, item)
		itemPosition++
	}
	flush()

	return menu.StructuredMenuPayload{
		Sections:    sections,
		SourceJobID: jobID,
		Meta:        map[string]any{"item_count": itemPosition},
	}
}

func headingName(b *menu.TextBlock) string {
	name := strings.TrimSpace(b.MergedText)
	if b.Grammar != nil && b.Grammar.ItemName != "" {
		name = b.Grammar.ItemName
	}
	return name
}

func structuredItemFromBlock(b *menu.TextBlock, section menu.Section, position int) menu.StructuredItem {
	name := b.MergedText
	description := ""
	if b.Grammar != nil {
		if b.Grammar.ItemName != "" {
			name = b.Grammar.ItemName
		}
		description = b.Grammar.Description
	}

	priceCents := 0
	if pp := b.PrimaryPriceCents(); pp != nil {
		priceCents = *pp
	}

	var warnings []string
	for _, f := range b.PriceFlags {
		warnings = append(warnings, string(f.Reason))
	}

	return menu.StructuredItem{
		Name:            name,
		Description:     description,
		Category:        b.Category,
		Subcategory:     b.Subcategory,
		SectionPath:     section.Path,
		PriceCents:      priceCents,
		Variants:        b.Variants,
		Confidence:      b.SemanticConfidence,
		PriceCandidates: b.PriceCandidates,
		ConfidenceMap:   b.SemanticConfidenceDetails,
		CleanupFlags:    warnings,
		SectionSlug:     section.Slug,
		SectionPosition: section.Position,
		ItemPosition:    position,
	}
}
