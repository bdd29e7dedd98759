// Package menu holds the shared data model for the menu extraction core:
// the per-page geometric types produced by OCR and layout, the enriched
// text block that accumulates grammar/category/variant signal, and the
// StructuredMenuPayload handed to a draft store once the pipeline finishes.
package menu

// BBox is an integer bounding box in raster pixel space.
type BBox struct {
	X int
	Y int
	W int
	H int
}

// Valid reports whether the box has non-negative dimensions.
func (b BBox) Valid() bool { return b.W >= 0 && b.H >= 0 }

// Union returns the smallest box enclosing both b and other.
func (b BBox) Union(other BBox) BBox {
	if b.W == 0 && b.H == 0 {
		return other
	}
	if other.W == 0 && other.H == 0 {
		return b
	}
	x0 := min(b.X, other.X)
	y0 := min(b.Y, other.Y)
	x1 := max(b.X+b.W, other.X+other.W)
	y1 := max(b.Y+b.H, other.Y+other.H)
	return BBox{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// IoU returns the intersection-over-union of b and other.
func (b BBox) IoU(other BBox) float64 {
	ix0 := max(b.X, other.X)
	iy0 := max(b.Y, other.Y)
	ix1 := min(b.X+b.W, other.X+other.W)
	iy1 := min(b.Y+b.H, other.Y+other.H)
	iw := ix1 - ix0
	ih := iy1 - iy0
	if iw <= 0 || ih <= 0 {
		return 0
	}
	inter := float64(iw * ih)
	union := float64(b.W*b.H+other.W*other.H) - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// OverlapRatioVsSmaller returns intersection area / area of the smaller box.
func (b BBox) OverlapRatioVsSmaller(other BBox) float64 {
	ix0 := max(b.X, other.X)
	iy0 := max(b.Y, other.Y)
	ix1 := min(b.X+b.W, other.X+other.W)
	iy1 := min(b.Y+b.H, other.Y+other.H)
	iw := ix1 - ix0
	ih := iy1 - iy0
	if iw <= 0 || ih <= 0 {
		return 0
	}
	inter := float64(iw * ih)
	areaA := float64(b.W * b.H)
	areaB := float64(other.W * other.H)
	smaller := areaA
	if areaB < smaller {
		smaller = areaB
	}
	if smaller <= 0 {
		return 0
	}
	return inter / smaller
}

// HorizontalOverlapRatio returns the fraction of the narrower box's width
// that overlaps horizontally with the other box.
func (b BBox) HorizontalOverlapRatio(other BBox) float64 {
	ix0 := max(b.X, other.X)
	ix1 := min(b.X+b.W, other.X+other.W)
	iw := ix1 - ix0
	if iw <= 0 {
		return 0
	}
	narrower := b.W
	if other.W < narrower {
		narrower = other.W
	}
	if narrower <= 0 {
		return 0
	}
	return float64(iw) / float64(narrower)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Word is a single OCR token with its confidence and geometry.
type Word struct {
	Text string
	BBox BBox
	Conf float64 // 0-100
}

// Line is a horizontal cluster of Words.
type Line struct {
	Text  string
	BBox  BBox
	Words []Word
}

// Block is a vertical cluster of Lines.
type Block struct {
	ID   int
	Page int
	BBox BBox
	Lines []Line
	Meta  map[string]any
}

// Role is the semantic role assigned to a TextBlock.
type Role string

const (
	RoleHeading     Role = "heading"
	RoleItemName    Role = "item_name"
	RoleDescription Role = "description"
	RolePrice       Role = "price"
	RoleMeta        Role = "meta"
	RoleNoise       Role = "noise"
	RoleItem        Role = "item"
)

// VariantKind closed enumeration.
type VariantKind string

const (
	KindSize   VariantKind = "size"
	KindFlavor VariantKind = "flavor"
	KindStyle  VariantKind = "style"
	KindCombo  VariantKind = "combo"
	KindOther  VariantKind = "other"
)

// Track is the equivalence class a size ordinal is comparable within.
type Track string

const (
	TrackWord         Track = "word"
	TrackPortion      Track = "portion"
	TrackMultiplicity Track = "multiplicity"
	TrackInch         Track = "inch"
	TrackPiece        Track = "piece"
)

// Severity is the closed severity enumeration for price/consistency flags.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarn    Severity = "warn"
	SeverityAutoFix Severity = "auto_fix"
)

// Reason is the closed flag-reason enumeration.
type Reason string

const (
	ReasonVariantPriceInversion       Reason = "variant_price_inversion"
	ReasonDuplicateGroupKey          Reason = "duplicate_group_key"
	ReasonZeroPriceVariant           Reason = "zero_price_variant"
	ReasonMixedKindVariants          Reason = "mixed_kind_variants"
	ReasonSizeGap                    Reason = "size_gap"
	ReasonDecimalShiftCorrected      Reason = "decimal_shift_corrected"
	ReasonPriceOutlier               Reason = "price_outlier"
	ReasonZeroPriceInGroup           Reason = "zero_price_in_group"
	ReasonSidePriceCandidate         Reason = "side_price_candidate"
	ReasonCouponOrDealLine           Reason = "coupon_or_deal_line"
	ReasonCrossItemExactDuplicate    Reason = "cross_item_exact_duplicate"
	ReasonCrossItemDuplicateName     Reason = "cross_item_duplicate_name"
	ReasonCrossItemFuzzyExactDuplicate Reason = "cross_item_fuzzy_exact_duplicate"
	ReasonCrossItemFuzzyDuplicate    Reason = "cross_item_fuzzy_duplicate"
	ReasonCrossItemCategoryPriceOutlier Reason = "cross_item_category_price_outlier"
	ReasonCrossItemCategoryIsolated  Reason = "cross_item_category_isolated"
	ReasonCrossItemCategorySuggestion Reason = "cross_item_category_suggestion"
	ReasonCrossCategoryPriceAbove    Reason = "cross_category_price_above"
	ReasonCrossCategoryPriceBelow    Reason = "cross_category_price_below"
	ReasonCrossItemVariantCountOutlier Reason = "cross_item_variant_count_outlier"
	ReasonCrossItemVariantLabelMismatch Reason = "cross_item_variant_label_mismatch"
	ReasonCrossItemPriceStepOutlier  Reason = "cross_item_price_step_outlier"
)

// PriceRole is a lightweight classification of what a price represents.
type PriceRole string

const (
	PriceRolePrimary PriceRole = "primary"
	PriceRoleSide    PriceRole = "side"
	PriceRoleCoupon  PriceRole = "coupon"
)

// PriceFlag records a single anomaly or correction on an item's price(s).
type PriceFlag struct {
	Severity Severity
	Reason   Reason
	Details  map[string]any
}

// PriceCandidate is a raw price mention extracted from a block's text.
type PriceCandidate struct {
	Text       string
	Confidence float64
	PriceCents *int
}

// OCRVariant is one size/flavor/style/combo variant on a menu item.
type OCRVariant struct {
	Label             string
	PriceCents        int
	Confidence        float64
	Kind              VariantKind
	NormalizedSize    string
	GroupKey          string
	KindHint          string
	ConfidenceDetails map[string]any
}

// SizeGridColumn is one column of a parsed size-header line.
type SizeGridColumn struct {
	RawLabel   string
	Normalized string
	Position   int
}

// SizeGridContext is the active size grid applying to subsequent item lines.
type SizeGridContext struct {
	Columns         []SizeGridColumn
	SourceLineIndex int
}

// ItemComponents holds the ingredient-lexicon classification of a
// description's tokens.
type ItemComponents struct {
	Toppings      []string
	Sauces        []string
	Preparation   []string
	FlavorOptions []string
}

// LineType is the closed enumeration of grammar line classifications.
type LineType string

const (
	LineMenuItem       LineType = "menu_item"
	LineHeading        LineType = "heading"
	LineSizeHeader     LineType = "size_header"
	LineToppingList    LineType = "topping_list"
	LineInfoLine       LineType = "info_line"
	LinePriceOnly      LineType = "price_only"
	LineModifierLine   LineType = "modifier_line"
	LineDescriptionOnly LineType = "description_only"
	LineMultiColumn    LineType = "multi_column"
	LineUnknown        LineType = "unknown"
)

// PriceMention is a raw price match found in a line, in dollars.
type PriceMention struct {
	Text   string
	Amount float64
}

// ParsedMenuItem is the grammar stage's output for a single merged-text block.
type ParsedMenuItem struct {
	ItemName       string
	Description    string
	Modifiers      []string
	SizeMentions   []string
	PriceMentions  []PriceMention
	LineType       LineType
	Confidence     float64
	Components     *ItemComponents
	ColumnSegments []string
}

// TextBlock is the central entity: a geometric block enriched progressively
// by layout, grammar, category, and variant stages.
type TextBlock struct {
	ID         int
	Page       int
	Column     int
	BBox       BBox
	Lines      []Line
	MergedText string

	Role    Role
	IsHeading bool
	IsNoise   bool

	Grammar *ParsedMenuItem

	Category           string
	CategoryConfidence int
	RuleTrace          []string
	Subcategory        string
	SectionPath        []string

	PriceCandidates []PriceCandidate
	Variants        []OCRVariant
	PriceFlags      []PriceFlag
	PriceRole       PriceRole
	CorrectedPriceCents *int

	SemanticConfidence        int
	SemanticConfidenceDetails map[string]any

	Meta map[string]any
}

// PrimaryPriceCents returns the canonical price: the lowest positive
// variant price if variants exist, else the first positive price
// candidate, else nil.
func (tb *TextBlock) PrimaryPriceCents() *int {
	best := -1
	for _, v := range tb.Variants {
		if v.PriceCents > 0 && (best == -1 || v.PriceCents < best) {
			best = v.PriceCents
		}
	}
	if best != -1 {
		return &best
	}
	for _, pc := range tb.PriceCandidates {
		if pc.PriceCents != nil && *pc.PriceCents > 0 {
			v := *pc.PriceCents
			return &v
		}
	}
	return nil
}

// EnsureMeta returns tb.Meta, allocating it if nil.
func (tb *TextBlock) EnsureMeta() map[string]any {
	if tb.Meta == nil {
		tb.Meta = make(map[string]any)
	}
	return tb.Meta
}

// AddPriceFlag appends a flag to the block.
func (tb *TextBlock) AddPriceFlag(severity Severity, reason Reason, details map[string]any) {
	tb.PriceFlags = append(tb.PriceFlags, PriceFlag{Severity: severity, Reason: reason, Details: details})
}

// PreviewItem / StructuredItem is the final per-item record handed to a
// draft store.
type StructuredItem struct {
	Name          string
	Description   string
	Category      string
	Subcategory   string
	SectionPath   []string
	PriceCents    int
	Variants      []OCRVariant
	Confidence    int
	PriceCandidates []PriceCandidate
	ConfidenceMap map[string]any
	Provenance    map[string]any
	CleanupFlags  []string
	Warnings      []string
	SectionSlug   string
	SectionPosition int
	ItemPosition  int
	AutoGroupID   string
}

// Section groups items under a heading path.
type Section struct {
	Path        []string
	Slug        string
	Position    int
	Items       []StructuredItem
	AutoGroupID string
	Meta        map[string]any
}

// StructuredMenuPayload is the outbound pipeline result.
type StructuredMenuPayload struct {
	Sections     []Section
	Meta         map[string]any
	DraftID      string
	RestaurantID string
	Title        string
	SourceJobID  string
}
