// Package fusion runs the OCR engine across a rotation x PSM grid and
// fuses the results into one best-guess word list per page. Running the
// same page at several page-segmentation modes and several rotations and
// then voting between the results is far more robust to odd layouts than
// trusting a single OCR pass.
package fusion

import (
	"context"
	"image"
	"math"
	"sort"
	"sync"

	"github.com/menuforge/extractor-core/internal/observability"
	"github.com/menuforge/extractor-core/internal/ocrtext"
	"github.com/menuforge/extractor-core/internal/orient"
	"github.com/menuforge/extractor-core/pkg/menu"
)

// Config controls the fusion grid and clustering thresholds. Mirrors
// internal/config.FusionConfig plus the rotation/PSM lists from
// internal/config.OCRConfig.
type Config struct {
	Rotations           []int
	PSMModes            []int
	ClusterIoUMin       float64
	ClusterOverlapMin   float64
	SinglePassConfFloor float64
	OutlierUsableRatio  float64
	RotationTieEpsilon  float64
}

// DefaultConfig mirrors internal/config.DefaultConfig's fusion defaults.
func DefaultConfig() Config {
	return Config{
		Rotations:           []int{0, 90, 180, 270},
		PSMModes:            []int{6, 4, 11},
		ClusterIoUMin:       0.35,
		ClusterOverlapMin:   0.60,
		SinglePassConfFloor: 70,
		OutlierUsableRatio:  2.5,
		RotationTieEpsilon:  0.01,
	}
}

// Result is the fused outcome for one column/page image.
type Result struct {
	SelectedRotation int
	Words            []menu.Word
	RotationScores   map[int]float64
}

// pass is the outcome of one (rotation, psm) OCR invocation, with word
// bounding boxes already un-rotated back into the page's own frame.
type pass struct {
	rotation int
	psm      int
	words    []menu.Word
}

// Fuser runs the fusion grid against a Recognizer.
type Fuser struct {
	recognizer *ocrtext.Recognizer
	config     Config
	logger     *observability.Logger
}

// NewFuser builds a Fuser.
func NewFuser(recognizer *ocrtext.Recognizer, config Config, logger *observability.Logger) *Fuser {
	if logger == nil {
		logger = observability.Nop()
	}
	return &Fuser{recognizer: recognizer, config: config, logger: logger}
}

// Fuse runs the full rotation x PSM grid against img (already column-split
// and orientation-pre-normalized at rotation 0), scores each rotation,
// selects the best one, and clusters that rotation's passes into a single
// fused word list.
func (f *Fuser) Fuse(ctx context.Context, img image.Image) (Result, error) {
	passes, err := f.runGrid(ctx, img)
	if err != nil {
		return Result{}, err
	}

	byRotation := make(map[int][]pass)
	for _, p := range passes {
		byRotation[p.rotation] = append(byRotation[p.rotation], p)
	}

	fusedByRotation := make(map[int][]menu.Word, len(byRotation))
	for rot, ps := range byRotation {
		fusedByRotation[rot] = clusterPasses(ps, f.config.ClusterIoUMin, f.config.ClusterOverlapMin, f.config.SinglePassConfFloor)
	}

	scores := f.scoreRotations(fusedByRotation)
	selected := f.selectRotation(scores)

	f.logger.Debug().Int("rotation", selected).Float64("score", scores[selected]).Msg("fusion rotation selected")

	return Result{SelectedRotation: selected, Words: fusedByRotation[selected], RotationScores: scores}, nil
}

// runGrid executes OCR at every (rotation, psm) combination concurrently
// and returns each pass with bboxes expressed in the page's own frame.
func (f *Fuser) runGrid(ctx context.Context, img image.Image) ([]pass, error) {
	base := img
	bounds := base.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	type job struct {
		rotation int
		psm      int
	}
	var jobs []job
	for _, r := range f.config.Rotations {
		for _, psm := range f.config.PSMModes {
			jobs = append(jobs, job{rotation: r, psm: psm})
		}
	}

	results := make([]pass, len(jobs))
	errs := make([]error, len(jobs))

	var wg sync.WaitGroup
	for i, j := range jobs {
		wg.Add(1)
		go func(i int, j job) {
			defer wg.Done()
			candidate := orient.Rotate(base, orient.Rotation(j.rotation))
			words, err := f.recognizer.Recognize(ctx, candidate, j.psm)
			if err != nil {
				errs[i] = err
				return
			}
			rw, rh := w, h
			if j.rotation == 90 || j.rotation == 270 {
				rw, rh = h, w
			}
			unrotated := make([]menu.Word, len(words))
			for k, word := range words {
				rect := orient.Unrotate(bboxToRect(word.BBox), orient.Rotation(j.rotation), rw, rh)
				word.BBox = rectToBBox(rect)
				unrotated[k] = word
			}
			results[i] = pass{rotation: j.rotation, psm: j.psm, words: unrotated}
		}(i, j)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// scoreRotations scores each rotation's already-fused token list:
// score = avg_conf * coherence * content, coherence = min(avg_chars/4,
// 1.5), content = sqrt(usable word count), then applies a cross-rotation
// outlier penalty to any rotation whose usable count exceeds
// OutlierUsableRatio times the median usable count across rotations.
func (f *Fuser) scoreRotations(fusedByRotation map[int][]menu.Word) map[int]float64 {
	usable := make(map[int]int, len(fusedByRotation))
	avgConf := make(map[int]float64, len(fusedByRotation))
	avgChars := make(map[int]float64, len(fusedByRotation))

	for rot, words := range fusedByRotation {
		var confSum, charSum float64
		for _, w := range words {
			confSum += w.Conf
			charSum += float64(len(w.Text))
		}
		usable[rot] = len(words)
		if len(words) > 0 {
			avgConf[rot] = confSum / float64(len(words))
			avgChars[rot] = charSum / float64(len(words))
		}
	}

	medianUsable := medianInt(valuesOf(usable))

	scores := make(map[int]float64, len(fusedByRotation))
	for rot := range fusedByRotation {
		coherence := math.Min(avgChars[rot]/4.0, 1.5)
		content := math.Sqrt(float64(usable[rot]))
		score := avgConf[rot] * coherence * content

		if medianUsable > 0 && float64(usable[rot]) > f.config.OutlierUsableRatio*float64(medianUsable) {
			ratio := float64(medianUsable) / float64(usable[rot])
			score *= ratio * ratio
		}
		scores[rot] = score
	}
	return scores
}

// selectRotation picks the max-scoring rotation, breaking near-ties
// (within RotationTieEpsilon) in favor of rotation 0, then the smallest
// rotation value.
func (f *Fuser) selectRotation(scores map[int]float64) int {
	rotations := make([]int, 0, len(scores))
	for r := range scores {
		rotations = append(rotations, r)
	}
	sort.Ints(rotations)

	best := rotations[0]
	bestScore := scores[best]
	for _, r := range rotations[1:] {
		s := scores[r]
		if s > bestScore+f.config.RotationTieEpsilon {
			best, bestScore = r, s
		}
	}
	return best
}

// clusterItem pairs a word with the index of the pass it came from, so
// clusterPasses can tell how many distinct passes agreed on a cluster.
type clusterItem struct {
	word    menu.Word
	passIdx int
}

// clusterPasses groups words across a rotation's PSM passes that share the
// same text and whose bboxes overlap, and keeps the highest-confidence
// representative per cluster. Clusters backed by more than one pass are
// kept unconditionally; clusters backed by a single pass are kept only
// when that pass's confidence clears singlePassConfFloor.
func clusterPasses(passes []pass, ioUMin, overlapMin, singlePassConfFloor float64) []menu.Word {
	var all []clusterItem
	for pi, p := range passes {
		for _, w := range p.words {
			all = append(all, clusterItem{word: w, passIdx: pi})
		}
	}
	if len(all) == 0 {
		return nil
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].word.BBox.Y != all[j].word.BBox.Y {
			return all[i].word.BBox.Y < all[j].word.BBox.Y
		}
		return all[i].word.BBox.X < all[j].word.BBox.X
	})

	assigned := make([]bool, len(all))
	var fused []menu.Word

	for i := range all {
		if assigned[i] {
			continue
		}
		cluster := []int{i}
		assigned[i] = true
		for j := i + 1; j < len(all); j++ {
			if assigned[j] {
				continue
			}
			if all[i].word.Text != all[j].word.Text {
				continue
			}
			if all[i].word.BBox.IoU(all[j].word.BBox) >= ioUMin || all[i].word.BBox.OverlapRatioVsSmaller(all[j].word.BBox) >= overlapMin {
				cluster = append(cluster, j)
				assigned[j] = true
			}
		}

		best := bestOf(all, cluster)
		if distinctPasses(all, cluster) <= 1 && best.Conf < singlePassConfFloor {
			continue
		}
		fused = append(fused, best)
	}
	return fused
}

func bestOf(items []clusterItem, idx []int) menu.Word {
	best := items[idx[0]].word
	for _, i := range idx[1:] {
		if items[i].word.Conf > best.Conf {
			best = items[i].word
		}
	}
	return best
}

func distinctPasses(items []clusterItem, idx []int) int {
	seen := make(map[int]bool, len(idx))
	for _, i := range idx {
		seen[items[i].passIdx] = true
	}
	return len(seen)
}

func valuesOf(m map[int]int) []int {
	out := make([]int, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

func bboxToRect(b menu.BBox) image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.W, b.Y+b.H)
}

func rectToBBox(r image.Rectangle) menu.BBox {
	return menu.BBox{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
}

func medianInt(vals []int) int {
	if len(vals) == 0 {
		return 0
	}
	sorted := append([]int(nil), vals...)
	sort.Ints(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
