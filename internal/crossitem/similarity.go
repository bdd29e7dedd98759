package crossitem

// ratio computes a Ratcliff/Obershelp-style similarity ratio between two
// strings: 2*M / (len(a)+len(b)), where M is the total length of
// recursively-found longest matching blocks. This is the same algorithm
// behind Python's difflib.SequenceMatcher.ratio(), used here for the
// fuzzy duplicate-name check.
func ratio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	m := matchLength(a, b)
	return float64(2*m) / float64(len(a)+len(b))
}

func matchLength(a, b string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	ai, bi, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchLength(a[:ai], b[:bi])
	total += matchLength(a[ai+size:], b[bi+size:])
	return total
}

// longestMatch finds the longest common contiguous substring between a
// and b via brute force; item names are short enough that O(n*m) per call
// is not a concern.
func longestMatch(a, b string) (ai, bi, size int) {
	best := 0
	bestI, bestJ := 0, 0
	for i := 0; i < len(a); i++ {
		for j := 0; j < len(b); j++ {
			k := 0
			for i+k < len(a) && j+k < len(b) && a[i+k] == b[j+k] {
				k++
			}
			if k > best {
				best = k
				bestI = i
				bestJ = j
			}
		}
	}
	return bestI, bestJ, best
}
