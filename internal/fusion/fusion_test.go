package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/menuforge/extractor-core/pkg/menu"
)

func TestClusterPassesMergesOverlappingWords(t *testing.T) {
	passes := []pass{
		{rotation: 0, psm: 6, words: []menu.Word{
			{Text: "Pepperoni", Conf: 80, BBox: menu.BBox{X: 10, Y: 10, W: 80, H: 20}},
		}},
		{rotation: 0, psm: 4, words: []menu.Word{
			{Text: "Pepperoni", Conf: 92, BBox: menu.BBox{X: 11, Y: 10, W: 78, H: 20}},
		}},
		{rotation: 0, psm: 11, words: []menu.Word{
			{Text: "Sausage", Conf: 85, BBox: menu.BBox{X: 200, Y: 10, W: 60, H: 20}},
		}},
	}

	fused := clusterPasses(passes, 0.35, 0.60, 70)
	assert.Len(t, fused, 2)

	var pepperoni *menu.Word
	for i := range fused {
		if fused[i].Text == "Pepperoni" {
			pepperoni = &fused[i]
		}
	}
	if assert.NotNil(t, pepperoni) {
		assert.Equal(t, 92.0, pepperoni.Conf)
	}
}

func TestClusterPassesDoesNotMergeDifferentText(t *testing.T) {
	passes := []pass{
		{rotation: 0, psm: 6, words: []menu.Word{
			{Text: "Pepperoni", Conf: 80, BBox: menu.BBox{X: 10, Y: 10, W: 80, H: 20}},
		}},
		{rotation: 0, psm: 4, words: []menu.Word{
			{Text: "Supreme", Conf: 92, BBox: menu.BBox{X: 11, Y: 10, W: 78, H: 20}},
		}},
	}

	fused := clusterPasses(passes, 0.35, 0.60, 70)
	assert.Len(t, fused, 2)
}

func TestClusterPassesDropsLowConfidenceSinglePassCluster(t *testing.T) {
	passes := []pass{
		{rotation: 0, psm: 6, words: []menu.Word{
			{Text: "Pepperoni", Conf: 55, BBox: menu.BBox{X: 10, Y: 10, W: 80, H: 20}},
		}},
		{rotation: 0, psm: 4, words: []menu.Word{
			{Text: "Sausage", Conf: 60, BBox: menu.BBox{X: 200, Y: 10, W: 60, H: 20}},
		}},
	}

	fused := clusterPasses(passes, 0.35, 0.60, 70)
	assert.Empty(t, fused)
}

func TestScoreRotationsPenalizesNoisyOutlierRotation(t *testing.T) {
	f := &Fuser{config: DefaultConfig()}

	wordsOf := func(n int, conf float64) []menu.Word {
		out := make([]menu.Word, n)
		for i := range out {
			out[i] = menu.Word{Text: "menu", Conf: conf, BBox: menu.BBox{X: i * 10, Y: 0, W: 8, H: 10}}
		}
		return out
	}

	fusedByRotation := map[int][]menu.Word{
		0:   wordsOf(40, 88),
		90:  wordsOf(120, 30),
		180: wordsOf(38, 50),
		270: wordsOf(42, 45),
	}

	scores := f.scoreRotations(fusedByRotation)
	// The noisy 90-degree rotation produces far more tokens than the
	// others but at much lower confidence; the outlier penalty plus the
	// low average confidence should keep rotation 0 on top.
	assert.Greater(t, scores[0], scores[90])
}

func TestSelectRotationPrefersZeroOnNearTie(t *testing.T) {
	f := &Fuser{config: DefaultConfig()}
	scores := map[int]float64{0: 10.0, 90: 10.005, 180: 5.0, 270: 4.0}
	assert.Equal(t, 0, f.selectRotation(scores))
}

func TestSelectRotationPicksClearWinner(t *testing.T) {
	f := &Fuser{config: DefaultConfig()}
	scores := map[int]float64{0: 10.0, 90: 25.0, 180: 5.0, 270: 4.0}
	assert.Equal(t, 90, f.selectRotation(scores))
}
