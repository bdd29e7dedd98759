package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferMatchesNameKeyword(t *testing.T) {
	g := Infer("Margherita Pizza", "mozzarella, basil", 1299, nil)
	assert.Equal(t, Pizza, g.Category)
	assert.GreaterOrEqual(t, g.Confidence, 40)
}

func TestInferFallsBackToBeveragesOnCheapPriceNoText(t *testing.T) {
	g := Infer("", "", 250, nil)
	assert.Equal(t, Beverages, g.Category)
	assert.Equal(t, 35, g.Confidence)
}

func TestInferFallsBackToUncategorizedWithNoSignal(t *testing.T) {
	g := Infer("Item 7", "", 0, nil)
	assert.Equal(t, FallbackCat, g.Category)
	assert.Equal(t, 15, g.Confidence)
}

func TestInferNoSignalAtAllUsesFallback(t *testing.T) {
	g := Infer("", "", 0, nil)
	assert.Equal(t, FallbackCat, g.Category)
	assert.Equal(t, 5, g.Confidence)
}

func TestInferNeighborBoostsAgreement(t *testing.T) {
	withNeighbors := Infer("House Special", "", 0, []string{Wings, Wings})
	withoutNeighbors := Infer("House Special", "", 0, nil)
	assert.Equal(t, Wings, withNeighbors.Category)
	assert.Equal(t, FallbackCat, withoutNeighbors.Category)
}
