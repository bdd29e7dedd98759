package ocrtext

import (
	"context"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanTokenTypoMap(t *testing.T) {
	assert.Equal(t, "BBQ", CleanToken("88Q"))
	assert.Equal(t, "PIZZA", CleanToken("piZzA"))
	assert.Equal(t, "Basil", CleanToken("Basi!"))
	assert.Equal(t, "W/ Fries", CleanToken("WI/ Fries"))
}

func TestCleanTokenBracketNoise(t *testing.T) {
	assert.Equal(t, "Chicken", CleanToken("[a1Chicken"))
}

func TestCleanTokenCollapsesRepeats(t *testing.T) {
	assert.Equal(t, "BBQ Chicken--", CleanToken("BBBQ Chicken-----"))
}

func TestCleanTokenStripsDisallowedChars(t *testing.T) {
	assert.Equal(t, "Chicken #Wings", CleanToken("Chicken @#Wings%^"))
}

func TestCleanTokenIsIdempotent(t *testing.T) {
	inputs := []string{"88Q Chicken!!!", "[a1Mozzarella @Sticks", "piZzA   Supreme", "$12.99"}
	for _, in := range inputs {
		once := CleanToken(in)
		twice := CleanToken(once)
		assert.Equal(t, once, twice, "CleanToken not idempotent for %q", in)
	}
}

func TestIsGarbageTokenShortNoAlnum(t *testing.T) {
	assert.True(t, IsGarbageToken("--"))
	assert.True(t, IsGarbageToken("."))
}

func TestIsGarbageTokenLowAlphaRatioNoDigits(t *testing.T) {
	assert.True(t, IsGarbageToken("a..,;:"))
	assert.False(t, IsGarbageToken("Chicken"))
}

func TestIsGarbageTokenConsonantRun(t *testing.T) {
	assert.True(t, IsGarbageToken("xkcdbfgh"))
	assert.False(t, IsGarbageToken("Strength"))
}

func TestIsGarbageTokenSymbolRatio(t *testing.T) {
	assert.True(t, IsGarbageToken("a#$%^&"))
	assert.False(t, IsGarbageToken("$12.99"))
}

func TestIsGarbageTokenAllowsPriceTokens(t *testing.T) {
	assert.False(t, IsGarbageToken("$12.99"))
	assert.False(t, IsGarbageToken("10\""))
}

type fakeEngine struct {
	table TokenTable
}

func (f *fakeEngine) Recognize(ctx context.Context, img image.Image, psm int) (TokenTable, error) {
	return f.table, nil
}

func (f *fakeEngine) EffectiveConfig() string { return "fake" }

func TestRecognizerFiltersLowConfidenceAndGarbage(t *testing.T) {
	table := TokenTable{
		Text:   []string{"Chicken", "xkjqz", "88Q", "$9.99"},
		Conf:   []float64{90, 95, 60, 40},
		Left:   []int{0, 10, 20, 30},
		Top:    []int{0, 0, 0, 0},
		Width:  []int{50, 30, 20, 30},
		Height: []int{20, 20, 20, 20},
	}
	r := NewRecognizer(&fakeEngine{table: table}, 0)

	words, err := r.Recognize(context.Background(), image.NewRGBA(image.Rect(0, 0, 10, 10)), 6)
	require.NoError(t, err)

	require.Len(t, words, 2)
	assert.Equal(t, "Chicken", words[0].Text)
	assert.Equal(t, "BBQ", words[1].Text)
}
