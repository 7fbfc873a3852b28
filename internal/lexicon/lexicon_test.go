package lexicon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetHas(t *testing.T) {
	assert.True(t, FunctionWords.Has("the"))
	assert.False(t, FunctionWords.Has("river"))
	assert.True(t, BannedStarters.Has("it"))
	assert.Equal(t, 6, BannedStarters.Len())
}

func TestDetectUsesWordBoundaries(t *testing.T) {
	text := "a scattered shower; the catalog of ten rainy days"
	assert.Equal(t, []string{}, Animals.Detect(text), "cat inside catalog must not match")
	assert.Equal(t, []string{"ten"}, Numbers.Detect(text))
	assert.Equal(t, []string{"rainy"}, Weather.Detect(text))
}

func TestDetectMatchesDigitsAndPossessives(t *testing.T) {
	assert.Equal(t, []string{"10"}, Numbers.Detect("count to 10 now"))
	assert.Equal(t, []string{"otter"}, Animals.Detect("the otter's den"))
}

func TestDetectBoundariesAreUnicodeAware(t *testing.T) {
	assert.Equal(t, []string{}, Colors.Detect("éred skies"))
	assert.Equal(t, []string{}, Colors.Detect("red_line"))
	assert.Equal(t, []string{}, Numbers.Detect("10"+"٣"))
	assert.Equal(t, []string{"blue", "red"}, Colors.Detect("über red, blue…"))
	assert.Equal(t, []string{"red"}, Colors.Detect("red"))
}

func TestCategoriesOrder(t *testing.T) {
	var names []string
	for _, c := range Categories {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"color", "number", "weather", "animal", "instrument"}, names)
}

func TestSortedIsStable(t *testing.T) {
	got := BannedStarters.Sorted()
	assert.Equal(t, []string{"a", "and", "but", "in", "it", "the"}, got)
}
