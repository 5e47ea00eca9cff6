package spritepack

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// overlaps reports whether two placement rectangles share any pixel.
func overlaps(a, b Rect) bool {
	return a.X < b.X+b.W && b.X < a.X+a.W && a.Y < b.Y+b.H && b.Y < a.Y+a.H
}

func TestPack_NoOverlapAndContainment(t *testing.T) {
	assert := assert.New(t)

	var boxes []spriteBox
	for i := 0; i < 40; i++ {
		boxes = append(boxes, spriteBox{
			name: fmt.Sprintf("icon-%02d", i),
			w:    5 + i%13,
			h:    4 + i%7,
		})
	}

	placements, binW, binH, err := packSprites(boxes, 0, defaultGrowthLimit)
	assert.NoError(err)
	assert.Len(placements, len(boxes))

	for i, p := range placements {
		assert.GreaterOrEqual(p.Rect.X, 0)
		assert.GreaterOrEqual(p.Rect.Y, 0)
		assert.LessOrEqual(p.Rect.X+p.Rect.W, binW)
		assert.LessOrEqual(p.Rect.Y+p.Rect.H, binH)
		for j := i + 1; j < len(placements); j++ {
			assert.False(overlaps(p.Rect, placements[j].Rect),
				"placements %s and %s overlap", p.Name, placements[j].Name)
		}
	}
}

func TestPack_TightBinDimensions(t *testing.T) {
	assert := assert.New(t)

	boxes := []spriteBox{
		{name: "a", w: 10, h: 10},
		{name: "b", w: 20, h: 5},
	}
	placements, binW, binH, err := packSprites(boxes, 0, defaultGrowthLimit)
	assert.NoError(err)

	maxRight, maxBottom := 0, 0
	for _, p := range placements {
		if r := p.Rect.X + p.Rect.W; r > maxRight {
			maxRight = r
		}
		if b := p.Rect.Y + p.Rect.H; b > maxBottom {
			maxBottom = b
		}
	}
	// No trailing empty rows or columns.
	assert.Equal(maxRight, binW)
	assert.Equal(maxBottom, binH)

	// The bin covers the largest sprite on both axes.
	assert.GreaterOrEqual(binW, 20)
	assert.GreaterOrEqual(binH, 10)
}

func TestPack_HugeSpriteBesideTinyOne(t *testing.T) {
	assert := assert.New(t)

	boxes := []spriteBox{
		{name: "huge", w: 4096, h: 4096},
		{name: "tiny", w: 1, h: 1},
	}
	placements, binW, binH, err := packSprites(boxes, 0, defaultGrowthLimit)
	assert.NoError(err)
	assert.Len(placements, 2)
	assert.GreaterOrEqual(binW, 4096)
	assert.GreaterOrEqual(binH, 4096)
	assert.False(overlaps(placements[0].Rect, placements[1].Rect))
}

func TestPack_SpacingKeepsSpritesApart(t *testing.T) {
	assert := assert.New(t)

	const spacing = 2
	boxes := []spriteBox{
		{name: "a", w: 10, h: 10},
		{name: "b", w: 10, h: 10},
	}
	placements, _, _, err := packSprites(boxes, spacing, defaultGrowthLimit)
	assert.NoError(err)

	a, b := placements[0].Rect, placements[1].Rect
	gapX := spanGap(a.X, a.W, b.X, b.W)
	gapY := spanGap(a.Y, a.H, b.Y, b.H)
	assert.True(gapX >= spacing || gapY >= spacing,
		"expected a %dpx gap between %+v and %+v", spacing, a, b)
}

// spanGap returns the empty distance between two spans, or -1 if they overlap.
func spanGap(x1, w1, x2, w2 int) int {
	if x1 > x2 {
		x1, w1, x2, w2 = x2, w2, x1, w1
	}
	return x2 - (x1 + w1)
}

func TestPack_GrowthBoundExceeded(t *testing.T) {
	// Three squares that fit the combined area but not any bin within a 1x
	// growth bound.
	boxes := []spriteBox{
		{name: "a", w: 3000, h: 3000},
		{name: "b", w: 3000, h: 3000},
		{name: "c", w: 3000, h: 3000},
	}
	_, _, _, err := packSprites(boxes, 0, 1.0)
	assert.ErrorIs(t, err, ErrPackingExhausted)

	// The default bound packs them fine.
	_, _, _, err = packSprites(boxes, 0, defaultGrowthLimit)
	assert.NoError(t, err)
}

func TestPack_Deterministic(t *testing.T) {
	boxes := []spriteBox{
		{name: "a", w: 7, h: 9},
		{name: "b", w: 12, h: 3},
		{name: "c", w: 5, h: 5},
		{name: "d", w: 7, h: 9},
	}
	first, fw, fh, err := packSprites(boxes, 1, defaultGrowthLimit)
	assert.NoError(t, err)
	second, sw, sh, err := packSprites(boxes, 1, defaultGrowthLimit)
	assert.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, fw, sw)
	assert.Equal(t, fh, sh)
}

func TestPack_NoBoxes(t *testing.T) {
	_, _, _, err := packSprites(nil, 0, defaultGrowthLimit)
	assert.ErrorIs(t, err, ErrNoSprites)
}
