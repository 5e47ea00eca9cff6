package spritepack

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
)

// solidSprite builds a sprite from a uniformly colored bitmap.
func solidSprite(w, h int, c color.NRGBA, pixelRatio int) *Sprite {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	return NewSpriteFromImage(img, pixelRatio)
}

var (
	cyan    = color.NRGBA{R: 33, G: 150, B: 243, A: 255}
	magenta = color.NRGBA{R: 233, G: 30, B: 99, A: 255}
)

func TestDedupe_CollapsesIdenticalPixels(t *testing.T) {
	assert := assert.New(t)

	sprites := map[string]*Sprite{
		"aerialway": solidSprite(10, 10, cyan, 1),
		"airfield":  solidSprite(10, 10, cyan, 1),
		"airport":   solidSprite(20, 5, magenta, 1),
	}

	unique, aliases := dedupe(sprites)

	assert.Len(unique, 2)
	assert.Contains(unique, "aerialway")
	assert.Contains(unique, "airport")
	assert.NotContains(unique, "airfield")
	assert.Equal([]string{"airfield"}, aliases["aerialway"])
}

func TestDedupe_FirstNameStaysCanonical(t *testing.T) {
	sprites := map[string]*Sprite{
		"zebra":  solidSprite(4, 4, cyan, 1),
		"aars":   solidSprite(4, 4, cyan, 1),
		"middle": solidSprite(4, 4, cyan, 1),
	}

	// The canonical choice only depends on the lexicographic input order.
	for i := 0; i < 5; i++ {
		unique, aliases := dedupe(sprites)
		assert.Len(t, unique, 1)
		assert.Contains(t, unique, "aars")
		assert.Equal(t, []string{"middle", "zebra"}, aliases["aars"])
	}
}

func TestDedupe_DimensionsDisambiguate(t *testing.T) {
	// Same byte count, different shapes: must stay distinct sprites.
	sprites := map[string]*Sprite{
		"tall": solidSprite(5, 20, cyan, 1),
		"wide": solidSprite(20, 5, cyan, 1),
	}

	unique, aliases := dedupe(sprites)
	assert.Len(t, unique, 2)
	assert.Empty(t, aliases)
}

func TestDedupe_DistinctPixelsKeptApart(t *testing.T) {
	a := solidSprite(8, 8, cyan, 1)
	b := solidSprite(8, 8, cyan, 1)
	b.img.Pix[0] ^= 0xff

	unique, aliases := dedupe(map[string]*Sprite{"a": a, "b": b})
	assert.Len(t, unique, 2)
	assert.Empty(t, aliases)
}
