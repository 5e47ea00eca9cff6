package spritepack

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/srwiley/rasterx"
)

// Sprite is a single icon within a spritesheet: a rasterized bitmap, the
// pixel ratio it was rendered at and a handle back to the vector source used
// for the stretchable-icon metadata lookups. A sprite is immutable once
// rasterized.
type Sprite struct {
	img        *image.NRGBA
	pixelRatio int
	sdf        bool
	source     *Vector
}

// NewSprite rasterizes the vector image at the given pixel ratio. A ratio of
// 2 renders the bitmap at twice the size of the SVG image.
func NewSprite(v *Vector, pixelRatio int) (*Sprite, error) {
	img, err := rasterize(v, pixelRatio)
	if err != nil {
		return nil, err
	}
	return &Sprite{img: img, pixelRatio: pixelRatio, source: v}, nil
}

// NewSpriteSDF rasterizes the vector image and replaces the bitmap with its
// signed distance field, stored as a black premultiplied image whose alpha
// channel encodes the distance. The result is buffered by 3px on each side
// and so is 6px wider and 6px higher than the plain rasterization.
//
// The distance encoding follows the Mapbox/MapLibre icon convention: values
// between 192 and 255 represent "inside" a shape and values from 0 to 191
// represent "outside", giving the appearance of a gradient from black (0) to
// white (255).
func NewSpriteSDF(v *Vector, pixelRatio int) (*Sprite, error) {
	img, err := rasterize(v, pixelRatio)
	if err != nil {
		return nil, err
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	alpha := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			alpha[y*w+x] = img.Pix[y*img.Stride+x*4+3]
		}
	}
	return &Sprite{
		img:        renderSDF(alpha, w, h),
		pixelRatio: pixelRatio,
		sdf:        true,
		source:     v,
	}, nil
}

// NewSpriteFromImage wraps an already rasterized bitmap. It is meant for
// callers that run their own rasterizer; such sprites carry no vector source
// and therefore no content or stretch metadata.
func NewSpriteFromImage(img image.Image, pixelRatio int) *Sprite {
	return &Sprite{img: imaging.Clone(img), pixelRatio: pixelRatio}
}

// rasterize renders the vector image into an NRGBA bitmap scaled by the
// pixel ratio.
func rasterize(v *Vector, pixelRatio int) (*image.NRGBA, error) {
	if pixelRatio < 1 {
		return nil, fmt.Errorf("pixel ratio must be positive, got %d", pixelRatio)
	}
	w := int(math.Round(v.width * float64(pixelRatio)))
	h := int(math.Round(v.height * float64(pixelRatio)))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: invalid sprite dimensions %dx%d", ErrRasterAllocation, w, h)
	}

	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	v.icon.SetTarget(0, 0, float64(w), float64(h))
	scanner := rasterx.NewScannerGV(w, h, rgba, rgba.Bounds())
	raster := rasterx.NewDasher(w, h, scanner)
	v.icon.Draw(raster, 1.0)

	return imaging.Clone(rgba), nil
}

// Image returns the sprite's rasterized bitmap.
func (s *Sprite) Image() *image.NRGBA {
	return s.img
}

// PixelRatio returns the sprite's pixel ratio.
func (s *Sprite) PixelRatio() int {
	return s.pixelRatio
}

// Width returns the bitmap width in destination pixels.
func (s *Sprite) Width() int {
	return s.img.Bounds().Dx()
}

// Height returns the bitmap height in destination pixels.
func (s *Sprite) Height() int {
	return s.img.Bounds().Dy()
}

// ContentArea describes the content box of a stretchable icon, taken from the
// bounding box of the SVG element with the id `mapbox-content`. When the
// MapLibre/Mapbox map symbol uses icon-text-fit, the symbol's text is fitted
// inside this box. Returns nil when the icon specifies no content area.
func (s *Sprite) ContentArea() *Box {
	if s.source == nil {
		return nil
	}
	if b, ok := s.source.nodeBox("mapbox-content"); ok {
		return s.scaled(b)
	}
	return nil
}

// StretchXAreas describes the horizontal stretch zones of a stretchable icon,
// taken from SVG elements with the ids `mapbox-stretch-x`, `mapbox-stretch-x-1`,
// `mapbox-stretch-x-2` and so on; the numbered scan stops at the first gap.
// When no x-specific elements exist, the `mapbox-stretch` shorthand applies.
// Returns nil when the icon specifies no horizontal stretch zones.
func (s *Sprite) StretchXAreas() []Box {
	return s.stretchAreas("x")
}

// StretchYAreas describes the vertical stretch zones of a stretchable icon.
// It follows the same lookup protocol as StretchXAreas with the
// `mapbox-stretch-y` ids.
func (s *Sprite) StretchYAreas() []Box {
	return s.stretchAreas("y")
}

func (s *Sprite) stretchAreas(axis string) []Box {
	if s.source == nil {
		return nil
	}
	var values []Box
	if b, ok := s.source.nodeBox("mapbox-stretch-" + axis); ok {
		values = append(values, *s.scaled(b))
	}
	for i := 1; ; i++ {
		b, ok := s.source.nodeBox(fmt.Sprintf("mapbox-stretch-%s-%d", axis, i))
		if !ok {
			break
		}
		values = append(values, *s.scaled(b))
	}
	if len(values) == 0 {
		// The `mapbox-stretch` id is a shorthand for stretch-x and stretch-y
		// and applies only when no axis-specific elements exist.
		if b, ok := s.source.nodeBox("mapbox-stretch"); ok {
			return []Box{*s.scaled(b)}
		}
		return nil
	}
	return values
}

// scaled multiplies a source-unit box by the sprite's pixel ratio.
func (s *Sprite) scaled(b Box) *Box {
	r := float64(s.pixelRatio)
	return &Box{Left: b.Left * r, Top: b.Top * r, Right: b.Right * r, Bottom: b.Bottom * r}
}
