package spritepack

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// maxRasterPixels bounds the size of the composited bitmap. A spritesheet
// beyond this (1 GiB of RGBA) is a sign of corrupt input rather than a real
// icon set.
const maxRasterPixels = 1 << 28

// Config is the immutable build configuration consumed by New.
type Config struct {
	// Spacing is the number of padding pixels kept between sprites.
	Spacing int
	// Unique collapses byte-identical sprites into one bitmap with multiple
	// index entries.
	Unique bool
	// SDF marks every index entry as a signed distance field icon. Sprites
	// created with NewSpriteSDF are marked regardless.
	SDF bool
}

// Spritesheet is a composited bitmap containing many icons, plus the index
// describing where each icon lives. Immutable once built.
type Spritesheet struct {
	img   *image.NRGBA
	index map[string]SpriteDescription
}

// New packs the named sprites into a single spritesheet. The sprite set is
// deduplicated when cfg.Unique is set, packed into the smallest enclosing
// power-of-two-grown bin, composited, and indexed. Every failure is fatal:
// there is no partial output.
func New(sprites map[string]*Sprite, cfg Config) (*Spritesheet, error) {
	if len(sprites) == 0 {
		return nil, ErrNoSprites
	}
	if cfg.Spacing < 0 {
		return nil, fmt.Errorf("spacing must not be negative, got %d", cfg.Spacing)
	}

	unique := sprites
	var aliases map[string][]string
	if cfg.Unique {
		unique, aliases = dedupe(sprites)
	}

	boxes := make([]spriteBox, 0, len(unique))
	for _, name := range sortedNames(unique) {
		s := unique[name]
		boxes = append(boxes, spriteBox{name: name, w: s.Width(), h: s.Height()})
	}

	placements, binW, binH, err := packSprites(boxes, cfg.Spacing, defaultGrowthLimit)
	if err != nil {
		return nil, err
	}

	sheet, err := composite(placements, unique, binW, binH)
	if err != nil {
		return nil, err
	}

	return &Spritesheet{
		img:   sheet,
		index: buildIndex(placements, unique, aliases, cfg.SDF),
	}, nil
}

// composite copies every sprite's pixels, unscaled, to its placement offset
// in a freshly allocated bitmap of the tight bin dimensions. Placements never
// overlap, so a plain source copy stands in for alpha blending.
func composite(placements []PlacedSprite, sprites map[string]*Sprite, binW, binH int) (*image.NRGBA, error) {
	if binW <= 0 || binH <= 0 || binW*binH > maxRasterPixels {
		return nil, fmt.Errorf("%w: %dx%d spritesheet", ErrRasterAllocation, binW, binH)
	}
	sheet := image.NewNRGBA(image.Rect(0, 0, binW, binH))
	for _, p := range placements {
		r := image.Rect(p.Rect.X, p.Rect.Y, p.Rect.X+p.Rect.W, p.Rect.Y+p.Rect.H)
		draw.Draw(sheet, r, sprites[p.Name].Image(), image.Point{}, draw.Src)
	}
	return sheet, nil
}

// Image returns the composited spritesheet bitmap.
func (s *Spritesheet) Image() *image.NRGBA {
	return s.img
}

// Index returns the name to description mapping. Lexicographic key order is
// applied on serialization.
func (s *Spritesheet) Index() map[string]SpriteDescription {
	return s.index
}

// Encode writes the spritesheet to w as a PNG compressed at the best level.
func (s *Spritesheet) Encode(w io.Writer) error {
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(w, s.img); err != nil {
		return fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return nil
}

// Save writes the spritesheet bitmap to a local file. The container is picked
// from the file extension; PNG is the default and the only format map
// renderers consume, BMP and TIFF are kept for debugging pipelines.
func (s *Spritesheet) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	switch filepath.Ext(path) {
	case "", ".png":
		return s.Encode(file)
	case ".bmp":
		if err := bmp.Encode(file, s.img); err != nil {
			return fmt.Errorf("%w: %v", ErrEncoding, err)
		}
	case ".tif", ".tiff":
		opts := &tiff.Options{Compression: tiff.Deflate}
		if err := tiff.Encode(file, s.img, opts); err != nil {
			return fmt.Errorf("%w: %v", ErrEncoding, err)
		}
	default:
		return fmt.Errorf("unsupported spritesheet format %q", filepath.Ext(path))
	}
	return nil
}

// EncodeIndex writes the JSON index file to w. Minify removes the
// insignificant whitespace only; field order and values are unchanged.
func (s *Spritesheet) EncodeIndex(w io.Writer, minify bool) error {
	data, err := encodeIndex(s.index, minify)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// SaveIndex writes the JSON index to prefix + ".json".
func (s *Spritesheet) SaveIndex(prefix string, minify bool) error {
	file, err := os.Create(prefix + ".json")
	if err != nil {
		return err
	}
	defer file.Close()
	return s.EncodeIndex(file, minify)
}
