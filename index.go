package spritepack

import (
	"encoding/json"
	"math"
	"strconv"
)

// SpriteDescription records where a sprite lives within a spritesheet,
// matching the Mapbox Style Specification index file entry. One instance is
// emitted per name, aliases included; aliases share the canonical sprite's
// geometry and metadata.
type SpriteDescription struct {
	Height     int     `json:"height"`
	PixelRatio int     `json:"pixelRatio"`
	Width      int     `json:"width"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Content    *Box    `json:"content,omitempty"`
	StretchX   []Range `json:"stretchX,omitempty"`
	StretchY   []Range `json:"stretchY,omitempty"`
	SDF        bool    `json:"sdf,omitempty"`
}

// Range is a [from, to] span of a stretch zone, in destination pixels.
type Range [2]float64

// buildIndex produces the name to description mapping for the placed sprites,
// expanding every alias into its own entry.
func buildIndex(placements []PlacedSprite, sprites map[string]*Sprite, aliases map[string][]string, sdf bool) map[string]SpriteDescription {
	index := make(map[string]SpriteDescription, len(placements))
	for _, p := range placements {
		desc := describe(p.Rect, sprites[p.Name], sdf)
		index[p.Name] = desc
		for _, alias := range aliases[p.Name] {
			index[alias] = desc
		}
	}
	return index
}

// describe builds the index entry for one placed sprite.
func describe(rect Rect, sprite *Sprite, sdf bool) SpriteDescription {
	desc := SpriteDescription{
		Height:     rect.H,
		PixelRatio: sprite.PixelRatio(),
		Width:      rect.W,
		X:          rect.X,
		Y:          rect.Y,
		Content:    sprite.ContentArea(),
		SDF:        sdf || sprite.sdf,
	}
	for _, b := range sprite.StretchXAreas() {
		desc.StretchX = append(desc.StretchX, Range{b.Left, b.Right})
	}
	for _, b := range sprite.StretchYAreas() {
		desc.StretchY = append(desc.StretchY, Range{b.Top, b.Bottom})
	}
	return desc
}

// MarshalJSON serializes the box as the 4-number array [left, top, right,
// bottom] used by the index file's content field.
func (b Box) MarshalJSON() ([]byte, error) {
	return marshalNumbers(b.Left, b.Top, b.Right, b.Bottom)
}

// MarshalJSON serializes the span as a 2-number array.
func (r Range) MarshalJSON() ([]byte, error) {
	return marshalNumbers(r[0], r[1])
}

// marshalNumbers writes a JSON array applying the exact-match numeric rule:
// a value with zero fractional part serializes as an integer, anything else
// as a real number rounded to 3 decimal places. This keeps the output in the
// JavaScript style of intermingled integers and floats that map renderers
// emit and consume.
func marshalNumbers(nums ...float64) ([]byte, error) {
	out := make([]byte, 0, 8*len(nums))
	out = append(out, '[')
	for i, n := range nums {
		if i > 0 {
			out = append(out, ',')
		}
		if _, frac := math.Modf(n); frac == 0 {
			out = strconv.AppendInt(out, int64(math.Round(n)), 10)
		} else {
			out = strconv.AppendFloat(out, math.Round(n*1e3)/1e3, 'f', -1, 64)
		}
	}
	return append(out, ']'), nil
}

// encodeIndex serializes the index with lexicographically ordered keys.
// Minified output drops the insignificant whitespace and nothing else.
func encodeIndex(index map[string]SpriteDescription, minify bool) ([]byte, error) {
	if minify {
		return json.Marshal(index)
	}
	return json.MarshalIndent(index, "", "  ")
}
