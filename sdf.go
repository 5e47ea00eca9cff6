package spritepack

import (
	"image"
	"math"
)

// Signed distance field parameters. The buffer matches the 3px margin used by
// the Mapbox icon pipeline; radius and cutoff are the values recommended for
// map glyph rendering.
const (
	sdfBuffer = 3
	sdfRadius = 8.0
	sdfCutoff = 0.25
)

// renderSDF converts a rasterized alpha channel into a quantized signed
// distance field. The source alpha is copied into a buffer padded by
// sdfBuffer transparent pixels on every side, then every pixel of the padded
// buffer is assigned the Euclidean distance to the nearest 0/non-0 alpha
// transition within sdfRadius, negative inside shapes and positive outside.
// The raw distance is remapped to 8 bits so that 192..255 mean "inside" and
// 0..191 mean "outside".
//
// The output is a premultiplied black bitmap of (width+6)x(height+6) pixels
// whose alpha channel holds the quantized distances. The transform is a pure
// function of its inputs.
func renderSDF(alpha []uint8, width, height int) *image.NRGBA {
	bw := width + 2*sdfBuffer
	bh := height + 2*sdfBuffer

	buffered := make([]uint8, bw*bh)
	for y := 0; y < height; y++ {
		copy(buffered[(y+sdfBuffer)*bw+sdfBuffer:], alpha[y*width:(y+1)*width])
	}

	dst := image.NewNRGBA(image.Rect(0, 0, bw, bh))
	for y := 0; y < bh; y++ {
		for x := 0; x < bw; x++ {
			d := signedDistance(buffered, bw, bh, x, y)
			v := math.Round(255 - 255*(d/sdfRadius+sdfCutoff))
			if v < 0 {
				v = 0
			} else if v > 255 {
				v = 255
			}
			off := y*dst.Stride + x*4
			// Black with the distance in the alpha channel; with zero color
			// components the premultiplied and straight forms coincide.
			dst.Pix[off+3] = uint8(v)
		}
	}
	return dst
}

// signedDistance returns the Euclidean distance from pixel (px, py) to the
// nearest pixel of the opposite alpha class, capped at sdfRadius; the result
// is negative when the pixel itself is inside a shape.
func signedDistance(alpha []uint8, w, h, px, py int) float64 {
	const r = int(sdfRadius)
	inside := alpha[py*w+px] > 0

	best := sdfRadius * sdfRadius
	found := false
	for dy := -r; dy <= r; dy++ {
		y := py + dy
		if y < 0 || y >= h {
			// Pixels beyond the buffered bitmap are fully transparent.
			if !inside {
				continue
			}
			y = -1
		}
		for dx := -r; dx <= r; dx++ {
			x := px + dx
			outOfBounds := y < 0 || x < 0 || x >= w
			var opposite bool
			if outOfBounds {
				opposite = inside
			} else {
				opposite = (alpha[y*w+x] > 0) != inside
			}
			if !opposite {
				continue
			}
			if d2 := float64(dx*dx + dy*dy); d2 < best {
				best = d2
				found = true
			}
		}
	}

	d := sdfRadius
	if found {
		d = math.Sqrt(best)
	}
	if inside {
		return -d
	}
	return d
}
