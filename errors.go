package spritepack

import "errors"

// The errors which abort a spritesheet build. Anything that would produce an
// inconsistent spritesheet is fatal and yields no output artifact; recoverable
// conditions (a malformed metadata node) are silently omitted instead.
var (
	// ErrNoSprites is returned when a spritesheet is generated from an empty sprite set.
	ErrNoSprites = errors.New("spritepack: no sprites to pack")

	// ErrPackingExhausted is returned when the packer could not place every
	// sprite without exceeding its growth bound.
	ErrPackingExhausted = errors.New("spritepack: could not pack the sprites within the growth bound")

	// ErrRasterAllocation is returned when a bitmap of the computed dimensions
	// cannot be allocated.
	ErrRasterAllocation = errors.New("spritepack: cannot allocate the raster buffer")

	// ErrEncoding is returned when the spritesheet could not be encoded to its
	// output byte stream.
	ErrEncoding = errors.New("spritepack: image encoding failed")
)
