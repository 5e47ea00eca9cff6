package spritepack

import (
	"sort"

	"github.com/tilekit/spritepack/utils"
)

// Rect is an integer rectangle in destination pixel space.
type Rect struct {
	X, Y, W, H int
}

// PlacedSprite associates a sprite name with its placement rectangle in the
// spritesheet. Produced once by the packer and never mutated afterwards.
type PlacedSprite struct {
	Name string
	Rect Rect
}

// spriteBox is a named box handed to the packer; width and height exclude
// spacing.
type spriteBox struct {
	name string
	w, h int
}

// defaultGrowthLimit caps the packing bin area at this multiple of the
// sprites' combined pixel area. The bin grows by power-of-two doubling, so the
// bound is reached after a handful of retries at most.
const defaultGrowthLimit = 10.0

// packSprites assigns non-overlapping placements to the given boxes. Each box
// is padded by spacing pixels on its right and bottom edges before packing so
// that the sprites stay spacing apart; the returned rectangles keep the
// unpadded sizes. The target bin starts at the smallest power-of-two box that
// can hold the largest sprite and covers the combined area, and doubles its
// smaller dimension on every retry. Packing fails with ErrPackingExhausted
// once the bin area would exceed growthLimit times the combined area.
//
// On success the reported bin dimensions are tight: the maximum right and
// bottom edge over all placements, discarding unused trailing space.
func packSprites(boxes []spriteBox, spacing int, growthLimit float64) ([]PlacedSprite, int, int, error) {
	if len(boxes) == 0 {
		return nil, 0, 0, ErrNoSprites
	}

	// Deterministic packing order: tallest first, then widest, then by name.
	sorted := make([]spriteBox, len(boxes))
	copy(sorted, boxes)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.h != b.h {
			return a.h > b.h
		}
		if a.w != b.w {
			return a.w > b.w
		}
		return a.name < b.name
	})

	var area, maxW, maxH int
	for _, b := range sorted {
		ew, eh := b.w+spacing, b.h+spacing
		area += ew * eh
		maxW = utils.Max(maxW, ew)
		maxH = utils.Max(maxH, eh)
	}

	binW, binH := po2Ceil(maxW), po2Ceil(maxH)
	for binW*binH < area {
		if binW <= binH {
			binW *= 2
		} else {
			binH *= 2
		}
	}

	for {
		if rects, ok := packInto(sorted, spacing, binW, binH); ok {
			placements := make([]PlacedSprite, len(sorted))
			tightW, tightH := 0, 0
			for i, b := range sorted {
				placements[i] = PlacedSprite{Name: b.name, Rect: rects[i]}
				tightW = utils.Max(tightW, rects[i].X+rects[i].W)
				tightH = utils.Max(tightH, rects[i].Y+rects[i].H)
			}
			return placements, tightW, tightH, nil
		}

		if binW <= binH {
			binW *= 2
		} else {
			binH *= 2
		}
		if float64(binW)*float64(binH) > growthLimit*float64(area) {
			return nil, 0, 0, ErrPackingExhausted
		}
	}
}

// packInto attempts a guillotine best-area-fit packing of the boxes (with
// spacing added to their effective sizes) into a binW x binH bin. The
// returned rectangles are parallel to boxes and hold the unpadded sizes.
func packInto(boxes []spriteBox, spacing, binW, binH int) ([]Rect, bool) {
	free := []Rect{{0, 0, binW, binH}}
	rects := make([]Rect, len(boxes))

	for i, b := range boxes {
		ew, eh := b.w+spacing, b.h+spacing

		best := -1
		bestLeftover := 0
		for j, fr := range free {
			if fr.W < ew || fr.H < eh {
				continue
			}
			leftover := fr.W*fr.H - ew*eh
			if best < 0 || leftover < bestLeftover {
				best = j
				bestLeftover = leftover
			}
		}
		if best < 0 {
			return nil, false
		}

		fr := free[best]
		rects[i] = Rect{X: fr.X, Y: fr.Y, W: b.w, H: b.h}

		// Guillotine split along the shorter leftover axis.
		var right, bottom Rect
		if fr.W-ew <= fr.H-eh {
			right = Rect{fr.X + ew, fr.Y, fr.W - ew, eh}
			bottom = Rect{fr.X, fr.Y + eh, fr.W, fr.H - eh}
		} else {
			right = Rect{fr.X + ew, fr.Y, fr.W - ew, fr.H}
			bottom = Rect{fr.X, fr.Y + eh, ew, fr.H - eh}
		}

		free[best] = free[len(free)-1]
		free = free[:len(free)-1]
		if right.W > 0 && right.H > 0 {
			free = append(free, right)
		}
		if bottom.W > 0 && bottom.H > 0 {
			free = append(free, bottom)
		}
	}
	return rects, true
}

// po2Ceil rounds n up to the next power of two.
func po2Ceil(n int) int {
	p := 1
	for p < n {
		p *= 2
	}
	return p
}
