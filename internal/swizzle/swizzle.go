// Package swizzle reorders pixels within each 8×8 canvas tile into Morton
// (Z-order) layout, the arrangement the texture unit's tiled memory expects.
// The transform is a pure permutation: pixel values never change, only
// positions, and the reverse direction exactly undoes the forward one.
package swizzle

import (
	"github.com/ctrtools/texconv/internal/canvas"
	"github.com/ctrtools/texconv/internal/pixel"
)

// fourCycles lists the 4-element cycles of the Morton permutation over the
// 64 raster-order positions of one tile. Forward swizzling rotates each
// cycle one step; reverse swizzling rotates the opposite way.
var fourCycles = [12][4]int{
	{2, 8, 16, 4},
	{3, 9, 17, 5},
	{6, 10, 24, 20},
	{7, 11, 25, 21},
	{14, 26, 28, 22},
	{15, 27, 29, 23},
	{34, 40, 48, 36},
	{35, 41, 49, 37},
	{38, 42, 56, 52},
	{39, 43, 57, 53},
	{46, 58, 60, 54},
	{47, 59, 61, 55},
}

// pairSwaps lists the 2-element transpositions of the permutation. They
// are self-inverse, so both directions apply them identically.
var pairSwaps = [4][2]int{
	{12, 18},
	{13, 19},
	{44, 50},
	{45, 51},
}

// MortonIndex returns the Morton-order position of in-tile coordinate
// (x, y) for an n×n tile by interleaving the coordinate bits (x in the
// even bit positions, y in the odd ones). n must be a power of two.
// The cycle tables above are exactly this mapping for n = 8; MortonIndex
// exists so that can be verified rather than trusted.
func MortonIndex(x, y, n uint) uint {
	var d, bit uint
	for s := uint(1); s < n; s <<= 1 {
		if x&s != 0 {
			d |= 1 << bit
		}
		if y&s != 0 {
			d |= 1 << (bit + 1)
		}
		bit += 2
	}
	return d
}

// Canvas applies the Morton permutation to every 8×8 tile of c, or the
// inverse permutation when reverse is true. The pipeline only swizzles
// normalized canvases, whose dimensions are multiples of 8.
//
// A tile reaching past the canvas edge uses a scratch pixel for its
// out-of-bounds positions: out-of-bounds writes are discarded and
// out-of-bounds reads yield the scratch's last value, never canvas data.
// Callers must not rely on swizzling content beyond the canvas extent.
func Canvas(c *canvas.Canvas, reverse bool) {
	var refs [64]*pixel.RGBA
	for ty := 0; ty < c.Height; ty += 8 {
		for tx := 0; tx < c.Width; tx += 8 {
			var scratch pixel.RGBA
			for y := 0; y < 8; y++ {
				for x := 0; x < 8; x++ {
					if ty+y < c.Height && tx+x < c.Width {
						refs[y*8+x] = &c.Pixels[(ty+y)*c.Stride+(tx+x)]
					} else {
						refs[y*8+x] = &scratch
					}
				}
			}
			tile(&refs, reverse)
		}
	}
}

// tile permutes one 8×8 tile through the position references in refs.
func tile(refs *[64]*pixel.RGBA, reverse bool) {
	if !reverse {
		for _, cy := range fourCycles {
			tmp := *refs[cy[0]]
			*refs[cy[0]] = *refs[cy[1]]
			*refs[cy[1]] = *refs[cy[2]]
			*refs[cy[2]] = *refs[cy[3]]
			*refs[cy[3]] = tmp
		}
	} else {
		for _, cy := range fourCycles {
			tmp := *refs[cy[3]]
			*refs[cy[3]] = *refs[cy[2]]
			*refs[cy[2]] = *refs[cy[1]]
			*refs[cy[1]] = *refs[cy[0]]
			*refs[cy[0]] = tmp
		}
	}

	for _, pr := range pairSwaps {
		*refs[pr[0]], *refs[pr[1]] = *refs[pr[1]], *refs[pr[0]]
	}
}
