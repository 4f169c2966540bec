package encode

import (
	"github.com/ctrtools/texconv/internal/pixel"
)

// WorkUnit is one tile's encoding job: an 8×8 pixel view into the canvas
// plus the buffer its encoded bytes accumulate into. Units are mutually
// independent — a unit reads only its own tile and writes only its own
// Result — so any number of them may encode concurrently. Output order is
// defined solely by Index.
type WorkUnit struct {
	// Index is the tile's position in raster-tile order. It determines
	// where the Result lands in the assembled payload.
	Index uint64

	// Pixels is a read-only view into the canvas starting at the tile's
	// top-left pixel. Rows are Stride pixels apart.
	Pixels []pixel.RGBA
	Stride int

	// Quality is the perceptual block compressor's effort level. Direct
	// formats ignore it.
	Quality Quality

	// Packer compresses 4×4 blocks for the block formats. Nil for direct
	// formats.
	Packer *BlockPacker

	Result []byte
}

func (u *WorkUnit) at(x, y int) pixel.RGBA {
	return u.Pixels[y*u.Stride+x]
}

// EncodeTile encodes one tile in the given concrete format. An auto or
// unknown format reaching this point is a programming error and panics.
// Only the block formats can fail, and only on a defective packer setup.
func EncodeTile(f Format, u *WorkUnit) error {
	switch f {
	case RGBA8888:
		rgba8888(u)
	case RGB888:
		rgb888(u)
	case RGBA5551:
		rgba5551(u)
	case RGB565:
		rgb565(u)
	case RGBA4444:
		rgba4444(u)
	case LA88:
		la88(u)
	case HILO88:
		hilo88(u)
	case L8:
		l8(u)
	case A8:
		a8(u)
	case LA44:
		la44(u)
	case L4:
		l4(u)
	case A4:
		a4(u)
	case ETC1:
		return etc1(u)
	case ETC1A4:
		return etc1a4(u)
	default:
		panic("encode: no tile encoder for format " + f.String())
	}
	return nil
}

// Direct formats emit one fixed-width value per pixel, walking the tile in
// raster order. The canvas is already swizzled, so raster order here is
// the hardware's Morton order.

func rgba8888(u *WorkUnit) {
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			p := u.at(x, y)
			u.Result = append(u.Result, p.A, p.B, p.G, p.R)
		}
	}
}

func rgb888(u *WorkUnit) {
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			p := u.at(x, y)
			u.Result = append(u.Result, p.B, p.G, p.R)
		}
	}
}

func rgba5551(u *WorkUnit) {
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			p := u.at(x, y)
			v := uint16(pixel.ToBits(p.R, 5))<<11 |
				uint16(pixel.ToBits(p.G, 5))<<6 |
				uint16(pixel.ToBits(p.B, 5))<<1 |
				uint16(pixel.ToBits(p.A, 1))
			u.Result = append(u.Result, uint8(v), uint8(v>>8))
		}
	}
}

func rgb565(u *WorkUnit) {
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			p := u.at(x, y)
			v := uint16(pixel.ToBits(p.R, 5))<<11 |
				uint16(pixel.ToBits(p.G, 6))<<5 |
				uint16(pixel.ToBits(p.B, 5))
			u.Result = append(u.Result, uint8(v), uint8(v>>8))
		}
	}
}

func rgba4444(u *WorkUnit) {
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			p := u.at(x, y)
			v := uint16(pixel.ToBits(p.R, 4))<<12 |
				uint16(pixel.ToBits(p.G, 4))<<8 |
				uint16(pixel.ToBits(p.B, 4))<<4 |
				uint16(pixel.ToBits(p.A, 4))
			u.Result = append(u.Result, uint8(v), uint8(v>>8))
		}
	}
}

func la88(u *WorkUnit) {
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			p := u.at(x, y)
			u.Result = append(u.Result, p.A, pixel.Luminance(p))
		}
	}
}

func hilo88(u *WorkUnit) {
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			p := u.at(x, y)
			u.Result = append(u.Result, p.G, p.R)
		}
	}
}

func l8(u *WorkUnit) {
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			u.Result = append(u.Result, pixel.Luminance(u.at(x, y)))
		}
	}
}

func a8(u *WorkUnit) {
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			u.Result = append(u.Result, u.at(x, y).A)
		}
	}
}

func la44(u *WorkUnit) {
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			p := u.at(x, y)
			u.Result = append(u.Result,
				pixel.ToBits(pixel.Luminance(p), 4)<<4|pixel.ToBits(p.A, 4))
		}
	}
}

// The 4-bit single-channel formats pack two consecutive pixels per byte,
// first pixel in the low nibble.

func l4(u *WorkUnit) {
	for i := 0; i < 64; i += 2 {
		p0 := u.at(i%8, i/8)
		p1 := u.at((i+1)%8, (i+1)/8)
		u.Result = append(u.Result,
			pixel.ToBits(pixel.Luminance(p1), 4)<<4|pixel.ToBits(pixel.Luminance(p0), 4))
	}
}

func a4(u *WorkUnit) {
	for i := 0; i < 64; i += 2 {
		p0 := u.at(i%8, i/8)
		p1 := u.at((i+1)%8, (i+1)/8)
		u.Result = append(u.Result,
			pixel.ToBits(p1.A, 4)<<4|pixel.ToBits(p0.A, 4))
	}
}
