// Package encode turns canvas tiles into their hardware pixel-format byte
// representation and schedules the per-tile work across a bounded worker
// pool.
package encode

import "fmt"

// Format identifies a texture pixel format. Values 0x00-0x0D are protocol
// constants — they are written verbatim into the container header and the
// hardware dispatches on them, so they must not change.
type Format uint8

const (
	RGBA8888 Format = 0x00
	RGB888   Format = 0x01
	RGBA5551 Format = 0x02
	RGB565   Format = 0x03
	RGBA4444 Format = 0x04
	LA88     Format = 0x05
	HILO88   Format = 0x06
	L8       Format = 0x07
	A8       Format = 0x08
	LA44     Format = 0x09
	L4       Format = 0x0A
	A4       Format = 0x0B
	ETC1     Format = 0x0C
	ETC1A4   Format = 0x0D

	// Auto formats pick the opaque or +alpha variant based on image
	// content. They resolve to one of the concrete formats above before
	// encoding and never appear in a container header.
	AutoL8   Format = 0x10
	AutoL4   Format = 0x11
	AutoETC1 Format = 0x12
)

var formatNames = map[Format]string{
	RGBA8888: "rgba8888",
	RGB888:   "rgb888",
	RGBA5551: "rgba5551",
	RGB565:   "rgb565",
	RGBA4444: "rgba4444",
	LA88:     "la88",
	HILO88:   "hilo88",
	L8:       "l8",
	A8:       "a8",
	LA44:     "la44",
	L4:       "l4",
	A4:       "a4",
	ETC1:     "etc1",
	ETC1A4:   "etc1a4",
	AutoL8:   "auto-l8",
	AutoL4:   "auto-l4",
	AutoETC1: "auto-etc1",
}

// ParseFormat resolves a format name from the CLI.
func ParseFormat(name string) (Format, error) {
	for f, n := range formatNames {
		if n == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown pixel format: %q", name)
}

func (f Format) String() string {
	if n, ok := formatNames[f]; ok {
		return n
	}
	return fmt.Sprintf("format(0x%02X)", uint8(f))
}

// Auto reports whether f is a content-driven pseudo-format.
func (f Format) Auto() bool {
	return f == AutoL8 || f == AutoL4 || f == AutoETC1
}

// Resolve maps an auto format to its concrete variant: the +alpha variant
// when the image has any translucent pixel, the opaque one otherwise.
// Concrete formats resolve to themselves.
func (f Format) Resolve(translucent bool) Format {
	switch f {
	case AutoL8:
		if translucent {
			return LA88
		}
		return L8
	case AutoL4:
		if translucent {
			return LA44
		}
		return L4
	case AutoETC1:
		if translucent {
			return ETC1A4
		}
		return ETC1
	}
	return f
}

// BlockCompressed reports whether f uses the perceptual 4×4 block
// compressor. Block formats carry their own hardware block layout and are
// not swizzled.
func (f Format) BlockCompressed() bool {
	return f == ETC1 || f == ETC1A4
}

// TileSize returns the encoded byte length of one 8×8 tile.
func (f Format) TileSize() int {
	switch f {
	case RGBA8888:
		return 256
	case RGB888:
		return 192
	case RGBA5551, RGB565, RGBA4444, LA88, HILO88:
		return 128
	case L8, A8, LA44:
		return 64
	case L4, A4, ETC1:
		return 32
	case ETC1A4:
		return 64
	}
	panic("encode: tile size of unencodable format " + f.String())
}
