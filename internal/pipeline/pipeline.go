// Package pipeline runs the full texture encode: canvas normalization,
// mipmap generation, Morton swizzling, tiled pixel-format encoding, the
// compression contest, and container serialization. It never prints or
// logs; every failure surfaces as an error for the caller to report.
package pipeline

import (
	"image"
	"io"

	"github.com/ctrtools/texconv/internal/canvas"
	"github.com/ctrtools/texconv/internal/compress"
	"github.com/ctrtools/texconv/internal/container"
	"github.com/ctrtools/texconv/internal/encode"
	"github.com/ctrtools/texconv/internal/swizzle"
)

// Params configures one encode run.
type Params struct {
	Format      encode.Format
	Quality     encode.Quality
	Compression compress.Mode

	// Mipmaps enables generation of the full mip chain down to 8×8.
	Mipmaps bool

	// Raw omits the container header and writes only the (possibly
	// compressed) payload.
	Raw bool

	// Workers bounds the tile-encoding pool; <= 0 means one per CPU.
	Workers int
}

// Result reports what an encode run produced.
type Result struct {
	Format     encode.Format // concrete format after auto resolution
	Codec      compress.Tag
	Width      int
	Height     int
	Mipmaps    uint8
	PayloadLen int // uncompressed payload bytes
	WrittenLen int // bytes written to the destination
}

// Process encodes img and writes the container to w. Nothing is written
// before the input is validated, so a failed run leaves w untouched
// unless the failure happened mid-write (in which case the destination
// must be discarded).
func Process(img image.Image, w io.Writer, p Params) (Result, error) {
	src := canvas.FromImage(img)

	// Auto formats look at the input pixels, not the normalized canvas:
	// power-of-two padding is fully transparent and must not force an
	// opaque image onto an +alpha variant.
	format := p.Format
	if format.Auto() {
		format = format.Resolve(src.HasTranslucency())
	}

	c, sub, err := canvas.Normalize(src)
	if err != nil {
		return Result{}, err
	}

	var packer *encode.BlockPacker
	if format.BlockCompressed() {
		packer = encode.NewBlockPacker(p.Quality)
	}

	levels := []*canvas.Canvas{c}
	if p.Mipmaps {
		levels = append(levels, canvas.MipLevels(c)...)
	}

	opts := encode.Options{
		Format:  format,
		Quality: p.Quality,
		Packer:  packer,
		Workers: p.Workers,
	}

	var payload []byte
	for _, level := range levels {
		// Block formats carry their own hardware block layout; everything
		// else is swizzled into Morton order first.
		if !format.BlockCompressed() {
			swizzle.Canvas(level, false)
		}
		data, err := encode.EncodePayload(level, opts)
		if err != nil {
			return Result{}, err
		}
		payload = append(payload, data...)
	}

	data, codec, err := compress.Compress(p.Compression, payload)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Format:     format,
		Codec:      codec,
		Width:      c.Width,
		Height:     c.Height,
		Mipmaps:    uint8(len(levels) - 1),
		PayloadLen: len(payload),
	}

	if !p.Raw {
		hdr := container.Header{
			Width:     c.Width,
			Height:    c.Height,
			Format:    format,
			Mipmaps:   res.Mipmaps,
			SubImages: []canvas.SubImage{sub},
		}
		hdrBytes := hdr.Serialize()
		if err := container.WriteAll(w, hdrBytes); err != nil {
			return Result{}, err
		}
		res.WrittenLen += len(hdrBytes)
	}

	if err := container.WriteAll(w, data); err != nil {
		return Result{}, err
	}
	res.WrittenLen += len(data)
	return res, nil
}
