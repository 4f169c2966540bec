// Package container serializes the texture container: a fixed-layout
// header, the sub-image descriptor table, and the payload (raw or wrapped
// in a compression envelope). All multi-byte integers are little-endian.
package container

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"math/bits"

	"github.com/ctrtools/texconv/internal/canvas"
	"github.com/ctrtools/texconv/internal/encode"
)

// subImageSize is the serialized size of one sub-image descriptor:
// u16 width, u16 height, four f32 rectangle coordinates.
const subImageSize = 2 + 2 + 4*4

// Header describes one texture container.
type Header struct {
	// Width and Height are the canvas dimensions: powers of two in
	// [8, 1024]. Anything else here is a programming error.
	Width  int
	Height int

	Format encode.Format

	// Mipmaps is the number of levels below the base level.
	Mipmaps uint8

	SubImages []canvas.SubImage
}

// dimCode packs a canvas dimension as log2(d) - 3. Valid dimensions are
// powers of two in [8, 1024], so the code fits in 3 bits.
func dimCode(d int) uint8 {
	if d < 8 || d > canvas.MaxDim || d&(d-1) != 0 {
		panic(fmt.Sprintf("container: dimension %d is not a legal canvas size", d))
	}
	return uint8(bits.Len(uint(d))-1) - 3
}

// Serialize renders the header and sub-image table.
//
// Layout: u16 sub-image count; one byte holding the width code in bits
// 0-2 and the height code in bits 3-5; the pixel-format tag byte; the
// mip-count byte; then each sub-image descriptor.
func (h *Header) Serialize() []byte {
	buf := make([]byte, 0, 6+len(h.SubImages)*subImageSize)

	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(h.SubImages)))
	buf = append(buf, dimCode(h.Width)|dimCode(h.Height)<<3)
	buf = append(buf, uint8(h.Format))
	buf = append(buf, h.Mipmaps)

	for _, sub := range h.SubImages {
		buf = appendSubImage(buf, sub, h.Width, h.Height)
	}
	return buf
}

// appendSubImage serializes one descriptor: the rectangle re-expressed as
// absolute pixel width and height (axes swapped when rotated), then the
// stored normalized coordinates. The rotation flag itself is not stored —
// a rotated region is recognizable by top < bottom.
func appendSubImage(buf []byte, sub canvas.SubImage, canvasW, canvasH int) []byte {
	var w, h uint16
	if sub.Rotated {
		w = uint16((sub.Right - sub.Left) * float32(canvasH))
		h = uint16((sub.Bottom - sub.Top) * float32(canvasW))
	} else {
		w = uint16((sub.Right - sub.Left) * float32(canvasW))
		h = uint16((sub.Top - sub.Bottom) * float32(canvasH))
	}

	buf = binary.LittleEndian.AppendUint16(buf, w)
	buf = binary.LittleEndian.AppendUint16(buf, h)
	buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(sub.Left))
	buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(sub.Top))
	buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(sub.Right))
	buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(sub.Bottom))
	return buf
}

// WriteAll writes buf to w in full, retrying partial writes until every
// byte is accepted or a terminal write error occurs. On error the
// destination's contents are unusable and the caller must discard them.
func WriteAll(w io.Writer, buf []byte) error {
	for pos := 0; pos < len(buf); {
		n, err := w.Write(buf[pos:])
		if err != nil {
			return fmt.Errorf("writing container: %w", err)
		}
		if n <= 0 {
			return fmt.Errorf("writing container: %w", io.ErrShortWrite)
		}
		pos += n
	}
	return nil
}
