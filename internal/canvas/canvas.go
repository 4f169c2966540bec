// Package canvas holds the pixel buffer the encoding pipeline operates on
// and normalizes input images to a hardware-legal canvas: power-of-two
// dimensions of at least 8, at most 1024 per axis.
package canvas

import (
	"errors"
	"image"
	"image/color"
	"math/bits"

	"github.com/ctrtools/texconv/internal/pixel"
)

// MaxDim is the hardware limit on canvas width and height.
const MaxDim = 1024

// ErrInvalidDimension reports an input image exceeding MaxDim on either
// axis. No encoding work is performed after this error.
var ErrInvalidDimension = errors.New("canvas: image exceeds maximum texture dimension")

// Canvas is a rectangular pixel buffer. Rows are Stride pixels apart;
// pixels beyond Width within a row are unused. A Canvas is owned by one
// pipeline stage at a time and is never written concurrently.
type Canvas struct {
	Width  int
	Height int
	Stride int
	Pixels []pixel.RGBA
}

// New allocates a zero-filled canvas.
func New(w, h int) *Canvas {
	return &Canvas{
		Width:  w,
		Height: h,
		Stride: w,
		Pixels: make([]pixel.RGBA, w*h),
	}
}

// FromImage converts a decoded image into a dense row-major canvas.
// Alpha is kept straight (non-premultiplied).
func FromImage(img image.Image) *Canvas {
	b := img.Bounds()
	c := New(b.Dx(), b.Dy())
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			n := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			c.Pixels[y*c.Stride+x] = pixel.RGBA{R: n.R, G: n.G, B: n.B, A: n.A}
		}
	}
	return c
}

// SubImage locates one logical image's visible region within a padded
// canvas, in normalized texture coordinates. The v axis is flipped: top is
// 1.0 at the visual top, so top >= bottom unless the region is rotated.
// A SubImage is immutable after creation.
type SubImage struct {
	Index   int
	Name    string
	Left    float32
	Top     float32
	Right   float32
	Bottom  float32
	Rotated bool
}

// PotCeil returns the smallest hardware-legal dimension >= x: values below
// 8 clamp to 8, everything else rounds up to the next power of two.
func PotCeil(x int) int {
	if x <= 8 {
		return 8
	}
	if x&(x-1) == 0 {
		return x
	}
	return 1 << bits.Len(uint(x))
}

// Normalize validates the input canvas and pads it to power-of-two
// dimensions. The original pixels land at the top-left origin; padding is
// zero-filled. It returns the (possibly new) canvas and the sub-image
// descriptor covering the original extent.
func Normalize(c *Canvas) (*Canvas, SubImage, error) {
	if c.Width > MaxDim || c.Height > MaxDim {
		return nil, SubImage{}, ErrInvalidDimension
	}

	outW := PotCeil(c.Width)
	outH := PotCeil(c.Height)

	sub := SubImage{
		Index:  0,
		Left:   0,
		Top:    1,
		Right:  float32(c.Width) / float32(outW),
		Bottom: 1 - float32(c.Height)/float32(outH),
	}

	if outW == c.Width && outH == c.Height {
		return c, sub, nil
	}

	out := New(outW, outH)
	for y := 0; y < c.Height; y++ {
		copy(out.Pixels[y*out.Stride:y*out.Stride+c.Width], c.Pixels[y*c.Stride:y*c.Stride+c.Width])
	}
	return out, sub, nil
}

// HasTranslucency reports whether any pixel has alpha below full opacity.
// Drives the content-based choice between the opaque and +alpha variants
// of the auto formats.
func (c *Canvas) HasTranslucency() bool {
	for y := 0; y < c.Height; y++ {
		row := c.Pixels[y*c.Stride : y*c.Stride+c.Width]
		for _, p := range row {
			if p.A != pixel.QuantumRange {
				return true
			}
		}
	}
	return false
}
