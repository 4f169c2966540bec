package canvas

import (
	"math"

	"github.com/ctrtools/texconv/internal/pixel"
)

// lanczos3Weights2x contains precomputed, normalized 1D Lanczos-3 kernel
// weights for 2× downsampling. Each output pixel's source center is at
// (2·dx + 0.5, 2·dy + 0.5), so the 6 nearest source pixels along each
// axis are at distances -2.5, -1.5, -0.5, 0.5, 1.5, 2.5 from the center.
// The weights are symmetric: w[i] == w[5-i].
var lanczos3Weights2x [6]float64

func init() {
	offsets := [6]float64{-2.5, -1.5, -0.5, 0.5, 1.5, 2.5}
	var sum float64
	for i, d := range offsets {
		lanczos3Weights2x[i] = lanczos3(d)
		sum += lanczos3Weights2x[i]
	}
	for i := range lanczos3Weights2x {
		lanczos3Weights2x[i] /= sum
	}
}

func lanczos3(x float64) float64 {
	if x == 0 {
		return 1
	}
	if x < -3 || x > 3 {
		return 0
	}
	xPi := x * math.Pi
	return 3 * math.Sin(xPi) * math.Sin(xPi/3) / (xPi * xPi)
}

// MipLevels returns the mipmap chain below c: successive 2× reductions
// down to (but not past) the minimum hardware tile dimension of 8. The
// base level is not included. c must already be normalized (power-of-two
// dimensions), so every level is itself a legal canvas.
func MipLevels(c *Canvas) []*Canvas {
	var levels []*Canvas
	for c.Width/2 >= 8 && c.Height/2 >= 8 {
		c = NextMip(c)
		levels = append(levels, c)
	}
	return levels
}

// NextMip produces the next mipmap level: a half-size canvas resampled
// with the 2× Lanczos-3 kernel. Edge taps clamp to the canvas border and
// channel results saturate to the quantum range.
func NextMip(c *Canvas) *Canvas {
	out := New(c.Width/2, c.Height/2)

	for dy := 0; dy < out.Height; dy++ {
		for dx := 0; dx < out.Width; dx++ {
			var r, g, b, a float64
			for ky := 0; ky < 6; ky++ {
				sy := clampIndex(2*dy+ky-2, c.Height)
				wy := lanczos3Weights2x[ky]
				row := c.Pixels[sy*c.Stride:]
				for kx := 0; kx < 6; kx++ {
					sx := clampIndex(2*dx+kx-2, c.Width)
					w := wy * lanczos3Weights2x[kx]
					p := row[sx]
					r += w * float64(p.R)
					g += w * float64(p.G)
					b += w * float64(p.B)
					a += w * float64(p.A)
				}
			}
			out.Pixels[dy*out.Stride+dx] = clampPixel(r, g, b, a)
		}
	}
	return out
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func clampPixel(r, g, b, a float64) pixel.RGBA {
	return pixel.RGBA{
		R: clampChannel(r),
		G: clampChannel(g),
		B: clampChannel(b),
		A: clampChannel(a),
	}
}

func clampChannel(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
