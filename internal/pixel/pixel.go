// Package pixel provides the RGBA pixel type and the fixed-range sample
// ("quantum") arithmetic used by the texture encoders: n-bit quantization,
// the sRGB gamma transfer pair, and gamma-correct BT.709 luminance.
package pixel

import "math"

// Quantum is one color or alpha sample in [0, QuantumRange]. Derived values
// (such as luminance) use the same range.
type Quantum = uint8

// QuantumRange is the maximum Quantum value.
const QuantumRange = 255

// RGBA is one canvas pixel. Channel order matches the source buffer layout
// the encoders expect, not any particular wire format.
type RGBA struct {
	B, G, R, A Quantum
}

// ToBits scales a Quantum down to a bits-wide value.
//
// The scaling is (1<<bits)*q/256, the hardware encoder's integer form of
// round(q * (2^bits - 1) / 255). It maps 0 → 0 and 255 → (1<<bits)-1.
func ToBits(q Quantum, bits uint) uint8 {
	return uint8((1 << bits) * uint32(q) / (QuantumRange + 1))
}

// FromBits expands a bits-wide value back to a full-range Quantum, the
// symmetric inverse of ToBits.
func FromBits(v uint8, bits uint) Quantum {
	return Quantum(uint32(v) * QuantumRange / ((1 << bits) - 1))
}

// Quantize rounds a Quantum to its nearest bits-wide representative.
// Quantize is idempotent and never deviates from q by more than
// QuantumRange/((1<<bits)-1).
func Quantize(q Quantum, bits uint) Quantum {
	return FromBits(ToBits(q, bits), bits)
}

// gammaInverse decodes an sRGB-encoded value in [0, 1] to linear light.
func gammaInverse(v float64) float64 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// gamma encodes a linear-light value in [0, 1] to sRGB.
func gamma(v float64) float64 {
	if v <= 0.0031308 {
		return v * 12.92
	}
	return 1.055*math.Pow(v, 1.0/2.4) - 0.055
}

// BT.709 luma weights.
const (
	weightRed   = 0.212655
	weightGreen = 0.715158
	weightBlue  = 0.072187
)

// Luminance returns the gamma-correct luminance of a pixel: each channel is
// decoded to linear light, combined with the BT.709 weights, and re-encoded
// with the sRGB curve. The result is clamped to [0, QuantumRange].
func Luminance(c RGBA) Quantum {
	v := gamma(weightRed*gammaInverse(float64(c.R)/QuantumRange) +
		weightGreen*gammaInverse(float64(c.G)/QuantumRange) +
		weightBlue*gammaInverse(float64(c.B)/QuantumRange))

	v = math.Max(0, math.Min(1, v))
	return Quantum(math.Round(v * QuantumRange))
}
