// Package compress wraps the encoded payload in a self-describing
// compression envelope, racing a fixed set of lossless codecs and keeping
// the smallest result. The codecs themselves are external; this package
// owns only the envelope framing and the selection rule.
package compress

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Tag identifies the codec of an envelope. Tags are protocol constants
// stored in the envelope's first byte — changing them breaks container
// compatibility with the firmware decompressor.
type Tag uint8

const (
	TagNone    Tag = 0x00
	TagLZ4     Tag = 0x01
	TagZstd    Tag = 0x02
	TagDeflate Tag = 0x03
)

func (t Tag) String() string {
	switch t {
	case TagNone:
		return "none"
	case TagLZ4:
		return "lz4"
	case TagZstd:
		return "zstd"
	case TagDeflate:
		return "deflate"
	}
	return fmt.Sprintf("tag(0x%02X)", uint8(t))
}

// ErrCompressionFailure reports that no codec, including the identity
// codec, produced an envelope. The identity codec always succeeds, so
// seeing this error means a defect, not bad input data.
var ErrCompressionFailure = errors.New("compress: no codec produced output")

// maxPayload is the largest payload the 24-bit envelope length field can
// describe. The pipeline's canvas limit (1024×1024 RGBA, 4 MiB) keeps
// real payloads far below it.
const maxPayload = 1<<24 - 1

// envelope frames compressed data: 1 tag byte, 24-bit little-endian
// uncompressed length, data, zero padding to a 4-byte boundary.
func envelope(tag Tag, uncompressedLen int, data []byte) []byte {
	if uncompressedLen > maxPayload {
		panic("compress: payload exceeds envelope length field")
	}
	out := make([]byte, 0, (4+len(data)+3)&^3)
	out = append(out,
		uint8(tag),
		uint8(uncompressedLen),
		uint8(uncompressedLen>>8),
		uint8(uncompressedLen>>16))
	out = append(out, data...)
	for len(out)%4 != 0 {
		out = append(out, 0)
	}
	return out
}

// A codec produces an envelope for src, or nil when it cannot beat
// storing the data (or cannot compress it at all).
type codec struct {
	tag Tag
	fn  func(src []byte) []byte
}

// codecs is the contest order. The selector keeps the first non-nil
// result and replaces it only with a strictly smaller one, so earlier
// codecs win ties.
var codecs = []codec{
	{TagNone, None},
	{TagLZ4, LZ4},
	{TagZstd, Zstd},
	{TagDeflate, Deflate},
}

// None stores src uncompressed. It never fails.
func None(src []byte) []byte {
	return envelope(TagNone, len(src), src)
}

// LZ4 compresses src with LZ4 block compression. Returns nil when the
// data is incompressible.
func LZ4(src []byte) []byte {
	dst := make([]byte, lz4.CompressBlockBound(len(src)))
	n, err := lz4.CompressBlock(src, dst, nil)
	// CompressBlock reports incompressible data as n == 0.
	if err != nil || n == 0 || n >= len(src) {
		return nil
	}
	return envelope(TagLZ4, len(src), dst[:n])
}

// zstdEncoder is shared across calls; zstd.Encoder is safe for concurrent
// use via EncodeAll.
var zstdEncoder *zstd.Encoder

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("compress: zstd encoder initialization failed: " + err.Error())
	}
}

// Zstd compresses src with zstd at the default level. Returns nil when
// the data is incompressible.
func Zstd(src []byte) []byte {
	dst := zstdEncoder.EncodeAll(src, nil)
	if len(dst) >= len(src) {
		return nil
	}
	return envelope(TagZstd, len(src), dst)
}

// Deflate compresses src with DEFLATE at the best-compression level.
// Returns nil when the data is incompressible.
func Deflate(src []byte) []byte {
	var buf bytes.Buffer
	fw, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return nil
	}
	if _, err := fw.Write(src); err != nil {
		return nil
	}
	if err := fw.Close(); err != nil {
		return nil
	}
	if buf.Len() >= len(src) {
		return nil
	}
	return envelope(TagDeflate, len(src), buf.Bytes())
}

// Auto runs the codec contest over src and returns the smallest envelope
// and its codec tag.
func Auto(src []byte) ([]byte, Tag, error) {
	var best []byte
	var bestTag Tag

	for _, c := range codecs {
		out := c.fn(src)
		if best == nil || (out != nil && len(out) < len(best)) {
			best = out
			bestTag = c.tag
		}
	}

	if best == nil {
		return nil, 0, ErrCompressionFailure
	}
	return best, bestTag, nil
}

// Mode selects the compression behavior for one encode run: a specific
// codec, or the automatic best-of-N contest.
type Mode int

const (
	ModeNone Mode = iota
	ModeLZ4
	ModeZstd
	ModeDeflate
	ModeAuto
)

// ParseMode resolves a compression mode name from the CLI.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "none":
		return ModeNone, nil
	case "lz4":
		return ModeLZ4, nil
	case "zstd":
		return ModeZstd, nil
	case "deflate":
		return ModeDeflate, nil
	case "auto":
		return ModeAuto, nil
	}
	return 0, fmt.Errorf("unknown compression mode: %q (supported: none, lz4, zstd, deflate, auto)", name)
}

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeLZ4:
		return "lz4"
	case ModeZstd:
		return "zstd"
	case ModeDeflate:
		return "deflate"
	case ModeAuto:
		return "auto"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Compress produces the envelope for src under the given mode. A specific
// codec that cannot compress the data reports ErrCompressionFailure;
// ModeNone and ModeAuto always succeed on valid input.
func Compress(m Mode, src []byte) ([]byte, Tag, error) {
	switch m {
	case ModeNone:
		return None(src), TagNone, nil
	case ModeLZ4:
		if out := LZ4(src); out != nil {
			return out, TagLZ4, nil
		}
		return nil, 0, ErrCompressionFailure
	case ModeZstd:
		if out := Zstd(src); out != nil {
			return out, TagZstd, nil
		}
		return nil, 0, ErrCompressionFailure
	case ModeDeflate:
		if out := Deflate(src); out != nil {
			return out, TagDeflate, nil
		}
		return nil, 0, ErrCompressionFailure
	case ModeAuto:
		return Auto(src)
	}
	panic("compress: unknown mode " + m.String())
}
