package encode

import (
	"bytes"
	"fmt"
	"image"
	"sync"

	"github.com/nigeltao/etc2/lib/etc2"

	"github.com/ctrtools/texconv/internal/pixel"
)

// Quality is the perceptual block compressor's effort level. Higher
// quality searches a larger encoding space and costs more CPU.
type Quality int

const (
	QualityLow Quality = iota
	QualityMedium
	QualityHigh
)

// ParseQuality resolves a quality name from the CLI.
func ParseQuality(name string) (Quality, error) {
	switch name {
	case "low":
		return QualityLow, nil
	case "medium":
		return QualityMedium, nil
	case "high":
		return QualityHigh, nil
	}
	return 0, fmt.Errorf("unknown quality level: %q (supported: low, medium, high)", name)
}

func (q Quality) String() string {
	switch q {
	case QualityLow:
		return "low"
	case QualityMedium:
		return "medium"
	case QualityHigh:
		return "high"
	}
	return fmt.Sprintf("quality(%d)", int(q))
}

// BlockPacker is the pipeline's handle to the external perceptual block
// compressor. Constructing it once up front replaces the compressor's
// one-time global initialization; the same packer is then shared by every
// work unit. Pack is safe for concurrent use.
type BlockPacker struct {
	format etc2.Format
	pool   sync.Pool // *blockScratch
}

// blockScratch is the per-call staging state: a reusable 4×4 RGBA image
// and an output buffer. Pooled so concurrent tile workers don't allocate
// one per block.
type blockScratch struct {
	img *image.RGBA
	buf bytes.Buffer
}

// NewBlockPacker prepares the ETC1 compressor for the given quality. Low
// quality selects the ETC1S subset encoder, which searches a much smaller
// space; medium and high use the full ETC1 encoder.
func NewBlockPacker(q Quality) *BlockPacker {
	f := etc2.FormatETC1
	if q == QualityLow {
		f = etc2.FormatETC1S
	}
	return &BlockPacker{
		format: f,
		pool: sync.Pool{
			New: func() any {
				return &blockScratch{img: image.NewRGBA(image.Rect(0, 0, 4, 4))}
			},
		},
	}
}

// Pack compresses the 4×4 sub-block of u's tile whose top-left in-tile
// corner is (bx, by) and appends the 8-byte block to u.Result. The block
// bytes are emitted in reverse of the compressor's canonical big-endian
// order, which is how the texture unit reads them.
func (bp *BlockPacker) Pack(u *WorkUnit, bx, by int) error {
	s := bp.pool.Get().(*blockScratch)
	defer bp.pool.Put(s)

	// ETC1 encodes color only; stage the block fully opaque.
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			p := u.at(bx+x, by+y)
			i := s.img.PixOffset(x, y)
			s.img.Pix[i+0] = p.R
			s.img.Pix[i+1] = p.G
			s.img.Pix[i+2] = p.B
			s.img.Pix[i+3] = pixel.QuantumRange
		}
	}

	s.buf.Reset()
	if err := etc2.Encode(&s.buf, s.img, bp.format, nil); err != nil {
		return fmt.Errorf("packing etc1 block: %w", err)
	}

	block := s.buf.Bytes()
	for i := 7; i >= 0; i-- {
		u.Result = append(u.Result, block[i])
	}
	return nil
}

// etc1 encodes a tile as four perceptually compressed 4×4 blocks,
// traversed row-major.
func etc1(u *WorkUnit) error {
	if u.Packer == nil {
		panic("encode: block format encoded without an initialized packer")
	}
	for by := 0; by < 8; by += 4 {
		for bx := 0; bx < 8; bx += 4 {
			if err := u.Packer.Pack(u, bx, by); err != nil {
				return err
			}
		}
	}
	return nil
}

// etc1a4 is etc1 with a 4-bit alpha plane preceding each color block. The
// plane stores the block's alpha nibbles column-major, two vertical
// neighbors per byte with the upper pixel in the low nibble.
func etc1a4(u *WorkUnit) error {
	if u.Packer == nil {
		panic("encode: block format encoded without an initialized packer")
	}
	for by := 0; by < 8; by += 4 {
		for bx := 0; bx < 8; bx += 4 {
			for x := bx; x < bx+4; x++ {
				for y := by; y < by+4; y += 2 {
					u.Result = append(u.Result,
						pixel.ToBits(u.at(x, y+1).A, 4)<<4|pixel.ToBits(u.at(x, y).A, 4))
				}
			}
			if err := u.Packer.Pack(u, bx, by); err != nil {
				return err
			}
		}
	}
	return nil
}
