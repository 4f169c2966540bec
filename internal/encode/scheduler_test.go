package encode

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/ctrtools/texconv/internal/canvas"
	"github.com/ctrtools/texconv/internal/pixel"
)

func randomCanvas(w, h int, seed int64) *canvas.Canvas {
	rng := rand.New(rand.NewSource(seed))
	c := canvas.New(w, h)
	for i := range c.Pixels {
		c.Pixels[i] = pixel.RGBA{
			R: uint8(rng.Intn(256)),
			G: uint8(rng.Intn(256)),
			B: uint8(rng.Intn(256)),
			A: uint8(rng.Intn(256)),
		}
	}
	return c
}

func TestEncodePayload_Size(t *testing.T) {
	c := randomCanvas(32, 16, 1)
	payload, err := EncodePayload(c, Options{Format: RGB565, Workers: 4})
	if err != nil {
		t.Fatalf("EncodePayload: %v", err)
	}
	// 4×2 tiles at 128 bytes each.
	if len(payload) != 8*128 {
		t.Errorf("payload length = %d, want %d", len(payload), 8*128)
	}
}

func TestEncodePayload_DeterministicAcrossWorkerCounts(t *testing.T) {
	c := randomCanvas(64, 64, 2)

	want, err := EncodePayload(c, Options{Format: RGBA4444, Workers: 1})
	if err != nil {
		t.Fatalf("EncodePayload: %v", err)
	}

	for _, workers := range []int{2, 3, 7, 16, 64} {
		got, err := EncodePayload(c, Options{Format: RGBA4444, Workers: workers})
		if err != nil {
			t.Fatalf("EncodePayload with %d workers: %v", workers, err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("payload differs with %d workers", workers)
		}
	}
}

func TestEncodePayload_DeterministicForBlockFormats(t *testing.T) {
	c := randomCanvas(32, 32, 3)
	packer := NewBlockPacker(QualityMedium)

	want, err := EncodePayload(c, Options{Format: ETC1A4, Packer: packer, Workers: 1})
	if err != nil {
		t.Fatalf("EncodePayload: %v", err)
	}
	for run := 0; run < 3; run++ {
		got, err := EncodePayload(c, Options{Format: ETC1A4, Packer: packer, Workers: 8})
		if err != nil {
			t.Fatalf("EncodePayload: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("block payload differs on concurrent run %d", run)
		}
	}
}

func TestEncodePayload_TileOrderIsRasterOrder(t *testing.T) {
	// Give each tile a uniform, tile-unique alpha so the payload reveals
	// tile placement directly.
	c := canvas.New(32, 16)
	tilesX := c.Width / 8
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			tileIdx := (y/8)*tilesX + x/8
			c.Pixels[y*c.Stride+x] = pixel.RGBA{A: uint8(tileIdx * 10)}
		}
	}

	payload, err := EncodePayload(c, Options{Format: A8, Workers: 5})
	if err != nil {
		t.Fatalf("EncodePayload: %v", err)
	}

	numTiles := tilesX * (c.Height / 8)
	for tile := 0; tile < numTiles; tile++ {
		chunk := payload[tile*64 : (tile+1)*64]
		for i, b := range chunk {
			if b != uint8(tile*10) {
				t.Fatalf("tile %d byte %d = %d, want %d", tile, i, b, tile*10)
			}
		}
	}
}

func TestEncodePayload_TileFailureDoesNotStallTheFeed(t *testing.T) {
	errTile := errors.New("tile rejected")
	encodeTile = func(f Format, u *WorkUnit) error {
		if u.Index == 0 {
			return errTile
		}
		return EncodeTile(f, u)
	}
	defer func() { encodeTile = EncodeTile }()

	// One worker, far more tiles than the jobs buffer holds: the first
	// tile fails and the worker must still drain the rest of the queue.
	c := randomCanvas(256, 256, 6)
	_, err := EncodePayload(c, Options{Format: L8, Workers: 1})
	if !errors.Is(err, errTile) {
		t.Fatalf("error = %v, want wrapped tile error", err)
	}
}

func TestEncodePayload_AutoFormatPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("auto format did not panic")
		}
	}()
	EncodePayload(canvas.New(8, 8), Options{Format: AutoL8})
}

func BenchmarkEncodePayload_RGBA8888(b *testing.B) {
	c := randomCanvas(256, 256, 4)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := EncodePayload(c, Options{Format: RGBA8888}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEncodePayload_ETC1(b *testing.B) {
	c := randomCanvas(128, 128, 5)
	packer := NewBlockPacker(QualityMedium)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := EncodePayload(c, Options{Format: ETC1, Packer: packer}); err != nil {
			b.Fatal(err)
		}
	}
}
