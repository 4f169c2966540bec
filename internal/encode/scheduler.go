package encode

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/ctrtools/texconv/internal/canvas"
)

// encodeTile is swappable so scheduler tests can inject tile failures.
var encodeTile = EncodeTile

// Options configures payload encoding. Format must be concrete (already
// resolved from any auto format).
type Options struct {
	Format  Format
	Quality Quality
	Packer  *BlockPacker // required for block formats
	Workers int          // <= 0 means runtime.NumCPU()
}

// EncodePayload encodes every 8×8 tile of c and returns the concatenation
// of the tile results in raster-tile order. Tiles are encoded by a bounded
// worker pool; because each work unit touches only its own tile and its
// own result slot, the assembled payload is byte-identical regardless of
// worker count or completion order.
func EncodePayload(c *canvas.Canvas, opts Options) ([]byte, error) {
	if opts.Format.Auto() {
		panic("encode: payload encoding requires a concrete format")
	}
	if c.Width%8 != 0 || c.Height%8 != 0 {
		panic("encode: canvas dimensions must be multiples of 8")
	}

	tilesX := c.Width / 8
	tilesY := c.Height / 8
	numTiles := tilesX * tilesY

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > numTiles {
		workers = numTiles
	}

	// Each worker writes only the result slots of the tiles it pulled, so
	// the slice needs no lock.
	results := make([][]byte, numTiles)

	jobs := make(chan int, workers*2)
	errCh := make(chan error, 1)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// After a failure the worker keeps draining the queue without
			// encoding, so the feed loop below can never block on a channel
			// nobody reads.
			failed := false
			for idx := range jobs {
				if failed {
					continue
				}
				row := (idx / tilesX) * 8
				col := (idx % tilesX) * 8
				unit := WorkUnit{
					Index:   uint64(idx),
					Pixels:  c.Pixels[row*c.Stride+col:],
					Stride:  c.Stride,
					Quality: opts.Quality,
					Packer:  opts.Packer,
					Result:  make([]byte, 0, opts.Format.TileSize()),
				}
				if err := encodeTile(opts.Format, &unit); err != nil {
					select {
					case errCh <- fmt.Errorf("encoding tile %d: %w", idx, err):
					default:
					}
					failed = true
					continue
				}
				results[idx] = unit.Result
			}
		}()
	}

	for idx := 0; idx < numTiles; idx++ {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	select {
	case err := <-errCh:
		return nil, err
	default:
	}

	payload := make([]byte, 0, numTiles*opts.Format.TileSize())
	for _, r := range results {
		payload = append(payload, r...)
	}
	return payload, nil
}
