// texconv converts a raster image into a compressed texture container for
// tile-addressed GPU texture memory.
package main

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"runtime"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/ctrtools/texconv/internal/compress"
	"github.com/ctrtools/texconv/internal/encode"
	"github.com/ctrtools/texconv/internal/pipeline"

	"github.com/gen2brain/webp"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Set via -ldflags at build time.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("texconv: ")

	var (
		output      string
		format      string
		compression string
		quality     string
		mipmap      bool
		raw         bool
		jobs        int
		verbose     bool
		showVersion bool
	)

	flag.StringVarP(&output, "output", "o", "", "Output container path (required)")
	flag.StringVarP(&format, "format", "f", "rgba8888", "Pixel format: rgba8888, rgb888, rgba5551, rgb565, rgba4444, la88, hilo88, l8, a8, la44, l4, a4, etc1, etc1a4, auto-l8, auto-l4, auto-etc1")
	flag.StringVarP(&compression, "compress", "z", "auto", "Payload compression: none, lz4, zstd, deflate, auto")
	flag.StringVarP(&quality, "quality", "q", "medium", "Block compression quality: low, medium, high")
	flag.BoolVar(&mipmap, "mipmap", false, "Generate the full mipmap chain")
	flag.BoolVar(&raw, "raw", false, "Write the payload without a container header")
	flag.IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "Number of parallel tile workers")
	flag.BoolVarP(&verbose, "verbose", "v", false, "Verbose progress output")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: texconv [flags] <input-image>\n\n")
		fmt.Fprintf(os.Stderr, "Convert a PNG/JPEG/GIF/WebP/BMP/TIFF image to a texture container.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("texconv %s (commit %s, built %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	if flag.NArg() != 1 || output == "" {
		flag.Usage()
		os.Exit(1)
	}
	inputPath := flag.Arg(0)

	params := pipeline.Params{
		Mipmaps: mipmap,
		Raw:     raw,
		Workers: jobs,
	}

	var err error
	if params.Format, err = encode.ParseFormat(format); err != nil {
		log.Fatal(err)
	}
	if params.Compression, err = compress.ParseMode(compression); err != nil {
		log.Fatal(err)
	}
	if params.Quality, err = encode.ParseQuality(quality); err != nil {
		log.Fatal(err)
	}

	img, err := decodeImage(inputPath)
	if err != nil {
		log.Fatalf("Reading %s: %v", inputPath, err)
	}

	start := time.Now()

	res, err := convert(img, output, params)
	if err != nil {
		log.Fatalf("Encoding %s: %v", inputPath, err)
	}

	if verbose {
		b := img.Bounds()
		log.Printf("%s: %dx%d -> %dx%d canvas, format %s, %d mip levels",
			inputPath, b.Dx(), b.Dy(), res.Width, res.Height, res.Format, res.Mipmaps)
		log.Printf("payload %d bytes, %s compression, wrote %d bytes in %s",
			res.PayloadLen, res.Codec, res.WrittenLen, time.Since(start).Round(time.Millisecond))
	}
}

// convert encodes img into memory first and creates the output file only
// once the encode has succeeded, so a rejected input never touches the
// filesystem. A write failure after creation removes the partial file.
func convert(img image.Image, output string, params pipeline.Params) (pipeline.Result, error) {
	var buf bytes.Buffer
	res, err := pipeline.Process(img, &buf, params)
	if err != nil {
		return res, err
	}

	outFile, err := os.Create(output)
	if err != nil {
		return res, fmt.Errorf("creating %s: %w", output, err)
	}
	if _, err := outFile.Write(buf.Bytes()); err != nil {
		outFile.Close()
		os.Remove(output)
		return res, fmt.Errorf("writing %s: %w", output, err)
	}
	if err := outFile.Close(); err != nil {
		os.Remove(output)
		return res, fmt.Errorf("writing %s: %w", output, err)
	}
	return res, nil
}

// decodeImage reads and decodes the input image. Most formats come from
// the decoders registered by the imports above; WebP gets an explicit
// fallback in case the codec does not self-register.
func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		if _, serr := f.Seek(0, io.SeekStart); serr == nil {
			if img, werr := webp.Decode(f); werr == nil {
				return img, nil
			}
		}
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}
