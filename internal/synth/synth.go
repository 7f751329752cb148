// Package synth generates synthetic image corpora: uniform backgrounds with
// and without a white square drawn at a random position.
package synth

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/bmp"
)

const (
	DefaultSize   = 64
	DefaultSquare = 16
)

// Generator produces fixed-size synthetic images.
type Generator struct {
	Size   int
	Square int
	rng    *rand.Rand
}

func New(size, square int, seed int64) (*Generator, error) {
	if size <= 0 {
		size = DefaultSize
	}
	if square <= 0 {
		square = DefaultSquare
	}
	if square >= size {
		return nil, fmt.Errorf("synth: square %d does not fit in %dx%d image", square, size, size)
	}
	return &Generator{Size: size, Square: square, rng: rand.New(rand.NewSource(seed))}, nil
}

// Black returns an all-black image.
func (g *Generator) Black() *image.RGBA {
	return g.fill(color.RGBA{A: 0xff})
}

// Solid returns an image with a random uniform colour.
func (g *Generator) Solid() *image.RGBA {
	c := color.RGBA{
		R: uint8(g.rng.Intn(255)),
		G: uint8(g.rng.Intn(255)),
		B: uint8(g.rng.Intn(255)),
		A: 0xff,
	}
	return g.fill(c)
}

func (g *Generator) fill(c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, g.Size, g.Size))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

// Annotate draws a Square x Square white rectangle at a random position
// fully inside img.
func (g *Generator) Annotate(img *image.RGBA) {
	bounds := img.Bounds()
	x := bounds.Min.X + g.rng.Intn(bounds.Dx()-g.Square)
	y := bounds.Min.Y + g.rng.Intn(bounds.Dy()-g.Square)
	square := image.Rect(x, y, x+g.Square, y+g.Square)
	draw.Draw(img, square, image.NewUniform(color.White), image.Point{}, draw.Src)
}

// WriteCorpus writes n image pairs numbered start..start+n-1 under dir:
// the plain image to dir/raw/<i>.bmp and the annotated copy to
// dir/square/<i>.bmp. When solid is set backgrounds are random colours
// instead of black.
func (g *Generator) WriteCorpus(dir string, start, n int, solid bool) error {
	rawDir := filepath.Join(dir, "raw")
	squareDir := filepath.Join(dir, "square")
	for _, d := range []string{rawDir, squareDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("corpus dir (%s): %w", d, err)
		}
	}
	for i := start; i < start+n; i++ {
		var img *image.RGBA
		if solid {
			img = g.Solid()
		} else {
			img = g.Black()
		}
		name := strconv.Itoa(i) + ".bmp"
		if err := writeBMP(filepath.Join(rawDir, name), img); err != nil {
			return err
		}
		g.Annotate(img)
		if err := writeBMP(filepath.Join(squareDir, name), img); err != nil {
			return err
		}
	}
	log.Info().Str("dir", dir).Int("count", n).Bool("solid", solid).Msg("corpus written")
	return nil
}

func writeBMP(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create image (%s): %w", path, err)
	}
	if err := bmp.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("encode image (%s): %w", path, err)
	}
	return f.Close()
}
