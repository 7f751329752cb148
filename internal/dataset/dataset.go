// Package dataset assembles labeled image datasets from source directories:
// merge with per-source de-duplication, deterministic shuffle and
// train/validation/test partitioning, pixel loading with shape enforcement,
// and array-file persistence with a JSON manifest.
package dataset

import (
	"errors"
	"fmt"
	"image"
	"math/rand"
	"os"
	"sort"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	"gonum.org/v1/gonum/stat"

	_ "golang.org/x/image/bmp"

	"github.com/deepsix-ml/deepsix/internal/imageset"
)

var (
	ErrNoImages      = errors.New("dataset: no images found in sources")
	ErrShapeMismatch = errors.New("dataset: image shape mismatch")
)

// Part names, in split order.
const (
	PartTesting    = "testing"
	PartValidation = "validation"
	PartTraining   = "training"
)

// Parts lists the split names in the order they are reported.
var Parts = []string{PartTraining, PartValidation, PartTesting}

// Image is one dataset member: its path, source-index label, and pixels.
// Pixels are CHW float32 with subpixels scaled to [0,1], populated by
// Set.LoadImages.
type Image struct {
	Path   string
	Label  int
	Pixels []float32
}

// Span is a half-open index range into Set.Images.
type Span struct {
	Lo, Hi int
}

func (s Span) Len() int { return s.Hi - s.Lo }

// Set is an assembled dataset before serialization.
type Set struct {
	Dir      string
	Sources  []string
	Images   []*Image
	Parts    map[string]Span
	Shape    [3]int // channels, height, width; zero until LoadImages
	Seed     int64
	Compress bool

	rng *rand.Rand
}

// Build merges the images of the source directories into a shuffled,
// partitioned set. Labels are source indices. An ID present in several
// sources resolves to one of them uniformly at random. The testing and
// validation parts each take a tenth of the images; training takes the
// rest. The seed makes the random choices reproducible.
func Build(dir string, sources []string, seed int64) (*Set, error) {
	if len(sources) == 0 {
		return nil, ErrNoImages
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("dataset dir (%s): %w", dir, err)
	}
	s := &Set{
		Dir:     dir,
		Sources: sources,
		Seed:    seed,
		rng:     rand.New(rand.NewSource(seed)),
	}
	if err := s.loadPaths(); err != nil {
		return nil, err
	}
	s.shuffle()
	s.partition()
	return s, nil
}

type candidate struct {
	path  string
	label int
}

func (s *Set) loadPaths() error {
	candidates := make(map[string][]candidate)
	for label, source := range s.Sources {
		found, err := imageset.ScanImages(source)
		if err != nil {
			return err
		}
		for id, path := range found {
			candidates[id] = append(candidates[id], candidate{path: path, label: label})
		}
	}
	if len(candidates) == 0 {
		return ErrNoImages
	}
	// iterate in stable order so the seeded rng draws are reproducible
	ids := make([]string, 0, len(candidates))
	for id := range candidates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	s.Images = make([]*Image, 0, len(ids))
	for _, id := range ids {
		list := candidates[id]
		pick := list[s.rng.Intn(len(list))]
		s.Images = append(s.Images, &Image{Path: pick.path, Label: pick.label})
	}
	return nil
}

func (s *Set) shuffle() {
	s.rng.Shuffle(len(s.Images), func(i, j int) {
		s.Images[i], s.Images[j] = s.Images[j], s.Images[i]
	})
}

func (s *Set) partition() {
	n := len(s.Images)
	tenth := n / 10
	s.Parts = map[string]Span{
		PartTesting:    {0, tenth},
		PartValidation: {tenth, 2 * tenth},
		PartTraining:   {2 * tenth, n},
	}
}

// Part returns the images of one split.
func (s *Set) Part(name string) []*Image {
	span := s.Parts[name]
	return s.Images[span.Lo:span.Hi]
}

// Summary renders the image count per part and the per-source distribution
// within each part.
func (s *Set) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d images from %d sources", len(s.Images), len(s.Sources))
	for _, part := range Parts {
		images := s.Part(part)
		dist := make([]int, len(s.Sources))
		for _, img := range images {
			dist[img.Label]++
		}
		fmt.Fprintf(&b, "\n | %6d for %s %v", len(images), part, dist)
	}
	return b.String()
}

// LoadImages decodes pixel data for every image. All images must share one
// shape; the first image fixes it.
func (s *Set) LoadImages() error {
	var first string
	for _, img := range s.Images {
		pixels, shape, err := loadPixels(img.Path)
		if err != nil {
			return err
		}
		if first == "" {
			s.Shape = shape
			first = img.Path
		} else if shape != s.Shape {
			return fmt.Errorf("%w: %s is %v, %s is %v",
				ErrShapeMismatch, img.Path, shape, first, s.Shape)
		}
		img.Pixels = pixels
	}
	return nil
}

// loadPixels decodes the file into CHW float32 pixels in [0,1].
func loadPixels(path string) ([]float32, [3]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, [3]int{}, fmt.Errorf("open image (%s): %w", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, [3]int{}, fmt.Errorf("decode image (%s): %w", path, err)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels := make([]float32, 3*h*w)
	plane := h * w
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			i := y*w + x
			pixels[i] = float32(r>>8) / 255
			pixels[plane+i] = float32(g>>8) / 255
			pixels[2*plane+i] = float32(b>>8) / 255
		}
	}
	return pixels, [3]int{3, h, w}, nil
}

// ChannelStats returns the per-channel mean and standard deviation over the
// training part. LoadImages must have run.
func (s *Set) ChannelStats() (mean, std [3]float64) {
	images := s.Part(PartTraining)
	plane := s.Shape[1] * s.Shape[2]
	if plane == 0 || len(images) == 0 {
		return mean, std
	}
	for c := 0; c < 3; c++ {
		values := make([]float64, 0, len(images)*plane)
		for _, img := range images {
			for _, v := range img.Pixels[c*plane : (c+1)*plane] {
				values = append(values, float64(v))
			}
		}
		mean[c], std[c] = stat.MeanStdDev(values, nil)
	}
	return mean, std
}
