package dataset

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/ulikunitz/xz"
)

const (
	arrayExt     = ".dat"
	manifestName = "datasets.json"
)

// Arrays is the serialized form of one dataset part: a flat image tensor
// with its shape, and the label vector.
type Arrays struct {
	Shape  []int // n, channels, height, width
	Data   []float32
	Labels []int32
}

// Count returns the number of images in the part.
func (a *Arrays) Count() int {
	if len(a.Shape) == 0 {
		return 0
	}
	return a.Shape[0]
}

// Features returns the flattened size of one image.
func (a *Arrays) Features() int {
	f := 1
	for _, d := range a.Shape[1:] {
		f *= d
	}
	return f
}

// Manifest records how a dataset was assembled, for reproducibility.
type Manifest struct {
	Sources     []string       `json:"sources"`
	Paths       []string       `json:"paths"`
	Seed        int64          `json:"seed"`
	Shape       []int          `json:"shape"`
	Counts      map[string]int `json:"counts"`
	Compressed  bool           `json:"compressed"`
	ChannelMean []float64      `json:"channel_mean"`
	ChannelStd  []float64      `json:"channel_std"`
}

// Save writes one array file per part plus the manifest. LoadImages must
// have run.
func (s *Set) Save() error {
	manifest := Manifest{
		Sources:    s.Sources,
		Paths:      make([]string, 0, len(s.Images)),
		Seed:       s.Seed,
		Shape:      []int{s.Shape[0], s.Shape[1], s.Shape[2]},
		Counts:     make(map[string]int, len(s.Parts)),
		Compressed: s.Compress,
	}
	for _, img := range s.Images {
		manifest.Paths = append(manifest.Paths, img.Path)
	}
	mean, std := s.ChannelStats()
	manifest.ChannelMean = mean[:]
	manifest.ChannelStd = std[:]

	for _, part := range Parts {
		arrays := s.arrays(part)
		manifest.Counts[part] = arrays.Count()
		path, err := writeArrays(s.Dir, part, arrays, s.Compress)
		if err != nil {
			return err
		}
		log.Info().Str("part", part).Ints("shape", arrays.Shape).Str("path", path).Msg("arrays saved")
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	path := filepath.Join(s.Dir, manifestName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest (%s): %w", path, err)
	}
	return nil
}

func (s *Set) arrays(part string) *Arrays {
	images := s.Part(part)
	features := s.Shape[0] * s.Shape[1] * s.Shape[2]
	a := &Arrays{
		Shape:  []int{len(images), s.Shape[0], s.Shape[1], s.Shape[2]},
		Data:   make([]float32, 0, len(images)*features),
		Labels: make([]int32, 0, len(images)),
	}
	for _, img := range images {
		a.Data = append(a.Data, img.Pixels...)
		a.Labels = append(a.Labels, int32(img.Label))
	}
	return a
}

func writeArrays(dir, part string, a *Arrays, compress bool) (string, error) {
	path := filepath.Join(dir, part+arrayExt)
	if compress {
		path += ".xz"
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create arrays (%s): %w", path, err)
	}
	var w io.Writer = f
	var xzw *xz.Writer
	if compress {
		if xzw, err = xz.NewWriter(f); err != nil {
			f.Close()
			return "", fmt.Errorf("compress arrays (%s): %w", path, err)
		}
		w = xzw
	}
	if err := gob.NewEncoder(w).Encode(a); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("encode arrays (%s): %w", path, err)
	}
	if xzw != nil {
		if err := xzw.Close(); err != nil {
			f.Close()
			return "", fmt.Errorf("flush arrays (%s): %w", path, err)
		}
	}
	return path, f.Close()
}

// LoadArrays reads one part's arrays, transparently handling the
// xz-compressed form.
func LoadArrays(dir, part string) (*Arrays, error) {
	path := filepath.Join(dir, part+arrayExt)
	compressed := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		path += ".xz"
		compressed = true
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open arrays (%s): %w", path, err)
	}
	defer f.Close()
	var r io.Reader = f
	if compressed {
		if r, err = xz.NewReader(f); err != nil {
			return nil, fmt.Errorf("decompress arrays (%s): %w", path, err)
		}
	}
	var a Arrays
	if err := gob.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("decode arrays (%s): %w", path, err)
	}
	if len(a.Shape) == 0 || a.Count() != len(a.Labels) {
		return nil, fmt.Errorf("arrays (%s): %d labels for %d images", path, len(a.Labels), a.Count())
	}
	return &a, nil
}

// LoadManifest reads the dataset manifest from dir.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, manifestName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load manifest (%s): %w", path, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest (%s): %w", path, err)
	}
	return &m, nil
}
