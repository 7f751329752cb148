package imageset

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"

	_ "image/jpeg"
	_ "image/png"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// Alteration transforms a decoded image into a derived version.
type Alteration func(image.Image) image.Image

// VersionStats summarizes one MakeVersions pass.
type VersionStats struct {
	New     int
	Old     int
	Skipped int // resources without a raw file
}

// MakeVersions renders an altered version of each raw image into dir/<key>
// as BMP. Existing version files are kept. When updateRaw is set the new
// file becomes the resource's raw path.
func (m *Manager) MakeVersions(key string, alter Alteration, updateRaw bool) (VersionStats, error) {
	versionDir := filepath.Join(m.dir, key)
	if err := os.MkdirAll(versionDir, 0o755); err != nil {
		return VersionStats{}, fmt.Errorf("version dir (%s): %w", versionDir, err)
	}
	var stats VersionStats
	resources := m.Resources()
	n := len(resources)
	for i, r := range resources {
		if r.Raw == "" {
			stats.Skipped++
			continue
		}
		filename := filepath.Join(versionDir, r.ID+".bmp")
		if _, err := os.Stat(filename); err == nil {
			stats.Old++
			if updateRaw {
				r.Raw = filename
			}
			log.Debug().Int("i", i+1).Int("n", n).Str("id", r.ID).Msg("version exists")
			continue
		}
		img, err := decodeFile(r.Raw)
		if err != nil {
			return stats, err
		}
		if err := encodeBMP(filename, alter(img)); err != nil {
			return stats, err
		}
		if updateRaw {
			r.Raw = filename
		}
		stats.New++
		log.Info().Int("i", i+1).Int("n", n).Str("id", r.ID).Str("key", key).Msg("version created")
	}
	return stats, nil
}

// ResizeRaws scales every raw image to size x size and treats the scaled
// file as the new raw. The version key is the size itself.
func (m *Manager) ResizeRaws(size int) (VersionStats, error) {
	return m.MakeVersions(strconv.Itoa(size), func(img image.Image) image.Image {
		return Scale(img, size, size)
	}, true)
}

// Scale resamples src to w x h.
func Scale(src image.Image, w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Rect, src, src.Bounds(), draw.Over, nil)
	return dst
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image (%s): %w", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image (%s): %w", path, err)
	}
	return img, nil
}

func encodeBMP(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create version (%s): %w", path, err)
	}
	if err := bmp.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("encode version (%s): %w", path, err)
	}
	return f.Close()
}
