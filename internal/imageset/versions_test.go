package imageset

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/deepsix-ml/deepsix/internal/testutil/testlog"
)

func writePNG(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func TestMakeVersions(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	raw := filepath.Join(dir, "raw", "a.png")
	writePNG(t, raw, 4, 4, color.White)

	m, err := Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	alter := func(img image.Image) image.Image { return img }

	stats, err := m.MakeVersions("copy", alter, false)
	if err != nil {
		t.Fatalf("make versions: %v", err)
	}
	if stats.New != 1 || stats.Old != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	version := filepath.Join(dir, "copy", "a.bmp")
	if _, err := os.Stat(version); err != nil {
		t.Fatalf("version missing: %v", err)
	}
	r, _ := m.Lookup("a")
	if r.Raw != raw {
		t.Fatalf("raw should be unchanged: %q", r.Raw)
	}

	// second pass keeps the existing version
	stats, err = m.MakeVersions("copy", alter, false)
	if err != nil {
		t.Fatalf("make versions again: %v", err)
	}
	if stats.New != 0 || stats.Old != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestMakeVersionsSkipsMissingRaw(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	m, err := Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	m.Add(Resource{ID: "pending", URL: "http://example.com/p.jpg"})

	stats, err := m.MakeVersions("copy", func(img image.Image) image.Image { return img }, false)
	if err != nil {
		t.Fatalf("make versions: %v", err)
	}
	if stats.Skipped != 1 || stats.New != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestResizeRaws(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "raw", "a.png"), 32, 16, color.White)

	m, err := Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	stats, err := m.ResizeRaws(8)
	if err != nil {
		t.Fatalf("resize: %v", err)
	}
	if stats.New != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	r, _ := m.Lookup("a")
	want := filepath.Join(dir, "8", "a.bmp")
	if r.Raw != want {
		t.Fatalf("resize should update raw: %q", r.Raw)
	}
	img, err := decodeFile(want)
	if err != nil {
		t.Fatalf("decode resized: %v", err)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 8 {
		t.Fatalf("unexpected size: %v", img.Bounds())
	}
}

func TestScale(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 20))
	dst := Scale(src, 5, 5)
	if dst.Bounds().Dx() != 5 || dst.Bounds().Dy() != 5 {
		t.Fatalf("unexpected bounds: %v", dst.Bounds())
	}
}
