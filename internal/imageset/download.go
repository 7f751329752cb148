package imageset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

var (
	ErrAlreadyDownloaded = errors.New("imageset: already downloaded")
	ErrInvalidResponse   = errors.New("imageset: invalid response")
)

// DownloadStats summarizes one DownloadAll pass.
type DownloadStats struct {
	New     int
	Old     int
	Invalid int
}

// DownloadAll fetches every resource's URL into dir/raw. Responses other
// than 200 image/jpeg invalidate the resource, which is dropped from the
// set. Existing files are kept and counted as old.
func (m *Manager) DownloadAll(ctx context.Context) (DownloadStats, error) {
	rawDir := filepath.Join(m.dir, "raw")
	if err := os.MkdirAll(rawDir, 0o755); err != nil {
		return DownloadStats{}, fmt.Errorf("download dir (%s): %w", rawDir, err)
	}
	var stats DownloadStats
	resources := m.Resources()
	n := len(resources)
	for i, r := range resources {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		err := m.download(ctx, r, rawDir)
		switch {
		case err == nil:
			stats.New++
			log.Info().Int("i", i+1).Int("n", n).Str("id", r.ID).Msg("downloaded")
		case errors.Is(err, ErrAlreadyDownloaded):
			stats.Old++
			log.Debug().Int("i", i+1).Int("n", n).Str("id", r.ID).Msg("already downloaded")
		case errors.Is(err, ErrInvalidResponse):
			stats.Invalid++
			delete(m.resources, r.ID)
			log.Warn().Int("i", i+1).Int("n", n).Str("id", r.ID).Msg("invalid response")
		default:
			return stats, err
		}
	}
	return stats, nil
}

func (m *Manager) download(ctx context.Context, r *Resource, rawDir string) error {
	filename := filepath.Join(rawDir, r.ID+".jpeg")
	if r.Raw == filename {
		return ErrAlreadyDownloaded
	}
	if _, err := os.Stat(filename); err == nil {
		r.Raw = filename
		return ErrAlreadyDownloaded
	}
	if r.URL == "" {
		return ErrInvalidResponse
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return ErrInvalidResponse
	}
	resp, err := m.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrInvalidResponse
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/jpeg" {
		return ErrInvalidResponse
	}

	out, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create raw file (%s): %w", filename, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(filename)
		return ErrInvalidResponse
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close raw file (%s): %w", filename, err)
	}
	r.Raw = filename
	return nil
}

// SetHTTPClient overrides the download client, mainly for tests.
func (m *Manager) SetHTTPClient(c *http.Client) { m.client = c }
