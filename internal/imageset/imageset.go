// Package imageset manages collections of image resources on disk: the
// resource catalog (resources.json), raw downloads, and derived versions.
package imageset

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const catalogName = "resources.json"

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".png":  true,
}

// ScanImages returns basename -> path for every image file in dir.
// Extensions are matched case-insensitively: jpg, jpeg, bmp, png.
func ScanImages(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan images (%s): %w", dir, err)
	}
	result := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if !imageExtensions[ext] {
			continue
		}
		result[strings.TrimSuffix(name, filepath.Ext(name))] = filepath.Join(dir, name)
	}
	return result, nil
}

// Resource is the URL and local raw path of a single image, keyed by ID.
type Resource struct {
	ID  string
	URL string
	Raw string
}

// Manager owns the resource set rooted at a directory.
type Manager struct {
	dir       string
	resources map[string]*Resource
	client    *http.Client
}

// Open loads (or initializes) the resource set under dir. Resources recorded
// in resources.json are reconciled against files actually present, and raw
// files missing from the catalog are registered with an empty URL.
func Open(dir string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("open image set (%s): %w", dir, err)
	}
	m := &Manager{
		dir:       dir,
		resources: make(map[string]*Resource),
		client:    &http.Client{Timeout: 30 * time.Second},
	}
	if err := m.loadCatalog(); err != nil {
		return nil, err
	}
	if err := m.scanRaw(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) loadCatalog() error {
	path := filepath.Join(m.dir, catalogName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load catalog (%s): %w", path, err)
	}
	var entries map[string][2]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse catalog (%s): %w", path, err)
	}
	for id, entry := range entries {
		url, raw := entry[0], entry[1]
		if raw != "" {
			if _, err := os.Stat(raw); err != nil {
				raw = ""
			}
		}
		if raw == "" {
			fallback := filepath.Join(m.dir, "raw", id+".jpeg")
			if _, err := os.Stat(fallback); err == nil {
				raw = fallback
			}
		}
		m.resources[id] = &Resource{ID: id, URL: url, Raw: raw}
	}
	return nil
}

// scanRaw registers raw files that are missing from the catalog.
func (m *Manager) scanRaw() error {
	rawDir := filepath.Join(m.dir, "raw")
	if _, err := os.Stat(rawDir); os.IsNotExist(err) {
		return nil
	}
	found, err := ScanImages(rawDir)
	if err != nil {
		return err
	}
	for id, path := range found {
		if _, ok := m.resources[id]; ok {
			continue
		}
		m.resources[id] = &Resource{ID: id, Raw: path}
	}
	return nil
}

// Save writes the resource catalog atomically.
func (m *Manager) Save() error {
	entries := make(map[string][2]string, len(m.resources))
	for id, r := range m.resources {
		entries[id] = [2]string{r.URL, r.Raw}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	path := filepath.Join(m.dir, catalogName)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write catalog (%s): %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("commit catalog (%s): %w", path, err)
	}
	return nil
}

func (m *Manager) Dir() string { return m.dir }

func (m *Manager) Len() int { return len(m.resources) }

// Lookup returns the resource with the given ID, if present.
func (m *Manager) Lookup(id string) (Resource, bool) {
	r, ok := m.resources[id]
	if !ok {
		return Resource{}, false
	}
	return *r, true
}

// Resources returns the resource set ordered by ID.
func (m *Manager) Resources() []*Resource {
	out := make([]*Resource, 0, len(m.resources))
	for _, r := range m.resources {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Add registers a resource; an existing ID wins and Add reports false.
func (m *Manager) Add(r Resource) bool {
	if r.ID == "" {
		return false
	}
	if _, ok := m.resources[r.ID]; ok {
		return false
	}
	cp := r
	m.resources[r.ID] = &cp
	return true
}

// AddAll registers resources in order, returning the number actually added.
func (m *Manager) AddAll(rs []Resource) int {
	added := 0
	for _, r := range rs {
		if m.Add(r) {
			added++
		}
	}
	return added
}
