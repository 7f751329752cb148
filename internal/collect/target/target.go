// Package target collects retailer product-image resources from a SKU list.
package target

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/deepsix-ml/deepsix/internal/imageset"
)

const urlTemplate = "http://scene7.targetimg1.com/is/image/Target/%s?wid=%d"

// URL returns the scene7 image URL for a SKU at the requested width.
func URL(sku string, width int) string {
	return fmt.Sprintf(urlTemplate, sku, width)
}

// FromSKUFile reads one SKU per line (blank lines ignored) and returns up
// to max resources. max <= 0 means no limit.
func FromSKUFile(path string, width, max int) ([]imageset.Resource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sku file (%s): %w", path, err)
	}
	defer f.Close()

	var out []imageset.Resource
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		sku := strings.TrimSpace(scanner.Text())
		if sku == "" {
			continue
		}
		out = append(out, imageset.Resource{ID: sku, URL: URL(sku, width)})
		if max > 0 && len(out) >= max {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read sku file (%s): %w", path, err)
	}
	return out, nil
}
