// Package flickr collects image resources from the Flickr search API.
package flickr

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/deepsix-ml/deepsix/internal/imageset"
)

const (
	DefaultBaseURL = "https://api.flickr.com/services/rest/"

	perPage = 500
)

// Client is an unsigned Flickr REST client.
type Client struct {
	APIKey  string
	Secret  string
	BaseURL string
	HTTP    *http.Client
}

// NewClient builds a client from an API key pair.
func NewClient(key, secret string) *Client {
	return &Client{
		APIKey:  key,
		Secret:  secret,
		BaseURL: DefaultBaseURL,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// LoadKeyFile reads a two-line key file: API key then API secret.
func LoadKeyFile(path string) (key, secret string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", fmt.Errorf("open key file (%s): %w", path, err)
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	var lines []string
	for scanner.Scan() && len(lines) < 2 {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return "", "", fmt.Errorf("read key file (%s): %w", path, err)
	}
	if len(lines) < 2 {
		return "", "", fmt.Errorf("key file (%s) needs two lines: key, secret", path)
	}
	return lines[0], lines[1], nil
}

type searchResponse struct {
	Photos struct {
		Page  int          `json:"page"`
		Pages int          `json:"pages"`
		Photo []photoEntry `json:"photo"`
	} `json:"photos"`
	Stat    string `json:"stat"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type photoEntry struct {
	ID     string `json:"id"`
	Secret string `json:"secret"`
	Server string `json:"server"`
	Farm   int    `json:"farm"`
}

func (p photoEntry) resource() imageset.Resource {
	return imageset.Resource{
		ID:  p.ID,
		URL: fmt.Sprintf("https://farm%d.staticflickr.com/%s/%s_%s.jpg", p.Farm, p.Server, p.ID, p.Secret),
	}
}

// Search walks flickr.photos.search for photos matching all tags, following
// pagination until max resources are collected or pages run out.
func (c *Client) Search(ctx context.Context, tags string, max int) ([]imageset.Resource, error) {
	if max <= 0 {
		return nil, nil
	}
	var out []imageset.Resource
	for page := 1; ; page++ {
		resp, err := c.searchPage(ctx, tags, page)
		if err != nil {
			return out, err
		}
		for _, photo := range resp.Photos.Photo {
			out = append(out, photo.resource())
			if len(out) >= max {
				return out, nil
			}
		}
		log.Debug().Str("tags", tags).Int("page", page).Int("pages", resp.Photos.Pages).
			Int("collected", len(out)).Msg("flickr page walked")
		if page >= resp.Photos.Pages || len(resp.Photos.Photo) == 0 {
			return out, nil
		}
	}
}

func (c *Client) searchPage(ctx context.Context, tags string, page int) (*searchResponse, error) {
	query := url.Values{}
	query.Set("method", "flickr.photos.search")
	query.Set("api_key", c.APIKey)
	query.Set("tags", tags)
	query.Set("tag_mode", "all")
	query.Set("per_page", strconv.Itoa(perPage))
	query.Set("page", strconv.Itoa(page))
	query.Set("format", "json")
	query.Set("nojsoncallback", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("flickr request: %w", err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("flickr search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("flickr search: unexpected status %d", resp.StatusCode)
	}
	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("flickr response: %w", err)
	}
	if parsed.Stat != "ok" {
		return nil, fmt.Errorf("flickr api error %d: %s", parsed.Code, parsed.Message)
	}
	return &parsed, nil
}
