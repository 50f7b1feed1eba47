// Package flickr implements the photo service on the Flickr REST API
package flickr

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/vijay-prabhu/tripvault/internal/logging"
	"github.com/vijay-prabhu/tripvault/internal/photos"
)

// DefaultEndpoint is the Flickr REST endpoint
const DefaultEndpoint = "https://api.flickr.com/services/rest/"

// Client talks to the Flickr REST API through an OAuth1-signed HTTP client
type Client struct {
	httpClient *http.Client
	apiKey     string
	endpoint   string
}

// New creates a client; httpClient should sign requests (see Authorize)
func New(httpClient *http.Client, apiKey string) *Client {
	return &Client{httpClient: httpClient, apiKey: apiKey, endpoint: DefaultEndpoint}
}

// WithEndpoint overrides the REST endpoint
func (c *Client) WithEndpoint(endpoint string) *Client {
	c.endpoint = endpoint
	return c
}

type searchResponse struct {
	Stat    string `json:"stat"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Photos  struct {
		Page    int `json:"page"`
		Pages   int `json:"pages"`
		PerPage int `json:"perpage"`
		Photo   []struct {
			ID             string `json:"id"`
			Title          string `json:"title"`
			URLOriginal    string `json:"url_o"`
			OriginalFormat string `json:"originalformat"`
		} `json:"photo"`
	} `json:"photos"`
}

// Search pages through flickr.photos.search until the last reported page
// or an empty one
func (c *Client) Search(ctx context.Context, params photos.SearchParams) iter.Seq2[photos.Photo, error] {
	return func(yield func(photos.Photo, error) bool) {
		for page := 1; ; page++ {
			resp, err := c.searchPage(ctx, params, page)
			if err != nil {
				yield(photos.Photo{}, err)
				return
			}
			if len(resp.Photos.Photo) == 0 {
				return
			}

			logging.Log.WithField("page", page).WithField("count", len(resp.Photos.Photo)).Debug("flickr search page")
			for _, p := range resp.Photos.Photo {
				photo := photos.Photo{
					ID:             p.ID,
					Title:          p.Title,
					URLOriginal:    p.URLOriginal,
					OriginalFormat: p.OriginalFormat,
				}
				if !yield(photo, nil) {
					return
				}
			}

			if resp.Photos.Pages > 0 && page >= resp.Photos.Pages {
				return
			}
		}
	}
}

func (c *Client) searchPage(ctx context.Context, params photos.SearchParams, page int) (*searchResponse, error) {
	q := url.Values{}
	q.Set("method", "flickr.photos.search")
	q.Set("format", "json")
	q.Set("nojsoncallback", "1")
	if c.apiKey != "" {
		q.Set("api_key", c.apiKey)
	}
	q.Set("user_id", params.UserID)
	if params.Text != "" {
		q.Set("text", params.Text)
	}
	if params.MinTakenDate != "" {
		q.Set("min_taken_date", params.MinTakenDate)
	}
	if params.MaxTakenDate != "" {
		q.Set("max_taken_date", params.MaxTakenDate)
	}
	if params.PrivacyFilter > 0 {
		q.Set("privacy_filter", strconv.Itoa(params.PrivacyFilter))
	}
	q.Set("extras", "url_o,original_format")
	q.Set("page", strconv.Itoa(page))
	if params.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(params.PerPage))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("photo search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("photo search failed (status %d): %s", resp.StatusCode, string(body))
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	if result.Stat != "ok" {
		return nil, fmt.Errorf("flickr error %d: %s", result.Code, result.Message)
	}
	return &result, nil
}

// Download fetches the original image and writes it to path atomically
func (c *Client) Download(ctx context.Context, photo photos.Photo, path string) error {
	if photo.URLOriginal == "" {
		return photos.ErrNoURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, photo.URLOriginal, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download photo %s: %w", photo.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &photos.StatusError{PhotoID: photo.ID, Code: resp.StatusCode}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".download-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write photo %s: %w", photo.ID, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
