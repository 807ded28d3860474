// Package search queries the SerpAPI Google Images endpoint for candidate
// reference image URLs.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"refseeder/internal/domain/library"
	"refseeder/internal/errs"
	"refseeder/internal/ports"
)

const defaultBaseURL = "https://serpapi.com/search.json"

type SerpAPIClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

var _ ports.ImageSearcher = (*SerpAPIClient)(nil)

func NewSerpAPIClient(apiKey, baseURL string, timeout time.Duration) *SerpAPIClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SerpAPIClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(apiKey),
	}
}

type imageResult struct {
	Original  string `json:"original"`
	Thumbnail string `json:"thumbnail"`
	Title     string `json:"title"`
}

type searchResponse struct {
	ImagesResults []imageResult `json:"images_results"`
	Error         string        `json:"error"`
}

func (c *SerpAPIClient) SearchImages(ctx context.Context, query string, limit int) ([]ports.ImageSearchResult, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if c.apiKey == "" {
		return nil, ports.ErrSearchNotConfigured
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query is required")
	}
	if limit < 1 {
		limit = 20
	}

	params := url.Values{}
	params.Set("engine", "google_images")
	params.Set("q", query)
	params.Set("num", strconv.Itoa(limit))
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errs.Wrap(err, "build search request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errs.Wrap(err, "call image search api")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable {
		return nil, errs.Wrapf(library.ErrRateLimited, "image search returned %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image search returned status %d", resp.StatusCode)
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, errs.Wrap(err, "decode search response")
	}
	if decoded.Error != "" {
		return nil, fmt.Errorf("image search error: %s", decoded.Error)
	}

	results := make([]ports.ImageSearchResult, 0, len(decoded.ImagesResults))
	for _, item := range decoded.ImagesResults {
		if item.Original == "" && item.Thumbnail == "" {
			continue
		}
		results = append(results, ports.ImageSearchResult{
			OriginalURL:  item.Original,
			ThumbnailURL: item.Thumbnail,
			Title:        item.Title,
		})
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}
