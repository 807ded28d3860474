package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"refseeder/internal/errs"
	"refseeder/internal/ports"
)

// HTTPFetcher downloads image bytes with a bounded timeout and body size.
type HTTPFetcher struct {
	client   *http.Client
	maxBytes int64
}

var _ ports.Fetcher = (*HTTPFetcher)(nil)

func NewHTTPFetcher(timeout time.Duration, maxBytes int64) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPFetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("url is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.Wrap(err, "build download request")
	}
	req.Header.Set("User-Agent", "refseeder/1.0 (reference image collector)")
	req.Header.Set("Accept", "image/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errs.Wrap(err, "download image")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download returned status %d", resp.StatusCode)
	}

	reader := io.Reader(resp.Body)
	if f.maxBytes > 0 {
		// One extra byte so an oversized body is detectable by the validator.
		reader = io.LimitReader(resp.Body, f.maxBytes+1)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errs.Wrap(err, "read image body")
	}
	return data, nil
}
