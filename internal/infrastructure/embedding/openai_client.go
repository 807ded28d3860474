// Package embedding wraps an OpenAI-compatible embeddings endpoint that
// accepts base64 image payloads (a CLIP-style server).
package embedding

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"refseeder/internal/domain/library"
	"refseeder/internal/errs"
	"refseeder/internal/ports"
)

// ErrNotConfigured means no embedding credential is set. Callers store the
// image without a vector instead of failing the item.
var ErrNotConfigured = errors.New("embedding api key not configured")

type Client struct {
	api     openai.Client
	model   string
	enabled bool
}

var _ ports.Embedder = (*Client)(nil)

// Config mirrors the embedding section of the app config.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

func NewClient(cfg Config) *Client {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return &Client{}
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}

	return &Client{
		api:     openai.NewClient(opts...),
		model:   cfg.Model,
		enabled: true,
	}
}

// Embed converts image bytes to a vector. Rate-limit and overload responses
// come back as library.ErrRateLimited so callers can back off instead of
// hammering the endpoint.
func (c *Client) Embed(ctx context.Context, data []byte) ([]float32, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if !c.enabled {
		return nil, ErrNotConfigured
	}
	if len(data) == 0 {
		return nil, errors.New("image bytes are required")
	}

	payload := base64.StdEncoding.EncodeToString(data)

	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(c.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(payload),
		},
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			if apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode == http.StatusServiceUnavailable {
				return nil, errs.Wrapf(library.ErrRateLimited, "embeddings endpoint returned %d", apiErr.StatusCode)
			}
		}
		return nil, errs.Wrap(err, "request embedding")
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("embeddings endpoint returned no vector")
	}

	raw := resp.Data[0].Embedding
	vector := make([]float32, len(raw))
	for i, v := range raw {
		vector[i] = float32(v)
	}
	return vector, nil
}
