package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"AutoPublisher/internal/config"
	"AutoPublisher/internal/ports"
)

// ImagesClient implements ports.ImageModel against OpenAI-compatible image
// generation APIs. It requests an inline base64 payload and decodes it to
// raw bytes; the caller handles storage and fallback.
type ImagesClient struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

var _ ports.ImageModel = (*ImagesClient)(nil)

// NewImagesClient builds a client from configuration.
func NewImagesClient(cfg config.OpenAIConfig) *ImagesClient {
	return &ImagesClient{
		endpoint: cfg.ImagesEndpoint,
		model:    cfg.ImageModel,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Generate renders the prompt as a wide banner and returns the decoded
// image bytes.
func (c *ImagesClient) Generate(ctx context.Context, prompt string) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("images client is nil")
	}
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return nil, fmt.Errorf("images client misconfigured")
	}

	body, err := json.Marshal(map[string]any{
		"model":           c.model,
		"prompt":          prompt,
		"n":               1,
		"size":            "1792x1024",
		"response_format": "b64_json",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal image payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image api returned %s", resp.Status)
	}

	var parsed struct {
		Data []struct {
			B64JSON string `json:"b64_json"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode image response: %w", err)
	}
	if len(parsed.Data) == 0 || parsed.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("image response has no inline payload")
	}

	raw, err := base64.StdEncoding.DecodeString(parsed.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decode image bytes: %w", err)
	}

	return raw, nil
}
