package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"AutoPublisher/internal/config"
	"AutoPublisher/internal/ports"
)

// Store uploads objects to a Supabase-style storage REST API and derives
// their permanent public URLs.
type Store struct {
	baseURL    string
	bucket     string
	serviceKey string
	httpClient *http.Client
}

var _ ports.BlobStore = (*Store)(nil)

// NewStore builds a store from configuration.
func NewStore(cfg config.BlobConfig) *Store {
	return &Store{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		bucket:     cfg.Bucket,
		serviceKey: cfg.ServiceKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Upload writes the object and returns its public URL. Names may contain
// path segments (e.g. "blog/2026.png").
func (s *Store) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if s.baseURL == "" || s.bucket == "" {
		return "", fmt.Errorf("blob store misconfigured")
	}

	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload object: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("storage returned %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	return s.PublicURL(name), nil
}

// PublicURL returns the stable public URL for an object name.
func (s *Store) PublicURL(name string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, name)
}
