package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"AutoPublisher/internal/config"
	"AutoPublisher/internal/domain"
	"AutoPublisher/internal/ports"
)

// Client sends transactional email through a Resend-compatible HTTP API.
type Client struct {
	endpoint   string
	apiKey     string
	from       string
	httpClient *http.Client
}

var _ ports.Mailer = (*Client)(nil)

// NewClient builds a mail client from configuration.
func NewClient(cfg config.MailConfig) *Client {
	return &Client{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		from:       cfg.From,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send delivers one email; success or failure applies to this recipient only.
func (c *Client) Send(ctx context.Context, msg domain.EmailMessage) error {
	if c.endpoint == "" || c.apiKey == "" || c.from == "" {
		return fmt.Errorf("mail client misconfigured")
	}
	if msg.To == "" {
		return fmt.Errorf("email has no recipient")
	}

	body, err := json.Marshal(map[string]any{
		"from":    c.from,
		"to":      []string{msg.To},
		"subject": msg.Subject,
		"html":    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mail provider returned %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	return nil
}
