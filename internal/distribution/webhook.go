package distribution

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"AutoPublisher/internal/domain"
)

const defaultTargetTimeout = 10 * time.Second

// Distributor delivers the canonical payload to every enabled webhook
// target. Deliveries run concurrently and are isolated: one target's
// timeout or error never affects the others, and every target yields
// exactly one result. Failed targets are reported, not retried.
type Distributor struct {
	client      *http.Client
	timeout     time.Duration
	siteBaseURL string
	logger      *slog.Logger
}

// NewDistributor wires an HTTP client; a nil client gets a default with the
// per-target timeout.
func NewDistributor(client *http.Client, siteBaseURL string, logger *slog.Logger) *Distributor {
	if client == nil {
		client = &http.Client{Timeout: defaultTargetTimeout}
	}
	return &Distributor{
		client:      client,
		timeout:     defaultTargetTimeout,
		siteBaseURL: siteBaseURL,
		logger:      logger,
	}
}

// Distribute fans the article out to all targets and waits for every
// delivery to finish or time out. An empty target list is valid and
// returns an empty result set.
func (d *Distributor) Distribute(ctx context.Context, article domain.Article, targets []domain.DistributionTarget) []domain.TargetResult {
	results := make([]domain.TargetResult, len(targets))
	if len(targets) == 0 {
		return results
	}

	payload := BuildPayload(article, d.siteBaseURL)
	body, err := json.Marshal(payload)
	if err != nil {
		for i, target := range targets {
			results[i] = domain.TargetResult{TargetID: target.ID, Platform: target.Platform, Err: fmt.Errorf("marshal payload: %w", err)}
		}
		return results
	}

	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target domain.DistributionTarget) {
			defer wg.Done()
			results[i] = d.deliver(ctx, target, body)
		}(i, target)
	}
	wg.Wait()

	for _, res := range results {
		if res.Err != nil && d.logger != nil {
			d.logger.Warn("target delivery failed", "target", res.TargetID, "platform", res.Platform, "error", res.Err)
		}
	}

	return results
}

func (d *Distributor) deliver(ctx context.Context, target domain.DistributionTarget, body []byte) domain.TargetResult {
	result := domain.TargetResult{TargetID: target.ID, Platform: target.Platform}

	deliveryCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(deliveryCtx, http.MethodPost, target.URL, bytes.NewReader(body))
	if err != nil {
		result.Err = fmt.Errorf("new request: %w", err)
		return result
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		result.Err = fmt.Errorf("deliver payload: %w", err)
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		result.Err = fmt.Errorf("target returned %s", resp.Status)
		return result
	}

	result.Success = true
	return result
}
