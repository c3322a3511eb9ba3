package distribution

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"AutoPublisher/internal/domain"
)

var testArticle = domain.Article{
	ID:       7,
	Title:    "A Fresh Article",
	Excerpt:  "<p>Short &amp; sweet.</p>",
	Category: "Marketing",
	ImageURL: "https://cdn.example.com/banner.png",
}

func TestDistributeMixedOutcomes(t *testing.T) {
	t.Parallel()

	okServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload Payload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload.ArticleID != 7 || payload.Title != "A Fresh Article" {
			t.Errorf("unexpected payload: %+v", payload)
		}
		if payload.Variants["twitter"] == "" || payload.Variants["linkedin"] == "" {
			t.Errorf("missing short-form variants: %+v", payload.Variants)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer okServer.Close()

	failServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failServer.Close()

	dist := NewDistributor(nil, "https://example.com", nil)
	targets := []domain.DistributionTarget{
		{ID: 1, Platform: "zapier", URL: okServer.URL, Enabled: true},
		{ID: 2, Platform: "make", URL: failServer.URL, Enabled: true},
	}

	results := dist.Distribute(context.Background(), testArticle, targets)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if !results[0].Success || results[0].Err != nil {
		t.Fatalf("target 1 should succeed: %+v", results[0])
	}
	if results[1].Success || results[1].Err == nil {
		t.Fatalf("target 2 should fail: %+v", results[1])
	}
}

func TestDistributeSlowFailureDoesNotBlockOthers(t *testing.T) {
	t.Parallel()

	var fastDone atomic.Bool
	fastServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fastDone.Store(true)
		w.WriteHeader(http.StatusOK)
	}))
	defer fastServer.Close()

	slowServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer slowServer.Close()

	dist := NewDistributor(nil, "https://example.com", nil)
	targets := []domain.DistributionTarget{
		{ID: 1, Platform: "slow", URL: slowServer.URL},
		{ID: 2, Platform: "fast", URL: fastServer.URL},
	}

	start := time.Now()
	results := dist.Distribute(context.Background(), testArticle, targets)
	elapsed := time.Since(start)

	if !fastDone.Load() {
		t.Fatal("fast target was never reached")
	}
	if !results[1].Success {
		t.Fatalf("fast target should succeed: %+v", results[1])
	}
	if results[0].Err == nil {
		t.Fatalf("slow target should fail: %+v", results[0])
	}
	// Concurrent fan-out: total time tracks the slowest target, not the sum.
	if elapsed > 500*time.Millisecond {
		t.Fatalf("fan-out did not run concurrently, took %v", elapsed)
	}
}

func TestDistributeUnreachableTargetsIsolated(t *testing.T) {
	t.Parallel()

	okServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer okServer.Close()

	dist := NewDistributor(nil, "https://example.com", nil)
	targets := []domain.DistributionTarget{
		{ID: 1, Platform: "dead", URL: "http://127.0.0.1:1/hook"},
		{ID: 2, Platform: "live", URL: okServer.URL},
		{ID: 3, Platform: "dead2", URL: "http://127.0.0.1:1/hook"},
	}

	results := dist.Distribute(context.Background(), testArticle, targets)

	if len(results) != 3 {
		t.Fatalf("expected a result per target, got %d", len(results))
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	if failed != 2 {
		t.Fatalf("expected exactly 2 failures, got %d", failed)
	}
	if !results[1].Success {
		t.Fatalf("live target should succeed: %+v", results[1])
	}
}

func TestDistributeEmptyTargetList(t *testing.T) {
	t.Parallel()

	dist := NewDistributor(nil, "https://example.com", nil)

	results := dist.Distribute(context.Background(), testArticle, nil)
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}

func TestBuildPayload(t *testing.T) {
	t.Parallel()

	payload := BuildPayload(testArticle, "https://example.com/")

	if payload.URL != "https://example.com/blog/7" {
		t.Fatalf("unexpected canonical url: %s", payload.URL)
	}
	if payload.Excerpt != "Short & sweet." {
		t.Fatalf("html not stripped from excerpt: %q", payload.Excerpt)
	}
	if len(payload.Variants) < 2 {
		t.Fatalf("expected at least two variants, got %d", len(payload.Variants))
	}
}

func TestTruncateRespectsLimit(t *testing.T) {
	t.Parallel()

	long := make([]rune, 300)
	for i := range long {
		long[i] = 'ä'
	}

	got := truncate(string(long), twitterLimit)
	if n := len([]rune(got)); n > twitterLimit {
		t.Fatalf("truncated variant too long: %d runes", n)
	}
}
