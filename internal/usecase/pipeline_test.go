package usecase

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"AutoPublisher/internal/domain"
)

type fakeArticles struct {
	publishedToday   bool
	publishedErr     error
	insertErr        error
	inserted         []domain.Article
	recentTitles     []string
	recentCategories []string
	nextID           int64
}

func (f *fakeArticles) HasPublishedToday(context.Context, time.Time) (bool, error) {
	return f.publishedToday, f.publishedErr
}

func (f *fakeArticles) Insert(_ context.Context, article domain.Article) (int64, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	f.nextID++
	f.inserted = append(f.inserted, article)
	return f.nextID, nil
}

func (f *fakeArticles) RecentTitles(context.Context, int) ([]string, error) {
	return f.recentTitles, nil
}

func (f *fakeArticles) RecentCategories(context.Context, int) ([]string, error) {
	return f.recentCategories, nil
}

func (f *fakeArticles) Recent(context.Context, int) ([]domain.Article, error) {
	return f.inserted, nil
}

type fakeTargets struct {
	targets []domain.DistributionTarget
	err     error
}

func (f *fakeTargets) EnabledTargets(context.Context) ([]domain.DistributionTarget, error) {
	return f.targets, f.err
}

type fakeContent struct {
	draft domain.Draft
	err   error
	calls int
}

func (f *fakeContent) Generate(context.Context, string, string, []string) (domain.Draft, error) {
	f.calls++
	return f.draft, f.err
}

type fakeImages struct{ url string }

func (f *fakeImages) Generate(context.Context, string, string) string { return f.url }

type fakeDistributor struct {
	results []domain.TargetResult
	calls   int
}

func (f *fakeDistributor) Distribute(_ context.Context, _ domain.Article, targets []domain.DistributionTarget) []domain.TargetResult {
	f.calls++
	if f.results != nil {
		return f.results
	}
	results := make([]domain.TargetResult, len(targets))
	for i, t := range targets {
		results[i] = domain.TargetResult{TargetID: t.ID, Success: true}
	}
	return results
}

type fakeNotifier struct {
	admins      domain.DeliveryStats
	subscribers domain.DeliveryStats
	adminCalls  int
	subCalls    int
}

func (f *fakeNotifier) NotifyAdmins(context.Context, domain.Article) domain.DeliveryStats {
	f.adminCalls++
	return f.admins
}

func (f *fakeNotifier) NotifySubscribers(context.Context, domain.Article) domain.DeliveryStats {
	f.subCalls++
	return f.subscribers
}

func validDraft() domain.Draft {
	return domain.Draft{Title: "T", Excerpt: "E", Body: "B", ReadTime: "5 min read"}
}

func newTestPipeline(articles *fakeArticles, targets *fakeTargets, content *fakeContent, dist *fakeDistributor, notifier *fakeNotifier) *Pipeline {
	return NewPipeline(PipelineDeps{
		Articles:    articles,
		Targets:     targets,
		Content:     content,
		Images:      &fakeImages{url: "/images/blog-placeholder.jpg"},
		Distributor: dist,
		Notifier:    notifier,
		Rand:        rand.New(rand.NewSource(1)),
	})
}

func TestRunFullSuccess(t *testing.T) {
	t.Parallel()

	articles := &fakeArticles{}
	targets := &fakeTargets{targets: []domain.DistributionTarget{{ID: 1, URL: "http://x", Enabled: true}}}
	notifier := &fakeNotifier{admins: domain.DeliveryStats{Sent: 1}}
	pipeline := newTestPipeline(articles, targets, &fakeContent{draft: validDraft()}, &fakeDistributor{}, notifier)

	report, err := pipeline.Run(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if !report.Created || report.Skipped {
		t.Fatalf("unexpected report flags: %+v", report)
	}
	if report.ArticleID != 1 || report.Title != "T" {
		t.Fatalf("unexpected identity: %+v", report)
	}
	if report.TargetsDelivered != 1 || len(report.TargetsFailed) != 0 {
		t.Fatalf("unexpected distribution outcome: %+v", report)
	}
	if report.Admins.Sent != 1 || report.Subscribers.Sent != 0 {
		t.Fatalf("unexpected notification outcome: %+v", report)
	}
	if len(articles.inserted) != 1 || articles.inserted[0].ImageURL == "" {
		t.Fatalf("article not persisted with image url: %+v", articles.inserted)
	}
}

func TestRunSkipsWhenAlreadyPublishedToday(t *testing.T) {
	t.Parallel()

	articles := &fakeArticles{publishedToday: true}
	content := &fakeContent{draft: validDraft()}
	dist := &fakeDistributor{}
	notifier := &fakeNotifier{}
	pipeline := newTestPipeline(articles, &fakeTargets{}, content, dist, notifier)

	report, err := pipeline.Run(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if !report.Skipped || report.Created {
		t.Fatalf("expected skipped report, got %+v", report)
	}
	if content.calls != 0 {
		t.Fatal("content generation ran despite idempotency skip")
	}
	if len(articles.inserted) != 0 {
		t.Fatal("insert was called despite idempotency skip")
	}
	if dist.calls != 0 || notifier.adminCalls != 0 {
		t.Fatal("fan-out ran despite idempotency skip")
	}
}

func TestRunGenerationFailureIsTerminal(t *testing.T) {
	t.Parallel()

	articles := &fakeArticles{}
	dist := &fakeDistributor{}
	notifier := &fakeNotifier{}
	content := &fakeContent{err: domain.ErrQuotaExhausted}
	pipeline := newTestPipeline(articles, &fakeTargets{}, content, dist, notifier)

	_, err := pipeline.Run(context.Background(), time.Now())
	if !errors.Is(err, domain.ErrQuotaExhausted) {
		t.Fatalf("expected ErrQuotaExhausted, got %v", err)
	}
	if len(articles.inserted) != 0 {
		t.Fatal("nothing must be persisted when generation fails")
	}
	if dist.calls != 0 || notifier.adminCalls != 0 || notifier.subCalls != 0 {
		t.Fatal("fan-out ran despite generation failure")
	}
}

func TestRunPersistFailureIsTerminal(t *testing.T) {
	t.Parallel()

	articles := &fakeArticles{insertErr: errors.New("connection lost")}
	dist := &fakeDistributor{}
	pipeline := newTestPipeline(articles, &fakeTargets{}, &fakeContent{draft: validDraft()}, dist, &fakeNotifier{})

	_, err := pipeline.Run(context.Background(), time.Now())
	if !errors.Is(err, domain.ErrPersistenceFailed) {
		t.Fatalf("expected ErrPersistenceFailed, got %v", err)
	}
	if dist.calls != 0 {
		t.Fatal("distribution ran without a persisted article")
	}
}

func TestRunPartialDistributionFailureStillSucceeds(t *testing.T) {
	t.Parallel()

	articles := &fakeArticles{}
	targets := &fakeTargets{targets: []domain.DistributionTarget{
		{ID: 1, URL: "http://ok"},
		{ID: 2, URL: "http://down"},
	}}
	dist := &fakeDistributor{results: []domain.TargetResult{
		{TargetID: 1, Success: true},
		{TargetID: 2, Err: errors.New("HTTP 500")},
	}}
	pipeline := newTestPipeline(articles, targets, &fakeContent{draft: validDraft()}, dist, &fakeNotifier{})

	report, err := pipeline.Run(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if report.TargetsDelivered != 1 {
		t.Fatalf("expected 1 delivery, got %d", report.TargetsDelivered)
	}
	if len(report.TargetsFailed) != 1 || report.TargetsFailed[0] != 2 {
		t.Fatalf("expected target 2 reported failed, got %v", report.TargetsFailed)
	}
}

func TestRunEmptyTargetListCompletes(t *testing.T) {
	t.Parallel()

	articles := &fakeArticles{}
	notifier := &fakeNotifier{}
	pipeline := newTestPipeline(articles, &fakeTargets{}, &fakeContent{draft: validDraft()}, &fakeDistributor{}, notifier)

	report, err := pipeline.Run(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if !report.Created || report.TargetsDelivered != 0 || len(report.TargetsFailed) != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if notifier.adminCalls != 1 || notifier.subCalls != 1 {
		t.Fatal("notification pass did not run")
	}
}
