package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"AutoPublisher/internal/domain"
	"AutoPublisher/internal/ports"
	"AutoPublisher/internal/topics"
)

const recentTitleWindow = 10

// ContentGenerator produces a validated article draft.
type ContentGenerator interface {
	Generate(ctx context.Context, topic, category string, recentTitles []string) (domain.Draft, error)
}

// ImageGenerator returns a banner URL; it must always return a usable URL.
type ImageGenerator interface {
	Generate(ctx context.Context, title, topic string) string
}

// Distributor fans a published article out to webhook targets.
type Distributor interface {
	Distribute(ctx context.Context, article domain.Article, targets []domain.DistributionTarget) []domain.TargetResult
}

// Notifier emails admins and subscribers about a published article.
type Notifier interface {
	NotifyAdmins(ctx context.Context, article domain.Article) domain.DeliveryStats
	NotifySubscribers(ctx context.Context, article domain.Article) domain.DeliveryStats
}

// PipelineDeps wires all collaborators into the publication pipeline.
type PipelineDeps struct {
	Articles    ports.ArticleRepository
	Targets     ports.TargetRepository
	Content     ContentGenerator
	Images      ImageGenerator
	Distributor Distributor
	Notifier    Notifier
	Rand        *rand.Rand
	Logger      *slog.Logger
}

// Pipeline implements the daily publication workflow. Only the idempotency
// check, content generation and the persist write can terminate a run;
// every stage after the persisted article is best-effort and feeds the
// run report instead of aborting.
type Pipeline struct {
	articles    ports.ArticleRepository
	targets     ports.TargetRepository
	content     ContentGenerator
	images      ImageGenerator
	distributor Distributor
	notifier    Notifier
	rand        *rand.Rand
	logger      *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	rng := deps.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Pipeline{
		articles:    deps.Articles,
		targets:     deps.Targets,
		content:     deps.Content,
		images:      deps.Images,
		distributor: deps.Distributor,
		notifier:    deps.Notifier,
		rand:        rng,
		logger:      deps.Logger,
	}
}

// Run executes one publication attempt and returns exactly one run report,
// whether the run completed, was skipped, or failed early.
func (p *Pipeline) Run(ctx context.Context, now time.Time) (domain.RunReport, error) {
	var report domain.RunReport

	published, err := p.articles.HasPublishedToday(ctx, now)
	if err != nil {
		return report, fmt.Errorf("%w: check published today: %v", domain.ErrPersistenceFailed, err)
	}
	if published {
		p.info("publication already exists for today, skipping")
		report.Skipped = true
		return report, nil
	}

	// Recent history is advisory prompt context; failures here must not
	// stop the run.
	recentTitles, err := p.articles.RecentTitles(ctx, recentTitleWindow)
	if err != nil {
		p.warn("load recent titles failed, proceeding without history", err)
		recentTitles = nil
	}
	recentCategories, err := p.articles.RecentCategories(ctx, 3)
	if err != nil {
		p.warn("load recent categories failed, proceeding without history", err)
		recentCategories = nil
	}

	selection := topics.Select(p.rand, recentTitles, recentCategories)
	p.info("topic selected", "topic", selection.Topic, "category", selection.Category)

	draft, err := p.content.Generate(ctx, selection.Topic, selection.Category, recentTitles)
	if err != nil {
		return report, fmt.Errorf("generate content: %w", err)
	}

	imageURL := p.images.Generate(ctx, draft.Title, selection.Topic)

	article := domain.Article{
		Title:     draft.Title,
		Excerpt:   draft.Excerpt,
		Body:      draft.Body,
		Category:  selection.Category,
		ReadTime:  draft.ReadTime,
		ImageURL:  imageURL,
		Published: true,
		CreatedAt: now,
	}

	id, err := p.articles.Insert(ctx, article)
	if err != nil {
		return report, fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, err)
	}
	article.ID = id

	report.Created = true
	report.ArticleID = id
	report.Title = article.Title
	p.info("article persisted", "id", id, "title", article.Title)

	// The article is durable from here on; nothing below can fail the run.
	p.distribute(ctx, article, &report)

	report.Admins = p.notifier.NotifyAdmins(ctx, article)
	report.Subscribers = p.notifier.NotifySubscribers(ctx, article)

	p.info("run completed",
		"targets_delivered", report.TargetsDelivered,
		"targets_failed", len(report.TargetsFailed),
		"admins_sent", report.Admins.Sent,
		"subscribers_sent", report.Subscribers.Sent)

	return report, nil
}

func (p *Pipeline) distribute(ctx context.Context, article domain.Article, report *domain.RunReport) {
	targets, err := p.targets.EnabledTargets(ctx)
	if err != nil {
		p.warn("load distribution targets failed", err)
		return
	}

	for _, result := range p.distributor.Distribute(ctx, article, targets) {
		if result.Success {
			report.TargetsDelivered++
			continue
		}
		report.TargetsFailed = append(report.TargetsFailed, result.TargetID)
	}
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, err error, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, append([]any{"error", err}, args...)...)
	}
}
