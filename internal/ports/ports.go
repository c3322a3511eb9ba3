package ports

import (
	"context"
	"time"

	"AutoPublisher/internal/domain"
)

// TextGenerator produces a completion for a system/user prompt pair.
type TextGenerator interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ImageModel renders a prompt into raw image bytes.
type ImageModel interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// BlobStore uploads an object and returns its stable public URL.
type BlobStore interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// Mailer sends a single transactional email.
type Mailer interface {
	Send(ctx context.Context, msg domain.EmailMessage) error
}

// ArticleRepository persists published articles and answers the
// day-granularity idempotency check.
type ArticleRepository interface {
	HasPublishedToday(ctx context.Context, now time.Time) (bool, error)
	Insert(ctx context.Context, article domain.Article) (int64, error)
	RecentTitles(ctx context.Context, limit int) ([]string, error)
	RecentCategories(ctx context.Context, limit int) ([]string, error)
	Recent(ctx context.Context, limit int) ([]domain.Article, error)
}

// TargetRepository reads the currently enabled distribution targets.
type TargetRepository interface {
	EnabledTargets(ctx context.Context) ([]domain.DistributionTarget, error)
}

// SubscriberRepository reads confirmed, not-unsubscribed newsletter
// recipients.
type SubscriberRepository interface {
	ActiveSubscribers(ctx context.Context) ([]domain.Subscriber, error)
}

// AccountRepository resolves the email addresses of administrator accounts.
type AccountRepository interface {
	AdminEmails(ctx context.Context) ([]string, error)
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
