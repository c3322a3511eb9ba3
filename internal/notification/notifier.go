// Package notification delivers publication emails to admins and newsletter
// subscribers. Both passes are best-effort: individual send failures are
// counted and logged, never propagated, so publication success is never
// contingent on notification success.
package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/lo"

	"AutoPublisher/internal/domain"
	"AutoPublisher/internal/ports"
)

// Notifier fans article emails out to admins and subscribers.
type Notifier struct {
	mailer      ports.Mailer
	accounts    ports.AccountRepository
	subscribers ports.SubscriberRepository
	siteName    string
	siteBaseURL string
	adminURL    string
	batchSize   int
	batchDelay  time.Duration
	logger      *slog.Logger
	sleep       func(time.Duration)
}

// Deps wires the notifier's collaborators.
type Deps struct {
	Mailer      ports.Mailer
	Accounts    ports.AccountRepository
	Subscribers ports.SubscriberRepository
	SiteName    string
	SiteBaseURL string
	AdminURL    string
	BatchSize   int
	BatchDelay  time.Duration
	Logger      *slog.Logger
}

// NewNotifier constructs the notification component.
func NewNotifier(deps Deps) *Notifier {
	batchSize := deps.BatchSize
	if batchSize <= 0 {
		batchSize = 10
	}

	return &Notifier{
		mailer:      deps.Mailer,
		accounts:    deps.Accounts,
		subscribers: deps.Subscribers,
		siteName:    deps.SiteName,
		siteBaseURL: deps.SiteBaseURL,
		adminURL:    deps.AdminURL,
		batchSize:   batchSize,
		batchDelay:  deps.BatchDelay,
		logger:      deps.Logger,
		sleep:       time.Sleep,
	}
}

// NotifyAdmins emails every account holding the admin role. A system with
// no configured admins succeeds trivially with zero sent.
func (n *Notifier) NotifyAdmins(ctx context.Context, article domain.Article) domain.DeliveryStats {
	var stats domain.DeliveryStats

	emails, err := n.accounts.AdminEmails(ctx)
	if err != nil {
		n.warn("load admin emails failed", err)
		return stats
	}

	for _, addr := range emails {
		msg, err := n.adminEmail(article, addr)
		if err == nil {
			err = n.mailer.Send(ctx, msg)
		}
		if err != nil {
			stats.Failed++
			n.warn("admin notification failed", err, "to", addr)
			continue
		}
		stats.Sent++
	}

	return stats
}

// NotifySubscribers emails every confirmed, not-unsubscribed subscriber in
// fixed-size batches. Sends within a batch run concurrently; batches are
// serialized by a fixed delay, bounding outbound request concentration.
func (n *Notifier) NotifySubscribers(ctx context.Context, article domain.Article) domain.DeliveryStats {
	var stats domain.DeliveryStats

	subs, err := n.subscribers.ActiveSubscribers(ctx)
	if err != nil {
		n.warn("load subscribers failed", err)
		return stats
	}

	active := lo.Filter(subs, func(s domain.Subscriber, _ int) bool { return s.Active() })
	if len(active) == 0 {
		return stats
	}

	var mu sync.Mutex
	batches := lo.Chunk(active, n.batchSize)
	for i, batch := range batches {
		if i > 0 && n.batchDelay > 0 {
			n.sleep(n.batchDelay)
		}

		var wg sync.WaitGroup
		for _, sub := range batch {
			wg.Add(1)
			go func(sub domain.Subscriber) {
				defer wg.Done()

				msg, err := n.subscriberEmail(article, sub.Email)
				if err == nil {
					err = n.mailer.Send(ctx, msg)
				}

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					stats.Failed++
					n.warn("subscriber notification failed", err, "to", sub.Email)
					return
				}
				stats.Sent++
			}(sub)
		}
		wg.Wait()
	}

	return stats
}

func (n *Notifier) warn(msg string, err error, args ...any) {
	if n.logger == nil {
		return
	}
	n.logger.Warn(msg, append([]any{"error", err}, args...)...)
}
