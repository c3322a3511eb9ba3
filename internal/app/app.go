package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"AutoPublisher/internal/config"
	"AutoPublisher/internal/distribution"
	"AutoPublisher/internal/generator"
	"AutoPublisher/internal/infrastructure/blob"
	"AutoPublisher/internal/infrastructure/llm"
	"AutoPublisher/internal/infrastructure/mail"
	schedinfra "AutoPublisher/internal/infrastructure/scheduler"
	"AutoPublisher/internal/infrastructure/storage"
	"AutoPublisher/internal/logging"
	"AutoPublisher/internal/notification"
	"AutoPublisher/internal/server"
	"AutoPublisher/internal/usecase"
)

// Application wires configuration to components and owns the lifecycle.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	return &Application{cfg: cfg, logger: baseLogger}
}

// Run connects the database, assembles the pipeline, starts the daily
// scheduler when enabled, and serves HTTP until the listener fails.
func (a *Application) Run(ctx context.Context) error {
	db, err := storage.Open(ctx, a.cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	repo := storage.NewPostgresRepository(db)

	content := generator.NewContentGenerator(
		llm.NewChatClient(a.cfg.OpenAI),
		a.logger.With("component", "content"),
	)
	images := generator.NewImageGenerator(
		llm.NewImagesClient(a.cfg.OpenAI),
		blob.NewStore(a.cfg.Blob),
		a.cfg.Blob.FallbackImageURL,
		a.logger.With("component", "images"),
	)

	distributor := distribution.NewDistributor(
		&http.Client{Timeout: 10 * time.Second},
		a.cfg.Site.BaseURL,
		a.logger.With("component", "distribution"),
	)

	notifier := notification.NewNotifier(notification.Deps{
		Mailer:      mail.NewClient(a.cfg.Mail),
		Accounts:    repo,
		Subscribers: repo,
		SiteName:    a.cfg.Site.Name,
		SiteBaseURL: a.cfg.Site.BaseURL,
		AdminURL:    a.cfg.Site.AdminURL,
		BatchSize:   a.cfg.Notifications.BatchSize,
		BatchDelay:  a.cfg.Notifications.BatchDelay(),
		Logger:      a.logger.With("component", "notification"),
	})

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Articles:    repo,
		Targets:     repo,
		Content:     content,
		Images:      images,
		Distributor: distributor,
		Notifier:    notifier,
		Logger:      a.logger.With("component", "pipeline"),
	})

	if a.cfg.Scheduler.IsEnabled() {
		driver, err := schedinfra.NewDailyScheduler(a.cfg.Scheduler.At, a.cfg.Scheduler.Location())
		if err != nil {
			return fmt.Errorf("configure scheduler: %w", err)
		}

		sched := usecase.NewScheduler(driver, pipeline, a.logger.With("component", "scheduler"))
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		defer func() { _ = sched.Stop(context.Background()) }()

		a.logger.Info("daily scheduler started", "at", a.cfg.Scheduler.At, "tz", a.cfg.Scheduler.Timezone)
	}

	srv := server.New(pipeline, repo, a.cfg, a.logger.With("component", "server"))
	return srv.Start(":" + a.cfg.Server.Port)
}
