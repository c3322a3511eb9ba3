package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"AutoPublisher/internal/config"
	"AutoPublisher/internal/domain"
	"AutoPublisher/internal/ports"
)

const recentArticleLimit = 50

// PipelineRunner triggers one publication attempt.
type PipelineRunner interface {
	Run(ctx context.Context, now time.Time) (domain.RunReport, error)
}

// Server exposes the job trigger and the read surfaces over HTTP.
type Server struct {
	router   *chi.Mux
	pipeline PipelineRunner
	articles ports.ArticleRepository
	cfg      config.Config
	logger   *slog.Logger
	now      func() time.Time
}

// New builds the router with all routes registered.
func New(pipeline PipelineRunner, articles ports.ArticleRepository, cfg config.Config, logger *slog.Logger) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		pipeline: pipeline,
		articles: articles,
		cfg:      cfg,
		logger:   logger,
		now:      func() time.Time { return time.Now().In(cfg.Scheduler.Location()) },
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(5 * time.Minute))

	s.router.Post("/api/jobs/publish", s.handlePublish)
	s.router.Get("/api/articles", s.handleArticles)
	s.router.Get("/rss.xml", s.handleRSS)

	s.router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP listener until the server fails.
func (s *Server) Start(addr string) error {
	s.logger.Info("http server listening", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// handlePublish triggers one pipeline run. It is callable by the external
// scheduler (shared secret) or an administrator (bearer token with the
// admin role). The response is the run report; failures before the persist
// boundary map to distinct status codes so the caller can tell an AI
// problem from a storage problem.
func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	if status, err := s.authorize(r); err != nil {
		s.logger.Warn("publish trigger rejected", "status", status, "error", err)
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	report, err := s.pipeline.Run(r.Context(), s.now())
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, domain.ErrRateLimited):
			status = http.StatusTooManyRequests
		case errors.Is(err, domain.ErrQuotaExhausted):
			status = http.StatusPaymentRequired
		}
		s.logger.Error("pipeline run failed", "error", err)
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := s.articles.Recent(r.Context(), recentArticleLimit)
	if err != nil {
		s.logger.Error("load articles failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load articles"})
		return
	}

	type item struct {
		ID        int64     `json:"id"`
		Title     string    `json:"title"`
		Excerpt   string    `json:"excerpt"`
		Category  string    `json:"category"`
		ReadTime  string    `json:"readTime"`
		ImageURL  string    `json:"imageUrl"`
		CreatedAt time.Time `json:"createdAt"`
	}

	items := make([]item, 0, len(articles))
	for _, a := range articles {
		items = append(items, item{
			ID:        a.ID,
			Title:     a.Title,
			Excerpt:   a.Excerpt,
			Category:  a.Category,
			ReadTime:  a.ReadTime,
			ImageURL:  a.ImageURL,
			CreatedAt: a.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleRSS(w http.ResponseWriter, r *http.Request) {
	articles, err := s.articles.Recent(r.Context(), recentArticleLimit)
	if err != nil {
		s.logger.Error("load articles failed", "error", err)
		http.Error(w, "failed to load articles", http.StatusInternalServerError)
		return
	}

	feed, err := buildFeed(articles, s.cfg.Site)
	if err != nil {
		s.logger.Error("build feed failed", "error", err)
		http.Error(w, "failed to generate feed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	_, _ = w.Write([]byte(feed))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
