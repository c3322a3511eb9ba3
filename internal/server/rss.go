package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/feeds"

	"AutoPublisher/internal/config"
	"AutoPublisher/internal/domain"
)

// buildFeed renders the published articles as an RSS 2.0 feed.
func buildFeed(articles []domain.Article, site config.SiteConfig) (string, error) {
	base := strings.TrimSuffix(site.BaseURL, "/")

	feed := &feeds.Feed{
		Title:       site.Name,
		Link:        &feeds.Link{Href: base},
		Description: fmt.Sprintf("Latest articles from %s", site.Name),
		Created:     time.Now(),
	}

	feed.Items = make([]*feeds.Item, 0, len(articles))
	for _, article := range articles {
		feed.Items = append(feed.Items, &feeds.Item{
			Title:       article.Title,
			Link:        &feeds.Link{Href: fmt.Sprintf("%s/blog/%d", base, article.ID)},
			Id:          fmt.Sprintf("%s/blog/%d", base, article.ID),
			Description: article.Excerpt,
			Created:     article.CreatedAt,
		})
	}

	rss, err := feed.ToRss()
	if err != nil {
		return "", fmt.Errorf("render rss: %w", err)
	}

	return rss, nil
}
