package distribution

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"AutoPublisher/internal/domain"
)

const twitterLimit = 260

// Payload is the canonical object delivered to every target; the shape is
// fixed regardless of target count or platform.
type Payload struct {
	ArticleID int64             `json:"articleId"`
	Title     string            `json:"title"`
	Excerpt   string            `json:"excerpt"`
	Category  string            `json:"category"`
	ImageURL  string            `json:"imageUrl"`
	URL       string            `json:"url"`
	Variants  map[string]string `json:"variants"`
}

// BuildPayload shapes an article for distribution, including pre-rendered
// short-form text for the known consumer platforms.
func BuildPayload(article domain.Article, siteBaseURL string) Payload {
	articleURL := fmt.Sprintf("%s/blog/%d", strings.TrimSuffix(siteBaseURL, "/"), article.ID)
	excerpt := htmlToText(article.Excerpt)

	return Payload{
		ArticleID: article.ID,
		Title:     article.Title,
		Excerpt:   excerpt,
		Category:  article.Category,
		ImageURL:  article.ImageURL,
		URL:       articleURL,
		Variants: map[string]string{
			"twitter":  truncate(fmt.Sprintf("%s\n\n%s", article.Title, articleURL), twitterLimit),
			"linkedin": fmt.Sprintf("%s\n\n%s\n\nRead more: %s", article.Title, excerpt, articleURL),
		},
	}
}

// htmlToText strips markup from generated content so short-form variants
// stay plain text even when the model emits HTML in the excerpt.
func htmlToText(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}

	return strings.Join(strings.Fields(doc.Text()), " ")
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}

	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}
