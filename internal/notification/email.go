package notification

import (
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"AutoPublisher/internal/domain"
)

var adminTemplate = template.Must(template.New("admin").Parse(`<!DOCTYPE html>
<html>
<body style="font-family:Arial,sans-serif;color:#1f2937;max-width:600px;margin:0 auto;">
  <p style="text-transform:uppercase;font-size:12px;color:#6b7280;">{{.Category}}</p>
  <h1 style="font-size:22px;">{{.Title}}</h1>
  {{if .ImageURL}}<img src="{{.ImageURL}}" alt="" style="width:100%;border-radius:8px;"/>{{end}}
  <p>{{.Excerpt}}</p>
  <p>A new article was published automatically on {{.SiteName}}.</p>
  <p>
    <a href="{{.ArticleURL}}" style="color:#2563eb;">View article</a> &middot;
    <a href="{{.AdminURL}}" style="color:#2563eb;">Open admin panel</a>
  </p>
</body>
</html>`))

var subscriberTemplate = template.Must(template.New("subscriber").Parse(`<!DOCTYPE html>
<html>
<body style="font-family:Arial,sans-serif;color:#1f2937;max-width:600px;margin:0 auto;">
  <p style="text-transform:uppercase;font-size:12px;color:#6b7280;">{{.Category}}</p>
  <h1 style="font-size:22px;">{{.Title}}</h1>
  {{if .ImageURL}}<img src="{{.ImageURL}}" alt="" style="width:100%;border-radius:8px;"/>{{end}}
  <p>{{.Excerpt}}</p>
  <p><a href="{{.ArticleURL}}" style="color:#2563eb;">Read the full article on {{.SiteName}}</a></p>
  <hr style="border:none;border-top:1px solid #e5e7eb;"/>
  <p style="font-size:12px;color:#9ca3af;">
    You receive this because you subscribed to the {{.SiteName}} newsletter.
    <a href="{{.UnsubscribeURL}}" style="color:#9ca3af;">Unsubscribe</a>
  </p>
</body>
</html>`))

type emailData struct {
	SiteName       string
	Category       string
	Title          string
	Excerpt        string
	ImageURL       string
	ArticleURL     string
	AdminURL       string
	UnsubscribeURL string
}

func (n *Notifier) emailData(article domain.Article) emailData {
	base := strings.TrimSuffix(n.siteBaseURL, "/")
	return emailData{
		SiteName:   n.siteName,
		Category:   article.Category,
		Title:      article.Title,
		Excerpt:    article.Excerpt,
		ImageURL:   article.ImageURL,
		ArticleURL: fmt.Sprintf("%s/blog/%d", base, article.ID),
		AdminURL:   n.adminURL,
	}
}

func (n *Notifier) adminEmail(article domain.Article, to string) (domain.EmailMessage, error) {
	var body strings.Builder
	if err := adminTemplate.Execute(&body, n.emailData(article)); err != nil {
		return domain.EmailMessage{}, fmt.Errorf("render admin email: %w", err)
	}

	return domain.EmailMessage{
		To:      to,
		Subject: fmt.Sprintf("New article published: %s", article.Title),
		HTML:    body.String(),
	}, nil
}

func (n *Notifier) subscriberEmail(article domain.Article, to string) (domain.EmailMessage, error) {
	data := n.emailData(article)
	data.UnsubscribeURL = fmt.Sprintf("%s/unsubscribe?email=%s",
		strings.TrimSuffix(n.siteBaseURL, "/"), url.QueryEscape(to))

	var body strings.Builder
	if err := subscriberTemplate.Execute(&body, data); err != nil {
		return domain.EmailMessage{}, fmt.Errorf("render subscriber email: %w", err)
	}

	return domain.EmailMessage{
		To:      to,
		Subject: fmt.Sprintf("%s: %s", n.siteName, article.Title),
		HTML:    body.String(),
	}, nil
}
