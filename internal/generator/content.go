package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"AutoPublisher/internal/domain"
	"AutoPublisher/internal/ports"
)

const systemPrompt = `You are a senior content writer for a marketing technology blog.
You write practical, concrete articles for founders and marketing teams.
Respond with a single JSON object and nothing else. No markdown, no commentary.
The JSON object must have exactly these keys:
  "title":    a specific, non-clickbait headline (max 90 characters)
  "excerpt":  a 1-2 sentence summary (max 220 characters)
  "content":  the full article body in HTML (h2/h3 sections, p, ul/li; 800-1200 words)
  "readTime": an estimate such as "6 min read"`

// ContentGenerator turns a topic selection into a validated article draft
// via the text-generation capability.
type ContentGenerator struct {
	text   ports.TextGenerator
	logger *slog.Logger
}

// NewContentGenerator wires the text capability.
func NewContentGenerator(text ports.TextGenerator, logger *slog.Logger) *ContentGenerator {
	return &ContentGenerator{text: text, logger: logger}
}

type draftPayload struct {
	Title    string `json:"title"`
	Excerpt  string `json:"excerpt"`
	Content  string `json:"content"`
	ReadTime string `json:"readTime"`
}

// Generate requests one article and parses the strict JSON contract out of
// the model response. Parse and validation failures are terminal for the
// run; there is no retry here.
func (g *ContentGenerator) Generate(ctx context.Context, topic, category string, recentTitles []string) (domain.Draft, error) {
	raw, err := g.text.Complete(ctx, systemPrompt, userPrompt(topic, category, recentTitles))
	if err != nil {
		return domain.Draft{}, classify(err)
	}

	var payload draftPayload
	if err := json.Unmarshal([]byte(StripCodeFence(raw)), &payload); err != nil {
		return domain.Draft{}, fmt.Errorf("%w: %v", domain.ErrParseFailed, err)
	}

	draft := domain.Draft{
		Title:    strings.TrimSpace(payload.Title),
		Excerpt:  strings.TrimSpace(payload.Excerpt),
		Body:     strings.TrimSpace(payload.Content),
		ReadTime: strings.TrimSpace(payload.ReadTime),
	}

	if draft.Title == "" || draft.Excerpt == "" || draft.Body == "" {
		return domain.Draft{}, fmt.Errorf("%w: title, excerpt and content must be non-empty", domain.ErrValidationFailed)
	}

	if draft.ReadTime == "" {
		draft.ReadTime = "5 min read"
	}

	if g.logger != nil {
		g.logger.Debug("article draft generated", "title", draft.Title, "category", category)
	}

	return draft, nil
}

func userPrompt(topic, category string, recentTitles []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a blog article about: %s\n", topic)
	fmt.Fprintf(&b, "Category: %s\n", category)

	if len(recentTitles) > 0 {
		b.WriteString("Do not repeat or closely resemble any of these recent titles:\n")
		for _, title := range recentTitles {
			fmt.Fprintf(&b, "- %s\n", title)
		}
	}

	b.WriteString("Return only the JSON object.")
	return b.String()
}

// StripCodeFence removes a surrounding Markdown code fence (```json ... ```
// or plain ``` ... ```) that models frequently add despite instructions.
// Input without a fence is returned trimmed and otherwise untouched.
func StripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	if nl := strings.IndexByte(trimmed, '\n'); nl >= 0 && strings.EqualFold(strings.TrimSpace(trimmed[:nl]), "json") {
		trimmed = trimmed[nl+1:]
	} else {
		trimmed = strings.TrimPrefix(trimmed, "json")
	}

	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func classify(err error) error {
	switch {
	case errors.Is(err, domain.ErrRateLimited),
		errors.Is(err, domain.ErrQuotaExhausted),
		errors.Is(err, domain.ErrGenerationFailed):
		return err
	default:
		return fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}
}
