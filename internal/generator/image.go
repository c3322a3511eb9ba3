package generator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"AutoPublisher/internal/ports"
)

// ImageGenerator produces a banner image for an article. It never fails the
// caller: any error on generation, decode or upload is logged and the fixed
// placeholder URL is returned instead. Images are enhancement, not a
// publication blocker.
type ImageGenerator struct {
	model       ports.ImageModel
	blobs       ports.BlobStore
	fallbackURL string
	logger      *slog.Logger
	now         func() time.Time
}

// NewImageGenerator wires the image capability and blob store.
func NewImageGenerator(model ports.ImageModel, blobs ports.BlobStore, fallbackURL string, logger *slog.Logger) *ImageGenerator {
	return &ImageGenerator{
		model:       model,
		blobs:       blobs,
		fallbackURL: fallbackURL,
		logger:      logger,
		now:         time.Now,
	}
}

// Generate renders and stores a banner, returning its public URL or the
// placeholder URL on any failure.
func (g *ImageGenerator) Generate(ctx context.Context, title, topic string) string {
	if g.model == nil || g.blobs == nil {
		return g.fallbackURL
	}

	data, err := g.model.Generate(ctx, imagePrompt(title, topic))
	if err != nil {
		g.warn("image generation failed, using placeholder", err)
		return g.fallbackURL
	}

	name := fmt.Sprintf("blog/%s-%s.png", g.now().UTC().Format("20060102T150405"), uuid.NewString()[:8])
	url, err := g.blobs.Upload(ctx, name, data, "image/png")
	if err != nil {
		g.warn("image upload failed, using placeholder", err)
		return g.fallbackURL
	}
	if url == "" {
		g.warn("blob store returned empty url, using placeholder", nil)
		return g.fallbackURL
	}

	return url
}

func imagePrompt(title, topic string) string {
	return fmt.Sprintf(
		"A modern, minimal editorial illustration for a blog article titled %q about %s. "+
			"Wide 16:9 banner composition, soft gradients, abstract shapes. "+
			"Absolutely no text, letters, words or typography in the image.",
		title, topic)
}

func (g *ImageGenerator) warn(msg string, err error) {
	if g.logger == nil {
		return
	}
	if err != nil {
		g.logger.Warn(msg, "error", err)
		return
	}
	g.logger.Warn(msg)
}
