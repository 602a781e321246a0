package app

import (
	"context"
	"fmt"
	"net/http"

	"simpleblog/api/internal/media"
)

// GenerateArticleImage produces a header image for an article and stores it.
// With no generator configured, a deterministic placeholder is used so the
// blog still gets a header image.
func (s *Service) GenerateArticleImage(ctx context.Context, slug, prompt string) (string, error) {
	if s.deps.Media == nil {
		return "", domainError(http.StatusServiceUnavailable, "MEDIA_UNAVAILABLE", "Media storage is not configured", nil)
	}

	article, err := s.deps.Store.GetArticleBySlug(ctx, slug)
	if err != nil {
		return "", err
	}

	var (
		data        []byte
		contentType string
	)
	if s.deps.ImageGen != nil && s.deps.ImageGen.Enabled() {
		if prompt == "" {
			prompt = "Blog header image for: " + article.Title
		}
		data, contentType, err = s.deps.ImageGen.Generate(ctx, prompt)
		if err != nil {
			return "", domainError(http.StatusBadGateway, "IMAGEGEN_FAILED", "Image generation failed", err.Error())
		}
	} else {
		data = media.PlaceholderSVG(article.Title)
		contentType = "image/svg+xml"
	}

	url, err := s.deps.Media.Upload(ctx, media.ObjectName(article.ID, contentType), data, contentType)
	if err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	if err := s.deps.Store.SetArticleImage(ctx, article.ID, url); err != nil {
		return "", fmt.Errorf("save image url: %w", err)
	}
	return url, nil
}
