package app

import (
	"context"
	"fmt"
	"net/http"

	"simpleblog/api/internal/bluesky"
	"simpleblog/api/internal/store"
)

const (
	settingBlueskyHandle   = "bluesky_handle"
	settingBlueskyPassword = "bluesky_app_password"

	platformBluesky = "bluesky"
)

// SetBlueskyConfig stores the account credentials used for cross-posting.
func (s *Service) SetBlueskyConfig(ctx context.Context, handle, appPassword string) error {
	if handle == "" || appPassword == "" {
		return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "handle and appPassword are required", nil)
	}
	if err := s.deps.Store.SetSetting(ctx, settingBlueskyHandle, handle); err != nil {
		return fmt.Errorf("save handle: %w", err)
	}
	if err := s.deps.Store.SetSetting(ctx, settingBlueskyPassword, appPassword); err != nil {
		return fmt.Errorf("save app password: %w", err)
	}
	return nil
}

func (s *Service) blueskyCredentials(ctx context.Context) (bluesky.Credentials, error) {
	handle, err := s.deps.Store.GetSetting(ctx, settingBlueskyHandle)
	if err != nil {
		return bluesky.Credentials{}, fmt.Errorf("load handle: %w", err)
	}
	password, err := s.deps.Store.GetSetting(ctx, settingBlueskyPassword)
	if err != nil {
		return bluesky.Credentials{}, fmt.Errorf("load app password: %w", err)
	}
	if handle == "" || password == "" {
		return bluesky.Credentials{}, domainError(http.StatusServiceUnavailable, "BLUESKY_NOT_CONFIGURED", "Bluesky credentials are not configured", nil)
	}
	return bluesky.Credentials{Handle: handle, AppPassword: password}, nil
}

// TestBlueskyConnection checks that the stored credentials can open a session.
func (s *Service) TestBlueskyConnection(ctx context.Context) error {
	creds, err := s.blueskyCredentials(ctx)
	if err != nil {
		return err
	}
	client := s.deps.NewBluesky(creds)
	if err := client.Authenticate(ctx); err != nil {
		return domainError(http.StatusBadGateway, "BLUESKY_AUTH_FAILED", "Bluesky authentication failed", err.Error())
	}
	return nil
}

// CrossPostArticle composes and publishes one article to Bluesky. Posting is
// idempotent per article: a second call returns the recorded post URI.
func (s *Service) CrossPostArticle(ctx context.Context, slug string) (store.CrossPost, error) {
	article, err := s.GetArticle(ctx, slug, false)
	if err != nil {
		return store.CrossPost{}, err
	}

	if existing, err := s.deps.Store.GetCrossPost(ctx, article.ID, platformBluesky); err == nil {
		return existing, nil
	}

	creds, err := s.blueskyCredentials(ctx)
	if err != nil {
		return store.CrossPost{}, err
	}

	composed := s.composeFor(article)
	client := s.deps.NewBluesky(creds)
	uri, err := client.PublishPost(ctx, bluesky.PostInput{
		Text:        composed.Text,
		Facets:      bluesky.WireFacets(composed.Facets),
		ArticleURL:  s.cfg.BaseURL + "/articles/" + article.Slug,
		Title:       article.Title,
		Description: article.Summary,
		ImageURL:    article.ImageURL,
		CreatedAt:   article.UpdatedAt,
	})
	if err != nil {
		return store.CrossPost{}, domainError(http.StatusBadGateway, "BLUESKY_POST_FAILED", "Posting to Bluesky failed", err.Error())
	}

	post := store.CrossPost{
		ArticleID: article.ID,
		Platform:  platformBluesky,
		RemoteURI: uri,
	}
	if err := s.deps.Store.SaveCrossPost(ctx, post); err != nil {
		return store.CrossPost{}, fmt.Errorf("record crosspost: %w", err)
	}
	return post, nil
}

// BlueskyStats returns engagement counts for an article's Bluesky post.
func (s *Service) BlueskyStats(ctx context.Context, slug string) (bluesky.Engagement, error) {
	client, uri, err := s.blueskyForArticle(ctx, slug)
	if err != nil {
		return bluesky.Engagement{}, err
	}
	engagement, err := client.GetEngagement(ctx, uri)
	if err != nil {
		return bluesky.Engagement{}, domainError(http.StatusBadGateway, "BLUESKY_FETCH_FAILED", "Fetching Bluesky engagement failed", err.Error())
	}
	return engagement, nil
}

// BlueskyReplies returns the reply thread of an article's Bluesky post.
func (s *Service) BlueskyReplies(ctx context.Context, slug string) ([]bluesky.Reply, error) {
	client, uri, err := s.blueskyForArticle(ctx, slug)
	if err != nil {
		return nil, err
	}
	replies, err := client.GetReplies(ctx, uri)
	if err != nil {
		return nil, domainError(http.StatusBadGateway, "BLUESKY_FETCH_FAILED", "Fetching Bluesky replies failed", err.Error())
	}
	return replies, nil
}

func (s *Service) blueskyForArticle(ctx context.Context, slug string) (blueskyClient, string, error) {
	article, err := s.GetArticle(ctx, slug, false)
	if err != nil {
		return nil, "", err
	}
	post, err := s.deps.Store.GetCrossPost(ctx, article.ID, platformBluesky)
	if err != nil {
		return nil, "", domainError(http.StatusNotFound, "NOT_CROSSPOSTED", "Article has not been posted to Bluesky", nil)
	}
	creds, err := s.blueskyCredentials(ctx)
	if err != nil {
		return nil, "", err
	}
	return s.deps.NewBluesky(creds), post.RemoteURI, nil
}
