package app

import (
	"strings"
	"time"

	"simpleblog/api/internal/store"
)

func articlePayload(article store.Article) map[string]any {
	return map[string]any{
		"id":        article.ID,
		"slug":      article.Slug,
		"title":     article.Title,
		"summary":   article.Summary,
		"content":   article.Content,
		"imageUrl":  article.ImageURL,
		"hashtags":  strings.Fields(article.Hashtags),
		"likes":     article.Likes,
		"published": article.Published,
		"createdAt": article.CreatedAt.UTC().Format(time.RFC3339),
		"updatedAt": article.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func articlesPayload(articles []store.Article) []map[string]any {
	items := make([]map[string]any, 0, len(articles))
	for _, article := range articles {
		items = append(items, articlePayload(article))
	}
	return items
}

func commentsPayload(comments []store.RemoteComment) []map[string]any {
	items := make([]map[string]any, 0, len(comments))
	for _, comment := range comments {
		items = append(items, map[string]any{
			"id":        comment.ID,
			"actor":     comment.Actor,
			"content":   comment.Content,
			"remoteUri": comment.RemoteURI,
			"createdAt": comment.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return items
}

func historyPayload(history []store.CommitInfo) []map[string]any {
	items := make([]map[string]any, 0, len(history))
	for _, commit := range history {
		items = append(items, map[string]any{
			"hash":      commit.Hash,
			"message":   commit.Message,
			"author":    commit.Author,
			"createdAt": commit.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return items
}
