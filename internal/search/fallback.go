package search

import (
	"context"
	"fmt"
	"unicode/utf8"

	"simpleblog/api/internal/store"
)

const snippetRunes = 200

// ArticleStore is the slice of the store the fallback needs.
type ArticleStore interface {
	SearchArticles(ctx context.Context, q string, limit int) ([]store.Article, error)
	ListArticles(ctx context.Context, publishedOnly bool) ([]store.Article, error)
}

// StoreFallback answers searches from SQLite when Meilisearch is down. It is
// a plain LIKE scan over published articles, slower and rank-free but always
// available.
type StoreFallback struct {
	store ArticleStore
}

func NewStoreFallback(st ArticleStore) *StoreFallback {
	return &StoreFallback{store: st}
}

func (f *StoreFallback) Search(ctx context.Context, q Query) ([]Result, int, error) {
	limit := q.Limit
	if limit == 0 {
		limit = 20
	}
	articles, err := f.store.SearchArticles(ctx, q.Text, limit+q.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("store search: %w", err)
	}

	total := len(articles)
	if q.Offset >= len(articles) {
		return []Result{}, total, nil
	}
	articles = articles[q.Offset:]
	if len(articles) > limit {
		articles = articles[:limit]
	}

	results := make([]Result, 0, len(articles))
	for _, article := range articles {
		results = append(results, Result{
			ID:      article.ID,
			Slug:    article.Slug,
			Title:   article.Title,
			Snippet: snippet(article),
		})
	}
	return results, total, nil
}

func snippet(article store.Article) string {
	if article.Summary != "" {
		return article.Summary
	}
	content := article.Content
	if utf8.RuneCountInString(content) <= snippetRunes {
		return content
	}
	count := 0
	for i := range content {
		if count == snippetRunes {
			return content[:i] + "..."
		}
		count++
	}
	return content
}

// Records loads every published article shaped for bulk indexing.
func (f *StoreFallback) Records(ctx context.Context) ([]ArticleRecord, error) {
	articles, err := f.store.ListArticles(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	records := make([]ArticleRecord, 0, len(articles))
	for _, article := range articles {
		records = append(records, ArticleRecord{
			ID:      article.ID,
			Slug:    article.Slug,
			Title:   article.Title,
			Summary: article.Summary,
			Content: article.Content,
		})
	}
	return records, nil
}
