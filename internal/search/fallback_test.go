package search

import (
	"context"
	"strings"
	"testing"

	"simpleblog/api/internal/store"
)

type fakeArticleStore struct {
	articles []store.Article
}

func (f *fakeArticleStore) SearchArticles(ctx context.Context, q string, limit int) ([]store.Article, error) {
	out := []store.Article{}
	for _, a := range f.articles {
		if !a.Published {
			continue
		}
		if strings.Contains(strings.ToLower(a.Title), strings.ToLower(q)) ||
			strings.Contains(strings.ToLower(a.Content), strings.ToLower(q)) {
			out = append(out, a)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeArticleStore) ListArticles(ctx context.Context, publishedOnly bool) ([]store.Article, error) {
	out := []store.Article{}
	for _, a := range f.articles {
		if !publishedOnly || a.Published {
			out = append(out, a)
		}
	}
	return out, nil
}

func TestFallbackSearch(t *testing.T) {
	st := &fakeArticleStore{articles: []store.Article{
		{ID: "1", Slug: "go-tips", Title: "Go Tips", Summary: "short tips", Content: "content", Published: true},
		{ID: "2", Slug: "draft", Title: "Go Draft", Content: "content", Published: false},
		{ID: "3", Slug: "other", Title: "Cooking", Content: "nothing relevant", Published: true},
	}}
	fallback := NewStoreFallback(st)

	results, total, err := fallback.Search(context.Background(), Query{Text: "go"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 1 || len(results) != 1 {
		t.Fatalf("results = %+v", results)
	}
	if results[0].Slug != "go-tips" || results[0].Snippet != "short tips" {
		t.Errorf("result = %+v", results[0])
	}
}

func TestFallbackSnippetFromContent(t *testing.T) {
	long := strings.Repeat("word ", 100)
	st := &fakeArticleStore{articles: []store.Article{
		{ID: "1", Slug: "a", Title: "A", Content: long, Published: true},
	}}
	fallback := NewStoreFallback(st)

	results, _, err := fallback.Search(context.Background(), Query{Text: "word"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %+v", results)
	}
	if !strings.HasSuffix(results[0].Snippet, "...") {
		t.Errorf("snippet not clipped: %q", results[0].Snippet)
	}
}

func TestServiceFallsBackWithoutMeili(t *testing.T) {
	st := &fakeArticleStore{articles: []store.Article{
		{ID: "1", Slug: "go-tips", Title: "Go Tips", Summary: "s", Content: "c", Published: true},
	}}
	service := NewService(nil, NewStoreFallback(st))

	response := service.Search(context.Background(), Query{Text: "go"})
	if response.Total != 1 || response.Query != "go" {
		t.Errorf("response = %+v", response)
	}
	if response.Results == nil {
		t.Error("results must never be nil")
	}
}

func TestFallbackRecords(t *testing.T) {
	st := &fakeArticleStore{articles: []store.Article{
		{ID: "1", Slug: "a", Title: "A", Published: true},
		{ID: "2", Slug: "b", Title: "B", Published: false},
	}}
	records, err := NewStoreFallback(st).Records(context.Background())
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if len(records) != 1 || records[0].ID != "1" {
		t.Errorf("records = %+v", records)
	}
}
