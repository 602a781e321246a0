package export

import (
	"context"
	"fmt"
	"html/template"

	"simpleblog/api/internal/store"
)

// ArticleStore is the data access the exporter needs.
type ArticleStore interface {
	GetArticleBySlug(ctx context.Context, slug string) (store.Article, error)
	ListRemoteComments(ctx context.Context, articleID string) ([]store.RemoteComment, error)
}

// Service renders articles to PDF.
type Service struct {
	store    ArticleStore
	blogName string
	author   string
}

func NewService(st ArticleStore, blogName, author string) *Service {
	return &Service{store: st, blogName: blogName, author: author}
}

// Request contains parameters for an export operation.
type Request struct {
	Slug            string
	IncludeComments bool
}

// Export renders the article, optionally with its Fediverse comments, and
// converts it to PDF.
func (s *Service) Export(ctx context.Context, req Request) (*Result, error) {
	article, err := s.store.GetArticleBySlug(ctx, req.Slug)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContentUnavailable, err)
	}

	data := TemplateData{
		Title:       article.Title,
		Summary:     article.Summary,
		ContentHTML: template.HTML(article.Content),
		Author:      s.author,
		BlogName:    s.blogName,
		PublishedAt: article.CreatedAt,
		Comments:    []TemplateComment{},
	}

	if req.IncludeComments {
		comments, err := s.store.ListRemoteComments(ctx, article.ID)
		if err != nil {
			return nil, fmt.Errorf("list comments: %w", err)
		}
		for _, comment := range comments {
			data.Comments = append(data.Comments, TemplateComment{
				Author: comment.Actor,
				Body:   comment.Content,
			})
		}
	}

	html, err := RenderArticleHTML(data)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}
	return exportPDF(html, article.Title)
}
