package app

import (
	"embed"
	"html/template"
	"log"
	"net/http"

	"simpleblog/api/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const (
	blogName = "SimpleBlog"
	tagline  = "notes on code and everything around it"
)

type indexPageData struct {
	BlogName string
	Tagline  string
	Articles []store.Article
}

type articlePageData struct {
	BlogName    string
	Article     store.Article
	ContentHTML template.HTML
	Comments    []store.RemoteComment
}

func (s *HTTPServer) handleIndexPage(w http.ResponseWriter, r *http.Request) {
	articles, err := s.service.ListArticles(r.Context(), false)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	renderPage(w, "index.html", indexPageData{
		BlogName: blogName,
		Tagline:  tagline,
		Articles: articles,
	})
}

func (s *HTTPServer) handleArticlePage(w http.ResponseWriter, r *http.Request, slug string) {
	article, err := s.service.GetArticle(r.Context(), slug, false)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	comments, err := s.service.ArticleComments(r.Context(), slug)
	if err != nil {
		comments = nil
	}
	renderPage(w, "article.html", articlePageData{
		BlogName: blogName,
		Article:  article,
		// Article content is authored by the admin and stored as HTML.
		ContentHTML: template.HTML(article.Content),
		Comments:    comments,
	})
}

func renderPage(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("pages: render %s: %v", name, err)
	}
}
