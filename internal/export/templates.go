package export

import (
	"bytes"
	"html/template"
	"time"
)

var articleTemplate = template.Must(template.New("article").Parse(articleTemplateText))

// TemplateData holds data for article template rendering.
type TemplateData struct {
	Title       string
	Summary     string
	ContentHTML template.HTML
	Author      string
	BlogName    string
	PublishedAt time.Time
	Comments    []TemplateComment
}

// TemplateComment holds one remote comment for the appendix.
type TemplateComment struct {
	Author string
	Body   string
}

// RenderArticleHTML renders the article template with provided data.
func RenderArticleHTML(data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := articleTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const articleTemplateText = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <style>
    body { font-family: Georgia, serif; line-height: 1.6; max-width: 800px; margin: 2rem auto; }
    h1 { border-bottom: 2px solid #333; padding-bottom: 0.5rem; }
    .meta { color: #666; font-size: 0.9em; margin-bottom: 2rem; }
    .summary { font-style: italic; color: #444; }
    .comment { background: #f5f5f5; padding: 1rem; margin: 1rem 0; border-left: 3px solid #333; }
    .comment .author { font-weight: bold; }
  </style>
</head>
<body>
  <h1>{{.Title}}</h1>
  {{if .Summary}}<p class="summary">{{.Summary}}</p>{{end}}
  <div class="meta">{{.BlogName}} | {{.Author}} | {{.PublishedAt.Format "Jan 2, 2006"}}</div>
  <div>{{.ContentHTML}}</div>
  {{if .Comments}}
  <h2>Comments</h2>
  {{range .Comments}}<div class="comment"><span class="author">{{.Author}}</span><p>{{.Body}}</p></div>{{end}}
  {{end}}
</body>
</html>`
