package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"simpleblog/api/internal/activitypub"
	"simpleblog/api/internal/auth"
	"simpleblog/api/internal/bluesky"
	"simpleblog/api/internal/compose"
	"simpleblog/api/internal/config"
	"simpleblog/api/internal/export"
	"simpleblog/api/internal/gitrepo"
	"simpleblog/api/internal/search"
	"simpleblog/api/internal/session"
	"simpleblog/api/internal/store"
	"simpleblog/api/internal/util"
)

type Session struct {
	Token        string
	RefreshToken string
	UserName     string
	Role         string
	JTI          string
	ExpiresAt    time.Time
}

// ArticleInput is the write payload for create and update.
type ArticleInput struct {
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Content   string `json:"content"`
	Hashtags  string `json:"hashtags"`
	Published bool   `json:"published"`
}

type dataStore interface {
	ListArticles(ctx context.Context, publishedOnly bool) ([]store.Article, error)
	GetArticleBySlug(ctx context.Context, slug string) (store.Article, error)
	GetArticleByID(ctx context.Context, id string) (store.Article, error)
	InsertArticle(ctx context.Context, item store.Article) error
	UpdateArticle(ctx context.Context, item store.Article) error
	SetArticleImage(ctx context.Context, articleID, imageURL string) error
	DeleteArticle(ctx context.Context, id string) error
	IncrementArticleLikes(ctx context.Context, slug string) error
	RecordPageView(ctx context.Context, view store.PageView) error
	PageViewSummary(ctx context.Context, since time.Time) ([]store.PathCount, int, error)
	SaveCrossPost(ctx context.Context, post store.CrossPost) error
	GetCrossPost(ctx context.Context, articleID, platform string) (store.CrossPost, error)
	ListRemoteComments(ctx context.Context, articleID string) ([]store.RemoteComment, error)
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	Ping(ctx context.Context) error
}

type sessionStore interface {
	SaveRefreshSession(ctx context.Context, tokenHash, userName, role string, expiresAt time.Time) error
	LookupRefreshSession(ctx context.Context, tokenHash string) (session.TokenData, error)
	RevokeRefreshSession(ctx context.Context, tokenHash string) error
	Ping(ctx context.Context) error
}

type gitService interface {
	EnsureArticleRepo(articleID string, initial gitrepo.Content, author string) error
	CommitContent(articleID string, content gitrepo.Content, author, message string) (store.CommitInfo, error)
	GetContentByHash(articleID, hash string) (gitrepo.Content, error)
	History(articleID string, limit int) ([]store.CommitInfo, error)
	RemoveArticleRepo(articleID string) error
}

type searchService interface {
	Search(ctx context.Context, q search.Query) search.Response
	IndexArticle(record search.ArticleRecord)
	DeleteArticle(id string)
	ReindexAll(ctx context.Context)
}

type fediverseService interface {
	Webfinger(resource string) (activitypub.WebfingerResponse, error)
	Actor() (activitypub.Actor, error)
	Outbox(ctx context.Context) (activitypub.OrderedCollection, error)
	Followers(ctx context.Context) (activitypub.OrderedCollection, error)
	HandleInbox(ctx context.Context, payload []byte) error
	Announce(ctx context.Context, article store.Article) error
}

type exporter interface {
	Export(ctx context.Context, req export.Request) (*export.Result, error)
}

type mediaStore interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

type imageGenerator interface {
	Enabled() bool
	Generate(ctx context.Context, prompt string) ([]byte, string, error)
}

type blueskyClient interface {
	Authenticate(ctx context.Context) error
	PublishPost(ctx context.Context, input bluesky.PostInput) (string, error)
	GetEngagement(ctx context.Context, postURI string) (bluesky.Engagement, error)
	GetReplies(ctx context.Context, postURI string) ([]bluesky.Reply, error)
}

// Deps bundles the collaborators the service is wired with. Media, ImageGen,
// Exporter and Fediverse may be nil when not configured; the corresponding
// operations fail with a service-unavailable error.
type Deps struct {
	Store      dataStore
	Sessions   sessionStore
	Git        gitService
	Search     searchService
	Fediverse  fediverseService
	Exporter   exporter
	Media      mediaStore
	ImageGen   imageGenerator
	NewBluesky func(creds bluesky.Credentials) blueskyClient
}

type Service struct {
	cfg  config.Config
	deps Deps
}

func New(cfg config.Config, deps Deps) *Service {
	if deps.NewBluesky == nil {
		host := cfg.BlueskyHost
		deps.NewBluesky = func(creds bluesky.Credentials) blueskyClient {
			return bluesky.NewClient(host, creds)
		}
	}
	return &Service{cfg: cfg, deps: deps}
}

/// Bootstrap performs startup work: pushing the article corpus into the
// search index when Meilisearch is up.
func (s *Service) Bootstrap(ctx context.Context) {
	if s.deps.Search != nil {
		s.deps.Search.ReindexAll(ctx)
	}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.deps.Store.Ping(ctx)
}

func (s *Service) PingSessions(ctx context.Context) error {
	return s.deps.Sessions.Ping(ctx)
}

// Login authenticates the admin account against the configured bcrypt hash.
func (s *Service) Login(ctx context.Context, name, password string) (Session, error) {
	if strings.TrimSpace(name) != s.cfg.AdminName {
		return Session{}, auth.ErrBadCredentials
	}
	if err := auth.VerifyPassword(s.cfg.AdminPassHash, password); err != nil {
		return Session{}, auth.ErrBadCredentials
	}
	return s.issueSession(ctx, s.cfg.AdminName, "admin")
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	tokenHash := auth.HashToken(refreshToken)
	data, err := s.deps.Sessions.LookupRefreshSession(ctx, tokenHash)
	if err != nil {
		return Session{}, err
	}
	if err := s.deps.Sessions.RevokeRefreshSession(ctx, tokenHash); err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, data.UserName, data.Role)
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.deps.Sessions.RevokeRefreshSession(ctx, auth.HashToken(refreshToken))
}

func (s *Service) SessionFromToken(token string) (Session, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.TokenSecret), token)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Token:     token,
		UserName:  claims.Name,
		Role:      claims.Role,
		JTI:       claims.JTI,
		ExpiresAt: time.Unix(claims.Exp, 0),
	}, nil
}

func (s *Service) issueSession(ctx context.Context, userName, role string) (Session, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.AccessTTL)
	jti := util.NewID("jti")

	token, err := auth.IssueToken([]byte(s.cfg.TokenSecret), auth.Claims{
		Sub:  userName,
		Name: userName,
		Role: role,
		JTI:  jti,
		Exp:  expiresAt.Unix(),
	})
	if err != nil {
		return Session{}, err
	}

	refresh := util.NewID("rft") + util.NewID("")
	refreshExpires := now.Add(s.cfg.RefreshTTL)
	if err := s.deps.Sessions.SaveRefreshSession(ctx, auth.HashToken(refresh), userName, role, refreshExpires); err != nil {
		return Session{}, err
	}

	return Session{
		Token:        token,
		RefreshToken: refresh,
		UserName:     userName,
		Role:         role,
		JTI:          jti,
		ExpiresAt:    expiresAt,
	}, nil
}

// ListArticles returns the article listing; drafts only for the admin.
func (s *Service) ListArticles(ctx context.Context, includeDrafts bool) ([]store.Article, error) {
	return s.deps.Store.ListArticles(ctx, !includeDrafts)
}

// GetArticle loads one article by slug. Drafts are hidden unless
// includeDrafts is set.
func (s *Service) GetArticle(ctx context.Context, slug string, includeDrafts bool) (store.Article, error) {
	article, err := s.deps.Store.GetArticleBySlug(ctx, slug)
	if err != nil {
		return store.Article{}, err
	}
	if !article.Published && !includeDrafts {
		return store.Article{}, domainError(http.StatusNotFound, "NOT_FOUND", "Article not found", nil)
	}
	return article, nil
}

func (s *Service) ArticleComments(ctx context.Context, slug string) ([]store.RemoteComment, error) {
	article, err := s.GetArticle(ctx, slug, false)
	if err != nil {
		return nil, err
	}
	return s.deps.Store.ListRemoteComments(ctx, article.ID)
}

func (s *Service) CreateArticle(ctx context.Context, session Session, input ArticleInput) (store.Article, error) {
	if err := validateArticleInput(input); err != nil {
		return store.Article{}, err
	}

	slug := input.Slug
	if slug == "" {
		slug = Slugify(input.Title)
	}
	if _, err := s.deps.Store.GetArticleBySlug(ctx, slug); err == nil {
		return store.Article{}, domainError(http.StatusConflict, "SLUG_EXISTS", "An article with this slug already exists", nil)
	}

	now := time.Now().UTC()
	article := store.Article{
		ID:        util.NewID("art"),
		Slug:      slug,
		Title:     strings.TrimSpace(input.Title),
		Summary:   strings.TrimSpace(input.Summary),
		Content:   input.Content,
		Hashtags:  normalizeHashtagString(input.Hashtags),
		Published: input.Published,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.deps.Store.InsertArticle(ctx, article); err != nil {
		return store.Article{}, fmt.Errorf("insert article: %w", err)
	}

	if err := s.deps.Git.EnsureArticleRepo(article.ID, gitContent(article), session.UserName); err != nil {
		return store.Article{}, fmt.Errorf("init article repo: %w", err)
	}

	s.afterPublishChange(ctx, article, false)
	return article, nil
}

func (s *Service) UpdateArticle(ctx context.Context, session Session, slug string, input ArticleInput) (store.Article, error) {
	if err := validateArticleInput(input); err != nil {
		return store.Article{}, err
	}

	article, err := s.deps.Store.GetArticleBySlug(ctx, slug)
	if err != nil {
		return store.Article{}, err
	}

	wasPublished := article.Published
	article.Title = strings.TrimSpace(input.Title)
	article.Summary = strings.TrimSpace(input.Summary)
	article.Content = input.Content
	article.Hashtags = normalizeHashtagString(input.Hashtags)
	article.Published = input.Published
	article.UpdatedAt = time.Now().UTC()

	if err := s.deps.Store.UpdateArticle(ctx, article); err != nil {
		return store.Article{}, fmt.Errorf("update article: %w", err)
	}

	if _, err := s.deps.Git.CommitContent(article.ID, gitContent(article), session.UserName, "Update article"); err != nil {
		return store.Article{}, fmt.Errorf("commit article revision: %w", err)
	}

	s.afterPublishChange(ctx, article, wasPublished)
	return article, nil
}

// afterPublishChange keeps the search index in sync and fans a fresh
// publication out to the Fediverse.
func (s *Service) afterPublishChange(ctx context.Context, article store.Article, wasPublished bool) {
	if s.deps.Search != nil {
		if article.Published {
			s.deps.Search.IndexArticle(search.ArticleRecord{
				ID:      article.ID,
				Slug:    article.Slug,
				Title:   article.Title,
				Summary: article.Summary,
				Content: article.Content,
			})
		} else {
			s.deps.Search.DeleteArticle(article.ID)
		}
	}
	if s.deps.Fediverse != nil && article.Published && !wasPublished {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			_ = s.deps.Fediverse.Announce(ctx, article)
		}()
	}
}

func (s *Service) DeleteArticle(ctx context.Context, slug string) error {
	article, err := s.deps.Store.GetArticleBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if err := s.deps.Store.DeleteArticle(ctx, article.ID); err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	if s.deps.Search != nil {
		s.deps.Search.DeleteArticle(article.ID)
	}
	if err := s.deps.Git.RemoveArticleRepo(article.ID); err != nil {
		return fmt.Errorf("remove article repo: %w", err)
	}
	return nil
}

func (s *Service) LikeArticle(ctx context.Context, slug string) error {
	if _, err := s.GetArticle(ctx, slug, false); err != nil {
		return err
	}
	return s.deps.Store.IncrementArticleLikes(ctx, slug)
}

func (s *Service) RecordPageView(ctx context.Context, path, referrer, userAgent string) error {
	path = strings.TrimSpace(path)
	if path == "" || !strings.HasPrefix(path, "/") {
		return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "path must start with /", nil)
	}
	return s.deps.Store.RecordPageView(ctx, store.PageView{
		Path:      path,
		Referrer:  referrer,
		UserAgent: userAgent,
		ViewedAt:  time.Now().UTC(),
	})
}

// AnalyticsSummary returns per-path counts over the trailing window.
func (s *Service) AnalyticsSummary(ctx context.Context, days int) ([]store.PathCount, int, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -days)
	return s.deps.Store.PageViewSummary(ctx, since)
}

func (s *Service) Search(ctx context.Context, q search.Query) search.Response {
	return s.deps.Search.Search(ctx, q)
}

// ArticleHistory lists the revision log of an article.
func (s *Service) ArticleHistory(ctx context.Context, slug string, limit int) ([]store.CommitInfo, error) {
	article, err := s.deps.Store.GetArticleBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.deps.Git.History(article.ID, limit)
}

// ArticleRevision loads article content at a specific commit.
func (s *Service) ArticleRevision(ctx context.Context, slug, hash string) (gitrepo.Content, error) {
	article, err := s.deps.Store.GetArticleBySlug(ctx, slug)
	if err != nil {
		return gitrepo.Content{}, err
	}
	return s.deps.Git.GetContentByHash(article.ID, hash)
}

func (s *Service) ExportArticle(ctx context.Context, slug string, includeComments bool) (*export.Result, error) {
	if s.deps.Exporter == nil {
		return nil, domainError(http.StatusServiceUnavailable, "EXPORT_UNAVAILABLE", "Export is not configured", nil)
	}
	return s.deps.Exporter.Export(ctx, export.Request{Slug: slug, IncludeComments: includeComments})
}

func gitContent(article store.Article) gitrepo.Content {
	return gitrepo.Content{
		Title:    article.Title,
		Summary:  article.Summary,
		Content:  article.Content,
		Hashtags: article.Hashtags,
	}
}

func validateArticleInput(input ArticleInput) error {
	details := map[string]string{}
	if strings.TrimSpace(input.Title) == "" {
		details["title"] = "required"
	}
	if strings.TrimSpace(input.Content) == "" {
		details["content"] = "required"
	}
	if len(details) > 0 {
		return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid article", details)
	}
	return nil
}

// Slugify reduces a title to a URL-safe slug.
func Slugify(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = util.NewID("post")
	}
	return slug
}

// normalizeHashtagString canonicalizes a space-separated tag list so every
// tag carries its "#".
func normalizeHashtagString(raw string) string {
	fields := strings.Fields(raw)
	for i, field := range fields {
		if !strings.HasPrefix(field, "#") {
			fields[i] = "#" + field
		}
	}
	return strings.Join(fields, " ")
}

// composeFor builds the social post body for an article.
func (s *Service) composeFor(article store.Article) compose.Post {
	link := s.cfg.BaseURL + "/articles/" + article.Slug
	return compose.Compose(article.Title, link, s.cfg.DefaultHashtags, strings.Fields(article.Hashtags), compose.DefaultBudget)
}
