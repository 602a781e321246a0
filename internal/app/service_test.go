package app

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"simpleblog/api/internal/auth"
	"simpleblog/api/internal/bluesky"
	"simpleblog/api/internal/config"
	"simpleblog/api/internal/session"
)

type testEnv struct {
	service   *Service
	store     *fakeStore
	sessions  *fakeSessions
	git       *fakeGit
	search    *fakeSearch
	fediverse *fakeFediverse
	bluesky   *fakeBluesky
	media     *fakeMedia
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	hash, err := auth.HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	env := &testEnv{
		store:     newFakeStore(),
		sessions:  newFakeSessions(),
		git:       newFakeGit(),
		search:    newFakeSearch(),
		fediverse: newFakeFediverse(),
		bluesky:   &fakeBluesky{},
		media:     newFakeMedia(),
	}
	cfg := config.Config{
		BaseURL:         "https://blog.example.com",
		TokenSecret:     "test-secret",
		AdminName:       "admin",
		AdminPassHash:   hash,
		AccessTTL:       15 * time.Minute,
		RefreshTTL:      24 * time.Hour,
		DefaultHashtags: []string{"#blog", "#webdev"},
	}
	env.service = New(cfg, Deps{
		Store:     env.store,
		Sessions:  env.sessions,
		Git:       env.git,
		Search:    env.search,
		Fediverse: env.fediverse,
		Media:     env.media,
		NewBluesky: func(bluesky.Credentials) blueskyClient {
			return env.bluesky
		},
	})
	return env
}

func adminSessionFor(t *testing.T, env *testEnv) Session {
	t.Helper()
	sess, err := env.service.Login(context.Background(), "admin", "correct-horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return sess
}

func TestLoginAndSessionRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	sess := adminSessionFor(t, env)
	if sess.Token == "" || sess.RefreshToken == "" {
		t.Fatal("expected token and refresh token")
	}

	parsed, err := env.service.SessionFromToken(sess.Token)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if parsed.UserName != "admin" || parsed.Role != "admin" {
		t.Errorf("unexpected session identity: %+v", parsed)
	}

	if _, err := env.service.Login(context.Background(), "admin", "wrong"); !errors.Is(err, auth.ErrBadCredentials) {
		t.Errorf("expected ErrBadCredentials for wrong password, got %v", err)
	}
	if _, err := env.service.Login(context.Background(), "intruder", "correct-horse"); !errors.Is(err, auth.ErrBadCredentials) {
		t.Errorf("expected ErrBadCredentials for wrong name, got %v", err)
	}
}

func TestRefreshRotatesRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	first := adminSessionFor(t, env)

	second, err := env.service.Refresh(context.Background(), first.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Error("expected a new refresh token after rotation")
	}

	if _, err := env.service.Refresh(context.Background(), first.RefreshToken); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("expected rotated token to be revoked, got %v", err)
	}
}

func TestCreateArticleGeneratesSlugAndSideEffects(t *testing.T) {
	env := newTestEnv(t)
	sess := adminSessionFor(t, env)

	article, err := env.service.CreateArticle(context.Background(), sess, ArticleInput{
		Title:     "Hello, World!",
		Content:   "<p>First post.</p>",
		Hashtags:  "go webdev",
		Published: true,
	})
	if err != nil {
		t.Fatalf("create article: %v", err)
	}
	if article.Slug != "hello-world" {
		t.Errorf("slug = %q, want hello-world", article.Slug)
	}
	if article.Hashtags != "#go #webdev" {
		t.Errorf("hashtags = %q, want normalized tags", article.Hashtags)
	}
	if _, ok := env.git.contents[article.ID]; !ok {
		t.Error("expected article repo to be initialized")
	}
	if !env.search.has(article.ID) {
		t.Error("expected published article to be indexed")
	}
	if announced, ok := env.fediverse.waitForAnnounce(time.Second); !ok || announced.ID != article.ID {
		t.Errorf("expected fediverse announce for %s, got %+v (ok=%v)", article.ID, announced, ok)
	}
}

func TestCreateArticleValidation(t *testing.T) {
	env := newTestEnv(t)
	sess := adminSessionFor(t, env)

	_, err := env.service.CreateArticle(context.Background(), sess, ArticleInput{})
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	if domainErr.Status != http.StatusUnprocessableEntity || domainErr.Code != "VALIDATION_ERROR" {
		t.Errorf("unexpected error: %+v", domainErr)
	}
}

func TestCreateArticleRejectsDuplicateSlug(t *testing.T) {
	env := newTestEnv(t)
	sess := adminSessionFor(t, env)

	input := ArticleInput{Title: "Once", Content: "body", Published: true}
	if _, err := env.service.CreateArticle(context.Background(), sess, input); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := env.service.CreateArticle(context.Background(), sess, input)
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "SLUG_EXISTS" {
		t.Fatalf("expected SLUG_EXISTS, got %v", err)
	}
}

func TestUpdateArticleAnnouncesOnFirstPublishOnly(t *testing.T) {
	env := newTestEnv(t)
	sess := adminSessionFor(t, env)

	draft, err := env.service.CreateArticle(context.Background(), sess, ArticleInput{
		Title:   "Draft",
		Content: "wip",
	})
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	if _, ok := env.fediverse.waitForAnnounce(50 * time.Millisecond); ok {
		t.Fatal("draft creation must not announce")
	}
	if env.search.has(draft.ID) {
		t.Error("draft must not be indexed")
	}

	published, err := env.service.UpdateArticle(context.Background(), sess, draft.Slug, ArticleInput{
		Title:     "Draft",
		Content:   "done",
		Published: true,
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if _, ok := env.fediverse.waitForAnnounce(time.Second); !ok {
		t.Fatal("expected announce on first publish")
	}
	if !env.search.has(published.ID) {
		t.Error("published article must be indexed")
	}

	if _, err := env.service.UpdateArticle(context.Background(), sess, draft.Slug, ArticleInput{
		Title:     "Draft",
		Content:   "edited again",
		Published: true,
	}); err != nil {
		t.Fatalf("second update: %v", err)
	}
	if _, ok := env.fediverse.waitForAnnounce(50 * time.Millisecond); ok {
		t.Error("already-published update must not announce again")
	}
}

func TestDeleteArticleCleansUp(t *testing.T) {
	env := newTestEnv(t)
	sess := adminSessionFor(t, env)

	article, err := env.service.CreateArticle(context.Background(), sess, ArticleInput{
		Title: "Gone Soon", Content: "bye", Published: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := env.service.DeleteArticle(context.Background(), article.Slug); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if env.search.has(article.ID) {
		t.Error("expected article removed from the index")
	}
	if len(env.git.removed) != 1 || env.git.removed[0] != article.ID {
		t.Errorf("expected repo removal for %s, got %v", article.ID, env.git.removed)
	}
	if _, err := env.service.GetArticle(context.Background(), article.Slug, true); err == nil {
		t.Error("expected article to be gone")
	}
}

func TestDraftHiddenFromPublicReads(t *testing.T) {
	env := newTestEnv(t)
	sess := adminSessionFor(t, env)

	draft, err := env.service.CreateArticle(context.Background(), sess, ArticleInput{
		Title: "Secret", Content: "psszt",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = env.service.GetArticle(context.Background(), draft.Slug, false)
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Status != http.StatusNotFound {
		t.Fatalf("expected 404 for public draft read, got %v", err)
	}
	if _, err := env.service.GetArticle(context.Background(), draft.Slug, true); err != nil {
		t.Errorf("admin read of draft failed: %v", err)
	}
}

func TestRecordPageViewValidatesPath(t *testing.T) {
	env := newTestEnv(t)

	if err := env.service.RecordPageView(context.Background(), "/articles/hello", "", "test-agent"); err != nil {
		t.Fatalf("valid path rejected: %v", err)
	}
	err := env.service.RecordPageView(context.Background(), "javascript:alert(1)", "", "")
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Status != http.StatusUnprocessableEntity {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(env.store.pageViews) != 1 {
		t.Errorf("expected one recorded view, got %d", len(env.store.pageViews))
	}
}

func TestAnalyticsSummaryDefaultsToThirtyDays(t *testing.T) {
	env := newTestEnv(t)

	if _, _, err := env.service.AnalyticsSummary(context.Background(), 0); err != nil {
		t.Fatalf("summary: %v", err)
	}
	want := time.Now().UTC().AddDate(0, 0, -30)
	if diff := env.store.summarySince.Sub(want); diff < -time.Minute || diff > time.Minute {
		t.Errorf("since = %v, want about %v", env.store.summarySince, want)
	}
}

func TestCrossPostComposesWithinBudget(t *testing.T) {
	env := newTestEnv(t)
	sess := adminSessionFor(t, env)

	article, err := env.service.CreateArticle(context.Background(), sess, ArticleInput{
		Title:     "Why Byte Offsets Matter for Rich Text",
		Summary:   "Counting runes is not counting bytes.",
		Content:   "long body",
		Hashtags:  "#unicode",
		Published: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := env.service.SetBlueskyConfig(context.Background(), "blog.example.com", "app-pass"); err != nil {
		t.Fatalf("configure bluesky: %v", err)
	}

	post, err := env.service.CrossPostArticle(context.Background(), article.Slug)
	if err != nil {
		t.Fatalf("crosspost: %v", err)
	}
	if post.RemoteURI == "" {
		t.Fatal("expected a post URI")
	}

	if len(env.bluesky.published) != 1 {
		t.Fatalf("expected one publish, got %d", len(env.bluesky.published))
	}
	input := env.bluesky.published[0]
	if utf8.RuneCountInString(input.Text) > 300 {
		t.Errorf("post text exceeds 300 runes: %d", utf8.RuneCountInString(input.Text))
	}
	if !strings.Contains(input.Text, article.Title) {
		t.Error("post text missing the title")
	}
	link := "https://blog.example.com/articles/" + article.Slug
	if !strings.Contains(input.Text, link) {
		t.Errorf("post text missing the article link %s", link)
	}
	if !strings.Contains(input.Text, "#unicode") {
		t.Error("post text missing the article hashtag")
	}
	if len(input.Facets) == 0 {
		t.Error("expected link and tag facets")
	}
	if input.ArticleURL != link || input.Title != article.Title {
		t.Errorf("embed fields wrong: %+v", input)
	}
}

func TestCrossPostIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	sess := adminSessionFor(t, env)

	article, err := env.service.CreateArticle(context.Background(), sess, ArticleInput{
		Title: "Post Once", Content: "body", Published: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := env.service.SetBlueskyConfig(context.Background(), "blog.example.com", "app-pass"); err != nil {
		t.Fatalf("configure: %v", err)
	}

	first, err := env.service.CrossPostArticle(context.Background(), article.Slug)
	if err != nil {
		t.Fatalf("first crosspost: %v", err)
	}
	second, err := env.service.CrossPostArticle(context.Background(), article.Slug)
	if err != nil {
		t.Fatalf("second crosspost: %v", err)
	}
	if first.RemoteURI != second.RemoteURI {
		t.Errorf("idempotent crosspost returned different URIs: %q vs %q", first.RemoteURI, second.RemoteURI)
	}
	if len(env.bluesky.published) != 1 {
		t.Errorf("expected exactly one publish, got %d", len(env.bluesky.published))
	}
}

func TestCrossPostRequiresConfiguredCredentials(t *testing.T) {
	env := newTestEnv(t)
	sess := adminSessionFor(t, env)

	article, err := env.service.CreateArticle(context.Background(), sess, ArticleInput{
		Title: "No Creds", Content: "body", Published: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = env.service.CrossPostArticle(context.Background(), article.Slug)
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "BLUESKY_NOT_CONFIGURED" {
		t.Fatalf("expected BLUESKY_NOT_CONFIGURED, got %v", err)
	}
}

func TestTestBlueskyConnectionMapsAuthFailure(t *testing.T) {
	env := newTestEnv(t)
	if err := env.service.SetBlueskyConfig(context.Background(), "blog.example.com", "bad-pass"); err != nil {
		t.Fatalf("configure: %v", err)
	}
	env.bluesky.authErr = errors.New("401 from upstream")

	err := env.service.TestBlueskyConnection(context.Background())
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Status != http.StatusBadGateway {
		t.Fatalf("expected 502 BLUESKY_AUTH_FAILED, got %v", err)
	}
}

func TestGenerateArticleImageFallsBackToPlaceholder(t *testing.T) {
	env := newTestEnv(t)
	sess := adminSessionFor(t, env)

	article, err := env.service.CreateArticle(context.Background(), sess, ArticleInput{
		Title: "Header Art", Content: "body", Published: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	url, err := env.service.GenerateArticleImage(context.Background(), article.Slug, "")
	if err != nil {
		t.Fatalf("generate image: %v", err)
	}
	if url == "" {
		t.Fatal("expected an image URL")
	}
	stored, err := env.store.GetArticleByID(context.Background(), article.ID)
	if err != nil {
		t.Fatalf("reload article: %v", err)
	}
	if stored.ImageURL != url {
		t.Errorf("article image URL = %q, want %q", stored.ImageURL, url)
	}
	name := "articles/" + article.ID + ".svg"
	if env.media.types[name] != "image/svg+xml" {
		t.Errorf("expected svg placeholder upload under %s, got %v", name, env.media.types)
	}
}

func TestGenerateArticleImageUsesGenerator(t *testing.T) {
	env := newTestEnv(t)
	sess := adminSessionFor(t, env)
	gen := &fakeImageGen{enabled: true, data: []byte("png-bytes"), ctype: "image/png"}
	env.service.deps.ImageGen = gen

	article, err := env.service.CreateArticle(context.Background(), sess, ArticleInput{
		Title: "Generated Art", Content: "body", Published: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := env.service.GenerateArticleImage(context.Background(), article.Slug, ""); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(gen.prompts) != 1 || !strings.Contains(gen.prompts[0], "Generated Art") {
		t.Errorf("expected default prompt mentioning the title, got %v", gen.prompts)
	}
	name := "articles/" + article.ID + ".png"
	if string(env.media.uploads[name]) != "png-bytes" {
		t.Errorf("expected generated png upload under %s", name)
	}
}

func TestExportUnavailableWithoutExporter(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.ExportArticle(context.Background(), "anything", false)
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Status != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 EXPORT_UNAVAILABLE, got %v", err)
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello, World!", "hello-world"},
		{"  Spaces   everywhere  ", "spaces-everywhere"},
		{"Already-Fine", "already-fine"},
		{"100% Go", "100-go"},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
	if got := Slugify("!!!"); !strings.HasPrefix(got, "post") {
		t.Errorf("symbol-only title should fall back to a generated slug, got %q", got)
	}
}
