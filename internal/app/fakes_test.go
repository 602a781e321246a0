package app

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"simpleblog/api/internal/activitypub"
	"simpleblog/api/internal/bluesky"
	"simpleblog/api/internal/export"
	"simpleblog/api/internal/gitrepo"
	"simpleblog/api/internal/search"
	"simpleblog/api/internal/session"
	"simpleblog/api/internal/store"
)

type fakeStore struct {
	mu             sync.Mutex
	articles       map[string]store.Article
	settings       map[string]string
	crossPosts     map[string]store.CrossPost
	remoteComments map[string][]store.RemoteComment
	pageViews      []store.PageView
	summarySince   time.Time
	summaryPaths   []store.PathCount
	summaryTotal   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		articles:       map[string]store.Article{},
		settings:       map[string]string{},
		crossPosts:     map[string]store.CrossPost{},
		remoteComments: map[string][]store.RemoteComment{},
	}
}

func (f *fakeStore) ListArticles(_ context.Context, publishedOnly bool) ([]store.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.Article
	for _, a := range f.articles {
		if publishedOnly && !a.Published {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeStore) GetArticleBySlug(_ context.Context, slug string) (store.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.articles {
		if a.Slug == slug {
			return a, nil
		}
	}
	return store.Article{}, sql.ErrNoRows
}

func (f *fakeStore) GetArticleByID(_ context.Context, id string) (store.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.articles[id]
	if !ok {
		return store.Article{}, sql.ErrNoRows
	}
	return a, nil
}

func (f *fakeStore) InsertArticle(_ context.Context, item store.Article) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.articles[item.ID] = item
	return nil
}

func (f *fakeStore) UpdateArticle(_ context.Context, item store.Article) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.articles[item.ID]; !ok {
		return sql.ErrNoRows
	}
	f.articles[item.ID] = item
	return nil
}

func (f *fakeStore) SetArticleImage(_ context.Context, articleID, imageURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.articles[articleID]
	if !ok {
		return sql.ErrNoRows
	}
	a.ImageURL = imageURL
	f.articles[articleID] = a
	return nil
}

func (f *fakeStore) DeleteArticle(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.articles, id)
	return nil
}

func (f *fakeStore) IncrementArticleLikes(_ context.Context, slug string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, a := range f.articles {
		if a.Slug == slug {
			a.Likes++
			f.articles[id] = a
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeStore) RecordPageView(_ context.Context, view store.PageView) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pageViews = append(f.pageViews, view)
	return nil
}

func (f *fakeStore) PageViewSummary(_ context.Context, since time.Time) ([]store.PathCount, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summarySince = since
	return f.summaryPaths, f.summaryTotal, nil
}

func (f *fakeStore) SaveCrossPost(_ context.Context, post store.CrossPost) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.crossPosts[post.ArticleID+"/"+post.Platform] = post
	return nil
}

func (f *fakeStore) GetCrossPost(_ context.Context, articleID, platform string) (store.CrossPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	post, ok := f.crossPosts[articleID+"/"+platform]
	if !ok {
		return store.CrossPost{}, sql.ErrNoRows
	}
	return post, nil
}

func (f *fakeStore) ListRemoteComments(_ context.Context, articleID string) ([]store.RemoteComment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.remoteComments[articleID], nil
}

func (f *fakeStore) GetSetting(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settings[key], nil
}

func (f *fakeStore) SetSetting(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings[key] = value
	return nil
}

func (f *fakeStore) Ping(context.Context) error { return nil }

type fakeSessions struct {
	mu       sync.Mutex
	sessions map[string]session.TokenData
	pingErr  error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: map[string]session.TokenData{}}
}

func (f *fakeSessions) SaveRefreshSession(_ context.Context, tokenHash, userName, role string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[tokenHash] = session.TokenData{UserName: userName, Role: role, CreatedAt: time.Now()}
	return nil
}

func (f *fakeSessions) LookupRefreshSession(_ context.Context, tokenHash string) (session.TokenData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.sessions[tokenHash]
	if !ok {
		return session.TokenData{}, session.ErrNotFound
	}
	return data, nil
}

func (f *fakeSessions) RevokeRefreshSession(_ context.Context, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, tokenHash)
	return nil
}

func (f *fakeSessions) Ping(context.Context) error { return f.pingErr }

type fakeGit struct {
	mu       sync.Mutex
	contents map[string]gitrepo.Content
	commits  map[string][]store.CommitInfo
	removed  []string
}

func newFakeGit() *fakeGit {
	return &fakeGit{
		contents: map[string]gitrepo.Content{},
		commits:  map[string][]store.CommitInfo{},
	}
}

func (f *fakeGit) EnsureArticleRepo(articleID string, initial gitrepo.Content, author string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.contents[articleID]; ok {
		return nil
	}
	f.contents[articleID] = initial
	f.commits[articleID] = []store.CommitInfo{{Hash: "init", Message: "Create article", Author: author}}
	return nil
}

func (f *fakeGit) CommitContent(articleID string, content gitrepo.Content, author, message string) (store.CommitInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contents[articleID] = content
	info := store.CommitInfo{Hash: "h", Message: message, Author: author, CreatedAt: time.Now()}
	f.commits[articleID] = append([]store.CommitInfo{info}, f.commits[articleID]...)
	return info, nil
}

func (f *fakeGit) GetContentByHash(articleID, _ string) (gitrepo.Content, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.contents[articleID], nil
}

func (f *fakeGit) History(articleID string, limit int) ([]store.CommitInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	history := f.commits[articleID]
	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	return history, nil
}

func (f *fakeGit) RemoveArticleRepo(articleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, articleID)
	return nil
}

type fakeSearch struct {
	mu       sync.Mutex
	indexed  map[string]search.ArticleRecord
	response search.Response
}

func newFakeSearch() *fakeSearch {
	return &fakeSearch{indexed: map[string]search.ArticleRecord{}}
}

func (f *fakeSearch) Search(context.Context, search.Query) search.Response {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.response
}

func (f *fakeSearch) IndexArticle(record search.ArticleRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed[record.ID] = record
}

func (f *fakeSearch) DeleteArticle(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.indexed, id)
}

func (f *fakeSearch) ReindexAll(context.Context) {}

func (f *fakeSearch) has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.indexed[id]
	return ok
}

type fakeFediverse struct {
	announced chan store.Article
	webfinger activitypub.WebfingerResponse
}

func newFakeFediverse() *fakeFediverse {
	return &fakeFediverse{
		announced: make(chan store.Article, 8),
		webfinger: activitypub.WebfingerResponse{Subject: "acct:blog@example.com"},
	}
}

func (f *fakeFediverse) Webfinger(string) (activitypub.WebfingerResponse, error) {
	return f.webfinger, nil
}

func (f *fakeFediverse) Actor() (activitypub.Actor, error) {
	return activitypub.Actor{ID: "https://blog.example.com/users/blog", Type: "Person"}, nil
}

func (f *fakeFediverse) Outbox(context.Context) (activitypub.OrderedCollection, error) {
	return activitypub.OrderedCollection{Type: "OrderedCollection"}, nil
}

func (f *fakeFediverse) Followers(context.Context) (activitypub.OrderedCollection, error) {
	return activitypub.OrderedCollection{Type: "OrderedCollection"}, nil
}

func (f *fakeFediverse) HandleInbox(context.Context, []byte) error { return nil }

func (f *fakeFediverse) Announce(_ context.Context, article store.Article) error {
	f.announced <- article
	return nil
}

func (f *fakeFediverse) waitForAnnounce(timeout time.Duration) (store.Article, bool) {
	select {
	case article := <-f.announced:
		return article, true
	case <-time.After(timeout):
		return store.Article{}, false
	}
}

type fakeBluesky struct {
	mu         sync.Mutex
	authErr    error
	publishErr error
	published  []bluesky.PostInput
	engagement bluesky.Engagement
	replies    []bluesky.Reply
}

func (f *fakeBluesky) Authenticate(context.Context) error { return f.authErr }

func (f *fakeBluesky) PublishPost(_ context.Context, input bluesky.PostInput) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return "", f.publishErr
	}
	f.published = append(f.published, input)
	return "at://did:plc:abc/app.bsky.feed.post/xyz", nil
}

func (f *fakeBluesky) GetEngagement(context.Context, string) (bluesky.Engagement, error) {
	return f.engagement, nil
}

func (f *fakeBluesky) GetReplies(context.Context, string) ([]bluesky.Reply, error) {
	return f.replies, nil
}

type fakeMedia struct {
	mu      sync.Mutex
	uploads map[string][]byte
	types   map[string]string
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{uploads: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeMedia) Upload(_ context.Context, name string, data []byte, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads[name] = data
	f.types[name] = contentType
	return "https://media.example.com/" + name, nil
}

type fakeImageGen struct {
	enabled bool
	data    []byte
	ctype   string
	err     error
	prompts []string
}

func (f *fakeImageGen) Enabled() bool { return f.enabled }

func (f *fakeImageGen) Generate(_ context.Context, prompt string) ([]byte, string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return nil, "", f.err
	}
	return f.data, f.ctype, nil
}

type fakeExporter struct {
	result *export.Result
	err    error
}

func (f *fakeExporter) Export(context.Context, export.Request) (*export.Result, error) {
	return f.result, f.err
}
