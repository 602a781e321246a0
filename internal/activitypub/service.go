// Package activitypub makes the blog a small Fediverse server: one fixed
// actor ("blog"), an outbox of published articles, and an inbox accepting
// follows, likes and replies.
package activitypub

import (
	"bytes"
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"simpleblog/api/internal/store"
	"simpleblog/api/internal/util"
)

const (
	actorUsername = "blog"
	outboxLimit   = 20
	excerptRunes  = 500
)

const contentType = "application/activity+json"

// ErrUnknownResource reports a webfinger lookup for an account this server
// does not host.
var ErrUnknownResource = errors.New("unknown resource")

type Store interface {
	ListArticles(ctx context.Context, publishedOnly bool) ([]store.Article, error)
	GetArticleBySlug(ctx context.Context, slug string) (store.Article, error)
	IncrementArticleLikes(ctx context.Context, slug string) error
	UpsertFollower(ctx context.Context, follower store.Follower) error
	RemoveFollower(ctx context.Context, actorID string) error
	ListFollowers(ctx context.Context) ([]store.Follower, error)
	InsertRemoteComment(ctx context.Context, comment store.RemoteComment) error
}

type Service struct {
	baseURL string
	name    string
	summary string
	store   Store
	key     *rsa.PrivateKey
	http    *http.Client
	now     func() time.Time
}

func NewService(baseURL, name, summary string, st Store, key *rsa.PrivateKey) *Service {
	return &Service{
		baseURL: strings.TrimRight(baseURL, "/"),
		name:    name,
		summary: summary,
		store:   st,
		key:     key,
		http:    &http.Client{Timeout: 15 * time.Second},
		now:     time.Now,
	}
}

func (s *Service) actorID() string {
	return s.baseURL + "/users/" + actorUsername
}

// Webfinger resolves acct:blog@<host> to the actor document URL.
func (s *Service) Webfinger(resource string) (WebfingerResponse, error) {
	if !strings.HasPrefix(resource, "acct:"+actorUsername+"@") {
		return WebfingerResponse{}, ErrUnknownResource
	}
	return WebfingerResponse{
		Subject: resource,
		Links: []WebfingerLink{{
			Rel:  "self",
			Type: contentType,
			Href: s.actorID(),
		}},
	}, nil
}

// Actor returns the blog's actor document.
func (s *Service) Actor() (Actor, error) {
	pubPEM, err := PublicKeyPEM(s.key)
	if err != nil {
		return Actor{}, err
	}
	id := s.actorID()
	return Actor{
		Context:           activityContext,
		Type:              "Person",
		ID:                id,
		Name:              s.name,
		PreferredUsername: actorUsername,
		Summary:           s.summary,
		Inbox:             id + "/inbox",
		Outbox:            id + "/outbox",
		Followers:         id + "/followers",
		Following:         id + "/following",
		PublicKey: PublicKey{
			ID:           id + "#main-key",
			Owner:        id,
			PublicKeyPem: pubPEM,
		},
	}, nil
}

// Outbox lists the most recent published articles as Create activities.
func (s *Service) Outbox(ctx context.Context) (OrderedCollection, error) {
	articles, err := s.store.ListArticles(ctx, true)
	if err != nil {
		return OrderedCollection{}, fmt.Errorf("list articles: %w", err)
	}
	if len(articles) > outboxLimit {
		articles = articles[:outboxLimit]
	}

	items := make([]any, 0, len(articles))
	for _, article := range articles {
		items = append(items, s.createActivity(article))
	}
	return OrderedCollection{
		Context:      activityContext,
		Type:         "OrderedCollection",
		TotalItems:   len(items),
		OrderedItems: items,
	}, nil
}

// Followers lists follower actor IDs.
func (s *Service) Followers(ctx context.Context) (OrderedCollection, error) {
	followers, err := s.store.ListFollowers(ctx)
	if err != nil {
		return OrderedCollection{}, fmt.Errorf("list followers: %w", err)
	}
	items := make([]any, 0, len(followers))
	for _, follower := range followers {
		items = append(items, follower.ActorID)
	}
	return OrderedCollection{
		Context:      activityContext,
		Type:         "OrderedCollection",
		TotalItems:   len(items),
		OrderedItems: items,
	}, nil
}

// HandleInbox processes one incoming activity. Unsupported types are
// accepted and dropped, as inboxes conventionally do.
func (s *Service) HandleInbox(ctx context.Context, payload []byte) error {
	var activity inboundActivity
	if err := json.Unmarshal(payload, &activity); err != nil {
		return fmt.Errorf("decode activity: %w", err)
	}

	switch activity.Type {
	case "Follow":
		return s.handleFollow(ctx, activity)
	case "Undo":
		return s.handleUndo(ctx, activity)
	case "Like":
		return s.handleLike(ctx, activity)
	case "Create":
		return s.handleCreate(ctx, activity)
	default:
		return nil
	}
}

func (s *Service) handleFollow(ctx context.Context, activity inboundActivity) error {
	if activity.Actor == "" {
		return fmt.Errorf("follow without actor")
	}

	remote, err := s.fetchActor(ctx, activity.Actor)
	if err != nil {
		return fmt.Errorf("resolve follower %s: %w", activity.Actor, err)
	}
	if err := s.store.UpsertFollower(ctx, store.Follower{
		ActorID:   activity.Actor,
		Inbox:     remote.Inbox,
		CreatedAt: s.now().UTC(),
	}); err != nil {
		return fmt.Errorf("store follower: %w", err)
	}

	accept := Activity{
		Context: activityContext,
		Type:    "Accept",
		ID:      s.baseURL + "/activities/" + util.NewID("acc"),
		Actor:   s.actorID(),
		Object:  json.RawMessage(mustMarshal(activity)),
	}
	if err := s.deliver(ctx, remote.Inbox, accept); err != nil {
		// The follow is recorded either way; the peer will retry.
		log.Printf("activitypub: accept delivery to %s failed: %v", remote.Inbox, err)
	}
	return nil
}

func (s *Service) handleUndo(ctx context.Context, activity inboundActivity) error {
	var inner inboundActivity
	if err := json.Unmarshal(activity.Object, &inner); err != nil {
		return nil
	}
	if inner.Type == "Follow" && activity.Actor != "" {
		return s.store.RemoveFollower(ctx, activity.Actor)
	}
	return nil
}

func (s *Service) handleLike(ctx context.Context, activity inboundActivity) error {
	var objectURL string
	if err := json.Unmarshal(activity.Object, &objectURL); err != nil {
		return nil
	}
	slug := slugFromURL(objectURL)
	if slug == "" {
		return nil
	}
	return s.store.IncrementArticleLikes(ctx, slug)
}

func (s *Service) handleCreate(ctx context.Context, activity inboundActivity) error {
	var note inboundNote
	if err := json.Unmarshal(activity.Object, &note); err != nil || note.Type != "Note" {
		return nil
	}
	slug := slugFromURL(note.InReplyTo)
	if slug == "" {
		return nil
	}
	article, err := s.store.GetArticleBySlug(ctx, slug)
	if err != nil {
		return fmt.Errorf("resolve reply target %q: %w", slug, err)
	}

	actor := note.AttributedTo
	if actor == "" {
		actor = activity.Actor
	}
	return s.store.InsertRemoteComment(ctx, store.RemoteComment{
		ID:        util.NewID("cmt"),
		ArticleID: article.ID,
		Actor:     actor,
		Content:   note.Content,
		RemoteURI: note.ID,
		CreatedAt: s.now().UTC(),
	})
}

// Announce fans a published article out to every follower's inbox. Delivery
// is best effort per follower; a dead inbox must not block the others.
func (s *Service) Announce(ctx context.Context, article store.Article) error {
	followers, err := s.store.ListFollowers(ctx)
	if err != nil {
		return fmt.Errorf("list followers: %w", err)
	}

	activity := s.createActivity(article)
	for _, follower := range followers {
		if follower.Inbox == "" {
			continue
		}
		if err := s.deliver(ctx, follower.Inbox, activity); err != nil {
			log.Printf("activitypub: delivery to %s failed: %v", follower.Inbox, err)
		}
	}
	return nil
}

func (s *Service) createActivity(article store.Article) Activity {
	articleURL := s.baseURL + "/articles/" + article.Slug
	published := article.CreatedAt.UTC().Format(time.RFC3339)
	return Activity{
		Context:   activityContext,
		Type:      "Create",
		ID:        s.baseURL + "/activities/" + article.ID,
		Actor:     s.actorID(),
		Published: published,
		Object: ArticleObject{
			Type:         "Article",
			ID:           articleURL,
			Name:         article.Title,
			Content:      excerpt(article.Content, excerptRunes),
			URL:          articleURL,
			AttributedTo: s.actorID(),
			Published:    published,
		},
	}
}

func (s *Service) fetchActor(ctx context.Context, id string) (remoteActor, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, id, nil)
	if err != nil {
		return remoteActor{}, err
	}
	req.Header.Set("Accept", contentType)

	resp, err := s.http.Do(req)
	if err != nil {
		return remoteActor{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return remoteActor{}, fmt.Errorf("actor fetch status %d", resp.StatusCode)
	}

	var actor remoteActor
	if err := json.NewDecoder(resp.Body).Decode(&actor); err != nil {
		return remoteActor{}, fmt.Errorf("decode actor: %w", err)
	}
	if actor.Inbox == "" {
		return remoteActor{}, fmt.Errorf("actor %s has no inbox", id)
	}
	return actor, nil
}

// deliver POSTs a signed activity to a remote inbox using the cavage HTTP
// signature scheme Mastodon and friends verify.
func (s *Service) deliver(ctx context.Context, inbox string, activity any) error {
	payload, err := json.Marshal(activity)
	if err != nil {
		return fmt.Errorf("marshal activity: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, inbox, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if err := s.sign(req, payload); err != nil {
		return fmt.Errorf("sign request: %w", err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("inbox status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}

func (s *Service) sign(req *http.Request, payload []byte) error {
	digest := sha256.Sum256(payload)
	req.Header.Set("Digest", "SHA-256="+base64.StdEncoding.EncodeToString(digest[:]))
	req.Header.Set("Date", s.now().UTC().Format(http.TimeFormat))
	req.Header.Set("Host", req.URL.Host)

	target := strings.ToLower(req.Method) + " " + req.URL.RequestURI()
	signed := fmt.Sprintf("(request-target): %s\nhost: %s\ndate: %s\ndigest: %s",
		target, req.Header.Get("Host"), req.Header.Get("Date"), req.Header.Get("Digest"))

	hashed := sha256.Sum256([]byte(signed))
	signature, err := rsa.SignPKCS1v15(rand.Reader, s.key, crypto.SHA256, hashed[:])
	if err != nil {
		return err
	}

	req.Header.Set("Signature", fmt.Sprintf(
		`keyId="%s#main-key",algorithm="rsa-sha256",headers="(request-target) host date digest",signature="%s"`,
		s.actorID(), base64.StdEncoding.EncodeToString(signature)))
	return nil
}

// slugFromURL extracts the article slug from a local article URL. Anything
// that is not an /articles/ path yields "".
func slugFromURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(parts) != 2 || parts[0] != "articles" {
		return ""
	}
	return parts[1]
}

func excerpt(content string, limit int) string {
	if utf8.RuneCountInString(content) <= limit {
		return content
	}
	count := 0
	for i := range content {
		if count == limit {
			return content[:i] + "..."
		}
		count++
	}
	return content
}

func mustMarshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
