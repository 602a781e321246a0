// Package bluesky is a minimal XRPC client for cross-posting articles and
// reading back engagement. Only the endpoints the blog needs are covered.
package bluesky

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Credentials identify the blog's Bluesky account. The app password is the
// per-application secret, never the account password.
type Credentials struct {
	Handle      string
	AppPassword string
}

type Client struct {
	host    string
	http    *http.Client
	creds   Credentials
	session *sessionData
}

func NewClient(host string, creds Credentials) *Client {
	return &Client{
		host:  strings.TrimRight(host, "/"),
		http:  &http.Client{Timeout: 30 * time.Second},
		creds: creds,
	}
}

// Authenticate creates an XRPC session with the stored credentials.
func (c *Client) Authenticate(ctx context.Context) error {
	if c.creds.Handle == "" || c.creds.AppPassword == "" {
		return fmt.Errorf("bluesky credentials not configured")
	}

	body := map[string]string{
		"identifier": c.creds.Handle,
		"password":   c.creds.AppPassword,
	}
	var session sessionData
	if err := c.post(ctx, "com.atproto.server.createSession", "", body, &session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	c.session = &session
	return nil
}

// PostInput is everything needed to publish one article post.
type PostInput struct {
	Text        string
	Facets      []Facet
	ArticleURL  string
	Title       string
	Description string
	ImageURL    string
	CreatedAt   time.Time
}

// PublishPost creates an app.bsky.feed.post record and returns its AT URI.
func (c *Client) PublishPost(ctx context.Context, input PostInput) (string, error) {
	if err := c.Authenticate(ctx); err != nil {
		return "", err
	}

	record := postRecord{
		Type:      "app.bsky.feed.post",
		Text:      input.Text,
		CreatedAt: input.CreatedAt.UTC().Format(time.RFC3339),
		Facets:    input.Facets,
	}

	if input.ArticleURL != "" {
		embed := &externalEmbed{
			Type: "app.bsky.embed.external",
			External: externalRecord{
				URI:         input.ArticleURL,
				Title:       input.Title,
				Description: clip(input.Description, 300),
			},
		}
		if strings.HasPrefix(input.ImageURL, "http") {
			if thumb, err := c.uploadImage(ctx, input.ImageURL); err == nil {
				embed.External.Thumb = thumb
			}
			// A missing thumbnail is not worth failing the whole post.
		}
		record.Embed = embed
	}

	body := map[string]any{
		"repo":       c.session.Did,
		"collection": "app.bsky.feed.post",
		"record":     record,
	}
	var response struct {
		URI string `json:"uri"`
	}
	if err := c.post(ctx, "com.atproto.repo.createRecord", c.session.AccessJwt, body, &response); err != nil {
		return "", fmt.Errorf("create record: %w", err)
	}
	return response.URI, nil
}

// uploadImage downloads an image and re-uploads it as a blob for embedding.
func (c *Client) uploadImage(ctx context.Context, imageURL string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build image request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download image: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	uploadReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/xrpc/com.atproto.repo.uploadBlob", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	uploadReq.Header.Set("Authorization", "Bearer "+c.session.AccessJwt)
	uploadReq.Header.Set("Content-Type", contentType)

	uploadResp, err := c.http.Do(uploadReq)
	if err != nil {
		return nil, fmt.Errorf("upload blob: %w", err)
	}
	defer uploadResp.Body.Close()
	if uploadResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upload blob: status %d", uploadResp.StatusCode)
	}

	var payload struct {
		Blob json.RawMessage `json:"blob"`
	}
	if err := json.NewDecoder(uploadResp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode blob response: %w", err)
	}
	return payload.Blob, nil
}

// GetEngagement returns like/repost/reply counts for a post URI.
func (c *Client) GetEngagement(ctx context.Context, postURI string) (Engagement, error) {
	if err := c.Authenticate(ctx); err != nil {
		return Engagement{}, err
	}

	var thread threadResponse
	if err := c.get(ctx, "app.bsky.feed.getPostThread", url.Values{"uri": {postURI}}, &thread); err != nil {
		return Engagement{}, fmt.Errorf("get post thread: %w", err)
	}
	if thread.Thread == nil || thread.Thread.Post == nil {
		return Engagement{}, nil
	}
	return Engagement{
		Likes:   thread.Thread.Post.LikeCount,
		Reposts: thread.Thread.Post.RepostCount,
		Replies: thread.Thread.Post.ReplyCount,
	}, nil
}

// GetReplies returns the replies under a post, nested replies included,
// flattened in thread order.
func (c *Client) GetReplies(ctx context.Context, postURI string) ([]Reply, error) {
	if err := c.Authenticate(ctx); err != nil {
		return nil, err
	}

	var thread threadResponse
	params := url.Values{"uri": {postURI}, "depth": {"2"}}
	if err := c.get(ctx, "app.bsky.feed.getPostThread", params, &thread); err != nil {
		return nil, fmt.Errorf("get post thread: %w", err)
	}

	replies := []Reply{}
	if thread.Thread != nil {
		collectReplies(thread.Thread, &replies)
	}
	return replies, nil
}

type threadResponse struct {
	Thread *threadNode `json:"thread"`
}

type threadNode struct {
	Post    *threadPost   `json:"post"`
	Replies []*threadNode `json:"replies"`
}

type threadPost struct {
	URI    string `json:"uri"`
	Author struct {
		Handle      string `json:"handle"`
		DisplayName string `json:"displayName"`
		Avatar      string `json:"avatar"`
	} `json:"author"`
	Record struct {
		Text      string    `json:"text"`
		CreatedAt time.Time `json:"createdAt"`
	} `json:"record"`
	LikeCount   int `json:"likeCount"`
	RepostCount int `json:"repostCount"`
	ReplyCount  int `json:"replyCount"`
}

func collectReplies(node *threadNode, out *[]Reply) {
	for _, reply := range node.Replies {
		if reply == nil || reply.Post == nil {
			continue
		}
		*out = append(*out, Reply{
			AuthorHandle:      reply.Post.Author.Handle,
			AuthorDisplayName: reply.Post.Author.DisplayName,
			AuthorAvatar:      reply.Post.Author.Avatar,
			Text:              reply.Post.Record.Text,
			CreatedAt:         reply.Post.Record.CreatedAt,
			URI:               reply.Post.URI,
		})
		collectReplies(reply, out)
	}
}

func (c *Client) post(ctx context.Context, method, jwt string, body, target any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/xrpc/"+method, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if jwt != "" {
		req.Header.Set("Authorization", "Bearer "+jwt)
	}
	return c.do(req, target)
}

func (c *Client) get(ctx context.Context, method string, params url.Values, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+"/xrpc/"+method+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if c.session != nil {
		req.Header.Set("Authorization", "Bearer "+c.session.AccessJwt)
	}
	return c.do(req, target)
}

func (c *Client) do(req *http.Request, target any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("xrpc status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func clip(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
