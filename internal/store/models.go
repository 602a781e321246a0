package store

import "time"

type Article struct {
	ID        string
	Slug      string
	Title     string
	Summary   string
	Content   string
	ImageURL  string
	Hashtags  string
	Likes     int
	Published bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type PageView struct {
	ID        int64
	Path      string
	Referrer  string
	UserAgent string
	ViewedAt  time.Time
}

// PathCount is one row of the pageview summary.
type PathCount struct {
	Path  string
	Count int
}

// Follower is a Fediverse actor that follows the blog.
type Follower struct {
	ActorID   string
	Inbox     string
	CreatedAt time.Time
}

// CrossPost maps an article to the post it produced on a remote platform.
type CrossPost struct {
	ArticleID string
	Platform  string
	RemoteURI string
	CreatedAt time.Time
}

// CommitInfo is one entry of an article's revision history.
type CommitInfo struct {
	Hash      string
	Message   string
	Author    string
	CreatedAt time.Time
}

// RemoteComment is a reply that arrived from the Fediverse.
type RemoteComment struct {
	ID        string
	ArticleID string
	Actor     string
	Content   string
	RemoteURI string
	CreatedAt time.Time
}
