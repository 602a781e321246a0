package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ── Articles ──

const articleColumns = `id, slug, title, summary, content, image_url, hashtags, likes, published, created_at, updated_at`

func scanArticle(row interface{ Scan(...any) error }) (Article, error) {
	var item Article
	err := row.Scan(
		&item.ID, &item.Slug, &item.Title, &item.Summary, &item.Content,
		&item.ImageURL, &item.Hashtags, &item.Likes, &item.Published,
		&item.CreatedAt, &item.UpdatedAt,
	)
	return item, err
}

func (s *SQLiteStore) ListArticles(ctx context.Context, publishedOnly bool) ([]Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles ORDER BY created_at DESC`
	if publishedOnly {
		query = `SELECT ` + articleColumns + ` FROM articles WHERE published = 1 ORDER BY created_at DESC`
	}
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	items := make([]Article, 0)
	for rows.Next() {
		item, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate articles: %w", err)
	}
	return items, nil
}

func (s *SQLiteStore) GetArticleBySlug(ctx context.Context, slug string) (Article, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE slug=?`, slug)
	return scanArticle(row)
}

func (s *SQLiteStore) GetArticleByID(ctx context.Context, id string) (Article, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id=?`, id)
	return scanArticle(row)
}

func (s *SQLiteStore) InsertArticle(ctx context.Context, item Article) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO articles (id, slug, title, summary, content, image_url, hashtags, likes, published)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.ID, item.Slug, item.Title, item.Summary, item.Content, item.ImageURL, item.Hashtags, item.Likes, item.Published)
	if err != nil {
		return fmt.Errorf("insert article: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateArticle(ctx context.Context, item Article) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE articles
		SET title=?, summary=?, content=?, image_url=?, hashtags=?, published=?, updated_at=datetime('now')
		WHERE id=?
	`, item.Title, item.Summary, item.Content, item.ImageURL, item.Hashtags, item.Published, item.ID)
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SetArticleImage(ctx context.Context, articleID, imageURL string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE articles SET image_url=?, updated_at=datetime('now') WHERE id=?
	`, imageURL, articleID)
	if err != nil {
		return fmt.Errorf("set article image: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteArticle(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM articles WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}

func (s *SQLiteStore) IncrementArticleLikes(ctx context.Context, slug string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE articles SET likes = likes + 1 WHERE slug=?`, slug)
	if err != nil {
		return fmt.Errorf("increment likes: %w", err)
	}
	return nil
}

// ── Analytics ──

func (s *SQLiteStore) RecordPageView(ctx context.Context, view PageView) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO page_views (path, referrer, user_agent)
		VALUES (?, ?, ?)
	`, view.Path, view.Referrer, view.UserAgent)
	if err != nil {
		return fmt.Errorf("record page view: %w", err)
	}
	return nil
}

func (s *SQLiteStore) PageViewSummary(ctx context.Context, since time.Time) ([]PathCount, int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path, COUNT(*) AS views
		FROM page_views
		WHERE viewed_at >= ?
		GROUP BY path
		ORDER BY views DESC
	`, since.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return nil, 0, fmt.Errorf("pageview summary: %w", err)
	}
	defer rows.Close()

	counts := make([]PathCount, 0)
	total := 0
	for rows.Next() {
		var pc PathCount
		if err := rows.Scan(&pc.Path, &pc.Count); err != nil {
			return nil, 0, fmt.Errorf("scan pageview row: %w", err)
		}
		counts = append(counts, pc)
		total += pc.Count
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate pageviews: %w", err)
	}
	return counts, total, nil
}

// ── Followers ──

func (s *SQLiteStore) UpsertFollower(ctx context.Context, follower Follower) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO followers (actor_id, inbox)
		VALUES (?, ?)
		ON CONFLICT (actor_id) DO UPDATE SET inbox=excluded.inbox
	`, follower.ActorID, follower.Inbox)
	if err != nil {
		return fmt.Errorf("upsert follower: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RemoveFollower(ctx context.Context, actorID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM followers WHERE actor_id=?`, actorID)
	if err != nil {
		return fmt.Errorf("remove follower: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListFollowers(ctx context.Context) ([]Follower, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT actor_id, inbox, created_at FROM followers ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list followers: %w", err)
	}
	defer rows.Close()

	items := make([]Follower, 0)
	for rows.Next() {
		var item Follower
		if err := rows.Scan(&item.ActorID, &item.Inbox, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan follower: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate followers: %w", err)
	}
	return items, nil
}

// ── Cross posts ──

func (s *SQLiteStore) SaveCrossPost(ctx context.Context, post CrossPost) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO crossposts (article_id, platform, remote_uri)
		VALUES (?, ?, ?)
		ON CONFLICT (article_id, platform) DO UPDATE SET remote_uri=excluded.remote_uri
	`, post.ArticleID, post.Platform, post.RemoteURI)
	if err != nil {
		return fmt.Errorf("save crosspost: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetCrossPost(ctx context.Context, articleID, platform string) (CrossPost, error) {
	var post CrossPost
	err := s.db.QueryRowContext(ctx, `
		SELECT article_id, platform, remote_uri, created_at
		FROM crossposts
		WHERE article_id=? AND platform=?
	`, articleID, platform).Scan(&post.ArticleID, &post.Platform, &post.RemoteURI, &post.CreatedAt)
	if err != nil {
		return CrossPost{}, err
	}
	return post, nil
}

// ── Remote comments ──

func (s *SQLiteStore) InsertRemoteComment(ctx context.Context, comment RemoteComment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO remote_comments (id, article_id, actor, content, remote_uri)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`, comment.ID, comment.ArticleID, comment.Actor, comment.Content, comment.RemoteURI)
	if err != nil {
		return fmt.Errorf("insert remote comment: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListRemoteComments(ctx context.Context, articleID string) ([]RemoteComment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, article_id, actor, content, remote_uri, created_at
		FROM remote_comments
		WHERE article_id=?
		ORDER BY created_at
	`, articleID)
	if err != nil {
		return nil, fmt.Errorf("list remote comments: %w", err)
	}
	defer rows.Close()

	items := make([]RemoteComment, 0)
	for rows.Next() {
		var item RemoteComment
		if err := rows.Scan(&item.ID, &item.ArticleID, &item.Actor, &item.Content, &item.RemoteURI, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan remote comment: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate remote comments: %w", err)
	}
	return items, nil
}

// ── Settings ──

// GetSetting returns "" (no error) when the key has never been set.
func (s *SQLiteStore) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key=?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStore) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value)
		VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value=excluded.value, updated_at=datetime('now')
	`, key, value)
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

// SearchArticles is the fallback full-text scan used when Meilisearch is
// down. LIKE over title/summary/content is enough at personal-blog scale.
func (s *SQLiteStore) SearchArticles(ctx context.Context, q string, limit int) ([]Article, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + q + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+articleColumns+`
		FROM articles
		WHERE published = 1 AND (title LIKE ? OR summary LIKE ? OR content LIKE ?)
		ORDER BY created_at DESC
		LIMIT ?
	`, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search articles: %w", err)
	}
	defer rows.Close()

	items := make([]Article, 0)
	for rows.Next() {
		item, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search results: %w", err)
	}
	return items, nil
}
