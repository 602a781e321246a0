package app

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"simpleblog/api/internal/auth"
	"simpleblog/api/internal/search"
	"simpleblog/api/internal/session"
)

type HTTPServer struct {
	service    *Service
	corsOrigin string
	mediaDir   string

	viewLimiter  *RateLimiter
	inboxLimiter *RateLimiter
}

// NewHTTPServer wires the API handler. mediaDir may be empty when media is
// stored in an external object store.
func NewHTTPServer(service *Service, corsOrigin, mediaDir string) *HTTPServer {
	return &HTTPServer{
		service:      service,
		corsOrigin:   corsOrigin,
		mediaDir:     mediaDir,
		viewLimiter:  NewRateLimiter(5, 10),
		inboxLimiter: NewRateLimiter(2, 5),
	}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeJSON(w, http.StatusNoContent, map[string]any{})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/ready" {
		s.handleReady(w, r)
		return
	}

	// Session routes
	if r.Method == http.MethodGet && r.URL.Path == "/api/session" {
		token := bearerToken(r)
		if token == "" {
			writeJSON(w, http.StatusOK, map[string]any{"authenticated": false, "userName": nil})
			return
		}
		sess, err := s.service.SessionFromToken(token)
		if err != nil {
			writeJSON(w, http.StatusOK, map[string]any{"authenticated": false, "userName": nil})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": true, "userName": sess.UserName, "role": sess.Role})
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/session/login" {
		var body struct {
			Name     string `json:"name"`
			Password string `json:"password"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		sess, err := s.service.Login(r.Context(), body.Name, body.Password)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid name or password", nil)
			return
		}
		writeJSON(w, http.StatusOK, sessionPayload(sess))
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/session/refresh" {
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		sess, err := s.service.Refresh(r.Context(), body.RefreshToken)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Refresh token invalid", nil)
			return
		}
		writeJSON(w, http.StatusOK, sessionPayload(sess))
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/session/logout" {
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		_ = decodeBody(r, &body)
		_ = s.service.Logout(r.Context(), body.RefreshToken)
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	parts := splitPath(r.URL.Path)

	// HTML pages
	if r.Method == http.MethodGet && len(parts) == 0 {
		s.handleIndexPage(w, r)
		return
	}
	if r.Method == http.MethodGet && len(parts) == 2 && parts[0] == "articles" {
		s.handleArticlePage(w, r, parts[1])
		return
	}

	// Local media files (when MinIO is not configured)
	if r.Method == http.MethodGet && len(parts) >= 2 && parts[0] == "media" && s.mediaDir != "" {
		name := filepath.Clean(strings.Join(parts[1:], "/"))
		if strings.HasPrefix(name, "..") {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, filepath.Join(s.mediaDir, name))
		return
	}

	// ActivityPub surface
	if len(parts) == 2 && parts[0] == ".well-known" && parts[1] == "webfinger" {
		s.handleWebfinger(w, r)
		return
	}
	if len(parts) >= 2 && parts[0] == "users" && parts[1] == "blog" {
		s.handleFediverse(w, r, parts)
		return
	}

	if len(parts) >= 2 && parts[0] == "api" {
		switch parts[1] {
		case "articles":
			s.handleArticlesAPI(w, r, parts)
			return
		case "analytics":
			s.handleAnalyticsAPI(w, r, parts)
			return
		case "search":
			if r.Method == http.MethodGet && len(parts) == 2 {
				s.handleSearch(w, r)
				return
			}
		case "bluesky":
			s.handleBlueskyAPI(w, r, parts)
			return
		case "config":
			if r.Method == http.MethodPost && len(parts) == 3 && parts[2] == "bluesky" {
				s.handleBlueskyConfig(w, r)
				return
			}
		case "images":
			if r.Method == http.MethodPost && len(parts) == 3 && parts[2] == "generate" {
				s.handleGenerateImage(w, r)
				return
			}
		}
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	statusCode := http.StatusOK
	checks := map[string]any{
		"database": map[string]any{"status": "ok"},
		"redis":    map[string]any{"status": "ok"},
	}

	if err := s.service.Ping(ctx); err != nil {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
		checks["database"] = map[string]any{"status": "error", "error": err.Error()}
	}
	if err := s.service.PingSessions(ctx); err != nil {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
		checks["redis"] = map[string]any{"status": "error", "error": err.Error()}
	}

	writeJSON(w, statusCode, map[string]any{
		"ok":     status == "ready",
		"status": status,
		"checks": checks,
	})
}

func (s *HTTPServer) handleArticlesAPI(w http.ResponseWriter, r *http.Request, parts []string) {
	// /api/articles
	if len(parts) == 2 {
		switch r.Method {
		case http.MethodGet:
			_, isAdmin := s.adminSession(r)
			articles, err := s.service.ListArticles(r.Context(), isAdmin)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"articles": articlesPayload(articles)})
			return
		case http.MethodPost:
			sess, ok := s.requireAdmin(w, r)
			if !ok {
				return
			}
			var input ArticleInput
			if err := decodeBody(r, &input); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			article, err := s.service.CreateArticle(r.Context(), sess, input)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusCreated, map[string]any{"article": articlePayload(article)})
			return
		}
	}

	// /api/articles/{slug}
	if len(parts) == 3 {
		slug := parts[2]
		switch r.Method {
		case http.MethodGet:
			_, isAdmin := s.adminSession(r)
			article, err := s.service.GetArticle(r.Context(), slug, isAdmin)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"article": articlePayload(article)})
			return
		case http.MethodPut:
			sess, ok := s.requireAdmin(w, r)
			if !ok {
				return
			}
			var input ArticleInput
			if err := decodeBody(r, &input); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			article, err := s.service.UpdateArticle(r.Context(), sess, slug, input)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"article": articlePayload(article)})
			return
		case http.MethodDelete:
			if _, ok := s.requireAdmin(w, r); !ok {
				return
			}
			if err := s.service.DeleteArticle(r.Context(), slug); err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
			return
		}
	}

	// /api/articles/{slug}/{sub}
	if len(parts) == 4 {
		slug, sub := parts[2], parts[3]
		switch {
		case r.Method == http.MethodPost && sub == "like":
			if err := s.service.LikeArticle(r.Context(), slug); err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
			return
		case r.Method == http.MethodGet && sub == "comments":
			comments, err := s.service.ArticleComments(r.Context(), slug)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"comments": commentsPayload(comments)})
			return
		case r.Method == http.MethodGet && sub == "history":
			if _, ok := s.requireAdmin(w, r); !ok {
				return
			}
			limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
			history, err := s.service.ArticleHistory(r.Context(), slug, limit)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"history": historyPayload(history)})
			return
		case r.Method == http.MethodPost && sub == "export":
			if _, ok := s.requireAdmin(w, r); !ok {
				return
			}
			includeComments := r.URL.Query().Get("comments") == "1"
			result, err := s.service.ExportArticle(r.Context(), slug, includeComments)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			w.Header().Set("Content-Type", result.MimeType)
			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(result.Data)
			return
		}
	}

	// /api/articles/{slug}/revisions/{hash}
	if len(parts) == 5 && parts[3] == "revisions" && r.Method == http.MethodGet {
		if _, ok := s.requireAdmin(w, r); !ok {
			return
		}
		content, err := s.service.ArticleRevision(r.Context(), parts[2], parts[4])
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"revision": content})
		return
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handleAnalyticsAPI(w http.ResponseWriter, r *http.Request, parts []string) {
	if r.Method == http.MethodPost && len(parts) == 3 && parts[2] == "pageview" {
		if !s.viewLimiter.Allow(r) {
			writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests", nil)
			return
		}
		var body struct {
			Path     string `json:"path"`
			Referrer string `json:"referrer"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		if err := s.service.RecordPageView(r.Context(), body.Path, body.Referrer, r.UserAgent()); err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]any{"ok": true})
		return
	}

	if r.Method == http.MethodGet && len(parts) == 3 && parts[2] == "summary" {
		if _, ok := s.requireAdmin(w, r); !ok {
			return
		}
		days, _ := strconv.Atoi(r.URL.Query().Get("days"))
		paths, total, err := s.service.AnalyticsSummary(r.Context(), days)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		items := make([]map[string]any, 0, len(paths))
		for _, p := range paths {
			items = append(items, map[string]any{"path": p.Path, "count": p.Count})
		}
		writeJSON(w, http.StatusOK, map[string]any{"paths": items, "total": total})
		return
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "q is required", nil)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	response := s.service.Search(r.Context(), search.Query{Text: q, Limit: limit, Offset: offset})
	writeJSON(w, http.StatusOK, response)
}

func (s *HTTPServer) handleBlueskyAPI(w http.ResponseWriter, r *http.Request, parts []string) {
	if r.Method == http.MethodPost && len(parts) == 3 && parts[2] == "test-connection" {
		if _, ok := s.requireAdmin(w, r); !ok {
			return
		}
		if err := s.service.TestBlueskyConnection(r.Context()); err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if r.Method == http.MethodPost && len(parts) == 3 && parts[2] == "post-article" {
		if _, ok := s.requireAdmin(w, r); !ok {
			return
		}
		var body struct {
			Slug string `json:"slug"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		post, err := s.service.CrossPostArticle(r.Context(), body.Slug)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"uri": post.RemoteURI})
		return
	}

	if r.Method == http.MethodGet && len(parts) == 4 && parts[2] == "stats" {
		engagement, err := s.service.BlueskyStats(r.Context(), parts[3])
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, engagement)
		return
	}

	if r.Method == http.MethodGet && len(parts) == 4 && parts[2] == "replies" {
		replies, err := s.service.BlueskyReplies(r.Context(), parts[3])
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"replies": replies})
		return
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handleBlueskyConfig(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	var body struct {
		Handle      string `json:"handle"`
		AppPassword string `json:"appPassword"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	if err := s.service.SetBlueskyConfig(r.Context(), body.Handle, body.AppPassword); err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *HTTPServer) handleGenerateImage(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	var body struct {
		Slug   string `json:"slug"`
		Prompt string `json:"prompt"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	url, err := s.service.GenerateArticleImage(r.Context(), body.Slug, body.Prompt)
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"imageUrl": url})
}

func (s *HTTPServer) handleWebfinger(w http.ResponseWriter, r *http.Request) {
	if s.service.deps.Fediverse == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}
	response, err := s.service.deps.Fediverse.Webfinger(r.URL.Query().Get("resource"))
	if err != nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *HTTPServer) handleFediverse(w http.ResponseWriter, r *http.Request, parts []string) {
	fedi := s.service.deps.Fediverse
	if fedi == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}

	if r.Method == http.MethodGet && len(parts) == 2 {
		actor, err := fedi.Actor()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil)
			return
		}
		writeActivityJSON(w, http.StatusOK, actor)
		return
	}

	if len(parts) == 3 {
		switch {
		case r.Method == http.MethodGet && parts[2] == "outbox":
			outbox, err := fedi.Outbox(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil)
				return
			}
			writeActivityJSON(w, http.StatusOK, outbox)
			return
		case r.Method == http.MethodGet && parts[2] == "followers":
			followers, err := fedi.Followers(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil)
				return
			}
			writeActivityJSON(w, http.StatusOK, followers)
			return
		case r.Method == http.MethodPost && parts[2] == "inbox":
			if !s.inboxLimiter.Allow(r) {
				writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests", nil)
				return
			}
			payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
			if err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", "unreadable body", nil)
				return
			}
			if err := fedi.HandleInbox(r.Context(), payload); err != nil {
				log.Printf("activitypub: inbox error: %v", err)
			}
			// Inboxes accept; processing failures are not the peer's problem.
			writeJSON(w, http.StatusAccepted, map[string]any{"status": "accepted"})
			return
		}
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

// adminSession returns the session when the request carries a valid admin
// token.
func (s *HTTPServer) adminSession(r *http.Request) (Session, bool) {
	token := bearerToken(r)
	if token == "" {
		return Session{}, false
	}
	sess, err := s.service.SessionFromToken(token)
	if err != nil || sess.Role != "admin" {
		return Session{}, false
	}
	return sess, true
}

func (s *HTTPServer) requireAdmin(w http.ResponseWriter, r *http.Request) (Session, bool) {
	sess, ok := s.adminSession(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return Session{}, false
	}
	return sess, true
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = randomRequestID()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		log.Printf(`{"request_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`,
			requestID,
			r.Method,
			r.URL.Path,
			writer.status,
			time.Since(started).Milliseconds(),
		)
	})
}

type requestIDKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func randomRequestID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
	header.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeActivityJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/activity+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	response := map[string]any{
		"code":  code,
		"error": message,
	}
	if details != nil {
		response["details"] = details
	}
	writeJSON(w, status, response)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, http.ErrBodyReadAfterClose) {
			return nil
		}
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func mapError(err error) (status int, code, message string, details any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}
	if errors.Is(err, sql.ErrNoRows) {
		return http.StatusNotFound, "NOT_FOUND", "Not found", nil
	}
	if errors.Is(err, session.ErrNotFound) {
		return http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil
	}
	if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrExpiredToken) || errors.Is(err, auth.ErrBadCredentials) {
		return http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil
	}
	return http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil
}

func sessionPayload(sess Session) map[string]any {
	return map[string]any{
		"token":        sess.Token,
		"refreshToken": sess.RefreshToken,
		"userName":     sess.UserName,
		"role":         sess.Role,
		"expiresAt":    sess.ExpiresAt.Unix(),
	}
}
