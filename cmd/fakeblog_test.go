package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"myblog/client/internal/backend"
)

const fakeSecret = "fake-blog-secret"

// fakeBlog is an in-memory stand-in for the blog API.
type fakeBlog struct {
	mu     sync.Mutex
	users  map[int64]backend.User
	pass   map[string]string
	posts  map[int64]*backend.Post
	nextID int64
}

func newFakeBlog(t *testing.T) (*fakeBlog, *httptest.Server) {
	t.Helper()
	fb := &fakeBlog{
		users: map[int64]backend.User{
			1: {ID: 1, Username: "alice", Name: "Alice", Email: "alice@example.com", Location: "Lisbon"},
			2: {ID: 2, Username: "bob", Email: "bob@example.com"},
		},
		pass: map[string]string{"alice": "pw", "bob": "hunter2"},
		posts: map[int64]*backend.Post{
			1: {ID: 1, Title: "Hello world", Summary: "<p>First <b>post</b></p>", Body: "# Hello\n\nWelcome to the blog.", Timestamp: "2024-03-09T12:00:00Z", Views: 3},
			2: {ID: 2, Title: "Bob's notes", Summary: "notes", Body: "Some notes.", Timestamp: "2024-03-10T08:30:00.123456Z"},
		},
		nextID: 3,
	}
	fb.posts[1].Author = ptrUser(fb.users[1])
	fb.posts[2].Author = ptrUser(fb.users[2])

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`"pong"`))
	})
	mux.HandleFunc("POST /api/tokens", fb.issueToken)
	mux.HandleFunc("GET /api/users/{id}", fb.getUser)
	mux.HandleFunc("GET /api/posts", fb.listPosts)
	mux.HandleFunc("POST /api/posts", fb.createPost)
	mux.HandleFunc("GET /api/posts/{id}", fb.getPost)
	mux.HandleFunc("PUT /api/posts/{id}", fb.updatePost)
	mux.HandleFunc("DELETE /api/posts/{id}", fb.deletePost)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return fb, srv
}

func ptrUser(u backend.User) *backend.User { return &u }

func fakeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func fakeError(w http.ResponseWriter, status int, message any) {
	body := map[string]any{"error": http.StatusText(status)}
	if message != nil {
		body["message"] = message
	}
	fakeJSON(w, status, body)
}

func (fb *fakeBlog) issueToken(w http.ResponseWriter, r *http.Request) {
	user, pass, ok := r.BasicAuth()
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if !ok || fb.pass[user] == "" || fb.pass[user] != pass {
		fakeError(w, http.StatusUnauthorized, nil)
		return
	}
	var u backend.User
	for _, candidate := range fb.users {
		if candidate.Username == user {
			u = candidate
		}
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": u.ID,
		"name":    u.Name,
		"exp":     time.Now().Add(time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}).SignedString([]byte(fakeSecret))
	if err != nil {
		fakeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	fakeJSON(w, http.StatusOK, map[string]string{"token": tok})
}

// caller verifies the bearer token and returns its user id, or 0.
func (fb *fakeBlog) caller(r *http.Request) int64 {
	raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if raw == "" {
		return 0
	}
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(fakeSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return 0
	}
	id, _ := claims["user_id"].(float64)
	return int64(id)
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id
}

func (fb *fakeBlog) getUser(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	u, ok := fb.users[pathID(r)]
	if !ok {
		fakeError(w, http.StatusNotFound, nil)
		return
	}
	if fb.caller(r) != u.ID {
		u.Email = ""
	}
	fakeJSON(w, http.StatusOK, u)
}

func (fb *fakeBlog) listPosts(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	items := make([]backend.Post, 0, len(fb.posts))
	for id := fb.nextID - 1; id > 0; id-- {
		if p, ok := fb.posts[id]; ok {
			items = append(items, *p)
		}
	}
	fakeJSON(w, http.StatusOK, backend.PostPage{
		Items: items,
		Meta:  backend.Meta{Page: 1, PerPage: 10, TotalPages: 1, TotalItems: len(items)},
		Links: backend.Links{Self: "/api/posts?page=1&per_page=10"},
	})
}

func (fb *fakeBlog) getPost(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	p, ok := fb.posts[pathID(r)]
	if !ok {
		fakeError(w, http.StatusNotFound, nil)
		return
	}
	p.Views++
	fakeJSON(w, http.StatusOK, p)
}

func (fb *fakeBlog) decodeInput(w http.ResponseWriter, r *http.Request) (backend.PostInput, bool) {
	var in backend.PostInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		fakeError(w, http.StatusBadRequest, "invalid JSON")
		return in, false
	}
	problems := map[string]string{}
	if strings.TrimSpace(in.Title) == "" {
		problems["title"] = "Title is required."
	}
	if strings.TrimSpace(in.Body) == "" {
		problems["body"] = "Body is required."
	}
	if len(problems) > 0 {
		fakeError(w, http.StatusBadRequest, problems)
		return in, false
	}
	return in, true
}

func (fb *fakeBlog) createPost(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	uid := fb.caller(r)
	if uid == 0 {
		fakeError(w, http.StatusUnauthorized, nil)
		return
	}
	in, ok := fb.decodeInput(w, r)
	if !ok {
		return
	}
	p := &backend.Post{
		ID:        fb.nextID,
		Title:     in.Title,
		Summary:   in.Body,
		Body:      in.Body,
		Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.999999") + "Z",
		Author:    ptrUser(fb.users[uid]),
	}
	fb.posts[p.ID] = p
	fb.nextID++
	w.Header().Set("Location", "/api/posts/"+strconv.FormatInt(p.ID, 10))
	fakeJSON(w, http.StatusCreated, p)
}

func (fb *fakeBlog) ownedPost(w http.ResponseWriter, r *http.Request) (*backend.Post, bool) {
	uid := fb.caller(r)
	if uid == 0 {
		fakeError(w, http.StatusUnauthorized, nil)
		return nil, false
	}
	p, ok := fb.posts[pathID(r)]
	if !ok {
		fakeError(w, http.StatusNotFound, nil)
		return nil, false
	}
	if p.Author == nil || p.Author.ID != uid {
		fakeError(w, http.StatusForbidden, "You can only change your own posts.")
		return nil, false
	}
	return p, true
}

func (fb *fakeBlog) updatePost(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	p, ok := fb.ownedPost(w, r)
	if !ok {
		return
	}
	in, ok := fb.decodeInput(w, r)
	if !ok {
		return
	}
	p.Title, p.Body = in.Title, in.Body
	fakeJSON(w, http.StatusOK, p)
}

func (fb *fakeBlog) deletePost(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	p, ok := fb.ownedPost(w, r)
	if !ok {
		return
	}
	delete(fb.posts, p.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (fb *fakeBlog) post(id int64) (backend.Post, bool) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	p, ok := fb.posts[id]
	if !ok {
		return backend.Post{}, false
	}
	return *p, true
}
