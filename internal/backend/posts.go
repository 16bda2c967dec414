package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ListPosts calls GET /api/posts?page=&per_page=. Out-of-range arguments are
// clamped to what the API would use.
func (h *HTTP) ListPosts(ctx context.Context, page, perPage int) (*PostPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))

	var out PostPage
	if err := h.do(ctx, http.MethodGet, "/api/posts?"+q.Encode(), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPost calls GET /api/posts/<id>. The server counts this as a view.
func (h *HTTP) GetPost(ctx context.Context, id int64) (*Post, error) {
	var p Post
	if err := h.do(ctx, http.MethodGet, fmt.Sprintf("/api/posts/%d", id), "", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePost calls POST /api/posts. Requires a token.
func (h *HTTP) CreatePost(ctx context.Context, token string, in PostInput) (*Post, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var p Post
	if err := h.do(ctx, http.MethodPost, "/api/posts", token, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePost calls PUT /api/posts/<id>. Only the author may update a post.
func (h *HTTP) UpdatePost(ctx context.Context, token string, id int64, in PostInput) (*Post, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var p Post
	if err := h.do(ctx, http.MethodPut, fmt.Sprintf("/api/posts/%d", id), token, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeletePost calls DELETE /api/posts/<id>. Only the author may delete a post.
func (h *HTTP) DeletePost(ctx context.Context, token string, id int64) error {
	return h.do(ctx, http.MethodDelete, fmt.Sprintf("/api/posts/%d", id), token, nil, nil)
}
