// Copyright (c) 2025 MyBlog
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend provides interfaces and implementations for communicating with the myblog API.
// It defines the API contract for token issuance, users and posts.
// The package includes both interface definitions and HTTP-based implementations.
package backend

import "context"

// API defines backend operations the CLI depends on.
// Implementations may call real HTTP endpoints or provide mocks for tests.
type API interface {
	// Ping checks that the API is reachable.
	Ping(ctx context.Context) error
	// IssueToken exchanges a username and password (HTTP basic auth) for a token.
	IssueToken(ctx context.Context, username, password string) (string, error)
	// GetUser retrieves a user's public profile. The token is optional; the
	// owner's email is only included when the token belongs to that user.
	GetUser(ctx context.Context, token string, id int64) (*User, error)
	// ListPosts returns one page of posts, newest first.
	ListPosts(ctx context.Context, page, perPage int) (*PostPage, error)
	GetPost(ctx context.Context, id int64) (*Post, error)
	CreatePost(ctx context.Context, token string, in PostInput) (*Post, error)
	UpdatePost(ctx context.Context, token string, id int64, in PostInput) (*Post, error)
	DeletePost(ctx context.Context, token string, id int64) error
}
