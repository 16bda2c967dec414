// Copyright (c) 2025 MyBlog
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// userCacheTTL bounds how long a fetched profile is reused.
const userCacheTTL = 10 * time.Minute

// GetUser calls GET /api/users/<id>, sending the token when one is given.
// Profiles fetched without a token are cached for userCacheTTL; a request
// with a token always goes to the server since the answer may include the email.
func (h *HTTP) GetUser(ctx context.Context, token string, id int64) (*User, error) {
	if token == "" {
		h.mu.Lock()
		c, ok := h.userCache[id]
		h.mu.Unlock()
		if ok && time.Since(c.at) < userCacheTTL {
			return c.user, nil
		}
	}

	var u User
	if err := h.do(ctx, http.MethodGet, fmt.Sprintf("/api/users/%d", id), token, nil, &u); err != nil {
		return nil, err
	}

	if token == "" {
		h.mu.Lock()
		h.userCache[id] = cachedUser{user: &u, at: time.Now()}
		h.mu.Unlock()
	}
	return &u, nil
}
