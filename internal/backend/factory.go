// Copyright (c) 2025 MyBlog
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

// New creates the HTTP implementation of API for baseURL.
func New(baseURL string) *HTTP {
	return newHTTP(baseURL)
}

var _ API = (*HTTP)(nil)
