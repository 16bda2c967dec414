package backend

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	apperrors "myblog/client/internal/errors"
)

// MaxTitleLength is the longest title the API accepts.
const MaxTitleLength = 255

// MaxPerPage is the page size cap the API enforces.
const MaxPerPage = 100

// Links holds the hypermedia links the API attaches to resources.
type Links struct {
	Self   string  `json:"self"`
	Next   *string `json:"next,omitempty"`
	Prev   *string `json:"prev,omitempty"`
	Avatar string  `json:"avatar,omitempty"`
}

// User is the public profile returned by /api/users/<id>.
type User struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Location    string `json:"location"`
	AboutMe     string `json:"about_me"`
	MemberSince string `json:"member_since"`
	LastSeen    string `json:"last_seen"`
	Links       Links  `json:"_links"`
}

// DisplayName prefers the user's name and falls back to the username.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if strings.TrimSpace(u.Name) != "" {
		return u.Name
	}
	return u.Username
}

// Post is a blog post as returned by /api/posts.
type Post struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Body      string `json:"body"`
	Timestamp string `json:"timestamp"`
	Views     int    `json:"views"`
	Author    *User  `json:"author,omitempty"`
	Links     Links  `json:"_links"`
}

// Meta is the pagination block of a collection response.
type Meta struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
	TotalItems int `json:"total_items"`
}

// PostPage is one page of the post collection.
type PostPage struct {
	Items []Post `json:"items"`
	Meta  Meta   `json:"_meta"`
	Links Links  `json:"_links"`
}

// HasNext reports whether another page follows.
func (p *PostPage) HasNext() bool { return p.Links.Next != nil }

// PostInput is the body of create and update requests.
type PostInput struct {
	Title   string `json:"title"`
	Summary string `json:"summary,omitempty"`
	Body    string `json:"body"`
}

// Validate checks the input before a request is made. It is stricter than
// the API: a title or body made only of whitespace is rejected here even
// though the server would store it.
func (in PostInput) Validate() error {
	problems := map[string]string{}
	switch {
	case strings.TrimSpace(in.Title) == "":
		problems["title"] = "Title is required."
	case utf8.RuneCountInString(in.Title) > MaxTitleLength:
		problems["title"] = fmt.Sprintf("Title must less than %d characters.", MaxTitleLength)
	}
	if strings.TrimSpace(in.Body) == "" {
		problems["body"] = "Body is required."
	}
	if len(problems) == 0 {
		return nil
	}
	return apperrors.New(apperrors.InvalidInput, joinProblems(problems))
}

func joinProblems(problems map[string]string) string {
	keys := make([]string, 0, len(problems))
	for k := range problems {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+problems[k])
	}
	return strings.Join(parts, "; ")
}
