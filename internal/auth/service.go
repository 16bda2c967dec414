// Copyright (c) 2025 MyBlog
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package auth implements the login flow around the session helper: it asks
// the API for a token, persists it, and only then lets the session pick it up.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"myblog/client/internal/backend"
	apperrors "myblog/client/internal/errors"
	"myblog/client/internal/session"
	"myblog/client/internal/storage"
)

// Source tells where the details of an Identity came from.
type Source string

const (
	SourceToken  Source = "token"
	SourceServer Source = "server"
	SourceCache  Source = "cache"
)

// Identity describes the logged-in user as far as the client knows.
type Identity struct {
	UserID    int64
	Name      string
	Username  string
	Email     string
	ExpiresAt *time.Time
	Source    Source
	// User is the full server profile; nil unless fetched remotely.
	User *backend.User
}

// Expired reports whether the token's exp claim lies before now. A token
// without exp never expires from the client's point of view.
func (i *Identity) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && i.ExpiresAt.Before(now)
}

// DisplayName picks the friendliest known name.
func (i *Identity) DisplayName() string {
	switch {
	case i.Name != "":
		return i.Name
	case i.Username != "":
		return i.Username
	default:
		return "user"
	}
}

// Service centralizes authentication-related operations against the API and
// local storage.
type Service struct {
	api     backend.API
	store   storage.Store
	session *session.Session
}

// NewService constructs an auth Service.
func NewService(api backend.API, store storage.Store, sess *session.Session) *Service {
	return &Service{api: api, store: store, session: sess}
}

// Login exchanges credentials for a token, stores it and calls LoginAction.
// When the session rejects the token, the previously stored token (if any) is
// put back so storage and session stay in agreement.
func (s *Service) Login(ctx context.Context, username, password string) (*session.Claims, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, apperrors.New(apperrors.InvalidInput, "username and password are required")
	}

	token, err := s.api.IssueToken(ctx, username, password)
	if err != nil {
		return nil, err
	}

	prev, prevErr := s.store.Get(session.TokenKey)
	if err := s.store.Set(session.TokenKey, token); err != nil {
		return nil, apperrors.Wrap(apperrors.StorageUnavailable, "store token", err)
	}
	if err := s.session.LoginAction(); err != nil {
		if prevErr == nil && prev != "" {
			_ = s.store.Set(session.TokenKey, prev)
		} else {
			_ = s.store.Delete(session.TokenKey)
		}
		return nil, err
	}

	// a profile cached for another account would be misleading now
	if p, err := loadProfile(s.store); err == nil && p != nil && p.UserID != s.session.UserID() {
		_ = clearProfile(s.store)
	}
	return s.session.Claims()
}

// Logout forgets the token. The API has no revoke endpoint, so this is local only.
func (s *Service) Logout(ctx context.Context) error {
	err := s.session.LogoutAction()
	if perr := clearProfile(s.store); perr != nil && err == nil {
		err = apperrors.Wrap(apperrors.StorageUnavailable, "clear profile", perr)
	}
	return err
}

// WhoAmI returns the identity held by the session. With remote set, the
// server's profile is fetched as well; when the server cannot be reached the
// last fetched profile is used instead and the request error is dropped.
func (s *Service) WhoAmI(ctx context.Context, remote bool) (*Identity, error) {
	if !s.session.IsAuthenticated() {
		return nil, apperrors.New(apperrors.NotAuthenticated, "not logged in")
	}

	id := &Identity{UserID: s.session.UserID(), Source: SourceToken}
	claims, err := s.session.Claims()
	if err != nil {
		return nil, err
	}
	id.Name = claims.Name
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		id.ExpiresAt = &exp
	}
	if !remote {
		return id, nil
	}

	token, err := s.session.Token()
	if err != nil {
		return nil, err
	}
	user, err := s.api.GetUser(ctx, token, id.UserID)
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			return id, err
		}
		if p, perr := loadProfile(s.store); perr == nil && p != nil && p.UserID == id.UserID {
			id.Username, id.Email, id.Source = p.Username, p.Email, SourceCache
			return id, nil
		}
		return id, err
	}

	id.Username, id.Email, id.Source, id.User = user.Username, user.Email, SourceServer, user
	_ = saveProfile(s.store, Profile{
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FetchedAt: time.Now().UTC(),
	})
	return id, nil
}
