// Package session answers "is the user logged in" and "who is the user"
// without a network round trip, by trusting the token kept in local storage.
//
// A Session is created once during bootstrap and handed to every command that
// needs it. Its state is a cache of the stored token: it is computed when the
// Session is created and again on LoginAction, and reset by LogoutAction.
package session

import (
	"errors"
	"sync"

	"github.com/pterm/pterm"

	apperrors "myblog/client/internal/errors"
	"myblog/client/internal/storage"
)

// TokenKey is the storage key the token is persisted under.
const TokenKey = "myblog-token"

// State is a snapshot of the session. UserID is 0 whenever IsAuthenticated is false.
type State struct {
	IsAuthenticated bool  `json:"is_authenticated"`
	UserID          int64 `json:"user_id"`
}

// Anonymous reports whether s is the logged-out state.
func (s State) Anonymous() bool { return !s.IsAuthenticated }

// Session holds the authentication state derived from the stored token.
type Session struct {
	mu    sync.RWMutex
	store storage.Store
	state State
	debug bool
	log   *pterm.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithDebug enables debug traces of state transitions.
func WithDebug(debug bool) Option {
	return func(s *Session) { s.debug = debug }
}

// WithLogger sets the logger debug traces go to.
func WithLogger(log *pterm.Logger) Option {
	return func(s *Session) { s.log = log }
}

// New reads the stored token and derives the initial state.
// A token that cannot be decoded is returned as a MalformedCredential error
// and must be treated as fatal by the caller.
func New(store storage.Store, opts ...Option) (*Session, error) {
	s := &Session{store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = &pterm.DefaultLogger
	}

	token, err := s.loadToken()
	if err != nil {
		if apperrors.IsKind(err, apperrors.NotAuthenticated) {
			s.trace("session initialized", "is_authenticated", false, "user_id", 0)
			return s, nil
		}
		return nil, err
	}

	uid, err := DecodeUserID(token)
	if err != nil {
		return nil, err
	}
	s.state = State{IsAuthenticated: true, UserID: uid}
	s.trace("session initialized", "is_authenticated", true, "user_id", uid)
	return s, nil
}

// LoginAction marks the session authenticated using the token an external
// login flow has already written to storage. On failure the state is unchanged.
func (s *Session) LoginAction() error {
	s.trace("loginAction triggered")

	token, err := s.loadToken()
	if err != nil {
		return err
	}
	uid, err := DecodeUserID(token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.state = State{IsAuthenticated: true, UserID: uid}
	s.mu.Unlock()

	s.trace("logged in", "user_id", uid)
	return nil
}

// LogoutAction removes the stored token and resets the state. The in-memory
// reset always happens; a storage failure is still reported to the caller.
func (s *Session) LogoutAction() error {
	s.trace("logoutAction triggered")

	err := s.store.Delete(TokenKey)

	s.mu.Lock()
	s.state = State{}
	s.mu.Unlock()

	if err != nil {
		return apperrors.Wrap(apperrors.StorageUnavailable, "failed to delete token", err)
	}
	return nil
}

// State returns a snapshot of the current state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) IsAuthenticated() bool { return s.State().IsAuthenticated }

func (s *Session) UserID() int64 { return s.State().UserID }

// Token returns the stored token for authorized API calls.
func (s *Session) Token() (string, error) {
	return s.loadToken()
}

// Claims decodes the stored token. See Claims for what they can be trusted for.
func (s *Session) Claims() (*Claims, error) {
	token, err := s.loadToken()
	if err != nil {
		return nil, err
	}
	return DecodeClaims(token)
}

func (s *Session) loadToken() (string, error) {
	token, err := s.store.Get(TokenKey)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && token == "") {
		return "", apperrors.New(apperrors.NotAuthenticated, "no token stored; run 'myblog login' first")
	}
	if err != nil {
		return "", apperrors.Wrap(apperrors.StorageUnavailable, "failed to read token", err)
	}
	return token, nil
}

func (s *Session) trace(msg string, args ...any) {
	if !s.debug {
		return
	}
	s.log.Debug(msg, s.log.Args(args...))
}
