package client

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/shashiranjanraj/krishi/internal/access"
	"github.com/shashiranjanraj/krishi/pkg/apperr"
	"github.com/shashiranjanraj/krishi/pkg/logger"
)

// Holder is a cached entity that must be dropped when the session ends,
// such as the last cart snapshot.
type Holder interface {
	Clear()
}

// SessionStore owns the client's token, its expiry and the signed-in
// profile. Exactly one expiry timer is pending per stored token; a timer
// that fires after the token it was armed for was replaced or cleared does
// nothing.
type SessionStore struct {
	c    *Client
	file *TokenFile
	now  func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
	user      *User
	timer     *time.Timer
	gen       uint64
	holders   []Holder
	onExpired []func()
}

func newSessionStore(c *Client, file *TokenFile, now func() time.Time) *SessionStore {
	return &SessionStore{c: c, file: file, now: now}
}

// OnExpired registers fn to run when the expiry timer ends the session.
func (s *SessionStore) OnExpired(fn func()) {
	s.mu.Lock()
	s.onExpired = append(s.onExpired, fn)
	s.mu.Unlock()
}

// Hold registers h to be cleared on logout.
func (s *SessionStore) Hold(h Holder) {
	s.mu.Lock()
	s.holders = append(s.holders, h)
	s.mu.Unlock()
}

// Login exchanges credentials for a token and persists it.
func (s *SessionStore) Login(ctx context.Context, creds Credentials) (*User, error) {
	var res loginResult
	if err := s.c.send(ctx, http.MethodPost, "/auth/login", "", creds, &res); err != nil {
		return nil, err
	}
	if res.Token == "" {
		return nil, apperr.ErrInvalidOrExpiredToken
	}
	s.install(res.Token, res.ExpiresAt, res.User)
	if s.file != nil {
		if err := s.file.Save(res.Token, res.ExpiresAt); err != nil {
			logger.WithCtx(ctx).Warn("client: token not persisted", "error", err)
		}
	}
	return res.User, nil
}

// Restore loads a persisted token. It reports false when there is none or
// the stored one has already expired, in which case the file is removed.
// The profile stays empty until Validate.
func (s *SessionStore) Restore() (bool, error) {
	if s.file == nil {
		return false, nil
	}
	token, exp, err := s.file.Load()
	if errors.Is(err, ErrNoToken) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !exp.After(s.now()) {
		return false, s.file.Remove()
	}
	s.install(token, exp, nil)
	return true, nil
}

// Validate confirms the session with the server and refreshes the profile.
// It fails closed: a token past its expiry is cleared without a network
// call, and any auth failure from the server clears the session.
func (s *SessionStore) Validate(ctx context.Context) (*User, error) {
	s.mu.Lock()
	token, exp := s.token, s.expiresAt
	s.mu.Unlock()

	if token == "" {
		return nil, apperr.ErrInvalidOrExpiredToken
	}
	if !exp.After(s.now()) {
		s.revoke(token)
		return nil, apperr.ErrInvalidOrExpiredToken
	}

	var u User
	if err := s.c.send(ctx, http.MethodGet, "/auth/me", token, nil, &u); err != nil {
		if apperr.KindOf(err) == apperr.KindAuth {
			s.revoke(token)
		}
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != token {
		return nil, apperr.ErrInvalidOrExpiredToken
	}
	s.user = &u
	return &u, nil
}

// Logout clears the token, the profile and every held entity, cancels the
// expiry timer and deletes the persisted token. Safe to call repeatedly.
func (s *SessionStore) Logout() {
	s.mu.Lock()
	s.clearLocked()
	s.mu.Unlock()
	s.removeFile()
}

func (s *SessionStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *SessionStore) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}

// User is the last known profile, nil when signed out or not yet validated.
func (s *SessionStore) User() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Session is the access view of the current profile; nil when anonymous.
func (s *SessionStore) Session() *access.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" || s.user == nil {
		return nil
	}
	return &access.Session{
		UserID:    s.user.ID,
		Role:      s.user.Role,
		Status:    s.user.Status,
		ExpiresAt: s.expiresAt,
	}
}

// ── internals ────────────────────────────────────────────────────────────────

func (s *SessionStore) install(token string, exp time.Time, u *User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTimerLocked()
	s.gen++
	gen := s.gen
	s.token, s.expiresAt, s.user = token, exp, u

	d := exp.Sub(s.now())
	if d < 0 {
		d = 0
	}
	s.timer = time.AfterFunc(d, func() { s.expire(gen) })
}

// revoke clears the session only while it still holds token, so a rejection
// of a superseded token never ends a newer login.
func (s *SessionStore) revoke(token string) bool {
	s.mu.Lock()
	if token == "" || s.token != token {
		s.mu.Unlock()
		return false
	}
	s.clearLocked()
	s.mu.Unlock()
	s.removeFile()
	return true
}

func (s *SessionStore) expire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.token == "" {
		s.mu.Unlock()
		return
	}
	s.clearLocked()
	callbacks := append([]func(){}, s.onExpired...)
	s.mu.Unlock()

	s.removeFile()
	logger.Info("client: session expired")
	for _, fn := range callbacks {
		fn()
	}
}

func (s *SessionStore) clearLocked() {
	s.stopTimerLocked()
	s.gen++
	s.token, s.expiresAt, s.user = "", time.Time{}, nil
	for _, h := range s.holders {
		h.Clear()
	}
}

func (s *SessionStore) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *SessionStore) removeFile() {
	if s.file == nil {
		return
	}
	if err := s.file.Remove(); err != nil {
		logger.Warn("client: token file not removed", "error", err)
	}
}
