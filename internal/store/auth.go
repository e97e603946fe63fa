package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/naveenspark/moviedash/internal/logger"
	"github.com/naveenspark/moviedash/pkg/client"
	"github.com/naveenspark/moviedash/pkg/domain"
)

// AuthAPI is the part of the backend client the auth store uses.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*domain.AuthPayload, error)
	Register(ctx context.Context, username, email, password string) (*domain.AuthPayload, error)
	Me(ctx context.Context) (*domain.User, error)
	Logout(ctx context.Context) error
	SetToken(token string)
}

// SessionListener is called after every session change. s is nil after logout.
type SessionListener func(ctx context.Context, s *domain.Session)

// AuthStore owns the signed-in session. The token is persisted and installed
// on the backend client before any listener runs; on logout the token is
// cleared before listeners see nil.
type AuthStore struct {
	api    AuthAPI
	tokens TokenStore
	log    logrus.FieldLogger
	now    func() time.Time

	mu        sync.RWMutex
	session   *domain.Session
	loading   bool
	err       error
	listeners []SessionListener
}

// NewAuthStore creates an auth store. log may be nil.
func NewAuthStore(api AuthAPI, tokens TokenStore, log logrus.FieldLogger) *AuthStore {
	if log == nil {
		log = logger.Log
	}
	return &AuthStore{
		api:    api,
		tokens: tokens,
		log:    log.WithField("store", "auth"),
		now:    time.Now,
	}
}

// Subscribe registers l. Listeners run in registration order on the caller's
// goroutine.
func (a *AuthStore) Subscribe(l SessionListener) {
	a.mu.Lock()
	a.listeners = append(a.listeners, l)
	a.mu.Unlock()
}

// Session returns a copy of the current session, or nil.
func (a *AuthStore) Session() *domain.Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.session == nil {
		return nil
	}
	s := *a.session
	return &s
}

// Loading reports whether a login, register or logout is in flight.
func (a *AuthStore) Loading() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loading
}

// Err returns the error of the last auth action, if it failed.
func (a *AuthStore) Err() error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.err
}

// Login validates the form, exchanges credentials for a token and starts a session.
func (a *AuthStore) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if err := domain.ValidateLogin(email, password); err != nil {
		a.fail(err)
		return err
	}
	a.begin()
	payload, err := a.api.Login(ctx, email, password)
	if err != nil {
		a.log.WithError(err).Info("login failed")
		a.fail(err)
		return err
	}
	return a.establish(ctx, payload)
}

// Register validates the form, creates an account and starts a session.
func (a *AuthStore) Register(ctx context.Context, username, email, password string) error {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if err := domain.ValidateRegistration(username, email, password); err != nil {
		a.fail(err)
		return err
	}
	a.begin()
	payload, err := a.api.Register(ctx, username, email, password)
	if err != nil {
		a.log.WithError(err).Info("register failed")
		a.fail(err)
		return err
	}
	return a.establish(ctx, payload)
}

// HasToken reports whether a token is held by the session or in storage.
// A stored token counts even when Restore could not verify it.
func (a *AuthStore) HasToken() bool {
	return a.currentToken() != ""
}

func (a *AuthStore) currentToken() string {
	if s := a.Session(); s != nil {
		return s.Token
	}
	token, err := a.tokens.Load()
	if err != nil {
		a.log.WithError(err).Warn("could not read stored token")
		return ""
	}
	return token
}

// Logout ends the session. The backend is told whenever a token is held, even
// one Restore could not verify. Backend failures are ignored: the token is
// always dropped locally and listeners always see nil.
func (a *AuthStore) Logout(ctx context.Context) error {
	a.begin()
	if token := a.currentToken(); token != "" {
		a.api.SetToken(token)
		if err := a.api.Logout(ctx); err != nil {
			a.log.WithError(err).Debug("backend logout failed, treating as logged out")
		}
	}
	a.api.SetToken("")
	if err := a.tokens.Clear(); err != nil {
		a.log.WithError(err).Warn("could not remove stored token")
	}

	a.mu.Lock()
	a.session = nil
	a.loading = false
	a.err = nil
	a.mu.Unlock()

	a.log.Info("logged out")
	a.notify(ctx, nil)
	return nil
}

// Restore resumes the session saved by a previous run. An expired or rejected
// token is deleted and Restore returns nil with no session. Other failures
// (backend unreachable) keep the token for the next run and are returned.
func (a *AuthStore) Restore(ctx context.Context) error {
	token, err := a.tokens.Load()
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}
	if a.expired(token) {
		a.log.Info("stored token expired, discarding")
		if err := a.tokens.Clear(); err != nil {
			a.log.WithError(err).Warn("could not remove stored token")
		}
		return nil
	}

	a.begin()
	a.api.SetToken(token)
	user, err := a.api.Me(ctx)
	if err != nil {
		a.api.SetToken("")
		if client.IsUnauthorized(err) {
			a.log.Info("stored token rejected, discarding")
			if cerr := a.tokens.Clear(); cerr != nil {
				a.log.WithError(cerr).Warn("could not remove stored token")
			}
			a.fail(nil)
			return nil
		}
		a.fail(err)
		return err
	}
	return a.establish(ctx, &domain.AuthPayload{Token: token, User: *user})
}

func (a *AuthStore) establish(ctx context.Context, p *domain.AuthPayload) error {
	if p == nil || p.Token == "" {
		err := errors.New("backend returned no token")
		a.fail(err)
		return err
	}
	if err := a.tokens.Save(p.Token); err != nil {
		// The session still works for this run.
		a.log.WithError(err).Warn("could not persist token")
	}
	a.api.SetToken(p.Token)

	s := &domain.Session{User: p.User, Token: p.Token}
	a.mu.Lock()
	a.session = s
	a.loading = false
	a.err = nil
	a.mu.Unlock()

	a.log.WithFields(logrus.Fields{"user_id": p.User.ID, "username": p.User.Username}).Info("session started")
	copied := *s
	a.notify(ctx, &copied)
	return nil
}

func (a *AuthStore) notify(ctx context.Context, s *domain.Session) {
	a.mu.RLock()
	listeners := make([]SessionListener, len(a.listeners))
	copy(listeners, a.listeners)
	a.mu.RUnlock()

	for _, l := range listeners {
		l(ctx, s)
	}
}

func (a *AuthStore) begin() {
	a.mu.Lock()
	a.loading = true
	a.err = nil
	a.mu.Unlock()
}

func (a *AuthStore) fail(err error) {
	a.mu.Lock()
	a.loading = false
	a.err = err
	a.mu.Unlock()
}

// expired reads the exp claim without verifying the signature; only the
// backend can do that. Tokens that are not JWTs are left to the backend.
func (a *AuthStore) expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(a.now())
}
