// Package session keeps the client-local auth state of one storefront user:
// the bearer token, the user profile and the remember-me preference.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/storage"
)

const (
	KeyToken           = "auth_token"
	KeyUser            = "user"
	KeyRememberMe      = "admin_remember_me"
	KeyRememberedEmail = "admin_remembered_email"
)

// LoginPath is where an evicted user is sent.
const LoginPath = "/admin/login"

type Session struct {
	id    string
	store storage.Store
}

// New scopes the session to id inside store. An empty id uses store as is,
// which is what the single-user CLI does.
func New(id string, store storage.Store) *Session {
	if id != "" {
		store = storage.ForSession(store, id)
	}
	return &Session{id: id, store: store}
}

func (s *Session) ID() string { return s.id }

// Store is the session's namespace, shared with the cart mirror.
func (s *Session) Store() storage.Store { return s.store }

// Token returns the cached bearer token or "" when logged out.
func (s *Session) Token(ctx context.Context) (string, error) {
	return s.get(ctx, KeyToken)
}

// User returns the cached profile, or nil when logged out.
func (s *Session) User(ctx context.Context) (*clients.User, error) {
	raw, err := s.get(ctx, KeyUser)
	if err != nil || raw == "" {
		return nil, err
	}
	var u clients.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("decode cached user: %w", err)
	}
	return &u, nil
}

func (s *Session) IsAuthenticated(ctx context.Context) bool {
	token, err := s.Token(ctx)
	return err == nil && token != ""
}

// Save caches the result of a login or registration.
func (s *Session) Save(ctx context.Context, res clients.AuthResult) error {
	b, err := json.Marshal(res.User)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, KeyToken, res.Token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	if err := s.store.Set(ctx, KeyUser, string(b)); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// Logout drops the token and the profile. Remember-me survives it.
func (s *Session) Logout(ctx context.Context) error {
	return errors.Join(
		s.store.Delete(ctx, KeyToken),
		s.store.Delete(ctx, KeyUser),
	)
}

// Remember stores the opt-in flag and the email. No password is ever kept;
// the cached token is what keeps an admin signed in. Opting out clears both.
func (s *Session) Remember(ctx context.Context, email string, on bool) error {
	if !on {
		return errors.Join(
			s.store.Delete(ctx, KeyRememberMe),
			s.store.Delete(ctx, KeyRememberedEmail),
		)
	}
	if err := s.store.Set(ctx, KeyRememberMe, "true"); err != nil {
		return err
	}
	return s.store.Set(ctx, KeyRememberedEmail, email)
}

// RememberedEmail returns the email to prefill the login form with.
func (s *Session) RememberedEmail(ctx context.Context) (string, bool, error) {
	flag, err := s.get(ctx, KeyRememberMe)
	if err != nil || flag != "true" {
		return "", false, err
	}
	email, err := s.get(ctx, KeyRememberedEmail)
	if err != nil {
		return "", false, err
	}
	return email, true, nil
}

func (s *Session) get(ctx context.Context, key string) (string, error) {
	v, err := s.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	return v, err
}
