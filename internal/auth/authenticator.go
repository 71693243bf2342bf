package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"kopimakmur/internal/core"
	"kopimakmur/internal/storage"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// UserLookup is the part of the user store the authenticator needs.
type UserLookup interface {
	GetUser(ctx context.Context, id int64) (core.User, error)
	GetUserByUsername(ctx context.Context, username string) (core.User, error)
}

// Authenticator resolves a username/password pair in two passes: seed
// accounts first, then the persisted user store.
type Authenticator struct {
	seeds *SeedProvider
	users UserLookup
}

// NewAuthenticator wires the two identity sources. seeds may be nil to
// disable seed accounts.
func NewAuthenticator(seeds *SeedProvider, users UserLookup) *Authenticator {
	return &Authenticator{seeds: seeds, users: users}
}

func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (Principal, error) {
	if username == "" || password == "" {
		return Principal{}, ErrInvalidCredentials
	}

	if p, ok := a.seeds.Lookup(username, password); ok {
		slog.WarnContext(ctx, "Seed account login", "username", username, "role", p.Role)
		return p, nil
	}

	u, err := a.users.GetUserByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return Principal{}, ErrInvalidCredentials
	}
	if err != nil {
		return Principal{}, fmt.Errorf("lookup user: %w", err)
	}
	if !CheckPassword(u.PasswordHash, password) {
		return Principal{}, ErrInvalidCredentials
	}

	return Principal{UserID: u.ID, Username: u.Username, Role: u.Role}, nil
}

// Refresh re-resolves a principal read from a session cookie so that a
// deleted or demoted account loses its access before the cookie expires.
// It returns ErrNoSession when the identity no longer exists.
func (a *Authenticator) Refresh(ctx context.Context, p Principal) (Principal, error) {
	if p.Seed {
		current, ok := a.seeds.Account(p.Username)
		if !ok {
			return Principal{}, ErrNoSession
		}
		return current, nil
	}

	u, err := a.users.GetUser(ctx, p.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return Principal{}, ErrNoSession
	}
	if err != nil {
		return Principal{}, fmt.Errorf("lookup user %d: %w", p.UserID, err)
	}
	return Principal{UserID: u.ID, Username: u.Username, Role: u.Role}, nil
}
