package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"kopimakmur/internal/auth"
	"kopimakmur/internal/core"
	"kopimakmur/internal/storage"
)

// Users manages persisted accounts. Every operation requires Administer.
type Users struct {
	store storage.UserStore
}

func NewUsers(store storage.UserStore) *Users {
	return &Users{store: store}
}

func (s *Users) List(ctx context.Context, p auth.Principal) ([]core.User, error) {
	if !p.Can(auth.Administer) {
		return nil, ErrForbidden
	}
	return s.store.ListUsers(ctx)
}

func (s *Users) Create(ctx context.Context, p auth.Principal, username, password string, role core.Role) (core.User, error) {
	if !p.Can(auth.Administer) {
		return core.User{}, ErrForbidden
	}
	u := core.User{Username: strings.TrimSpace(username), Role: role}
	if err := u.Validate(); err != nil {
		return core.User{}, err
	}
	if password == "" {
		return core.User{}, core.ErrEmptyPassword
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return core.User{}, err
	}
	u.PasswordHash = hash

	created, err := s.store.CreateUser(ctx, u)
	if errors.Is(err, storage.ErrAlreadyExists) {
		return core.User{}, ErrDuplicateUsername
	}
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User created", "id", created.ID, "username", created.Username, "role", created.Role)
	return created, nil
}

// Update changes username and role, and the password when one is given.
func (s *Users) Update(ctx context.Context, p auth.Principal, id int64, username, password string, role core.Role) error {
	if !p.Can(auth.Administer) {
		return ErrForbidden
	}
	u := core.User{ID: id, Username: strings.TrimSpace(username), Role: role}
	if err := u.Validate(); err != nil {
		return err
	}
	if password != "" {
		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		u.PasswordHash = hash
	}

	err := s.store.UpdateUser(ctx, u)
	if errors.Is(err, storage.ErrAlreadyExists) {
		return ErrDuplicateUsername
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	slog.InfoContext(ctx, "User updated", "id", id, "password_changed", password != "")
	return nil
}

// Delete removes a user. Transactions recorded by the user are kept.
func (s *Users) Delete(ctx context.Context, p auth.Principal, id int64) error {
	if !p.Can(auth.Administer) {
		return ErrForbidden
	}
	if p.Is(id) {
		return ErrSelfDeletion
	}
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	slog.InfoContext(ctx, "User deleted", "id", id, "by", p.Username)
	return nil
}
