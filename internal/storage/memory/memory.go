// Package memory is a process-local Store used for demos and tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"kopimakmur/internal/core"
	"kopimakmur/internal/report"
	"kopimakmur/internal/storage"
)

type Store struct {
	mu       sync.Mutex
	nextIDs  map[string]int64 // per table, like an autoincrement column
	txs      map[int64]core.Transaction
	users    map[int64]core.User
	products map[int64]core.Product
	closed   bool
}

var _ storage.Store = (*Store)(nil)

// ErrClosed is returned by reads after Close.
var ErrClosed = errors.New("memory store closed")

func New() *Store {
	return &Store{
		nextIDs:  make(map[string]int64),
		txs:      make(map[int64]core.Transaction),
		users:    make(map[int64]core.User),
		products: make(map[int64]core.Product),
	}
}

func (s *Store) id(table string) int64 {
	s.nextIDs[table]++
	return s.nextIDs[table]
}

func (s *Store) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Store) CreateTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx.ID = s.id("transactions")
	s.txs[tx.ID] = tx
	return tx, nil
}

func (s *Store) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.txs[id]
	if !ok {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, storage.ErrNotFound)
	}
	return tx, nil
}

func (s *Store) UpdateTransaction(_ context.Context, tx core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.txs[tx.ID]
	if !ok {
		return fmt.Errorf("transaction %d: %w", tx.ID, storage.ErrNotFound)
	}
	tx.OwnerID = old.OwnerID
	s.txs[tx.ID] = tx
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txs[id]; !ok {
		return fmt.Errorf("transaction %d: %w", id, storage.ErrNotFound)
	}
	delete(s.txs, id)
	return nil
}

func (s *Store) ListTransactions(_ context.Context, f report.Filter, limit int) ([]core.Transaction, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	out := make([]core.Transaction, 0, len(s.txs))
	for _, tx := range s.txs {
		if f.Match(tx) {
			out = append(out, tx)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) CreateUser(_ context.Context, u core.User) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.usernameTaken(u.Username, 0) {
		return core.User{}, fmt.Errorf("user %q: %w", u.Username, storage.ErrAlreadyExists)
	}
	u.ID = s.id("users")
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) usernameTaken(username string, except int64) bool {
	for id, u := range s.users {
		if id != except && u.Username == username {
			return true
		}
	}
	return false
}

func (s *Store) GetUser(_ context.Context, id int64) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return core.User{}, fmt.Errorf("user %d: %w", id, storage.ErrNotFound)
	}
	return u, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return core.User{}, fmt.Errorf("user %q: %w", username, storage.ErrNotFound)
}

func (s *Store) UpdateUser(_ context.Context, u core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.users[u.ID]
	if !ok {
		return fmt.Errorf("user %d: %w", u.ID, storage.ErrNotFound)
	}
	if s.usernameTaken(u.Username, u.ID) {
		return fmt.Errorf("user %q: %w", u.Username, storage.ErrAlreadyExists)
	}
	if strings.TrimSpace(u.PasswordHash) == "" {
		u.PasswordHash = old.PasswordHash
	}
	s.users[u.ID] = u
	return nil
}

func (s *Store) DeleteUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return fmt.Errorf("user %d: %w", id, storage.ErrNotFound)
	}
	delete(s.users, id)
	return nil
}

func (s *Store) ListUsers(context.Context) ([]core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	out := make([]core.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CountUsers(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	return len(s.users), nil
}

func (s *Store) CreateProduct(_ context.Context, p core.Product) (core.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id("products")
	s.products[p.ID] = p
	return p, nil
}

func (s *Store) GetProduct(_ context.Context, id int64) (core.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return core.Product{}, fmt.Errorf("product %d: %w", id, storage.ErrNotFound)
	}
	return p, nil
}

func (s *Store) UpdateProduct(_ context.Context, p core.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		return fmt.Errorf("product %d: %w", p.ID, storage.ErrNotFound)
	}
	s.products[p.ID] = p
	return nil
}

func (s *Store) DeleteProduct(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return fmt.Errorf("product %d: %w", id, storage.ErrNotFound)
	}
	delete(s.products, id)
	return nil
}

func (s *Store) ListProducts(context.Context) ([]core.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	out := make([]core.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
