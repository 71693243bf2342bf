// Package postgres is the pgx-backed Store for deployments that run a
// shared database instead of a local SQLite file.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"kopimakmur/internal/core"
	"kopimakmur/internal/report"
	"kopimakmur/internal/storage"
)

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

const uniqueViolation = "23505"

type Store struct {
	pool *pgxpool.Pool
}

// New connects to databaseURL and applies the schema.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'guest',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id BIGSERIAL PRIMARY KEY,
			tx_date DATE NOT NULL,
			kind TEXT NOT NULL CHECK (kind IN ('income', 'expense')),
			category TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			amount BIGINT NOT NULL CHECK (amount >= 0),
			unit TEXT NOT NULL DEFAULT '',
			user_id BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS transactions_date_idx ON transactions (tx_date);`,
		`CREATE TABLE IF NOT EXISTS products (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			price BIGINT NOT NULL CHECK (price >= 0),
			stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

const transactionColumns = "id, tx_date, kind, category, description, amount, unit, user_id"

func (s *Store) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO transactions (tx_date, kind, category, description, amount, unit, user_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		tx.Date.Time, string(tx.Kind), tx.Category, tx.Description, tx.Amount.Rupiah, tx.Unit, tx.OwnerID).
		Scan(&tx.ID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to Postgres",
		"id", tx.ID,
		"kind", tx.Kind,
		"category", tx.Category,
		"amount", tx.Amount.Rupiah)

	return tx, nil
}

func (s *Store) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+transactionColumns+" FROM transactions WHERE id = $1", id)
	tx, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, tx core.Transaction) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE transactions
		 SET tx_date = $1, kind = $2, category = $3, description = $4, amount = $5, unit = $6
		 WHERE id = $7`,
		tx.Date.Time, string(tx.Kind), tx.Category, tx.Description, tx.Amount.Rupiah, tx.Unit, tx.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return expectAffected(tag, "transaction", tx.ID)
}

func (s *Store) DeleteTransaction(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM transactions WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return expectAffected(tag, "transaction", id)
}

func (s *Store) ListTransactions(ctx context.Context, f report.Filter, limit int) ([]core.Transaction, error) {
	var q strings.Builder
	q.WriteString("SELECT " + transactionColumns + " FROM transactions")

	clause, args := f.Where(report.Postgres, 1)
	if clause != "" {
		q.WriteString(" WHERE " + clause)
	}
	q.WriteString(" ORDER BY tx_date DESC, id DESC")
	if limit > 0 {
		q.WriteString(" LIMIT " + strconv.Itoa(limit))
	}

	rows, err := s.pool.Query(ctx, q.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func scanTransaction(row pgx.Row) (core.Transaction, error) {
	var (
		tx   core.Transaction
		date time.Time
		kind string
	)
	if err := row.Scan(&tx.ID, &date, &kind, &tx.Category, &tx.Description, &tx.Amount.Rupiah, &tx.Unit, &tx.OwnerID); err != nil {
		return core.Transaction{}, err
	}
	tx.Date = core.DateOf(date)
	tx.Kind = core.Kind(kind)
	return tx, nil
}

func (s *Store) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	err := s.pool.QueryRow(ctx,
		"INSERT INTO users (username, password_hash, role) VALUES ($1, $2, $3) RETURNING id",
		u.Username, u.PasswordHash, string(u.Role)).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, fmt.Errorf("user %q: %w", u.Username, storage.ErrAlreadyExists)
		}
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (core.User, error) {
	return s.getUser(ctx, "id = $1", id)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	return s.getUser(ctx, "username = $1", username)
}

func (s *Store) getUser(ctx context.Context, where string, arg any) (core.User, error) {
	row := s.pool.QueryRow(ctx, "SELECT id, username, password_hash, role FROM users WHERE "+where, arg)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.User{}, fmt.Errorf("user %v: %w", arg, storage.ErrNotFound)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (core.User, error) {
	var (
		u    core.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &role); err != nil {
		return core.User{}, err
	}
	u.Role = core.Role(role)
	return u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u core.User) error {
	var (
		tag pgconn.CommandTag
		err error
	)
	if u.PasswordHash == "" {
		tag, err = s.pool.Exec(ctx,
			"UPDATE users SET username = $1, role = $2 WHERE id = $3",
			u.Username, string(u.Role), u.ID)
	} else {
		tag, err = s.pool.Exec(ctx,
			"UPDATE users SET username = $1, role = $2, password_hash = $3 WHERE id = $4",
			u.Username, string(u.Role), u.PasswordHash, u.ID)
	}
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %q: %w", u.Username, storage.ErrAlreadyExists)
		}
		return fmt.Errorf("update user: %w", err)
	}
	return expectAffected(tag, "user", u.ID)
}

func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return expectAffected(tag, "user", id)
}

func (s *Store) ListUsers(ctx context.Context) ([]core.User, error) {
	rows, err := s.pool.Query(ctx, "SELECT id, username, password_hash, role FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []core.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (s *Store) CreateProduct(ctx context.Context, p core.Product) (core.Product, error) {
	err := s.pool.QueryRow(ctx,
		"INSERT INTO products (name, category, price, stock) VALUES ($1, $2, $3, $4) RETURNING id",
		p.Name, p.Category, p.Price.Rupiah, p.Stock).Scan(&p.ID)
	if err != nil {
		return core.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (core.Product, error) {
	var p core.Product
	err := s.pool.QueryRow(ctx,
		"SELECT id, name, category, price, stock FROM products WHERE id = $1", id).
		Scan(&p.ID, &p.Name, &p.Category, &p.Price.Rupiah, &p.Stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Product{}, fmt.Errorf("product %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return core.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (s *Store) UpdateProduct(ctx context.Context, p core.Product) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE products SET name = $1, category = $2, price = $3, stock = $4 WHERE id = $5",
		p.Name, p.Category, p.Price.Rupiah, p.Stock, p.ID)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return expectAffected(tag, "product", p.ID)
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return expectAffected(tag, "product", id)
}

func (s *Store) ListProducts(ctx context.Context) ([]core.Product, error) {
	rows, err := s.pool.Query(ctx, "SELECT id, name, category, price, stock FROM products ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []core.Product
	for rows.Next() {
		var p core.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Price.Rupiah, &p.Stock); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func expectAffected(tag pgconn.CommandTag, entity string, id int64) error {
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %d: %w", entity, id, storage.ErrNotFound)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
