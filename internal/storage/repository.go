package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"kopimakmur/internal/core"
	"kopimakmur/internal/report"
)

// SQLiteRepository is the default Store, backed by a single database file.
type SQLiteRepository struct {
	db *sql.DB
}

var _ Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := "file:" + dbPath + "?_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

const transactionColumns = "id, tx_date, kind, category, description, amount, unit, user_id"

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (tx_date, kind, category, description, amount, unit, user_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.Date.String(), string(tx.Kind), tx.Category, tx.Description, tx.Amount.Rupiah, tx.Unit, tx.OwnerID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("read transaction id: %w", err)
	}
	tx.ID = id

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", tx.ID,
		"kind", tx.Kind,
		"category", tx.Category,
		"amount", tx.Amount.Rupiah,
		"date", tx.Date.String())

	return tx, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, tx core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET tx_date = ?, kind = ?, category = ?, description = ?, amount = ?, unit = ?
		 WHERE id = ?`,
		tx.Date.String(), string(tx.Kind), tx.Category, tx.Description, tx.Amount.Rupiah, tx.Unit, tx.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return expectAffected(res, "transaction", tx.ID)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return expectAffected(res, "transaction", id)
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, f report.Filter, limit int) ([]core.Transaction, error) {
	var q strings.Builder
	q.WriteString("SELECT " + transactionColumns + " FROM transactions")

	clause, args := f.Where(report.SQLite, 1)
	if clause != "" {
		q.WriteString(" WHERE " + clause)
	}
	q.WriteString(" ORDER BY tx_date DESC, id DESC")
	if limit > 0 {
		q.WriteString(" LIMIT " + strconv.Itoa(limit))
	}

	rows, err := r.db.QueryContext(ctx, q.String(), args...)
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

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (core.Transaction, error) {
	var (
		tx   core.Transaction
		date string
		kind string
	)
	if err := s.Scan(&tx.ID, &date, &kind, &tx.Category, &tx.Description, &tx.Amount.Rupiah, &tx.Unit, &tx.OwnerID); err != nil {
		return core.Transaction{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.Date = d
	tx.Kind = core.Kind(kind)
	return tx, nil
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (username, password_hash, role) VALUES (?, ?, ?)",
		u.Username, u.PasswordHash, string(u.Role))
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, fmt.Errorf("user %q: %w", u.Username, ErrAlreadyExists)
		}
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	if u.ID, err = res.LastInsertId(); err != nil {
		return core.User{}, fmt.Errorf("read user id: %w", err)
	}

	slog.InfoContext(ctx, "User saved to SQLite", "id", u.ID, "username", u.Username, "role", u.Role)
	return u, nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (core.User, error) {
	return r.getUser(ctx, "id = ?", id)
}

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	return r.getUser(ctx, "username = ?", username)
}

func (r *SQLiteRepository) getUser(ctx context.Context, where string, arg any) (core.User, error) {
	var (
		u    core.User
		role string
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT id, username, password_hash, role FROM users WHERE "+where, arg).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, fmt.Errorf("user %v: %w", arg, ErrNotFound)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	u.Role = core.Role(role)
	return u, nil
}

func (r *SQLiteRepository) UpdateUser(ctx context.Context, u core.User) error {
	var (
		res sql.Result
		err error
	)
	if u.PasswordHash == "" {
		res, err = r.db.ExecContext(ctx,
			"UPDATE users SET username = ?, role = ? WHERE id = ?",
			u.Username, string(u.Role), u.ID)
	} else {
		res, err = r.db.ExecContext(ctx,
			"UPDATE users SET username = ?, role = ?, password_hash = ? WHERE id = ?",
			u.Username, string(u.Role), u.PasswordHash, u.ID)
	}
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %q: %w", u.Username, ErrAlreadyExists)
		}
		return fmt.Errorf("update user: %w", err)
	}
	return expectAffected(res, "user", u.ID)
}

func (r *SQLiteRepository) DeleteUser(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return expectAffected(res, "user", id)
}

func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]core.User, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, username, password_hash, role FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []core.User
	for rows.Next() {
		var (
			u    core.User
			role string
		)
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &role); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.Role = core.Role(role)
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) CreateProduct(ctx context.Context, p core.Product) (core.Product, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO products (name, category, price, stock) VALUES (?, ?, ?, ?)",
		p.Name, p.Category, p.Price.Rupiah, p.Stock)
	if err != nil {
		return core.Product{}, fmt.Errorf("insert product: %w", err)
	}
	if p.ID, err = res.LastInsertId(); err != nil {
		return core.Product{}, fmt.Errorf("read product id: %w", err)
	}

	slog.InfoContext(ctx, "Product saved to SQLite", "id", p.ID, "name", p.Name)
	return p, nil
}

func (r *SQLiteRepository) GetProduct(ctx context.Context, id int64) (core.Product, error) {
	var p core.Product
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, category, price, stock FROM products WHERE id = ?", id).
		Scan(&p.ID, &p.Name, &p.Category, &p.Price.Rupiah, &p.Stock)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Product{}, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) UpdateProduct(ctx context.Context, p core.Product) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE products SET name = ?, category = ?, price = ?, stock = ? WHERE id = ?",
		p.Name, p.Category, p.Price.Rupiah, p.Stock, p.ID)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return expectAffected(res, "product", p.ID)
}

func (r *SQLiteRepository) DeleteProduct(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return expectAffected(res, "product", id)
}

func (r *SQLiteRepository) ListProducts(ctx context.Context) ([]core.Product, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, category, price, stock FROM products ORDER BY id")
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

func expectAffected(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", entity, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
