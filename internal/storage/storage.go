package storage

import (
	"context"
	"errors"

	"kopimakmur/internal/core"
	"kopimakmur/internal/report"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

type (
	// TransactionStore persists cash-flow rows. ListTransactions returns
	// rows matching the filter, newest date first, ties broken by id desc.
	// A limit <= 0 returns every matching row.
	TransactionStore interface {
		CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
		GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, tx core.Transaction) error
		DeleteTransaction(ctx context.Context, id int64) error
		ListTransactions(ctx context.Context, f report.Filter, limit int) ([]core.Transaction, error)
	}

	// UserStore persists accounts. UpdateUser keeps the stored password
	// hash when the given one is empty.
	UserStore interface {
		CreateUser(ctx context.Context, u core.User) (core.User, error)
		GetUser(ctx context.Context, id int64) (core.User, error)
		GetUserByUsername(ctx context.Context, username string) (core.User, error)
		UpdateUser(ctx context.Context, u core.User) error
		DeleteUser(ctx context.Context, id int64) error
		ListUsers(ctx context.Context) ([]core.User, error)
		CountUsers(ctx context.Context) (int, error)
	}

	ProductStore interface {
		CreateProduct(ctx context.Context, p core.Product) (core.Product, error)
		GetProduct(ctx context.Context, id int64) (core.Product, error)
		UpdateProduct(ctx context.Context, p core.Product) error
		DeleteProduct(ctx context.Context, id int64) error
		ListProducts(ctx context.Context) ([]core.Product, error)
	}

	Store interface {
		TransactionStore
		UserStore
		ProductStore
		Ping(ctx context.Context) error
		Close() error
	}
)
