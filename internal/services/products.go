package services

import (
	"context"
	"fmt"
	"log/slog"

	"kopimakmur/internal/auth"
	"kopimakmur/internal/core"
	"kopimakmur/internal/storage"
)

// Products manages the catalog. Every operation requires Administer.
type Products struct {
	store storage.ProductStore
}

func NewProducts(store storage.ProductStore) *Products {
	return &Products{store: store}
}

func (s *Products) List(ctx context.Context, p auth.Principal) ([]core.Product, error) {
	if !p.Can(auth.Administer) {
		return nil, ErrForbidden
	}
	return s.store.ListProducts(ctx)
}

func (s *Products) Create(ctx context.Context, p auth.Principal, prod core.Product) (core.Product, error) {
	if !p.Can(auth.Administer) {
		return core.Product{}, ErrForbidden
	}
	if err := prod.Validate(); err != nil {
		return core.Product{}, err
	}
	created, err := s.store.CreateProduct(ctx, prod)
	if err != nil {
		return core.Product{}, fmt.Errorf("create product: %w", err)
	}
	slog.InfoContext(ctx, "Product created", "id", created.ID, "name", created.Name)
	return created, nil
}

func (s *Products) Update(ctx context.Context, p auth.Principal, prod core.Product) error {
	if !p.Can(auth.Administer) {
		return ErrForbidden
	}
	if err := prod.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateProduct(ctx, prod); err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	slog.InfoContext(ctx, "Product updated", "id", prod.ID)
	return nil
}

func (s *Products) Delete(ctx context.Context, p auth.Principal, id int64) error {
	if !p.Can(auth.Administer) {
		return ErrForbidden
	}
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	slog.InfoContext(ctx, "Product deleted", "id", id)
	return nil
}
