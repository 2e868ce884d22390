package product

import (
	"context"

	"localmarket/internal/domain"
)

// Filter narrows List; empty fields match everything.
type Filter struct {
	Category string
	ShopID   string
}

type Repository interface {
	List(ctx context.Context, f Filter) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
}
