package shop

import (
	"context"

	"localmarket/internal/domain"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Shop, error)
	List(ctx context.Context) ([]domain.Shop, error)
	Upsert(ctx context.Context, s domain.Shop) (*domain.Shop, error)
}
