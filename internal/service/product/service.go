package product

import (
	"context"
	"strings"

	"localmarket/internal/domain"
	productrepo "localmarket/internal/repository/product"
)

type Service struct {
	repo productrepo.Repository
}

func New(repo productrepo.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, category, shopID string) ([]domain.Product, error) {
	return s.repo.List(ctx, productrepo.Filter{
		Category: strings.TrimSpace(category),
		ShopID:   strings.TrimSpace(shopID),
	})
}

// Get returns domain.ErrNotFound for unknown or blank ids.
func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}
