package shop

import (
	"context"
	"strings"

	"localmarket/internal/domain"
	shoprepo "localmarket/internal/repository/shop"
)

type Service struct {
	repo shoprepo.Repository
}

func New(repo shoprepo.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Shop, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]domain.Shop, error) {
	return s.repo.List(ctx)
}
