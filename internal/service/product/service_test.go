package product

import (
	"context"
	"errors"
	"testing"

	"localmarket/internal/domain"
	productrepo "localmarket/internal/repository/product"
)

type stubRepo struct {
	lastFilter productrepo.Filter
	lastID     string
	product    *domain.Product
}

func (s *stubRepo) List(_ context.Context, f productrepo.Filter) ([]domain.Product, error) {
	s.lastFilter = f
	return []domain.Product{}, nil
}

func (s *stubRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	s.lastID = id
	if s.product == nil {
		return nil, domain.ErrNotFound
	}
	return s.product, nil
}

func (s *stubRepo) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	return &p, nil
}

func TestListTrimsFilters(t *testing.T) {
	repo := &stubRepo{}
	svc := New(repo)
	if _, err := svc.List(context.Background(), " food ", " s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastFilter.Category != "food" || repo.lastFilter.ShopID != "s1" {
		t.Fatalf("filters not trimmed: %+v", repo.lastFilter)
	}
}

func TestGetBlankID(t *testing.T) {
	repo := &stubRepo{product: &domain.Product{ID: "p1"}}
	svc := New(repo)
	if _, err := svc.Get(context.Background(), "   "); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if repo.lastID != "" {
		t.Fatalf("repo should not be queried for blank id")
	}
	got, err := svc.Get(context.Background(), " p1 ")
	if err != nil || got.ID != "p1" || repo.lastID != "p1" {
		t.Fatalf("unexpected get result %+v err=%v id=%q", got, err, repo.lastID)
	}
}
