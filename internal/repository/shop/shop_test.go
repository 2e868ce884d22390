package shop

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"localmarket/internal/dbtest"
	"localmarket/internal/domain"
)

func TestPostgres_UpsertAndGet(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)
	repo := NewPostgres(pool, zerolog.Nop())

	created, err := repo.Upsert(ctx, domain.Shop{Name: "Corner Bakery", Rating: 4.5, Location: "Old Town"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected id")
	}

	updated, err := repo.Upsert(ctx, domain.Shop{ID: created.ID, Name: "Corner Bakery & Cafe", Rating: 4.8})
	if err != nil {
		t.Fatalf("upsert update: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatalf("expected same id after update")
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Corner Bakery & Cafe" || got.Rating != 4.8 || got.Location != "" || got.OwnerID != nil {
		t.Fatalf("unexpected shop %+v", got)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 shop, got %d", len(list))
	}

	if _, err := repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
