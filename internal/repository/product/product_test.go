package product

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"localmarket/internal/dbtest"
	"localmarket/internal/domain"
)

func TestPostgres_ListAndGet(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)

	bakery := dbtest.InsertShop(t, pool, "Corner Bakery")
	florist := dbtest.InsertShop(t, pool, "Petals")
	bread := dbtest.InsertProduct(t, pool, bakery, "Sourdough", 450, "food")
	dbtest.InsertProduct(t, pool, florist, "Tulips", 1200, "flowers")

	repo := NewPostgres(pool, zerolog.Nop())

	all, err := repo.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 products, got %d", len(all))
	}

	food, err := repo.List(ctx, Filter{Category: "food"})
	if err != nil {
		t.Fatalf("List category: %v", err)
	}
	if len(food) != 1 || food[0].ID != bread {
		t.Fatalf("unexpected category filter result %+v", food)
	}

	byShop, err := repo.List(ctx, Filter{ShopID: florist})
	if err != nil {
		t.Fatalf("List shop: %v", err)
	}
	if len(byShop) != 1 || byShop[0].Name != "Tulips" {
		t.Fatalf("unexpected shop filter result %+v", byShop)
	}

	got, err := repo.GetByID(ctx, bread)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ShopName != "Corner Bakery" || got.PriceCents != 450 || got.ShopID != bakery {
		t.Fatalf("unexpected product %+v", got)
	}

	if _, err := repo.GetByID(ctx, "not-a-uuid"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgres_Upsert(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)
	shopID := dbtest.InsertShop(t, pool, "Corner Bakery")

	repo := NewPostgres(pool, zerolog.Nop())

	p, err := repo.Upsert(ctx, domain.Product{ShopID: shopID, Name: "Rye", PriceCents: 300, Stock: 4})
	if err != nil {
		t.Fatalf("Upsert insert: %v", err)
	}
	if p.ID == "" {
		t.Fatalf("expected ID set")
	}

	updated, err := repo.Upsert(ctx, domain.Product{ID: p.ID, ShopID: shopID, Name: "Rye loaf", PriceCents: 350, Category: "food"})
	if err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	if updated.ID != p.ID {
		t.Fatalf("expected same ID after update")
	}

	got, err := repo.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Rye loaf" || got.PriceCents != 350 || got.Category != "food" {
		t.Fatalf("unexpected updated product %+v", got)
	}
}
