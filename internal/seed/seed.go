package seed

import (
	"context"
	"fmt"

	"localmarket/internal/domain"
)

type ShopWriter interface {
	Upsert(ctx context.Context, shop domain.Shop) (*domain.Shop, error)
}

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type productSeed struct {
	ID         string
	Name       string
	PriceCents int64
	Stock      int
	Category   string
	ImageURL   string
}

type shopSeed struct {
	Shop     domain.Shop
	Products []productSeed
}

// Fixed ids keep Apply idempotent: every run upserts the same rows.
var demo = []shopSeed{
	{
		Shop: domain.Shop{ID: "5b0c2f1e-3c1a-4d59-9a0e-1f0a6c1d0001", Name: "Green Grocer", Rating: 4.6, Location: "Market Square 1"},
		Products: []productSeed{
			{ID: "9d4e6a52-7b1f-4c3e-8a55-2c7d0f1e1001", Name: "Organic Apples (1kg)", PriceCents: 349, Stock: 120, Category: "fruit"},
			{ID: "9d4e6a52-7b1f-4c3e-8a55-2c7d0f1e1002", Name: "Heirloom Tomatoes", PriceCents: 499, Stock: 60, Category: "vegetables"},
			{ID: "9d4e6a52-7b1f-4c3e-8a55-2c7d0f1e1003", Name: "Free-range Eggs (12)", PriceCents: 429, Stock: 80, Category: "dairy"},
		},
	},
	{
		Shop: domain.Shop{ID: "5b0c2f1e-3c1a-4d59-9a0e-1f0a6c1d0002", Name: "Corner Bakery", Rating: 4.8, Location: "Baker Street 12"},
		Products: []productSeed{
			{ID: "9d4e6a52-7b1f-4c3e-8a55-2c7d0f1e2001", Name: "Sourdough Loaf", PriceCents: 650, Stock: 25, Category: "bakery"},
			{ID: "9d4e6a52-7b1f-4c3e-8a55-2c7d0f1e2002", Name: "Butter Croissant", PriceCents: 225, Stock: 40, Category: "bakery"},
		},
	},
	{
		Shop: domain.Shop{ID: "5b0c2f1e-3c1a-4d59-9a0e-1f0a6c1d0003", Name: "Hill Farm Dairy", Rating: 4.3, Location: "Route 9"},
		Products: []productSeed{
			{ID: "9d4e6a52-7b1f-4c3e-8a55-2c7d0f1e3001", Name: "Raw Milk (1l)", PriceCents: 189, Stock: 50, Category: "dairy"},
			{ID: "9d4e6a52-7b1f-4c3e-8a55-2c7d0f1e3002", Name: "Aged Cheddar", PriceCents: 899, Stock: 15, Category: "dairy"},
		},
	},
}

// Apply upserts demo shops and products for manual testing.
func Apply(ctx context.Context, shops ShopWriter, products ProductWriter) (int, error) {
	count := 0
	for _, s := range demo {
		shop, err := shops.Upsert(ctx, s.Shop)
		if err != nil {
			return count, fmt.Errorf("upsert shop %s: %w", s.Shop.Name, err)
		}
		for _, p := range s.Products {
			_, err := products.Upsert(ctx, domain.Product{
				ID:         p.ID,
				ShopID:     shop.ID,
				Name:       p.Name,
				PriceCents: p.PriceCents,
				Stock:      p.Stock,
				Category:   p.Category,
				ImageURL:   p.ImageURL,
			})
			if err != nil {
				return count, fmt.Errorf("upsert product %s: %w", p.Name, err)
			}
			count++
		}
	}
	return count, nil
}
