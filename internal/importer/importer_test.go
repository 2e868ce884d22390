package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"localmarket/internal/domain"
)

type stubProductRepo struct {
	items []domain.Product
	err   error
}

func (s *stubProductRepo) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.items = append(s.items, p)
	return &p, nil
}

type stubShopRepo struct {
	items []domain.Shop
}

func (s *stubShopRepo) Upsert(_ context.Context, shop domain.Shop) (*domain.Shop, error) {
	if shop.ID == "" {
		shop.ID = "generated-" + shop.Name
	}
	s.items = append(s.items, shop)
	return &shop, nil
}

func TestCSVImporter_Run(t *testing.T) {
	csvData := `id,shop_id,shop_name,name,price_cents,image_url,stock,category
00000000-0000-0000-0000-000000000001,,Green Grocer,Apple,125,https://example.com/apple.jpg,40,fruit
,,green grocer,Pear,99,,12,fruit
,00000000-0000-0000-0000-0000000000aa,,Sourdough,450,,3,bakery
,,,,,,,
`
	products := &stubProductRepo{}
	shops := &stubShopRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), products, shops, zerolog.Nop())

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 products imported, got %d", count)
	}
	if len(shops.items) != 1 {
		t.Fatalf("expected shop upserted once by name, got %d", len(shops.items))
	}

	apple := products.items[0]
	if apple.ID != "00000000-0000-0000-0000-000000000001" || apple.ShopID != "generated-Green Grocer" ||
		apple.PriceCents != 125 || apple.Stock != 40 || apple.Category != "fruit" || apple.ImageURL == "" {
		t.Fatalf("unexpected product data: %+v", apple)
	}
	if products.items[1].ShopID != apple.ShopID {
		t.Fatalf("expected pear in the same shop, got %q", products.items[1].ShopID)
	}
	if products.items[2].ShopID != "00000000-0000-0000-0000-0000000000aa" {
		t.Fatalf("expected shop id to be kept, got %q", products.items[2].ShopID)
	}
}

func TestCSVImporter_DecimalPrice(t *testing.T) {
	csvData := "shop_name,name,price\nBakery,Bread,3.99\nBakery,Roll,0.5\n"
	products := &stubProductRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), products, &stubShopRepo{}, zerolog.Nop())

	if _, err := imp.Run(context.Background()); err != nil {
		t.Fatalf("import run: %v", err)
	}
	if products.items[0].PriceCents != 399 || products.items[1].PriceCents != 50 {
		t.Fatalf("unexpected prices: %d, %d", products.items[0].PriceCents, products.items[1].PriceCents)
	}
}

func TestCSVImporter_InvalidRows(t *testing.T) {
	cases := map[string]string{
		"missing name":   "shop_name,name,price_cents\nShop,,100\n",
		"missing shop":   "shop_name,name,price_cents\n,Thing,100\n",
		"bad id":         "id,shop_name,name,price_cents\nnot-a-uuid,Shop,Thing,100\n",
		"negative price": "shop_name,name,price_cents\nShop,Thing,-5\n",
		"no price":       "shop_name,name\nShop,Thing\n",
		"bad stock":      "shop_name,name,price_cents,stock\nShop,Thing,100,lots\n",
		"no name column": "shop_name,title\nShop,Thing\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			imp := NewCSVImporter(strings.NewReader(data), &stubProductRepo{}, &stubShopRepo{}, zerolog.Nop())
			if _, err := imp.Run(context.Background()); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestCSVImporter_StopsOnWriteError(t *testing.T) {
	csvData := "shop_name,name,price_cents\nShop,One,100\n"
	boom := errors.New("db down")
	imp := NewCSVImporter(strings.NewReader(csvData), &stubProductRepo{err: boom}, &stubShopRepo{}, zerolog.Nop())

	count, err := imp.Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped write error, got %v", err)
	}
	if count != 0 {
		t.Fatalf("expected nothing imported, got %d", count)
	}
}
