package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"localmarket/internal/domain"
)

const selectProduct = `
SELECT p.id::text, p.shop_id::text, s.name, p.name, p.price_cents, COALESCE(p.image_url, ''),
       p.stock, COALESCE(p.category, ''), p.created_at
FROM products p
JOIN shops s ON s.id = p.shop_id
`

type postgresRepo struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

func NewPostgres(pool *pgxpool.Pool, log zerolog.Logger) Repository {
	return &postgresRepo{pool: pool, log: log.With().Str("repo", "product").Logger()}
}

func (r *postgresRepo) List(ctx context.Context, f Filter) ([]domain.Product, error) {
	q := selectProduct + `
WHERE ($1 = '' OR p.category = $1)
  AND ($2 = '' OR p.shop_id::text = $2)
ORDER BY p.created_at DESC, p.name ASC
`
	rows, err := r.pool.Query(ctx, q, f.Category, f.ShopID)
	if err != nil {
		r.log.Error().Err(err).Str("category", f.Category).Str("shop_id", f.ShopID).Msg("list products")
		return nil, err
	}
	defer rows.Close()

	result := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.log.Error().Err(err).Msg("list products rows")
		return nil, err
	}
	r.log.Debug().Int("count", len(result)).Msg("list products")
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, selectProduct+`WHERE p.id::text = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.log.Debug().Str("product_id", id).Msg("product not found")
			return nil, domain.ErrNotFound
		}
		r.log.Error().Err(err).Str("product_id", id).Msg("get product")
		return nil, err
	}
	return p, nil
}

// Upsert inserts or updates a product by id. An empty id generates one.
func (r *postgresRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (id, shop_id, name, price_cents, image_url, stock, category)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, NULLIF($5, ''), $6, NULLIF($7, ''))
ON CONFLICT (id) DO UPDATE SET
    shop_id = EXCLUDED.shop_id,
    name = EXCLUDED.name,
    price_cents = EXCLUDED.price_cents,
    image_url = EXCLUDED.image_url,
    stock = EXCLUDED.stock,
    category = EXCLUDED.category
RETURNING id::text, created_at
`
	res := p
	err := r.pool.QueryRow(ctx, q, p.ID, p.ShopID, p.Name, p.PriceCents, p.ImageURL, p.Stock, p.Category).
		Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, fmt.Errorf("product %q references unknown shop %q: %w", p.Name, p.ShopID, domain.ErrNotFound)
		}
		r.log.Error().Err(err).Str("product_id", p.ID).Msg("upsert product")
		return nil, err
	}
	r.log.Debug().Str("product_id", res.ID).Str("shop_id", res.ShopID).Msg("upserted product")
	return &res, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(&p.ID, &p.ShopID, &p.ShopName, &p.Name, &p.PriceCents, &p.ImageURL, &p.Stock, &p.Category, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
