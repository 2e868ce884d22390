package wishlist

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"localmarket/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

func NewPostgres(pool *pgxpool.Pool, log zerolog.Logger) Repository {
	return &postgresRepo{pool: pool, log: log.With().Str("repo", "wishlist").Logger()}
}

func (r *postgresRepo) Add(ctx context.Context, userID, productID string) (bool, error) {
	const q = `
INSERT INTO wishlist (user_id, product_id)
VALUES ($1, $2)
ON CONFLICT (user_id, product_id) DO NOTHING
`
	tag, err := r.pool.Exec(ctx, q, userID, productID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && (pgErr.Code == "23503" || pgErr.Code == "22P02") {
			return false, domain.ErrProductNotFound
		}
		r.log.Error().Err(err).Str("user_id", userID).Str("product_id", productID).Msg("add wishlist entry")
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *postgresRepo) Remove(ctx context.Context, userID, productID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM wishlist WHERE user_id::text = $1 AND product_id::text = $2`, userID, productID); err != nil {
		r.log.Error().Err(err).Str("user_id", userID).Str("product_id", productID).Msg("remove wishlist entry")
		return err
	}
	return nil
}

func (r *postgresRepo) Exists(ctx context.Context, userID, productID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM wishlist WHERE user_id::text = $1 AND product_id::text = $2)`
	var ok bool
	if err := r.pool.QueryRow(ctx, q, userID, productID).Scan(&ok); err != nil {
		r.log.Error().Err(err).Str("user_id", userID).Str("product_id", productID).Msg("wishlist exists")
		return false, err
	}
	return ok, nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.WishlistItem, error) {
	const q = `
SELECT w.id::text, w.user_id::text, w.product_id::text, w.created_at,
       p.id::text, p.shop_id::text, s.name, p.name, p.price_cents, COALESCE(p.image_url, ''),
       p.stock, COALESCE(p.category, ''), p.created_at
FROM wishlist w
JOIN products p ON p.id = w.product_id
JOIN shops s ON s.id = p.shop_id
WHERE w.user_id::text = $1
ORDER BY w.created_at DESC
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		r.log.Error().Err(err).Str("user_id", userID).Msg("list wishlist")
		return nil, err
	}
	defer rows.Close()

	items := []domain.WishlistItem{}
	for rows.Next() {
		var it domain.WishlistItem
		p := &it.Product
		if err := rows.Scan(
			&it.ID, &it.UserID, &it.ProductID, &it.CreatedAt,
			&p.ID, &p.ShopID, &p.ShopName, &p.Name, &p.PriceCents, &p.ImageURL, &p.Stock, &p.Category, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
