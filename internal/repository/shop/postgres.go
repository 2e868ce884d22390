package shop

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"localmarket/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

func NewPostgres(pool *pgxpool.Pool, log zerolog.Logger) Repository {
	return &postgresRepo{pool: pool, log: log.With().Str("repo", "shop").Logger()}
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Shop, error) {
	const q = `
SELECT id::text, name, rating::float8, COALESCE(location, ''), owner_id::text, created_at
FROM shops
WHERE id::text = $1
`
	s, err := scanShop(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.log.Error().Err(err).Str("shop_id", id).Msg("get shop")
		return nil, err
	}
	return s, nil
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Shop, error) {
	const q = `
SELECT id::text, name, rating::float8, COALESCE(location, ''), owner_id::text, created_at
FROM shops
ORDER BY name ASC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.log.Error().Err(err).Msg("list shops")
		return nil, err
	}
	defer rows.Close()

	result := []domain.Shop{}
	for rows.Next() {
		s, err := scanShop(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}

// Upsert inserts or updates a shop by id; an empty id generates one.
func (r *postgresRepo) Upsert(ctx context.Context, s domain.Shop) (*domain.Shop, error) {
	const q = `
INSERT INTO shops (id, name, rating, location, owner_id)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, NULLIF($4, ''), $5::uuid)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    rating = EXCLUDED.rating,
    location = EXCLUDED.location,
    owner_id = EXCLUDED.owner_id
RETURNING id::text, created_at
`
	res := s
	if err := r.pool.QueryRow(ctx, q, s.ID, s.Name, s.Rating, s.Location, s.OwnerID).Scan(&res.ID, &res.CreatedAt); err != nil {
		r.log.Error().Err(err).Str("shop_id", s.ID).Str("name", s.Name).Msg("upsert shop")
		return nil, err
	}
	r.log.Debug().Str("shop_id", res.ID).Msg("upserted shop")
	return &res, nil
}

func scanShop(row pgx.Row) (*domain.Shop, error) {
	var s domain.Shop
	if err := row.Scan(&s.ID, &s.Name, &s.Rating, &s.Location, &s.OwnerID, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}
