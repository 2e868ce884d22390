// Package dbtest wires integration tests to a disposable Postgres database.
package dbtest

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"localmarket/internal/migrate"
)

// Pool connects to TEST_DB_DSN, applies migrations and truncates all tables.
// The test is skipped when TEST_DB_DSN is unset.
func Pool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	Reset(t, pool)
	return pool
}

func Reset(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(context.Background(), `TRUNCATE wishlist, tokens, products, shops, profiles RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

// InsertShop creates a shop row and returns its id.
func InsertShop(t *testing.T, pool *pgxpool.Pool, name string) string {
	t.Helper()
	var id string
	if err := pool.QueryRow(context.Background(), `INSERT INTO shops (name, rating, location) VALUES ($1, 4.5, 'Old Town') RETURNING id::text`, name).Scan(&id); err != nil {
		t.Fatalf("insert shop: %v", err)
	}
	return id
}

// InsertProduct creates a product row in shopID and returns its id.
func InsertProduct(t *testing.T, pool *pgxpool.Pool, shopID, name string, priceCents int64, category string) string {
	t.Helper()
	var id string
	err := pool.QueryRow(context.Background(), `
		INSERT INTO products (shop_id, name, price_cents, stock, category)
		VALUES ($1, $2, $3, 10, NULLIF($4, ''))
		RETURNING id::text
	`, shopID, name, priceCents, category).Scan(&id)
	if err != nil {
		t.Fatalf("insert product: %v", err)
	}
	return id
}

// InsertProfile creates a profile row and returns its id.
func InsertProfile(t *testing.T, pool *pgxpool.Pool, email string) string {
	t.Helper()
	var id string
	if err := pool.QueryRow(context.Background(), `INSERT INTO profiles (email, password_hash, full_name) VALUES ($1, 'x', 'Test User') RETURNING id::text`, email).Scan(&id); err != nil {
		t.Fatalf("insert profile: %v", err)
	}
	return id
}
