package wishlist

import (
	"context"

	"localmarket/internal/domain"
)

type Repository interface {
	// Add inserts the entry unless it already exists and reports whether a row was created.
	Add(ctx context.Context, userID, productID string) (bool, error)
	Remove(ctx context.Context, userID, productID string) error
	Exists(ctx context.Context, userID, productID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]domain.WishlistItem, error)
}
