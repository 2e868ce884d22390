package domain

import "time"

// WishlistEntry references a product liked by a signed-in customer.
type WishlistEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ProductID string    `json:"productId"`
	CreatedAt time.Time `json:"createdAt"`
}

// WishlistItem is an entry joined with the live product row.
type WishlistItem struct {
	WishlistEntry
	Product Product `json:"product"`
}
