package domain

import "time"

type Product struct {
	ID         string    `json:"id"`
	ShopID     string    `json:"shopId"`
	ShopName   string    `json:"shopName,omitempty"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"priceCents"`
	ImageURL   string    `json:"imageUrl,omitempty"`
	Stock      int       `json:"stock"`
	Category   string    `json:"category,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Shop struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Rating    float64   `json:"rating"`
	Location  string    `json:"location,omitempty"`
	OwnerID   *string   `json:"ownerId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
