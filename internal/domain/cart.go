package domain

import "time"

// Cart is the identity-scoped collection of cart lines.
type Cart struct {
	Key   string     `json:"key"`
	Lines []CartLine `json:"lines"`
}

// CartLine is one product in a cart. Name, price, image and shop fields are a
// snapshot taken when the line was first added and are not refreshed afterwards.
type CartLine struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"productId"`
	Quantity   int       `json:"quantity"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"priceCents"`
	ImageURL   string    `json:"imageUrl,omitempty"`
	ShopID     string    `json:"shopId"`
	ShopName   string    `json:"shopName"`
	AddedAt    time.Time `json:"addedAt"`
}

// Subtotal returns the sum of price x quantity over all lines, in cents.
func (c *Cart) Subtotal() int64 {
	if c == nil {
		return 0
	}
	var total int64
	for _, l := range c.Lines {
		total += l.PriceCents * int64(l.Quantity)
	}
	return total
}

// ItemCount returns the sum of quantities over all lines.
func (c *Cart) ItemCount() int {
	if c == nil {
		return 0
	}
	count := 0
	for _, l := range c.Lines {
		count += l.Quantity
	}
	return count
}

// ShopItems returns the lines sold by the given shop.
func (c *Cart) ShopItems(shopID string) []CartLine {
	out := []CartLine{}
	if c == nil {
		return out
	}
	for _, l := range c.Lines {
		if l.ShopID == shopID {
			out = append(out, l)
		}
	}
	return out
}

// LineIndex returns the position of the line with the given id, or -1.
func (c *Cart) LineIndex(lineID string) int {
	for i, l := range c.Lines {
		if l.ID == lineID {
			return i
		}
	}
	return -1
}

// ProductIndex returns the position of the line holding productID, or -1.
func (c *Cart) ProductIndex(productID string) int {
	for i, l := range c.Lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// MaxLineQuantity bounds the quantity of a single cart line.
const MaxLineQuantity = 9999

// CapQuantity adds b to a, saturating at MaxLineQuantity.
func CapQuantity(a, b int) int {
	if a >= MaxLineQuantity || b >= MaxLineQuantity-a {
		return MaxLineQuantity
	}
	return a + b
}
