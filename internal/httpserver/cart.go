package httpserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"localmarket/internal/domain"
)

type cartLineView struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"productId"`
	Quantity   int       `json:"quantity"`
	Name       string    `json:"name"`
	Price      string    `json:"price"`
	PriceCents int64     `json:"priceCents"`
	LineTotal  string    `json:"lineTotal"`
	ImageURL   string    `json:"imageUrl,omitempty"`
	ShopID     string    `json:"shopId"`
	ShopName   string    `json:"shopName"`
	AddedAt    time.Time `json:"addedAt"`
}

type cartView struct {
	Key           string         `json:"key"`
	Lines         []cartLineView `json:"lines"`
	Subtotal      string         `json:"subtotal"`
	SubtotalCents int64          `json:"subtotalCents"`
	ItemCount     int            `json:"itemCount"`
}

type shopCartView struct {
	ShopID        string         `json:"shopId"`
	Lines         []cartLineView `json:"lines"`
	Subtotal      string         `json:"subtotal"`
	SubtotalCents int64          `json:"subtotalCents"`
}

type addItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"max=9999"`
}

type updateItemRequest struct {
	Quantity *int `json:"quantity"`
}

// money renders cents as a fixed two-decimal amount.
func money(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

func linesView(lines []domain.CartLine) []cartLineView {
	out := make([]cartLineView, 0, len(lines))
	for _, l := range lines {
		out = append(out, cartLineView{
			ID:         l.ID,
			ProductID:  l.ProductID,
			Quantity:   l.Quantity,
			Name:       l.Name,
			Price:      money(l.PriceCents),
			PriceCents: l.PriceCents,
			LineTotal:  money(l.PriceCents * int64(l.Quantity)),
			ImageURL:   l.ImageURL,
			ShopID:     l.ShopID,
			ShopName:   l.ShopName,
			AddedAt:    l.AddedAt,
		})
	}
	return out
}

func toCartView(cart *domain.Cart) cartView {
	if cart == nil {
		cart = &domain.Cart{}
	}
	subtotal := cart.Subtotal()
	return cartView{
		Key:           cart.Key,
		Lines:         linesView(cart.Lines),
		Subtotal:      money(subtotal),
		SubtotalCents: subtotal,
		ItemCount:     cart.ItemCount(),
	}
}

func (h *handlers) getCart(c *gin.Context) {
	cart := h.deps.CartSvc.Load(c.Request.Context(), identityFrom(c))
	c.JSON(http.StatusOK, toCartView(cart))
}

func (h *handlers) clearCart(c *gin.Context) {
	cart := h.deps.CartSvc.Clear(c.Request.Context(), identityFrom(c))
	c.JSON(http.StatusOK, toCartView(cart))
}

func (h *handlers) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, fmt.Sprintf("productId is required and quantity must be at most %d", domain.MaxLineQuantity))
		return
	}
	cart, err := h.deps.CartSvc.AddItem(c.Request.Context(), identityFrom(c), req.ProductID, req.Quantity)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartView(cart))
}

func (h *handlers) updateCartItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		badRequest(c, "quantity is required")
		return
	}
	if *req.Quantity > domain.MaxLineQuantity {
		badRequest(c, fmt.Sprintf("quantity must be at most %d", domain.MaxLineQuantity))
		return
	}
	cart := h.deps.CartSvc.UpdateQuantity(c.Request.Context(), identityFrom(c), c.Param("lineId"), *req.Quantity)
	c.JSON(http.StatusOK, toCartView(cart))
}

func (h *handlers) removeCartItem(c *gin.Context) {
	cart := h.deps.CartSvc.RemoveItem(c.Request.Context(), identityFrom(c), c.Param("lineId"))
	c.JSON(http.StatusOK, toCartView(cart))
}

func (h *handlers) shopCartItems(c *gin.Context) {
	cart := h.deps.CartSvc.Load(c.Request.Context(), identityFrom(c))
	lines := cart.ShopItems(c.Param("shopId"))
	var subtotal int64
	for _, l := range lines {
		subtotal += l.PriceCents * int64(l.Quantity)
	}
	c.JSON(http.StatusOK, shopCartView{
		ShopID:        c.Param("shopId"),
		Lines:         linesView(lines),
		Subtotal:      money(subtotal),
		SubtotalCents: subtotal,
	})
}

// mergeCart folds the guest cart named by X-Guest-Token into the signed-in
// customer's cart.
func (h *handlers) mergeCart(c *gin.Context) {
	user := identityFrom(c)
	if !user.Authenticated() {
		h.writeError(c, domain.ErrRequiresAuth)
		return
	}
	guest, ok := h.guestFromHeader(c)
	if !ok {
		badRequest(c, guestTokenHeader+" header is required")
		return
	}
	cart := h.deps.CartSvc.MergeGuestCart(c.Request.Context(), guest, user)
	c.JSON(http.StatusOK, toCartView(cart))
}

func (h *handlers) guestFromHeader(c *gin.Context) (domain.Identity, bool) {
	token := c.GetHeader(guestTokenHeader)
	if token == "" {
		return domain.Identity{}, false
	}
	guestID, err := h.deps.GuestSvc.LookupByToken(c.Request.Context(), token)
	if err != nil || guestID == "" {
		return domain.Identity{}, false
	}
	return domain.Guest(guestID), true
}
