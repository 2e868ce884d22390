package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handlers) listWishlist(c *gin.Context) {
	items, err := h.deps.WishlistSvc.List(c.Request.Context(), identityFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(items), "results": items})
}

func (h *handlers) wishlistContains(c *gin.Context) {
	productID := c.Param("productId")
	liked, err := h.deps.WishlistSvc.Contains(c.Request.Context(), identityFrom(c), productID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"productId": productID, "liked": liked})
}

func (h *handlers) addWishlist(c *gin.Context) {
	productID := c.Param("productId")
	if err := h.deps.WishlistSvc.Add(c.Request.Context(), identityFrom(c), productID); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"productId": productID, "liked": true})
}

func (h *handlers) removeWishlist(c *gin.Context) {
	productID := c.Param("productId")
	if err := h.deps.WishlistSvc.Remove(c.Request.Context(), identityFrom(c), productID); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"productId": productID, "liked": false})
}

func (h *handlers) toggleWishlist(c *gin.Context) {
	productID := c.Param("productId")
	liked, err := h.deps.WishlistSvc.Toggle(c.Request.Context(), identityFrom(c), productID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"productId": productID, "liked": liked})
}
