package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"localmarket/internal/domain"
	"localmarket/internal/logging"
	"localmarket/internal/metrics"
	"localmarket/internal/service/anonymous"
	customersvc "localmarket/internal/service/customer"
)

type productService interface {
	List(ctx context.Context, category, shopID string) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
}

type shopService interface {
	Get(ctx context.Context, id string) (*domain.Shop, error)
	List(ctx context.Context) ([]domain.Shop, error)
}

type cartService interface {
	Load(ctx context.Context, id domain.Identity) *domain.Cart
	AddItem(ctx context.Context, id domain.Identity, productID string, quantity int) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, id domain.Identity, lineID string, quantity int) *domain.Cart
	RemoveItem(ctx context.Context, id domain.Identity, lineID string) *domain.Cart
	Clear(ctx context.Context, id domain.Identity) *domain.Cart
	MergeGuestCart(ctx context.Context, guest, user domain.Identity) *domain.Cart
}

type wishlistService interface {
	Add(ctx context.Context, id domain.Identity, productID string) error
	Remove(ctx context.Context, id domain.Identity, productID string) error
	Contains(ctx context.Context, id domain.Identity, productID string) (bool, error)
	Toggle(ctx context.Context, id domain.Identity, productID string) (bool, error)
	List(ctx context.Context, id domain.Identity) ([]domain.WishlistItem, error)
}

type customerService interface {
	Signup(ctx context.Context, in customersvc.SignupInput) (*domain.Customer, error)
	Login(ctx context.Context, email, password string) (*domain.Customer, customersvc.Tokens, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.Customer, customersvc.Tokens, error)
	LookupByToken(ctx context.Context, token string) (*domain.Customer, error)
	Logout(ctx context.Context, token string)
}

type guestService interface {
	Issue(ctx context.Context) (anonymous.Session, error)
	Refresh(ctx context.Context, refreshToken string) (anonymous.Session, error)
	LookupByToken(ctx context.Context, token string) (string, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Deps carries the services the router dispatches to.
type Deps struct {
	ProductSvc  productService
	ShopSvc     shopService
	CartSvc     cartService
	WishlistSvc wishlistService
	CustomerSvc customerService
	GuestSvc    guestService

	DB pinger
	KV pinger

	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	CORSOrigins []string
}

func (d Deps) validate() error {
	switch {
	case d.ProductSvc == nil:
		return errors.New("httpserver: product service required")
	case d.ShopSvc == nil:
		return errors.New("httpserver: shop service required")
	case d.CartSvc == nil:
		return errors.New("httpserver: cart service required")
	case d.WishlistSvc == nil:
		return errors.New("httpserver: wishlist service required")
	case d.CustomerSvc == nil:
		return errors.New("httpserver: customer service required")
	case d.GuestSvc == nil:
		return errors.New("httpserver: guest service required")
	}
	return nil
}

// buildRouter wires routes for the API.
func buildRouter(log zerolog.Logger, deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(
		gin.LoggerWithWriter(logging.Writer(log, zerolog.InfoLevel), "/healthz", "/readyz", "/metrics"),
		gin.Recovery(),
		observe(deps.Metrics),
		cors.New(corsConfig(deps.CORSOrigins)),
	)

	h := &handlers{deps: deps, log: log}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(map[string]pinger{"db": deps.DB, "kv": deps.KV}))
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	router.GET("/products", h.listProducts)
	router.GET("/products/:id", h.getProduct)
	router.GET("/shops", h.listShops)
	router.GET("/shops/:id", h.getShop)

	router.POST("/guest/token", h.guestToken)
	router.POST("/oauth/token", h.customerToken)
	router.POST("/me/signup", h.signup)

	me := router.Group("/me", identityMiddleware(deps.CustomerSvc, deps.GuestSvc, log))
	me.GET("", h.me)
	me.POST("/logout", h.logout)

	cart := me.Group("/cart", requireSession())
	cart.GET("", h.getCart)
	cart.DELETE("", h.clearCart)
	cart.POST("/items", h.addCartItem)
	cart.PATCH("/items/:lineId", h.updateCartItem)
	cart.DELETE("/items/:lineId", h.removeCartItem)
	cart.GET("/shops/:shopId", h.shopCartItems)
	cart.POST("/merge", h.mergeCart)

	me.GET("/wishlist", h.listWishlist)
	me.GET("/wishlist/:productId", h.wishlistContains)
	me.PUT("/wishlist/:productId", h.addWishlist)
	me.DELETE("/wishlist/:productId", h.removeWishlist)
	me.POST("/wishlist/:productId/toggle", h.toggleWishlist)

	return router, nil
}

type handlers struct {
	deps Deps
	log  zerolog.Logger
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Authorization", "Content-Type", guestTokenHeader},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowAllOrigins = true
	}
	return cfg
}

func observe(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.ObserveHTTP(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
