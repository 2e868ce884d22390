package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"localmarket/internal/domain"
	"localmarket/internal/service/anonymous"
	customersvc "localmarket/internal/service/customer"
)

const (
	guestTokenHeader = "X-Guest-Token"
	identityCtxKey   = "identity"
	customerCtxKey   = "customer"
)

// identityMiddleware resolves the bearer token to a customer or a guest
// session. Requests without a token act as the bare guest.
func identityMiddleware(customers customerService, guests guestService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.Set(identityCtxKey, domain.Guest(""))
			c.Next()
			return
		}

		cust, err := customers.LookupByToken(c.Request.Context(), token)
		switch {
		case err == nil && cust != nil:
			c.Set(identityCtxKey, domain.User(cust.ID))
			c.Set(customerCtxKey, cust)
			c.Next()
			return
		case err != nil && !unknownToken(err):
			abortLookupFailed(c, log, err)
			return
		}

		guestID, err := guests.LookupByToken(c.Request.Context(), token)
		switch {
		case err == nil && guestID != "":
			c.Set(identityCtxKey, domain.Guest(guestID))
			c.Next()
			return
		case err != nil && !unknownToken(err):
			abortLookupFailed(c, log, err)
			return
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
	}
}

// unknownToken reports whether err means the token is not valid for that
// identity kind, as opposed to the lookup failing.
func unknownToken(err error) bool {
	return errors.Is(err, customersvc.ErrInvalidToken) ||
		errors.Is(err, anonymous.ErrInvalidToken) ||
		errors.Is(err, domain.ErrNotFound)
}

func abortLookupFailed(c *gin.Context, log zerolog.Logger, err error) {
	log.Error().Err(err).Str("path", c.FullPath()).Msg("resolve bearer token")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
}

// requireSession rejects the bare guest; anonymous clients need a guest token.
func requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := identityFrom(c)
		if !id.Authenticated() && id.GuestID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "guest session required"})
			return
		}
		c.Next()
	}
}

func identityFrom(c *gin.Context) domain.Identity {
	if v, ok := c.Get(identityCtxKey); ok {
		if id, ok := v.(domain.Identity); ok {
			return id
		}
	}
	return domain.Guest("")
}

func customerFrom(c *gin.Context) *domain.Customer {
	if v, ok := c.Get(customerCtxKey); ok {
		if cust, ok := v.(*domain.Customer); ok {
			return cust
		}
	}
	return nil
}

func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
