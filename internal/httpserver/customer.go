package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"localmarket/internal/domain"
	"localmarket/internal/service/anonymous"
	customersvc "localmarket/internal/service/customer"
)

type signupRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"fullName"`
}

type tokenRequest struct {
	GrantType    string `form:"grant_type" binding:"required"`
	Username     string `form:"username"`
	Password     string `form:"password"`
	RefreshToken string `form:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	GuestID      string `json:"guestId,omitempty"`
}

type customerView struct {
	Customer *domain.Customer `json:"customer"`
	Cart     *cartView        `json:"cart,omitempty"`
}

func (h *handlers) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email and password are required")
		return
	}
	cust, err := h.deps.CustomerSvc.Signup(c.Request.Context(), customersvc.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customerView{Customer: cust})
}

// customerToken implements the password and refresh_token grants. A password
// sign-in carrying X-Guest-Token folds that guest cart into the customer's.
func (h *handlers) customerToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "grant_type is required")
		return
	}

	ctx := c.Request.Context()
	var (
		cust   *domain.Customer
		tokens customersvc.Tokens
		err    error
	)
	req.GrantType = strings.TrimSpace(req.GrantType)
	switch req.GrantType {
	case "password":
		if req.Username == "" || req.Password == "" {
			badRequest(c, "username and password are required")
			return
		}
		cust, tokens, err = h.deps.CustomerSvc.Login(ctx, req.Username, req.Password)
	case "refresh_token":
		if req.RefreshToken == "" {
			badRequest(c, "refresh_token is required")
			return
		}
		cust, tokens, err = h.deps.CustomerSvc.Refresh(ctx, req.RefreshToken)
	default:
		badRequest(c, "unsupported grant_type")
		return
	}
	if err != nil {
		h.writeError(c, err)
		return
	}

	if req.GrantType == "password" {
		if guest, ok := h.guestFromHeader(c); ok {
			h.deps.CartSvc.MergeGuestCart(ctx, guest, domain.User(cust.ID))
		}
	}

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  tokens.Access,
		RefreshToken: tokens.Refresh,
		TokenType:    "Bearer",
		ExpiresIn:    tokens.ExpiresIn,
	})
}

// guestToken starts a guest session, or rotates one when called with the
// refresh_token grant.
func (h *handlers) guestToken(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		session anonymous.Session
		err     error
	)
	if c.PostForm("grant_type") == "refresh_token" {
		refresh := c.PostForm("refresh_token")
		if refresh == "" {
			badRequest(c, "refresh_token is required")
			return
		}
		session, err = h.deps.GuestSvc.Refresh(ctx, refresh)
	} else {
		session, err = h.deps.GuestSvc.Issue(ctx)
	}
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    session.ExpiresIn,
		GuestID:      session.GuestID,
	})
}

func (h *handlers) me(c *gin.Context) {
	cust := customerFrom(c)
	if cust == nil {
		h.writeError(c, domain.ErrRequiresAuth)
		return
	}
	cart := toCartView(h.deps.CartSvc.Load(c.Request.Context(), domain.User(cust.ID)))
	c.JSON(http.StatusOK, customerView{Customer: cust, Cart: &cart})
}

func (h *handlers) logout(c *gin.Context) {
	if customerFrom(c) == nil {
		h.writeError(c, domain.ErrRequiresAuth)
		return
	}
	h.deps.CustomerSvc.Logout(c.Request.Context(), bearerToken(c.GetHeader("Authorization")))
	c.Status(http.StatusNoContent)
}
