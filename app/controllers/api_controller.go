package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/marmita/app/services"
	"github.com/shashiranjanraj/marmita/pkg/ctx"
)

// APIController serves /api/. Handlers that need a logged-in caller check
// authentication before the method, so an anonymous PUT gets a 401, not a
// 405.
type APIController struct{ base }

func NewAPIController(svc *Services) *APIController {
	return &APIController{base{svc: svc}}
}

// Restaurants GET /api/restaurantes/
func (h *APIController) Restaurants(c *ctx.Context) {
	rs, err := h.svc.Catalog.Restaurants(c.Context())
	if err != nil {
		internal(c, err)
		return
	}
	c.JSON(http.StatusOK, newRestaurantSummaries(rs))
}

// Restaurant GET /api/restaurantes/{id}/
func (h *APIController) Restaurant(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		c.NotFound()
		return
	}
	detail, err := h.svc.Catalog.Restaurant(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newRestaurantDetailView(detail))
}

// Login POST /api/login/ opens a session and also returns a bearer token.
func (h *APIController) Login(c *ctx.Context) {
	if c.Method() != http.MethodPost {
		c.MethodNotAllowed()
		return
	}
	var in services.LoginInput
	if !c.BindJSON(&in) {
		return
	}

	user, err := h.svc.Auth.Login(c.Context(), in)
	if errors.Is(err, services.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, map[string]interface{}{"success": false, "error": "Invalid credentials"})
		return
	}
	if err != nil {
		internal(c, err)
		return
	}

	token, err := h.svc.Auth.Token(user)
	if err != nil {
		internal(c, err)
		return
	}
	signIn(c, user)
	c.JSON(http.StatusOK, map[string]interface{}{
		"success":  true,
		"username": user.Username,
		"token":    token,
	})
}

// Logout /api/logout/
func (h *APIController) Logout(c *ctx.Context) {
	signOut(c)
	c.JSON(http.StatusOK, map[string]interface{}{"success": true})
}

// User GET /api/user/
func (h *APIController) User(c *ctx.Context) {
	id, ok := c.Identity()
	if !ok {
		c.JSON(http.StatusOK, map[string]interface{}{"is_authenticated": false})
		return
	}
	user, err := h.svc.Auth.User(c.Context(), id.UserID)
	if err != nil {
		c.JSON(http.StatusOK, map[string]interface{}{"is_authenticated": false})
		return
	}
	c.JSON(http.StatusOK, map[string]interface{}{
		"is_authenticated": true,
		"username":         user.Username,
		"id":               user.ID,
		"tipo_usuario":     services.RoleOf(user),
	})
}

// Cart GET /api/carrinho/
func (h *APIController) Cart(c *ctx.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	view, err := h.svc.Cart.View(c.Context(), actor, h.cart(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartView(view))
}

type addToCartInput struct {
	ProductID uint `json:"produto_id"`
}

// AddToCart POST /api/carrinho/adicionar/ {"produto_id": N}
func (h *APIController) AddToCart(c *ctx.Context) {
	if _, ok := c.Identity(); !ok {
		c.Unauthorized("Login required")
		return
	}
	if c.Method() != http.MethodPost {
		c.MethodNotAllowed()
		return
	}
	var in addToCartInput
	if !c.BindJSON(&in) {
		return
	}
	if in.ProductID == 0 {
		c.Error(http.StatusBadRequest, "Invalid product")
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	cart := h.cart(c)
	if _, _, err := h.svc.Cart.Add(c.Context(), actor, cart, in.ProductID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, map[string]interface{}{
		"success":  true,
		"carrinho": cart.Raw(),
	})
}

// Checkout POST /api/checkout/
func (h *APIController) Checkout(c *ctx.Context) {
	if _, ok := c.Identity(); !ok {
		c.Unauthorized("Login required")
		return
	}
	if c.Method() != http.MethodPost {
		c.MethodNotAllowed()
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	order, err := h.svc.Checkout.Checkout(c.Context(), actor, h.cart(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, map[string]interface{}{
		"success":     true,
		"pedido_id":   order.ID,
		"valor_total": money(order.Total),
	})
}
