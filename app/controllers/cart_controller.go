package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/marmita/app/services"
	"github.com/shashiranjanraj/marmita/pkg/ctx"
)

// CartController serves the session cart, checkout and the confirmation
// page. Business-rule failures redirect without a message.
type CartController struct{ base }

func NewCartController(svc *Services) *CartController {
	return &CartController{base{svc: svc}}
}

// Add POST /adicionar-ao-carrinho/{product_id}/
func (h *CartController) Add(c *ctx.Context) {
	productID, ok := c.ParamUint("product_id")
	if !ok {
		c.NotFound()
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	p, qty, err := h.svc.Cart.Add(c.Context(), actor, h.cart(c), productID)
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		c.NotFound("Product not found")
	case errors.Is(err, services.ErrUnauthenticated):
		RedirectToLogin(c.W, c.R)
	case errors.Is(err, services.ErrForbidden):
		c.Redirect("/")
	case err != nil:
		internal(c, err)
	default:
		c.Log().Debug("cart: product added", "product_id", p.ID, "quantity", qty)
		c.Redirectf("/restaurante/%d/", p.RestaurantID)
	}
}

// Show GET /carrinho/
func (h *CartController) Show(c *ctx.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	view, err := h.svc.Cart.View(c.Context(), actor, h.cart(c))
	if errors.Is(err, services.ErrForbidden) {
		c.Redirect("/")
		return
	}
	if err != nil {
		internal(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartView(view))
}

// Checkout POST /finalizar-pedido/
func (h *CartController) Checkout(c *ctx.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	order, err := h.svc.Checkout.Checkout(c.Context(), actor, h.cart(c))
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		RedirectToLogin(c.W, c.R)
	case errors.Is(err, services.ErrNotCustomer):
		c.Redirect("/")
	case errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrNoProducts),
		errors.Is(err, services.ErrMixedRestaurants):
		c.Log().Info("checkout refused", "reason", err.Error())
		c.Redirect("/carrinho/")
	case err != nil:
		internal(c, err)
	default:
		c.Redirectf("/pedido-confirmado/%d/", order.ID)
	}
}

// Confirmation GET /pedido-confirmado/{order_id}/
func (h *CartController) Confirmation(c *ctx.Context) {
	orderID, ok := c.ParamUint("order_id")
	if !ok {
		c.NotFound()
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	order, err := h.svc.Checkout.Confirmation(c.Context(), actor, orderID)
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		c.NotFound("Order not found")
	case errors.Is(err, services.ErrUnauthenticated):
		RedirectToLogin(c.W, c.R)
	case errors.Is(err, services.ErrForbidden):
		c.Redirect("/")
	case err != nil:
		internal(c, err)
	default:
		c.JSON(http.StatusOK, map[string]interface{}{"pedido": newOrderView(order)})
	}
}
