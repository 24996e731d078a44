package controllers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shashiranjanraj/marmita/app/models"
	"github.com/shashiranjanraj/marmita/app/services"
	"github.com/shashiranjanraj/marmita/pkg/ctx"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DashboardController serves the restaurant owner's pages under /painel.
// The route group already requires the RESTAURANTE role; ownership of the
// individual restaurant, product or order is checked by the services.
type DashboardController struct{ base }

func NewDashboardController(svc *Services) *DashboardController {
	return &DashboardController{base{svc: svc}}
}

// Index GET /painel/
func (h *DashboardController) Index(c *ctx.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	rs, err := h.svc.Dashboard.Restaurants(c.Context(), actor)
	if h.denied(c, err, "/") {
		return
	}
	if err != nil {
		internal(c, err)
		return
	}

	type ownedRestaurant struct {
		restaurantSummary
		Products []productView `json:"produtos"`
	}
	out := make([]ownedRestaurant, 0, len(rs))
	for _, r := range rs {
		out = append(out, ownedRestaurant{newRestaurantSummary(r), newProductViews(r.Products)})
	}
	c.JSON(http.StatusOK, map[string]interface{}{"restaurantes": out})
}

// CreateRestaurant POST /painel/restaurantes/
func (h *DashboardController) CreateRestaurant(c *ctx.Context) {
	var in services.RestaurantInput
	if !h.bindForm(c, &in) {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	rest, err := h.svc.Dashboard.CreateRestaurant(c.Context(), actor, in)
	if h.denied(c, err, "/") {
		return
	}
	if err != nil {
		internal(c, err)
		return
	}
	c.Redirectf("/painel/restaurantes/%d/produtos/", rest.ID)
}

// Products GET /painel/restaurantes/{id}/produtos/
func (h *DashboardController) Products(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		c.NotFound()
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	rest, err := h.svc.Dashboard.Restaurant(c.Context(), actor, id)
	if errors.Is(err, services.ErrRestaurantNotFound) {
		c.NotFound("Restaurant not found")
		return
	}
	if h.denied(c, err, "/painel/") {
		return
	}
	if err != nil {
		internal(c, err)
		return
	}
	c.JSON(http.StatusOK, map[string]interface{}{
		"restaurante": newRestaurantSummary(rest),
		"produtos":    newProductViews(rest.Products),
	})
}

// CreateProduct POST /painel/restaurantes/{id}/produtos/
func (h *DashboardController) CreateProduct(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		c.NotFound()
		return
	}
	var in services.ProductInput
	if !h.bindForm(c, &in) {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	_, err := h.svc.Dashboard.CreateProduct(c.Context(), actor, id, in)
	if errors.Is(err, services.ErrRestaurantNotFound) {
		c.NotFound("Restaurant not found")
		return
	}
	if h.denied(c, err, "/painel/") {
		return
	}
	if err != nil {
		internal(c, err)
		return
	}
	c.Redirectf("/painel/restaurantes/%d/produtos/", id)
}

// UpdateProduct POST /painel/produtos/{id}/editar/
func (h *DashboardController) UpdateProduct(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		c.NotFound()
		return
	}
	var in services.ProductInput
	if !h.bindForm(c, &in) {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	p, err := h.svc.Dashboard.UpdateProduct(c.Context(), actor, id, in)
	if errors.Is(err, services.ErrProductNotFound) {
		c.NotFound("Product not found")
		return
	}
	if h.denied(c, err, "/painel/") {
		return
	}
	if err != nil {
		internal(c, err)
		return
	}
	c.Redirectf("/painel/restaurantes/%d/produtos/", p.RestaurantID)
}

// DeleteProduct POST /painel/produtos/{id}/excluir/
func (h *DashboardController) DeleteProduct(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		c.NotFound()
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	p, err := h.svc.Dashboard.DeleteProduct(c.Context(), actor, id)
	if errors.Is(err, services.ErrProductNotFound) {
		c.NotFound("Product not found")
		return
	}
	if h.denied(c, err, "/painel/") {
		return
	}
	if err != nil {
		internal(c, err)
		return
	}
	c.Redirectf("/painel/restaurantes/%d/produtos/", p.RestaurantID)
}

// Orders GET /painel/pedidos/?restaurante={id}
func (h *DashboardController) Orders(c *ctx.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	orders, err := h.svc.Dashboard.Orders(c.Context(), actor, c.QueryUint("restaurante"))
	if h.denied(c, err, "/") {
		return
	}
	if err != nil {
		internal(c, err)
		return
	}
	c.JSON(http.StatusOK, map[string]interface{}{
		"pedidos":  newOrderViews(orders),
		"status":   statusChoices(),
		"exportar": "/painel/pedidos/exportar.xlsx",
	})
}

// Export GET /painel/pedidos/exportar.xlsx?restaurante={id}
func (h *DashboardController) Export(c *ctx.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	n, err := h.svc.Dashboard.ExportOrders(c.Context(), actor, c.QueryUint("restaurante"), &buf)
	if h.denied(c, err, "/") {
		return
	}
	if err != nil {
		internal(c, err)
		return
	}

	name := fmt.Sprintf("pedidos-%s.xlsx", time.Now().Format("20060102"))
	c.W.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Log().Info("orders exported", "orders", n)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// UpdateStatus POST /painel/pedidos/{id}/status/. Requests from a non-owner
// or with a status outside the enum change nothing and land on the order
// list like a successful one.
func (h *DashboardController) UpdateStatus(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		c.NotFound()
		return
	}
	var in services.StatusInput
	errs, err := c.ShouldBindForm(&in)
	if err != nil || len(errs) > 0 {
		c.Redirect("/painel/pedidos/")
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	_, err = h.svc.OrderStatus.Transition(c.Context(), actor, id, in)
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		c.NotFound("Order not found")
		return
	case errors.Is(err, services.ErrForbidden),
		errors.Is(err, services.ErrUnauthenticated),
		errors.Is(err, services.ErrInvalidStatus):
		c.Log().Info("status change ignored", "order_id", id, "reason", err.Error())
	case err != nil:
		internal(c, err)
		return
	}
	c.Redirect("/painel/pedidos/")
}

// bindForm decodes the form and answers 422 with the field errors on
// failure.
func (h *DashboardController) bindForm(c *ctx.Context, dest interface{}) bool {
	errs, err := c.ShouldBindForm(dest)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	if len(errs) > 0 {
		c.ValidationError(errs)
		return false
	}
	return true
}

// denied redirects to fallback on an authorization failure.
func (h *DashboardController) denied(c *ctx.Context, err error, fallback string) bool {
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		RedirectToLogin(c.W, c.R)
		return true
	case errors.Is(err, services.ErrForbidden):
		c.Redirect(fallback)
		return true
	}
	return false
}

func statusChoices() []string {
	out := []string{}
	for _, s := range models.AllStatuses() {
		out = append(out, string(s))
	}
	return out
}
