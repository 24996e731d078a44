package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/shashiranjanraj/marmita/app/services"
	"github.com/shashiranjanraj/marmita/pkg/ctx"
)

// CatalogController serves the public restaurant pages.
type CatalogController struct{ base }

func NewCatalogController(svc *Services) *CatalogController {
	return &CatalogController{base{svc: svc}}
}

// Index GET /
func (h *CatalogController) Index(c *ctx.Context) {
	rs, err := h.svc.Catalog.Restaurants(c.Context())
	if err != nil {
		internal(c, err)
		return
	}
	c.JSON(http.StatusOK, map[string]interface{}{
		"restaurantes": newRestaurantSummaries(rs),
	})
}

// Show GET /restaurante/{id}/
func (h *CatalogController) Show(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		c.NotFound()
		return
	}
	detail, err := h.svc.Catalog.Restaurant(c.Context(), id)
	if errors.Is(err, services.ErrRestaurantNotFound) {
		c.NotFound("Restaurant not found")
		return
	}
	if err != nil {
		internal(c, err)
		return
	}
	c.JSON(http.StatusOK, map[string]interface{}{
		"restaurante": newRestaurantDetailView(detail),
	})
}

// QRCode GET /restaurante/{id}/qrcode.png?size=N
func (h *CatalogController) QRCode(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		c.NotFound()
		return
	}
	size, _ := strconv.Atoi(c.Query("size"))

	png, err := h.svc.Catalog.MenuQRCode(c.Context(), id, size)
	if errors.Is(err, services.ErrRestaurantNotFound) {
		c.NotFound("Restaurant not found")
		return
	}
	if err != nil {
		internal(c, err)
		return
	}
	c.W.Header().Set("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "image/png", png)
}
