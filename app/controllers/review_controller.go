package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/shashiranjanraj/marmita/app/services"
	"github.com/shashiranjanraj/marmita/pkg/ctx"
	"github.com/shashiranjanraj/marmita/pkg/response"
)

type ReviewController struct{ base }

func NewReviewController(svc *Services) *ReviewController {
	return &ReviewController{base{svc: svc}}
}

// Create POST /restaurante/{id}/avaliar/
func (h *ReviewController) Create(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		c.NotFound()
		return
	}
	var in services.ReviewInput
	errs, err := c.ShouldBindForm(&in)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return
	}
	if len(errs) > 0 {
		c.ValidationError(errs)
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	_, err = h.svc.Reviews.Create(c.Context(), actor, id, in)
	switch {
	case errors.Is(err, services.ErrRestaurantNotFound):
		c.NotFound("Restaurant not found")
	case errors.Is(err, services.ErrUnauthenticated):
		RedirectToLogin(c.W, c.R)
	case errors.Is(err, services.ErrForbidden):
		c.Redirectf("/restaurante/%d/", id)
	case err != nil:
		internal(c, err)
	default:
		c.Redirectf("/restaurante/%d/", id)
	}
}

// APIIndex GET|POST /api/restaurantes/{id}/avaliacoes/
func (h *ReviewController) APIIndex(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		c.NotFound()
		return
	}

	switch c.Method() {
	case http.MethodGet:
		page, _ := strconv.Atoi(c.Query("page"))
		perPage, _ := strconv.Atoi(c.Query("per_page"))
		if perPage > 100 {
			perPage = 100
		}
		reviews, p, err := h.svc.Reviews.List(c.Context(), id, page, perPage)
		if err != nil {
			fail(c, err)
			return
		}
		response.Paginated(c.W, newReviewViews(reviews), p)

	case http.MethodPost:
		if _, ok := c.Identity(); !ok {
			c.Unauthorized("Login required")
			return
		}
		var in services.ReviewInput
		if !c.BindJSON(&in) {
			return
		}
		actor, ok := h.actor(c)
		if !ok {
			return
		}
		rv, err := h.svc.Reviews.Create(c.Context(), actor, id, in)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, map[string]interface{}{"success": true, "id": rv.ID})

	default:
		c.MethodNotAllowed()
	}
}
