package routes

import (
	"github.com/shashiranjanraj/marmita/app/controllers"
	"github.com/shashiranjanraj/marmita/pkg/ctx"
	"github.com/shashiranjanraj/marmita/pkg/router"
)

// RegisterAPI mounts /api/. Endpoints that check authentication before the
// method are registered with Any.
func RegisterAPI(r *router.Router, svc *controllers.Services) {
	api := controllers.NewAPIController(svc)
	reviews := controllers.NewReviewController(svc)

	g := r.Group("/api")
	g.Get("/restaurantes/", "api.restaurant.index", ctx.Wrap(api.Restaurants))
	g.Get("/restaurantes/{id}/", "api.restaurant.show", ctx.Wrap(api.Restaurant))
	g.Any("/restaurantes/{id}/avaliacoes/", "api.restaurant.reviews", ctx.Wrap(reviews.APIIndex))
	g.Any("/login/", "api.login", ctx.Wrap(api.Login))
	g.Any("/logout/", "api.logout", ctx.Wrap(api.Logout))
	g.Get("/user/", "api.user", ctx.Wrap(api.User))
	g.Get("/carrinho/", "api.cart", ctx.Wrap(api.Cart))
	g.Any("/carrinho/adicionar/", "api.cart.add", ctx.Wrap(api.AddToCart))
	g.Any("/checkout/", "api.checkout", ctx.Wrap(api.Checkout))
}
