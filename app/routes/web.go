// Package routes maps URLs to controllers.
package routes

import (
	"github.com/shashiranjanraj/marmita/app/controllers"
	"github.com/shashiranjanraj/marmita/app/models"
	"github.com/shashiranjanraj/marmita/pkg/ctx"
	"github.com/shashiranjanraj/marmita/pkg/middleware"
	"github.com/shashiranjanraj/marmita/pkg/rbac"
	"github.com/shashiranjanraj/marmita/pkg/router"
)

// RegisterWeb mounts the browser-facing pages.
func RegisterWeb(r *router.Router, svc *controllers.Services) {
	catalog := controllers.NewCatalogController(svc)
	cart := controllers.NewCartController(svc)
	auth := controllers.NewAuthController(svc)
	reviews := controllers.NewReviewController(svc)
	dashboard := controllers.NewDashboardController(svc)
	live := controllers.NewLiveController(svc)

	loggedIn := middleware.RequireAuth(controllers.RedirectToLogin)
	notOwner := rbac.DenyRole(controllers.RedirectHome, string(models.RoleOwner))
	guest := rbac.Guest(controllers.RedirectHome)

	r.Get("/", "restaurant.index", ctx.Wrap(catalog.Index))
	r.Get("/restaurante/{id}/", "restaurant.show", ctx.Wrap(catalog.Show))
	r.Get("/restaurante/{id}/qrcode.png", "restaurant.qrcode", ctx.Wrap(catalog.QRCode))
	r.Post("/restaurante/{id}/avaliar/", "restaurant.review", ctx.Wrap(reviews.Create), loggedIn)

	shop := r.Group("/", notOwner)
	shop.Get("/carrinho/", "cart.show", ctx.Wrap(cart.Show))
	shop.Post("/adicionar-ao-carrinho/{product_id}/", "cart.add", ctx.Wrap(cart.Add), loggedIn)
	shop.Post("/finalizar-pedido/", "checkout", ctx.Wrap(cart.Checkout), loggedIn)
	r.Get("/pedido-confirmado/{order_id}/", "order.confirmation", ctx.Wrap(cart.Confirmation), loggedIn)
	r.Get("/pedido/{order_id}/acompanhar/", "order.track", ctx.Wrap(live.Track), loggedIn)

	r.Get("/cadastro/", "auth.register.form", ctx.Wrap(auth.RegisterForm), guest)
	r.Post("/cadastro/", "auth.register", ctx.Wrap(auth.Register), guest)
	r.Get("/entrar/", "auth.login.form", ctx.Wrap(auth.LoginForm), guest)
	r.Post("/entrar/", "auth.login", ctx.Wrap(auth.Login), guest)
	r.Post("/sair/", "auth.logout", ctx.Wrap(auth.Logout))

	ownerOnly := []router.Middleware{loggedIn, rbac.HasRole(controllers.RedirectHome, string(models.RoleOwner))}
	r.Get("/painel/", "dashboard.index", ctx.Wrap(dashboard.Index), ownerOnly...)
	painel := r.Group("/painel", ownerOnly...)
	painel.Post("/restaurantes/", "dashboard.restaurant.store", ctx.Wrap(dashboard.CreateRestaurant))
	painel.Get("/restaurantes/{id}/produtos/", "dashboard.products", ctx.Wrap(dashboard.Products))
	painel.Post("/restaurantes/{id}/produtos/", "dashboard.product.store", ctx.Wrap(dashboard.CreateProduct))
	painel.Post("/produtos/{id}/editar/", "dashboard.product.update", ctx.Wrap(dashboard.UpdateProduct))
	painel.Post("/produtos/{id}/excluir/", "dashboard.product.delete", ctx.Wrap(dashboard.DeleteProduct))
	painel.Get("/pedidos/", "dashboard.orders", ctx.Wrap(dashboard.Orders))
	painel.Get("/pedidos/ao-vivo/", "dashboard.orders.live", ctx.Wrap(live.OwnerFeed))
	painel.Get("/pedidos/exportar.xlsx", "dashboard.orders.export", ctx.Wrap(dashboard.Export))
	painel.Post("/pedidos/{id}/status/", "dashboard.order.status", ctx.Wrap(dashboard.UpdateStatus))
}
