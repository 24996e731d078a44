// Package controllers holds the HTTP handlers. Web handlers answer with the
// page's view model as JSON and redirect (303) after a POST; API handlers
// answer with the JSON shapes of /api/.
package controllers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/shashiranjanraj/marmita/app/cart"
	"github.com/shashiranjanraj/marmita/app/models"
	"github.com/shashiranjanraj/marmita/app/policies"
	"github.com/shashiranjanraj/marmita/app/services"
	"github.com/shashiranjanraj/marmita/pkg/broker"
	"github.com/shashiranjanraj/marmita/pkg/ctx"
	"github.com/shashiranjanraj/marmita/pkg/middleware"
)

// Services bundles what the controllers depend on.
type Services struct {
	Auth        *services.AuthService
	Catalog     *services.CatalogService
	Cart        *services.CartService
	Checkout    *services.CheckoutService
	OrderStatus *services.OrderStatusService
	Dashboard   *services.DashboardService
	Reviews     *services.ReviewService
	Live        *broker.Hub
}

// NewServices builds the default service graph.
func NewServices() *Services {
	catalog := services.NewCatalogService()
	return &Services{
		Auth:        services.NewAuthService(),
		Catalog:     catalog,
		Cart:        services.NewCartService(),
		Checkout:    services.NewCheckoutService(),
		OrderStatus: services.NewOrderStatusService(),
		Dashboard:   services.NewDashboardService(catalog),
		Reviews:     services.NewReviewService(),
		Live:        broker.NewHub(),
	}
}

type base struct {
	svc *Services
}

// actor resolves the caller. On a database error it answers 500 and
// returns false.
func (b base) actor(c *ctx.Context) (policies.Actor, bool) {
	id, ok := c.Identity()
	if !ok {
		return policies.Actor{}, true
	}
	a, err := b.svc.Auth.Actor(c.Context(), id.UserID)
	if err != nil {
		c.Log().Error("resolve actor failed", "user_id", id.UserID, "error", err)
		c.Error(http.StatusInternalServerError, "Internal server error")
		return policies.Actor{}, false
	}
	return a, true
}

func (b base) cart(c *ctx.Context) *cart.Cart {
	return cart.New(c.Session())
}

// signIn binds user to the session. The id is rotated and the cart kept.
func signIn(c *ctx.Context, user models.User) {
	sess := c.Session()
	sess.Regenerate()
	sess.Set(middleware.SessionUserID, user.ID)
	sess.Set(middleware.SessionRole, string(services.RoleOf(user)))
}

func signOut(c *ctx.Context) {
	c.Session().Invalidate()
}

// loginURL is the login page with next pointing back at the current page.
func loginURL(r *http.Request) string {
	next := r.URL.Path
	if r.Method != http.MethodGet {
		next = r.Referer()
		if u, err := url.Parse(next); err == nil {
			next = u.Path
		}
	}
	if !safeNext(next) {
		return "/entrar/"
	}
	return "/entrar/?next=" + url.QueryEscape(next)
}

// safeNext accepts only local absolute paths.
func safeNext(next string) bool {
	return strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.Contains(next, "\\")
}

// RedirectToLogin is the deny handler of the web's auth guard.
func RedirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, loginURL(r), http.StatusSeeOther)
}

// RedirectHome is the deny handler of the web's role guards.
func RedirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// apiStatus maps a service error to the API status code and message.
func apiStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		return http.StatusUnauthorized, "Login required"
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, services.ErrRestaurantNotFound),
		errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrOrderNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrNotCustomer):
		return http.StatusBadRequest, "User is not a client"
	case errors.Is(err, services.ErrEmptyCart):
		return http.StatusBadRequest, "Cart is empty"
	case errors.Is(err, services.ErrNoProducts):
		return http.StatusBadRequest, "Invalid products"
	case errors.Is(err, services.ErrMixedRestaurants):
		return http.StatusBadRequest, "Cart holds products of more than one restaurant"
	case errors.Is(err, services.ErrInvalidStatus):
		return http.StatusUnprocessableEntity, "Invalid order status"
	}
	return http.StatusInternalServerError, "Internal server error"
}

// fail answers an API request with the status matching err.
func fail(c *ctx.Context, err error) {
	code, msg := apiStatus(err)
	if code == http.StatusInternalServerError {
		c.Log().Error("request failed", "error", err)
	}
	c.Error(code, msg)
}

// internal logs err and answers 500.
func internal(c *ctx.Context, err error) {
	c.Log().Error("request failed", "error", err)
	c.Error(http.StatusInternalServerError, "Internal server error")
}
