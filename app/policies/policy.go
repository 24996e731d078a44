// Package policies decides who may do what. Every protected operation calls
// Authorize before touching data; route-level role guards in pkg/rbac are
// only a first filter.
package policies

import (
	"errors"

	"github.com/shashiranjanraj/marmita/app/models"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden")
)

type Ability string

const (
	UseCart           Ability = "cart.use"
	PlaceOrder        Ability = "order.place"
	ManageRestaurants Ability = "restaurant.manage_any"
	ManageRestaurant  Ability = "restaurant.manage"
	ManageProduct     Ability = "product.manage"
	ManageOrder       Ability = "order.manage"
	ViewOrder         Ability = "order.view"
	WriteReview       Ability = "review.write"
)

// Actor is the caller as the policies see it. The zero value is anonymous.
// ProfileID is 0 for accounts without a profile.
type Actor struct {
	UserID    uint
	ProfileID uint
	Role      models.Role
}

func (a Actor) Authenticated() bool { return a.UserID != 0 }
func (a Actor) IsOwner() bool       { return a.Authenticated() && a.Role == models.RoleOwner }
func (a Actor) IsCustomer() bool {
	return a.Authenticated() && a.Role == models.RoleCustomer && a.ProfileID != 0
}

// Authorize returns nil when actor may perform ability on target, otherwise
// ErrUnauthenticated or ErrForbidden. Targets: *models.Restaurant for
// ManageRestaurant, *models.Product (with Restaurant loaded) for
// ManageProduct, *models.Order (with Restaurant loaded) for ManageOrder and
// ViewOrder; nil for the rest.
func Authorize(actor Actor, ability Ability, target interface{}) error {
	switch ability {
	case UseCart:
		// Anonymous visitors may look at their cart; owners never reach it.
		if actor.Role == models.RoleOwner {
			return ErrForbidden
		}
		return nil

	case PlaceOrder, WriteReview:
		if !actor.Authenticated() {
			return ErrUnauthenticated
		}
		return allow(actor.IsCustomer())

	case ManageRestaurants:
		if !actor.Authenticated() {
			return ErrUnauthenticated
		}
		return allow(actor.IsOwner())
	}

	if !actor.Authenticated() {
		return ErrUnauthenticated
	}

	switch ability {
	case ManageRestaurant:
		r, ok := target.(*models.Restaurant)
		return allow(ok && ownsRestaurant(actor, r))

	case ManageProduct:
		p, ok := target.(*models.Product)
		return allow(ok && p != nil && ownsRestaurant(actor, p.Restaurant))

	case ManageOrder:
		o, ok := target.(*models.Order)
		return allow(ok && o != nil && ownsRestaurant(actor, o.Restaurant))

	case ViewOrder:
		o, ok := target.(*models.Order)
		if !ok || o == nil {
			return ErrForbidden
		}
		if o.CustomerID != nil && actor.ProfileID != 0 && *o.CustomerID == actor.ProfileID {
			return nil
		}
		return allow(ownsRestaurant(actor, o.Restaurant))
	}

	return ErrForbidden
}

func ownsRestaurant(actor Actor, r *models.Restaurant) bool {
	return r != nil && actor.IsOwner() && r.OwnerID == actor.UserID
}

func allow(ok bool) error {
	if ok {
		return nil
	}
	return ErrForbidden
}
