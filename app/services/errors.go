package services

import (
	"errors"

	"github.com/shashiranjanraj/marmita/app/policies"
)

var (
	ErrUnauthenticated = policies.ErrUnauthenticated
	ErrForbidden       = policies.ErrForbidden

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already taken")

	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrOrderNotFound      = errors.New("order not found")

	ErrNotCustomer      = errors.New("user is not a client")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrNoProducts       = errors.New("invalid products")
	ErrMixedRestaurants = errors.New("cart holds products of more than one restaurant")
	ErrInvalidStatus    = errors.New("invalid order status")
)
