package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/marmita/app/cart"
	"github.com/shashiranjanraj/marmita/app/events"
	"github.com/shashiranjanraj/marmita/app/models"
	"github.com/shashiranjanraj/marmita/app/policies"
	"github.com/shashiranjanraj/marmita/app/repositories"
	"github.com/shashiranjanraj/marmita/pkg/event"
	"github.com/shashiranjanraj/marmita/pkg/logger"
)

// CheckoutService turns a session cart into an order.
type CheckoutService struct {
	products *repositories.ProductRepository
	orders   *repositories.OrderRepository
}

func NewCheckoutService() *CheckoutService {
	return &CheckoutService{
		products: repositories.NewProductRepository(),
		orders:   repositories.NewOrderRepository(),
	}
}

// Checkout materialises the cart of a customer:
//
//   - the caller must be a logged-in customer (ErrUnauthenticated, ErrNotCustomer);
//   - the cart must hold something (ErrEmptyCart);
//   - at least one product must still exist (ErrNoProducts, the cart is cleared);
//   - every product must belong to the same restaurant (ErrMixedRestaurants,
//     the cart is kept).
//
// The order, its lines and its total are written in one transaction. The
// cart is cleared only after the commit.
func (s *CheckoutService) Checkout(ctx context.Context, actor policies.Actor, c *cart.Cart) (models.Order, error) {
	if err := policies.Authorize(actor, policies.PlaceOrder, nil); err != nil {
		if errors.Is(err, policies.ErrForbidden) {
			return models.Order{}, ErrNotCustomer
		}
		return models.Order{}, err
	}

	entries := c.Entries()
	if len(entries) == 0 {
		return models.Order{}, ErrEmptyCart
	}

	products, err := s.products.FindMany(ctx, c.IDs())
	if err != nil {
		return models.Order{}, fmt.Errorf("checkout: resolve products: %w", err)
	}
	if len(products) == 0 {
		c.Clear()
		return models.Order{}, ErrNoProducts
	}

	restaurantID := products[0].RestaurantID
	for _, p := range products[1:] {
		if p.RestaurantID != restaurantID {
			return models.Order{}, ErrMixedRestaurants
		}
	}

	customerID := actor.ProfileID
	order := models.Order{
		CustomerID:   &customerID,
		RestaurantID: restaurantID,
		Status:       models.StatusPending,
		Total:        decimal.Zero,
	}

	err = s.orders.Transaction(ctx, func(tx *repositories.Tx) error {
		orders := s.orders.WithTx(tx)

		if err := orders.Create(ctx, &order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		total := decimal.Zero
		for _, p := range products {
			line := models.OrderLine{
				OrderID:   order.ID,
				ProductID: p.ID,
				Quantity:  entries[p.ID],
				UnitPrice: p.Price,
			}
			if err := orders.CreateLine(ctx, &line); err != nil {
				return fmt.Errorf("create line for product %d: %w", p.ID, err)
			}
			order.Lines = append(order.Lines, line)
			total = total.Add(line.Subtotal())
		}

		if err := orders.SetTotal(ctx, order.ID, total); err != nil {
			return fmt.Errorf("set total: %w", err)
		}
		order.Total = total
		return nil
	})
	if err != nil {
		return models.Order{}, fmt.Errorf("checkout: %w", err)
	}

	c.Clear()

	logger.WithCtx(ctx).Info("order placed",
		"order_id", order.ID,
		"restaurant_id", restaurantID,
		"total", order.Total.StringFixed(2),
	)
	event.Fire(ctx, events.OrderPlaced, events.OrderPlacedPayload{
		OrderID:      order.ID,
		RestaurantID: restaurantID,
		CustomerID:   customerID,
		Total:        order.Total.StringFixed(2),
		Lines:        len(order.Lines),
		At:           time.Now().UTC(),
	})
	return order, nil
}

// Confirmation loads an order for its confirmation page. Only the customer
// who placed it (or the restaurant owner) may see it.
func (s *CheckoutService) Confirmation(ctx context.Context, actor policies.Actor, orderID uint) (models.Order, error) {
	order, err := s.orders.Find(ctx, orderID)
	if err != nil {
		return models.Order{}, notFoundOr(err, ErrOrderNotFound, "checkout: find order")
	}
	if err := policies.Authorize(actor, policies.ViewOrder, &order); err != nil {
		return models.Order{}, err
	}
	return order, nil
}
