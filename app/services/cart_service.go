package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/marmita/app/cart"
	"github.com/shashiranjanraj/marmita/app/models"
	"github.com/shashiranjanraj/marmita/app/policies"
	"github.com/shashiranjanraj/marmita/app/repositories"
	"github.com/shashiranjanraj/marmita/pkg/logger"
	"github.com/shashiranjanraj/marmita/pkg/orm"
)

type CartLine struct {
	Product  models.Product
	Quantity int
	Subtotal decimal.Decimal
}

// CartView is the resolved cart. Lines are in product id order.
type CartView struct {
	Lines []CartLine
	Total decimal.Decimal
}

type CartService struct {
	products *repositories.ProductRepository
}

func NewCartService() *CartService {
	return &CartService{products: repositories.NewProductRepository()}
}

// Add puts one more unit of productID in the cart. The caller must be logged
// in and may not be a restaurant owner; the product must exist.
func (s *CartService) Add(ctx context.Context, actor policies.Actor, c *cart.Cart, productID uint) (models.Product, int, error) {
	if !actor.Authenticated() {
		return models.Product{}, 0, ErrUnauthenticated
	}
	if err := policies.Authorize(actor, policies.UseCart, nil); err != nil {
		return models.Product{}, 0, err
	}

	p, err := s.products.Find(ctx, productID)
	if orm.IsNotFound(err) {
		return models.Product{}, 0, ErrProductNotFound
	}
	if err != nil {
		return models.Product{}, 0, fmt.Errorf("cart: find product %d: %w", productID, err)
	}

	return p, c.Add(productID), nil
}

// View resolves the cart against the catalog. Ids that no longer resolve
// (deleted products) are left out of the lines and the total without an
// error; they stay in the session until checkout or Clear.
func (s *CartService) View(ctx context.Context, actor policies.Actor, c *cart.Cart) (CartView, error) {
	if err := policies.Authorize(actor, policies.UseCart, nil); err != nil {
		return CartView{}, err
	}

	view := CartView{Lines: []CartLine{}, Total: decimal.Zero}

	entries := c.Entries()
	if len(entries) == 0 {
		return view, nil
	}

	products, err := s.products.FindMany(ctx, c.IDs())
	if err != nil {
		return CartView{}, fmt.Errorf("cart: resolve products: %w", err)
	}

	for _, p := range products {
		qty := entries[p.ID]
		sub := p.Price.Mul(decimal.NewFromInt(int64(qty)))
		view.Lines = append(view.Lines, CartLine{Product: p, Quantity: qty, Subtotal: sub})
		view.Total = view.Total.Add(sub)
	}

	if missing := len(entries) - len(products); missing > 0 {
		logger.WithCtx(ctx).Debug("cart: dropped unresolvable products", "missing", missing)
	}
	return view, nil
}
