package repositories

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/marmita/app/models"
	"github.com/shashiranjanraj/marmita/pkg/orm"
)

// Tx is a transaction handle shared by the repositories.
type Tx = orm.Query

type OrderRepository struct{ base }

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

func (r *OrderRepository) WithTx(tx *Tx) *OrderRepository {
	return &OrderRepository{base{tx: tx}}
}

// Transaction runs fn with a transaction handle; repositories bound to it
// with WithTx commit or roll back together.
func (r *OrderRepository) Transaction(ctx context.Context, fn func(tx *Tx) error) error {
	return r.q(ctx).Transaction(fn)
}

func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	return r.q(ctx).Create(o)
}

func (r *OrderRepository) CreateLine(ctx context.Context, l *models.OrderLine) error {
	return r.q(ctx).Create(l)
}

func (r *OrderRepository) SetTotal(ctx context.Context, orderID uint, total decimal.Decimal) error {
	return r.q(ctx).Model(&models.Order{}).Where("id = ?", orderID).Update("total", total)
}

func (r *OrderRepository) SetStatus(ctx context.Context, orderID uint, status models.OrderStatus) error {
	return r.q(ctx).Model(&models.Order{}).Where("id = ?", orderID).Update("status", status)
}

// UpsertDelivery creates or replaces the delivery estimate of an order.
func (r *OrderRepository) UpsertDelivery(ctx context.Context, d *models.Delivery) error {
	return r.q(ctx).Gorm().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"estimated_time"}),
	}).Create(d).Error
}

// Find loads an order with its restaurant, lines (with products) and delivery.
func (r *OrderRepository) Find(ctx context.Context, id uint) (models.Order, error) {
	var o models.Order
	err := r.q(ctx).
		Preload("Restaurant").
		Preload("Lines", orderByID).
		Preload("Lines.Product").
		Preload("Delivery").
		Where("id = ?", id).
		First(&o)
	return o, err
}

// ForRestaurants lists orders of the given restaurants, newest first.
func (r *OrderRepository) ForRestaurants(ctx context.Context, restaurantIDs []uint) ([]models.Order, error) {
	var out []models.Order
	if len(restaurantIDs) == 0 {
		return out, nil
	}
	err := r.q(ctx).
		Preload("Restaurant").
		Preload("Customer.User").
		Preload("Lines", orderByID).
		Preload("Lines.Product").
		Preload("Delivery").
		Where("restaurant_id IN ?", restaurantIDs).
		Order("created_at desc, id desc").
		Get(&out)
	return out, err
}
