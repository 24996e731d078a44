package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shashiranjanraj/marmita/app/events"
	"github.com/shashiranjanraj/marmita/app/models"
	"github.com/shashiranjanraj/marmita/app/policies"
	"github.com/shashiranjanraj/marmita/app/repositories"
	"github.com/shashiranjanraj/marmita/pkg/event"
	"github.com/shashiranjanraj/marmita/pkg/logger"
)

// StatusInput is the dashboard status form.
type StatusInput struct {
	Status        string `form:"status"         json:"status"         validate:"required"`
	EstimatedTime string `form:"tempo_estimado" json:"tempo_estimado" validate:"nullable,max=50"`
}

// OrderStatusService moves orders through Pendente → Em preparação →
// A caminho → Entregue, with Cancelado reachable from anywhere. Any status of
// the enum is accepted as a target; no ordering is enforced.
type OrderStatusService struct {
	orders *repositories.OrderRepository
}

func NewOrderStatusService() *OrderStatusService {
	return &OrderStatusService{orders: repositories.NewOrderRepository()}
}

// Transition sets the status of orderID. Only the owner of the order's
// restaurant may do it. A non-empty estimate is stored as the order's
// delivery estimate in the same transaction.
func (s *OrderStatusService) Transition(ctx context.Context, actor policies.Actor, orderID uint, in StatusInput) (models.Order, error) {
	order, err := s.orders.Find(ctx, orderID)
	if err != nil {
		return models.Order{}, notFoundOr(err, ErrOrderNotFound, "status: find order")
	}

	if err := policies.Authorize(actor, policies.ManageOrder, &order); err != nil {
		return models.Order{}, err
	}

	target, ok := models.ParseOrderStatus(strings.TrimSpace(in.Status))
	if !ok {
		return models.Order{}, ErrInvalidStatus
	}

	estimate := strings.TrimSpace(in.EstimatedTime)
	if len([]rune(estimate)) > 50 {
		return models.Order{}, fmt.Errorf("%w: estimate longer than 50 characters", ErrInvalidStatus)
	}

	from := order.Status
	err = s.orders.Transaction(ctx, func(tx *repositories.Tx) error {
		orders := s.orders.WithTx(tx)
		if err := orders.SetStatus(ctx, order.ID, target); err != nil {
			return err
		}
		if estimate != "" {
			d := &models.Delivery{OrderID: order.ID, EstimatedTime: estimate}
			if err := orders.UpsertDelivery(ctx, d); err != nil {
				return err
			}
			order.Delivery = d
		}
		return nil
	})
	if err != nil {
		return models.Order{}, fmt.Errorf("status: update order %d: %w", order.ID, err)
	}
	order.Status = target

	logger.WithCtx(ctx).Info("order status changed",
		"order_id", order.ID,
		"from", from,
		"to", target,
	)
	if from != target {
		var customerID uint
		if order.CustomerID != nil {
			customerID = *order.CustomerID
		}
		var restaurant string
		if order.Restaurant != nil {
			restaurant = order.Restaurant.Name
		}
		event.Fire(ctx, events.OrderStatusChanged, events.OrderStatusChangedPayload{
			OrderID:       order.ID,
			RestaurantID:  order.RestaurantID,
			Restaurant:    restaurant,
			CustomerID:    customerID,
			From:          string(from),
			To:            string(target),
			EstimatedTime: estimate,
			At:            time.Now().UTC(),
		})
	}
	return order, nil
}
