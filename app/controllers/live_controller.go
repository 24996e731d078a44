package controllers

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/shashiranjanraj/marmita/app/events"
	"github.com/shashiranjanraj/marmita/app/models"
	"github.com/shashiranjanraj/marmita/app/services"
	"github.com/shashiranjanraj/marmita/pkg/ctx"
	"github.com/shashiranjanraj/marmita/pkg/logger"
	"github.com/shashiranjanraj/marmita/pkg/sse"
	"github.com/shashiranjanraj/marmita/pkg/ws"
)

// heartbeat keeps idle SSE connections open through proxies.
var heartbeat = 15 * time.Second

// LiveController pushes order events as they happen.
type LiveController struct{ base }

func NewLiveController(svc *Services) *LiveController {
	return &LiveController{base{svc: svc}}
}

// OwnerFeed GET /painel/pedidos/ao-vivo/
//
// Upgrades to a WebSocket that receives every order event of the owner's
// restaurants.
func (h *LiveController) OwnerFeed(c *ctx.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	rs, err := h.svc.Dashboard.Restaurants(c.Context(), actor)
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		RedirectToLogin(c.W, c.R)
		return
	case errors.Is(err, services.ErrForbidden):
		c.Redirect("/")
		return
	case err != nil:
		internal(c, err)
		return
	}

	topics := make([]string, 0, len(rs))
	for _, r := range rs {
		topics = append(topics, events.RestaurantTopic(r.ID))
	}
	sub := h.svc.Live.Subscribe(topics...)
	// Stream answers the failed handshake itself.
	_ = ws.Stream(c.W, c.R, sub.C, sub.Close)
}

type trackingState struct {
	OrderID       uint   `json:"pedido_id"`
	Status        string `json:"status"`
	EstimatedTime string `json:"tempo_estimado,omitempty"`
}

// Track GET /pedido/{order_id}/acompanhar/
//
// Streams the order's status changes as Server-Sent Events until the
// order is delivered or cancelled.
func (h *LiveController) Track(c *ctx.Context) {
	orderID, ok := c.ParamUint("order_id")
	if !ok {
		c.NotFound()
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	// Changes committed while the order loads queue up on the subscription.
	sub := h.svc.Live.Subscribe(events.OrderTopic(orderID))
	defer sub.Close()

	order, err := h.svc.Checkout.Confirmation(c.Context(), actor, orderID)
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		c.NotFound("Order not found")
		return
	case errors.Is(err, services.ErrUnauthenticated):
		RedirectToLogin(c.W, c.R)
		return
	case errors.Is(err, services.ErrForbidden):
		c.Redirect("/")
		return
	case err != nil:
		internal(c, err)
		return
	}

	stream, err := sse.New(c.W, c.R)
	if err != nil {
		logger.WithCtx(c.Context()).Warn("live: cannot stream", "error", err)
		return
	}
	state := trackingState{OrderID: order.ID, Status: string(order.Status)}
	if order.Delivery != nil {
		state.EstimatedTime = order.Delivery.EstimatedTime
	}
	if err := stream.Send("status", state); err != nil || order.Status.Final() {
		return
	}

	tick := time.NewTicker(heartbeat)
	defer tick.Stop()
	for {
		select {
		case <-stream.Done():
			return
		case <-tick.C:
			if err := stream.Comment("ping"); err != nil {
				return
			}
		case msg, open := <-sub.C:
			if !open {
				return
			}
			if err := stream.SendRaw(events.OrderStatusChanged, msg); err != nil {
				return
			}
			if reachedFinal(msg) {
				return
			}
		}
	}
}

func reachedFinal(msg []byte) bool {
	var m struct {
		Data struct {
			To models.OrderStatus `json:"para"`
		} `json:"dados"`
	}
	if err := json.Unmarshal(msg, &m); err != nil {
		return false
	}
	return m.Data.To.Final()
}
