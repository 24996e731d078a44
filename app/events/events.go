// Package events names the domain events and their payloads. Payloads are
// also the JSON published to Kafka and pushed to the live order streams.
package events

import (
	"strconv"
	"time"
)

const (
	OrderPlaced        = "order.placed"
	OrderStatusChanged = "order.status_changed"
)

type OrderPlacedPayload struct {
	OrderID      uint      `json:"pedido_id"`
	RestaurantID uint      `json:"restaurante_id"`
	CustomerID   uint      `json:"cliente_id"`
	Total        string    `json:"valor_total"`
	Lines        int       `json:"itens"`
	At           time.Time `json:"data"`
}

type OrderStatusChangedPayload struct {
	OrderID       uint      `json:"pedido_id"`
	RestaurantID  uint      `json:"restaurante_id"`
	Restaurant    string    `json:"restaurante"`
	CustomerID    uint      `json:"cliente_id"`
	From          string    `json:"de"`
	To            string    `json:"para"`
	EstimatedTime string    `json:"tempo_estimado,omitempty"`
	At            time.Time `json:"data"`
}

// RestaurantTopic carries every order event of one restaurant.
func RestaurantTopic(restaurantID uint) string {
	return "restaurante:" + strconv.FormatUint(uint64(restaurantID), 10)
}

// OrderTopic carries the status changes of one order.
func OrderTopic(orderID uint) string {
	return "pedido:" + strconv.FormatUint(uint64(orderID), 10)
}

// LiveMessage is what the live streams send: the event name and its payload.
type LiveMessage struct {
	Event string      `json:"evento"`
	Data  interface{} `json:"dados"`
}
