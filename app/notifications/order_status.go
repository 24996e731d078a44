// Package notifications holds the notices sent to marketplace users.
package notifications

import (
	"fmt"
	"strings"

	"github.com/shashiranjanraj/marmita/app/events"
	"github.com/shashiranjanraj/marmita/pkg/notification"
)

// OrderStatusChanged tells a customer where their order stands.
type OrderStatusChanged struct {
	Username string
	Change   events.OrderStatusChangedPayload
}

func (n OrderStatusChanged) Via() []string {
	return []string{notification.ChannelMail}
}

func (n OrderStatusChanged) ToMail() notification.MailData {
	c := n.Change
	var b strings.Builder
	fmt.Fprintf(&b, "Olá %s,\n\n", n.Username)
	fmt.Fprintf(&b, "o status do seu pedido #%d", c.OrderID)
	if c.Restaurant != "" {
		fmt.Fprintf(&b, " em %s", c.Restaurant)
	}
	fmt.Fprintf(&b, " mudou de %q para %q.\n", c.From, c.To)
	if c.EstimatedTime != "" {
		fmt.Fprintf(&b, "Tempo estimado: %s.\n", c.EstimatedTime)
	}
	b.WriteString("\nMarmita\n")

	return notification.MailData{
		Subject: fmt.Sprintf("Pedido #%d: %s", c.OrderID, c.To),
		Text:    b.String(),
	}
}

func (n OrderStatusChanged) ToLog() (string, []any) {
	return "customer notified of status change", []any{
		"order_id", n.Change.OrderID,
		"username", n.Username,
		"status", n.Change.To,
	}
}
