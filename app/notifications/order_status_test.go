package notifications_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/marmita/app/events"
	"github.com/shashiranjanraj/marmita/app/notifications"
)

func TestOrderStatusChangedMail(t *testing.T) {
	n := notifications.OrderStatusChanged{
		Username: "cliente",
		Change: events.OrderStatusChangedPayload{
			OrderID: 42, Restaurant: "Cantina", From: "Pendente", To: "A caminho", EstimatedTime: "30 min",
		},
	}

	m := n.ToMail()
	assert.Equal(t, "Pedido #42: A caminho", m.Subject)
	assert.Contains(t, m.Text, "Olá cliente,")
	assert.Contains(t, m.Text, `o status do seu pedido #42 em Cantina mudou de "Pendente" para "A caminho".`)
	assert.Contains(t, m.Text, "Tempo estimado: 30 min.")

	msg, attrs := n.ToLog()
	assert.NotEmpty(t, msg)
	assert.Equal(t, []any{"order_id", uint(42), "username", "cliente", "status", "A caminho"}, attrs)
}

func TestOrderStatusChangedWithoutEstimate(t *testing.T) {
	m := notifications.OrderStatusChanged{
		Username: "cliente",
		Change:   events.OrderStatusChangedPayload{OrderID: 1, From: "A caminho", To: "Entregue"},
	}.ToMail()
	assert.NotContains(t, m.Text, "Tempo estimado")
	assert.NotContains(t, m.Text, " em ")
}
