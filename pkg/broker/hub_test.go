package broker_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/marmita/pkg/broker"
)

func TestHubDeliversByTopic(t *testing.T) {
	hub := broker.NewHub()
	a := hub.Subscribe("pedido:1")
	both := hub.Subscribe("pedido:1", "pedido:2")
	defer a.Close()
	defer both.Close()

	assert.Equal(t, 2, hub.Publish("pedido:1", []byte("x")))
	assert.Equal(t, 1, hub.Publish("pedido:2", []byte("y")))
	assert.Equal(t, 0, hub.Publish("pedido:3", []byte("z")))

	assert.Equal(t, "x", string(<-a.C))
	assert.Equal(t, "x", string(<-both.C))
	assert.Equal(t, "y", string(<-both.C))
}

func TestHubCloseUnsubscribes(t *testing.T) {
	hub := broker.NewHub()
	s := hub.Subscribe("restaurante:7")
	require.Equal(t, 1, hub.Subscribers("restaurante:7"))

	s.Close()
	s.Close()
	assert.Equal(t, 0, hub.Subscribers("restaurante:7"))

	_, open := <-s.C
	assert.False(t, open)
	assert.Equal(t, 0, hub.Publish("restaurante:7", []byte("late")))
}

func TestHubDropsForSlowSubscriber(t *testing.T) {
	hub := broker.NewHub()
	s := hub.Subscribe("t")
	defer s.Close()

	sent := 0
	for i := 0; i < 100; i++ {
		sent += hub.Publish("t", []byte("m"))
	}
	assert.Less(t, sent, 100)
	assert.Equal(t, sent, len(s.C))
}

func TestPublishJSON(t *testing.T) {
	hub := broker.NewHub()
	s := hub.Subscribe("t")
	defer s.Close()

	n, err := hub.PublishJSON("t", map[string]int{"pedido_id": 3})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.JSONEq(t, `{"pedido_id":3}`, string(<-s.C))
}
