package broker

import (
	"encoding/json"
	"sync"
)

// subscriberBuffer is how many undelivered messages a slow subscriber may
// hold before further messages to it are dropped.
const subscriberBuffer = 32

// Hub fans messages out to in-process subscribers by topic. It feeds the
// live order streams (WebSocket and SSE); Kafka stays the durable channel.
//
//	sub := hub.Subscribe("pedido:42")
//	defer sub.Close()
//	for msg := range sub.C { ... }
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{topics: map[string]map[*Subscription]struct{}{}}
}

// Subscription receives the messages of one or more topics on C until
// Close is called. C is closed by Close.
type Subscription struct {
	C chan []byte

	hub    *Hub
	topics []string
	once   sync.Once
}

// Subscribe registers a subscriber for every given topic.
func (h *Hub) Subscribe(topics ...string) *Subscription {
	s := &Subscription{C: make(chan []byte, subscriberBuffer), hub: h, topics: topics}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, t := range topics {
		if h.topics[t] == nil {
			h.topics[t] = map[*Subscription]struct{}{}
		}
		h.topics[t][s] = struct{}{}
	}
	return s
}

// Close unsubscribes and closes C. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		h := s.hub
		h.mu.Lock()
		for _, t := range s.topics {
			delete(h.topics[t], s)
			if len(h.topics[t]) == 0 {
				delete(h.topics, t)
			}
		}
		close(s.C)
		h.mu.Unlock()
	})
}

// Publish sends msg to every subscriber of topic without blocking. It
// returns how many subscribers received it.
func (h *Hub) Publish(topic string, msg []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for s := range h.topics[topic] {
		select {
		case s.C <- msg:
			delivered++
		default:
		}
	}
	return delivered
}

// PublishJSON encodes v and publishes it.
func (h *Hub) PublishJSON(topic string, v interface{}) (int, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	return h.Publish(topic, body), nil
}

// Subscribers reports how many subscribers topic has.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}
