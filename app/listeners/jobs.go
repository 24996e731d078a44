package listeners

import (
	"context"
	"encoding/json"

	"github.com/shashiranjanraj/marmita/pkg/broker"
)

// PublishEvent is the queued Kafka write of one order event. The payload
// is kept encoded so a retried job publishes the original bytes.
type PublishEvent struct {
	Event   string          `json:"event"`
	Key     string          `json:"key"`
	Payload json.RawMessage `json:"payload"`

	pub broker.Publisher
}

func newPublishEvent(name, key string, payload interface{}) (*PublishEvent, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &PublishEvent{Event: name, Key: key, Payload: body}, nil
}

func (j *PublishEvent) Handle(ctx context.Context) error {
	return j.pub.Publish(ctx, j.Event, j.Key, j.Payload)
}
