// Package broker moves domain events out of the request: to Kafka for other
// services and, through Hub, to in-process subscribers.
//
//	pub := broker.NewKafkaPublisher(config.KafkaBrokers(), config.KafkaTopic())
//	defer pub.Close()
//	_ = pub.Publish(ctx, "order.placed", "42", payload)
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// Publisher sends one keyed message per event.
type Publisher interface {
	Publish(ctx context.Context, eventName, key string, payload interface{}) error
	Close() error
}

// KafkaPublisher writes JSON messages to a single topic. Messages with the
// same key (the order id) land on the same partition, so consumers see the
// status changes of one order in order. Writes are synchronous: callers run
// them from the job queue, which retries on error.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventName, key string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("broker: marshal %s: %w", eventName, err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: body,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(eventName)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("broker: publish %s: %w", eventName, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Recorder keeps published messages in memory for tests.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

type Message struct {
	Event   string
	Key     string
	Payload json.RawMessage
}

func (r *Recorder) Publish(_ context.Context, eventName, key string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.messages = append(r.messages, Message{Event: eventName, Key: key, Payload: body})
	r.mu.Unlock()
	return nil
}

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

func (r *Recorder) Close() error { return nil }
