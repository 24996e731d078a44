// Package listeners subscribes the application's reactions to order events:
// metrics, the Kafka feed, the live order streams and customer notices.
package listeners

import (
	"context"
	"strconv"
	"time"

	"github.com/shashiranjanraj/marmita/app/events"
	"github.com/shashiranjanraj/marmita/app/notifications"
	"github.com/shashiranjanraj/marmita/app/repositories"
	"github.com/shashiranjanraj/marmita/pkg/broker"
	"github.com/shashiranjanraj/marmita/pkg/event"
	"github.com/shashiranjanraj/marmita/pkg/logger"
	"github.com/shashiranjanraj/marmita/pkg/mail"
	"github.com/shashiranjanraj/marmita/pkg/metrics"
	"github.com/shashiranjanraj/marmita/pkg/notification"
	"github.com/shashiranjanraj/marmita/pkg/queue"
	"github.com/shashiranjanraj/marmita/pkg/workerpool"
)

// Options selects the optional reactions. Metrics are always counted.
type Options struct {
	// Publisher receives both order events through the job queue; nil
	// disables the Kafka feed.
	Publisher broker.Publisher
	// Hub feeds the owner WebSocket and the customer SSE streams.
	Hub *broker.Hub
	// Mailer sends status notices; nil writes them to the log.
	Mailer mail.Sender
	// NoticeWorkers bounds concurrent notice deliveries.
	NoticeWorkers int
}

// Register subscribes every listener and returns a function that drains
// pending notices.
func Register(opts Options) (stop func()) {
	event.Listen(events.OrderPlaced, countPlaced)
	event.Listen(events.OrderStatusChanged, countStatusChange)

	if opts.Publisher != nil {
		pub := opts.Publisher
		queue.Register(func() queue.Job { return &PublishEvent{pub: pub} })
		event.Listen(events.OrderPlaced, enqueuePublish(pub, events.OrderPlaced))
		event.Listen(events.OrderStatusChanged, enqueuePublish(pub, events.OrderStatusChanged))
	}

	if opts.Hub != nil {
		event.Listen(events.OrderPlaced, pushLive(opts.Hub, events.OrderPlaced))
		event.Listen(events.OrderStatusChanged, pushLive(opts.Hub, events.OrderStatusChanged))
	}

	workers := opts.NoticeWorkers
	if workers <= 0 {
		workers = 4
	}
	pool := workerpool.New("notifications", workers, 256)
	n := &notifier{
		users: repositories.NewUserRepository(),
		send:  notification.New(opts.Mailer),
		pool:  pool,
	}
	event.Listen(events.OrderStatusChanged, n.statusChanged)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := pool.Shutdown(ctx); err != nil {
			logger.Warn("listeners: notices still pending at shutdown", "error", err)
		}
	}
}

func countPlaced(_ context.Context, _ interface{}) {
	metrics.OrdersPlaced.Inc()
}

func countStatusChange(_ context.Context, payload interface{}) {
	p, ok := payload.(events.OrderStatusChangedPayload)
	if !ok {
		return
	}
	metrics.OrderStatusChanges.WithLabelValues(p.To).Inc()
}

// enqueuePublish hands the event to the job queue. When the queue refuses
// it the event is published inline so it is not lost.
func enqueuePublish(pub broker.Publisher, name string) event.Handler {
	return func(ctx context.Context, payload interface{}) {
		job, err := newPublishEvent(name, orderKey(payload), payload)
		if err == nil {
			err = queue.Dispatch(ctx, job)
		}
		if err == nil {
			return
		}
		logger.WithCtx(ctx).Warn("listeners: queue refused event, publishing inline", "event", name, "error", err)
		if err := pub.Publish(ctx, name, orderKey(payload), payload); err != nil {
			logger.WithCtx(ctx).Error("listeners: publish failed", "event", name, "error", err)
		}
	}
}

func pushLive(hub *broker.Hub, name string) event.Handler {
	return func(ctx context.Context, payload interface{}) {
		msg := events.LiveMessage{Event: name, Data: payload}
		var topics []string
		switch p := payload.(type) {
		case events.OrderPlacedPayload:
			topics = []string{events.RestaurantTopic(p.RestaurantID)}
		case events.OrderStatusChangedPayload:
			topics = []string{events.RestaurantTopic(p.RestaurantID), events.OrderTopic(p.OrderID)}
		}
		for _, t := range topics {
			if _, err := hub.PublishJSON(t, msg); err != nil {
				logger.WithCtx(ctx).Warn("listeners: live push failed", "topic", t, "error", err)
			}
		}
	}
}

// orderKey partitions messages by order id.
func orderKey(payload interface{}) string {
	switch p := payload.(type) {
	case events.OrderPlacedPayload:
		return strconv.FormatUint(uint64(p.OrderID), 10)
	case events.OrderStatusChangedPayload:
		return strconv.FormatUint(uint64(p.OrderID), 10)
	}
	return ""
}

type notifier struct {
	users *repositories.UserRepository
	send  *notification.Notifier
	pool  *workerpool.Pool
}

// statusChanged notifies the customer off the request path. A full pool
// drops the notice.
func (n *notifier) statusChanged(ctx context.Context, payload interface{}) {
	p, ok := payload.(events.OrderStatusChangedPayload)
	if !ok || p.CustomerID == 0 {
		return
	}
	log := logger.WithCtx(ctx)

	err := n.pool.Submit(func(poolCtx context.Context) {
		user, err := n.users.FindByProfileID(poolCtx, p.CustomerID)
		if err != nil {
			log.Warn("listeners: notice recipient not found", "order_id", p.OrderID, "profile_id", p.CustomerID, "error", err)
			return
		}
		note := notifications.OrderStatusChanged{Username: user.Username, Change: p}
		if err := n.send.Send(poolCtx, user.Email, note); err != nil {
			log.Warn("listeners: notice failed", "order_id", p.OrderID, "error", err)
		}
	})
	if err != nil {
		log.Warn("listeners: notice dropped", "order_id", p.OrderID, "error", err)
	}
}
