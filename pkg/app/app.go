// Package app boots the marmita application and exposes it as a cobra CLI.
//
//	svc := controllers.NewServices()
//	app.New().
//	    Routes(func(r *router.Router) { routes.RegisterWeb(r, svc) }).
//	    Seeder(seeders.RunAll).
//	    Command().Execute()
//
// Commands: serve, migrate, migrate:rollback, migrate:status, seed,
// route:list, queue:work, queue:failed, queue:retry, schedule:list.
package app

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/marmita/config"
	"github.com/shashiranjanraj/marmita/pkg/broker"
	"github.com/shashiranjanraj/marmita/pkg/cache"
	"github.com/shashiranjanraj/marmita/pkg/database"
	"github.com/shashiranjanraj/marmita/pkg/logger"
	"github.com/shashiranjanraj/marmita/pkg/orm"
	"github.com/shashiranjanraj/marmita/pkg/queue"
	"github.com/shashiranjanraj/marmita/pkg/router"
	"github.com/shashiranjanraj/marmita/pkg/session"
)

// SeederFunc fills the database with demo data.
type SeederFunc func(db *gorm.DB) error

// Application is the configured, not yet booted, program.
type Application struct {
	routesFns []func(*router.Router)
	seeders   []SeederFunc
	listeners []func(broker.Publisher) func()
}

func New() *Application {
	return &Application{}
}

// Routes adds a route-registration callback. Callbacks run in order when
// the handler is built.
func (a *Application) Routes(fn func(*router.Router)) *Application {
	a.routesFns = append(a.routesFns, fn)
	return a
}

func (a *Application) Seeder(fns ...SeederFunc) *Application {
	a.seeders = append(a.seeders, fns...)
	return a
}

// Listeners adds an event-listener registration callback. It receives the
// Kafka publisher, or nil when KAFKA_BROKERS is empty, and returns the
// function that stops what it started.
func (a *Application) Listeners(fn func(broker.Publisher) func()) *Application {
	a.listeners = append(a.listeners, fn)
	return a
}

// runtime holds what boot opened; close releases it.
type runtime struct {
	store     session.Store
	publisher broker.Publisher
	// sharedQueue is set when jobs go through Redis and so are visible to
	// other processes.
	sharedQueue bool
	closers     []func()
}

func (rt *runtime) close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
}

// bootDB loads config and connects to the database.
func bootDB() error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return database.Connect()
}

// boot brings up everything serve needs. Redis, Kafka and the Mongo log
// sink are optional: when they are absent the application runs on the
// in-memory session store and job queue, without cache or event publishing.
func (a *Application) boot() (*runtime, error) {
	if err := bootDB(); err != nil {
		return nil, err
	}
	rt := &runtime{}
	queue.UseDB(database.DB)

	if uri := config.MongoLogURI(); uri != "" {
		h, err := logger.NewMongoHandler(uri, "marmita", "logs")
		if err != nil {
			logger.Warn("mongo log sink disabled", "error", err)
		} else {
			logger.Attach(h)
			rt.closers = append(rt.closers, h.Close)
		}
	}

	if err := cache.Connect(); err != nil {
		logger.Warn("redis unavailable, using in-memory sessions and no cache", "error", err)
		rt.store = session.NewMemoryStore()
	} else {
		rt.store = session.NewRedisStore(cache.RDB)
		orm.CacheStore = ormCache{}
		queue.SetDriver(queue.NewRedisDriver(cache.RDB))
		rt.sharedQueue = true
		rt.closers = append(rt.closers, func() { _ = cache.RDB.Close() })
	}

	if brokers := config.KafkaBrokers(); len(brokers) > 0 {
		pub := broker.NewKafkaPublisher(brokers, config.KafkaTopic())
		rt.publisher = pub
		rt.closers = append(rt.closers, func() {
			if err := pub.Close(); err != nil {
				logger.Warn("kafka close failed", "error", err)
			}
		})
		logger.Info("publishing order events", "brokers", brokers, "topic", config.KafkaTopic())
	}

	for _, fn := range a.listeners {
		if stop := fn(rt.publisher); stop != nil {
			rt.closers = append(rt.closers, stop)
		}
	}

	return rt, nil
}

// ormCache bridges pkg/cache to orm.Cacher so neither imports the other.
type ormCache struct{}

func (ormCache) Get(ctx context.Context, key string, dest interface{}) bool {
	return cache.Get(ctx, key, dest)
}

func (ormCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return cache.Set(ctx, key, value, ttl)
}
