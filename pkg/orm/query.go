// Package orm is a small fluent wrapper over *gorm.DB used by the repositories.
// Every builder method returns a new Query, so partial queries can be reused.
package orm

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/shashiranjanraj/marmita/pkg/database"
	"gorm.io/gorm"
)

// Cacher is the read-through cache used by Query.Cache. The kernel wires it to
// pkg/cache so this package does not depend on Redis.
type Cacher interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

var CacheStore Cacher

// Query preloads are applied only when rows are loaded (Get, First, Cache,
// the page of Paginate), never to Count.
type Query struct {
	db       *gorm.DB
	preloads []preload
}

type preload struct {
	assoc string
	args  []interface{}
}

func (q *Query) with(db *gorm.DB) *Query {
	return &Query{db: db, preloads: q.preloads}
}

func (q *Query) loader() *gorm.DB {
	db := q.db
	for _, p := range q.preloads {
		db = db.Preload(p.assoc, p.args...)
	}
	return db
}

// Pagination is the metadata returned by Paginate.
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// DB starts a query on the shared connection.
func DB() *Query {
	return &Query{db: database.DB}
}

// Gorm returns the underlying handle with the recorded preloads applied.
func (q *Query) Gorm() *gorm.DB { return q.loader() }

func (q *Query) WithContext(ctx context.Context) *Query {
	return q.with(q.db.WithContext(ctx))
}

func (q *Query) Model(v interface{}) *Query {
	return q.with(q.db.Model(v))
}

func (q *Query) Where(query interface{}, args ...interface{}) *Query {
	return q.with(q.db.Where(query, args...))
}

func (q *Query) Preload(assoc string, args ...interface{}) *Query {
	preloads := append(append([]preload(nil), q.preloads...), preload{assoc: assoc, args: args})
	return &Query{db: q.db, preloads: preloads}
}

func (q *Query) Order(value string) *Query {
	return q.with(q.db.Order(value))
}

func (q *Query) Get(dest interface{}) error {
	return q.loader().Find(dest).Error
}

func (q *Query) First(dest interface{}) error {
	return q.loader().First(dest).Error
}

func (q *Query) Count() (int64, error) {
	var n int64
	err := q.db.Count(&n).Error
	return n, err
}

func (q *Query) Create(v interface{}) error {
	return q.db.Create(v).Error
}

func (q *Query) Save(v interface{}) error {
	return q.db.Save(v).Error
}

// Update sets a single column on the rows selected by Model/Where.
func (q *Query) Update(column string, value interface{}) error {
	return q.db.Update(column, value).Error
}

func (q *Query) Delete(v interface{}) error {
	return q.db.Delete(v).Error
}

// Transaction runs fn inside a database transaction. Returning an error (or
// panicking) rolls everything back.
func (q *Query) Transaction(fn func(tx *Query) error) error {
	return q.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Query{db: tx})
	})
}

// Cache serves dest from CacheStore under key, falling back to the database
// and populating the cache on a miss.
func (q *Query) Cache(ctx context.Context, key string, ttl time.Duration, dest interface{}) error {
	if CacheStore != nil && CacheStore.Get(ctx, key, dest) {
		return nil
	}

	if err := q.loader().Find(dest).Error; err != nil {
		return err
	}

	if CacheStore != nil {
		_ = CacheStore.Set(ctx, key, dest, ttl)
	}
	return nil
}

// Paginate loads one page into dest. page is 1-based.
func (q *Query) Paginate(dest interface{}, page, perPage int) (Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 15
	}

	var total int64
	if err := q.db.Count(&total).Error; err != nil {
		return Pagination{}, err
	}

	err := q.loader().Offset((page - 1) * perPage).Limit(perPage).Find(dest).Error
	return Pagination{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(perPage))),
	}, err
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
