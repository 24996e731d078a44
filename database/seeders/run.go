// Package seeders fills a fresh database with demo data.
//
// Seeders register themselves from init() and run in registration order:
//
//	func init() {
//	    seeders.Register("demo", SeedDemo)
//	}
//
// Run via CLI: marmita seed
package seeders

import (
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/marmita/pkg/logger"
)

type SeederFunc func(db *gorm.DB) error

type seederEntry struct {
	name string
	fn   SeederFunc
}

var (
	mu      sync.Mutex
	entries []seederEntry
)

func Register(name string, fn SeederFunc) {
	mu.Lock()
	defer mu.Unlock()
	entries = append(entries, seederEntry{name: name, fn: fn})
}

// RunAll executes every registered seeder in registration order and stops on
// the first error.
func RunAll(db *gorm.DB) error {
	mu.Lock()
	current := make([]seederEntry, len(entries))
	copy(current, entries)
	mu.Unlock()

	for _, e := range current {
		if err := e.fn(db); err != nil {
			return fmt.Errorf("seeder %q: %w", e.name, err)
		}
		logger.Info("seeder done", "name", e.name)
	}
	return nil
}
