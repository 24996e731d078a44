// Package migrations registers the marmita schema with pkg/migration. Import
// it for side effects wherever migrations must run:
//
//	import _ "github.com/shashiranjanraj/marmita/database/migrations"
package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/marmita/app/models"
	"github.com/shashiranjanraj/marmita/pkg/migration"
	"github.com/shashiranjanraj/marmita/pkg/queue"
)

func init() {
	migration.Register("20250301000000_create_users_table", table(&models.User{}, "users"))
	migration.Register("20250301000001_create_profiles_table", table(&models.Profile{}, "profiles"))
	migration.Register("20250301000002_create_restaurants_table", table(&models.Restaurant{}, "restaurants"))
	migration.Register("20250301000003_create_products_table", table(&models.Product{}, "products"))
	migration.Register("20250301000004_create_orders_table", table(&models.Order{}, "orders"))
	migration.Register("20250301000005_create_order_lines_table", table(&models.OrderLine{}, "order_lines"))
	migration.Register("20250301000006_create_deliveries_table", table(&models.Delivery{}, "deliveries"))
	migration.Register("20250301000007_create_reviews_table", table(&models.Review{}, "reviews"))
	migration.Register("20250301000008_create_failed_jobs_table", table(&queue.FailedJob{}, "failed_jobs"))
}

// createTable migrates one model and drops its table on rollback.
type createTable struct {
	model interface{}
	name  string
}

func table(model interface{}, name string) *createTable {
	return &createTable{model: model, name: name}
}

func (m *createTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(m.model)
}

func (m *createTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(m.name)
}
