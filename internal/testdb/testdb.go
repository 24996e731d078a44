// Package testdb gives tests a migrated in-memory database installed as the
// shared connection, plus fixtures for the marketplace entities.
package testdb

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/marmita/app/models"
	_ "github.com/shashiranjanraj/marmita/database/migrations"
	"github.com/shashiranjanraj/marmita/pkg/auth"
	"github.com/shashiranjanraj/marmita/pkg/database"
	"github.com/shashiranjanraj/marmita/pkg/event"
	"github.com/shashiranjanraj/marmita/pkg/migration"
	"github.com/shashiranjanraj/marmita/pkg/orm"
)

// Password is the plain password of every fixture account.
const Password = "segredo123"

// Setup opens a private database, runs every migration and installs it as
// database.DB until the test ends. Event listeners are cleared both ways.
func Setup(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:marmita_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open("sqlite", dsn)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, migration.New(db, nil).Run())

	prevDB, prevCache := database.DB, orm.CacheStore
	database.DB, orm.CacheStore = db, nil
	event.Flush()

	t.Cleanup(func() {
		event.Flush()
		database.DB, orm.CacheStore = prevDB, prevCache
		_ = sqlDB.Close()
	})
	return db
}

var hashed string

func passwordHash(t *testing.T) string {
	t.Helper()
	if hashed == "" {
		h, err := auth.HashPassword(Password)
		require.NoError(t, err)
		hashed = h
	}
	return hashed
}

// User creates an account with a profile of the given role.
func User(t *testing.T, db *gorm.DB, username string, role models.Role) models.User {
	t.Helper()
	u := models.User{
		Username: username,
		Email:    username + "@marmita.test",
		Password: passwordHash(t),
		Profile:  &models.Profile{Phone: "11999990000", Address: "Rua A, 1", Role: role},
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

// Restaurant creates a restaurant owned by owner.
func Restaurant(t *testing.T, db *gorm.DB, owner models.User, name string) models.Restaurant {
	t.Helper()
	r := models.Restaurant{
		OwnerID: owner.ID,
		Name:    name,
		Address: "Av. Central, 100",
		Hours:   "11h às 22h",
		Cuisine: "Brasileira",
	}
	require.NoError(t, db.Create(&r).Error)
	return r
}

// Product creates a product priced at price (a decimal string).
func Product(t *testing.T, db *gorm.DB, r models.Restaurant, name, price string) models.Product {
	t.Helper()
	p := models.Product{
		RestaurantID: r.ID,
		Name:         name,
		Description:  name + " da casa",
		Price:        decimal.RequireFromString(price),
		Category:     "Pratos",
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}
