package services_test

import (
	"context"
	"strconv"
	"testing"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/marmita/app/cart"
	"github.com/shashiranjanraj/marmita/app/models"
	"github.com/shashiranjanraj/marmita/app/policies"
	"github.com/shashiranjanraj/marmita/app/services"
	"github.com/shashiranjanraj/marmita/internal/testdb"
)

// sessionMap stands in for the browser session.
type sessionMap map[string]interface{}

func (m sessionMap) Get(key string) (interface{}, bool) { v, ok := m[key]; return v, ok }
func (m sessionMap) Set(key string, value interface{})  { m[key] = value }
func (m sessionMap) Delete(key string)                  { delete(m, key) }

func newCart() *cart.Cart { return cart.New(sessionMap{}) }

// world is a small marketplace: one owner with two restaurants, one
// customer, and a second owner.
type world struct {
	db       *gorm.DB
	owner    models.User
	other    models.User
	customer models.User
	cantina  models.Restaurant
	sertao   models.Restaurant
	lasanha  models.Product // 10.00, cantina
	salada   models.Product // 5.00, cantina
	baiao    models.Product // 20.00, sertao
}

func newWorld(t *testing.T) *world {
	t.Helper()
	db := testdb.Setup(t)
	w := &world{db: db}
	w.owner = testdb.User(t, db, "dono", models.RoleOwner)
	w.other = testdb.User(t, db, "outro_dono", models.RoleOwner)
	w.customer = testdb.User(t, db, "cliente", models.RoleCustomer)
	w.cantina = testdb.Restaurant(t, db, w.owner, "Cantina")
	w.sertao = testdb.Restaurant(t, db, w.owner, "Sertão")
	w.lasanha = testdb.Product(t, db, w.cantina, "Lasanha", "10.00")
	w.salada = testdb.Product(t, db, w.cantina, "Salada", "5.00")
	w.baiao = testdb.Product(t, db, w.sertao, "Baião", "20.00")
	return w
}

func actor(u models.User) policies.Actor { return services.ActorOf(u) }

var bg = context.Background()

func itoa(id uint) string { return strconv.FormatUint(uint64(id), 10) }
