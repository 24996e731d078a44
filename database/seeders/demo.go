package seeders

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/marmita/app/models"
	"github.com/shashiranjanraj/marmita/pkg/auth"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "marmita123"

func init() {
	Register("demo", SeedDemo)
}

type demoProduct struct {
	name, description, category, price string
}

type demoRestaurant struct {
	name, address, hours, cuisine string
	products                      []demoProduct
}

var demoRestaurants = []demoRestaurant{
	{
		name: "Cantina da Nonna", address: "Rua Augusta, 1200 - São Paulo",
		hours: "11h às 23h", cuisine: "Italiana",
		products: []demoProduct{
			{"Lasanha à bolonhesa", "Massa fresca, ragu e queijo gratinado", "Massas", "42.90"},
			{"Nhoque ao sugo", "Nhoque de batata com molho de tomate", "Massas", "36.50"},
			{"Tiramisù", "Sobremesa da casa", "Sobremesas", "18.00"},
		},
	},
	{
		name: "Sabor do Sertão", address: "Av. Boa Viagem, 300 - Recife",
		hours: "10h às 22h", cuisine: "Nordestina",
		products: []demoProduct{
			{"Baião de dois", "Arroz, feijão verde, queijo coalho e carne de sol", "Pratos", "39.90"},
			{"Tapioca de carne seca", "Com queijo coalho", "Lanches", "15.00"},
			{"Suco de cajá", "500 ml", "Bebidas", "9.50"},
		},
	},
}

// SeedDemo creates a restaurant owner, a customer and a small catalog. It
// does nothing when the owner account already exists.
func SeedDemo(db *gorm.DB) error {
	err := db.Where("username = ?", "dono").First(&models.User{}).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := auth.HashPassword(DemoPassword)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		owner := models.User{
			Username: "dono", Email: "dono@marmita.test", Password: hash,
			Profile: &models.Profile{Phone: "11999990000", Address: "Rua Augusta, 1200", Role: models.RoleOwner},
		}
		customer := models.User{
			Username: "cliente", Email: "cliente@marmita.test", Password: hash,
			Profile: &models.Profile{Phone: "81988880000", Address: "Rua da Aurora, 50", Role: models.RoleCustomer},
		}
		if err := tx.Create(&owner).Error; err != nil {
			return err
		}
		if err := tx.Create(&customer).Error; err != nil {
			return err
		}

		for _, dr := range demoRestaurants {
			r := models.Restaurant{
				OwnerID: owner.ID, Name: dr.name, Address: dr.address,
				Hours: dr.hours, Cuisine: dr.cuisine,
			}
			for _, dp := range dr.products {
				r.Products = append(r.Products, models.Product{
					Name:        dp.name,
					Description: dp.description,
					Category:    dp.category,
					Price:       decimal.RequireFromString(dp.price),
				})
			}
			if err := tx.Create(&r).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
