package repositories

import (
	"context"

	"github.com/shashiranjanraj/marmita/app/models"
	"github.com/shashiranjanraj/marmita/pkg/orm"
)

type RestaurantRepository struct{ base }

func NewRestaurantRepository() *RestaurantRepository {
	return &RestaurantRepository{}
}

// AllQuery is the listing query, products included; the catalog caches its
// result.
func (r *RestaurantRepository) AllQuery(ctx context.Context) *orm.Query {
	return r.q(ctx).Model(&models.Restaurant{}).Preload("Products", orderByID).Order("id asc")
}

// Find loads a restaurant with its products in id order.
func (r *RestaurantRepository) Find(ctx context.Context, id uint) (models.Restaurant, error) {
	var rest models.Restaurant
	err := r.q(ctx).Preload("Products", orderByID).Where("id = ?", id).First(&rest)
	return rest, err
}

func (r *RestaurantRepository) ByOwner(ctx context.Context, ownerID uint) ([]models.Restaurant, error) {
	var out []models.Restaurant
	err := r.q(ctx).Preload("Products", orderByID).Where("owner_id = ?", ownerID).Order("id asc").Get(&out)
	return out, err
}

// IDsByOwner returns the ids of the restaurants ownerID owns.
func (r *RestaurantRepository) IDsByOwner(ctx context.Context, ownerID uint) ([]uint, error) {
	var ids []uint
	err := r.q(ctx).Model(&models.Restaurant{}).Where("owner_id = ?", ownerID).Order("id asc").Gorm().Pluck("id", &ids).Error
	return ids, err
}

func (r *RestaurantRepository) Create(ctx context.Context, rest *models.Restaurant) error {
	return r.q(ctx).Create(rest)
}
