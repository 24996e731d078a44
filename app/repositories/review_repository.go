package repositories

import (
	"context"

	"github.com/shashiranjanraj/marmita/app/models"
	"github.com/shashiranjanraj/marmita/pkg/orm"
)

type ReviewRepository struct{ base }

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{}
}

// ReviewSummary aggregates the ratings of one restaurant.
type ReviewSummary struct {
	Count   int64
	Average float64
}

func (r *ReviewRepository) Create(ctx context.Context, rv *models.Review) error {
	return r.q(ctx).Create(rv)
}

// ForRestaurant loads one page of reviews, newest first.
func (r *ReviewRepository) ForRestaurant(ctx context.Context, restaurantID uint, page, perPage int) ([]models.Review, orm.Pagination, error) {
	var out []models.Review
	p, err := r.q(ctx).Model(&models.Review{}).
		Preload("Customer.User").
		Where("restaurant_id = ?", restaurantID).
		Order("created_at desc, id desc").
		Paginate(&out, page, perPage)
	return out, p, err
}

func (r *ReviewRepository) Summary(ctx context.Context, restaurantID uint) (ReviewSummary, error) {
	var s ReviewSummary
	err := r.q(ctx).Model(&models.Review{}).Gorm().
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS average").
		Where("restaurant_id = ?", restaurantID).
		Scan(&s).Error
	return s, err
}
