package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shashiranjanraj/marmita/app/models"
	"github.com/shashiranjanraj/marmita/app/policies"
	"github.com/shashiranjanraj/marmita/app/repositories"
	"github.com/shashiranjanraj/marmita/pkg/logger"
	"github.com/shashiranjanraj/marmita/pkg/orm"
)

type ReviewInput struct {
	Rating  int    `form:"nota"       json:"nota"       validate:"required,between=1,5"`
	Comment string `form:"comentario" json:"comentario" validate:"nullable,max=2000"`
}

type ReviewService struct {
	restaurants *repositories.RestaurantRepository
	reviews     *repositories.ReviewRepository
}

func NewReviewService() *ReviewService {
	return &ReviewService{
		restaurants: repositories.NewRestaurantRepository(),
		reviews:     repositories.NewReviewRepository(),
	}
}

// Create stores a customer's rating of restaurantID.
func (s *ReviewService) Create(ctx context.Context, actor policies.Actor, restaurantID uint, in ReviewInput) (models.Review, error) {
	if err := policies.Authorize(actor, policies.WriteReview, nil); err != nil {
		return models.Review{}, err
	}
	if in.Rating < 1 || in.Rating > 5 {
		return models.Review{}, fmt.Errorf("review: rating %d out of range", in.Rating)
	}

	if _, err := s.restaurants.Find(ctx, restaurantID); err != nil {
		return models.Review{}, notFoundOr(err, ErrRestaurantNotFound, "review: find restaurant")
	}

	rv := models.Review{
		CustomerID:   actor.ProfileID,
		RestaurantID: restaurantID,
		Rating:       in.Rating,
	}
	if c := strings.TrimSpace(in.Comment); c != "" {
		rv.Comment = &c
	}
	if err := s.reviews.Create(ctx, &rv); err != nil {
		return models.Review{}, fmt.Errorf("review: create: %w", err)
	}

	logger.WithCtx(ctx).Info("review posted", "review_id", rv.ID, "restaurant_id", restaurantID, "rating", rv.Rating)
	return rv, nil
}

// List returns one page of the reviews of restaurantID, newest first.
func (s *ReviewService) List(ctx context.Context, restaurantID uint, page, perPage int) ([]models.Review, orm.Pagination, error) {
	if _, err := s.restaurants.Find(ctx, restaurantID); orm.IsNotFound(err) {
		return nil, orm.Pagination{}, ErrRestaurantNotFound
	} else if err != nil {
		return nil, orm.Pagination{}, fmt.Errorf("review: find restaurant %d: %w", restaurantID, err)
	}

	out, p, err := s.reviews.ForRestaurant(ctx, restaurantID, page, perPage)
	if err != nil {
		return nil, orm.Pagination{}, fmt.Errorf("review: list: %w", err)
	}
	return out, p, nil
}
