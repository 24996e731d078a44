package services

import (
	"context"
	"fmt"

	"github.com/skip2/go-qrcode"

	"github.com/shashiranjanraj/marmita/app/models"
	"github.com/shashiranjanraj/marmita/app/repositories"
	"github.com/shashiranjanraj/marmita/config"
	"github.com/shashiranjanraj/marmita/pkg/cache"
	"github.com/shashiranjanraj/marmita/pkg/logger"
	"github.com/shashiranjanraj/marmita/pkg/orm"
)

// CatalogCacheKey holds the cached restaurant listing.
const CatalogCacheKey = "catalog:restaurants"

// RestaurantDetail is a restaurant, its products and its rating summary.
type RestaurantDetail struct {
	Restaurant models.Restaurant
	Reviews    repositories.ReviewSummary
}

type CatalogService struct {
	restaurants *repositories.RestaurantRepository
	products    *repositories.ProductRepository
	reviews     *repositories.ReviewRepository
}

func NewCatalogService() *CatalogService {
	return &CatalogService{
		restaurants: repositories.NewRestaurantRepository(),
		products:    repositories.NewProductRepository(),
		reviews:     repositories.NewReviewRepository(),
	}
}

// Restaurants lists every restaurant with its products, through the cache.
func (s *CatalogService) Restaurants(ctx context.Context) ([]models.Restaurant, error) {
	var out []models.Restaurant
	if err := s.restaurants.AllQuery(ctx).Cache(ctx, CatalogCacheKey, config.CatalogCacheTTL(), &out); err != nil {
		return nil, fmt.Errorf("catalog: list restaurants: %w", err)
	}
	return out, nil
}

func (s *CatalogService) Restaurant(ctx context.Context, id uint) (RestaurantDetail, error) {
	rest, err := s.restaurants.Find(ctx, id)
	if orm.IsNotFound(err) {
		return RestaurantDetail{}, ErrRestaurantNotFound
	}
	if err != nil {
		return RestaurantDetail{}, fmt.Errorf("catalog: find restaurant %d: %w", id, err)
	}

	summary, err := s.reviews.Summary(ctx, id)
	if err != nil {
		return RestaurantDetail{}, fmt.Errorf("catalog: review summary %d: %w", id, err)
	}
	return RestaurantDetail{Restaurant: rest, Reviews: summary}, nil
}

func (s *CatalogService) Product(ctx context.Context, id uint) (models.Product, error) {
	p, err := s.products.Find(ctx, id)
	if orm.IsNotFound(err) {
		return models.Product{}, ErrProductNotFound
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("catalog: find product %d: %w", id, err)
	}
	return p, nil
}

// MenuQRCode renders a PNG QR code pointing at the public restaurant page.
func (s *CatalogService) MenuQRCode(ctx context.Context, id uint, size int) ([]byte, error) {
	if _, err := s.restaurants.Find(ctx, id); orm.IsNotFound(err) {
		return nil, ErrRestaurantNotFound
	} else if err != nil {
		return nil, fmt.Errorf("catalog: find restaurant %d: %w", id, err)
	}

	if size <= 0 || size > 1024 {
		size = 256
	}
	png, err := qrcode.Encode(RestaurantURL(id), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("catalog: encode qr: %w", err)
	}
	return png, nil
}

// RestaurantURL is the absolute URL of the restaurant detail page.
func RestaurantURL(id uint) string {
	return fmt.Sprintf("%s/restaurante/%d/", config.AppURL(), id)
}

// Invalidate drops the cached listing after an owner write.
func (s *CatalogService) Invalidate(ctx context.Context) {
	if err := cache.Forget(ctx, CatalogCacheKey); err != nil {
		logger.WithCtx(ctx).Warn("catalog: cache invalidation failed", "error", err)
	}
}
