package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/marmita/app/models"
)

type ProductRepository struct{ base }

func NewProductRepository() *ProductRepository {
	return &ProductRepository{}
}

func (r *ProductRepository) WithTx(tx *Tx) *ProductRepository {
	return &ProductRepository{base{tx: tx}}
}

func orderByID(db *gorm.DB) *gorm.DB { return db.Order("id asc") }

// Find loads a product with its restaurant.
func (r *ProductRepository) Find(ctx context.Context, id uint) (models.Product, error) {
	var p models.Product
	err := r.q(ctx).Preload("Restaurant").Where("id = ?", id).First(&p)
	return p, err
}

// FindMany resolves ids in ascending id order. Ids that do not exist are
// simply absent from the result.
func (r *ProductRepository) FindMany(ctx context.Context, ids []uint) ([]models.Product, error) {
	var out []models.Product
	if len(ids) == 0 {
		return out, nil
	}
	err := r.q(ctx).Preload("Restaurant").Where("id IN ?", ids).Order("id asc").Get(&out)
	return out, err
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	return r.q(ctx).Create(p)
}

// Save updates the editable columns of p.
func (r *ProductRepository) Save(ctx context.Context, p *models.Product) error {
	return r.q(ctx).Model(p).Gorm().
		Select("Name", "Description", "Price", "Category", "PhotoURL").
		Updates(p).Error
}

func (r *ProductRepository) Delete(ctx context.Context, p *models.Product) error {
	return r.q(ctx).Delete(p)
}
