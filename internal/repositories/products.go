package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/rohits-web03/otadash/internal/models"
)

type ProductRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

func (r *ProductRepo) List(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&products).Error; err != nil {
		return nil, dbError("Products", err)
	}
	return products, nil
}

func (r *ProductRepo) Create(ctx context.Context, p *models.Product) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return dbError("Product", err)
	}
	return nil
}
