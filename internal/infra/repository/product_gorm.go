package repository

import (
	"context"
	"errors"

	"warehouse/internal/domain/model"
	repo "warehouse/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// FindByID fetches a product by id, scoped to its owner.
func (r *ProductGormRepository) FindByID(ctx context.Context, ownerID, productID string) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", productID, ownerID).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (r *ProductGormRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at asc").Order("id asc").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// Update rewrites the mutable fields. The owner_id filter keeps one tenant
// from touching another tenant's product; zero matched rows means the product
// vanished between fetch and write.
func (r *ProductGormRepository) Update(ctx context.Context, p model.Product) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND owner_id = ?", p.ID, p.OwnerID).
		Updates(map[string]interface{}{
			"name":        p.Name,
			"description": p.Description,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ProductGormRepository) Delete(ctx context.Context, ownerID, productID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", productID, ownerID).
		Delete(&model.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
