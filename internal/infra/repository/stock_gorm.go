package repository

import (
	"context"
	"errors"

	"warehouse/internal/domain/model"
	repo "warehouse/internal/repository"

	"gorm.io/gorm"
)

type StockGormRepository struct {
	db *gorm.DB
}

// DI
func NewStockGormRepository(db *gorm.DB) *StockGormRepository {
	return &StockGormRepository{db: db}
}

func (r *StockGormRepository) Create(ctx context.Context, s model.Stock) (model.Stock, error) {
	if err := r.db.WithContext(ctx).Create(&s).Error; err != nil {
		return model.Stock{}, err
	}
	return s, nil
}

func (r *StockGormRepository) FindByOwnerAndProduct(ctx context.Context, ownerID, productID string) (model.Stock, error) {
	var s model.Stock
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND product_id = ?", ownerID, productID).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Stock{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Stock{}, err
	}
	return s, nil
}

func (r *StockGormRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Stock, error) {
	var stocks []model.Stock
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Find(&stocks).Error
	if err != nil {
		return nil, err
	}
	return stocks, nil
}

// SetQuantity writes the quantity, compared-and-swapped against the value
// the caller read. A record that was decremented or deleted in between
// matches zero rows instead of being overwritten.
func (r *StockGormRepository) SetQuantity(ctx context.Context, s model.Stock, quantity int64) error {
	res := r.db.WithContext(ctx).Model(&model.Stock{}).
		Where("id = ? AND owner_id = ? AND product_id = ? AND quantity = ?", s.ID, s.OwnerID, s.ProductID, s.Quantity).
		Update("quantity", quantity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// DecreaseQuantityIfEnough subtracts only when enough quantity remains. The
// check and the write are one statement, so concurrent decrements cannot
// push the quantity below zero.
func (r *StockGormRepository) DecreaseQuantityIfEnough(ctx context.Context, ownerID, productID string, qty int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Stock{}).
		Where("owner_id = ? AND product_id = ? AND quantity >= ?", ownerID, productID, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *StockGormRepository) Delete(ctx context.Context, ownerID, productID string) error {
	res := r.db.WithContext(ctx).
		Where("owner_id = ? AND product_id = ?", ownerID, productID).
		Delete(&model.Stock{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
