package repository

import (
	"context"

	repo "warehouse/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	products repo.ProductRepository
	stocks   repo.StockRepository
}

func (r *txReposGorm) Products() repo.ProductRepository { return r.products }
func (r *txReposGorm) Stocks() repo.StockRepository     { return r.stocks }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// repositories are rebuilt on the transaction handle
		r := &txReposGorm{
			products: NewProductGormRepository(tx),
			stocks:   NewStockGormRepository(tx),
		}
		return fn(r)
	})
}
