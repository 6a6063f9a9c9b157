package repository

import (
	"context"

	"warehouse/internal/domain/model"
)

// StockRepository persists stock records keyed by (owner_id, product_id).
type StockRepository interface {
	Create(ctx context.Context, s model.Stock) (model.Stock, error)
	FindByOwnerAndProduct(ctx context.Context, ownerID, productID string) (model.Stock, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Stock, error)

	// SetQuantity writes the quantity, filtered by stock id + owner id +
	// product id AND compared-and-swapped against s.Quantity, the value the
	// caller read. Zero modified rows is reported as ErrNotFound: the record
	// changed or vanished between the read and the write.
	SetQuantity(ctx context.Context, s model.Stock, quantity int64) error

	// DecreaseQuantityIfEnough subtracts qty in a single conditional update
	// that only matches when the remaining quantity suffices, and reports
	// whether a row matched.
	DecreaseQuantityIfEnough(ctx context.Context, ownerID, productID string, qty int64) (bool, error)

	Delete(ctx context.Context, ownerID, productID string) error
}
