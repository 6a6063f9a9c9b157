package repository

import (
	"context"
	"errors"

	"warehouse/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// ProductRepository persists products. Every operation is scoped by owner id
// so tenant isolation is enforced at the storage filter.
type ProductRepository interface {
	Create(ctx context.Context, p model.Product) (model.Product, error)
	FindByID(ctx context.Context, ownerID, productID string) (model.Product, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Product, error)

	// Update rewrites name and description, filtered by id AND owner id.
	// Zero modified rows is reported as ErrNotFound.
	Update(ctx context.Context, p model.Product) error

	Delete(ctx context.Context, ownerID, productID string) error
}
