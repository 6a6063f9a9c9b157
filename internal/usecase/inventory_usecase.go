package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"warehouse/internal/domain/model"
	repo "warehouse/internal/repository"
	"warehouse/internal/sku"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// InventoryUsecase pairs products with their stock records, applies quantity
// changes and processes order batches. All mutable state lives in storage;
// the usecase itself is safe for arbitrary concurrent callers.
type InventoryUsecase struct {
	productRepo repo.ProductRepository
	stockRepo   repo.StockRepository
	tx          repo.TransactionManager
	log         zerolog.Logger
}

// DI
func NewInventoryUsecase(
	productRepo repo.ProductRepository,
	stockRepo repo.StockRepository,
	tx repo.TransactionManager,
	log zerolog.Logger,
) *InventoryUsecase {
	return &InventoryUsecase{
		productRepo: productRepo,
		stockRepo:   stockRepo,
		tx:          tx,
		log:         log,
	}
}

// ProductWithQuantity joins a product with its current stock quantity.
type ProductWithQuantity struct {
	Product  model.Product
	Quantity int64
}

// CreateProduct inserts a product and its paired stock record in one
// transaction, so a stock insert failure never leaves an orphaned product.
// Callers are expected to reject quantity < 1 before invoking this.
func (u *InventoryUsecase) CreateProduct(ctx context.Context, ownerID, name, description string, quantity int64) (ProductWithQuantity, error) {
	code, err := sku.New()
	if err != nil {
		u.log.Error().Err(err).Msg("sku generation failed")
		return ProductWithQuantity{}, newInternal("cannot create product")
	}

	p := model.Product{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(name),
		Description: description,
		SKU:         code,
	}
	s := model.Stock{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		ProductID: p.ID,
		Quantity:  quantity,
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		if p, err = r.Products().Create(ctx, p); err != nil {
			return err
		}
		if s, err = r.Stocks().Create(ctx, s); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		u.log.Error().Err(err).Str("owner_id", ownerID).Msg("create product failed")
		return ProductWithQuantity{}, newInternal("cannot create product")
	}

	return ProductWithQuantity{Product: p, Quantity: s.Quantity}, nil
}

// GetProduct returns a product together with its current quantity.
func (u *InventoryUsecase) GetProduct(ctx context.Context, ownerID, productID string) (ProductWithQuantity, error) {
	p, s, err := u.findProductAndStock(ctx, ownerID, productID)
	if err != nil {
		return ProductWithQuantity{}, err
	}
	return ProductWithQuantity{Product: p, Quantity: s.Quantity}, nil
}

// ListProducts returns every product of the owner with its quantity, joined
// in memory by product id. A product whose stock record is missing is a
// data-integrity failure here, exactly as in the single lookup.
func (u *InventoryUsecase) ListProducts(ctx context.Context, ownerID string) ([]ProductWithQuantity, error) {
	products, err := u.productRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		u.log.Error().Err(err).Str("owner_id", ownerID).Msg("list products failed")
		return nil, newInternal("cannot list products")
	}

	stocks, err := u.stockRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		u.log.Error().Err(err).Str("owner_id", ownerID).Msg("list stocks failed")
		return nil, newInternal("cannot list products")
	}

	quantities := make(map[string]int64, len(stocks))
	for _, s := range stocks {
		quantities[s.ProductID] = s.Quantity
	}

	out := make([]ProductWithQuantity, 0, len(products))
	for _, p := range products {
		qty, ok := quantities[p.ID]
		if !ok {
			u.log.Error().Str("product_id", p.ID).Msg("stock record missing for product")
			return nil, newInternal("cannot list products")
		}
		out = append(out, ProductWithQuantity{Product: p, Quantity: qty})
	}
	return out, nil
}

// UpdateProduct rewrites name and description. A write that matches zero
// rows after a successful fetch means the product was deleted concurrently
// and is reported as not found.
func (u *InventoryUsecase) UpdateProduct(ctx context.Context, ownerID, productID, name, description string) (ProductWithQuantity, error) {
	cur, err := u.GetProduct(ctx, ownerID, productID)
	if err != nil {
		return ProductWithQuantity{}, err
	}

	p := cur.Product
	p.Name = strings.TrimSpace(name)
	p.Description = description

	err = u.productRepo.Update(ctx, p)
	if errors.Is(err, repo.ErrNotFound) {
		return ProductWithQuantity{}, newNotFound("product not found")
	}
	if err != nil {
		u.log.Error().Err(err).Str("product_id", productID).Msg("update product failed")
		return ProductWithQuantity{}, newInternal("cannot update product")
	}

	return ProductWithQuantity{Product: p, Quantity: cur.Quantity}, nil
}

// setQuantityRetries bounds how often a conflicted quantity write is
// re-read and retried before giving up.
const setQuantityRetries = 3

// SetQuantity sets the stock quantity to newQuantity. Values below the
// current quantity are rejected: stock only shrinks through order
// processing. Setting the current value again is an idempotent no-op.
// The write is compared-and-swapped against the quantity that was read,
// so an order decrement landing in between is never overwritten; a
// conflicted write re-reads the pair and tries again.
func (u *InventoryUsecase) SetQuantity(ctx context.Context, ownerID, productID string, newQuantity int64) (model.Stock, error) {
	for attempt := 0; attempt < setQuantityRetries; attempt++ {
		_, s, err := u.findProductAndStock(ctx, ownerID, productID)
		if err != nil {
			return model.Stock{}, err
		}

		if newQuantity < s.Quantity {
			return model.Stock{}, newFailedPrecondition(fmt.Sprintf(
				"quantity can only be decreased by processing orders (current %d, requested %d)",
				s.Quantity, newQuantity,
			))
		}
		if newQuantity == s.Quantity {
			return s, nil
		}

		err = u.stockRepo.SetQuantity(ctx, s, newQuantity)
		if err == nil {
			s.Quantity = newQuantity
			return s, nil
		}
		if errors.Is(err, repo.ErrNotFound) {
			// the quantity moved, or the record vanished, between the read
			// and the write; re-read and reconcile
			continue
		}
		u.log.Error().Err(err).Str("product_id", productID).Msg("set quantity failed")
		return model.Stock{}, newInternal("cannot set quantity")
	}

	return model.Stock{}, newFailedPrecondition("stock quantity changed concurrently, retry")
}

// CheckAvailability reports whether the requested number of units is on
// hand. It never mutates state.
func (u *InventoryUsecase) CheckAvailability(ctx context.Context, ownerID, productID string, requested int64) error {
	_, s, err := u.findProductAndStock(ctx, ownerID, productID)
	if err != nil {
		return err
	}
	if requested > s.Quantity {
		return newFailedPrecondition(fmt.Sprintf(
			"insufficient quantity for product %s: requested %d, available %d",
			productID, requested, s.Quantity,
		))
	}
	return nil
}

// ProcessOrders applies a batch of order lines as a unit. Lines are
// normalized and checked before anything mutates; the decrements then run as
// conditional updates inside one transaction, so a line that loses a
// concurrent race rolls back every sibling decrement.
func (u *InventoryUsecase) ProcessOrders(ctx context.Context, ownerID string, lines []model.OrderLine) error {
	if len(lines) == 0 {
		return newFailedPrecondition("order batch is empty")
	}

	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		if _, err := uuid.Parse(line.ProductID); err != nil {
			return newFailedPrecondition(fmt.Sprintf("invalid product id %q", line.ProductID))
		}
		if line.Quantity < 1 {
			return newFailedPrecondition(fmt.Sprintf("quantity for product %s cannot be less than 1", line.ProductID))
		}
		if _, dup := seen[line.ProductID]; dup {
			return newFailedPrecondition(fmt.Sprintf("duplicate order line for product %s", line.ProductID))
		}
		seen[line.ProductID] = struct{}{}
	}

	// check phase: every line must pass before any quantity changes
	g, gctx := errgroup.WithContext(ctx)
	for _, line := range lines {
		line := line
		g.Go(func() error {
			return u.CheckAvailability(gctx, ownerID, line.ProductID, line.Quantity)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// apply phase: a line raced below its checked quantity fails the
	// conditional update and aborts the whole transaction
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		for _, line := range lines {
			ok, err := r.Stocks().DecreaseQuantityIfEnough(ctx, ownerID, line.ProductID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return newFailedPrecondition(fmt.Sprintf("insufficient quantity for product %s", line.ProductID))
			}
		}
		return nil
	})
	if err != nil {
		if _, ok := AsError(err); ok {
			return err
		}
		u.log.Error().Err(err).Str("owner_id", ownerID).Msg("process orders failed")
		return newInternal("cannot process orders")
	}
	return nil
}

// DeleteProduct removes the product and its stock record together. Either
// both rows go or neither does.
func (u *InventoryUsecase) DeleteProduct(ctx context.Context, ownerID, productID string) error {
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Products().Delete(ctx, ownerID, productID); err != nil {
			return err
		}
		if err := r.Stocks().Delete(ctx, ownerID, productID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				// pairing invariant broken; roll back the product delete
				return fmt.Errorf("stock record missing for product %s", productID)
			}
			return err
		}
		return nil
	})
	if errors.Is(err, repo.ErrNotFound) {
		return newNotFound("product not found")
	}
	if err != nil {
		u.log.Error().Err(err).Str("product_id", productID).Msg("delete product failed")
		return newInternal("cannot delete product")
	}
	return nil
}

// findProductAndStock resolves the (product, stock) pair. A missing product
// is not found; a product present without its stock record violates the
// pairing invariant and is surfaced as an internal failure.
func (u *InventoryUsecase) findProductAndStock(ctx context.Context, ownerID, productID string) (model.Product, model.Stock, error) {
	p, err := u.productRepo.FindByID(ctx, ownerID, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, model.Stock{}, newNotFound("product not found")
	}
	if err != nil {
		u.log.Error().Err(err).Str("product_id", productID).Msg("find product failed")
		return model.Product{}, model.Stock{}, newInternal("cannot get product")
	}

	s, err := u.stockRepo.FindByOwnerAndProduct(ctx, ownerID, productID)
	if errors.Is(err, repo.ErrNotFound) {
		u.log.Error().Str("product_id", productID).Msg("stock record missing for product")
		return model.Product{}, model.Stock{}, newInternal("cannot get product")
	}
	if err != nil {
		u.log.Error().Err(err).Str("product_id", productID).Msg("find stock failed")
		return model.Product{}, model.Stock{}, newInternal("cannot get product")
	}

	return p, s, nil
}
