package repository

import "context"

// TxRepos are the repositories bound to one transaction.
type TxRepos interface {
	Products() ProductRepository
	Stocks() StockRepository
}

// TransactionManager hides transaction begin/commit/rollback from the
// usecase layer.
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
