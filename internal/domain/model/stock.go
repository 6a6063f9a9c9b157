package model

import "time"

// Stock is the quantity-on-hand record paired one-to-one with a product.
// (owner_id, product_id) is the logical key used for every lookup; a stock
// row without its product is a data-integrity defect.
type Stock struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID   string    `gorm:"type:uuid;not null;uniqueIndex:idx_stocks_owner_product" json:"owner_id"`
	ProductID string    `gorm:"type:uuid;not null;uniqueIndex:idx_stocks_owner_product" json:"product_id"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
