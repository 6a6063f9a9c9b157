package model

import "time"

// Product is a client-owned catalog entry. The SKU is assigned at creation
// and never changes afterwards; name and description are free text.
type Product struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID     string    `gorm:"type:uuid;not null;index" json:"owner_id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	SKU         string    `gorm:"type:varchar(32);not null" json:"sku"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
