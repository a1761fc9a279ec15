package models

import (
	"time"

	"gorm.io/gorm"
)

// Product represents a catalog item that can be ordered off the rack or used
// as the base for a custom order
type Product struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Title          string         `gorm:"not null" json:"title"`
	Fabric         string         `json:"fabric"`
	Image          string         `json:"image"` // S3 key or URL of the primary product image
	Price          float64        `gorm:"not null;check:price >= 0" json:"price"`
	StockQuantity  int            `gorm:"not null;default:0" json:"stock_quantity"` // only meaningful for non-custom items
	PurchaseCount  int            `gorm:"not null;default:0" json:"purchase_count"`
	IsCustomizable bool           `gorm:"not null;default:false" json:"is_customizable"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// ReserveStock decrements stock for a stock purchase and bumps the purchase
// counter. Fails when the remaining stock cannot cover the quantity.
func (p *Product) ReserveStock(quantity int) error {
	if quantity < 1 {
		return NewDomainError(ErrCodeValidation, "quantity must be at least 1")
	}
	if p.StockQuantity < quantity {
		return NewDomainError(ErrCodeInsufficientStock, "insufficient stock for %q: have %d, need %d", p.Title, p.StockQuantity, quantity)
	}
	p.StockQuantity -= quantity
	p.PurchaseCount += quantity
	return nil
}

// RecordCustomPurchase bumps the purchase counter without touching stock.
// Custom items are made to order and carry no inventory.
func (p *Product) RecordCustomPurchase(quantity int) {
	p.PurchaseCount += quantity
}
