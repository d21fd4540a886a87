package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductVariant is a priced version of a product, e.g. a size. Position
// orders variants within their product.
type ProductVariant struct {
	gorm.Model
	ProductID uint            `gorm:"not null;index" json:"product_id"`
	Name      string          `gorm:"not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Position  int             `gorm:"not null;default:0" json:"position"`
}
