package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Ingredient is a catalog entry priced per unit of stock.
type Ingredient struct {
	gorm.Model
	Name        string          `gorm:"uniqueIndex;not null" json:"name"`
	UnitSymbol  string          `gorm:"not null;default:'unit'" json:"unit_symbol"`
	CostPerUnit decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"cost_per_unit"`
	Notes       string          `gorm:"type:text" json:"notes"`
}
