package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RecipeLine struct {
	gorm.Model
	ProductID    uint            `gorm:"not null;index" json:"product_id"`
	IngredientID uint            `gorm:"not null" json:"ingredient_id"`
	Quantity     decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"quantity"`
	Position     int             `gorm:"not null;default:0" json:"position"`

	// A nil VariantID places the line on the base recipe shared by every
	// variant. Otherwise the line overrides or extends that variant only.
	VariantID *uint `gorm:"index" json:"variant_id,omitempty"`

	Ingredient *Ingredient     `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
	Variant    *ProductVariant `gorm:"foreignKey:VariantID" json:"variant,omitempty"`
}

// IsBase reports whether the line belongs to the base recipe.
func (l RecipeLine) IsBase() bool {
	return l.VariantID == nil || *l.VariantID == 0
}
