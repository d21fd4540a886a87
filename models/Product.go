package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is a menu item sold in one or more variants.
type Product struct {
	gorm.Model
	Name        string           `gorm:"not null" json:"name"`
	SKU         string           `gorm:"uniqueIndex;not null" json:"sku"`
	Category    string           `json:"category"`
	Notes       string           `gorm:"type:text" json:"notes"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductID" json:"variants"`
	RecipeLines []RecipeLine     `gorm:"foreignKey:ProductID" json:"recipe_lines"`
}

// BeforeCreate assigns a SKU when none was supplied.
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if strings.TrimSpace(p.SKU) == "" {
		p.SKU = uuid.NewString()
	}
	return nil
}
